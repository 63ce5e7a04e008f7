package adapters

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/dharmasatrya/skyfare/internal/config"
	"github.com/dharmasatrya/skyfare/internal/ratelimit"
)

// Health classifies one adapter for operations. "not_initialized" means no
// adapter was ever constructed for the airline, distinct from an adapter
// that exists but fails its check.
type Health struct {
	Status       string         `json:"status"` // healthy, unhealthy, not_initialized
	LastCheck    time.Time      `json:"last_check"`
	ResponseTime *time.Duration `json:"response_time,omitempty"`
}

const (
	HealthHealthy        = "healthy"
	HealthUnhealthy      = "unhealthy"
	HealthNotInitialized = "not_initialized"
)

// Constructor builds a concrete adapter for one airline. Integrations enter
// the registry through the registration table, not a type switch.
type Constructor func(cfg *config.AirlineConfig, deps Deps) (Adapter, error)

// SimulatedConstructor returns a constructor producing simulated adapters
// pinned to a scenario.
func SimulatedConstructor(scenario Scenario) Constructor {
	return func(cfg *config.AirlineConfig, deps Deps) (Adapter, error) {
		return NewSimulatedAdapter(cfg, scenario, deps)
	}
}

// Registry creates and caches one adapter per airline, wiring each to its
// configuration and the shared limiter, pacer and cache.
type Registry struct {
	mu           sync.RWMutex
	constructors map[string]Constructor
	adapters     map[string]Adapter
	types        map[string]string // airline -> adapter type used
	configs      *config.Registry
	deps         Deps
	defaultType  string
	logger       zerolog.Logger
}

func NewRegistry(configs *config.Registry, deps Deps, defaultType string) *Registry {
	return &Registry{
		constructors: make(map[string]Constructor),
		adapters:     make(map[string]Adapter),
		types:        make(map[string]string),
		configs:      configs,
		deps:         deps,
		defaultType:  defaultType,
		logger:       deps.Logger.With().Str("component", "adapters").Logger(),
	}
}

// Register adds an adapter type to the registration table.
func (r *Registry) Register(adapterType string, ctor Constructor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.constructors[adapterType] = ctor
}

// CreateAdapter returns the cached adapter for the airline, constructing it
// on first use. Repeated calls with the same airline return the same
// instance. An empty adapterType uses the registry default.
func (r *Registry) CreateAdapter(airline, adapterType string) (Adapter, error) {
	if adapterType == "" {
		adapterType = r.defaultType
	}

	r.mu.RLock()
	if a, ok := r.adapters[airline]; ok {
		r.mu.RUnlock()
		return a, nil
	}
	ctor, ok := r.constructors[adapterType]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown adapter type %q", adapterType)
	}

	cfg, err := r.configs.Resolve(airline)
	if err != nil {
		return nil, err
	}

	if r.configs.CredentialsExpired(airline) {
		if err := r.configs.RefreshCredentials(airline); err != nil {
			r.logger.Warn().Err(err).Str("airline", airline).
				Msg("credential refresh failed, constructing adapter with stale credentials")
		} else if fresh := r.configs.Get(airline); fresh != nil {
			cfg = fresh
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if a, ok := r.adapters[airline]; ok {
		return a, nil
	}

	a, err := ctor(cfg, r.deps)
	if err != nil {
		return nil, fmt.Errorf("construct adapter for %s: %w", airline, err)
	}
	r.installLimits(airline, cfg)
	r.adapters[airline] = a
	r.types[airline] = adapterType
	r.logger.Info().Str("airline", airline).Str("type", adapterType).Msg("adapter constructed")
	return a, nil
}

// GetAdapter is CreateAdapter with the default type.
func (r *Registry) GetAdapter(airline string) (Adapter, error) {
	return r.CreateAdapter(airline, "")
}

// installLimits pushes the airline's configured rate limits into the shared
// window limiter so admission control enforces them instead of the process
// defaults.
func (r *Registry) installLimits(airline string, cfg *config.AirlineConfig) {
	if r.deps.Limiter == nil {
		return
	}
	r.deps.Limiter.SetLimits(airline, ratelimit.Limits{
		PerMinute: cfg.RateLimits.PerMinute,
		PerHour:   cfg.RateLimits.PerHour,
	})
}

// UpdateAirlineConfig applies a configuration update and evicts the cached
// adapter so the next CreateAdapter rebuilds it with the new configuration.
func (r *Registry) UpdateAirlineConfig(airline string, upd config.Update) error {
	if r.configs.Get(airline) == nil {
		if _, err := r.configs.Resolve(airline); err != nil {
			return err
		}
	}
	if err := r.configs.Update(airline, upd); err != nil {
		return err
	}
	if cfg := r.configs.Get(airline); cfg != nil {
		r.installLimits(airline, cfg)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.adapters, airline)
	return nil
}

// RemoveAirline drops the airline's adapter, configuration and limit
// override.
func (r *Registry) RemoveAirline(airline string) {
	r.configs.Remove(airline)
	if r.deps.Limiter != nil {
		r.deps.Limiter.ClearLimits(airline)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.adapters, airline)
	delete(r.types, airline)
}

// Airlines lists configured airlines.
func (r *Registry) Airlines() []string {
	return r.configs.Airlines()
}

// AdapterHealth checks one adapter with external timing.
func (r *Registry) AdapterHealth(ctx context.Context, airline string) Health {
	r.mu.RLock()
	a, ok := r.adapters[airline]
	r.mu.RUnlock()
	if !ok {
		return Health{Status: HealthNotInitialized, LastCheck: time.Now()}
	}

	start := time.Now()
	healthy := a.HealthCheck(ctx)
	elapsed := time.Since(start)

	h := Health{LastCheck: time.Now(), ResponseTime: &elapsed}
	if healthy {
		h.Status = HealthHealthy
	} else {
		h.Status = HealthUnhealthy
	}
	return h
}

// AllAdapterHealth checks every configured airline concurrently.
func (r *Registry) AllAdapterHealth(ctx context.Context) map[string]Health {
	airlines := r.Airlines()

	var mu sync.Mutex
	out := make(map[string]Health, len(airlines))

	g, gctx := errgroup.WithContext(ctx)
	for _, airline := range airlines {
		airline := airline
		g.Go(func() error {
			h := r.AdapterHealth(gctx, airline)
			mu.Lock()
			out[airline] = h
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return out
}

// RefreshAllCredentials refreshes every configured airline's credentials,
// returning the first failure but attempting all.
func (r *Registry) RefreshAllCredentials() error {
	var g errgroup.Group
	for _, airline := range r.Airlines() {
		airline := airline
		g.Go(func() error {
			if err := r.configs.RefreshCredentials(airline); err != nil {
				r.logger.Warn().Err(err).Str("airline", airline).Msg("credential refresh failed")
				return err
			}
			return nil
		})
	}
	return g.Wait()
}

// Cleanup tears down all cached adapters.
func (r *Registry) Cleanup() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.adapters = make(map[string]Adapter)
	r.types = make(map[string]string)
}
