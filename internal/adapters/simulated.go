package adapters

import (
	"context"
	"fmt"
	"hash/fnv"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/dharmasatrya/skyfare/internal/cache"
	"github.com/dharmasatrya/skyfare/internal/config"
	"github.com/dharmasatrya/skyfare/internal/errs"
	"github.com/dharmasatrya/skyfare/internal/geo"
	"github.com/dharmasatrya/skyfare/internal/models"
)

// Scenario selects deterministic behavior for the simulated backend,
// independent of the real search path.
type Scenario string

const (
	ScenarioDefault     Scenario = "default"
	ScenarioNoFlights   Scenario = "no-flights"
	ScenarioExpensive   Scenario = "expensive"
	ScenarioSlow        Scenario = "slow"
	ScenarioUnavailable Scenario = "unavailable"
)

// SimulatedAdapter is the reference adapter implementation. Its backend is a
// deterministic generator: the same criteria, airline and scenario always
// produce the same flights, which keeps the orchestration paths testable.
type SimulatedAdapter struct {
	name     string
	mu       sync.RWMutex
	cfg      config.AirlineConfig
	scenario Scenario
	deps     Deps
	stats    statsTracker
	group    singleflight.Group
	logger   zerolog.Logger
}

func NewSimulatedAdapter(cfg *config.AirlineConfig, scenario Scenario, deps Deps) (*SimulatedAdapter, error) {
	if scenario == "" {
		scenario = ScenarioDefault
	}
	a := &SimulatedAdapter{
		name:     cfg.Airline,
		cfg:      *cfg,
		scenario: scenario,
		deps:     deps,
		logger:   deps.Logger.With().Str("adapter", cfg.Airline).Logger(),
	}
	if err := a.ValidateConfig(); err != nil {
		return nil, err
	}
	return a, nil
}

func (a *SimulatedAdapter) Name() string {
	return a.name
}

func (a *SimulatedAdapter) ValidateConfig() error {
	a.mu.RLock()
	defer a.mu.RUnlock()
	cfg := a.cfg
	return cfg.Validate()
}

func (a *SimulatedAdapter) UpdateConfig(upd config.Update) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	cfg := a.cfg
	if upd.BaseURL != nil {
		cfg.BaseURL = *upd.BaseURL
	}
	if upd.Timeout != nil {
		cfg.Timeout = *upd.Timeout
	}
	if upd.RateLimits != nil {
		cfg.RateLimits = *upd.RateLimits
	}
	if upd.Retry != nil {
		cfg.Retry = *upd.Retry
	}
	if upd.Environment != nil {
		cfg.Environment = *upd.Environment
	}
	if upd.Credentials != nil {
		cfg.Credentials = *upd.Credentials
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	cfg.Version = a.cfg.Version + 1
	cfg.LastUpdated = time.Now()
	a.cfg = cfg
	return nil
}

func (a *SimulatedAdapter) config() config.AirlineConfig {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.cfg
}

func (a *SimulatedAdapter) RetryPolicy() config.RetryPolicy {
	return a.config().Retry
}

// SearchFlights runs the mandated path: cache first, then admission control,
// then the backend, then cache write-back. A cache hit skips the limiter
// entirely.
func (a *SimulatedAdapter) SearchFlights(ctx context.Context, req *models.AdapterRequest) (*models.AdapterResponse, error) {
	start := time.Now()

	// One call never outlives the airline's configured timeout, whatever
	// deadline the caller carries.
	ctx, cancel := context.WithTimeout(ctx, a.config().Timeout)
	defer cancel()

	key := cache.GenerateKey(req.Criteria, a.name)

	if cached, ok := a.deps.Cache.Get(ctx, key); ok {
		resp := *cached
		resp.RequestID = req.RequestID
		resp.Cached = true
		a.stats.record(time.Since(start), nil)
		return &resp, nil
	}

	allowed, err := a.deps.Limiter.CheckLimit(ctx, a.name)
	if err != nil || !allowed {
		rlErr := errs.NewAdapterError(a.name, errs.ErrRateLimitExceeded)
		a.stats.record(time.Since(start), rlErr)
		return nil, rlErr
	}
	if err := a.deps.Limiter.IncrementCounter(ctx, a.name); err != nil {
		a.logger.Warn().Err(err).Msg("failed to record admitted request")
	}

	if err := a.deps.Pacer.Wait(ctx, a.name); err != nil {
		aerr := errs.NewAdapterError(a.name, err)
		a.stats.record(time.Since(start), aerr)
		return nil, aerr
	}

	// Collapse concurrent identical searches into one backend call.
	v, err, _ := a.group.Do(key, func() (interface{}, error) {
		flights, err := a.backendSearch(ctx, req.Criteria)
		if err != nil {
			return nil, err
		}

		resp := &models.AdapterResponse{
			RequestID:    req.RequestID,
			Flights:      flights,
			TotalResults: len(flights),
			SearchTimeMs: time.Since(start).Milliseconds(),
			Currency:     "USD",
			Timestamp:    time.Now(),
			Source:       a.name,
		}

		if err := a.deps.Cache.Set(ctx, key, resp, 0); err != nil {
			a.logger.Warn().Err(err).Msg("failed to cache response")
		}
		return resp, nil
	})
	if err != nil {
		aerr := errs.NewAdapterError(a.name, err)
		a.stats.record(time.Since(start), aerr)
		return nil, aerr
	}

	resp := *(v.(*models.AdapterResponse))
	resp.RequestID = req.RequestID
	a.stats.record(time.Since(start), nil)
	return &resp, nil
}

func (a *SimulatedAdapter) HealthCheck(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return false
	case <-time.After(5 * time.Millisecond):
	}
	return a.scenario != ScenarioUnavailable
}

func (a *SimulatedAdapter) Status() Status {
	st := a.stats.snapshot()
	if a.scenario == ScenarioUnavailable {
		st.Healthy = false
	}
	return st
}

// backendSearch is the simulated airline backend.
func (a *SimulatedAdapter) backendSearch(ctx context.Context, criteria models.SearchCriteria) ([]models.FlightResult, error) {
	switch a.scenario {
	case ScenarioUnavailable:
		return nil, fmt.Errorf("backend unavailable")
	case ScenarioSlow:
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(time.Hour):
		}
	case ScenarioNoFlights:
		if err := a.simulateLatency(ctx); err != nil {
			return nil, err
		}
		return []models.FlightResult{}, nil
	}

	if err := a.simulateLatency(ctx); err != nil {
		return nil, err
	}

	return a.generateFlights(criteria), nil
}

func (a *SimulatedAdapter) simulateLatency(ctx context.Context) error {
	rng := a.rng("latency")
	delay := time.Duration(20+rng.Intn(40)) * time.Millisecond
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(delay):
		return nil
	}
}

// rng seeds deterministically from the airline, scenario and a salt, so a
// scenario replays identically.
func (a *SimulatedAdapter) rng(salt string) *rand.Rand {
	h := fnv.New64a()
	h.Write([]byte(a.name))
	h.Write([]byte(a.scenario))
	h.Write([]byte(salt))
	return rand.New(rand.NewSource(int64(h.Sum64())))
}

func (a *SimulatedAdapter) generateFlights(criteria models.SearchCriteria) []models.FlightResult {
	seed := strings.Join([]string{
		criteria.Origin, criteria.Destination, criteria.DepartureDate, criteria.CabinClass,
	}, "|")
	rng := a.rng(seed)

	miles, ok := geo.DistanceMiles(criteria.Origin, criteria.Destination)
	if !ok {
		miles = 1000
	}

	day, err := time.Parse("2006-01-02", criteria.DepartureDate)
	if err != nil {
		day = time.Now().AddDate(0, 0, 1).Truncate(24 * time.Hour)
	}

	priceMultiplier := 1.0
	if a.scenario == ScenarioExpensive {
		priceMultiplier = 3.0
	}
	switch strings.ToLower(criteria.CabinClass) {
	case "business":
		priceMultiplier *= 3.2
	case "first":
		priceMultiplier *= 5.5
	case "premium_economy", "premium":
		priceMultiplier *= 1.6
	}

	var results []models.FlightResult

	directs := 1 + rng.Intn(2)
	for i := 0; i < directs; i++ {
		dep := day.Add(time.Duration(6+rng.Intn(14)) * time.Hour).Add(time.Duration(rng.Intn(12)*5) * time.Minute)
		flightMinutes := int(miles/500*60) + 40 + rng.Intn(20)
		arr := dep.Add(time.Duration(flightMinutes) * time.Minute)

		seg := models.RouteSegment{
			Airline:         a.name,
			FlightNumber:    fmt.Sprintf("%s%d", flightCode(a.name), 100+rng.Intn(900)),
			Origin:          strings.ToUpper(criteria.Origin),
			Destination:     strings.ToUpper(criteria.Destination),
			Departure:       dep,
			Arrival:         arr,
			DurationMinutes: flightMinutes,
			Aircraft:        aircraftFor(miles, rng),
		}

		results = append(results, a.buildResult(rng, criteria, []models.RouteSegment{seg}, miles, priceMultiplier))
	}

	if via, ok := connectingHub(criteria.Origin, criteria.Destination); ok {
		legA, okA := geo.DistanceMiles(criteria.Origin, via)
		legB, okB := geo.DistanceMiles(via, criteria.Destination)
		if okA && okB {
			dep := day.Add(time.Duration(7+rng.Intn(10)) * time.Hour)
			m1 := int(legA/500*60) + 40
			layover := 60 + rng.Intn(120)
			m2 := int(legB/500*60) + 40

			first := models.RouteSegment{
				Airline:         a.name,
				FlightNumber:    fmt.Sprintf("%s%d", flightCode(a.name), 100+rng.Intn(900)),
				Origin:          strings.ToUpper(criteria.Origin),
				Destination:     via,
				Departure:       dep,
				Arrival:         dep.Add(time.Duration(m1) * time.Minute),
				DurationMinutes: m1,
				Aircraft:        aircraftFor(legA, rng),
			}
			secondDep := first.Arrival.Add(time.Duration(layover) * time.Minute)
			second := models.RouteSegment{
				Airline:         a.name,
				FlightNumber:    fmt.Sprintf("%s%d", flightCode(a.name), 100+rng.Intn(900)),
				Origin:          via,
				Destination:     strings.ToUpper(criteria.Destination),
				Departure:       secondDep,
				Arrival:         secondDep.Add(time.Duration(m2) * time.Minute),
				DurationMinutes: m2,
				Aircraft:        aircraftFor(legB, rng),
			}

			// Connections price off leg mileage with a discount.
			results = append(results, a.buildResult(rng, criteria,
				[]models.RouteSegment{first, second}, (legA+legB)*0.82, priceMultiplier))
		}
	}

	return results
}

func (a *SimulatedAdapter) buildResult(rng *rand.Rand, criteria models.SearchCriteria, route []models.RouteSegment, priceMiles, multiplier float64) models.FlightResult {
	cabin := criteria.CabinClass
	if cabin == "" {
		cabin = "economy"
	}
	base := (55 + priceMiles*0.11 + float64(rng.Intn(60))) * multiplier
	taxes := base * 0.12
	fees := 5.60 + float64(rng.Intn(20))

	result := models.FlightResult{
		ID:      fmt.Sprintf("%s-%s-%s-%d", a.name, criteria.Origin, criteria.Destination, rng.Intn(100000)),
		Airline: a.name,
		Route:   route,
		Pricing: models.PricingInfo{
			Amount:   round2(base),
			Currency: "USD",
			Taxes:    round2(taxes),
			Fees:     round2(fees),
			PointsOptions: []models.PointsOption{
				{
					Program:      a.name + "-miles",
					Points:       int(base) * 100,
					TaxesAndFees: round2(taxes + fees),
				},
			},
		},
		Availability: models.AvailabilityInfo{
			AvailableSeats: 1 + rng.Intn(9),
			BookingClass:   string(rune('K' + rng.Intn(5))),
			FareBasis:      fmt.Sprintf("%sOW%s", flightCode(a.name), strings.ToUpper(cabin[:1])),
		},
		Source: a.name,
	}
	result.Normalize()
	return result
}

func round2(v float64) float64 {
	return float64(int(v*100+0.5)) / 100
}

// flightCode derives a two-letter marketing code from the airline name.
func flightCode(name string) string {
	cleaned := strings.ToUpper(name)
	if len(cleaned) >= 2 {
		return cleaned[:2]
	}
	return "XX"
}

func aircraftFor(miles float64, rng *rand.Rand) string {
	short := []string{"A320neo", "B737-800", "E195"}
	long := []string{"B787-9", "A350-900", "B777-300ER"}
	if miles > 2800 {
		return long[rng.Intn(len(long))]
	}
	return short[rng.Intn(len(short))]
}

// connectingHub picks a hub that is a plausible intermediate point.
func connectingHub(origin, destination string) (string, bool) {
	direct, ok := geo.DistanceMiles(origin, destination)
	if !ok {
		return "", false
	}

	best := ""
	bestDetour := direct * 0.45 // tolerate up to 45% extra flying
	for _, hub := range []string{"ATL", "ORD", "DFW", "DEN", "LHR", "FRA", "IST", "DXB", "SIN", "ICN"} {
		if hub == strings.ToUpper(origin) || hub == strings.ToUpper(destination) {
			continue
		}
		a, okA := geo.DistanceMiles(origin, hub)
		b, okB := geo.DistanceMiles(hub, destination)
		if !okA || !okB {
			continue
		}
		detour := a + b - direct
		if detour < bestDetour {
			best = hub
			bestDetour = detour
		}
	}
	return best, best != ""
}
