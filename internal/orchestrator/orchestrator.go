// Package orchestrator fans a logical search out to all requested airline
// adapters, bounds concurrency and wall-clock time, and aggregates partial
// successes into one persisted result set.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/dharmasatrya/skyfare/internal/adapters"
	"github.com/dharmasatrya/skyfare/internal/config"
	"github.com/dharmasatrya/skyfare/internal/errs"
	"github.com/dharmasatrya/skyfare/internal/filter"
	"github.com/dharmasatrya/skyfare/internal/models"
	"github.com/dharmasatrya/skyfare/internal/optimizer"
	"github.com/dharmasatrya/skyfare/internal/progress"
	"github.com/dharmasatrya/skyfare/internal/store"
)

// AdapterSource is what the orchestrator needs from the adapter registry.
type AdapterSource interface {
	GetAdapter(airline string) (adapters.Adapter, error)
	AllAdapterHealth(ctx context.Context) map[string]adapters.Health
}

type Config struct {
	MaxConcurrentSearches int
	SearchTimeout         time.Duration
	MaxRetries            int
	RetryDelays           []time.Duration
}

func DefaultConfig() Config {
	return Config{
		MaxConcurrentSearches: 10,
		SearchTimeout:         15 * time.Second,
		MaxRetries:            2,
		RetryDelays: []time.Duration{
			100 * time.Millisecond,
			200 * time.Millisecond,
			400 * time.Millisecond,
		},
	}
}

// Result is what a caller gets back from one search.
type Result struct {
	SearchID     string                `json:"search_id"`
	Results      []models.FlightResult `json:"results"`
	TotalResults int                   `json:"total_results"`
	SearchTimeMs int64                 `json:"search_time_ms"`
	Sources      []string              `json:"sources"`
	Cached       bool                  `json:"cached"`
}

// Progress is a point-in-time view of a running or finished search.
type Progress struct {
	SearchID string       `json:"search_id"`
	Status   store.Status `json:"status"`
	Progress int          `json:"progress"`
}

// activeSearch is the orchestrator-owned bookkeeping for one in-flight
// search. Only the orchestrator mutates a given entry; the cancelled flag
// makes late adapter results discardable on arrival.
type activeSearch struct {
	id        string
	startedAt time.Time
	airlines  []string
	completed map[string]bool
	cancel    context.CancelFunc
	cancelled bool
}

type Orchestrator struct {
	source   AdapterSource
	searches store.SearchStore
	notifier progress.Notifier
	cfg      Config

	mu      sync.Mutex
	active  map[string]*activeSearch
	running int

	logger zerolog.Logger
}

func New(source AdapterSource, searches store.SearchStore, notifier progress.Notifier, cfg Config, logger zerolog.Logger) *Orchestrator {
	if notifier == nil {
		notifier = progress.NewNoopNotifier()
	}
	return &Orchestrator{
		source:   source,
		searches: searches,
		notifier: notifier,
		cfg:      cfg,
		active:   make(map[string]*activeSearch),
		logger:   logger.With().Str("component", "orchestrator").Logger(),
	}
}

type airlineResult struct {
	airline string
	resp    *models.AdapterResponse
	err     error
}

// SearchFlights runs one logical search across the requested airlines. One
// airline's failure never fails the others; the result is the union of all
// successful per-airline lists. The whole fan-out races a per-search
// timeout.
func (o *Orchestrator) SearchFlights(ctx context.Context, criteria models.SearchCriteria, airlines []string) (*Result, error) {
	start := time.Now()

	if err := criteria.Validate(); err != nil {
		return nil, err
	}
	if len(airlines) == 0 {
		return nil, fmt.Errorf("at least one airline is required")
	}

	// Admission first: reject before any work starts, never queue.
	o.mu.Lock()
	if o.running >= o.cfg.MaxConcurrentSearches {
		o.mu.Unlock()
		return nil, errs.ErrConcurrencyLimit
	}
	o.running++
	o.mu.Unlock()

	rec, err := o.searches.CreateSearch(ctx, criteria, airlines)
	if err != nil {
		o.mu.Lock()
		o.running--
		o.mu.Unlock()
		return nil, fmt.Errorf("create search record: %w", err)
	}

	searchCtx, cancel := context.WithTimeout(ctx, o.cfg.SearchTimeout)
	as := &activeSearch{
		id:        rec.ID,
		startedAt: start,
		airlines:  airlines,
		completed: make(map[string]bool, len(airlines)),
		cancel:    cancel,
	}
	o.mu.Lock()
	o.active[rec.ID] = as
	o.mu.Unlock()

	// The search leaves the active table on every path, success or not.
	defer func() {
		cancel()
		o.mu.Lock()
		delete(o.active, rec.ID)
		o.running--
		o.mu.Unlock()
	}()

	o.notifier.SearchProgress(rec.ID, store.StatusPending, 0)
	o.logger.Info().Str("search_id", rec.ID).Strs("airlines", airlines).Msg("search started")

	resultCh := make(chan airlineResult, len(airlines))
	for _, airline := range airlines {
		airline := airline
		go func() {
			resultCh <- o.queryAirline(searchCtx, airline, criteria)
		}()
	}

	var flights []models.FlightResult
	var sources []string
	allCached := true

	for done := 0; done < len(airlines); {
		select {
		case r := <-resultCh:
			o.mu.Lock()
			discard := as.cancelled
			if !discard {
				as.completed[r.airline] = true
			}
			o.mu.Unlock()
			if discard {
				o.logger.Debug().Str("search_id", rec.ID).Str("airline", r.airline).
					Msg("discarding late result for cancelled search")
				continue
			}

			done++
			if r.err != nil {
				o.logger.Warn().Err(r.err).Str("search_id", rec.ID).Str("airline", r.airline).
					Msg("airline excluded from search")
				allCached = false
			} else {
				flights = append(flights, r.resp.Flights...)
				sources = append(sources, r.airline)
				if !r.resp.Cached {
					allCached = false
				}
			}
			o.notifier.SearchProgress(rec.ID, store.StatusPending, done*100/len(airlines))

		case <-searchCtx.Done():
			o.mu.Lock()
			cancelled := as.cancelled
			o.mu.Unlock()

			if cancelled {
				return nil, errs.ErrSearchCancelled
			}
			// A cancelled caller context is not a timeout.
			if !errors.Is(context.Cause(searchCtx), context.DeadlineExceeded) {
				o.finish(rec.ID, store.StatusCancelled, nil, nil)
				return nil, errs.ErrSearchCancelled
			}
			o.finish(rec.ID, store.StatusError, nil, nil)
			return nil, errs.ErrSearchTimeout
		}
	}

	if len(sources) == 0 {
		o.finish(rec.ID, store.StatusError, nil, nil)
		return nil, errs.ErrAllAirlinesFailed
	}

	sort.Strings(sources)
	scored := optimizer.ScoreResults(flights)
	o.finish(rec.ID, store.StatusCompleted, scored, sources)

	return &Result{
		SearchID:     rec.ID,
		Results:      scored,
		TotalResults: len(scored),
		SearchTimeMs: time.Since(start).Milliseconds(),
		Sources:      sources,
		Cached:       allCached && len(scored) > 0,
	}, nil
}

// queryAirline obtains the airline's adapter and calls it with retry per the
// orchestrator policy. Errors come back wrapped, never panic the fan-out.
func (o *Orchestrator) queryAirline(ctx context.Context, airline string, criteria models.SearchCriteria) airlineResult {
	adapter, err := o.source.GetAdapter(airline)
	if err != nil {
		return airlineResult{airline: airline, err: errs.NewAdapterError(airline, err)}
	}

	req := &models.AdapterRequest{
		Criteria:  criteria,
		RequestID: uuid.NewString(),
		Timestamp: time.Now(),
	}

	resp, err := o.searchWithRetry(ctx, adapter, req)
	return airlineResult{airline: airline, resp: resp, err: err}
}

func (o *Orchestrator) searchWithRetry(ctx context.Context, adapter adapters.Adapter, req *models.AdapterRequest) (*models.AdapterResponse, error) {
	maxRetries, delayFor := o.retryPlan(adapter.RetryPolicy())

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		if attempt > 0 {
			select {
			case <-time.After(delayFor(attempt)):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		resp, err := adapter.SearchFlights(ctx, req)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		// Retrying a rejected admission immediately cannot succeed.
		if errors.Is(err, errs.ErrRateLimitExceeded) {
			break
		}
	}

	return nil, lastErr
}

// retryPlan turns the airline's retry policy into an attempt budget and a
// per-attempt delay. Adapters carrying no policy fall back to the
// orchestrator defaults.
func (o *Orchestrator) retryPlan(policy config.RetryPolicy) (int, func(attempt int) time.Duration) {
	if policy.InitialDelay > 0 {
		mult := policy.BackoffMultiplier
		if mult <= 0 {
			mult = 1
		}
		return policy.MaxRetries, func(attempt int) time.Duration {
			return time.Duration(float64(policy.InitialDelay) * math.Pow(mult, float64(attempt-1)))
		}
	}

	return o.cfg.MaxRetries, func(attempt int) time.Duration {
		if len(o.cfg.RetryDelays) == 0 {
			return 0
		}
		idx := attempt - 1
		if idx >= len(o.cfg.RetryDelays) {
			idx = len(o.cfg.RetryDelays) - 1
		}
		return o.cfg.RetryDelays[idx]
	}
}

// finish persists the terminal state and emits the final progress event. It
// uses a detached context so a dead search context cannot orphan the record.
func (o *Orchestrator) finish(searchID string, status store.Status, results []models.FlightResult, sources []string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	upd := store.Update{Status: &status}
	if results != nil {
		upd.Results = results
	}
	if sources != nil {
		upd.Sources = sources
	}
	if _, err := o.searches.UpdateSearch(ctx, searchID, upd); err != nil {
		o.logger.Error().Err(err).Str("search_id", searchID).Msg("failed to persist search state")
	}

	o.notifier.SearchProgress(searchID, status, 100)
	o.logger.Info().Str("search_id", searchID).Str("status", string(status)).Msg("search finished")
}

// CancelSearch flips an active search to cancelled. In-flight adapter calls
// get their context cancelled best-effort; whatever still arrives is
// discarded on arrival rather than applied.
func (o *Orchestrator) CancelSearch(ctx context.Context, searchID string) bool {
	o.mu.Lock()
	as, ok := o.active[searchID]
	if ok {
		as.cancelled = true
	}
	o.mu.Unlock()
	if !ok {
		return false
	}

	as.cancel()
	status := store.StatusCancelled
	if _, err := o.searches.UpdateSearch(ctx, searchID, store.Update{Status: &status}); err != nil {
		o.logger.Error().Err(err).Str("search_id", searchID).Msg("failed to persist cancellation")
	}
	o.notifier.SearchProgress(searchID, store.StatusCancelled, 100)
	return true
}

// GetSearchProgress reports a search's progress, or nil for unknown ids.
func (o *Orchestrator) GetSearchProgress(ctx context.Context, searchID string) (*Progress, error) {
	o.mu.Lock()
	if as, ok := o.active[searchID]; ok {
		p := &Progress{
			SearchID: searchID,
			Status:   store.StatusPending,
			Progress: len(as.completed) * 100 / len(as.airlines),
		}
		if as.cancelled {
			p.Status = store.StatusCancelled
		}
		o.mu.Unlock()
		return p, nil
	}
	o.mu.Unlock()

	rec, err := o.searches.GetSearch(ctx, searchID)
	if err != nil || rec == nil {
		return nil, err
	}
	return &Progress{SearchID: searchID, Status: rec.Status, Progress: 100}, nil
}

// FilterSearchResults narrows the stored result set of a completed search.
// It never re-queries adapters.
func (o *Orchestrator) FilterSearchResults(ctx context.Context, searchID string, filters *models.SearchFilters) ([]models.FlightResult, error) {
	rec, err := o.loadResults(ctx, searchID)
	if err != nil {
		return nil, err
	}

	filtered := filter.Apply(rec.Results, filters, "", "")
	o.notifier.SearchFiltered(searchID, filters, len(rec.Results), len(filtered))
	return filtered, nil
}

// SortSearchResults orders the stored result set of a completed search.
func (o *Orchestrator) SortSearchResults(ctx context.Context, searchID, sortBy, sortOrder string) ([]models.FlightResult, error) {
	rec, err := o.loadResults(ctx, searchID)
	if err != nil {
		return nil, err
	}

	sorted := filter.Sort(rec.Results, sortBy, sortOrder)
	o.notifier.SearchSorted(searchID, sortBy, sortOrder, sorted)
	return sorted, nil
}

func (o *Orchestrator) loadResults(ctx context.Context, searchID string) (*store.Record, error) {
	rec, err := o.searches.GetSearch(ctx, searchID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, errs.ErrSearchNotFound
	}
	if len(rec.Results) == 0 {
		return nil, errs.ErrSearchEmpty
	}
	return rec, nil
}

// HealthReport aggregates adapter health with orchestrator load.
type HealthReport struct {
	Status         string                     `json:"status"` // healthy, degraded, unhealthy
	ActiveSearches int                        `json:"active_searches"`
	Adapters       map[string]adapters.Health `json:"adapters"`
}

func (o *Orchestrator) HealthCheck(ctx context.Context) HealthReport {
	o.mu.Lock()
	activeCount := len(o.active)
	o.mu.Unlock()

	health := o.source.AllAdapterHealth(ctx)

	healthy := 0
	for _, h := range health {
		if h.Status == adapters.HealthHealthy {
			healthy++
		}
	}

	status := "healthy"
	switch {
	case len(health) == 0 || healthy == 0:
		status = "unhealthy"
	case healthy < len(health):
		status = "degraded"
	}

	return HealthReport{
		Status:         status,
		ActiveSearches: activeCount,
		Adapters:       health,
	}
}
