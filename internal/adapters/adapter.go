// Package adapters defines the airline adapter contract, a simulated
// reference implementation, and the factory registry that owns one adapter
// instance per airline.
package adapters

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/dharmasatrya/skyfare/internal/cache"
	"github.com/dharmasatrya/skyfare/internal/config"
	"github.com/dharmasatrya/skyfare/internal/models"
	"github.com/dharmasatrya/skyfare/internal/ratelimit"
)

// Status is an adapter's self-reported operational state.
type Status struct {
	Healthy             bool          `json:"is_healthy"`
	ErrorRate           float64       `json:"error_rate"`
	AverageResponseTime time.Duration `json:"average_response_time"`
	LastSuccess         *time.Time    `json:"last_successful_request,omitempty"`
}

// Adapter is the one capability set every airline integration implements.
type Adapter interface {
	Name() string
	SearchFlights(ctx context.Context, req *models.AdapterRequest) (*models.AdapterResponse, error)
	HealthCheck(ctx context.Context) bool
	Status() Status
	ValidateConfig() error
	UpdateConfig(upd config.Update) error
	// RetryPolicy exposes the airline's configured retry schedule so the
	// caller can drive per-airline attempts and delays.
	RetryPolicy() config.RetryPolicy
}

// Deps carries the shared resources every adapter is wired to.
type Deps struct {
	Limiter *ratelimit.WindowLimiter
	Pacer   *ratelimit.Pacer
	Cache   *cache.ResponseCache
	Logger  zerolog.Logger
}

// statsTracker accumulates per-adapter request statistics.
type statsTracker struct {
	mu           sync.Mutex
	total        int64
	failures     int64
	totalLatency time.Duration
	lastSuccess  time.Time
}

func (t *statsTracker) record(latency time.Duration, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.total++
	t.totalLatency += latency
	if err != nil {
		t.failures++
	} else {
		t.lastSuccess = time.Now()
	}
}

func (t *statsTracker) snapshot() Status {
	t.mu.Lock()
	defer t.mu.Unlock()

	st := Status{Healthy: true}
	if t.total > 0 {
		st.ErrorRate = float64(t.failures) / float64(t.total)
		st.AverageResponseTime = t.totalLatency / time.Duration(t.total)
	}
	if st.ErrorRate > 0.5 {
		st.Healthy = false
	}
	if !t.lastSuccess.IsZero() {
		ts := t.lastSuccess
		st.LastSuccess = &ts
	}
	return st
}
