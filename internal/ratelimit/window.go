// Package ratelimit provides per-airline admission control: fixed expiring
// window counters over a shared counter store, plus a token-bucket pacer for
// smoothing admitted bursts.
package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const (
	minuteWindow = time.Minute
	hourWindow   = time.Hour
)

// CounterStore is the shared counter backend. It must support atomic
// increments because counters are shared across all concurrent searches.
type CounterStore interface {
	// Increment adds one to the counter, creating it with the given expiry
	// when absent, and returns the new count.
	Increment(ctx context.Context, key string, expiry time.Duration) (int64, error)
	// Count returns the current count, zero when the counter is absent or
	// expired.
	Count(ctx context.Context, key string) (int64, error)
}

type Limits struct {
	PerMinute int
	PerHour   int
}

func DefaultLimits() Limits {
	return Limits{PerMinute: 60, PerHour: 1000}
}

// WindowLimiter tracks a current-minute and a current-hour counter per
// airline, each expiring independently. CheckLimit is advisory only: callers
// increment themselves after a successful admission decision, so the pair of
// calls is not atomic and counts may briefly overshoot by the number of
// in-flight checks.
//
// When the counter store is unreachable the limiter fails closed: requests
// are refused rather than admitted unbounded.
type WindowLimiter struct {
	store    CounterStore
	mu       sync.RWMutex
	limits   map[string]Limits
	defaults Limits
	logger   zerolog.Logger
}

func NewWindowLimiter(store CounterStore, defaults Limits, logger zerolog.Logger) *WindowLimiter {
	return &WindowLimiter{
		store:    store,
		limits:   make(map[string]Limits),
		defaults: defaults,
		logger:   logger.With().Str("component", "ratelimit").Logger(),
	}
}

// SetLimits overrides the limits for one airline. Airlines without an
// override use the defaults.
func (l *WindowLimiter) SetLimits(airline string, limits Limits) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.limits[airline] = limits
}

// ClearLimits drops an airline's override so it falls back to the defaults.
func (l *WindowLimiter) ClearLimits(airline string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.limits, airline)
}

func (l *WindowLimiter) limitsFor(airline string) Limits {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if lim, ok := l.limits[airline]; ok {
		return lim
	}
	return l.defaults
}

func minuteKey(airline string) string { return fmt.Sprintf("ratelimit:%s:minute", airline) }
func hourKey(airline string) string   { return fmt.Sprintf("ratelimit:%s:hour", airline) }

// CheckLimit reports whether one more request for the airline would stay
// within both windows.
func (l *WindowLimiter) CheckLimit(ctx context.Context, airline string) (bool, error) {
	limits := l.limitsFor(airline)

	minute, err := l.store.Count(ctx, minuteKey(airline))
	if err != nil {
		l.logger.Warn().Err(err).Str("airline", airline).Msg("counter store unreachable, failing closed")
		return false, err
	}
	hour, err := l.store.Count(ctx, hourKey(airline))
	if err != nil {
		l.logger.Warn().Err(err).Str("airline", airline).Msg("counter store unreachable, failing closed")
		return false, err
	}

	return minute < int64(limits.PerMinute) && hour < int64(limits.PerHour), nil
}

// IncrementCounter records one admitted request in both windows.
func (l *WindowLimiter) IncrementCounter(ctx context.Context, airline string) error {
	if _, err := l.store.Increment(ctx, minuteKey(airline), minuteWindow); err != nil {
		return err
	}
	if _, err := l.store.Increment(ctx, hourKey(airline), hourWindow); err != nil {
		return err
	}
	return nil
}

// RemainingRequests returns how many more requests the airline may make
// before hitting the tighter of its two windows.
func (l *WindowLimiter) RemainingRequests(ctx context.Context, airline string) (int, error) {
	limits := l.limitsFor(airline)

	minute, err := l.store.Count(ctx, minuteKey(airline))
	if err != nil {
		return 0, err
	}
	hour, err := l.store.Count(ctx, hourKey(airline))
	if err != nil {
		return 0, err
	}

	remMinute := int64(limits.PerMinute) - minute
	remHour := int64(limits.PerHour) - hour

	rem := remMinute
	if remHour < rem {
		rem = remHour
	}
	if rem < 0 {
		rem = 0
	}
	return int(rem), nil
}
