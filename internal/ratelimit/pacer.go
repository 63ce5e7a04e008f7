package ratelimit

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

// PacerConfig bounds the short-term request rate toward one airline backend.
type PacerConfig struct {
	RequestsPerSecond float64
	Burst             int
}

func DefaultPacerConfig() PacerConfig {
	return PacerConfig{RequestsPerSecond: 10, Burst: 20}
}

// Pacer smooths bursts toward each airline backend after window admission.
// One token bucket per airline, created lazily with the default config.
type Pacer struct {
	mu       sync.RWMutex
	buckets  map[string]*rate.Limiter
	defaults PacerConfig
}

func NewPacer(defaults PacerConfig) *Pacer {
	return &Pacer{
		buckets:  make(map[string]*rate.Limiter),
		defaults: defaults,
	}
}

func (p *Pacer) bucket(airline string) *rate.Limiter {
	p.mu.RLock()
	b, ok := p.buckets[airline]
	p.mu.RUnlock()
	if ok {
		return b
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if b, ok = p.buckets[airline]; ok {
		return b
	}
	b = rate.NewLimiter(rate.Limit(p.defaults.RequestsPerSecond), p.defaults.Burst)
	p.buckets[airline] = b
	return b
}

// SetAirlineRate replaces the bucket for one airline.
func (p *Pacer) SetAirlineRate(airline string, rps float64, burst int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.buckets[airline] = rate.NewLimiter(rate.Limit(rps), burst)
}

// Wait blocks until the airline's bucket admits one request or the context
// is done.
func (p *Pacer) Wait(ctx context.Context, airline string) error {
	return p.bucket(airline).Wait(ctx)
}
