// Package config loads, validates, encrypts and refreshes per-airline
// configuration.
package config

import (
	"time"

	"github.com/dharmasatrya/skyfare/internal/errs"
)

type RetryPolicy struct {
	MaxRetries        int           `json:"max_retries"`
	BackoffMultiplier float64       `json:"backoff_multiplier"`
	InitialDelay      time.Duration `json:"initial_delay"`
}

type RateLimits struct {
	PerMinute int `json:"per_minute"`
	PerHour   int `json:"per_hour"`
}

// CredentialState is the lifecycle of one credential set.
type CredentialState string

const (
	CredentialValid        CredentialState = "valid"
	CredentialExpiringSoon CredentialState = "expiring-soon"
	CredentialExpired      CredentialState = "expired"
)

// expiringSoonWindow is how far ahead of expiry a credential set is reported
// as expiring-soon.
const expiringSoonWindow = 10 * time.Minute

type Credentials struct {
	APIKey    string     `json:"api_key"`
	APISecret string     `json:"api_secret,omitempty"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// State classifies the credentials at the given instant. Credentials without
// an expiry never expire.
func (c Credentials) State(now time.Time) CredentialState {
	if c.ExpiresAt == nil {
		return CredentialValid
	}
	if !now.Before(*c.ExpiresAt) {
		return CredentialExpired
	}
	if now.Add(expiringSoonWindow).After(*c.ExpiresAt) {
		return CredentialExpiringSoon
	}
	return CredentialValid
}

func (c Credentials) Expired(now time.Time) bool {
	return c.State(now) == CredentialExpired
}

// AirlineConfig is the full configuration for one airline integration. The
// registry stores credentials encrypted; the decrypted view handed to
// callers is never persisted.
type AirlineConfig struct {
	Airline     string        `json:"airline"`
	BaseURL     string        `json:"base_url"`
	Timeout     time.Duration `json:"timeout"`
	RateLimits  RateLimits    `json:"rate_limits"`
	Retry       RetryPolicy   `json:"retry"`
	Environment string        `json:"environment"`
	Version     int           `json:"version"`
	LastUpdated time.Time     `json:"last_updated"`
	Credentials Credentials   `json:"credentials"`
}

func (c *AirlineConfig) Validate() error {
	if c.Airline == "" {
		return &errs.ConfigValidationError{Airline: c.Airline, Field: "airline", Reason: "must not be empty"}
	}
	if c.BaseURL == "" {
		return &errs.ConfigValidationError{Airline: c.Airline, Field: "base_url", Reason: "must not be empty"}
	}
	if c.Timeout <= 0 {
		return &errs.ConfigValidationError{Airline: c.Airline, Field: "timeout", Reason: "must be positive"}
	}
	if c.RateLimits.PerMinute <= 0 || c.RateLimits.PerHour <= 0 {
		return &errs.ConfigValidationError{Airline: c.Airline, Field: "rate_limits", Reason: "must be positive"}
	}
	if c.Retry.MaxRetries < 0 {
		return &errs.ConfigValidationError{Airline: c.Airline, Field: "retry.max_retries", Reason: "must not be negative"}
	}
	if c.Retry.InitialDelay < 0 {
		return &errs.ConfigValidationError{Airline: c.Airline, Field: "retry.initial_delay", Reason: "must not be negative"}
	}
	if c.Retry.BackoffMultiplier < 0 {
		return &errs.ConfigValidationError{Airline: c.Airline, Field: "retry.backoff_multiplier", Reason: "must not be negative"}
	}
	return nil
}

// Update is a partial configuration update. Nil fields keep their current
// values.
type Update struct {
	BaseURL     *string        `json:"base_url,omitempty"`
	Timeout     *time.Duration `json:"timeout,omitempty"`
	RateLimits  *RateLimits    `json:"rate_limits,omitempty"`
	Retry       *RetryPolicy   `json:"retry,omitempty"`
	Environment *string        `json:"environment,omitempty"`
	Credentials *Credentials   `json:"credentials,omitempty"`
}
