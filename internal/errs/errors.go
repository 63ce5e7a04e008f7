// Package errs carries the error taxonomy shared across the search core.
package errs

import (
	"errors"
	"fmt"
)

var (
	// ErrRateLimitExceeded rejects one airline from the current search; it is
	// never fatal to the search itself.
	ErrRateLimitExceeded = errors.New("rate limit exceeded")

	// ErrCredentialExpired is soft: it triggers a refresh, not request failure.
	ErrCredentialExpired = errors.New("credentials expired")

	// ErrConcurrencyLimit rejects a new search before any work starts.
	ErrConcurrencyLimit = errors.New("concurrent search limit reached")

	ErrSearchTimeout     = errors.New("search timed out")
	ErrSearchCancelled   = errors.New("search cancelled")
	ErrSearchNotFound    = errors.New("search not found")
	ErrSearchEmpty       = errors.New("search holds no results")
	ErrAllAirlinesFailed = errors.New("no airline returned results")

	ErrNoResultsToOptimize = errors.New("no flight results to optimize")
	ErrMalformedFlight     = errors.New("flight result has an empty route")
)

// ConfigValidationError marks a malformed airline configuration. It is fatal
// to that airline's adapter construction only.
type ConfigValidationError struct {
	Airline string
	Field   string
	Reason  string
}

func (e *ConfigValidationError) Error() string {
	return fmt.Sprintf("invalid configuration for %s: %s %s", e.Airline, e.Field, e.Reason)
}

// AdapterError wraps a failure from a single airline adapter so the fan-out
// boundary can downgrade it without losing the cause.
type AdapterError struct {
	Airline string
	Err     error
}

func (e *AdapterError) Error() string {
	return e.Airline + ": " + e.Err.Error()
}

func (e *AdapterError) Unwrap() error {
	return e.Err
}

func NewAdapterError(airline string, err error) *AdapterError {
	return &AdapterError{Airline: airline, Err: err}
}
