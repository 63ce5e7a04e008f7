// Package cache provides the TTL-keyed response cache shared by all airline
// adapters.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/rs/zerolog"

	"github.com/dharmasatrya/skyfare/internal/models"
)

const DefaultTTL = 5 * time.Minute

// Store is the raw key/value backend. Get returns nil with a nil error on a
// miss; only backend failures produce errors.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// ResponseCache stores normalized adapter responses keyed by search criteria
// and airline. A miss never errors toward callers; backend failures degrade
// to misses.
type ResponseCache struct {
	store      Store
	defaultTTL time.Duration
	logger     zerolog.Logger
}

func NewResponseCache(store Store, defaultTTL time.Duration, logger zerolog.Logger) *ResponseCache {
	if defaultTTL <= 0 {
		defaultTTL = DefaultTTL
	}
	return &ResponseCache{
		store:      store,
		defaultTTL: defaultTTL,
		logger:     logger.With().Str("component", "cache").Logger(),
	}
}

// GenerateKey derives a deterministic key from normalized criteria and the
// airline name. The canonical struct below fixes field order, so two
// value-identical criteria always hash the same.
func GenerateKey(criteria models.SearchCriteria, airline string) string {
	canonical := struct {
		Airline       string
		Origin        string
		Destination   string
		DepartureDate string
		ReturnDate    string
		Adults        int
		Children      int
		Infants       int
		CabinClass    string
		Flexible      bool
	}{
		Airline:       airline,
		Origin:        criteria.Origin,
		Destination:   criteria.Destination,
		DepartureDate: criteria.DepartureDate,
		Adults:        criteria.Passengers.Adults,
		Children:      criteria.Passengers.Children,
		Infants:       criteria.Passengers.Infants,
		CabinClass:    criteria.CabinClass,
		Flexible:      criteria.Flexible,
	}
	if criteria.ReturnDate != nil {
		canonical.ReturnDate = *criteria.ReturnDate
	}

	data, _ := json.Marshal(canonical)
	hash := sha256.Sum256(data)
	return "search:" + hex.EncodeToString(hash[:])
}

// Get returns the cached response for the key, or ok=false on a miss.
func (c *ResponseCache) Get(ctx context.Context, key string) (*models.AdapterResponse, bool) {
	data, err := c.store.Get(ctx, key)
	if err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("cache read failed, treating as miss")
		return nil, false
	}
	if data == nil {
		return nil, false
	}

	var resp models.AdapterResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("cache entry corrupt, treating as miss")
		return nil, false
	}
	return &resp, true
}

// Set stores a response under the key. A non-positive TTL uses the default.
func (c *ResponseCache) Set(ctx context.Context, key string, resp *models.AdapterResponse, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = c.defaultTTL
	}

	data, err := json.Marshal(resp)
	if err != nil {
		return err
	}
	return c.store.Set(ctx, key, data, ttl)
}

func (c *ResponseCache) Delete(ctx context.Context, key string) error {
	return c.store.Delete(ctx, key)
}
