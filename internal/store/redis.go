package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/dharmasatrya/skyfare/internal/models"
)

// DefaultRecordTTL bounds how long completed searches stay queryable.
const DefaultRecordTTL = 24 * time.Hour

// RedisStore persists search records as JSON under a TTL.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultRecordTTL
	}
	return &RedisStore{client: client, ttl: ttl}
}

func recordKey(id string) string {
	return "search:record:" + id
}

func (s *RedisStore) CreateSearch(ctx context.Context, criteria models.SearchCriteria, airlines []string) (*Record, error) {
	now := time.Now()
	rec := &Record{
		ID:        uuid.NewString(),
		Criteria:  criteria,
		Airlines:  airlines,
		Status:    StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.write(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *RedisStore) UpdateSearch(ctx context.Context, id string, upd Update) (*Record, error) {
	rec, err := s.GetSearch(ctx, id)
	if err != nil || rec == nil {
		return rec, err
	}

	applyUpdate(rec, upd)
	if err := s.write(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *RedisStore) GetSearch(ctx context.Context, id string) (*Record, error) {
	data, err := s.client.Get(ctx, recordKey(id)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get search %s: %w", id, err)
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("decode search %s: %w", id, err)
	}
	return &rec, nil
}

func (s *RedisStore) write(ctx context.Context, rec *Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, recordKey(rec.ID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("persist search %s: %w", rec.ID, err)
	}
	return nil
}

func applyUpdate(rec *Record, upd Update) {
	// Terminal states are final.
	if upd.Status != nil && !rec.Status.Terminal() {
		rec.Status = *upd.Status
	}
	if upd.Results != nil {
		rec.Results = upd.Results
	}
	if upd.Sources != nil {
		rec.Sources = upd.Sources
	}
	rec.UpdatedAt = time.Now()
}
