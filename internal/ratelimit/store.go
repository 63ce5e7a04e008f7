package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCounterStore backs the limiter with Redis so counters are shared
// across processes. INCR is atomic; the expiry is attached when the counter
// is first created so each window expires independently.
type RedisCounterStore struct {
	client *redis.Client
}

func NewRedisCounterStore(client *redis.Client) *RedisCounterStore {
	return &RedisCounterStore{client: client}
}

func (s *RedisCounterStore) Increment(ctx context.Context, key string, expiry time.Duration) (int64, error) {
	count, err := s.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	if count == 1 {
		if err := s.client.Expire(ctx, key, expiry).Err(); err != nil {
			return count, err
		}
	}
	return count, nil
}

func (s *RedisCounterStore) Count(ctx context.Context, key string) (int64, error) {
	count, err := s.client.Get(ctx, key).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return count, nil
}

type memoryCounter struct {
	count     int64
	expiresAt time.Time
}

// MemoryCounterStore is the in-process fallback used when Redis is disabled
// and in tests.
type MemoryCounterStore struct {
	mu       sync.Mutex
	counters map[string]*memoryCounter
	now      func() time.Time
}

func NewMemoryCounterStore() *MemoryCounterStore {
	return &MemoryCounterStore{
		counters: make(map[string]*memoryCounter),
		now:      time.Now,
	}
}

func (s *MemoryCounterStore) Increment(_ context.Context, key string, expiry time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.counters[key]
	if !ok || s.now().After(c.expiresAt) {
		c = &memoryCounter{expiresAt: s.now().Add(expiry)}
		s.counters[key] = c
	}
	c.count++
	return c.count, nil
}

func (s *MemoryCounterStore) Count(_ context.Context, key string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.counters[key]
	if !ok || s.now().After(c.expiresAt) {
		return 0, nil
	}
	return c.count, nil
}
