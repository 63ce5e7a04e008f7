package ratelimit_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dharmasatrya/skyfare/internal/ratelimit"
	"github.com/dharmasatrya/skyfare/pkg/logging"
)

type failingStore struct{}

func (failingStore) Increment(context.Context, string, time.Duration) (int64, error) {
	return 0, errors.New("store down")
}

func (failingStore) Count(context.Context, string) (int64, error) {
	return 0, errors.New("store down")
}

func newLimiter(t *testing.T, limits ratelimit.Limits) *ratelimit.WindowLimiter {
	t.Helper()
	return ratelimit.NewWindowLimiter(ratelimit.NewMemoryCounterStore(), limits, logging.Nop())
}

func TestCheckLimit_AllowsUnderLimit(t *testing.T) {
	limiter := newLimiter(t, ratelimit.Limits{PerMinute: 3, PerHour: 100})
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		allowed, err := limiter.CheckLimit(ctx, "garuda")
		require.NoError(t, err)
		assert.True(t, allowed)
		require.NoError(t, limiter.IncrementCounter(ctx, "garuda"))
	}

	allowed, err := limiter.CheckLimit(ctx, "garuda")
	require.NoError(t, err)
	assert.False(t, allowed, "fourth request in the minute window must be refused")
}

func TestCheckLimit_HourWindowBinds(t *testing.T) {
	limiter := newLimiter(t, ratelimit.Limits{PerMinute: 100, PerHour: 2})
	ctx := context.Background()

	require.NoError(t, limiter.IncrementCounter(ctx, "garuda"))
	require.NoError(t, limiter.IncrementCounter(ctx, "garuda"))

	allowed, err := limiter.CheckLimit(ctx, "garuda")
	require.NoError(t, err)
	assert.False(t, allowed)
}

func TestCheckLimit_AirlinesIsolated(t *testing.T) {
	limiter := newLimiter(t, ratelimit.Limits{PerMinute: 1, PerHour: 100})
	ctx := context.Background()

	require.NoError(t, limiter.IncrementCounter(ctx, "garuda"))

	allowed, err := limiter.CheckLimit(ctx, "garuda")
	require.NoError(t, err)
	assert.False(t, allowed)

	allowed, err = limiter.CheckLimit(ctx, "lionair")
	require.NoError(t, err)
	assert.True(t, allowed, "one airline's exhaustion must not affect another")
}

func TestCheckLimit_FailsClosedOnStoreError(t *testing.T) {
	limiter := ratelimit.NewWindowLimiter(failingStore{}, ratelimit.DefaultLimits(), logging.Nop())

	allowed, err := limiter.CheckLimit(context.Background(), "garuda")
	assert.Error(t, err)
	assert.False(t, allowed)
}

func TestSetLimits_Overrides(t *testing.T) {
	limiter := newLimiter(t, ratelimit.Limits{PerMinute: 100, PerHour: 1000})
	limiter.SetLimits("airasia", ratelimit.Limits{PerMinute: 1, PerHour: 1000})
	ctx := context.Background()

	require.NoError(t, limiter.IncrementCounter(ctx, "airasia"))

	allowed, err := limiter.CheckLimit(ctx, "airasia")
	require.NoError(t, err)
	assert.False(t, allowed)

	allowed, err = limiter.CheckLimit(ctx, "garuda")
	require.NoError(t, err)
	assert.True(t, allowed, "default limits still apply to other airlines")
}

func TestClearLimits_RestoresDefaults(t *testing.T) {
	limiter := newLimiter(t, ratelimit.Limits{PerMinute: 100, PerHour: 1000})
	limiter.SetLimits("airasia", ratelimit.Limits{PerMinute: 1, PerHour: 1000})
	ctx := context.Background()

	require.NoError(t, limiter.IncrementCounter(ctx, "airasia"))

	allowed, err := limiter.CheckLimit(ctx, "airasia")
	require.NoError(t, err)
	require.False(t, allowed)

	limiter.ClearLimits("airasia")

	allowed, err = limiter.CheckLimit(ctx, "airasia")
	require.NoError(t, err)
	assert.True(t, allowed, "the dropped override falls back to the defaults")
}

func TestRemainingRequests(t *testing.T) {
	limiter := newLimiter(t, ratelimit.Limits{PerMinute: 5, PerHour: 100})
	ctx := context.Background()

	rem, err := limiter.RemainingRequests(ctx, "garuda")
	require.NoError(t, err)
	assert.Equal(t, 5, rem)

	require.NoError(t, limiter.IncrementCounter(ctx, "garuda"))
	require.NoError(t, limiter.IncrementCounter(ctx, "garuda"))

	rem, err = limiter.RemainingRequests(ctx, "garuda")
	require.NoError(t, err)
	assert.Equal(t, 3, rem)
}

func TestRemainingRequests_NeverNegative(t *testing.T) {
	limiter := newLimiter(t, ratelimit.Limits{PerMinute: 1, PerHour: 100})
	ctx := context.Background()

	require.NoError(t, limiter.IncrementCounter(ctx, "garuda"))
	require.NoError(t, limiter.IncrementCounter(ctx, "garuda"))

	rem, err := limiter.RemainingRequests(ctx, "garuda")
	require.NoError(t, err)
	assert.Equal(t, 0, rem)
}

// Fifty concurrent callers against a shared counter: every admitted request
// increments, and the total admitted never exceeds the window.
func TestConcurrentAdmission_RespectsWindow(t *testing.T) {
	limiter := newLimiter(t, ratelimit.Limits{PerMinute: 20, PerHour: 1000})
	ctx := context.Background()

	var mu sync.Mutex
	admitted := 0

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			mu.Lock()
			defer mu.Unlock()
			allowed, err := limiter.CheckLimit(ctx, "garuda")
			if err != nil || !allowed {
				return
			}
			if err := limiter.IncrementCounter(ctx, "garuda"); err == nil {
				admitted++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 20, admitted)

	allowed, err := limiter.CheckLimit(ctx, "garuda")
	require.NoError(t, err)
	assert.False(t, allowed)
}

func TestRedisCounterStore(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	store := ratelimit.NewRedisCounterStore(client)
	ctx := context.Background()

	n, err := store.Increment(ctx, "ratelimit:garuda:minute", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = store.Increment(ctx, "ratelimit:garuda:minute", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	count, err := store.Count(ctx, "ratelimit:garuda:minute")
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	// The window expires as a whole.
	mr.FastForward(61 * time.Second)
	count, err = store.Count(ctx, "ratelimit:garuda:minute")
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

func TestRedisCounterStore_MissingKeyIsZero(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	store := ratelimit.NewRedisCounterStore(client)

	count, err := store.Count(context.Background(), "ratelimit:nobody:minute")
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}
