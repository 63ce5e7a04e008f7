package ratelimit_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dharmasatrya/skyfare/internal/ratelimit"
)

func TestPacer_BurstAdmitsImmediately(t *testing.T) {
	pacer := ratelimit.NewPacer(ratelimit.PacerConfig{RequestsPerSecond: 1, Burst: 5})
	ctx := context.Background()

	start := time.Now()
	for i := 0; i < 5; i++ {
		require.NoError(t, pacer.Wait(ctx, "garuda"))
	}
	assert.Less(t, time.Since(start), 200*time.Millisecond)
}

func TestPacer_WaitHonorsContext(t *testing.T) {
	pacer := ratelimit.NewPacer(ratelimit.PacerConfig{RequestsPerSecond: 0.001, Burst: 1})
	ctx := context.Background()

	require.NoError(t, pacer.Wait(ctx, "garuda"))

	cancelCtx, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
	defer cancel()
	assert.Error(t, pacer.Wait(cancelCtx, "garuda"))
}

func TestPacer_PerAirlineBuckets(t *testing.T) {
	pacer := ratelimit.NewPacer(ratelimit.PacerConfig{RequestsPerSecond: 0.001, Burst: 1})
	ctx := context.Background()

	require.NoError(t, pacer.Wait(ctx, "garuda"))

	// Draining one airline's bucket leaves another's untouched.
	start := time.Now()
	require.NoError(t, pacer.Wait(ctx, "lionair"))
	assert.Less(t, time.Since(start), 200*time.Millisecond)
}
