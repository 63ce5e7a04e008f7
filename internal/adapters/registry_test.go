package adapters_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dharmasatrya/skyfare/internal/adapters"
	"github.com/dharmasatrya/skyfare/internal/config"
	"github.com/dharmasatrya/skyfare/internal/errs"
	"github.com/dharmasatrya/skyfare/pkg/logging"
)

func testRegistry(t *testing.T) *adapters.Registry {
	r, _ := testRegistryWithDir(t)
	return r
}

func testRegistryWithDir(t *testing.T) (*adapters.Registry, string) {
	t.Helper()

	dir := t.TempDir()
	configs, err := config.NewRegistry(dir, "test-passphrase", logging.Nop())
	require.NoError(t, err)

	r := adapters.NewRegistry(configs, testDeps(t), "simulated")
	r.Register("simulated", adapters.SimulatedConstructor(adapters.ScenarioDefault))
	return r, dir
}

func writeAirlineFile(t *testing.T, dir, airline, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, airline+".json"), []byte(body), 0o600))
}

func TestRegistry_CreateAdapterIdempotent(t *testing.T) {
	r := testRegistry(t)

	first, err := r.CreateAdapter("garuda", "simulated")
	require.NoError(t, err)

	second, err := r.CreateAdapter("garuda", "simulated")
	require.NoError(t, err)
	assert.Same(t, first, second, "repeated creates return the cached instance")

	viaGet, err := r.GetAdapter("garuda")
	require.NoError(t, err)
	assert.Same(t, first, viaGet)
}

func TestRegistry_UnknownTypeFails(t *testing.T) {
	r := testRegistry(t)

	_, err := r.CreateAdapter("garuda", "soap-gateway")
	assert.Error(t, err)
}

func TestRegistry_DefaultType(t *testing.T) {
	r := testRegistry(t)

	a, err := r.CreateAdapter("garuda", "")
	require.NoError(t, err)
	assert.Equal(t, "garuda", a.Name())
}

func TestRegistry_FileLimitsDriveAdmission(t *testing.T) {
	r, dir := testRegistryWithDir(t)
	writeAirlineFile(t, dir, "garuda", `{
		"airline": "garuda",
		"base_url": "https://api.garuda.example.com/v1",
		"timeout_ms": 5000,
		"api_key": "file-garuda",
		"rate_limits": {"per_minute": 1, "per_hour": 1000}
	}`)

	a, err := r.GetAdapter("garuda")
	require.NoError(t, err)
	ctx := context.Background()

	_, err = a.SearchFlights(ctx, testRequest("r1"))
	require.NoError(t, err)

	// Distinct criteria so the cache cannot answer; the file limit of one
	// request per minute must hold even though the limiter defaults allow
	// far more.
	req := testRequest("r2")
	req.Criteria.Destination = "SFO"
	_, err = a.SearchFlights(ctx, req)
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrRateLimitExceeded)
}

func TestRegistry_UpdateInstallsNewLimits(t *testing.T) {
	r := testRegistry(t)

	_, err := r.GetAdapter("garuda")
	require.NoError(t, err)

	limits := config.RateLimits{PerMinute: 1, PerHour: 1000}
	require.NoError(t, r.UpdateAirlineConfig("garuda", config.Update{RateLimits: &limits}))

	a, err := r.GetAdapter("garuda")
	require.NoError(t, err)
	ctx := context.Background()

	req := testRequest("r1")
	req.Criteria.Destination = "SEA"
	_, err = a.SearchFlights(ctx, req)
	require.NoError(t, err)

	req = testRequest("r2")
	req.Criteria.Destination = "SFO"
	_, err = a.SearchFlights(ctx, req)
	assert.ErrorIs(t, err, errs.ErrRateLimitExceeded)
}

func TestRegistry_UpdateEvictsAdapter(t *testing.T) {
	r := testRegistry(t)

	before, err := r.GetAdapter("garuda")
	require.NoError(t, err)

	timeout := 3 * time.Second
	require.NoError(t, r.UpdateAirlineConfig("garuda", config.Update{Timeout: &timeout}))

	after, err := r.GetAdapter("garuda")
	require.NoError(t, err)
	assert.NotSame(t, before, after, "a config update rebuilds the adapter")
}

func TestRegistry_UpdateRejectsInvalid(t *testing.T) {
	r := testRegistry(t)

	_, err := r.GetAdapter("garuda")
	require.NoError(t, err)

	bad := -time.Second
	require.Error(t, r.UpdateAirlineConfig("garuda", config.Update{Timeout: &bad}))

	// The rejected update must not evict the working adapter.
	a, err := r.GetAdapter("garuda")
	require.NoError(t, err)
	assert.NotNil(t, a)
}

func TestRegistry_AdapterHealth(t *testing.T) {
	r := testRegistry(t)
	ctx := context.Background()

	h := r.AdapterHealth(ctx, "garuda")
	assert.Equal(t, adapters.HealthNotInitialized, h.Status)

	_, err := r.GetAdapter("garuda")
	require.NoError(t, err)

	h = r.AdapterHealth(ctx, "garuda")
	assert.Equal(t, adapters.HealthHealthy, h.Status)
	require.NotNil(t, h.ResponseTime)
	assert.Greater(t, *h.ResponseTime, time.Duration(0))
}

func TestRegistry_UnhealthyAdapter(t *testing.T) {
	r := testRegistry(t)
	r.Register("failing", adapters.SimulatedConstructor(adapters.ScenarioUnavailable))

	_, err := r.CreateAdapter("garuda", "failing")
	require.NoError(t, err)

	h := r.AdapterHealth(context.Background(), "garuda")
	assert.Equal(t, adapters.HealthUnhealthy, h.Status)
}

func TestRegistry_AllAdapterHealth(t *testing.T) {
	r := testRegistry(t)
	ctx := context.Background()

	_, err := r.GetAdapter("garuda")
	require.NoError(t, err)
	_, err = r.GetAdapter("lionair")
	require.NoError(t, err)

	all := r.AllAdapterHealth(ctx)
	require.Len(t, all, 2)
	assert.Equal(t, adapters.HealthHealthy, all["garuda"].Status)
	assert.Equal(t, adapters.HealthHealthy, all["lionair"].Status)
}

func TestRegistry_RemoveAirline(t *testing.T) {
	r := testRegistry(t)

	_, err := r.GetAdapter("garuda")
	require.NoError(t, err)

	r.RemoveAirline("garuda")
	assert.NotContains(t, r.Airlines(), "garuda")

	h := r.AdapterHealth(context.Background(), "garuda")
	assert.Equal(t, adapters.HealthNotInitialized, h.Status)
}

func TestRegistry_Cleanup(t *testing.T) {
	r := testRegistry(t)

	before, err := r.GetAdapter("garuda")
	require.NoError(t, err)

	r.Cleanup()

	after, err := r.GetAdapter("garuda")
	require.NoError(t, err)
	assert.NotSame(t, before, after)
}
