package geo_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dharmasatrya/skyfare/internal/geo"
)

func TestLookup(t *testing.T) {
	a, ok := geo.Lookup("JFK")
	require.True(t, ok)
	assert.Equal(t, "New York", a.City)

	a, ok = geo.Lookup("jfk")
	require.True(t, ok, "lookup is case-insensitive")
	assert.Equal(t, "JFK", a.Code)

	_, ok = geo.Lookup("ZZZ")
	assert.False(t, ok)
}

func TestDistanceMiles(t *testing.T) {
	miles, ok := geo.DistanceMiles("JFK", "LAX")
	require.True(t, ok)
	// Great-circle JFK-LAX is roughly 2475 miles.
	assert.InDelta(t, 2475, miles, 50)

	same, ok := geo.DistanceMiles("JFK", "JFK")
	require.True(t, ok)
	assert.InDelta(t, 0, same, 0.1)

	_, ok = geo.DistanceMiles("JFK", "ZZZ")
	assert.False(t, ok)
}

func TestIsHub(t *testing.T) {
	assert.True(t, geo.IsHub("ATL"))
	assert.True(t, geo.IsHub("SIN"))
	assert.False(t, geo.IsHub("ZZZ"))
}

func TestGroundTransferHours(t *testing.T) {
	hours, ok := geo.GroundTransferHours("JFK", "EWR")
	require.True(t, ok)
	assert.Greater(t, hours, 0.0)
	assert.Less(t, hours, 2.0, "JFK to EWR is a short ground hop")
}
