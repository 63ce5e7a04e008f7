package optimizer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dharmasatrya/skyfare/internal/models"
	"github.com/dharmasatrya/skyfare/internal/optimizer"
	"github.com/dharmasatrya/skyfare/pkg/logging"
)

func TestFindPositioningFlights(t *testing.T) {
	opt := optimizer.New(logging.Nop())

	flights := []models.FlightResult{
		flight("a-direct", "garuda", 575, seg("JFK", "LAX", 8, 360)),
		flight("p-first", "lionair", 110, seg("JFK", "DEN", 7, 240)),
		flight("p-second", "lionair", 95, seg("DEN", "LAX", 13, 140)),
	}

	suggestions := opt.FindPositioningFlights(criteria(), flights, 500)
	require.Len(t, suggestions, 1)

	s := suggestions[0]
	assert.Equal(t, "DEN", s.Via)
	assert.Equal(t, 205.0, s.TotalCost)
	assert.Equal(t, 370.0, s.Savings)
	assert.True(t, s.Feasible)
	assert.Less(t, s.DetourMiles, 100.0)
}

func TestFindPositioningFlights_ConnectionTooTight(t *testing.T) {
	opt := optimizer.New(logging.Nop())

	// First leg arrives 11:00, second departs 11:00: under the minimum
	// self-transfer gap.
	flights := []models.FlightResult{
		flight("a-direct", "garuda", 575, seg("JFK", "LAX", 8, 360)),
		flight("p-first", "lionair", 110, seg("JFK", "DEN", 7, 240)),
		flight("p-second", "lionair", 95, seg("DEN", "LAX", 11, 140)),
	}

	suggestions := opt.FindPositioningFlights(criteria(), flights, 500)
	assert.Empty(t, suggestions)
}

func TestFindPositioningFlights_DetourBoundMakesInfeasible(t *testing.T) {
	opt := optimizer.New(logging.Nop())

	// Miami is far off the JFK-LAX great circle.
	flights := []models.FlightResult{
		flight("a-direct", "garuda", 575, seg("JFK", "LAX", 8, 360)),
		flight("p-first", "lionair", 60, seg("JFK", "MIA", 7, 180)),
		flight("p-second", "lionair", 80, seg("MIA", "LAX", 13, 320)),
	}

	suggestions := opt.FindPositioningFlights(criteria(), flights, 100)
	require.Len(t, suggestions, 1)
	assert.False(t, suggestions[0].Feasible)

	none := opt.FindPositioningFlights(criteria(), flights, 100)
	assert.Nil(t, firstFeasibleOf(none))
}

func firstFeasibleOf(suggestions []optimizer.PositioningSuggestion) *optimizer.PositioningSuggestion {
	for i := range suggestions {
		if suggestions[i].Feasible {
			return &suggestions[i]
		}
	}
	return nil
}

func TestFindPositioningFlights_MoreExpensiveNotFeasible(t *testing.T) {
	opt := optimizer.New(logging.Nop())

	flights := []models.FlightResult{
		flight("a-direct", "garuda", 200, seg("JFK", "LAX", 8, 360)),
		flight("p-first", "lionair", 150, seg("JFK", "DEN", 7, 240)),
		flight("p-second", "lionair", 180, seg("DEN", "LAX", 13, 140)),
	}

	suggestions := opt.FindPositioningFlights(criteria(), flights, 500)
	require.Len(t, suggestions, 1)
	assert.False(t, suggestions[0].Feasible, "costlier than the direct baseline")
}

func TestFindStopoverOptions_HubsOnly(t *testing.T) {
	opt := optimizer.New(logging.Nop())

	flights := []models.FlightResult{
		flight("via-hub", "garuda", 500,
			seg("JFK", "ORD", 9, 120), seg("ORD", "LAX", 12, 300)),
		flight("via-nonhub", "lionair", 480,
			seg("JFK", "LAS", 9, 300), seg("LAS", "LAX", 15, 70)),
		flight("direct", "batikair", 575, seg("JFK", "LAX", 8, 360)),
	}

	options := opt.FindStopoverOptions(criteria(), flights, 72)
	require.Len(t, options, 1, "only hub layovers qualify")

	o := options[0]
	assert.Equal(t, "ORD", o.Airport)
	assert.Equal(t, "Chicago", o.City)
	assert.Equal(t, 24.0, o.MinStayHours)
	assert.Equal(t, 72.0, o.MaxStayHours)
	assert.Equal(t, 75.0, o.AdditionalCost)
}

func TestFindStopoverOptions_ZeroBudget(t *testing.T) {
	opt := optimizer.New(logging.Nop())
	assert.Nil(t, opt.FindStopoverOptions(criteria(), standardSet(), 0))
}

func TestFindStopoverOptions_ShortMaxBoundsMinStay(t *testing.T) {
	opt := optimizer.New(logging.Nop())

	flights := []models.FlightResult{
		flight("via-hub", "garuda", 500,
			seg("JFK", "ORD", 9, 120), seg("ORD", "LAX", 12, 300)),
	}

	options := opt.FindStopoverOptions(criteria(), flights, 10)
	require.Len(t, options, 1)
	assert.Equal(t, 10.0, options[0].MinStayHours)
}

func TestFindOpenJawOptions_OneWayIsEmpty(t *testing.T) {
	opt := optimizer.New(logging.Nop())
	assert.Nil(t, opt.FindOpenJawOptions(criteria(), standardSet(), 6))
}

func TestFindOpenJawOptions(t *testing.T) {
	opt := optimizer.New(logging.Nop())

	c := criteria()
	ret := "2026-10-08"
	c.ReturnDate = &ret

	flights := []models.FlightResult{
		// Outbound into LAX, return home from Santa Ana: a short drive apart.
		flight("out-lax", "garuda", 575, seg("JFK", "LAX", 8, 360)),
		flight("back-sna", "lionair", 540, seg("SNA", "JFK", 40, 330)),
		// Return from the same airport: not an open jaw.
		flight("back-lax", "batikair", 560, seg("LAX", "JFK", 41, 330)),
	}

	options := opt.FindOpenJawOptions(c, flights, 6)
	require.Len(t, options, 1)

	o := options[0]
	assert.Equal(t, "LAX", o.ArrivalAirport)
	assert.Equal(t, "SNA", o.ReturnAirport)
	assert.Equal(t, 1115.0, o.TotalCost)
	assert.Greater(t, o.GroundHours, 0.0)
	assert.Less(t, o.GroundHours, 2.0)
}

func TestFindOpenJawOptions_GroundBoundExcludes(t *testing.T) {
	opt := optimizer.New(logging.Nop())

	c := criteria()
	ret := "2026-10-08"
	c.ReturnDate = &ret

	flights := []models.FlightResult{
		flight("out-lax", "garuda", 575, seg("JFK", "LAX", 8, 360)),
		// San Francisco is hours of driving from Los Angeles.
		flight("back-sfo", "lionair", 540, seg("SFO", "JFK", 40, 330)),
	}

	options := opt.FindOpenJawOptions(c, flights, 2)
	assert.Empty(t, options)
}
