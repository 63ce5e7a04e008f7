package optimizer_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dharmasatrya/skyfare/internal/errs"
	"github.com/dharmasatrya/skyfare/internal/models"
	"github.com/dharmasatrya/skyfare/internal/optimizer"
	"github.com/dharmasatrya/skyfare/pkg/logging"
)

var day = time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)

func criteria() models.SearchCriteria {
	return models.SearchCriteria{
		Origin:        "JFK",
		Destination:   "LAX",
		DepartureDate: "2026-10-01",
		Passengers:    models.PassengerCounts{Adults: 1},
		CabinClass:    "economy",
	}
}

func flight(id, airline string, total float64, segs ...models.RouteSegment) models.FlightResult {
	f := models.FlightResult{
		ID:           id,
		Airline:      airline,
		Route:        segs,
		Pricing:      models.PricingInfo{Amount: total, Currency: "USD", Total: total},
		Availability: models.AvailabilityInfo{AvailableSeats: 4},
		Source:       airline,
	}
	f.Normalize()
	return f
}

func seg(origin, destination string, depHour, durMinutes int) models.RouteSegment {
	dep := day.Add(time.Duration(depHour) * time.Hour)
	return models.RouteSegment{
		Airline:         "garuda",
		Origin:          origin,
		Destination:     destination,
		Departure:       dep,
		Arrival:         dep.Add(time.Duration(durMinutes) * time.Minute),
		DurationMinutes: durMinutes,
	}
}

func standardSet() []models.FlightResult {
	return []models.FlightResult{
		flight("a-direct", "garuda", 575, seg("JFK", "LAX", 8, 360)),
		flight("b-onestop", "lionair", 515,
			seg("JFK", "ORD", 9, 120), seg("ORD", "LAX", 12, 300)),
		flight("c-direct-fast", "batikair", 640, seg("JFK", "LAX", 10, 340)),
	}
}

func TestOptimizeRoute_DirectBaseline(t *testing.T) {
	opt := optimizer.New(logging.Nop())

	result, err := opt.OptimizeRoute(criteria(), standardSet(), optimizer.Options{PrioritizeCost: true})
	require.NoError(t, err)

	assert.Equal(t, optimizer.RouteDirect, result.RouteType)
	assert.Equal(t, 575.0, result.TotalCost)
	assert.Equal(t, 360, result.TotalTimeMinutes)
	assert.Equal(t, 0.0, result.Savings, "the baseline itself saves nothing")
	assert.NotEmpty(t, result.Recommendations)
}

func TestOptimizeRoute_Alternatives(t *testing.T) {
	opt := optimizer.New(logging.Nop())

	result, err := opt.OptimizeRoute(criteria(), standardSet(), optimizer.Options{})
	require.NoError(t, err)

	require.Len(t, result.Alternatives, 2)
	assert.Equal(t, 515.0, result.Alternatives[0].TotalCost, "cheapest alternative first")
	assert.Equal(t, optimizer.RouteConnecting, result.Alternatives[0].RouteType)
	assert.Equal(t, 60.0, result.Alternatives[0].Savings)
	assert.Equal(t, 640.0, result.Alternatives[1].TotalCost)
}

func TestOptimizeRoute_PrioritizeTime(t *testing.T) {
	opt := optimizer.New(logging.Nop())

	result, err := opt.OptimizeRoute(criteria(), standardSet(), optimizer.Options{PrioritizeTime: true})
	require.NoError(t, err)

	assert.Equal(t, optimizer.RouteDirect, result.RouteType)
	assert.Equal(t, 640.0, result.TotalCost, "fastest direct wins over cheapest")
	assert.Equal(t, 340, result.TotalTimeMinutes)
}

func TestOptimizeRoute_ConnectingOnlyWhenNoDirect(t *testing.T) {
	opt := optimizer.New(logging.Nop())

	flights := []models.FlightResult{
		flight("b-onestop", "lionair", 515,
			seg("JFK", "ORD", 9, 120), seg("ORD", "LAX", 12, 300)),
	}
	result, err := opt.OptimizeRoute(criteria(), flights, optimizer.Options{})
	require.NoError(t, err)

	assert.Equal(t, optimizer.RouteConnecting, result.RouteType)
	assert.Equal(t, 515.0, result.TotalCost)
}

func TestOptimizeRoute_PositioningReplacesBaseline(t *testing.T) {
	opt := optimizer.New(logging.Nop())

	// Two cheap self-transfer legs through Denver undercut the direct fare
	// with a tiny detour.
	flights := []models.FlightResult{
		flight("a-direct", "garuda", 575, seg("JFK", "LAX", 8, 360)),
		flight("p-first", "lionair", 110, seg("JFK", "DEN", 7, 240)),
		flight("p-second", "lionair", 95, seg("DEN", "LAX", 13, 140)),
	}

	result, err := opt.OptimizeRoute(criteria(), flights, optimizer.Options{ConsiderPositioning: true})
	require.NoError(t, err)

	assert.Equal(t, optimizer.RoutePositioning, result.RouteType)
	assert.Equal(t, 205.0, result.TotalCost)
	assert.Equal(t, 370.0, result.Savings)
	require.NotEmpty(t, result.Alternatives)
	assert.Equal(t, 575.0, result.Alternatives[0].TotalCost, "displaced baseline kept as alternative")
	assert.NotEmpty(t, result.Recommendations)
}

func TestOptimizeRoute_PrioritizeTimeSkipsPositioning(t *testing.T) {
	opt := optimizer.New(logging.Nop())

	flights := []models.FlightResult{
		flight("a-direct", "garuda", 575, seg("JFK", "LAX", 8, 360)),
		flight("p-first", "lionair", 110, seg("JFK", "DEN", 7, 240)),
		flight("p-second", "lionair", 95, seg("DEN", "LAX", 13, 140)),
	}

	result, err := opt.OptimizeRoute(criteria(), flights, optimizer.Options{
		ConsiderPositioning: true,
		PrioritizeTime:      true,
	})
	require.NoError(t, err)
	assert.Equal(t, optimizer.RouteDirect, result.RouteType)
}

func TestOptimizeRoute_EmptyInput(t *testing.T) {
	opt := optimizer.New(logging.Nop())

	_, err := opt.OptimizeRoute(criteria(), nil, optimizer.Options{})
	assert.ErrorIs(t, err, errs.ErrNoResultsToOptimize)
}

func TestOptimizeRoute_MalformedFlight(t *testing.T) {
	opt := optimizer.New(logging.Nop())

	flights := []models.FlightResult{{ID: "broken", Airline: "garuda"}}
	_, err := opt.OptimizeRoute(criteria(), flights, optimizer.Options{})
	assert.ErrorIs(t, err, errs.ErrMalformedFlight)
}

func TestOptimizeMultiCityRoute(t *testing.T) {
	opt := optimizer.New(logging.Nop())

	mc := models.MultiCityCriteria{
		Cities:         []string{"JFK", "LHR", "SIN"},
		DepartureDates: []string{"2026-10-01", "2026-10-05"},
		Passengers:     models.PassengerCounts{Adults: 1},
		CabinClass:     "economy",
	}
	flights := []models.FlightResult{
		flight("hop1", "garuda", 450, seg("JFK", "LHR", 18, 420)),
		flight("hop1-pricier", "batikair", 520, seg("JFK", "LHR", 20, 410)),
		flight("hop2", "garuda", 600, seg("LHR", "SIN", 21, 780)),
	}

	result, err := opt.OptimizeMultiCityRoute(mc, flights)
	require.NoError(t, err)

	assert.Equal(t, optimizer.RouteMultiCity, result.RouteType)
	assert.Equal(t, 1050.0, result.TotalCost, "cheapest matching flight per hop")
	require.Len(t, result.Segments, 2)
	assert.Equal(t, "JFK", result.Segments[0].Origin)
	assert.Equal(t, "SIN", result.Segments[1].Destination)
	assert.Equal(t, "JFK", result.Criteria.Origin)
	assert.Equal(t, "SIN", result.Criteria.Destination)
	assert.Equal(t, "2026-10-01", result.Criteria.DepartureDate)
}

func TestOptimizeMultiCityRoute_UnservedHop(t *testing.T) {
	opt := optimizer.New(logging.Nop())

	mc := models.MultiCityCriteria{
		Cities:         []string{"JFK", "LHR", "SIN"},
		DepartureDates: []string{"2026-10-01", "2026-10-05"},
		Passengers:     models.PassengerCounts{Adults: 1},
	}
	// The second flight serves neither endpoint of the LHR-SIN hop.
	flights := []models.FlightResult{
		flight("hop1", "garuda", 450, seg("JFK", "LHR", 18, 420)),
		flight("stray", "garuda", 300, seg("CDG", "SIN", 19, 760)),
	}

	_, err := opt.OptimizeMultiCityRoute(mc, flights)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "LHR-SIN", "an unserved hop errors instead of chaining a mismatched flight")
}

func TestOptimizeMultiCityRoute_NotEnoughSegments(t *testing.T) {
	opt := optimizer.New(logging.Nop())

	mc := models.MultiCityCriteria{Cities: []string{"JFK", "LHR", "SIN"}}
	flights := []models.FlightResult{
		flight("hop1", "garuda", 450, seg("JFK", "LHR", 18, 420)),
	}

	_, err := opt.OptimizeMultiCityRoute(mc, flights)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "needs at least 2 flight segments")
}

func TestOptimizeMultiCityRoute_TooFewCities(t *testing.T) {
	opt := optimizer.New(logging.Nop())

	_, err := opt.OptimizeMultiCityRoute(models.MultiCityCriteria{Cities: []string{"JFK"}}, standardSet())
	assert.Error(t, err)
}
