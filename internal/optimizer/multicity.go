package optimizer

import (
	"fmt"
	"strings"

	"github.com/dharmasatrya/skyfare/internal/models"
	"github.com/dharmasatrya/skyfare/pkg/currency"
)

// OptimizeMultiCityRoute chains one flight per city-to-city hop into a
// single itinerary. It needs at least cities-1 segments and errors when
// fewer are supplied or when no supplied flight serves a hop.
func (o *Optimizer) OptimizeMultiCityRoute(criteria models.MultiCityCriteria, flights []models.FlightResult) (*Result, error) {
	hops := criteria.Hops()
	if hops < 1 {
		return nil, fmt.Errorf("multi-city criteria needs at least two cities")
	}
	if err := validateFlights(flights); err != nil {
		return nil, err
	}
	if len(flights) < hops {
		return nil, fmt.Errorf("multi-city route through %d cities needs at least %d flight segments, got %d",
			len(criteria.Cities), hops, len(flights))
	}

	used := make(map[string]bool)
	var segments []models.RouteSegment
	totalCost := 0.0
	totalMinutes := 0
	layovers := 0

	for i := 0; i < hops; i++ {
		origin := criteria.Cities[i]
		destination := criteria.Cities[i+1]

		pick := cheapestMatching(flights, used, origin, destination)
		if pick == nil {
			return nil, fmt.Errorf("no remaining flight serves hop %s-%s", origin, destination)
		}

		used[pick.ID] = true
		segments = append(segments, pick.Route...)
		totalCost += pick.Pricing.Total
		totalMinutes += pick.DurationMinutes
		layovers += pick.Layovers
	}

	maxCost, maxDur := maxima(flights)
	result := &Result{
		Segments:         segments,
		RouteType:        RouteMultiCity,
		TotalCost:        round2(totalCost),
		TotalTimeMinutes: totalMinutes,
		Savings:          0,
		Score:            scoreItinerary(totalCost/float64(hops), totalMinutes/hops, layovers, maxCost, maxDur),
		Recommendations: []string{
			fmt.Sprintf("Multi-city itinerary through %s for %s",
				strings.Join(criteria.Cities, ", "), currency.Format(totalCost, "USD")),
		},
	}
	result.Criteria = models.SearchCriteria{
		Origin:      criteria.Cities[0],
		Destination: criteria.Cities[len(criteria.Cities)-1],
		Passengers:  criteria.Passengers,
		CabinClass:  criteria.CabinClass,
	}
	if len(criteria.DepartureDates) > 0 {
		result.Criteria.DepartureDate = criteria.DepartureDates[0]
	}

	return result, nil
}

func cheapestMatching(flights []models.FlightResult, used map[string]bool, origin, destination string) *models.FlightResult {
	var best *models.FlightResult
	for i := range flights {
		f := &flights[i]
		if used[f.ID] {
			continue
		}
		if !strings.EqualFold(f.Origin(), origin) || !strings.EqualFold(f.Destination(), destination) {
			continue
		}
		if best == nil || f.Pricing.Total < best.Pricing.Total {
			best = f
		}
	}
	return best
}
