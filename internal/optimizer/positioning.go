package optimizer

import (
	"sort"
	"time"

	"github.com/dharmasatrya/skyfare/internal/geo"
	"github.com/dharmasatrya/skyfare/internal/models"
)

// minConnectionTime is the shortest self-transfer gap worth suggesting
// between a positioning flight and its continuation.
const minConnectionTime = 45 * time.Minute

// PositioningSuggestion pairs a flight to an intermediate point with a
// second flight completing the journey.
type PositioningSuggestion struct {
	Via         string              `json:"via"`
	First       models.FlightResult `json:"first"`
	Second      models.FlightResult `json:"second"`
	TotalCost   float64             `json:"total_cost"`
	DetourMiles float64             `json:"detour_miles"`
	Savings     float64             `json:"savings"`
	Feasible    bool                `json:"feasible"`
}

// FindPositioningFlights searches flight pairs where the first leg ends at a
// plausible intermediate point and the second completes the journey. A
// suggestion is feasible only when the detour stays within maxDetourMiles
// and the combined cost beats the direct baseline. Sorted by savings
// descending.
func (o *Optimizer) FindPositioningFlights(criteria models.SearchCriteria, flights []models.FlightResult, maxDetourMiles float64) []PositioningSuggestion {
	baselineCost := directBaselineCost(flights)
	directMiles, haveDirect := geo.DistanceMiles(criteria.Origin, criteria.Destination)

	var suggestions []PositioningSuggestion
	for _, first := range flights {
		via := first.Destination()
		if via == "" || via == criteria.Destination || first.Origin() != criteria.Origin {
			continue
		}

		for _, second := range flights {
			if second.ID == first.ID {
				continue
			}
			if second.Origin() != via || second.Destination() != criteria.Destination {
				continue
			}
			if second.DepartureTime().Before(first.ArrivalTime().Add(minConnectionTime)) {
				continue
			}

			detour := 0.0
			if haveDirect {
				legA, okA := geo.DistanceMiles(criteria.Origin, via)
				legB, okB := geo.DistanceMiles(via, criteria.Destination)
				if okA && okB {
					detour = legA + legB - directMiles
				}
			}

			total := first.Pricing.Total + second.Pricing.Total
			s := PositioningSuggestion{
				Via:         via,
				First:       first,
				Second:      second,
				TotalCost:   round2(total),
				DetourMiles: round2(detour),
				Savings:     round2(baselineCost - total),
				Feasible:    detour <= maxDetourMiles && baselineCost > 0 && total < baselineCost,
			}
			suggestions = append(suggestions, s)
		}
	}

	sort.SliceStable(suggestions, func(i, j int) bool {
		return suggestions[i].Savings > suggestions[j].Savings
	})
	return suggestions
}

// directBaselineCost is the cheapest direct fare, or the cheapest fare of
// any shape when the set holds no direct flight.
func directBaselineCost(flights []models.FlightResult) float64 {
	best := 0.0
	for _, f := range flights {
		if !f.Direct() {
			continue
		}
		if best == 0 || f.Pricing.Total < best {
			best = f.Pricing.Total
		}
	}
	if best > 0 {
		return best
	}
	for _, f := range flights {
		if best == 0 || f.Pricing.Total < best {
			best = f.Pricing.Total
		}
	}
	return best
}
