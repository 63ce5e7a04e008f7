package optimizer

import (
	"sort"

	"github.com/dharmasatrya/skyfare/internal/geo"
	"github.com/dharmasatrya/skyfare/internal/models"
)

// StopoverOption turns a connection at a major hub into a mini-destination.
type StopoverOption struct {
	Airport        string              `json:"airport"`
	City           string              `json:"city"`
	Flight         models.FlightResult `json:"flight"`
	MinStayHours   float64             `json:"min_stay_hours"`
	MaxStayHours   float64             `json:"max_stay_hours"`
	AdditionalCost float64             `json:"additional_cost"`
}

// FindStopoverOptions inspects each connecting flight's layover airports.
// Only major hubs are offered as stopover destinations; stays are bounded by
// maxStopoverHours.
func (o *Optimizer) FindStopoverOptions(criteria models.SearchCriteria, flights []models.FlightResult, maxStopoverHours float64) []StopoverOption {
	if maxStopoverHours <= 0 {
		return nil
	}

	minStay := 24.0
	if minStay > maxStopoverHours {
		minStay = maxStopoverHours
	}

	seen := make(map[string]bool)
	var options []StopoverOption
	for _, f := range flights {
		if f.Direct() || len(f.Route) == 0 {
			continue
		}

		// Every intermediate arrival airport is a candidate layover city.
		for _, seg := range f.Route[:len(f.Route)-1] {
			airport := seg.Destination
			if seen[airport] || !geo.IsHub(airport) {
				continue
			}
			seen[airport] = true

			options = append(options, StopoverOption{
				Airport:      airport,
				City:         geo.City(airport),
				Flight:       f,
				MinStayHours: minStay,
				MaxStayHours: maxStopoverHours,
				// Rebooking the onward leg as a separate ticket typically
				// adds a share of the through fare.
				AdditionalCost: round2(f.Pricing.Total * 0.15),
			})
		}
	}

	sort.SliceStable(options, func(i, j int) bool {
		return options[i].AdditionalCost < options[j].AdditionalCost
	})
	return options
}
