package optimizer

import (
	"sort"
	"strings"

	"github.com/dharmasatrya/skyfare/internal/geo"
	"github.com/dharmasatrya/skyfare/internal/models"
)

// OpenJawOption pairs an outbound into one city with a return from another,
// bridged by ground transport.
type OpenJawOption struct {
	Outbound       models.FlightResult `json:"outbound"`
	Return         models.FlightResult `json:"return"`
	ArrivalAirport string              `json:"arrival_airport"`
	ReturnAirport  string              `json:"return_airport"`
	GroundHours    float64             `json:"ground_hours"`
	TotalCost      float64             `json:"total_cost"`
}

// FindOpenJawOptions is only applicable to round trips: one-way criteria
// always yield an empty list. Candidate returns depart from a different
// airport than the outbound arrival, within the ground-transport bound.
func (o *Optimizer) FindOpenJawOptions(criteria models.SearchCriteria, flights []models.FlightResult, maxGroundTransportHours float64) []OpenJawOption {
	if !criteria.RoundTrip() {
		return nil
	}

	var outbound, returns []models.FlightResult
	for _, f := range flights {
		switch {
		case strings.EqualFold(f.Origin(), criteria.Origin):
			outbound = append(outbound, f)
		case strings.EqualFold(f.Destination(), criteria.Origin):
			returns = append(returns, f)
		}
	}

	var options []OpenJawOption
	for _, out := range outbound {
		for _, ret := range returns {
			arrival := out.Destination()
			departApt := ret.Origin()
			if strings.EqualFold(arrival, departApt) {
				continue // same city pair, not an open jaw
			}

			hours, ok := geo.GroundTransferHours(arrival, departApt)
			if !ok || hours > maxGroundTransportHours {
				continue
			}
			if ret.DepartureTime().Before(out.ArrivalTime()) {
				continue
			}

			options = append(options, OpenJawOption{
				Outbound:       out,
				Return:         ret,
				ArrivalAirport: arrival,
				ReturnAirport:  departApt,
				GroundHours:    round2(hours),
				TotalCost:      round2(out.Pricing.Total + ret.Pricing.Total),
			})
		}
	}

	sort.SliceStable(options, func(i, j int) bool {
		return options[i].TotalCost < options[j].TotalCost
	})
	return options
}
