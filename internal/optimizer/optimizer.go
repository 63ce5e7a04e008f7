// Package optimizer evaluates alternative routing strategies over a
// completed result set and produces a ranked optimization report. It is a
// pure function set: no shared mutable state, callable standalone or layered
// on the orchestrator.
package optimizer

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/dharmasatrya/skyfare/internal/errs"
	"github.com/dharmasatrya/skyfare/internal/models"
	"github.com/dharmasatrya/skyfare/pkg/currency"
)

type RouteType string

const (
	RouteDirect      RouteType = "direct"
	RouteConnecting  RouteType = "connecting"
	RoutePositioning RouteType = "positioning"
	RouteStopover    RouteType = "stopover"
	RouteOpenJaw     RouteType = "open-jaw"
	RouteMultiCity   RouteType = "multi-city"
)

// Options steer OptimizeRoute.
type Options struct {
	PrioritizeCost            bool    `json:"prioritize_cost"`
	PrioritizeTime            bool    `json:"prioritize_time"`
	ConsiderPositioning       bool    `json:"consider_positioning"`
	MaxPositioningDetourMiles float64 `json:"max_positioning_detour_miles"`
}

const defaultMaxDetourMiles = 500

// Result is the optimization report for one criteria/result-set pair.
type Result struct {
	Criteria         models.SearchCriteria `json:"criteria"`
	Segments         []models.RouteSegment `json:"segments"`
	RouteType        RouteType             `json:"route_type"`
	TotalCost        float64               `json:"total_cost"`
	TotalTimeMinutes int                   `json:"total_time_minutes"`
	Savings          float64               `json:"savings"`
	Score            float64               `json:"score"`
	Recommendations  []string              `json:"recommendations"`
	Alternatives     []Alternative         `json:"alternatives,omitempty"`
}

// Alternative is a non-selected itinerary kept for comparison.
type Alternative struct {
	RouteType        RouteType `json:"route_type"`
	TotalCost        float64   `json:"total_cost"`
	TotalTimeMinutes int       `json:"total_time_minutes"`
	Savings          float64   `json:"savings"`
	Description      string    `json:"description"`
}

type Optimizer struct {
	logger zerolog.Logger
}

func New(logger zerolog.Logger) *Optimizer {
	return &Optimizer{logger: logger.With().Str("component", "optimizer").Logger()}
}

func validateFlights(flights []models.FlightResult) error {
	if len(flights) == 0 {
		return errs.ErrNoResultsToOptimize
	}
	for _, f := range flights {
		if len(f.Route) == 0 {
			return fmt.Errorf("%w: %s", errs.ErrMalformedFlight, f.ID)
		}
	}
	return nil
}

// OptimizeRoute establishes the direct-flight baseline and, when enabled,
// considers positioning constructions that strictly reduce cost within the
// detour bound. PrioritizeTime keeps a direct flight regardless of cost.
func (o *Optimizer) OptimizeRoute(criteria models.SearchCriteria, flights []models.FlightResult, opts Options) (*Result, error) {
	if err := validateFlights(flights); err != nil {
		return nil, err
	}

	baseline, routeType := pickBaseline(flights, opts)
	maxCost, maxDur := maxima(flights)

	result := &Result{
		Criteria:         criteria,
		Segments:         baseline.Route,
		RouteType:        routeType,
		TotalCost:        baseline.Pricing.Total,
		TotalTimeMinutes: baseline.DurationMinutes,
		Savings:          0,
		Score:            scoreItinerary(baseline.Pricing.Total, baseline.DurationMinutes, baseline.Layovers, maxCost, maxDur),
	}

	if opts.ConsiderPositioning && !opts.PrioritizeTime {
		maxDetour := opts.MaxPositioningDetourMiles
		if maxDetour <= 0 {
			maxDetour = defaultMaxDetourMiles
		}

		suggestions := o.FindPositioningFlights(criteria, flights, maxDetour)
		if best := firstFeasible(suggestions); best != nil && best.TotalCost < result.TotalCost {
			result.Alternatives = append(result.Alternatives, Alternative{
				RouteType:        result.RouteType,
				TotalCost:        result.TotalCost,
				TotalTimeMinutes: result.TotalTimeMinutes,
				Savings:          0,
				Description:      fmt.Sprintf("%s baseline at %s", result.RouteType, currency.Format(result.TotalCost, "USD")),
			})

			savings := result.TotalCost - best.TotalCost
			segments := append(append([]models.RouteSegment(nil), best.First.Route...), best.Second.Route...)
			totalMinutes := int(best.Second.ArrivalTime().Sub(best.First.DepartureTime()).Minutes())

			result.Segments = segments
			result.RouteType = RoutePositioning
			result.TotalCost = best.TotalCost
			result.TotalTimeMinutes = totalMinutes
			result.Savings = round2(savings)
			result.Score = scoreItinerary(best.TotalCost, totalMinutes, len(segments)-1, maxCost, maxDur)
			result.Recommendations = append(result.Recommendations,
				fmt.Sprintf("Position through %s to save %s over the %s fare",
					best.Via, currency.Format(savings, "USD"), criteria.Destination))
		}
	}

	o.appendAlternatives(result, baseline, flights)
	o.appendRecommendations(result, flights, opts)
	return result, nil
}

// pickBaseline prefers the cheapest direct flight; with PrioritizeTime set
// the fastest direct wins instead. Only when no direct flight exists does a
// connecting itinerary become the baseline.
func pickBaseline(flights []models.FlightResult, opts Options) (models.FlightResult, RouteType) {
	var direct []models.FlightResult
	for _, f := range flights {
		if f.Direct() {
			direct = append(direct, f)
		}
	}

	if len(direct) > 0 {
		best := direct[0]
		for _, f := range direct[1:] {
			if opts.PrioritizeTime {
				if f.DurationMinutes < best.DurationMinutes {
					best = f
				}
			} else if f.Pricing.Total < best.Pricing.Total {
				best = f
			}
		}
		return best, RouteDirect
	}

	best := flights[0]
	for _, f := range flights[1:] {
		if f.Pricing.Total < best.Pricing.Total {
			best = f
		}
	}
	return best, RouteConnecting
}

func (o *Optimizer) appendAlternatives(result *Result, baseline models.FlightResult, flights []models.FlightResult) {
	const maxAlternatives = 3

	sorted := append([]models.FlightResult(nil), flights...)
	for i := 0; i < len(sorted); i++ {
		for j := i + 1; j < len(sorted); j++ {
			if sorted[j].Pricing.Total < sorted[i].Pricing.Total {
				sorted[i], sorted[j] = sorted[j], sorted[i]
			}
		}
	}

	for _, f := range sorted {
		if len(result.Alternatives) >= maxAlternatives {
			break
		}
		if f.ID == baseline.ID {
			continue
		}
		rt := RouteConnecting
		if f.Direct() {
			rt = RouteDirect
		}
		result.Alternatives = append(result.Alternatives, Alternative{
			RouteType:        rt,
			TotalCost:        f.Pricing.Total,
			TotalTimeMinutes: f.DurationMinutes,
			Savings:          round2(result.TotalCost - f.Pricing.Total),
			Description: fmt.Sprintf("%s %s itinerary at %s",
				f.Airline, rt, currency.Format(f.Pricing.Total, "USD")),
		})
	}
}

func (o *Optimizer) appendRecommendations(result *Result, flights []models.FlightResult, opts Options) {
	if result.RouteType == RouteDirect {
		result.Recommendations = append(result.Recommendations,
			fmt.Sprintf("Direct flight at %s is the baseline", currency.Format(result.TotalCost, "USD")))
	}

	for _, alt := range result.Alternatives {
		if alt.Savings > 0 && alt.RouteType == RouteConnecting && result.RouteType == RouteDirect {
			result.Recommendations = append(result.Recommendations,
				fmt.Sprintf("A connecting itinerary saves %s if you accept a longer journey",
					currency.Format(alt.Savings, "USD")))
			break
		}
	}

	if opts.PrioritizeTime && result.RouteType == RouteDirect {
		result.Recommendations = append(result.Recommendations,
			"Fastest direct option selected because time was prioritized")
	}
}

func firstFeasible(suggestions []PositioningSuggestion) *PositioningSuggestion {
	for i := range suggestions {
		if suggestions[i].Feasible {
			return &suggestions[i]
		}
	}
	return nil
}

func round2(v float64) float64 {
	if v < 0 {
		return -round2(-v)
	}
	return float64(int(v*100+0.5)) / 100
}
