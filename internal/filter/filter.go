// Package filter narrows and orders aggregated flight results. Sorting is
// deterministic for identical inputs: ties break on result id.
package filter

import (
	"sort"
	"strings"

	"github.com/dharmasatrya/skyfare/internal/models"
)

// Apply filters then sorts a result set, returning a new slice.
func Apply(results []models.FlightResult, filters *models.SearchFilters, sortBy, sortOrder string) []models.FlightResult {
	filtered := applyFilters(results, filters)
	return Sort(filtered, sortBy, sortOrder)
}

func applyFilters(results []models.FlightResult, filters *models.SearchFilters) []models.FlightResult {
	if filters == nil {
		return append([]models.FlightResult(nil), results...)
	}

	out := make([]models.FlightResult, 0, len(results))
	for _, f := range results {
		if matches(f, filters) {
			out = append(out, f)
		}
	}
	return out
}

func matches(f models.FlightResult, filters *models.SearchFilters) bool {
	if filters.PriceMin != nil && f.Pricing.Total < *filters.PriceMin {
		return false
	}
	if filters.PriceMax != nil && f.Pricing.Total > *filters.PriceMax {
		return false
	}
	if filters.MaxLayovers != nil && f.Layovers > *filters.MaxLayovers {
		return false
	}
	if filters.MaxDurationMinutes != nil && f.DurationMinutes > *filters.MaxDurationMinutes {
		return false
	}
	if filters.MinAvailableSeats != nil && f.Availability.AvailableSeats < *filters.MinAvailableSeats {
		return false
	}

	if len(filters.Airlines) > 0 {
		found := false
		for _, airline := range filters.Airlines {
			if strings.EqualFold(f.Airline, airline) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	return true
}

// Sort orders results by the named key. Unknown keys fall back to price
// ascending.
func Sort(results []models.FlightResult, sortBy, sortOrder string) []models.FlightResult {
	out := append([]models.FlightResult(nil), results...)
	if len(out) == 0 {
		return out
	}

	ascending := strings.ToLower(sortOrder) != "desc"

	var less func(a, b models.FlightResult) bool
	switch strings.ToLower(sortBy) {
	case "duration":
		less = func(a, b models.FlightResult) bool { return a.DurationMinutes < b.DurationMinutes }
	case "departure":
		less = func(a, b models.FlightResult) bool { return a.DepartureTime().Before(b.DepartureTime()) }
	case "arrival":
		less = func(a, b models.FlightResult) bool { return a.ArrivalTime().Before(b.ArrivalTime()) }
	case "layovers", "stops":
		less = func(a, b models.FlightResult) bool { return a.Layovers < b.Layovers }
	case "score":
		less = func(a, b models.FlightResult) bool { return a.Score < b.Score }
	default: // "price" and anything unknown
		less = func(a, b models.FlightResult) bool { return a.Pricing.Total < b.Pricing.Total }
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if less(a, b) != less(b, a) {
			if ascending {
				return less(a, b)
			}
			return less(b, a)
		}
		return a.ID < b.ID
	})

	return out
}
