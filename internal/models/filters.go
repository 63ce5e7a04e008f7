package models

// SearchFilters narrows an aggregated result set. Nil fields are ignored.
type SearchFilters struct {
	PriceMin           *float64 `json:"price_min,omitempty"`
	PriceMax           *float64 `json:"price_max,omitempty"`
	MaxLayovers        *int     `json:"max_layovers,omitempty"`
	Airlines           []string `json:"airlines,omitempty"`
	MaxDurationMinutes *int     `json:"max_duration_minutes,omitempty"`
	MinAvailableSeats  *int     `json:"min_available_seats,omitempty"`
}
