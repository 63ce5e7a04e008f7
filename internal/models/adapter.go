package models

import "time"

// AdapterRequest is the wire shape every airline adapter accepts.
type AdapterRequest struct {
	Criteria  SearchCriteria `json:"search_criteria"`
	RequestID string         `json:"request_id"`
	Timestamp time.Time      `json:"timestamp"`
}

// AdapterResponse is the normalized response every adapter produces.
// Cached is set when the response was served from the response cache
// rather than the backend.
type AdapterResponse struct {
	RequestID    string         `json:"request_id"`
	Flights      []FlightResult `json:"flights"`
	TotalResults int            `json:"total_results"`
	SearchTimeMs int64          `json:"search_time_ms"`
	Currency     string         `json:"currency"`
	Timestamp    time.Time      `json:"timestamp"`
	Source       string         `json:"source"`
	Cached       bool           `json:"cached,omitempty"`
}
