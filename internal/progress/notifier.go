// Package progress pushes search lifecycle events to the real-time layer.
package progress

import (
	"github.com/dharmasatrya/skyfare/internal/models"
	"github.com/dharmasatrya/skyfare/internal/store"
)

// EventType names the push events the orchestrator emits.
type EventType string

const (
	EventSearchProgress EventType = "search:progress"
	EventSearchFiltered EventType = "search:filtered"
	EventSearchSorted   EventType = "search:sorted"
)

// Event is one pushed message. Exactly one of the payload fields is set,
// matching Type.
type Event struct {
	Type      EventType        `json:"event"`
	SearchID  string           `json:"search_id"`
	Timestamp int64            `json:"timestamp"`
	Progress  *ProgressPayload `json:"progress,omitempty"`
	Filtered  *FilteredPayload `json:"filtered,omitempty"`
	Sorted    *SortedPayload   `json:"sorted,omitempty"`
}

type ProgressPayload struct {
	Status   store.Status `json:"status"`
	Progress int          `json:"progress"`
}

type FilteredPayload struct {
	Filters       *models.SearchFilters `json:"filters"`
	OriginalCount int                   `json:"original_count"`
	FilteredCount int                   `json:"filtered_count"`
}

type SortedPayload struct {
	SortBy    string                `json:"sort_by"`
	SortOrder string                `json:"sort_order"`
	Results   []models.FlightResult `json:"results"`
}

// Notifier is the push boundary. Implementations must not block the caller
// beyond a bounded buffer.
type Notifier interface {
	SearchProgress(searchID string, status store.Status, progress int)
	SearchFiltered(searchID string, filters *models.SearchFilters, originalCount, filteredCount int)
	SearchSorted(searchID, sortBy, sortOrder string, results []models.FlightResult)
}

// NoopNotifier drops all events.
type NoopNotifier struct{}

func NewNoopNotifier() *NoopNotifier { return &NoopNotifier{} }

func (NoopNotifier) SearchProgress(string, store.Status, int) {}

func (NoopNotifier) SearchFiltered(string, *models.SearchFilters, int, int) {}

func (NoopNotifier) SearchSorted(string, string, string, []models.FlightResult) {}
