// Package store defines the narrow search-persistence contract the
// orchestrator depends on, with Redis and in-memory implementations.
package store

import (
	"context"
	"time"

	"github.com/dharmasatrya/skyfare/internal/models"
)

// Status is the aggregate state of a search. Terminal states are final.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusError     Status = "error"
	StatusCancelled Status = "cancelled"
)

func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusError || s == StatusCancelled
}

// Record is one persisted search.
type Record struct {
	ID        string                `json:"id"`
	Criteria  models.SearchCriteria `json:"criteria"`
	Airlines  []string              `json:"airlines"`
	Status    Status                `json:"status"`
	Results   []models.FlightResult `json:"results,omitempty"`
	Sources   []string              `json:"sources,omitempty"`
	CreatedAt time.Time             `json:"created_at"`
	UpdatedAt time.Time             `json:"updated_at"`
}

// Update is a partial record update; nil fields are untouched.
type Update struct {
	Status  *Status
	Results []models.FlightResult
	Sources []string
}

// SearchStore is everything the orchestrator needs from persistence.
// UpdateSearch and GetSearch return nil without error for unknown ids.
type SearchStore interface {
	CreateSearch(ctx context.Context, criteria models.SearchCriteria, airlines []string) (*Record, error)
	UpdateSearch(ctx context.Context, id string, upd Update) (*Record, error)
	GetSearch(ctx context.Context, id string) (*Record, error)
}
