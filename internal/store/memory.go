package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dharmasatrya/skyfare/internal/models"
)

// MemoryStore keeps search records in process, for cacheless deployments and
// tests.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]*Record
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]*Record)}
}

func (s *MemoryStore) CreateSearch(_ context.Context, criteria models.SearchCriteria, airlines []string) (*Record, error) {
	now := time.Now()
	rec := &Record{
		ID:        uuid.NewString(),
		Criteria:  criteria,
		Airlines:  airlines,
		Status:    StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[rec.ID] = rec
	return cloneRecord(rec), nil
}

func (s *MemoryStore) UpdateSearch(_ context.Context, id string, upd Update) (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[id]
	if !ok {
		return nil, nil
	}
	applyUpdate(rec, upd)
	return cloneRecord(rec), nil
}

func (s *MemoryStore) GetSearch(_ context.Context, id string) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[id]
	if !ok {
		return nil, nil
	}
	return cloneRecord(rec), nil
}

func cloneRecord(rec *Record) *Record {
	out := *rec
	out.Airlines = append([]string(nil), rec.Airlines...)
	out.Sources = append([]string(nil), rec.Sources...)
	out.Results = append([]models.FlightResult(nil), rec.Results...)
	return &out
}
