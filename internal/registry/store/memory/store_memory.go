package memory

import (
	"context"
	"fmt"
	"sync"

	"gemreg/internal/registry/models"
	"gemreg/pkg/domain"
	"gemreg/pkg/platform/sentinel"
	"gemreg/pkg/requestcontext"
)

// Store keeps attribute records in memory. Production store for single-node
// deployments; the Postgres variant backs multi-process setups.
type Store struct {
	mu      sync.RWMutex
	records map[domain.RecordID]*models.Record
}

// New constructs an empty attribute store.
func New() *Store {
	return &Store{records: make(map[domain.RecordID]*models.Record)}
}

func (s *Store) CreateEmpty(ctx context.Context, id domain.RecordID) error {
	return s.create(ctx, id, models.Attributes{})
}

func (s *Store) CreateFull(ctx context.Context, id domain.RecordID, attrs models.Attributes) error {
	return s.create(ctx, id, attrs)
}

func (s *Store) create(ctx context.Context, id domain.RecordID, attrs models.Attributes) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[id]; ok {
		return fmt.Errorf("record %s already exists: %w", id, sentinel.ErrConflict)
	}
	s.records[id] = &models.Record{
		ID:         id,
		Attributes: attrs,
		MintedAt:   requestcontext.Now(ctx),
	}
	return nil
}

func (s *Store) FillIfEmpty(_ context.Context, id domain.RecordID, attrs models.Attributes) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.records[id]
	if !ok {
		return fmt.Errorf("record %s: %w", id, sentinel.ErrNotFound)
	}
	record.Attributes = record.Attributes.FillEmpty(attrs)
	return nil
}

func (s *Store) Destroy(_ context.Context, id domain.RecordID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[id]; !ok {
		return fmt.Errorf("record %s: %w", id, sentinel.ErrNotFound)
	}
	delete(s.records, id)
	return nil
}

func (s *Store) Get(_ context.Context, id domain.RecordID) (*models.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.records[id]
	if !ok {
		return nil, fmt.Errorf("record %s: %w", id, sentinel.ErrNotFound)
	}
	copied := *record
	return &copied, nil
}
