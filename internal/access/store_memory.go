package access

import (
	"context"
	"sort"
	"sync"

	"gemreg/pkg/domain"
)

// InMemoryStore keeps role membership in memory. The registry is a
// single-instance system of record, so this is the production store; the
// interface exists so membership can move to external storage without
// touching authorization logic.
type InMemoryStore struct {
	mu      sync.RWMutex
	members map[Role]map[domain.Address]struct{}
}

// NewInMemoryStore constructs an empty role store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{members: make(map[Role]map[domain.Address]struct{})}
}

func (s *InMemoryStore) HasRole(_ context.Context, role Role, addr domain.Address) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.members[role][addr]
	return ok, nil
}

// Grant adds addr to role. Idempotent.
func (s *InMemoryStore) Grant(_ context.Context, role Role, addr domain.Address) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.members[role] == nil {
		s.members[role] = make(map[domain.Address]struct{})
	}
	s.members[role][addr] = struct{}{}
	return nil
}

// Revoke removes addr from role. Revoking an absent membership is a no-op.
func (s *InMemoryStore) Revoke(_ context.Context, role Role, addr domain.Address) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.members[role], addr)
	return nil
}

func (s *InMemoryStore) Members(_ context.Context, role Role) ([]domain.Address, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Address, 0, len(s.members[role]))
	for addr := range s.members[role] {
		out = append(out, addr)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}
