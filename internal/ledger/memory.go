package ledger

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"gemreg/pkg/domain"
	"gemreg/pkg/platform/sentinel"
)

// InMemoryLedger tracks ownership with the classic non-fungible-token state
// shape: owner per record, balance per address, operator approvals, and a
// per-owner enumeration index kept in sync with every mutation.
type InMemoryLedger struct {
	mu        sync.RWMutex
	owners    map[domain.RecordID]domain.Address
	balances  map[domain.Address]uint64
	operators map[domain.Address]map[domain.Address]bool
	holdings  map[domain.Address]map[domain.RecordID]struct{}
}

// NewInMemoryLedger constructs an empty ledger.
func NewInMemoryLedger() *InMemoryLedger {
	return &InMemoryLedger{
		owners:    make(map[domain.RecordID]domain.Address),
		balances:  make(map[domain.Address]uint64),
		operators: make(map[domain.Address]map[domain.Address]bool),
		holdings:  make(map[domain.Address]map[domain.RecordID]struct{}),
	}
}

func (l *InMemoryLedger) CreateOwnership(_ context.Context, owner domain.Address, id domain.RecordID) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if current, ok := l.owners[id]; ok {
		return fmt.Errorf("record %s already owned by %s: %w", id, current, sentinel.ErrConflict)
	}
	l.owners[id] = owner
	l.balances[owner]++
	l.addHolding(owner, id)
	return nil
}

func (l *InMemoryLedger) TransferOwnership(_ context.Context, from, to domain.Address, id domain.RecordID) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	current, ok := l.owners[id]
	if !ok {
		return fmt.Errorf("record %s: %w", id, sentinel.ErrNotFound)
	}
	if current != from {
		return fmt.Errorf("record %s owned by %s, not %s: %w", id, current, from, sentinel.ErrInvalidState)
	}
	l.owners[id] = to
	l.balances[from]--
	if l.balances[from] == 0 {
		delete(l.balances, from)
	}
	l.balances[to]++
	l.removeHolding(from, id)
	l.addHolding(to, id)
	return nil
}

func (l *InMemoryLedger) DestroyOwnership(_ context.Context, id domain.RecordID) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	owner, ok := l.owners[id]
	if !ok {
		return fmt.Errorf("record %s: %w", id, sentinel.ErrNotFound)
	}
	delete(l.owners, id)
	l.balances[owner]--
	if l.balances[owner] == 0 {
		delete(l.balances, owner)
	}
	l.removeHolding(owner, id)
	return nil
}

func (l *InMemoryLedger) OwnerOf(_ context.Context, id domain.RecordID) (domain.Address, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	owner, ok := l.owners[id]
	if !ok {
		return "", fmt.Errorf("record %s: %w", id, sentinel.ErrNotFound)
	}
	return owner, nil
}

func (l *InMemoryLedger) IsApproved(_ context.Context, caller, owner domain.Address) (bool, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.operators[owner][caller], nil
}

// SetApprovalForAll lets owner authorize (or deauthorize) operator to move
// any of its records.
func (l *InMemoryLedger) SetApprovalForAll(_ context.Context, owner, operator domain.Address, approved bool) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if approved {
		if l.operators[owner] == nil {
			l.operators[owner] = make(map[domain.Address]bool)
		}
		l.operators[owner][operator] = true
		return nil
	}
	delete(l.operators[owner], operator)
	return nil
}

// BalanceOf reports how many records an address owns.
func (l *InMemoryLedger) BalanceOf(_ context.Context, owner domain.Address) (uint64, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.balances[owner], nil
}

// RecordsOf enumerates the record IDs held by an address, ascending.
func (l *InMemoryLedger) RecordsOf(_ context.Context, owner domain.Address) ([]domain.RecordID, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]domain.RecordID, 0, len(l.holdings[owner]))
	for id := range l.holdings[owner] {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

func (l *InMemoryLedger) addHolding(owner domain.Address, id domain.RecordID) {
	if l.holdings[owner] == nil {
		l.holdings[owner] = make(map[domain.RecordID]struct{})
	}
	l.holdings[owner][id] = struct{}{}
}

func (l *InMemoryLedger) removeHolding(owner domain.Address, id domain.RecordID) {
	delete(l.holdings[owner], id)
	if len(l.holdings[owner]) == 0 {
		delete(l.holdings, owner)
	}
}
