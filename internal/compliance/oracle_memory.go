package compliance

import (
	"context"
	"sync"

	"gemreg/pkg/domain"
)

// MemoryOracle keeps allow and deny sets in memory for dev and tests. The two
// lists are independent: an address may sit on both, in which case the deny
// list wins at the gate.
type MemoryOracle struct {
	mu      sync.RWMutex
	allowed map[domain.Address]struct{}
	denied  map[domain.Address]struct{}
}

// NewMemoryOracle constructs an oracle with empty lists.
func NewMemoryOracle() *MemoryOracle {
	return &MemoryOracle{
		allowed: make(map[domain.Address]struct{}),
		denied:  make(map[domain.Address]struct{}),
	}
}

func (o *MemoryOracle) IsAllowListed(_ context.Context, addr domain.Address) (bool, error) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	_, ok := o.allowed[addr]
	return ok, nil
}

func (o *MemoryOracle) IsDenyListed(_ context.Context, addr domain.Address) (bool, error) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	_, ok := o.denied[addr]
	return ok, nil
}

// Allow adds addr to the allow list.
func (o *MemoryOracle) Allow(addr domain.Address) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.allowed[addr] = struct{}{}
}

// Deny adds addr to the deny list.
func (o *MemoryOracle) Deny(addr domain.Address) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.denied[addr] = struct{}{}
}

// Clear removes addr from both lists.
func (o *MemoryOracle) Clear(addr domain.Address) {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.allowed, addr)
	delete(o.denied, addr)
}
