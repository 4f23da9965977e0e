package access

import (
	"context"

	"gemreg/pkg/domain"
)

// Store persists role membership. Membership changes must be visible to all
// subsequent checks immediately; no caching.
type Store interface {
	HasRole(ctx context.Context, role Role, addr domain.Address) (bool, error)
	Grant(ctx context.Context, role Role, addr domain.Address) error
	Revoke(ctx context.Context, role Role, addr domain.Address) error
	Members(ctx context.Context, role Role) ([]domain.Address, error)
}

// Checker is the read-only view consumed by services that only authorize.
type Checker interface {
	HasRole(ctx context.Context, role Role, addr domain.Address) (bool, error)
}
