// Package compliance wraps the allow/deny-list oracle with the enforcement
// toggle and produces the single allow/deny decision consumed by the
// lifecycle service.
package compliance

import (
	"context"

	"gemreg/pkg/domain"
)

//go:generate mockgen -source=oracle.go -destination=mocks/mocks.go -package=mocks Oracle

// Oracle answers list membership for an address. The current reference is
// swappable at runtime; there is no versioning contract beyond whatever the
// current oracle answers now. Lookups are synchronous reads of
// already-available data, never long-blocking calls.
type Oracle interface {
	IsAllowListed(ctx context.Context, addr domain.Address) (bool, error)
	IsDenyListed(ctx context.Context, addr domain.Address) (bool, error)
}
