// Package ledger is the system of record for who owns which asset record.
// The lifecycle service consults it before every transfer and delegates all
// ownership mutation to it.
package ledger

import (
	"context"

	"gemreg/pkg/domain"
)

//go:generate mockgen -source=ledger.go -destination=mocks/mocks.go -package=mocks Ledger

// Ledger holds ownership state for records.
//
// Error contract (pkg/platform/sentinel):
//   - CreateOwnership returns ErrConflict if the record is already owned
//   - TransferOwnership returns ErrNotFound if the record is unowned and
//     ErrInvalidState if from is not the current owner
//   - DestroyOwnership / OwnerOf return ErrNotFound if the record is unowned
type Ledger interface {
	CreateOwnership(ctx context.Context, owner domain.Address, id domain.RecordID) error
	TransferOwnership(ctx context.Context, from, to domain.Address, id domain.RecordID) error
	DestroyOwnership(ctx context.Context, id domain.RecordID) error
	OwnerOf(ctx context.Context, id domain.RecordID) (domain.Address, error)
	// IsApproved reports whether caller is authorized to move owner's records
	// (operator approval).
	IsApproved(ctx context.Context, caller, owner domain.Address) (bool, error)
}
