// Package registry defines the attribute store contract: record creation,
// first-write-wins fills, and destruction.
package registry

import (
	"context"

	"gemreg/internal/registry/models"
	"gemreg/pkg/domain"
)

// AttributeStore persists attribute records keyed by record identifier.
//
// Error contract (pkg/platform/sentinel):
//   - CreateEmpty / CreateFull return ErrConflict if id already exists
//   - FillIfEmpty / Destroy / Get return ErrNotFound if id does not exist
//
// Fill and destroy on a missing id report ErrNotFound rather than silently
// succeeding. The lifecycle service still confirms existence first and
// translates these into domain errors.
type AttributeStore interface {
	// CreateEmpty initializes an empty record for id.
	CreateEmpty(ctx context.Context, id domain.RecordID) error
	// CreateFull initializes a record with all ten fields set unconditionally
	// from attrs. Empty strings and zero carat are valid values and stored as
	// given.
	CreateFull(ctx context.Context, id domain.RecordID, attrs models.Attributes) error
	// FillIfEmpty overwrites each currently-unset field of the record from
	// attrs, leaving populated fields untouched. Never fails once id exists.
	FillIfEmpty(ctx context.Context, id domain.RecordID, attrs models.Attributes) error
	// Destroy removes the record.
	Destroy(ctx context.Context, id domain.RecordID) error
	// Get returns the record.
	Get(ctx context.Context, id domain.RecordID) (*models.Record, error)
}
