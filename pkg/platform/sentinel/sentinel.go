package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores and ledger implementations
// return these (optionally wrapped) so services can translate them into domain
// errors with proper codes.
//
// These represent factual states about resources, not policy decisions:
// - ErrNotFound: entity does not exist in store
// - ErrConflict: entity already exists / uniqueness violated
// - ErrInvalidState: entity in wrong state for requested operation
// - ErrUnavailable: backing service temporarily unreachable
//
// Policy rejections (role, pause, compliance) never use these; they are
// expressed as pkg/domerr codes by the services that decide them.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrInvalidState = errors.New("invalid state")
	ErrUnavailable  = errors.New("unavailable")
)
