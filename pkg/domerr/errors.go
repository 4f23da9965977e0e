// Package domerr defines the code-carrying error type used across the
// registry. Services return these; the HTTP layer maps codes to statuses.
//
// Stores return pkg/platform/sentinel errors for infrastructure facts; the
// owning service translates them into a domerr code at the boundary so callers
// see one consistent taxonomy.
package domerr

import (
	"errors"
	"fmt"

	"gemreg/pkg/domain"
)

// Code classifies a domain error.
type Code string

const (
	// CodeUnauthorized: caller lacks the role required for the operation.
	CodeUnauthorized Code = "unauthorized"
	// CodePaused: operation attempted while the registry is paused.
	CodePaused Code = "paused"
	// CodeDenied: the compliance gate rejected an address.
	CodeDenied Code = "denied"
	// CodeAlreadyExists: record identifier already populated.
	CodeAlreadyExists Code = "already_exists"
	// CodeNotFound: record identifier does not exist.
	CodeNotFound Code = "not_found"
	// CodeInvalidArgument: malformed input (empty batch, bad address, ...).
	CodeInvalidArgument Code = "invalid_argument"
	// CodeUnavailable: a backing collaborator (oracle, store) is unreachable.
	CodeUnavailable Code = "unavailable"
	// CodeInternal: unexpected failure; details in the wrapped error.
	CodeInternal Code = "internal"
)

// Error is a domain error with a machine-readable code.
type Error struct {
	Code    Code
	Message string
	wrapped error
}

func (e *Error) Error() string {
	if e.wrapped != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.wrapped)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.wrapped
}

// New constructs a domain error with the given code.
func New(code Code, msg string) *Error {
	return &Error{Code: code, Message: msg}
}

// Newf constructs a domain error with a formatted message.
func Newf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to an underlying error.
func Wrap(err error, code Code, msg string) *Error {
	return &Error{Code: code, Message: msg, wrapped: err}
}

// HasCode reports whether err (or anything it wraps) carries the given code.
func HasCode(err error, code Code) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// CodeOf extracts the code from err, or CodeInternal if err carries none.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// DeniedReason distinguishes the two ways the compliance gate rejects an
// address.
type DeniedReason string

const (
	// ReasonDenyListed: the address is on the oracle's deny list. Applies
	// regardless of the enforcement toggle.
	ReasonDenyListed DeniedReason = "deny_listed"
	// ReasonNotAllowListed: enforcement is active and the address is missing
	// from the allow list.
	ReasonNotAllowListed DeniedReason = "not_allow_listed"
)

// DeniedDetail carries which address was rejected and why. Retrieve it with
// errors.As on an error whose code is CodeDenied.
type DeniedDetail struct {
	Addr   domain.Address
	Reason DeniedReason
}

func (d *DeniedDetail) Error() string {
	return fmt.Sprintf("address %s rejected: %s", d.Addr, d.Reason)
}

// Denied constructs a CodeDenied error carrying the rejected address and
// reason.
func Denied(addr domain.Address, reason DeniedReason) *Error {
	return &Error{
		Code:    CodeDenied,
		Message: fmt.Sprintf("compliance check failed for %s", addr),
		wrapped: &DeniedDetail{Addr: addr, Reason: reason},
	}
}

// DeniedFrom extracts denial detail from err, if present.
func DeniedFrom(err error) (*DeniedDetail, bool) {
	var d *DeniedDetail
	if errors.As(err, &d) {
		return d, true
	}
	return nil, false
}
