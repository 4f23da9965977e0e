// Package domain holds the primitive identifier types shared across the
// registry. Keeping them here (rather than in any one service package) stops
// stores, transport, and services from depending on each other for basic types.
package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// Address identifies a party that can hold roles, own records, and appear on
// compliance lists. The registry treats it as an opaque, case-sensitive token;
// it never interprets the contents.
type Address string

// IsZero reports whether the address is unset.
func (a Address) IsZero() bool {
	return a == ""
}

// String returns the raw address string.
func (a Address) String() string {
	return string(a)
}

// ParseAddress validates and returns an Address. Addresses must be non-empty
// and free of surrounding whitespace; anything else is caller error.
func ParseAddress(s string) (Address, error) {
	if s == "" {
		return "", fmt.Errorf("address is empty")
	}
	if strings.TrimSpace(s) != s {
		return "", fmt.Errorf("address has surrounding whitespace: %q", s)
	}
	return Address(s), nil
}

// RecordID is the unique integer key for a minted asset record. IDs are
// assigned monotonically by the lifecycle service and never reused.
type RecordID uint64

// IsZero reports whether the record ID is unset. Assigned IDs start at 1, so
// zero is never a valid record.
func (r RecordID) IsZero() bool {
	return r == 0
}

// String formats the record ID in decimal.
func (r RecordID) String() string {
	return strconv.FormatUint(uint64(r), 10)
}

// ParseRecordID parses a decimal record ID.
func ParseRecordID(s string) (RecordID, error) {
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse record id %q: %w", s, err)
	}
	if v == 0 {
		return 0, fmt.Errorf("record id must be positive")
	}
	return RecordID(v), nil
}
