// Package models defines the attribute payload attached to asset records.
package models

import (
	"time"

	"gemreg/pkg/domain"
)

// Attributes is the fixed ten-field descriptive payload for a record:
// certification data for a graded stone. String fields are free-form except
// Lab, which conventionally names the grading lab ("GIA", "IGI", ...).
// Carat is integer hundredths of a carat (points); zero means unset on the
// fill path but is stored as given on the full-mint path.
type Attributes struct {
	Lab          string `json:"lab"`
	Certificate  string `json:"certificate"`
	Shape        string `json:"shape"`
	Carat        uint64 `json:"carat"`
	Color        string `json:"color"`
	Clarity      string `json:"clarity"`
	Cut          string `json:"cut"`
	Polish       string `json:"polish"`
	Symmetry     string `json:"symmetry"`
	Fluorescence string `json:"fluorescence"`
}

// IsEmpty reports whether every field is unset.
func (a Attributes) IsEmpty() bool {
	return a == Attributes{}
}

// FillEmpty returns a copy of a with each unset field taken from src.
// Fields already holding a value are left untouched; this is the field-level
// first-write-wins rule that makes certified data tamper-resistant once
// written.
func (a Attributes) FillEmpty(src Attributes) Attributes {
	if a.Lab == "" {
		a.Lab = src.Lab
	}
	if a.Certificate == "" {
		a.Certificate = src.Certificate
	}
	if a.Shape == "" {
		a.Shape = src.Shape
	}
	if a.Carat == 0 {
		a.Carat = src.Carat
	}
	if a.Color == "" {
		a.Color = src.Color
	}
	if a.Clarity == "" {
		a.Clarity = src.Clarity
	}
	if a.Cut == "" {
		a.Cut = src.Cut
	}
	if a.Polish == "" {
		a.Polish = src.Polish
	}
	if a.Symmetry == "" {
		a.Symmetry = src.Symmetry
	}
	if a.Fluorescence == "" {
		a.Fluorescence = src.Fluorescence
	}
	return a
}

// Record is one registered asset: identifier plus attribute payload.
// Ownership lives in the ledger, not here.
type Record struct {
	ID         domain.RecordID `json:"id"`
	Attributes Attributes      `json:"attributes"`
	MintedAt   time.Time       `json:"minted_at"`
}
