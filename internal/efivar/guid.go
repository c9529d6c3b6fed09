// Copyright (c) 2026 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package efivar

import (
	"fmt"

	"github.com/google/uuid"
)

// GUID identifies a vendor namespace for firmware variables.
type GUID struct {
	id uuid.UUID
}

// ParseGUID parses the canonical 8-4-4-4-12 textual form.
func ParseGUID(s string) (GUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return GUID{}, fmt.Errorf("parse GUID %q: %w", s, err)
	}
	return GUID{id: id}, nil
}

// MustParseGUID is like ParseGUID but panics on malformed input. Use it for constants only.
func MustParseGUID(s string) GUID {
	g, err := ParseGUID(s)
	if err != nil {
		panic(err)
	}
	return g
}

// String returns the lower-case canonical form used in efivarfs file names.
func (g GUID) String() string {
	return g.id.String()
}

// IsZero reports whether g is the nil GUID.
func (g GUID) IsZero() bool {
	return g.id == uuid.Nil
}
