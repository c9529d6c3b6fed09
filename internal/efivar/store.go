// Copyright (c) 2026 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package efivar writes and reads EFI variables through the Linux efivarfs
// interface and provides the bounded wide-character encoding they use.
package efivar

import "context"

// Request is a single SetVariable call.
type Request struct {
	Name       string
	GUID       GUID
	Attributes Attributes
	Data       []byte
}

// Variable is a variable read back from the store.
type Variable struct {
	Name       string
	GUID       GUID
	Attributes Attributes
	Data       []byte
}

// Store accepts variable writes. Implementations perform exactly one write
// attempt per call and never retry.
type Store interface {
	SetVariable(ctx context.Context, req Request) error
}

// Reader reads variables back for diagnostics.
type Reader interface {
	GetVariable(ctx context.Context, name string, guid GUID) (Variable, error)
}
