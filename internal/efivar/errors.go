// Copyright (c) 2026 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package efivar

import "errors"

var (
	// ErrTooLarge is returned when an encoded value does not fit the destination capacity.
	ErrTooLarge = errors.New("encoded value exceeds capacity")

	// ErrUnavailable is returned when the firmware variable runtime is not present.
	ErrUnavailable = errors.New("EFI runtime variable services unavailable")

	// ErrNotFound is returned when a variable does not exist in the store.
	ErrNotFound = errors.New("variable not found")

	// ErrInvalidName is returned for variable names that are empty or not printable ASCII.
	ErrInvalidName = errors.New("invalid variable name")
)
