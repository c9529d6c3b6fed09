// Copyright (c) 2026 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package bootreason

import (
	"errors"
	"fmt"

	"github.com/ManuGH/efibc/internal/efivar"
)

var (
	// ErrUnavailable is returned when the firmware runtime is not present.
	ErrUnavailable = efivar.ErrUnavailable

	// ErrUnknownSlot is returned for a Slot outside the fixed table.
	ErrUnknownSlot = errors.New("unknown variable slot")

	// ErrMissingStore is returned when a Writer is built without a store.
	ErrMissingStore = errors.New("variable store is required")
)

// TooLargeError reports a value that does not fit the variable payload. No
// store call was made.
type TooLargeError struct {
	Variable string
	Size     int
	Limit    int
}

func (e *TooLargeError) Error() string {
	return fmt.Sprintf("value is too large (%d bytes, limit %d) for '%s' EFI variable", e.Size, e.Limit, e.Variable)
}

func (e *TooLargeError) Unwrap() error {
	return efivar.ErrTooLarge
}

// StoreError reports a failed store call. Status carries the store's code
// when it reported one.
type StoreError struct {
	Variable string
	Status   efivar.Status
	Err      error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("failed to set %s EFI variable: 0x%x: %v", e.Variable, uint64(e.Status), e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}
