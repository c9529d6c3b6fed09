// Copyright (c) 2026 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package bootreason

import (
	"context"
	"errors"
	"fmt"

	"github.com/ManuGH/efibc/internal/efivar"
	"github.com/ManuGH/efibc/internal/metrics"
)

// Writer encodes a value and submits it to the variable store under the
// loader-entry namespace. Each Write performs at most one store call.
type Writer struct {
	store efivar.Store
	guid  efivar.GUID
	limit int
}

// WriterOption customizes a Writer.
type WriterOption func(*Writer)

// WithGUID overrides the vendor namespace.
func WithGUID(guid efivar.GUID) WriterOption {
	return func(w *Writer) {
		if !guid.IsZero() {
			w.guid = guid
		}
	}
}

// WithLimit lowers the payload ceiling. Values outside (0, efivar.MaxDataSize] are ignored.
func WithLimit(limit int) WriterOption {
	return func(w *Writer) {
		if limit > 0 && limit <= efivar.MaxDataSize {
			w.limit = limit
		}
	}
}

// NewWriter returns a Writer for store.
func NewWriter(store efivar.Store, opts ...WriterOption) (*Writer, error) {
	if store == nil {
		return nil, ErrMissingStore
	}
	w := &Writer{
		store: store,
		guid:  LoaderEntryGUID,
		limit: efivar.MaxDataSize,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// GUID returns the vendor namespace the writer targets.
func (w *Writer) GUID() efivar.GUID {
	return w.guid
}

// Write stores value in the variable backing slot. Oversized values fail with
// *TooLargeError before the store is touched; store failures come back as
// *StoreError.
func (w *Writer) Write(ctx context.Context, slot Slot, value string) error {
	name := slot.VariableName()
	if name == "" {
		return fmt.Errorf("%w: %d", ErrUnknownSlot, int(slot))
	}

	size := efivar.EncodedSize(value)
	if size > w.limit {
		metrics.IncVariableWrite(name, metrics.ResultTooLarge)
		return &TooLargeError{Variable: name, Size: size, Limit: w.limit}
	}

	data, err := efivar.EncodeBytes(value, w.limit)
	if err != nil {
		metrics.IncVariableWrite(name, metrics.ResultTooLarge)
		return &TooLargeError{Variable: name, Size: size, Limit: w.limit}
	}

	req := efivar.Request{
		Name:       name,
		GUID:       w.guid,
		Attributes: efivar.PersistentRuntime,
		Data:       data,
	}
	if err := w.store.SetVariable(ctx, req); err != nil {
		metrics.IncVariableWrite(name, metrics.ResultStoreError)
		status := efivar.StatusFromError(err)
		var storeErr *efivar.StoreError
		if errors.As(err, &storeErr) {
			status = storeErr.Status
		}
		return &StoreError{Variable: name, Status: status, Err: err}
	}

	metrics.IncVariableWrite(name, metrics.ResultOK)
	return nil
}
