// Copyright (c) 2026 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package bootreason

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ManuGH/efibc/internal/efivar"
	xglog "github.com/ManuGH/efibc/internal/log"
	"github.com/ManuGH/efibc/internal/metrics"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// VariableWriter is the store-facing half of the dispatcher. *Writer implements it.
type VariableWriter interface {
	Write(ctx context.Context, slot Slot, value string) error
}

// WriteResult is one attempted variable write.
type WriteResult struct {
	Slot  Slot
	Value string
	Err   error
}

// Outcome describes a handled event after all writes were attempted.
type Outcome struct {
	EventID string
	Event   Event
	Reason  Reason
	Writes  []WriteResult
	At      time.Time
}

// Observer is notified after every dispatch. Errors are logged and ignored.
type Observer interface {
	Observe(ctx context.Context, outcome Outcome) error
}

// Dispatcher is the terminal handler for reboot and panic notifications.
// Its entry points never return an error: callers run on shutdown or crash
// paths that cannot act on one.
type Dispatcher struct {
	writer    VariableWriter
	logger    zerolog.Logger
	observers []Observer
	now       func() time.Time
}

// NewDispatcher returns a Dispatcher writing through w.
func NewDispatcher(w VariableWriter, logger zerolog.Logger, observers ...Observer) *Dispatcher {
	return &Dispatcher{
		writer:    w,
		logger:    logger.With().Str(xglog.FieldComponent, "dispatcher").Logger(),
		observers: observers,
		now:       time.Now,
	}
}

// OnReboot records a reboot (restart) or shutdown. When oneShot is set and the
// reason was written, the one-shot loader entry is written as well.
func (d *Dispatcher) OnReboot(ctx context.Context, restart bool, oneShot *string) {
	d.Dispatch(ctx, RebootEvent(restart, oneShot))
}

// OnPanic records a crash, classified as watchdog when detail carries a watchdog signature.
func (d *Dispatcher) OnPanic(ctx context.Context, detail *string) {
	d.Dispatch(ctx, PanicEvent(detail))
}

// Dispatch handles ev synchronously.
func (d *Dispatcher) Dispatch(ctx context.Context, ev Event) {
	if ctx == nil {
		ctx = context.Background()
	}
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error().
				Str(xglog.FieldEvent, "dispatch.recovered").
				Str("panic", fmt.Sprint(r)).
				Msg("recovered from panic while recording termination event")
		}
	}()

	eventID := newEventID()
	ctx = xglog.ContextWithEventID(ctx, eventID)
	logger := xglog.WithContext(ctx, d.logger)

	reason := ev.Classify()
	metrics.IncEvent(ev.Kind.String(), reason.String())

	outcome := Outcome{
		EventID: eventID,
		Event:   ev,
		Reason:  reason,
		At:      d.now(),
	}

	err := d.write(ctx, logger, RebootReason, reason.String())
	outcome.Writes = append(outcome.Writes, WriteResult{Slot: RebootReason, Value: reason.String(), Err: err})

	if err == nil && ev.Kind == KindReboot && ev.OneShot != nil {
		oneShotErr := d.write(ctx, logger, OneShotEntry, *ev.OneShot)
		outcome.Writes = append(outcome.Writes, WriteResult{Slot: OneShotEntry, Value: *ev.OneShot, Err: oneShotErr})
	}

	complete := logger.Info().
		Str(xglog.FieldEvent, "dispatch.complete").
		Str(xglog.FieldKind, ev.Kind.String()).
		Str(xglog.FieldReason, reason.String())
	if ev.Kind == KindReboot {
		complete = complete.Bool(xglog.FieldRestart, ev.Restart)
		if ev.OneShot != nil {
			complete = complete.Str(xglog.FieldOneShot, *ev.OneShot)
		}
	}
	complete.
		Int("writes", len(outcome.Writes)).
		Bool("ok", outcome.OK()).
		Msg("termination event recorded")

	for _, obs := range d.observers {
		if obs == nil {
			continue
		}
		if err := obs.Observe(ctx, outcome); err != nil {
			logger.Warn().
				Err(err).
				Str(xglog.FieldEvent, "dispatch.observer_failed").
				Msg("dispatch observer failed")
		}
	}
}

func (d *Dispatcher) write(ctx context.Context, logger zerolog.Logger, slot Slot, value string) error {
	if d.writer == nil {
		logger.Error().Str(xglog.FieldVariable, slot.VariableName()).Msg("no variable writer configured")
		return ErrMissingStore
	}

	err := d.writer.Write(ctx, slot, value)
	if err == nil {
		logger.Debug().
			Str(xglog.FieldVariable, slot.VariableName()).
			Int(xglog.FieldSizeBytes, efivar.EncodedSize(value)).
			Msg("EFI variable set")
		return nil
	}

	var tooLarge *TooLargeError
	var storeErr *StoreError
	switch {
	case errors.As(err, &tooLarge):
		logger.Error().
			Str(xglog.FieldEvent, "variable.too_large").
			Str(xglog.FieldVariable, tooLarge.Variable).
			Int(xglog.FieldSizeBytes, tooLarge.Size).
			Int(xglog.FieldLimit, tooLarge.Limit).
			Msg("value is too large for EFI variable")
	case errors.As(err, &storeErr):
		logger.Error().
			Err(storeErr.Err).
			Str(xglog.FieldEvent, "variable.set_failed").
			Str(xglog.FieldVariable, storeErr.Variable).
			Str(xglog.FieldStatus, fmt.Sprintf("0x%x", uint64(storeErr.Status))).
			Msg("failed to set EFI variable")
	default:
		logger.Error().
			Err(err).
			Str(xglog.FieldEvent, "variable.set_failed").
			Str(xglog.FieldVariable, slot.VariableName()).
			Msg("failed to set EFI variable")
	}
	return err
}

// OK reports whether every attempted write succeeded.
func (o Outcome) OK() bool {
	for _, w := range o.Writes {
		if w.Err != nil {
			return false
		}
	}
	return len(o.Writes) > 0
}

func newEventID() string {
	id, err := uuid.NewRandom()
	if err != nil {
		return ""
	}
	return id.String()
}
