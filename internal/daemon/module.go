// Copyright (c) 2026 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package daemon

import (
	"context"
	"fmt"
	"sync"

	"github.com/ManuGH/efibc/internal/bootreason"
	xglog "github.com/ManuGH/efibc/internal/log"
	"github.com/ManuGH/efibc/internal/metrics"
	"github.com/ManuGH/efibc/internal/notify"
	"github.com/rs/zerolog"
)

const handlerName = "efibc"

// Module is the registration state of the bootloader-control handlers.
// Build it with NewModule, activate it with Start, tear it down with Stop.
type Module struct {
	deps   ModuleDeps
	logger zerolog.Logger

	mu           sync.Mutex
	dispatcher   *bootreason.Dispatcher
	rebootHandle notify.Handle
	panicHandle  notify.Handle
	registered   bool
}

// NewModule validates deps and returns an unregistered module.
func NewModule(deps ModuleDeps) (*Module, error) {
	if err := deps.Validate(); err != nil {
		return nil, fmt.Errorf("invalid module dependencies: %w", err)
	}
	return &Module{
		deps:   deps,
		logger: deps.Logger.With().Str(xglog.FieldComponent, "module").Logger(),
	}, nil
}

// Start queries capability and registers the reboot and panic handlers.
// It returns ErrUnavailable, leaving the module inert, when the firmware
// variable service is absent.
func (m *Module) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.registered {
		return ErrModuleStarted
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if m.deps.Available != nil && !m.deps.Available() {
		metrics.SetModuleRegistered(false)
		m.logger.Warn().
			Str(xglog.FieldEvent, "module.unavailable").
			Msg("EFI runtime variable service not available, not registering")
		return ErrUnavailable
	}

	writer, err := bootreason.NewWriter(m.deps.Store, m.deps.WriterOptions...)
	if err != nil {
		return fmt.Errorf("create variable writer: %w", err)
	}
	m.dispatcher = bootreason.NewDispatcher(writer, m.deps.Logger, m.deps.Observers...)

	m.rebootHandle = m.deps.RebootChain.Register(handlerName, m.handleReboot)
	m.panicHandle = m.deps.PanicChain.Register(handlerName, m.handlePanic)
	m.registered = true
	metrics.SetModuleRegistered(true)

	m.logger.Info().
		Str(xglog.FieldEvent, "module.registered").
		Str(xglog.FieldGUID, writer.GUID().String()).
		Msg("registered reboot and panic handlers")
	return nil
}

// Stop unregisters both handlers. It is safe to call on an inert module.
func (m *Module) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.registered {
		return
	}
	m.deps.RebootChain.Unregister(m.rebootHandle)
	m.deps.PanicChain.Unregister(m.panicHandle)
	m.rebootHandle = notify.Handle{}
	m.panicHandle = notify.Handle{}
	m.registered = false
	metrics.SetModuleRegistered(false)

	m.logger.Info().
		Str(xglog.FieldEvent, "module.unregistered").
		Msg("unregistered reboot and panic handlers")
}

// Registered reports whether the handlers are currently on the chains.
func (m *Module) Registered() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.registered
}

func (m *Module) handleReboot(ctx context.Context, ev notify.Event) notify.Result {
	m.currentDispatcher().OnReboot(ctx, ev.Restart, ev.Param)
	return notify.Done
}

func (m *Module) handlePanic(ctx context.Context, ev notify.Event) notify.Result {
	m.currentDispatcher().OnPanic(ctx, ev.Param)
	return notify.Done
}

func (m *Module) currentDispatcher() *bootreason.Dispatcher {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.dispatcher
}
