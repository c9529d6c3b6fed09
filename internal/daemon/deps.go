// SPDX-License-Identifier: MIT

package daemon

import (
	"context"
	"net/http"

	"github.com/ManuGH/efibc/internal/bootreason"
	"github.com/ManuGH/efibc/internal/config"
	"github.com/ManuGH/efibc/internal/efivar"
	"github.com/ManuGH/efibc/internal/notify"
	"github.com/rs/zerolog"
)

// ModuleDeps contains what a Module needs to register itself.
type ModuleDeps struct {
	// Logger is the structured logger for the module
	Logger zerolog.Logger

	// Store receives the variable writes
	Store efivar.Store

	// Available is the capability query; nil means always available
	Available func() bool

	// RebootChain and PanicChain are the notifier chains the module joins
	RebootChain *notify.Chain
	PanicChain  *notify.Chain

	// Observers see every dispatch outcome (journal)
	Observers []bootreason.Observer

	// WriterOptions customize the variable writer (GUID, limit)
	WriterOptions []bootreason.WriterOption
}

// Validate checks if the module dependencies are valid.
func (d *ModuleDeps) Validate() error {
	if d.Logger.GetLevel() == zerolog.Disabled {
		return ErrMissingLogger
	}
	if d.Store == nil {
		return bootreason.ErrMissingStore
	}
	if d.RebootChain == nil || d.PanicChain == nil {
		return ErrMissingChain
	}
	return nil
}

// Prober reports which shutdown verb, if any, systemd has queued.
type Prober interface {
	Probe(ctx context.Context) (notify.Verb, bool, error)
}

// Deps contains dependencies required by the daemon Manager.
// This allows for clean dependency injection and easier testing.
type Deps struct {
	// Logger is the structured logger for the daemon
	Logger zerolog.Logger

	// Config is the effective configuration at startup
	Config config.AppConfig

	// Module is the registration the manager runs
	Module *Module

	// RebootChain is fired when the probe finds a queued shutdown target
	RebootChain *notify.Chain

	// PanicChain, when set, is fired if the manager lifecycle panics
	PanicChain *notify.Chain

	// Probe is consulted on termination; nil disables the probe path
	Probe Prober

	// MetricsHandler is the HTTP handler for Prometheus metrics (if enabled)
	MetricsHandler http.Handler
}

// Validate checks if the dependencies are valid.
func (d *Deps) Validate() error {
	if d.Logger.GetLevel() == zerolog.Disabled {
		return ErrMissingLogger
	}
	if d.Module == nil {
		return ErrMissingModule
	}
	if d.RebootChain == nil {
		return ErrMissingChain
	}
	// Config validation is done by config.Loader
	return nil
}
