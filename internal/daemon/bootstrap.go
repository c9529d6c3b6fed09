// SPDX-License-Identifier: MIT

// Package daemon provides the core daemon bootstrapping and lifecycle management.
package daemon

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ManuGH/efibc/internal/bootreason"
	"github.com/ManuGH/efibc/internal/config"
	"github.com/ManuGH/efibc/internal/efivar"
	"github.com/ManuGH/efibc/internal/journal"
	"github.com/ManuGH/efibc/internal/notify"
	"github.com/rs/zerolog"
)

// VariableStore is what the runtime needs from a backing store: writes for
// the dispatcher and reads for status.
type VariableStore interface {
	efivar.Store
	efivar.Reader
}

// Runtime bundles the components built from one configuration.
type Runtime struct {
	Config      config.AppConfig
	Store       VariableStore
	Journal     *journal.Journal
	RebootChain *notify.Chain
	PanicChain  *notify.Chain
	Module      *Module
}

// Bootstrap builds a Runtime. DryRun swaps efivarfs for an in-memory store.
func Bootstrap(cfg config.AppConfig, logger zerolog.Logger) (*Runtime, error) {
	var (
		store     VariableStore
		available func() bool
	)
	if cfg.DryRun {
		store = efivar.NewMemStore()
		logger.Warn().
			Str("event", "bootstrap.dry_run").
			Msg("dry run: variable writes are kept in memory")
	} else {
		store = efivar.NewEfivarfs(cfg.EFIVarsDir)
		dir, allowPlain := cfg.EFIVarsDir, cfg.AllowPlainDir
		available = func() bool { return efivar.Usable(dir, allowPlain) }
		if allowPlain {
			logger.Warn().
				Str("event", "bootstrap.plain_dir").
				Str("path", dir).
				Msg("efivarfs mount check disabled: writes may not reach firmware")
		}
	}

	rt := &Runtime{
		Config:      cfg,
		Store:       store,
		Journal:     journal.New(cfg.JournalPath),
		RebootChain: notify.NewChain("reboot"),
		PanicChain:  notify.NewChain("panic"),
	}

	var observers []bootreason.Observer
	if cfg.JournalPath != "" {
		observers = append(observers, rt.Journal)
	}

	module, err := NewModule(ModuleDeps{
		Logger:      logger,
		Store:       store,
		Available:   available,
		RebootChain: rt.RebootChain,
		PanicChain:  rt.PanicChain,
		Observers:   observers,
	})
	if err != nil {
		return nil, err
	}
	rt.Module = module
	return rt, nil
}

// Reboot starts the module, fires the reboot chain once and stops the module.
// ErrUnavailable is returned untouched so callers can exit quietly.
func (rt *Runtime) Reboot(ctx context.Context, restart bool, oneShot *string) error {
	return rt.fire(ctx, rt.RebootChain, notify.Event{Kind: notify.KindReboot, Restart: restart, Param: oneShot})
}

// Panic starts the module, fires the panic chain once and stops the module.
func (rt *Runtime) Panic(ctx context.Context, detail *string) error {
	return rt.fire(ctx, rt.PanicChain, notify.Event{Kind: notify.KindPanic, Param: detail})
}

func (rt *Runtime) fire(ctx context.Context, chain *notify.Chain, ev notify.Event) error {
	if err := rt.Module.Start(ctx); err != nil {
		return fmt.Errorf("start module: %w", err)
	}
	defer rt.Module.Stop()
	chain.Call(ctx, ev)
	return nil
}

// WaitForShutdown returns a context cancelled on SIGINT or SIGTERM.
func WaitForShutdown() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
