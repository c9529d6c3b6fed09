// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package daemon

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/ManuGH/efibc/internal/config"
	xglog "github.com/ManuGH/efibc/internal/log"
	"github.com/ManuGH/efibc/internal/notify"
	"github.com/rs/zerolog"
)

// App runs the Manager next to the config watcher and the SIGHUP reload
// trigger. Every successful reload is handed to Manager.ApplyConfig.
type App struct {
	logger       zerolog.Logger
	manager      Manager
	cfgHolder    *config.ConfigHolder
	panicChain   *notify.Chain
	reloadSignal os.Signal
}

// NewApp wires manager to cfgHolder. A nil cfgHolder disables reloads.
// A crash in any goroutine Run starts is reported to panicChain (may be nil)
// before the process dies.
func NewApp(logger zerolog.Logger, manager Manager, cfgHolder *config.ConfigHolder, panicChain *notify.Chain) *App {
	if cfgHolder != nil {
		cfgHolder.SetPanicChain(panicChain)
	}
	return &App{
		logger:       logger.With().Str(xglog.FieldComponent, "app").Logger(),
		manager:      manager,
		cfgHolder:    cfgHolder,
		panicChain:   panicChain,
		reloadSignal: syscall.SIGHUP,
	}
}

// Run blocks until ctx is cancelled or the manager fails.
func (a *App) Run(ctx context.Context) error {
	if a.manager == nil {
		return ErrMissingManager
	}

	g, gctx := errgroup.WithContext(ctx)

	if a.cfgHolder != nil {
		// A missing watcher only costs automatic reloads; SIGHUP still works.
		if err := a.cfgHolder.StartWatcher(gctx); err != nil {
			a.logger.Warn().
				Err(err).
				Str(xglog.FieldEvent, "config.watcher_start_failed").
				Msg("failed to start config watcher")
		}

		applyCh := make(chan config.AppConfig, 1)
		a.cfgHolder.RegisterListener(applyCh)
		g.Go(func() error { return a.applyLoop(gctx, applyCh) })

		if a.reloadSignal != nil {
			g.Go(func() error { return a.reloadOnSignal(gctx) })
		}
	}

	// Manager.Start guards itself.
	g.Go(func() error {
		if err := a.manager.Start(gctx); err != nil {
			_ = a.manager.Shutdown(context.WithoutCancel(gctx))
			return err
		}
		return nil
	})

	err := g.Wait()
	if a.cfgHolder != nil {
		a.cfgHolder.Stop()
	}
	return err
}

func (a *App) applyLoop(ctx context.Context, applyCh <-chan config.AppConfig) error {
	defer notify.Guard(context.WithoutCancel(ctx), a.panicChain)
	for {
		select {
		case <-ctx.Done():
			return nil
		case cfg := <-applyCh:
			a.manager.ApplyConfig(cfg)
		}
	}
}

func (a *App) reloadOnSignal(ctx context.Context) error {
	defer notify.Guard(context.WithoutCancel(ctx), a.panicChain)
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, a.reloadSignal)
	defer signal.Stop(sigCh)

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-sigCh:
			a.logger.Info().
				Str(xglog.FieldEvent, "config.reload_signal").
				Str("signal", a.reloadSignal.String()).
				Msg("reloading configuration")
			if err := a.cfgHolder.Reload(ctx); err != nil {
				a.logger.Warn().
					Err(err).
					Str(xglog.FieldEvent, "config.reload_failed").
					Msg("config reload failed, keeping current configuration")
			}
		}
	}
}
