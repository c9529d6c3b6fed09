// Copyright (c) 2026 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"

	"github.com/ManuGH/efibc/internal/config"
	"github.com/ManuGH/efibc/internal/daemon"
	"github.com/ManuGH/efibc/internal/health"
	xglog "github.com/ManuGH/efibc/internal/log"
	"github.com/ManuGH/efibc/internal/notify"
	"github.com/ManuGH/efibc/internal/version"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func runDaemon(args []string, stderr io.Writer) int {
	fs := flag.NewFlagSet("efibc daemon", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "path to config file (YAML)")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	effectiveConfigPath := resolveConfigPath(*configPath)
	cfg, loader, err := loadConfig(effectiveConfigPath, stderr)
	logger := xglog.WithComponent("daemon")
	if err != nil {
		logger.Error().
			Err(err).
			Str("event", "config.load_failed").
			Str("config_path", effectiveConfigPath).
			Msg("failed to load configuration")
		return 1
	}

	if effectiveConfigPath != "" {
		logger.Info().
			Str("event", "config.loaded").
			Str("source", "file").
			Str("path", effectiveConfigPath).
			Msg("loaded configuration from file")
	} else {
		logger.Info().
			Str("event", "config.loaded").
			Str("source", "env+defaults").
			Msg("loaded configuration from environment and defaults")
	}

	logger.Info().
		Str("event", "startup").
		Str("version", version.Version).
		Str("commit", version.Commit).
		Str("build_date", version.Date).
		Msg("starting efibc")

	ctx, stop := daemon.WaitForShutdown()
	defer stop()

	if err := serve(ctx, cfg, loader); err != nil {
		logger.Error().Err(err).Str("event", "daemon.failed").Msg("daemon exited with error")
		return 1
	}
	logger.Info().Str("event", "shutdown").Msg("efibc stopped")
	return 0
}

func serve(ctx context.Context, cfg config.AppConfig, loader *config.Loader) error {
	logger := xglog.WithComponent("daemon")

	rt, err := daemon.Bootstrap(cfg, logger)
	if err != nil {
		return fmt.Errorf("bootstrap: %w", err)
	}

	deps := daemon.Deps{
		Logger:      logger,
		Config:      cfg,
		Module:      rt.Module,
		RebootChain: rt.RebootChain,
		PanicChain:  rt.PanicChain,
	}
	if cfg.MetricsEnabled {
		deps.MetricsHandler = metricsMux(cfg, rt)
	}

	var bus *notify.SystemdBus
	if cfg.SystemdProbe && !cfg.DryRun {
		bus, err = notify.ConnectSystemd()
		if err != nil {
			logger.Warn().
				Err(err).
				Str("event", "probe.unavailable").
				Msg("system bus unavailable; termination will not write a reboot reason")
		} else {
			deps.Probe = notify.NewShutdownProbe(bus)
		}
	}

	mgr, err := daemon.NewManager(deps)
	if err != nil {
		if bus != nil {
			_ = bus.Close()
		}
		return err
	}
	if bus != nil {
		mgr.RegisterShutdownHook("systemd-bus", func(context.Context) error {
			return bus.Close()
		})
	}

	holder := config.NewConfigHolder(cfg, loader)
	app := daemon.NewApp(logger, mgr, holder, rt.PanicChain)
	if err := app.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// metricsMux serves Prometheus metrics alongside liveness and readiness.
func metricsMux(cfg config.AppConfig, rt *daemon.Runtime) http.Handler {
	hm := health.NewManager(version.Version)
	hm.RegisterChecker(health.NewModuleChecker(rt.Module.Registered))
	hm.RegisterChecker(health.NewEFIVarsChecker(cfg.EFIVarsDir, cfg.DryRun, cfg.AllowPlainDir))
	hm.RegisterChecker(health.NewJournalChecker(rt.Journal))

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	hm.Mount(mux)
	return mux
}
