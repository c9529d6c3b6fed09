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
	"os/signal"
	"syscall"

	"github.com/ManuGH/efibc/internal/bootreason"
	"github.com/ManuGH/efibc/internal/daemon"
	xglog "github.com/ManuGH/efibc/internal/log"
	"github.com/ManuGH/efibc/internal/notify"
)

// runHook is installed as a systemd-shutdown hook. systemd-shutdown passes
// the verb as the first argument and ignores the exit status.
func runHook(args []string, stderr io.Writer) int {
	if len(args) == 0 {
		_, _ = fmt.Fprintln(stderr, "Error: hook requires a verb (reboot, kexec, poweroff, halt)")
		return 2
	}
	verb, err := notify.ParseVerb(args[0])
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}

	fs := flag.NewFlagSet("efibc hook", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "path to config file (YAML)")
	if err := fs.Parse(args[1:]); err != nil {
		return 2
	}

	return fire(stderr, *configPath, "hook", func(ctx context.Context, rt *daemon.Runtime) error {
		var oneShot *string
		if verb.Restart() {
			p, err := notify.ReadRebootParam(rt.Config.RebootParamPath)
			if err != nil {
				logger := xglog.WithComponent("cli")
				logger.Warn().
					Err(err).
					Str(xglog.FieldPath, rt.Config.RebootParamPath).
					Msg("could not read reboot parameter; continuing without one-shot entry")
			}
			oneShot = p
		}
		return rt.Reboot(ctx, verb.Restart(), oneShot)
	})
}

func runReboot(args []string, stderr io.Writer) int {
	fs := flag.NewFlagSet("efibc reboot", flag.ContinueOnError)
	fs.SetOutput(stderr)
	restart := fs.Bool("restart", false, "the machine comes back up (reboot) rather than powering off")
	entry := fs.String("entry", "", "boot loader entry to use for the next boot only")
	configPath := fs.String("config", "", "path to config file (YAML)")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	return fire(stderr, *configPath, "cli", func(ctx context.Context, rt *daemon.Runtime) error {
		return rt.Reboot(ctx, *restart, bootreason.Optional(*entry))
	})
}

func runPanic(args []string, stderr io.Writer) int {
	fs := flag.NewFlagSet("efibc panic", flag.ContinueOnError)
	fs.SetOutput(stderr)
	detail := fs.String("context", "", "panic message, e.g. \"softlockup: hung tasks\"")
	configPath := fs.String("config", "", "path to config file (YAML)")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	return fire(stderr, *configPath, "cli", func(ctx context.Context, rt *daemon.Runtime) error {
		return rt.Panic(ctx, bootreason.Optional(*detail))
	})
}

// fire loads config, builds the runtime and runs one notification. An
// unavailable firmware service is not an error for the caller.
func fire(stderr io.Writer, configPath, source string, notifyFn func(context.Context, *daemon.Runtime) error) int {
	cfg, _, err := loadConfig(resolveConfigPath(configPath), stderr)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Configuration error: %v\n", err)
		return 1
	}
	logger := xglog.WithComponent("cli")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT)
	defer stop()
	ctx = xglog.ContextWithSource(ctx, source)

	rt, err := daemon.Bootstrap(cfg, logger)
	if err != nil {
		logger.Error().Err(err).Msg("bootstrap failed")
		return 1
	}

	if err := notifyFn(ctx, rt); err != nil {
		if errors.Is(err, daemon.ErrUnavailable) {
			return 0
		}
		logger.Error().Err(err).Msg("notification failed")
		return 1
	}
	return 0
}
