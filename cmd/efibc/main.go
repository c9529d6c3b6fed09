// Copyright (c) 2026 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Command efibc records reboot reasons and one-shot boot entries in EFI
// variables for the bootloader.
package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ManuGH/efibc/internal/config"
	xglog "github.com/ManuGH/efibc/internal/log"
	"github.com/ManuGH/efibc/internal/version"
)

// defaultConfigPath is loaded when present and no path was given.
const defaultConfigPath = "/etc/efibc/config.yaml"

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		printUsage(stderr)
		return 2
	}

	switch args[0] {
	case "daemon":
		return runDaemon(args[1:], stderr)
	case "hook":
		return runHook(args[1:], stderr)
	case "reboot":
		return runReboot(args[1:], stderr)
	case "panic":
		return runPanic(args[1:], stderr)
	case "status":
		return runStatus(args[1:], stdout, stderr)
	case "config":
		return runConfigCLI(args[1:], stdout, stderr)
	case "-version", "--version", "version":
		_, _ = fmt.Fprintln(stdout, version.String())
		return 0
	case "-h", "--help", "help":
		printUsage(stdout)
		return 0
	default:
		_, _ = fmt.Fprintf(stderr, "Unknown command: %s\n\n", args[0])
		printUsage(stderr)
		return 2
	}
}

func printUsage(w io.Writer) {
	_, _ = fmt.Fprintln(w, "Usage:")
	_, _ = fmt.Fprintln(w, "  efibc daemon [-config file]")
	_, _ = fmt.Fprintln(w, "  efibc hook <reboot|kexec|poweroff|halt> [-config file]")
	_, _ = fmt.Fprintln(w, "  efibc reboot [-restart] [-entry id] [-config file]")
	_, _ = fmt.Fprintln(w, "  efibc panic [-context text] [-config file]")
	_, _ = fmt.Fprintln(w, "  efibc status [-format text|json] [-config file]")
	_, _ = fmt.Fprintln(w, "  efibc config validate|dump [-f file]")
	_, _ = fmt.Fprintln(w, "  efibc -version")
}

// resolveConfigPath picks the explicit path, then EFIBC_CONFIG, then the
// default file if it exists.
func resolveConfigPath(explicit string) string {
	if p := strings.TrimSpace(explicit); p != "" {
		return p
	}
	if p := strings.TrimSpace(os.Getenv(config.EnvConfigPath)); p != "" {
		return p
	}
	if _, err := os.Stat(defaultConfigPath); err == nil {
		return defaultConfigPath
	}
	return ""
}

// loadConfig loads configuration and configures the process logger from it.
func loadConfig(path string, logOutput io.Writer) (config.AppConfig, *config.Loader, error) {
	// Configure logger with safe defaults until config is loaded
	xglog.Configure(xglog.Config{
		Level:   "info",
		Output:  logOutput,
		Service: config.DefaultLogService,
		Version: version.Version,
	})

	loader := config.NewLoader(path, version.Version)
	cfg, err := loader.Load()
	if err != nil {
		return cfg, loader, err
	}

	xglog.Configure(xglog.Config{
		Level:   cfg.LogLevel,
		Output:  logOutput,
		Service: cfg.LogService,
		Version: cfg.Version,
	})
	return cfg, loader, nil
}
