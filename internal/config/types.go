// Copyright (c) 2026 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"time"

	"github.com/ManuGH/efibc/internal/efivar"
	"github.com/ManuGH/efibc/internal/notify"
)

// Defaults.
const (
	DefaultJournalPath     = "/var/lib/efibc/last-event.json"
	DefaultLogLevel        = "info"
	DefaultLogService      = "efibc"
	DefaultMetricsAddr     = ":9437"
	DefaultShutdownTimeout = 5 * time.Second
)

// Environment keys.
const (
	EnvConfigPath      = "EFIBC_CONFIG"
	EnvEFIVarsDir      = "EFIBC_EFIVARS_DIR"
	EnvRebootParamPath = "EFIBC_REBOOT_PARAM_PATH"
	EnvJournalPath     = "EFIBC_JOURNAL_PATH"
	EnvLogLevel        = "EFIBC_LOG_LEVEL"
	EnvLogService      = "EFIBC_LOG_SERVICE"
	EnvMetricsEnabled  = "EFIBC_METRICS_ENABLED"
	EnvMetricsAddr     = "EFIBC_METRICS_ADDR"
	EnvShutdownTimeout = "EFIBC_SHUTDOWN_TIMEOUT"
	EnvSystemdProbe    = "EFIBC_SYSTEMD_PROBE"
	EnvDryRun          = "EFIBC_DRY_RUN"
	EnvAllowPlainDir   = "EFIBC_ALLOW_PLAIN_DIR"
)

// AppConfig is the effective runtime configuration.
type AppConfig struct {
	Version string

	// EFIVarsDir is where efivarfs is mounted.
	EFIVarsDir string
	// AllowPlainDir accepts an ordinary directory as EFIVarsDir. Writes then
	// never reach firmware; meant for containers and tests.
	AllowPlainDir bool
	// RebootParamPath holds the one-shot entry passed to "systemctl reboot ARG".
	RebootParamPath string
	// JournalPath records the last event. Empty disables the journal.
	JournalPath string

	LogLevel   string
	LogService string

	MetricsEnabled bool
	MetricsAddr    string

	// ShutdownTimeout bounds daemon teardown after a termination signal.
	ShutdownTimeout time.Duration
	// SystemdProbe asks systemd on SIGTERM whether the host is shutting down.
	SystemdProbe bool
	// DryRun records writes in memory instead of touching firmware variables.
	DryRun bool
}

// Defaults returns the built-in configuration.
func Defaults() AppConfig {
	return AppConfig{
		EFIVarsDir:      efivar.DefaultDir,
		RebootParamPath: notify.DefaultRebootParamPath,
		JournalPath:     DefaultJournalPath,
		LogLevel:        DefaultLogLevel,
		LogService:      DefaultLogService,
		MetricsEnabled:  false,
		MetricsAddr:     DefaultMetricsAddr,
		ShutdownTimeout: DefaultShutdownTimeout,
		SystemdProbe:    true,
		DryRun:          false,
		AllowPlainDir:   false,
	}
}

// FileConfig is the YAML file representation. Pointer fields distinguish
// "unset" from the zero value.
type FileConfig struct {
	EFIVarsDir      string        `yaml:"efivarsDir,omitempty" json:"efivarsDir,omitempty"`
	RebootParamPath string        `yaml:"rebootParamPath,omitempty" json:"rebootParamPath,omitempty"`
	JournalPath     *string       `yaml:"journalPath,omitempty" json:"journalPath,omitempty"`
	LogLevel        string        `yaml:"logLevel,omitempty" json:"logLevel,omitempty"`
	LogService      string        `yaml:"logService,omitempty" json:"logService,omitempty"`
	Metrics         MetricsConfig `yaml:"metrics,omitempty" json:"metrics,omitempty"`
	ShutdownTimeout string        `yaml:"shutdownTimeout,omitempty" json:"shutdownTimeout,omitempty"`
	SystemdProbe    *bool         `yaml:"systemdProbe,omitempty" json:"systemdProbe,omitempty"`
	DryRun          *bool         `yaml:"dryRun,omitempty" json:"dryRun,omitempty"`
	AllowPlainDir   *bool         `yaml:"allowPlainDir,omitempty" json:"allowPlainDir,omitempty"`
}

// MetricsConfig configures the Prometheus endpoint.
type MetricsConfig struct {
	Enabled *bool  `yaml:"enabled,omitempty" json:"enabled,omitempty"`
	Addr    string `yaml:"addr,omitempty" json:"addr,omitempty"`
}

// ToFileConfig maps an AppConfig back to its file form, fully populated.
func ToFileConfig(cfg AppConfig) FileConfig {
	return FileConfig{
		EFIVarsDir:      cfg.EFIVarsDir,
		RebootParamPath: cfg.RebootParamPath,
		JournalPath:     strPtr(cfg.JournalPath),
		LogLevel:        cfg.LogLevel,
		LogService:      cfg.LogService,
		Metrics: MetricsConfig{
			Enabled: boolPtr(cfg.MetricsEnabled),
			Addr:    cfg.MetricsAddr,
		},
		ShutdownTimeout: cfg.ShutdownTimeout.String(),
		SystemdProbe:    boolPtr(cfg.SystemdProbe),
		DryRun:          boolPtr(cfg.DryRun),
		AllowPlainDir:   boolPtr(cfg.AllowPlainDir),
	}
}

func boolPtr(b bool) *bool    { return &b }
func strPtr(s string) *string { return &s }
