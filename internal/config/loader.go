// Copyright (c) 2026 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Loader handles configuration loading with precedence
type Loader struct {
	configPath      string
	version         string
	ConsumedEnvKeys map[string]struct{} // Mechanical tracking of consumed keys
}

// NewLoader creates a new configuration loader
func NewLoader(configPath, version string) *Loader {
	return &Loader{
		configPath:      configPath,
		version:         version,
		ConsumedEnvKeys: make(map[string]struct{}),
	}
}

// ConfigPath returns the file the loader reads, if any.
func (l *Loader) ConfigPath() string {
	return l.configPath
}

func (l *Loader) envString(key, defaultVal string) string {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseString(key, defaultVal)
}

func (l *Loader) envBool(key string, defaultVal bool) bool {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseBool(key, defaultVal)
}

func (l *Loader) envDuration(key string, defaultVal time.Duration) time.Duration {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseDuration(key, defaultVal)
}

func (l *Loader) envLookup(key string) (string, bool) {
	l.ConsumedEnvKeys[key] = struct{}{}
	return os.LookupEnv(key)
}

// Load loads configuration with precedence: ENV > File > Defaults
// It enforces Strict Validated Order: Parse File (Strict) -> Apply Env -> Validate
func (l *Loader) Load() (AppConfig, error) {
	// 1. Set defaults
	cfg := Defaults()

	// 2. Load from file (if provided)
	if l.configPath != "" {
		fileCfg, err := l.loadFile(l.configPath)
		if err != nil {
			return cfg, fmt.Errorf("load config file: %w", err)
		}
		if err := mergeFileConfig(&cfg, fileCfg); err != nil {
			return cfg, fmt.Errorf("merge file config: %w", err)
		}
	}

	// 3. Override with environment variables (highest priority)
	l.mergeEnvConfig(&cfg)

	// 4. Version from binary
	cfg.Version = l.version

	// 5. Validate final configuration
	if err := Validate(cfg); err != nil {
		return cfg, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// loadFile loads configuration from a YAML file with STRICT parsing.
// Unknown fields will cause a fatal error to prevent misconfiguration.
func (l *Loader) loadFile(path string) (*FileConfig, error) {
	path = filepath.Clean(path)

	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".yaml" && ext != ".yml" {
		return nil, fmt.Errorf("%w: %s (only YAML supported)", ErrUnsupportedFormat, ext)
	}

	// #nosec G304 -- configuration file paths are provided by the operator via CLI/ENV
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	return parseFileConfig(data)
}

func parseFileConfig(data []byte) (*FileConfig, error) {
	var fileCfg FileConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true) // Reject unknown fields

	if err := dec.Decode(&fileCfg); err != nil {
		if errors.Is(err, io.EOF) {
			return &FileConfig{}, nil
		}
		if strings.Contains(err.Error(), "field") && strings.Contains(err.Error(), "not found") {
			return nil, fmt.Errorf("strict config parse error: %w: %w", ErrUnknownConfigField, err)
		}
		return nil, fmt.Errorf("strict config parse error: %w", err)
	}

	// Strict: Ensure no multiple documents or trailing content
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return nil, ErrMultipleDocuments
	}

	return &fileCfg, nil
}

func mergeFileConfig(dst *AppConfig, src *FileConfig) error {
	if src.EFIVarsDir != "" {
		dst.EFIVarsDir = expandEnv(src.EFIVarsDir)
	}
	if src.RebootParamPath != "" {
		dst.RebootParamPath = expandEnv(src.RebootParamPath)
	}
	if src.JournalPath != nil {
		dst.JournalPath = expandEnv(*src.JournalPath)
	}
	if src.LogLevel != "" {
		dst.LogLevel = src.LogLevel
	}
	if src.LogService != "" {
		dst.LogService = src.LogService
	}
	if src.Metrics.Enabled != nil {
		dst.MetricsEnabled = *src.Metrics.Enabled
	}
	if src.Metrics.Addr != "" {
		dst.MetricsAddr = src.Metrics.Addr
	}
	if src.ShutdownTimeout != "" {
		d, err := time.ParseDuration(src.ShutdownTimeout)
		if err != nil {
			return fmt.Errorf("shutdownTimeout: %w", err)
		}
		dst.ShutdownTimeout = d
	}
	if src.SystemdProbe != nil {
		dst.SystemdProbe = *src.SystemdProbe
	}
	if src.DryRun != nil {
		dst.DryRun = *src.DryRun
	}
	if src.AllowPlainDir != nil {
		dst.AllowPlainDir = *src.AllowPlainDir
	}
	return nil
}

func (l *Loader) mergeEnvConfig(cfg *AppConfig) {
	cfg.EFIVarsDir = l.envString(EnvEFIVarsDir, cfg.EFIVarsDir)
	cfg.RebootParamPath = l.envString(EnvRebootParamPath, cfg.RebootParamPath)
	// An explicitly empty journal path disables the journal.
	if v, ok := l.envLookup(EnvJournalPath); ok {
		cfg.JournalPath = strings.TrimSpace(v)
	}
	cfg.LogLevel = l.envString(EnvLogLevel, cfg.LogLevel)
	cfg.LogService = l.envString(EnvLogService, cfg.LogService)
	cfg.MetricsEnabled = l.envBool(EnvMetricsEnabled, cfg.MetricsEnabled)
	cfg.MetricsAddr = l.envString(EnvMetricsAddr, cfg.MetricsAddr)
	cfg.ShutdownTimeout = l.envDuration(EnvShutdownTimeout, cfg.ShutdownTimeout)
	cfg.SystemdProbe = l.envBool(EnvSystemdProbe, cfg.SystemdProbe)
	cfg.DryRun = l.envBool(EnvDryRun, cfg.DryRun)
	cfg.AllowPlainDir = l.envBool(EnvAllowPlainDir, cfg.AllowPlainDir)
}

// expandEnv expands environment variables in the format ${VAR} or $VAR
func expandEnv(s string) string {
	return os.ExpandEnv(s)
}
