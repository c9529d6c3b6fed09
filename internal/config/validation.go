// Copyright (c) 2026 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"time"

	"github.com/ManuGH/efibc/internal/validate"
)

const (
	minShutdownTimeout = 100 * time.Millisecond
	maxShutdownTimeout = 2 * time.Minute
)

// Validate validates an AppConfig using the centralized validation package
func Validate(cfg AppConfig) error {
	v := validate.New()

	v.AbsolutePath("EFIVarsDir", cfg.EFIVarsDir, false)
	v.AbsolutePath("RebootParamPath", cfg.RebootParamPath, true)
	v.AbsolutePath("JournalPath", cfg.JournalPath, true)

	v.OneOf("LogLevel", cfg.LogLevel, validate.LogLevels())
	v.NotEmpty("LogService", cfg.LogService)

	if cfg.MetricsEnabled {
		v.ListenAddr("MetricsAddr", cfg.MetricsAddr)
	}

	v.DurationRange("ShutdownTimeout", cfg.ShutdownTimeout, minShutdownTimeout, maxShutdownTimeout)

	return v.Err()
}
