// Copyright (c) 2026 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package daemon

import (
	"errors"

	"github.com/ManuGH/efibc/internal/bootreason"
)

var (
	// ErrMissingLogger is returned when logger is not provided
	ErrMissingLogger = errors.New("logger is required")

	// ErrMissingModule is returned when a manager is created without a module.
	ErrMissingModule = errors.New("module is required")

	// ErrMissingChain is returned when a notifier chain is not provided.
	ErrMissingChain = errors.New("notifier chain is required")

	// ErrMissingManager is returned when a daemon app is created without a manager.
	ErrMissingManager = errors.New("manager is required")

	// ErrManagerNotStarted is returned when trying to shutdown a manager that hasn't started
	ErrManagerNotStarted = errors.New("manager not started")

	// ErrModuleStarted is returned by Module.Start when it is already registered.
	ErrModuleStarted = errors.New("module already started")

	// ErrUnavailable means the firmware variable service is absent; the module stays inert.
	ErrUnavailable = bootreason.ErrUnavailable
)
