// Copyright (c) 2026 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package bootreason classifies termination events and records them in the
// EFI variables a loader-entry aware bootloader reads on the next boot.
package bootreason

import "github.com/ManuGH/efibc/internal/efivar"

// Reason is the canonical reboot reason written to LoaderEntryRebootReason.
type Reason int

const (
	Crash Reason = iota
	Normal
	Shutdown
	Watchdog
)

// Wire values read by the bootloader. They must never change.
const (
	reasonCrash    = "kernel_panic"
	reasonNormal   = "reboot"
	reasonShutdown = "shutdown"
	reasonWatchdog = "watchdog"
)

func (r Reason) String() string {
	switch r {
	case Crash:
		return reasonCrash
	case Normal:
		return reasonNormal
	case Shutdown:
		return reasonShutdown
	case Watchdog:
		return reasonWatchdog
	default:
		return "unknown"
	}
}

// ParseReason maps a wire value back to its Reason.
func ParseReason(s string) (Reason, bool) {
	switch s {
	case reasonCrash:
		return Crash, true
	case reasonNormal:
		return Normal, true
	case reasonShutdown:
		return Shutdown, true
	case reasonWatchdog:
		return Watchdog, true
	default:
		return 0, false
	}
}

// Slot is one of the bootloader-recognized variables this package writes.
type Slot int

const (
	RebootReason Slot = iota
	OneShotEntry
)

// LoaderEntryGUID is the vendor namespace shared by all loader-entry variables.
var LoaderEntryGUID = efivar.MustParseGUID("4a67b082-0a4c-41cf-b6c7-440b29bb8c4f")

// VariableName returns the firmware variable name backing the slot.
func (s Slot) VariableName() string {
	switch s {
	case RebootReason:
		return "LoaderEntryRebootReason"
	case OneShotEntry:
		return "LoaderEntryOneShot"
	default:
		return ""
	}
}

func (s Slot) String() string {
	return s.VariableName()
}

// Slots lists every slot in a stable order.
func Slots() []Slot {
	return []Slot{RebootReason, OneShotEntry}
}
