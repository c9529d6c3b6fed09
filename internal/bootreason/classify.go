// Copyright (c) 2026 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package bootreason

import "strings"

// watchdogPrefixes are checked in order; the first exact, case-sensitive
// prefix match classifies a panic as watchdog-triggered.
var watchdogPrefixes = [...]string{
	"Watchdog",
	"softlockup",
	"Software Watchdog",
}

// ClassifyReboot maps a reboot notification to its reason.
func ClassifyReboot(restart bool) Reason {
	if restart {
		return Normal
	}
	return Shutdown
}

// ClassifyPanic maps a panic notification to its reason. A nil context is a plain crash.
func ClassifyPanic(context *string) Reason {
	if context == nil {
		return Crash
	}
	for _, prefix := range watchdogPrefixes {
		if strings.HasPrefix(*context, prefix) {
			return Watchdog
		}
	}
	return Crash
}
