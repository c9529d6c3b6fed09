// Copyright (c) 2026 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	VariableWritesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "efibc_variable_writes_total",
		Help: "Total number of EFI variable write attempts by variable and result",
	}, []string{"variable", "result"})

	EventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "efibc_events_total",
		Help: "Total number of termination events handled by kind and classified reason",
	}, []string{"kind", "reason"})

	ModuleRegistered = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "efibc_module_registered",
		Help: "1 while the reboot and panic handlers are registered, 0 otherwise",
	})
)

// Write results.
const (
	ResultOK         = "ok"
	ResultTooLarge   = "too_large"
	ResultStoreError = "store_error"
)

// IncVariableWrite records one write attempt.
func IncVariableWrite(variable, result string) {
	if variable == "" {
		variable = "unknown"
	}
	if result == "" {
		result = "unknown"
	}
	VariableWritesTotal.WithLabelValues(variable, result).Inc()
}

// IncEvent records a dispatched termination event.
func IncEvent(kind, reason string) {
	if kind == "" {
		kind = "unknown"
	}
	if reason == "" {
		reason = "unknown"
	}
	EventsTotal.WithLabelValues(kind, reason).Inc()
}

// SetModuleRegistered flips the registration gauge.
func SetModuleRegistered(registered bool) {
	if registered {
		ModuleRegistered.Set(1)
		return
	}
	ModuleRegistered.Set(0)
}
