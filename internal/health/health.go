// SPDX-License-Identifier: MIT

// Package health serves liveness and readiness probes next to the metrics
// endpoint. Readiness reflects whether the firmware variable module is
// registered and whether the event journal is readable.
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/ManuGH/efibc/internal/efivar"
	"github.com/ManuGH/efibc/internal/journal"
	"github.com/ManuGH/efibc/internal/log"
)

// Status represents the overall health/readiness status
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusDegraded  Status = "degraded"
	StatusUnhealthy Status = "unhealthy"
)

// CheckResult represents the result of a component health check
type CheckResult struct {
	Status  Status `json:"status"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// HealthResponse is the liveness payload.
type HealthResponse struct {
	Status    Status                 `json:"status"`
	Version   string                 `json:"version,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	Checks    map[string]CheckResult `json:"checks,omitempty"`
}

// ReadinessResponse is the readiness payload.
type ReadinessResponse struct {
	Ready     bool                   `json:"ready"`
	Status    Status                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Checks    map[string]CheckResult `json:"checks,omitempty"`
}

// Checker defines the interface for health checks
type Checker interface {
	Name() string
	Check(ctx context.Context) CheckResult
}

// Manager manages health and readiness checks
type Manager struct {
	version  string
	checkers []Checker
}

// NewManager creates a new health check manager
func NewManager(version string) *Manager {
	return &Manager{version: version}
}

// RegisterChecker adds a checker. Not safe for use after serving starts.
func (m *Manager) RegisterChecker(checker Checker) {
	m.checkers = append(m.checkers, checker)
}

func (m *Manager) run(ctx context.Context) (map[string]CheckResult, Status) {
	if len(m.checkers) == 0 {
		return nil, StatusHealthy
	}
	checks := make(map[string]CheckResult, len(m.checkers))
	overall := StatusHealthy
	for _, checker := range m.checkers {
		result := checker.Check(ctx)
		checks[checker.Name()] = result
		switch result.Status {
		case StatusUnhealthy:
			overall = StatusUnhealthy
		case StatusDegraded:
			if overall == StatusHealthy {
				overall = StatusDegraded
			}
		}
	}
	return checks, overall
}

// Health reports liveness. Component checks are only run when verbose.
func (m *Manager) Health(ctx context.Context, verbose bool) HealthResponse {
	resp := HealthResponse{
		Status:    StatusHealthy,
		Version:   m.version,
		Timestamp: time.Now(),
	}
	if verbose {
		resp.Checks, resp.Status = m.run(ctx)
	}
	return resp
}

// Ready reports readiness. Any unhealthy checker makes the daemon not ready;
// degraded checkers only lower the status.
func (m *Manager) Ready(ctx context.Context) ReadinessResponse {
	checks, status := m.run(ctx)
	return ReadinessResponse{
		Ready:     status != StatusUnhealthy,
		Status:    status,
		Timestamp: time.Now(),
		Checks:    checks,
	}
}

// ServeHealth handles HTTP health check requests
func (m *Manager) ServeHealth(w http.ResponseWriter, r *http.Request) {
	logger := log.WithComponentFromContext(r.Context(), "health")
	verbose := r.URL.Query().Get("verbose") == "true"

	resp := m.Health(r.Context(), verbose)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK) // Always 200 for liveness

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logger.Error().Err(err).Str(log.FieldEvent, "health.encode_error").Msg("failed to encode health response")
	}
}

// ServeReady handles HTTP readiness check requests
func (m *Manager) ServeReady(w http.ResponseWriter, r *http.Request) {
	logger := log.WithComponentFromContext(r.Context(), "readiness")

	resp := m.Ready(r.Context())

	w.Header().Set("Content-Type", "application/json")
	if resp.Ready {
		w.WriteHeader(http.StatusOK)
	} else {
		w.WriteHeader(http.StatusServiceUnavailable)
	}

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logger.Error().Err(err).Str(log.FieldEvent, "readiness.encode_error").Msg("failed to encode readiness response")
	}

	logger.Debug().
		Str(log.FieldEvent, "readiness.checked").
		Str("status", string(resp.Status)).
		Bool("ready", resp.Ready).
		Msg("readiness check performed")
}

// Mount attaches /healthz and /readyz to mux.
func (m *Manager) Mount(mux *http.ServeMux) {
	mux.HandleFunc("/healthz", m.ServeHealth)
	mux.HandleFunc("/readyz", m.ServeReady)
}

// EFIVarsChecker reports whether the efivarfs mount is usable.
type EFIVarsChecker struct {
	dir           string
	dryRun        bool
	allowPlainDir bool
}

func NewEFIVarsChecker(dir string, dryRun, allowPlainDir bool) *EFIVarsChecker {
	return &EFIVarsChecker{dir: dir, dryRun: dryRun, allowPlainDir: allowPlainDir}
}

func (c *EFIVarsChecker) Name() string {
	return "efivarfs"
}

func (c *EFIVarsChecker) Check(context.Context) CheckResult {
	if c.dryRun {
		return CheckResult{Status: StatusDegraded, Message: "dry run: writes go to memory"}
	}
	if !efivar.Usable(c.dir, c.allowPlainDir) {
		return CheckResult{Status: StatusDegraded, Message: "not available: " + c.dir}
	}
	if c.allowPlainDir && !efivar.Available(c.dir) {
		return CheckResult{Status: StatusDegraded, Message: "plain directory, not efivarfs: " + c.dir}
	}
	return CheckResult{Status: StatusHealthy, Message: c.dir}
}

// ModuleChecker reports whether the notifier handlers are registered.
type ModuleChecker struct {
	registered func() bool
}

func NewModuleChecker(registered func() bool) *ModuleChecker {
	return &ModuleChecker{registered: registered}
}

func (c *ModuleChecker) Name() string {
	return "module"
}

func (c *ModuleChecker) Check(context.Context) CheckResult {
	if c.registered == nil || !c.registered() {
		return CheckResult{Status: StatusUnhealthy, Message: "handlers not registered"}
	}
	return CheckResult{Status: StatusHealthy, Message: "handlers registered"}
}

// JournalChecker reports whether the last-event journal can be read.
type JournalChecker struct {
	journal *journal.Journal
}

func NewJournalChecker(j *journal.Journal) *JournalChecker {
	return &JournalChecker{journal: j}
}

func (c *JournalChecker) Name() string {
	return "journal"
}

func (c *JournalChecker) Check(context.Context) CheckResult {
	if c.journal == nil || c.journal.Path() == "" {
		return CheckResult{Status: StatusHealthy, Message: "not configured (optional)"}
	}
	entry, ok, err := c.journal.Read()
	switch {
	case err != nil:
		return CheckResult{Status: StatusDegraded, Error: err.Error()}
	case !ok:
		return CheckResult{Status: StatusHealthy, Message: "no event recorded"}
	default:
		return CheckResult{Status: StatusHealthy, Message: "last event " + entry.Kind + " at " + entry.Time.Format(time.RFC3339)}
	}
}
