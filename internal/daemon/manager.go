// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package daemon

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/ManuGH/efibc/internal/config"
	xglog "github.com/ManuGH/efibc/internal/log"
	"github.com/ManuGH/efibc/internal/notify"
	"github.com/rs/zerolog"
)

// ShutdownHook is a function that performs cleanup during graceful shutdown.
// Hooks are executed in reverse registration order (LIFO).
type ShutdownHook func(ctx context.Context) error

// Manager manages the daemon lifecycle: module registration, the metrics
// server and the termination path.
type Manager interface {
	// Start registers the module and blocks until shutdown
	Start(ctx context.Context) error

	// Shutdown gracefully shuts down all components
	Shutdown(ctx context.Context) error

	// RegisterShutdownHook registers a function to be called during shutdown
	RegisterShutdownHook(name string, hook ShutdownHook)

	// ApplyConfig swaps in a reloaded configuration
	ApplyConfig(cfg config.AppConfig)
}

// manager implements the Manager interface.
type manager struct {
	deps Deps

	cfgMu sync.RWMutex
	cfg   config.AppConfig

	metricsServer *http.Server

	// Shutdown hooks (LIFO order)
	shutdownHooks []namedHook

	// State
	started  bool
	stopping bool
	mu       sync.Mutex

	logger zerolog.Logger
}

// namedHook represents a shutdown hook with a name for logging
type namedHook struct {
	name string
	hook ShutdownHook
}

// NewManager creates a new daemon manager with the given dependencies.
func NewManager(deps Deps) (Manager, error) {
	if err := deps.Validate(); err != nil {
		return nil, fmt.Errorf("invalid dependencies: %w", err)
	}

	return &manager{
		deps:          deps,
		cfg:           deps.Config,
		logger:        deps.Logger.With().Str(xglog.FieldComponent, "manager").Logger(),
		shutdownHooks: make([]namedHook, 0),
	}, nil
}

func (m *manager) current() config.AppConfig {
	m.cfgMu.RLock()
	defer m.cfgMu.RUnlock()
	return m.cfg
}

func (m *manager) shutdownTimeout() time.Duration {
	if d := m.current().ShutdownTimeout; d > 0 {
		return d
	}
	return config.DefaultShutdownTimeout
}

// ApplyConfig swaps the live settings. Log level, probe toggle, reboot
// parameter path and shutdown timeout apply immediately.
func (m *manager) ApplyConfig(cfg config.AppConfig) {
	m.cfgMu.Lock()
	old := m.cfg
	m.cfg = cfg
	m.cfgMu.Unlock()

	if old.LogLevel != cfg.LogLevel {
		xglog.Configure(xglog.Config{Level: cfg.LogLevel})
	}
	m.logger.Info().
		Str(xglog.FieldEvent, "config.applied").
		Bool("systemd_probe", cfg.SystemdProbe).
		Msg("applied reloaded configuration")
}

// Start registers the module and blocks until context is cancelled.
func (m *manager) Start(ctx context.Context) error {
	if ctx == nil {
		return fmt.Errorf("start context is nil")
	}

	m.mu.Lock()
	if m.started {
		m.mu.Unlock()
		return fmt.Errorf("manager already started")
	}
	m.started = true
	m.mu.Unlock()

	if m.deps.PanicChain != nil {
		defer notify.Guard(context.WithoutCancel(ctx), m.deps.PanicChain)
	}

	cfg := m.current()
	m.logger.Info().
		Str("efivars_dir", cfg.EFIVarsDir).
		Bool("dry_run", cfg.DryRun).
		Bool("systemd_probe", cfg.SystemdProbe).
		Dur("shutdown_timeout", cfg.ShutdownTimeout).
		Msg("Starting daemon manager")

	// Error channel for server failures
	errChan := make(chan error, 1)

	switch err := m.deps.Module.Start(ctx); {
	case err == nil:
		m.RegisterShutdownHook("module", func(context.Context) error {
			m.deps.Module.Stop()
			return nil
		})
	case errors.Is(err, ErrUnavailable):
		m.logger.Warn().Msg("Module inert: firmware variables unavailable")
	default:
		return fmt.Errorf("failed to start module: %w", err)
	}

	if cfg.MetricsEnabled && m.deps.MetricsHandler != nil {
		m.startMetricsServer(cfg.MetricsAddr, errChan)
	}

	// Wait for shutdown signal or server error
	select {
	case err := <-errChan:
		m.logger.Error().Err(err).Msg("Server error, initiating shutdown")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), m.shutdownTimeout())
		defer cancel()
		if shutdownErr := m.Shutdown(shutdownCtx); shutdownErr != nil {
			return fmt.Errorf("server error and shutdown failure: %w", errors.Join(err, shutdownErr))
		}
		return err
	case <-ctx.Done():
		m.logger.Info().Msg("Shutdown signal received")
		// Use a detached-but-bounded context so the termination path and
		// shutdown can complete even though the parent is canceled.
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), m.shutdownTimeout())
		defer cancel()
		m.onTermination(shutdownCtx)
		return m.Shutdown(shutdownCtx)
	}
}

// onTermination asks systemd whether the host is going down and, if so,
// fires the reboot chain before the module is torn down. A plain service
// stop writes nothing. The systemd query gets half of the shutdown budget;
// the variable writes run detached from ctx.
func (m *manager) onTermination(ctx context.Context) {
	cfg := m.current()
	if m.deps.Probe == nil || !cfg.SystemdProbe || !m.deps.Module.Registered() {
		return
	}

	probeCtx, cancel := context.WithTimeout(ctx, m.shutdownTimeout()/2)
	verb, ok, err := m.deps.Probe.Probe(probeCtx)
	cancel()
	if err != nil {
		m.logger.Warn().
			Err(err).
			Str(xglog.FieldEvent, "probe.failed").
			Msg("could not query systemd jobs; assuming service stop")
		return
	}
	if !ok {
		m.logger.Info().
			Str(xglog.FieldEvent, "probe.service_stop").
			Msg("no shutdown target queued; leaving variables untouched")
		return
	}

	var oneShot *string
	if verb.Restart() {
		oneShot, err = notify.ReadRebootParam(cfg.RebootParamPath)
		if err != nil {
			m.logger.Warn().
				Err(err).
				Str(xglog.FieldPath, cfg.RebootParamPath).
				Msg("could not read reboot parameter; continuing without one-shot entry")
		}
	}

	m.logger.Info().
		Str(xglog.FieldEvent, "probe.host_shutdown").
		Str("verb", string(verb)).
		Msg("host shutdown detected")
	m.deps.RebootChain.Call(xglog.ContextWithSource(context.WithoutCancel(ctx), "daemon"), verb.RebootEvent(oneShot))
}

// startMetricsServer starts the Prometheus metrics HTTP server.
func (m *manager) startMetricsServer(addr string, errChan chan<- error) {
	m.metricsServer = &http.Server{
		Addr:              addr,
		Handler:           m.deps.MetricsHandler,
		ReadHeaderTimeout: 5 * time.Second,
	}
	srv := m.metricsServer

	go func() {
		m.logger.Info().
			Str("addr", addr).
			Msg("Metrics server listening")

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			m.logger.Error().
				Err(err).
				Str(xglog.FieldEvent, "metrics.server.failed").
				Msg("Metrics server failed")
			select {
			case errChan <- fmt.Errorf("metrics server: %w", err):
			default:
			}
		}
	}()
}

func (m *manager) Shutdown(ctx context.Context) error {
	if ctx == nil {
		return fmt.Errorf("shutdown context is nil")
	}

	m.mu.Lock()
	if m.stopping {
		m.mu.Unlock()
		return nil
	}
	if !m.started {
		m.mu.Unlock()
		return ErrManagerNotStarted
	}
	m.stopping = true
	hooks := make([]namedHook, len(m.shutdownHooks))
	copy(hooks, m.shutdownHooks)
	m.mu.Unlock()

	m.logger.Info().Msg("Shutting down daemon manager")

	// Create a bounded shutdown context independent from caller cancellation.
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), m.shutdownTimeout())
	defer cancel()

	var errs []error

	if m.metricsServer != nil {
		m.logger.Debug().Msg("Shutting down metrics server")
		if err := m.metricsServer.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("metrics server shutdown: %w", err))
		}
	}

	// Execute shutdown hooks in reverse order (LIFO)
	m.logger.Debug().Int("hooks", len(hooks)).Msg("Executing shutdown hooks")
	for i := len(hooks) - 1; i >= 0; i-- {
		hook := hooks[i]
		m.logger.Debug().Str("hook", hook.name).Msg("Executing shutdown hook")

		hookStart := time.Now()
		if err := hook.hook(shutdownCtx); err != nil {
			m.logger.Error().
				Err(err).
				Str("hook", hook.name).
				Dur("duration", time.Since(hookStart)).
				Msg("Shutdown hook failed")
			errs = append(errs, fmt.Errorf("hook %s: %w", hook.name, err))
		} else {
			m.logger.Debug().
				Str("hook", hook.name).
				Dur("duration", time.Since(hookStart)).
				Msg("Shutdown hook completed")
		}
	}

	if len(errs) > 0 {
		m.logger.Error().
			Int("error_count", len(errs)).
			Msg("Shutdown completed with errors")
		return fmt.Errorf("shutdown errors: %w", errors.Join(errs...))
	}

	m.logger.Info().Msg("Daemon manager stopped cleanly")
	return nil
}

// RegisterShutdownHook registers a cleanup function to be called during shutdown.
// Hooks are executed in reverse registration order (LIFO).
func (m *manager) RegisterShutdownHook(name string, hook ShutdownHook) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.shutdownHooks = append(m.shutdownHooks, namedHook{
		name: name,
		hook: hook,
	})
	m.logger.Debug().Str("hook", name).Msg("Registered shutdown hook")
}
