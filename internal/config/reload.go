// SPDX-License-Identifier: MIT

package config

import (
	"context"
	"fmt"
	"sync"
	"time"

	xglog "github.com/ManuGH/efibc/internal/log"
	"github.com/ManuGH/efibc/internal/notify"
	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

const defaultDebounce = 500 * time.Millisecond

// ConfigHolder holds configuration with atomic reloading capability.
// It provides thread-safe access to configuration and supports hot reloading
// from file or manual trigger via SIGHUP.
type ConfigHolder struct {
	mu         sync.RWMutex
	current    AppConfig
	loader     *Loader
	configPath string
	watcher    *fsnotify.Watcher
	debounce   time.Duration
	logger     zerolog.Logger
	panicChain *notify.Chain

	// Reload notifications
	reloadMu        sync.RWMutex
	reloadListeners []chan<- AppConfig
}

// NewConfigHolder creates a new configuration holder with initial config.
func NewConfigHolder(initial AppConfig, loader *Loader) *ConfigHolder {
	return &ConfigHolder{
		current:         initial,
		loader:          loader,
		configPath:      loader.ConfigPath(),
		debounce:        defaultDebounce,
		logger:          xglog.WithComponent("config"),
		reloadListeners: make([]chan<- AppConfig, 0),
	}
}

// SetPanicChain makes the watcher goroutines report a crash to chain before
// re-panicking. Call it before StartWatcher.
func (h *ConfigHolder) SetPanicChain(chain *notify.Chain) {
	h.panicChain = chain
}

// Get returns the current configuration (thread-safe read).
func (h *ConfigHolder) Get() AppConfig {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.current
}

// Reload reloads configuration from file and environment and validates it.
// If loading or validation fails, the old configuration is kept.
func (h *ConfigHolder) Reload(_ context.Context) error {
	h.logger.Info().Str("event", "config.reload_start").Msg("reloading configuration")

	newCfg, err := h.loader.Load()
	if err != nil {
		h.logger.Error().
			Err(err).
			Str("event", "config.reload_failed").
			Msg("failed to load new configuration")
		return fmt.Errorf("load config: %w", err)
	}

	h.mu.Lock()
	oldCfg := h.current
	h.current = newCfg
	h.mu.Unlock()

	h.notifyListeners(newCfg)
	h.logChanges(oldCfg, newCfg)

	h.logger.Info().
		Str("event", "config.reload_success").
		Msg("configuration reloaded successfully")

	return nil
}

// StartWatcher starts watching the config file for changes.
// If configPath is empty, this is a no-op (config comes from ENV only).
func (h *ConfigHolder) StartWatcher(ctx context.Context) error {
	if h.configPath == "" {
		h.logger.Info().
			Str("event", "config.watcher_disabled").
			Msg("config file watcher disabled (using ENV-only configuration)")
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}

	if err := watcher.Add(h.configPath); err != nil {
		_ = watcher.Close() // Ignore close error in error path
		return fmt.Errorf("watch config file: %w", err)
	}
	h.watcher = watcher

	h.logger.Info().
		Str("event", "config.watcher_started").
		Str("path", h.configPath).
		Msg("watching config file for changes")

	go h.watchLoop(ctx, watcher)

	return nil
}

func (h *ConfigHolder) watchLoop(ctx context.Context, watcher *fsnotify.Watcher) {
	defer notify.Guard(context.WithoutCancel(ctx), h.panicChain)

	// Debounce timer to avoid multiple reloads for rapid file changes
	var debounceTimer *time.Timer
	defer func() {
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			h.logger.Info().Str("event", "config.watcher_stopped").Msg("config watcher stopped")
			_ = watcher.Close()
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}

			// Watch for Write and Create events (covers vim, nano, echo)
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				h.logger.Debug().
					Str("event", "config.file_changed").
					Str("op", event.Op.String()).
					Msg("config file changed")

				if debounceTimer != nil {
					debounceTimer.Stop()
				}
				debounceTimer = time.AfterFunc(h.debounce, func() { h.autoReload(ctx) })
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			h.logger.Error().
				Err(err).
				Str("event", "config.watcher_error").
				Msg("config watcher error")
		}
	}
}

// autoReload is the debounced reload triggered by a file change. It runs on
// its own timer goroutine.
func (h *ConfigHolder) autoReload(ctx context.Context) {
	defer notify.Guard(context.WithoutCancel(ctx), h.panicChain)
	if err := h.Reload(ctx); err != nil {
		h.logger.Error().
			Err(err).
			Str("event", "config.auto_reload_failed").
			Msg("automatic config reload failed")
	}
}

// Stop stops the config watcher (if running).
func (h *ConfigHolder) Stop() {
	if h.watcher != nil {
		_ = h.watcher.Close() // Ignore close error in error path
	}
}

// RegisterListener registers a channel to receive config reload notifications.
// The channel will receive the new config whenever a reload succeeds.
// The caller is responsible for closing the channel.
func (h *ConfigHolder) RegisterListener(ch chan<- AppConfig) {
	h.reloadMu.Lock()
	defer h.reloadMu.Unlock()
	h.reloadListeners = append(h.reloadListeners, ch)
}

// notifyListeners sends the new config to all registered listeners (non-blocking).
func (h *ConfigHolder) notifyListeners(newCfg AppConfig) {
	h.reloadMu.RLock()
	defer h.reloadMu.RUnlock()

	for _, ch := range h.reloadListeners {
		select {
		case ch <- newCfg:
		default:
			h.logger.Warn().
				Str("event", "config.listener_skip").
				Msg("skipped notifying listener (channel full)")
		}
	}
}

// logChanges logs the differences between old and new configuration.
func (h *ConfigHolder) logChanges(old, newCfg AppConfig) {
	if old.LogLevel != newCfg.LogLevel {
		h.logger.Info().
			Str("old", old.LogLevel).
			Str("new", newCfg.LogLevel).
			Msg("config changed: LogLevel")
	}
	if old.RebootParamPath != newCfg.RebootParamPath {
		h.logger.Info().
			Str("old", old.RebootParamPath).
			Str("new", newCfg.RebootParamPath).
			Msg("config changed: RebootParamPath")
	}
	if old.SystemdProbe != newCfg.SystemdProbe {
		h.logger.Info().
			Bool("old", old.SystemdProbe).
			Bool("new", newCfg.SystemdProbe).
			Msg("config changed: SystemdProbe")
	}
	if old.ShutdownTimeout != newCfg.ShutdownTimeout {
		h.logger.Info().
			Dur("old", old.ShutdownTimeout).
			Dur("new", newCfg.ShutdownTimeout).
			Msg("config changed: ShutdownTimeout")
	}
	// These only take effect on restart.
	if old.EFIVarsDir != newCfg.EFIVarsDir || old.AllowPlainDir != newCfg.AllowPlainDir ||
		old.DryRun != newCfg.DryRun || old.JournalPath != newCfg.JournalPath ||
		old.MetricsEnabled != newCfg.MetricsEnabled || old.MetricsAddr != newCfg.MetricsAddr {
		h.logger.Warn().
			Str("event", "config.restart_required").
			Msg("store, journal or metrics settings changed; restart to apply")
	}
}
