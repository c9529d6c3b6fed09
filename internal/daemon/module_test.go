// Copyright (c) 2026 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package daemon

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/ManuGH/efibc/internal/bootreason"
	"github.com/ManuGH/efibc/internal/efivar"
	"github.com/ManuGH/efibc/internal/journal"
	"github.com/ManuGH/efibc/internal/log"
	"github.com/ManuGH/efibc/internal/metrics"
	"github.com/ManuGH/efibc/internal/notify"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewModule_InvalidDeps(t *testing.T) {
	chain := notify.NewChain("c")
	tests := []struct {
		name    string
		deps    ModuleDeps
		wantErr error
	}{
		{
			name:    "missing logger",
			deps:    ModuleDeps{Logger: zerolog.Nop(), Store: efivar.NewMemStore(), RebootChain: chain, PanicChain: chain},
			wantErr: ErrMissingLogger,
		},
		{
			name:    "missing store",
			deps:    ModuleDeps{Logger: log.WithComponent("test"), RebootChain: chain, PanicChain: chain},
			wantErr: bootreason.ErrMissingStore,
		},
		{
			name:    "missing chain",
			deps:    ModuleDeps{Logger: log.WithComponent("test"), Store: efivar.NewMemStore(), RebootChain: chain},
			wantErr: ErrMissingChain,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewModule(tt.deps)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
		})
	}
}

func TestModule_UnavailableIsInert(t *testing.T) {
	m, store, reboot, panicChain := testModule(t, false)

	err := m.Start(context.Background())
	require.ErrorIs(t, err, ErrUnavailable)
	assert.False(t, m.Registered())
	assert.Equal(t, 0, reboot.Len())
	assert.Equal(t, 0, panicChain.Len())
	assert.Equal(t, float64(0), testutil.ToFloat64(metrics.ModuleRegistered))

	m.Stop() // no-op on an inert module
	assert.Empty(t, store.Requests())
}

func TestModule_RegistersAndDispatches(t *testing.T) {
	m, store, reboot, panicChain := testModule(t, true)
	require.NoError(t, m.Start(context.Background()))
	t.Cleanup(m.Stop)

	assert.True(t, m.Registered())
	assert.Equal(t, 1, reboot.Len())
	assert.Equal(t, 1, panicChain.Len())
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.ModuleRegistered))

	reboot.Call(context.Background(), notify.VerbReboot.RebootEvent(bootreason.Optional("entry-X")))

	reason, ok := readVar(t, store, bootreason.RebootReason)
	require.True(t, ok)
	assert.Equal(t, "reboot", reason)
	entry, ok := readVar(t, store, bootreason.OneShotEntry)
	require.True(t, ok)
	assert.Equal(t, "entry-X", entry)
}

func TestModule_PanicChain(t *testing.T) {
	m, store, _, panicChain := testModule(t, true)
	require.NoError(t, m.Start(context.Background()))
	t.Cleanup(m.Stop)

	panicChain.Call(context.Background(), notify.Event{Kind: notify.KindPanic, Param: bootreason.Optional("softlockup detected")})

	reason, ok := readVar(t, store, bootreason.RebootReason)
	require.True(t, ok)
	assert.Equal(t, "watchdog", reason)
	_, ok = readVar(t, store, bootreason.OneShotEntry)
	assert.False(t, ok)
}

func TestModule_StopUnregisters(t *testing.T) {
	m, store, reboot, panicChain := testModule(t, true)
	require.NoError(t, m.Start(context.Background()))

	m.Stop()
	assert.False(t, m.Registered())
	assert.Equal(t, 0, reboot.Len())
	assert.Equal(t, 0, panicChain.Len())
	assert.Equal(t, float64(0), testutil.ToFloat64(metrics.ModuleRegistered))

	reboot.Call(context.Background(), notify.VerbPoweroff.RebootEvent(nil))
	assert.Empty(t, store.Requests())

	// restartable after Stop
	require.NoError(t, m.Start(context.Background()))
	m.Stop()
}

func TestModule_DoubleStart(t *testing.T) {
	m, _, reboot, _ := testModule(t, true)
	require.NoError(t, m.Start(context.Background()))
	t.Cleanup(m.Stop)

	assert.ErrorIs(t, m.Start(context.Background()), ErrModuleStarted)
	assert.Equal(t, 1, reboot.Len())
}

func TestModule_CanceledContext(t *testing.T) {
	m, _, reboot, _ := testModule(t, true)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, m.Start(ctx), context.Canceled)
	assert.Equal(t, 0, reboot.Len())
}

func TestModule_JournalObserver(t *testing.T) {
	store := efivar.NewMemStore()
	reboot := notify.NewChain("reboot")
	j := journal.New(filepath.Join(t.TempDir(), "last.json"))
	m, err := NewModule(ModuleDeps{
		Logger:      log.WithComponent("test"),
		Store:       store,
		RebootChain: reboot,
		PanicChain:  notify.NewChain("panic"),
		Observers:   []bootreason.Observer{j},
	})
	require.NoError(t, err)
	require.NoError(t, m.Start(context.Background()))
	t.Cleanup(m.Stop)

	reboot.Call(context.Background(), notify.VerbHalt.RebootEvent(nil))

	entry, ok, err := j.Read()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "shutdown", entry.Reason)
	assert.NotEmpty(t, entry.EventID)
	require.Len(t, entry.Writes, 1)
	assert.Equal(t, "LoaderEntryRebootReason", entry.Writes[0].Variable)
}

func TestModule_StartLogsNamespace(t *testing.T) {
	var buf bytes.Buffer
	m, err := NewModule(ModuleDeps{
		Logger:      zerolog.New(&buf),
		Store:       efivar.NewMemStore(),
		RebootChain: notify.NewChain("reboot"),
		PanicChain:  notify.NewChain("panic"),
	})
	require.NoError(t, err)

	require.NoError(t, m.Start(context.Background()))
	defer m.Stop()
	assert.Contains(t, buf.String(), `"guid":"4a67b082-0a4c-41cf-b6c7-440b29bb8c4f"`)
}
