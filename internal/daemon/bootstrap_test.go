// SPDX-License-Identifier: MIT

package daemon

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/ManuGH/efibc/internal/bootreason"
	"github.com/ManuGH/efibc/internal/efivar"
	"github.com/ManuGH/efibc/internal/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBootstrap_DryRun(t *testing.T) {
	cfg := testConfig()
	cfg.DryRun = true
	cfg.JournalPath = filepath.Join(t.TempDir(), "last.json")

	rt, err := Bootstrap(cfg, log.WithComponent("test"))
	require.NoError(t, err)
	_, isMem := rt.Store.(*efivar.MemStore)
	assert.True(t, isMem)

	require.NoError(t, rt.Reboot(context.Background(), true, bootreason.Optional("entry-X")))
	assert.False(t, rt.Module.Registered(), "one-shot fire stops the module")

	reason, ok := readVar(t, rt.Store, bootreason.RebootReason)
	require.True(t, ok)
	assert.Equal(t, "reboot", reason)
	entry, ok := readVar(t, rt.Store, bootreason.OneShotEntry)
	require.True(t, ok)
	assert.Equal(t, "entry-X", entry)

	last, ok, err := rt.Journal.Read()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "entry-X", last.OneShot)
}

func TestBootstrap_PanicThroughEfivarfs(t *testing.T) {
	cfg := testConfig()
	cfg.EFIVarsDir = t.TempDir()
	cfg.AllowPlainDir = true

	rt, err := Bootstrap(cfg, log.WithComponent("test"))
	require.NoError(t, err)
	_, isFS := rt.Store.(*efivar.Efivarfs)
	assert.True(t, isFS)

	require.NoError(t, rt.Panic(context.Background(), bootreason.Optional("Watchdog: BUG: soft lockup")))

	reason, ok := readVar(t, rt.Store, bootreason.RebootReason)
	require.True(t, ok)
	assert.Equal(t, "watchdog", reason)
}

func TestBootstrap_UnavailableMount(t *testing.T) {
	cfg := testConfig()
	cfg.EFIVarsDir = filepath.Join(t.TempDir(), "not-mounted")

	rt, err := Bootstrap(cfg, log.WithComponent("test"))
	require.NoError(t, err)

	err = rt.Reboot(context.Background(), false, nil)
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.False(t, rt.Module.Registered())
}

func TestBootstrap_PlainDirIsNotEfivarfs(t *testing.T) {
	cfg := testConfig()
	cfg.EFIVarsDir = t.TempDir()

	rt, err := Bootstrap(cfg, log.WithComponent("test"))
	require.NoError(t, err)

	err = rt.Reboot(context.Background(), false, nil)
	require.ErrorIs(t, err, ErrUnavailable)
	_, ok := readVar(t, rt.Store, bootreason.RebootReason)
	assert.False(t, ok, "nothing is written outside an efivarfs mount")
}
