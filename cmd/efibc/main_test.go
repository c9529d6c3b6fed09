// Copyright (c) 2026 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ManuGH/efibc/internal/bootreason"
	"github.com/ManuGH/efibc/internal/config"
	"github.com/ManuGH/efibc/internal/efivar"
	"github.com/ManuGH/efibc/internal/version"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sandbox points every filesystem setting at a temp dir.
func sandbox(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	efivars := filepath.Join(dir, "efivars")
	require.NoError(t, os.Mkdir(efivars, 0o755))

	emptyCfg := filepath.Join(dir, "efibc.yaml")
	require.NoError(t, os.WriteFile(emptyCfg, nil, 0o600))

	t.Setenv(config.EnvConfigPath, emptyCfg)
	t.Setenv(config.EnvEFIVarsDir, efivars)
	t.Setenv(config.EnvJournalPath, filepath.Join(dir, "state", "last.json"))
	t.Setenv(config.EnvRebootParamPath, filepath.Join(dir, "reboot-param"))
	t.Setenv(config.EnvSystemdProbe, "false")
	t.Setenv(config.EnvAllowPlainDir, "true")
	return dir
}

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func statusJSON(t *testing.T) statusReport {
	t.Helper()
	code, out, errOut := runCLI(t, "status", "-format", "json")
	require.Equal(t, 0, code, errOut)
	var report statusReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	return report
}

func variable(r statusReport, name string) variableStatus {
	for _, v := range r.Variables {
		if v.Name == name {
			return v
		}
	}
	return variableStatus{}
}

func TestRun_Usage(t *testing.T) {
	code, _, errOut := runCLI(t)
	assert.Equal(t, 2, code)
	assert.Contains(t, errOut, "Usage:")

	code, _, errOut = runCLI(t, "frobnicate")
	assert.Equal(t, 2, code)
	assert.Contains(t, errOut, "Unknown command: frobnicate")

	code, out, _ := runCLI(t, "help")
	assert.Equal(t, 0, code)
	assert.Contains(t, out, "efibc hook")
}

func TestRun_Version(t *testing.T) {
	code, out, _ := runCLI(t, "-version")
	assert.Equal(t, 0, code)
	assert.Equal(t, version.String()+"\n", out)
}

func TestHook_RebootWithOneShot(t *testing.T) {
	dir := sandbox(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "reboot-param"), []byte("arch-lts.conf\n"), 0o600))

	code, _, errOut := runCLI(t, "hook", "reboot")
	require.Equal(t, 0, code, errOut)

	report := statusJSON(t)
	assert.True(t, report.Available)
	reason := variable(report, "LoaderEntryRebootReason")
	assert.True(t, reason.Present)
	assert.Equal(t, "reboot", reason.Value)
	assert.Equal(t, "NV|BS|RT", reason.Attributes)
	assert.Equal(t, "arch-lts.conf", variable(report, "LoaderEntryOneShot").Value)

	require.NotNil(t, report.LastEvent)
	assert.Equal(t, "reboot", report.LastEvent.Kind)
	assert.Equal(t, "arch-lts.conf", report.LastEvent.OneShot)
	assert.Equal(t, "hook", report.LastEvent.Source)
}

func TestHook_PoweroffIgnoresParam(t *testing.T) {
	dir := sandbox(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "reboot-param"), []byte("arch-lts.conf"), 0o600))

	code, _, errOut := runCLI(t, "hook", "poweroff")
	require.Equal(t, 0, code, errOut)

	report := statusJSON(t)
	assert.Equal(t, "shutdown", variable(report, "LoaderEntryRebootReason").Value)
	assert.False(t, variable(report, "LoaderEntryOneShot").Present)
}

func TestHook_BadVerb(t *testing.T) {
	sandbox(t)
	code, _, errOut := runCLI(t, "hook", "suspend")
	assert.Equal(t, 2, code)
	assert.Contains(t, errOut, "unknown shutdown verb")

	code, _, _ = runCLI(t, "hook")
	assert.Equal(t, 2, code)
}

func TestPanic_Watchdog(t *testing.T) {
	sandbox(t)
	code, _, errOut := runCLI(t, "panic", "-context", "Software Watchdog timed out")
	require.Equal(t, 0, code, errOut)

	report := statusJSON(t)
	assert.Equal(t, "watchdog", variable(report, "LoaderEntryRebootReason").Value)
}

func TestReboot_Flags(t *testing.T) {
	sandbox(t)
	code, _, errOut := runCLI(t, "reboot", "-restart", "-entry", "fallback.conf")
	require.Equal(t, 0, code, errOut)

	report := statusJSON(t)
	assert.Equal(t, "reboot", variable(report, "LoaderEntryRebootReason").Value)
	assert.False(t, variable(report, "LoaderEntryRebootReason").Unrecognized)
	assert.Equal(t, "fallback.conf", variable(report, "LoaderEntryOneShot").Value)
}

func TestReboot_TooLargeEntryStillExitsZero(t *testing.T) {
	sandbox(t)
	code, _, errOut := runCLI(t, "reboot", "-restart", "-entry", strings.Repeat("e", 600))
	require.Equal(t, 0, code)
	assert.Contains(t, errOut, "variable.too_large")

	report := statusJSON(t)
	assert.Equal(t, "reboot", variable(report, "LoaderEntryRebootReason").Value)
	assert.False(t, variable(report, "LoaderEntryOneShot").Present)
}

func TestReboot_UnavailableIsQuiet(t *testing.T) {
	dir := sandbox(t)
	t.Setenv(config.EnvEFIVarsDir, filepath.Join(dir, "missing"))

	code, _, _ := runCLI(t, "reboot")
	assert.Equal(t, 0, code)

	code, out, _ := runCLI(t, "status")
	assert.Equal(t, 0, code)
	assert.Contains(t, out, "not available")
}

func TestReboot_PlainDirNeedsOptIn(t *testing.T) {
	dir := sandbox(t)
	t.Setenv(config.EnvAllowPlainDir, "false")

	code, _, _ := runCLI(t, "reboot")
	assert.Equal(t, 0, code)
	assert.NoFileExists(t, filepath.Join(dir, "efivars", "LoaderEntryRebootReason-4a67b082-0a4c-41cf-b6c7-440b29bb8c4f"))

	code, out, _ := runCLI(t, "status")
	assert.Equal(t, 0, code)
	assert.Contains(t, out, "not available")
}

func TestStatus_FlagsUnrecognizedReason(t *testing.T) {
	dir := sandbox(t)
	data, err := efivar.EncodeBytes("halt", efivar.MaxDataSize)
	require.NoError(t, err)
	store := efivar.NewEfivarfs(filepath.Join(dir, "efivars"))
	require.NoError(t, store.SetVariable(context.Background(), efivar.Request{
		Name:       bootreason.RebootReason.VariableName(),
		GUID:       bootreason.LoaderEntryGUID,
		Attributes: efivar.PersistentRuntime,
		Data:       data,
	}))

	v := variable(statusJSON(t), "LoaderEntryRebootReason")
	assert.Equal(t, "halt", v.Value)
	assert.True(t, v.Unrecognized)

	code, out, _ := runCLI(t, "status")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "(unrecognized reason)")
}

func TestStatus_Text(t *testing.T) {
	sandbox(t)
	code, out, _ := runCLI(t, "status")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "LoaderEntryRebootReason: (unset)")
	assert.Contains(t, out, "last event: none recorded")

	code, _, _ = runCLI(t, "status", "-format", "xml")
	assert.Equal(t, 2, code)
}

func TestConfigCLI(t *testing.T) {
	dir := sandbox(t)
	good := filepath.Join(dir, "good.yaml")
	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(good, []byte("logLevel: warn\n"), 0o600))
	require.NoError(t, os.WriteFile(bad, []byte("logLevel: warn\nbogus: 1\n"), 0o600))

	code, out, _ := runCLI(t, "config", "validate", "-f", good)
	assert.Equal(t, 0, code)
	assert.Contains(t, out, "is valid")

	code, _, errOut := runCLI(t, "config", "validate", "-f", bad)
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "bogus")

	code, out, _ = runCLI(t, "config", "dump", "-f", good, "-format", "json")
	require.Equal(t, 0, code)
	var dumped map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &dumped))
	assert.Equal(t, "warn", dumped["logLevel"])

	code, _, _ = runCLI(t, "config", "dump", "-format", "toml")
	assert.Equal(t, 2, code)

	code, _, _ = runCLI(t, "config", "explode")
	assert.Equal(t, 2, code)
}
