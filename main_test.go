/* main_test.go
 * Contains unit tests for main.go functions
 */

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bod-importer/config"
)

// setEnv gives every test a known environment with quiet logging
func setEnv(t *testing.T, dir string) {
	t.Helper()
	for _, key := range []string{"MONGO_URI", "IMPORT_MARKER_PATH", "IMPORT_FORCE", "IMPORT_REIMPORT", "IMPORT_DRY_RUN", "IMPORT_CREATE_PLAYERS",
		"IMPORT_FIX_BRACKETS", "IMPORT_WRITE_RATE", "DISCORD_WEBHOOK_ID", "DISCORD_WEBHOOK_TOKEN"} {
		t.Setenv(key, "")
	}
	t.Setenv("DATA_DIR", dir)
	t.Setenv("LOG_LEVEL", "error")
}

func writeScenario(t *testing.T, dir string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "All Players.json"),
		[]byte(`[{"457 Unique Players": "Jane Doe", "Games Played": "10", "Games Won": "7"}]`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "2024-07-20 M.json"),
		[]byte(`[{"Teams (Round Robin)": "Jane Doe & John Smith", "Seed": 1, "RR Won": 10, "RR Lost": 5}]`), 0o644))
}

// region parseFlags tests

func TestParseFlags_Defaults(t *testing.T) {
	setEnv(t, "./json")
	cfg, err := config.FromEnv()
	require.NoError(t, err)

	mode, bod, err := parseFlags(nil, cfg, &bytes.Buffer{})

	require.NoError(t, err)
	assert.Equal(t, modeImport, mode)
	assert.Equal(t, 0, bod)
	assert.False(t, cfg.Force)
}

func TestParseFlags_Overrides(t *testing.T) {
	setEnv(t, "./json")
	cfg, err := config.FromEnv()
	require.NoError(t, err)

	_, _, err = parseFlags([]string{"-dir=/data", "-force", "-dry-run", "-reimport"}, cfg, &bytes.Buffer{})

	require.NoError(t, err)
	assert.Equal(t, "/data", cfg.DataDir)
	assert.Equal(t, filepath.Join("/data", config.MarkerFileName), cfg.MarkerPath)
	assert.True(t, cfg.Force)
	assert.True(t, cfg.DryRun)
	assert.True(t, cfg.Reimport)
}

func TestParseFlags_Delete(t *testing.T) {
	setEnv(t, "./json")
	cfg, err := config.FromEnv()
	require.NoError(t, err)

	mode, bod, err := parseFlags([]string{"-mode=delete", "-bod=202407"}, cfg, &bytes.Buffer{})

	require.NoError(t, err)
	assert.Equal(t, modeDelete, mode)
	assert.Equal(t, 202407, bod)

	_, _, err = parseFlags([]string{"-mode=delete"}, cfg, &bytes.Buffer{})
	assert.Error(t, err)
}

func TestParseFlags_InvalidMode(t *testing.T) {
	setEnv(t, "./json")
	cfg, err := config.FromEnv()
	require.NoError(t, err)

	_, _, err = parseFlags([]string{"-mode=export"}, cfg, &bytes.Buffer{})

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid mode")
}

// endregion

// region run tests

func TestRun_UsageErrors(t *testing.T) {
	setEnv(t, t.TempDir())
	var stderr bytes.Buffer

	assert.Equal(t, exitUsage, run([]string{"-mode=export"}, &stderr))
	assert.Equal(t, exitUsage, run([]string{"-nope"}, &stderr))
	assert.Equal(t, exitUsage, run([]string{"extra"}, &stderr))
}

func TestRun_InvalidEnvironment(t *testing.T) {
	setEnv(t, t.TempDir())
	t.Setenv("IMPORT_FORCE", "maybe")

	assert.Equal(t, exitUsage, run(nil, &bytes.Buffer{}))
}

func TestRun_ImportWithoutMongoURIIsFatal(t *testing.T) {
	dir := t.TempDir()
	setEnv(t, dir)
	writeScenario(t, dir)

	assert.Equal(t, exitFatal, run(nil, &bytes.Buffer{}))
}

func TestRun_DryRunImport(t *testing.T) {
	dir := t.TempDir()
	setEnv(t, dir)
	writeScenario(t, dir)

	code := run([]string{"-dry-run"}, &bytes.Buffer{})

	assert.Equal(t, exitOK, code)
	_, err := os.Stat(filepath.Join(dir, config.MarkerFileName))
	assert.True(t, os.IsNotExist(err))
}

func TestRun_DryRunMalformedInputIsFatal(t *testing.T) {
	dir := t.TempDir()
	setEnv(t, dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "2024-07-20 M.json"), []byte(`{"oops"`), 0o644))

	assert.Equal(t, exitFatal, run([]string{"-dry-run"}, &bytes.Buffer{}))
}

func TestRun_FixMode(t *testing.T) {
	dir := t.TempDir()
	setEnv(t, dir)
	writeScenario(t, dir)

	code := run([]string{"-mode=fix"}, &bytes.Buffer{})

	assert.Equal(t, exitOK, code)
	assert.FileExists(t, filepath.Join(dir, "backup", "2024-07-20 M.json"))
	assert.FileExists(t, filepath.Join(dir, "fixed", "2024-07-20 M.json"))
}

func TestRun_DeleteUnknownTournamentInDryRun(t *testing.T) {
	setEnv(t, t.TempDir())

	assert.Equal(t, exitFatal, run([]string{"-mode=delete", "-bod=202407", "-dry-run"}, &bytes.Buffer{}))
}

// endregion
