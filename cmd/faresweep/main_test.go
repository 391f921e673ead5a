package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dharmasatrya/faresweep/internal/consolidate"
)

func TestRunSavesSearch(t *testing.T) {
	t.Setenv("FARESWEEP_RATELIMIT_RPS", "0")
	t.Setenv("FARESWEEP_PROVIDER_MIN_LATENCY", "0s")
	t.Setenv("FARESWEEP_PROVIDER_MAX_LATENCY", "0s")
	t.Setenv("FARESWEEP_LOG_LEVEL", "error")
	dir := t.TempDir()

	code := run([]string{
		"-o", "PUS", "-d", "KIX",
		"-s", "2025-06-01", "-e", "2025-06-10",
		"--min-stay", "2", "--max-stay", "3",
		"--workers", "3", "--save", "--output-dir", dir,
	})
	require.Equal(t, 0, code)

	loaded, err := consolidate.LoadFiles(filepath.Join(dir, consolidate.DefaultPattern("PUS", "KIX")), nil)
	require.NoError(t, err)
	require.Len(t, loaded.Files, 1)
	assert.Len(t, loaded.Files[0].Outcomes, 15)
}

func TestRunSkipsSaveWithoutFlights(t *testing.T) {
	t.Setenv("FARESWEEP_RATELIMIT_RPS", "0")
	t.Setenv("FARESWEEP_PROVIDER_MIN_LATENCY", "0s")
	t.Setenv("FARESWEEP_PROVIDER_MAX_LATENCY", "0s")
	t.Setenv("FARESWEEP_PROVIDER_FAILURE_RATE", "1")
	t.Setenv("FARESWEEP_LOG_LEVEL", "error")
	dir := t.TempDir()

	code := run([]string{
		"-o", "PUS", "-d", "KIX",
		"-s", "2025-06-01", "-e", "2025-06-05",
		"--min-stay", "2", "--max-stay", "3",
		"--workers", "2", "--save", "--output-dir", dir,
	})
	require.Equal(t, 0, code)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRunRejectsBadInput(t *testing.T) {
	assert.Equal(t, 2, run([]string{"--no-such-flag"}))
	assert.Equal(t, 1, run([]string{"-s", "2025-06-10", "-e", "2025-06-01"}))
	assert.Equal(t, 0, run([]string{"--help"}))
}
