package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dharmasatrya/faresweep/internal/models"
)

var now = time.Date(2025, 5, 20, 15, 4, 0, 0, time.UTC)

func searchFlags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	fs := pflag.NewFlagSet("faresweep", pflag.ContinueOnError)
	SearchFlags(fs)
	require.NoError(t, fs.Parse(args))
	return fs
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(searchFlags(t), WithNow(now), WithEnvFile(""))
	require.NoError(t, err)

	assert.Equal(t, models.SearchParameters{
		Origin:      "PUS",
		Destination: "KIX",
		StartDate:   "2025-05-28",
		EndDate:     "2025-06-04",
		MinStayDays: 5,
		MaxStayDays: 7,
		Adults:      1,
		SeatType:    models.SeatEconomy,
	}, cfg.SearchParameters())
	assert.Equal(t, ProviderSimulated, cfg.Provider.Kind)
	assert.Equal(t, 30*time.Second, cfg.Search.QueryTimeout)
	assert.Equal(t, 1, cfg.Workers)
	assert.Equal(t, 30*time.Minute, cfg.Cache.TTL)
	assert.False(t, cfg.Cache.Enabled)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadFlagsOverrideEnv(t *testing.T) {
	t.Setenv("FARESWEEP_SEARCH_ORIGIN", "ICN")
	t.Setenv("FARESWEEP_SEARCH_ADULTS", "3")
	t.Setenv("FARESWEEP_WORKERS", "6")

	cfg, err := Load(searchFlags(t, "-o", "gmp", "--max-stay", "9", "--seat", "business"), WithNow(now), WithEnvFile(""))
	require.NoError(t, err)

	assert.Equal(t, "GMP", cfg.Search.Origin)
	assert.Equal(t, 3, cfg.Search.Adults)
	assert.Equal(t, "2025-05-28", cfg.Search.StartDate)
	assert.Equal(t, 9, cfg.Search.MaxStay)
	assert.Equal(t, "business", cfg.Search.Seat)
	assert.Equal(t, 6, cfg.Workers)
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "faresweep.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
search:
  destination: nrt
  start_date: "2025-06-01"
  end_date: "2025-06-30"
provider:
  kind: http
  base_url: https://fares.example.com
  timeout: 5s
cache:
  enabled: true
  ttl: 10m
ratelimit:
  rps: 3
  providers:
    http:
      rps: 0.5
      burst: 2
`), 0o644))

	cfg, err := Load(searchFlags(t, "--config", path), WithNow(now), WithEnvFile(""))
	require.NoError(t, err)

	assert.Equal(t, "NRT", cfg.Search.Destination)
	assert.Equal(t, "2025-06-01", cfg.Search.StartDate)
	assert.Equal(t, ProviderHTTP, cfg.Provider.Kind)
	assert.Equal(t, 5*time.Second, cfg.Provider.Timeout)
	assert.True(t, cfg.Cache.Enabled)
	assert.Equal(t, 10*time.Minute, cfg.Cache.TTL)
	assert.Equal(t, 3.0, cfg.RateLimit.RequestsPerSecond)
	assert.Equal(t, 4, cfg.RateLimit.Burst)
	require.Contains(t, cfg.RateLimit.Providers, "http")
	assert.Equal(t, ProviderRateLimit{RequestsPerSecond: 0.5, Burst: 2}, cfg.RateLimit.Providers["http"])
}

func TestLoadEnvFile(t *testing.T) {
	envFile := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("FARESWEEP_OUTPUT_DIR=/tmp/fares\n"), 0o644))
	t.Cleanup(func() { os.Unsetenv("FARESWEEP_OUTPUT_DIR") })

	cfg, err := Load(searchFlags(t), WithNow(now), WithEnvFile(envFile))
	require.NoError(t, err)
	assert.Equal(t, "/tmp/fares", cfg.Output.Dir)
}

func TestLoadWithDefault(t *testing.T) {
	fs := pflag.NewFlagSet("consolidate", pflag.ContinueOnError)
	ConsolidateFlags(fs)
	require.NoError(t, fs.Parse([]string{"--html"}))

	cfg, err := Load(fs, WithNow(now), WithEnvFile(""), WithDefault("search.destination", "NRT"))
	require.NoError(t, err)

	assert.Equal(t, "NRT", cfg.Search.Destination)
	assert.True(t, cfg.Output.HTML)
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"unknown provider", []string{"--provider", "carrier-pigeon"}},
		{"http without url", []string{"--provider", "http"}},
		{"no workers", []string{"--workers", "0"}},
		{"bad seat", []string{"--seat", "cargo"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(searchFlags(t, tt.args...), WithNow(now), WithEnvFile(""))
			assert.Error(t, err)
		})
	}
}
