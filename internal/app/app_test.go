package app

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/dharmasatrya/faresweep/internal/cache"
	"github.com/dharmasatrya/faresweep/internal/config"
	"github.com/dharmasatrya/faresweep/internal/models"
	"github.com/dharmasatrya/faresweep/internal/search"
)

func TestNewProvider(t *testing.T) {
	p, err := NewProvider(config.ProviderConfig{Kind: config.ProviderSimulated})
	require.NoError(t, err)
	assert.Equal(t, "simulated", p.Name())

	p, err = NewProvider(config.ProviderConfig{Kind: config.ProviderHTTP, BaseURL: "https://fares.example.com"})
	require.NoError(t, err)
	assert.Equal(t, "http", p.Name())

	_, err = NewProvider(config.ProviderConfig{Kind: config.ProviderHTTP, BaseURL: "ftp://fares.example.com"})
	assert.Error(t, err)

	_, err = NewProvider(config.ProviderConfig{Kind: "fax"})
	assert.Error(t, err)
}

func TestNewCache(t *testing.T) {
	c, err := NewCache(config.CacheConfig{}, zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &cache.NoOpCache{}, c)

	mr := miniredis.RunT(t)
	c, err = NewCache(config.CacheConfig{Enabled: true, Host: mr.Host(), Port: mr.Port(), TTL: time.Minute}, zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &cache.RedisCache{}, c)
	require.NoError(t, c.Close())
}

func TestNewSweeperRuns(t *testing.T) {
	cfg := &config.Config{
		Search:    config.SearchConfig{QueryTimeout: time.Second},
		Provider:  config.ProviderConfig{Kind: config.ProviderSimulated},
		RateLimit: config.RateLimitConfig{RequestsPerSecond: 0, Burst: 1},
		Workers:   2,
	}

	var notified atomic.Int32
	s, err := NewSweeper(cfg, zap.NewNop(), func(search.Progress) { notified.Add(1) })
	require.NoError(t, err)
	defer s.Close()

	res, err := s.Run(context.Background(), models.SearchParameters{
		Origin: "PUS", Destination: "KIX", StartDate: "2025-06-01", EndDate: "2025-06-12",
		MinStayDays: 5, MaxStayDays: 7,
	})
	require.NoError(t, err)
	assert.Equal(t, 18, res.Progress.Valid)
	assert.Equal(t, 18, res.Progress.Succeeded)
	assert.Equal(t, int32(1), notified.Load())
}

func TestNewSweeperProviderRateLimit(t *testing.T) {
	cfg := &config.Config{
		Search:   config.SearchConfig{QueryTimeout: time.Second},
		Provider: config.ProviderConfig{Kind: config.ProviderSimulated},
		RateLimit: config.RateLimitConfig{
			RequestsPerSecond: 2,
			Burst:             4,
			Providers: map[string]config.ProviderRateLimit{
				"simulated": {RequestsPerSecond: 0.5, Burst: 1},
			},
		},
		Workers: 1,
	}

	s, err := NewSweeper(cfg, zap.NewNop(), nil)
	require.NoError(t, err)
	defer s.Close()

	lim := s.Limiter.GetLimiter(s.Provider.Name())
	assert.Equal(t, rate.Limit(0.5), lim.Limit())
	assert.Equal(t, 1, lim.Burst())

	fallback := s.Limiter.GetLimiter("http")
	assert.Equal(t, rate.Limit(2), fallback.Limit())
	assert.Equal(t, 4, fallback.Burst())
}
