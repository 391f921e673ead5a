package app

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/dharmasatrya/faresweep/internal/cache"
	"github.com/dharmasatrya/faresweep/internal/config"
	"github.com/dharmasatrya/faresweep/internal/providers"
	"github.com/dharmasatrya/faresweep/internal/ratelimit"
	"github.com/dharmasatrya/faresweep/internal/search"
)

func NewProvider(cfg config.ProviderConfig) (providers.Provider, error) {
	switch cfg.Kind {
	case config.ProviderSimulated:
		p, err := providers.NewSimulatedProvider(providers.SimulatedConfig{
			MinLatency:  cfg.MinLatency,
			MaxLatency:  cfg.MaxLatency,
			FailureRate: cfg.FailureRate,
		})
		if err != nil {
			return nil, err
		}
		return p, nil
	case config.ProviderHTTP:
		p, err := providers.NewHTTPProvider(providers.HTTPConfig{
			BaseURL:     cfg.BaseURL,
			APIKey:      cfg.APIKey,
			ResultsPath: cfg.ResultsPath,
			Timeout:     cfg.Timeout,
		})
		if err != nil {
			return nil, err
		}
		return p, nil
	}
	return nil, fmt.Errorf("unknown provider %q", cfg.Kind)
}

// NewCache connects to redis when caching is enabled.
func NewCache(cfg config.CacheConfig, logger *zap.Logger) (cache.Cache, error) {
	if !cfg.Enabled {
		logger.Info("cache disabled")
		return cache.NewNoOpCache(), nil
	}

	redisCache, err := cache.NewRedisCache(cache.RedisConfig{
		Host:     cfg.Host,
		Port:     cfg.Port,
		Password: cfg.Password,
		DB:       cfg.DB,
		TTL:      cfg.TTL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	logger.Info("redis cache enabled",
		zap.String("addr", cfg.Host+":"+cfg.Port),
		zap.Duration("ttl", cfg.TTL),
	)
	return redisCache, nil
}

// Sweeper bundles an orchestrator with the resources it holds open.
type Sweeper struct {
	*search.Orchestrator
	Provider providers.Provider
	Limiter  *ratelimit.ProviderLimiter
	cache    cache.Cache
}

func (s *Sweeper) Close() error {
	return s.cache.Close()
}

func NewSweeper(cfg *config.Config, logger *zap.Logger, notifier func(search.Progress)) (*Sweeper, error) {
	provider, err := NewProvider(cfg.Provider)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize provider: %w", err)
	}

	fareCache, err := NewCache(cfg.Cache, logger)
	if err != nil {
		return nil, err
	}

	limiter := ratelimit.NewProviderLimiter(ratelimit.Config{
		RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
		BurstSize:         cfg.RateLimit.Burst,
	})
	for name, o := range cfg.RateLimit.Providers {
		limiter.SetProviderLimit(name, o.RequestsPerSecond, o.Burst)
		logger.Debug("provider rate limit override",
			zap.String("provider", name),
			zap.Float64("rps", o.RequestsPerSecond),
			zap.Int("burst", o.Burst),
		)
	}

	orchConfig := search.DefaultConfig()
	orchConfig.QueryTimeout = cfg.Search.QueryTimeout
	orchConfig.Workers = cfg.Workers
	orchConfig.RateLimiter = limiter
	orchConfig.Cache = fareCache
	orchConfig.Notifier = notifier

	logger.Info("fare provider initialized",
		zap.String("provider", provider.Name()),
		zap.Int("workers", cfg.Workers),
		zap.Float64("rps", cfg.RateLimit.RequestsPerSecond),
	)

	return &Sweeper{
		Orchestrator: search.NewOrchestrator(provider, orchConfig, logger),
		Provider:     provider,
		Limiter:      limiter,
		cache:        fareCache,
	}, nil
}
