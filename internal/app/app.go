// Package app builds the provider list, limiter, cache and command service
// from a validated config. Every dependency is passed explicitly.
package app

import (
	"fmt"
	"log/slog"

	"github.com/dharmasatrya/trainsearch/internal/aggregator"
	"github.com/dharmasatrya/trainsearch/internal/cache"
	"github.com/dharmasatrya/trainsearch/internal/command"
	"github.com/dharmasatrya/trainsearch/internal/config"
	"github.com/dharmasatrya/trainsearch/internal/providers"
	"github.com/dharmasatrya/trainsearch/internal/ratelimit"
)

type App struct {
	Config     *config.Config
	Aggregator *aggregator.Aggregator
	Service    *command.Service
	Cache      cache.Cache
	Logger     *slog.Logger
}

func New(cfg *config.Config, logger *slog.Logger) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}

	var railCache cache.Cache
	if cfg.CacheEnabled {
		redisCache, err := cache.NewRedisCache(cache.RedisConfig{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return nil, fmt.Errorf("connecting to redis: %w", err)
		}
		railCache = redisCache
		logger.Info("redis cache enabled",
			slog.String("addr", cfg.Redis.Host+":"+cfg.Redis.Port),
			slog.Duration("station_ttl", cfg.StationCacheTTL),
			slog.Duration("departure_ttl", cfg.DepartureCacheTTL))
	} else {
		railCache = cache.NewNoOpCache()
		logger.Info("cache disabled")
	}

	providerList, err := buildProviders(cfg, railCache, logger)
	if err != nil {
		_ = railCache.Close()
		return nil, err
	}

	limiter := newLimiter(cfg)

	agg := aggregator.NewAggregator(providerList, aggregator.Config{
		CallTimeout: cfg.ProviderTimeout,
		RateLimiter: limiter,
		Logger:      logger,
	})
	logger.Info("rail providers initialized", slog.Any("order", agg.ProviderNames()))

	svc := command.NewService(agg, command.Settings{
		ResultLimit: cfg.ResultLimit,
		Location:    cfg.Location,
	}, logger)

	return &App{
		Config:     cfg,
		Aggregator: agg,
		Service:    svc,
		Cache:      railCache,
		Logger:     logger,
	}, nil
}

func (a *App) Close() error {
	return a.Cache.Close()
}

func buildProviders(cfg *config.Config, railCache cache.Cache, logger *slog.Logger) ([]providers.Provider, error) {
	retry := providers.DefaultRetryConfig()
	retry.MaxRetries = cfg.MaxRetries

	var providerList []providers.Provider
	for _, name := range cfg.EnabledProviders() {
		var (
			p   providers.Provider
			err error
		)

		switch name {
		case config.ProviderRTT:
			p, err = providers.NewRTTProvider(providers.RTTConfig{
				Username: cfg.RTT.Username,
				Password: cfg.RTT.Password,
				BaseURL:  cfg.RTT.BaseURL,
				Timeout:  cfg.ProviderTimeout,
				Retry:    retry,
			})
		case config.ProviderTransportAPI:
			p, err = providers.NewTransportAPIProvider(providers.TransportAPIConfig{
				AppID:   cfg.TransportAPI.AppID,
				AppKey:  cfg.TransportAPI.AppKey,
				BaseURL: cfg.TransportAPI.BaseURL,
				Timeout: cfg.ProviderTimeout,
				Retry:   retry,
			})
		default:
			err = fmt.Errorf("unknown provider %q", name)
		}
		if err != nil {
			return nil, fmt.Errorf("initializing %s provider: %w", name, err)
		}

		if cfg.CacheEnabled {
			p = cache.NewCachingProvider(p, railCache, cfg.StationCacheTTL, cfg.DepartureCacheTTL, logger)
		}
		providerList = append(providerList, p)
	}
	return providerList, nil
}

func newLimiter(cfg *config.Config) *ratelimit.ProviderLimiter {
	limiter := ratelimit.NewProviderLimiterWithDefaults()
	if cfg.RateLimitRPS > 0 && cfg.RateLimitBurst > 0 {
		limiter = ratelimit.NewProviderLimiter(ratelimit.RateLimitConfig{
			RequestsPerSecond: cfg.RateLimitRPS,
			BurstSize:         cfg.RateLimitBurst,
		})
	}

	for name, limit := range cfg.ProviderRateLimits {
		limiter.SetProviderLimit(providerName(name), limit.RPS, limit.Burst)
	}
	return limiter
}

// providerName maps a config key to the name the provider reports.
func providerName(key string) string {
	switch key {
	case config.ProviderRTT:
		return providers.RTTName
	case config.ProviderTransportAPI:
		return providers.TransportAPIName
	}
	return key
}
