// Package config reads the service settings from the environment, with an
// optional .env file.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/dharmasatrya/trainsearch/internal/logging"
	"github.com/dharmasatrya/trainsearch/internal/providers"
)

const (
	ProviderRTT          = "rtt"
	ProviderTransportAPI = "transportapi"
)

var ErrNoProviders = errors.New("At least one rail data provider must be configured.")

type RTTConfig struct {
	Username string
	Password string
	BaseURL  string
}

func (c RTTConfig) Configured() bool {
	return c.Username != "" && c.Password != ""
}

type TransportAPIConfig struct {
	AppID   string
	AppKey  string
	BaseURL string
}

func (c TransportAPIConfig) Configured() bool {
	return c.AppID != "" && c.AppKey != ""
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type Config struct {
	Port     string
	LogLevel slog.Level
	Location *time.Location

	RTT           RTTConfig
	TransportAPI  TransportAPIConfig
	ProviderOrder []string

	ResultLimit     int
	ProviderTimeout time.Duration
	MaxRetries      int

	CacheEnabled      bool
	Redis             RedisConfig
	StationCacheTTL   time.Duration
	DepartureCacheTTL time.Duration

	RateLimitRPS   float64
	RateLimitBurst int

	// ProviderRateLimits overrides the default limit per provider name.
	ProviderRateLimits map[string]RateLimit
}

type RateLimit struct {
	RPS   float64
	Burst int
}

// Load reads .env from the working directory when present, then the
// environment. Call Validate before use.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}
	return FromEnv()
}

// FromEnv builds a Config from the process environment only.
func FromEnv() (*Config, error) {
	tz := getEnv("TIMEZONE", "Europe/London")
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE %q: %w", tz, err)
	}

	cfg := &Config{
		Port:     getEnv("PORT", "8080"),
		LogLevel: logging.ParseLevel(getEnv("LOG_LEVEL", "info")),
		Location: loc,
		RTT: RTTConfig{
			Username: os.Getenv("RTT_USERNAME"),
			Password: os.Getenv("RTT_PASSWORD"),
			BaseURL:  getEnv("RTT_BASE_URL", providers.DefaultRTTBaseURL),
		},
		TransportAPI: TransportAPIConfig{
			AppID:   os.Getenv("TRANSPORT_API_APP_ID"),
			AppKey:  os.Getenv("TRANSPORT_API_APP_KEY"),
			BaseURL: getEnv("TRANSPORT_API_BASE_URL", providers.DefaultTransportAPIBaseURL),
		},
		ProviderOrder:   parseList(getEnv("PROVIDER_ORDER", ProviderRTT+","+ProviderTransportAPI)),
		ResultLimit:     getEnvInt("DEFAULT_RESULT_LIMIT", 5),
		ProviderTimeout: getEnvDuration("PROVIDER_TIMEOUT", 10*time.Second),
		MaxRetries:      getEnvInt("PROVIDER_MAX_RETRIES", 0),
		CacheEnabled:    getEnvBool("CACHE_ENABLED", false),
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		StationCacheTTL:   getEnvDuration("STATION_CACHE_TTL", 24*time.Hour),
		DepartureCacheTTL: getEnvDuration("DEPARTURE_CACHE_TTL", 30*time.Second),
		RateLimitRPS:      getEnvFloat("RATE_LIMIT_RPS", 5),
		RateLimitBurst:    getEnvInt("RATE_LIMIT_BURST", 10),
	}

	cfg.ProviderRateLimits = map[string]RateLimit{}
	for name, prefix := range map[string]string{ProviderRTT: "RTT", ProviderTransportAPI: "TRANSPORT_API"} {
		rps := getEnvFloat(prefix+"_RATE_LIMIT_RPS", 0)
		if rps <= 0 {
			continue
		}
		cfg.ProviderRateLimits[name] = RateLimit{
			RPS:   rps,
			Burst: getEnvInt(prefix+"_RATE_LIMIT_BURST", cfg.RateLimitBurst),
		}
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.ResultLimit <= 0 {
		return fmt.Errorf("DEFAULT_RESULT_LIMIT must be positive, got %d", c.ResultLimit)
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("PROVIDER_MAX_RETRIES must not be negative, got %d", c.MaxRetries)
	}
	for _, name := range c.ProviderOrder {
		if name != ProviderRTT && name != ProviderTransportAPI {
			return fmt.Errorf("unknown provider %q in PROVIDER_ORDER", name)
		}
	}
	if len(c.EnabledProviders()) == 0 {
		return ErrNoProviders
	}
	return nil
}

// EnabledProviders returns the names from ProviderOrder that have
// credentials, in order and without duplicates.
func (c *Config) EnabledProviders() []string {
	seen := make(map[string]bool, len(c.ProviderOrder))
	var names []string
	for _, name := range c.ProviderOrder {
		if seen[name] {
			continue
		}
		seen[name] = true

		switch {
		case name == ProviderRTT && c.RTT.Configured():
			names = append(names, name)
		case name == ProviderTransportAPI && c.TransportAPI.Configured():
			names = append(names, name)
		}
	}
	return names
}

func parseList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.ToLower(strings.TrimSpace(part)); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value == "true" || value == "1" || value == "yes"
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}

func getEnvFloat(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return defaultValue
	}
	return f
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	duration, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return duration
}
