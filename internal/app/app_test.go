package app

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dharmasatrya/trainsearch/internal/config"
	"github.com/dharmasatrya/trainsearch/internal/providers"
)

func rttServer(t *testing.T, hits *int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(hits, 1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"locations": [{"name": "York", "crs": "YRK"}]}`))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func testConfig(rttURL string) *config.Config {
	return &config.Config{
		Location:          time.UTC,
		RTT:               config.RTTConfig{Username: "user", Password: "secret", BaseURL: rttURL},
		ProviderOrder:     []string{config.ProviderTransportAPI, config.ProviderRTT},
		ResultLimit:       5,
		ProviderTimeout:   time.Second,
		StationCacheTTL:   time.Hour,
		DepartureCacheTTL: time.Minute,
		RateLimitRPS:      100,
		RateLimitBurst:    100,
	}
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := testConfig("http://unused")
	cfg.RTT = config.RTTConfig{}

	_, err := New(cfg, nil)
	assert.ErrorIs(t, err, config.ErrNoProviders)
}

func TestNewWiresConfiguredProviders(t *testing.T) {
	var hits int32
	srv := rttServer(t, &hits)

	a, err := New(testConfig(srv.URL), nil)
	require.NoError(t, err)
	defer a.Close()

	assert.Equal(t, []string{providers.RTTName}, a.Aggregator.ProviderNames())

	res, err := a.Service.Stations(context.Background(), "York", 0)
	require.NoError(t, err)
	assert.Equal(t, providers.RTTName, res.Provider)
	assert.Equal(t, "YRK", res.Stations[0].Code)
}

func TestNewWithRedisCache(t *testing.T) {
	var hits int32
	srv := rttServer(t, &hits)
	mr := miniredis.RunT(t)

	host, port, err := net.SplitHostPort(mr.Addr())
	require.NoError(t, err)

	cfg := testConfig(srv.URL)
	cfg.CacheEnabled = true
	cfg.Redis = config.RedisConfig{Host: host, Port: port}

	a, err := New(cfg, nil)
	require.NoError(t, err)
	defer a.Close()

	for i := 0; i < 2; i++ {
		_, err := a.Service.Stations(context.Background(), "York", 0)
		require.NoError(t, err)
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
	assert.NotEmpty(t, mr.Keys())
}

func TestNewFailsWhenRedisIsDown(t *testing.T) {
	cfg := testConfig("http://unused")
	cfg.CacheEnabled = true
	cfg.Redis = config.RedisConfig{Host: "127.0.0.1", Port: "1"}

	_, err := New(cfg, nil)
	assert.ErrorContains(t, err, "connecting to redis")
}

func TestNewLimiterAppliesOverrides(t *testing.T) {
	cfg := testConfig("http://unused")
	cfg.ProviderRateLimits = map[string]config.RateLimit{
		config.ProviderTransportAPI: {RPS: 1, Burst: 3},
	}

	limiter := newLimiter(cfg)
	assert.Equal(t, 3, limiter.GetLimiter(providers.TransportAPIName).Burst())
	assert.Equal(t, 100, limiter.GetLimiter(providers.RTTName).Burst())
}
