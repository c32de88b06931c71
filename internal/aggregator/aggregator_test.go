package aggregator

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dharmasatrya/trainsearch/internal/models"
	"github.com/dharmasatrya/trainsearch/internal/providers"
	"github.com/dharmasatrya/trainsearch/internal/providers/providertest"
	"github.com/dharmasatrya/trainsearch/internal/ratelimit"
)

var york = []models.StationSummary{{Name: "York", Code: "YRK"}}

func newAggregator(ps ...*providertest.Fake) *Aggregator {
	list := make([]providers.Provider, len(ps))
	for i, p := range ps {
		list[i] = p
	}
	return NewAggregator(list, Config{})
}

func TestFallbackFirstSuccessWins(t *testing.T) {
	p1 := &providertest.Fake{ProviderName: "one", StationErr: providertest.Rejected("one", "bad gateway")}
	p2 := &providertest.Fake{ProviderName: "two", Stations: york}
	p3 := &providertest.Fake{ProviderName: "three", Stations: york}

	out, err := newAggregator(p1, p2, p3).SearchStation(context.Background(), "York", 5, true)
	require.NoError(t, err)

	assert.Equal(t, york, out.Results)
	assert.Equal(t, "two", out.Provider)
	assert.Equal(t, []string{"one: bad gateway"}, out.Notes)
	assert.Equal(t, 0, p3.Calls())
}

func TestFallbackEmptyResults(t *testing.T) {
	t.Run("retry on empty returns the last empty answer", func(t *testing.T) {
		p1 := &providertest.Fake{ProviderName: "one"}
		p2 := &providertest.Fake{ProviderName: "two"}

		out, err := newAggregator(p1, p2).GetDepartures(context.Background(), models.DepartureQuery{OriginCode: "LDS"}, true)
		require.NoError(t, err)

		assert.Empty(t, out.Results)
		assert.NotNil(t, out.Results)
		assert.Equal(t, "two", out.Provider)
		assert.Empty(t, out.Notes)
		assert.Equal(t, 1, p1.Calls())
		assert.Equal(t, 1, p2.Calls())
	})

	t.Run("retry on empty prefers a later non-empty answer", func(t *testing.T) {
		p1 := &providertest.Fake{ProviderName: "one"}
		p2 := &providertest.Fake{ProviderName: "two", Stations: york}

		out, err := newAggregator(p1, p2).SearchStation(context.Background(), "York", 5, true)
		require.NoError(t, err)
		assert.Equal(t, "two", out.Provider)
		assert.Equal(t, york, out.Results)
	})

	t.Run("without retry the first empty answer is final", func(t *testing.T) {
		p1 := &providertest.Fake{ProviderName: "one"}
		p2 := &providertest.Fake{ProviderName: "two", Stations: york}

		out, err := newAggregator(p1, p2).SearchStation(context.Background(), "York", 5, false)
		require.NoError(t, err)
		assert.Equal(t, "one", out.Provider)
		assert.Empty(t, out.Results)
		assert.Equal(t, 0, p2.Calls())
	})

	t.Run("empty candidate survives later failures and keeps their notes", func(t *testing.T) {
		p1 := &providertest.Fake{ProviderName: "one"}
		p2 := &providertest.Fake{ProviderName: "two", StationErr: providertest.Unreachable("two", "timeout")}

		out, err := newAggregator(p1, p2).SearchStation(context.Background(), "York", 5, true)
		require.NoError(t, err)
		assert.Equal(t, "one", out.Provider)
		assert.Equal(t, []string{"two: network error timeout"}, out.Notes)
	})
}

func TestFallbackAllProvidersFailed(t *testing.T) {
	p1 := &providertest.Fake{ProviderName: "one", DepartureErr: providertest.Rejected("one", "HTTP 500")}
	p2 := &providertest.Fake{ProviderName: "two", DepartureErr: providertest.Unreachable("two", "connection refused")}

	out, err := newAggregator(p1, p2).GetDepartures(context.Background(), models.DepartureQuery{OriginCode: "LDS"}, true)
	assert.Nil(t, out)

	var failed *AllProvidersFailedError
	require.ErrorAs(t, err, &failed)
	assert.Equal(t, []string{"one: HTTP 500", "two: network error connection refused"}, failed.Notes)
	assert.Equal(t, "one: HTTP 500; two: network error connection refused", failed.Error())
}

func TestFallbackNoProviders(t *testing.T) {
	out, err := newAggregator().SearchStation(context.Background(), "York", 5, true)
	require.NoError(t, err)
	assert.Empty(t, out.Results)
	assert.Empty(t, out.Provider)
	assert.Empty(t, out.Notes)
}

func TestFallbackStopsOnUnclassifiedError(t *testing.T) {
	boom := errors.New("boom")
	p1 := &providertest.Fake{ProviderName: "one", StationErr: boom}
	p2 := &providertest.Fake{ProviderName: "two", Stations: york}

	_, err := newAggregator(p1, p2).SearchStation(context.Background(), "York", 5, true)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, p2.Calls())
}

func TestFallbackHonoursCancelledContext(t *testing.T) {
	p1 := &providertest.Fake{ProviderName: "one", Stations: york}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newAggregator(p1).SearchStation(ctx, "York", 5, true)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, p1.Calls())
}

func TestFallbackGenericOperation(t *testing.T) {
	p1 := &providertest.Fake{ProviderName: "one", Stations: york}
	agg := newAggregator(p1)

	out, err := Fallback(context.Background(), agg, "codes", func(ctx context.Context, p providers.Provider) ([]string, error) {
		stations, err := p.SearchStation(ctx, "York", 1)
		if err != nil {
			return nil, err
		}
		codes := make([]string, 0, len(stations))
		for _, s := range stations {
			codes = append(codes, s.Code)
		}
		return codes, nil
	}, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"YRK"}, out.Results)
}

func TestCallTimeoutIsAppliedPerCall(t *testing.T) {
	var deadlines []bool
	agg := NewAggregator([]providers.Provider{&providertest.Fake{ProviderName: "one"}}, Config{CallTimeout: time.Second})

	_, err := Fallback(context.Background(), agg, "probe", func(ctx context.Context, p providers.Provider) ([]int, error) {
		_, ok := ctx.Deadline()
		deadlines = append(deadlines, ok)
		return []int{1}, nil
	}, false)
	require.NoError(t, err)
	assert.Equal(t, []bool{true}, deadlines)
}

func TestRateLimitedProviderIsSkipped(t *testing.T) {
	limiter := ratelimit.NewProviderLimiter(ratelimit.RateLimitConfig{RequestsPerSecond: 0.001, BurstSize: 1})
	p1 := &providertest.Fake{ProviderName: "one", Stations: york}
	p2 := &providertest.Fake{ProviderName: "two", Stations: york}

	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	agg := NewAggregator([]providers.Provider{p1, p2}, Config{RateLimiter: limiter, Logger: logger})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	out, err := agg.SearchStation(ctx, "York", 5, true)
	require.NoError(t, err)
	assert.Equal(t, "one", out.Provider)

	out, err = agg.SearchStation(ctx, "York", 5, true)
	require.NoError(t, err)
	assert.Equal(t, "two", out.Provider)
	require.Len(t, out.Notes, 1)
	assert.True(t, strings.HasPrefix(out.Notes[0], "one: rate limit: "), out.Notes[0])
	assert.Equal(t, 1, strings.Count(out.Notes[0], "one"))
	assert.Contains(t, buf.String(), `"level":"WARN"`)
	assert.Contains(t, buf.String(), `"provider":"one"`)
}

func TestProviderNames(t *testing.T) {
	agg := newAggregator(&providertest.Fake{ProviderName: "one"}, &providertest.Fake{ProviderName: "two"})
	assert.Equal(t, []string{"one", "two"}, agg.ProviderNames())
}
