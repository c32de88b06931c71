package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/dharmasatrya/trainsearch/internal/models"
	"github.com/dharmasatrya/trainsearch/internal/providers"
)

// CachingProvider serves repeat lookups for one provider from a Cache.
// Only non-empty answers are stored, so an empty board is always re-asked
// and the aggregator still gets the chance to fall through to the next
// provider.
type CachingProvider struct {
	next         providers.Provider
	cache        Cache
	stationTTL   time.Duration
	departureTTL time.Duration
	logger       *slog.Logger
}

var _ providers.Provider = (*CachingProvider)(nil)

func NewCachingProvider(next providers.Provider, c Cache, stationTTL, departureTTL time.Duration, logger *slog.Logger) *CachingProvider {
	if logger == nil {
		logger = slog.Default()
	}
	return &CachingProvider{
		next:         next,
		cache:        c,
		stationTTL:   stationTTL,
		departureTTL: departureTTL,
		logger:       logger,
	}
}

func (p *CachingProvider) Name() string {
	return p.next.Name()
}

func (p *CachingProvider) SearchStation(ctx context.Context, query string, limit int) ([]models.StationSummary, error) {
	key := generateKey("station", p.next.Name(), struct {
		Query string
		Limit int
	}{strings.ToLower(strings.TrimSpace(query)), limit})

	var cached []models.StationSummary
	if p.stationTTL > 0 && p.cache.Get(ctx, key, &cached) {
		return cached, nil
	}

	stations, err := p.next.SearchStation(ctx, query, limit)
	if err != nil || len(stations) == 0 || p.stationTTL <= 0 {
		return stations, err
	}

	if err := p.cache.Set(ctx, key, stations, p.stationTTL); err != nil {
		p.logger.Warn("failed to cache stations", slog.String("provider", p.next.Name()), slog.String("error", err.Error()))
	}
	return stations, nil
}

func (p *CachingProvider) GetDepartures(ctx context.Context, q models.DepartureQuery) ([]models.Departure, error) {
	keyData := struct {
		Origin      string
		Destination string
		Limit       int
		When        string
	}{
		Origin:      strings.ToUpper(q.OriginCode),
		Destination: strings.ToUpper(q.DestinationCode),
		Limit:       q.Limit,
	}
	if q.When != nil {
		keyData.When = q.When.UTC().Format(time.RFC3339)
	}
	key := generateKey("departures", p.next.Name(), keyData)

	var cached []models.Departure
	if p.departureTTL > 0 && p.cache.Get(ctx, key, &cached) {
		return cached, nil
	}

	departures, err := p.next.GetDepartures(ctx, q)
	if err != nil || len(departures) == 0 || p.departureTTL <= 0 {
		return departures, err
	}

	if err := p.cache.Set(ctx, key, departures, p.departureTTL); err != nil {
		p.logger.Warn("failed to cache departures", slog.String("provider", p.next.Name()), slog.String("error", err.Error()))
	}
	return departures, nil
}

func generateKey(kind, provider string, args any) string {
	data, _ := json.Marshal(args)
	hash := sha256.Sum256(data)
	return "rail:" + kind + ":" + strings.ToLower(provider) + ":" + hex.EncodeToString(hash[:])
}
