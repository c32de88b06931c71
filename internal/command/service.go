// Package command runs the journey and stations commands: it parses the
// user's text, asks the providers through the aggregator and composes the
// reply text.
package command

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/dharmasatrya/trainsearch/internal/aggregator"
	"github.com/dharmasatrya/trainsearch/internal/formatter"
	"github.com/dharmasatrya/trainsearch/internal/logging"
	"github.com/dharmasatrya/trainsearch/internal/models"
	"github.com/dharmasatrya/trainsearch/internal/parser"
	"github.com/dharmasatrya/trainsearch/internal/timezone"
)

type Settings struct {
	ResultLimit    int
	StationLimit   int
	CandidateLimit int
	Location       *time.Location
	// Clock defaults to time.Now.
	Clock func() time.Time
}

func DefaultSettings() Settings {
	return Settings{
		ResultLimit:    5,
		StationLimit:   5,
		CandidateLimit: 3,
		Location:       timezone.London,
		Clock:          time.Now,
	}
}

type Service struct {
	aggregator *aggregator.Aggregator
	settings   Settings
	logger     *slog.Logger
}

type StationsResult struct {
	Stations []models.StationSummary
	Provider string
	Notes    []string
	Reply    string
}

type JourneyResult struct {
	Request               models.JourneyRequest
	Origin                models.StationSummary
	Destination           models.StationSummary
	OriginCandidates      []models.StationSummary
	DestinationCandidates []models.StationSummary
	Departures            []models.Departure
	Provider              string
	Diagnostics           []string
	Reply                 string
}

func NewService(agg *aggregator.Aggregator, settings Settings, logger *slog.Logger) *Service {
	defaults := DefaultSettings()
	if settings.ResultLimit <= 0 {
		settings.ResultLimit = defaults.ResultLimit
	}
	if settings.StationLimit <= 0 {
		settings.StationLimit = defaults.StationLimit
	}
	if settings.CandidateLimit <= 0 {
		settings.CandidateLimit = defaults.CandidateLimit
	}
	if settings.Location == nil {
		settings.Location = defaults.Location
	}
	if settings.Clock == nil {
		settings.Clock = defaults.Clock
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Service{
		aggregator: agg,
		settings:   settings,
		logger:     logger,
	}
}

// Stations looks up station codes for a free-text query. limit <= 0 uses
// the configured station limit.
func (s *Service) Stations(ctx context.Context, query string, limit int) (*StationsResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, models.ErrMissingStationQuery
	}
	if limit <= 0 {
		limit = s.settings.StationLimit
	}

	out, err := s.aggregator.SearchStation(ctx, query, limit, true)
	if err != nil {
		return nil, stageError("searching for stations", err)
	}
	if len(out.Results) == 0 {
		return nil, models.ErrNoStationsFound
	}

	return &StationsResult{
		Stations: out.Results,
		Provider: out.Provider,
		Notes:    out.Notes,
		Reply:    formatter.FormatStations(out.Results, out.Provider, out.Notes),
	}, nil
}

// Journey answers "origin to destination [at HH:MM]" with upcoming
// departures.
func (s *Service) Journey(ctx context.Context, text string) (*JourneyResult, error) {
	start := time.Now()

	if strings.TrimSpace(text) == "" {
		return nil, models.ErrMissingJourney
	}

	req, err := parser.Parse(text, s.settings.Clock().In(s.settings.Location))
	if err != nil {
		return nil, err
	}

	origins, err := s.aggregator.SearchStation(ctx, req.OriginQuery, s.settings.CandidateLimit, true)
	if err != nil {
		return nil, stageError("resolving stations", err)
	}
	destinations, err := s.aggregator.SearchStation(ctx, req.DestinationQuery, s.settings.CandidateLimit, true)
	if err != nil {
		return nil, stageError("resolving stations", err)
	}

	if len(origins.Results) == 0 {
		return nil, models.ErrOriginNotFound
	}
	if len(destinations.Results) == 0 {
		return nil, models.ErrDestinationNotFound
	}

	origin := origins.Results[0]
	destination := destinations.Results[0]

	departures, err := s.aggregator.GetDepartures(ctx, models.DepartureQuery{
		OriginCode:      origin.Code,
		DestinationCode: destination.Code,
		Limit:           s.settings.ResultLimit,
		When:            req.RequestedTime,
	}, true)
	if err != nil {
		return nil, stageError("fetching departures", err)
	}

	provider := firstNonEmpty(departures.Provider, origins.Provider, destinations.Provider)

	var diagnostics []string
	diagnostics = appendPrefixed(diagnostics, "Origin fallback: ", origins.Notes)
	diagnostics = appendPrefixed(diagnostics, "Destination fallback: ", destinations.Notes)
	diagnostics = appendPrefixed(diagnostics, "Departure fallback: ", departures.Notes)

	var reply strings.Builder
	reply.WriteString(formatter.FormatDepartures(
		formatter.TidyStationName(origin.Name),
		formatter.TidyStationName(destination.Name),
		departures.Results,
		req.RequestedTime,
	))
	reply.WriteString(formatter.FormatSuggestions(origins.Results, destinations.Results))
	if provider != "" {
		reply.WriteString("\n\nData source: " + provider)
	}
	if len(diagnostics) > 0 {
		reply.WriteString("\n" + strings.Join(diagnostics, "\n"))
	}

	logging.LogOperation(logging.FromContext(ctx, s.logger), "journey",
		slog.String("origin", origin.Code),
		slog.String("destination", destination.Code),
		slog.String("provider", provider),
		slog.Int("departures", len(departures.Results)),
		slog.Int("fallback_notes", len(diagnostics)),
		slog.Duration("duration", time.Since(start)))

	return &JourneyResult{
		Request:               req,
		Origin:                origin,
		Destination:           destination,
		OriginCandidates:      origins.Results,
		DestinationCandidates: destinations.Results,
		Departures:            departures.Results,
		Provider:              provider,
		Diagnostics:           diagnostics,
		Reply:                 reply.String(),
	}, nil
}

func appendPrefixed(dst []string, prefix string, notes []string) []string {
	for _, n := range notes {
		dst = append(dst, prefix+n)
	}
	return dst
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
