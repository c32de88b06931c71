// Package aggregator asks an ordered list of rail-data providers the same
// question, one at a time, and keeps the first acceptable answer.
package aggregator

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/dharmasatrya/trainsearch/internal/logging"
	"github.com/dharmasatrya/trainsearch/internal/models"
	"github.com/dharmasatrya/trainsearch/internal/providers"
	"github.com/dharmasatrya/trainsearch/internal/ratelimit"
)

type Config struct {
	// CallTimeout bounds each provider call; zero leaves it to the adapter.
	CallTimeout time.Duration
	RateLimiter *ratelimit.ProviderLimiter
	Logger      *slog.Logger
}

type Aggregator struct {
	providers []providers.Provider
	config    Config
}

// Outcome is the answer of one fallback run. Provider is empty when no
// provider produced Results.
type Outcome[T any] struct {
	Results  []T
	Provider string
	Notes    []string
}

// AllProvidersFailedError carries one note per failed provider, in the order
// they were tried.
type AllProvidersFailedError struct {
	Notes []string
}

func (e *AllProvidersFailedError) Error() string {
	return strings.Join(e.Notes, "; ")
}

// Operation performs one capability call against p.
type Operation[T any] func(ctx context.Context, p providers.Provider) ([]T, error)

func NewAggregator(providerList []providers.Provider, config Config) *Aggregator {
	return &Aggregator{
		providers: providerList,
		config:    config,
	}
}

// ProviderNames returns the configured providers in priority order.
func (a *Aggregator) ProviderNames() []string {
	names := make([]string, len(a.providers))
	for i, p := range a.providers {
		names[i] = p.Name()
	}
	return names
}

func (a *Aggregator) SearchStation(ctx context.Context, query string, limit int, retryOnEmpty bool) (*Outcome[models.StationSummary], error) {
	return Fallback(ctx, a, "search_station", func(ctx context.Context, p providers.Provider) ([]models.StationSummary, error) {
		return p.SearchStation(ctx, query, limit)
	}, retryOnEmpty)
}

func (a *Aggregator) GetDepartures(ctx context.Context, q models.DepartureQuery, retryOnEmpty bool) (*Outcome[models.Departure], error) {
	return Fallback(ctx, a, "get_departures", func(ctx context.Context, p providers.Provider) ([]models.Departure, error) {
		return p.GetDepartures(ctx, q)
	}, retryOnEmpty)
}

// Fallback runs op against each provider in order. A provider or transport
// failure is noted and the next provider is tried. A non-empty answer is
// returned at once. An empty answer is returned at once unless retryOnEmpty
// is set, in which case it is kept and later providers are tried; the last
// empty answer wins if nothing better turns up. When every provider failed
// the result is *AllProvidersFailedError. Any other error, including
// cancellation of ctx, stops the run.
func Fallback[T any](ctx context.Context, a *Aggregator, operation string, op Operation[T], retryOnEmpty bool) (*Outcome[T], error) {
	logger := logging.FromContext(ctx, a.config.Logger)

	var notes []string
	var candidate *Outcome[T]

	for _, p := range a.providers {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if a.config.RateLimiter != nil {
			if err := a.config.RateLimiter.Wait(ctx, p.Name()); err != nil {
				if ctx.Err() != nil {
					return nil, ctx.Err()
				}
				logger.Warn("provider call failed",
					slog.String("provider", p.Name()),
					slog.String("operation", operation),
					slog.String("error", err.Error()))
				notes = append(notes, p.Name()+": "+err.Error())
				continue
			}
		}

		results, err := callWithTimeout(ctx, a.config.CallTimeout, p, op)
		if err != nil {
			note, ok := failureNote(p.Name(), err)
			if !ok {
				return nil, err
			}
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}

			logger.Warn("provider call failed",
				slog.String("provider", p.Name()),
				slog.String("operation", operation),
				slog.String("error", err.Error()))
			notes = append(notes, note)
			continue
		}

		if len(results) > 0 || !retryOnEmpty {
			logger.Debug("provider answered",
				slog.String("provider", p.Name()),
				slog.String("operation", operation),
				slog.Int("results", len(results)))
			return &Outcome[T]{Results: nonNil(results), Provider: p.Name(), Notes: notes}, nil
		}

		logger.Debug("provider returned no results, trying next",
			slog.String("provider", p.Name()),
			slog.String("operation", operation))
		candidate = &Outcome[T]{Results: nonNil(results), Provider: p.Name()}
	}

	if candidate != nil {
		candidate.Notes = notes
		return candidate, nil
	}

	if len(notes) > 0 {
		return nil, &AllProvidersFailedError{Notes: notes}
	}

	return &Outcome[T]{Results: []T{}}, nil
}

func callWithTimeout[T any](ctx context.Context, timeout time.Duration, p providers.Provider, op Operation[T]) ([]T, error) {
	if timeout <= 0 {
		return op(ctx, p)
	}

	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return op(callCtx, p)
}

// failureNote renders err as "<provider>: <cause>" when it is one of the two
// failure kinds a provider may report.
func failureNote(name string, err error) (string, bool) {
	var te *providers.TransportError
	if errors.As(err, &te) {
		return name + ": network error " + te.Err.Error(), true
	}
	var pe *providers.ProviderError
	if errors.As(err, &pe) {
		return name + ": " + pe.Err.Error(), true
	}
	return "", false
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
