// Package providertest provides a scriptable providers.Provider for tests.
package providertest

import (
	"context"
	"errors"
	"sync"

	"github.com/dharmasatrya/trainsearch/internal/models"
	"github.com/dharmasatrya/trainsearch/internal/providers"
)

// Fake answers from canned data. StationsByQuery takes precedence over
// Stations when the query is present.
type Fake struct {
	ProviderName    string
	Stations        []models.StationSummary
	StationsByQuery map[string][]models.StationSummary
	Departures      []models.Departure
	StationErr      error
	DepartureErr    error

	mu             sync.Mutex
	StationCalls   []string
	DepartureCalls []models.DepartureQuery
}

var _ providers.Provider = (*Fake)(nil)

func (f *Fake) Name() string {
	return f.ProviderName
}

func (f *Fake) SearchStation(ctx context.Context, query string, limit int) ([]models.StationSummary, error) {
	f.mu.Lock()
	f.StationCalls = append(f.StationCalls, query)
	f.mu.Unlock()

	if f.StationErr != nil {
		return nil, f.StationErr
	}

	stations := f.Stations
	if byQuery, ok := f.StationsByQuery[query]; ok {
		stations = byQuery
	}
	if limit > 0 && len(stations) > limit {
		stations = stations[:limit]
	}
	return stations, nil
}

func (f *Fake) GetDepartures(ctx context.Context, q models.DepartureQuery) ([]models.Departure, error) {
	f.mu.Lock()
	f.DepartureCalls = append(f.DepartureCalls, q)
	f.mu.Unlock()

	if f.DepartureErr != nil {
		return nil, f.DepartureErr
	}

	deps := f.Departures
	if q.Limit > 0 && len(deps) > q.Limit {
		deps = deps[:q.Limit]
	}
	return deps, nil
}

// Calls is the total number of capability calls made.
func (f *Fake) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.StationCalls) + len(f.DepartureCalls)
}

// Rejected returns a provider error as the named source would report it.
func Rejected(name, cause string) error {
	return providers.NewProviderError(name, errors.New(cause))
}

// Unreachable returns a transport error as the named source would report it.
func Unreachable(name, cause string) error {
	return providers.NewTransportError(name, errors.New(cause))
}
