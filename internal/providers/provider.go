package providers

import (
	"context"

	"github.com/dharmasatrya/trainsearch/internal/models"
)

// Provider is one rail-data source. Implementations fail only with
// *ProviderError or *TransportError; the aggregator relies on that.
type Provider interface {
	Name() string
	// SearchStation returns at most limit stations in the source's own
	// relevance order.
	SearchStation(ctx context.Context, query string, limit int) ([]models.StationSummary, error)
	// GetDepartures returns at most q.Limit services leaving q.OriginCode at or
	// after q.When, calling at q.DestinationCode when one is given.
	GetDepartures(ctx context.Context, q models.DepartureQuery) ([]models.Departure, error)
}

// ProviderError means the source answered but the answer was rejected or
// could not be read.
type ProviderError struct {
	Provider string
	Err      error
}

func (e *ProviderError) Error() string {
	return e.Provider + ": " + e.Err.Error()
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

func NewProviderError(provider string, err error) *ProviderError {
	return &ProviderError{
		Provider: provider,
		Err:      err,
	}
}

// TransportError means the source could not be reached.
type TransportError struct {
	Provider string
	Err      error
}

func (e *TransportError) Error() string {
	return e.Provider + ": network error " + e.Err.Error()
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

func NewTransportError(provider string, err error) *TransportError {
	return &TransportError{
		Provider: provider,
		Err:      err,
	}
}
