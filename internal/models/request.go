package models

import "time"

// JourneyRequest is built by the parser only; both queries are non-empty.
type JourneyRequest struct {
	OriginQuery      string     `json:"origin_query"`
	DestinationQuery string     `json:"destination_query"`
	RequestedTime    *time.Time `json:"requested_time,omitempty"`
}

// DepartureQuery carries the arguments of a departures lookup.
type DepartureQuery struct {
	OriginCode      string
	DestinationCode string
	Limit           int
	When            *time.Time
}

type JourneyCommand struct {
	Text string `json:"text"`
}

func (r *JourneyCommand) Validate() error {
	if r.Text == "" {
		return ErrMissingJourney
	}
	return nil
}

type StationsCommand struct {
	Query string `query:"q"`
	Limit int    `query:"limit"`
}

func (r *StationsCommand) Validate() error {
	if r.Query == "" {
		return ErrMissingStationQuery
	}
	if r.Limit <= 0 {
		r.Limit = 5
	}
	return nil
}

type ValidationError string

func (e ValidationError) Error() string {
	return string(e)
}

const (
	ErrMissingJourney      ValidationError = "Please provide origin and destination, e.g. Bristol Temple Meads to Bath Spa"
	ErrMissingStationQuery ValidationError = "Please supply a station name, e.g. York"
)

// NotFoundError is a ValidationError for lookups that resolved to nothing.
type NotFoundError string

func (e NotFoundError) Error() string {
	return string(e)
}

const (
	ErrOriginNotFound      NotFoundError = "Couldn't find a station matching the origin."
	ErrDestinationNotFound NotFoundError = "Couldn't find a station matching the destination."
	ErrNoStationsFound     NotFoundError = "No stations found for that search term."
)
