package models

type JourneyResponse struct {
	Reply        string         `json:"reply"`
	Request      JourneyRequest `json:"request"`
	Origin       StationSummary `json:"origin"`
	Destination  StationSummary `json:"destination"`
	Provider     string         `json:"provider,omitempty"`
	Notes        []string       `json:"notes,omitempty"`
	Departures   []Departure    `json:"departures"`
	SearchTimeMs int64          `json:"search_time_ms"`
}

type StationsResponse struct {
	Reply        string           `json:"reply"`
	Provider     string           `json:"provider,omitempty"`
	Notes        []string         `json:"notes,omitempty"`
	Stations     []StationSummary `json:"stations"`
	SearchTimeMs int64            `json:"search_time_ms"`
}

type ErrorResponse struct {
	Error   string   `json:"error"`
	Message string   `json:"message"`
	Notes   []string `json:"notes,omitempty"`
	Code    int      `json:"code"`
}
