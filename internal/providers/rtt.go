package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dharmasatrya/trainsearch/internal/filter"
	"github.com/dharmasatrya/trainsearch/internal/models"
	"github.com/dharmasatrya/trainsearch/internal/timezone"
	"github.com/dharmasatrya/trainsearch/pkg/railtime"
)

const (
	RTTName           = "RealTimeTrains"
	DefaultRTTBaseURL = "https://api.rtt.io"
)

type RTTConfig struct {
	Username   string
	Password   string
	BaseURL    string
	Timeout    time.Duration
	Retry      RetryConfig
	HTTPClient HTTPClient
}

type rttSearchResponse struct {
	Locations []rttLocation `json:"locations"`
	Services  []rttService  `json:"services"`
}

type rttLocation struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	CRS         string `json:"crs"`
}

type rttService struct {
	ServiceUID     string            `json:"serviceUid"`
	RunDate        string            `json:"runDate"`
	AtocCode       string            `json:"atocCode"`
	AtocName       string            `json:"atocName"`
	LocationDetail rttLocationDetail `json:"locationDetail"`
}

type rttLocationDetail struct {
	GbttBookedDeparture     string         `json:"gbttBookedDeparture"`
	RealtimeDeparture       string         `json:"realtimeDeparture"`
	RealtimeDepartureActual bool           `json:"realtimeDepartureActual"`
	Platform                string         `json:"platform"`
	DisplayAs               string         `json:"displayAs"`
	IsCancelled             bool           `json:"isCancelled"`
	Destination             []rttPair      `json:"destination"`
	CallPoints              []rttCallPoint `json:"callPoints"`
}

type rttPair struct {
	Description string `json:"description"`
	CRS         string `json:"crs"`
	PublicTime  string `json:"publicTime"`
}

type rttCallPoint struct {
	Location          rttPair `json:"location"`
	GbttBookedArrival string  `json:"gbttBookedArrival"`
	GbttBookedPass    string  `json:"gbttBookedPass"`
	RealtimeArrival   string  `json:"realtimeArrival"`
	RealtimePass      string  `json:"realtimePass"`
}

// RTTProvider talks to the RealTimeTrains JSON API.
type RTTProvider struct {
	baseURL  string
	username string
	password string
	req      *requester
}

func NewRTTProvider(cfg RTTConfig) (*RTTProvider, error) {
	if cfg.Username == "" || cfg.Password == "" {
		return nil, fmt.Errorf("realtimetrains: username and password are required")
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultRTTBaseURL
	}

	return &RTTProvider{
		baseURL:  strings.TrimRight(baseURL, "/"),
		username: cfg.Username,
		password: cfg.Password,
		req:      newRequester(RTTName, cfg.HTTPClient, cfg.Timeout, cfg.Retry),
	}, nil
}

func (p *RTTProvider) Name() string {
	return RTTName
}

func (p *RTTProvider) SearchStation(ctx context.Context, query string, limit int) ([]models.StationSummary, error) {
	var resp rttSearchResponse
	if err := p.get(ctx, "/api/v1/json/search/"+url.PathEscape(query), "searching for stations", &resp); err != nil {
		return nil, err
	}

	matches := make([]models.StationSummary, 0, len(resp.Locations))
	for _, loc := range resp.Locations {
		name := loc.Name
		if name == "" {
			name = loc.Description
		}
		if loc.CRS == "" || name == "" {
			continue
		}
		matches = append(matches, models.StationSummary{Name: name, Code: loc.CRS})
		if limit > 0 && len(matches) >= limit {
			break
		}
	}
	return matches, nil
}

func (p *RTTProvider) GetDepartures(ctx context.Context, q models.DepartureQuery) ([]models.Departure, error) {
	var resp rttSearchResponse
	if err := p.get(ctx, departuresPath(q), "requesting departures", &resp); err != nil {
		return nil, err
	}

	departures := make([]models.Departure, 0, len(resp.Services))
	for _, s := range resp.Services {
		departures = append(departures, p.normalize(s))
	}

	return filter.Apply(departures, filter.Criteria{After: q.When, Limit: q.Limit}), nil
}

func departuresPath(q models.DepartureQuery) string {
	origin := strings.ToUpper(q.OriginCode)
	path := "/api/v1/json/search/" + url.PathEscape(origin)
	if q.DestinationCode != "" {
		path += "/to/" + url.PathEscape(strings.ToUpper(q.DestinationCode))
	} else {
		path = "/api/v1/json/dep/" + url.PathEscape(origin)
	}

	if q.When != nil {
		when := q.When.In(timezone.London)
		path += when.Format("/2006/01/02/1504")
	}
	return path
}

func (p *RTTProvider) get(ctx context.Context, path, action string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+path, nil)
	if err != nil {
		return NewProviderError(RTTName, fmt.Errorf("building request: %w", err))
	}
	req.SetBasicAuth(p.username, p.password)
	return p.req.getJSON(ctx, req, action, out)
}

func (p *RTTProvider) normalize(s rttService) models.Departure {
	detail := s.LocationDetail

	expected := detail.RealtimeDeparture
	if expected == "" {
		expected = detail.GbttBookedDeparture
	}

	destName, destCode := "Unknown", ""
	if len(detail.Destination) > 0 {
		destName = detail.Destination[0].Description
		destCode = detail.Destination[0].CRS
		if destName == "" {
			destName = "Unknown"
		}
	}

	callingPoints := make([]models.CallingPoint, 0, len(detail.CallPoints))
	for _, cp := range detail.CallPoints {
		callingPoints = append(callingPoints, models.CallingPoint{
			StationName:         cp.Location.Description,
			StationCode:         cp.Location.CRS,
			AimedArrivalTime:    clockPtr(firstNonEmpty(cp.GbttBookedArrival, cp.GbttBookedPass)),
			ExpectedArrivalTime: clockPtr(firstNonEmpty(cp.RealtimeArrival, cp.RealtimePass)),
		})
	}

	return models.Departure{
		ServiceID:             s.ServiceUID,
		DestinationName:       destName,
		DestinationCode:       destCode,
		Platform:              models.StringPtr(detail.Platform),
		AimedDepartureTime:    clockPtr(detail.GbttBookedDeparture),
		ExpectedDepartureTime: clockPtr(expected),
		Status:                rttStatus(detail),
		CallingPoints:         callingPoints,
		OperatorName:          models.StringPtr(firstNonEmpty(s.AtocName, s.AtocCode)),
	}
}

func rttStatus(d rttLocationDetail) string {
	switch {
	case d.IsCancelled || strings.HasPrefix(strings.ToUpper(d.DisplayAs), "CANCELLED"):
		return "CANCELLED"
	case d.DisplayAs != "":
		return strings.ToUpper(d.DisplayAs)
	case d.RealtimeDepartureActual && d.RealtimeDeparture != "":
		return "DEPARTED " + railtime.NormaliseClock(d.RealtimeDeparture)
	case d.RealtimeDeparture != "":
		return "EXPECTED " + railtime.NormaliseClock(d.RealtimeDeparture)
	default:
		return "UNKNOWN"
	}
}

func clockPtr(s string) *string {
	return models.StringPtr(railtime.NormaliseClock(s))
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
