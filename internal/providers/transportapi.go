package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/dharmasatrya/trainsearch/internal/filter"
	"github.com/dharmasatrya/trainsearch/internal/models"
	"github.com/dharmasatrya/trainsearch/internal/timezone"
)

const (
	TransportAPIName           = "TransportAPI"
	DefaultTransportAPIBaseURL = "https://transportapi.com/v3"
)

var errMissingDepartures = errors.New("unexpected TransportAPI payload structure; 'departures.all' missing")

type TransportAPIConfig struct {
	AppID      string
	AppKey     string
	BaseURL    string
	Timeout    time.Duration
	Retry      RetryConfig
	HTTPClient HTTPClient
}

type tapiPlacesResponse struct {
	Member []tapiPlace `json:"member"`
}

type tapiPlace struct {
	Type        string `json:"type"`
	Name        string `json:"name"`
	StationCode string `json:"station_code"`
}

type tapiLiveResponse struct {
	Departures *struct {
		All *[]tapiDeparture `json:"all"`
	} `json:"departures"`
}

type tapiDeparture struct {
	Service               string          `json:"service"`
	TrainUID              string          `json:"train_uid"`
	DestinationName       json.RawMessage `json:"destination_name"`
	Platform              *string         `json:"platform"`
	AimedDepartureTime    *string         `json:"aimed_departure_time"`
	ExpectedDepartureTime *string         `json:"expected_departure_time"`
	Status                string          `json:"status"`
	OperatorName          *string         `json:"operator_name"`
	CallingAt             []tapiCallPoint `json:"calling_at"`
	StationDetail         *struct {
		CallingAt []tapiCallPoint `json:"calling_at"`
	} `json:"station_detail"`
}

type tapiCallPoint struct {
	StationName         string  `json:"station_name"`
	StationCode         string  `json:"station_code"`
	AimedArrivalTime    *string `json:"aimed_arrival_time"`
	ExpectedArrivalTime *string `json:"expected_arrival_time"`
}

// TransportAPIProvider talks to the TransportAPI v3 live departures and
// places endpoints.
type TransportAPIProvider struct {
	baseURL string
	appID   string
	appKey  string
	req     *requester
}

func NewTransportAPIProvider(cfg TransportAPIConfig) (*TransportAPIProvider, error) {
	if cfg.AppID == "" || cfg.AppKey == "" {
		return nil, fmt.Errorf("transportapi: app id and app key are required")
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultTransportAPIBaseURL
	}

	return &TransportAPIProvider{
		baseURL: strings.TrimRight(baseURL, "/"),
		appID:   cfg.AppID,
		appKey:  cfg.AppKey,
		req:     newRequester(TransportAPIName, cfg.HTTPClient, cfg.Timeout, cfg.Retry),
	}, nil
}

func (p *TransportAPIProvider) Name() string {
	return TransportAPIName
}

func (p *TransportAPIProvider) SearchStation(ctx context.Context, query string, limit int) ([]models.StationSummary, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("type", "train_station")
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}

	var resp tapiPlacesResponse
	if err := p.get(ctx, "/uk/places.json", params, "searching for stations", &resp); err != nil {
		return nil, err
	}

	stations := make([]models.StationSummary, 0, len(resp.Member))
	for _, m := range resp.Member {
		if m.StationCode == "" {
			continue
		}
		stations = append(stations, models.StationSummary{Name: m.Name, Code: m.StationCode})
		if limit > 0 && len(stations) >= limit {
			break
		}
	}
	return stations, nil
}

func (p *TransportAPIProvider) GetDepartures(ctx context.Context, q models.DepartureQuery) ([]models.Departure, error) {
	params := url.Values{}
	params.Set("station_detail", "calling_at")
	if q.Limit > 0 {
		params.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.DestinationCode != "" {
		params.Set("calling_at", strings.ToUpper(q.DestinationCode))
	}
	if q.When != nil {
		when := q.When.In(timezone.London)
		params.Set("date", when.Format("2006-01-02"))
		params.Set("time", when.Format("15:04"))
	}

	path := "/uk/train/station/" + url.PathEscape(strings.ToUpper(q.OriginCode)) + "/live.json"

	var resp tapiLiveResponse
	if err := p.get(ctx, path, params, "requesting departures", &resp); err != nil {
		return nil, err
	}
	if resp.Departures == nil || resp.Departures.All == nil {
		return nil, NewProviderError(TransportAPIName, errMissingDepartures)
	}

	departures := make([]models.Departure, 0, len(*resp.Departures.All))
	for _, d := range *resp.Departures.All {
		departures = append(departures, normalizeTransportAPI(d))
	}

	return filter.Apply(departures, filter.FromQuery(q)), nil
}

func (p *TransportAPIProvider) get(ctx context.Context, path string, params url.Values, action string, out any) error {
	params.Set("app_id", p.appID)
	params.Set("app_key", p.appKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return NewProviderError(TransportAPIName, fmt.Errorf("building request: %w", err))
	}
	return p.req.getJSON(ctx, req, action, out)
}

func normalizeTransportAPI(d tapiDeparture) models.Departure {
	points := d.CallingAt
	if d.StationDetail != nil && len(d.StationDetail.CallingAt) > 0 {
		points = d.StationDetail.CallingAt
	}

	callingPoints := make([]models.CallingPoint, 0, len(points))
	for _, cp := range points {
		callingPoints = append(callingPoints, models.CallingPoint{
			StationName:         cp.StationName,
			StationCode:         cp.StationCode,
			AimedArrivalTime:    normalizeClockPtr(cp.AimedArrivalTime),
			ExpectedArrivalTime: normalizeClockPtr(cp.ExpectedArrivalTime),
		})
	}

	destName := destinationName(d.DestinationName)
	destCode := ""
	for _, cp := range callingPoints {
		if cp.StationName == destName {
			destCode = cp.StationCode
			break
		}
	}

	serviceID := d.Service
	if serviceID == "" {
		serviceID = d.TrainUID
	}

	return models.Departure{
		ServiceID:             serviceID,
		DestinationName:       destName,
		DestinationCode:       destCode,
		Platform:              nonEmpty(d.Platform),
		AimedDepartureTime:    normalizeClockPtr(d.AimedDepartureTime),
		ExpectedDepartureTime: normalizeClockPtr(d.ExpectedDepartureTime),
		Status:                d.Status,
		CallingPoints:         callingPoints,
		OperatorName:          nonEmpty(d.OperatorName),
	}
}

// destinationName accepts either a plain string or a list of names, taking
// the first.
func destinationName(raw json.RawMessage) string {
	if len(raw) == 0 {
		return "Unknown"
	}

	var name string
	if err := json.Unmarshal(raw, &name); err == nil && name != "" {
		return name
	}

	var names []string
	if err := json.Unmarshal(raw, &names); err == nil && len(names) > 0 && names[0] != "" {
		return names[0]
	}
	return "Unknown"
}

func normalizeClockPtr(s *string) *string {
	if s == nil {
		return nil
	}
	return clockPtr(*s)
}

func nonEmpty(s *string) *string {
	if s == nil {
		return nil
	}
	return models.StringPtr(*s)
}
