package models

type StationSummary struct {
	Name string `json:"name"`
	Code string `json:"code"`
}

// CallingPoint is one stop on a service's route. Slices of calling points
// are kept in route order.
type CallingPoint struct {
	StationName         string  `json:"station_name"`
	StationCode         string  `json:"station_code"`
	AimedArrivalTime    *string `json:"aimed_arrival_time,omitempty"`
	ExpectedArrivalTime *string `json:"expected_arrival_time,omitempty"`
}

// Departure is a snapshot of one train service at query time.
type Departure struct {
	ServiceID             string         `json:"service_id"`
	DestinationName       string         `json:"destination_name"`
	DestinationCode       string         `json:"destination_code"`
	Platform              *string        `json:"platform,omitempty"`
	AimedDepartureTime    *string        `json:"aimed_departure_time,omitempty"`
	ExpectedDepartureTime *string        `json:"expected_departure_time,omitempty"`
	Status                string         `json:"status"`
	CallingPoints         []CallingPoint `json:"calling_points"`
	OperatorName          *string        `json:"operator_name,omitempty"`
}

// StringPtr returns nil for an empty string.
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
