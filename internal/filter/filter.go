package filter

import (
	"strings"
	"time"

	"github.com/dharmasatrya/trainsearch/internal/models"
	"github.com/dharmasatrya/trainsearch/internal/timezone"
	"github.com/dharmasatrya/trainsearch/pkg/railtime"
)

// Criteria narrows a provider's departure board. Zero values disable a check.
type Criteria struct {
	CallingAt string
	After     *time.Time
	Limit     int
}

func FromQuery(q models.DepartureQuery) Criteria {
	return Criteria{
		CallingAt: q.DestinationCode,
		After:     q.When,
		Limit:     q.Limit,
	}
}

// Apply keeps departures matching c, in input order.
func Apply(departures []models.Departure, c Criteria) []models.Departure {
	result := make([]models.Departure, 0, len(departures))

	for _, d := range departures {
		if c.Limit > 0 && len(result) >= c.Limit {
			break
		}
		if !matches(d, c) {
			continue
		}
		result = append(result, d)
	}

	return result
}

func matches(d models.Departure, c Criteria) bool {
	if c.CallingAt != "" && !callsAt(d, c.CallingAt) {
		return false
	}

	if c.After != nil && d.AimedDepartureTime != nil {
		minutes, err := railtime.ClockMinutes(*d.AimedDepartureTime)
		if err == nil {
			// Provider clocks are UK local time.
			ref := c.After.In(timezone.London)
			departs := timezone.ClockAfter(ref, minutes)
			if departs.Before(ref) {
				return false
			}
		}
	}

	return true
}

// callsAt treats a service without calling point data as a match; the
// source already filtered on our request and we cannot prove otherwise.
func callsAt(d models.Departure, code string) bool {
	if strings.EqualFold(d.DestinationCode, code) {
		return true
	}
	if len(d.CallingPoints) == 0 {
		return true
	}
	for _, cp := range d.CallingPoints {
		if strings.EqualFold(cp.StationCode, code) {
			return true
		}
	}
	return false
}
