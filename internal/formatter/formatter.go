// Package formatter renders stations and departures as the plain text sent
// back to the user.
package formatter

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/dharmasatrya/trainsearch/internal/models"
)

const (
	maxCallingPoints    = 6
	noServices          = "No matching services found."
	noCallingPointsText = "Calling points data unavailable."
	unknownTime         = "--:--"
	requestedTimeLayout = "15:04 on 02 Jan"
)

var railStationSuffix = regexp.MustCompile(`\bRail (?:Station|Stn)\b`)

// FormatDepartures renders a departure board. destinationName and
// requestedTime may be empty/nil.
func FormatDepartures(originName, destinationName string, departures []models.Departure, requestedTime *time.Time) string {
	header := formatHeader(originName, destinationName, requestedTime)
	if len(departures) == 0 {
		return header + "\n" + noServices
	}

	blocks := make([]string, 0, len(departures)+1)
	blocks = append(blocks, header)
	for i, d := range departures {
		destination := destinationName
		if destination == "" {
			destination = d.DestinationName
		}

		platform := "Platform TBC"
		if d.Platform != nil && *d.Platform != "" {
			platform = "Platform " + *d.Platform
		}

		operator := d.ServiceID
		if d.OperatorName != nil && *d.OperatorName != "" {
			operator = *d.OperatorName
		}

		blocks = append(blocks, strings.Join([]string{
			fmt.Sprintf("%d. %s ➜ %s", i+1, originName, destination),
			formatTiming(d),
			platform,
			"Operator: " + operator,
			formatCallingPoints(d.CallingPoints),
		}, "\n"))
	}

	return strings.Join(blocks, "\n\n")
}

func formatHeader(originName, destinationName string, requestedTime *time.Time) string {
	var base string
	if destinationName != "" {
		base = fmt.Sprintf("Next services from %s to %s", originName, destinationName)
	} else {
		base = "Next services departing " + originName
	}

	if requestedTime == nil {
		return base
	}
	return base + " after " + requestedTime.Format(requestedTimeLayout)
}

func formatTiming(d models.Departure) string {
	aimed := unknownTime
	if d.AimedDepartureTime != nil {
		aimed = *d.AimedDepartureTime
	}

	if d.ExpectedDepartureTime != nil && *d.ExpectedDepartureTime != "" && *d.ExpectedDepartureTime != aimed {
		return fmt.Sprintf("Due %s (est. %s, %s)", aimed, *d.ExpectedDepartureTime, d.Status)
	}
	return fmt.Sprintf("Due %s (%s)", aimed, d.Status)
}

func formatCallingPoints(points []models.CallingPoint) string {
	if len(points) == 0 {
		return noCallingPointsText
	}

	names := make([]string, 0, maxCallingPoints)
	for i, p := range points {
		if i == maxCallingPoints {
			break
		}
		names = append(names, p.StationName)
	}

	line := "Calling at: " + strings.Join(names, ", ")
	if len(points) > maxCallingPoints {
		line += "…"
	}
	return line
}

// TidyStationName drops "Rail Station" / "Rail Stn" from a station name.
func TidyStationName(name string) string {
	return strings.TrimSpace(railStationSuffix.ReplaceAllString(name, ""))
}

// FormatStations renders a station search reply. notes are fallback notes
// gathered before provider answered.
func FormatStations(stations []models.StationSummary, provider string, notes []string) string {
	header := "Station matches"
	if provider != "" {
		header += " (via " + provider + ")"
	}
	for _, n := range notes {
		header += "\nFallback note: " + n
	}

	lines := make([]string, 0, len(stations))
	for _, s := range stations {
		lines = append(lines, formatStation(s))
	}
	return header + ":\n" + strings.Join(lines, "\n")
}

// FormatSuggestions lists the runner-up candidates (second and third) for
// origin and destination. It returns "" when there are none.
func FormatSuggestions(origin, destination []models.StationSummary) string {
	body := formatCandidates("Origin suggestions", origin) + formatCandidates("Destination suggestions", destination)
	if strings.TrimSpace(body) == "" {
		return ""
	}
	return "\n\n" + body
}

func formatCandidates(label string, candidates []models.StationSummary) string {
	if len(candidates) <= 1 {
		return ""
	}

	end := len(candidates)
	if end > 3 {
		end = 3
	}

	var b strings.Builder
	b.WriteString(label + ":\n")
	for _, s := range candidates[1:end] {
		b.WriteString("- " + formatStation(s) + "\n")
	}
	return b.String()
}

func formatStation(s models.StationSummary) string {
	return s.Name + " — " + s.Code
}
