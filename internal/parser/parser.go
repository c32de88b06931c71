// Package parser turns free-text journey requests such as
// "Leeds to York at 09:15" into a models.JourneyRequest.
package parser

import (
	"regexp"
	"strings"
	"time"

	"github.com/dharmasatrya/trainsearch/internal/models"
	"github.com/dharmasatrya/trainsearch/internal/timezone"
	"github.com/dharmasatrya/trainsearch/pkg/railtime"
)

const usage = "origin to destination [at HH:MM]"

var (
	// Only a time at the very end of the text counts.
	trailingTime = regexp.MustCompile(`(?:\bat\s+)?(\d{1,2}:\d{2})$`)
	separator    = regexp.MustCompile(`\s+(?:to|->)\s+`)
	leadKeyword  = regexp.MustCompile(`(?i)^(?:from|to)(?:\s+|$)`)
)

// ParseError is a malformed journey text. Message is safe to show to the user.
type ParseError struct {
	Message string
}

func (e *ParseError) Error() string {
	return e.Message
}

// ParseJourneyQuery parses text relative to the current time in UK rail
// local time.
func ParseJourneyQuery(text string) (models.JourneyRequest, error) {
	return Parse(text, time.Now().In(timezone.London))
}

// Parse parses text; a trailing HH:MM is resolved to now's date in now's
// location.
func Parse(text string, now time.Time) (models.JourneyRequest, error) {
	text = strings.TrimSpace(text)

	var when *time.Time
	if loc := trailingTime.FindStringSubmatchIndex(text); loc != nil {
		clock := text[loc[2]:loc[3]]
		minutes, err := railtime.ClockMinutes(clock)
		if err != nil {
			return models.JourneyRequest{}, &ParseError{
				Message: "Couldn't understand the time " + clock + ". Use HH:MM, e.g. 09:15.",
			}
		}
		t := timezone.TodayAt(now, minutes/60, minutes%60)
		when = &t
		text = strings.TrimSpace(text[:loc[0]])
	}

	parts := splitOnce(text)
	if len(parts) != 2 {
		return models.JourneyRequest{}, &ParseError{
			Message: "Couldn't parse journey. Use '" + usage + "'.",
		}
	}

	origin := stripKeyword(parts[0])
	destination := stripKeyword(parts[1])
	if origin == "" || destination == "" {
		return models.JourneyRequest{}, &ParseError{
			Message: "Origin and destination are both required.",
		}
	}

	return models.JourneyRequest{
		OriginQuery:      origin,
		DestinationQuery: destination,
		RequestedTime:    when,
	}, nil
}

func splitOnce(text string) []string {
	loc := separator.FindStringIndex(text)
	if loc == nil {
		return []string{text}
	}
	return []string{text[:loc[0]], text[loc[1]:]}
}

func stripKeyword(s string) string {
	s = leadKeyword.ReplaceAllString(strings.TrimSpace(s), "")
	return strings.TrimSpace(s)
}
