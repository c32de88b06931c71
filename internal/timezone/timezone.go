package timezone

import (
	"time"
)

// London is the zone every UK rail timetable is published in. It falls back
// to a fixed GMT zone when the host has no tzdata.
var London *time.Location

func init() {
	London = LoadLocation("Europe/London")
}

func LoadLocation(name string) *time.Location {
	if name == "" {
		name = "Europe/London"
	}
	if loc, err := time.LoadLocation(name); err == nil {
		return loc
	}
	return time.FixedZone("GMT", 0)
}

// TodayAt returns now's calendar date at hour:minute in now's location.
func TodayAt(now time.Time, hour, minute int) time.Time {
	y, m, d := now.Date()
	return time.Date(y, m, d, hour, minute, 0, 0, now.Location())
}

// ClockAfter places a bare clock time on the timeline relative to ref: on
// ref's date, rolled forward a day when it is more than 12 hours behind ref
// (a service shortly after midnight for an evening request).
func ClockAfter(ref time.Time, minutes int) time.Time {
	t := TodayAt(ref, minutes/60, minutes%60)
	if ref.Sub(t) > 12*time.Hour {
		t = t.AddDate(0, 0, 1)
	}
	return t
}
