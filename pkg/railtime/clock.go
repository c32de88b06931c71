package railtime

import (
	"fmt"
	"strconv"
	"strings"
)

// NormaliseClock turns "1432", "14:32" or "1432H" into "14:32". Strings
// that are not clock times (e.g. "On time", "Delayed") are returned as-is.
func NormaliseClock(s string) string {
	s = strings.TrimSpace(s)
	digits := strings.TrimSuffix(strings.ReplaceAll(s, ":", ""), "H")
	if len(digits) != 4 {
		return s
	}
	if _, err := ClockMinutes(digits); err != nil {
		return s
	}
	return digits[:2] + ":" + digits[2:]
}

// ClockMinutes returns the minutes since midnight for "HH:MM" or "HHMM".
func ClockMinutes(s string) (int, error) {
	s = strings.TrimSpace(s)
	var hh, mm string
	if i := strings.IndexByte(s, ':'); i >= 0 {
		hh, mm = s[:i], s[i+1:]
	} else if len(s) == 4 {
		hh, mm = s[:2], s[2:]
	} else {
		return 0, fmt.Errorf("invalid clock time %q", s)
	}

	if len(hh) == 0 || len(hh) > 2 || len(mm) != 2 {
		return 0, fmt.Errorf("invalid clock time %q", s)
	}
	h, err := strconv.Atoi(hh)
	if err != nil || h < 0 || h > 23 {
		return 0, fmt.Errorf("invalid hour in %q", s)
	}
	m, err := strconv.Atoi(mm)
	if err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("invalid minute in %q", s)
	}
	return h*60 + m, nil
}
