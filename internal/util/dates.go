package util

import (
	"errors"
	"strings"
	"time"
)

// ParseDateRange parses optional start/end filter strings. Accepts RFC3339
// timestamps or YYYY-MM-DD; a date-only end is widened by one day so the whole
// end date is included by an exclusive comparison.
func ParseDateRange(startStr, endStr *string) (start time.Time, hasStart bool, endExclusive time.Time, hasEnd bool, err error) {
	parse := func(s string) (time.Time, bool, bool, error) {
		s = strings.TrimSpace(s)
		if s == "" {
			return time.Time{}, false, false, nil
		}
		if t, e := time.Parse(time.RFC3339, s); e == nil {
			return t, true, false, nil
		}
		if t, e := time.Parse("2006-01-02", s); e == nil {
			return t, true, true, nil
		}
		return time.Time{}, false, false, errors.New("invalid date format (use YYYY-MM-DD or RFC3339)")
	}

	var endDateOnly bool

	if startStr != nil {
		t, ok, _, e := parse(*startStr)
		if e != nil {
			return time.Time{}, false, time.Time{}, false, e
		}
		if ok {
			start = t
			hasStart = true
		}
	}

	if endStr != nil {
		t, ok, dateOnly, e := parse(*endStr)
		if e != nil {
			return time.Time{}, false, time.Time{}, false, e
		}
		if ok {
			endExclusive = t
			endDateOnly = dateOnly
			hasEnd = true
		}
	}

	if hasStart && hasEnd && endExclusive.Before(start) {
		start, endExclusive = endExclusive, start
	}
	if hasEnd && endDateOnly {
		endExclusive = endExclusive.AddDate(0, 0, 1)
	}

	return start, hasStart, endExclusive, hasEnd, nil
}
