// Package views derives dashboard statistics, chart series, activity feeds,
// filtered lists, and calendar grids from record snapshots. Every function is
// pure: inputs are snapshots plus an explicit clock value, outputs are display
// structures, and nothing here mutates or persists state.
package views

import (
	"strconv"
	"time"
)

// DateLayout is the calendar-day encoding used by meeting dates and task due
// dates.
const DateLayout = "2006-01-02"

// DateOf formats a point in time as its calendar day.
func DateOf(t time.Time) string {
	return t.Format(DateLayout)
}

// parseWhen resolves the two timestamp encodings the records carry: full
// RFC 3339 instants and bare calendar days. Unparseable values resolve to the
// zero time, which sorts before everything else.
func parseWhen(value string) time.Time {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t
	}
	if t, err := time.Parse(DateLayout, value); err == nil {
		return t
	}
	return time.Time{}
}

// RelativeTime renders a timestamp's age against now in the feed's coarse
// buckets.
func RelativeTime(value string, now time.Time) string {
	then := parseWhen(value)
	hours := int(now.Sub(then).Hours())
	switch {
	case hours < 1:
		return "just now"
	case hours < 24:
		return strconv.Itoa(hours) + " hours ago"
	case hours < 48:
		return "yesterday"
	default:
		return strconv.Itoa(hours/24) + " days ago"
	}
}
