package reminder

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var relativeRe = regexp.MustCompile(`^in\s+(\d+)\s*([mhd])$`)

// Absolute layouts accepted for match times, tried in order. None carry
// a zone suffix; a naive timestamp is assumed UTC.
var absoluteLayouts = []string{
	"2006-01-02 15:04",
	"2006-01-02T15:04",
	"Jan 2 15:04",
	"Jan 2, 3:04 PM",
	"3:04 PM",
	"15:04",
}

// ParseMatchTime turns user input into a UTC instant. Relative forms
// ("in 2h", "in 45m", "in 1d") offset from now; absolute forms without
// a timezone are assumed UTC. Layouts missing a date component borrow
// it from now.
func ParseMatchTime(input string, now time.Time) (time.Time, error) {
	trimmed := strings.TrimSpace(strings.ToLower(input))

	if m := relativeRe.FindStringSubmatch(trimmed); m != nil {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			return time.Time{}, fmt.Errorf("parsing offset %q: %w", m[1], err)
		}
		var unit time.Duration
		switch m[2] {
		case "m":
			unit = time.Minute
		case "h":
			unit = time.Hour
		case "d":
			unit = 24 * time.Hour
		}
		return now.Add(time.Duration(n) * unit).UTC(), nil
	}

	cleaned := strings.TrimSpace(input)
	ref := now.UTC()
	for _, layout := range absoluteLayouts {
		t, err := time.ParseInLocation(layout, cleaned, time.UTC)
		if err != nil {
			continue
		}
		hasDate := strings.Contains(layout, "2006") || strings.Contains(layout, "Jan")
		switch {
		case !hasDate:
			// Time-only layout: borrow today's date.
			t = time.Date(ref.Year(), ref.Month(), ref.Day(), t.Hour(), t.Minute(), 0, 0, time.UTC)
		case t.Year() == 0:
			// Month-day layout: borrow the current year.
			t = time.Date(ref.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), 0, 0, time.UTC)
		}
		return t, nil
	}

	return time.Time{}, fmt.Errorf("could not parse time %q, try \"in 2h\" or \"2026-08-28 19:00\"", input)
}

// FormatInZone renders an instant for display in the venue's timezone.
func FormatInZone(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format("Mon Jan 2, 15:04 MST")
}

// RelativeQualifier describes how far away a match is, in the largest
// round unit, or that it has already begun.
func RelativeQualifier(matchTime, now time.Time) string {
	delta := matchTime.Sub(now)
	switch {
	case delta <= 0:
		return "already started"
	case delta < time.Hour:
		return fmt.Sprintf("in %d minutes", int(delta.Minutes()))
	case delta < 24*time.Hour:
		return fmt.Sprintf("in %d hours", int(delta.Hours()))
	default:
		return fmt.Sprintf("in %d days", int(delta.Hours()/24))
	}
}
