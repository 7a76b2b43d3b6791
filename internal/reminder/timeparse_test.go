package reminder

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var parseNow = time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)

func TestParseMatchTimeRelative(t *testing.T) {
	got, err := ParseMatchTime("in 2h", parseNow)
	require.NoError(t, err)
	assert.Equal(t, parseNow.Add(2*time.Hour), got)

	got, err = ParseMatchTime("in 45m", parseNow)
	require.NoError(t, err)
	assert.Equal(t, parseNow.Add(45*time.Minute), got)

	got, err = ParseMatchTime("IN 1D", parseNow)
	require.NoError(t, err)
	assert.Equal(t, parseNow.Add(24*time.Hour), got)
}

func TestParseMatchTimeAbsoluteAssumesUTC(t *testing.T) {
	got, err := ParseMatchTime("2026-08-28 19:00", parseNow)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 8, 28, 19, 0, 0, 0, time.UTC), got)

	got, err = ParseMatchTime("2026-08-28T19:00", parseNow)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 8, 28, 19, 0, 0, 0, time.UTC), got)
}

func TestParseMatchTimeTimeOnlyBorrowsDate(t *testing.T) {
	got, err := ParseMatchTime("19:30", parseNow)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 8, 28, 19, 30, 0, 0, time.UTC), got)

	got, err = ParseMatchTime("7:30 PM", parseNow)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 8, 28, 19, 30, 0, 0, time.UTC), got)
}

func TestParseMatchTimeMonthDayBorrowsYear(t *testing.T) {
	got, err := ParseMatchTime("Sep 2 18:00", parseNow)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 9, 2, 18, 0, 0, 0, time.UTC), got)
}

func TestParseMatchTimeRejectsGarbage(t *testing.T) {
	_, err := ParseMatchTime("whenever", parseNow)
	assert.Error(t, err)

	_, err = ParseMatchTime("", parseNow)
	assert.Error(t, err)

	_, err = ParseMatchTime("in 2 weeks", parseNow)
	assert.Error(t, err)
}

func TestRelativeQualifier(t *testing.T) {
	assert.Equal(t, "in 30 minutes", RelativeQualifier(parseNow.Add(30*time.Minute), parseNow))
	assert.Equal(t, "in 5 hours", RelativeQualifier(parseNow.Add(5*time.Hour+10*time.Minute), parseNow))
	assert.Equal(t, "in 2 days", RelativeQualifier(parseNow.Add(49*time.Hour), parseNow))
	assert.Equal(t, "already started", RelativeQualifier(parseNow.Add(-time.Minute), parseNow))
	assert.Equal(t, "already started", RelativeQualifier(parseNow, parseNow))
}

func TestFormatInZone(t *testing.T) {
	ts := time.Date(2026, 8, 28, 19, 0, 0, 0, time.UTC)
	assert.Equal(t, "Fri Aug 28, 19:00 UTC", FormatInZone(ts, time.UTC))
	assert.Equal(t, "Fri Aug 28, 19:00 UTC", FormatInZone(ts, nil))

	la, err := time.LoadLocation("America/Los_Angeles")
	require.NoError(t, err)
	assert.Equal(t, "Fri Aug 28, 12:00 PDT", FormatInZone(ts, la))
}
