package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplySettingCount(t *testing.T) {
	s := DefaultVenueSettings(1)

	require.NoError(t, ApplySetting(&s, "count", "10"))
	assert.Equal(t, 10, s.DefaultCount)

	require.NoError(t, ApplySetting(&s, "COUNT", "20"))
	assert.Equal(t, 20, s.DefaultCount)

	err := ApplySetting(&s, "count", "4")
	assert.ErrorContains(t, err, "between 5 and 20")

	err = ApplySetting(&s, "count", "21")
	assert.ErrorContains(t, err, "between 5 and 20")

	err = ApplySetting(&s, "count", "many")
	assert.ErrorContains(t, err, "must be a number")

	// Failed updates leave the previous value intact.
	assert.Equal(t, 20, s.DefaultCount)
}

func TestApplySettingTimezone(t *testing.T) {
	s := DefaultVenueSettings(1)

	require.NoError(t, ApplySetting(&s, "timezone", "America/Los_Angeles"))
	assert.Equal(t, "America/Los_Angeles", s.Timezone)

	err := ApplySetting(&s, "timezone", "Mars/Olympus_Mons")
	assert.ErrorContains(t, err, "unknown timezone")
	assert.Equal(t, "America/Los_Angeles", s.Timezone)
}

func TestApplySettingAnnounce(t *testing.T) {
	s := DefaultVenueSettings(1)
	assert.False(t, s.AnnounceTarget.Valid)

	require.NoError(t, ApplySetting(&s, "announce", "-100123456"))
	assert.True(t, s.AnnounceTarget.Valid)
	assert.Equal(t, "-100123456", s.AnnounceTarget.String)

	// An empty value clears the target.
	require.NoError(t, ApplySetting(&s, "announce", "  "))
	assert.False(t, s.AnnounceTarget.Valid)
}

func TestApplySettingUnknownName(t *testing.T) {
	s := DefaultVenueSettings(1)

	err := ApplySetting(&s, "volume", "11")
	require.Error(t, err)
	assert.ErrorContains(t, err, `unknown setting "volume"`)
	assert.ErrorContains(t, err, "count, timezone, announce")
}

func TestVenueSettingsLocation(t *testing.T) {
	s := DefaultVenueSettings(1)
	assert.Equal(t, time.UTC, s.Location())

	s.Timezone = "America/New_York"
	loc := s.Location()
	require.NotNil(t, loc)
	assert.Equal(t, "America/New_York", loc.String())

	// A stale zone name falls back to UTC instead of breaking display.
	s.Timezone = "Atlantis/Sunken_City"
	assert.Equal(t, time.UTC, s.Location())
}

func TestDefaultVenueSettings(t *testing.T) {
	s := DefaultVenueSettings(42)
	assert.Equal(t, int64(42), s.VenueID)
	assert.Equal(t, 5, s.DefaultCount)
	assert.Equal(t, "UTC", s.Timezone)
}
