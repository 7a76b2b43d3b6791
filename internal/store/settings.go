package store

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Bounds for the per-venue default result count.
const (
	MinDefaultCount = 5
	MaxDefaultCount = 20
)

// SettingNames lists the names /set accepts, in display order.
var SettingNames = []string{"count", "timezone", "announce"}

// ApplySetting validates one name/value pair and applies it to the
// settings struct. Unknown names and invalid values return an error
// that enumerates or explains the accepted input.
func ApplySetting(s *VenueSettings, name, value string) error {
	switch strings.ToLower(name) {
	case "count":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("count must be a number, got %q", value)
		}
		if n < MinDefaultCount || n > MaxDefaultCount {
			return fmt.Errorf("count must be between %d and %d", MinDefaultCount, MaxDefaultCount)
		}
		s.DefaultCount = n
	case "timezone":
		if _, err := time.LoadLocation(value); err != nil {
			return fmt.Errorf("unknown timezone %q, use an IANA name like America/Los_Angeles", value)
		}
		s.Timezone = value
	case "announce":
		s.AnnounceTarget.String = strings.TrimSpace(value)
		s.AnnounceTarget.Valid = s.AnnounceTarget.String != ""
	default:
		return fmt.Errorf("unknown setting %q, valid settings: %s", name, strings.Join(SettingNames, ", "))
	}
	return nil
}

// Location resolves the venue's configured timezone, falling back to
// UTC if the stored name has gone stale.
func (s VenueSettings) Location() *time.Location {
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
