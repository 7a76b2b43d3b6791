package store

import (
	"database/sql"
	"time"
)

// ReminderRequest is one pre-match reminder subscription. MatchTime is
// always stored in UTC.
type ReminderRequest struct {
	ID          int64     `json:"id" db:"id"`
	RequesterID int64     `json:"requester_id" db:"requester_id"`
	TargetID    int64     `json:"target_id" db:"target_id"`
	MatchURL    string    `json:"match_url" db:"match_url"`
	MatchTime   time.Time `json:"match_time" db:"match_time"`
	TeamA       string    `json:"team_a" db:"team_a"`
	TeamB       string    `json:"team_b" db:"team_b"`
	Delivered   bool      `json:"delivered" db:"delivered"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// VenueSettings holds per-venue display preferences. AnnounceTarget is
// the optional chat that receives scrape-health alerts.
type VenueSettings struct {
	VenueID        int64          `json:"venue_id" db:"venue_id"`
	DefaultCount   int            `json:"default_count" db:"default_count"`
	Timezone       string         `json:"timezone" db:"timezone"`
	AnnounceTarget sql.NullString `json:"announce_target,omitempty" db:"announce_target"`
	UpdatedAt      time.Time      `json:"updated_at" db:"updated_at"`
}

// DefaultVenueSettings is what a venue gets before anyone runs /set.
func DefaultVenueSettings(venueID int64) VenueSettings {
	return VenueSettings{
		VenueID:      venueID,
		DefaultCount: 5,
		Timezone:     "UTC",
	}
}
