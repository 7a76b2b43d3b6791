package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fortuna/veto/internal/store"
)

// SettingsRepository handles venue settings data access
type SettingsRepository struct {
	db *store.Database
}

// NewSettingsRepository creates a new settings repository
func NewSettingsRepository(db *store.Database) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// Get returns a venue's settings, or the defaults if the venue has
// never configured anything.
func (r *SettingsRepository) Get(ctx context.Context, venueID int64) (store.VenueSettings, error) {
	query := `
		SELECT venue_id, default_count, timezone, announce_target, updated_at
		FROM venue_settings
		WHERE venue_id = $1
	`

	s := store.VenueSettings{}
	err := r.db.DB().QueryRowContext(ctx, query, venueID).Scan(
		&s.VenueID, &s.DefaultCount, &s.Timezone, &s.AnnounceTarget, &s.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return store.DefaultVenueSettings(venueID), nil
	}
	if err != nil {
		return s, fmt.Errorf("querying settings for venue %d: %w", venueID, err)
	}

	return s, nil
}

// Upsert writes a venue's settings, creating the row on first use.
func (r *SettingsRepository) Upsert(ctx context.Context, s store.VenueSettings) error {
	query := `
		INSERT INTO venue_settings (venue_id, default_count, timezone, announce_target, updated_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (venue_id) DO UPDATE SET
			default_count = EXCLUDED.default_count,
			timezone = EXCLUDED.timezone,
			announce_target = EXCLUDED.announce_target,
			updated_at = NOW()
	`

	if _, err := r.db.DB().ExecContext(ctx, query,
		s.VenueID, s.DefaultCount, s.Timezone, s.AnnounceTarget,
	); err != nil {
		return fmt.Errorf("upserting settings for venue %d: %w", s.VenueID, err)
	}

	return nil
}

// ListAnnounceTargets returns the announce targets of every venue that
// has one configured, for health alert fan-out.
func (r *SettingsRepository) ListAnnounceTargets(ctx context.Context) ([]string, error) {
	query := `
		SELECT announce_target
		FROM venue_settings
		WHERE announce_target IS NOT NULL AND announce_target <> ''
	`

	rows, err := r.db.DB().QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying announce targets: %w", err)
	}
	defer rows.Close()

	var targets []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("scanning announce target: %w", err)
		}
		targets = append(targets, t)
	}

	return targets, rows.Err()
}
