package repository

import (
	"context"
	"fmt"

	"github.com/fortuna/veto/internal/store"
)

// ReminderRepository handles reminder data access
type ReminderRepository struct {
	db *store.Database
}

// NewReminderRepository creates a new reminder repository
func NewReminderRepository(db *store.Database) *ReminderRepository {
	return &ReminderRepository{db: db}
}

// Add inserts a reminder and fills in its assigned ID.
func (r *ReminderRepository) Add(ctx context.Context, rem *store.ReminderRequest) error {
	query := `
		INSERT INTO reminders (requester_id, target_id, match_url, match_time, team_a, team_b)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`

	err := r.db.DB().QueryRowContext(ctx, query,
		rem.RequesterID, rem.TargetID, rem.MatchURL, rem.MatchTime.UTC(), rem.TeamA, rem.TeamB,
	).Scan(&rem.ID, &rem.CreatedAt)
	if err != nil {
		return fmt.Errorf("inserting reminder: %w", err)
	}

	return nil
}

// Pending returns all undelivered reminders, soonest match first.
func (r *ReminderRepository) Pending(ctx context.Context) ([]*store.ReminderRequest, error) {
	query := `
		SELECT id, requester_id, target_id, match_url, match_time,
			team_a, team_b, delivered, created_at
		FROM reminders
		WHERE delivered = FALSE
		ORDER BY match_time ASC
	`

	rows, err := r.db.DB().QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying pending reminders: %w", err)
	}
	defer rows.Close()

	var reminders []*store.ReminderRequest
	for rows.Next() {
		rem := &store.ReminderRequest{}
		if err := rows.Scan(
			&rem.ID, &rem.RequesterID, &rem.TargetID, &rem.MatchURL, &rem.MatchTime,
			&rem.TeamA, &rem.TeamB, &rem.Delivered, &rem.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning reminder: %w", err)
		}
		reminders = append(reminders, rem)
	}

	return reminders, rows.Err()
}

// ListByRequester returns all reminders a user has created, newest
// first, delivered ones included.
func (r *ReminderRepository) ListByRequester(ctx context.Context, requesterID int64) ([]*store.ReminderRequest, error) {
	query := `
		SELECT id, requester_id, target_id, match_url, match_time,
			team_a, team_b, delivered, created_at
		FROM reminders
		WHERE requester_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.DB().QueryContext(ctx, query, requesterID)
	if err != nil {
		return nil, fmt.Errorf("querying reminders for %d: %w", requesterID, err)
	}
	defer rows.Close()

	var reminders []*store.ReminderRequest
	for rows.Next() {
		rem := &store.ReminderRequest{}
		if err := rows.Scan(
			&rem.ID, &rem.RequesterID, &rem.TargetID, &rem.MatchURL, &rem.MatchTime,
			&rem.TeamA, &rem.TeamB, &rem.Delivered, &rem.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning reminder: %w", err)
		}
		reminders = append(reminders, rem)
	}

	return reminders, rows.Err()
}

// MarkDelivered flips a reminder to delivered. Safe to call twice for
// the same ID; a reminder never moves back to pending.
func (r *ReminderRepository) MarkDelivered(ctx context.Context, id int64) error {
	query := `UPDATE reminders SET delivered = TRUE WHERE id = $1`

	if _, err := r.db.DB().ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("marking reminder %d delivered: %w", id, err)
	}

	return nil
}
