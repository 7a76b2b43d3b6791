package store

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
)

// Database wraps the PostgreSQL connection holding reminders and venue
// settings. Match results themselves never touch the database; they
// live in the in-memory results cache only.
type Database struct {
	conn *sql.DB
	dsn  string
}

// NewDatabase opens and verifies a connection.
func NewDatabase(dsn string) (*Database, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Configure connection pool
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)
	db.SetConnMaxIdleTime(10 * time.Minute)

	// Test connection
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Database{
		conn: db,
		dsn:  dsn,
	}, nil
}

// Close closes the database connection
func (db *Database) Close() error {
	if db.conn != nil {
		return db.conn.Close()
	}
	return nil
}

// DB returns the underlying *sql.DB for queries
func (db *Database) DB() *sql.DB {
	return db.conn
}

// migration pairs a version tag with its DDL. Migrations run in order
// inside transactions and are recorded in schema_migrations, so reruns
// are no-ops.
type migration struct {
	version string
	ddl     string
}

var migrations = []migration{
	{
		version: "001_create_reminders",
		ddl: `
			CREATE TABLE IF NOT EXISTS reminders (
				id           BIGSERIAL PRIMARY KEY,
				requester_id BIGINT NOT NULL,
				target_id    BIGINT NOT NULL,
				match_url    TEXT NOT NULL,
				match_time   TIMESTAMPTZ NOT NULL,
				team_a       TEXT NOT NULL,
				team_b       TEXT NOT NULL,
				delivered    BOOLEAN NOT NULL DEFAULT FALSE,
				created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
			)
		`,
	},
	{
		version: "002_index_reminders_pending",
		ddl: `
			CREATE INDEX IF NOT EXISTS idx_reminders_pending
				ON reminders (match_time)
				WHERE delivered = FALSE
		`,
	},
	{
		version: "003_create_venue_settings",
		ddl: `
			CREATE TABLE IF NOT EXISTS venue_settings (
				venue_id        BIGINT PRIMARY KEY,
				default_count   INT NOT NULL DEFAULT 5,
				timezone        TEXT NOT NULL DEFAULT 'UTC',
				announce_target TEXT,
				updated_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
			)
		`,
	},
}

// RunMigrations applies all pending migrations in order.
func (db *Database) RunMigrations() error {
	log.Println("Running database migrations...")

	if err := db.createMigrationsTable(); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	for _, m := range migrations {
		if err := db.runMigration(m); err != nil {
			return fmt.Errorf("failed to run migration %s: %w", m.version, err)
		}
	}

	log.Println("✓ All migrations completed successfully")

	return nil
}

// createMigrationsTable creates a table to track which migrations have been run
func (db *Database) createMigrationsTable() error {
	query := `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version VARCHAR(255) PRIMARY KEY,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`
	_, err := db.conn.Exec(query)
	return err
}

// runMigration runs a single migration if it hasn't been applied yet
func (db *Database) runMigration(m migration) error {
	var exists bool
	err := db.conn.QueryRow("SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE version = $1)", m.version).Scan(&exists)
	if err != nil {
		return err
	}

	if exists {
		log.Printf("  ⊘ Skipping %s (already applied)", m.version)
		return nil
	}

	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(m.ddl); err != nil {
		return fmt.Errorf("failed to execute migration: %w", err)
	}

	if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES ($1)", m.version); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	log.Printf("  ✓ Applied %s", m.version)
	return nil
}

// HealthCheck performs a health check on the database
func (db *Database) HealthCheck() error {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	return db.conn.PingContext(ctx)
}
