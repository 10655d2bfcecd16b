package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// NewDatabase opens a pgx connection pool against the configured PostgreSQL
// instance and verifies it with a ping.
func NewDatabase(host, port, user, password, name string) (*pgxpool.Pool, error) {
	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s", user, password, host, port, name)

	pool, err := pgxpool.New(context.Background(), dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err = pool.Ping(context.Background()); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return pool, nil
}

// EnsureSchema creates the registration and notification tables if they do
// not exist yet. The composite primary key on notifications is the
// deduplication invariant: at most one record per (token, quake) pair.
func EnsureSchema(ctx context.Context, db Database) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS registrations (
			fcm_token  TEXT PRIMARY KEY,
			latitude   DOUBLE PRECISION NOT NULL,
			longitude  DOUBLE PRECISION NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);`,
		`CREATE TABLE IF NOT EXISTS notifications (
			fcm_token   TEXT NOT NULL,
			quake_id    TEXT NOT NULL,
			notified_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			PRIMARY KEY (fcm_token, quake_id)
		);`,
	}

	for _, stmt := range statements {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to ensure schema: %w", err)
		}
	}

	return nil
}
