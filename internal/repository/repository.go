package repository

import (
	"context"
	"log/slog"

	"github.com/UnknownOlympus/tremor/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Database is the subset of pgxpool.Pool the repository needs. It is narrow
// so pgxmock can stand in during tests.
type Database interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

type Repository struct {
	db  Database
	log *slog.Logger
}

// Interface covers the two persistent concerns of the alerting pipeline:
// the device registration store and the notification ledger. The composite
// (token, quake) uniqueness of the ledger is enforced by the database, which
// is the serialization point for deduplication.
type Interface interface {
	UpsertRegistration(ctx context.Context, reg models.Registration) error
	ListRegistrations(ctx context.Context) ([]models.Registration, error)
	WasNotified(ctx context.Context, token, quakeID string) (bool, error)
	MarkNotified(ctx context.Context, token, quakeID string) error
}

// NewRepository creates a new instance of Repository with the provided Database.
// It returns a pointer to the newly created Repository.
func NewRepository(db Database, log *slog.Logger) *Repository {
	return &Repository{db: db, log: log}
}
