package repository

import (
	"context"
	"fmt"

	"github.com/UnknownOlympus/tremor/internal/models"
)

// UpsertRegistration creates or overwrites the registration row for the
// token in reg. One row exists per token; a repeated upsert refreshes the
// location and the updated_at timestamp (last-write-wins).
func (r *Repository) UpsertRegistration(ctx context.Context, reg models.Registration) error {
	query := `
		INSERT INTO registrations (fcm_token, latitude, longitude, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (fcm_token) DO UPDATE SET
			latitude = EXCLUDED.latitude,
			longitude = EXCLUDED.longitude,
			updated_at = NOW();
	`

	_, err := r.db.Exec(ctx, query, reg.Token, reg.Location.Latitude, reg.Location.Longitude)
	if err != nil {
		return fmt.Errorf("failed to upsert registration: %w", err)
	}

	r.log.DebugContext(ctx, "Registration upserted",
		"latitude", reg.Location.Latitude, "longitude", reg.Location.Longitude)

	return nil
}

// ListRegistrations returns every registered device with its last known
// location. Used by the alert scheduler to drive one full pass.
func (r *Repository) ListRegistrations(ctx context.Context) ([]models.Registration, error) {
	var regs []models.Registration
	query := `
		SELECT fcm_token, latitude, longitude, updated_at
		FROM registrations
		ORDER BY updated_at ASC;
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query registrations: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var reg models.Registration
		errScan := rows.Scan(&reg.Token, &reg.Location.Latitude, &reg.Location.Longitude, &reg.UpdatedAt)
		if errScan != nil {
			return nil, fmt.Errorf("failed to scan registration: %w", errScan)
		}
		regs = append(regs, reg)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read row: %w", err)
	}

	return regs, nil
}

// WasNotified reports whether a notification record already exists for the
// (token, quake) pair.
func (r *Repository) WasNotified(ctx context.Context, token, quakeID string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM notifications WHERE fcm_token = $1 AND quake_id = $2
		);
	`

	var notified bool
	if err := r.db.QueryRow(ctx, query, token, quakeID).Scan(&notified); err != nil {
		return false, fmt.Errorf("failed to check notification record: %w", err)
	}

	return notified, nil
}

// MarkNotified records that the (token, quake) pair has been alerted. A
// concurrent insert of the same pair is a no-op, not an error: the composite
// primary key plus ON CONFLICT DO NOTHING makes duplicate writes harmless.
func (r *Repository) MarkNotified(ctx context.Context, token, quakeID string) error {
	query := `
		INSERT INTO notifications (fcm_token, quake_id, notified_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (fcm_token, quake_id) DO NOTHING;
	`

	_, err := r.db.Exec(ctx, query, token, quakeID)
	if err != nil {
		return fmt.Errorf("failed to record notification: %w", err)
	}

	return nil
}
