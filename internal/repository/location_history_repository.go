package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/campus-fleet-api/internal/models"
)

// LocationHistoryRepository appends and reads bus audit rows.
type LocationHistoryRepository struct {
	db *sqlx.DB
}

// NewLocationHistoryRepository constructs the repository.
func NewLocationHistoryRepository(db *sqlx.DB) *LocationHistoryRepository {
	return &LocationHistoryRepository{db: db}
}

// Append inserts entry and fills in the database sequence number. An entry
// that already has an id keeps it, so a retried append cannot double insert.
func (r *LocationHistoryRepository) Append(ctx context.Context, entry *models.LocationHistory) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}

	const query = `
INSERT INTO bus_location_history (
	id, bus_id, location, direction, status, passenger_count, students_onboard,
	total_students, alert_message, alert_type, recorded_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
ON CONFLICT (id) DO UPDATE SET id = EXCLUDED.id
RETURNING seq`

	if err := r.db.QueryRowxContext(ctx, query,
		entry.ID,
		entry.BusID,
		entry.Location,
		entry.Direction,
		entry.Status,
		entry.PassengerCount,
		entry.StudentsOnboard,
		entry.TotalStudents,
		entry.AlertMessage,
		entry.AlertType,
		entry.RecordedAt,
	).Scan(&entry.Seq); err != nil {
		return fmt.Errorf("append location history: %w", err)
	}
	return nil
}

// ListByBus returns up to limit rows for a bus, newest first.
func (r *LocationHistoryRepository) ListByBus(ctx context.Context, busID string, limit int) ([]models.LocationHistory, error) {
	const query = `
SELECT id, seq, bus_id, location, direction, status, passenger_count, students_onboard,
	total_students, alert_message, alert_type, recorded_at
FROM bus_location_history
WHERE bus_id = $1
ORDER BY recorded_at DESC, seq DESC
LIMIT $2`

	entries := make([]models.LocationHistory, 0)
	if err := r.db.SelectContext(ctx, &entries, query, busID, limit); err != nil {
		return nil, fmt.Errorf("list location history: %w", err)
	}
	return entries, nil
}

// DeleteByBus purges every row of a bus and reports how many went.
func (r *LocationHistoryRepository) DeleteByBus(ctx context.Context, exec sqlx.ExtContext, busID string) (int64, error) {
	target := exec
	if target == nil {
		target = r.db
	}
	res, err := target.ExecContext(ctx, `DELETE FROM bus_location_history WHERE bus_id = $1`, busID)
	if err != nil {
		return 0, fmt.Errorf("purge location history: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("purge location history: %w", err)
	}
	return affected, nil
}
