package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/campus-fleet-api/internal/models"
)

func TestLocationHistoryRepositoryAppendReturnsSeq(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewLocationHistoryRepository(db)

	recorded := time.Date(2024, 6, 1, 7, 30, 0, 0, time.UTC)
	total := 20
	entry := &models.LocationHistory{
		BusID:           "bus-1",
		Location:        "Library Stop",
		Direction:       models.DirectionReturn,
		Status:          models.BusStatusInTransit,
		PassengerCount:  5,
		StudentsOnboard: 15,
		TotalStudents:   &total,
		RecordedAt:      recorded,
	}

	mock.ExpectQuery(`INSERT INTO bus_location_history .* ON CONFLICT \(id\) DO UPDATE SET id = EXCLUDED.id RETURNING seq`).
		WithArgs(sqlmock.AnyArg(), "bus-1", "Library Stop", models.DirectionReturn, models.BusStatusInTransit, 5, 15, 20, nil, nil, recorded).
		WillReturnRows(sqlmock.NewRows([]string{"seq"}).AddRow(int64(42)))

	require.NoError(t, repo.Append(context.Background(), entry))
	assert.NotEmpty(t, entry.ID)
	assert.Equal(t, int64(42), entry.Seq)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLocationHistoryRepositoryListNewestFirst(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewLocationHistoryRepository(db)

	later := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)
	earlier := later.Add(-10 * time.Minute)
	rows := sqlmock.NewRows([]string{"id", "seq", "bus_id", "location", "direction", "status", "passenger_count", "students_onboard", "total_students", "alert_message", "alert_type", "recorded_at"}).
		AddRow("h-2", 2, "bus-1", "Main Gate", "departure", "in-transit", 12, 12, nil, nil, nil, later).
		AddRow("h-1", 1, "bus-1", "Depot", "departure", "maintenance", 0, 0, nil, "Late start", "delay", earlier)

	mock.ExpectQuery(regexp.QuoteMeta(`ORDER BY recorded_at DESC, seq DESC LIMIT $2`)).
		WithArgs("bus-1", 50).
		WillReturnRows(rows)

	entries, err := repo.ListByBus(context.Background(), "bus-1", 50)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "h-2", entries[0].ID)
	require.NotNil(t, entries[1].AlertType)
	assert.Equal(t, "delay", *entries[1].AlertType)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLocationHistoryRepositoryDeleteByBus(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewLocationHistoryRepository(db)

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM bus_location_history WHERE bus_id = $1`)).
		WithArgs("bus-1").
		WillReturnResult(sqlmock.NewResult(0, 7))

	purged, err := repo.DeleteByBus(context.Background(), nil, "bus-1")
	require.NoError(t, err)
	assert.Equal(t, int64(7), purged)
	assert.NoError(t, mock.ExpectationsWereMet())
}
