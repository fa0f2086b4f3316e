package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRouteRepositoryExists(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewRouteRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT EXISTS (SELECT 1 FROM routes WHERE id = $1)`)).
		WithArgs("route-404").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	exists, err := repo.Exists(context.Background(), "route-404")
	require.NoError(t, err)
	assert.False(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRouteRepositoryList(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewRouteRepository(db)

	now := time.Now().UTC()
	mock.ExpectQuery(regexp.QuoteMeta(`FROM routes ORDER BY name ASC`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "code", "start_point", "end_point", "created_at", "updated_at"}).
			AddRow("route-1", "North Loop", "N1", "Depot", "Campus", now, now))

	routes, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, routes, 1)
	assert.Equal(t, "North Loop", routes[0].Name)
	require.NotNil(t, routes[0].Code)
	assert.Equal(t, "N1", *routes[0].Code)
}
