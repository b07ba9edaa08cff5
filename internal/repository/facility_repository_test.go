package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var facilityCols = []string{"id", "name", "bhp_id", "requires_review", "active", "created_at", "updated_at"}

func TestFacilityRepositoryGetByID(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	observer := &observerStub{}
	repo := NewFacilityRepository(db, observer)

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, bhp_id")).
		WithArgs("fac-1").
		WillReturnRows(sqlmock.NewRows(facilityCols).AddRow("fac-1", "Desert Bloom", "bhp-1", true, true, now, now))

	facility, err := repo.GetByID(context.Background(), "fac-1")
	require.NoError(t, err)
	assert.Equal(t, "Desert Bloom", facility.Name)
	assert.True(t, facility.RequiresReview)
	assert.Equal(t, []string{"facility_get"}, observer.labels)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, bhp_id")).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)
	_, err = repo.GetByID(context.Background(), "missing")
	require.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFacilityRepositoryGetByIDMalformedID(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewFacilityRepository(db, nil)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, bhp_id")).
		WithArgs("abc").
		WillReturnError(&pq.Error{Code: "22P02", Message: `invalid input syntax for type uuid: "abc"`})
	_, err := repo.GetByID(context.Background(), "abc")
	require.ErrorIs(t, err, sql.ErrNoRows)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, bhp_id")).
		WithArgs("fac-1").
		WillReturnError(&pq.Error{Code: "57014", Message: "canceling statement due to statement timeout"})
	_, err = repo.GetByID(context.Background(), "fac-1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFacilityRepositoryListByBHP(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewFacilityRepository(db, nil)

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("FROM facilities WHERE bhp_id = $1 ORDER BY name")).
		WithArgs("bhp-1").
		WillReturnRows(sqlmock.NewRows(facilityCols).
			AddRow("fac-1", "Desert Bloom", "bhp-1", true, true, now, now).
			AddRow("fac-2", "Saguaro House", "bhp-1", false, false, now, now))

	facilities, err := repo.ListByBHP(context.Background(), "bhp-1")
	require.NoError(t, err)
	require.Len(t, facilities, 2)
	assert.False(t, facilities[1].Active)
	require.NoError(t, mock.ExpectationsWereMet())
}
