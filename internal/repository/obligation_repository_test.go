package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/bhrf-oversight-api/internal/models"
)

var obligationCols = []string{"id", "facility_id", "kind", "shift", "month", "quarter", "bi_week", "year", "performed_on", "notes", "created_by", "corrected_by", "created_at", "updated_at"}

func TestObligationRepositoryCreateAndGet(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewObligationRepository(db, nil)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO obligation_records")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	shift := models.ShiftAM
	month := 3
	record := &models.ObligationRecord{
		FacilityID: "fac-1",
		Kind:       models.ObligationFireDrill,
		Shift:      &shift,
		Month:      &month,
		Year:       2025,
		CreatedBy:  "staff-1",
	}
	require.NoError(t, repo.Create(context.Background(), record))
	require.NotEmpty(t, record.ID)
	require.False(t, record.CreatedAt.IsZero())

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, facility_id, kind, shift")).
		WithArgs(record.ID).
		WillReturnRows(sqlmock.NewRows(obligationCols).
			AddRow(record.ID, "fac-1", "FIRE_DRILL", "AM", 3, nil, nil, 2025, nil, "", "staff-1", nil, now, now))

	found, err := repo.GetByID(context.Background(), record.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ObligationFireDrill, found.Kind)
	assert.True(t, found.HasShift(models.ShiftAM))
	require.NotNil(t, found.Month)
	assert.Equal(t, 3, *found.Month)
	assert.Nil(t, found.Quarter)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestObligationRepositoryListUnboundedForEvaluation(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewObligationRepository(db, nil)

	now := time.Now()
	mock.ExpectQuery(`FROM obligation_records WHERE facility_id = \$1 AND year = \$2 ORDER BY created_at ASC$`).
		WithArgs("fac-1", 2025).
		WillReturnRows(sqlmock.NewRows(obligationCols).
			AddRow("obl-1", "fac-1", "OVERSIGHT_TRAINING", nil, nil, nil, 5, 2025, now, "", "staff-1", nil, now, now))

	records, err := repo.List(context.Background(), models.ObligationFilter{FacilityID: "fac-1", Year: 2025})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Nil(t, records[0].Shift)
	require.NotNil(t, records[0].BiWeek)
	assert.Equal(t, 5, *records[0].BiWeek)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestObligationRepositoryListCapsLimit(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewObligationRepository(db, nil)

	mock.ExpectQuery(regexp.QuoteMeta("kind = $2 ORDER BY created_at ASC LIMIT 500 OFFSET 0")).
		WithArgs("fac-1", models.ObligationFireDrill).
		WillReturnRows(sqlmock.NewRows(obligationCols))

	records, err := repo.List(context.Background(), models.ObligationFilter{FacilityID: "fac-1", Kind: models.ObligationFireDrill, Limit: 5000, Offset: -3})
	require.NoError(t, err)
	assert.Empty(t, records)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestObligationRepositoryUpdate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewObligationRepository(db, nil)

	corrector := "bhp-user"
	record := &models.ObligationRecord{ID: "obl-1", Kind: models.ObligationOversightTraining, Year: 2025, CorrectedBy: &corrector}

	mock.ExpectExec(regexp.QuoteMeta("UPDATE obligation_records SET")).WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.Update(context.Background(), record))

	mock.ExpectExec(regexp.QuoteMeta("UPDATE obligation_records SET")).WillReturnResult(sqlmock.NewResult(0, 0))
	require.ErrorIs(t, repo.Update(context.Background(), record), sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}
