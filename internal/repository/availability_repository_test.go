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

	"github.com/tutorlane/scheduling/internal/models"
)

func TestAvailabilityRepositoryCreateSlot(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAvailabilityRepository(db)

	mock.ExpectExec("INSERT INTO availability_slots").
		WithArgs(sqlmock.AnyArg(), "tutor-1", sqlmock.AnyArg(), sqlmock.AnyArg(), true, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	from := time.Date(2024, 4, 1, 9, 0, 0, 0, time.UTC)
	slot := &models.AvailabilitySlot{
		TutorID:   "tutor-1",
		From:      from,
		To:        from.Add(time.Hour),
		Recurrent: true,
	}
	require.NoError(t, repo.CreateSlot(context.Background(), slot))
	assert.NotEmpty(t, slot.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAvailabilityRepositoryStopRecurrence(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAvailabilityRepository(db)

	mock.ExpectExec("UPDATE availability_slots SET recurrent = FALSE").
		WithArgs("slot-1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.StopRecurrence(context.Background(), "slot-1"))

	mock.ExpectExec("UPDATE availability_slots SET recurrent = FALSE").
		WithArgs("missing", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.StopRecurrence(context.Background(), "missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAvailabilityRepositoryListSlots(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAvailabilityRepository(db)

	from := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 7)
	rows := sqlmock.NewRows([]string{"id", "tutor_id", "starts_at", "ends_at", "recurrent", "created_at", "updated_at"}).
		AddRow("s1", "tutor-1", from.Add(9*time.Hour), from.Add(10*time.Hour), false, time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, tutor_id, starts_at, ends_at, recurrent, created_at, updated_at")).
		WithArgs("tutor-1", from, to).
		WillReturnRows(rows)

	slots, err := repo.ListSlots(context.Background(), "tutor-1", from, to)
	require.NoError(t, err)
	require.Len(t, slots, 1)
	assert.False(t, slots[0].Recurrent)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAvailabilityRepositoryPatternRoundTrip(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAvailabilityRepository(db)

	mock.ExpectExec("INSERT INTO weekly_patterns").
		WithArgs("tutor-1", "6,112", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	require.NoError(t, repo.SavePattern(context.Background(), "tutor-1", "6,112"))

	mock.ExpectQuery(regexp.QuoteMeta("SELECT tutor_id, encoded, updated_at FROM weekly_patterns WHERE tutor_id = $1")).
		WithArgs("tutor-1").
		WillReturnRows(sqlmock.NewRows([]string{"tutor_id", "encoded", "updated_at"}).
			AddRow("tutor-1", "6,112", time.Now()))
	encoded, err := repo.GetPattern(context.Background(), "tutor-1")
	require.NoError(t, err)
	assert.Equal(t, "6,112", encoded)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAvailabilityRepositoryGetPatternMissingIsEmpty(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAvailabilityRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT tutor_id, encoded, updated_at FROM weekly_patterns WHERE tutor_id = $1")).
		WithArgs("nobody").
		WillReturnRows(sqlmock.NewRows([]string{"tutor_id", "encoded", "updated_at"}))

	encoded, err := repo.GetPattern(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Equal(t, "", encoded)
	assert.NoError(t, mock.ExpectationsWereMet())
}
