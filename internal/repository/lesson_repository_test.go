package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tutorlane/scheduling/internal/models"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestLessonRepositoryListByRange(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewLessonRepository(db)

	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)
	rows := sqlmock.NewRows([]string{"id", "tutor_id", "starts_at", "ends_at", "participants", "duration_min", "created_at"}).
		AddRow("l1", "tutor-1", from.Add(10*time.Hour), from.Add(11*time.Hour), 1, 60, time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, tutor_id, starts_at, ends_at, participants, duration_min, created_at")).
		WithArgs("tutor-1", from, to).
		WillReturnRows(rows)

	lessons, err := repo.ListByRange(context.Background(), "tutor-1", from, to)
	require.NoError(t, err)
	require.Len(t, lessons, 1)
	assert.Equal(t, "l1", lessons[0].ID)
	assert.Equal(t, 60, lessons[0].DurationMin)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLessonRepositoryListSkipsZeroFilterFields(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewLessonRepository(db)

	rows := sqlmock.NewRows([]string{"id", "tutor_id", "starts_at", "ends_at", "participants", "duration_min", "created_at"})
	mock.ExpectQuery(regexp.QuoteMeta("FROM lessons WHERE tutor_id = $1 ORDER BY starts_at ASC")).
		WithArgs("tutor-1").
		WillReturnRows(rows)

	lessons, err := repo.List(context.Background(), models.LessonFilter{TutorID: "tutor-1"})
	require.NoError(t, err)
	assert.Empty(t, lessons)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLessonRepositoryCreateFillsDefaults(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewLessonRepository(db)

	mock.ExpectExec("INSERT INTO lessons").
		WithArgs(sqlmock.AnyArg(), "tutor-1", sqlmock.AnyArg(), sqlmock.AnyArg(), 2, 90, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	start := time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC)
	lesson := &models.Lesson{
		TutorID:      "tutor-1",
		StartsAt:     start,
		EndsAt:       start.Add(90 * time.Minute),
		Participants: 2,
	}
	require.NoError(t, repo.Create(context.Background(), lesson))
	assert.NotEmpty(t, lesson.ID)
	assert.Equal(t, 90, lesson.DurationMin)
	assert.False(t, lesson.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLessonRepositoryDelete(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewLessonRepository(db)

	mock.ExpectExec("DELETE FROM lessons").
		WithArgs("l1").
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, repo.Delete(context.Background(), "l1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
