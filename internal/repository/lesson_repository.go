package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/tutorlane/scheduling/internal/models"
)

// LessonRepository persists booked lessons.
type LessonRepository struct {
	db *sqlx.DB
}

// NewLessonRepository constructs a lesson repository.
func NewLessonRepository(db *sqlx.DB) *LessonRepository {
	return &LessonRepository{db: db}
}

// List returns lessons matching the filter, ordered by start time. Zero
// filter fields are skipped, so a bare tutor filter lists everything the
// tutor has booked.
func (r *LessonRepository) List(ctx context.Context, filter models.LessonFilter) ([]models.Lesson, error) {
	query := `SELECT id, tutor_id, starts_at, ends_at, participants, duration_min, created_at
FROM lessons`
	conditions := []string{}
	args := []interface{}{}

	if filter.TutorID != "" {
		args = append(args, filter.TutorID)
		conditions = append(conditions, fmt.Sprintf("tutor_id = $%d", len(args)))
	}
	if !filter.From.IsZero() {
		args = append(args, filter.From)
		conditions = append(conditions, fmt.Sprintf("ends_at > $%d", len(args)))
	}
	if !filter.To.IsZero() {
		args = append(args, filter.To)
		conditions = append(conditions, fmt.Sprintf("starts_at < $%d", len(args)))
	}
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY starts_at ASC"

	lessons := []models.Lesson{}
	if err := r.db.SelectContext(ctx, &lessons, query, args...); err != nil {
		return nil, fmt.Errorf("list lessons: %w", err)
	}
	return lessons, nil
}

// ListByRange returns a tutor's lessons overlapping [from, to).
func (r *LessonRepository) ListByRange(ctx context.Context, tutorID string, from, to time.Time) ([]models.Lesson, error) {
	return r.List(ctx, models.LessonFilter{TutorID: tutorID, From: from, To: to})
}

// Create inserts a lesson.
func (r *LessonRepository) Create(ctx context.Context, lesson *models.Lesson) error {
	if lesson.ID == "" {
		lesson.ID = uuid.NewString()
	}
	if lesson.CreatedAt.IsZero() {
		lesson.CreatedAt = time.Now().UTC()
	}
	if lesson.DurationMin == 0 {
		lesson.DurationMin = int(lesson.EndsAt.Sub(lesson.StartsAt) / time.Minute)
	}
	const query = `INSERT INTO lessons (id, tutor_id, starts_at, ends_at, participants, duration_min, created_at)
VALUES (:id, :tutor_id, :starts_at, :ends_at, :participants, :duration_min, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, lesson); err != nil {
		return fmt.Errorf("create lesson: %w", err)
	}
	return nil
}

// Delete removes a lesson.
func (r *LessonRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM lessons WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete lesson: %w", err)
	}
	return nil
}
