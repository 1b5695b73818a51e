package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/tutorlane/scheduling/internal/models"
)

// AvailabilityRepository persists concrete availability slots and the
// per-tutor weekly pattern string.
type AvailabilityRepository struct {
	db *sqlx.DB
}

// NewAvailabilityRepository constructs an availability repository.
func NewAvailabilityRepository(db *sqlx.DB) *AvailabilityRepository {
	return &AvailabilityRepository{db: db}
}

// ListSlots returns a tutor's slots overlapping [from, to), ordered by start.
func (r *AvailabilityRepository) ListSlots(ctx context.Context, tutorID string, from, to time.Time) ([]models.AvailabilitySlot, error) {
	const query = `SELECT id, tutor_id, starts_at, ends_at, recurrent, created_at, updated_at
FROM availability_slots WHERE tutor_id = $1 AND ends_at > $2 AND starts_at < $3 ORDER BY starts_at ASC`
	slots := []models.AvailabilitySlot{}
	if err := r.db.SelectContext(ctx, &slots, query, tutorID, from, to); err != nil {
		return nil, fmt.Errorf("list availability slots: %w", err)
	}
	return slots, nil
}

// CreateSlot inserts a slot.
func (r *AvailabilityRepository) CreateSlot(ctx context.Context, slot *models.AvailabilitySlot) error {
	if slot.ID == "" {
		slot.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if slot.CreatedAt.IsZero() {
		slot.CreatedAt = now
	}
	slot.UpdatedAt = now
	const query = `INSERT INTO availability_slots (id, tutor_id, starts_at, ends_at, recurrent, created_at, updated_at)
VALUES (:id, :tutor_id, :starts_at, :ends_at, :recurrent, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, slot); err != nil {
		return fmt.Errorf("create availability slot: %w", err)
	}
	return nil
}

// DeleteSlot removes a slot.
func (r *AvailabilityRepository) DeleteSlot(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM availability_slots WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete availability slot: %w", err)
	}
	return nil
}

// StopRecurrence flips a slot's recurrent flag off without changing its
// interval bounds.
func (r *AvailabilityRepository) StopRecurrence(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE availability_slots SET recurrent = FALSE, updated_at = $2 WHERE id = $1",
		id, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("stop recurrence: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// GetPattern returns the stored weekly pattern string for a tutor. A tutor
// without one yields the empty string, not an error.
func (r *AvailabilityRepository) GetPattern(ctx context.Context, tutorID string) (string, error) {
	var pattern models.WeeklyPattern
	err := r.db.GetContext(ctx, &pattern,
		"SELECT tutor_id, encoded, updated_at FROM weekly_patterns WHERE tutor_id = $1", tutorID)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get weekly pattern: %w", err)
	}
	return pattern.Encoded, nil
}

// SavePattern upserts the weekly pattern string for a tutor.
func (r *AvailabilityRepository) SavePattern(ctx context.Context, tutorID, encoded string) error {
	const query = `INSERT INTO weekly_patterns (tutor_id, encoded, updated_at) VALUES ($1, $2, $3)
ON CONFLICT (tutor_id) DO UPDATE SET encoded = EXCLUDED.encoded, updated_at = EXCLUDED.updated_at`
	if _, err := r.db.ExecContext(ctx, query, tutorID, encoded, time.Now().UTC()); err != nil {
		return fmt.Errorf("save weekly pattern: %w", err)
	}
	return nil
}
