package models

import "time"

// AvailabilitySlot is a concrete scheduled availability interval, distinct
// from the weekly recurring pattern. Recurrent slots repeat weekly until
// recurrence is stopped; stopping flips Recurrent without touching bounds.
type AvailabilitySlot struct {
	ID        string    `db:"id" json:"id"`
	TutorID   string    `db:"tutor_id" json:"tutor_id"`
	From      time.Time `db:"starts_at" json:"from"`
	To        time.Time `db:"ends_at" json:"to"`
	Recurrent bool      `db:"recurrent" json:"recurrent"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// WeeklyPattern is the persisted form of a tutor's recurring availability:
// the comma-separated integer encoding plus bookkeeping columns.
type WeeklyPattern struct {
	TutorID   string    `db:"tutor_id" json:"tutor_id"`
	Encoded   string    `db:"encoded" json:"encoded"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
