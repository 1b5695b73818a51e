package models

import "time"

// Lesson is one booked session between a tutor and one or more students.
// StartsAt/EndsAt are stored in UTC; the scheduler localizes them into the
// viewing user's timezone.
type Lesson struct {
	ID           string    `db:"id" json:"id"`
	TutorID      string    `db:"tutor_id" json:"tutor_id"`
	StartsAt     time.Time `db:"starts_at" json:"starts_at"`
	EndsAt       time.Time `db:"ends_at" json:"ends_at"`
	Participants int       `db:"participants" json:"participants"`
	DurationMin  int       `db:"duration_min" json:"duration_min"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// LessonAggregate is the set of lessons for one fetch window, tagged with the
// timezone they were localized for. Aggregates are replaced wholesale, never
// mutated in place.
type LessonAggregate struct {
	Lessons  []Lesson  `json:"lessons"`
	Timezone string    `json:"timezone"`
	From     time.Time `json:"from"`
	To       time.Time `json:"to"`
}

// LessonFilter narrows down lessons for a fetch window.
type LessonFilter struct {
	TutorID string
	From    time.Time
	To      time.Time
}
