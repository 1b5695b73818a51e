package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tutorlane/scheduling/internal/calendar"
	"github.com/tutorlane/scheduling/internal/models"
)

type lessonSourceStub struct {
	mu      sync.Mutex
	calls   int
	lessons []models.Lesson
	err     error
}

func (s *lessonSourceStub) ListByRange(ctx context.Context, tutorID string, from, to time.Time) ([]models.Lesson, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.lessons, nil
}

func (s *lessonSourceStub) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// gatedLessonSource blocks its first fetch until gate closes, signalling
// entered once the fetch is in flight. Later fetches resolve immediately.
type gatedLessonSource struct {
	mu      sync.Mutex
	calls   int
	entered chan struct{}
	gate    chan struct{}
}

func (s *gatedLessonSource) ListByRange(ctx context.Context, tutorID string, from, to time.Time) ([]models.Lesson, error) {
	s.mu.Lock()
	s.calls++
	first := s.calls == 1
	s.mu.Unlock()
	if first {
		s.entered <- struct{}{}
		<-s.gate
	}
	return nil, nil
}

func newTestSchedule(t *testing.T, src *lessonSourceStub, timezone string, now time.Time) *ScheduleService {
	t.Helper()
	svc, err := NewScheduleService(src, nil, nil, nil, ScheduleOptions{
		TutorID:  "tutor-1",
		Timezone: timezone,
		Now:      func() time.Time { return now },
	})
	require.NoError(t, err)
	return svc
}

func TestScheduleServiceRejectsUnknownTimezone(t *testing.T) {
	_, err := NewScheduleService(&lessonSourceStub{}, nil, nil, nil, ScheduleOptions{
		TutorID:  "tutor-1",
		Timezone: "Mars/Olympus",
	})
	require.Error(t, err)
}

func TestScheduleServiceFetchesMonthOnce(t *testing.T) {
	src := &lessonSourceStub{}
	now := time.Date(2021, 2, 10, 12, 0, 0, 0, time.UTC)
	svc := newTestSchedule(t, src, "UTC", now)

	require.NoError(t, svc.Refresh(context.Background()))
	require.NoError(t, svc.Refresh(context.Background()))
	assert.Equal(t, 1, src.callCount())

	// February 2021 spans exactly four Monday weeks
	assert.Len(t, svc.Grid(), 28)
	assert.Len(t, svc.MobileGrid(), 9)
}

func TestScheduleServiceNavigateRoundTripReturnsToToday(t *testing.T) {
	src := &lessonSourceStub{}
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	svc := newTestSchedule(t, src, "UTC", now)
	require.NoError(t, svc.Refresh(context.Background()))
	today := svc.Selected()

	require.NoError(t, svc.Navigate(context.Background(), 1))
	assert.Equal(t, time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC), svc.Selected())
	assert.Equal(t, 2, src.callCount())

	require.NoError(t, svc.Navigate(context.Background(), -1))
	assert.Equal(t, today, svc.Selected())
	// June was already cached: navigating back does not refetch
	assert.Equal(t, 2, src.callCount())
}

func TestScheduleServiceSetDateSameDayIsNoop(t *testing.T) {
	src := &lessonSourceStub{}
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	svc := newTestSchedule(t, src, "UTC", now)
	require.NoError(t, svc.Refresh(context.Background()))

	cell := calendar.Cell{Date: time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)}
	require.NoError(t, svc.SetDate(context.Background(), cell))
	assert.Equal(t, 1, src.callCount())
}

func TestScheduleServiceSetDateAcrossMonthRefetches(t *testing.T) {
	src := &lessonSourceStub{}
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	svc := newTestSchedule(t, src, "UTC", now)
	require.NoError(t, svc.Refresh(context.Background()))

	// the month grid shows trailing days of May; selecting one refetches
	cell := calendar.Cell{Date: time.Date(2024, 5, 28, 0, 0, 0, 0, time.UTC)}
	require.NoError(t, svc.SetDate(context.Background(), cell))
	assert.Equal(t, 2, src.callCount())
	assert.Equal(t, time.Date(2024, 5, 28, 0, 0, 0, 0, time.UTC), svc.Selected())
}

func TestScheduleServiceFetchErrorClearsLoadingFlag(t *testing.T) {
	src := &lessonSourceStub{err: errors.New("db down")}
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	svc := newTestSchedule(t, src, "UTC", now)

	err := svc.Refresh(context.Background())
	require.Error(t, err)
	assert.False(t, svc.Fetching())
}

func TestScheduleServiceBookedCellsAreTimezoneAware(t *testing.T) {
	src := &lessonSourceStub{lessons: []models.Lesson{{
		ID:          "l1",
		TutorID:     "tutor-1",
		StartsAt:    time.Date(2024, 1, 15, 23, 30, 0, 0, time.UTC),
		EndsAt:      time.Date(2024, 1, 16, 0, 30, 0, 0, time.UTC),
		DurationMin: 60,
	}}}
	now := time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)
	svc := newTestSchedule(t, src, "America/Los_Angeles", now)
	require.NoError(t, svc.Refresh(context.Background()))

	booked := map[int]bool{}
	for _, cell := range svc.Grid() {
		if cell.Booked {
			booked[cell.Date.Day()] = true
		}
	}
	// 23:30 UTC is 15:30 local: the lesson lands on Jan 15, never Jan 16
	assert.True(t, booked[15])
	assert.False(t, booked[16])
}

func TestScheduleServiceMobileWindowRebuildsOnlyWhenOutside(t *testing.T) {
	src := &lessonSourceStub{}
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	svc := newTestSchedule(t, src, "UTC", now)
	require.NoError(t, svc.Refresh(context.Background()))

	first := svc.MobileGrid()[0].Date

	// one day forward stays inside the 9-cell window
	require.NoError(t, svc.NavigateDay(context.Background(), 1))
	assert.Equal(t, first, svc.MobileGrid()[0].Date)

	// five more days leave the window and force a rebuild
	require.NoError(t, svc.NavigateDay(context.Background(), 5))
	assert.NotEqual(t, first, svc.MobileGrid()[0].Date)
}

func TestScheduleServiceStaleFetchDoesNotRebuildGrid(t *testing.T) {
	src := &gatedLessonSource{entered: make(chan struct{}), gate: make(chan struct{})}
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	svc, err := NewScheduleService(src, nil, nil, nil, ScheduleOptions{
		TutorID:  "tutor-1",
		Timezone: "UTC",
		Now:      func() time.Time { return now },
	})
	require.NoError(t, err)

	// navigate to July; the fetch parks inside the source
	done := make(chan error, 1)
	go func() { done <- svc.Navigate(context.Background(), 1) }()
	<-src.entered

	// a second navigation to August supersedes it and resolves immediately
	require.NoError(t, svc.Navigate(context.Background(), 1))
	require.Equal(t, time.Date(2024, 8, 1, 0, 0, 0, 0, time.UTC), svc.Selected())
	require.Equal(t, time.August, svc.Grid()[10].Date.Month())

	// releasing the July fetch must not roll the grid back to July
	close(src.gate)
	require.NoError(t, <-done)

	assert.Equal(t, time.Date(2024, 8, 1, 0, 0, 0, 0, time.UTC), svc.Selected())
	assert.Equal(t, time.August, svc.Grid()[10].Date.Month())
}

func TestScheduleServiceSlotBlocks(t *testing.T) {
	src := &lessonSourceStub{}
	now := time.Date(2024, 6, 15, 8, 0, 0, 0, time.UTC)
	svc := newTestSchedule(t, src, "UTC", now)

	from := time.Date(2024, 6, 15, 9, 0, 0, 0, time.UTC)
	slots := []models.AvailabilitySlot{
		{ID: "s1", From: from, To: from.Add(2 * time.Hour)},
		{ID: "s2", From: from.AddDate(0, 0, 1), To: from.AddDate(0, 0, 1).Add(time.Hour)},
	}

	blocks := svc.SlotBlocks(slots, svc.Selected())
	require.Len(t, blocks, 1)
	assert.Equal(t, calendar.TopOffset(9, 0, 60), blocks[0].Top)
}

func TestScheduleServiceLessonBlocks(t *testing.T) {
	src := &lessonSourceStub{lessons: []models.Lesson{{
		ID:          "l1",
		TutorID:     "tutor-1",
		StartsAt:    time.Date(2024, 6, 15, 10, 30, 0, 0, time.UTC),
		EndsAt:      time.Date(2024, 6, 15, 11, 30, 0, 0, time.UTC),
		DurationMin: 60,
	}}}
	now := time.Date(2024, 6, 15, 8, 0, 0, 0, time.UTC)
	svc := newTestSchedule(t, src, "UTC", now)
	require.NoError(t, svc.Refresh(context.Background()))

	blocks := svc.LessonBlocks(svc.Selected())
	require.Len(t, blocks, 1)
	assert.Equal(t, calendar.TopOffset(10, 30, 60), blocks[0].Top)

	assert.Empty(t, svc.LessonBlocks(svc.Selected().AddDate(0, 0, 1)))
}
