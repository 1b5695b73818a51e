package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/tutorlane/scheduling/internal/calendar"
	"github.com/tutorlane/scheduling/internal/models"
	"github.com/tutorlane/scheduling/internal/repository"
	appErrors "github.com/tutorlane/scheduling/pkg/errors"
)

type lessonSource interface {
	ListByRange(ctx context.Context, tutorID string, from, to time.Time) ([]models.Lesson, error)
}

type lessonCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// ScheduleOptions configures one user's calendar view.
type ScheduleOptions struct {
	TutorID     string
	Timezone    string
	CacheTTL    time.Duration
	RowHeight   float64
	BlockHeight float64
	Now         func() time.Time
}

// ScheduleService drives the calendar for one user: selected date, month
// navigation with the today clamp, month-keyed lesson fetching and the
// desktop/mobile grid descriptors. Lessons for a month are fetched at most
// once per distinct month; a navigation that lands before an earlier fetch
// resolves wins, and the superseded response is dropped.
type ScheduleService struct {
	lessons lessonSource
	cache   lessonCache
	metrics *MetricsService
	logger  *zap.Logger

	tutorID     string
	loc         *time.Location
	cacheTTL    time.Duration
	rowHeight   float64
	blockHeight float64
	now         func() time.Time

	mu        sync.Mutex
	selected  time.Time
	months    map[string]models.LessonAggregate
	current   models.LessonAggregate
	grid      []calendar.Cell
	gridMonth time.Time
	mobile    []calendar.Cell
	fetching  bool
	seq       uint64
}

// NewScheduleService constructs the service. The selection starts on today
// in the user's timezone.
func NewScheduleService(lessons lessonSource, cache lessonCache, metrics *MetricsService, logger *zap.Logger, opts ScheduleOptions) (*ScheduleService, error) {
	loc, err := time.LoadLocation(opts.Timezone)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInvalidTimezone.Code, appErrors.ErrInvalidTimezone.Status, "unknown timezone "+opts.Timezone)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = 10 * time.Minute
	}
	if opts.RowHeight <= 0 {
		opts.RowHeight = 60
	}
	if opts.BlockHeight <= 0 {
		opts.BlockHeight = 60
	}

	s := &ScheduleService{
		lessons:     lessons,
		cache:       cache,
		metrics:     metrics,
		logger:      logger,
		tutorID:     opts.TutorID,
		loc:         loc,
		cacheTTL:    opts.CacheTTL,
		rowHeight:   opts.RowHeight,
		blockHeight: opts.BlockHeight,
		now:         opts.Now,
		months:      map[string]models.LessonAggregate{},
	}
	s.selected = calendar.StartOfDay(s.now(), loc)
	return s, nil
}

// Refresh loads lessons for the selected month and (re)builds the grids.
func (s *ScheduleService) Refresh(ctx context.Context) error {
	s.mu.Lock()
	sel := s.selected
	s.mu.Unlock()
	return s.refreshFor(ctx, sel)
}

// Navigate steps the selection by delta months, clamping at today, and
// refetches lessons only when the month key changes.
func (s *ScheduleService) Navigate(ctx context.Context, delta int) error {
	s.mu.Lock()
	next := calendar.StepMonth(s.selected, delta, s.now(), s.loc)
	s.selected = next
	s.mu.Unlock()
	return s.refreshFor(ctx, next)
}

// NavigateDay steps the selection by whole days for the mobile strip,
// refetching only when the step crosses a month boundary.
func (s *ScheduleService) NavigateDay(ctx context.Context, delta int) error {
	s.mu.Lock()
	next := calendar.StepDay(s.selected, delta, s.loc)
	s.selected = next
	s.mu.Unlock()
	return s.refreshFor(ctx, next)
}

// SetDate selects a grid cell. Selecting the already-selected calendar day
// is a no-op; moving to a different month triggers a lesson fetch first.
func (s *ScheduleService) SetDate(ctx context.Context, cell calendar.Cell) error {
	s.mu.Lock()
	if calendar.SameDay(cell.Date, s.selected, s.loc) {
		s.mu.Unlock()
		return nil
	}
	next := calendar.StartOfDay(cell.Date, s.loc)
	s.selected = next
	s.mu.Unlock()
	return s.refreshFor(ctx, next)
}

// Selected returns the selected date (local midnight).
func (s *ScheduleService) Selected() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selected
}

// Fetching reports whether a lesson fetch is in flight.
func (s *ScheduleService) Fetching() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fetching
}

// Location returns the user's timezone.
func (s *ScheduleService) Location() *time.Location {
	return s.loc
}

// Grid returns the desktop month grid.
func (s *ScheduleService) Grid() []calendar.Cell {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]calendar.Cell(nil), s.grid...)
}

// MobileGrid returns the 9-cell strip.
func (s *ScheduleService) MobileGrid() []calendar.Cell {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]calendar.Cell(nil), s.mobile...)
}

// Lessons returns the aggregate backing the current view.
func (s *ScheduleService) Lessons() models.LessonAggregate {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// LessonBlocks lays out the selected-day's lessons on the 24-hour axis.
func (s *ScheduleService) LessonBlocks(date time.Time) []calendar.Block {
	s.mu.Lock()
	lessons := s.current.Lessons
	s.mu.Unlock()

	blocks := []calendar.Block{}
	for _, l := range lessons {
		if !calendar.SameDay(l.StartsAt, date, s.loc) {
			continue
		}
		blocks = append(blocks, calendar.LayoutInterval(l.StartsAt, l.DurationMin, s.loc, s.rowHeight, s.blockHeight))
	}
	return blocks
}

// WeekGrid returns the seven cells of the selected Monday week.
func (s *ScheduleService) WeekGrid() []calendar.Cell {
	s.mu.Lock()
	defer s.mu.Unlock()
	return calendar.WeekGrid(s.selected, s.loc, s.bookedLocked())
}

// SlotBlocks lays out availability slots that fall on date with the same
// metrics used for lessons.
func (s *ScheduleService) SlotBlocks(slots []models.AvailabilitySlot, date time.Time) []calendar.Block {
	blocks := []calendar.Block{}
	for _, slot := range slots {
		if !calendar.SameDay(slot.From, date, s.loc) {
			continue
		}
		duration := int(slot.To.Sub(slot.From) / time.Minute)
		blocks = append(blocks, calendar.LayoutInterval(slot.From, duration, s.loc, s.rowHeight, s.blockHeight))
	}
	return blocks
}

// refreshFor loads the month containing sel and rebuilds the grids. A load
// superseded by a newer navigation skips the rebuild entirely so the stale
// month never overwrites the grids the winning navigation produced.
func (s *ScheduleService) refreshFor(ctx context.Context, sel time.Time) error {
	stale, err := s.loadMonth(ctx, sel)
	if err != nil {
		return err
	}
	if stale {
		return nil
	}
	s.rebuildGrids(sel)
	return nil
}

// loadMonth resolves the lesson aggregate for the month containing at,
// trying memory, then the shared cache, then the repository. The fetching
// flag is cleared on success and failure alike. Responses superseded by a
// newer navigation are discarded and reported stale.
func (s *ScheduleService) loadMonth(ctx context.Context, at time.Time) (bool, error) {
	month := calendar.StartOfMonth(at, s.loc)
	key := repository.MonthKey(s.tutorID, month.Year(), month.Month())

	s.mu.Lock()
	s.seq++
	seq := s.seq
	if agg, ok := s.months[key]; ok {
		s.current = agg
		s.mu.Unlock()
		s.metrics.ObserveFetch("memory", "hit", 0)
		return false, nil
	}
	s.fetching = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.fetching = false
		s.mu.Unlock()
	}()

	started := time.Now()
	var agg models.LessonAggregate
	source := "redis"
	if s.cache == nil || s.cache.Get(ctx, key, &agg) != nil {
		source = "db"
		from, to := month, month.AddDate(0, 1, 0)
		lessons, err := s.lessons.ListByRange(ctx, s.tutorID, from.UTC(), to.UTC())
		if err != nil {
			s.metrics.ObserveFetch(source, "error", time.Since(started))
			return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch lessons")
		}
		agg = models.LessonAggregate{Lessons: lessons, Timezone: s.loc.String(), From: from, To: to}
		if s.cache != nil {
			if err := s.cache.Set(ctx, key, agg, s.cacheTTL); err != nil {
				s.logger.Warn("lesson cache write failed", zap.String("key", key), zap.Error(err))
			}
		}
	}
	s.metrics.ObserveFetch(source, "hit", time.Since(started))

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.seq != seq {
		// a newer navigation started while this fetch was in flight
		s.metrics.StaleDrop()
		return true, nil
	}
	s.months[key] = agg
	s.current = agg
	return false, nil
}

// rebuildGrids reconstructs the month grid only when the active month
// changed and the mobile strip only when the selection left its window;
// otherwise just the booked flags are recomputed.
func (s *ScheduleService) rebuildGrids(sel time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	booked := s.bookedLocked()
	month := calendar.StartOfMonth(sel, s.loc)
	if s.gridMonth.IsZero() || !month.Equal(s.gridMonth) {
		s.grid = calendar.MonthGrid(month, s.loc, booked)
		s.gridMonth = month
		s.metrics.GridBuild()
	} else {
		calendar.Rebook(s.grid, booked)
	}

	if len(s.mobile) == 0 || !calendar.WindowContains(s.mobile, sel, s.loc) {
		s.mobile = calendar.MobileGrid(sel, s.loc, booked)
		s.metrics.GridBuild()
	} else {
		calendar.Rebook(s.mobile, booked)
	}
}

func (s *ScheduleService) bookedLocked() calendar.BookedFunc {
	lessons := s.current.Lessons
	loc := s.loc
	return func(date time.Time) bool {
		for _, l := range lessons {
			if calendar.SameDay(l.StartsAt, date, loc) {
				return true
			}
		}
		return false
	}
}
