package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/tutorlane/scheduling/internal/availability"
	"github.com/tutorlane/scheduling/internal/models"
	appErrors "github.com/tutorlane/scheduling/pkg/errors"
)

type patternStore interface {
	GetPattern(ctx context.Context, tutorID string) (string, error)
	SavePattern(ctx context.Context, tutorID, encoded string) error
}

type slotStore interface {
	ListSlots(ctx context.Context, tutorID string, from, to time.Time) ([]models.AvailabilitySlot, error)
	CreateSlot(ctx context.Context, slot *models.AvailabilitySlot) error
	DeleteSlot(ctx context.Context, id string) error
	StopRecurrence(ctx context.Context, id string) error
}

// AvailabilityOptions configures one tutor's availability editor.
type AvailabilityOptions struct {
	TutorID  string
	Debounce time.Duration
}

// AvailabilityService owns a tutor's weekly pattern state and concrete
// slots. Pattern edits are coalesced: each mutation re-arms a debounce
// timer and only the settled pattern is persisted. Close stops the timer so
// nothing is written after disposal.
type AvailabilityService struct {
	slots     slotStore
	patterns  patternStore
	validator *validator.Validate
	logger    *zap.Logger

	tutorID  string
	debounce time.Duration

	mu     sync.Mutex
	state  *availability.State
	timer  *time.Timer
	closed bool

	// persistMu serializes pattern writes; Close acquires it so it cannot
	// return while a save is in flight.
	persistMu sync.Mutex
}

// NewAvailabilityService constructs the service.
func NewAvailabilityService(slots slotStore, patterns patternStore, validate *validator.Validate, logger *zap.Logger, opts AvailabilityOptions) *AvailabilityService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Debounce <= 0 {
		opts.Debounce = 500 * time.Millisecond
	}
	return &AvailabilityService{
		slots:     slots,
		patterns:  patterns,
		validator: validate,
		logger:    logger,
		tutorID:   opts.TutorID,
		debounce:  opts.Debounce,
		state:     availability.NewState(),
	}
}

// LoadPattern decodes the stored pattern into the state. The state is
// write-once: once any day holds a value further loads are ignored until
// Clear re-arms the guard.
func (s *AvailabilityService) LoadPattern(ctx context.Context) error {
	s.mu.Lock()
	empty := s.state.IsEmpty()
	s.mu.Unlock()
	if !empty {
		return nil
	}

	raw, err := s.patterns.GetPattern(ctx, s.tutorID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load weekly pattern")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.IsEmpty() {
		s.state.Load(availability.Decode(raw))
	}
	return nil
}

// SelectDay moves the current-day pointer; availability.AllDays targets the
// whole week. Out-of-range indices are clamped here, not in the codec.
func (s *AvailabilityService) SelectDay(day int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.SelectDay(day)
}

// SelectedDay returns the current-day pointer.
func (s *AvailabilityService) SelectedDay() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.SelectedDay()
}

// Set marks a segment on the selected day. The whole-day pseudo-segment
// expands to all three bands.
func (s *AvailabilityService) Set(seg availability.Segment) {
	s.mutate(seg, s.state.Set, s.state.FillDay)
}

// Unset applies the wire format's XOR write to the selected day; see
// availability.State.Unset for the flip-on-miss caveat. Whole-day clears.
func (s *AvailabilityService) Unset(seg availability.Segment) {
	s.mutate(seg, s.state.Unset, s.state.ClearDay)
}

// Toggle flips a segment on the selected day; whole-day fills until full,
// then clears.
func (s *AvailabilityService) Toggle(seg availability.Segment) {
	s.mu.Lock()
	defer s.mu.Unlock()
	day := s.state.SelectedDay()
	if seg == availability.SegmentWholeDay {
		if day != availability.AllDays && s.state.IsDayFull(day) {
			s.state.ClearDay(day)
		} else {
			s.state.FillDay(day)
		}
	} else {
		s.state.Toggle(day, seg)
	}
	s.schedulePersistLocked()
}

// FillDay marks every segment of the selected day.
func (s *AvailabilityService) FillDay() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.FillDay(s.state.SelectedDay())
	s.schedulePersistLocked()
}

// ClearDay removes the selected day's entry entirely.
func (s *AvailabilityService) ClearDay() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.ClearDay(s.state.SelectedDay())
	s.schedulePersistLocked()
}

// ClearPattern empties the whole pattern and re-arms the write-once guard.
func (s *AvailabilityService) ClearPattern() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Clear()
	s.schedulePersistLocked()
}

// Pattern returns a copy of the current table.
func (s *AvailabilityService) Pattern() availability.Pattern {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Pattern()
}

// Encoded returns the current wire form.
func (s *AvailabilityService) Encoded() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return availability.Encode(s.state.Pattern())
}

// IsDayFull reports whether every segment of day is available.
func (s *AvailabilityService) IsDayFull(day int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.IsDayFull(availability.ClampDay(day))
}

// IsDayModified reports whether any segment of day is available.
func (s *AvailabilityService) IsDayModified(day int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.IsDayModified(availability.ClampDay(day))
}

// Flush persists the current pattern immediately, cancelling any pending
// debounce. The closed flag is re-checked under persistMu so a Flush racing
// Close either completes before Close returns or writes nothing.
func (s *AvailabilityService) Flush(ctx context.Context) error {
	s.persistMu.Lock()
	defer s.persistMu.Unlock()

	s.mu.Lock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	encoded := availability.Encode(s.state.Pattern())
	s.mu.Unlock()

	if err := s.patterns.SavePattern(ctx, s.tutorID, encoded); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save weekly pattern")
	}
	return nil
}

// Close cancels the debounce timer and waits out any save already in
// flight; no write happens after Close returns.
func (s *AvailabilityService) Close() {
	s.mu.Lock()
	s.closed = true
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.mu.Unlock()

	s.persistMu.Lock()
	s.persistMu.Unlock() //nolint:staticcheck
}

// CreateSlotRequest describes the add-availability form submission.
type CreateSlotRequest struct {
	From      time.Time `json:"from" validate:"required"`
	To        time.Time `json:"to" validate:"required"`
	Recurrent bool      `json:"recurrent"`
}

// CreateSlot validates and stores a concrete availability slot. Validation
// failures come back field-keyed so the caller can attach messages to the
// from/to inputs; backend errors (e.g. overlap rejections) pass through as
// opaque typed errors.
func (s *AvailabilityService) CreateSlot(ctx context.Context, req CreateSlotRequest) (*models.AvailabilitySlot, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.WithFields(appErrors.Clone(appErrors.ErrValidation, "invalid slot payload"), fieldMessages(err))
	}
	if !req.To.After(req.From) {
		return nil, appErrors.WithFields(appErrors.Clone(appErrors.ErrValidation, "invalid slot interval"),
			map[string]string{"to": "must be after from"})
	}

	slot := &models.AvailabilitySlot{
		TutorID:   s.tutorID,
		From:      req.From,
		To:        req.To,
		Recurrent: req.Recurrent,
	}
	if err := s.slots.CreateSlot(ctx, slot); err != nil {
		return nil, appErrors.FromError(err)
	}
	return slot, nil
}

// ListSlots returns the tutor's slots for a week window.
func (s *AvailabilityService) ListSlots(ctx context.Context, weekStart, weekEnd time.Time) ([]models.AvailabilitySlot, error) {
	slots, err := s.slots.ListSlots(ctx, s.tutorID, weekStart, weekEnd)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list availability")
	}
	return slots, nil
}

// DeleteSlot removes a slot.
func (s *AvailabilityService) DeleteSlot(ctx context.Context, id string) error {
	if err := s.slots.DeleteSlot(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete slot")
	}
	return nil
}

// StopRecurrence flips a slot's recurrent flag off, bounds unchanged.
func (s *AvailabilityService) StopRecurrence(ctx context.Context, id string) error {
	if err := s.slots.StopRecurrence(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "slot not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to stop recurrence")
	}
	return nil
}

func (s *AvailabilityService) mutate(seg availability.Segment, op func(int, availability.Segment), wholeDay func(int)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	day := s.state.SelectedDay()
	if seg == availability.SegmentWholeDay {
		wholeDay(day)
	} else {
		op(day, seg)
	}
	s.schedulePersistLocked()
}

// schedulePersistLocked re-arms the debounce timer; the caller holds s.mu.
func (s *AvailabilityService) schedulePersistLocked() {
	if s.closed {
		return
	}
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.debounce, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.Flush(ctx); err != nil {
			s.logger.Warn("debounced pattern save failed", zap.String("tutor_id", s.tutorID), zap.Error(err))
		}
	})
}

func fieldMessages(err error) map[string]string {
	fields := map[string]string{}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			fields[strings.ToLower(fe.Field())] = "failed " + fe.Tag() + " validation"
		}
	}
	return fields
}
