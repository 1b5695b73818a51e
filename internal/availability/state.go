package availability

// State wraps a Pattern with the currently selected day pointer used by
// segment-level edits. Selecting AllDays makes bulk writes apply to the
// whole week. State is not safe for concurrent use; the owning service
// serializes access.
type State struct {
	pattern  Pattern
	selected int
}

// NewState returns an empty state with every day selected.
func NewState() *State {
	return &State{selected: AllDays}
}

// SelectDay moves the current-day pointer. AllDays targets the whole week.
func (st *State) SelectDay(day int) {
	if day != AllDays {
		day = ClampDay(day)
	}
	st.selected = day
}

// SelectedDay returns the current-day pointer.
func (st *State) SelectedDay() int {
	return st.selected
}

// Pattern returns a copy of the underlying table.
func (st *State) Pattern() Pattern {
	return st.pattern
}

// Load replaces the table wholesale. Callers enforcing the write-once
// contract check IsEmpty first.
func (st *State) Load(p Pattern) {
	st.pattern = p
}

// IsEmpty reports whether no day has any availability.
func (st *State) IsEmpty() bool {
	return st.pattern.IsZero()
}

// Clear empties the whole pattern, re-arming the write-once decode guard.
func (st *State) Clear() {
	st.pattern = Pattern{}
}

// IsSet reports whether the segment is marked available on the given day.
func (st *State) IsSet(day int, s Segment) bool {
	if !s.Valid() {
		return false
	}
	return st.pattern[day][s-SegmentMorning]
}

// Set marks the segment available. Day AllDays applies to every day.
func (st *State) Set(day int, s Segment) {
	st.apply(day, s, func(cur bool) bool { return true })
}

// Unset mirrors the wire format's XOR write: it flips the segment rather
// than clearing it, so calling Unset on an already-clear segment turns it
// ON. Callers must only invoke it for segments known to be set; use
// ClearSegment for an unconditional clear.
func (st *State) Unset(day int, s Segment) {
	st.apply(day, s, func(cur bool) bool { return !cur })
}

// Toggle flips the segment.
func (st *State) Toggle(day int, s Segment) {
	st.apply(day, s, func(cur bool) bool { return !cur })
}

// ClearSegment unconditionally clears the segment.
func (st *State) ClearSegment(day int, s Segment) {
	st.apply(day, s, func(cur bool) bool { return false })
}

// FillDay marks all three segments available.
func (st *State) FillDay(day int) {
	for s := SegmentMorning; s <= SegmentEvening; s++ {
		st.Set(day, s)
	}
}

// ClearDay removes the day's entry entirely; the day then no longer appears
// in the encoded form.
func (st *State) ClearDay(day int) {
	for s := SegmentMorning; s <= SegmentEvening; s++ {
		st.ClearSegment(day, s)
	}
}

// IsDayFull reports whether all three segments are available.
func (st *State) IsDayFull(day int) bool {
	return st.IsSet(day, SegmentMorning) && st.IsSet(day, SegmentAfternoon) && st.IsSet(day, SegmentEvening)
}

// IsDayModified reports whether any segment is available.
func (st *State) IsDayModified(day int) bool {
	return st.IsSet(day, SegmentMorning) || st.IsSet(day, SegmentAfternoon) || st.IsSet(day, SegmentEvening)
}

func (st *State) apply(day int, s Segment, op func(bool) bool) {
	if !s.Valid() {
		return
	}
	if day == AllDays {
		for d := 0; d < DaysPerWeek; d++ {
			st.pattern[d][s-SegmentMorning] = op(st.pattern[d][s-SegmentMorning])
		}
		return
	}
	st.pattern[day][s-SegmentMorning] = op(st.pattern[day][s-SegmentMorning])
}
