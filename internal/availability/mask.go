// Package availability implements the weekly recurring-availability pattern
// and its compact integer serialization.
//
// The wire form is a comma-separated list of integers, at most one per
// day-of-week. Each integer packs the day's three segments (morning,
// afternoon, evening) as bits: segment s on day d occupies bit s+3d, so the
// valid values for a day are its seven non-empty segment combinations.
// Internally the pattern is an explicit day-by-segment boolean table; the
// packed integers exist only at the serialization boundary.
package availability

// Segment identifies one of the three daily availability bands.
type Segment int

const (
	SegmentMorning Segment = iota + 1
	SegmentAfternoon
	SegmentEvening

	// SegmentWholeDay is a presentation-layer pseudo-segment meaning "the
	// entire day". It never maps to a wire bit; callers expand it into the
	// three real segments.
	SegmentWholeDay Segment = 4
)

const (
	// DaysPerWeek covers day indices 0=Monday .. 6=Sunday.
	DaysPerWeek = 7

	segmentsPerDay = 3

	// AllDays addresses every day of the week at once in bulk writes.
	AllDays = -1
)

// Valid reports whether s is one of the three real segments.
func (s Segment) Valid() bool {
	return s >= SegmentMorning && s <= SegmentEvening
}

// Mask returns the wire bit for segment s on day d.
func Mask(s Segment, day int) int {
	return 1 << (int(s) + segmentsPerDay*day)
}

// dayCombos lists the seven non-empty segment-mask combinations valid for
// one day. Any other value is not decodable for that day.
func dayCombos(day int) [7]int {
	m := Mask(SegmentMorning, day)
	a := Mask(SegmentAfternoon, day)
	e := Mask(SegmentEvening, day)
	return [7]int{m, a, e, m | a, m | e, a | e, m | a | e}
}

// ClampDay bounds a day index to the valid 0..6 range. The codec itself does
// not bound-check days; callers handing it UI-originated indices go through
// here first.
func ClampDay(day int) int {
	if day < 0 {
		return 0
	}
	if day > DaysPerWeek-1 {
		return DaysPerWeek - 1
	}
	return day
}
