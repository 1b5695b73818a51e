package availability

import (
	"strconv"
	"strings"
)

// Pattern is a tutor's weekly recurring availability as a day-by-segment
// boolean table. The zero value is the empty pattern.
type Pattern [DaysPerWeek][segmentsPerDay]bool

// Decode parses the stored comma-separated integer form. Non-numeric and
// zero tokens are skipped, and a value is assigned to a day only when it
// equals one of that day's seven valid segment combinations; anything else
// is silently dropped. Decode never fails: garbage input simply yields
// fewer populated days.
func Decode(serialized string) Pattern {
	var p Pattern
	for _, token := range strings.Split(serialized, ",") {
		value, err := strconv.Atoi(strings.TrimSpace(token))
		if err != nil || value == 0 {
			continue
		}
		for day := 0; day < DaysPerWeek; day++ {
			if !matchesDay(value, day) {
				continue
			}
			for s := SegmentMorning; s <= SegmentEvening; s++ {
				p[day][s-SegmentMorning] = value&Mask(s, day) != 0
			}
			break
		}
	}
	return p
}

// Encode produces the comma-separated integer form. Days without any
// segment are omitted, so the output never contains a zero entry.
func Encode(p Pattern) string {
	parts := make([]string, 0, DaysPerWeek)
	for day := 0; day < DaysPerWeek; day++ {
		if value := p.DayValue(day); value != 0 {
			parts = append(parts, strconv.Itoa(value))
		}
	}
	return strings.Join(parts, ",")
}

// DayValue packs one day's segments into its wire integer. Zero means the
// day has no availability.
func (p Pattern) DayValue(day int) int {
	value := 0
	for s := SegmentMorning; s <= SegmentEvening; s++ {
		if p[day][s-SegmentMorning] {
			value |= Mask(s, day)
		}
	}
	return value
}

// IsZero reports whether no day has any availability.
func (p Pattern) IsZero() bool {
	return p == Pattern{}
}

func matchesDay(value, day int) bool {
	for _, combo := range dayCombos(day) {
		if value == combo {
			return true
		}
	}
	return false
}
