package calendar

import "time"

// StepMonth moves the selection by delta months with the "today" clamp:
// stepping into the month containing now resolves to exactly today,
// stepping backward into any other month lands on its last day, stepping
// forward lands on its first. Stepping forward from the current month and
// back again therefore returns to today exactly.
func StepMonth(selected time.Time, delta int, now time.Time, loc *time.Location) time.Time {
	target := StartOfMonth(selected, loc).AddDate(0, delta, 0)
	today := StartOfDay(now, loc)
	if SameMonth(target, today, loc) {
		return today
	}
	if delta < 0 {
		return EndOfMonth(target, loc)
	}
	return StartOfMonth(target, loc)
}

// StepDay moves the selection by whole days, used by the mobile strip.
func StepDay(selected time.Time, delta int, loc *time.Location) time.Time {
	return StartOfDay(selected, loc).AddDate(0, 0, delta)
}
