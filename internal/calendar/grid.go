package calendar

import "time"

const (
	// mobileWindowSize is the fixed cell count of the narrow-screen strip.
	mobileWindowSize = 9
	// mobileWindowLead is how many days the strip extends before the
	// selected date.
	mobileWindowLead = 4
)

// Cell is one calendar date's rendering descriptor.
type Cell struct {
	Date     time.Time `json:"date"`
	InPeriod bool      `json:"in_period"`
	Booked   bool      `json:"booked"`
	Unix     int64     `json:"unix"`
}

// BookedFunc reports whether a date has at least one booked lesson.
type BookedFunc func(time.Time) bool

// MonthGrid builds the desktop month view: full Monday weeks covering the
// month, ceil(weekOfMonth(endOfMonth)) * 7 cells starting at
// startOfWeek(startOfMonth). Consecutive cells are exactly one day apart.
func MonthGrid(month time.Time, loc *time.Location, booked BookedFunc) []Cell {
	som := StartOfMonth(month, loc)
	weeks := WeekOfMonth(EndOfMonth(month, loc), loc)
	first := StartOfWeek(som, loc)

	cells := make([]Cell, 0, weeks*7)
	for i := 0; i < weeks*7; i++ {
		date := first.AddDate(0, 0, i)
		cells = append(cells, newCell(date, date.Month() == som.Month(), booked))
	}
	return cells
}

// WeekGrid builds the seven cells of the Monday week containing selected.
func WeekGrid(selected time.Time, loc *time.Location, booked BookedFunc) []Cell {
	first := StartOfWeek(selected, loc)
	cells := make([]Cell, 0, 7)
	for i := 0; i < 7; i++ {
		date := first.AddDate(0, 0, i)
		cells = append(cells, newCell(date, SameMonth(date, selected, loc), booked))
	}
	return cells
}

// MobileGrid builds the 9-cell strip around the selected date, starting
// mobileWindowLead days before it.
func MobileGrid(selected time.Time, loc *time.Location, booked BookedFunc) []Cell {
	first := StartOfDay(selected, loc).AddDate(0, 0, -mobileWindowLead)
	cells := make([]Cell, 0, mobileWindowSize)
	for i := 0; i < mobileWindowSize; i++ {
		date := first.AddDate(0, 0, i)
		cells = append(cells, newCell(date, SameMonth(date, selected, loc), booked))
	}
	return cells
}

// WindowContains reports whether date already falls inside the grid. The
// mobile strip is only rebuilt when it does not.
func WindowContains(cells []Cell, date time.Time, loc *time.Location) bool {
	for _, c := range cells {
		if SameDay(c.Date, date, loc) {
			return true
		}
	}
	return false
}

// Rebook recomputes every cell's booked flag against a fresh lesson set,
// leaving dates and period flags untouched.
func Rebook(cells []Cell, booked BookedFunc) {
	for i := range cells {
		cells[i].Booked = booked != nil && booked(cells[i].Date)
	}
}

func newCell(date time.Time, inPeriod bool, booked BookedFunc) Cell {
	return Cell{
		Date:     date,
		InPeriod: inPeriod,
		Booked:   booked != nil && booked(date),
		Unix:     date.Unix(),
	}
}
