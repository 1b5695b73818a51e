package calendar

import "time"

const (
	// blockMargin is subtracted from computed block heights so adjacent
	// blocks do not touch; it is skipped below blockMarginThreshold to keep
	// very short blocks from going negative.
	blockMargin          = 4.0
	blockMarginThreshold = 10.0

	// popoverFlipFrom is the first weekday column whose popovers open to
	// the left instead of the right to stay on-screen.
	popoverFlipFrom = 5
)

// Block is the pixel-independent layout of one interval on a 24-hour axis,
// in units proportional to the configured row height.
type Block struct {
	Top         float64 `json:"top"`
	Height      float64 `json:"height"`
	PopoverLeft bool    `json:"popover_left"`
}

// TopOffset returns the vertical offset of a time of day.
func TopOffset(hour, minute int, rowHeight float64) float64 {
	return rowHeight*float64(hour) + rowHeight/60*float64(minute)
}

// BlockHeight returns the rendered height for a duration.
func BlockHeight(durationMin int, rowHeight, blockHeight float64) float64 {
	h := float64(durationMin) * rowHeight / blockHeight
	if h > blockMarginThreshold {
		h -= blockMargin
	}
	return h
}

// PopoverLeft reports whether the weekday column's popovers open leftward.
// The last two columns of the week do.
func PopoverLeft(dayIndex int) bool {
	return dayIndex >= popoverFlipFrom
}

// LayoutInterval computes the block for an interval localized into loc.
func LayoutInterval(start time.Time, durationMin int, loc *time.Location, rowHeight, blockHeight float64) Block {
	local := start.In(loc)
	return Block{
		Top:         TopOffset(local.Hour(), local.Minute(), rowHeight),
		Height:      BlockHeight(durationMin, rowHeight, blockHeight),
		PopoverLeft: PopoverLeft(WeekdayIndex(local)),
	}
}
