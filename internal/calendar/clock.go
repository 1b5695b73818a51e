package calendar

import (
	"regexp"
	"strconv"
	"strings"
)

var clockPattern = regexp.MustCompile(`^[0-9]{1,2}:[0-9]{1,2} (a|p)m$`)

// hourTable maps a 12-hour clock label to its 0-based hour before the pm
// adjustment, so "12" is hour 0.
var hourTable = [12]string{"12", "1", "2", "3", "4", "5", "6", "7", "8", "9", "10", "11"}

// ParseClockTime converts a 12-hour "h:mm am/pm" token into a 24-hour
// hour/minute pair. Inputs that do not match the expected shape, or whose
// hour is not a 12-hour label, return ok=false instead of panicking; the
// caller treats that as "no valid selection".
func ParseClockTime(s string) (hour, minute int, ok bool) {
	if !clockPattern.MatchString(s) {
		return 0, 0, false
	}

	fields := strings.SplitN(s, " ", 2)
	parts := strings.SplitN(fields[0], ":", 2)

	hour = -1
	for i, label := range hourTable {
		if parts[0] == label {
			hour = i
			break
		}
	}
	if hour < 0 {
		return 0, 0, false
	}
	if fields[1] == "pm" {
		hour += 12
	}

	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute > 59 {
		return 0, 0, false
	}
	return hour, minute, true
}
