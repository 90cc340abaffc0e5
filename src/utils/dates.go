package utils

import (
	"fmt"
	"strings"
	"time"
)

var weekdayTags = map[string]time.Weekday{
	"SUN": time.Sunday,
	"MON": time.Monday,
	"TUE": time.Tuesday,
	"WED": time.Wednesday,
	"THU": time.Thursday,
	"FRI": time.Friday,
	"SAT": time.Saturday,
}

// ParseWeekdays converts a list of weekday tags ("MON", "TUE", ...) into a
// weekday set. Unknown tags return an error.
func ParseWeekdays(tags []string) (map[time.Weekday]bool, error) {
	days := make(map[time.Weekday]bool, len(tags))
	for _, tag := range tags {
		day, ok := weekdayTags[strings.ToUpper(strings.TrimSpace(tag))]
		if !ok {
			return nil, fmt.Errorf("unknown weekday tag %q", tag)
		}
		days[day] = true
	}
	return days, nil
}

// TimeOfDay is a wall-clock time without a date.
type TimeOfDay struct {
	Hour   int
	Minute int
}

// ParseTimeOfDay parses a string in the format "15:04".
func ParseTimeOfDay(value string) (TimeOfDay, error) {
	parsed, err := time.Parse("15:04", value)
	if err != nil {
		return TimeOfDay{}, fmt.Errorf("invalid time of day %q: %w", value, err)
	}
	return TimeOfDay{Hour: parsed.Hour(), Minute: parsed.Minute()}, nil
}

// At anchors the wall-clock time onto the date of the given instant, in the
// instant's location.
func (t TimeOfDay) At(day time.Time) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), t.Hour, t.Minute, 0, 0, day.Location())
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// SameDay reports whether two instants fall on the same calendar day. Both
// must already be in the relevant location.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
