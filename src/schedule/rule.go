package schedule

import (
	"time"

	"qcdispatch/src/models"
	"qcdispatch/src/utils"
)

// Rule answers whether a dispatch is due at a reference instant and, if so,
// at which canonical firing instant. The two schedule types are separate rule
// types so an invalid field combination cannot be constructed; RuleFor is the
// only way to build one.
type Rule interface {
	// DueAt reports the canonical firing instant at or before now that has
	// not yet produced a firing. due is false when there is none.
	DueAt(now time.Time) (firing time.Time, due bool)
}

// SpecificDaysRule fires once per calendar day, on the configured weekdays,
// at the configured wall-clock time in the dispatch's time zone.
type SpecificDaysRule struct {
	days       map[time.Weekday]bool
	timeOfDay  utils.TimeOfDay
	loc        *time.Location
	lastFired  *time.Time
	tickWindow time.Duration
}

func (r *SpecificDaysRule) DueAt(now time.Time) (time.Time, bool) {
	local := now.In(r.loc)
	if !r.days[local.Weekday()] {
		return time.Time{}, false
	}

	firing := r.timeOfDay.At(local)
	if now.Before(firing) || now.Sub(firing) > r.tickWindow {
		return time.Time{}, false
	}

	// At most one firing per calendar day, regardless of tick frequency.
	if r.lastFired != nil && utils.SameDay(r.lastFired.In(r.loc), local) {
		return time.Time{}, false
	}

	return firing, true
}

// IntervalRule fires at startTime + k*interval for every k >= 0. A tick
// claims the largest such instant at or before now that is newer than the
// last firing; missed multiples are not replayed.
type IntervalRule struct {
	start     time.Time
	interval  time.Duration
	lastFired *time.Time
}

func (r *IntervalRule) DueAt(now time.Time) (time.Time, bool) {
	if now.Before(r.start) {
		return time.Time{}, false
	}

	k := now.Sub(r.start) / r.interval
	firing := r.start.Add(k * r.interval)

	if r.lastFired != nil && !firing.After(*r.lastFired) {
		return time.Time{}, false
	}

	return firing, true
}

// RuleFor validates the dispatch configuration and builds the rule matching
// its schedule type. tickWindow is how far past a wall-clock firing instant
// a tick may still claim it; it should match the scheduler tick frequency.
func RuleFor(d *models.Dispatch, tickWindow time.Duration) (Rule, error) {
	if err := ValidateTargets(d); err != nil {
		return nil, err
	}

	switch d.ScheduleType {
	case models.ScheduleTypeSpecificDays:
		if len(d.SpecificDays) == 0 {
			return nil, NewConfigurationError("specificDays", "must not be empty")
		}
		days, err := utils.ParseWeekdays(d.SpecificDays)
		if err != nil {
			return nil, NewConfigurationError("specificDays", err.Error())
		}
		timeOfDay, err := utils.ParseTimeOfDay(d.TimeOfDay)
		if err != nil {
			return nil, NewConfigurationError("timeOfDay", err.Error())
		}
		loc, err := d.Location()
		if err != nil {
			return nil, NewConfigurationError("timeZone", err.Error())
		}
		return &SpecificDaysRule{
			days:       days,
			timeOfDay:  timeOfDay,
			loc:        loc,
			lastFired:  d.LastFiredAt,
			tickWindow: tickWindow,
		}, nil

	case models.ScheduleTypeInterval:
		if d.IntervalMinutes <= 0 {
			return nil, NewConfigurationError("intervalMinutes", "must be a positive integer")
		}
		if d.StartTime == nil {
			return nil, NewConfigurationError("startTime", "must be set for INTERVAL schedules")
		}
		return &IntervalRule{
			start:     *d.StartTime,
			interval:  time.Duration(d.IntervalMinutes) * time.Minute,
			lastFired: d.LastFiredAt,
		}, nil

	default:
		return nil, NewConfigurationError("scheduleType", "unknown schedule type "+string(d.ScheduleType))
	}
}

// ValidateTargets fails fast on a dispatch with nothing to materialize.
func ValidateTargets(d *models.Dispatch) error {
	if len(d.FormIDs) == 0 {
		return NewConfigurationError("formIds", "must not be empty")
	}
	if len(d.TargetPersonnel) == 0 {
		return NewConfigurationError("targetPersonnel", "must not be empty")
	}
	return nil
}

// Exhausted reports whether the dispatch has used up its allowed firings.
// A nil or zero repeat count means unbounded.
func Exhausted(d *models.Dispatch) bool {
	return d.RepeatCount != nil && *d.RepeatCount > 0 && d.ExecutedCount >= *d.RepeatCount
}
