package models

import (
	"time"
)

type ScheduleType string

const (
	ScheduleTypeSpecificDays ScheduleType = "SPECIFIC_DAYS"
	ScheduleTypeInterval     ScheduleType = "INTERVAL"
)

// Dispatch is a recurring configuration describing when and to whom QC tasks
// are sent. SpecificDays/TimeOfDay apply only to SPECIFIC_DAYS schedules;
// IntervalMinutes/StartTime only to INTERVAL ones.
type Dispatch struct {
	ID              uint         `db:"id"`
	Name            string       `db:"name"`
	Description     string       `db:"description"`
	ScheduleType    ScheduleType `db:"schedule_type"`
	SpecificDays    []string     `db:"specific_days"`
	TimeOfDay       string       `db:"time_of_day"`
	TimeZone        string       `db:"time_zone"`
	IntervalMinutes int          `db:"interval_minutes"`
	StartTime       *time.Time   `db:"start_time"`
	RepeatCount     *int         `db:"repeat_count"`
	ExecutedCount   int          `db:"executed_count"`
	FormIDs         []string     `db:"form_ids"`
	TargetPersonnel []string     `db:"target_personnel"`
	Active          bool         `db:"active"`
	Deleted         bool         `db:"deleted"`
	LastFiredAt     *time.Time   `db:"last_fired_at"`
	CreatedAt       time.Time    `db:"created_at"`
	UpdatedAt       time.Time    `db:"updated_at"`
}

func (Dispatch) TableName() string {
	return "dispatches"
}

// Location resolves the dispatch time zone, falling back to UTC.
func (d *Dispatch) Location() (*time.Location, error) {
	if d.TimeZone == "" {
		return time.UTC, nil
	}
	return time.LoadLocation(d.TimeZone)
}
