package schemas

import (
	"time"

	"qcdispatch/src/models"
)

type CreateDispatchRequest struct {
	Name            string     `json:"name"`
	Description     string     `json:"description"`
	ScheduleType    string     `json:"scheduleType"`
	SpecificDays    []string   `json:"specificDays"`
	TimeOfDay       string     `json:"timeOfDay"`
	TimeZone        string     `json:"timeZone"`
	IntervalMinutes int        `json:"intervalMinutes"`
	StartTime       *time.Time `json:"startTime"`
	RepeatCount     *int       `json:"repeatCount"`
	FormIDs         []string   `json:"formIds"`
	TargetPersonnel []string   `json:"targetPersonnel"`
}

type UpdateDispatchRequest struct {
	ID              uint       `json:"-"`
	Name            *string    `json:"name"`
	Description     *string    `json:"description"`
	ScheduleType    *string    `json:"scheduleType"`
	SpecificDays    []string   `json:"specificDays"`
	TimeOfDay       *string    `json:"timeOfDay"`
	TimeZone        *string    `json:"timeZone"`
	IntervalMinutes *int       `json:"intervalMinutes"`
	StartTime       *time.Time `json:"startTime"`
	RepeatCount     *int       `json:"repeatCount"`
	FormIDs         []string   `json:"formIds"`
	TargetPersonnel []string   `json:"targetPersonnel"`
	Active          *bool      `json:"active"`
}

type DispatchResponse struct {
	ID              uint       `json:"id"`
	Name            string     `json:"name"`
	Description     string     `json:"description"`
	ScheduleType    string     `json:"scheduleType"`
	SpecificDays    []string   `json:"specificDays"`
	TimeOfDay       string     `json:"timeOfDay"`
	TimeZone        string     `json:"timeZone"`
	IntervalMinutes int        `json:"intervalMinutes"`
	StartTime       *time.Time `json:"startTime"`
	RepeatCount     *int       `json:"repeatCount"`
	ExecutedCount   int        `json:"executedCount"`
	FormIDs         []string   `json:"formIds"`
	TargetPersonnel []string   `json:"targetPersonnel"`
	Active          bool       `json:"active"`
	LastFiredAt     *time.Time `json:"lastFiredAt"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

func NewDispatchResponse(d *models.Dispatch) *DispatchResponse {
	return &DispatchResponse{
		ID:              d.ID,
		Name:            d.Name,
		Description:     d.Description,
		ScheduleType:    string(d.ScheduleType),
		SpecificDays:    d.SpecificDays,
		TimeOfDay:       d.TimeOfDay,
		TimeZone:        d.TimeZone,
		IntervalMinutes: d.IntervalMinutes,
		StartTime:       d.StartTime,
		RepeatCount:     d.RepeatCount,
		ExecutedCount:   d.ExecutedCount,
		FormIDs:         d.FormIDs,
		TargetPersonnel: d.TargetPersonnel,
		Active:          d.Active,
		LastFiredAt:     d.LastFiredAt,
		CreatedAt:       d.CreatedAt,
		UpdatedAt:       d.UpdatedAt,
	}
}
