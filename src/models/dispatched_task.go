package models

import (
	"time"
)

// DispatchedTask is one concrete task instance assigned to one person for one
// form, generated by a single firing of its owning Dispatch. FiringKey is
// deterministic per (dispatch, firing instant, form, personnel) and carries a
// unique index, so re-materializing the same firing inserts nothing.
type DispatchedTask struct {
	ID           uint      `db:"id"`
	FiringKey    string    `db:"firing_key"`
	DispatchID   uint      `db:"dispatch_id"`
	PersonnelID  string    `db:"personnel_id"`
	FormID       string    `db:"form_id"`
	Name         string    `db:"name"`
	Description  string    `db:"description"`
	DispatchTime time.Time `db:"dispatch_time"`
	DueDate      time.Time `db:"due_date"`
	Status       string    `db:"status"`
	IsOverdue    bool      `db:"is_overdue"`
	Notes        string    `db:"notes"`
	CreatedAt    time.Time `db:"created_at"`
	CreatedBy    string    `db:"created_by"`
	UpdatedAt    time.Time `db:"updated_at"`
	UpdatedBy    string    `db:"updated_by"`
}

func (DispatchedTask) TableName() string {
	return "dispatched_tasks"
}
