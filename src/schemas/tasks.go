package schemas

import (
	"time"

	"qcdispatch/src/models"
)

type TaskResponse struct {
	ID           uint      `json:"id"`
	DispatchID   uint      `json:"dispatchId"`
	PersonnelID  string    `json:"personnelId"`
	FormID       string    `json:"formId"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	DispatchTime time.Time `json:"dispatchTime"`
	DueDate      time.Time `json:"dueDate"`
	Status       string    `json:"status"`
	IsOverdue    bool      `json:"isOverdue"`
	Notes        string    `json:"notes"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type SearchTasksResponse struct {
	Tasks    []TaskResponse `json:"tasks"`
	Total    int            `json:"total"`
	Page     int            `json:"page"`
	PageSize int            `json:"pageSize"`
}

func NewTaskResponse(t *models.DispatchedTask) TaskResponse {
	return TaskResponse{
		ID:           t.ID,
		DispatchID:   t.DispatchID,
		PersonnelID:  t.PersonnelID,
		FormID:       t.FormID,
		Name:         t.Name,
		Description:  t.Description,
		DispatchTime: t.DispatchTime,
		DueDate:      t.DueDate,
		Status:       t.Status,
		IsOverdue:    t.IsOverdue,
		Notes:        t.Notes,
		CreatedAt:    t.CreatedAt,
		UpdatedAt:    t.UpdatedAt,
	}
}

func NewSearchTasksResponse(tasks []models.DispatchedTask, total, page, pageSize int) *SearchTasksResponse {
	responses := make([]TaskResponse, 0, len(tasks))
	for i := range tasks {
		responses = append(responses, NewTaskResponse(&tasks[i]))
	}
	return &SearchTasksResponse{
		Tasks:    responses,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}
}
