package models

// TaskState maps a task status code to its human-readable label. The rows
// back the state vocabulary the search service resolves keywords against.
type TaskState struct {
	Code  string `db:"code"`
	Label string `db:"label"`
}

func (TaskState) TableName() string {
	return "task_states"
}
