package utils

// FiringInstantLayout is the wire format for firing instants: RFC3339, also
// the canonical form hashed into firing keys.
const FiringInstantLayout = "2006-01-02T15:04:05Z07:00"

const (
	TaskStatusPending    = "PENDING"
	TaskStatusInProgress = "IN_PROGRESS"
	TaskStatusCompleted  = "COMPLETED"
)
