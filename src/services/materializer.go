package services

import (
	"strconv"
	"time"

	"qcdispatch/src/models"
	"qcdispatch/src/schedule"
	"qcdispatch/src/utils"
	redis_utils "qcdispatch/src/utils/redis"
)

// DueDatePolicy derives a task due date from its firing instant. The policy
// is supplied by the caller; the worker wires a fixed offset from config.
type DueDatePolicy func(firingInstant time.Time) time.Time

// FixedOffsetDueDate returns a policy that sets the due date a fixed
// duration after the firing instant.
func FixedOffsetDueDate(offset time.Duration) DueDatePolicy {
	return func(firingInstant time.Time) time.Time {
		return firingInstant.Add(offset)
	}
}

type TaskMaterializerI interface {
	Materialize(dispatch *models.Dispatch, firingInstant time.Time) ([]models.DispatchedTask, error)
}

// TaskMaterializer expands one firing into the Cartesian product of the
// dispatch's forms and target personnel. It is pure: persistence and
// duplicate detection are the scheduler's responsibility.
type TaskMaterializer struct {
	dueDate   DueDatePolicy
	createdBy string
}

func NewTaskMaterializer(dueDate DueDatePolicy, createdBy string) *TaskMaterializer {
	return &TaskMaterializer{
		dueDate:   dueDate,
		createdBy: createdBy,
	}
}

func (m *TaskMaterializer) Materialize(dispatch *models.Dispatch, firingInstant time.Time) ([]models.DispatchedTask, error) {
	if err := schedule.ValidateTargets(dispatch); err != nil {
		return nil, err
	}

	dueDate := m.dueDate(firingInstant)
	tasks := make([]models.DispatchedTask, 0, len(dispatch.FormIDs)*len(dispatch.TargetPersonnel))

	for _, formID := range dispatch.FormIDs {
		for _, personnelID := range dispatch.TargetPersonnel {
			firingKey, err := redis_utils.GenerateUUID(
				strconv.FormatUint(uint64(dispatch.ID), 10),
				firingInstant.UTC().Format(utils.FiringInstantLayout),
				formID,
				personnelID,
			)
			if err != nil {
				return nil, err
			}

			tasks = append(tasks, models.DispatchedTask{
				FiringKey:    firingKey,
				DispatchID:   dispatch.ID,
				PersonnelID:  personnelID,
				FormID:       formID,
				Name:         dispatch.Name,
				Description:  dispatch.Description,
				DispatchTime: firingInstant,
				DueDate:      dueDate,
				Status:       utils.TaskStatusPending,
				CreatedBy:    m.createdBy,
				UpdatedBy:    m.createdBy,
			})
		}
	}

	return tasks, nil
}
