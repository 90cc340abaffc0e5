package services

import (
	"context"
	"fmt"
	"time"

	"qcdispatch/src/models"
	"qcdispatch/src/repositories"
	"qcdispatch/src/schedule"
	"qcdispatch/src/utils"

	"github.com/sirupsen/logrus"
)

type TickFailure struct {
	DispatchID uint   `json:"dispatchId"`
	Error      string `json:"error"`
}

// TickReport summarizes one scheduler pass.
type TickReport struct {
	Fired             []uint        `json:"fired"`
	DuplicatesSkipped []uint        `json:"duplicatesSkipped"`
	Failures          []TickFailure `json:"failures"`
	TasksCreated      int64         `json:"tasksCreated"`
}

type DispatchSchedulerServiceI interface {
	ScheduleTick(ctx context.Context, now time.Time) (*TickReport, error)
	Backfill(ctx context.Context, dispatchID uint, firingInstant time.Time) (int64, error)
}

// DispatchSchedulerService runs one scheduler pass: it finds the active
// dispatches due at the reference instant, materializes their tasks, and
// records the firing. Each dispatch is processed independently; a failure on
// one never aborts the others, and a failed dispatch retries on the next
// tick with its counters untouched.
type DispatchSchedulerService struct {
	dispatchRepo   repositories.DispatchRepository
	taskRepo       repositories.DispatchedTaskRepository
	materializer   TaskMaterializerI
	tickWindow     time.Duration
	persistTimeout time.Duration
}

func NewDispatchSchedulerService(
	dispatchRepo repositories.DispatchRepository,
	taskRepo repositories.DispatchedTaskRepository,
	materializer TaskMaterializerI,
	tickWindow time.Duration,
	persistTimeout time.Duration,
) *DispatchSchedulerService {
	if persistTimeout <= 0 {
		persistTimeout = 10 * time.Second
	}
	return &DispatchSchedulerService{
		dispatchRepo:   dispatchRepo,
		taskRepo:       taskRepo,
		materializer:   materializer,
		tickWindow:     tickWindow,
		persistTimeout: persistTimeout,
	}
}

func (s *DispatchSchedulerService) ScheduleTick(ctx context.Context, now time.Time) (*TickReport, error) {
	logger := utils.LoggerFromContext(ctx)

	dispatches, err := s.dispatchRepo.GetActiveDispatches(ctx)
	if err != nil {
		return nil, err
	}

	report := &TickReport{}
	for _, dispatch := range dispatches {
		fired, duplicate, inserted, err := s.processDispatch(ctx, dispatch, now)
		if err != nil {
			logger.WithError(err).WithField("dispatch_id", dispatch.ID).
				Error("dispatch failed this tick")
			report.Failures = append(report.Failures, TickFailure{
				DispatchID: dispatch.ID,
				Error:      err.Error(),
			})
			continue
		}
		if duplicate {
			report.DuplicatesSkipped = append(report.DuplicatesSkipped, dispatch.ID)
		}
		if fired {
			report.Fired = append(report.Fired, dispatch.ID)
			report.TasksCreated += inserted
		}
	}

	if len(report.Failures) > 0 {
		failing := make([]uint, 0, len(report.Failures))
		for _, f := range report.Failures {
			failing = append(failing, f.DispatchID)
		}
		logger.WithField("dispatch_ids", failing).Warn("scheduler tick finished with failures")
	} else {
		logger.WithFields(logrus.Fields{
			"fired":         len(report.Fired),
			"tasks_created": report.TasksCreated,
		}).Info("scheduler tick finished")
	}

	return report, nil
}

func (s *DispatchSchedulerService) processDispatch(ctx context.Context, dispatch *models.Dispatch, now time.Time) (fired, duplicate bool, inserted int64, err error) {
	logger := utils.LoggerFromContext(ctx)

	if schedule.Exhausted(dispatch) {
		// The flip normally happens with the final firing. Seeing an
		// exhausted dispatch still active means its bound was edited down;
		// deactivate it so it stops loading.
		dispatch.Active = false
		if err := s.updateWithTimeout(ctx, dispatch); err != nil {
			return false, false, 0, err
		}
		logger.WithField("dispatch_id", dispatch.ID).Info("dispatch exhausted, deactivated")
		return false, false, 0, nil
	}

	rule, err := schedule.RuleFor(dispatch, s.tickWindow)
	if err != nil {
		return false, false, 0, err
	}

	firingInstant, due := rule.DueAt(now)
	if !due {
		return false, false, 0, nil
	}

	return s.fire(ctx, dispatch, firingInstant)
}

// fire materializes and persists one firing. The duplicate guard runs first:
// tick intervals may overlap a firing boundary more than once, and a crash
// after the tasks committed must not re-materialize them on retry.
func (s *DispatchSchedulerService) fire(ctx context.Context, dispatch *models.Dispatch, firingInstant time.Time) (fired, duplicate bool, inserted int64, err error) {
	logger := utils.LoggerFromContext(ctx)

	persistCtx, cancel := context.WithTimeout(ctx, s.persistTimeout)
	defer cancel()

	exists, err := s.taskRepo.TasksExistForFiring(persistCtx, dispatch.ID, firingInstant)
	if err != nil {
		return false, false, 0, err
	}
	if exists {
		logger.WithFields(logrus.Fields{
			"dispatch_id": dispatch.ID,
			"firing":      firingInstant,
		}).Info("duplicate firing detected, skipping materialization")

		// Tasks persisted but the counter never advanced: retry the counter
		// update standalone. The empty task list keeps the write a no-op on
		// the task side.
		if dispatch.LastFiredAt == nil || firingInstant.After(*dispatch.LastFiredAt) {
			if _, err := s.recordFiring(persistCtx, dispatch, firingInstant, nil); err != nil {
				return false, true, 0, err
			}
		}
		return false, true, 0, nil
	}

	tasks, err := s.materializer.Materialize(dispatch, firingInstant)
	if err != nil {
		return false, false, 0, err
	}

	inserted, err = s.recordFiring(persistCtx, dispatch, firingInstant, tasks)
	if err != nil {
		return false, false, 0, err
	}

	logger.WithFields(logrus.Fields{
		"dispatch_id":    dispatch.ID,
		"firing":         firingInstant,
		"tasks_created":  inserted,
		"executed_count": dispatch.ExecutedCount,
		"active":         dispatch.Active,
	}).Info("dispatch fired")

	return true, false, inserted, nil
}

// recordFiring commits the tasks and the counter increment in a single
// transaction and mirrors the new counters onto the in-memory dispatch.
func (s *DispatchSchedulerService) recordFiring(ctx context.Context, dispatch *models.Dispatch, firingInstant time.Time, tasks []models.DispatchedTask) (int64, error) {
	executedCount := dispatch.ExecutedCount + 1
	active := true
	if dispatch.RepeatCount != nil && *dispatch.RepeatCount > 0 && executedCount >= *dispatch.RepeatCount {
		active = false
	}

	inserted, err := s.dispatchRepo.RecordFiring(ctx, repositories.FiringRecord{
		DispatchID:    dispatch.ID,
		FiringInstant: firingInstant,
		ExecutedCount: executedCount,
		Active:        active,
		Tasks:         tasks,
	})
	if err != nil {
		return 0, err
	}

	dispatch.ExecutedCount = executedCount
	dispatch.Active = active
	if dispatch.LastFiredAt == nil || firingInstant.After(*dispatch.LastFiredAt) {
		firing := firingInstant
		dispatch.LastFiredAt = &firing
	}
	return inserted, nil
}

func (s *DispatchSchedulerService) updateWithTimeout(ctx context.Context, dispatch *models.Dispatch) error {
	persistCtx, cancel := context.WithTimeout(ctx, s.persistTimeout)
	defer cancel()
	return s.dispatchRepo.UpdateDispatch(persistCtx, dispatch)
}

// Backfill materializes one explicit firing instant for a dispatch, for
// recovering missed firings. It runs through the same duplicate guard and
// transactional write as a scheduled firing.
func (s *DispatchSchedulerService) Backfill(ctx context.Context, dispatchID uint, firingInstant time.Time) (int64, error) {
	dispatch, err := s.dispatchRepo.GetDispatchByID(ctx, dispatchID)
	if err != nil {
		return 0, err
	}

	if schedule.Exhausted(dispatch) {
		return 0, fmt.Errorf("dispatch %d has exhausted its %d allowed firings", dispatchID, *dispatch.RepeatCount)
	}

	fired, _, inserted, err := s.fire(ctx, dispatch, firingInstant)
	if err != nil {
		return 0, err
	}
	if !fired {
		return 0, nil
	}
	return inserted, nil
}
