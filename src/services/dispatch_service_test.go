package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"qcdispatch/src/models"
	"qcdispatch/src/repositories"
	"qcdispatch/src/search"
	"qcdispatch/src/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// fakeStore backs both repository interfaces with in-memory state so the
// scheduler service can be exercised without a database. RecordFiring honors
// the firing-key uniqueness the real repository gets from its index.
type fakeStore struct {
	dispatches map[uint]*models.Dispatch
	tasks      []models.DispatchedTask
	recordErr  map[uint]error
}

func newFakeStore(dispatches ...*models.Dispatch) *fakeStore {
	store := &fakeStore{
		dispatches: make(map[uint]*models.Dispatch),
		recordErr:  make(map[uint]error),
	}
	for _, d := range dispatches {
		copied := *d
		store.dispatches[d.ID] = &copied
	}
	return store
}

func (s *fakeStore) GetActiveDispatches(ctx context.Context) ([]*models.Dispatch, error) {
	var active []*models.Dispatch
	for _, d := range s.dispatches {
		if d.Active && !d.Deleted {
			active = append(active, d)
		}
	}
	return active, nil
}

func (s *fakeStore) GetAllDispatches(ctx context.Context) ([]*models.Dispatch, error) {
	var all []*models.Dispatch
	for _, d := range s.dispatches {
		all = append(all, d)
	}
	return all, nil
}

func (s *fakeStore) GetDispatchByID(ctx context.Context, id uint) (*models.Dispatch, error) {
	d, ok := s.dispatches[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return d, nil
}

func (s *fakeStore) CreateDispatch(ctx context.Context, dispatch *models.Dispatch) error {
	s.dispatches[dispatch.ID] = dispatch
	return nil
}

func (s *fakeStore) UpdateDispatch(ctx context.Context, dispatch *models.Dispatch) error {
	if _, ok := s.dispatches[dispatch.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	copied := *dispatch
	s.dispatches[dispatch.ID] = &copied
	return nil
}

func (s *fakeStore) SoftDeleteDispatch(ctx context.Context, id uint) error {
	d, ok := s.dispatches[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	d.Deleted = true
	d.Active = false
	return nil
}

func (s *fakeStore) RecordFiring(ctx context.Context, record repositories.FiringRecord) (int64, error) {
	if err := s.recordErr[record.DispatchID]; err != nil {
		return 0, err
	}

	existing := make(map[string]bool)
	for _, task := range s.tasks {
		existing[task.FiringKey] = true
	}

	var inserted int64
	for _, task := range record.Tasks {
		if existing[task.FiringKey] {
			continue
		}
		s.tasks = append(s.tasks, task)
		inserted++
	}

	d := s.dispatches[record.DispatchID]
	d.ExecutedCount = record.ExecutedCount
	d.Active = record.Active
	if d.LastFiredAt == nil || record.FiringInstant.After(*d.LastFiredAt) {
		firing := record.FiringInstant
		d.LastFiredAt = &firing
	}
	return inserted, nil
}

func (s *fakeStore) BulkInsertTasks(ctx context.Context, tasks []models.DispatchedTask) (int64, error) {
	s.tasks = append(s.tasks, tasks...)
	return int64(len(tasks)), nil
}

func (s *fakeStore) TasksExistForFiring(ctx context.Context, dispatchID uint, firingInstant time.Time) (bool, error) {
	for _, task := range s.tasks {
		if task.DispatchID == dispatchID && task.DispatchTime.Equal(firingInstant) {
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeStore) SearchTasks(ctx context.Context, predicate search.Predicate, page repositories.Pagination) ([]models.DispatchedTask, error) {
	return nil, nil
}

func (s *fakeStore) CountTasks(ctx context.Context, predicate search.Predicate) (int, error) {
	return 0, nil
}

func newScheduler(store *fakeStore) *services.DispatchSchedulerService {
	materializer := services.NewTaskMaterializer(services.FixedOffsetDueDate(72*time.Hour), "scheduler")
	return services.NewDispatchSchedulerService(store, store, materializer, time.Minute, time.Second)
}

func TestScheduleTickIntervalWithRepeatCount(t *testing.T) {
	start := time.Date(2024, 3, 4, 8, 0, 0, 0, time.UTC)
	repeat := 3
	store := newFakeStore(&models.Dispatch{
		ID:              1,
		Name:            "hourly line inspection",
		ScheduleType:    models.ScheduleTypeInterval,
		IntervalMinutes: 60,
		StartTime:       &start,
		RepeatCount:     &repeat,
		FormIDs:         []string{"form-a", "form-b"},
		TargetPersonnel: []string{"emp-1"},
		Active:          true,
	})
	scheduler := newScheduler(store)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		now := start.Add(time.Duration(i) * time.Hour)
		report, err := scheduler.ScheduleTick(ctx, now)
		require.NoError(t, err)
		require.Equal(t, []uint{1}, report.Fired)
		assert.Equal(t, int64(2), report.TasksCreated)
	}

	dispatch := store.dispatches[1]
	assert.Equal(t, 3, dispatch.ExecutedCount)
	assert.False(t, dispatch.Active, "the final allowed firing deactivates the dispatch")
	assert.Len(t, store.tasks, 6)

	// A fourth interval elapses but the dispatch is no longer active.
	report, err := scheduler.ScheduleTick(ctx, start.Add(3*time.Hour))
	require.NoError(t, err)
	assert.Empty(t, report.Fired)
	assert.Len(t, store.tasks, 6)
}

func TestScheduleTickIsIdempotentWithinAWindow(t *testing.T) {
	start := time.Date(2024, 3, 4, 8, 0, 0, 0, time.UTC)
	store := newFakeStore(&models.Dispatch{
		ID:              1,
		Name:            "hourly line inspection",
		ScheduleType:    models.ScheduleTypeInterval,
		IntervalMinutes: 60,
		StartTime:       &start,
		FormIDs:         []string{"form-a"},
		TargetPersonnel: []string{"emp-1"},
		Active:          true,
	})
	scheduler := newScheduler(store)
	ctx := context.Background()

	report, err := scheduler.ScheduleTick(ctx, start)
	require.NoError(t, err)
	require.Equal(t, []uint{1}, report.Fired)
	require.Len(t, store.tasks, 1)

	// Reset the in-memory marker to simulate a second worker that never saw
	// the first pass. The persisted tasks are the source of truth.
	store.dispatches[1].LastFiredAt = nil
	store.dispatches[1].ExecutedCount = 0

	report, err = scheduler.ScheduleTick(ctx, start.Add(30*time.Second))
	require.NoError(t, err)
	assert.Empty(t, report.Fired)
	assert.Equal(t, []uint{1}, report.DuplicatesSkipped)
	assert.Len(t, store.tasks, 1, "no tasks are re-materialized for a seen firing")

	// The duplicate path repairs the counter that the lost pass never wrote.
	assert.Equal(t, 1, store.dispatches[1].ExecutedCount)
}

func TestScheduleTickFailureIsolation(t *testing.T) {
	start := time.Date(2024, 3, 4, 8, 0, 0, 0, time.UTC)
	store := newFakeStore(
		&models.Dispatch{
			ID:              1,
			Name:            "failing dispatch",
			ScheduleType:    models.ScheduleTypeInterval,
			IntervalMinutes: 60,
			StartTime:       &start,
			FormIDs:         []string{"form-a"},
			TargetPersonnel: []string{"emp-1"},
			Active:          true,
		},
		&models.Dispatch{
			ID:              2,
			Name:            "healthy dispatch",
			ScheduleType:    models.ScheduleTypeInterval,
			IntervalMinutes: 60,
			StartTime:       &start,
			FormIDs:         []string{"form-a"},
			TargetPersonnel: []string{"emp-1"},
			Active:          true,
		},
	)
	store.recordErr[1] = errors.New("connection reset")
	scheduler := newScheduler(store)
	ctx := context.Background()

	report, err := scheduler.ScheduleTick(ctx, start)
	require.NoError(t, err)
	require.Len(t, report.Failures, 1)
	assert.Equal(t, uint(1), report.Failures[0].DispatchID)
	assert.Equal(t, []uint{2}, report.Fired)
	assert.Equal(t, 0, store.dispatches[1].ExecutedCount, "a failed dispatch keeps its counters")

	// Once the storage error clears, the same firing is claimed on retry.
	delete(store.recordErr, 1)
	report, err = scheduler.ScheduleTick(ctx, start.Add(30*time.Second))
	require.NoError(t, err)
	assert.Equal(t, []uint{1}, report.Fired)
	assert.Equal(t, 1, store.dispatches[1].ExecutedCount)
}

func TestScheduleTickMalformedDispatch(t *testing.T) {
	start := time.Date(2024, 3, 4, 8, 0, 0, 0, time.UTC)
	store := newFakeStore(&models.Dispatch{
		ID:              1,
		Name:            "no personnel",
		ScheduleType:    models.ScheduleTypeInterval,
		IntervalMinutes: 60,
		StartTime:       &start,
		FormIDs:         []string{"form-a"},
		Active:          true,
	})
	scheduler := newScheduler(store)

	report, err := scheduler.ScheduleTick(context.Background(), start)
	require.NoError(t, err)
	require.Len(t, report.Failures, 1)
	assert.Equal(t, uint(1), report.Failures[0].DispatchID)
	assert.Empty(t, store.tasks)
}

func TestScheduleTickDeactivatesEditedDownDispatch(t *testing.T) {
	start := time.Date(2024, 3, 4, 8, 0, 0, 0, time.UTC)
	one := 1
	store := newFakeStore(&models.Dispatch{
		ID:              1,
		Name:            "edited down",
		ScheduleType:    models.ScheduleTypeInterval,
		IntervalMinutes: 60,
		StartTime:       &start,
		RepeatCount:     &one,
		ExecutedCount:   2,
		FormIDs:         []string{"form-a"},
		TargetPersonnel: []string{"emp-1"},
		Active:          true,
	})
	scheduler := newScheduler(store)

	report, err := scheduler.ScheduleTick(context.Background(), start)
	require.NoError(t, err)
	assert.Empty(t, report.Fired)
	assert.Empty(t, report.Failures)
	assert.False(t, store.dispatches[1].Active)
	assert.Empty(t, store.tasks)
}

func TestBackfill(t *testing.T) {
	start := time.Date(2024, 3, 4, 8, 0, 0, 0, time.UTC)
	store := newFakeStore(&models.Dispatch{
		ID:              1,
		Name:            "hourly line inspection",
		ScheduleType:    models.ScheduleTypeInterval,
		IntervalMinutes: 60,
		StartTime:       &start,
		FormIDs:         []string{"form-a", "form-b"},
		TargetPersonnel: []string{"emp-1"},
		Active:          true,
	})
	scheduler := newScheduler(store)
	ctx := context.Background()

	missed := start.Add(5 * time.Hour)
	inserted, err := scheduler.Backfill(ctx, 1, missed)
	require.NoError(t, err)
	assert.Equal(t, int64(2), inserted)
	assert.Equal(t, 1, store.dispatches[1].ExecutedCount)

	t.Run("backfilling the same instant is a no-op", func(t *testing.T) {
		inserted, err := scheduler.Backfill(ctx, 1, missed)
		require.NoError(t, err)
		assert.Zero(t, inserted)
		assert.Len(t, store.tasks, 2)
	})

	t.Run("a past backfill never moves last_fired_at backwards", func(t *testing.T) {
		latest := *store.dispatches[1].LastFiredAt
		earlier := start.Add(2 * time.Hour)

		inserted, err := scheduler.Backfill(ctx, 1, earlier)
		require.NoError(t, err)
		assert.Equal(t, int64(2), inserted)
		assert.True(t, store.dispatches[1].LastFiredAt.Equal(latest))
	})

	t.Run("unknown dispatch", func(t *testing.T) {
		_, err := scheduler.Backfill(ctx, 99, missed)
		assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	})

	t.Run("exhausted dispatch is rejected", func(t *testing.T) {
		two := 2
		store.dispatches[1].RepeatCount = &two
		store.dispatches[1].ExecutedCount = 2

		_, err := scheduler.Backfill(ctx, 1, start.Add(9*time.Hour))
		require.Error(t, err)
	})
}
