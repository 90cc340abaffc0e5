package services_test

import (
	"testing"
	"time"

	"qcdispatch/src/models"
	"qcdispatch/src/schedule"
	"qcdispatch/src/services"
	"qcdispatch/src/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMaterialize(t *testing.T) {
	firing := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)
	dispatch := &models.Dispatch{
		ID:              7,
		Name:            "weld seam inspection",
		Description:     "check seams on line 2",
		FormIDs:         []string{"form-a", "form-b", "form-c"},
		TargetPersonnel: []string{"emp-1", "emp-2"},
	}

	materializer := services.NewTaskMaterializer(services.FixedOffsetDueDate(72*time.Hour), "scheduler")

	tasks, err := materializer.Materialize(dispatch, firing)
	require.NoError(t, err)
	require.Len(t, tasks, 6)

	seen := make(map[string]bool)
	for _, task := range tasks {
		assert.Equal(t, dispatch.ID, task.DispatchID)
		assert.Equal(t, dispatch.Name, task.Name)
		assert.Equal(t, dispatch.Description, task.Description)
		assert.True(t, task.DispatchTime.Equal(firing))
		assert.True(t, task.DueDate.Equal(firing.Add(72*time.Hour)))
		assert.Equal(t, utils.TaskStatusPending, task.Status)
		assert.Equal(t, "scheduler", task.CreatedBy)
		assert.NotEmpty(t, task.FiringKey)
		seen[task.FormID+"/"+task.PersonnelID] = true
	}
	assert.Len(t, seen, 6, "every form and personnel pair appears exactly once")
}

func TestMaterializeDeterministicFiringKeys(t *testing.T) {
	firing := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)
	dispatch := &models.Dispatch{
		ID:              7,
		Name:            "weld seam inspection",
		FormIDs:         []string{"form-a"},
		TargetPersonnel: []string{"emp-1"},
	}

	materializer := services.NewTaskMaterializer(services.FixedOffsetDueDate(time.Hour), "scheduler")

	first, err := materializer.Materialize(dispatch, firing)
	require.NoError(t, err)
	second, err := materializer.Materialize(dispatch, firing)
	require.NoError(t, err)
	require.Len(t, first, 1)
	require.Len(t, second, 1)

	assert.Equal(t, first[0].FiringKey, second[0].FiringKey,
		"same dispatch, firing, form and personnel must give the same key")

	later, err := materializer.Materialize(dispatch, firing.Add(time.Hour))
	require.NoError(t, err)
	assert.NotEqual(t, first[0].FiringKey, later[0].FiringKey,
		"a different firing instant must give a different key")
}

// Pairs whose concatenations coincide, like ("a","bc") and ("ab","c"), must
// still get distinct keys; a shared key would make the unique index swallow
// one task of the product.
func TestMaterializeKeysDistinguishAmbiguousPairs(t *testing.T) {
	firing := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)
	dispatch := &models.Dispatch{
		ID:              7,
		Name:            "weld seam inspection",
		FormIDs:         []string{"a", "ab"},
		TargetPersonnel: []string{"bc", "c"},
	}

	materializer := services.NewTaskMaterializer(services.FixedOffsetDueDate(time.Hour), "scheduler")

	tasks, err := materializer.Materialize(dispatch, firing)
	require.NoError(t, err)
	require.Len(t, tasks, 4)

	keys := make(map[string]string, len(tasks))
	for _, task := range tasks {
		pair := task.FormID + "/" + task.PersonnelID
		if other, dup := keys[task.FiringKey]; dup {
			t.Fatalf("pairs %s and %s share firing key %s", other, pair, task.FiringKey)
		}
		keys[task.FiringKey] = pair
	}
	assert.Len(t, keys, 4)
}

func TestMaterializeRejectsEmptyTargets(t *testing.T) {
	firing := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)
	materializer := services.NewTaskMaterializer(services.FixedOffsetDueDate(time.Hour), "scheduler")

	t.Run("no forms", func(t *testing.T) {
		_, err := materializer.Materialize(&models.Dispatch{
			TargetPersonnel: []string{"emp-1"},
		}, firing)
		require.Error(t, err)
		assert.True(t, schedule.IsConfigurationError(err))
	})

	t.Run("no personnel", func(t *testing.T) {
		_, err := materializer.Materialize(&models.Dispatch{
			FormIDs: []string{"form-a"},
		}, firing)
		require.Error(t, err)
		assert.True(t, schedule.IsConfigurationError(err))
	})
}
