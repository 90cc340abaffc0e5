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
)

type staticVocabulary struct {
	labels map[string]string
}

func (v *staticVocabulary) AllStateCodeToLabel(ctx context.Context) (map[string]string, error) {
	return v.labels, nil
}

type fakeCatalog struct {
	ids      []string
	err      error
	keywords []string
}

func (c *fakeCatalog) FindNodeIDsByKeyword(ctx context.Context, keyword string) ([]string, error) {
	c.keywords = append(c.keywords, keyword)
	return c.ids, c.err
}

type fakeTaskSearchRepo struct {
	lastPredicate search.Predicate
	lastPage      repositories.Pagination
	tasks         []models.DispatchedTask
	total         int
}

func (r *fakeTaskSearchRepo) BulkInsertTasks(ctx context.Context, tasks []models.DispatchedTask) (int64, error) {
	return 0, nil
}

func (r *fakeTaskSearchRepo) TasksExistForFiring(ctx context.Context, dispatchID uint, firingInstant time.Time) (bool, error) {
	return false, nil
}

func (r *fakeTaskSearchRepo) SearchTasks(ctx context.Context, predicate search.Predicate, page repositories.Pagination) ([]models.DispatchedTask, error) {
	r.lastPredicate = predicate
	r.lastPage = page
	return r.tasks, nil
}

func (r *fakeTaskSearchRepo) CountTasks(ctx context.Context, predicate search.Predicate) (int, error) {
	return r.total, nil
}

func newSearchService(catalog *fakeCatalog, repo *fakeTaskSearchRepo) *services.TaskSearchService {
	compiler := search.NewCompiler(&staticVocabulary{labels: map[string]string{
		"PENDING":     "Pending",
		"IN_PROGRESS": "In Progress",
		"COMPLETED":   "Completed",
	}})
	return services.NewTaskSearchService(catalog, compiler, repo)
}

func TestCompileSearchResolvesFormCatalog(t *testing.T) {
	catalog := &fakeCatalog{ids: []string{"form-a"}}
	service := newSearchService(catalog, &fakeTaskSearchRepo{})

	predicate := service.CompileSearch(context.Background(), "seam", nil)

	require.Equal(t, []string{"seam"}, catalog.keywords)
	assert.True(t, predicate.Matches(map[search.Field]string{
		search.FieldFormID: "form-a",
	}), "a task on a resolved form matches even without keyword text")
}

func TestCompileSearchDegradesWhenCatalogFails(t *testing.T) {
	catalog := &fakeCatalog{err: errors.New("connection refused")}
	service := newSearchService(catalog, &fakeTaskSearchRepo{})

	predicate := service.CompileSearch(context.Background(), "seam", nil)

	assert.True(t, predicate.Matches(map[search.Field]string{
		search.FieldName: "weld seam inspection",
	}), "text clauses survive a catalog outage")
	assert.False(t, predicate.Matches(map[search.Field]string{
		search.FieldFormID: "form-a",
	}), "no form clause without resolved IDs")
}

func TestCompileSearchSkipsCatalogForBlankKeyword(t *testing.T) {
	catalog := &fakeCatalog{}
	service := newSearchService(catalog, &fakeTaskSearchRepo{})

	predicate := service.CompileSearch(context.Background(), "", nil)

	assert.Empty(t, catalog.keywords, "a blank keyword never hits the catalog")
	assert.Equal(t, search.KindTrue, predicate.Kind)
}

func TestCompileSearchWithDispatchScope(t *testing.T) {
	service := newSearchService(&fakeCatalog{}, &fakeTaskSearchRepo{})

	dispatchID := uint(7)
	predicate := service.CompileSearch(context.Background(), "", &dispatchID)

	assert.True(t, predicate.Matches(map[search.Field]string{search.FieldDispatchID: "7"}))
	assert.False(t, predicate.Matches(map[search.Field]string{search.FieldDispatchID: "8"}))
}

func TestSearchTasksPassesPredicateAndPage(t *testing.T) {
	repo := &fakeTaskSearchRepo{
		tasks: []models.DispatchedTask{{ID: 1, Name: "weld seam inspection"}},
		total: 12,
	}
	service := newSearchService(&fakeCatalog{}, repo)

	page := repositories.Pagination{Limit: 10, Offset: 20, SortBy: "due_date"}
	tasks, total, err := service.SearchTasks(context.Background(), "seam", nil, page)
	require.NoError(t, err)

	assert.Len(t, tasks, 1)
	assert.Equal(t, 12, total)
	assert.Equal(t, page, repo.lastPage)
	assert.Equal(t, search.KindOr, repo.lastPredicate.Kind)
}
