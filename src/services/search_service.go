package services

import (
	"context"
	"strconv"

	"qcdispatch/src/clients/formcatalog"
	"qcdispatch/src/models"
	"qcdispatch/src/repositories"
	"qcdispatch/src/search"
	"qcdispatch/src/utils"
)

type TaskSearchServiceI interface {
	CompileSearch(ctx context.Context, keyword string, dispatchID *uint) search.Predicate
	SearchTasks(ctx context.Context, keyword string, dispatchID *uint, page repositories.Pagination) ([]models.DispatchedTask, int, error)
}

// TaskSearchService runs the two-phase keyword search: first resolve the
// keyword against the external form catalog, then compile a local predicate
// joining the resolved IDs with the task text fields and the state
// vocabulary. When the catalog is unavailable the search degrades to the
// locally evaluable clauses instead of failing.
type TaskSearchService struct {
	catalog  formcatalog.ClientI
	compiler *search.Compiler
	tasks    repositories.DispatchedTaskRepository
}

func NewTaskSearchService(
	catalog formcatalog.ClientI,
	compiler *search.Compiler,
	tasks repositories.DispatchedTaskRepository,
) *TaskSearchService {
	return &TaskSearchService{
		catalog:  catalog,
		compiler: compiler,
		tasks:    tasks,
	}
}

func (s *TaskSearchService) CompileSearch(ctx context.Context, keyword string, dispatchID *uint) search.Predicate {
	var resolvedFormIDs []string
	if keyword != "" && s.catalog != nil {
		ids, err := s.catalog.FindNodeIDsByKeyword(ctx, keyword)
		if err != nil {
			utils.LoggerFromContext(ctx).WithError(err).
				Warn("form catalog unavailable, skipping form clause")
		} else {
			resolvedFormIDs = ids
		}
	}

	predicate := s.compiler.Compile(ctx, keyword, resolvedFormIDs)

	if dispatchID != nil {
		predicate = search.And(
			predicate,
			search.DispatchIDFilter(strconv.FormatUint(uint64(*dispatchID), 10)),
		)
	}

	return predicate
}

func (s *TaskSearchService) SearchTasks(ctx context.Context, keyword string, dispatchID *uint, page repositories.Pagination) ([]models.DispatchedTask, int, error) {
	predicate := s.CompileSearch(ctx, keyword, dispatchID)

	tasks, err := s.tasks.SearchTasks(ctx, predicate, page)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.tasks.CountTasks(ctx, predicate)
	if err != nil {
		return nil, 0, err
	}

	return tasks, total, nil
}
