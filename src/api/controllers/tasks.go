package controllers

import (
	"context"

	"qcdispatch/src/repositories"
	"qcdispatch/src/schemas"
)

// SearchTasks runs a keyword search over dispatched tasks, optionally scoped
// to one dispatch. page is 1-based.
func (c *Controller) SearchTasks(ctx context.Context, keyword string, dispatchID *uint, page, pageSize int, sortBy string, sortDesc bool) (*schemas.SearchTasksResponse, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 50
	}

	tasks, total, err := c.SearchService.SearchTasks(ctx, keyword, dispatchID, repositories.Pagination{
		Limit:    pageSize,
		Offset:   (page - 1) * pageSize,
		SortBy:   sortBy,
		SortDesc: sortDesc,
	})
	if err != nil {
		return nil, err
	}

	return schemas.NewSearchTasksResponse(tasks, total, page, pageSize), nil
}
