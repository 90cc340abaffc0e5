package controllers

import (
	"qcdispatch/src/repositories"
	"qcdispatch/src/services"
)

type Controller struct {
	DispatchRepo  repositories.DispatchRepository
	SearchService services.TaskSearchServiceI
}

func NewController(dispatchRepo repositories.DispatchRepository, searchService services.TaskSearchServiceI) *Controller {
	return &Controller{
		DispatchRepo:  dispatchRepo,
		SearchService: searchService,
	}
}
