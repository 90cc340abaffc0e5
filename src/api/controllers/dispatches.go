package controllers

import (
	"context"
	"time"

	"qcdispatch/src/models"
	"qcdispatch/src/schedule"
	"qcdispatch/src/schemas"
	"qcdispatch/src/utils"
)

func (c *Controller) GetAllDispatches(ctx context.Context) ([]*schemas.DispatchResponse, error) {
	dispatches, err := c.DispatchRepo.GetAllDispatches(ctx)
	if err != nil {
		return nil, err
	}

	responses := make([]*schemas.DispatchResponse, 0, len(dispatches))
	for _, dispatch := range dispatches {
		responses = append(responses, schemas.NewDispatchResponse(dispatch))
	}
	return responses, nil
}

func (c *Controller) GetDispatchByID(ctx context.Context, id uint) (*schemas.DispatchResponse, error) {
	dispatch, err := c.DispatchRepo.GetDispatchByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return schemas.NewDispatchResponse(dispatch), nil
}

func (c *Controller) CreateDispatch(ctx context.Context, req *schemas.CreateDispatchRequest) (*schemas.DispatchResponse, error) {
	dispatch := &models.Dispatch{
		Name:            req.Name,
		Description:     req.Description,
		ScheduleType:    models.ScheduleType(req.ScheduleType),
		SpecificDays:    req.SpecificDays,
		TimeOfDay:       req.TimeOfDay,
		TimeZone:        req.TimeZone,
		IntervalMinutes: req.IntervalMinutes,
		StartTime:       req.StartTime,
		RepeatCount:     req.RepeatCount,
		FormIDs:         req.FormIDs,
		TargetPersonnel: req.TargetPersonnel,
		Active:          true,
	}

	if err := validateDispatch(dispatch); err != nil {
		return nil, err
	}

	if err := c.DispatchRepo.CreateDispatch(ctx, dispatch); err != nil {
		return nil, err
	}
	return schemas.NewDispatchResponse(dispatch), nil
}

func (c *Controller) UpdateDispatch(ctx context.Context, req *schemas.UpdateDispatchRequest) (*schemas.DispatchResponse, error) {
	dispatch, err := c.DispatchRepo.GetDispatchByID(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	// Update fields only if they are provided
	if req.Name != nil {
		dispatch.Name = *req.Name
	}
	if req.Description != nil {
		dispatch.Description = *req.Description
	}
	if req.ScheduleType != nil {
		dispatch.ScheduleType = models.ScheduleType(*req.ScheduleType)
	}
	if req.SpecificDays != nil {
		dispatch.SpecificDays = req.SpecificDays
	}
	if req.TimeOfDay != nil {
		dispatch.TimeOfDay = *req.TimeOfDay
	}
	if req.TimeZone != nil {
		dispatch.TimeZone = *req.TimeZone
	}
	if req.IntervalMinutes != nil {
		dispatch.IntervalMinutes = *req.IntervalMinutes
	}
	if req.StartTime != nil {
		dispatch.StartTime = req.StartTime
	}
	if req.RepeatCount != nil {
		dispatch.RepeatCount = req.RepeatCount
	}
	if req.FormIDs != nil {
		dispatch.FormIDs = req.FormIDs
	}
	if req.TargetPersonnel != nil {
		dispatch.TargetPersonnel = req.TargetPersonnel
	}
	if req.Active != nil {
		dispatch.Active = *req.Active
	}

	if err := validateDispatch(dispatch); err != nil {
		return nil, err
	}

	if err := c.DispatchRepo.UpdateDispatch(ctx, dispatch); err != nil {
		return nil, err
	}
	return schemas.NewDispatchResponse(dispatch), nil
}

func (c *Controller) DeleteDispatch(ctx context.Context, id uint) error {
	return c.DispatchRepo.SoftDeleteDispatch(ctx, id)
}

// validateDispatch fails fast on a configuration the scheduler could never
// fire, so malformed dispatches are rejected at the edge instead of failing
// every tick.
func validateDispatch(dispatch *models.Dispatch) error {
	if _, err := schedule.RuleFor(dispatch, time.Minute); err != nil {
		if schedule.IsConfigurationError(err) {
			return utils.BadRequest(err.Error())
		}
		return err
	}
	return nil
}
