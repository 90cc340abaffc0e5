package controllers

import (
	"context"
	"time"

	"qcdispatch/src/scheduler"
	"qcdispatch/src/services"
	"qcdispatch/src/utils"

	"github.com/sirupsen/logrus"
)

type Controller struct {
	Scheduler services.DispatchSchedulerServiceI
	Runner    *scheduler.TickRunner
	logger    *logrus.Logger
}

func NewController(schedulerService services.DispatchSchedulerServiceI, cronSpec string, logger *logrus.Logger) (*Controller, error) {
	controller := &Controller{
		Scheduler: schedulerService,
		logger:    logger,
	}

	runner, err := scheduler.NewTickRunner(cronSpec, controller.runScheduledTick)
	if err != nil {
		return nil, err
	}
	controller.Runner = runner
	return controller, nil
}

// Start begins the scheduled tick loop.
func (c *Controller) Start() {
	c.Runner.Start()
}

// Stop halts further ticks, letting an in-flight pass finish.
func (c *Controller) Stop(ctx context.Context) error {
	return c.Runner.Stop(ctx)
}

func (c *Controller) runScheduledTick(ctx context.Context, now time.Time) {
	ctx = utils.WithLogger(ctx, c.logger)
	if _, err := c.Scheduler.ScheduleTick(ctx, now); err != nil {
		c.logger.WithError(err).Error("scheduler tick failed")
	}
}
