package controllers

import (
	"context"
	"net/http"
	"time"

	"qcdispatch/src/services"
	"qcdispatch/src/utils"
)

// TriggerTick runs one scheduler pass immediately, for external cron/timer
// integration. It shares the single-pass token with the scheduled loop, so a
// trigger during a running pass is rejected rather than run concurrently.
func (c *Controller) TriggerTick(ctx context.Context, now time.Time) (*services.TickReport, error) {
	ctx = utils.WithLogger(ctx, c.logger)

	var report *services.TickReport
	var tickErr error
	ran := c.Runner.Do(func() {
		report, tickErr = c.Scheduler.ScheduleTick(ctx, now)
	})
	if !ran {
		return nil, utils.NewHTTPError(http.StatusConflict, "a scheduler pass is already running")
	}
	if tickErr != nil {
		return nil, tickErr
	}
	return report, nil
}

// Backfill materializes one explicit firing instant for a dispatch.
func (c *Controller) Backfill(ctx context.Context, dispatchID uint, firingInstant time.Time) (int64, error) {
	ctx = utils.WithLogger(ctx, c.logger)

	var inserted int64
	var err error
	ran := c.Runner.Do(func() {
		inserted, err = c.Scheduler.Backfill(ctx, dispatchID, firingInstant)
	})
	if !ran {
		return 0, utils.NewHTTPError(http.StatusConflict, "a scheduler pass is already running")
	}
	return inserted, err
}
