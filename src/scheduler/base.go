package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
)

// TickFunc runs one scheduler pass at the given reference instant.
type TickFunc func(ctx context.Context, now time.Time)

// TickRunner drives the dispatch scheduler on a single logical worker. At
// most one pass runs at a time: a tick that arrives while the previous one is
// still running is skipped, since concurrent passes over the same dispatch
// set could double-materialize.
type TickRunner struct {
	cronID cron.EntryID
	cron   *cron.Cron
	cancel chan struct{}
	busy   chan struct{}
	tick   TickFunc
}

func NewTickRunner(cronSpec string, tick TickFunc) (*TickRunner, error) {
	c := cron.New()
	runner := &TickRunner{
		cron:   c,
		cancel: make(chan struct{}),
		busy:   make(chan struct{}, 1),
		tick:   tick,
	}

	id, err := c.AddFunc(cronSpec, runner.runTick)
	if err != nil {
		return nil, err
	}

	runner.cronID = id
	return runner, nil
}

func (r *TickRunner) Start() {
	r.cron.Start()
}

func (r *TickRunner) runTick() {
	select {
	case <-r.cancel:
		return
	default:
	}

	r.Do(func() {
		r.tick(context.Background(), time.Now())
	})
}

// Do runs fn while holding the single-pass token. It reports whether fn ran;
// it did not when another pass was already in flight.
func (r *TickRunner) Do(fn func()) bool {
	select {
	case r.busy <- struct{}{}:
	default:
		return false
	}
	defer func() { <-r.busy }()

	fn()
	return true
}

// Stop halts further ticks and waits for an in-flight pass to finish, up to
// the context deadline.
func (r *TickRunner) Stop(ctx context.Context) error {
	r.cron.Remove(r.cronID)
	close(r.cancel)

	stopCtx := r.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
		return ctx.Err()
	}

	// The cron context covers jobs the cron started; a pass triggered
	// through Do is covered by draining the token.
	select {
	case r.busy <- struct{}{}:
		<-r.busy
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
