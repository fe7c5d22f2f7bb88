// Package poller drives a background schema-sync job from submission to its
// terminal state via repeated status queries with a fixed delay.
//
// The decision logic is a pure function over a single status snapshot so it
// can be tested without timers; the driver loop owns the suspension and takes
// an injectable sleep so tests can run against a virtual clock.
package poller

import (
	"context"
	"time"

	"querychat/cli/internal/backend"
	qerrors "querychat/cli/internal/errors"
)

// Interval is the fixed delay between status polls.
const Interval = 1500 * time.Millisecond

// Decision is the poller's verdict on one status snapshot.
// Exactly one of the three outcomes applies: wait and poll again,
// terminal success (Result set), or terminal failure (Err set).
type Decision struct {
	Wait     time.Duration
	Result   *backend.SyncResult
	Err      error
	Terminal bool
}

// Next maps a job snapshot to the poller's next action. A done status without
// a result is not yet terminal; polling continues until the result appears.
func Next(job *backend.SyncJob) Decision {
	switch job.Status {
	case backend.JobDone:
		if job.Result != nil {
			return Decision{Terminal: true, Result: job.Result}
		}
	case backend.JobFailed:
		msg := job.Error
		if msg == "" {
			msg = "sync failed"
		}
		return Decision{Terminal: true, Err: qerrors.New(qerrors.JobFailed, msg)}
	}
	return Decision{Wait: Interval}
}

// StatusFunc looks up the current snapshot of a job.
type StatusFunc func(ctx context.Context, jobID string) (*backend.SyncJob, error)

// SleepFunc suspends for d or until the context is cancelled.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Poller runs the poll loop for one job at a time. It carries no per-job
// state; mutual exclusion between concurrent syncs is the caller's concern.
type Poller struct {
	status StatusFunc
	sleep  SleepFunc
}

// New creates a poller over the given status lookup with a real clock.
func New(status StatusFunc) *Poller {
	return &Poller{status: status, sleep: sleepCtx}
}

// WithSleep replaces the suspension primitive; tests pass a virtual clock.
func (p *Poller) WithSleep(sleep SleepFunc) *Poller {
	p.sleep = sleep
	return p
}

// Wait polls the job until a terminal status is observed and returns the
// carried result or failure. There is no attempt ceiling; cancelling ctx is
// the only other way out.
func (p *Poller) Wait(ctx context.Context, jobID string) (*backend.SyncResult, error) {
	for {
		job, err := p.status(ctx, jobID)
		if err != nil {
			return nil, err
		}
		d := Next(job)
		if d.Terminal {
			return d.Result, d.Err
		}
		if err := p.sleep(ctx, d.Wait); err != nil {
			return nil, err
		}
	}
}

// sleepCtx is the real-clock SleepFunc.
func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
