package poller

import (
	"context"
	"errors"
	"testing"
	"time"

	"querychat/cli/internal/backend"
	qerrors "querychat/cli/internal/errors"
)

func TestNext(t *testing.T) {
	tests := []struct {
		name       string
		job        backend.SyncJob
		wantWait   bool
		wantResult bool
		wantErrMsg string
	}{
		{
			name:     "running keeps polling",
			job:      backend.SyncJob{Status: backend.JobRunning},
			wantWait: true,
		},
		{
			name:     "done without result keeps polling",
			job:      backend.SyncJob{Status: backend.JobDone},
			wantWait: true,
		},
		{
			name: "done with result is terminal",
			job: backend.SyncJob{
				Status: backend.JobDone,
				Result: &backend.SyncResult{Tables: 5, Chunks: 120, VectorsUpserted: 120},
			},
			wantResult: true,
		},
		{
			name:       "failed carries the job error",
			job:        backend.SyncJob{Status: backend.JobFailed, Error: "embedding service unavailable"},
			wantErrMsg: "embedding service unavailable",
		},
		{
			name:       "failed without detail gets a generic message",
			job:        backend.SyncJob{Status: backend.JobFailed},
			wantErrMsg: "sync failed",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Next(&tt.job)
			if tt.wantWait {
				if d.Terminal {
					t.Fatalf("Next() = %+v, want non-terminal", d)
				}
				if d.Wait != Interval {
					t.Errorf("Wait = %v, want %v", d.Wait, Interval)
				}
				return
			}
			if !d.Terminal {
				t.Fatalf("Next() = %+v, want terminal", d)
			}
			if tt.wantResult {
				if d.Result == nil || d.Err != nil {
					t.Errorf("Next() = %+v, want result without error", d)
				}
				return
			}
			if d.Err == nil {
				t.Fatal("Next() terminal failure without error")
			}
			if qerrors.KindOf(d.Err) != qerrors.JobFailed {
				t.Errorf("kind = %v, want JobFailed", qerrors.KindOf(d.Err))
			}
			if got := qerrors.UserMessage(d.Err); got != tt.wantErrMsg {
				t.Errorf("UserMessage() = %q, want %q", got, tt.wantErrMsg)
			}
		})
	}
}

// scriptedStatus replays a fixed sequence of job snapshots, repeating the last
// one if polled past the end.
func scriptedStatus(jobs ...backend.SyncJob) StatusFunc {
	i := 0
	return func(ctx context.Context, jobID string) (*backend.SyncJob, error) {
		j := jobs[i]
		if i < len(jobs)-1 {
			i++
		}
		return &j, nil
	}
}

// recordingSleep returns a SleepFunc that advances instantly and records
// every requested delay.
func recordingSleep(slept *[]time.Duration) SleepFunc {
	return func(ctx context.Context, d time.Duration) error {
		*slept = append(*slept, d)
		return nil
	}
}

func TestWaitPollsUntilDone(t *testing.T) {
	var slept []time.Duration
	p := New(scriptedStatus(
		backend.SyncJob{JobID: "j1", Status: backend.JobRunning},
		backend.SyncJob{JobID: "j1", Status: backend.JobRunning},
		backend.SyncJob{
			JobID:  "j1",
			Status: backend.JobDone,
			Result: &backend.SyncResult{Tables: 5, Chunks: 120, VectorsUpserted: 120},
		},
	)).WithSleep(recordingSleep(&slept))

	res, err := p.Wait(context.Background(), "j1")
	if err != nil {
		t.Fatalf("Wait() error = %v", err)
	}
	if res == nil || res.Tables != 5 || res.VectorsUpserted != 120 {
		t.Errorf("Wait() = %+v", res)
	}
	if len(slept) != 2 {
		t.Fatalf("slept %d times, want 2", len(slept))
	}
	for _, d := range slept {
		if d != Interval {
			t.Errorf("slept %v, want %v", d, Interval)
		}
	}
}

func TestWaitSurfacesJobFailure(t *testing.T) {
	var slept []time.Duration
	p := New(scriptedStatus(
		backend.SyncJob{JobID: "j1", Status: backend.JobRunning},
		backend.SyncJob{JobID: "j1", Status: backend.JobFailed, Error: "embedding service unavailable"},
	)).WithSleep(recordingSleep(&slept))

	res, err := p.Wait(context.Background(), "j1")
	if res != nil {
		t.Errorf("Wait() result = %+v, want nil", res)
	}
	if err == nil || qerrors.UserMessage(err) != "embedding service unavailable" {
		t.Errorf("Wait() error = %v", err)
	}
}

func TestWaitReturnsStatusError(t *testing.T) {
	wantErr := errors.New("server unreachable")
	p := New(func(ctx context.Context, jobID string) (*backend.SyncJob, error) {
		return nil, wantErr
	})

	_, err := p.Wait(context.Background(), "j1")
	if !errors.Is(err, wantErr) {
		t.Errorf("Wait() error = %v, want %v", err, wantErr)
	}
}

func TestWaitStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	p := New(scriptedStatus(backend.SyncJob{Status: backend.JobRunning})).
		WithSleep(func(ctx context.Context, d time.Duration) error {
			cancel()
			return ctx.Err()
		})

	_, err := p.Wait(ctx, "j1")
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Wait() error = %v, want context.Canceled", err)
	}
}
