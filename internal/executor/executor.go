// Package executor implements the Job Executor (spec §4.3, C3): it owns
// in-flight job state, schedules fully-concurrent dispatch, retries
// Transient failures with exponential backoff, runs each attempt through C2, and
// reports lifecycle events to a single consumer (C8) without ever
// dropping one.
package executor

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dolly-parseton/kql-panopticon/internal/export"
	"github.com/dolly-parseton/kql-panopticon/internal/job"
	"github.com/dolly-parseton/kql-panopticon/internal/queryclient"
)

// Executor schedules and runs jobs. There is no configured concurrency
// cap (spec §4.3: "deliberate — downstream is the bottleneck and already
// rate-limits"); Dispatch admits every job to Running as fast as the Go
// scheduler allows.
type Executor struct {
	client queryclient.Client
	writer *export.Writer
	queue  *eventQueue
}

// New returns an Executor that executes queries via client and writes
// results via writer.
func New(client queryclient.Client, writer *export.Writer) *Executor {
	return &Executor{client: client, writer: writer, queue: newEventQueue()}
}

// Drain returns every lifecycle event queued since the last Drain,
// without blocking (spec §5: "C8 drains every tick").
func (e *Executor) Drain() []Event {
	return e.queue.drainNonBlocking()
}

// Close releases the executor's event queue. Call it only after every
// Dispatch call's jobs are known to be terminal, or on shutdown — an
// abandoned job goroutine pushing to a closed queue is dropped silently,
// which is the accepted trade-off for ungraceful shutdown (spec §5).
func (e *Executor) Close() { e.queue.close() }

// Dispatch admits every job in jobs to Running concurrently and returns
// immediately; it does not block until jobs settle (spec §4.3: "fully
// concurrent... all N are admitted to Running as fast as the client
// library allows"). Lifecycle events are pushed to the queue as each job
// progresses; call Drain to observe them.
func (e *Executor) Dispatch(ctx context.Context, jobs []*job.Job) {
	g, _ := errgroup.WithContext(ctx)
	for _, j := range jobs {
		j := j
		g.Go(func() error {
			// Each job's own failure is reported via an event, never
			// propagated to errgroup, so one job's failure can never cancel
			// or short-circuit its siblings — they are independent (spec
			// §4.3: no configured concurrency cap, no shared cancellation).
			e.run(ctx, j)
			return nil
		})
	}
	// Dispatch itself does not wait; callers that need "block until all
	// terminal" (C9's run-pack) call Wait via RunAndWait instead.
	go g.Wait()
}

// RunAndWait is Dispatch plus a blocking wait for every job to settle,
// used by the CLI entry (C9 run-pack, spec §4.9: "dispatch all jobs
// through C3, block until all terminal").
func (e *Executor) RunAndWait(ctx context.Context, jobs []*job.Job) {
	g, _ := errgroup.WithContext(ctx)
	for _, j := range jobs {
		j := j
		g.Go(func() error {
			e.run(ctx, j)
			return nil
		})
	}
	_ = g.Wait()
}

func (e *Executor) run(ctx context.Context, j *job.Job) {
	now := time.Now
	j.MarkRunning(now())
	e.emit(j)

	attempt := 1
	maxAttempts := 1 + j.Context.Settings.RetryCount

	for {
		result, err := e.client.Execute(ctx, j.Context.WorkspaceID, j.Context.Query, j.Context.Settings.QueryTimeout(), j.Context.Settings.ParseDynamics)
		if err == nil {
			paths, writeErr := e.write(j, result)
			if writeErr != nil {
				j.MarkFailed(writeErr, now())
				e.emit(j)
				return
			}
			j.MarkCompleted(result.RowCount, paths, now())
			e.emit(j)
			return
		}

		if attempt < maxAttempts && isRetryable(err) {
			delay := backoff(attempt)
			if !sleep(ctx, delay) {
				j.MarkFailed(ctx.Err(), now())
				e.emit(j)
				return
			}
			attempt++
			j.MarkRunning(now()) // re-enter Running for the retry attempt (spec §4.3)
			e.emit(j)
			continue
		}

		j.MarkFailed(err, now())
		e.emit(j)
		return
	}
}

func (e *Executor) write(j *job.Job, result *queryclient.Result) ([]string, error) {
	req := export.Request{
		OutputFolder:     j.Context.Settings.OutputFolder,
		SubscriptionName: j.Context.SubscriptionName,
		WorkspaceName:    j.Context.WorkspaceName,
		DispatchTS:       j.DispatchTimestamp,
		JobName:          j.Name,
		QueryName:        j.Context.QueryName,
		ExportCSV:        j.Context.Settings.ExportCSV,
		ExportJSON:       j.Context.Settings.ExportJSON,
		ParseDynamics:    j.Context.Settings.ParseDynamics,
	}
	paths, err := e.writer.WriteResult(req, result)
	if err != nil {
		return nil, fmt.Errorf("write result for job %s: %w", j.ID, err)
	}
	return paths, nil
}

func (e *Executor) emit(j *job.Job) {
	e.queue.push(Event{JobID: j.ID, NewStatus: j.Status, Snapshot: *j})
}

// isRetryable reports whether err is queryclient.ErrTransient — the only
// retryable kind per spec §4.3 ("Timeout is not retried by C3... only
// Transient"; this is flagged as an Open Question in spec §9 but
// implemented as specified).
func isRetryable(err error) bool {
	var qerr *queryclient.Error
	if qe, ok := err.(*queryclient.Error); ok {
		qerr = qe
	}
	if qerr != nil {
		return qerr.Is(queryclient.ErrTransient)
	}
	return false
}

// backoff returns the delay before retry attempt k+1, given the current
// attempt number k (1-indexed): 2^(k-1) seconds -> 1, 2, 4, 8, ... (spec
// §4.3).
func backoff(attempt int) time.Duration {
	return time.Duration(1<<uint(attempt-1)) * time.Second
}

// sleep waits for d or ctx cancellation, returning false on cancellation.
func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
