package executor

import (
	"sync"

	"github.com/dolly-parseton/kql-panopticon/internal/job"
)

// Event is one lifecycle transition for one job (spec §4.3: "a stream of
// lifecycle events {job_id, new_status, payload}"). Snapshot is a value
// copy of the job at the moment of the transition — C3's internal job
// state is separate from C8's job vector (spec §5), so C8 applies
// snapshots rather than sharing a pointer.
type Event struct {
	JobID     string
	NewStatus job.Status
	Snapshot  job.Job
}

// eventQueue is an unbounded, ordered, point-to-point queue: one producer
// side (the executor's per-job goroutines) and one consumer (C8's drain
// loop). Events for a single job arrive in order; across jobs, no
// ordering is promised (spec §4.3, §5). It is never dropped — pushing
// always succeeds by growing the backing slice, which is how "unbounded"
// is expressed without an unbounded channel buffer.
type eventQueue struct {
	mu     sync.Mutex
	cond   *sync.Cond
	buf    []Event
	closed bool
}

func newEventQueue() *eventQueue {
	q := &eventQueue{}
	q.cond = sync.NewCond(&q.mu)
	return q
}

func (q *eventQueue) push(e Event) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.buf = append(q.buf, e)
	q.cond.Signal()
}

// pop blocks until an event is available or the queue is closed, in which
// case ok is false.
func (q *eventQueue) pop() (Event, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for len(q.buf) == 0 && !q.closed {
		q.cond.Wait()
	}
	if len(q.buf) == 0 && q.closed {
		return Event{}, false
	}
	e := q.buf[0]
	q.buf = q.buf[1:]
	return e, true
}

func (q *eventQueue) close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.closed = true
	q.cond.Broadcast()
}

// drainNonBlocking returns every currently queued event without waiting.
// This is what C8's tick loop uses: "C8 drains every tick" (spec §5),
// rather than blocking the UI's single-threaded event loop on a channel
// receive.
func (q *eventQueue) drainNonBlocking() []Event {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.buf) == 0 {
		return nil
	}
	out := q.buf
	q.buf = nil
	return out
}
