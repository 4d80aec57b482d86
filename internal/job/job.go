// Package job defines the Job record and its status state machine (spec
// §3 "Job", §4.3 C3, §8 invariant: "the sequence of observed statuses is a
// prefix of Queued, Running, Completed|Failed, with possible Running
// repetitions during retry"). Status is a tagged variant (a typed int with
// a String method), not a bare string or int comparison, following the
// ViewMode enum pattern in the teacher's
// services/code_buddy/tui/diff_model.go.
package job

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dolly-parseton/kql-panopticon/internal/settings"
)

// Status is the job lifecycle state. Transitions are monotonic: Queued ->
// Running -> {Completed|Failed}, with Running re-entered only by an
// in-place retry (spec §4.3). There is no Cancelled state (out of scope).
type Status int

const (
	Queued Status = iota
	Running
	Completed
	Failed
)

func (s Status) String() string {
	switch s {
	case Queued:
		return "Queued"
	case Running:
		return "Running"
	case Completed:
		return "Completed"
	case Failed:
		return "Failed"
	default:
		return "Unknown"
	}
}

// IsTerminal reports whether s is Completed or Failed.
func (s Status) IsTerminal() bool { return s == Completed || s == Failed }

func (s Status) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *Status) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	switch str {
	case "Queued":
		*s = Queued
	case "Running":
		*s = Running
	case "Completed":
		*s = Completed
	case "Failed":
		*s = Failed
	default:
		return fmt.Errorf("job: unknown status %q", str)
	}
	return nil
}

// Context is the frozen-at-dispatch context a job needs to be retried:
// which workspace, what query text, and under which settings. Jobs
// imported from old session formats may lack this (spec §4.3 "no
// context"), so it is a separate, possibly-absent struct rather than
// required fields on Job.
type Context struct {
	WorkspaceID      string            `json:"workspace_id"`
	WorkspaceName    string            `json:"workspace_name"`
	SubscriptionID   string            `json:"subscription_id"`
	SubscriptionName string            `json:"subscription_name"`
	Query            string            `json:"query"`
	QueryName        string            `json:"query_name,omitempty"` // non-empty only for multi-query pack dispatches
	Settings         settings.Settings `json:"settings"`
	SourcePack       string            `json:"source_pack,omitempty"` // empty if not dispatched from a pack
}

// Job is one execution of one query against one workspace (spec §3).
type Job struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"` // operator-supplied, shared across sibling jobs of one dispatch
	Context *Context `json:"context,omitempty"`

	Status Status `json:"status"`

	Queued    time.Time `json:"queued_at"`
	Started   time.Time `json:"started_at,omitempty"`
	Completed time.Time `json:"completed_at,omitempty"`

	RowCount int  `json:"row_count,omitempty"` // defined iff Status == Completed
	HasRows  bool `json:"has_rows,omitempty"`  // RowCount's validity flag for JSON round-trips (0 rows is valid)

	Error string `json:"error,omitempty"` // defined iff Status == Failed

	OutputPaths []string `json:"output_paths,omitempty"`

	DispatchTimestamp time.Time `json:"dispatch_timestamp"` // shared across sibling jobs of one dispatch, for C4's directory naming
}

// New creates a Queued job with a fresh ID. now is threaded in rather than
// read from time.Now() internally so callers can give every sibling job of
// one dispatch an identical DispatchTimestamp.
func New(name string, ctx *Context, now time.Time) *Job {
	return &Job{
		ID:                uuid.NewString(),
		Name:              name,
		Context:           ctx,
		Status:            Queued,
		Queued:            now,
		DispatchTimestamp: now,
	}
}

// Retry builds a new Job with the same {workspace, query, settings_snapshot}
// as j. It returns an error if j has no saved context (spec §4.3).
func (j *Job) Retry(now time.Time) (*Job, error) {
	if j.Context == nil {
		return nil, fmt.Errorf("job %s (%s): no context to retry", j.ID, j.Name)
	}
	ctxCopy := *j.Context
	ctxCopy.Settings = j.Context.Settings.Clone()
	return New(j.Name, &ctxCopy, now), nil
}

// MarkRunning transitions Queued -> Running (or Failed -> Running for an
// in-place retry attempt, spec §4.3).
func (j *Job) MarkRunning(now time.Time) {
	j.Status = Running
	if j.Started.IsZero() {
		j.Started = now
	}
}

// MarkCompleted transitions Running -> Completed.
func (j *Job) MarkCompleted(rowCount int, outputPaths []string, now time.Time) {
	j.Status = Completed
	j.RowCount = rowCount
	j.HasRows = true
	j.OutputPaths = outputPaths
	j.Completed = now
	j.Error = ""
}

// MarkFailed transitions Running -> Failed.
func (j *Job) MarkFailed(err error, now time.Time) {
	j.Status = Failed
	j.Error = err.Error()
	j.Completed = now
}

// CanRetryOperator reports whether the operator-facing "retry" action
// applies: the job must be terminal and carry context.
func (j *Job) CanRetryOperator() bool {
	return j.Status.IsTerminal() && j.Context != nil
}
