// Package queryclient defines the contract for executing one KQL query
// against one workspace (spec §4.2, C2 Query Client). The real
// implementation against Azure Monitor Logs lives in internal/azure; this
// package only defines the port, the result shape, and the closed set of
// error kinds C3 classifies for retry.
package queryclient

import (
	"context"
	"errors"
	"time"
)

// Column describes one result column. Dynamic columns are flagged so the
// caller can decide, per spec.ParseDynamics, whether to decode their string
// payload into structured JSON.
type Column struct {
	Name      string
	Type      string
	IsDynamic bool
}

// Result is the first result table only — spec §4.2 documents that
// additional tables are dropped silently.
type Result struct {
	Columns  []Column
	Rows     [][]any
	RowCount int
}

// Sentinel error kinds. C3 classifies a failure by errors.Is against these,
// mirroring the isAuthError/isRetryableError substring classification in
// ppiankov-clickspectre/internal/collector/retry.go but expressed as typed
// sentinels instead of substring matching, since this client controls its
// own error production end to end (no third-party driver error strings to
// pattern-match).
var (
	// ErrTimeout means the wall-clock budget covering all pagination
	// rounds was exceeded. Not retried by C3 (spec §4.3, §9 Open Questions).
	ErrTimeout = errors.New("queryclient: timeout")

	// ErrAuthExpired means a 401/403 survived the client's own one
	// forced-refresh-and-retry. Unrecoverable at this level.
	ErrAuthExpired = errors.New("queryclient: auth expired")

	// ErrTransient means a network error or 5xx response. Retryable by C3.
	ErrTransient = errors.New("queryclient: transient")

	// ErrPermanent means a 4xx response other than auth. Not retryable.
	ErrPermanent = errors.New("queryclient: permanent")

	// ErrSchemaDrift means a result row's field count disagreed with the
	// column header.
	ErrSchemaDrift = errors.New("queryclient: schema drift")
)

// Error wraps one of the sentinel kinds above with the underlying cause and
// enough context for a user-visible message (spec §7).
type Error struct {
	Kind    error
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Cause }

func (e *Error) Is(target error) bool { return e.Kind == target }

func newError(kind error, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// Client executes one KQL request against one workspace, handling
// pagination, timeout, and auth refresh transparently (spec §4.2).
type Client interface {
	Execute(ctx context.Context, workspaceID, queryText string, timeout time.Duration, parseDynamics bool) (*Result, error)
}
