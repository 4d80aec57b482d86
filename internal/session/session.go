// Package session implements the operator-state snapshot artifact: save,
// load, delete, dirty tracking, and session-to-pack export (spec §3
// "Session", §4.6 C6 Session Store, §6 session schema).
package session

import (
	"time"

	"github.com/dolly-parseton/kql-panopticon/internal/job"
	"github.com/dolly-parseton/kql-panopticon/internal/settings"
)

// Session is a snapshot of operator state (spec §3). Dirty is in-memory
// only — it is never serialized and never acted on automatically (spec §9:
// "the dirty flag is observable in the UI but never acted on
// automatically").
type Session struct {
	Name         string            `json:"name"`
	SavedAt      time.Time         `json:"saved_at"`
	Settings     settings.Settings `json:"settings"`
	SourcePack   string            `json:"source_pack,omitempty"`
	EditorBuffer []string          `json:"editor_buffer"`
	Jobs         []*job.Job        `json:"jobs"`

	Dirty bool `json:"-"`
}

// New returns an empty, unsaved, clean (not dirty) session (there's
// nothing to lose yet, but an explicit "unsaved current" state is simpler
// than special-casing a nil current-session pointer everywhere in the TUI
// model — spec §3 "Relationships & ownership").
func New() *Session {
	return &Session{
		Settings: settings.Default(),
		Dirty:    false,
	}
}

// MarkDirty flips the in-memory dirty flag. The TUI does not call it: the
// TUI Model keeps its own unsaved-changes flag (Model.markDirty) and only
// builds a Session when saving.
func (s *Session) MarkDirty() { s.Dirty = true }
