// Package tui implements the TUI Controller (spec §4.8, C8): an explicit
// Model/Message/Update/View loop over six tabs, following the
// bubbletea-model-with-explicit-mode-switch pattern in the teacher's
// services/code_buddy/tui/diff_model.go, generalized from one review
// screen to six navigable tabs plus a popup stack.
package tui

import (
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/dolly-parseton/kql-panopticon/internal/auth"
	"github.com/dolly-parseton/kql-panopticon/internal/editor"
	"github.com/dolly-parseton/kql-panopticon/internal/executor"
	"github.com/dolly-parseton/kql-panopticon/internal/job"
	"github.com/dolly-parseton/kql-panopticon/internal/logging"
	"github.com/dolly-parseton/kql-panopticon/internal/pack"
	"github.com/dolly-parseton/kql-panopticon/internal/session"
	"github.com/dolly-parseton/kql-panopticon/internal/settings"
	"github.com/dolly-parseton/kql-panopticon/internal/workspace"
)

// Tab is one of the six navigable screens (spec §4.8: "active tab (one of
// 6)").
type Tab int

const (
	TabWorkspaces Tab = iota
	TabQuery
	TabJobs
	TabSessions
	TabPacks
	TabSettings
)

func (t Tab) String() string {
	switch t {
	case TabWorkspaces:
		return "Workspaces"
	case TabQuery:
		return "Query"
	case TabJobs:
		return "Jobs"
	case TabSessions:
		return "Sessions"
	case TabPacks:
		return "Packs"
	case TabSettings:
		return "Settings"
	default:
		return "?"
	}
}

var tabOrder = []Tab{TabWorkspaces, TabQuery, TabJobs, TabSessions, TabPacks, TabSettings}

// Model is the full TUI state (spec §4.8 "Model"). All mutation happens
// through Update; View never mutates.
type Model struct {
	logger *logging.Logger

	settings settings.Settings
	catalog  *workspace.Catalog
	selected map[string]bool // workspace.Key() -> selected, for ScopeSelected packs and bulk dispatch

	workspaceFilter     string // substring filter over the Workspaces tab, spec §9 supplemented feature #2
	filteringWorkspaces bool   // true while capturing filter text after '/'

	ed *editor.Editor

	jobs []*job.Job

	sessionStore   *session.Store
	sessionNames   []string
	currentSession string
	sourcePack     string
	dirty          bool

	packStore *pack.Store
	packs     []pack.LoadResult

	discoverer workspace.Discoverer
	exec       *executor.Executor
	authGate   *auth.Gate
	authValid  bool

	activeTab Tab
	popups    []Popup

	width, height int

	workspaceCursor int
	jobCursor       int
	sessionCursor   int
	packCursor      int
	settingsCursor  int

	statusMsg   string
	quitting    bool
	homeDir     string
}

// Deps bundles everything the controller needs from outside (spec §4.8
// wires C1-C7, C10 into the Model at construction).
type Deps struct {
	Logger       *logging.Logger
	Discoverer   workspace.Discoverer
	Executor     *executor.Executor
	AuthGate     *auth.Gate
	SessionStore *session.Store
	PackStore    *pack.Store
	HomeDir      string
}

// New builds the initial Model: default settings, an empty editor, no
// jobs, no selection (spec §3 "Relationships & ownership").
func New(d Deps) Model {
	return Model{
		logger:       d.Logger,
		settings:     settings.Default(),
		catalog:      workspace.NewCatalog(),
		selected:     make(map[string]bool),
		ed:           editor.New(),
		sessionStore: d.SessionStore,
		packStore:    d.PackStore,
		discoverer:   d.Discoverer,
		exec:         d.Executor,
		authGate:     d.AuthGate,
		authValid:    d.AuthGate != nil && d.AuthGate.Valid(),
		activeTab:    TabWorkspaces,
		homeDir:      d.HomeDir,
	}
}

// Init implements tea.Model: kick off workspace discovery, pack loading,
// and session listing immediately, plus the tick that drives job-event
// draining (spec §5: "C8 drains every tick").
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		discoverWorkspacesCmd(m.discoverer),
		loadPacksCmd(m.packStore),
		listSessionsCmd(m.sessionStore),
		tickCmd(),
		waitForAuthEventCmd(m.authGate),
	)
}

const tickInterval = 200 * time.Millisecond

func tickCmd() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg { return TickMsg{At: t} })
}

// currentPopup returns the top of the popup stack, or nil if empty (spec
// §9 supplemented: "popup stack, not a single slot").
func (m *Model) currentPopup() *Popup {
	if len(m.popups) == 0 {
		return nil
	}
	return &m.popups[len(m.popups)-1]
}

func (m *Model) pushPopup(p Popup) { m.popups = append(m.popups, p) }

func (m *Model) popPopup() {
	if len(m.popups) > 0 {
		m.popups = m.popups[:len(m.popups)-1]
	}
}

// markDirty flips the session-dirty flag, mirroring session.Session's own
// MarkDirty for the in-memory state the TUI hasn't saved yet.
func (m *Model) markDirty() { m.dirty = true }

// asSession builds a session.Session snapshot of the current model state
// for Save/SaveAs (spec §4.6).
func (m *Model) asSession(name string, now time.Time) *session.Session {
	return &session.Session{
		Name:         name,
		SavedAt:      now,
		Settings:     m.settings,
		SourcePack:   m.sourcePack,
		EditorBuffer: m.ed.Lines(),
		Jobs:         m.jobs,
	}
}

// selectedWorkspaces returns the workspaces the operator has checked in the
// Workspaces tab, or every discovered workspace when none are checked, so
// the Query tab's job dispatch never targets zero workspaces (spec §4.8
// "selected workspaces"; an empty selection is not an empty dispatch). Pack
// runs do not use it; they resolve their own scope via
// pack.ResolveWorkspaces.
func (m *Model) selectedWorkspaces() []workspace.Workspace {
	all := m.catalog.All()
	var out []workspace.Workspace
	for _, w := range all {
		if m.selected[w.Key()] {
			out = append(out, w)
		}
	}
	if len(out) == 0 {
		return all
	}
	return out
}

// visibleWorkspaces returns the catalog filtered by workspaceFilter (a
// case-insensitive substring match on display name), or every discovered
// workspace when no filter is active (spec §9 supplemented feature #2).
func (m *Model) visibleWorkspaces() []workspace.Workspace {
	all := m.catalog.All()
	if m.workspaceFilter == "" {
		return all
	}
	needle := strings.ToLower(m.workspaceFilter)
	var out []workspace.Workspace
	for _, w := range all {
		if strings.Contains(strings.ToLower(w.Name), needle) {
			out = append(out, w)
		}
	}
	return out
}

// loadSession replaces in-memory state from a loaded session (spec §4.6:
// "Load: replace in-memory settings, job list, and editor buffer").
func (m *Model) loadSession(s *session.Session) {
	m.settings = s.Settings
	m.sourcePack = s.SourcePack
	m.ed = editor.FromText(strings.Join(s.EditorBuffer, "\n"))
	m.jobs = s.Jobs
	m.currentSession = s.Name
	m.dirty = false
}
