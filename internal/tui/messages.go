package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/dolly-parseton/kql-panopticon/internal/auth"
	"github.com/dolly-parseton/kql-panopticon/internal/executor"
	"github.com/dolly-parseton/kql-panopticon/internal/pack"
	"github.com/dolly-parseton/kql-panopticon/internal/session"
	"github.com/dolly-parseton/kql-panopticon/internal/workspace"
)

// TickMsg drives the periodic job-event drain (spec §4.8, §5).
type TickMsg struct{ At time.Time }

// WorkspacesLoadedMsg carries the result of C1 discovery (spec §4.8
// Messages).
type WorkspacesLoadedMsg struct {
	Workspaces []workspace.Workspace
	Warnings   []workspace.Warning
	Err        error
}

// PacksLoadedMsg carries the result of a pack-library scan (C5).
type PacksLoadedMsg struct {
	Packs []pack.LoadResult
	Err   error
}

// SessionsListedMsg carries the result of listing the session store (C6).
type SessionsListedMsg struct {
	Names []string
	Err   error
}

// JobEventsMsg carries one tick's worth of drained executor events (spec
// §4.8 Messages: "JobEvent(...)" from C3).
type JobEventsMsg struct {
	Events []executor.Event
}

// AuthRevalidatedMsg carries one background auth-gate check result (spec
// §4.8 Messages, §4.10).
type AuthRevalidatedMsg struct {
	Event auth.Event
}

func discoverWorkspacesCmd(d workspace.Discoverer) tea.Cmd {
	if d == nil {
		return nil
	}
	return func() tea.Msg {
		ws, warnings, err := d.Discover(context.Background())
		return WorkspacesLoadedMsg{Workspaces: ws, Warnings: warnings, Err: err}
	}
}

func loadPacksCmd(s *pack.Store) tea.Cmd {
	if s == nil {
		return nil
	}
	return func() tea.Msg {
		results, err := s.LoadAll()
		return PacksLoadedMsg{Packs: results, Err: err}
	}
}

func listSessionsCmd(s *session.Store) tea.Cmd {
	if s == nil {
		return nil
	}
	return func() tea.Msg {
		names, err := s.List()
		return SessionsListedMsg{Names: names, Err: err}
	}
}

// waitForAuthEventCmd blocks on one AuthGate revalidation event and wraps
// it as a message; Update re-issues this command after every delivery so
// C8 keeps draining the gate's event channel for as long as the program
// runs (spec §4.10: "failure posts an AuthExpired event that C8 surfaces
// as a banner").
func waitForAuthEventCmd(g *auth.Gate) tea.Cmd {
	if g == nil {
		return nil
	}
	return func() tea.Msg {
		ev, ok := <-g.Events()
		if !ok {
			return nil
		}
		return AuthRevalidatedMsg{Event: ev}
	}
}
