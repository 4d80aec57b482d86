package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/dolly-parseton/kql-panopticon/internal/executor"
	"github.com/dolly-parseton/kql-panopticon/internal/job"
	"github.com/dolly-parseton/kql-panopticon/internal/workspace"
)

// staticDiscoverer replays an already-fetched discovery result through
// workspace.Catalog.Refresh, so the catalog's own sort-and-store logic
// runs once regardless of whether the result came from a live Discoverer
// or, as here, a WorkspacesLoadedMsg already carrying it.
type staticDiscoverer struct {
	ws   []workspace.Workspace
	warn []workspace.Warning
}

func (s staticDiscoverer) Discover(ctx context.Context) ([]workspace.Workspace, []workspace.Warning, error) {
	return s.ws, s.warn, nil
}

// Update implements tea.Model (spec §4.8: "pure; produces (new_model,
// commands)").
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case TickMsg:
		var cmds []tea.Cmd
		if m.exec != nil {
			if events := m.exec.Drain(); len(events) > 0 {
				m.applyJobEvents(events)
			}
		}
		cmds = append(cmds, tickCmd())
		return m, tea.Batch(cmds...)

	case WorkspacesLoadedMsg:
		if msg.Err == nil {
			m.catalog.Refresh(context.Background(), staticDiscoverer{ws: msg.Workspaces, warn: msg.Warnings})
			m.statusMsg = "workspaces loaded"
			for _, warn := range msg.Warnings {
				if m.logger != nil {
					m.logger.Warn("partial workspace discovery", "subscription", warn.SubscriptionID, "error", warn.Err)
				}
			}
		} else {
			m.statusMsg = "workspace discovery failed: " + msg.Err.Error()
			if m.logger != nil {
				m.logger.Error("workspace discovery failed", "error", msg.Err)
			}
		}
		return m, nil

	case PacksLoadedMsg:
		m.packs = msg.Packs
		for _, res := range msg.Packs {
			if res.Err != nil && m.logger != nil {
				m.logger.Warn("pack failed to load", "path", res.Path, "error", res.Err)
			}
		}
		return m, nil

	case SessionsListedMsg:
		m.sessionNames = msg.Names
		return m, nil

	case AuthRevalidatedMsg:
		m.authValid = msg.Event.OK
		if !msg.Event.OK {
			m.statusMsg = "auth revalidation failed"
			if m.logger != nil {
				m.logger.Error("auth revalidation failed", "error", msg.Event.Err)
			}
		}
		return m, waitForAuthEventCmd(m.authGate)
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if p := m.currentPopup(); p != nil {
		return m.handlePopupKey(*p, msg)
	}

	insertPassthrough := m.activeTab == TabQuery && m.ed.Mode().String() == "INSERT"
	filterPassthrough := m.activeTab == TabWorkspaces && m.filteringWorkspaces
	if !insertPassthrough && !filterPassthrough {
		switch msg.String() {
		case "q":
			m.quitting = true
			return m, tea.Quit
		case "tab":
			m.activeTab = nextTab(m.activeTab, 1)
			return m, nil
		case "shift+tab":
			m.activeTab = nextTab(m.activeTab, -1)
			return m, nil
		case "1", "2", "3", "4", "5", "6":
			m.activeTab = tabOrder[int(msg.String()[0]-'1')]
			return m, nil
		}
	}

	switch m.activeTab {
	case TabWorkspaces:
		return m.updateWorkspacesTab(msg)
	case TabQuery:
		return m.updateQueryTab(msg)
	case TabJobs:
		return m.updateJobsTab(msg)
	case TabSessions:
		return m.updateSessionsTab(msg)
	case TabPacks:
		return m.updatePacksTab(msg)
	case TabSettings:
		return m.updateSettingsTab(msg)
	}
	return m, nil
}

func nextTab(cur Tab, delta int) Tab {
	n := len(tabOrder)
	idx := int(cur)
	idx = (idx + delta + n) % n
	return tabOrder[idx]
}

func (m *Model) applyJobEvents(events []executor.Event) {
	byID := make(map[string]int, len(m.jobs))
	for i, j := range m.jobs {
		byID[j.ID] = i
	}
	for _, ev := range events {
		if idx, ok := byID[ev.JobID]; ok {
			snap := ev.Snapshot
			m.jobs[idx] = &snap
			if snap.Status == job.Failed && m.logger != nil {
				m.logger.Error("job failed", "job_id", snap.ID, "job_name", snap.Name, "error", snap.Error)
			}
		}
	}
	m.markDirty()
}
