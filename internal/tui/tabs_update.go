package tui

import (
	"context"
	"errors"
	"strconv"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/dolly-parseton/kql-panopticon/internal/job"
	"github.com/dolly-parseton/kql-panopticon/internal/session"
)

// updateWorkspacesTab handles the catalog browser: movement, multi-select,
// on-demand rediscovery, and the "/" substring filter (spec §4.1, §4.8,
// §9 supplemented feature #2).
func (m Model) updateWorkspacesTab(msg tea.KeyMsg) (Model, tea.Cmd) {
	if m.filteringWorkspaces {
		switch msg.Type {
		case tea.KeyEsc:
			m.workspaceFilter = ""
			m.filteringWorkspaces = false
			m.workspaceCursor = 0
		case tea.KeyEnter:
			m.filteringWorkspaces = false
			m.workspaceCursor = 0
		case tea.KeyBackspace:
			if n := len(m.workspaceFilter); n > 0 {
				m.workspaceFilter = m.workspaceFilter[:n-1]
			}
		case tea.KeyRunes:
			m.workspaceFilter += msg.String()
			m.workspaceCursor = 0
		}
		return m, nil
	}

	visible := m.visibleWorkspaces()
	switch msg.String() {
	case "j", "down":
		if m.workspaceCursor < len(visible)-1 {
			m.workspaceCursor++
		}
	case "k", "up":
		if m.workspaceCursor > 0 {
			m.workspaceCursor--
		}
	case " ":
		if m.workspaceCursor < len(visible) {
			key := visible[m.workspaceCursor].Key()
			m.selected[key] = !m.selected[key]
			m.markDirty()
		}
	case "a":
		for _, w := range visible {
			m.selected[w.Key()] = true
		}
		m.markDirty()
	case "A":
		m.selected = make(map[string]bool)
		m.markDirty()
	case "/":
		m.filteringWorkspaces = true
	case "r":
		m.statusMsg = "refreshing workspaces..."
		return m, discoverWorkspacesCmd(m.discoverer)
	}
	return m, nil
}

// updateQueryTab forwards every key the editor itself doesn't own to the
// editor state machine, except Ctrl+j which starts the job-dispatch flow
// (spec §4.7, §4.8 "Job dispatch flow").
func (m Model) updateQueryTab(msg tea.KeyMsg) (Model, tea.Cmd) {
	if msg.String() == "ctrl+j" {
		if m.ed.Text() == "" {
			m.statusMsg = "nothing to dispatch: query buffer is empty"
			return m, nil
		}
		m.pushPopup(newPromptPopup("job name", "", confirmDispatch, func(*Model) {}))
		return m, nil
	}

	if key, ok := toEditorKey(msg); ok {
		if m.ed.Handle(key) {
			m.markDirty()
		}
	}
	return m, nil
}

// confirmDispatch is the PopupPrompt OnConfirm continuation for the Query
// tab's job-name prompt: it builds one Job per selected workspace, sharing
// a dispatch timestamp, and hands them to the executor (spec §4.8).
func confirmDispatch(mdl *Model, name string) {
	if name == "" {
		name = "query"
	}
	now := time.Now()
	workspaces := mdl.selectedWorkspaces()
	query := mdl.ed.Text()

	jobs := make([]*job.Job, 0, len(workspaces))
	for _, w := range workspaces {
		ctx := &job.Context{
			WorkspaceID:      w.ID,
			WorkspaceName:    w.Name,
			SubscriptionID:   w.SubscriptionID,
			SubscriptionName: w.SubscriptionName,
			Query:            query,
			Settings:         mdl.settings.Clone(),
		}
		jobs = append(jobs, job.New(name, ctx, now))
	}

	mdl.jobs = append(mdl.jobs, jobs...)
	if mdl.exec != nil {
		mdl.exec.Dispatch(context.Background(), jobs)
	}
	mdl.statusMsg = "dispatched"
	mdl.markDirty()
}

// updateJobsTab handles job-list navigation, retry, and a details popup
// (spec §4.3, §4.8).
func (m Model) updateJobsTab(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "j", "down":
		if m.jobCursor < len(m.jobs)-1 {
			m.jobCursor++
		}
	case "k", "up":
		if m.jobCursor > 0 {
			m.jobCursor--
		}
	case "r":
		if m.jobCursor < len(m.jobs) {
			j := m.jobs[m.jobCursor]
			if j.CanRetryOperator() {
				retry, err := j.Retry(time.Now())
				if err != nil {
					m.statusMsg = err.Error()
					return m, nil
				}
				m.jobs = append(m.jobs, retry)
				if m.exec != nil {
					m.exec.Dispatch(context.Background(), []*job.Job{retry})
				}
				m.markDirty()
			}
		}
	case "enter":
		if m.jobCursor < len(m.jobs) {
			j := m.jobs[m.jobCursor]
			detail := "status: " + j.Status.String()
			if j.Error != "" {
				detail += "\nerror: " + j.Error
			}
			if j.Context != nil {
				detail += "\nworkspace: " + j.Context.WorkspaceName + "\nquery: " + j.Context.Query
			}
			m.pushPopup(newDetailsPopup(j.Name, detail))
		}
	}
	return m, nil
}

// updateSessionsTab handles save/load/delete/export of named sessions
// (spec §4.6, §4.8).
func (m Model) updateSessionsTab(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "j", "down":
		if m.sessionCursor < len(m.sessionNames)-1 {
			m.sessionCursor++
		}
	case "k", "up":
		if m.sessionCursor > 0 {
			m.sessionCursor--
		}
	case "enter":
		if m.sessionCursor < len(m.sessionNames) && m.sessionStore != nil {
			name := m.sessionNames[m.sessionCursor]
			s, err := m.sessionStore.Load(name)
			if err != nil {
				m.statusMsg = err.Error()
				return m, nil
			}
			m.loadSession(s)
			m.statusMsg = "loaded session " + name
		}
	case "s":
		if m.currentSession != "" && m.sessionStore != nil {
			if err := m.sessionStore.Save(m.asSession(m.currentSession, time.Now())); err != nil {
				m.statusMsg = err.Error()
				return m, nil
			}
			m.dirty = false
			m.statusMsg = "saved"
			return m, listSessionsCmd(m.sessionStore)
		}
		m.pushPopup(newPromptPopup("save as", "session name", confirmSaveAs, func(*Model) {}))
	case "S":
		m.pushPopup(newPromptPopup("save as", "session name", confirmSaveAs, func(*Model) {}))
	case "d":
		if m.sessionCursor < len(m.sessionNames) {
			name := m.sessionNames[m.sessionCursor]
			m.pushPopup(newConfirmPopup("delete session", "delete \""+name+"\"?", confirmDeleteSession, func(*Model) {}))
		}
	case "e":
		m.pushPopup(newPromptPopup("export as pack", "pack name", confirmExportPack, func(*Model) {}))
	}
	return m, nil
}

func confirmSaveAs(mdl *Model, name string) {
	if name == "" || mdl.sessionStore == nil {
		return
	}
	s := mdl.asSession(name, time.Now())
	if err := mdl.sessionStore.SaveAs(s, false); err != nil {
		if !errors.Is(err, session.ErrExists) {
			mdl.statusMsg = err.Error()
			return
		}
		mdl.pushPopup(newConfirmPopup("overwrite?", "session \""+name+"\" already exists, overwrite?", func(m2 *Model, _ string) {
			_ = m2.sessionStore.SaveAs(s, true)
			m2.currentSession = name
			m2.dirty = false
		}, func(*Model) {}))
		return
	}
	mdl.currentSession = name
	mdl.dirty = false
	mdl.statusMsg = "saved as " + name
}

func confirmDeleteSession(mdl *Model, _ string) {
	if mdl.sessionCursor >= len(mdl.sessionNames) || mdl.sessionStore == nil {
		return
	}
	name := mdl.sessionNames[mdl.sessionCursor]
	if err := mdl.sessionStore.Delete(name); err != nil {
		mdl.statusMsg = err.Error()
		return
	}
	if mdl.currentSession == name {
		mdl.currentSession = ""
	}
	var remaining []string
	for _, n := range mdl.sessionNames {
		if n != name {
			remaining = append(remaining, n)
		}
	}
	mdl.sessionNames = remaining
}

func confirmExportPack(mdl *Model, name string) {
	if name == "" {
		return
	}
	sess := mdl.asSession(mdl.currentSession, time.Now())
	p, err := sess.ExportPack(name)
	if err != nil {
		if err == session.ErrNoQueries {
			mdl.statusMsg = "no queries in this session to export"
			return
		}
		mdl.statusMsg = err.Error()
		return
	}
	if mdl.packStore == nil {
		return
	}
	if _, err := mdl.packStore.Save(p, name, false); err != nil {
		mdl.statusMsg = err.Error()
		return
	}
	mdl.statusMsg = "exported pack " + name
}

// updatePacksTab handles the pack library browser: navigation and running a
// pack against the resolved workspace scope (spec §4.5, §4.8).
func (m Model) updatePacksTab(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "j", "down":
		if m.packCursor < len(m.packs)-1 {
			m.packCursor++
		}
	case "k", "up":
		if m.packCursor > 0 {
			m.packCursor--
		}
	case "enter":
		if m.packCursor >= len(m.packs) {
			return m, nil
		}
		res := m.packs[m.packCursor]
		if res.Err != nil || res.Pack == nil {
			m.statusMsg = "cannot run an invalid pack"
			return m, nil
		}
		all := m.catalog.All()
		workspaces, err := res.Pack.ResolveWorkspaces(all, m.selected)
		if err != nil {
			m.statusMsg = err.Error()
			return m, nil
		}
		if len(workspaces) == 0 {
			m.statusMsg = "pack resolves to zero workspaces"
			return m, nil
		}
		jobs := res.Pack.Materialize(workspaces, m.settings, time.Now())
		m.jobs = append(m.jobs, jobs...)
		m.sourcePack = res.Pack.Name
		if m.exec != nil {
			m.exec.Dispatch(context.Background(), jobs)
		}
		m.statusMsg = "dispatched pack " + res.Pack.Name
		m.markDirty()
	case "r":
		return m, loadPacksCmd(m.packStore)
	}
	return m, nil
}

// updateSettingsTab handles the settings field cursor and edits (spec §3,
// §4.8).
func (m Model) updateSettingsTab(msg tea.KeyMsg) (Model, tea.Cmd) {
	const fieldCount = 7
	switch msg.String() {
	case "j", "down":
		if m.settingsCursor < fieldCount-1 {
			m.settingsCursor++
		}
	case "k", "up":
		if m.settingsCursor > 0 {
			m.settingsCursor--
		}
	case " ", "enter":
		switch m.settingsCursor {
		case 4:
			m.settings.ExportCSV = !m.settings.ExportCSV
			m.markDirty()
		case 5:
			m.settings.ExportJSON = !m.settings.ExportJSON
			m.markDirty()
		case 6:
			m.settings.ParseDynamics = !m.settings.ParseDynamics
			m.markDirty()
		default:
			m.pushPopup(newPromptPopup(settingsFieldTitle(m.settingsCursor), "", confirmSettingsEdit, func(*Model) {}))
		}
	}
	return m, nil
}

func settingsFieldTitle(i int) string {
	switch i {
	case 0:
		return "output folder"
	case 1:
		return "query timeout (seconds)"
	case 2:
		return "retry count"
	case 3:
		return "validation interval (seconds)"
	default:
		return "value"
	}
}

func confirmSettingsEdit(mdl *Model, value string) {
	if value == "" {
		return
	}
	switch mdl.settingsCursor {
	case 0:
		mdl.settings.OutputFolder = value
	case 1:
		if n, err := strconv.Atoi(value); err == nil {
			mdl.settings.QueryTimeoutSecs = n
		}
	case 2:
		if n, err := strconv.Atoi(value); err == nil {
			mdl.settings.RetryCount = n
		}
	case 3:
		if n, err := strconv.Atoi(value); err == nil {
			mdl.settings.ValidationIntervalSecs = n
		}
	}
	if err := mdl.settings.Validate(); err != nil {
		mdl.statusMsg = err.Error()
	}
	mdl.markDirty()
}
