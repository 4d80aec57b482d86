package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/dolly-parseton/kql-panopticon/internal/tui/style"
)

// View implements tea.Model: render tab bar, active tab body, status bar,
// and any popup on top (spec §4.8 "View is pure; renders Model to a
// string").
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.renderTabBar())
	b.WriteString("\n")
	b.WriteString(m.renderBody())
	b.WriteString("\n")
	b.WriteString(m.renderStatusBar())

	if p := m.currentPopup(); p != nil {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, m.renderPopup(*p))
	}
	return b.String()
}

func (m Model) renderTabBar() string {
	parts := make([]string, len(tabOrder))
	for i, t := range tabOrder {
		label := fmt.Sprintf("%d:%s", i+1, t.String())
		if t == m.activeTab {
			parts[i] = style.TabActive.Render(label)
		} else {
			parts[i] = style.TabInactive.Render(label)
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m Model) renderBody() string {
	switch m.activeTab {
	case TabWorkspaces:
		return m.renderWorkspacesTab()
	case TabQuery:
		return m.renderQueryTab()
	case TabJobs:
		return m.renderJobsTab()
	case TabSessions:
		return m.renderSessionsTab()
	case TabPacks:
		return m.renderPacksTab()
	case TabSettings:
		return m.renderSettingsTab()
	}
	return ""
}

func (m Model) renderStatusBar() string {
	auth := style.Error.Render("auth: invalid")
	if m.authValid {
		auth = style.Success.Render("auth: ok")
	}
	dirty := ""
	if m.dirty {
		dirty = style.Warning.Render(" *unsaved")
	}
	line := fmt.Sprintf("%s  %s%s  %s", auth, m.activeTab.String(), dirty, m.statusMsg)
	return style.StatusBar.Width(m.width).Render(line)
}

func (m Model) renderWorkspacesTab() string {
	visible := m.visibleWorkspaces()
	var b strings.Builder

	switch {
	case m.filteringWorkspaces:
		b.WriteString(style.Bold.Render("/" + m.workspaceFilter))
		b.WriteString("\n")
	case m.workspaceFilter != "":
		b.WriteString(style.Muted.Render(fmt.Sprintf("filter: %q (esc on / to clear)", m.workspaceFilter)))
		b.WriteString("\n")
	}

	if len(visible) == 0 {
		if len(m.catalog.All()) == 0 {
			b.WriteString(style.Muted.Render("no workspaces discovered yet (press r to refresh)"))
		} else {
			b.WriteString(style.Muted.Render("no workspaces match this filter"))
		}
		return style.Panel.Render(b.String())
	}

	for i, w := range visible {
		box := "[ ]"
		if m.selected[w.Key()] {
			box = "[x]"
		}
		row := fmt.Sprintf("%s %s  %s/%s  (%s)", box, w.Name, w.SubscriptionName, w.ResourceGroupName, w.Region)
		if i == m.workspaceCursor {
			row = style.RowSelected.Render(row)
		}
		b.WriteString(row)
		b.WriteString("\n")
	}
	for _, warn := range m.catalog.Warnings() {
		b.WriteString(style.Warning.Render(warn.String()))
		b.WriteString("\n")
	}
	return style.Panel.Render(b.String())
}

func (m Model) renderQueryTab() string {
	lines := m.ed.Lines()
	cur := m.ed.Cursor()
	var b strings.Builder
	for i, line := range lines {
		if i == cur.Row {
			b.WriteString(markCursor(line, cur.Col))
		} else {
			b.WriteString(highlightKQL(line))
		}
		b.WriteString("\n")
	}
	body := style.Panel.Render(b.String())
	modeLine := style.Bold.Render("-- " + m.ed.Mode().String() + " --")
	return body + "\n" + modeLine + style.Muted.Render("  (Ctrl+j to dispatch)")
}

// markCursor renders the cursor line: the character under the cursor is
// given the selected-row style, and the surrounding text still runs
// through highlightKQL so the cursor row doesn't lose syntax coloring.
func markCursor(line string, col int) string {
	runes := []rune(line)
	if col < 0 {
		col = 0
	}
	if col > len(runes) {
		col = len(runes)
	}
	before := highlightKQL(string(runes[:col]))
	after := ""
	cursorGlyph := style.RowSelected.Render(" ")
	if col < len(runes) {
		cursorGlyph = style.RowSelected.Render(string(runes[col]))
		after = highlightKQL(string(runes[col+1:]))
	}
	return before + cursorGlyph + after
}

func (m Model) renderJobsTab() string {
	if len(m.jobs) == 0 {
		return style.Muted.Render("no jobs dispatched yet")
	}
	var b strings.Builder
	for i, j := range m.jobs {
		ws := ""
		if j.Context != nil {
			ws = j.Context.WorkspaceName
		}
		row := fmt.Sprintf("%s %-24s %-24s %s", style.StatusGlyph(j.Status.String()), j.Name, ws, j.Status.String())
		if i == m.jobCursor {
			row = style.RowSelected.Render(row)
		}
		b.WriteString(row)
		b.WriteString("\n")
	}
	return style.Panel.Render(b.String())
}

func (m Model) renderSessionsTab() string {
	if len(m.sessionNames) == 0 {
		return style.Muted.Render("no saved sessions")
	}
	var b strings.Builder
	for i, name := range m.sessionNames {
		row := name
		if name == m.currentSession {
			row += style.Muted.Render("  (current)")
		}
		if i == m.sessionCursor {
			row = style.RowSelected.Render(row)
		}
		b.WriteString(row)
		b.WriteString("\n")
	}
	return style.Panel.Render(b.String())
}

func (m Model) renderPacksTab() string {
	if len(m.packs) == 0 {
		return style.Muted.Render("no packs in the library")
	}
	var b strings.Builder
	for i, res := range m.packs {
		var row string
		if res.Err != nil {
			row = style.Error.Render(res.Path + ": " + res.Err.Error())
		} else {
			row = fmt.Sprintf("%s - %s", res.Pack.Name, res.Pack.Description)
		}
		if i == m.packCursor {
			row = style.RowSelected.Render(row)
		}
		b.WriteString(row)
		b.WriteString("\n")
	}
	return style.Panel.Render(b.String())
}

func (m Model) renderSettingsTab() string {
	rows := []string{
		fmt.Sprintf("output folder: %s", m.settings.OutputFolder),
		fmt.Sprintf("query timeout (seconds): %d", m.settings.QueryTimeoutSecs),
		fmt.Sprintf("retry count: %d", m.settings.RetryCount),
		fmt.Sprintf("validation interval (seconds): %d", m.settings.ValidationIntervalSecs),
		fmt.Sprintf("export csv: %v", m.settings.ExportCSV),
		fmt.Sprintf("export json: %v", m.settings.ExportJSON),
		fmt.Sprintf("parse dynamics: %v", m.settings.ParseDynamics),
	}
	var b strings.Builder
	for i, row := range rows {
		if i == m.settingsCursor {
			row = style.RowSelected.Render(row)
		}
		b.WriteString(row)
		b.WriteString("\n")
	}
	return style.Panel.Render(b.String())
}

func (m Model) renderPopup(p Popup) string {
	var body string
	switch p.Kind {
	case PopupPrompt:
		body = p.form.View()
	case PopupConfirm:
		body = p.Message + "\n\n" + style.Muted.Render("y/enter confirm, n/esc cancel")
	case PopupDetails:
		view := p.Message
		if p.vp != nil {
			view = p.vp.View()
		}
		body = view + "\n\n" + style.Muted.Render("up/down scroll, enter/esc dismiss")
	}
	content := style.Bold.Render(p.Title) + "\n\n" + body
	return style.PopupBorder.Render(content)
}
