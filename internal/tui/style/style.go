// Package style centralizes the lipgloss palette and reusable styles for
// the TUI, following the pre-built Styles struct pattern in the teacher's
// pkg/ux/output.go.
package style

import "github.com/charmbracelet/lipgloss"

var (
	ColorAccent   = lipgloss.Color("#5FB0FC")
	ColorMuted    = lipgloss.Color("#5C6773")
	ColorSuccess  = lipgloss.Color("#4FD69C")
	ColorWarning  = lipgloss.Color("#E6C36B")
	ColorError    = lipgloss.Color("#E5626B")
	ColorBorder   = lipgloss.Color("#33414F")
	ColorSelected = lipgloss.Color("#1D2B3A")
)

var (
	TabActive = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorAccent).
			Padding(0, 1)

	TabInactive = lipgloss.NewStyle().
			Foreground(ColorMuted).
			Padding(0, 1)

	StatusBar = lipgloss.NewStyle().
			Foreground(ColorMuted).
			BorderStyle(lipgloss.NormalBorder()).
			BorderTop(true).
			BorderForeground(ColorBorder)

	Panel = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorBorder).
		Padding(0, 1)

	PopupBorder = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorAccent).
			Padding(1, 2)

	RowSelected = lipgloss.NewStyle().Background(ColorSelected)

	Success = lipgloss.NewStyle().Foreground(ColorSuccess)
	Warning = lipgloss.NewStyle().Foreground(ColorWarning)
	Error   = lipgloss.NewStyle().Foreground(ColorError)
	Muted   = lipgloss.NewStyle().Foreground(ColorMuted)
	Bold    = lipgloss.NewStyle().Bold(true)

	Keyword = lipgloss.NewStyle().Bold(true).Foreground(ColorAccent)
)

// StatusGlyph maps a job status name to a short colored glyph for
// compact table rendering.
func StatusGlyph(status string) string {
	switch status {
	case "Queued":
		return Muted.Render("○")
	case "Running":
		return Warning.Render("◐")
	case "Completed":
		return Success.Render("✓")
	case "Failed":
		return Error.Render("✗")
	default:
		return "?"
	}
}
