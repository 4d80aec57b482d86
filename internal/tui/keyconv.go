package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/dolly-parseton/kql-panopticon/internal/editor"
)

// toEditorKey translates a bubbletea key event into editor.Key, the
// terminal-library-agnostic shape the pure editor state machine expects
// (spec §4.7: the editor "does not know about" anything outside itself,
// including which TUI library drives it).
func toEditorKey(msg tea.KeyMsg) (editor.Key, bool) {
	switch msg.Type {
	case tea.KeyEsc:
		return editor.Key{Type: editor.KeyEsc}, true
	case tea.KeyEnter:
		return editor.Key{Type: editor.KeyEnter}, true
	case tea.KeyBackspace:
		return editor.Key{Type: editor.KeyBackspace}, true
	case tea.KeyCtrlD:
		return editor.Key{Type: editor.KeyCtrlD}, true
	case tea.KeyCtrlU:
		return editor.Key{Type: editor.KeyCtrlU}, true
	case tea.KeyCtrlR:
		return editor.Key{Type: editor.KeyCtrlR}, true
	case tea.KeySpace:
		return editor.Key{Type: editor.KeyRune, Rune: ' '}, true
	case tea.KeyRunes:
		if len(msg.Runes) == 1 {
			return editor.Key{Type: editor.KeyRune, Rune: msg.Runes[0]}, true
		}
	}
	return editor.Key{}, false
}
