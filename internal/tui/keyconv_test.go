package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"

	"github.com/dolly-parseton/kql-panopticon/internal/editor"
)

func TestToEditorKey_TranslatesKnownKeyTypes(t *testing.T) {
	tests := []struct {
		name string
		in   tea.KeyMsg
		want editor.Key
	}{
		{"esc", tea.KeyMsg{Type: tea.KeyEsc}, editor.Key{Type: editor.KeyEsc}},
		{"enter", tea.KeyMsg{Type: tea.KeyEnter}, editor.Key{Type: editor.KeyEnter}},
		{"backspace", tea.KeyMsg{Type: tea.KeyBackspace}, editor.Key{Type: editor.KeyBackspace}},
		{"ctrl+d", tea.KeyMsg{Type: tea.KeyCtrlD}, editor.Key{Type: editor.KeyCtrlD}},
		{"space", tea.KeyMsg{Type: tea.KeySpace}, editor.Key{Type: editor.KeyRune, Rune: ' '}},
		{"single rune", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x")}, editor.Key{Type: editor.KeyRune, Rune: 'x'}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := toEditorKey(tt.in)
			assert.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestToEditorKey_RejectsMultiRuneInput(t *testing.T) {
	_, ok := toEditorKey(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("ab")})
	assert.False(t, ok, "paste events with multiple runes aren't a single editor key")
}

func TestToEditorKey_RejectsUnhandledKeyType(t *testing.T) {
	_, ok := toEditorKey(tea.KeyMsg{Type: tea.KeyF1})
	assert.False(t, ok)
}
