package tui

import (
	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/huh"
)

// detailsPopupWidth/Height size the scrollable body of a details popup;
// job output and pack descriptions can run past a screen's height, and
// the teacher scrolls exactly this way in
// services/code_buddy/tui/diff_model.go.
const (
	detailsPopupWidth  = 72
	detailsPopupHeight = 16
)

// PopupKind distinguishes the three overlay shapes the model supports
// (spec §4.8 "transient popups (confirm, prompt, details)"; the original
// implementation's single popup slot is widened to a stack here — see
// DESIGN.md).
type PopupKind int

const (
	PopupConfirm PopupKind = iota
	PopupPrompt
	PopupDetails
)

// firstHuhFieldKey is the key every single-field prompt form's input is
// registered under, so popup_update.go can read it back with GetString.
const firstHuhFieldKey = "value"

// Popup is one entry of the popup stack. OnConfirm/OnCancel are
// continuations invoked with the model and, for PopupPrompt, the entered
// text; they return the model mutation to apply once the popup is
// dismissed. Only the top-of-stack popup receives key events (spec §4.8:
// "when any popup has focus").
type Popup struct {
	Kind    PopupKind
	Title   string
	Message string

	form *huh.Form        // PopupPrompt uses a huh form for its text input
	vp   *viewport.Model // PopupDetails scrolls its body through this

	OnConfirm func(m *Model, value string)
	OnCancel  func(m *Model)
}

// newPromptPopup builds a single-field text-entry popup using
// charmbracelet/huh, the form library present in the teacher's
// dependency set but never wired into any of its own code — this is
// where it earns its place (spec §4.8: job-dispatch name prompt).
func newPromptPopup(title, placeholder string, onConfirm func(m *Model, value string), onCancel func(m *Model)) Popup {
	value := ""
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key(firstHuhFieldKey).
				Title(title).
				Placeholder(placeholder).
				Value(&value),
		),
	)
	_ = form.Init()
	return Popup{
		Kind:      PopupPrompt,
		Title:     title,
		form:      form,
		OnConfirm: onConfirm,
		OnCancel:  onCancel,
	}
}

func newConfirmPopup(title, message string, onConfirm func(m *Model, value string), onCancel func(m *Model)) Popup {
	return Popup{Kind: PopupConfirm, Title: title, Message: message, OnConfirm: onConfirm, OnCancel: onCancel}
}

// newDetailsPopup builds a read-only, scrollable popup for content that
// may exceed the screen (job error text, query bodies, pack
// descriptions), using bubbles/viewport the way the teacher scrolls diff
// output in its own TUI.
func newDetailsPopup(title, message string) Popup {
	vp := viewport.New(detailsPopupWidth, detailsPopupHeight)
	vp.SetContent(message)
	return Popup{Kind: PopupDetails, Title: title, Message: message, vp: &vp}
}
