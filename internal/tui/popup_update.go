package tui

import (
	"github.com/charmbracelet/huh"

	tea "github.com/charmbracelet/bubbletea"
)

func (m Model) handlePopupKey(p Popup, msg tea.KeyMsg) (Model, tea.Cmd) {
	switch p.Kind {
	case PopupDetails:
		switch msg.String() {
		case "esc", "enter", "q":
			m.popPopup()
			return m, nil
		}
		if p.vp != nil {
			vp, cmd := p.vp.Update(msg)
			p.vp = &vp
			m.popups[len(m.popups)-1] = p
			return m, cmd
		}
		m.popPopup()
		return m, nil

	case PopupConfirm:
		switch msg.String() {
		case "y", "enter":
			m.popPopup()
			if p.OnConfirm != nil {
				p.OnConfirm(&m, "")
			}
		case "n", "esc":
			m.popPopup()
			if p.OnCancel != nil {
				p.OnCancel(&m)
			}
		}
		return m, nil

	case PopupPrompt:
		if msg.String() == "esc" {
			m.popPopup()
			if p.OnCancel != nil {
				p.OnCancel(&m)
			}
			return m, nil
		}

		form, cmd := p.form.Update(msg)
		if f, ok := form.(*huh.Form); ok {
			p.form = f
		}
		m.popups[len(m.popups)-1] = p

		if p.form.State == huh.StateCompleted {
			value := p.form.GetString(firstHuhFieldKey)
			m.popPopup()
			if p.OnConfirm != nil {
				p.OnConfirm(&m, value)
			}
			return m, nil
		}
		if p.form.State == huh.StateAborted {
			m.popPopup()
			if p.OnCancel != nil {
				p.OnCancel(&m)
			}
			return m, nil
		}
		return m, cmd
	}
	return m, nil
}
