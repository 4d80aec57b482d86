package editor

// KeyType enumerates the small set of non-printable keys the editor
// reacts to; everything else arrives as a printable rune.
type KeyType int

const (
	KeyRune KeyType = iota
	KeyEsc
	KeyEnter
	KeyBackspace
	KeyCtrlD
	KeyCtrlU
	KeyCtrlR
)

// Key is one input event. For KeyRune, Rune holds the printable
// character; the TUI controller (C8) is responsible for translating
// whatever key-event type its input library produces into this shape, so
// this package stays free of any terminal or bubbletea dependency (spec
// §4.7: "a pure state machine").
type Key struct {
	Type KeyType
	Rune rune
}

// Handle applies one key event and returns whether the buffer's text
// content changed (the caller uses this to decide whether to mark the
// owning session dirty).
func (e *Editor) Handle(k Key) bool {
	switch e.mode {
	case Insert:
		return e.handleInsert(k)
	case Visual:
		return e.handleVisual(k)
	default:
		return e.handleNormal(k)
	}
}

func (e *Editor) handleNormal(k Key) bool {
	if k.Type != KeyRune {
		switch k.Type {
		case KeyCtrlD:
			e.snapshotNow()
			e.deleteLine()
			return true
		case KeyCtrlU:
			return e.Undo()
		case KeyCtrlR:
			return e.Redo()
		}
		return false
	}

	switch k.Rune {
	case 'h':
		e.moveCol(-1)
	case 'l':
		e.moveCol(1)
	case 'j':
		e.moveRow(1)
	case 'k':
		e.moveRow(-1)
	case '0':
		e.cursor.Col = 0
	case '$':
		e.cursor.Col = maxInt(0, len(e.line(e.cursor.Row))-1)
	case 'g':
		e.cursor.Row, e.cursor.Col = 0, 0
	case 'G':
		e.cursor.Row = len(e.lines) - 1
		e.clampCol()
	case 'x':
		e.snapshotNow()
		e.deleteRune()
		return true
	case 'c':
		e.snapshotNow()
		e.lines = []string{""}
		e.cursor = Pos{}
		return true
	case 'v':
		e.mode = Visual
		e.anchor = e.cursor
	case 'i':
		e.snapshotNow()
		e.mode = Insert
	case 'a':
		e.snapshotNow()
		e.mode = Insert
		e.cursor.Col = minInt(len(e.line(e.cursor.Row)), e.cursor.Col+1)
	case 'A':
		e.snapshotNow()
		e.mode = Insert
		e.cursor.Col = len(e.line(e.cursor.Row))
	case 'o':
		e.snapshotNow()
		e.openLine(e.cursor.Row + 1)
		e.mode = Insert
		return true
	case 'O':
		e.snapshotNow()
		e.openLine(e.cursor.Row)
		e.mode = Insert
		return true
	}
	return false
}

func (e *Editor) handleInsert(k Key) bool {
	switch k.Type {
	case KeyEsc:
		e.mode = Normal
		e.clampCol()
		return false
	case KeyEnter:
		e.splitLine()
		return true
	case KeyBackspace:
		return e.backspace()
	case KeyRune:
		e.insertRune(k.Rune)
		return true
	}
	return false
}

func (e *Editor) handleVisual(k Key) bool {
	if k.Type != KeyRune {
		if k.Type == KeyEsc {
			e.mode = Normal // mode-exit discards selection; no buffer change
		}
		return false
	}

	switch k.Rune {
	case 'h':
		e.moveCol(-1)
		return false
	case 'l':
		e.moveCol(1)
		return false
	case 'j':
		e.moveRow(1)
		return false
	case 'k':
		e.moveRow(-1)
		return false
	case 'y':
		e.register = e.selectedText()
		e.mode = Normal
		return false
	case 'd', 'x':
		e.snapshotNow()
		e.register = e.selectedText()
		e.deleteSelection()
		e.mode = Normal
		return true
	}
	return false
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
