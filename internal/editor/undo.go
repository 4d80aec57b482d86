package editor

// snapshotNow pushes the current buffer+cursor onto the undo stack and
// clears the redo stack (spec §4.7: "redo stack is cleared on a new edit
// after undo"). Call this once per logical edit, not per keystroke — the
// call sites are Insert-mode entry (i, a, A, o, O), each non-movement
// Normal-mode edit, and Visual-mode deletion.
func (e *Editor) snapshotNow() {
	e.undo = append(e.undo, snapshot{lines: e.Lines(), cursor: e.cursor})
	if len(e.undo) > historyCap {
		e.undo = e.undo[len(e.undo)-historyCap:]
	}
	e.redo = nil
}

// Undo restores the most recent snapshot, pushing the current state onto
// the redo stack. Returns false if there is nothing to undo.
func (e *Editor) Undo() bool {
	if len(e.undo) == 0 {
		return false
	}
	cur := snapshot{lines: e.Lines(), cursor: e.cursor}
	last := e.undo[len(e.undo)-1]
	e.undo = e.undo[:len(e.undo)-1]
	e.redo = append(e.redo, cur)

	e.lines = last.lines
	e.cursor = last.cursor
	e.clampRow()
	e.clampCol()
	return true
}

// Redo re-applies the most recently undone snapshot. Returns false if
// there is nothing to redo.
func (e *Editor) Redo() bool {
	if len(e.redo) == 0 {
		return false
	}
	cur := snapshot{lines: e.Lines(), cursor: e.cursor}
	last := e.redo[len(e.redo)-1]
	e.redo = e.redo[:len(e.redo)-1]
	e.undo = append(e.undo, cur)

	e.lines = last.lines
	e.cursor = last.cursor
	e.clampRow()
	e.clampCol()
	return true
}
