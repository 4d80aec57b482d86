package editor

import "strings"

func (e *Editor) moveCol(delta int) {
	e.cursor.Col += delta
	e.clampCol()
}

func (e *Editor) moveRow(delta int) {
	e.cursor.Row += delta
	e.clampRow()
	e.clampCol()
}

func (e *Editor) insertRune(r rune) {
	line := e.line(e.cursor.Row)
	col := e.cursor.Col
	if r == '\n' {
		e.splitLine()
		return
	}
	newLine := make([]rune, 0, len(line)+1)
	newLine = append(newLine, line[:col]...)
	newLine = append(newLine, r)
	newLine = append(newLine, line[col:]...)
	e.lines[e.cursor.Row] = string(newLine)
	e.cursor.Col++
}

func (e *Editor) splitLine() {
	line := e.line(e.cursor.Row)
	col := e.cursor.Col
	before := string(line[:col])
	after := string(line[col:])

	e.lines = append(e.lines[:e.cursor.Row], append([]string{before, after}, e.lines[e.cursor.Row+1:]...)...)
	e.cursor.Row++
	e.cursor.Col = 0
}

// openLine inserts a blank line at row (shifting subsequent lines down)
// and places the cursor at its start. row may equal len(e.lines) to
// append at the end.
func (e *Editor) openLine(row int) {
	if row < 0 {
		row = 0
	}
	if row > len(e.lines) {
		row = len(e.lines)
	}
	e.lines = append(e.lines[:row], append([]string{""}, e.lines[row:]...)...)
	e.cursor = Pos{Row: row, Col: 0}
}

func (e *Editor) backspace() bool {
	if e.cursor.Col > 0 {
		line := e.line(e.cursor.Row)
		e.lines[e.cursor.Row] = string(append(line[:e.cursor.Col-1], line[e.cursor.Col:]...))
		e.cursor.Col--
		return true
	}
	if e.cursor.Row > 0 {
		prev := e.line(e.cursor.Row - 1)
		cur := e.line(e.cursor.Row)
		joinCol := len(prev)
		merged := string(append(append([]rune{}, prev...), cur...))
		e.lines = append(e.lines[:e.cursor.Row-1], append([]string{merged}, e.lines[e.cursor.Row+1:]...)...)
		e.cursor.Row--
		e.cursor.Col = joinCol
		return true
	}
	return false
}

func (e *Editor) deleteRune() {
	line := e.line(e.cursor.Row)
	if len(line) == 0 {
		return
	}
	col := e.cursor.Col
	e.lines[e.cursor.Row] = string(append(line[:col], line[col+1:]...))
	e.clampCol()
}

// deleteLine removes the current line entirely. A buffer never shrinks
// below one line: deleting the only line clears it to empty instead.
func (e *Editor) deleteLine() {
	if len(e.lines) == 1 {
		e.lines[0] = ""
		e.cursor.Col = 0
		return
	}
	row := e.cursor.Row
	e.lines = append(e.lines[:row], e.lines[row+1:]...)
	e.clampRow()
	e.clampCol()
}

func (e *Editor) selectedText() string {
	from, to, ok := e.Selection()
	if !ok {
		return ""
	}
	if from.Row == to.Row {
		line := e.line(from.Row)
		end := minInt(to.Col+1, len(line))
		return string(line[from.Col:end])
	}

	var b strings.Builder
	firstLine := e.line(from.Row)
	b.WriteString(string(firstLine[from.Col:]))
	for row := from.Row + 1; row < to.Row; row++ {
		b.WriteByte('\n')
		b.WriteString(e.lines[row])
	}
	lastLine := e.line(to.Row)
	end := minInt(to.Col+1, len(lastLine))
	b.WriteByte('\n')
	b.WriteString(string(lastLine[:end]))
	return b.String()
}

// deleteSelection removes the inclusive selection range and leaves the
// cursor at the start of what remains.
func (e *Editor) deleteSelection() {
	from, to, ok := e.Selection()
	if !ok {
		return
	}

	if from.Row == to.Row {
		line := e.line(from.Row)
		end := minInt(to.Col+1, len(line))
		e.lines[from.Row] = string(append(line[:from.Col], line[end:]...))
		e.cursor = from
		e.clampCol()
		return
	}

	firstLine := e.line(from.Row)
	lastLine := e.line(to.Row)
	end := minInt(to.Col+1, len(lastLine))
	merged := string(firstLine[:from.Col]) + string(lastLine[end:])

	newLines := make([]string, 0, len(e.lines)-(to.Row-from.Row))
	newLines = append(newLines, e.lines[:from.Row]...)
	newLines = append(newLines, merged)
	newLines = append(newLines, e.lines[to.Row+1:]...)
	e.lines = newLines
	e.cursor = from
	e.clampCol()
}
