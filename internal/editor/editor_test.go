package editor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func keyRune(r rune) Key { return Key{Type: KeyRune, Rune: r} }

func typeText(e *Editor, s string) {
	for _, r := range s {
		e.Handle(keyRune(r))
	}
}

func TestNew_StartsInNormalModeWithOneBlankLine(t *testing.T) {
	e := New()
	assert.Equal(t, Normal, e.Mode())
	assert.Equal(t, []string{""}, e.Lines())
}

func TestFromText_SplitsOnNewlines(t *testing.T) {
	e := FromText("a\nb\nc")
	assert.Equal(t, []string{"a", "b", "c"}, e.Lines())
}

func TestFromText_EmptyStringYieldsOneBlankLine(t *testing.T) {
	e := FromText("")
	assert.Equal(t, []string{""}, e.Lines())
}

func TestInsertMode_TypingAppendsRunes(t *testing.T) {
	e := New()
	e.Handle(keyRune('i'))
	require.Equal(t, Insert, e.Mode())
	typeText(e, "Heartbeat")
	assert.Equal(t, "Heartbeat", e.Text())
}

func TestInsertMode_EnterSplitsLine(t *testing.T) {
	e := New()
	e.Handle(keyRune('i'))
	typeText(e, "ab")
	e.Handle(Key{Type: KeyEnter})
	typeText(e, "cd")
	assert.Equal(t, "ab\ncd", e.Text())
}

func TestInsertMode_EscReturnsToNormalAndClampsCursor(t *testing.T) {
	e := New()
	e.Handle(keyRune('i'))
	typeText(e, "abc")
	e.Handle(Key{Type: KeyEsc})
	assert.Equal(t, Normal, e.Mode())
	assert.Equal(t, 2, e.Cursor().Col, "normal mode cursor rests on the last character, not past it")
}

func TestNormalMode_XDeletesCharacterUnderCursor(t *testing.T) {
	e := FromText("abc")
	e.Handle(keyRune('x'))
	assert.Equal(t, "bc", e.Text())
}

func TestNormalMode_CtrlDDeletesWholeLine(t *testing.T) {
	e := FromText("a\nb\nc")
	e.Handle(Key{Type: KeyCtrlD})
	assert.Equal(t, "b\nc", e.Text())
}

func TestNormalMode_DeletingOnlyLineClearsInsteadOfRemoving(t *testing.T) {
	e := FromText("only")
	e.Handle(Key{Type: KeyCtrlD})
	assert.Equal(t, []string{""}, e.Lines())
}

func TestUndoRedo_RevertsAnInsertSession(t *testing.T) {
	e := FromText("abc")
	e.Handle(keyRune('i')) // snapshot of "abc" taken on entry, not on exit
	typeText(e, "XY")
	e.Handle(Key{Type: KeyEsc})
	require.Equal(t, "XYabc", e.Text())

	ok := e.Undo()
	require.True(t, ok)
	assert.Equal(t, "abc", e.Text(), "undoing an insert session must restore the pre-insert buffer, not no-op")
}

func TestUndoRedo_RoundTripsThroughAnEdit(t *testing.T) {
	e := FromText("abc")
	e.Handle(keyRune('x')) // deletes 'a' -> "bc", snapshot of "abc" pushed
	require.Equal(t, "bc", e.Text())

	ok := e.Undo()
	require.True(t, ok)
	assert.Equal(t, "abc", e.Text())

	ok = e.Redo()
	require.True(t, ok)
	assert.Equal(t, "bc", e.Text())
}

func TestUndo_ReturnsFalseWhenHistoryEmpty(t *testing.T) {
	e := New()
	assert.False(t, e.Undo())
}

func TestRedo_ReturnsFalseWhenNothingUndone(t *testing.T) {
	e := New()
	assert.False(t, e.Redo())
}

func TestSnapshotNow_NewEditClearsRedoStack(t *testing.T) {
	e := FromText("abc")
	e.Handle(keyRune('x')) // "bc"
	e.Undo()             // back to "abc", redo has one entry
	e.Handle(keyRune('x')) // new edit: "bc" again, must clear redo
	assert.False(t, e.Redo(), "redo stack must be cleared by a fresh edit after undo")
}

func TestUndoHistory_BoundedBySoftCap(t *testing.T) {
	e := FromText("a")
	e.Handle(keyRune('i'))
	for i := 0; i < historyCap+50; i++ {
		e.Handle(Key{Type: KeyEsc})
		e.Handle(keyRune('i'))
	}
	e.Handle(Key{Type: KeyEsc})

	undone := 0
	for e.Undo() {
		undone++
		if undone > historyCap+10 {
			t.Fatalf("undo stack exceeded its soft cap")
		}
	}
	assert.LessOrEqual(t, undone, historyCap)
}

func TestVisualMode_YankCopiesSelectionWithoutMutatingBuffer(t *testing.T) {
	e := FromText("abcdef")
	e.Handle(keyRune('v'))
	e.Handle(keyRune('l'))
	e.Handle(keyRune('l'))
	changed := e.Handle(keyRune('y'))

	assert.False(t, changed)
	assert.Equal(t, Normal, e.Mode())
	assert.Equal(t, "abcdef", e.Text())
}

func TestVisualMode_DeleteRemovesSelectionInclusive(t *testing.T) {
	e := FromText("abcdef")
	e.Handle(keyRune('v'))
	e.Handle(keyRune('l'))
	e.Handle(keyRune('l'))
	changed := e.Handle(keyRune('d'))

	assert.True(t, changed)
	assert.Equal(t, "ef", e.Text())
	assert.Equal(t, Normal, e.Mode())
}

func TestVisualMode_EscDiscardsSelectionWithoutChange(t *testing.T) {
	e := FromText("abcdef")
	e.Handle(keyRune('v'))
	e.Handle(keyRune('l'))
	changed := e.Handle(Key{Type: KeyEsc})

	assert.False(t, changed)
	assert.Equal(t, Normal, e.Mode())
	assert.Equal(t, "abcdef", e.Text())
}

func TestSelection_NormalizesRegardlessOfAnchorDirection(t *testing.T) {
	e := FromText("abcdef")
	e.Handle(keyRune('l'))
	e.Handle(keyRune('l'))
	e.Handle(keyRune('l')) // cursor now at col 3
	e.Handle(keyRune('v')) // anchor at col 3
	e.Handle(keyRune('h'))
	e.Handle(keyRune('h')) // cursor now at col 1, before the anchor

	from, to, ok := e.Selection()
	require.True(t, ok)
	assert.Equal(t, 1, from.Col)
	assert.Equal(t, 3, to.Col)
}

func TestBackspace_JoinsWithPreviousLineAtLineStart(t *testing.T) {
	e := FromText("ab\ncd")
	e.Handle(keyRune('j')) // move to second line
	e.Handle(keyRune('i'))
	e.Handle(Key{Type: KeyBackspace})
	assert.Equal(t, "abcd", e.Text())
}

func TestOpenLine_BelowInsertsBlankLineAndEntersInsert(t *testing.T) {
	e := FromText("a")
	e.Handle(keyRune('o'))
	assert.Equal(t, Insert, e.Mode())
	typeText(e, "b")
	assert.Equal(t, "a\nb", e.Text())
}
