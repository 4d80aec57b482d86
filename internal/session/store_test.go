package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dolly-parseton/kql-panopticon/internal/settings"
)

func newTestSession(name string) *Session {
	return &Session{Name: name, SavedAt: time.Now(), Settings: settings.Default(), Dirty: true}
}

func TestStore_SaveAsRefusesExistingUnlessOverwrite(t *testing.T) {
	s := &Store{Dir: t.TempDir()}
	sess := newTestSession("audit")

	require.NoError(t, s.SaveAs(sess, false))

	err := s.SaveAs(sess, false)
	require.ErrorIs(t, err, ErrExists)

	require.NoError(t, s.SaveAs(sess, true))
}

func TestStore_SaveOverwritesUnconditionally(t *testing.T) {
	s := &Store{Dir: t.TempDir()}
	sess := newTestSession("audit")
	require.NoError(t, s.Save(sess))
	require.NoError(t, s.Save(sess))
}

func TestStore_LoadClearsDirtyFlag(t *testing.T) {
	s := &Store{Dir: t.TempDir()}
	sess := newTestSession("audit")
	require.NoError(t, s.Save(sess))

	loaded, err := s.Load("audit")
	require.NoError(t, err)
	assert.False(t, loaded.Dirty)
	assert.Equal(t, "audit", loaded.Name)
}

func TestStore_LoadMissingReturnsErrNotFound(t *testing.T) {
	s := &Store{Dir: t.TempDir()}
	_, err := s.Load("missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_DeleteMissingReturnsErrNotFound(t *testing.T) {
	s := &Store{Dir: t.TempDir()}
	err := s.Delete("missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_ListReturnsSortedNamesWithoutExtension(t *testing.T) {
	s := &Store{Dir: t.TempDir()}
	require.NoError(t, s.Save(newTestSession("zeta")))
	require.NoError(t, s.Save(newTestSession("alpha")))

	names, err := s.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "zeta"}, names)
}

func TestStore_ListOnMissingDirectoryReturnsEmpty(t *testing.T) {
	s := &Store{Dir: t.TempDir() + "/does-not-exist"}
	names, err := s.List()
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestStore_DeleteRemovesFile(t *testing.T) {
	s := &Store{Dir: t.TempDir()}
	require.NoError(t, s.Save(newTestSession("audit")))
	require.NoError(t, s.Delete("audit"))

	_, err := s.Load("audit")
	assert.ErrorIs(t, err, ErrNotFound)
}
