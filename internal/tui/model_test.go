package tui

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dolly-parseton/kql-panopticon/internal/session"
	"github.com/dolly-parseton/kql-panopticon/internal/settings"
	"github.com/dolly-parseton/kql-panopticon/internal/workspace"
)

func newTestModel() Model {
	return New(Deps{})
}

func TestNew_StartsOnWorkspacesTabWithNoSelection(t *testing.T) {
	m := newTestModel()
	assert.Equal(t, TabWorkspaces, m.activeTab)
	assert.Empty(t, m.selected)
}

func TestSelectedWorkspaces_FallsBackToAllWhenNoneChecked(t *testing.T) {
	m := newTestModel()
	d := staticDiscoverer{ws: []workspace.Workspace{{ID: "1", Name: "a"}, {ID: "2", Name: "b"}}}
	_, err := m.catalog.Refresh(context.Background(), d)
	require.NoError(t, err)

	got := m.selectedWorkspaces()
	assert.Len(t, got, 2, "an empty selection means dispatch to every discovered workspace, not zero")
}

func TestSelectedWorkspaces_ReturnsOnlyCheckedWorkspaces(t *testing.T) {
	m := newTestModel()
	d := staticDiscoverer{ws: []workspace.Workspace{{ID: "1", Name: "a"}, {ID: "2", Name: "b"}}}
	_, err := m.catalog.Refresh(context.Background(), d)
	require.NoError(t, err)

	all := m.catalog.All()
	m.selected[all[0].Key()] = true

	got := m.selectedWorkspaces()
	require.Len(t, got, 1)
	assert.Equal(t, "a", got[0].Name)
}

func TestVisibleWorkspaces_FiltersCaseInsensitivelyBySubstring(t *testing.T) {
	m := newTestModel()
	d := staticDiscoverer{ws: []workspace.Workspace{{ID: "1", Name: "prod-east"}, {ID: "2", Name: "staging-west"}}}
	_, err := m.catalog.Refresh(context.Background(), d)
	require.NoError(t, err)

	assert.Len(t, m.visibleWorkspaces(), 2, "no filter means every discovered workspace")

	m.workspaceFilter = "PROD"
	got := m.visibleWorkspaces()
	require.Len(t, got, 1)
	assert.Equal(t, "prod-east", got[0].Name)
}

func TestPushPopPopup_StackOrder(t *testing.T) {
	m := newTestModel()
	assert.Nil(t, m.currentPopup())

	m.pushPopup(newConfirmPopup("first", "msg", nil, nil))
	m.pushPopup(newConfirmPopup("second", "msg", nil, nil))

	require.NotNil(t, m.currentPopup())
	assert.Equal(t, "second", m.currentPopup().Title)

	m.popPopup()
	require.NotNil(t, m.currentPopup())
	assert.Equal(t, "first", m.currentPopup().Title)

	m.popPopup()
	assert.Nil(t, m.currentPopup())
}

func TestAsSession_SnapshotsCurrentState(t *testing.T) {
	m := newTestModel()
	m.sourcePack = "nightly"

	now := time.Now()
	s := m.asSession("mysession", now)

	assert.Equal(t, "mysession", s.Name)
	assert.Equal(t, now, s.SavedAt)
	assert.Equal(t, "nightly", s.SourcePack)
	assert.Equal(t, m.settings, s.Settings)
}

func TestLoadSession_ReplacesInMemoryStateAndClearsDirty(t *testing.T) {
	m := newTestModel()
	m.markDirty()

	s := &session.Session{
		Name:         "loaded",
		Settings:     settings.Default(),
		SourcePack:   "weekly",
		EditorBuffer: []string{"let x = 1", "x"},
	}
	m.loadSession(s)

	assert.False(t, m.dirty)
	assert.Equal(t, "loaded", m.currentSession)
	assert.Equal(t, "weekly", m.sourcePack)
	assert.Equal(t, "let x = 1\nx", m.ed.Text())
}
