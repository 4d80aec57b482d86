package pack

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dolly-parseton/kql-panopticon/internal/settings"
	"github.com/dolly-parseton/kql-panopticon/internal/workspace"
)

func TestValidate_RequiresName(t *testing.T) {
	p := &Pack{Query: "Heartbeat"}
	err := p.Validate()
	require.Error(t, err)
	fe, ok := err.(*FieldError)
	require.True(t, ok)
	assert.Equal(t, "name", fe.Field)
}

func TestValidate_ExactlyOneOfQueryOrQueries(t *testing.T) {
	both := &Pack{Name: "p", Query: "Heartbeat", Queries: []Query{{Name: "a", Query: "b"}}}
	assert.Error(t, both.Validate())

	neither := &Pack{Name: "p"}
	assert.Error(t, neither.Validate())

	single := &Pack{Name: "p", Query: "Heartbeat"}
	assert.NoError(t, single.Validate())

	multi := &Pack{Name: "p", Queries: []Query{{Name: "a", Query: "Heartbeat"}}}
	assert.NoError(t, multi.Validate())
}

func TestValidate_RejectsDuplicateQueryNames(t *testing.T) {
	p := &Pack{Name: "p", Queries: []Query{
		{Name: "a", Query: "x"},
		{Name: "a", Query: "y"},
	}}
	err := p.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate")
}

func TestValidate_PatternScopeRequiresPatterns(t *testing.T) {
	p := &Pack{Name: "p", Query: "Heartbeat", Workspaces: &WorkspaceScope{Scope: ScopePattern}}
	err := p.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "patterns")
}

func TestAllQueries_SingleQueryHasEmptyName(t *testing.T) {
	p := &Pack{Name: "p", Query: "Heartbeat"}
	qs := p.AllQueries()
	require.Len(t, qs, 1)
	assert.Empty(t, qs[0].Name)
	assert.False(t, p.IsMultiQuery())
}

func TestApplyOverride_OnlyTouchesSetFields(t *testing.T) {
	base := settings.Default()
	base.ExportCSV = true
	base.ExportJSON = false

	no := false
	p := &Pack{Settings: &SettingsOverride{ExportJSON: &no}}
	out := p.ApplyOverride(base)

	assert.True(t, out.ExportCSV, "untouched field preserved")
	assert.False(t, out.ExportJSON)
}

func TestResolveWorkspaces_DefaultsToAllWhenScopeNil(t *testing.T) {
	p := &Pack{Name: "p", Query: "q"}
	all := []workspace.Workspace{{ID: "1", Name: "a"}, {ID: "2", Name: "b"}}

	out, err := p.ResolveWorkspaces(all, nil)
	require.NoError(t, err)
	assert.Len(t, out, 2)
}

func TestResolveWorkspaces_SelectedScopeFiltersBySelectionMap(t *testing.T) {
	p := &Pack{Name: "p", Query: "q", Workspaces: &WorkspaceScope{Scope: ScopeSelected}}
	all := []workspace.Workspace{{ID: "1", Name: "a"}, {ID: "2", Name: "b"}}
	selected := map[string]bool{all[1].Key(): true}

	out, err := p.ResolveWorkspaces(all, selected)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "b", out[0].Name)
}

func TestResolveWorkspaces_PatternScopeUsesGlob(t *testing.T) {
	p := &Pack{Name: "p", Query: "q", Workspaces: &WorkspaceScope{Scope: ScopePattern, Patterns: []string{"prod-*"}}}
	all := []workspace.Workspace{{ID: "1", Name: "prod-east"}, {ID: "2", Name: "dev-east"}}

	out, err := p.ResolveWorkspaces(all, nil)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "prod-east", out[0].Name)
}

func TestMaterialize_OneJobPerQueryPerWorkspace(t *testing.T) {
	p := &Pack{Name: "audit", Queries: []Query{
		{Name: "q1", Query: "Heartbeat"},
		{Name: "q2", Query: "AzureActivity"},
	}}
	workspaces := []workspace.Workspace{{ID: "1", Name: "a"}, {ID: "2", Name: "b"}}
	ts := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	jobs := p.Materialize(workspaces, settings.Default(), ts)
	require.Len(t, jobs, 4)
	for _, j := range jobs {
		assert.Equal(t, "audit", j.Name)
		assert.Equal(t, ts, j.DispatchTimestamp)
		assert.Equal(t, "audit", j.Context.SourcePack)
		assert.NotEmpty(t, j.Context.QueryName, "multi-query pack must stamp QueryName")
	}
}

func TestMaterialize_SingleQueryLeavesQueryNameEmpty(t *testing.T) {
	p := &Pack{Name: "audit", Query: "Heartbeat"}
	workspaces := []workspace.Workspace{{ID: "1", Name: "a"}}
	jobs := p.Materialize(workspaces, settings.Default(), time.Now())

	require.Len(t, jobs, 1)
	assert.Empty(t, jobs[0].Context.QueryName)
}

func TestStore_SaveRefusesOverwriteByDefault(t *testing.T) {
	dir := t.TempDir()
	s := &Store{Root: dir}
	p := &Pack{Name: "audit", Query: "Heartbeat"}

	path, err := s.Save(p, "audit", false)
	require.NoError(t, err)
	assert.FileExists(t, path)

	_, err = s.Save(p, "audit", false)
	assert.Error(t, err)

	_, err = s.Save(p, "audit", true)
	assert.NoError(t, err)
}

func TestStore_LoadAllSurvivesMalformedFilesAlongsideGoodOnes(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "good.yaml"), []byte("name: good\nquery: Heartbeat\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.yaml"), []byte(": not valid yaml :::"), 0o644))

	s := &Store{Root: dir}
	results, err := s.LoadAll()
	require.NoError(t, err)
	require.Len(t, results, 2)

	var sawGood, sawBad bool
	for _, r := range results {
		if r.Err == nil {
			sawGood = true
			assert.Equal(t, "good", r.Pack.Name)
		} else {
			sawBad = true
		}
	}
	assert.True(t, sawGood)
	assert.True(t, sawBad)
}

func TestLoadFile_AttachesSourcePath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "p.yaml")
	require.NoError(t, os.WriteFile(path, []byte("name: p\nquery: Heartbeat\n"), 0o644))

	p, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, path, p.SourcePath)
}
