package workspace

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchGlob(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		input   string
		want    bool
	}{
		{"exact match", "prod-logs", "prod-logs", true},
		{"star suffix", "prod-*", "prod-logs", true},
		{"star suffix rejects", "prod-*", "dev-logs", false},
		{"question mark", "ws-?", "ws-1", true},
		{"question mark wrong length", "ws-?", "ws-10", false},
		{"character class", "ws-[0-9]", "ws-5", true},
		{"character class rejects", "ws-[0-9]", "ws-a", false},
		{"negated class", "ws-[!0-9]", "ws-a", true},
		{"case insensitive", "PROD-*", "prod-logs", true},
		{"star matches empty", "prod*", "prod", true},
		{"no metacharacters, no match", "prod", "production", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MatchGlob(tt.pattern, tt.input))
		})
	}
}

func TestMatchGlob_UnterminatedClassNeverMatches(t *testing.T) {
	assert.False(t, MatchGlob("ws-[0-9", "ws-5"))
}

type fakeDiscoverer struct {
	workspaces []Workspace
	warnings   []Warning
	err        error
}

func (f fakeDiscoverer) Discover(ctx context.Context) ([]Workspace, []Warning, error) {
	return f.workspaces, f.warnings, f.err
}

func TestCatalog_RefreshSortsBySubscriptionThenName(t *testing.T) {
	d := fakeDiscoverer{workspaces: []Workspace{
		{ID: "2", Name: "zeta", SubscriptionName: "sub-a"},
		{ID: "1", Name: "alpha", SubscriptionName: "sub-a"},
		{ID: "3", Name: "anything", SubscriptionName: "sub-b"},
	}}
	c := NewCatalog()

	_, err := c.Refresh(context.Background(), d)
	require.NoError(t, err)

	all := c.All()
	require.Len(t, all, 3)
	assert.Equal(t, "alpha", all[0].Name)
	assert.Equal(t, "zeta", all[1].Name)
	assert.Equal(t, "anything", all[2].Name)
}

func TestCatalog_RefreshPropagatesDiscoveryError(t *testing.T) {
	d := fakeDiscoverer{err: errors.New("boom")}
	c := NewCatalog()

	_, err := c.Refresh(context.Background(), d)
	require.Error(t, err)
	assert.Empty(t, c.All())
}

func TestCatalog_ByKeyLookup(t *testing.T) {
	w := Workspace{ID: "ws1", SubscriptionID: "sub1", Name: "prod"}
	d := fakeDiscoverer{workspaces: []Workspace{w}}
	c := NewCatalog()
	_, err := c.Refresh(context.Background(), d)
	require.NoError(t, err)

	got, ok := c.ByKey(w.Key())
	require.True(t, ok)
	assert.Equal(t, "prod", got.Name)

	_, ok = c.ByKey("missing")
	assert.False(t, ok)
}

func TestCatalog_AllReturnsACopy(t *testing.T) {
	d := fakeDiscoverer{workspaces: []Workspace{{ID: "1", Name: "a"}}}
	c := NewCatalog()
	_, err := c.Refresh(context.Background(), d)
	require.NoError(t, err)

	all := c.All()
	all[0].Name = "mutated"

	again := c.All()
	assert.Equal(t, "a", again[0].Name)
}
