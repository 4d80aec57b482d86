// Package workspace models the Log Analytics workspaces a credential can
// read (spec §3 "Workspace", §4.1 C1 Workspace Catalog) and the one-shot
// discovery port the rest of the engine depends on.
//
// The real discovery implementation lives in internal/azure, which talks to
// Azure Resource Manager; this package only defines the port and an
// in-memory Catalog, following the ports-not-concrete-types pattern used for
// Yacobolo-ducklake-dataplatform's internal/domain/ports.go.
package workspace

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Workspace is the immutable identity of a queryable Log Analytics
// endpoint. It is copied by value into jobs, never referenced, so that a
// catalog refresh can never invalidate a job already in flight (spec §3).
type Workspace struct {
	ID                   string
	Name                 string
	SubscriptionID       string
	SubscriptionName     string
	ResourceGroupName    string
	Region               string
}

// Key returns a stable identity usable as a map key or UI row key.
func (w Workspace) Key() string {
	return w.SubscriptionID + "/" + w.ID
}

// Discoverer is the one-shot discovery port (spec §4.1). Implementations
// must return the full accessible workspace list across every visible
// subscription and tenant (Lighthouse cross-tenant included), plus any
// non-fatal per-subscription warnings.
type Discoverer interface {
	Discover(ctx context.Context) ([]Workspace, []Warning, error)
}

// Warning describes a non-fatal failure while scanning one subscription.
// Discovery still succeeds with the remaining subscriptions (spec §4.1).
type Warning struct {
	SubscriptionID   string
	SubscriptionName string
	Err              error
}

func (w Warning) String() string {
	return fmt.Sprintf("subscription %s (%s): %v", w.SubscriptionName, w.SubscriptionID, w.Err)
}

// Catalog is the process-wide, init-on-startup, refresh-on-demand cache of
// discovered workspaces (spec §9 "global state... model as values threaded
// through the update loop, not as ambient globals" — Catalog is a plain
// value owned by the TUI Model / CLI wiring, not a package-level var).
type Catalog struct {
	mu         sync.RWMutex
	workspaces []Workspace
	warnings   []Warning
}

// NewCatalog returns an empty catalog; call Refresh to populate it.
func NewCatalog() *Catalog {
	return &Catalog{}
}

// Refresh runs discovery and replaces the cached workspace list. Ordering
// is stable by (subscription name, workspace name) per spec §4.1.
func (c *Catalog) Refresh(ctx context.Context, d Discoverer) ([]Warning, error) {
	workspaces, warnings, err := d.Discover(ctx)
	if err != nil {
		return nil, fmt.Errorf("discover workspaces: %w", err)
	}

	sort.Slice(workspaces, func(i, j int) bool {
		if workspaces[i].SubscriptionName != workspaces[j].SubscriptionName {
			return workspaces[i].SubscriptionName < workspaces[j].SubscriptionName
		}
		return workspaces[i].Name < workspaces[j].Name
	})

	c.mu.Lock()
	c.workspaces = workspaces
	c.warnings = warnings
	c.mu.Unlock()

	return warnings, nil
}

// All returns a copy of the currently cached workspaces.
func (c *Catalog) All() []Workspace {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Workspace, len(c.workspaces))
	copy(out, c.workspaces)
	return out
}

// Warnings returns the warnings from the most recent Refresh.
func (c *Catalog) Warnings() []Warning {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Warning, len(c.warnings))
	copy(out, c.warnings)
	return out
}

// ByID looks up a workspace by its stable ID, scoped to a subscription
// since IDs are only unique within a subscription in some Azure tenants.
func (c *Catalog) ByKey(key string) (Workspace, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, w := range c.workspaces {
		if w.Key() == key {
			return w, true
		}
	}
	return Workspace{}, false
}

// MatchGlob reports whether name matches the simple shell glob pattern
// (supported metacharacters: '*', '?', '[...]' — spec §4.5, §9 Open
// Questions: "richer interpretation is out of scope").
func MatchGlob(pattern, name string) bool {
	ok, err := globMatch(strings.ToLower(pattern), strings.ToLower(name))
	if err != nil {
		return false
	}
	return ok
}

// globMatch is a small, dependency-free shell-glob matcher limited to '*',
// '?', and '[...]' classes, since path/filepath.Match rejects '/' specially
// in ways we don't want for workspace display names and pulls in behavior
// (Windows path separators) this spec doesn't need. Standard library usage
// here is a deliberate choice over filepath.Match — see DESIGN.md.
func globMatch(pattern, s string) (bool, error) {
	return matchGlobRunes([]rune(pattern), []rune(s))
}

func matchGlobRunes(pattern, s []rune) (bool, error) {
	for len(pattern) > 0 {
		switch pattern[0] {
		case '*':
			// Try every split point; classic backtracking glob match.
			for i := 0; i <= len(s); i++ {
				ok, err := matchGlobRunes(pattern[1:], s[i:])
				if err != nil {
					return false, err
				}
				if ok {
					return true, nil
				}
			}
			return false, nil
		case '?':
			if len(s) == 0 {
				return false, nil
			}
			pattern, s = pattern[1:], s[1:]
		case '[':
			end := indexRune(pattern, ']')
			if end < 0 {
				return false, fmt.Errorf("unterminated character class")
			}
			if len(s) == 0 {
				return false, nil
			}
			if !matchClass(pattern[1:end], s[0]) {
				return false, nil
			}
			pattern, s = pattern[end+1:], s[1:]
		default:
			if len(s) == 0 || pattern[0] != s[0] {
				return false, nil
			}
			pattern, s = pattern[1:], s[1:]
		}
	}
	return len(s) == 0, nil
}

func indexRune(rs []rune, target rune) int {
	for i, r := range rs {
		if r == target {
			return i
		}
	}
	return -1
}

func matchClass(class []rune, c rune) bool {
	negate := false
	if len(class) > 0 && (class[0] == '!' || class[0] == '^') {
		negate = true
		class = class[1:]
	}
	matched := false
	for i := 0; i < len(class); i++ {
		if i+2 < len(class) && class[i+1] == '-' {
			if class[i] <= c && c <= class[i+2] {
				matched = true
			}
			i += 2
			continue
		}
		if class[i] == c {
			matched = true
		}
	}
	if negate {
		return !matched
	}
	return matched
}
