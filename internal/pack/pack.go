// Package pack implements the reusable Query Pack artifact: its schema,
// validation, library loading, and execution into Jobs (spec §3 "Query
// Pack", §4.5 C5 Pack Store, §6 pack schema).
package pack

import "fmt"

// Scope selects which workspaces a pack runs against (spec §4.5).
type Scope string

const (
	ScopeAll      Scope = "all"
	ScopeSelected Scope = "selected"
	ScopePattern  Scope = "pattern"
)

// WorkspaceScope is the optional {scope, patterns} block (spec §6).
type WorkspaceScope struct {
	Scope    Scope    `yaml:"scope" json:"scope"`
	Patterns []string `yaml:"patterns,omitempty" json:"patterns,omitempty"`
}

// SettingsOverride holds the subset of settings.Settings a pack may
// override (spec §3, §6: "optional embedded settings overrides").
type SettingsOverride struct {
	ExportCSV     *bool `yaml:"export_csv,omitempty" json:"export_csv,omitempty"`
	ExportJSON    *bool `yaml:"export_json,omitempty" json:"export_json,omitempty"`
	ParseDynamics *bool `yaml:"parse_dynamics,omitempty" json:"parse_dynamics,omitempty"`
}

// Query is one entry of a multi-query pack's `queries` array (spec §6).
type Query struct {
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
	Query       string `yaml:"query" json:"query"`
}

// Pack is a durable, shareable artifact on disk (spec §3, §6). Exactly one
// of Query or Queries must be set — see Validate.
type Pack struct {
	Name        string            `yaml:"name" json:"name"`
	Description string            `yaml:"description,omitempty" json:"description,omitempty"`
	Author      string            `yaml:"author,omitempty" json:"author,omitempty"`
	Version     string            `yaml:"version,omitempty" json:"version,omitempty"`
	Query       string            `yaml:"query,omitempty" json:"query,omitempty"`
	Queries     []Query           `yaml:"queries,omitempty" json:"queries,omitempty"`
	Settings    *SettingsOverride `yaml:"settings,omitempty" json:"settings,omitempty"`
	Workspaces  *WorkspaceScope   `yaml:"workspaces,omitempty" json:"workspaces,omitempty"`

	// SourcePath is attached by the Store on load, not part of the file.
	SourcePath string `yaml:"-" json:"-"`
}

// IsMultiQuery reports whether this pack uses the `queries` array form.
func (p *Pack) IsMultiQuery() bool { return len(p.Queries) > 0 }

// AllQueries normalizes both pack forms into a uniform slice: a
// single-query pack yields one Query with an empty Name (so export
// filenames never get a superfluous `_{query_name}` suffix — spec §4.4).
func (p *Pack) AllQueries() []Query {
	if p.IsMultiQuery() {
		out := make([]Query, len(p.Queries))
		copy(out, p.Queries)
		return out
	}
	return []Query{{Query: p.Query}}
}

// FieldError names the offending field and the reason, so the caller can
// render a structured validation message (spec §4.5: "validation errors
// yield structured messages naming the offending field").
type FieldError struct {
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("field %q: %s", e.Field, e.Reason)
}

// Validate checks the structural schema invariants from spec §3/§6.
// It never panics on malformed input (spec §4.5).
func (p *Pack) Validate() error {
	if p.Name == "" {
		return &FieldError{Field: "name", Reason: "required"}
	}
	hasQuery := p.Query != ""
	hasQueries := len(p.Queries) > 0
	switch {
	case hasQuery && hasQueries:
		return &FieldError{Field: "query/queries", Reason: "exactly one of `query` or `queries` must be set, both were present"}
	case !hasQuery && !hasQueries:
		return &FieldError{Field: "query/queries", Reason: "exactly one of `query` or `queries` must be set, neither was present"}
	}
	if hasQueries {
		seen := make(map[string]bool, len(p.Queries))
		for i, q := range p.Queries {
			if q.Name == "" {
				return &FieldError{Field: fmt.Sprintf("queries[%d].name", i), Reason: "required"}
			}
			if q.Query == "" {
				return &FieldError{Field: fmt.Sprintf("queries[%d].query", i), Reason: "required"}
			}
			if seen[q.Name] {
				return &FieldError{Field: fmt.Sprintf("queries[%d].name", i), Reason: fmt.Sprintf("duplicate query name %q", q.Name)}
			}
			seen[q.Name] = true
		}
	}
	if p.Workspaces != nil {
		switch p.Workspaces.Scope {
		case ScopeAll, ScopeSelected:
		case ScopePattern:
			if len(p.Workspaces.Patterns) == 0 {
				return &FieldError{Field: "workspaces.patterns", Reason: "required when scope is \"pattern\""}
			}
		default:
			return &FieldError{Field: "workspaces.scope", Reason: fmt.Sprintf("unknown scope %q, expected all|selected|pattern", p.Workspaces.Scope)}
		}
	}
	return nil
}
