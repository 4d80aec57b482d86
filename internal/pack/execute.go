package pack

import (
	"fmt"
	"time"

	"github.com/dolly-parseton/kql-panopticon/internal/job"
	"github.com/dolly-parseton/kql-panopticon/internal/settings"
	"github.com/dolly-parseton/kql-panopticon/internal/workspace"
)

// ApplyOverride merges the pack's optional settings override onto base,
// returning a new Settings value (spec §3: "Optional embedded settings
// overrides").
func (p *Pack) ApplyOverride(base settings.Settings) settings.Settings {
	out := base.Clone()
	if p.Settings == nil {
		return out
	}
	if p.Settings.ExportCSV != nil {
		out.ExportCSV = *p.Settings.ExportCSV
	}
	if p.Settings.ExportJSON != nil {
		out.ExportJSON = *p.Settings.ExportJSON
	}
	if p.Settings.ParseDynamics != nil {
		out.ParseDynamics = *p.Settings.ParseDynamics
	}
	return out
}

// ResolveWorkspaces resolves the pack's workspace scope against the
// current catalog and the UI's selection set (spec §4.5). selected is
// consulted only for ScopeSelected. When p.Workspaces is nil, the CLI
// convention (all, unless --workspaces given) is the caller's
// responsibility — ResolveWorkspaces defaults a nil scope to "all".
func (p *Pack) ResolveWorkspaces(all []workspace.Workspace, selected map[string]bool) ([]workspace.Workspace, error) {
	scope := ScopeAll
	var patterns []string
	if p.Workspaces != nil {
		scope = p.Workspaces.Scope
		patterns = p.Workspaces.Patterns
	}

	switch scope {
	case ScopeAll:
		return all, nil
	case ScopeSelected:
		var out []workspace.Workspace
		for _, w := range all {
			if selected[w.Key()] {
				out = append(out, w)
			}
		}
		return out, nil
	case ScopePattern:
		var out []workspace.Workspace
		for _, w := range all {
			for _, pat := range patterns {
				if workspace.MatchGlob(pat, w.Name) {
					out = append(out, w)
					break
				}
			}
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unknown workspace scope %q", scope)
	}
}

// Materialize builds one Job per (query-in-pack, workspace-in-scope),
// sharing dispatchTS across every job (spec §4.5, §4.4). baseSettings is
// the live Settings at dispatch time, before the pack's own override is
// applied — the override is applied here so the snapshot frozen on each
// Job.Context is already the effective one.
func (p *Pack) Materialize(workspaces []workspace.Workspace, baseSettings settings.Settings, dispatchTS time.Time) []*job.Job {
	effective := p.ApplyOverride(baseSettings)
	queries := p.AllQueries()
	multi := p.IsMultiQuery()

	jobs := make([]*job.Job, 0, len(queries)*len(workspaces))
	for _, q := range queries {
		queryName := ""
		if multi {
			queryName = q.Name
		}
		for _, w := range workspaces {
			ctx := &job.Context{
				WorkspaceID:      w.ID,
				WorkspaceName:    w.Name,
				SubscriptionID:   w.SubscriptionID,
				SubscriptionName: w.SubscriptionName,
				Query:            q.Query,
				QueryName:        queryName,
				Settings:         effective,
				SourcePack:       p.Name,
			}
			// Job.Name is shared across every sibling job of one dispatch
			// (spec §3); the per-query distinction lives in Context.QueryName
			// and only affects the export filename (spec §4.4).
			jobs = append(jobs, job.New(p.Name, ctx, dispatchTS))
		}
	}
	return jobs
}
