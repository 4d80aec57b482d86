package session

import (
	"errors"

	"github.com/dolly-parseton/kql-panopticon/internal/pack"
)

// ErrNoQueries is returned by ExportPack when no job in the session
// carries context to export (spec §4.6: "fail explicitly if zero jobs
// carry context").
var ErrNoQueries = errors.New("session: no queries to export")

// ExportPack builds a Pack from the session's jobs, deduplicating queries
// across sibling jobs: the same query text executed on N workspaces
// collapses to one query entry (spec §4.6, §8 scenario 6). The exported
// pack's provenance is the session's SourcePack if present.
func (s *Session) ExportPack(name string) (*pack.Pack, error) {
	type entry struct {
		name  string
		query string
	}

	var ordered []entry
	seen := make(map[string]bool)

	for _, j := range s.Jobs {
		if j.Context == nil {
			continue
		}
		key := j.Context.Query
		if seen[key] {
			continue
		}
		seen[key] = true

		queryName := j.Context.QueryName
		if queryName == "" {
			queryName = j.Name
		}
		ordered = append(ordered, entry{name: queryName, query: j.Context.Query})
	}

	if len(ordered) == 0 {
		return nil, ErrNoQueries
	}

	p := &pack.Pack{Name: name}
	if s.SourcePack != "" {
		p.Description = "exported from session, originally sourced from pack " + s.SourcePack
	}

	if len(ordered) == 1 {
		p.Query = ordered[0].query
	} else {
		p.Queries = make([]pack.Query, len(ordered))
		for i, e := range ordered {
			p.Queries[i] = pack.Query{Name: e.name, Query: e.query}
		}
	}

	return p, nil
}
