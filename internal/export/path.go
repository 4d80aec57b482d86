// Package export implements the deterministic on-disk result hierarchy and
// CSV/JSON serialization (spec §4.4, C4 Export Writer).
package export

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// Normalize lowercases s, replaces any character outside [a-z0-9_-] with
// '_', collapses consecutive underscores, and trims leading/trailing
// underscores (spec §4.4, §8 invariant: "Normalized output paths contain
// only [a-z0-9_-] and '/', and never two consecutive '_'").
func Normalize(s string) string {
	lower := strings.ToLower(s)
	var b strings.Builder
	b.Grow(len(lower))
	for _, r := range lower {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_', r == '-':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	collapsed := collapseUnderscores(b.String())
	return strings.Trim(collapsed, "_")
}

func collapseUnderscores(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	prevUnderscore := false
	for _, r := range s {
		if r == '_' {
			if prevUnderscore {
				continue
			}
			prevUnderscore = true
		} else {
			prevUnderscore = false
		}
		b.WriteRune(r)
	}
	return b.String()
}

// DispatchDir formats the per-dispatch timestamp directory component:
// YYYY-MM-DD_HH-MM-SS, UTC (spec §4.4).
func DispatchDir(ts time.Time) string {
	return ts.UTC().Format("2006-01-02_15-04-05")
}

// Layout computes the directory holding a job's output files:
// {output_folder}/{subscription}/{workspace}/{dispatch_dir}/
func Layout(outputFolder, subscriptionName, workspaceName string, dispatchTS time.Time) string {
	return filepath.Join(
		outputFolder,
		Normalize(subscriptionName),
		Normalize(workspaceName),
		DispatchDir(dispatchTS),
	)
}

// FileStem computes the job output file's base name (without extension):
// {job_name}[_{query_name}] — the query-name suffix is added only when
// queryName is non-empty, i.e. only for multi-query pack dispatches (spec
// §4.4, avoids sibling collisions).
func FileStem(jobName, queryName string) string {
	stem := Normalize(jobName)
	if queryName != "" {
		stem = stem + "_" + Normalize(queryName)
	}
	return stem
}

// OutputPath joins a Layout directory, a FileStem, and an extension.
func OutputPath(dir, stem, ext string) string {
	return filepath.Join(dir, fmt.Sprintf("%s.%s", stem, ext))
}
