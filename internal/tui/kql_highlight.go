package tui

import (
	"regexp"

	"github.com/dolly-parseton/kql-panopticon/internal/tui/style"
)

// kqlKeywords is the fixed set of KQL operators the highlighter looks
// for, per the original_source highlighter (kql_highlight.rs). This
// reads the editor's buffer read-only; internal/editor stays unaware of
// KQL (spec §4.7).
var kqlKeywords = []string{
	"where", "project", "summarize", "join", "extend", "render", "take",
	"order by", "order", "by", "sort", "top", "distinct", "count", "union",
	"let", "as",
}

var kqlKeywordPattern = buildKQLKeywordPattern()

func buildKQLKeywordPattern() *regexp.Regexp {
	// Longest alternatives first so "order by" matches before the bare
	// "order"/"by" fallbacks.
	alts := append([]string{}, kqlKeywords...)
	for i := 0; i < len(alts); i++ {
		for j := i + 1; j < len(alts); j++ {
			if len(alts[j]) > len(alts[i]) {
				alts[i], alts[j] = alts[j], alts[i]
			}
		}
	}
	pattern := `(?i)\b(`
	for i, kw := range alts {
		if i > 0 {
			pattern += "|"
		}
		pattern += regexp.QuoteMeta(kw)
	}
	pattern += `)\b|\|`
	return regexp.MustCompile(pattern)
}

// highlightKQL wraps each recognized keyword (and the pipe operator) in
// style.Keyword, leaving everything else untouched.
func highlightKQL(line string) string {
	return kqlKeywordPattern.ReplaceAllStringFunc(line, func(m string) string {
		return style.Keyword.Render(m)
	})
}
