// Package merge fuses the independent scanner results into one unified
// report: it deduplicates normalized issues across sources and combines the
// per-tool scores into a single weighted score and grade.
package merge

import (
	"github.com/halcyonworks/webaudit-cli/api/schemas"
	"github.com/halcyonworks/webaudit-cli/internal/scoring"
)

// noSelectorKey stands in for issues that have no element selector, so
// page-level findings (e.g. a missing lang attribute) still dedup against
// each other by title.
const noSelectorKey = "no-selector"

// dedupKey is the semantic identity of an issue: same title on the same
// element means the same problem, whichever scanner reported it.
func dedupKey(issue schemas.Issue) string {
	selector := issue.Selector
	if selector == "" {
		selector = noSelectorKey
	}
	return issue.Title + "-" + selector
}

// unionSources appends the sources from extra that dst does not already
// contain, preserving first-seen order.
func unionSources(dst, extra []string) []string {
	seen := make(map[string]struct{}, len(dst))
	for _, s := range dst {
		seen[s] = struct{}{}
	}
	for _, s := range extra {
		if _, ok := seen[s]; !ok {
			seen[s] = struct{}{}
			dst = append(dst, s)
		}
	}
	return dst
}

// DeduplicateIssues collapses issues that share the same semantic identity.
// The first occurrence of a key seeds the retained entry; later duplicates
// merge into it: their sources are unioned in, and if the duplicate carries a
// more severe classification the retained issue's severity and impact are
// raised to match. Output order follows first insertion. The operation is
// idempotent.
func DeduplicateIssues(issues []schemas.Issue) []schemas.Issue {
	index := make(map[string]int, len(issues))
	unique := make([]schemas.Issue, 0, len(issues))

	for _, issue := range issues {
		key := dedupKey(issue)
		i, ok := index[key]
		if !ok {
			index[key] = len(unique)
			unique = append(unique, issue)
			continue
		}

		existing := &unique[i]
		existing.DetectedBy = unionSources(existing.DetectedBy, issue.DetectedBy)
		if scoring.MapImpactToScore(issue.Severity) > scoring.MapImpactToScore(existing.Severity) {
			existing.Severity = issue.Severity
			existing.Impact = scoring.MapImpactToScore(issue.Severity)
		}
	}
	return unique
}
