// Package normalize converts each scanner's native finding representation
// into the canonical Issue shape. Every adapter is a total, side-effect-free
// function: malformed optional fields default rather than error, and unknown
// severity vocabulary degrades to moderate.
package normalize

import (
	"strings"

	"github.com/halcyonworks/webaudit-cli/api/schemas"
	"github.com/halcyonworks/webaudit-cli/internal/scoring"
	"github.com/halcyonworks/webaudit-cli/internal/wcag"
)

// manualReviewSuffix marks issues a human must confirm.
const manualReviewSuffix = " (Needs Manual Review)"

// pa11ySeverities maps Pa11y's three-valued type to the common severity
// vocabulary.
var pa11ySeverities = map[string]schemas.Severity{
	"error":   schemas.SeverityCritical,
	"warning": schemas.SeveritySerious,
	"notice":  schemas.SeverityModerate,
}

// pa11yImpacts is Pa11y's own coarser impact scale. It is deliberately not
// the severity-to-impact table: per-finding confidence is lower, so a Pa11y
// "critical" carries less numeric weight than an Axe one.
var pa11yImpacts = map[string]int{
	"error":   90,
	"warning": 70,
	"notice":  50,
}

// keyboardImpacts is the impact scale for keyboard-navigation findings.
var keyboardImpacts = map[schemas.Severity]int{
	schemas.SeverityCritical: 90,
	schemas.SeveritySerious:  70,
}

// axeNodes converts Axe's affected-element list, joining multi-segment
// selector paths the way Axe renders them.
func axeNodes(nodes []schemas.AxeNode) []schemas.IssueNode {
	out := make([]schemas.IssueNode, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, schemas.IssueNode{
			Target:         strings.Join(n.Target, ", "),
			HTML:           n.HTML,
			FailureSummary: n.FailureSummary,
		})
	}
	return out
}

// fromAxe builds the parts shared by violation and incomplete conversion.
func fromAxe(v schemas.AxeFinding) schemas.Issue {
	nodes := axeNodes(v.Nodes)
	issue := schemas.Issue{
		Type:         "accessibility",
		Title:        v.Help,
		Description:  v.Description,
		DetectedBy:   []string{schemas.SourceAxe},
		WCAGCriteria: wcag.ExtractCriteria(v.Tags),
		WCAGLevel:    wcag.ExtractLevel(v.Tags),
		HelpURL:      v.HelpURL,
		Nodes:        nodes,
		NodeCount:    len(nodes),
	}
	// Backfill single-node fields from the first affected element for
	// consumers that only look at one locator.
	if len(nodes) > 0 {
		issue.Selector = nodes[0].Target
		issue.HTML = nodes[0].HTML
		issue.FailureSummary = nodes[0].FailureSummary
	}
	issue.Recommendations = []schemas.Recommendation{{
		Description:    v.Description,
		Implementation: issue.FailureSummary,
		LearnMore:      v.HelpURL,
	}}
	return issue
}

// AxeViolation converts a confirmed Axe-Core rule failure. The severity is
// Axe's native impact field taken as-is; the numeric impact follows the
// standard severity table.
func AxeViolation(v schemas.AxeFinding) schemas.Issue {
	issue := fromAxe(v)
	issue.Severity = schemas.Severity(v.Impact)
	issue.Impact = scoring.MapImpactToScore(issue.Severity)
	return issue
}

// AxeIncomplete converts an Axe-Core check that could not be automatically
// confirmed. Incomplete checks are pinned to moderate/50 regardless of the
// underlying rule's impact and flagged for manual review.
func AxeIncomplete(v schemas.AxeFinding) schemas.Issue {
	issue := fromAxe(v)
	issue.Title += manualReviewSuffix
	issue.Severity = schemas.SeverityModerate
	issue.Impact = 50
	issue.RequiresManualCheck = true
	return issue
}

// Pa11yIssue converts a Pa11y message. Unknown message types degrade to
// moderate/50.
func Pa11yIssue(p schemas.Pa11yIssue) schemas.Issue {
	severity, ok := pa11ySeverities[p.Type]
	if !ok {
		severity = schemas.SeverityModerate
	}
	impact, ok := pa11yImpacts[p.Type]
	if !ok {
		impact = 50
	}

	level := p.WCAGLevel
	if level == "" {
		level = schemas.LevelUnknown
	}
	criteria := p.WCAGCriteria
	if criteria == nil {
		criteria = []string{}
	}

	issue := schemas.Issue{
		Type:         "accessibility",
		Title:        p.Message,
		Description:  p.Code,
		Severity:     severity,
		Impact:       impact,
		DetectedBy:   []string{schemas.SourcePa11y},
		WCAGCriteria: criteria,
		WCAGLevel:    level,
		Selector:     p.Selector,
		HTML:         p.Context,
		Recommendations: []schemas.Recommendation{{
			Description: p.Message,
		}},
	}
	if p.Selector != "" || p.Context != "" {
		issue.Nodes = []schemas.IssueNode{{Target: p.Selector, HTML: p.Context}}
		issue.NodeCount = 1
	}
	return issue
}

// Keyboard converts a keyboard-navigation finding. Keyboard findings are
// treated as AA-level by convention: the probe cannot reliably distinguish
// A from AA criteria, and most keyboard criteria fall at or below AA.
func Keyboard(k schemas.KeyboardFinding) schemas.Issue {
	impact, ok := keyboardImpacts[k.Severity]
	if !ok {
		impact = 50
	}

	criteria := k.WCAGCriteria
	if criteria == nil {
		criteria = []string{}
	}

	issue := schemas.Issue{
		Type:         "accessibility",
		Title:        k.Title,
		Description:  k.Description,
		Severity:     k.Severity,
		Impact:       impact,
		DetectedBy:   []string{schemas.SourceKeyboard},
		WCAGCriteria: criteria,
		WCAGLevel:    schemas.LevelAA,
		Selector:     k.Selector,
		HTML:         k.HTML,
		Recommendations: []schemas.Recommendation{{
			Description:    k.Description,
			Implementation: k.Recommendation,
		}},
	}
	if k.Selector != "" || k.HTML != "" {
		issue.Nodes = []schemas.IssueNode{{Target: k.Selector, HTML: k.HTML}}
		issue.NodeCount = 1
	}
	return issue
}
