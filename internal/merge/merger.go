package merge

import (
	"math"

	"github.com/halcyonworks/webaudit-cli/api/schemas"
	"github.com/halcyonworks/webaudit-cli/internal/normalize"
	"github.com/halcyonworks/webaudit-cli/internal/scoring"
	"github.com/halcyonworks/webaudit-cli/internal/wcag"
)

// Tool weighting for the combined accessibility score. Fixed policy
// constants: changing them moves every downstream grade boundary.
const (
	twoToolLighthouseWeight = 0.5
	twoToolAxeWeight        = 0.5

	threeToolLighthouseWeight = 0.4
	threeToolAxeWeight        = 0.4
	threeToolPa11yWeight      = 0.2
)

// multiSourceKey is the summary bucket for issues confirmed by more than one
// scanner.
const multiSourceKey = "multiple"

// ruleResults projects Axe findings onto the weighted-score inputs.
func ruleResults(findings []schemas.AxeFinding) []scoring.RuleResult {
	out := make([]scoring.RuleResult, 0, len(findings))
	for _, f := range findings {
		out = append(out, scoring.RuleResult{
			Severity:  schemas.Severity(f.Impact),
			NodeCount: len(f.Nodes),
		})
	}
	return out
}

// summarize aggregates a deduplicated issue set by severity and source.
func summarize(issues []schemas.Issue) schemas.IssueSummary {
	summary := schemas.IssueSummary{
		Total:      len(issues),
		BySeverity: make(map[schemas.Severity]int),
		BySource:   make(map[string]int),
	}
	for _, issue := range issues {
		summary.BySeverity[issue.Severity]++
		for _, source := range issue.DetectedBy {
			summary.BySource[source]++
		}
		if len(issue.DetectedBy) > 1 {
			summary.BySource[multiSourceKey]++
		}
	}
	return summary
}

// MergeResults fuses the per-tool scan results into one MergedReport.
//
// The combined score is a weighted average of the tools' accessibility
// scores: 50/50 between Lighthouse and Axe in two-tool mode, 40/40/20 when
// Pa11y results are present. Axe's score is computed here from its raw
// violations/incomplete/passes; Lighthouse and Pa11y supply scores from their
// own engines and are treated as opaque 0-100 inputs.
//
// The accessibility issue list concatenates Lighthouse's pre-shaped issues
// with normalized Axe, Pa11y and keyboard findings, deduplicates them, and
// attaches the severity/source summary and WCAG compliance verdict.
// Performance, best-practices and SEO pass through from Lighthouse unchanged.
//
// A nil pa11y input degrades to two-tool mode; this function has no failure
// modes of its own and never returns an error.
func MergeResults(
	lighthouse *schemas.LighthouseResult,
	axe *schemas.AxeResult,
	pa11y *schemas.Pa11yResult,
	keyboard []schemas.KeyboardFinding,
) *schemas.MergedReport {
	axeScore := scoring.CalculateWeightedScore(
		ruleResults(axe.Violations),
		ruleResults(axe.Incomplete),
		ruleResults(axe.Passes),
	)
	lighthouseScore := lighthouse.Accessibility.Score

	var combined float64
	scores := schemas.ScoreSet{
		Lighthouse: lighthouseScore,
		Axe:        axeScore,
	}
	if pa11y != nil {
		pa11yScore := pa11y.Score.Score
		scores.Pa11y = &pa11yScore
		combined = float64(lighthouseScore)*threeToolLighthouseWeight +
			float64(axeScore)*threeToolAxeWeight +
			float64(pa11yScore)*threeToolPa11yWeight
	} else {
		combined = float64(lighthouseScore)*twoToolLighthouseWeight +
			float64(axeScore)*twoToolAxeWeight
	}
	scores.Combined = int(math.Round(combined))
	scores.Grade = scoring.GradeForScore(scores.Combined)

	issues := make([]schemas.Issue, 0,
		len(lighthouse.Accessibility.Issues)+len(axe.Violations)+len(axe.Incomplete))
	issues = append(issues, lighthouse.Accessibility.Issues...)
	for _, v := range axe.Violations {
		issues = append(issues, normalize.AxeViolation(v))
	}
	for _, item := range axe.Incomplete {
		issues = append(issues, normalize.AxeIncomplete(item))
	}
	if pa11y != nil {
		for _, p := range pa11y.Issues {
			issues = append(issues, normalize.Pa11yIssue(p))
		}
	}
	for _, k := range keyboard {
		issues = append(issues, normalize.Keyboard(k))
	}
	issues = DeduplicateIssues(issues)

	report := &schemas.MergedReport{
		URL:       lighthouse.URL,
		FetchTime: lighthouse.FetchTime,
		Accessibility: schemas.AccessibilityReport{
			Scores:         scores,
			Issues:         issues,
			Summary:        summarize(issues),
			WCAGCompliance: wcag.CalculateCompliance(issues),
		},
		Performance:   lighthouse.Performance,
		BestPractices: lighthouse.BestPractices,
		SEO:           lighthouse.SEO,
		ToolDetails: schemas.ToolDetails{
			Lighthouse: schemas.ToolInfo{Name: schemas.SourceLighthouse, Version: lighthouse.Version},
			Axe:        schemas.ToolInfo{Name: axe.TestEngine.Name, Version: axe.TestEngine.Version, Runner: axe.TestRunner.Name},
		},
	}
	if pa11y != nil {
		report.ToolDetails.Pa11y = &schemas.ToolInfo{
			Name:    schemas.SourcePa11y,
			Version: pa11y.Version,
			Runner:  pa11y.Runner,
		}
	}
	return report
}
