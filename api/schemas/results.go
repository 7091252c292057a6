package schemas

import "time"

// -- Merged Report Schemas --

// ScoreSet holds the per-tool accessibility scores and the weighted combined
// score with its letter grade. Pa11y is nil when the audit ran in two-tool
// mode. Created fresh on every merge; never mutated in place.
type ScoreSet struct {
	Lighthouse int    `json:"lighthouse"`
	Axe        int    `json:"axe"`
	Pa11y      *int   `json:"pa11y,omitempty"`
	Combined   int    `json:"combined"`
	Grade      string `json:"grade"`
}

// LevelCompliance reports the violation count for one WCAG level.
type LevelCompliance struct {
	Violations int  `json:"violations"`
	Compliant  bool `json:"compliant"`
}

// OverallCompliance carries the single conformance verdict. CompliantLevel is
// "A", "AA", "AAA" or "Non-compliant".
type OverallCompliance struct {
	CompliantLevel string `json:"compliantLevel"`
}

// ComplianceReport summarizes WCAG conformance per level, derived purely from
// the deduplicated issue set.
type ComplianceReport struct {
	A       LevelCompliance   `json:"A"`
	AA      LevelCompliance   `json:"AA"`
	AAA     LevelCompliance   `json:"AAA"`
	Overall OverallCompliance `json:"overall"`
}

// IssueSummary aggregates the deduplicated issue set. BySource counts issues
// whose DetectedBy contains each source name; the "multiple" key counts
// issues confirmed by more than one source.
type IssueSummary struct {
	Total      int              `json:"total"`
	BySeverity map[Severity]int `json:"bySeverity"`
	BySource   map[string]int   `json:"bySource"`
}

// AccessibilityReport is the unified, multi-source accessibility section of a
// merged report.
type AccessibilityReport struct {
	Scores         ScoreSet         `json:"scores"`
	Issues         []Issue          `json:"issues"`
	Summary        IssueSummary     `json:"summary"`
	WCAGCompliance ComplianceReport `json:"wcagCompliance"`
}

// ToolInfo records one engine's identity for traceability.
type ToolInfo struct {
	Name    string `json:"name"`
	Version string `json:"version,omitempty"`
	Runner  string `json:"runner,omitempty"`
}

// ToolDetails records every engine that contributed to a merged report.
type ToolDetails struct {
	Lighthouse ToolInfo  `json:"lighthouse"`
	Axe        ToolInfo  `json:"axe"`
	Pa11y      *ToolInfo `json:"pa11y,omitempty"`
}

// MergedReport is the unified audit report for a single page. Accessibility
// is fused from all scanner sources; the remaining categories pass through
// from Lighthouse untouched.
type MergedReport struct {
	URL           string              `json:"url"`
	FetchTime     string              `json:"fetchTime,omitempty"`
	Accessibility AccessibilityReport `json:"accessibility"`
	Performance   CategoryResult      `json:"performance"`
	BestPractices CategoryResult      `json:"bestPractices"`
	SEO           CategoryResult      `json:"seo"`
	ToolDetails   ToolDetails         `json:"toolDetails"`
}

// AuditResult is the envelope produced by one full audit run: the merged
// report plus run metadata and optional AI-generated prose.
type AuditResult struct {
	AuditID    string        `json:"auditId"`
	URL        string        `json:"url"`
	StartedAt  time.Time     `json:"startedAt"`
	Duration   time.Duration `json:"duration"`
	Report     *MergedReport `json:"report"`
	AIInsights string        `json:"aiInsights,omitempty"`
	AIFixes    string        `json:"aiFixes,omitempty"`
}
