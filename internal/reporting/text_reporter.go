package reporting

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/halcyonworks/webaudit-cli/api/schemas"
)

// maxListedIssues bounds the issue detail section of the text report; the
// JSON format carries the full list.
const maxListedIssues = 25

const timeRounding = 10 * time.Millisecond

// TextReporter writes a human-readable audit summary.
type TextReporter struct {
	writer io.WriteCloser
}

// NewTextReporter creates a TextReporter. It takes ownership of the writer.
func NewTextReporter(writer io.WriteCloser) *TextReporter {
	return &TextReporter{writer: writer}
}

// Write renders the audit result as plain text.
func (r *TextReporter) Write(result *schemas.AuditResult) error {
	if result == nil || result.Report == nil {
		return fmt.Errorf("nil audit result")
	}

	var b strings.Builder
	report := result.Report
	a11y := report.Accessibility

	fmt.Fprintf(&b, "Accessibility Audit: %s\n", result.URL)
	fmt.Fprintf(&b, "Audit ID: %s\n", result.AuditID)
	fmt.Fprintf(&b, "Completed in %s\n\n", result.Duration.Round(timeRounding))

	fmt.Fprintf(&b, "Combined Score: %d (%s)\n", a11y.Scores.Combined, a11y.Scores.Grade)
	fmt.Fprintf(&b, "  Lighthouse: %d\n", a11y.Scores.Lighthouse)
	fmt.Fprintf(&b, "  Axe-Core:   %d\n", a11y.Scores.Axe)
	if a11y.Scores.Pa11y != nil {
		fmt.Fprintf(&b, "  Pa11y:      %d\n", *a11y.Scores.Pa11y)
	}
	fmt.Fprintf(&b, "\nWCAG Compliance: %s\n", a11y.WCAGCompliance.Overall.CompliantLevel)
	fmt.Fprintf(&b, "  Level A:   %d violation(s)\n", a11y.WCAGCompliance.A.Violations)
	fmt.Fprintf(&b, "  Level AA:  %d violation(s)\n", a11y.WCAGCompliance.AA.Violations)
	fmt.Fprintf(&b, "  Level AAA: %d violation(s)\n", a11y.WCAGCompliance.AAA.Violations)

	fmt.Fprintf(&b, "\nOther Categories: performance %d, best practices %d, seo %d\n",
		report.Performance.Score, report.BestPractices.Score, report.SEO.Score)

	fmt.Fprintf(&b, "\nIssues: %d total\n", a11y.Summary.Total)
	for _, sev := range []schemas.Severity{schemas.SeverityCritical, schemas.SeveritySerious, schemas.SeverityModerate, schemas.SeverityMinor} {
		if count := a11y.Summary.BySeverity[sev]; count > 0 {
			fmt.Fprintf(&b, "  %-8s %d\n", sev, count)
		}
	}

	for i, issue := range a11y.Issues {
		if i == maxListedIssues {
			fmt.Fprintf(&b, "  ... and %d more\n", len(a11y.Issues)-maxListedIssues)
			break
		}
		fmt.Fprintf(&b, "\n[%s] %s\n", strings.ToUpper(string(issue.Severity)), issue.Title)
		if issue.Selector != "" {
			fmt.Fprintf(&b, "  Selector: %s\n", issue.Selector)
		}
		if len(issue.WCAGCriteria) > 0 {
			fmt.Fprintf(&b, "  WCAG: %s (Level %s)\n", strings.Join(issue.WCAGCriteria, ", "), issue.WCAGLevel)
		}
		fmt.Fprintf(&b, "  Detected by: %s\n", strings.Join(issue.DetectedBy, ", "))
		if issue.RequiresManualCheck {
			fmt.Fprintf(&b, "  Requires manual review\n")
		}
	}

	if result.AIInsights != "" {
		fmt.Fprintf(&b, "\nInsights:\n%s\n", result.AIInsights)
	}
	if result.AIFixes != "" {
		fmt.Fprintf(&b, "\nSuggested Fixes:\n%s\n", result.AIFixes)
	}

	_, err := io.WriteString(r.writer, b.String())
	return err
}

// Close closes the underlying writer.
func (r *TextReporter) Close() error {
	return r.writer.Close()
}
