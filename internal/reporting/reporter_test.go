package reporting

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/halcyonworks/webaudit-cli/api/schemas"
)

// writeCloserBuffer is a bytes.Buffer with a no-op Close for reporter tests.
type writeCloserBuffer struct {
	bytes.Buffer
}

func (w *writeCloserBuffer) Close() error { return nil }

func sampleResult() *schemas.AuditResult {
	pa11y := 60
	return &schemas.AuditResult{
		AuditID:   "audit-123",
		URL:       "https://example.com",
		StartedAt: time.Date(2026, 8, 26, 10, 0, 0, 0, time.UTC),
		Duration:  1234 * time.Millisecond,
		Report: &schemas.MergedReport{
			URL: "https://example.com",
			Accessibility: schemas.AccessibilityReport{
				Scores: schemas.ScoreSet{Lighthouse: 80, Axe: 70, Pa11y: &pa11y, Combined: 72, Grade: "C"},
				Issues: []schemas.Issue{
					{
						Title:        "Images must have alternate text",
						Severity:     schemas.SeverityCritical,
						Selector:     "img.hero",
						WCAGCriteria: []string{"1.1.1"},
						WCAGLevel:    schemas.LevelA,
						DetectedBy:   []string{schemas.SourceAxe, schemas.SourcePa11y},
					},
					{
						Title:               "Elements must meet contrast thresholds (Needs Manual Review)",
						Severity:            schemas.SeverityModerate,
						DetectedBy:          []string{schemas.SourceAxe},
						RequiresManualCheck: true,
					},
				},
				Summary: schemas.IssueSummary{
					Total: 2,
					BySeverity: map[schemas.Severity]int{
						schemas.SeverityCritical: 1,
						schemas.SeverityModerate: 1,
					},
				},
				WCAGCompliance: schemas.ComplianceReport{
					A:       schemas.LevelCompliance{Violations: 1},
					AA:      schemas.LevelCompliance{Compliant: true},
					AAA:     schemas.LevelCompliance{Compliant: true},
					Overall: schemas.OverallCompliance{CompliantLevel: "Non-compliant"},
				},
			},
			Performance:   schemas.CategoryResult{Score: 88},
			BestPractices: schemas.CategoryResult{Score: 92},
			SEO:           schemas.CategoryResult{Score: 81},
		},
		AIInsights: "Fix the hero image first.",
	}
}

func TestNewReporter(t *testing.T) {
	t.Run("unsupported format", func(t *testing.T) {
		_, err := New("yaml", "stdout")
		assert.Error(t, err)
	})

	t.Run("json to file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "report.json")
		reporter, err := New("json", path)
		require.NoError(t, err)

		require.NoError(t, reporter.Write(sampleResult()))
		require.NoError(t, reporter.Close())

		raw, err := os.ReadFile(path)
		require.NoError(t, err)

		var decoded schemas.AuditResult
		require.NoError(t, json.Unmarshal(raw, &decoded))
		assert.Equal(t, "audit-123", decoded.AuditID)
		assert.Equal(t, 72, decoded.Report.Accessibility.Scores.Combined)
	})

	t.Run("stdout aliases", func(t *testing.T) {
		for _, path := range []string{"", "stdout"} {
			reporter, err := New("text", path)
			require.NoError(t, err)
			assert.NoError(t, reporter.Close())
		}
	})
}

func TestJSONReporter_RoundTrip(t *testing.T) {
	buf := &writeCloserBuffer{}
	reporter := NewJSONReporter(buf)

	require.NoError(t, reporter.Write(sampleResult()))
	require.NoError(t, reporter.Close())

	var decoded schemas.AuditResult
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.NotNil(t, decoded.Report.Accessibility.Scores.Pa11y)
	assert.Equal(t, 60, *decoded.Report.Accessibility.Scores.Pa11y)
	assert.Len(t, decoded.Report.Accessibility.Issues, 2)
}

func TestJSONReporter_NilResult(t *testing.T) {
	reporter := NewJSONReporter(&writeCloserBuffer{})
	assert.Error(t, reporter.Write(nil))
}

func TestTextReporter(t *testing.T) {
	buf := &writeCloserBuffer{}
	reporter := NewTextReporter(buf)

	require.NoError(t, reporter.Write(sampleResult()))
	out := buf.String()

	assert.Contains(t, out, "Accessibility Audit: https://example.com")
	assert.Contains(t, out, "Combined Score: 72 (C)")
	assert.Contains(t, out, "Pa11y:      60")
	assert.Contains(t, out, "WCAG Compliance: Non-compliant")
	assert.Contains(t, out, "[CRITICAL] Images must have alternate text")
	assert.Contains(t, out, "WCAG: 1.1.1 (Level A)")
	assert.Contains(t, out, "Detected by: axe-core, pa11y")
	assert.Contains(t, out, "Requires manual review")
	assert.Contains(t, out, "Fix the hero image first.")
}

func TestTextReporter_TruncatesIssueList(t *testing.T) {
	result := sampleResult()
	for i := 0; i < maxListedIssues+10; i++ {
		result.Report.Accessibility.Issues = append(result.Report.Accessibility.Issues, schemas.Issue{
			Title:      "filler issue",
			Severity:   schemas.SeverityMinor,
			DetectedBy: []string{schemas.SourceAxe},
		})
	}

	buf := &writeCloserBuffer{}
	reporter := NewTextReporter(buf)
	require.NoError(t, reporter.Write(result))
	assert.Contains(t, buf.String(), "... and")
}

func TestTextReporter_NilResult(t *testing.T) {
	reporter := NewTextReporter(&writeCloserBuffer{})
	assert.Error(t, reporter.Write(nil))
}
