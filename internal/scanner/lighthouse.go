package scanner

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os/exec"
	"strings"

	"go.uber.org/zap"

	"github.com/halcyonworks/webaudit-cli/api/schemas"
	"github.com/halcyonworks/webaudit-cli/internal/config"
	"github.com/halcyonworks/webaudit-cli/internal/scoring"
)

// LighthouseRunner shells out to the Lighthouse CLI and decodes its JSON
// report into category scores plus pre-shaped accessibility issues.
type LighthouseRunner struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewLighthouseRunner creates a LighthouseRunner.
func NewLighthouseRunner(cfg *config.Config, logger *zap.Logger) *LighthouseRunner {
	return &LighthouseRunner{
		cfg:    cfg,
		logger: logger.Named("lighthouse_runner"),
	}
}

// Scan runs the Lighthouse binary against the URL and parses its report.
func (r *LighthouseRunner) Scan(ctx context.Context, url string) (*schemas.LighthouseResult, error) {
	runCtx, cancel := context.WithTimeout(ctx, r.cfg.Scanners.Lighthouse.Timeout)
	defer cancel()

	chromeFlags := []string{"--no-first-run"}
	if r.cfg.Browser.Headless {
		chromeFlags = append(chromeFlags, "--headless=new")
	}
	if r.cfg.Browser.NoSandbox {
		chromeFlags = append(chromeFlags, "--no-sandbox")
	}

	args := []string{
		url,
		"--output=json",
		"--quiet",
		fmt.Sprintf("--chrome-flags=%s", strings.Join(chromeFlags, " ")),
	}

	cmd := exec.CommandContext(runCtx, r.cfg.Scanners.Lighthouse.BinaryPath, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	r.logger.Debug("Running lighthouse", zap.String("url", url), zap.Strings("args", args))
	if err := cmd.Run(); err != nil {
		if runCtx.Err() == context.DeadlineExceeded {
			return nil, fmt.Errorf("lighthouse scan of %s timed out after %s", url, r.cfg.Scanners.Lighthouse.Timeout)
		}
		return nil, fmt.Errorf("lighthouse failed for %s: %w: %s", url, err, strings.TrimSpace(stderr.String()))
	}

	result, err := parseLighthouseReport(stdout.Bytes())
	if err != nil {
		return nil, err
	}
	r.logger.Info("Lighthouse scan complete",
		zap.String("url", url),
		zap.Int("accessibility_score", result.Accessibility.Score),
		zap.Int("accessibility_issues", len(result.Accessibility.Issues)),
	)
	return result, nil
}

// lighthouseReport mirrors the slice of the Lighthouse JSON report (the
// "lhr") this tool consumes.
type lighthouseReport struct {
	RequestedURL      string                         `json:"requestedUrl"`
	FinalURL          string                         `json:"finalUrl"`
	LighthouseVersion string                         `json:"lighthouseVersion"`
	FetchTime         string                         `json:"fetchTime"`
	Categories        map[string]lighthouseCategory  `json:"categories"`
	Audits            map[string]lighthouseAuditItem `json:"audits"`
}

type lighthouseCategory struct {
	Score     *float64             `json:"score"`
	AuditRefs []lighthouseAuditRef `json:"auditRefs"`
}

type lighthouseAuditRef struct {
	ID     string  `json:"id"`
	Weight float64 `json:"weight"`
}

type lighthouseAuditItem struct {
	ID               string          `json:"id"`
	Title            string          `json:"title"`
	Description      string          `json:"description"`
	Score            *float64        `json:"score"`
	ScoreDisplayMode string          `json:"scoreDisplayMode"`
	Details          *lighthouseNode `json:"details"`
}

type lighthouseNode struct {
	Items []lighthouseDetailItem `json:"items"`
}

type lighthouseDetailItem struct {
	Node struct {
		Selector    string `json:"selector"`
		Snippet     string `json:"snippet"`
		Explanation string `json:"explanation"`
	} `json:"node"`
}

// parseLighthouseReport decodes a Lighthouse JSON report into category scores
// and accessibility issues.
func parseLighthouseReport(raw []byte) (*schemas.LighthouseResult, error) {
	var report lighthouseReport
	if err := json.Unmarshal(raw, &report); err != nil {
		return nil, fmt.Errorf("failed to decode lighthouse report: %w", err)
	}
	if len(report.Categories) == 0 {
		return nil, fmt.Errorf("lighthouse report has no categories")
	}

	result := &schemas.LighthouseResult{
		URL:       report.FinalURL,
		Version:   report.LighthouseVersion,
		FetchTime: report.FetchTime,
	}
	if result.URL == "" {
		result.URL = report.RequestedURL
	}

	result.Performance.Score = categoryScore(report.Categories, "performance")
	result.Accessibility.Score = categoryScore(report.Categories, "accessibility")
	result.BestPractices.Score = categoryScore(report.Categories, "best-practices")
	result.SEO.Score = categoryScore(report.Categories, "seo")

	a11y, ok := report.Categories["accessibility"]
	if !ok {
		return result, nil
	}
	result.Accessibility.Issues = []schemas.Issue{}
	for _, ref := range a11y.AuditRefs {
		audit, ok := report.Audits[ref.ID]
		if !ok || audit.Score == nil || *audit.Score >= 1 || audit.ScoreDisplayMode != "binary" {
			continue
		}
		result.Accessibility.Issues = append(result.Accessibility.Issues, auditToIssue(audit, ref.Weight))
	}
	return result, nil
}

// categoryScore maps a 0..1 category score to the 0..100 scale; a missing or
// null score (errored category) reports as 0.
func categoryScore(categories map[string]lighthouseCategory, name string) int {
	cat, ok := categories[name]
	if !ok || cat.Score == nil {
		return 0
	}
	return int(math.Round(*cat.Score * 100))
}

// severityForWeight assigns a severity band from the audit's weight within
// the accessibility category. Heavier audits gate more of the score.
func severityForWeight(weight float64) schemas.Severity {
	switch {
	case weight >= 10:
		return schemas.SeverityCritical
	case weight >= 7:
		return schemas.SeveritySerious
	case weight >= 3:
		return schemas.SeverityModerate
	default:
		return schemas.SeverityMinor
	}
}

func auditToIssue(audit lighthouseAuditItem, weight float64) schemas.Issue {
	severity := severityForWeight(weight)
	issue := schemas.Issue{
		Type:         "accessibility",
		Title:        audit.Title,
		Description:  audit.Description,
		Severity:     severity,
		Impact:       scoring.MapImpactToScore(severity),
		DetectedBy:   []string{schemas.SourceLighthouse},
		WCAGCriteria: []string{},
		WCAGLevel:    schemas.LevelUnknown,
	}
	if audit.Details != nil {
		for _, item := range audit.Details.Items {
			issue.Nodes = append(issue.Nodes, schemas.IssueNode{
				Target:         item.Node.Selector,
				HTML:           item.Node.Snippet,
				FailureSummary: item.Node.Explanation,
			})
		}
	}
	issue.NodeCount = len(issue.Nodes)
	if len(issue.Nodes) > 0 {
		issue.Selector = issue.Nodes[0].Target
		issue.HTML = issue.Nodes[0].HTML
		issue.FailureSummary = issue.Nodes[0].FailureSummary
	}
	return issue
}
