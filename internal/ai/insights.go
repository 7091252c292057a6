package ai

import (
	"context"
	"fmt"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/halcyonworks/webaudit-cli/api/schemas"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// maxFixIssues caps how many issues a single fix prompt carries to keep the
// request within model context limits.
const maxFixIssues = 10

// Service turns merged reports into model-generated insights and fixes.
type Service struct {
	client schemas.LLMClient
	logger *zap.Logger
}

// NewService creates an insight service around an LLM client.
func NewService(client schemas.LLMClient, logger *zap.Logger) *Service {
	return &Service{
		client: client,
		logger: logger.Named("ai_service"),
	}
}

// insightPayload is the structured shape the insight prompt asks for.
type insightPayload struct {
	Summary    string   `json:"summary"`
	Priorities []string `json:"priorities"`
}

// GenerateInsights asks the model for an executive summary of the report and
// renders it as prose.
func (s *Service) GenerateInsights(ctx context.Context, report *schemas.MergedReport) (string, error) {
	if report == nil {
		return "", fmt.Errorf("report is nil")
	}

	digest, err := json.Marshal(reportDigest(report))
	if err != nil {
		return "", fmt.Errorf("failed to encode report digest: %w", err)
	}

	prompt := fmt.Sprintf(`You are an accessibility consultant reviewing an automated audit of %s.
Audit digest:
%s

Respond with a single JSON object of the form
{"summary": "<two or three sentences on the page's overall accessibility posture>",
 "priorities": ["<most impactful remediation first>", "..."]}
Return only the JSON object.`, report.URL, digest)

	response, err := s.client.Generate(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("insight generation failed: %w", err)
	}

	payload, err := parseJSONResponse[insightPayload](response)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString(payload.Summary)
	if len(payload.Priorities) > 0 {
		b.WriteString("\n\nRecommended priorities:\n")
		for i, p := range payload.Priorities {
			fmt.Fprintf(&b, "%d. %s\n", i+1, p)
		}
	}
	return strings.TrimSpace(b.String()), nil
}

// GenerateFixes asks the model for concrete remediation steps for the most
// severe issues.
func (s *Service) GenerateFixes(ctx context.Context, issues []schemas.Issue) (string, error) {
	if len(issues) == 0 {
		return "", nil
	}
	if len(issues) > maxFixIssues {
		issues = issues[:maxFixIssues]
		s.logger.Debug("Truncated issue list for fix prompt", zap.Int("kept", maxFixIssues))
	}

	encoded, err := json.Marshal(issues)
	if err != nil {
		return "", fmt.Errorf("failed to encode issues: %w", err)
	}

	prompt := fmt.Sprintf(`You are a web developer fixing accessibility defects.
For each issue below, describe the fix and show a corrected HTML or CSS snippet.
Issues (JSON):
%s

Respond in plain markdown, one section per issue.`, encoded)

	response, err := s.client.Generate(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("fix generation failed: %w", err)
	}
	return strings.TrimSpace(response), nil
}

// reportDigest projects a merged report down to the fields worth spending
// prompt tokens on.
func reportDigest(report *schemas.MergedReport) map[string]any {
	issues := make([]map[string]any, 0, len(report.Accessibility.Issues))
	for _, issue := range report.Accessibility.Issues {
		issues = append(issues, map[string]any{
			"title":    issue.Title,
			"severity": issue.Severity,
			"selector": issue.Selector,
			"wcag":     issue.WCAGCriteria,
		})
	}
	return map[string]any{
		"scores":     report.Accessibility.Scores,
		"summary":    report.Accessibility.Summary,
		"compliance": report.Accessibility.WCAGCompliance.Overall.CompliantLevel,
		"issues":     issues,
	}
}
