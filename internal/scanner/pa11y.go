package scanner

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"

	"go.uber.org/zap"

	"github.com/halcyonworks/webaudit-cli/api/schemas"
	"github.com/halcyonworks/webaudit-cli/internal/config"
)

// Pa11yRunner shells out to the Pa11y CLI with its JSON reporter.
type Pa11yRunner struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewPa11yRunner creates a Pa11yRunner.
func NewPa11yRunner(cfg *config.Config, logger *zap.Logger) *Pa11yRunner {
	return &Pa11yRunner{
		cfg:    cfg,
		logger: logger.Named("pa11y_runner"),
	}
}

// Scan runs the Pa11y binary against the URL. Pa11y exits with code 2 when
// it finds issues; that is a successful scan, not a failure.
func (r *Pa11yRunner) Scan(ctx context.Context, url string) (*schemas.Pa11yResult, error) {
	runCtx, cancel := context.WithTimeout(ctx, r.cfg.Scanners.Pa11y.Timeout)
	defer cancel()

	args := []string{url, "--reporter", "json", "--include-warnings", "--include-notices"}
	cmd := exec.CommandContext(runCtx, r.cfg.Scanners.Pa11y.BinaryPath, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	r.logger.Debug("Running pa11y", zap.String("url", url))
	err := cmd.Run()
	if err != nil {
		if runCtx.Err() == context.DeadlineExceeded {
			return nil, fmt.Errorf("pa11y scan of %s timed out after %s", url, r.cfg.Scanners.Pa11y.Timeout)
		}
		exitErr, ok := err.(*exec.ExitError)
		if !ok || exitErr.ExitCode() != 2 {
			return nil, fmt.Errorf("pa11y failed for %s: %w: %s", url, err, strings.TrimSpace(stderr.String()))
		}
	}

	result, err := parsePa11yOutput(stdout.Bytes())
	if err != nil {
		return nil, err
	}
	r.logger.Info("Pa11y scan complete",
		zap.String("url", url),
		zap.Int("issues", len(result.Issues)),
		zap.Int("score", result.Score.Score),
	)
	return result, nil
}

// parsePa11yOutput decodes the JSON reporter's issue list, backfills WCAG
// metadata from each issue code, and derives an engine-level score.
func parsePa11yOutput(raw []byte) (*schemas.Pa11yResult, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("pa11y produced no output")
	}

	var issues []schemas.Pa11yIssue
	if err := json.Unmarshal(trimmed, &issues); err != nil {
		return nil, fmt.Errorf("failed to decode pa11y output: %w", err)
	}

	for i := range issues {
		if len(issues[i].WCAGCriteria) == 0 || issues[i].WCAGLevel == "" {
			criteria, level := decodePa11yCode(issues[i].Code)
			if len(issues[i].WCAGCriteria) == 0 {
				issues[i].WCAGCriteria = criteria
			}
			if issues[i].WCAGLevel == "" {
				issues[i].WCAGLevel = level
			}
		}
	}

	return &schemas.Pa11yResult{
		Issues: issues,
		Score:  schemas.Pa11yScore{Score: pa11yScore(issues)},
		Runner: "htmlcs",
	}, nil
}

// decodePa11yCode extracts WCAG metadata from an HTML_CodeSniffer code such
// as "WCAG2AA.Principle1.Guideline1_1.1_1_1.H37": the underscore-joined
// success criterion and the conformance level in the leading standard name.
func decodePa11yCode(code string) ([]string, schemas.WCAGLevel) {
	criteria := []string{}
	level := schemas.LevelUnknown

	parts := strings.Split(code, ".")
	if len(parts) == 0 || !strings.HasPrefix(parts[0], "WCAG2") {
		return criteria, level
	}
	switch strings.TrimPrefix(parts[0], "WCAG2") {
	case "AAA":
		level = schemas.LevelAAA
	case "AA":
		level = schemas.LevelAA
	case "A":
		level = schemas.LevelA
	}

	for _, part := range parts[1:] {
		fields := strings.Split(part, "_")
		if len(fields) != 3 {
			continue
		}
		if !allDigits(fields[0]) || !allDigits(fields[1]) || !allDigits(fields[2]) {
			continue
		}
		criteria = append(criteria, strings.Join(fields, "."))
	}
	return criteria, level
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// pa11yScore derives a 0-100 score from the issue mix since the JSON
// reporter carries no score of its own. Errors cost 5 points, warnings 2,
// notices 1, floored at zero.
func pa11yScore(issues []schemas.Pa11yIssue) int {
	score := 100
	for _, issue := range issues {
		switch issue.Type {
		case "error":
			score -= 5
		case "warning":
			score -= 2
		case "notice":
			score -= 1
		}
	}
	if score < 0 {
		score = 0
	}
	return score
}
