// Package orchestrator manages the high-level lifecycle of an audit. It is
// injected with fully configured scanner components via interfaces, making it
// decoupled and testable.
package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/halcyonworks/webaudit-cli/api/schemas"
	"github.com/halcyonworks/webaudit-cli/internal/config"
	"github.com/halcyonworks/webaudit-cli/internal/merge"
)

// Insighter generates model-written prose for a finished report.
type Insighter interface {
	GenerateInsights(ctx context.Context, report *schemas.MergedReport) (string, error)
	GenerateFixes(ctx context.Context, issues []schemas.Issue) (string, error)
}

// AuditStore persists finished audits.
type AuditStore interface {
	SaveAudit(ctx context.Context, result *schemas.AuditResult) error
}

// Orchestrator fans audit work out to the configured scanners, merges their
// results and handles the optional enrichment and persistence stages.
type Orchestrator struct {
	cfg        *config.Config
	logger     *zap.Logger
	lighthouse schemas.LighthouseScanner
	axe        schemas.AxeScanner
	pa11y      schemas.Pa11yScanner
	keyboard   schemas.KeyboardScanner
	insighter  Insighter
	store      AuditStore

	// OnProgress, when set, is invoked with a short status line as each
	// audit stage completes.
	OnProgress func(stage string)
}

// New creates an Orchestrator. Lighthouse and Axe scanners are required; the
// remaining collaborators are optional and may be nil.
func New(
	cfg *config.Config,
	logger *zap.Logger,
	lighthouse schemas.LighthouseScanner,
	axe schemas.AxeScanner,
	pa11y schemas.Pa11yScanner,
	keyboard schemas.KeyboardScanner,
	insighter Insighter,
	store AuditStore,
) (*Orchestrator, error) {
	if cfg == nil || logger == nil || lighthouse == nil || axe == nil {
		return nil, fmt.Errorf("cannot initialize orchestrator with nil dependencies")
	}
	return &Orchestrator{
		cfg:        cfg,
		logger:     logger.Named("orchestrator"),
		lighthouse: lighthouse,
		axe:        axe,
		pa11y:      pa11y,
		keyboard:   keyboard,
		insighter:  insighter,
		store:      store,
	}, nil
}

// Run executes one full audit of a page: scanners in parallel, merge, then
// the optional enrichment and persistence stages. A scanner failure aborts
// the audit; AI and storage failures degrade it.
func (o *Orchestrator) Run(ctx context.Context, url string) (*schemas.AuditResult, error) {
	auditID := uuid.NewString()
	startedAt := time.Now().UTC()
	o.logger.Info("Starting audit", zap.String("audit_id", auditID), zap.String("url", url))

	var (
		lighthouseResult *schemas.LighthouseResult
		axeResult        *schemas.AxeResult
		pa11yResult      *schemas.Pa11yResult
		keyboardFindings []schemas.KeyboardFinding
	)

	g, scanCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		lighthouseResult, err = o.lighthouse.Scan(scanCtx, url)
		return err
	})
	g.Go(func() error {
		var err error
		axeResult, err = o.axe.Scan(scanCtx, url)
		return err
	})
	if o.pa11y != nil {
		g.Go(func() error {
			var err error
			pa11yResult, err = o.pa11y.Scan(scanCtx, url)
			return err
		})
	}
	if o.keyboard != nil {
		g.Go(func() error {
			var err error
			keyboardFindings, err = o.keyboard.Scan(scanCtx, url)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("audit of %s failed: %w", url, err)
	}
	o.progress("scans complete")

	report := merge.MergeResults(lighthouseResult, axeResult, pa11yResult, keyboardFindings)
	o.progress("results merged")

	result := &schemas.AuditResult{
		AuditID:   auditID,
		URL:       url,
		StartedAt: startedAt,
		Report:    report,
	}

	o.enrich(ctx, result)
	result.Duration = time.Since(startedAt)

	if o.store != nil {
		if err := o.store.SaveAudit(ctx, result); err != nil {
			o.logger.Warn("Failed to persist audit", zap.String("audit_id", auditID), zap.Error(err))
		} else {
			o.progress("audit persisted")
		}
	}

	o.logger.Info("Audit complete",
		zap.String("audit_id", auditID),
		zap.Int("combined_score", report.Accessibility.Scores.Combined),
		zap.String("grade", report.Accessibility.Scores.Grade),
		zap.Int("issues", report.Accessibility.Summary.Total),
		zap.Duration("duration", result.Duration),
	)
	return result, nil
}

// enrich runs the optional AI stages. Failures are logged, not fatal.
func (o *Orchestrator) enrich(ctx context.Context, result *schemas.AuditResult) {
	if o.insighter == nil {
		return
	}

	g, aiCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		insights, err := o.insighter.GenerateInsights(aiCtx, result.Report)
		if err != nil {
			o.logger.Warn("Insight generation failed", zap.Error(err))
			return nil
		}
		result.AIInsights = insights
		return nil
	})
	g.Go(func() error {
		fixes, err := o.insighter.GenerateFixes(aiCtx, result.Report.Accessibility.Issues)
		if err != nil {
			o.logger.Warn("Fix generation failed", zap.Error(err))
			return nil
		}
		result.AIFixes = fixes
		return nil
	})
	_ = g.Wait()
	o.progress("ai enrichment complete")
}

// RunAll audits the given URLs sequentially, pacing page loads with the
// configured rate limit. Per-page failures are collected, not fatal, so one
// broken page does not sink a site-wide sweep.
func (o *Orchestrator) RunAll(ctx context.Context, urls []string) ([]*schemas.AuditResult, error) {
	limiter := rate.NewLimiter(rate.Limit(o.cfg.Audit.RateLimit), 1)
	results := make([]*schemas.AuditResult, 0, len(urls))

	var failed int
	for _, url := range urls {
		if err := limiter.Wait(ctx); err != nil {
			return results, err
		}
		result, err := o.Run(ctx, url)
		if err != nil {
			o.logger.Error("Audit failed", zap.String("url", url), zap.Error(err))
			failed++
			continue
		}
		results = append(results, result)
	}

	if failed > 0 && len(results) == 0 {
		return nil, fmt.Errorf("all %d audits failed", failed)
	}
	return results, nil
}

func (o *Orchestrator) progress(stage string) {
	if o.OnProgress != nil {
		o.OnProgress(stage)
	}
}
