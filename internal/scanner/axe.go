package scanner

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/halcyonworks/webaudit-cli/api/schemas"
	"github.com/halcyonworks/webaudit-cli/internal/config"
)

// axeRunScript invokes the injected engine and resolves to the raw result
// object. resultTypes keeps the payload bounded to what the merger consumes.
const axeRunScript = `axe.run(document, { resultTypes: ['violations', 'incomplete', 'passes'] })`

// AxeRunner drives the Axe-Core engine inside a headless browser tab.
type AxeRunner struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewAxeRunner creates an AxeRunner.
func NewAxeRunner(cfg *config.Config, logger *zap.Logger) *AxeRunner {
	return &AxeRunner{
		cfg:    cfg,
		logger: logger.Named("axe_runner"),
	}
}

// Scan navigates to the URL, injects the bundled axe-core script, runs the
// engine and decodes its result.
func (r *AxeRunner) Scan(ctx context.Context, url string) (*schemas.AxeResult, error) {
	engine, err := os.ReadFile(r.cfg.Scanners.Axe.ScriptPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read axe-core script from %s: %w", r.cfg.Scanners.Axe.ScriptPath, err)
	}

	taskCtx, cancel := newBrowserContext(ctx, r.cfg.Browser, r.logger)
	defer cancel()

	navCtx, navCancel := context.WithTimeout(taskCtx, r.cfg.Browser.NavigationTimeout)
	defer navCancel()

	r.logger.Debug("Running axe-core scan", zap.String("url", url))

	var raw json.RawMessage
	err = chromedp.Run(navCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Sleep(r.cfg.Browser.PostLoadWait),
		chromedp.Evaluate(string(engine), nil),
		chromedp.Evaluate(axeRunScript, &raw, func(p *runtime.EvaluateParams) *runtime.EvaluateParams {
			return p.WithReturnByValue(true).WithAwaitPromise(true)
		}),
	)
	if err != nil {
		if navCtx.Err() == context.DeadlineExceeded {
			return nil, fmt.Errorf("axe scan of %s timed out: %w", url, navCtx.Err())
		}
		return nil, fmt.Errorf("axe scan of %s failed: %w", url, err)
	}

	result, err := parseAxeResult(raw)
	if err != nil {
		return nil, err
	}
	r.logger.Info("Axe scan complete",
		zap.String("url", url),
		zap.Int("violations", len(result.Violations)),
		zap.Int("incomplete", len(result.Incomplete)),
		zap.Int("passes", len(result.Passes)),
	)
	return result, nil
}

// parseAxeResult decodes a raw axe.run() payload.
func parseAxeResult(raw []byte) (*schemas.AxeResult, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, fmt.Errorf("axe.run returned no result")
	}
	var result schemas.AxeResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("failed to decode axe result: %w", err)
	}
	return &result, nil
}
