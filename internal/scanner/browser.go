// Package scanner hosts the scanner collaborators that produce the raw,
// per-tool results the merge engine fuses: an in-browser Axe-Core runner and
// keyboard probe driven over CDP, and exec-based Lighthouse and Pa11y
// runners. Decoding of each tool's output is kept in pure parse functions so
// it is testable without a browser or the external binaries.
package scanner

import (
	"context"

	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/halcyonworks/webaudit-cli/internal/config"
)

// newBrowserContext builds a chromedp context from the browser configuration.
// The returned cancel func tears down both the tab and the allocator.
func newBrowserContext(ctx context.Context, cfg config.BrowserConfig, logger *zap.Logger) (context.Context, context.CancelFunc) {
	opts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	if !cfg.Headless {
		opts = append(opts, chromedp.Flag("headless", false))
	}
	if cfg.NoSandbox {
		opts = append(opts, chromedp.NoSandbox)
	}
	if cfg.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(cfg.ExecPath))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	taskCtx, taskCancel := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(func(format string, args ...interface{}) {
			logger.Sugar().Debugf(format, args...)
		}),
	)

	cancel := func() {
		taskCancel()
		allocCancel()
	}
	return taskCtx, cancel
}
