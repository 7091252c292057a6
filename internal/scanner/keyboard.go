package scanner

import (
	"context"
	"fmt"

	"github.com/chromedp/cdproto/input"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/halcyonworks/webaudit-cli/api/schemas"
	"github.com/halcyonworks/webaudit-cli/internal/config"
)

// focusProbeScript inspects the currently focused element after a Tab press:
// a stable selector, whether any visible focus indicator is painted, and the
// opening markup for evidence.
const focusProbeScript = `(() => {
	const el = document.activeElement;
	if (!el || el === document.body || el === document.documentElement) {
		return { selector: "" };
	}
	const style = window.getComputedStyle(el);
	const hasIndicator =
		(style.outlineStyle !== 'none' && parseFloat(style.outlineWidth) > 0) ||
		style.boxShadow !== 'none';
	let selector = el.tagName.toLowerCase();
	if (el.id) {
		selector += '#' + el.id;
	} else if (el.className && typeof el.className === 'string' && el.className.trim()) {
		selector += '.' + el.className.trim().split(/\s+/).join('.');
	}
	return {
		selector: selector,
		hasIndicator: hasIndicator,
		html: el.outerHTML ? el.outerHTML.slice(0, 200) : ""
	};
})()`

// countInteractiveScript counts the page's natively interactive elements, the
// population a full Tab walk should be able to reach.
const countInteractiveScript = `document.querySelectorAll(
	'a[href], button, input:not([type=hidden]), select, textarea, [tabindex]:not([tabindex="-1"])'
).length`

// FocusStep is one observation of the Tab-walk: which element held focus and
// whether it showed a visible indicator.
type FocusStep struct {
	Selector     string `json:"selector"`
	HasIndicator bool   `json:"hasIndicator"`
	HTML         string `json:"html"`
}

// KeyboardRunner audits keyboard navigability by walking the page's Tab
// order over CDP and classifying what it observed.
type KeyboardRunner struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewKeyboardRunner creates a KeyboardRunner.
func NewKeyboardRunner(cfg *config.Config, logger *zap.Logger) *KeyboardRunner {
	return &KeyboardRunner{
		cfg:    cfg,
		logger: logger.Named("keyboard_runner"),
	}
}

// Scan navigates to the URL, dispatches Tab key events up to the configured
// limit, records each focus stop, and converts the observations into
// keyboard-navigation findings.
func (r *KeyboardRunner) Scan(ctx context.Context, url string) ([]schemas.KeyboardFinding, error) {
	taskCtx, cancel := newBrowserContext(ctx, r.cfg.Browser, r.logger)
	defer cancel()

	navCtx, navCancel := context.WithTimeout(taskCtx, r.cfg.Browser.NavigationTimeout)
	defer navCancel()

	var interactiveCount int
	err := chromedp.Run(navCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Sleep(r.cfg.Browser.PostLoadWait),
		chromedp.Evaluate(countInteractiveScript, &interactiveCount),
	)
	if err != nil {
		return nil, fmt.Errorf("keyboard probe of %s failed to load page: %w", url, err)
	}

	maxTabs := r.cfg.Scanners.Keyboard.MaxTabStops
	steps := make([]FocusStep, 0, maxTabs)
	for i := 0; i < maxTabs; i++ {
		var step FocusStep
		err := chromedp.Run(navCtx,
			chromedp.ActionFunc(func(ctx context.Context) error {
				if err := input.DispatchKeyEvent(input.KeyDown).
					WithKey("Tab").WithCode("Tab").WithWindowsVirtualKeyCode(9).Do(ctx); err != nil {
					return err
				}
				return input.DispatchKeyEvent(input.KeyUp).
					WithKey("Tab").WithCode("Tab").WithWindowsVirtualKeyCode(9).Do(ctx)
			}),
			chromedp.Evaluate(focusProbeScript, &step, func(p *runtime.EvaluateParams) *runtime.EvaluateParams {
				return p.WithReturnByValue(true)
			}),
		)
		if err != nil {
			return nil, fmt.Errorf("keyboard probe of %s failed while tabbing: %w", url, err)
		}
		if step.Selector == "" {
			// Focus left the document; the walk wrapped around.
			break
		}
		steps = append(steps, step)
	}

	findings := ClassifyFocusSteps(steps, interactiveCount)
	r.logger.Info("Keyboard probe complete",
		zap.String("url", url),
		zap.Int("focus_stops", len(steps)),
		zap.Int("interactive_elements", interactiveCount),
		zap.Int("findings", len(findings)),
	)
	return findings, nil
}

// trapThreshold is how many consecutive identical focus stops count as a
// focus trap rather than a sticky widget.
const trapThreshold = 3

// ClassifyFocusSteps turns raw Tab-walk observations into findings. It is a
// pure function over its inputs.
func ClassifyFocusSteps(steps []FocusStep, interactiveCount int) []schemas.KeyboardFinding {
	findings := []schemas.KeyboardFinding{}

	unique := make(map[string]struct{}, len(steps))
	flaggedNoIndicator := make(map[string]struct{})
	consecutive := 1
	trapped := false

	for i, step := range steps {
		unique[step.Selector] = struct{}{}

		if !step.HasIndicator {
			if _, done := flaggedNoIndicator[step.Selector]; !done {
				flaggedNoIndicator[step.Selector] = struct{}{}
				findings = append(findings, schemas.KeyboardFinding{
					Title:          "Focusable element has no visible focus indicator",
					Description:    "The element receives keyboard focus but paints no outline or box shadow, leaving keyboard users with no way to see where they are on the page.",
					Severity:       schemas.SeveritySerious,
					Selector:       step.Selector,
					HTML:           step.HTML,
					WCAGCriteria:   []string{"2.4.7"},
					Recommendation: "Style the element's :focus-visible state with a clearly visible outline.",
				})
			}
		}

		if i > 0 && step.Selector == steps[i-1].Selector {
			consecutive++
			if consecutive >= trapThreshold && !trapped {
				trapped = true
				findings = append(findings, schemas.KeyboardFinding{
					Title:          "Keyboard focus trap",
					Description:    fmt.Sprintf("Focus stayed on the same element for %d consecutive Tab presses; keyboard users cannot move past it.", consecutive),
					Severity:       schemas.SeverityCritical,
					Selector:       step.Selector,
					HTML:           step.HTML,
					WCAGCriteria:   []string{"2.1.2"},
					Recommendation: "Ensure focus can always be moved away from the component using Tab or a documented key.",
				})
			}
		} else {
			consecutive = 1
		}
	}

	if interactiveCount > 0 && len(steps) > 0 && len(unique) < interactiveCount {
		findings = append(findings, schemas.KeyboardFinding{
			Title:       "Interactive elements are not reachable by keyboard",
			Description: fmt.Sprintf("The page exposes %d interactive elements but only %d were reachable via Tab.", interactiveCount, len(unique)),
			Severity:    schemas.SeveritySerious,
			WCAGCriteria: []string{
				"2.1.1",
			},
			Recommendation: "Give every interactive control a tab stop, or replace custom widgets with focusable native elements.",
		})
	}

	return findings
}
