package schemas

import "context"

// LLMClient abstracts a language model used to turn audit findings into prose
// insights and code-level fixes. The model is an opaque collaborator that
// returns text; prompt construction lives with the caller.
type LLMClient interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// LighthouseScanner runs a Lighthouse audit against a page.
type LighthouseScanner interface {
	Scan(ctx context.Context, url string) (*LighthouseResult, error)
}

// AxeScanner runs the Axe-Core engine against a page.
type AxeScanner interface {
	Scan(ctx context.Context, url string) (*AxeResult, error)
}

// Pa11yScanner runs Pa11y against a page.
type Pa11yScanner interface {
	Scan(ctx context.Context, url string) (*Pa11yResult, error)
}

// KeyboardScanner probes keyboard navigability of a page.
type KeyboardScanner interface {
	Scan(ctx context.Context, url string) ([]KeyboardFinding, error)
}
