package schemas

// -- Raw Scanner Input Schemas --
//
// Each scanning engine reports findings in its own shape. These records mirror
// the engines' native JSON output; dedicated normalizers convert them into the
// canonical Issue type.

// AxeNode is one affected element in an Axe-Core rule result. Target holds
// the CSS selector path segments as Axe emits them.
type AxeNode struct {
	Target         []string `json:"target"`
	HTML           string   `json:"html"`
	FailureSummary string   `json:"failureSummary"`
}

// AxeFinding is a single Axe-Core rule result (violation, incomplete check,
// or pass).
type AxeFinding struct {
	ID          string    `json:"id"`
	Help        string    `json:"help"`
	Description string    `json:"description"`
	Impact      string    `json:"impact"`
	Tags        []string  `json:"tags"`
	HelpURL     string    `json:"helpUrl"`
	Nodes       []AxeNode `json:"nodes"`
}

// AxeTestEngine identifies the Axe-Core engine that produced a result.
type AxeTestEngine struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// AxeResult is the raw result object returned by an axe.run() invocation.
type AxeResult struct {
	Violations []AxeFinding  `json:"violations"`
	Incomplete []AxeFinding  `json:"incomplete"`
	Passes     []AxeFinding  `json:"passes"`
	TestEngine AxeTestEngine `json:"testEngine"`
	TestRunner AxeTestEngine `json:"testRunner"`
}

// Pa11yIssue is a single Pa11y message. Type is Pa11y's three-valued
// classification: "error", "warning" or "notice".
type Pa11yIssue struct {
	Type     string `json:"type"`
	Code     string `json:"code"`
	Message  string `json:"message"`
	Selector string `json:"selector"`
	Context  string `json:"context"`

	// Optional pre-decoded WCAG metadata. When absent the normalizer
	// derives what it can from Code.
	WCAGCriteria []string  `json:"wcagCriteria,omitempty"`
	WCAGLevel    WCAGLevel `json:"wcagLevel,omitempty"`
}

// Pa11yScore wraps Pa11y's engine-level accessibility score.
type Pa11yScore struct {
	Score int `json:"score"`
}

// Pa11yResult is the full output of a Pa11y run.
type Pa11yResult struct {
	Issues  []Pa11yIssue `json:"issues"`
	Score   Pa11yScore   `json:"score"`
	Version string       `json:"version"`
	Runner  string       `json:"runner"`
}

// CategoryResult is one Lighthouse category: an engine-computed score in
// 0-100 and the issues derived from its failing audits. Lighthouse-origin
// issues arrive pre-shaped in the common Issue form.
type CategoryResult struct {
	Score  int     `json:"score"`
	Issues []Issue `json:"issues"`
}

// LighthouseResult is the processed Lighthouse report for a single page.
type LighthouseResult struct {
	URL           string         `json:"url"`
	Version       string         `json:"version"`
	FetchTime     string         `json:"fetchTime"`
	Performance   CategoryResult `json:"performance"`
	Accessibility CategoryResult `json:"accessibility"`
	BestPractices CategoryResult `json:"bestPractices"`
	SEO           CategoryResult `json:"seo"`
}

// KeyboardFinding is a keyboard-navigation problem observed by the Tab-walk
// probe: an unreachable interactive element, a missing focus indicator, or a
// focus trap.
type KeyboardFinding struct {
	Title          string   `json:"title"`
	Description    string   `json:"description"`
	Severity       Severity `json:"severity"`
	Selector       string   `json:"selector,omitempty"`
	HTML           string   `json:"html,omitempty"`
	WCAGCriteria   []string `json:"wcagCriteria,omitempty"`
	Recommendation string   `json:"recommendation,omitempty"`
}
