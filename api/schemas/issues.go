package schemas

// -- Issue Schemas --

// Severity is the ordinal classification of an accessibility issue, from
// critical down to minor. The values are lowercase to match the vocabulary
// used by the scanner engines on the wire.
type Severity string

// Constants defining the standard severity levels for issues.
const (
	SeverityCritical Severity = "critical"
	SeveritySerious  Severity = "serious"
	SeverityModerate Severity = "moderate"
	SeverityMinor    Severity = "minor"
)

// WCAGLevel is a WCAG conformance level derived from scanner tags.
type WCAGLevel string

// Constants for the WCAG conformance levels. LevelUnknown marks issues whose
// tags carried no recognizable level marker.
const (
	LevelA       WCAGLevel = "A"
	LevelAA      WCAGLevel = "AA"
	LevelAAA     WCAGLevel = "AAA"
	LevelUnknown WCAGLevel = "Unknown"
)

// Source identifiers for the scanning engines that can detect an issue.
const (
	SourceLighthouse = "lighthouse"
	SourceAxe        = "axe-core"
	SourcePa11y      = "pa11y"
	SourceKeyboard   = "keyboard"
)

// IssueNode is one affected DOM location: where the problem was observed,
// the offending markup, and the engine's explanation of the failure.
type IssueNode struct {
	Target         string `json:"target,omitempty"`
	HTML           string `json:"html,omitempty"`
	FailureSummary string `json:"failureSummary,omitempty"`
}

// Recommendation is a remediation hint attached to an issue.
type Recommendation struct {
	Description    string `json:"description"`
	Implementation string `json:"implementation,omitempty"`
	LearnMore      string `json:"learnMore,omitempty"`
}

// Issue is the common normalized finding shared by every scanner source.
// Each raw scanner finding is converted into exactly one Issue; duplicates
// across sources are collapsed by the deduplicator, which unions DetectedBy
// and keeps the most severe classification.
type Issue struct {
	// Type is the report category this issue belongs to. Always
	// "accessibility" for scanner-derived issues.
	Type        string   `json:"type"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Severity    Severity `json:"severity"`

	// Impact is the numeric restatement of Severity used for scoring
	// comparisons. It is derived from the severity tables and never
	// mutated independently.
	Impact int `json:"impact"`

	// DetectedBy lists the source identifiers that reported this issue.
	// Never empty after normalization; a de-duplicated set.
	DetectedBy []string `json:"detectedBy"`

	// WCAGCriteria holds dotted success-criterion identifiers such as
	// "1.4.3", in the order the source tags listed them.
	WCAGCriteria []string  `json:"wcagCriteria"`
	WCAGLevel    WCAGLevel `json:"wcagLevel"`

	// Selector locates the first affected element. Issues without a
	// selector are page-level (e.g. a missing lang attribute).
	Selector       string `json:"selector,omitempty"`
	HTML           string `json:"html,omitempty"`
	FailureSummary string `json:"failureSummary,omitempty"`
	HelpURL        string `json:"helpUrl,omitempty"`

	Nodes     []IssueNode `json:"nodes,omitempty"`
	NodeCount int         `json:"nodeCount"`

	// RequiresManualCheck is true for findings the scanner could not
	// automatically confirm (Axe "incomplete" checks).
	RequiresManualCheck bool `json:"requiresManualCheck,omitempty"`

	Recommendations []Recommendation `json:"recommendations,omitempty"`
}
