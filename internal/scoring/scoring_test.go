package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/halcyonworks/webaudit-cli/api/schemas"
)

func TestMapImpactToScore(t *testing.T) {
	tests := []struct {
		name     string
		severity schemas.Severity
		expected int
	}{
		{"critical", schemas.SeverityCritical, 100},
		{"serious", schemas.SeveritySerious, 75},
		{"moderate", schemas.SeverityModerate, 50},
		{"minor", schemas.SeverityMinor, 25},
		{"empty string defaults to 50", schemas.Severity(""), 50},
		{"unrecognized defaults to 50", schemas.Severity("catastrophic"), 50},
		{"uppercase is not recognized", schemas.Severity("CRITICAL"), 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, MapImpactToScore(tt.severity))
		})
	}
}

func TestGradeForScore_Boundaries(t *testing.T) {
	tests := []struct {
		score    int
		expected string
	}{
		{90, "A"}, {89, "B"}, {80, "B"}, {79, "C"},
		{70, "C"}, {69, "D"}, {60, "D"}, {59, "F"},
		{-10, "F"}, {150, "A"}, {0, "F"}, {100, "A"},
	}

	for _, tt := range tests {
		assert.Equalf(t, tt.expected, GradeForScore(tt.score), "score %d", tt.score)
	}
}

func TestCalculateWeightedScore_ZeroEvidence(t *testing.T) {
	// No data means no evidence of failure.
	assert.Equal(t, 100, CalculateWeightedScore(nil, nil, nil))
	assert.Equal(t, 100, CalculateWeightedScore([]RuleResult{}, []RuleResult{}, []RuleResult{}))
}

func TestCalculateWeightedScore_ExactFormula(t *testing.T) {
	// One critical violation on one node (weight 10) plus two passes
	// (2 units): totalWeight=12, violationWeight=10 -> round(2/12*100)=17.
	violations := []RuleResult{{Severity: schemas.SeverityCritical, NodeCount: 1}}
	passes := []RuleResult{{}, {}}

	assert.Equal(t, 17, CalculateWeightedScore(violations, nil, passes))
}

func TestCalculateWeightedScore_NodeCountWeighting(t *testing.T) {
	// Three nodes triple a violation's mass; a zero node count still
	// counts as one node.
	multi := []RuleResult{{Severity: schemas.SeverityMinor, NodeCount: 3}}
	zero := []RuleResult{{Severity: schemas.SeverityMinor, NodeCount: 0}}
	passes := []RuleResult{{}, {}, {}}

	// minor weight 1 * 3 nodes = 3; total 6 -> 50.
	assert.Equal(t, 50, CalculateWeightedScore(multi, nil, passes))
	// minor weight 1 * max(1,0) = 1; total 4 -> 75.
	assert.Equal(t, 75, CalculateWeightedScore(zero, nil, passes))
}

func TestCalculateWeightedScore_IncompleteHalfWeight(t *testing.T) {
	// Incomplete items add denominator weight only: the score drops below
	// 100 is impossible from incomplete alone.
	incomplete := []RuleResult{{Severity: schemas.SeverityModerate, NodeCount: 2}}
	assert.Equal(t, 100, CalculateWeightedScore(nil, incomplete, nil))

	// One serious violation (7) + incomplete moderate on 2 nodes (0.5*4*2=4)
	// + one pass (1): total 12, violation 7 -> round(5/12*100)=42.
	violations := []RuleResult{{Severity: schemas.SeveritySerious, NodeCount: 1}}
	passes := []RuleResult{{}}
	assert.Equal(t, 42, CalculateWeightedScore(violations, incomplete, passes))
}

func TestCalculateWeightedScore_UnknownSeverityWeight(t *testing.T) {
	// Unrecognized severities weigh 1.
	violations := []RuleResult{{Severity: schemas.Severity("bogus"), NodeCount: 1}}
	passes := []RuleResult{{}, {}, {}}
	// total 4, violation 1 -> 75.
	assert.Equal(t, 75, CalculateWeightedScore(violations, nil, passes))
}

func TestCalculateWeightedScore_Monotonicity(t *testing.T) {
	incomplete := []RuleResult{{Severity: schemas.SeverityModerate, NodeCount: 1}}
	passes := []RuleResult{{}, {}, {}, {}}

	violations := []RuleResult{}
	prev := CalculateWeightedScore(violations, incomplete, passes)
	for i := 0; i < 10; i++ {
		violations = append(violations, RuleResult{Severity: schemas.SeveritySerious, NodeCount: i%3 + 1})
		score := CalculateWeightedScore(violations, incomplete, passes)
		assert.LessOrEqual(t, score, prev, "adding a violation must never raise the score")
		prev = score
	}
}
