// Package scoring holds the numeric primitives of the audit engine: the
// severity-to-impact table, the score-to-grade ladder, and the node-weighted
// accessibility score. Every function is pure and total; unknown inputs
// degrade to the neutral defaults rather than erroring.
package scoring

import (
	"math"

	"github.com/halcyonworks/webaudit-cli/api/schemas"
)

// impactScores maps a severity to its 0-100 impact value.
var impactScores = map[schemas.Severity]int{
	schemas.SeverityCritical: 100,
	schemas.SeveritySerious:  75,
	schemas.SeverityModerate: 50,
	schemas.SeverityMinor:    25,
}

// severityWeights drives the weighted score formula. The scale is coarser
// than the impact table: it expresses evidence weight, not user impact.
var severityWeights = map[schemas.Severity]float64{
	schemas.SeverityCritical: 10,
	schemas.SeveritySerious:  7,
	schemas.SeverityModerate: 4,
	schemas.SeverityMinor:    1,
}

// MapImpactToScore converts a severity label into its numeric impact value.
// Unrecognized severities (including the empty string) score 50.
func MapImpactToScore(severity schemas.Severity) int {
	if score, ok := impactScores[severity]; ok {
		return score
	}
	return 50
}

// GradeForScore converts a 0-100 score into a letter grade. Scores above 100
// still grade A; negative scores grade F.
func GradeForScore(score int) string {
	switch {
	case score >= 90:
		return "A"
	case score >= 80:
		return "B"
	case score >= 70:
		return "C"
	case score >= 60:
		return "D"
	default:
		return "F"
	}
}

// RuleResult is the minimal view of a scanner rule result that the weighted
// score formula needs: how severe it is and how many DOM nodes it touched.
type RuleResult struct {
	Severity  schemas.Severity
	NodeCount int
}

// severityWeight returns the evidence weight for a severity, defaulting to 1
// for anything outside the table.
func severityWeight(severity schemas.Severity) float64 {
	if w, ok := severityWeights[severity]; ok {
		return w
	}
	return 1
}

// CalculateWeightedScore computes a 0-100 accessibility score from a
// scanner's violations, incomplete checks and passes.
//
// Each violation contributes weight(severity) * max(1, nodeCount) to both the
// total evidence and the violation mass. Incomplete checks contribute half
// their weight to the total only: they dilute confidence without counting as
// confirmed failures. Each pass is exactly one unit of evidence. With no
// evidence at all the score is a vacuous 100.
func CalculateWeightedScore(violations, incomplete, passes []RuleResult) int {
	var totalWeight, violationWeight float64

	for _, v := range violations {
		w := severityWeight(v.Severity) * float64(max(1, v.NodeCount))
		totalWeight += w
		violationWeight += w
	}
	for _, item := range incomplete {
		totalWeight += 0.5 * severityWeight(item.Severity) * float64(max(1, item.NodeCount))
	}
	totalWeight += float64(len(passes))

	if totalWeight <= 0 {
		return 100
	}
	return int(math.Round((totalWeight - violationWeight) / totalWeight * 100))
}
