package wcag

import "github.com/halcyonworks/webaudit-cli/api/schemas"

// Overall compliance verdicts. The ladder follows the WCAG conformance
// model: meeting a level requires meeting every lower level too.
const (
	VerdictNonCompliant = "Non-compliant"
)

// CalculateCompliance partitions a deduplicated issue set by WCAG level and
// derives the single overall verdict. Issues with LevelUnknown are excluded
// from every bucket.
//
// The verdict ladder is strict: zero violations anywhere means AAA; AAA-only
// violations cap the site at AA; AA violations cap it at A; any A-level
// violation makes the page Non-compliant regardless of the other buckets.
func CalculateCompliance(issues []schemas.Issue) schemas.ComplianceReport {
	var a, aa, aaa int
	for _, issue := range issues {
		switch issue.WCAGLevel {
		case schemas.LevelA:
			a++
		case schemas.LevelAA:
			aa++
		case schemas.LevelAAA:
			aaa++
		}
	}

	var level string
	switch {
	case a == 0 && aa == 0 && aaa == 0:
		level = string(schemas.LevelAAA)
	case a == 0 && aa == 0:
		level = string(schemas.LevelAA)
	case a == 0:
		level = string(schemas.LevelA)
	default:
		level = VerdictNonCompliant
	}

	return schemas.ComplianceReport{
		A:       schemas.LevelCompliance{Violations: a, Compliant: a == 0},
		AA:      schemas.LevelCompliance{Violations: aa, Compliant: aa == 0},
		AAA:     schemas.LevelCompliance{Violations: aaa, Compliant: aaa == 0},
		Overall: schemas.OverallCompliance{CompliantLevel: level},
	}
}
