// Package wcag decodes WCAG metadata from scanner tag strings and evaluates
// conformance over a set of normalized issues.
package wcag

import (
	"regexp"
	"strings"

	"github.com/halcyonworks/webaudit-cli/api/schemas"
)

// criterionTag matches a lowercase success-criterion tag such as "wcag143"
// or "wcag1411". The match is case-sensitive on purpose: uppercase variants
// are not part of any scanner's vocabulary.
var criterionTag = regexp.MustCompile(`^wcag(\d{3,4})$`)

// ExtractCriteria filters tags for WCAG success-criterion markers and
// reformats them into dotted identifiers: "wcag143" becomes "1.4.3" and
// "wcag1411" becomes "1.4.11". Input order is preserved.
//
// The split point is fixed after the first two digits (principle, then
// guideline), which is correct for all current WCAG 2.x numbering where both
// are single digits. Double-digit guideline numbers would decode wrong; that
// fragility is pinned by the package tests rather than papered over.
func ExtractCriteria(tags []string) []string {
	criteria := []string{}
	for _, tag := range tags {
		m := criterionTag.FindStringSubmatch(tag)
		if m == nil {
			continue
		}
		digits := m[1]
		criteria = append(criteria, digits[0:1]+"."+digits[1:2]+"."+digits[2:])
	}
	return criteria
}

// hasLevelMarker reports whether any tag is a WCAG level marker for the given
// suffix, e.g. "wcag2aa" or "wcag21aa" for suffix "aa".
func hasLevelMarker(tags []string, suffix string) bool {
	for _, tag := range tags {
		if !strings.HasPrefix(tag, "wcag") {
			continue
		}
		rest := strings.TrimPrefix(tag, "wcag")
		// Strip the version digits so "wcag21aaa" does not satisfy the
		// "aa" check through its trailing characters alone.
		version := strings.TrimLeft(rest, "0123456789")
		if version == suffix {
			return true
		}
	}
	return false
}

// ExtractLevel derives the conformance level a finding is tagged against.
// AAA markers win over AA, and AA over A: the strictest applicable target is
// the one reported. Tags with no level marker yield LevelUnknown.
func ExtractLevel(tags []string) schemas.WCAGLevel {
	switch {
	case hasLevelMarker(tags, "aaa"):
		return schemas.LevelAAA
	case hasLevelMarker(tags, "aa"):
		return schemas.LevelAA
	case hasLevelMarker(tags, "a"):
		return schemas.LevelA
	default:
		return schemas.LevelUnknown
	}
}
