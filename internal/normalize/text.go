package normalize

import (
	"regexp"
	"strings"

	"github.com/jonathan/job-consolidator/internal/types"
)

var (
	whitespaceRe = regexp.MustCompile(`\s+`)
	// Legal-entity markers stripped from company names for comparison only;
	// the display value in FieldValue.Raw is untouched.
	corporateSuffixRe = regexp.MustCompile(`\b(gmbh|ag|ltd|inc|llc|corp|corporation|company|co)\b\.?`)
	// German-market diversity markers like "(m/w/d)" that appear inside titles.
	diversityMarkerRe = regexp.MustCompile(`\((m/w/d|w/m/d|f/m/d|m/f/d)\)`)
)

// CanonicalText lowercases, trims, and collapses internal whitespace.
func CanonicalText(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	s = diversityMarkerRe.ReplaceAllString(s, " ")
	s = whitespaceRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// CanonicalCompany additionally strips corporate suffixes so "Acme Inc" and
// "ACME" compare equal.
func CanonicalCompany(raw string) string {
	s := CanonicalText(raw)
	s = corporateSuffixRe.ReplaceAllString(s, " ")
	s = whitespaceRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// Text normalizes a free-text field. Company names get suffix stripping on
// top of the base canonicalization. An empty result is unparsed.
func Text(field, raw string) types.NormalizedValue {
	var canonical string
	if field == types.FieldCompany {
		canonical = CanonicalCompany(raw)
	} else {
		canonical = CanonicalText(raw)
	}
	if canonical == "" {
		return unparsed(raw)
	}
	return types.NormalizedValue{Kind: types.KindText, Text: canonical}
}
