// Package similarity computes pairwise similarity between normalized field
// values and composite similarity between records for deduplication. All
// scores are in [0, 1], symmetric, and reflexive.
package similarity

import (
	"strings"

	"github.com/jonathan/job-consolidator/internal/types"
)

// Default composite weights over {title, company, location.city}. These are
// configuration, not policy: callers tune them per domain.
const (
	DefaultTitleWeight   = 0.5
	DefaultCompanyWeight = 0.3
	DefaultCityWeight    = 0.2

	// DefaultDateDecayDays is the window over which date similarity decays
	// linearly to zero.
	DefaultDateDecayDays = 180
)

// Weights configures the composite record similarity.
type Weights struct {
	Title   float64 `json:"title" yaml:"title"`
	Company float64 `json:"company" yaml:"company"`
	City    float64 `json:"city" yaml:"city"`
}

// DefaultWeights returns the standard dedup weighting.
func DefaultWeights() Weights {
	return Weights{Title: DefaultTitleWeight, Company: DefaultCompanyWeight, City: DefaultCityWeight}
}

// Text scores two canonical text values by token overlap blended with a
// containment bonus. Tokens are whitespace-delimited; the containment side
// compares punctuation-trimmed tokens so "(senior)" still covers "senior".
func Text(a, b string) float64 {
	tokensA := strings.Fields(a)
	tokensB := strings.Fields(b)
	if len(tokensA) == 0 || len(tokensB) == 0 {
		if a == b && a != "" {
			return 1.0
		}
		return 0.0
	}

	jaccard := jaccardIndex(tokenSet(tokensA, false), tokenSet(tokensB, false))
	containment := containmentRatio(tokensA, tokensB)
	if a != "" && (strings.Contains(a, b) || strings.Contains(b, a)) {
		containment = 1.0
	}
	return 0.5*jaccard + 0.5*containment
}

// SalaryOverlap is the interval-overlap ratio overlap/union. Disjoint ranges
// score 0; identical ranges score 1. A zero-width range equal on both sides
// is identical.
func SalaryOverlap(a, b types.SalaryRange) float64 {
	overlap := a.Overlap(b)
	union := a.Union(b)
	if union == 0 {
		// Both ranges are the same single point.
		if a.Min == b.Min {
			return 1.0
		}
		return 0.0
	}
	return overlap / union
}

// Categorical is exact-match only: levels have no assumed ordering, so there
// is no partial credit.
func Categorical(a, b string) float64 {
	if a != "" && a == b {
		return 1.0
	}
	return 0.0
}

// Date decays linearly from 1 at zero distance to 0 at windowDays apart.
func Date(a, b types.NormalizedValue, windowDays int) float64 {
	if a.Date == nil || b.Date == nil {
		return 0.0
	}
	if windowDays <= 0 {
		windowDays = DefaultDateDecayDays
	}
	days := a.Date.Sub(*b.Date).Hours() / 24
	if days < 0 {
		days = -days
	}
	if days >= float64(windowDays) {
		return 0.0
	}
	return 1.0 - days/float64(windowDays)
}

// Fields scores two normalized values of the same class. Mismatched or
// unusable values score 0.
func Fields(a, b types.NormalizedValue, windowDays int) float64 {
	if !a.IsUsable() || !b.IsUsable() || a.Kind != b.Kind {
		return 0.0
	}
	switch a.Kind {
	case types.KindText:
		return Text(a.Text, b.Text)
	case types.KindSalary:
		return SalaryOverlap(*a.Salary, *b.Salary)
	case types.KindCategorical:
		return Categorical(a.Category, b.Category)
	case types.KindDate:
		return Date(a, b, windowDays)
	case types.KindLocation:
		return Text(a.Location.City, b.Location.City)
	default:
		return 0.0
	}
}

// Composite is the weighted record similarity over title, company, and city
// used by the fuzzy dedup pass. Dimensions that are unusable on either side
// drop out and the remaining weights renormalize; if nothing is comparable
// the score is 0.
func Composite(a, b *types.JobRecord, w Weights) (float64, map[string]float64) {
	breakdown := make(map[string]float64, 3)
	sum := 0.0
	weightSum := 0.0

	dims := []struct {
		name   string
		weight float64
		score  func() (float64, bool)
	}{
		{types.FieldTitle, w.Title, func() (float64, bool) {
			va, okA := a.Normalized(types.FieldTitle)
			vb, okB := b.Normalized(types.FieldTitle)
			if !okA || !okB {
				return 0, false
			}
			return Text(va.Text, vb.Text), true
		}},
		{types.FieldCompany, w.Company, func() (float64, bool) {
			va, okA := a.Normalized(types.FieldCompany)
			vb, okB := b.Normalized(types.FieldCompany)
			if !okA || !okB {
				return 0, false
			}
			return Text(va.Text, vb.Text), true
		}},
		{"city", w.City, func() (float64, bool) {
			ca, okA := city(a)
			cb, okB := city(b)
			if !okA || !okB {
				return 0, false
			}
			return Text(ca, cb), true
		}},
	}

	for _, dim := range dims {
		score, ok := dim.score()
		if !ok {
			continue
		}
		breakdown[dim.name] = score
		sum += dim.weight * score
		weightSum += dim.weight
	}

	if weightSum == 0 {
		return 0.0, breakdown
	}
	return sum / weightSum, breakdown
}

func city(r *types.JobRecord) (string, bool) {
	v, ok := r.Normalized(types.FieldLocation)
	if !ok || v.Location == nil || v.Location.City == "" {
		return "", false
	}
	return v.Location.City, true
}

func tokenSet(tokens []string, trim bool) map[string]struct{} {
	set := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		if trim {
			t = strings.Trim(t, "()[]{}.,;:!?\"'")
		}
		if t != "" {
			set[t] = struct{}{}
		}
	}
	return set
}

func jaccardIndex(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0.0
	}
	intersection := 0
	for t := range a {
		if _, ok := b[t]; ok {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	return float64(intersection) / float64(union)
}

// containmentRatio is the share of the smaller side's punctuation-trimmed
// tokens present in the other side.
func containmentRatio(tokensA, tokensB []string) float64 {
	setA := tokenSet(tokensA, true)
	setB := tokenSet(tokensB, true)
	small, large := setA, setB
	if len(setB) < len(setA) {
		small, large = setB, setA
	}
	if len(small) == 0 {
		return 0.0
	}
	contained := 0
	for t := range small {
		if _, ok := large[t]; ok {
			contained++
		}
	}
	return float64(contained) / float64(len(small))
}
