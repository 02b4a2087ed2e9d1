package normalize

import (
	"sort"
	"strings"

	"github.com/jonathan/job-consolidator/internal/types"
)

// Canonical jobType enum values.
const (
	JobTypeFullTime   = "full-time"
	JobTypePartTime   = "part-time"
	JobTypeContract   = "contract"
	JobTypeInternship = "internship"
	JobTypeTemporary  = "temporary"
	JobTypeFreelance  = "freelance"
)

// Canonical experienceLevel enum values.
const (
	LevelEntry     = "entry"
	LevelJunior    = "junior"
	LevelMid       = "mid"
	LevelSenior    = "senior"
	LevelLead      = "lead"
	LevelExecutive = "executive"
)

var jobTypeAliases = map[string]string{
	"full-time":  JobTypeFullTime,
	"fulltime":   JobTypeFullTime,
	"full time":  JobTypeFullTime,
	"permanent":  JobTypeFullTime,
	"vollzeit":   JobTypeFullTime,
	"part-time":  JobTypePartTime,
	"parttime":   JobTypePartTime,
	"part time":  JobTypePartTime,
	"teilzeit":   JobTypePartTime,
	"contract":   JobTypeContract,
	"contractor": JobTypeContract,
	"b2b":        JobTypeContract,
	"internship": JobTypeInternship,
	"intern":     JobTypeInternship,
	"praktikum":  JobTypeInternship,
	"temporary":  JobTypeTemporary,
	"temp":       JobTypeTemporary,
	"freelance":  JobTypeFreelance,
	"freelancer": JobTypeFreelance,
}

var experienceLevelAliases = map[string]string{
	"entry":            LevelEntry,
	"entry-level":      LevelEntry,
	"entry level":      LevelEntry,
	"graduate":         LevelEntry,
	"trainee":          LevelEntry,
	"junior":           LevelJunior,
	"jr":               LevelJunior,
	"jr.":              LevelJunior,
	"mid":              LevelMid,
	"mid-level":        LevelMid,
	"mid level":        LevelMid,
	"midlevel":         LevelMid,
	"intermediate":     LevelMid,
	"senior":           LevelSenior,
	"sr":               LevelSenior,
	"sr.":              LevelSenior,
	"lead":             LevelLead,
	"staff":            LevelLead,
	"principal":        LevelLead,
	"executive":        LevelExecutive,
	"director":         LevelExecutive,
	"vp":               LevelExecutive,
	"head of":          LevelExecutive,
}

// Categorical matches a raw value case-insensitively against the fixed enum
// plus alias table for the field. No match is an unparsed value, never a
// guessed category.
func Categorical(field, raw string) types.NormalizedValue {
	key := CanonicalText(raw)
	if key == "" {
		return unparsed(raw)
	}

	var table map[string]string
	switch field {
	case types.FieldJobType:
		table = jobTypeAliases
	case types.FieldExperienceLevel:
		table = experienceLevelAliases
	default:
		return unparsed(raw)
	}

	if canonical, ok := table[key]; ok {
		return types.NormalizedValue{Kind: types.KindCategorical, Category: canonical}
	}
	// Tolerate decorations like "Senior level" or "Full-time position". The
	// alias list is scanned longest-first so multi-word aliases win, and ties
	// resolve alphabetically to keep normalization deterministic.
	for _, alias := range sortedAliases(table) {
		if strings.HasPrefix(key, alias+" ") || strings.HasSuffix(key, " "+alias) {
			return types.NormalizedValue{Kind: types.KindCategorical, Category: table[alias]}
		}
	}
	return unparsed(raw)
}

func sortedAliases(table map[string]string) []string {
	aliases := make([]string, 0, len(table))
	for alias := range table {
		aliases = append(aliases, alias)
	}
	sort.Slice(aliases, func(i, j int) bool {
		if len(aliases[i]) != len(aliases[j]) {
			return len(aliases[i]) > len(aliases[j])
		}
		return aliases[i] < aliases[j]
	})
	return aliases
}
