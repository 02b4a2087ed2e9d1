package filter

import (
	"strings"

	"github.com/jonathan/job-consolidator/internal/normalize"
	"github.com/jonathan/job-consolidator/internal/types"
)

// evaluateDeterministic runs the exact-match predicates: jobType,
// experienceLevel, workMode membership, and the posting-date window. A
// missing or unparsed underlying field yields unknown, never failed.
func (p *Pipeline) evaluateDeterministic(record *types.JobRecord, acc *accumulator) {
	if len(p.queryTypes) > 0 {
		acc.set(types.PredicateJobType, p.evaluateJobType(record))
	}
	if len(p.queryLevels) > 0 {
		acc.set(types.PredicateExperienceLevel, p.evaluateExperienceLevel(record))
	}
	if len(p.criteria.LocationTypes) > 0 {
		acc.set(types.PredicateLocationType, p.evaluateLocationType(record))
	}
	if p.criteria.PostedWithinDays > 0 {
		acc.set(types.PredicatePostedWithinDays, p.evaluatePostedDate(record))
	}
}

func (p *Pipeline) evaluateJobType(record *types.JobRecord) outcome {
	v, ok := record.Normalized(types.FieldJobType)
	if !ok {
		return outcomeUnknown
	}
	for _, want := range p.queryTypes {
		if v.Category == want {
			return outcomeMet
		}
	}
	return outcomeFailed
}

func (p *Pipeline) evaluateExperienceLevel(record *types.JobRecord) outcome {
	v, ok := record.Normalized(types.FieldExperienceLevel)
	if !ok {
		// The semantic stage may still infer a level from the description.
		return outcomeUnknown
	}
	for _, want := range p.queryLevels {
		if v.Category == want {
			return outcomeMet
		}
	}
	return outcomeFailed
}

func (p *Pipeline) evaluateLocationType(record *types.JobRecord) outcome {
	v, ok := record.Normalized(types.FieldLocation)
	if !ok || v.Location == nil || v.Location.WorkMode == types.WorkModeUnknown {
		return outcomeUnknown
	}
	for _, want := range p.criteria.LocationTypes {
		if normalizeWorkMode(want) == v.Location.WorkMode {
			return outcomeMet
		}
	}
	return outcomeFailed
}

func (p *Pipeline) evaluatePostedDate(record *types.JobRecord) outcome {
	v, ok := record.Normalized(types.FieldPostedDate)
	if !ok || v.Date == nil {
		return outcomeUnknown
	}
	cutoff := p.opts.AsOf.AddDate(0, 0, -p.criteria.PostedWithinDays)
	if v.Date.Before(cutoff) {
		return outcomeFailed
	}
	return outcomeMet
}

func normalizeWorkMode(raw string) types.WorkMode {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "remote":
		return types.WorkModeRemote
	case "hybrid":
		return types.WorkModeHybrid
	case "on-site", "onsite", "on site":
		return types.WorkModeOnSite
	default:
		return types.WorkModeUnknown
	}
}

func canonicalLevels(levels []string) []string {
	out := make([]string, 0, len(levels))
	for _, level := range levels {
		v := normalize.Categorical(types.FieldExperienceLevel, level)
		if v.IsUsable() {
			out = append(out, v.Category)
		} else {
			out = append(out, normalize.CanonicalText(level))
		}
	}
	return out
}

func canonicalJobTypes(jobTypes []string) []string {
	out := make([]string, 0, len(jobTypes))
	for _, jt := range jobTypes {
		v := normalize.Categorical(types.FieldJobType, jt)
		if v.IsUsable() {
			out = append(out, v.Category)
		} else {
			out = append(out, normalize.CanonicalText(jt))
		}
	}
	return out
}
