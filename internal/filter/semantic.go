package filter

import (
	"context"
	"errors"
	"strings"

	"github.com/jonathan/job-consolidator/internal/classify"
	"github.com/jonathan/job-consolidator/internal/types"
)

// evaluateSemantic delegates judgment-requiring predicates to the external
// classifier: requiredSkills always, an experience level the posting never
// stated, and keywords whose structural match was ambiguous. Without a
// classifier every such predicate resolves to unknown, never to failed.
func (p *Pipeline) evaluateSemantic(ctx context.Context, record *types.JobRecord, acc *accumulator) {
	wantSkills := len(p.criteria.RequiredSkills) > 0
	wantLevel := acc.outcomes[types.PredicateExperienceLevel] == outcomeUnknown &&
		len(p.queryLevels) > 0 && !fieldUsable(record, types.FieldExperienceLevel)
	wantKeyword := acc.outcomes[types.PredicateKeyword] == outcomeFailed &&
		acc.keywordBestScore >= p.opts.AmbiguityFloor

	if !wantSkills && !wantLevel && !wantKeyword {
		return
	}

	if p.opts.Classifier == nil {
		if wantSkills {
			acc.set(types.PredicateRequiredSkills, outcomeUnknown)
		}
		if wantKeyword {
			acc.set(types.PredicateKeyword, outcomeUnknown)
		}
		p.classifierError(&classify.UnavailableError{Cause: errors.New("no classifier configured")})
		return
	}

	recordCtx := buildRecordContext(record)

	if wantSkills {
		parameter := strings.Join(p.criteria.RequiredSkills, ", ")
		acc.set(types.PredicateRequiredSkills,
			p.delegate(ctx, classify.KindRequiredSkills, recordCtx, parameter))
	}
	if wantLevel {
		// Any query level counting as met satisfies the membership predicate.
		result := outcomeFailed
		for _, level := range p.queryLevels {
			o := p.delegate(ctx, classify.KindExperienceLevel, recordCtx, level)
			if o == outcomeMet {
				result = outcomeMet
				break
			}
			if o == outcomeUnknown {
				result = outcomeUnknown
			}
		}
		acc.set(types.PredicateExperienceLevel, result)
	}
	if wantKeyword {
		result := outcomeFailed
		for _, keyword := range p.criteria.Keywords {
			o := p.delegate(ctx, classify.KindKeywordRelevance, recordCtx, keyword)
			if o == outcomeMet {
				result = outcomeMet
				break
			}
			if o == outcomeUnknown {
				result = outcomeUnknown
			}
		}
		if result != outcomeFailed {
			acc.set(types.PredicateKeyword, result)
		}
	}
}

// delegate performs one classification call and folds the verdict into the
// tri-state outcome. Errors and low-confidence verdicts are unknown.
func (p *Pipeline) delegate(ctx context.Context, kind classify.Kind, recordCtx classify.RecordContext, parameter string) outcome {
	verdict, err := p.opts.Classifier.Classify(ctx, kind, recordCtx, parameter)
	if err != nil {
		p.classifierError(err)
		return outcomeUnknown
	}
	if verdict.Confidence < p.opts.ConfidenceFloor {
		return outcomeUnknown
	}
	if verdict.Matches {
		return outcomeMet
	}
	return outcomeFailed
}

func buildRecordContext(record *types.JobRecord) classify.RecordContext {
	recordCtx := classify.RecordContext{}
	if fv, ok := record.Field(types.FieldTitle); ok {
		recordCtx.Title = fv.Raw
	}
	if fv, ok := record.Field(types.FieldCompany); ok {
		recordCtx.Company = fv.Raw
	}
	if fv, ok := record.Field(types.FieldDescription); ok {
		recordCtx.Description = fv.Raw
	}
	return recordCtx
}

func fieldUsable(record *types.JobRecord, name string) bool {
	_, ok := record.Normalized(name)
	return ok
}
