// Package filter evaluates normalized job records against user criteria
// through three ordered stages: deterministic matching, fuzzy matching, and
// delegated semantic classification. Each predicate resolves to met, failed,
// or unknown; unknown never counts against a record.
package filter

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/jonathan/job-consolidator/internal/classify"
	"github.com/jonathan/job-consolidator/internal/types"
)

// Defaults for the fuzzy and semantic stages.
const (
	// DefaultKeywordThreshold is the title similarity at which a keyword
	// counts as a structural match.
	DefaultKeywordThreshold = 0.80
	// DefaultAmbiguityFloor is the similarity above which a structurally
	// failed keyword is considered ambiguous and delegated to the classifier.
	DefaultAmbiguityFloor = 0.50
	// DefaultConfidenceFloor is the classifier confidence required for a
	// definite verdict; anything lower resolves to unknown.
	DefaultConfidenceFloor = 70
)

// outcome is the tri-state result of one predicate evaluation.
type outcome int

const (
	outcomeUnknown outcome = iota
	outcomeMet
	outcomeFailed
)

// Options configures a filter pipeline.
type Options struct {
	// AsOf anchors date predicates; it is supplied by the caller so that
	// evaluation stays deterministic.
	AsOf             time.Time
	KeywordThreshold float64
	AmbiguityFloor   float64
	ConfidenceFloor  int
	// Classifier is the delegated semantic capability. May be nil, in which
	// case all semantic predicates resolve to unknown.
	Classifier classify.Classifier
	// OnClassifierError is invoked for every classification failure. The
	// batch runner uses it to log the outage warning once per run.
	OnClassifierError func(error)
}

// Pipeline evaluates records against one validated set of criteria. It holds
// no per-record state and is safe for concurrent use.
type Pipeline struct {
	criteria *types.FilterCriteria
	opts     Options
	// queryLevels and queryTypes are the criteria's categorical parameters in
	// canonical form, resolved once.
	queryLevels []string
	queryTypes  []string
}

// New validates the criteria and builds a pipeline.
func New(criteria *types.FilterCriteria, opts Options) (*Pipeline, error) {
	if err := criteria.Validate(); err != nil {
		return nil, err
	}
	if opts.KeywordThreshold == 0 {
		opts.KeywordThreshold = DefaultKeywordThreshold
	}
	if opts.AmbiguityFloor == 0 {
		opts.AmbiguityFloor = DefaultAmbiguityFloor
	}
	if opts.ConfidenceFloor == 0 {
		opts.ConfidenceFloor = DefaultConfidenceFloor
	}
	if opts.AsOf.IsZero() {
		return nil, &types.ConfigurationError{Key: "asOf", Message: "evaluation timestamp is required"}
	}

	return &Pipeline{
		criteria:    criteria,
		opts:        opts,
		queryLevels: canonicalLevels(criteria.ExperienceLevels),
		queryTypes:  canonicalJobTypes(criteria.JobTypes),
	}, nil
}

// accumulator collects per-predicate outcomes across the stages.
type accumulator struct {
	outcomes map[string]outcome
	// keywordBestScore feeds the ambiguity check in the semantic stage.
	keywordBestScore float64
}

func (a *accumulator) set(predicate string, o outcome) {
	a.outcomes[predicate] = o
}

// Evaluate runs all three stages for one record and produces its MatchResult.
// Per-record problems resolve to unknown predicates, never errors.
func (p *Pipeline) Evaluate(ctx context.Context, record *types.JobRecord) types.MatchResult {
	acc := &accumulator{outcomes: make(map[string]outcome)}

	p.evaluateDeterministic(record, acc)
	p.evaluateFuzzy(record, acc)
	p.evaluateSemantic(ctx, record, acc)

	return p.score(record.ID, acc)
}

// score applies the default scoring policy: unknown predicates are excluded
// from both numerator and denominator.
func (p *Pipeline) score(recordID string, acc *accumulator) types.MatchResult {
	result := types.MatchResult{RecordID: recordID}
	for predicate, o := range acc.outcomes {
		switch o {
		case outcomeMet:
			result.CriteriaMet = append(result.CriteriaMet, predicate)
		case outcomeFailed:
			result.CriteriaFailed = append(result.CriteriaFailed, predicate)
		default:
			result.CriteriaUnknown = append(result.CriteriaUnknown, predicate)
		}
	}
	sort.Strings(result.CriteriaMet)
	sort.Strings(result.CriteriaFailed)
	sort.Strings(result.CriteriaUnknown)
	result.HasUnknownCriteria = len(result.CriteriaUnknown) > 0

	evaluated := len(result.CriteriaMet) + len(result.CriteriaFailed)
	if evaluated > 0 {
		result.Score = int(math.Round(100 * float64(len(result.CriteriaMet)) / float64(evaluated)))
	}
	return result
}

func (p *Pipeline) classifierError(err error) {
	if p.opts.OnClassifierError != nil {
		p.opts.OnClassifierError(err)
	}
}
