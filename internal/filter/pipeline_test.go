package filter

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/job-consolidator/internal/classify"
	"github.com/jonathan/job-consolidator/internal/normalize"
	"github.com/jonathan/job-consolidator/internal/types"
)

var testAsOf = time.Date(2025, 11, 20, 0, 0, 0, 0, time.UTC)

func makeRecord(id string, fields map[string]string) types.JobRecord {
	record := types.JobRecord{
		ID:        id,
		SourceURL: "https://example.test/" + id,
		SessionID: "session_scrape_20251120_000000",
		Fields:    make(map[string]types.FieldValue, len(fields)),
	}
	for name, raw := range fields {
		record.Fields[name] = types.FieldValue{Raw: raw, Confidence: 80}
	}
	normalize.Record(&record, testAsOf)
	return record
}

// stubClassifier answers every call with a fixed function.
type stubClassifier struct {
	fn    func(kind classify.Kind, parameter string) (classify.Classification, error)
	calls int
}

func (s *stubClassifier) Classify(_ context.Context, kind classify.Kind, _ classify.RecordContext, parameter string) (classify.Classification, error) {
	s.calls++
	return s.fn(kind, parameter)
}

func mustPipeline(t *testing.T, criteria *types.FilterCriteria, opts Options) *Pipeline {
	t.Helper()
	if opts.AsOf.IsZero() {
		opts.AsOf = testAsOf
	}
	p, err := New(criteria, opts)
	require.NoError(t, err)
	return p
}

func floatPtr(v float64) *float64 { return &v }

func TestNew_ConfigurationErrors(t *testing.T) {
	tests := []struct {
		name     string
		criteria types.FilterCriteria
	}{
		{
			name:     "salaryMin exceeds salaryMax",
			criteria: types.FilterCriteria{SalaryMin: floatPtr(90000), SalaryMax: floatPtr(40000), SalaryCurrency: "EUR"},
		},
		{
			name:     "salary bounds without currency",
			criteria: types.FilterCriteria{SalaryMin: floatPtr(40000)},
		},
		{
			name:     "negative postedWithinDays",
			criteria: types.FilterCriteria{PostedWithinDays: -1},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(&tt.criteria, Options{AsOf: testAsOf})
			var cfgErr *types.ConfigurationError
			require.ErrorAs(t, err, &cfgErr)
		})
	}
}

func TestEvaluate_SalaryOverlap(t *testing.T) {
	record := makeRecord("job_0001", map[string]string{
		types.FieldSalary: "€40,000 - €80,000",
	})

	overlap := mustPipeline(t, &types.FilterCriteria{
		SalaryMin: floatPtr(75000), SalaryMax: floatPtr(95000), SalaryCurrency: "EUR",
	}, Options{})
	result := overlap.Evaluate(context.Background(), &record)
	assert.Equal(t, []string{types.PredicateSalaryRange}, result.CriteriaMet)
	assert.Equal(t, 100, result.Score)

	disjoint := mustPipeline(t, &types.FilterCriteria{
		SalaryMin: floatPtr(20000), SalaryMax: floatPtr(35000), SalaryCurrency: "EUR",
	}, Options{})
	result = disjoint.Evaluate(context.Background(), &record)
	assert.Equal(t, []string{types.PredicateSalaryRange}, result.CriteriaFailed)
	assert.Equal(t, 0, result.Score)
}

func TestEvaluate_SalaryCurrencyMismatchIsUnknown(t *testing.T) {
	record := makeRecord("job_0001", map[string]string{
		types.FieldSalary: "$60,000",
	})
	p := mustPipeline(t, &types.FilterCriteria{
		SalaryMin: floatPtr(50000), SalaryMax: floatPtr(70000), SalaryCurrency: "EUR",
	}, Options{})

	result := p.Evaluate(context.Background(), &record)
	assert.Equal(t, []string{types.PredicateSalaryRange}, result.CriteriaUnknown)
	assert.True(t, result.HasUnknownCriteria)
	assert.Equal(t, 0, result.Score)
}

func TestEvaluate_SalaryWithoutCurrencyComparesNumerically(t *testing.T) {
	// Postings that state an amount but no currency marker are compared
	// against the query bounds as is rather than discarded as unknown.
	record := makeRecord("job_0001", map[string]string{
		types.FieldSalary: "50,000 - 70,000",
	})
	p := mustPipeline(t, &types.FilterCriteria{
		SalaryMin: floatPtr(60000), SalaryMax: floatPtr(90000), SalaryCurrency: "EUR",
	}, Options{})

	result := p.Evaluate(context.Background(), &record)
	assert.Equal(t, []string{types.PredicateSalaryRange}, result.CriteriaMet)
	assert.False(t, result.HasUnknownCriteria)
}

func TestEvaluate_ExactSalaryInsideQueryBand(t *testing.T) {
	// A posting stating exactly €60,000 sits inside the band even though its
	// own range has zero width.
	record := makeRecord("job_0001", map[string]string{
		types.FieldSalary: "€60,000",
	})
	p := mustPipeline(t, &types.FilterCriteria{
		SalaryMin: floatPtr(50000), SalaryMax: floatPtr(70000), SalaryCurrency: "EUR",
	}, Options{})

	result := p.Evaluate(context.Background(), &record)
	assert.Equal(t, []string{types.PredicateSalaryRange}, result.CriteriaMet)
}

func TestEvaluate_OpenBoundWidening(t *testing.T) {
	record := makeRecord("job_0001", map[string]string{
		types.FieldSalary: "€100,000+",
	})
	band := &types.FilterCriteria{
		SalaryMin: floatPtr(110000), SalaryMax: floatPtr(130000), SalaryCurrency: "EUR",
	}

	// Exact reading: [100000, 100000] misses the band.
	strict := mustPipeline(t, band, Options{})
	result := strict.Evaluate(context.Background(), &record)
	assert.Equal(t, []string{types.PredicateSalaryRange}, result.CriteriaFailed)

	// Widened reading treats the bound as open-ended.
	widened := *band
	widened.WidenOpenSalaryBounds = true
	p := mustPipeline(t, &widened, Options{})
	result = p.Evaluate(context.Background(), &record)
	assert.Equal(t, []string{types.PredicateSalaryRange}, result.CriteriaMet)
}

func TestEvaluate_DeterministicPredicates(t *testing.T) {
	record := makeRecord("job_0001", map[string]string{
		types.FieldTitle:           "Senior Backend Engineer",
		types.FieldJobType:         "Vollzeit",
		types.FieldExperienceLevel: "Senior",
		types.FieldLocation:        "Berlin, Germany (Remote)",
		types.FieldPostedDate:      "3 days ago",
	})
	p := mustPipeline(t, &types.FilterCriteria{
		JobTypes:         []string{"full-time"},
		ExperienceLevels: []string{"senior", "lead"},
		LocationTypes:    []string{"remote"},
		PostedWithinDays: 30,
	}, Options{})

	result := p.Evaluate(context.Background(), &record)
	assert.ElementsMatch(t, []string{
		types.PredicateJobType,
		types.PredicateExperienceLevel,
		types.PredicateLocationType,
		types.PredicatePostedWithinDays,
	}, result.CriteriaMet)
	assert.Empty(t, result.CriteriaFailed)
	assert.Equal(t, 100, result.Score)
	assert.False(t, result.HasUnknownCriteria)
}

func TestEvaluate_PostedDateWindow(t *testing.T) {
	record := makeRecord("job_0001", map[string]string{
		types.FieldPostedDate: "2025-10-01",
	})
	p := mustPipeline(t, &types.FilterCriteria{PostedWithinDays: 30}, Options{})

	result := p.Evaluate(context.Background(), &record)
	assert.Equal(t, []string{types.PredicatePostedWithinDays}, result.CriteriaFailed)
}

func TestEvaluate_MissingDataScoresWithFlag(t *testing.T) {
	// Four met predicates plus one unknown: the unknown is excluded from the
	// score, and the flag distinguishes this from a clean 100.
	record := makeRecord("job_0001", map[string]string{
		types.FieldTitle:      "Senior Backend Engineer",
		types.FieldCompany:    "TechCorp GmbH",
		types.FieldJobType:    "Full-time",
		types.FieldLocation:   "Berlin, Germany",
		types.FieldPostedDate: "yesterday",
	})
	p := mustPipeline(t, &types.FilterCriteria{
		Keywords:         []string{"backend"},
		JobTypes:         []string{"full-time"},
		Cities:           []string{"Berlin"},
		PostedWithinDays: 14,
		SalaryMin:        floatPtr(50000),
		SalaryMax:        floatPtr(90000),
		SalaryCurrency:   "EUR",
	}, Options{})

	result := p.Evaluate(context.Background(), &record)
	assert.Len(t, result.CriteriaMet, 4)
	assert.Empty(t, result.CriteriaFailed)
	assert.Equal(t, []string{types.PredicateSalaryRange}, result.CriteriaUnknown)
	assert.Equal(t, 100, result.Score)
	assert.True(t, result.HasUnknownCriteria)
}

func TestEvaluate_AllUnknownScoresZero(t *testing.T) {
	record := makeRecord("job_0001", map[string]string{
		types.FieldTitle: "Backend Engineer",
	})
	p := mustPipeline(t, &types.FilterCriteria{
		JobTypes:      []string{"full-time"},
		LocationTypes: []string{"remote"},
	}, Options{})

	result := p.Evaluate(context.Background(), &record)
	assert.Equal(t, 0, result.Score)
	assert.Empty(t, result.CriteriaMet)
	assert.Empty(t, result.CriteriaFailed)
	assert.Len(t, result.CriteriaUnknown, 2)
	assert.True(t, result.HasUnknownCriteria)
}

func TestEvaluate_KeywordSubstringAndDescription(t *testing.T) {
	record := makeRecord("job_0001", map[string]string{
		types.FieldTitle:       "Senior Backend Engineer",
		types.FieldDescription: "We use Go and Postgres in a distributed system.",
	})

	byTitle := mustPipeline(t, &types.FilterCriteria{Keywords: []string{"backend"}}, Options{})
	result := byTitle.Evaluate(context.Background(), &record)
	assert.Equal(t, []string{types.PredicateKeyword}, result.CriteriaMet)

	byDescription := mustPipeline(t, &types.FilterCriteria{Keywords: []string{"postgres"}}, Options{})
	result = byDescription.Evaluate(context.Background(), &record)
	assert.Equal(t, []string{types.PredicateKeyword}, result.CriteriaMet)

	miss := mustPipeline(t, &types.FilterCriteria{Keywords: []string{"embedded firmware"}}, Options{})
	result = miss.Evaluate(context.Background(), &record)
	assert.Equal(t, []string{types.PredicateKeyword}, result.CriteriaFailed)
}

func TestEvaluate_AmbiguousKeywordDelegated(t *testing.T) {
	// "machine learning engineer" vs "Machine Learning Scientist" scores in
	// the ambiguity band: structurally failed but close enough to ask.
	record := makeRecord("job_0001", map[string]string{
		types.FieldTitle: "Machine Learning Scientist",
	})
	criteria := &types.FilterCriteria{Keywords: []string{"machine learning engineer"}}

	classifier := &stubClassifier{fn: func(classify.Kind, string) (classify.Classification, error) {
		return classify.Classification{Matches: true, Confidence: 85}, nil
	}}
	p := mustPipeline(t, criteria, Options{Classifier: classifier})
	result := p.Evaluate(context.Background(), &record)
	assert.Equal(t, []string{types.PredicateKeyword}, result.CriteriaMet)
	assert.Equal(t, 1, classifier.calls)

	// A confident negative verdict keeps the structural failure.
	classifier = &stubClassifier{fn: func(classify.Kind, string) (classify.Classification, error) {
		return classify.Classification{Matches: false, Confidence: 90}, nil
	}}
	p = mustPipeline(t, criteria, Options{Classifier: classifier})
	result = p.Evaluate(context.Background(), &record)
	assert.Equal(t, []string{types.PredicateKeyword}, result.CriteriaFailed)

	// Low confidence resolves to unknown.
	classifier = &stubClassifier{fn: func(classify.Kind, string) (classify.Classification, error) {
		return classify.Classification{Matches: true, Confidence: 40}, nil
	}}
	p = mustPipeline(t, criteria, Options{Classifier: classifier})
	result = p.Evaluate(context.Background(), &record)
	assert.Equal(t, []string{types.PredicateKeyword}, result.CriteriaUnknown)
}

func TestEvaluate_RequiredSkillsDelegated(t *testing.T) {
	record := makeRecord("job_0001", map[string]string{
		types.FieldTitle:       "Backend Engineer",
		types.FieldDescription: "Kubernetes, Go, Postgres.",
	})
	criteria := &types.FilterCriteria{RequiredSkills: []string{"Go", "Kubernetes"}}

	classifier := &stubClassifier{fn: func(kind classify.Kind, parameter string) (classify.Classification, error) {
		assert.Equal(t, classify.KindRequiredSkills, kind)
		assert.Equal(t, "Go, Kubernetes", parameter)
		return classify.Classification{Matches: true, Confidence: 95}, nil
	}}
	p := mustPipeline(t, criteria, Options{Classifier: classifier})

	result := p.Evaluate(context.Background(), &record)
	assert.Equal(t, []string{types.PredicateRequiredSkills}, result.CriteriaMet)
}

func TestEvaluate_ClassifierOutageResolvesUnknown(t *testing.T) {
	record := makeRecord("job_0001", map[string]string{
		types.FieldTitle: "Backend Engineer",
	})
	criteria := &types.FilterCriteria{RequiredSkills: []string{"Go"}}

	var reported []error
	classifier := &stubClassifier{fn: func(classify.Kind, string) (classify.Classification, error) {
		return classify.Classification{}, &classify.UnavailableError{Cause: errors.New("timeout")}
	}}
	p := mustPipeline(t, criteria, Options{
		Classifier:        classifier,
		OnClassifierError: func(err error) { reported = append(reported, err) },
	})

	result := p.Evaluate(context.Background(), &record)
	assert.Equal(t, []string{types.PredicateRequiredSkills}, result.CriteriaUnknown)
	assert.Empty(t, result.CriteriaFailed)
	require.Len(t, reported, 1)
	var unavailable *classify.UnavailableError
	assert.ErrorAs(t, reported[0], &unavailable)
}

func TestEvaluate_NoClassifierConfigured(t *testing.T) {
	record := makeRecord("job_0001", map[string]string{
		types.FieldTitle: "Backend Engineer",
	})
	var reported []error
	p := mustPipeline(t, &types.FilterCriteria{RequiredSkills: []string{"Go"}}, Options{
		OnClassifierError: func(err error) { reported = append(reported, err) },
	})

	result := p.Evaluate(context.Background(), &record)
	assert.Equal(t, []string{types.PredicateRequiredSkills}, result.CriteriaUnknown)
	assert.Len(t, reported, 1)
}

func TestEvaluate_InferredLevelOnlyWhenFieldAbsent(t *testing.T) {
	criteria := &types.FilterCriteria{ExperienceLevels: []string{"senior"}}
	classifier := &stubClassifier{fn: func(kind classify.Kind, parameter string) (classify.Classification, error) {
		return classify.Classification{Matches: true, Confidence: 90}, nil
	}}

	// Field absent: the classifier may infer the level.
	absent := makeRecord("job_0001", map[string]string{
		types.FieldTitle:       "Backend Engineer",
		types.FieldDescription: "8+ years of experience required.",
	})
	p := mustPipeline(t, criteria, Options{Classifier: classifier})
	result := p.Evaluate(context.Background(), &absent)
	assert.Equal(t, []string{types.PredicateExperienceLevel}, result.CriteriaMet)
	assert.Equal(t, 1, classifier.calls)

	// Field present and mismatched: deterministic failure, no delegation.
	classifier.calls = 0
	present := makeRecord("job_0002", map[string]string{
		types.FieldTitle:           "Backend Engineer",
		types.FieldExperienceLevel: "Junior",
	})
	result = p.Evaluate(context.Background(), &present)
	assert.Equal(t, []string{types.PredicateExperienceLevel}, result.CriteriaFailed)
	assert.Equal(t, 0, classifier.calls)
}

func TestEvaluate_MonotonicityOnMetCriteria(t *testing.T) {
	// Adding a satisfied predicate never lowers the score.
	record := makeRecord("job_0001", map[string]string{
		types.FieldTitle:   "Backend Engineer",
		types.FieldJobType: "Full-time",
		types.FieldCompany: "Acme Inc",
	})

	base := mustPipeline(t, &types.FilterCriteria{
		Keywords: []string{"frontend"},
		JobTypes: []string{"full-time"},
	}, Options{})
	baseResult := base.Evaluate(context.Background(), &record)
	assert.Equal(t, 50, baseResult.Score)

	extended := mustPipeline(t, &types.FilterCriteria{
		Keywords:        []string{"frontend"},
		JobTypes:        []string{"full-time"},
		CompanyContains: "acme",
	}, Options{})
	extendedResult := extended.Evaluate(context.Background(), &record)
	assert.GreaterOrEqual(t, extendedResult.Score, baseResult.Score)
	assert.Equal(t, 67, extendedResult.Score)
}

func TestEvaluate_UnspecifiedPredicatesSkipped(t *testing.T) {
	record := makeRecord("job_0001", map[string]string{
		types.FieldTitle: "Backend Engineer",
	})
	p := mustPipeline(t, &types.FilterCriteria{Keywords: []string{"backend"}}, Options{})

	result := p.Evaluate(context.Background(), &record)
	total := len(result.CriteriaMet) + len(result.CriteriaFailed) + len(result.CriteriaUnknown)
	assert.Equal(t, 1, total)
}
