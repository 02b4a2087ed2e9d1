package filter

import (
	"math"
	"strings"

	"github.com/jonathan/job-consolidator/internal/normalize"
	"github.com/jonathan/job-consolidator/internal/similarity"
	"github.com/jonathan/job-consolidator/internal/types"
)

// evaluateFuzzy runs the similarity-based predicates: keyword, city, salary
// interval overlap, and company substring containment.
func (p *Pipeline) evaluateFuzzy(record *types.JobRecord, acc *accumulator) {
	if len(p.criteria.Keywords) > 0 {
		acc.set(types.PredicateKeyword, p.evaluateKeywords(record, acc))
	}
	if len(p.criteria.Cities) > 0 {
		acc.set(types.PredicateCity, p.evaluateCities(record))
	}
	if p.criteria.SalaryMin != nil || p.criteria.SalaryMax != nil {
		acc.set(types.PredicateSalaryRange, p.evaluateSalary(record))
	}
	if p.criteria.CompanyContains != "" {
		acc.set(types.PredicateCompanyContains, p.evaluateCompany(record))
	}
}

// evaluateKeywords matches each keyword against the title by similarity and
// against title and description by substring. The best title similarity is
// kept so the semantic stage can pick up ambiguous misses.
func (p *Pipeline) evaluateKeywords(record *types.JobRecord, acc *accumulator) outcome {
	title, hasTitle := record.Normalized(types.FieldTitle)
	description, hasDescription := record.Normalized(types.FieldDescription)
	if !hasTitle && !hasDescription {
		return outcomeUnknown
	}

	for _, keyword := range p.criteria.Keywords {
		kw := normalize.CanonicalText(keyword)
		if kw == "" {
			continue
		}
		if hasTitle {
			if strings.Contains(title.Text, kw) {
				return outcomeMet
			}
			score := similarity.Text(title.Text, kw)
			if score >= p.opts.KeywordThreshold {
				return outcomeMet
			}
			acc.keywordBestScore = math.Max(acc.keywordBestScore, score)
		}
		if hasDescription && strings.Contains(description.Text, kw) {
			return outcomeMet
		}
	}
	return outcomeFailed
}

func (p *Pipeline) evaluateCities(record *types.JobRecord) outcome {
	v, ok := record.Normalized(types.FieldLocation)
	if !ok || v.Location == nil || v.Location.City == "" {
		return outcomeUnknown
	}
	city := v.Location.City
	for _, want := range p.criteria.Cities {
		target := normalize.CanonicalText(want)
		if target == "" {
			continue
		}
		if city == target || strings.Contains(city, target) || strings.Contains(target, city) {
			return outcomeMet
		}
	}
	return outcomeFailed
}

// evaluateSalary checks interval overlap between the record's annualized
// range and the query range. Mixed currencies without a conversion table are
// unknown, never a silent equality. A degenerate overlap at a single point
// still counts: an exact posting inside the query band is a match.
func (p *Pipeline) evaluateSalary(record *types.JobRecord) outcome {
	v, ok := record.Normalized(types.FieldSalary)
	if !ok || v.Salary == nil {
		return outcomeUnknown
	}
	recordRange := *v.Salary

	if recordRange.Currency != "" && p.criteria.SalaryCurrency != "" &&
		!strings.EqualFold(recordRange.Currency, p.criteria.SalaryCurrency) {
		return outcomeUnknown
	}

	if p.criteria.WidenOpenSalaryBounds && recordRange.Open {
		recordRange.Max = math.MaxFloat64
	}

	queryMin := 0.0
	queryMax := math.MaxFloat64
	if p.criteria.SalaryMin != nil {
		queryMin = *p.criteria.SalaryMin
	}
	if p.criteria.SalaryMax != nil {
		queryMax = *p.criteria.SalaryMax
	}

	lo := math.Max(queryMin, recordRange.Min)
	hi := math.Min(queryMax, recordRange.Max)
	if hi >= lo {
		return outcomeMet
	}
	return outcomeFailed
}

func (p *Pipeline) evaluateCompany(record *types.JobRecord) outcome {
	v, ok := record.Normalized(types.FieldCompany)
	if !ok || v.Text == "" {
		return outcomeUnknown
	}
	target := normalize.CanonicalCompany(p.criteria.CompanyContains)
	if target == "" {
		return outcomeUnknown
	}
	if strings.Contains(v.Text, target) {
		return outcomeMet
	}
	return outcomeFailed
}
