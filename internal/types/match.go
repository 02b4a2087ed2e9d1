package types

import "time"

// MatchResult is the per-record outcome of evaluating FilterCriteria.
type MatchResult struct {
	RecordID string `json:"recordId"`
	// Score is 100 × met / (met + failed); unknown predicates are excluded
	// from both numerator and denominator.
	Score          int      `json:"score"`
	CriteriaMet    []string `json:"criteriaMet"`
	CriteriaFailed []string `json:"criteriaFailed"`
	// CriteriaUnknown lists predicates that could not be evaluated due to
	// missing data or an unavailable classifier.
	CriteriaUnknown []string `json:"criteriaUnknown"`
	// HasUnknownCriteria distinguishes "insufficient data" from "does not
	// match" when Score is low.
	HasUnknownCriteria bool `json:"hasUnknownCriteria"`
}

// Evaluated reports how many predicates produced a definite outcome.
func (m *MatchResult) Evaluated() int {
	return len(m.CriteriaMet) + len(m.CriteriaFailed)
}

// FilteredRecord is a master-collection record annotated with its match.
type FilteredRecord struct {
	Record JobRecord   `json:"record"`
	Match  MatchResult `json:"filterMatch"`
}

// PredicateStats counts outcomes for one predicate across a filter run.
type PredicateStats struct {
	Passed      int `json:"passed"`
	Failed      int `json:"failed"`
	MissingData int `json:"missingData"`
}

// TopMatch is a compact entry for the report's best-scoring records.
type TopMatch struct {
	RecordID string `json:"recordId"`
	Title    string `json:"title,omitempty"`
	Company  string `json:"company,omitempty"`
	Score    int    `json:"score"`
}

// FilterReport aggregates one filter run.
type FilterReport struct {
	FilterID         string                    `json:"filterId"`
	CreatedAt        time.Time                 `json:"createdAt"`
	Criteria         FilterCriteria            `json:"criteria"`
	TotalScanned     int                       `json:"totalScanned"`
	TotalMatched     int                       `json:"totalMatched"`
	MatchRatePercent float64                   `json:"matchRatePercent"`
	SkippedRecords   int                       `json:"skippedRecords"`
	SkipReasons      map[string]int            `json:"skipReasons,omitempty"`
	Breakdown        map[string]PredicateStats `json:"filterBreakdown"`
	TopMatches       []TopMatch                `json:"topMatches,omitempty"`
	DurationSeconds  float64                   `json:"durationSeconds"`
	RecordsPerSecond float64                   `json:"recordsPerSecond"`
}
