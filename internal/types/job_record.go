// Package types provides type definitions for structured data used throughout the job-consolidator system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"encoding/json"
	"time"
)

// Canonical field names used across extraction sessions. Collectors may emit
// additional fields; these are the ones the engine normalizes and compares.
const (
	FieldTitle           = "title"
	FieldCompany         = "company"
	FieldDescription     = "description"
	FieldLocation        = "location"
	FieldSalary          = "salary"
	FieldJobType         = "jobType"
	FieldExperienceLevel = "experienceLevel"
	FieldPostedDate      = "postedDate"
)

// FieldOrder is the deterministic iteration order for record fields in
// serialized output and reports.
var FieldOrder = []string{
	FieldTitle,
	FieldCompany,
	FieldDescription,
	FieldLocation,
	FieldSalary,
	FieldJobType,
	FieldExperienceLevel,
	FieldPostedDate,
}

// Kind identifies the semantic class of a normalized field value.
type Kind string

const (
	KindText        Kind = "text"
	KindSalary      Kind = "salary"
	KindLocation    Kind = "location"
	KindDate        Kind = "date"
	KindCategorical Kind = "categorical"
	// KindUnparsed marks a value whose raw form could not be parsed into its
	// expected class. It carries the raw string so downstream stages can treat
	// it as missing data rather than failing.
	KindUnparsed Kind = "unparsed"
)

// WorkMode is the remote/hybrid/on-site classification of a location.
type WorkMode string

const (
	WorkModeRemote  WorkMode = "remote"
	WorkModeHybrid  WorkMode = "hybrid"
	WorkModeOnSite  WorkMode = "on-site"
	WorkModeUnknown WorkMode = "unknown"
)

// SalaryRange is an annualized salary interval in a single currency.
// A posting that states a single amount has Min == Max.
type SalaryRange struct {
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
	Currency string  `json:"currency,omitempty"`
	// Open records that the raw value stated a single lower bound ("100k+").
	// The normalizer still emits the exact [v, v] reading; widening is a
	// filter-level policy keyed off this flag.
	Open bool `json:"open,omitempty"`
}

// Overlap returns the length of the intersection with other, or 0 when the
// intervals are disjoint. Currency is not considered here; callers compare
// currencies before calling.
func (s SalaryRange) Overlap(other SalaryRange) float64 {
	lo := s.Min
	if other.Min > lo {
		lo = other.Min
	}
	hi := s.Max
	if other.Max < hi {
		hi = other.Max
	}
	if hi < lo {
		return 0
	}
	return hi - lo
}

// Union returns the length of the smallest interval covering both ranges.
func (s SalaryRange) Union(other SalaryRange) float64 {
	lo := s.Min
	if other.Min < lo {
		lo = other.Min
	}
	hi := s.Max
	if other.Max > hi {
		hi = other.Max
	}
	return hi - lo
}

// Location is the structured form of a location field. City is empty (not a
// placeholder) for remote postings that name no city.
type Location struct {
	City     string   `json:"city,omitempty"`
	Region   string   `json:"region,omitempty"`
	Country  string   `json:"country,omitempty"`
	WorkMode WorkMode `json:"workMode"`
}

// NormalizedValue is the canonical form of a field value, produced by the
// normalizer. Exactly one of the class-specific members is populated,
// according to Kind. Text carries the comparison form for text classes; the
// display form stays in FieldValue.Raw untouched.
type NormalizedValue struct {
	Kind     Kind         `json:"kind"`
	Text     string       `json:"text,omitempty"`
	Salary   *SalaryRange `json:"salary,omitempty"`
	Location *Location    `json:"location,omitempty"`
	Date     *time.Time   `json:"date,omitempty"`
	Category string       `json:"category,omitempty"`
	// Raw is set only for KindUnparsed so the original value survives into
	// reports.
	Raw string `json:"raw,omitempty"`
}

// IsUsable reports whether the value parsed into a comparable form.
func (v NormalizedValue) IsUsable() bool {
	return v.Kind != KindUnparsed && v.Kind != ""
}

// FieldValue is one extracted attribute of a job record: the verbatim raw
// value, its canonical form, and the extraction confidence reported upstream.
type FieldValue struct {
	Raw        string          `json:"raw"`
	Normalized NormalizedValue `json:"normalized"`
	Confidence int             `json:"confidence"` // 0-100, produced upstream, never raised here
}

// JobRecord is the canonical structured representation of one job posting.
// ID and SourceURL are immutable once assigned; Fields may be replaced
// wholesale but are never partially mutated outside the normalizer.
type JobRecord struct {
	ID         string                `json:"id"`
	OriginalID string                `json:"originalId,omitempty"`
	SourceURL  string                `json:"sourceUrl"`
	SessionID  string                `json:"sessionId"`
	Fields     map[string]FieldValue `json:"fields"`
	// Raw points back at the full original record as delivered by the
	// collector, for downstream personalization tooling.
	Raw json.RawMessage `json:"raw,omitempty"`
}

// Field returns the named field value and whether it is present.
func (r *JobRecord) Field(name string) (FieldValue, bool) {
	fv, ok := r.Fields[name]
	return fv, ok
}

// Normalized returns the usable normalized value for a field, or false when
// the field is absent or unparsed.
func (r *JobRecord) Normalized(name string) (NormalizedValue, bool) {
	fv, ok := r.Fields[name]
	if !ok || !fv.Normalized.IsUsable() {
		return NormalizedValue{}, false
	}
	return fv.Normalized, true
}

// PopulatedFieldCount counts fields with a usable normalized value.
func (r *JobRecord) PopulatedFieldCount() int {
	n := 0
	for _, fv := range r.Fields {
		if fv.Normalized.IsUsable() {
			n++
		}
	}
	return n
}

// ConfidenceSum sums the upstream extraction confidence over all fields.
func (r *JobRecord) ConfidenceSum() int {
	sum := 0
	for _, fv := range r.Fields {
		sum += fv.Confidence
	}
	return sum
}

// Completeness is the share of canonical fields carrying a usable value,
// as a percentage.
func (r *JobRecord) Completeness() float64 {
	filled := 0
	for _, name := range FieldOrder {
		if fv, ok := r.Fields[name]; ok && fv.Normalized.IsUsable() {
			filled++
		}
	}
	return float64(filled) / float64(len(FieldOrder)) * 100
}
