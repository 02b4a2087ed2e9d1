package similarity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jonathan/job-consolidator/internal/normalize"
	"github.com/jonathan/job-consolidator/internal/types"
)

func TestText(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{"identical", "senior backend engineer", "senior backend engineer", 1.0},
		{"empty vs value", "", "senior backend engineer", 0.0},
		{"both empty", "", "", 0.0},
		{"disjoint", "frontend designer", "backend engineer", 0.0},
		{"reordered with punctuation", "senior backend engineer", "backend engineer (senior)", 0.75},
		{"substring containment", "backend engineer", "senior backend engineer", 0.8333333333},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Text(tt.a, tt.b), 1e-9)
		})
	}
}

func TestText_Properties(t *testing.T) {
	pairs := [][2]string{
		{"senior backend engineer", "backend engineer (senior)"},
		{"data analyst", "data scientist"},
		{"a b c", "c d e"},
	}
	for _, p := range pairs {
		ab := Text(p[0], p[1])
		ba := Text(p[1], p[0])
		assert.Equal(t, ab, ba, "symmetry for %q / %q", p[0], p[1])
		assert.GreaterOrEqual(t, ab, 0.0)
		assert.LessOrEqual(t, ab, 1.0)
		assert.InDelta(t, 1.0, Text(p[0], p[0]), 1e-9, "reflexivity for %q", p[0])
	}
}

func TestSalaryOverlap(t *testing.T) {
	tests := []struct {
		name string
		a, b types.SalaryRange
		want float64
	}{
		{
			name: "partial overlap",
			a:    types.SalaryRange{Min: 50000, Max: 70000},
			b:    types.SalaryRange{Min: 60000, Max: 80000},
			want: 10000.0 / 30000.0,
		},
		{
			name: "identical",
			a:    types.SalaryRange{Min: 50000, Max: 70000},
			b:    types.SalaryRange{Min: 50000, Max: 70000},
			want: 1.0,
		},
		{
			name: "disjoint",
			a:    types.SalaryRange{Min: 30000, Max: 40000},
			b:    types.SalaryRange{Min: 60000, Max: 80000},
			want: 0.0,
		},
		{
			name: "equal point ranges",
			a:    types.SalaryRange{Min: 60000, Max: 60000},
			b:    types.SalaryRange{Min: 60000, Max: 60000},
			want: 1.0,
		},
		{
			name: "distinct point ranges",
			a:    types.SalaryRange{Min: 60000, Max: 60000},
			b:    types.SalaryRange{Min: 65000, Max: 65000},
			want: 0.0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, SalaryOverlap(tt.a, tt.b), 1e-9)
		})
	}
}

func TestDate_Decay(t *testing.T) {
	base := time.Date(2025, 11, 1, 0, 0, 0, 0, time.UTC)
	mk := func(d time.Time) types.NormalizedValue {
		return types.NormalizedValue{Kind: types.KindDate, Date: &d}
	}

	assert.InDelta(t, 1.0, Date(mk(base), mk(base), 180), 1e-9)
	assert.InDelta(t, 0.5, Date(mk(base), mk(base.AddDate(0, 0, 90)), 180), 1e-9)
	assert.InDelta(t, 0.0, Date(mk(base), mk(base.AddDate(0, 0, 180)), 180), 1e-9)
	// Symmetric in either direction.
	assert.InDelta(t,
		Date(mk(base), mk(base.AddDate(0, 0, 30)), 180),
		Date(mk(base.AddDate(0, 0, 30)), mk(base), 180), 1e-9)
}

func TestCategorical(t *testing.T) {
	assert.Equal(t, 1.0, Categorical("senior", "senior"))
	assert.Equal(t, 0.0, Categorical("senior", "lead"))
	assert.Equal(t, 0.0, Categorical("", ""))
}

func newRecord(id string, fields map[string]string) types.JobRecord {
	asOf := time.Date(2025, 11, 20, 0, 0, 0, 0, time.UTC)
	record := types.JobRecord{
		ID:        id,
		SourceURL: "https://example.test/" + id,
		SessionID: "session_scrape_20251120_000000",
		Fields:    make(map[string]types.FieldValue, len(fields)),
	}
	for name, raw := range fields {
		record.Fields[name] = types.FieldValue{Raw: raw, Confidence: 80}
	}
	normalize.Record(&record, asOf)
	return record
}

func TestComposite_RenormalizesMissingDimensions(t *testing.T) {
	a := newRecord("job_0001", map[string]string{
		types.FieldTitle:   "Senior Backend Engineer",
		types.FieldCompany: "TechCorp GmbH",
	})
	b := newRecord("job_0002", map[string]string{
		types.FieldTitle:   "Backend Engineer (Senior)",
		types.FieldCompany: "TechCorp",
	})

	// Title 0.75, company 1.0, city missing on both sides: the city weight
	// drops out and the remainder renormalizes.
	score, breakdown := Composite(&a, &b, DefaultWeights())
	assert.InDelta(t, (0.5*0.75+0.3*1.0)/0.8, score, 1e-9)
	assert.InDelta(t, 0.75, breakdown[types.FieldTitle], 1e-9)
	assert.InDelta(t, 1.0, breakdown[types.FieldCompany], 1e-9)
	assert.NotContains(t, breakdown, "city")
}

func TestComposite_AllDimensions(t *testing.T) {
	a := newRecord("job_0001", map[string]string{
		types.FieldTitle:    "Data Analyst",
		types.FieldCompany:  "Acme Inc",
		types.FieldLocation: "Berlin, Germany",
	})
	b := newRecord("job_0002", map[string]string{
		types.FieldTitle:    "Data Analyst",
		types.FieldCompany:  "ACME",
		types.FieldLocation: "Berlin, Germany",
	})

	score, breakdown := Composite(&a, &b, DefaultWeights())
	assert.InDelta(t, 1.0, score, 1e-9)
	assert.Len(t, breakdown, 3)
}

func TestComposite_NothingComparable(t *testing.T) {
	a := newRecord("job_0001", map[string]string{types.FieldSalary: "€50,000"})
	b := newRecord("job_0002", map[string]string{types.FieldSalary: "€50,000"})

	score, breakdown := Composite(&a, &b, DefaultWeights())
	assert.Equal(t, 0.0, score)
	assert.Empty(t, breakdown)
}
