// Package normalize canonicalizes raw extracted field values into comparable
// forms. Normalization is total and deterministic: unparsable input yields a
// typed unparsed variant carrying the raw string, never an error, and
// re-running on the same raw value is stable.
package normalize

import (
	"time"

	"github.com/jonathan/job-consolidator/internal/types"
)

// Class is the normalization class of a field.
type Class string

const (
	ClassText        Class = "text"
	ClassSalary      Class = "salary"
	ClassLocation    Class = "location"
	ClassDate        Class = "date"
	ClassCategorical Class = "categorical"
)

// fieldClasses maps canonical field names to their normalization class.
// Unknown fields fall back to text.
var fieldClasses = map[string]Class{
	types.FieldTitle:           ClassText,
	types.FieldCompany:         ClassText,
	types.FieldDescription:     ClassText,
	types.FieldLocation:        ClassLocation,
	types.FieldSalary:          ClassSalary,
	types.FieldJobType:         ClassCategorical,
	types.FieldExperienceLevel: ClassCategorical,
	types.FieldPostedDate:      ClassDate,
}

// ClassOf returns the normalization class for a field name.
func ClassOf(field string) Class {
	if class, ok := fieldClasses[field]; ok {
		return class
	}
	return ClassText
}

// Field normalizes one raw field value. Relative dates are anchored to asOf,
// never to the wall clock, so normalization stays deterministic.
func Field(field, raw string, asOf time.Time) types.NormalizedValue {
	switch ClassOf(field) {
	case ClassSalary:
		return Salary(raw)
	case ClassLocation:
		return LocationValue(raw)
	case ClassDate:
		return Date(raw, asOf)
	case ClassCategorical:
		return Categorical(field, raw)
	default:
		return Text(field, raw)
	}
}

// Record normalizes all fields of a record in place of the previous
// normalized values. Fields are replaced wholesale; raw values and
// confidences are untouched.
func Record(record *types.JobRecord, asOf time.Time) {
	for name, fv := range record.Fields {
		fv.Normalized = Field(name, fv.Raw, asOf)
		record.Fields[name] = fv
	}
}

func unparsed(raw string) types.NormalizedValue {
	return types.NormalizedValue{Kind: types.KindUnparsed, Raw: raw}
}
