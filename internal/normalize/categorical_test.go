package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jonathan/job-consolidator/internal/types"
)

func TestCategorical_JobType(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"Full-time", JobTypeFullTime},
		{"FULLTIME", JobTypeFullTime},
		{"Permanent", JobTypeFullTime},
		{"Vollzeit", JobTypeFullTime},
		{"Part time", JobTypePartTime},
		{"Teilzeit", JobTypePartTime},
		{"Contractor", JobTypeContract},
		{"Praktikum", JobTypeInternship},
		{"Freelance", JobTypeFreelance},
		{"Full-time position", JobTypeFullTime},
	}
	for _, tt := range tests {
		v := Categorical(types.FieldJobType, tt.raw)
		assert.Equal(t, types.KindCategorical, v.Kind, "raw=%q", tt.raw)
		assert.Equal(t, tt.want, v.Category, "raw=%q", tt.raw)
	}
}

func TestCategorical_ExperienceLevel(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"Senior", LevelSenior},
		{"Sr.", LevelSenior},
		{"Senior level", LevelSenior},
		{"Entry Level", LevelEntry},
		{"Graduate", LevelEntry},
		{"Mid-Level", LevelMid},
		{"Intermediate", LevelMid},
		{"Principal", LevelLead},
		{"Head of Engineering", LevelExecutive},
	}
	for _, tt := range tests {
		v := Categorical(types.FieldExperienceLevel, tt.raw)
		assert.Equal(t, types.KindCategorical, v.Kind, "raw=%q", tt.raw)
		assert.Equal(t, tt.want, v.Category, "raw=%q", tt.raw)
	}
}

func TestCategorical_NoMatchIsUnparsed(t *testing.T) {
	// No partial credit and no guessing: unrecognized values stay unparsed.
	for _, raw := range []string{"Shift work", "Wizard", ""} {
		v := Categorical(types.FieldJobType, raw)
		assert.Equal(t, types.KindUnparsed, v.Kind, "raw=%q", raw)
	}
}

func TestField_Dispatch(t *testing.T) {
	v := Field(types.FieldSalary, "€50,000", dateAsOf)
	assert.Equal(t, types.KindSalary, v.Kind)

	v = Field(types.FieldPostedDate, "today", dateAsOf)
	assert.Equal(t, types.KindDate, v.Kind)

	// Unknown fields normalize as text.
	v = Field("customField", "  Some   Value ", dateAsOf)
	assert.Equal(t, types.KindText, v.Kind)
	assert.Equal(t, "some value", v.Text)
}
