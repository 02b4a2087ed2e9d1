package types

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Predicate names recognized by the filter pipeline. Absent predicates are
// skipped entirely, never treated as reject.
const (
	PredicateKeyword          = "keyword"
	PredicateLocationType     = "locationType"
	PredicateSalaryRange      = "salaryRange"
	PredicateExperienceLevel  = "experienceLevel"
	PredicateJobType          = "jobType"
	PredicateCity             = "city"
	PredicateCompanyContains  = "companyContains"
	PredicatePostedWithinDays = "postedWithinDays"
	PredicateRequiredSkills   = "requiredSkills"
)

// criteriaKeys maps serialized criteria keys to predicate names, used to
// reject unknown keys with the offending name.
var criteriaKeys = map[string]string{
	"keywords":              PredicateKeyword,
	"locationTypes":         PredicateLocationType,
	"salaryMin":             PredicateSalaryRange,
	"salaryMax":             PredicateSalaryRange,
	"salaryCurrency":        PredicateSalaryRange,
	"widenOpenSalaryBounds": PredicateSalaryRange,
	"experienceLevels":      PredicateExperienceLevel,
	"jobTypes":              PredicateJobType,
	"cities":                PredicateCity,
	"companyContains":       PredicateCompanyContains,
	"postedWithinDays":      PredicatePostedWithinDays,
	"requiredSkills":        PredicateRequiredSkills,
}

// FilterCriteria is a user-supplied query: a set of independently evaluable
// predicates. Salary bounds are annualized amounts in one currency.
type FilterCriteria struct {
	Keywords         []string `json:"keywords,omitempty" yaml:"keywords"`
	LocationTypes    []string `json:"locationTypes,omitempty" yaml:"locationTypes"`
	SalaryMin        *float64 `json:"salaryMin,omitempty" yaml:"salaryMin" validate:"omitempty,gte=0"`
	SalaryMax        *float64 `json:"salaryMax,omitempty" yaml:"salaryMax" validate:"omitempty,gte=0"`
	SalaryCurrency   string   `json:"salaryCurrency,omitempty" yaml:"salaryCurrency" validate:"omitempty,len=3,alpha"`
	ExperienceLevels []string `json:"experienceLevels,omitempty" yaml:"experienceLevels"`
	JobTypes         []string `json:"jobTypes,omitempty" yaml:"jobTypes"`
	Cities           []string `json:"cities,omitempty" yaml:"cities"`
	CompanyContains  string   `json:"companyContains,omitempty" yaml:"companyContains"`
	PostedWithinDays int      `json:"postedWithinDays,omitempty" yaml:"postedWithinDays" validate:"gte=0"`
	RequiredSkills   []string `json:"requiredSkills,omitempty" yaml:"requiredSkills"`
	// WidenOpenSalaryBounds treats a record's single-sided salary bound as an
	// open interval instead of the exact [v, v] reading. Off by default.
	WidenOpenSalaryBounds bool `json:"widenOpenSalaryBounds,omitempty" yaml:"widenOpenSalaryBounds"`
}

// ConfigurationError reports invalid filter criteria. It is fatal for the
// filter invocation that carried it, never for other runs.
type ConfigurationError struct {
	Key     string
	Message string
}

func (e *ConfigurationError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("invalid filter criteria: %s: %s", e.Key, e.Message)
	}
	return fmt.Sprintf("invalid filter criteria: %s", e.Message)
}

var criteriaValidator = newCriteriaValidator()

// newCriteriaValidator builds a validator that reports fields by their
// serialized key, so errors name the key the way the user wrote it.
func newCriteriaValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks the criteria for structural and cross-field consistency.
func (c *FilterCriteria) Validate() error {
	if err := criteriaValidator.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return &ConfigurationError{Key: verrs[0].Field(), Message: verrs[0].Tag()}
		}
		return &ConfigurationError{Message: err.Error()}
	}
	if c.SalaryMin != nil && c.SalaryMax != nil && *c.SalaryMin > *c.SalaryMax {
		return &ConfigurationError{Key: "salaryMin", Message: "salaryMin exceeds salaryMax"}
	}
	if (c.SalaryMin != nil || c.SalaryMax != nil) && c.SalaryCurrency == "" {
		return &ConfigurationError{Key: "salaryCurrency", Message: "salary bounds require a currency"}
	}
	return nil
}

// Specified lists the predicate names the criteria actually set, in a stable
// order. Predicates not listed are vacuously satisfied.
func (c *FilterCriteria) Specified() []string {
	var names []string
	if len(c.Keywords) > 0 {
		names = append(names, PredicateKeyword)
	}
	if len(c.LocationTypes) > 0 {
		names = append(names, PredicateLocationType)
	}
	if c.SalaryMin != nil || c.SalaryMax != nil {
		names = append(names, PredicateSalaryRange)
	}
	if len(c.ExperienceLevels) > 0 {
		names = append(names, PredicateExperienceLevel)
	}
	if len(c.JobTypes) > 0 {
		names = append(names, PredicateJobType)
	}
	if len(c.Cities) > 0 {
		names = append(names, PredicateCity)
	}
	if c.CompanyContains != "" {
		names = append(names, PredicateCompanyContains)
	}
	if c.PostedWithinDays > 0 {
		names = append(names, PredicatePostedWithinDays)
	}
	if len(c.RequiredSkills) > 0 {
		names = append(names, PredicateRequiredSkills)
	}
	return names
}

// ParseCriteria decodes criteria from JSON or YAML, rejecting unknown keys
// with a ConfigurationError naming the offender, then validates.
func ParseCriteria(data []byte) (*FilterCriteria, error) {
	keys, err := topLevelKeys(data)
	if err != nil {
		return nil, &ConfigurationError{Message: fmt.Sprintf("unreadable criteria: %v", err)}
	}
	for _, key := range keys {
		if _, known := criteriaKeys[key]; !known {
			return nil, &ConfigurationError{Key: key, Message: "unknown predicate"}
		}
	}

	var criteria FilterCriteria
	if json.Valid(data) {
		if err := json.Unmarshal(data, &criteria); err != nil {
			return nil, &ConfigurationError{Message: fmt.Sprintf("unreadable criteria: %v", err)}
		}
	} else if err := yaml.Unmarshal(data, &criteria); err != nil {
		return nil, &ConfigurationError{Message: fmt.Sprintf("unreadable criteria: %v", err)}
	}

	if err := criteria.Validate(); err != nil {
		return nil, err
	}
	return &criteria, nil
}

// topLevelKeys extracts the top-level mapping keys from a JSON or YAML
// document without binding them to a struct.
func topLevelKeys(data []byte) ([]string, error) {
	raw := map[string]any{}
	if json.Valid(data) {
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, err
		}
	} else if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	return keys, nil
}
