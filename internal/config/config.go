// Package config provides engine configuration loading and validation for
// the CLI. All fields are optional; missing values fall back to defaults.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/jonathan/job-consolidator/internal/classify"
	"github.com/jonathan/job-consolidator/internal/dedup"
	"github.com/jonathan/job-consolidator/internal/filter"
	"github.com/jonathan/job-consolidator/internal/similarity"
)

// Config holds the tunable thresholds and weights of the engine. They are
// configuration data, not policy baked into branches, so runs are
// reproducible and tunable per domain.
type Config struct {
	// Similarity weights for the composite dedup score.
	Weights similarity.Weights `json:"weights" yaml:"weights"`
	// FuzzyThreshold is the composite similarity at which records merge.
	FuzzyThreshold float64 `json:"fuzzyThreshold" yaml:"fuzzyThreshold" validate:"gte=0,lte=1"`
	// NearMissBand is the audit band width below the threshold.
	NearMissBand float64 `json:"nearMissBand" yaml:"nearMissBand" validate:"gte=0,lte=1"`
	// DateDecayDays is the window for date similarity decay.
	DateDecayDays int `json:"dateDecayDays" yaml:"dateDecayDays" validate:"gte=0"`
	// KeywordThreshold is the title similarity for keyword matches.
	KeywordThreshold float64 `json:"keywordThreshold" yaml:"keywordThreshold" validate:"gte=0,lte=1"`
	// Workers bounds the filter fan-out; 0 means one worker per CPU.
	Workers int `json:"workers" yaml:"workers" validate:"gte=0"`
	// ClassifierTimeoutSeconds bounds one delegated classification call.
	ClassifierTimeoutSeconds int `json:"classifierTimeoutSeconds" yaml:"classifierTimeoutSeconds" validate:"gte=0"`
	// ClassifierConfidenceFloor is the confidence needed for a definite
	// classifier verdict.
	ClassifierConfidenceFloor int `json:"classifierConfidenceFloor" yaml:"classifierConfidenceFloor" validate:"gte=0,lte=100"`
	// DatabaseURL enables the optional PostgreSQL store when set.
	DatabaseURL string `json:"databaseUrl,omitempty" yaml:"databaseUrl"`
}

// Default returns the standard engine configuration.
func Default() *Config {
	return &Config{
		Weights:                   similarity.DefaultWeights(),
		FuzzyThreshold:            dedup.DefaultThreshold,
		NearMissBand:              dedup.DefaultNearMissBand,
		DateDecayDays:             similarity.DefaultDateDecayDays,
		KeywordThreshold:          filter.DefaultKeywordThreshold,
		ClassifierTimeoutSeconds:  int(classify.DefaultTimeout.Seconds()),
		ClassifierConfidenceFloor: filter.DefaultConfidenceFloor,
	}
}

// Load reads configuration from a JSON or YAML file and overlays it on the
// defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	cfg := Default()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config YAML: %w", err)
		}
	default:
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config JSON: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

var configValidator = validator.New()

// Validate checks ranges and cross-field consistency.
func (c *Config) Validate() error {
	if err := configValidator.Struct(c); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	if c.NearMissBand > c.FuzzyThreshold {
		return fmt.Errorf("config error: nearMissBand exceeds fuzzyThreshold")
	}
	weightSum := c.Weights.Title + c.Weights.Company + c.Weights.City
	if weightSum <= 0 {
		return fmt.Errorf("config error: similarity weights must sum to a positive value")
	}
	return nil
}
