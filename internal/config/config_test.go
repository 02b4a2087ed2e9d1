package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 0.80, cfg.FuzzyThreshold)
	assert.Equal(t, 0.10, cfg.NearMissBand)
	assert.Equal(t, 180, cfg.DateDecayDays)
	assert.Equal(t, 0.80, cfg.KeywordThreshold)
	assert.Equal(t, 5, cfg.ClassifierTimeoutSeconds)
	assert.Equal(t, 70, cfg.ClassifierConfidenceFloor)
	assert.Equal(t, 0.5, cfg.Weights.Title)
	assert.Equal(t, 0.3, cfg.Weights.Company)
	assert.Equal(t, 0.2, cfg.Weights.City)
	assert.Empty(t, cfg.DatabaseURL)

	require.NoError(t, cfg.Validate())
}

func TestLoad_JSONOverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"fuzzyThreshold": 0.9,
		"workers": 4,
		"databaseUrl": "postgres://localhost/engine"
	}`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 0.9, cfg.FuzzyThreshold)
	assert.Equal(t, 4, cfg.Workers)
	assert.Equal(t, "postgres://localhost/engine", cfg.DatabaseURL)
	// Untouched fields keep their defaults.
	assert.Equal(t, 0.10, cfg.NearMissBand)
	assert.Equal(t, 0.5, cfg.Weights.Title)
}

func TestLoad_YAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"keywordThreshold: 0.75\nweights:\n  title: 0.6\n  company: 0.2\n  city: 0.2\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 0.75, cfg.KeywordThreshold)
	assert.Equal(t, 0.6, cfg.Weights.Title)
	assert.Equal(t, 0.2, cfg.Weights.Company)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	assert.Error(t, err)
}

func TestLoad_MalformedJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"fuzzyThreshold": `), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "defaults valid", mutate: func(*Config) {}},
		{
			name:    "threshold above one",
			mutate:  func(c *Config) { c.FuzzyThreshold = 1.2 },
			wantErr: true,
		},
		{
			name:    "near miss band exceeds threshold",
			mutate:  func(c *Config) { c.FuzzyThreshold = 0.5; c.NearMissBand = 0.6 },
			wantErr: true,
		},
		{
			name: "zero weight sum",
			mutate: func(c *Config) {
				c.Weights.Title = 0
				c.Weights.Company = 0
				c.Weights.City = 0
			},
			wantErr: true,
		},
		{
			name:    "negative workers",
			mutate:  func(c *Config) { c.Workers = -1 },
			wantErr: true,
		},
		{
			name:    "confidence floor above hundred",
			mutate:  func(c *Config) { c.ClassifierConfidenceFloor = 150 },
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
