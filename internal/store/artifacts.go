// Package store persists the engine's boundary artifacts: the master
// collection, duplicate log, filtered collection, and reports. Formats are
// stable so downstream personalization tooling can consume them unchanged.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jonathan/job-consolidator/internal/consolidate"
	"github.com/jonathan/job-consolidator/internal/types"
)

// MasterCollection is the deduplicated record set with provenance.
type MasterCollection struct {
	RunID     string            `json:"runId"`
	CreatedAt time.Time         `json:"createdAt"`
	Stats     consolidate.Stats `json:"consolidation"`
	Records   []MasterRecord    `json:"records"`
}

// MasterRecord annotates a canonical record with its completeness for
// downstream triage. The record itself carries session provenance and the
// raw pointer back to the original payload.
type MasterRecord struct {
	types.JobRecord
	Completeness float64 `json:"completeness"`
}

// DuplicateLog is the cluster list of one deduplicator run.
type DuplicateLog struct {
	RunID     string                   `json:"runId"`
	CreatedAt time.Time                `json:"createdAt"`
	Clusters  []types.DuplicateCluster `json:"clusters"`
	Report    types.DedupReport        `json:"report"`
}

// FilteredCollection is the subset of the master collection matching one
// filter invocation, each record annotated with its MatchResult.
type FilteredCollection struct {
	FilterID  string                 `json:"filterId"`
	CreatedAt time.Time              `json:"createdAt"`
	Records   []types.FilteredRecord `json:"records"`
}

// WriteJSON writes an artifact as indented JSON, creating parent
// directories as needed.
func WriteJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", path, err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// LoadMasterCollection reads a previously written master collection.
func LoadMasterCollection(path string) (*MasterCollection, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read master collection %s: %w", path, err)
	}
	var collection MasterCollection
	if err := json.Unmarshal(data, &collection); err != nil {
		return nil, fmt.Errorf("corrupt master collection %s: %w", path, err)
	}
	return &collection, nil
}

// LoadCriteria reads and validates filter criteria from a JSON or YAML file.
func LoadCriteria(path string) (*types.FilterCriteria, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read criteria file %s: %w", path, err)
	}
	return types.ParseCriteria(data)
}
