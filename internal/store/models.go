package store

import (
	"time"

	"github.com/google/uuid"
)

// Run represents an engine run record
type Run struct {
	ID          uuid.UUID  `json:"id"`
	Kind        string     `json:"kind"`
	InputCount  int        `json:"input_count"`
	Status      string     `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// Run kinds
const (
	RunKindConsolidate = "consolidate"
	RunKindFilter      = "filter"
)

// ArtifactStep constants for known artifact types
const (
	StepMasterCollection   = "master_collection"
	StepDuplicateLog       = "duplicate_log"
	StepDedupReport        = "dedup_report"
	StepFilteredCollection = "filtered_collection"
	StepFilterReport       = "filter_report"
)
