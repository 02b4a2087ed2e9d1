package consolidate

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/jonathan/job-consolidator/internal/normalize"
	"github.com/jonathan/job-consolidator/internal/types"
)

// MalformedRecordError marks a job file that failed structural validation.
// Malformed records are skipped, logged, and counted; they never abort the
// batch.
type MalformedRecordError struct {
	File   string
	Reason string
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("malformed record %s: %s", e.File, e.Reason)
}

// Stats counts what a consolidation run loaded and what it had to skip. A
// result set is never silently short: every skipped record shows up here.
type Stats struct {
	SessionsProcessed int            `json:"sessionsProcessed"`
	FilesRead         int            `json:"filesRead"`
	RecordsLoaded     int            `json:"recordsLoaded"`
	Skipped           int            `json:"skipped"`
	SkipReasons       map[string]int `json:"skipReasons,omitempty"`
	Sessions          []SessionStats `json:"sessions"`
}

// SessionStats is the per-session slice of Stats.
type SessionStats struct {
	SessionID string `json:"sessionId"`
	Files     int    `json:"files"`
	Loaded    int    `json:"loaded"`
	Skipped   int    `json:"skipped"`
}

// Loader reads session directories into canonical records.
type Loader struct {
	asOf time.Time
	log  *zap.Logger
}

// NewLoader builds a Loader. Relative dates in records are anchored to asOf.
func NewLoader(asOf time.Time, log *zap.Logger) *Loader {
	if log == nil {
		log = zap.NewNop()
	}
	return &Loader{asOf: asOf, log: log}
}

// LoadSessions reads all job files from the given session directories,
// normalizes every field, and assigns sequential master ids. Records from
// distinct sources may share external ids; the assigned master id is the
// unique key downstream.
func (l *Loader) LoadSessions(sessionDirs []string) ([]types.JobRecord, Stats, error) {
	stats := Stats{SkipReasons: make(map[string]int)}
	var records []types.JobRecord

	for _, dir := range sessionDirs {
		meta := ExtractSessionMetadata(dir)
		sessionStats := SessionStats{SessionID: meta.ID}

		files, err := listJobFiles(dir)
		if err != nil {
			return nil, stats, fmt.Errorf("failed to read session %s: %w", meta.ID, err)
		}

		for _, file := range files {
			stats.FilesRead++
			sessionStats.Files++

			record, err := l.loadFile(file, meta, len(records)+1)
			if err != nil {
				stats.Skipped++
				sessionStats.Skipped++
				reason := "unreadable"
				var malformed *MalformedRecordError
				if errors.As(err, &malformed) {
					reason = malformed.Reason
				}
				stats.SkipReasons[reason]++
				l.log.Warn("skipping record",
					zap.String("file", file),
					zap.String("session", meta.ID),
					zap.Error(err))
				continue
			}
			records = append(records, record)
			sessionStats.Loaded++
		}

		stats.SessionsProcessed++
		stats.Sessions = append(stats.Sessions, sessionStats)
	}

	stats.RecordsLoaded = len(records)
	return records, stats, nil
}

// loadFile parses and validates one job file into a normalized JobRecord.
func (l *Loader) loadFile(path string, meta SessionMetadata, ordinal int) (types.JobRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return types.JobRecord{}, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return types.JobRecord{}, &MalformedRecordError{File: path, Reason: "invalid JSON"}
	}

	raw := extractRecord(doc)
	if raw.id == "" {
		// The filename is an acceptable last-resort identifier, as some
		// collectors keyed files by job id.
		raw.id = trimExt(filepath.Base(path))
	}
	if raw.id == "" {
		return types.JobRecord{}, &MalformedRecordError{File: path, Reason: "missing id"}
	}
	if raw.sourceURL == "" {
		return types.JobRecord{}, &MalformedRecordError{File: path, Reason: "missing sourceUrl"}
	}

	record := types.JobRecord{
		ID:         fmt.Sprintf("job_%04d", ordinal),
		OriginalID: raw.id,
		SourceURL:  raw.sourceURL,
		SessionID:  meta.ID,
		Fields:     raw.fields,
		Raw:        json.RawMessage(data),
	}
	normalize.Record(&record, l.asOf)
	return record, nil
}

// listJobFiles returns the JSON files of a session in stable name order,
// preferring a jobs/ subdirectory when present.
func listJobFiles(dir string) ([]string, error) {
	jobsDir := filepath.Join(dir, "jobs")
	if info, err := os.Stat(jobsDir); err == nil && info.IsDir() {
		dir = jobsDir
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		files = append(files, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(files)
	return files, nil
}

func trimExt(name string) string {
	return name[:len(name)-len(filepath.Ext(name))]
}
