// Package pipeline provides the high-level orchestration for consolidation
// and filtering runs.
package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jonathan/job-consolidator/internal/config"
	"github.com/jonathan/job-consolidator/internal/consolidate"
	"github.com/jonathan/job-consolidator/internal/dedup"
	"github.com/jonathan/job-consolidator/internal/schemas"
	"github.com/jonathan/job-consolidator/internal/store"
)

// Artifact file names within the output directory.
const (
	MasterCollectionFile   = "master_collection.json"
	DuplicateLogFile       = "duplicate_log.json"
	DedupReportFile        = "dedup_report.json"
	FilteredCollectionFile = "filtered_jobs.json"
	FilterReportFile       = "filter_report.json"
)

// ConsolidateOptions holds configuration for a consolidation run.
type ConsolidateOptions struct {
	SessionDirs []string
	OutputDir   string
	// AsOf anchors relative posting dates during normalization. Zero means
	// the wall clock at run start.
	AsOf   time.Time
	Config *config.Config
	Logger *zap.Logger
}

// ConsolidateResult holds the outputs of a consolidation run.
type ConsolidateResult struct {
	RunID      string
	Collection *store.MasterCollection
	Log        *store.DuplicateLog
	Stats      consolidate.Stats
	// MasterPath is where the master collection was written.
	MasterPath string
}

// RunConsolidate loads the session directories, deduplicates the records,
// and writes the master collection, duplicate log, and dedup report. The
// cluster pass runs as a unit; artifacts are only written once clustering
// has completed.
func RunConsolidate(ctx context.Context, opts ConsolidateOptions) (*ConsolidateResult, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	asOf := opts.AsOf
	if asOf.IsZero() {
		asOf = time.Now().UTC()
	}

	// Connect to the optional database before doing any work so a bad URL
	// surfaces immediately rather than after a long run.
	database := connectOptional(ctx, cfg.DatabaseURL, logger)
	if database != nil {
		defer database.Close()
	}

	loader := consolidate.NewLoader(asOf, logger)
	records, stats, err := loader.LoadSessions(opts.SessionDirs)
	if err != nil {
		return nil, fmt.Errorf("session loading failed: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()
	dedupResult := dedup.Run(records, dedup.Options{
		Weights:       cfg.Weights,
		Threshold:     cfg.FuzzyThreshold,
		NearMissBand:  cfg.NearMissBand,
		DateDecayDays: cfg.DateDecayDays,
	})
	logger.Info("deduplication complete",
		zap.Int("input", dedupResult.Report.InputRecords),
		zap.Int("clusters", dedupResult.Report.Clusters),
		zap.Duration("elapsed", time.Since(start)),
	)

	runID := uuid.New().String()
	now := time.Now().UTC()

	masterRecords := make([]store.MasterRecord, 0, len(dedupResult.Records))
	for _, rec := range dedupResult.Records {
		masterRecords = append(masterRecords, store.MasterRecord{
			JobRecord:    rec,
			Completeness: rec.Completeness(),
		})
	}
	collection := &store.MasterCollection{
		RunID:     runID,
		CreatedAt: now,
		Stats:     stats,
		Records:   masterRecords,
	}
	duplicateLog := &store.DuplicateLog{
		RunID:     runID,
		CreatedAt: now,
		Clusters:  dedupResult.Clusters,
		Report:    dedupResult.Report,
	}

	validateRecords(masterRecords, logger)

	masterPath := filepath.Join(opts.OutputDir, MasterCollectionFile)
	if err := store.WriteJSON(masterPath, collection); err != nil {
		return nil, err
	}
	if err := store.WriteJSON(filepath.Join(opts.OutputDir, DuplicateLogFile), duplicateLog); err != nil {
		return nil, err
	}
	if err := store.WriteJSON(filepath.Join(opts.OutputDir, DedupReportFile), dedupResult.Report); err != nil {
		return nil, err
	}

	if database != nil {
		persistConsolidation(ctx, database, collection, duplicateLog, logger)
	}

	return &ConsolidateResult{
		RunID:      runID,
		Collection: collection,
		Log:        duplicateLog,
		Stats:      stats,
		MasterPath: masterPath,
	}, nil
}

// validateRecords checks every canonical record against the job record
// schema before it is published. A violation here means a normalization bug,
// not bad input, so it is logged rather than fatal.
func validateRecords(records []store.MasterRecord, logger *zap.Logger) {
	schemaPath := schemas.ResolveSchemaPath(schemas.JobRecordSchema)
	for _, rec := range records {
		data, err := json.Marshal(rec.JobRecord)
		if err != nil {
			logger.Warn("failed to marshal record for validation", zap.String("record", rec.ID), zap.Error(err))
			continue
		}
		if err := schemas.ValidateBytes(schemaPath, data); err != nil {
			var loadErr *schemas.SchemaLoadError
			if errors.As(err, &loadErr) {
				logger.Warn("job record schema unavailable, skipping validation", zap.Error(err))
				return
			}
			logger.Warn("canonical record failed schema validation", zap.String("record", rec.ID), zap.Error(err))
		}
	}
}

// connectOptional opens the database when a URL is configured. Connection
// failure degrades to file-only operation with a warning.
func connectOptional(ctx context.Context, databaseURL string, logger *zap.Logger) *store.DB {
	if databaseURL == "" {
		return nil
	}
	database, err := store.Connect(ctx, databaseURL)
	if err != nil {
		logger.Warn("database unavailable, continuing without persistence", zap.Error(err))
		return nil
	}
	return database
}

// persistConsolidation mirrors the run into the database. Persistence is
// best effort; the files on disk are the source of truth.
func persistConsolidation(ctx context.Context, database *store.DB, collection *store.MasterCollection, log *store.DuplicateLog, logger *zap.Logger) {
	runID, err := database.CreateRun(ctx, store.RunKindConsolidate, collection.Stats.RecordsLoaded)
	if err != nil {
		logger.Warn("failed to create database run", zap.Error(err))
		return
	}
	if err := database.SaveMasterRecords(ctx, runID, collection.Records); err != nil {
		logger.Warn("failed to save master records", zap.Error(err))
	}
	if err := database.SaveArtifact(ctx, runID, store.StepMasterCollection, collection); err != nil {
		logger.Warn("failed to save master collection artifact", zap.Error(err))
	}
	if err := database.SaveArtifact(ctx, runID, store.StepDuplicateLog, log); err != nil {
		logger.Warn("failed to save duplicate log artifact", zap.Error(err))
	}
	if err := database.SaveArtifact(ctx, runID, store.StepDedupReport, log.Report); err != nil {
		logger.Warn("failed to save dedup report artifact", zap.Error(err))
	}
	if err := database.CompleteRun(ctx, runID, "completed"); err != nil {
		logger.Warn("failed to complete database run", zap.Error(err))
	}
}
