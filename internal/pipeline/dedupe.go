package pipeline

import (
	"context"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jonathan/job-consolidator/internal/config"
	"github.com/jonathan/job-consolidator/internal/dedup"
	"github.com/jonathan/job-consolidator/internal/store"
	"github.com/jonathan/job-consolidator/internal/types"
)

// DedupeOptions holds configuration for a standalone deduplication run over
// an existing master collection.
type DedupeOptions struct {
	Master    *store.MasterCollection
	OutputDir string
	Config    *config.Config
	Logger    *zap.Logger
}

// DedupeResult holds the outputs of a standalone deduplication run.
type DedupeResult struct {
	RunID      string
	Collection *store.MasterCollection
	Log        *store.DuplicateLog
	MasterPath string
}

// RunDedupe reruns deduplication over a previously written master
// collection, typically after tuning thresholds or weights. Session loading
// and normalization are not repeated; the input records are taken as is and
// the consolidation stats carry over from the source collection.
func RunDedupe(ctx context.Context, opts DedupeOptions) (*DedupeResult, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	records := make([]types.JobRecord, 0, len(opts.Master.Records))
	for _, rec := range opts.Master.Records {
		records = append(records, rec.JobRecord)
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
		Stats:     opts.Master.Stats,
		Records:   masterRecords,
	}
	duplicateLog := &store.DuplicateLog{
		RunID:     runID,
		CreatedAt: now,
		Clusters:  dedupResult.Clusters,
		Report:    dedupResult.Report,
	}

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

	if cfg.DatabaseURL != "" {
		if database := connectOptional(ctx, cfg.DatabaseURL, logger); database != nil {
			defer database.Close()
			persistConsolidation(ctx, database, collection, duplicateLog, logger)
		}
	}

	return &DedupeResult{
		RunID:      runID,
		Collection: collection,
		Log:        duplicateLog,
		MasterPath: masterPath,
	}, nil
}
