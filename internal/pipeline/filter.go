package pipeline

import (
	"context"
	"math"
	"path/filepath"
	"runtime"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/job-consolidator/internal/classify"
	"github.com/jonathan/job-consolidator/internal/config"
	"github.com/jonathan/job-consolidator/internal/filter"
	"github.com/jonathan/job-consolidator/internal/store"
	"github.com/jonathan/job-consolidator/internal/types"
)

// skip reason keys in the filter report.
const skipReasonCancelled = "cancelled"

// FilterOptions holds configuration for a batch filter run.
type FilterOptions struct {
	Master   *store.MasterCollection
	Criteria *types.FilterCriteria
	// OutputDir receives the filtered collection and report. Empty skips
	// writing, which the tests use to exercise the runner in memory.
	OutputDir string
	// AsOf anchors the postedWithinDays window. Zero means the wall clock at
	// run start.
	AsOf   time.Time
	Config *config.Config
	// Classifier may be nil; semantic predicates then resolve to unknown.
	Classifier classify.Classifier
	Logger     *zap.Logger
}

// FilterResult holds the outputs of a batch filter run.
type FilterResult struct {
	Matched []types.FilteredRecord
	Report  *types.FilterReport
}

// RunFilter evaluates every master record against the criteria, fanning out
// across a bounded worker pool. Workers share nothing; each writes only its
// own slot of the results slice. A record is matched when no predicate
// failed, so records that are merely missing data stay visible to the caller
// with hasUnknownCriteria set.
//
// Cancellation mid-run flushes the records evaluated so far and reports the
// remainder as skipped rather than returning an error.
func RunFilter(ctx context.Context, opts FilterOptions) (*FilterResult, error) {
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

	var warnOnce sync.Once
	pipe, err := filter.New(opts.Criteria, filter.Options{
		AsOf:             asOf,
		KeywordThreshold: cfg.KeywordThreshold,
		ConfidenceFloor:  cfg.ClassifierConfidenceFloor,
		Classifier:       opts.Classifier,
		OnClassifierError: func(err error) {
			warnOnce.Do(func() {
				logger.Warn("semantic classifier unavailable, affected criteria resolve to unknown", zap.Error(err))
			})
		},
	})
	if err != nil {
		return nil, err
	}

	records := opts.Master.Records
	results := make([]*types.MatchResult, len(records))
	var skipped atomic.Int64

	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	start := time.Now()
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range records {
		g.Go(func() error {
			if gCtx.Err() != nil {
				skipped.Add(1)
				return nil
			}
			res := pipe.Evaluate(gCtx, &records[i].JobRecord)
			results[i] = &res
			return nil
		})
	}
	// Workers never return errors; per-record problems resolve to unknown
	// predicates and cancellation is accounted for via skipped.
	_ = g.Wait()
	duration := time.Since(start)

	report := assembleReport(opts.Criteria, records, results, int(skipped.Load()), duration)

	var matched []types.FilteredRecord
	for i, res := range results {
		if res == nil || len(res.CriteriaFailed) > 0 {
			continue
		}
		matched = append(matched, types.FilteredRecord{
			Record: records[i].JobRecord,
			Match:  *res,
		})
	}
	sortFiltered(matched)
	report.TotalMatched = len(matched)
	if report.TotalScanned > 0 {
		report.MatchRatePercent = round2(100 * float64(report.TotalMatched) / float64(report.TotalScanned))
	}
	report.TopMatches = topMatches(matched, 10)

	if opts.OutputDir != "" {
		collection := &store.FilteredCollection{
			FilterID:  report.FilterID,
			CreatedAt: report.CreatedAt,
			Records:   matched,
		}
		if err := store.WriteJSON(filepath.Join(opts.OutputDir, FilteredCollectionFile), collection); err != nil {
			return nil, err
		}
		if err := store.WriteJSON(filepath.Join(opts.OutputDir, FilterReportFile), report); err != nil {
			return nil, err
		}
	}

	if cfg.DatabaseURL != "" {
		if database := connectOptional(ctx, cfg.DatabaseURL, logger); database != nil {
			defer database.Close()
			persistFilter(ctx, database, matched, report, logger)
		}
	}

	return &FilterResult{Matched: matched, Report: report}, nil
}

// assembleReport folds the per-record results into aggregate statistics.
func assembleReport(criteria *types.FilterCriteria, records []store.MasterRecord, results []*types.MatchResult, skipped int, duration time.Duration) *types.FilterReport {
	report := &types.FilterReport{
		FilterID:        uuid.New().String(),
		CreatedAt:       time.Now().UTC(),
		Criteria:        *criteria,
		TotalScanned:    len(records) - skipped,
		SkippedRecords:  skipped,
		Breakdown:       make(map[string]types.PredicateStats),
		DurationSeconds: round2(duration.Seconds()),
	}
	if skipped > 0 {
		report.SkipReasons = map[string]int{skipReasonCancelled: skipped}
	}
	for _, res := range results {
		if res == nil {
			continue
		}
		for _, name := range res.CriteriaMet {
			stats := report.Breakdown[name]
			stats.Passed++
			report.Breakdown[name] = stats
		}
		for _, name := range res.CriteriaFailed {
			stats := report.Breakdown[name]
			stats.Failed++
			report.Breakdown[name] = stats
		}
		for _, name := range res.CriteriaUnknown {
			stats := report.Breakdown[name]
			stats.MissingData++
			report.Breakdown[name] = stats
		}
	}
	if duration > 0 && report.TotalScanned > 0 {
		report.RecordsPerSecond = round2(float64(report.TotalScanned) / duration.Seconds())
	}
	return report
}

// sortFiltered orders matches by descending score, ties broken by record id,
// so output is reproducible regardless of worker scheduling.
func sortFiltered(matched []types.FilteredRecord) {
	sort.Slice(matched, func(i, j int) bool {
		if matched[i].Match.Score != matched[j].Match.Score {
			return matched[i].Match.Score > matched[j].Match.Score
		}
		return matched[i].Record.ID < matched[j].Record.ID
	})
}

// topMatches extracts the report's best-scoring entries from the already
// sorted match list.
func topMatches(matched []types.FilteredRecord, n int) []types.TopMatch {
	if len(matched) < n {
		n = len(matched)
	}
	top := make([]types.TopMatch, 0, n)
	for _, fr := range matched[:n] {
		entry := types.TopMatch{RecordID: fr.Record.ID, Score: fr.Match.Score}
		if fv, ok := fr.Record.Field(types.FieldTitle); ok {
			entry.Title = fv.Raw
		}
		if fv, ok := fr.Record.Field(types.FieldCompany); ok {
			entry.Company = fv.Raw
		}
		top = append(top, entry)
	}
	return top
}

func persistFilter(ctx context.Context, database *store.DB, matched []types.FilteredRecord, report *types.FilterReport, logger *zap.Logger) {
	runID, err := database.CreateRun(ctx, store.RunKindFilter, report.TotalScanned)
	if err != nil {
		logger.Warn("failed to create database run", zap.Error(err))
		return
	}
	collection := &store.FilteredCollection{
		FilterID:  report.FilterID,
		CreatedAt: report.CreatedAt,
		Records:   matched,
	}
	if err := database.SaveArtifact(ctx, runID, store.StepFilteredCollection, collection); err != nil {
		logger.Warn("failed to save filtered collection artifact", zap.Error(err))
	}
	if err := database.SaveArtifact(ctx, runID, store.StepFilterReport, report); err != nil {
		logger.Warn("failed to save filter report artifact", zap.Error(err))
	}
	if err := database.CompleteRun(ctx, runID, "completed"); err != nil {
		logger.Warn("failed to complete database run", zap.Error(err))
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
