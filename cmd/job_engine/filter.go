package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonathan/job-consolidator/internal/classify"
	"github.com/jonathan/job-consolidator/internal/llm"
	"github.com/jonathan/job-consolidator/internal/observability"
	"github.com/jonathan/job-consolidator/internal/pipeline"
	"github.com/jonathan/job-consolidator/internal/store"
)

var filterCommand = &cobra.Command{
	Use:   "filter",
	Short: "Filter the master collection against search criteria",
	Long: `Evaluates every record of a master collection against a criteria file
(JSON or YAML) and writes the filtered collection plus a filter report to the
output directory.

Exits 0 even when nothing matches; a non-zero exit means unreadable input or
invalid criteria. Semantic criteria (requiredSkills, ambiguous keywords) use
the Gemini classifier when an API key is available and resolve to unknown
otherwise.`,
	RunE: runFilterCmd,
}

var (
	filterConfigPath  string
	filterMasterPath  string
	filterCriteria    string
	filterOutput      string
	filterAsOf        string
	filterAPIKey      string
	filterDatabaseURL string
	filterWorkers     int
	filterTimeLimit   time.Duration
	filterVerbose     bool
)

func init() {
	filterCommand.Flags().StringVar(&filterConfigPath, "config", "", "Path to engine config file (JSON or YAML)")
	filterCommand.Flags().StringVarP(&filterMasterPath, "master", "m", "", "Path to the master collection JSON (required)")
	filterCommand.Flags().StringVarP(&filterCriteria, "criteria", "c", "", "Path to the filter criteria file, JSON or YAML (required)")
	filterCommand.Flags().StringVarP(&filterOutput, "output", "o", "output", "Output directory for the filtered collection and report")
	filterCommand.Flags().StringVar(&filterAsOf, "as-of", "", "Anchor for the postedWithinDays window, RFC3339 or YYYY-MM-DD (default: now)")
	filterCommand.Flags().StringVar(&filterAPIKey, "api-key", "", "Gemini API key (optional, defaults to GEMINI_API_KEY env var)")
	filterCommand.Flags().StringVar(&filterDatabaseURL, "db-url", "", "PostgreSQL connection URL (optional, defaults to DATABASE_URL env var)")
	filterCommand.Flags().IntVar(&filterWorkers, "workers", 0, "Filter worker count (0 = one per CPU)")
	filterCommand.Flags().DurationVar(&filterTimeLimit, "time-limit", 0, "Abort evaluation after this duration, flushing partial results (0 = no limit)")
	filterCommand.Flags().BoolVarP(&filterVerbose, "verbose", "v", false, "Print the filter report summary")

	_ = filterCommand.MarkFlagRequired("master")
	_ = filterCommand.MarkFlagRequired("criteria")

	rootCmd.AddCommand(filterCommand)
}

func runFilterCmd(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if filterTimeLimit > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, filterTimeLimit)
		defer cancel()
	}

	cfg, err := loadEngineConfig(filterConfigPath, filterDatabaseURL)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("workers") {
		cfg.Workers = filterWorkers
	}
	asOf, err := parseAsOf(filterAsOf)
	if err != nil {
		return err
	}

	logger, err := observability.NewLogger(filterVerbose)
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	master, err := store.LoadMasterCollection(filterMasterPath)
	if err != nil {
		return err
	}
	criteria, err := store.LoadCriteria(filterCriteria)
	if err != nil {
		return err
	}

	classifier, closeClassifier, err := buildClassifier(ctx, cfg.ClassifierTimeoutSeconds)
	if err != nil {
		// No key or an unreachable backend degrades the semantic stage, it
		// does not abort the run.
		logger.Warn("semantic classifier disabled: " + err.Error())
	}
	if closeClassifier != nil {
		defer closeClassifier()
	}

	result, err := pipeline.RunFilter(ctx, pipeline.FilterOptions{
		Master:     master,
		Criteria:   criteria,
		OutputDir:  filterOutput,
		AsOf:       asOf,
		Config:     cfg,
		Classifier: classifier,
		Logger:     logger,
	})
	if err != nil {
		return err
	}

	report := result.Report
	fmt.Printf("Scanned %d records, matched %d (%.2f%%)", report.TotalScanned, report.TotalMatched, report.MatchRatePercent)
	if report.SkippedRecords > 0 {
		fmt.Printf(", skipped %d", report.SkippedRecords)
	}
	fmt.Println()

	if filterVerbose {
		printer := observability.NewPrinter(os.Stdout)
		printer.PrintFilterReport(report)
	}
	return nil
}

// buildClassifier wires the Gemini-backed classifier when an API key is
// configured. Returns a nil classifier (with a reason) when it is not.
func buildClassifier(ctx context.Context, timeoutSeconds int) (classify.Classifier, func(), error) {
	apiKey := filterAPIKey
	if apiKey == "" {
		apiKey = os.Getenv("GEMINI_API_KEY")
	}
	if apiKey == "" {
		return nil, nil, fmt.Errorf("no API key configured")
	}

	client, err := llm.NewClient(ctx, llm.DefaultConfig(), apiKey)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create LLM client: %w", err)
	}
	timeout := time.Duration(timeoutSeconds) * time.Second
	return classify.NewGeminiClassifier(client, timeout), func() { _ = client.Close() }, nil
}
