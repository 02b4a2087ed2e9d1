package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonathan/job-consolidator/internal/config"
	"github.com/jonathan/job-consolidator/internal/observability"
	"github.com/jonathan/job-consolidator/internal/pipeline"
)

var consolidateCommand = &cobra.Command{
	Use:   "consolidate <session-dir> [session-dir...]",
	Short: "Merge extraction sessions into a deduplicated master collection",
	Long: `Reads per-job JSON files from one or more extraction session directories,
normalizes their fields, removes duplicates across sessions, and writes the
master collection, duplicate log, and dedup report to the output directory.

Malformed record files are skipped, logged, and counted; the run only fails
when an input directory is unreadable.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runConsolidateCmd,
}

var (
	consolidateConfigPath  string
	consolidateOutput      string
	consolidateAsOf        string
	consolidateDatabaseURL string
	consolidateVerbose     bool
)

func init() {
	consolidateCommand.Flags().StringVar(&consolidateConfigPath, "config", "", "Path to engine config file (JSON or YAML)")
	consolidateCommand.Flags().StringVarP(&consolidateOutput, "output", "o", "output", "Output directory for the master collection and reports")
	consolidateCommand.Flags().StringVar(&consolidateAsOf, "as-of", "", "Anchor for relative posting dates, RFC3339 or YYYY-MM-DD (default: now)")
	consolidateCommand.Flags().StringVar(&consolidateDatabaseURL, "db-url", "", "PostgreSQL connection URL (optional, defaults to DATABASE_URL env var)")
	consolidateCommand.Flags().BoolVarP(&consolidateVerbose, "verbose", "v", false, "Print the dedup report summary")

	rootCmd.AddCommand(consolidateCommand)
}

func runConsolidateCmd(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadEngineConfig(consolidateConfigPath, consolidateDatabaseURL)
	if err != nil {
		return err
	}
	asOf, err := parseAsOf(consolidateAsOf)
	if err != nil {
		return err
	}

	logger, err := observability.NewLogger(consolidateVerbose)
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	result, err := pipeline.RunConsolidate(ctx, pipeline.ConsolidateOptions{
		SessionDirs: args,
		OutputDir:   consolidateOutput,
		AsOf:        asOf,
		Config:      cfg,
		Logger:      logger,
	})
	if err != nil {
		return err
	}

	fmt.Printf("Consolidated %d records from %d sessions into %d canonical records (%d skipped)\n",
		result.Stats.RecordsLoaded, result.Stats.SessionsProcessed,
		len(result.Collection.Records), result.Stats.Skipped)
	fmt.Printf("Master collection written to: %s\n", result.MasterPath)

	if consolidateVerbose {
		printer := observability.NewPrinter(os.Stdout)
		printer.PrintDedupReport(&result.Log.Report)
	}
	return nil
}

// loadEngineConfig merges the config file, defaults, and environment.
func loadEngineConfig(path, dbURLFlag string) (*config.Config, error) {
	cfg := config.Default()
	if path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}
	switch {
	case dbURLFlag != "":
		cfg.DatabaseURL = dbURLFlag
	case cfg.DatabaseURL == "":
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// parseAsOf accepts an RFC3339 timestamp or a bare date. Empty means now.
func parseAsOf(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return t.UTC(), nil
	}
	return time.Time{}, fmt.Errorf("invalid --as-of value %q: want RFC3339 or YYYY-MM-DD", value)
}
