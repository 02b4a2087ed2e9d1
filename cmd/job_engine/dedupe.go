package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jonathan/job-consolidator/internal/observability"
	"github.com/jonathan/job-consolidator/internal/pipeline"
	"github.com/jonathan/job-consolidator/internal/store"
)

var dedupeCommand = &cobra.Command{
	Use:   "dedupe",
	Short: "Rerun deduplication over an existing master collection",
	Long: `Reclusters the records of a previously written master collection and
writes a new master collection, duplicate log, and dedup report. Useful after
tuning the similarity weights, fuzzy threshold, or near-miss band; session
loading and normalization are not repeated.`,
	RunE: runDedupeCmd,
}

var (
	dedupeConfigPath  string
	dedupeMasterPath  string
	dedupeOutput      string
	dedupeDatabaseURL string
	dedupeVerbose     bool
)

func init() {
	dedupeCommand.Flags().StringVar(&dedupeConfigPath, "config", "", "Path to engine config file (JSON or YAML)")
	dedupeCommand.Flags().StringVarP(&dedupeMasterPath, "master", "m", "", "Path to the master collection JSON (required)")
	dedupeCommand.Flags().StringVarP(&dedupeOutput, "output", "o", "output", "Output directory for the reclustered collection and reports")
	dedupeCommand.Flags().StringVar(&dedupeDatabaseURL, "db-url", "", "PostgreSQL connection URL (optional, defaults to DATABASE_URL env var)")
	dedupeCommand.Flags().BoolVarP(&dedupeVerbose, "verbose", "v", false, "Print the dedup report summary")

	_ = dedupeCommand.MarkFlagRequired("master")

	rootCmd.AddCommand(dedupeCommand)
}

func runDedupeCmd(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadEngineConfig(dedupeConfigPath, dedupeDatabaseURL)
	if err != nil {
		return err
	}

	logger, err := observability.NewLogger(dedupeVerbose)
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	master, err := store.LoadMasterCollection(dedupeMasterPath)
	if err != nil {
		return err
	}

	result, err := pipeline.RunDedupe(ctx, pipeline.DedupeOptions{
		Master:    master,
		OutputDir: dedupeOutput,
		Config:    cfg,
		Logger:    logger,
	})
	if err != nil {
		return err
	}

	fmt.Printf("Reclustered %d records into %d canonical records (%d clusters merged)\n",
		result.Log.Report.InputRecords, len(result.Collection.Records),
		result.Log.Report.InputRecords-len(result.Collection.Records))
	fmt.Printf("Master collection written to: %s\n", result.MasterPath)

	if dedupeVerbose {
		printer := observability.NewPrinter(os.Stdout)
		printer.PrintDedupReport(&result.Log.Report)
	}
	return nil
}
