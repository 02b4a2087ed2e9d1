// Package main provides the entry point for the job consolidation and
// filtering engine CLI.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "job_engine",
	Short: "Job record consolidation and criteria filtering engine",
	Long:  "job_engine merges raw job postings from independent extraction sessions into a deduplicated master collection, and filters that collection against multi-dimensional search criteria with graded match confidence.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
