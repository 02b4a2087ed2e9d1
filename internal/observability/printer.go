// Package observability provides structured logging and formatted output
// utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/jonathan/job-consolidator/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		// Truncate long lines
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintDedupReport outputs a human-readable summary of a deduplication run.
func (p *Printer) PrintDedupReport(report *types.DedupReport) {
	if report == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Input records:   %d\n", report.InputRecords))
	sb.WriteString(fmt.Sprintf("Clusters:        %d\n", report.Clusters))
	sb.WriteString(fmt.Sprintf("Exact merges:    %d\n", report.ExactMerged))
	sb.WriteString(fmt.Sprintf("Fuzzy merges:    %d\n", report.FuzzyMerged))
	sb.WriteString(fmt.Sprintf("Singletons:      %d\n", report.Singletons))
	if report.FallbackRecords > 0 {
		sb.WriteString(fmt.Sprintf("Fallback:        %d\n", report.FallbackRecords))
	}
	if len(report.NearMisses) > 0 {
		sb.WriteString(fmt.Sprintf("\nNear misses (%d):\n", len(report.NearMisses)))
		for i, nm := range report.NearMisses {
			if i >= maxItemsToShow {
				sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(report.NearMisses)-maxItemsToShow))
				break
			}
			sb.WriteString(fmt.Sprintf("  %s ~ %s (%.2f)\n", nm.RecordA, nm.RecordB, nm.Score))
		}
	}
	sb.WriteString(fmt.Sprintf("\nDuration: %.2fs", report.DurationSeconds))

	p.printBox("Deduplication", sb.String())
}

// PrintFilterReport outputs a human-readable summary of a filter run.
func (p *Printer) PrintFilterReport(report *types.FilterReport) {
	if report == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Scanned:  %d\n", report.TotalScanned))
	sb.WriteString(fmt.Sprintf("Matched:  %d (%.1f%%)\n", report.TotalMatched, report.MatchRatePercent))
	if report.SkippedRecords > 0 {
		sb.WriteString(fmt.Sprintf("Skipped:  %d\n", report.SkippedRecords))
	}

	if len(report.Breakdown) > 0 {
		sb.WriteString("\nPer predicate (pass/fail/unknown):\n")
		predicates := make([]string, 0, len(report.Breakdown))
		for name := range report.Breakdown {
			predicates = append(predicates, name)
		}
		sort.Strings(predicates)
		for _, name := range predicates {
			stats := report.Breakdown[name]
			sb.WriteString(fmt.Sprintf("  %-18s %d/%d/%d\n", name, stats.Passed, stats.Failed, stats.MissingData))
		}
	}

	if len(report.TopMatches) > 0 {
		sb.WriteString("\nTop matches:\n")
		for i, match := range report.TopMatches {
			if i >= maxItemsToShow {
				break
			}
			sb.WriteString(fmt.Sprintf("  %3d  %s\n", match.Score, firstNonEmpty(match.Title, match.RecordID)))
		}
	}
	sb.WriteString(fmt.Sprintf("\nDuration: %.2fs (%.1f records/s)", report.DurationSeconds, report.RecordsPerSecond))

	p.printBox("Filter results", sb.String())
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
