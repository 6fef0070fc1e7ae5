// Package cli provides CLI output formatting and display functions.
package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/canectors/spfanalyzer/internal/config"
	"github.com/canectors/spfanalyzer/internal/registry"
	"github.com/canectors/spfanalyzer/pkg/dataset"
)

// InvalidTaskMessage is printed when the requested task is not registered.
const InvalidTaskMessage = "Invalid task number. Please specify a task between 1 and 5."

// Destinations for CLI output. Tests replace them.
var (
	Stdout io.Writer = os.Stdout
	Stderr io.Writer = os.Stderr
)

// OutputOptions configures CLI output behavior.
type OutputOptions struct {
	Verbose bool
	Quiet   bool
	DryRun  bool
}

// PrintRunResult displays the outcome of a run.
func PrintRunResult(result *dataset.RunResult, err error, opts OutputOptions) {
	if result == nil {
		fmt.Fprintln(Stderr, "✗ No run result available")
		return
	}

	if err != nil {
		fmt.Fprintln(Stderr, "✗ Run failed")
		if result.Error != nil {
			fmt.Fprintf(Stderr, "  Stage: %s\n", result.Error.Stage)
			fmt.Fprintf(Stderr, "  Error: %s\n", result.Error.Message)
		}
		return
	}

	if opts.Quiet {
		return
	}
	if result.DryRun {
		fmt.Fprintf(Stdout, "✓ Task %s (%s) computed %d rows\n", result.Task, result.TaskName, result.RowsWritten)
	} else {
		fmt.Fprintf(Stdout, "✓ Task %s (%s) wrote %d rows to %s\n", result.Task, result.TaskName, result.RowsWritten, result.OutputPath)
	}
	fmt.Fprintf(Stdout, "  Records loaded: %d\n", result.RecordsLoaded)
	if result.RecordsSelected != result.RecordsLoaded {
		fmt.Fprintf(Stdout, "  Records selected: %d\n", result.RecordsSelected)
	}
	if opts.Verbose {
		fmt.Fprintf(Stdout, "  Run ID: %s\n", result.RunID)
		fmt.Fprintf(Stdout, "  Duration: %v\n", result.CompletedAt.Sub(result.StartedAt))
	}

	if result.DryRun && result.Preview != nil {
		PrintPreview(result.Preview, result.RowsWritten)
	}
}

// PrintPreview displays the leading rows of a derived table.
func PrintPreview(table *dataset.Table, total int) {
	fmt.Fprintln(Stdout)
	fmt.Fprintln(Stdout, "Dry-Run Preview (what would have been written):")
	fmt.Fprintln(Stdout)

	tw := tabwriter.NewWriter(Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "  %s\n", strings.Join(table.Columns, "\t"))
	for _, row := range table.Rows {
		fmt.Fprintf(tw, "  %s\n", strings.Join(row, "\t"))
	}
	_ = tw.Flush()

	if more := total - table.Len(); more > 0 {
		fmt.Fprintf(Stdout, "  ... (%d more rows)\n", more)
	}
	fmt.Fprintln(Stdout)
	fmt.Fprintln(Stdout, "ℹ No output file was written (dry-run mode)")
}

// PrintTaskList displays the registered tasks.
func PrintTaskList(tasks []registry.Task, verbose bool) {
	tw := tabwriter.NewWriter(Stdout, 0, 0, 2, ' ', 0)
	for _, t := range tasks {
		if verbose {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", t.ID, t.Name, t.Description)
		} else {
			fmt.Fprintf(tw, "%s\t%s\n", t.ID, t.Description)
		}
	}
	_ = tw.Flush()
}

// PrintInvalidTask reports an unknown task selection.
func PrintInvalidTask() {
	fmt.Fprintln(Stderr, InvalidTaskMessage)
}

// PrintSettingsSummary prints the resolved settings.
func PrintSettingsSummary(s config.Settings) {
	fmt.Fprintf(Stdout, "  Input: %s\n", s.InputPath)
	fmt.Fprintf(Stdout, "  Output: %s (%s)\n", s.OutputPath, s.OutputFormat)
	if s.Where != "" {
		fmt.Fprintf(Stdout, "  Where: %s\n", s.Where)
	}
}
