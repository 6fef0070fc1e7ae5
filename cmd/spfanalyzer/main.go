// Package main provides the CLI entry point for the student performance
// analyzer.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/canectors/spfanalyzer/internal/cli"
	"github.com/canectors/spfanalyzer/internal/config"
	"github.com/canectors/spfanalyzer/internal/errhandling"
	"github.com/canectors/spfanalyzer/internal/logger"
	"github.com/canectors/spfanalyzer/internal/modules/filter"
	"github.com/canectors/spfanalyzer/internal/modules/input"
	"github.com/canectors/spfanalyzer/internal/registry"
	"github.com/canectors/spfanalyzer/internal/runtime"
)

var (
	// Build information (set via ldflags during build)
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

// options holds the command line flags of one invocation.
type options struct {
	task        string
	configPath  string
	envFile     string
	input       string
	output      string
	format      string
	where       string
	logFormat   string
	logFile     string
	previewRows int
	dryRun      bool
	verbose     bool
	quiet       bool
}

// reported marks an error that has already been shown to the user.
type reported struct{ error }

func (r reported) Unwrap() error { return r.error }

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run executes the command line and returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cli.Stdout, cli.Stderr = stdout, stderr
	logger.SetConsole(stderr)
	logger.SetLevelAndFormat(slog.LevelInfo, logger.FormatHuman)
	defer logger.CloseLogFile()

	root := newRootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return errhandling.ExitSuccess
	}

	var classified *errhandling.ClassifiedError
	if !errors.As(err, &classified) {
		// cobra usage errors: unknown command, wrong argument count
		err = errhandling.NewConfigError(err.Error(), err)
	}
	var shown reported
	if !errors.As(err, &shown) {
		fmt.Fprintf(stderr, "✗ %v\n", err)
	}
	return errhandling.ExitCode(err)
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	reg := registry.New()

	root := &cobra.Command{
		Use:   "spfanalyzer",
		Short: "Student performance factor analyzer",
		Long: `spfanalyzer reads a table of student performance records and runs one
of five analyses over it, writing the derived table to a single output file.

Tasks:
  1  Students who studied more than 40 hours
  2  Ten best exam scores of at least 85
  3  Perfect attendance with extracurricular activities
  4  Mean attendance per letter grade
  5  Tutoring sessions compared with the grade average

Exit codes:
  0 - Output written
  1 - Invalid task number
  2 - Invalid flags or configuration
  3 - Input, schema or output failure

Examples:
  spfanalyzer --task 1
  spfanalyzer --TASK 4 --input data/a2-data.csv --output grades.csv
  spfanalyzer run --task 5 --format json --output tutoring.json
  spfanalyzer --task 2 --where 'Attendance >= 90' --dry-run`,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			// Configure logger level based on flags
			if opts.verbose {
				logger.SetLevelAndFormat(slog.LevelDebug, logger.FormatHuman)
			} else if opts.quiet {
				logger.SetLevelAndFormat(slog.LevelError, logger.FormatHuman)
			}
		},
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTask(cmd, reg, opts)
		},
	}

	root.SetGlobalNormalizationFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ToLower(name))
	})
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return errhandling.NewConfigError(err.Error(), err)
	})

	flags := root.PersistentFlags()
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "Enable verbose output")
	flags.BoolVarP(&opts.quiet, "quiet", "q", false, "Suppress non-error output")
	flags.StringVar(&opts.envFile, "env-file", config.DefaultEnvFile, "Environment file loaded before reading SPF_* variables")

	runFlags := pflag.NewFlagSet("run", pflag.ContinueOnError)
	runFlags.StringVarP(&opts.task, "task", "t", "", "Task number to execute (1-5)")
	runFlags.StringVarP(&opts.configPath, "config", "c", "", "Configuration file (JSON or YAML)")
	runFlags.StringVarP(&opts.input, "input", "i", "", "Input CSV file (default "+config.DefaultInputPath+")")
	runFlags.StringVarP(&opts.output, "output", "o", "", "Output file (default "+config.DefaultOutputPath+")")
	runFlags.StringVar(&opts.format, "format", "", "Output format: csv or json (default "+config.DefaultOutputFormat+")")
	runFlags.StringVar(&opts.where, "where", "", "Expression selecting the records a task sees")
	runFlags.BoolVar(&opts.dryRun, "dry-run", false, "Compute and preview the result without writing the output file")
	runFlags.IntVar(&opts.previewRows, "preview-rows", runtime.DefaultPreviewRows, "Rows shown by --dry-run")
	runFlags.StringVar(&opts.logFormat, "log-format", "", "Log format: human or json")
	runFlags.StringVar(&opts.logFile, "log-file", "", "Also write JSON logs to this file")
	root.Flags().AddFlagSet(runFlags)

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run an analysis task",
		Long: `Run an analysis task over the input table and write the derived table.

Settings are resolved from defaults, the optional --config file, the
environment (SPF_INPUT, SPF_OUTPUT, SPF_FORMAT, SPF_WHERE, SPF_LOG_LEVEL,
SPF_LOG_FORMAT, SPF_LOG_FILE, also read from --env-file) and finally flags.

Examples:
  spfanalyzer run --task 3
  spfanalyzer run --task 4 --config analyzer.yaml --dry-run`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTask(cmd, reg, opts)
		},
	}
	runCmd.Flags().AddFlagSet(runFlags)

	tasksCmd := &cobra.Command{
		Use:   "tasks",
		Short: "List the available analysis tasks",
		Args:  cobra.NoArgs,
		Run: func(_ *cobra.Command, _ []string) {
			cli.PrintTaskList(reg.Tasks(), opts.verbose)
		},
	}

	validateCmd := &cobra.Command{
		Use:   "validate <config-file>",
		Short: "Validate an analyzer configuration file",
		Long: `Validate an analyzer configuration file against the schema.

Supports both JSON and YAML formats. The format is auto-detected
based on file extension (.json, .yaml, .yml) or content.

Exit codes:
  0 - Configuration is valid
  2 - Parse or validation errors

Examples:
  spfanalyzer validate analyzer.yaml
  spfanalyzer validate --verbose analyzer.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return runValidate(args[0], opts)
		},
	}

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long:  "Print version, commit hash, and build date information.",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Version: %s\n", version)
			fmt.Fprintf(out, "Commit: %s\n", commit)
			fmt.Fprintf(out, "Build Date: %s\n", buildDate)
		},
	}

	root.AddCommand(runCmd, tasksCmd, validateCmd, versionCmd)
	return root
}

func runValidate(path string, opts *options) error {
	if !opts.quiet {
		fmt.Fprintf(cli.Stdout, "Validating configuration: %s\n", path)
	}

	result := config.ParseFile(path)
	if len(result.ParseErrors) > 0 {
		cli.PrintParseErrors(result.ParseErrors, opts.verbose)
		return reported{errhandling.NewConfigError("configuration has parse errors", result.ParseErrors[0])}
	}
	if len(result.ValidationErrors) > 0 {
		cli.PrintValidationErrors(result.ValidationErrors, opts.verbose, opts.quiet)
		return reported{errhandling.NewConfigError("configuration has validation errors", result.ValidationErrors[0])}
	}

	if !opts.quiet {
		fmt.Fprintf(cli.Stdout, "✓ Configuration is valid (format: %s)\n", result.Format)
		if opts.verbose {
			settings := config.Defaults()
			settings.ApplyData(result.Data)
			cli.PrintSettingsSummary(settings)
		}
	}
	return nil
}

func runTask(cmd *cobra.Command, reg *registry.Registry, opts *options) error {
	settings, err := resolveSettings(cmd, opts)
	if err != nil {
		return err
	}
	if err := configureLogging(settings, opts); err != nil {
		return err
	}
	if opts.verbose && !opts.quiet {
		cli.PrintSettingsSummary(settings)
	}

	flt, err := filter.New(settings.Where)
	if err != nil {
		return err
	}
	out, err := reg.Output(settings.OutputFormat, settings.OutputPath)
	if err != nil {
		return err
	}

	executor := runtime.NewExecutor(reg, input.NewCSVFile(settings.InputPath), flt, out, runtime.Options{
		DryRun:      opts.dryRun,
		PreviewRows: opts.previewRows,
	})
	result, err := executor.Execute(cmd.Context(), opts.task)
	if errors.Is(err, errhandling.ErrUnknownTask) {
		cli.PrintInvalidTask()
		return reported{err}
	}

	cli.PrintRunResult(result, err, cli.OutputOptions{
		Verbose: opts.verbose,
		Quiet:   opts.quiet,
		DryRun:  opts.dryRun,
	})
	if err != nil {
		return reported{err}
	}
	return nil
}

// resolveSettings layers the flags that were set on top of the defaults,
// configuration file and environment.
func resolveSettings(cmd *cobra.Command, opts *options) (config.Settings, error) {
	settings, result, err := config.Load(opts.configPath, opts.envFile)
	if err != nil {
		return settings, errhandling.NewConfigError("loading environment", err)
	}
	if result != nil && !result.IsValid() {
		if len(result.ParseErrors) > 0 {
			cli.PrintParseErrors(result.ParseErrors, opts.verbose)
		}
		if len(result.ValidationErrors) > 0 {
			cli.PrintValidationErrors(result.ValidationErrors, opts.verbose, opts.quiet)
		}
		return settings, reported{errhandling.NewConfigError(
			fmt.Sprintf("invalid configuration file %s", opts.configPath), result.AllErrors()[0],
		)}
	}

	flags := cmd.Flags()
	override := func(name string, dst *string, value string) {
		if flags.Changed(name) {
			*dst = value
		}
	}
	override("input", &settings.InputPath, opts.input)
	override("output", &settings.OutputPath, opts.output)
	override("format", &settings.OutputFormat, opts.format)
	override("where", &settings.Where, opts.where)
	override("log-format", &settings.LogFormat, opts.logFormat)
	override("log-file", &settings.LogFile, opts.logFile)
	return settings, nil
}

func configureLogging(settings config.Settings, opts *options) error {
	level, err := logger.ParseLevel(settings.LogLevel)
	if err != nil {
		return errhandling.NewConfigError("invalid log level", err)
	}
	if opts.verbose {
		level = slog.LevelDebug
	} else if opts.quiet {
		level = slog.LevelError
	}
	format, err := logger.ParseFormat(settings.LogFormat)
	if err != nil {
		return errhandling.NewConfigError("invalid log format", err)
	}

	if settings.LogFile != "" {
		if err := logger.SetLogFile(settings.LogFile, level, format); err != nil {
			return errhandling.NewConfigError("opening log file", err)
		}
		return nil
	}
	logger.SetLevelAndFormat(level, format)
	return nil
}
