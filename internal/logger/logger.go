// Package logger provides structured logging functionality.
// It wraps the standard log/slog package for consistent logging across the analyzer.
//
// Run helpers log the start and end of a run and of each stage with
// consistent snake_case field names.
//
// The package supports two output formats:
//   - JSON: Machine-readable structured logging
//   - Human (default): Console output with colors and prefixes
//
// Logs are written to stderr; stdout is left to the command line summary.
package logger

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"
)

// Logger is the default logger instance.
var Logger *slog.Logger

// console is where console logs are written.
var console io.Writer = os.Stderr

func init() {
	Logger = slog.New(NewHumanHandler(console, &HumanHandlerOptions{
		Level:     slog.LevelInfo,
		UseColors: isTerminal(console),
	}))
}

// SetConsole redirects console logs to w. It takes effect on the next
// SetLevelAndFormat or SetLogFile call.
func SetConsole(w io.Writer) {
	console = w
}

// SetLevel configures the logging level, keeping JSON output.
func SetLevel(level slog.Level) {
	SetLevelAndFormat(level, FormatJSON)
}

// Info logs an informational message.
func Info(msg string, args ...any) {
	Logger.Info(msg, args...)
}

// Debug logs a debug message.
func Debug(msg string, args ...any) {
	Logger.Debug(msg, args...)
}

// Warn logs a warning message.
func Warn(msg string, args ...any) {
	Logger.Warn(msg, args...)
}

// Error logs an error message.
func Error(msg string, args ...any) {
	Logger.Error(msg, args...)
}

// ParseLevel converts a level name (debug, info, warn, error) to a slog.Level.
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", name)
	}
}

// =============================================================================
// Run Context
// =============================================================================

// RunContext contains context information for run logging.
type RunContext struct {
	// RunID is the unique identifier of the run (required)
	RunID string
	// Task is the requested task identifier
	Task string
	// TaskName is the registered name of the task
	TaskName string
	// Stage is the current stage (input, filter, task, output)
	Stage string
	// ModuleType is the type of module executing the stage (csv, json, condition)
	ModuleType string
	// DryRun indicates the output stage is skipped
	DryRun bool
}

// StageError contains structured error information for stage logging.
type StageError struct {
	// Code is the error code (e.g., INPUT_FAILED)
	Code string
	// Message is the human-readable error message
	Message string
}

// ErrorContext contains structured context for error logging.
type ErrorContext struct {
	RunID      string
	Task       string
	Stage      string
	ModuleType string

	ErrorCode    string
	ErrorMessage string
	Err          error

	// Path is the file involved, if any
	Path string
	// Extra holds additional key-value context
	Extra map[string]interface{}
}

// WithRun returns a logger with run context attached.
func WithRun(ctx RunContext) *slog.Logger {
	return Logger.With(buildContextAttrs(ctx)...)
}

// LogRunStart logs the start of a run.
func LogRunStart(ctx RunContext) {
	Logger.Info("run started", buildContextAttrs(ctx)...)
}

// LogRunEnd logs the completion of a run with its status.
func LogRunEnd(ctx RunContext, status string, rowsWritten int, duration time.Duration) {
	attrs := buildContextAttrs(ctx)
	attrs = append(attrs,
		slog.String("status", status),
		slog.Int("rows_written", rowsWritten),
		slog.Duration("duration", duration),
	)
	Logger.Info("run completed", attrs...)
}

// LogStageStart logs the start of a stage.
func LogStageStart(ctx RunContext) {
	Logger.Debug("stage started", buildContextAttrs(ctx)...)
}

// LogStageEnd logs the completion of a stage.
// If err is non-nil, logs as an error with error details.
func LogStageEnd(ctx RunContext, recordCount int, duration time.Duration, err *StageError) {
	attrs := buildContextAttrs(ctx)
	attrs = append(attrs,
		slog.Int("record_count", recordCount),
		slog.Duration("duration", duration),
	)

	if err != nil {
		attrs = append(attrs,
			slog.String("error_code", err.Code),
			slog.String("error", err.Message),
		)
		Logger.Error("stage failed", attrs...)
		return
	}
	Logger.Debug("stage completed", attrs...)
}

// LogError logs an error with full run context.
func LogError(message string, errCtx ErrorContext) {
	attrs := make([]any, 0, 12)

	if errCtx.RunID != "" {
		attrs = append(attrs, slog.String("run_id", errCtx.RunID))
	}
	if errCtx.Task != "" {
		attrs = append(attrs, slog.String("task", errCtx.Task))
	}
	if errCtx.Stage != "" {
		attrs = append(attrs, slog.String("stage", errCtx.Stage))
	}
	if errCtx.ModuleType != "" {
		attrs = append(attrs, slog.String("module_type", errCtx.ModuleType))
	}
	if errCtx.ErrorCode != "" {
		attrs = append(attrs, slog.String("error_code", errCtx.ErrorCode))
	}
	if errCtx.ErrorMessage != "" {
		attrs = append(attrs, slog.String("error", errCtx.ErrorMessage))
	}
	if errCtx.Err != nil {
		attrs = append(attrs, slog.String("error_type", fmt.Sprintf("%T", errCtx.Err)))

		chain := []string{errCtx.Err.Error()}
		for current := errors.Unwrap(errCtx.Err); current != nil; current = errors.Unwrap(current) {
			chain = append(chain, current.Error())
		}
		if len(chain) > 1 {
			attrs = append(attrs, slog.String("error_chain", strings.Join(chain, " -> ")))
		}
	}
	if errCtx.Path != "" {
		attrs = append(attrs, slog.String("path", errCtx.Path))
	}
	for k, v := range errCtx.Extra {
		attrs = append(attrs, slog.Any(k, v))
	}

	Logger.Error(message, attrs...)
}

// buildContextAttrs builds slog attributes from a RunContext.
// Only non-empty fields are included.
func buildContextAttrs(ctx RunContext) []any {
	attrs := make([]any, 0, 6)
	attrs = append(attrs, slog.String("run_id", ctx.RunID))

	if ctx.Task != "" {
		attrs = append(attrs, slog.String("task", ctx.Task))
	}
	if ctx.TaskName != "" {
		attrs = append(attrs, slog.String("task_name", ctx.TaskName))
	}
	if ctx.Stage != "" {
		attrs = append(attrs, slog.String("stage", ctx.Stage))
	}
	if ctx.ModuleType != "" {
		attrs = append(attrs, slog.String("module_type", ctx.ModuleType))
	}
	if ctx.DryRun {
		attrs = append(attrs, slog.Bool("dry_run", true))
	}
	return attrs
}

// =============================================================================
// Output Formats
// =============================================================================

// OutputFormat represents the log output format
type OutputFormat int

const (
	// FormatHuman is a human-readable console format with colors and prefixes
	FormatHuman OutputFormat = iota
	// FormatJSON is the machine-readable JSON format
	FormatJSON
)

// ParseFormat converts a format name (human, json) to an OutputFormat.
func ParseFormat(name string) (OutputFormat, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "human", "text", "pretty":
		return FormatHuman, nil
	case "json":
		return FormatJSON, nil
	default:
		return FormatHuman, fmt.Errorf("unknown log format %q", name)
	}
}

// SetLevelAndFormat sets both the log level and format.
func SetLevelAndFormat(level slog.Level, format OutputFormat) {
	Logger = slog.New(newConsoleHandler(level, format))
}

func newConsoleHandler(level slog.Level, format OutputFormat) slog.Handler {
	if format == FormatJSON {
		return slog.NewJSONHandler(console, &slog.HandlerOptions{Level: level})
	}
	return NewHumanHandler(console, &HumanHandlerOptions{
		Level:     level,
		UseColors: isTerminal(console),
	})
}

// isTerminal returns true if the writer is a terminal (supports colors)
func isTerminal(w io.Writer) bool {
	if f, ok := w.(*os.File); ok {
		fi, err := f.Stat()
		if err != nil {
			return false
		}
		return (fi.Mode() & os.ModeCharDevice) != 0
	}
	return false
}

// formatName returns the name of the output format.
func formatName(f OutputFormat) string {
	if f == FormatJSON {
		return "json"
	}
	return "human"
}
