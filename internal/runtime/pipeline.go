// Package runtime provides the run execution engine.
// It orchestrates one analyzer run: Input -> Filter -> Task -> Output.
package runtime

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/canectors/spfanalyzer/internal/errhandling"
	"github.com/canectors/spfanalyzer/internal/logger"
	"github.com/canectors/spfanalyzer/internal/modules/filter"
	"github.com/canectors/spfanalyzer/internal/modules/input"
	"github.com/canectors/spfanalyzer/internal/modules/output"
	"github.com/canectors/spfanalyzer/internal/registry"
	"github.com/canectors/spfanalyzer/pkg/dataset"
)

// Stage names used in logs and RunError.Stage.
const (
	StageSelect = "select"
	StageInput  = "input"
	StageFilter = "filter"
	StageTask   = "task"
	StageOutput = "output"
)

// DefaultPreviewRows is the number of rows kept in a dry-run preview.
const DefaultPreviewRows = 10

// Common errors
var (
	// ErrNilRegistry is returned when the executor has no registry
	ErrNilRegistry = errors.New("task registry is nil")

	// ErrNilInputModule is returned when input module is nil
	ErrNilInputModule = errors.New("input module is nil")

	// ErrNilOutputModule is returned when output module is nil
	ErrNilOutputModule = errors.New("output module is nil")
)

// Options tunes an Executor.
type Options struct {
	// DryRun computes the derived table without writing it
	DryRun bool
	// PreviewRows bounds the dry-run preview; DefaultPreviewRows when zero
	PreviewRows int
	// RunID overrides the generated run identifier
	RunID string
}

// Executor runs one task over the Record Store.
//
// The Executor only talks to modules through their interfaces. The output
// module is not touched in dry-run mode, and nothing is written unless
// every earlier stage succeeded.
type Executor struct {
	registry     *registry.Registry
	inputModule  input.Module
	filterModule filter.Module
	outputModule output.Module
	opts         Options
}

// NewExecutor creates an executor. filterModule may be nil, in which case
// every record reaches the task. outputModule may be nil in dry-run mode.
func NewExecutor(
	reg *registry.Registry,
	inputModule input.Module,
	filterModule filter.Module,
	outputModule output.Module,
	opts Options,
) *Executor {
	if filterModule == nil {
		filterModule = filter.PassThrough{}
	}
	if opts.PreviewRows <= 0 {
		opts.PreviewRows = DefaultPreviewRows
	}
	return &Executor{
		registry:     reg,
		inputModule:  inputModule,
		filterModule: filterModule,
		outputModule: outputModule,
		opts:         opts,
	}
}

// Execute runs the task identified by taskID.
//
// Execution flow:
//  1. Resolve the task (an unknown id fails before the input is read)
//  2. Load the Record Store through the input module
//  3. Apply the pre-filter
//  4. Compute the derived table
//  5. Write it through the output module, or keep a preview in dry-run mode
//
// The returned result is always non-nil; on failure its Error names the
// stage that failed and err carries the classified cause.
func (e *Executor) Execute(ctx context.Context, taskID string) (*dataset.RunResult, error) {
	startedAt := time.Now()
	runID := e.opts.RunID
	if runID == "" {
		runID = uuid.NewString()
	}
	result := &dataset.RunResult{
		RunID:     runID,
		Task:      taskID,
		Status:    dataset.StatusError,
		StartedAt: startedAt,
		DryRun:    e.opts.DryRun,
	}
	runCtx := logger.RunContext{RunID: runID, Task: taskID, DryRun: e.opts.DryRun}

	if err := e.validate(); err != nil {
		return e.fail(result, runCtx, StageSelect, err)
	}
	if pather, ok := e.outputModule.(interface{ Path() string }); ok {
		result.OutputPath = pather.Path()
	}

	task, err := e.registry.Task(taskID)
	if err != nil {
		return e.fail(result, runCtx, StageSelect, err)
	}
	result.TaskName = task.Name
	runCtx.TaskName = task.Name
	logger.LogRunStart(runCtx)

	defer e.closeModule(runCtx, StageOutput, e.outputModule)

	records, err := e.executeInput(ctx, runCtx)
	if err != nil {
		return e.fail(result, runCtx, StageInput, err)
	}
	result.RecordsLoaded = len(records)

	selected, err := e.executeFilter(ctx, runCtx, records)
	if err != nil {
		return e.fail(result, runCtx, StageFilter, err)
	}
	result.RecordsSelected = len(selected)

	table := e.executeTask(runCtx, task, selected)

	if err := e.executeOutput(ctx, runCtx, table, result); err != nil {
		return e.fail(result, runCtx, StageOutput, err)
	}

	result.Status = dataset.StatusSuccess
	result.RowsWritten = table.Len()
	result.CompletedAt = time.Now()
	logger.LogRunEnd(runCtx, dataset.StatusSuccess, result.RowsWritten, result.CompletedAt.Sub(startedAt))
	return result, nil
}

// validate checks the modules before execution.
func (e *Executor) validate() error {
	switch {
	case e.registry == nil:
		return ErrNilRegistry
	case e.inputModule == nil:
		return ErrNilInputModule
	case e.outputModule == nil && !e.opts.DryRun:
		return ErrNilOutputModule
	}
	return nil
}

// fail records err on the result and logs the run end.
func (e *Executor) fail(result *dataset.RunResult, runCtx logger.RunContext, stage string, err error) (*dataset.RunResult, error) {
	classified := errhandling.ClassifyError(err)
	result.CompletedAt = time.Now()
	result.Error = &dataset.RunError{
		Code:    classified.Code,
		Message: err.Error(),
		Stage:   stage,
	}

	logger.LogError("run failed", logger.ErrorContext{
		RunID:        runCtx.RunID,
		Task:         runCtx.Task,
		Stage:        stage,
		ErrorCode:    classified.Code,
		ErrorMessage: classified.Message,
		Err:          err,
		Path:         result.OutputPath,
		Extra:        map[string]interface{}{"category": string(classified.Category)},
	})
	logger.LogRunEnd(runCtx, dataset.StatusError, 0, result.CompletedAt.Sub(result.StartedAt))
	return result, err
}

// moduleCloser interface for modules that can be closed.
type moduleCloser interface {
	Close() error
}

// closeModule closes a module and logs any error.
func (e *Executor) closeModule(runCtx logger.RunContext, stage string, m moduleCloser) {
	if m == nil {
		return
	}
	if err := m.Close(); err != nil {
		logger.Warn("failed to close module",
			slog.String("run_id", runCtx.RunID),
			slog.String("stage", stage),
			slog.String("error", err.Error()),
		)
	}
}

// executeInput loads the Record Store and closes the input module.
func (e *Executor) executeInput(ctx context.Context, runCtx logger.RunContext) ([]dataset.Record, error) {
	stageCtx := runCtx
	stageCtx.Stage = StageInput
	logger.LogStageStart(stageCtx)

	start := time.Now()
	records, err := e.inputModule.Fetch(ctx)
	duration := time.Since(start)
	e.closeModule(runCtx, StageInput, e.inputModule)

	if err != nil {
		logger.LogStageEnd(stageCtx, 0, duration, stageError(err))
		return nil, fmt.Errorf("loading records: %w", err)
	}
	logger.LogStageEnd(stageCtx, len(records), duration, nil)
	return records, nil
}

// executeFilter applies the pre-filter.
func (e *Executor) executeFilter(ctx context.Context, runCtx logger.RunContext, records []dataset.Record) ([]dataset.Record, error) {
	stageCtx := runCtx
	stageCtx.Stage = StageFilter
	logger.LogStageStart(stageCtx)

	start := time.Now()
	selected, err := e.filterModule.Process(ctx, records)
	duration := time.Since(start)

	if err != nil {
		logger.LogStageEnd(stageCtx, len(records), duration, stageError(err))
		return nil, fmt.Errorf("filtering records: %w", err)
	}
	if dropped := len(records) - len(selected); dropped > 0 {
		logger.WithRun(stageCtx).Info("pre-filter applied",
			slog.Int("records_kept", len(selected)),
			slog.Int("records_dropped", dropped),
		)
	}
	logger.LogStageEnd(stageCtx, len(selected), duration, nil)
	return selected, nil
}

// executeTask runs the task handler. Handlers are pure and cannot fail.
func (e *Executor) executeTask(runCtx logger.RunContext, task registry.Task, records []dataset.Record) *dataset.Table {
	stageCtx := runCtx
	stageCtx.Stage = StageTask
	logger.LogStageStart(stageCtx)

	start := time.Now()
	table := task.Handler(records)
	logger.LogStageEnd(stageCtx, table.Len(), time.Since(start), nil)
	return table
}

// executeOutput writes the table, or in dry-run mode keeps a preview
// and leaves the destination untouched.
func (e *Executor) executeOutput(ctx context.Context, runCtx logger.RunContext, table *dataset.Table, result *dataset.RunResult) error {
	stageCtx := runCtx
	stageCtx.Stage = StageOutput

	var preview *output.MemoryModule
	sink := e.outputModule
	if e.opts.DryRun {
		preview = output.NewMemory()
		sink = preview
		stageCtx.ModuleType = "memory"
		logger.Debug("dry-run mode: output redirected to preview",
			slog.String("run_id", runCtx.RunID),
			slog.Int("rows_would_write", table.Len()),
		)
	}
	logger.LogStageStart(stageCtx)

	start := time.Now()
	err := sink.Send(ctx, table)
	duration := time.Since(start)
	if err != nil {
		logger.LogStageEnd(stageCtx, 0, duration, stageError(err))
		return fmt.Errorf("writing output: %w", err)
	}
	if preview != nil {
		result.Preview = preview.Table.Head(e.opts.PreviewRows)
	}
	logger.LogStageEnd(stageCtx, table.Len(), duration, nil)
	return nil
}

func stageError(err error) *logger.StageError {
	classified := errhandling.ClassifyError(err)
	return &logger.StageError{Code: classified.Code, Message: err.Error()}
}
