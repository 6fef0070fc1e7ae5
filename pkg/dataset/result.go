package dataset

import "time"

// Run status values
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// RunResult represents the outcome of a single analyzer run.
type RunResult struct {
	// RunID identifies this run in logs
	RunID string `json:"runId"`

	// Task is the task identifier that was requested ("1".."5")
	Task string `json:"task"`

	// TaskName is the registered name of the task
	TaskName string `json:"taskName,omitempty"`

	// Status is "success" or "error"
	Status string `json:"status"`

	// StartedAt is when the run started
	StartedAt time.Time `json:"startedAt"`

	// CompletedAt is when the run completed
	CompletedAt time.Time `json:"completedAt"`

	// RecordsLoaded is the number of records in the Record Store
	RecordsLoaded int `json:"recordsLoaded"`

	// RecordsSelected is the number of records left after the optional pre-filter
	RecordsSelected int `json:"recordsSelected"`

	// RowsWritten is the number of data rows in the derived table
	RowsWritten int `json:"rowsWritten"`

	// OutputPath is where the derived table was (or would have been) written
	OutputPath string `json:"outputPath,omitempty"`

	// DryRun is true when the output stage was skipped
	DryRun bool `json:"dryRun,omitempty"`

	// Preview holds the leading rows of the derived table in dry-run mode
	Preview *Table `json:"preview,omitempty"`

	// Error contains error details if the run failed
	Error *RunError `json:"error,omitempty"`
}

// RunError contains details about a run failure.
type RunError struct {
	// Code is the error code
	Code string `json:"code"`

	// Message is the human-readable error message
	Message string `json:"message"`

	// Stage is the stage where the error occurred (input, filter, task, output)
	Stage string `json:"stage,omitempty"`
}
