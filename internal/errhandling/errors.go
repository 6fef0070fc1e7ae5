// Package errhandling provides error types and classification for analyzer runs.
//
// Only two kinds of failure reach the process boundary: failures to set up
// or load a run (config, input, schema, output) and an unknown task
// selection. Per-record data problems are handled inside the tasks and
// never become errors.
package errhandling

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// ErrorCategory represents the type/category of an error.
type ErrorCategory string

// Error categories for classification.
const (
	// CategoryConfig represents invalid flags, environment or config file content.
	CategoryConfig ErrorCategory = "config"

	// CategoryInput represents a missing or unreadable input file.
	CategoryInput ErrorCategory = "input"

	// CategorySchema represents an input table that does not match the record schema.
	CategorySchema ErrorCategory = "schema"

	// CategorySelection represents an unknown task identifier.
	CategorySelection ErrorCategory = "selection"

	// CategoryOutput represents a failure to write the derived table.
	CategoryOutput ErrorCategory = "output"

	// CategoryUnknown represents unclassified errors.
	CategoryUnknown ErrorCategory = "unknown"
)

// Process exit codes.
const (
	ExitSuccess        = 0
	ExitSelectionError = 1
	ExitConfigError    = 2
	ExitRuntimeError   = 3
)

// Sentinel errors.
var (
	// ErrUnknownTask is returned when a task identifier is not registered.
	ErrUnknownTask = errors.New("unknown task")

	// ErrEmptyInput is returned when the input has no header row.
	ErrEmptyInput = errors.New("input has no header row")

	// ErrMissingColumn is returned when a required column is absent from the header.
	ErrMissingColumn = errors.New("required column missing")

	// ErrInvalidRecordID is returned when a Record_ID cell is not an integer.
	ErrInvalidRecordID = errors.New("invalid Record_ID")

	// ErrDuplicateRecordID is returned when a Record_ID appears twice.
	ErrDuplicateRecordID = errors.New("duplicate Record_ID")
)

// ClassifiedError wraps an error with classification metadata.
type ClassifiedError struct {
	// Category is the error classification category.
	Category ErrorCategory

	// Code is a stable machine-readable code (e.g. INPUT_NOT_FOUND).
	Code string

	// Message is a human-readable error message.
	Message string

	// OriginalErr is the underlying error that was classified.
	OriginalErr error
}

// Error implements the error interface.
func (e *ClassifiedError) Error() string {
	if e.OriginalErr != nil && e.Message != e.OriginalErr.Error() {
		return fmt.Sprintf("%s error: %s: %v", e.Category, e.Message, e.OriginalErr)
	}
	return fmt.Sprintf("%s error: %s", e.Category, e.Message)
}

// Unwrap returns the original error for use with errors.Is and errors.As.
func (e *ClassifiedError) Unwrap() error {
	return e.OriginalErr
}

// NewConfigError creates a config error.
func NewConfigError(message string, err error) *ClassifiedError {
	return &ClassifiedError{Category: CategoryConfig, Code: "INVALID_CONFIG", Message: message, OriginalErr: err}
}

// NewInputError creates an input error. A missing file gets the
// INPUT_NOT_FOUND code.
func NewInputError(message string, err error) *ClassifiedError {
	code := "INPUT_UNREADABLE"
	if errors.Is(err, fs.ErrNotExist) {
		code = "INPUT_NOT_FOUND"
	}
	return &ClassifiedError{Category: CategoryInput, Code: code, Message: message, OriginalErr: err}
}

// NewSchemaError creates a schema error.
func NewSchemaError(message string, err error) *ClassifiedError {
	return &ClassifiedError{Category: CategorySchema, Code: "SCHEMA_MISMATCH", Message: message, OriginalErr: err}
}

// NewSelectionError creates an error for an unknown task identifier.
func NewSelectionError(task string) *ClassifiedError {
	return &ClassifiedError{
		Category:    CategorySelection,
		Code:        "UNKNOWN_TASK",
		Message:     fmt.Sprintf("task %q is not defined", task),
		OriginalErr: ErrUnknownTask,
	}
}

// NewOutputError creates an output error.
func NewOutputError(message string, err error) *ClassifiedError {
	return &ClassifiedError{Category: CategoryOutput, Code: "OUTPUT_FAILED", Message: message, OriginalErr: err}
}

// ClassifyError returns err as a ClassifiedError. Errors that are not
// already classified become CategoryUnknown, except file system errors,
// which are treated as input errors.
func ClassifyError(err error) *ClassifiedError {
	if err == nil {
		return nil
	}

	var classified *ClassifiedError
	if errors.As(err, &classified) {
		return classified
	}

	var pathErr *os.PathError
	if errors.As(err, &pathErr) {
		return NewInputError(pathErr.Path, err)
	}

	return &ClassifiedError{
		Category:    CategoryUnknown,
		Code:        "UNKNOWN",
		Message:     err.Error(),
		OriginalErr: err,
	}
}

// GetErrorCategory returns the category of err, or CategoryUnknown.
func GetErrorCategory(err error) ErrorCategory {
	if c := ClassifyError(err); c != nil {
		return c.Category
	}
	return CategoryUnknown
}

// ExitCode maps an error to the process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	switch GetErrorCategory(err) {
	case CategorySelection:
		return ExitSelectionError
	case CategoryConfig:
		return ExitConfigError
	default:
		return ExitRuntimeError
	}
}
