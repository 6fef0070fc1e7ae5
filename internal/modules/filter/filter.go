// Package filter provides implementations for filter modules.
// Filter modules narrow the Record Store before a task runs.
package filter

import (
	"context"

	"github.com/canectors/spfanalyzer/pkg/dataset"
)

// Module represents a filter module that selects records.
type Module interface {
	// Process returns the records to keep, in their original order.
	Process(ctx context.Context, records []dataset.Record) ([]dataset.Record, error)
}

// PassThrough keeps every record.
type PassThrough struct{}

// Process returns records unchanged.
func (PassThrough) Process(_ context.Context, records []dataset.Record) ([]dataset.Record, error) {
	if records == nil {
		return []dataset.Record{}, nil
	}
	return records, nil
}

// New returns a Condition for a non-blank expression and PassThrough
// otherwise.
func New(where string) (Module, error) {
	if isWhitespaceOnly(where) {
		return PassThrough{}, nil
	}
	return NewCondition(where)
}
