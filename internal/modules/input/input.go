// Package input provides implementations for input modules.
// Input modules load the student Record Store that every task reads.
package input

import (
	"context"

	"github.com/canectors/spfanalyzer/pkg/dataset"
)

// Module represents an input module that loads records from a source.
type Module interface {
	// Fetch loads the full record set.
	// The context can be used to cancel a long read.
	Fetch(ctx context.Context) ([]dataset.Record, error)
	// Close releases any resources held by the module.
	Close() error
}
