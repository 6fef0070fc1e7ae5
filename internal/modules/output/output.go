// Package output provides implementations for output modules.
// Output modules write the derived table of a task to its destination.
package output

import (
	"context"

	"github.com/canectors/spfanalyzer/pkg/dataset"
)

// Output formats.
const (
	FormatCSV  = "csv"
	FormatJSON = "json"
)

// Module represents an output module that writes a derived table.
type Module interface {
	// Send writes the table, replacing any previous content.
	Send(ctx context.Context, table *dataset.Table) error

	// Close releases any resources held by the module.
	Close() error
}
