package output

import (
	"context"
	"encoding/csv"
	"io"
	"log/slog"

	"github.com/canectors/spfanalyzer/internal/logger"
	"github.com/canectors/spfanalyzer/pkg/dataset"
)

// CSVModule writes the table as CSV: one header row, no index column.
type CSVModule struct {
	path string
}

// NewCSVFile creates a CSV output module writing to path.
func NewCSVFile(path string) *CSVModule {
	return &CSVModule{path: path}
}

// Path returns the destination file.
func (m *CSVModule) Path() string {
	return m.path
}

// Send writes the table to the destination file.
func (m *CSVModule) Send(ctx context.Context, table *dataset.Table) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := writeAtomic(m.path, func(w io.Writer) error { return WriteCSV(w, table) }); err != nil {
		return err
	}
	logger.Debug("output written",
		slog.String("module_type", FormatCSV),
		slog.String("path", m.path),
		slog.Int("row_count", table.Len()),
	)
	return nil
}

// Close releases resources (no-op for file output).
func (m *CSVModule) Close() error {
	return nil
}

// WriteCSV encodes the table to w.
func WriteCSV(w io.Writer, table *dataset.Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(table.Columns); err != nil {
		return err
	}
	if err := cw.WriteAll(table.Rows); err != nil {
		return err
	}
	return cw.Error()
}

// Verify CSVModule implements Module
var _ Module = (*CSVModule)(nil)
