package output

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"

	"github.com/canectors/spfanalyzer/internal/logger"
	"github.com/canectors/spfanalyzer/pkg/dataset"
)

// JSONModule writes the table as {"columns": [...], "rows": [[...]]}.
type JSONModule struct {
	path string
}

// NewJSONFile creates a JSON output module writing to path.
func NewJSONFile(path string) *JSONModule {
	return &JSONModule{path: path}
}

// Path returns the destination file.
func (m *JSONModule) Path() string {
	return m.path
}

// Send writes the table to the destination file.
func (m *JSONModule) Send(ctx context.Context, table *dataset.Table) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := writeAtomic(m.path, func(w io.Writer) error { return WriteJSON(w, table) }); err != nil {
		return err
	}
	logger.Debug("output written",
		slog.String("module_type", FormatJSON),
		slog.String("path", m.path),
		slog.Int("row_count", table.Len()),
	)
	return nil
}

// Close releases resources (no-op for file output).
func (m *JSONModule) Close() error {
	return nil
}

// WriteJSON encodes the table to w, indented, with a trailing newline.
func WriteJSON(w io.Writer, table *dataset.Table) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(table)
}

// Verify JSONModule implements Module
var _ Module = (*JSONModule)(nil)
