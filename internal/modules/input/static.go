package input

import (
	"context"
	"log/slog"
	"slices"

	"github.com/canectors/spfanalyzer/internal/logger"
	"github.com/canectors/spfanalyzer/pkg/dataset"
)

// StaticModule serves a fixed record set held in memory. It lets callers
// run tasks over records that did not come from a file.
type StaticModule struct {
	records []dataset.Record
}

// NewStatic creates a static input module over a copy of records.
func NewStatic(records []dataset.Record) *StaticModule {
	return &StaticModule{records: slices.Clone(records)}
}

// Fetch returns a copy of the held records.
func (m *StaticModule) Fetch(ctx context.Context) ([]dataset.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	logger.Debug("static input serving records", slog.Int("record_count", len(m.records)))
	out := slices.Clone(m.records)
	if out == nil {
		out = []dataset.Record{}
	}
	return out, nil
}

// Close releases resources (no-op for static input).
func (m *StaticModule) Close() error {
	return nil
}

// Verify StaticModule implements Module
var _ Module = (*StaticModule)(nil)
