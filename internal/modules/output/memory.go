package output

import (
	"context"

	"github.com/canectors/spfanalyzer/pkg/dataset"
)

// MemoryModule keeps the last table sent to it. It backs dry runs and
// tests.
type MemoryModule struct {
	Table *dataset.Table
	Sends int
}

// NewMemory creates an in-memory output module.
func NewMemory() *MemoryModule {
	return &MemoryModule{}
}

// Send stores a copy of the table.
func (m *MemoryModule) Send(ctx context.Context, table *dataset.Table) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.Table = table.Head(table.Len())
	m.Sends++
	return nil
}

// Close releases resources (no-op for memory output).
func (m *MemoryModule) Close() error {
	return nil
}

// Verify MemoryModule implements Module
var _ Module = (*MemoryModule)(nil)
