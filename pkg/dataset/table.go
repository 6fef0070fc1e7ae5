package dataset

// Table is a derived table produced by a task. Cells are already rendered
// in their output form.
type Table struct {
	// Columns is the header row, in output order
	Columns []string `json:"columns"`
	// Rows holds one slice of cells per output row
	Rows [][]string `json:"rows"`
}

// NewTable creates an empty table with the given header.
func NewTable(columns ...string) *Table {
	return &Table{
		Columns: columns,
		Rows:    [][]string{},
	}
}

// Append adds a row. The number of cells must match the header.
func (t *Table) Append(cells ...string) {
	t.Rows = append(t.Rows, cells)
}

// Len returns the number of data rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// Head returns a copy of the table truncated to at most n rows.
func (t *Table) Head(n int) *Table {
	if n > len(t.Rows) {
		n = len(t.Rows)
	}
	head := NewTable(t.Columns...)
	head.Rows = append(head.Rows, t.Rows[:n]...)
	return head
}

// Column returns the cells of the named column, or nil if absent.
func (t *Table) Column(name string) []string {
	idx := -1
	for i, c := range t.Columns {
		if c == name {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil
	}
	cells := make([]string, len(t.Rows))
	for i, row := range t.Rows {
		cells[i] = row[idx]
	}
	return cells
}
