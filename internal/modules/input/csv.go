package input

import (
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/canectors/spfanalyzer/internal/errhandling"
	"github.com/canectors/spfanalyzer/internal/logger"
	"github.com/canectors/spfanalyzer/pkg/dataset"
)

// ModuleTypeCSV identifies the CSV input module in logs.
const ModuleTypeCSV = "csv"

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CSVModule loads the Record Store from a CSV file whose header names the
// record columns. Column order is free and extra columns are ignored.
type CSVModule struct {
	path string
}

// NewCSVFile creates a CSV input module reading path.
func NewCSVFile(path string) *CSVModule {
	return &CSVModule{path: path}
}

// Path returns the file the module reads.
func (m *CSVModule) Path() string {
	return m.path
}

// Fetch opens the file and parses every row into a Record.
// A missing or unreadable file is an input error; a header or Record_ID
// problem is a schema error. Unparseable numeric cells are kept as missing.
func (m *CSVModule) Fetch(ctx context.Context) ([]dataset.Record, error) {
	f, err := os.Open(m.path)
	if err != nil {
		return nil, errhandling.NewInputError(fmt.Sprintf("cannot open input %s", m.path), err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			logger.Warn("failed to close input file", slog.String("path", m.path), slog.String("error", cerr.Error()))
		}
	}()

	records, err := ReadRecords(ctx, f)
	if err != nil {
		var classified *errhandling.ClassifiedError
		if errors.As(err, &classified) {
			return nil, err
		}
		return nil, errhandling.NewInputError(fmt.Sprintf("cannot read input %s", m.path), err)
	}

	logger.Debug("input loaded",
		slog.String("module_type", ModuleTypeCSV),
		slog.String("path", m.path),
		slog.Int("record_count", len(records)),
	)
	return records, nil
}

// Close releases resources (the file is closed by Fetch).
func (m *CSVModule) Close() error {
	return nil
}

// ReadRecords parses CSV content into records. Header and Record_ID
// problems are returned as schema errors.
func ReadRecords(ctx context.Context, r io.Reader) ([]dataset.Record, error) {
	br := bufio.NewReader(r)
	if prefix, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(prefix, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}

	cr := csv.NewReader(br)
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, errhandling.NewSchemaError("input is empty", errhandling.ErrEmptyInput)
	}
	if err != nil {
		return nil, err
	}
	idx, err := columnIndex(header)
	if err != nil {
		return nil, err
	}

	records := []dataset.Record{}
	seen := make(map[int64]int)
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		line, _ := cr.FieldPos(0)

		rec, err := parseRow(row, idx)
		if err != nil {
			return nil, errhandling.NewSchemaError(fmt.Sprintf("line %d", line), err)
		}
		if first, dup := seen[rec.RecordID]; dup {
			return nil, errhandling.NewSchemaError(
				fmt.Sprintf("line %d: Record_ID %d already used on line %d", line, rec.RecordID, first),
				errhandling.ErrDuplicateRecordID,
			)
		}
		seen[rec.RecordID] = line
		records = append(records, rec)
	}
	return records, nil
}

type columns struct {
	recordID, hours, score, attendance, extracurricular, tutoring int
}

func columnIndex(header []string) (columns, error) {
	pos := make(map[string]int, len(header))
	for i, name := range header {
		if _, ok := pos[name]; !ok {
			pos[name] = i
		}
	}

	var missing []string
	lookup := func(name string) int {
		i, ok := pos[name]
		if !ok {
			missing = append(missing, name)
			return -1
		}
		return i
	}
	c := columns{
		recordID:        lookup(dataset.ColRecordID),
		hours:           lookup(dataset.ColHoursStudied),
		score:           lookup(dataset.ColExamScore),
		attendance:      lookup(dataset.ColAttendance),
		extracurricular: lookup(dataset.ColExtracurricular),
		tutoring:        lookup(dataset.ColTutoringSessions),
	}
	if len(missing) > 0 {
		return c, errhandling.NewSchemaError(
			fmt.Sprintf("header is missing %s", strings.Join(missing, ", ")),
			errhandling.ErrMissingColumn,
		)
	}
	return c, nil
}

func parseRow(row []string, c columns) (dataset.Record, error) {
	raw := cell(row, c.recordID)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return dataset.Record{}, fmt.Errorf("%w: %q", errhandling.ErrInvalidRecordID, raw)
	}
	return dataset.Record{
		RecordID:         id,
		HoursStudied:     dataset.ParseField(cell(row, c.hours)),
		ExamScore:        dataset.ParseField(cell(row, c.score)),
		Attendance:       dataset.ParseField(cell(row, c.attendance)),
		Extracurricular:  cell(row, c.extracurricular),
		TutoringSessions: dataset.ParseField(cell(row, c.tutoring)),
	}, nil
}

// cell returns the trimmed cell at i; short rows yield empty cells.
func cell(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// Verify CSVModule implements Module
var _ Module = (*CSVModule)(nil)
