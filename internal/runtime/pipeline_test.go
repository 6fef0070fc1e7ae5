package runtime

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/canectors/spfanalyzer/internal/errhandling"
	"github.com/canectors/spfanalyzer/internal/modules/filter"
	"github.com/canectors/spfanalyzer/internal/modules/input"
	"github.com/canectors/spfanalyzer/internal/modules/output"
	"github.com/canectors/spfanalyzer/internal/registry"
	"github.com/canectors/spfanalyzer/pkg/dataset"
)

// =============================================================================
// Mock Implementations for Testing
// =============================================================================

// MockInputModule is a test mock for input.Module interface
type MockInputModule struct {
	records     []dataset.Record
	err         error
	fetchCalled bool
	closed      bool
}

func (m *MockInputModule) Fetch(_ context.Context) ([]dataset.Record, error) {
	m.fetchCalled = true
	if m.err != nil {
		return nil, m.err
	}
	return m.records, nil
}

func (m *MockInputModule) Close() error {
	m.closed = true
	return nil
}

var _ input.Module = (*MockInputModule)(nil)

// MockOutputModule is a test mock for output.Module interface
type MockOutputModule struct {
	err    error
	sent   *dataset.Table
	calls  int
	closed bool
}

func (m *MockOutputModule) Send(_ context.Context, table *dataset.Table) error {
	m.calls++
	if m.err != nil {
		return m.err
	}
	m.sent = table
	return nil
}

func (m *MockOutputModule) Close() error {
	m.closed = true
	return nil
}

func (m *MockOutputModule) Path() string {
	return "mock.csv"
}

var _ output.Module = (*MockOutputModule)(nil)

// MockFilterModule is a test mock for filter.Module interface
type MockFilterModule struct {
	err error
}

func (m *MockFilterModule) Process(_ context.Context, records []dataset.Record) ([]dataset.Record, error) {
	if m.err != nil {
		return nil, m.err
	}
	return records, nil
}

var _ filter.Module = (*MockFilterModule)(nil)

func student(id int64, hours, score, attendance float64, extra string, tutoring float64) dataset.Record {
	return dataset.Record{
		RecordID:         id,
		HoursStudied:     dataset.Number(hours),
		ExamScore:        dataset.Number(score),
		Attendance:       dataset.Number(attendance),
		Extracurricular:  extra,
		TutoringSessions: dataset.Number(tutoring),
	}
}

func sampleRecords() []dataset.Record {
	return []dataset.Record{
		student(1, 45, 85, 100, "Yes", 2),
		student(2, 30, 85, 100, "No", 1),
		student(3, 41, 90, 95, "Yes", 0),
		student(4, 12, 55, 100, "Yes", 4),
	}
}

// =============================================================================
// Tests
// =============================================================================

func TestExecuteSuccess(t *testing.T) {
	in := &MockInputModule{records: sampleRecords()}
	out := &MockOutputModule{}
	exec := NewExecutor(registry.New(), in, nil, out, Options{RunID: "run-1"})

	result, err := exec.Execute(context.Background(), "2")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	if result.Status != dataset.StatusSuccess || result.RunID != "run-1" || result.TaskName != "top-scores" {
		t.Errorf("unexpected result: %+v", result)
	}
	if result.RecordsLoaded != 4 || result.RecordsSelected != 4 || result.RowsWritten != 3 {
		t.Errorf("unexpected counts: %+v", result)
	}
	if result.OutputPath != "mock.csv" {
		t.Errorf("OutputPath = %q", result.OutputPath)
	}
	if diff := cmp.Diff([]string{"3", "1", "2"}, out.sent.Column(dataset.ColRecordID)); diff != "" {
		t.Errorf("written rows mismatch (-want +got):\n%s", diff)
	}
	if !in.closed || !out.closed {
		t.Error("expected modules to be closed")
	}
	if result.CompletedAt.Before(result.StartedAt) {
		t.Error("CompletedAt before StartedAt")
	}
}

func TestExecuteGeneratesRunID(t *testing.T) {
	exec := NewExecutor(registry.New(), &MockInputModule{}, nil, &MockOutputModule{}, Options{})
	first, _ := exec.Execute(context.Background(), "1")
	second, _ := exec.Execute(context.Background(), "1")
	if first.RunID == "" || first.RunID == second.RunID {
		t.Errorf("expected distinct run ids, got %q and %q", first.RunID, second.RunID)
	}
}

func TestExecuteUnknownTask(t *testing.T) {
	in := &MockInputModule{records: sampleRecords()}
	out := &MockOutputModule{}
	exec := NewExecutor(registry.New(), in, nil, out, Options{})

	result, err := exec.Execute(context.Background(), "6")
	if !errors.Is(err, errhandling.ErrUnknownTask) {
		t.Fatalf("expected ErrUnknownTask, got %v", err)
	}
	if errhandling.ExitCode(err) != errhandling.ExitSelectionError {
		t.Errorf("ExitCode() = %d", errhandling.ExitCode(err))
	}
	if result.Status != dataset.StatusError || result.Error == nil || result.Error.Stage != StageSelect {
		t.Errorf("unexpected result: %+v", result)
	}
	if in.fetchCalled || out.calls != 0 {
		t.Error("no stage should run for an unknown task")
	}
}

func TestExecuteStageFailures(t *testing.T) {
	inputErr := errhandling.NewSchemaError("header is missing Attendance", errhandling.ErrMissingColumn)
	filterErr := errors.New("filter exploded")
	outputErr := errhandling.NewOutputError("disk full", errors.New("ENOSPC"))

	tests := []struct {
		name      string
		in        *MockInputModule
		flt       filter.Module
		out       *MockOutputModule
		wantStage string
		wantCode  string
		wantSends int
	}{
		{
			name:      "input",
			in:        &MockInputModule{err: inputErr},
			out:       &MockOutputModule{},
			wantStage: StageInput,
			wantCode:  "SCHEMA_MISMATCH",
		},
		{
			name:      "filter",
			in:        &MockInputModule{records: sampleRecords()},
			flt:       &MockFilterModule{err: filterErr},
			out:       &MockOutputModule{},
			wantStage: StageFilter,
			wantCode:  "UNKNOWN",
		},
		{
			name:      "output",
			in:        &MockInputModule{records: sampleRecords()},
			out:       &MockOutputModule{err: outputErr},
			wantStage: StageOutput,
			wantCode:  "OUTPUT_FAILED",
			wantSends: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exec := NewExecutor(registry.New(), tt.in, tt.flt, tt.out, Options{})
			result, err := exec.Execute(context.Background(), "1")
			if err == nil {
				t.Fatal("expected an error")
			}
			if result.Status != dataset.StatusError {
				t.Errorf("Status = %q", result.Status)
			}
			if result.Error.Stage != tt.wantStage || result.Error.Code != tt.wantCode {
				t.Errorf("Error = %+v, want stage %s code %s", result.Error, tt.wantStage, tt.wantCode)
			}
			if tt.out.calls != tt.wantSends {
				t.Errorf("output sends = %d, want %d", tt.out.calls, tt.wantSends)
			}
			if result.RowsWritten != 0 {
				t.Errorf("RowsWritten = %d, want 0", result.RowsWritten)
			}
			if !tt.in.closed {
				t.Error("input module should be closed")
			}
		})
	}
}

func TestExecuteDryRun(t *testing.T) {
	records := make([]dataset.Record, 0, 30)
	for i := int64(1); i <= 30; i++ {
		records = append(records, student(i, 50, 70, 90, "No", 1))
	}
	out := &MockOutputModule{}
	exec := NewExecutor(registry.New(), &MockInputModule{records: records}, nil, out, Options{DryRun: true, PreviewRows: 5})

	result, err := exec.Execute(context.Background(), "1")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if out.calls != 0 {
		t.Error("dry run must not write output")
	}
	if !result.DryRun || result.RowsWritten != 30 {
		t.Errorf("unexpected result: %+v", result)
	}
	if result.Preview.Len() != 5 {
		t.Errorf("preview rows = %d, want 5", result.Preview.Len())
	}
}

func TestExecuteDryRunWithoutOutput(t *testing.T) {
	exec := NewExecutor(registry.New(), &MockInputModule{records: sampleRecords()}, nil, nil, Options{DryRun: true})
	result, err := exec.Execute(context.Background(), "4")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if result.Preview == nil || result.Preview.Columns[0] != "Grade" {
		t.Errorf("unexpected preview: %+v", result.Preview)
	}
}

func TestExecuteMissingModules(t *testing.T) {
	tests := []struct {
		name string
		exec *Executor
		want error
	}{
		{"registry", NewExecutor(nil, &MockInputModule{}, nil, &MockOutputModule{}, Options{}), ErrNilRegistry},
		{"input", NewExecutor(registry.New(), nil, nil, &MockOutputModule{}, Options{}), ErrNilInputModule},
		{"output", NewExecutor(registry.New(), &MockInputModule{}, nil, nil, Options{}), ErrNilOutputModule},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := tt.exec.Execute(context.Background(), "1")
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
			if result == nil || result.Error == nil {
				t.Error("expected a failed result")
			}
		})
	}
}

func TestExecutePreFilterDefinesWholeTable(t *testing.T) {
	// Without the pre-filter, grade A's tutoring mean includes record 3.
	records := []dataset.Record{
		student(1, 10, 85, 90, "No", 2),
		student(2, 10, 82, 90, "No", 1),
		student(3, 10, 95, 90, "Yes", 9),
	}
	cond, err := filter.NewCondition("Extracurricular_Activities == 'No'")
	if err != nil {
		t.Fatal(err)
	}
	out := output.NewMemory()
	exec := NewExecutor(registry.New(), input.NewStatic(records), cond, out, Options{})

	result, err := exec.Execute(context.Background(), "5")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if result.RecordsLoaded != 3 || result.RecordsSelected != 2 {
		t.Errorf("unexpected counts: %+v", result)
	}
	if diff := cmp.Diff([]string{"1.5", "1.5"}, out.Table.Column("Grade_Average_Tutoring_Sessions")); diff != "" {
		t.Errorf("group averages mismatch (-want +got):\n%s", diff)
	}
}

func TestExecuteEndToEndFiles(t *testing.T) {
	dir := t.TempDir()
	inPath := filepath.Join(dir, "students.csv")
	outPath := filepath.Join(dir, "output.csv")
	content := "Record_ID,Hours_Studied,Exam_Score,Attendance,Extracurricular_Activities,Tutoring_Sessions\n" +
		"1,20,88,100,Yes,1\n" +
		"2,25,N/A,100,Yes,0\n" +
		"3,15,64,99.999,Yes,2\n"
	if err := os.WriteFile(inPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	exec := NewExecutor(registry.New(), input.NewCSVFile(inPath), nil, output.NewCSVFile(outPath), Options{})
	if _, err := exec.Execute(context.Background(), "3"); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	got, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("output not written: %v", err)
	}
	want := "Record_ID,Exam_Score\n1,88\n2,\n"
	if diff := cmp.Diff(want, string(got)); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestExecuteFatalInputLeavesOutputUntouched(t *testing.T) {
	dir := t.TempDir()
	outPath := filepath.Join(dir, "output.csv")
	if err := os.WriteFile(outPath, []byte("previous\n"), 0644); err != nil {
		t.Fatal(err)
	}

	exec := NewExecutor(registry.New(), input.NewCSVFile(filepath.Join(dir, "missing.csv")), nil, output.NewCSVFile(outPath), Options{})
	_, err := exec.Execute(context.Background(), "1")
	if errhandling.GetErrorCategory(err) != errhandling.CategoryInput {
		t.Fatalf("expected an input error, got %v", err)
	}
	if !strings.Contains(err.Error(), "missing.csv") {
		t.Errorf("error should name the file: %v", err)
	}

	got, _ := os.ReadFile(outPath)
	if string(got) != "previous\n" {
		t.Errorf("output was modified: %q", got)
	}
}
