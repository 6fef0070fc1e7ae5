package output

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/canectors/spfanalyzer/internal/errhandling"
	"github.com/canectors/spfanalyzer/pkg/dataset"
)

func sampleTable() *dataset.Table {
	t := dataset.NewTable("Record_ID", "Exam_Score", "Note")
	t.Append("3", "90", "plain")
	t.Append("1", "", "needs, quoting")
	return t
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, sampleTable()); err != nil {
		t.Fatalf("WriteCSV() error = %v", err)
	}
	want := "Record_ID,Exam_Score,Note\n3,90,plain\n1,,\"needs, quoting\"\n"
	if diff := cmp.Diff(want, buf.String()); diff != "" {
		t.Errorf("WriteCSV() mismatch (-want +got):\n%s", diff)
	}
}

func TestWriteCSVHeaderOnly(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, dataset.NewTable("Grade", "Attendance")); err != nil {
		t.Fatalf("WriteCSV() error = %v", err)
	}
	if got := buf.String(); got != "Grade,Attendance\n" {
		t.Errorf("WriteCSV() = %q", got)
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, dataset.NewTable("Grade")); err != nil {
		t.Fatalf("WriteJSON() error = %v", err)
	}
	var decoded map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	rows, ok := decoded["rows"].([]interface{})
	if !ok || len(rows) != 0 {
		t.Errorf("expected an empty rows array, got %v", decoded["rows"])
	}
	if !strings.HasSuffix(buf.String(), "\n") {
		t.Error("expected a trailing newline")
	}
}

func TestFileModulesSend(t *testing.T) {
	tests := []struct {
		name   string
		module func(path string) Module
		file   string
	}{
		{"csv", func(p string) Module { return NewCSVFile(p) }, "out.csv"},
		{"json", func(p string) Module { return NewJSONFile(p) }, "out.json"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			path := filepath.Join(dir, "nested", tt.file)
			m := tt.module(path)
			defer func() { _ = m.Close() }()

			if err := m.Send(context.Background(), sampleTable()); err != nil {
				t.Fatalf("Send() error = %v", err)
			}
			content, err := os.ReadFile(path)
			if err != nil {
				t.Fatalf("output not written: %v", err)
			}
			if !bytes.Contains(content, []byte("needs, quoting")) {
				t.Errorf("unexpected content: %s", content)
			}

			entries, _ := os.ReadDir(filepath.Dir(path))
			if len(entries) != 1 {
				t.Errorf("expected only the output file, found %d entries", len(entries))
			}
		})
	}
}

func TestSendOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "output.csv")
	if err := os.WriteFile(path, []byte("stale content from an earlier run\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := NewCSVFile(path).Send(context.Background(), dataset.NewTable("Grade", "Attendance")); err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	content, _ := os.ReadFile(path)
	if string(content) != "Grade,Attendance\n" {
		t.Errorf("output not replaced: %q", content)
	}
}

func TestSendFailureIsOutputError(t *testing.T) {
	dir := t.TempDir()
	// A directory in place of the file makes the final rename fail.
	path := filepath.Join(dir, "taken")
	if err := os.MkdirAll(filepath.Join(path, "child"), 0755); err != nil {
		t.Fatal(err)
	}

	err := NewCSVFile(path).Send(context.Background(), sampleTable())
	if err == nil {
		t.Fatal("expected an error")
	}
	if got := errhandling.GetErrorCategory(err); got != errhandling.CategoryOutput {
		t.Errorf("category = %s, want output", got)
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("temp file left behind: %d entries", len(entries))
	}
}

func TestSendCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	path := filepath.Join(t.TempDir(), "out.csv")
	if err := NewCSVFile(path).Send(ctx, sampleTable()); err == nil {
		t.Fatal("expected an error")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("cancelled send must not create the file")
	}
}

func TestMemoryModule(t *testing.T) {
	m := NewMemory()
	table := sampleTable()
	if err := m.Send(context.Background(), table); err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	table.Append("9", "10", "later")

	if m.Sends != 1 || m.Table.Len() != 2 {
		t.Errorf("unexpected state: sends=%d rows=%d", m.Sends, m.Table.Len())
	}
}
