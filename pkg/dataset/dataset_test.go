package dataset

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseField(t *testing.T) {
	tests := []struct {
		raw       string
		wantValid bool
		wantValue float64
		wantOut   string
	}{
		{"85", true, 85, "85"},
		{" 72.5 ", true, 72.5, "72.5"},
		{"-3", true, -3, "-3"},
		{"1e2", true, 100, "1e2"},
		{"", false, 0, ""},
		{"N/A", false, 0, ""},
		{"abc", false, 0, ""},
		{"NaN", false, 0, ""},
		{"inf", false, 0, ""},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			f := ParseField(tt.raw)
			if f.Valid != tt.wantValid || f.Value != tt.wantValue {
				t.Errorf("ParseField(%q) = %+v", tt.raw, f)
			}
			if got := f.String(); got != tt.wantOut {
				t.Errorf("String() = %q, want %q", got, tt.wantOut)
			}
		})
	}
}

func TestFieldDecimalUsesSourceText(t *testing.T) {
	if got := ParseField("80.15").Decimal().String(); got != "80.15" {
		t.Errorf("Decimal() = %s, want 80.15", got)
	}
	if got := Number(0.1).Decimal().String(); got != "0.1" {
		t.Errorf("Decimal() = %s, want 0.1", got)
	}
}

func TestRecordEnv(t *testing.T) {
	r := Record{
		RecordID:         7,
		HoursStudied:     Number(12),
		ExamScore:        Missing(),
		Attendance:       Number(100),
		Extracurricular:  "Yes",
		TutoringSessions: Number(0),
	}
	want := map[string]interface{}{
		ColRecordID:         int64(7),
		ColHoursStudied:     12.0,
		ColExamScore:        nil,
		ColAttendance:       100.0,
		ColExtracurricular:  "Yes",
		ColTutoringSessions: 0.0,
	}
	if diff := cmp.Diff(want, r.Env()); diff != "" {
		t.Errorf("Env() mismatch (-want +got):\n%s", diff)
	}
	if r.ID() != "7" {
		t.Errorf("ID() = %q", r.ID())
	}
}

func TestTable(t *testing.T) {
	table := NewTable("a", "b")
	table.Append("1", "x")
	table.Append("2", "y")
	table.Append("3", "z")

	if table.Len() != 3 {
		t.Errorf("Len() = %d", table.Len())
	}
	if diff := cmp.Diff([]string{"x", "y", "z"}, table.Column("b")); diff != "" {
		t.Errorf("Column() mismatch (-want +got):\n%s", diff)
	}
	if table.Column("missing") != nil {
		t.Error("Column() of unknown name should be nil")
	}

	head := table.Head(2)
	head.Append("4", "w")
	if table.Len() != 3 || head.Len() != 3 {
		t.Errorf("Head() should not share rows: table=%d head=%d", table.Len(), head.Len())
	}
	if table.Head(10).Len() != 3 {
		t.Error("Head() beyond length should return all rows")
	}

	var nilTable *Table
	if nilTable.Len() != 0 {
		t.Error("nil table should have zero rows")
	}
}
