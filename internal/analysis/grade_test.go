package analysis

import (
	"testing"

	"github.com/canectors/spfanalyzer/pkg/dataset"
)

func TestFineGrade(t *testing.T) {
	tests := []struct {
		name   string
		score  dataset.Field
		want   Grade
		wantOK bool
	}{
		{"perfect score", dataset.Number(100), GradeAPlus, true},
		{"A+ lower bound", dataset.Number(90), GradeAPlus, true},
		{"just below A+", dataset.Number(89.99), GradeA, true},
		{"A lower bound", dataset.Number(85), GradeA, true},
		{"A- lower bound", dataset.Number(80), GradeAMinus, true},
		{"B+ lower bound", dataset.Number(77), GradeBPlus, true},
		{"B lower bound", dataset.Number(73), GradeB, true},
		{"B- lower bound", dataset.Number(70), GradeBMinus, true},
		{"C+ lower bound", dataset.Number(65), GradeCPlus, true},
		{"C lower bound", dataset.Number(60), GradeC, true},
		{"D lower bound", dataset.Number(50), GradeD, true},
		{"just below D", dataset.Number(49.9), GradeF, true},
		{"zero", dataset.Number(0), GradeF, true},
		{"negative is ungraded", dataset.Number(-1), "", false},
		{"above 100 is ungraded", dataset.Number(100.5), "", false},
		{"missing is ungraded", dataset.ParseField("N/A"), "", false},
		{"empty is ungraded", dataset.ParseField(""), "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := FineGrade(tt.score)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("FineGrade(%q) = (%q, %v), want (%q, %v)", tt.score.Raw, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestCoarseGrade(t *testing.T) {
	tests := []struct {
		name  string
		score dataset.Field
		want  Grade
	}{
		{"A lower bound", dataset.Number(80), GradeA},
		{"above 100 still A", dataset.Number(150), GradeA},
		{"just below A", dataset.Number(79.9), GradeB},
		{"B lower bound", dataset.Number(70), GradeB},
		{"C lower bound", dataset.Number(60), GradeC},
		{"D lower bound", dataset.Number(50), GradeD},
		{"below D", dataset.Number(49), GradeF},
		{"negative falls through to F", dataset.Number(-5), GradeF},
		{"unparseable falls through to F", dataset.ParseField("N/A"), GradeF},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CoarseGrade(tt.score); got != tt.want {
				t.Errorf("CoarseGrade(%q) = %q, want %q", tt.score.Raw, got, tt.want)
			}
		})
	}
}

func TestBandTablesAreDistinct(t *testing.T) {
	// 85 is "A" in both tables but 82 is "A-" only in the fine table.
	score := dataset.Number(82)
	fine, _ := FineGrade(score)
	if fine != GradeAMinus {
		t.Errorf("FineGrade(82) = %q, want %q", fine, GradeAMinus)
	}
	if coarse := CoarseGrade(score); coarse != GradeA {
		t.Errorf("CoarseGrade(82) = %q, want %q", coarse, GradeA)
	}
}
