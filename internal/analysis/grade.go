package analysis

import "github.com/canectors/spfanalyzer/pkg/dataset"

// Grade is a letter grade derived from an exam score.
type Grade string

// Fine-grained grades, in rank order.
const (
	GradeAPlus  Grade = "A+"
	GradeA      Grade = "A"
	GradeAMinus Grade = "A-"
	GradeBPlus  Grade = "B+"
	GradeB      Grade = "B"
	GradeBMinus Grade = "B-"
	GradeCPlus  Grade = "C+"
	GradeC      Grade = "C"
	GradeD      Grade = "D"
	GradeF      Grade = "F"
)

// band maps every score at or above Min to Grade.
type band struct {
	Min   float64
	Grade Grade
}

// fineBands is ordered from the highest threshold down.
var fineBands = []band{
	{90, GradeAPlus},
	{85, GradeA},
	{80, GradeAMinus},
	{77, GradeBPlus},
	{73, GradeB},
	{70, GradeBMinus},
	{65, GradeCPlus},
	{60, GradeC},
	{50, GradeD},
	{0, GradeF},
}

// FineGradeOrder is the output order of the attendance aggregate.
var FineGradeOrder = []Grade{
	GradeAPlus, GradeA, GradeAMinus,
	GradeBPlus, GradeB, GradeBMinus,
	GradeCPlus, GradeC,
	GradeD, GradeF,
}

// FineGrade assigns one of the ten fine-grained grades. Scores that are
// missing or outside [0, 100] are ungraded and ok is false.
func FineGrade(score dataset.Field) (grade Grade, ok bool) {
	if !score.Valid || score.Value < 0 || score.Value > 100 {
		return "", false
	}
	for _, b := range fineBands {
		if score.Value >= b.Min {
			return b.Grade, true
		}
	}
	return "", false
}

// CoarseGrade assigns one of the five coarse grades A, B, C, D, F.
//
// There is no ungraded outcome: anything that does not reach a higher band,
// including missing and negative scores, is F, and scores above 100 are A.
func CoarseGrade(score dataset.Field) Grade {
	switch {
	case !score.Valid:
		return GradeF
	case score.Value >= 80:
		return GradeA
	case score.Value >= 70:
		return GradeB
	case score.Value >= 60:
		return GradeC
	case score.Value >= 50:
		return GradeD
	default:
		return GradeF
	}
}
