package analysis

import "github.com/canectors/spfanalyzer/pkg/dataset"

// Derived column names.
const (
	ColGrade                = "Grade"
	ColGradeAverageTutoring = "Grade_Average_Tutoring_Sessions"
	ColAboveAverage         = "Above_Average"
)

// Handler computes a derived table from the Record Store.
type Handler func(records []dataset.Record) *dataset.Table

// TopHoursTable renders TopHours as Record_ID, Hours_Studied, Exam_Score.
func TopHoursTable(records []dataset.Record) *dataset.Table {
	return hoursAndScore(TopHours(records))
}

// TopScoresTable renders TopScores as Record_ID, Hours_Studied, Exam_Score.
func TopScoresTable(records []dataset.Record) *dataset.Table {
	return hoursAndScore(TopScores(records))
}

func hoursAndScore(records []dataset.Record) *dataset.Table {
	t := dataset.NewTable(dataset.ColRecordID, dataset.ColHoursStudied, dataset.ColExamScore)
	for _, r := range records {
		t.Append(r.ID(), r.HoursStudied.String(), r.ExamScore.String())
	}
	return t
}

// PerfectAttendanceTable renders PerfectAttendanceWithActivities as
// Record_ID, Exam_Score.
func PerfectAttendanceTable(records []dataset.Record) *dataset.Table {
	t := dataset.NewTable(dataset.ColRecordID, dataset.ColExamScore)
	for _, r := range PerfectAttendanceWithActivities(records) {
		t.Append(r.ID(), r.ExamScore.String())
	}
	return t
}

// AttendanceByGradeTable renders AttendanceByGrade as Grade, Attendance.
func AttendanceByGradeTable(records []dataset.Record) *dataset.Table {
	t := dataset.NewTable(ColGrade, dataset.ColAttendance)
	for _, g := range AttendanceByGrade(records) {
		t.Append(string(g.Grade), g.Mean.StringFixed(MeanPrecision))
	}
	return t
}

// TutoringVsGradeAverageTable renders TutoringVsGradeAverage.
func TutoringVsGradeAverageTable(records []dataset.Record) *dataset.Table {
	t := dataset.NewTable(
		dataset.ColRecordID,
		dataset.ColTutoringSessions,
		ColGradeAverageTutoring,
		ColAboveAverage,
		dataset.ColExamScore,
		ColGrade,
	)
	for _, c := range TutoringVsGradeAverage(records) {
		avg := ""
		if c.HasAverage {
			avg = c.GradeAverage.StringFixed(MeanPrecision)
		}
		t.Append(
			c.Record.ID(),
			c.Record.TutoringSessions.String(),
			avg,
			formatBool(c.AboveAverage),
			c.Record.ExamScore.String(),
			string(c.Grade),
		)
	}
	return t
}

func formatBool(b bool) string {
	if b {
		return "True"
	}
	return "False"
}
