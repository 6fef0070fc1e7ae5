package analysis

import (
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/canectors/spfanalyzer/internal/logger"
	"github.com/canectors/spfanalyzer/pkg/dataset"
)

// Task thresholds and limits.
const (
	TopHoursThreshold      = 40
	TopScoresThreshold     = 85
	TopScoresLimit         = 10
	PerfectAttendanceValue = 100
	ExtracurricularYes     = "Yes"
	TutoringCompareLimit   = 50
)

// TopHours keeps records with Hours_Studied strictly above 40.
func TopHours(records []dataset.Record) []dataset.Record {
	return Filter(records, func(r dataset.Record) bool {
		return r.HoursStudied.Valid && r.HoursStudied.Value > TopHoursThreshold
	})
}

// TopScores keeps records scoring 85 or more and returns the ten best,
// highest score first with ties broken by the lower Record_ID.
func TopScores(records []dataset.Record) []dataset.Record {
	qualified := Filter(records, func(r dataset.Record) bool {
		return r.ExamScore.Valid && r.ExamScore.Value >= TopScoresThreshold
	})
	return Limit(SortStable(qualified, byScoreDescThenID), TopScoresLimit)
}

// PerfectAttendanceWithActivities keeps records with extracurricular
// activities and an attendance of exactly 100.
func PerfectAttendanceWithActivities(records []dataset.Record) []dataset.Record {
	return Filter(records, func(r dataset.Record) bool {
		return r.Extracurricular == ExtracurricularYes &&
			r.Attendance.Valid && r.Attendance.Value == PerfectAttendanceValue
	})
}

// GradeAttendance is the mean attendance of one fine-grained grade.
type GradeAttendance struct {
	Grade Grade
	Count int
	// Sum is the exact attendance total of the group
	Sum decimal.Decimal
	// Mean is Sum/Count rounded to one decimal
	Mean decimal.Decimal
}

type gradedRecord struct {
	grade  Grade
	record dataset.Record
}

// AttendanceByGrade averages attendance per fine-grained grade. Records
// that are ungraded or have no attendance value are left out. Rows follow
// FineGradeOrder and grades with no records are omitted.
func AttendanceByGrade(records []dataset.Record) []GradeAttendance {
	graded := Map(records, func(r dataset.Record) gradedRecord {
		g, _ := FineGrade(r.ExamScore)
		return gradedRecord{grade: g, record: r}
	})
	usable := Filter(graded, func(g gradedRecord) bool {
		return g.grade != "" && g.record.Attendance.Valid
	})
	if excluded := len(records) - len(usable); excluded > 0 {
		logger.Debug("records excluded from attendance aggregate",
			slog.Int("excluded", excluded),
			slog.Int("records", len(records)),
		)
	}

	groups := GroupMean(usable,
		func(g gradedRecord) (Grade, bool) { return g.grade, true },
		func(g gradedRecord) (decimal.Decimal, bool) { return fieldDecimal(g.record.Attendance) },
	)

	result := make([]GradeAttendance, 0, len(groups))
	for _, grade := range FineGradeOrder {
		m, ok := groups[grade]
		if !ok || !m.Valid() {
			continue
		}
		result = append(result, GradeAttendance{
			Grade: grade,
			Count: m.Count,
			Sum:   m.Sum,
			Mean:  m.Rounded(),
		})
	}
	return result
}

// TutoringComparison annotates a record with its coarse grade and how its
// tutoring sessions compare with the grade's average.
type TutoringComparison struct {
	Record dataset.Record
	Grade  Grade
	// GradeAverage is the rounded mean of Tutoring_Sessions over the grade
	GradeAverage decimal.Decimal
	// HasAverage is false when no record of the grade has a session count
	HasAverage bool
	// AboveAverage is true when sessions are strictly above GradeAverage
	AboveAverage bool
}

// TutoringVsGradeAverage compares each record's tutoring sessions with the
// mean of its coarse grade, computed over all records, and returns the 50
// best scoring records, highest score first with ties broken by Record_ID.
func TutoringVsGradeAverage(records []dataset.Record) []TutoringComparison {
	averages := GroupMean(records,
		func(r dataset.Record) (Grade, bool) { return CoarseGrade(r.ExamScore), true },
		func(r dataset.Record) (decimal.Decimal, bool) { return fieldDecimal(r.TutoringSessions) },
	)

	annotated := Map(records, func(r dataset.Record) TutoringComparison {
		c := TutoringComparison{Record: r, Grade: CoarseGrade(r.ExamScore)}
		if m := averages[c.Grade]; m != nil && m.Valid() {
			c.HasAverage = true
			c.GradeAverage = m.Rounded()
			c.AboveAverage = r.TutoringSessions.Valid &&
				r.TutoringSessions.Decimal().GreaterThan(c.GradeAverage)
		}
		return c
	})

	sorted := SortStable(annotated, func(a, b TutoringComparison) int {
		return byScoreDescThenID(a.Record, b.Record)
	})
	return Limit(sorted, TutoringCompareLimit)
}
