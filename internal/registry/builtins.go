package registry

import (
	"github.com/canectors/spfanalyzer/internal/analysis"
	"github.com/canectors/spfanalyzer/internal/modules/output"
)

func registerBuiltinTasks(r *Registry) {
	r.RegisterTask(Task{
		ID:          "1",
		Name:        "top-hours",
		Description: "Students who studied more than 40 hours",
		Handler:     analysis.TopHoursTable,
	})
	r.RegisterTask(Task{
		ID:          "2",
		Name:        "top-scores",
		Description: "Ten best exam scores of at least 85, ties by Record_ID",
		Handler:     analysis.TopScoresTable,
	})
	r.RegisterTask(Task{
		ID:          "3",
		Name:        "perfect-attendance",
		Description: "Students with 100% attendance and extracurricular activities",
		Handler:     analysis.PerfectAttendanceTable,
	})
	r.RegisterTask(Task{
		ID:          "4",
		Name:        "attendance-by-grade",
		Description: "Mean attendance per letter grade (A+ to F)",
		Handler:     analysis.AttendanceByGradeTable,
	})
	r.RegisterTask(Task{
		ID:          "5",
		Name:        "tutoring-vs-grade-average",
		Description: "Tutoring sessions compared with the grade average, top 50 by score",
		Handler:     analysis.TutoringVsGradeAverageTable,
	})
}

func registerBuiltinOutputs(r *Registry) {
	r.RegisterOutput(output.FormatCSV, func(path string) output.Module {
		return output.NewCSVFile(path)
	})
	r.RegisterOutput(output.FormatJSON, func(path string) output.Module {
		return output.NewJSONFile(path)
	})
}
