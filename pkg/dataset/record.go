// Package dataset provides the public types shared by the analyzer: the
// student record read from the input table, the derived table written by a
// task, and the result of a run.
package dataset

import (
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Input column names. Lookups are exact and case-sensitive.
const (
	ColRecordID         = "Record_ID"
	ColHoursStudied     = "Hours_Studied"
	ColExamScore        = "Exam_Score"
	ColAttendance       = "Attendance"
	ColExtracurricular  = "Extracurricular_Activities"
	ColTutoringSessions = "Tutoring_Sessions"
)

// RequiredColumns lists every column the input header must contain.
var RequiredColumns = []string{
	ColRecordID,
	ColHoursStudied,
	ColExamScore,
	ColAttendance,
	ColExtracurricular,
	ColTutoringSessions,
}

// Field is a numeric cell. A cell that is empty, unparseable or not finite
// is missing: Valid is false and the cell takes part in no comparison.
type Field struct {
	// Raw is the trimmed source text of the cell
	Raw string
	// Value is the parsed number (zero when missing)
	Value float64
	// Valid reports whether Value holds a usable number
	Valid bool
}

// ParseField coerces a raw cell into a Field.
func ParseField(raw string) Field {
	s := strings.TrimSpace(raw)
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return Field{Raw: s}
	}
	return Field{Raw: s, Value: v, Valid: true}
}

// Number returns a valid Field holding v.
func Number(v float64) Field {
	return Field{Raw: strconv.FormatFloat(v, 'f', -1, 64), Value: v, Valid: true}
}

// Missing returns a Field with no usable value.
func Missing() Field {
	return Field{}
}

// String renders the cell for output. Missing cells render empty.
func (f Field) String() string {
	if !f.Valid {
		return ""
	}
	return f.Raw
}

// Decimal returns the exact decimal value of the cell, parsed from its
// source text so that sums do not pick up binary float error.
// It must only be called on a valid Field.
func (f Field) Decimal() decimal.Decimal {
	if d, err := decimal.NewFromString(f.Raw); err == nil {
		return d
	}
	return decimal.NewFromFloat(f.Value)
}

// Record is one student's row of the input table.
type Record struct {
	RecordID         int64
	HoursStudied     Field
	ExamScore        Field
	Attendance       Field
	Extracurricular  string
	TutoringSessions Field
}

// ID renders the record identifier for output.
func (r Record) ID() string {
	return strconv.FormatInt(r.RecordID, 10)
}

// Env exposes the record to expression evaluation, keyed by column name.
// Missing numeric cells map to nil.
func (r Record) Env() map[string]interface{} {
	return map[string]interface{}{
		ColRecordID:         r.RecordID,
		ColHoursStudied:     fieldValue(r.HoursStudied),
		ColExamScore:        fieldValue(r.ExamScore),
		ColAttendance:       fieldValue(r.Attendance),
		ColExtracurricular:  r.Extracurricular,
		ColTutoringSessions: fieldValue(r.TutoringSessions),
	}
}

func fieldValue(f Field) interface{} {
	if !f.Valid {
		return nil
	}
	return f.Value
}
