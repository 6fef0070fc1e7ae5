// Package analysis implements the five student performance tasks as linear
// pipelines of small pure operations: filter, project or annotate, sort,
// limit. No operation modifies its input slice.
package analysis

import (
	"cmp"
	"slices"

	"github.com/shopspring/decimal"

	"github.com/canectors/spfanalyzer/pkg/dataset"
)

// MeanPrecision is the number of decimal places group means are rounded to.
const MeanPrecision = 1

// Filter returns the items for which keep returns true, in input order.
func Filter[T any](items []T, keep func(T) bool) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		if keep(item) {
			out = append(out, item)
		}
	}
	return out
}

// Map projects every item through fn.
func Map[T, U any](items []T, fn func(T) U) []U {
	out := make([]U, len(items))
	for i, item := range items {
		out[i] = fn(item)
	}
	return out
}

// SortStable returns a sorted copy of items. Equal items keep input order.
func SortStable[T any](items []T, compare func(a, b T) int) []T {
	out := slices.Clone(items)
	slices.SortStableFunc(out, compare)
	return out
}

// Limit returns at most the first n items.
func Limit[T any](items []T, n int) []T {
	if n < 0 || len(items) <= n {
		return items
	}
	return items[:n]
}

// Mean accumulates an exact decimal sum.
type Mean struct {
	Count int
	Sum   decimal.Decimal
}

// Add includes v in the mean.
func (m *Mean) Add(v decimal.Decimal) {
	m.Count++
	m.Sum = m.Sum.Add(v)
}

// Valid reports whether at least one value was added.
func (m Mean) Valid() bool {
	return m.Count > 0
}

// Rounded returns the mean rounded to MeanPrecision places, half away from
// zero. The result is zero for an empty mean; check Valid first.
func (m Mean) Rounded() decimal.Decimal {
	if m.Count == 0 {
		return decimal.Zero
	}
	return m.Sum.DivRound(decimal.NewFromInt(int64(m.Count)), MeanPrecision)
}

// GroupMean groups items by key and averages value within each group.
// Items whose key is not ok are skipped entirely. Items whose value is not
// ok still create their group but do not contribute to its mean.
func GroupMean[T any, K comparable](
	items []T,
	key func(T) (K, bool),
	value func(T) (decimal.Decimal, bool),
) map[K]*Mean {
	groups := make(map[K]*Mean)
	for _, item := range items {
		k, ok := key(item)
		if !ok {
			continue
		}
		m, exists := groups[k]
		if !exists {
			m = &Mean{}
			groups[k] = m
		}
		if v, ok := value(item); ok {
			m.Add(v)
		}
	}
	return groups
}

// fieldDecimal adapts a dataset.Field to GroupMean's value signature.
func fieldDecimal(f dataset.Field) (decimal.Decimal, bool) {
	if !f.Valid {
		return decimal.Zero, false
	}
	return f.Decimal(), true
}

// byScoreDescThenID orders by Exam_Score descending, then Record_ID
// ascending. Records with a missing score sort after all scored records.
func byScoreDescThenID(a, b dataset.Record) int {
	as, bs := a.ExamScore, b.ExamScore
	switch {
	case as.Valid && !bs.Valid:
		return -1
	case !as.Valid && bs.Valid:
		return 1
	case as.Valid && bs.Valid && as.Value != bs.Value:
		return cmp.Compare(bs.Value, as.Value)
	}
	return cmp.Compare(a.RecordID, b.RecordID)
}
