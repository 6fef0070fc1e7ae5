package analysis

import (
	"cmp"
	"testing"

	gocmp "github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
)

func TestFilterKeepsOrderAndSource(t *testing.T) {
	src := []int{5, 1, 4, 2, 3}
	got := Filter(src, func(v int) bool { return v%2 == 1 })

	if diff := gocmp.Diff([]int{5, 1, 3}, got); diff != "" {
		t.Errorf("Filter() mismatch (-want +got):\n%s", diff)
	}
	if diff := gocmp.Diff([]int{5, 1, 4, 2, 3}, src); diff != "" {
		t.Errorf("source modified (-want +got):\n%s", diff)
	}
}

func TestFilterEmptyResultIsNotNil(t *testing.T) {
	got := Filter([]int{1, 2}, func(int) bool { return false })
	if got == nil || len(got) != 0 {
		t.Errorf("Filter() = %#v, want empty non-nil slice", got)
	}
}

func TestSortStable(t *testing.T) {
	type item struct {
		key   int
		label string
	}
	src := []item{{2, "a"}, {1, "b"}, {2, "c"}, {1, "d"}}
	got := SortStable(src, func(a, b item) int { return cmp.Compare(a.key, b.key) })

	want := []item{{1, "b"}, {1, "d"}, {2, "a"}, {2, "c"}}
	if diff := gocmp.Diff(want, got, gocmp.AllowUnexported(item{})); diff != "" {
		t.Errorf("SortStable() mismatch (-want +got):\n%s", diff)
	}
	if src[0].label != "a" {
		t.Error("SortStable() reordered its input")
	}
}

func TestLimit(t *testing.T) {
	src := []int{1, 2, 3}
	tests := []struct {
		name string
		n    int
		want []int
	}{
		{"fewer than limit", 10, []int{1, 2, 3}},
		{"exactly limit", 3, []int{1, 2, 3}},
		{"truncated", 2, []int{1, 2}},
		{"zero", 0, []int{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := gocmp.Diff(tt.want, Limit(src, tt.n)); diff != "" {
				t.Errorf("Limit() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestMeanRounded(t *testing.T) {
	tests := []struct {
		name   string
		values []string
		want   string
	}{
		{"exact", []string{"80", "85"}, "82.5"},
		{"half rounds away from zero", []string{"0.25"}, "0.3"},
		{"half of a repeating sum", []string{"80", "80", "80.15"}, "80.1"},
		{"binary-unfriendly half", []string{"2.15"}, "2.2"},
		{"negative half", []string{"-0.25"}, "-0.3"},
		{"thirds", []string{"1", "1", "2"}, "1.3"},
		{"integer mean keeps one decimal", []string{"80", "80"}, "80.0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var m Mean
			for _, v := range tt.values {
				m.Add(decimal.RequireFromString(v))
			}
			if got := m.Rounded().StringFixed(MeanPrecision); got != tt.want {
				t.Errorf("Rounded() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestGroupMean(t *testing.T) {
	type row struct {
		group string
		value string
	}
	rows := []row{
		{"a", "1"},
		{"a", "2"},
		{"b", ""},
		{"", "9"},
	}
	groups := GroupMean(rows,
		func(r row) (string, bool) { return r.group, r.group != "" },
		func(r row) (decimal.Decimal, bool) {
			if r.value == "" {
				return decimal.Zero, false
			}
			return decimal.RequireFromString(r.value), true
		},
	)

	if len(groups) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(groups))
	}
	if got := groups["a"].Rounded().String(); got != "1.5" {
		t.Errorf("group a mean = %s, want 1.5", got)
	}
	if groups["b"].Valid() {
		t.Error("group b has no values and should not be valid")
	}
}
