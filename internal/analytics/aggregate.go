package analytics

import (
	"sort"
	"time"

	"mapfin/internal/core"
)

// Record is what the period and category folds need from a row. Expenses,
// net worth entries and income all implement it.
type Record interface {
	RecordDate() core.Date
	RecordAmount() float64
	RecordKey() string
}

// PeriodTotal is one bar of a time series. Breakdown maps a category key to
// its sub-total; categories with nothing in the period are absent.
type PeriodTotal struct {
	Period    string             `json:"period"`
	Start     time.Time          `json:"start"`
	End       time.Time          `json:"end"`
	Total     float64            `json:"total"`
	Breakdown map[string]float64 `json:"breakdown,omitempty"`
}

// Slice is one wedge of an allocation chart.
type Slice struct {
	Key        string  `json:"key"`
	Name       string  `json:"name"`
	Value      float64 `json:"value"`
	Color      string  `json:"color"`
	Percentage float64 `json:"percentage"`
}

type PeriodOptions struct {
	ExcludeReimbursed bool
	WithBreakdown     bool
}

// OtherKey identifies the synthetic slice produced by TopN.
const OtherKey = "_other"

// SumByPeriod folds records into the buckets of r. Records outside r or
// without a date are ignored.
func SumByPeriod[T Record](records []T, r TimeRange, g Granularity, withBreakdown bool) []PeriodTotal {
	buckets := GenerateBuckets(r.Start, r.End, g)
	out := make([]PeriodTotal, len(buckets))
	index := make(map[string]int, len(buckets))
	for i, b := range buckets {
		out[i] = PeriodTotal{Period: b.Label, Start: b.Start, End: b.End}
		if withBreakdown {
			out[i].Breakdown = map[string]float64{}
		}
		index[b.Label] = i
	}
	for _, rec := range records {
		d := rec.RecordDate()
		if d.IsEmpty() || !r.Contains(d.Time) {
			continue
		}
		i, ok := index[PeriodLabel(d.Time, g)]
		if !ok {
			continue
		}
		amt := rec.RecordAmount()
		out[i].Total += amt
		if withBreakdown {
			out[i].Breakdown[rec.RecordKey()] += amt
		}
	}
	return out
}

// ByPeriod buckets expenses over r at granularity g.
func ByPeriod(expenses []core.Expense, r TimeRange, g Granularity, opts PeriodOptions) []PeriodTotal {
	if opts.ExcludeReimbursed {
		expenses = ForTotals(expenses)
	}
	return SumByPeriod(expenses, r, g, opts.WithBreakdown)
}

// SumByKey folds records into allocation slices sorted by descending value.
// Ties are broken by key so output is stable. Colors come from palette by
// position in that order; percentages are 0 when the total is 0.
func SumByKey[T Record](records []T, labels map[string]string, palette []string) []Slice {
	totals := map[string]float64{}
	var total float64
	for _, rec := range records {
		amt := rec.RecordAmount()
		totals[rec.RecordKey()] += amt
		total += amt
	}
	out := make([]Slice, 0, len(totals))
	for k, v := range totals {
		name := labels[k]
		if name == "" {
			name = k
		}
		out = append(out, Slice{Key: k, Name: name, Value: v})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Value != out[j].Value {
			return out[i].Value > out[j].Value
		}
		return out[i].Key < out[j].Key
	})
	for i := range out {
		if len(palette) > 0 {
			out[i].Color = palette[i%len(palette)]
		}
		out[i].Percentage = percentOf(out[i].Value, total)
	}
	return out
}

// ByCategory is the expense allocation view.
func ByCategory(expenses []core.Expense, labels map[string]string, palette []string, excludeReimbursed bool) []Slice {
	if excludeReimbursed {
		expenses = ForTotals(expenses)
	}
	return SumByKey(expenses, labels, palette)
}

// TopN keeps the first limit-1 slices and merges the rest into one "Other"
// slice whose percentage is measured against the total of all slices.
func TopN(slices []Slice, limit int, otherColor string) []Slice {
	if limit <= 0 || len(slices) <= limit {
		return append([]Slice(nil), slices...)
	}
	var total, other float64
	for i, s := range slices {
		total += s.Value
		if i >= limit-1 {
			other += s.Value
		}
	}
	out := append([]Slice(nil), slices[:limit-1]...)
	return append(out, Slice{
		Key:        OtherKey,
		Name:       "Other",
		Value:      other,
		Color:      otherColor,
		Percentage: percentOf(other, total),
	})
}

// ExpenseTotal sums expenses dated within r.
func ExpenseTotal(expenses []core.Expense, r TimeRange, excludeReimbursed bool) float64 {
	var total float64
	for _, e := range expenses {
		if excludeReimbursed && e.Reimbursed() {
			continue
		}
		if e.Date.IsEmpty() || !r.Contains(e.Date.Time) {
			continue
		}
		total += e.Amount
	}
	return total
}

// Sum adds every record amount.
func Sum[T Record](records []T) float64 {
	var total float64
	for _, r := range records {
		total += r.RecordAmount()
	}
	return total
}

func percentOf(v, total float64) float64 {
	if total > 0 {
		return v * 100 / total
	}
	return 0
}
