package analytics

import (
	"math"
	"reflect"
	"testing"
	"time"

	"github.com/carlmjohnson/be"

	"mapfin/internal/core"
)

func expense(id, date string, amount float64, cat core.ExpenseCategory) core.Expense {
	d, err := core.ParseDate(date)
	if err != nil {
		panic(err)
	}
	return core.Expense{
		ID:                  id,
		PersonID:            "manan",
		Date:                d,
		Category:            cat,
		Amount:              amount,
		PaymentMethod:       core.PayUPI,
		ReimbursementStatus: core.ReimbursementNone,
	}
}

func sampleExpenses() []core.Expense {
	reimbursed := expense("e5", "2024-12-20", 9999, core.Leisure)
	reimbursed.ReimbursementStatus = core.ReimbursementReimbursed
	spouse := expense("e6", "2024-10-03", 1200, core.Groceries)
	spouse.PersonID = "spouse"
	return []core.Expense{
		expense("e1", "2024-11-05", 450, core.FoodDining),
		expense("e2", "2024-12-02", 3500, core.Groceries),
		expense("e3", "2024-12-15", 800, core.FoodDining),
		expense("e4", "2023-06-10", 2000, core.UtilitiesRent),
		reimbursed,
		spouse,
	}
}

func TestScenarioMonthlyBuckets(t *testing.T) {
	expenses := []core.Expense{
		expense("a", "2024-11-05", 450, core.FoodDining),
		expense("b", "2024-12-02", 3500, core.Groceries),
	}
	r, err := Resolve(Preset3M, day(2024, 12, 31))
	be.NilErr(t, err)
	be.Equal(t, Monthly, r.Granularity)

	got := ByPeriod(expenses, r, r.Granularity, PeriodOptions{ExcludeReimbursed: true})
	totals := map[string]float64{}
	for _, p := range got {
		totals[p.Period] = p.Total
	}
	be.Equal(t, 450.0, totals["Nov 2024"])
	be.Equal(t, 3500.0, totals["Dec 2024"])

	nonZero := 0
	for _, p := range got {
		if p.Total != 0 {
			nonZero++
		}
		be.True(t, p.Breakdown == nil)
	}
	be.Equal(t, 2, nonZero)
}

func TestScenarioEmptyInput(t *testing.T) {
	for _, p := range Presets {
		r, err := Resolve(p, day(2024, 12, 31))
		be.NilErr(t, err)
		got := ByPeriod(nil, r, r.Granularity, PeriodOptions{ExcludeReimbursed: true, WithBreakdown: true})
		be.Nonzero(t, len(got))
		for _, b := range got {
			be.Equal(t, 0.0, b.Total)
			be.Equal(t, 0, len(b.Breakdown))
		}
	}
	be.Equal(t, 0, len(ByCategory(nil, core.ExpenseLabels(), core.ChartPalette, true)))
	be.Equal(t, 0, len(ByCategory([]core.Expense{}, nil, nil, false)))
}

func TestByPeriodBreakdown(t *testing.T) {
	r := TimeRange{Start: day(2024, 10, 1), End: time.Date(2024, 12, 31, 23, 59, 59, 999_000_000, time.UTC)}
	got := ByPeriod(sampleExpenses(), r, Monthly, PeriodOptions{ExcludeReimbursed: true, WithBreakdown: true})
	be.Equal(t, 3, len(got))

	be.Equal(t, "Oct 2024", got[0].Period)
	be.Equal(t, 1200.0, got[0].Breakdown["groceries"])

	dec := got[2]
	be.Equal(t, 4300.0, dec.Total)
	be.Equal(t, 2, len(dec.Breakdown))
	be.Equal(t, 800.0, dec.Breakdown["food_dining"])
	_, hasLeisure := dec.Breakdown["leisure"]
	be.False(t, hasLeisure)

	withReimbursed := ByPeriod(sampleExpenses(), r, Monthly, PeriodOptions{})
	be.Equal(t, 4300.0+9999, withReimbursed[2].Total)
}

func TestByPeriodSumConservation(t *testing.T) {
	expenses := sampleExpenses()
	for _, p := range Presets {
		r, err := Resolve(p, day(2024, 12, 31))
		be.NilErr(t, err)
		for _, g := range []Granularity{Monthly, Quarterly, Yearly} {
			var bucketed float64
			for _, b := range ByPeriod(expenses, r, g, PeriodOptions{ExcludeReimbursed: true}) {
				bucketed += b.Total
			}
			var direct float64
			for _, e := range ForTotals(expenses) {
				if r.Contains(e.Date.Time) {
					direct += e.Amount
				}
			}
			be.True(t, math.Abs(bucketed-direct) < 1e-6)
			be.True(t, math.Abs(direct-ExpenseTotal(expenses, r, true)) < 1e-6)
		}
	}
}

func TestByCategory(t *testing.T) {
	got := ByCategory(sampleExpenses(), core.ExpenseLabels(), core.ChartPalette, true)
	be.Equal(t, 3, len(got))

	be.Equal(t, "groceries", got[0].Key)
	be.Equal(t, "Groceries", got[0].Name)
	be.Equal(t, 4700.0, got[0].Value)
	be.Equal(t, core.ChartPalette[0], got[0].Color)

	be.Equal(t, "utilities_rent", got[1].Key)
	be.Equal(t, core.ChartPalette[1], got[1].Color)
	be.Equal(t, "food_dining", got[2].Key)
	be.Equal(t, 1250.0, got[2].Value)

	var pct float64
	for i, s := range got {
		pct += s.Percentage
		if i > 0 {
			be.False(t, s.Value > got[i-1].Value)
		}
	}
	be.True(t, math.Abs(pct-100) < 0.01)
}

func TestByCategoryUnknownAndZero(t *testing.T) {
	zero := []core.Expense{
		expense("z1", "2024-01-01", 0, core.Groceries),
		expense("z2", "2024-01-02", 0, "pets"),
	}
	got := ByCategory(zero, core.ExpenseLabels(), core.ChartPalette, true)
	be.Equal(t, 2, len(got))
	for _, s := range got {
		be.Equal(t, 0.0, s.Percentage)
		be.False(t, math.IsNaN(s.Percentage))
	}
	be.Equal(t, "pets", got[1].Name)
}

func TestByCategoryPaletteWraps(t *testing.T) {
	var expenses []core.Expense
	cats := []core.ExpenseCategory{core.FoodDining, core.Groceries, core.Leisure}
	for i, c := range cats {
		expenses = append(expenses, expense(string(c), "2024-01-01", float64(300-i*100), c))
	}
	palette := []string{"#a", "#b"}
	got := ByCategory(expenses, nil, palette, false)
	be.Equal(t, "#a", got[0].Color)
	be.Equal(t, "#b", got[1].Color)
	be.Equal(t, "#a", got[2].Color)
}

func TestTopN(t *testing.T) {
	slices := []Slice{
		{Key: "a", Value: 50, Percentage: 50},
		{Key: "b", Value: 20, Percentage: 20},
		{Key: "c", Value: 15, Percentage: 15},
		{Key: "d", Value: 10, Percentage: 10},
		{Key: "e", Value: 5, Percentage: 5},
	}
	got := TopN(slices, 3, core.OtherColor)
	be.Equal(t, 3, len(got))
	be.Equal(t, "b", got[1].Key)
	other := got[2]
	be.Equal(t, OtherKey, other.Key)
	be.Equal(t, "Other", other.Name)
	be.Equal(t, 30.0, other.Value)
	be.Equal(t, 30.0, other.Percentage)
	be.Equal(t, core.OtherColor, other.Color)

	be.Equal(t, 5, len(TopN(slices, 5, core.OtherColor)))
	be.Equal(t, 5, len(TopN(slices, 0, core.OtherColor)))
	be.Equal(t, 5, len(slices))
}

func TestAggregationIsIdempotent(t *testing.T) {
	expenses := sampleExpenses()
	before := append([]core.Expense(nil), expenses...)
	r, err := Resolve(Preset2Y, day(2024, 12, 31))
	be.NilErr(t, err)
	opts := PeriodOptions{ExcludeReimbursed: true, WithBreakdown: true}

	p1 := ByPeriod(expenses, r, r.Granularity, opts)
	p2 := ByPeriod(expenses, r, r.Granularity, opts)
	be.True(t, reflect.DeepEqual(p1, p2))

	c1 := ByCategory(expenses, core.ExpenseLabels(), core.ChartPalette, true)
	c2 := ByCategory(expenses, core.ExpenseLabels(), core.ChartPalette, true)
	be.True(t, reflect.DeepEqual(c1, c2))

	f1 := FilterExpenses(expenses, ExpenseCriteria{Search: "x"})
	f2 := FilterExpenses(expenses, ExpenseCriteria{Search: "x"})
	be.True(t, reflect.DeepEqual(f1, f2))

	be.True(t, reflect.DeepEqual(before, expenses))
}

func TestSkipsUndatedRecords(t *testing.T) {
	undated := core.Expense{ID: "u", Amount: 100, Category: core.Groceries}
	r, err := Resolve(PresetAll, day(2024, 12, 31))
	be.NilErr(t, err)
	got := ByPeriod([]core.Expense{undated}, r, Yearly, PeriodOptions{})
	for _, p := range got {
		be.Equal(t, 0.0, p.Total)
	}
	be.Equal(t, 0.0, ExpenseTotal([]core.Expense{undated}, r, false))
}

func TestSumByPeriodIncome(t *testing.T) {
	income := []core.Income{
		{ID: "i1", Date: core.NewDate(2024, 1, 31), Amount: 100000, Source: core.Salary},
		{ID: "i2", Date: core.NewDate(2024, 2, 29), Amount: 100000, Source: core.Salary},
		{ID: "i3", Date: core.NewDate(2024, 3, 15), Amount: 25000, Source: core.Bonus},
	}
	r := TimeRange{Start: day(2024, 1, 1), End: day(2024, 12, 31)}
	got := SumByPeriod(income, r, Quarterly, true)
	be.Equal(t, 4, len(got))
	be.Equal(t, 225000.0, got[0].Total)
	be.Equal(t, 25000.0, got[0].Breakdown["bonus"])
	be.Equal(t, 225000.0, Sum(income))
}
