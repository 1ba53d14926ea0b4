package analytics

import (
	"time"

	"mapfin/internal/core"
)

type Comparison struct {
	Current       float64 `json:"current"`
	Previous      float64 `json:"previous"`
	Change        float64 `json:"change"`
	ChangePercent float64 `json:"change_percent"`
}

// PeriodComparison is a Comparison with the windows it was computed over.
type PeriodComparison struct {
	Comparison
	CurrentRange  TimeRange `json:"current_range"`
	PreviousRange TimeRange `json:"previous_range"`
}

// MonthComparison reports the month compared and whether it replaced the
// immediately preceding month because that month had no records.
type MonthComparison struct {
	PeriodComparison
	FellBack bool `json:"fell_back"`
}

// Compare computes the delta between two totals. ChangePercent is the ratio
// against previous when previous > 0, exactly 100 when only current is
// positive and 0 otherwise.
func Compare(current, previous float64) Comparison {
	c := Comparison{Current: current, Previous: previous, Change: current - previous}
	switch {
	case previous > 0:
		c.ChangePercent = (current - previous) / previous * 100
	case current > 0:
		c.ChangePercent = 100
	}
	return c
}

// CompareYearToDate compares spending from 1 Jan to ref against the same
// day count of the prior year. Reimbursed expenses are excluded.
func CompareYearToDate(expenses []core.Expense, ref time.Time) PeriodComparison {
	cur, prev := YearToDate(ref), PreviousYearToDate(ref)
	return comparePeriods(expenses, cur, prev)
}

// CompareLastCompleteMonth compares the month before ref's month with the
// month before that. When the preceding month has no records at all, the
// most recent earlier month with records is used instead and FellBack is set.
func CompareLastCompleteMonth(expenses []core.Expense, ref time.Time) MonthComparison {
	month := LastMonth(ref)
	current := MonthRange(ref).Start

	withData := map[time.Time]bool{}
	for _, e := range expenses {
		if e.Date.IsEmpty() {
			continue
		}
		withData[MonthRange(e.Date.Time).Start] = true
	}

	fellBack := false
	if !withData[month.Start] {
		var latest time.Time
		for m := range withData {
			if m.Before(current) && m.After(latest) {
				latest = m
			}
		}
		if !latest.IsZero() {
			month = MonthRange(latest)
			fellBack = true
		}
	}
	return MonthComparison{
		PeriodComparison: comparePeriods(expenses, month, MonthBefore(month)),
		FellBack:         fellBack,
	}
}

func comparePeriods(expenses []core.Expense, cur, prev TimeRange) PeriodComparison {
	return PeriodComparison{
		Comparison:    Compare(ExpenseTotal(expenses, cur, true), ExpenseTotal(expenses, prev, true)),
		CurrentRange:  cur,
		PreviousRange: prev,
	}
}
