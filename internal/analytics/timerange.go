// Package analytics turns raw finance records into period-bucketed,
// person-filtered and category-grouped summaries for the dashboards.
//
// Every function here is pure: inputs are never mutated, there is no I/O
// and identical inputs always give identical outputs. All boundaries are
// computed in UTC from the calendar day of the reference time.
package analytics

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

type Preset string

const (
	Preset1M  Preset = "1M"
	Preset3M  Preset = "3M"
	Preset6M  Preset = "6M"
	Preset1Y  Preset = "1Y"
	Preset2Y  Preset = "2Y"
	Preset3Y  Preset = "3Y"
	Preset5Y  Preset = "5Y"
	PresetAll Preset = "ALL"
)

// Presets lists every preset in display order.
var Presets = []Preset{Preset1M, Preset3M, Preset6M, Preset1Y, Preset2Y, Preset3Y, Preset5Y, PresetAll}

type Granularity string

const (
	Monthly   Granularity = "monthly"
	Quarterly Granularity = "quarterly"
	Yearly    Granularity = "yearly"
)

// allTimeYear is far enough back to include every realistic record.
const allTimeYear = 2000

var ErrInvalidPreset = errors.New("invalid time range preset")

// TimeRange is an inclusive [Start, End] interval.
type TimeRange struct {
	Start       time.Time   `json:"start"`
	End         time.Time   `json:"end"`
	Label       string      `json:"label"`
	Granularity Granularity `json:"granularity,omitempty"`
}

type presetSpec struct {
	months, years int
	label         string
	granularity   Granularity
}

var presets = map[Preset]presetSpec{
	Preset1M:  {months: 1, label: "Last Month", granularity: Monthly},
	Preset3M:  {months: 3, label: "Last 3 Months", granularity: Monthly},
	Preset6M:  {months: 6, label: "Last 6 Months", granularity: Monthly},
	Preset1Y:  {years: 1, label: "Last Year", granularity: Quarterly},
	Preset2Y:  {years: 2, label: "Last 2 Years", granularity: Quarterly},
	Preset3Y:  {years: 3, label: "Last 3 Years", granularity: Yearly},
	Preset5Y:  {years: 5, label: "Last 5 Years", granularity: Yearly},
	PresetAll: {label: "All Time", granularity: Yearly},
}

// ParsePreset validates a preset string. Matching is case-insensitive.
func ParsePreset(s string) (Preset, error) {
	p := Preset(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := presets[p]; !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidPreset, s)
	}
	return p, nil
}

// GranularityFor returns the bucket size used to chart a preset.
func GranularityFor(p Preset) (Granularity, error) {
	spec, ok := presets[p]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidPreset, p)
	}
	return spec.granularity, nil
}

// Resolve converts a preset into a concrete range ending at the last
// millisecond of ref's day and starting at midnight of the lookback day.
// Month arithmetic normalizes overflow, so 31 Mar minus one month is 3 Mar.
func Resolve(p Preset, ref time.Time) (TimeRange, error) {
	spec, ok := presets[p]
	if !ok {
		return TimeRange{}, fmt.Errorf("%w: %q", ErrInvalidPreset, p)
	}
	y, m, d := ref.Date()
	var start time.Time
	if p == PresetAll {
		start = time.Date(allTimeYear, m, d, 0, 0, 0, 0, time.UTC)
	} else {
		start = time.Date(y-spec.years, m-time.Month(spec.months), d, 0, 0, 0, 0, time.UTC)
	}
	return TimeRange{
		Start:       start,
		End:         endOfDay(y, m, d),
		Label:       spec.label,
		Granularity: spec.granularity,
	}, nil
}

// YearToDate spans 1 Jan of ref's year through the end of ref's day.
func YearToDate(ref time.Time) TimeRange {
	y, m, d := ref.Date()
	return TimeRange{
		Start: time.Date(y, time.January, 1, 0, 0, 0, 0, time.UTC),
		End:   endOfDay(y, m, d),
		Label: fmt.Sprintf("YTD %d", y),
	}
}

// PreviousYearToDate covers the same number of days from 1 Jan of the prior
// year. The offset is taken from ref's day of year, so leap years shift the
// window by a day; it never runs past 31 Dec of the prior year.
func PreviousYearToDate(ref time.Time) TimeRange {
	y := ref.Year()
	doy := ref.YearDay()
	end := time.Date(y-1, time.January, doy, 23, 59, 59, int(999*time.Millisecond), time.UTC)
	if limit := endOfDay(y-1, time.December, 31); end.After(limit) {
		end = limit
	}
	return TimeRange{
		Start: time.Date(y-1, time.January, 1, 0, 0, 0, 0, time.UTC),
		End:   end,
		Label: fmt.Sprintf("YTD %d", y-1),
	}
}

// MonthRange is the full calendar month containing t.
func MonthRange(t time.Time) TimeRange {
	y, m, _ := t.Date()
	start := time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
	return TimeRange{
		Start:       start,
		End:         start.AddDate(0, 1, 0).Add(-time.Millisecond),
		Label:       start.Format("January 2006"),
		Granularity: Monthly,
	}
}

// LastMonth is the calendar month immediately before ref's month.
func LastMonth(ref time.Time) TimeRange {
	y, m, _ := ref.Date()
	return MonthRange(time.Date(y, m-1, 1, 0, 0, 0, 0, time.UTC))
}

// MonthBefore is the calendar month preceding r.Start's month.
func MonthBefore(r TimeRange) TimeRange {
	return LastMonth(r.Start)
}

// PreviousPeriod has the same duration as r and ends 1ms before r starts.
func PreviousPeriod(r TimeRange) TimeRange {
	d := r.End.Sub(r.Start)
	end := r.Start.Add(-time.Millisecond)
	return TimeRange{
		Start:       end.Add(-d),
		End:         end,
		Label:       "Previous Period",
		Granularity: r.Granularity,
	}
}

// PreviousYear shifts both ends of r back one year.
func PreviousYear(r TimeRange) TimeRange {
	return TimeRange{
		Start:       r.Start.AddDate(-1, 0, 0),
		End:         r.End.AddDate(-1, 0, 0),
		Label:       "Previous Year",
		Granularity: r.Granularity,
	}
}

// Contains reports whether t lies in the inclusive range.
func (r TimeRange) Contains(t time.Time) bool {
	return !t.Before(r.Start) && !t.After(r.End)
}

func endOfDay(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 23, 59, 59, int(999*time.Millisecond), time.UTC)
}
