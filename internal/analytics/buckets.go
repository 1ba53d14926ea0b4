package analytics

import (
	"fmt"
	"time"
)

// Bucket is one calendar aligned period of a chart series.
type Bucket struct {
	Label string    `json:"label"`
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// GenerateBuckets enumerates contiguous calendar periods covering
// [start, end]. The first bucket begins at the period boundary containing
// start and the last bucket's end is clamped to end. An inverted range
// yields no buckets. Periods are UTC calendar periods whatever the location
// of start and end.
func GenerateBuckets(start, end time.Time, g Granularity) []Bucket {
	start, end = start.UTC(), end.UTC()
	if start.After(end) {
		return nil
	}
	var out []Bucket
	for cur := StartOfPeriod(start, g); !cur.After(end); cur = nextPeriod(cur, g) {
		bEnd := EndOfPeriod(cur, g)
		if bEnd.After(end) {
			bEnd = end
		}
		out = append(out, Bucket{Label: PeriodLabel(cur, g), Start: cur, End: bEnd})
	}
	return out
}

// PeriodLabel names the period containing t: "Jan 2024", "Q1 2024" or "2024".
func PeriodLabel(t time.Time, g Granularity) string {
	t = t.UTC()
	switch g {
	case Quarterly:
		return fmt.Sprintf("Q%d %d", quarterOf(t.Month()), t.Year())
	case Yearly:
		return fmt.Sprintf("%d", t.Year())
	default:
		return t.Format("Jan 2006")
	}
}

// StartOfPeriod returns midnight UTC on the first day of the UTC period
// containing t.
func StartOfPeriod(t time.Time, g Granularity) time.Time {
	y, m, _ := t.UTC().Date()
	switch g {
	case Quarterly:
		m = time.Month((quarterOf(m)-1)*3 + 1)
	case Yearly:
		m = time.January
	}
	return time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
}

// EndOfPeriod returns the last millisecond of t's period.
func EndOfPeriod(t time.Time, g Granularity) time.Time {
	return nextPeriod(StartOfPeriod(t, g), g).Add(-time.Millisecond)
}

func nextPeriod(start time.Time, g Granularity) time.Time {
	switch g {
	case Quarterly:
		return start.AddDate(0, 3, 0)
	case Yearly:
		return start.AddDate(1, 0, 0)
	default:
		return start.AddDate(0, 1, 0)
	}
}

func quarterOf(m time.Month) int {
	return (int(m)-1)/3 + 1
}
