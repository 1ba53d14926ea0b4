package analytics

import (
	"sort"
	"time"

	"mapfin/internal/core"
)

// Snapshot is the set of entries sharing a person's latest report date.
type Snapshot struct {
	Date       core.Date            `json:"date"`
	Total      float64              `json:"total"`
	ByCategory map[string]float64   `json:"by_category"`
	Entries    []core.NetWorthEntry `json:"entries"`
}

// NetWorthPoint adds the asset and liability split to a period point.
// Liabilities is negative.
type NetWorthPoint struct {
	PeriodTotal
	Assets      float64 `json:"assets"`
	Liabilities float64 `json:"liabilities"`
	NetWorth    float64 `json:"net_worth"`
}

// LatestSnapshot sums every entry dated on the maximum report date for the
// person (all people when personID is empty). Entries sharing that date are
// summed, never deduplicated.
func LatestSnapshot(entries []core.NetWorthEntry, personID string) Snapshot {
	snap := Snapshot{ByCategory: map[string]float64{}}
	for _, e := range ByPerson(entries, personID) {
		if e.ReportDate.After(snap.Date.Time) {
			snap.Date = e.ReportDate
		}
	}
	if snap.Date.IsEmpty() {
		return snap
	}
	for _, e := range entries {
		if (personID != "" && e.PersonID != personID) || !e.ReportDate.Equal(snap.Date.Time) {
			continue
		}
		snap.Entries = append(snap.Entries, e)
		snap.Total += e.Amount
		snap.ByCategory[string(e.Category)] += e.Amount
	}
	return snap
}

// NetWorthByCategory is the allocation of the latest snapshot.
func NetWorthByCategory(entries []core.NetWorthEntry, personID string, labels map[string]string, palette []string) []Slice {
	return SumByKey(LatestSnapshot(entries, personID).Entries, labels, palette)
}

// NetWorthByPeriod emits one point per period of r that has a report, in
// date order. Net worth is a balance, so a period holding several report
// dates takes the latest one; labels never repeat. Periods with no report
// produce no point.
func NetWorthByPeriod(entries []core.NetWorthEntry, r TimeRange, g Granularity, personID string) []PeriodTotal {
	byDate := map[time.Time]*PeriodTotal{}
	for _, e := range FilterNetWorth(entries, personID, &r) {
		p, ok := byDate[e.ReportDate.Time]
		if !ok {
			p = &PeriodTotal{
				Period:    PeriodLabel(e.ReportDate.Time, g),
				Start:     e.ReportDate.Time,
				End:       e.ReportDate.Add(24*time.Hour - time.Millisecond),
				Breakdown: map[string]float64{},
			}
			byDate[e.ReportDate.Time] = p
		}
		p.Total += e.Amount
		p.Breakdown[string(e.Category)] += e.Amount
	}

	latest := map[string]*PeriodTotal{}
	for _, p := range byDate {
		if cur, ok := latest[p.Period]; !ok || p.Start.After(cur.Start) {
			latest[p.Period] = p
		}
	}
	out := make([]PeriodTotal, 0, len(latest))
	for _, p := range latest {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Start.Before(out[j].Start) })
	return out
}

// NetWorthWithLiabilities is the monthly net worth series with the current
// outstanding liabilities applied to every point; liabilities carry no
// history.
func NetWorthWithLiabilities(entries []core.NetWorthEntry, liabilities []core.Liability, r TimeRange, personID string) []NetWorthPoint {
	owed := LiabilityTotals(liabilities, personID).Outstanding
	points := NetWorthByPeriod(entries, r, Monthly, personID)
	out := make([]NetWorthPoint, len(points))
	for i, p := range points {
		out[i] = NetWorthPoint{
			PeriodTotal: p,
			Assets:      p.Total,
			Liabilities: -owed,
			NetWorth:    p.Total - owed,
		}
	}
	return out
}

// LiabilitySummary totals point-in-time liability balances.
type LiabilitySummary struct {
	Outstanding float64            `json:"outstanding"`
	Principal   float64            `json:"principal"`
	MonthlyEMI  float64            `json:"monthly_emi"`
	ByCategory  map[string]float64 `json:"by_category"`
	Count       int                `json:"count"`
}

func LiabilityTotals(liabilities []core.Liability, personID string) LiabilitySummary {
	s := LiabilitySummary{ByCategory: map[string]float64{}}
	for _, l := range ByPerson(liabilities, personID) {
		s.Outstanding += l.Outstanding
		s.Principal += l.Principal
		s.MonthlyEMI += l.EMI
		s.ByCategory[string(l.Category)] += l.Outstanding
		s.Count++
	}
	return s
}
