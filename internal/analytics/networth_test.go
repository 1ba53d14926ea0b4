package analytics

import (
	"math"
	"testing"
	"time"

	"github.com/carlmjohnson/be"

	"mapfin/internal/core"
)

func nw(id, person string, date core.Date, cat core.AssetCategory, amount float64) core.NetWorthEntry {
	return core.NetWorthEntry{ID: id, PersonID: person, ReportDate: date, Category: cat, Amount: amount}
}

func TestScenarioLatestSnapshot(t *testing.T) {
	entries := []core.NetWorthEntry{
		nw("n1", "manan", core.NewDate(2024, 11, 1), core.MutualFunds, 1_750_000),
		nw("n2", "manan", core.NewDate(2024, 12, 1), core.MutualFunds, 1_855_000),
	}
	snap := LatestSnapshot(entries, "manan")
	be.Equal(t, "2024-12-01", snap.Date.String())
	be.Equal(t, 1_855_000.0, snap.Total)
	be.Equal(t, 1, len(snap.ByCategory))
	be.Equal(t, 1_855_000.0, snap.ByCategory["mutual_funds"])

	slices := NetWorthByCategory(entries, "manan", core.AssetLabels(), core.ChartPalette)
	be.Equal(t, 1, len(slices))
	be.Equal(t, "Mutual Funds", slices[0].Name)
	be.Equal(t, 100.0, slices[0].Percentage)
}

func TestLatestSnapshotSumsSharedDate(t *testing.T) {
	dec := core.NewDate(2024, 12, 1)
	entries := []core.NetWorthEntry{
		nw("a", "manan", dec, core.MutualFunds, 100),
		nw("b", "manan", dec, core.MutualFunds, 50),
		nw("c", "manan", dec, core.LiquidCash, 25),
		nw("d", "spouse", core.NewDate(2025, 1, 1), core.Gold, 10),
		nw("e", "spouse", dec, core.Gold, 7),
	}
	snap := LatestSnapshot(entries, "manan")
	be.Equal(t, 175.0, snap.Total)
	be.Equal(t, 150.0, snap.ByCategory["mutual_funds"])
	be.Equal(t, 3, len(snap.Entries))

	all := LatestSnapshot(entries, "")
	be.Equal(t, "2025-01-01", all.Date.String())
	be.Equal(t, 10.0, all.Total)
}

func TestLatestSnapshotEmpty(t *testing.T) {
	snap := LatestSnapshot(nil, "manan")
	be.True(t, snap.Date.IsEmpty())
	be.Equal(t, 0.0, snap.Total)
	be.Equal(t, 0, len(NetWorthByCategory(nil, "", core.AssetLabels(), core.ChartPalette)))
}

func TestNetWorthByPeriod(t *testing.T) {
	entries := []core.NetWorthEntry{
		nw("a", "manan", core.NewDate(2024, 12, 1), core.MutualFunds, 200),
		nw("b", "manan", core.NewDate(2024, 10, 1), core.MutualFunds, 100),
		nw("c", "manan", core.NewDate(2024, 10, 1), core.Gold, 40),
		nw("d", "manan", core.NewDate(2022, 1, 1), core.Gold, 1),
		nw("e", "spouse", core.NewDate(2024, 11, 1), core.Gold, 999),
	}
	r, err := Resolve(Preset1Y, day(2024, 12, 31))
	be.NilErr(t, err)

	got := NetWorthByPeriod(entries, r, Monthly, "manan")
	be.Equal(t, 2, len(got))
	be.Equal(t, "Oct 2024", got[0].Period)
	be.Equal(t, 140.0, got[0].Total)
	be.Equal(t, 40.0, got[0].Breakdown["gold"])
	be.Equal(t, "Dec 2024", got[1].Period)

	// Oct, Nov and Dec share a quarter; the Dec snapshot stands for it.
	quarterly := NetWorthByPeriod(entries, r, Quarterly, "")
	be.Equal(t, 1, len(quarterly))
	be.Equal(t, "Q4 2024", quarterly[0].Period)
	be.Equal(t, 200.0, quarterly[0].Total)
}

func TestNetWorthSeriesLabelsAreUnique(t *testing.T) {
	entries := []core.NetWorthEntry{
		nw("a", "manan", core.NewDate(2024, 10, 1), core.LiquidCash, 100),
		nw("b", "manan", core.NewDate(2024, 11, 1), core.LiquidCash, 110),
		nw("c", "manan", core.NewDate(2024, 12, 1), core.LiquidCash, 120),
		nw("d", "manan", core.NewDate(2024, 12, 20), core.LiquidCash, 130),
	}
	r, err := Resolve(Preset1Y, day(2024, 12, 31))
	be.NilErr(t, err)
	be.Equal(t, Quarterly, r.Granularity)

	got := NetWorthWithLiabilities(entries, nil, r, "manan")
	be.Equal(t, 3, len(got))
	seen := map[string]bool{}
	for _, p := range got {
		be.False(t, seen[p.Period])
		seen[p.Period] = true
	}
	be.Equal(t, "Dec 2024", got[2].Period)
	be.Equal(t, 130.0, got[2].NetWorth)
}

func TestNetWorthWithLiabilities(t *testing.T) {
	entries := []core.NetWorthEntry{
		nw("a", "manan", core.NewDate(2024, 11, 1), core.MutualFunds, 1000),
		nw("b", "manan", core.NewDate(2024, 12, 1), core.MutualFunds, 1200),
	}
	liabilities := []core.Liability{
		{ID: "l1", PersonID: "manan", Category: core.HomeLoan, Outstanding: 300, Principal: 500, EMI: 20},
		{ID: "l2", PersonID: "spouse", Category: core.CarLoan, Outstanding: 900},
	}
	r := TimeRange{Start: day(2024, 1, 1), End: time.Date(2024, 12, 31, 23, 0, 0, 0, time.UTC)}
	got := NetWorthWithLiabilities(entries, liabilities, r, "manan")
	be.Equal(t, 2, len(got))
	for _, p := range got {
		be.Equal(t, -300.0, p.Liabilities)
		be.Equal(t, p.Assets-300, p.NetWorth)
	}
	be.Equal(t, 900.0, got[1].NetWorth)

	sum := LiabilityTotals(liabilities, "")
	be.Equal(t, 1200.0, sum.Outstanding)
	be.Equal(t, 2, sum.Count)
	be.Equal(t, 300.0, sum.ByCategory["home_loan"])
}

func TestScenarioRunway(t *testing.T) {
	yes := true
	entries := []core.NetWorthEntry{
		nw("a", "manan", core.NewDate(2024, 12, 1), core.LiquidCash, 90_000),
		nw("b", "manan", core.NewDate(2024, 12, 1), core.RealEstate, 5_000_000),
		nw("old", "manan", core.NewDate(2024, 6, 1), core.LiquidCash, 1_000_000),
	}
	budgets := []core.Budget{{Category: core.Groceries, MonthlyLimit: 15_000, IsCritical: &yes}}

	got := Runway(entries, budgets, "manan")
	be.Equal(t, 90_000.0, got.LiquidAssets)
	be.Equal(t, 5_000_000.0, got.IlliquidAssets)
	be.Equal(t, 15_000.0, got.CriticalMonthlyBudget)
	be.Equal(t, 6.0, got.RunwayMonths)
}

func TestRunwayCriticalDefaults(t *testing.T) {
	no := false
	entries := []core.NetWorthEntry{nw("a", "", core.NewDate(2024, 1, 1), core.MutualFunds, 120_000)}
	budgets := []core.Budget{
		{Category: core.Groceries, MonthlyLimit: 10_000},
		{Category: core.UtilitiesRent, MonthlyLimit: 30_000},
		{Category: core.FoodDining, MonthlyLimit: 8_000},
		{Category: core.FitnessHealth, MonthlyLimit: 5_000, IsCritical: &no},
		{Category: "pets", MonthlyLimit: 2_000},
	}
	got := Runway(entries, budgets, "")
	be.Equal(t, 40_000.0, got.CriticalMonthlyBudget)
	be.Equal(t, 3.0, got.RunwayMonths)
}

func TestRunwayZeroBudget(t *testing.T) {
	entries := []core.NetWorthEntry{nw("a", "", core.NewDate(2024, 1, 1), core.LiquidCash, 10)}
	got := Runway(entries, []core.Budget{{Category: core.Leisure, MonthlyLimit: 500}}, "")
	be.Equal(t, 0.0, got.CriticalMonthlyBudget)
	be.Equal(t, 0.0, got.RunwayMonths)
	be.False(t, math.IsInf(got.RunwayMonths, 0))

	empty := Runway(nil, nil, "")
	be.Equal(t, 0.0, empty.LiquidAssets)
	be.Equal(t, 0.0, empty.RunwayMonths)
}
