package analytics

import "mapfin/internal/core"

type RunwayResult struct {
	LiquidAssets          float64   `json:"liquid_assets"`
	IlliquidAssets        float64   `json:"illiquid_assets"`
	CriticalMonthlyBudget float64   `json:"critical_monthly_budget"`
	RunwayMonths          float64   `json:"runway_months"`
	SnapshotDate          core.Date `json:"snapshot_date"`
}

// Runway estimates how many months liquid assets cover the critical budget.
// Only the latest snapshot of the person (or everyone, for an empty id) is
// classified. A zero critical budget gives 0 months.
func Runway(entries []core.NetWorthEntry, budgets []core.Budget, personID string) RunwayResult {
	snap := LatestSnapshot(entries, personID)
	res := RunwayResult{SnapshotDate: snap.Date}
	for _, e := range snap.Entries {
		if e.Category.IsLiquid() {
			res.LiquidAssets += e.Amount
		} else {
			res.IlliquidAssets += e.Amount
		}
	}
	res.CriticalMonthlyBudget = CriticalBudget(budgets)
	if res.CriticalMonthlyBudget > 0 {
		res.RunwayMonths = res.LiquidAssets / res.CriticalMonthlyBudget
	}
	return res
}

// CriticalBudget sums the monthly limits of critical budgets.
func CriticalBudget(budgets []core.Budget) float64 {
	var total float64
	for _, b := range budgets {
		if b.Critical() {
			total += b.MonthlyLimit
		}
	}
	return total
}
