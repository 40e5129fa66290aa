// Package health computes the composite 0-100 health score from one
// snapshot. The banding is data: four ordered threshold tables evaluated
// independently and summed onto the base score, then clamped. Boundary
// behavior is testable per band without touching the others.
package health

import (
	"prospect_financials/pkg/models"
)

// BaseScore is the starting point before any band contributes.
const BaseScore = 50

// band is one row of a score table: strictly exceeding Threshold earns
// Points. Rows are ordered highest threshold first; the first match wins.
type band struct {
	Threshold float64
	Points    int
}

// score walks a band table and returns the points of the first row whose
// threshold the value strictly exceeds.
func score(table []band, value float64) int {
	for _, b := range table {
		if value > b.Threshold {
			return b.Points
		}
	}
	return 0
}

var revenueScaleBands = []band{
	{5000000, 20},
	{1000000, 15},
	{500000, 10},
	{0, 5},
}

// profitabilityBands score net margin (net income over revenue).
var profitabilityBands = []band{
	{0.20, 25},
	{0.15, 20},
	{0.10, 15},
	{0.05, 10},
	{0, 5},
}

// liquidityBands score assets over liabilities.
var liquidityBands = []band{
	{2.5, 15},
	{2.0, 12},
	{1.5, 8},
	{1.0, 5},
}

var growthPotentialBands = []band{
	{100000, 10},
	{50000, 5},
}

// Score computes the health score for one snapshot. Sub-scores are
// independent; their sum on top of the base is clamped to [0,100].
func Score(snap *models.FinancialSnapshot) models.HealthScore {
	breakdown := map[string]int{
		models.ScoreRevenueScale:    0,
		models.ScoreProfitability:   0,
		models.ScoreLiquidity:       0,
		models.ScoreGrowthPotential: 0,
	}

	if snap != nil {
		breakdown[models.ScoreRevenueScale] = score(revenueScaleBands, snap.Revenue)
		breakdown[models.ScoreGrowthPotential] = score(growthPotentialBands, snap.Revenue)

		if snap.Revenue > 0 {
			breakdown[models.ScoreProfitability] = score(profitabilityBands, snap.NetIncome/snap.Revenue)
		}
		if snap.Assets > 0 && snap.Liabilities > 0 {
			breakdown[models.ScoreLiquidity] = score(liquidityBands, snap.Assets/snap.Liabilities)
		}
	}

	total := BaseScore
	for _, pts := range breakdown {
		total += pts
	}

	return models.HealthScore{Total: clamp(total, 0, 100), Breakdown: breakdown}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
