// Package trend computes period-over-period growth from an ordered snapshot
// series. Growth is only ever taken between adjacent points; a zero prior
// period yields growth 0 flagged undefined_baseline instead of +Inf.
package trend

import (
	"math"

	"prospect_financials/pkg/models"
)

// Growth computes trend metrics over a series ordered by period start
// (oldest first). A series shorter than two points yields nil: no growth is
// computable, and that is not an error.
func Growth(series []*models.FinancialSnapshot) *models.TrendMetrics {
	if len(series) < 2 {
		return nil
	}

	latest := series[len(series)-1]
	previous := series[len(series)-2]

	tm := &models.TrendMetrics{
		Periods:         len(series),
		RevenueGrowth:   rate(latest.Revenue, previous.Revenue),
		NetIncomeGrowth: rate(latest.NetIncome, previous.NetIncome),
		CashFlowGrowth:  rate(optional(latest.Cash), optional(previous.Cash)),
		EmployeeGrowth:  rate(count(latest.EmployeeCount), count(previous.EmployeeCount)),
		CustomerGrowth:  rate(count(latest.CustomerCount), count(previous.CustomerCount)),
	}

	tm.RevenueCAGR = cagr(series[0].Revenue, latest.Revenue, len(series)-1)
	return tm
}

// rate is adjacent-pair growth with the zero-baseline guard.
func rate(current, previous float64) models.GrowthRate {
	if previous == 0 {
		return models.GrowthRate{Rate: 0, Undefined: true}
	}
	return models.GrowthRate{Rate: (current - previous) / math.Abs(previous)}
}

// cagr is compound annual growth over the whole series; 0 when the starting
// value or period count makes it undefined.
func cagr(beginning, ending float64, periods int) float64 {
	if beginning <= 0 || ending <= 0 || periods == 0 {
		return 0
	}
	return math.Pow(ending/beginning, 1.0/float64(periods)) - 1
}

func optional(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

func count(v *int) float64 {
	if v == nil {
		return 0
	}
	return float64(*v)
}
