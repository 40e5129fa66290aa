// Package insight turns the computed picture of a company (snapshot,
// metrics, score, benchmarks, trends) into qualitative insights and risk
// factors. A small ordered rule table maps threshold breaches to templates;
// each rule fires at most once per pass and touches no shared state, so the
// same inputs always produce the same finding set in the same order.
package insight

import (
	"fmt"

	"prospect_financials/pkg/models"
)

// Inputs is everything a rule may look at. All fields are read-only to rules.
type Inputs struct {
	Snapshot   *models.FinancialSnapshot
	Metrics    models.MetricSet
	Score      models.HealthScore
	Benchmarks []models.BenchmarkEntry
	Trends     *models.TrendMetrics // nil when the series was too short
}

func (in Inputs) metric(name string) float64 { return in.Metrics.Value(name) }

func (in Inputs) benchmarkTier(metric string) models.PerformanceTier {
	for _, b := range in.Benchmarks {
		if b.MetricName == metric {
			return b.PerformanceTier
		}
	}
	return ""
}

// rule is one row of the rule table. Exactly one of insight/risk is set.
type rule struct {
	name    string
	when    func(Inputs) bool
	insight func(Inputs) models.Insight
	risk    func(Inputs) models.RiskFactor
}

// ruleTable is evaluated top to bottom; output order follows declaration
// order. Thresholds reference the metric names they breach so every finding
// is attributable to its trigger.
var ruleTable = []rule{
	{
		name: "negative_net_income",
		when: func(in Inputs) bool {
			return in.Snapshot != nil && in.Snapshot.Revenue > 0 && in.Snapshot.NetIncome < 0
		},
		risk: func(in Inputs) models.RiskFactor {
			return models.RiskFactor{
				Category: "profitability",
				Title:    "Operating at a loss",
				Detail: fmt.Sprintf("Net income is %.0f on revenue of %.0f; the business is not covering its cost base.",
					in.Snapshot.NetIncome, in.Snapshot.Revenue),
				Severity:        models.SeverityHigh,
				Probability:     0.9,
				FinancialImpact: -in.Snapshot.NetIncome,
				RecommendedActions: []string{
					"Review cost structure against revenue drivers",
					"Identify unprofitable products or customer segments",
				},
			}
		},
	},
	{
		name: "low_net_margin",
		when: func(in Inputs) bool {
			return in.Snapshot != nil && in.Snapshot.Revenue > 0 &&
				in.Snapshot.NetIncome >= 0 && in.metric(models.MetricNetMargin) < 0.10
		},
		insight: func(in Inputs) models.Insight {
			margin := in.metric(models.MetricNetMargin)
			uplift := (0.10 - margin) * in.Snapshot.Revenue
			return models.Insight{
				Category: "profitability",
				Title:    "Margin improvement opportunity",
				Detail: fmt.Sprintf("Net margin of %.1f%% sits below the 10%% working threshold; closing the gap is worth roughly %.0f per period.",
					margin*100, uplift),
				Impact:          "medium",
				FinancialImpact: uplift,
				RecommendedActions: []string{
					"Benchmark pricing against the industry band",
					"Audit recurring expense categories for consolidation",
				},
			}
		},
	},
	{
		name: "low_current_ratio",
		when: func(in Inputs) bool {
			return in.metric(models.MetricCurrentRatio) > 0 && in.metric(models.MetricCurrentRatio) < 1.5
		},
		risk: func(in Inputs) models.RiskFactor {
			cr := in.metric(models.MetricCurrentRatio)
			severity := models.SeverityMedium
			probability := 0.4
			if cr < 1.0 {
				severity = models.SeverityHigh
				probability = 0.7
			}
			var shortfall float64
			if in.Snapshot != nil && in.Snapshot.CurrentLiabilities > 0 {
				shortfall = in.Snapshot.CurrentLiabilities*1.5 - in.Snapshot.CurrentAssets
			} else if in.Snapshot != nil {
				shortfall = in.Snapshot.Liabilities * (1.5 - cr) / 1.5
			}
			return models.RiskFactor{
				Category: "liquidity",
				Title:    "Tight short-term liquidity",
				Detail: fmt.Sprintf("Current ratio of %.2f is below the 1.5 comfort threshold; short-term obligations may strain cash.",
					cr),
				Severity:        severity,
				Probability:     probability,
				FinancialImpact: shortfall,
				RecommendedActions: []string{
					"Accelerate receivables collection",
					"Renegotiate payment terms with suppliers",
				},
			}
		},
	},
	{
		name: "high_leverage",
		when: func(in Inputs) bool {
			return in.metric(models.MetricDebtToEquity) > 1.0
		},
		risk: func(in Inputs) models.RiskFactor {
			de := in.metric(models.MetricDebtToEquity)
			var excess float64
			if in.Snapshot != nil {
				equity := in.Snapshot.Assets - in.Snapshot.Liabilities
				if equity > 0 {
					excess = in.Snapshot.Liabilities - equity
				}
			}
			return models.RiskFactor{
				Category: "leverage",
				Title:    "Elevated leverage",
				Detail: fmt.Sprintf("Debt-to-equity of %.2f exceeds 1.0; the balance sheet is majority debt-funded.",
					de),
				Severity:        models.SeverityHigh,
				Probability:     0.5,
				FinancialImpact: excess,
				RecommendedActions: []string{
					"Model refinancing against current rate environment",
					"Prioritize debt paydown from operating cash flow",
				},
			}
		},
	},
	{
		name: "declining_revenue",
		when: func(in Inputs) bool {
			return in.Trends != nil && !in.Trends.RevenueGrowth.Undefined && in.Trends.RevenueGrowth.Rate < 0
		},
		risk: func(in Inputs) models.RiskFactor {
			rate := in.Trends.RevenueGrowth.Rate
			var impact float64
			if in.Snapshot != nil {
				impact = -rate * in.Snapshot.Revenue
			}
			return models.RiskFactor{
				Category: "growth",
				Title:    "Revenue contraction",
				Detail: fmt.Sprintf("Revenue declined %.1f%% period over period.",
					-rate*100),
				Severity:        models.SeverityMedium,
				Probability:     0.6,
				FinancialImpact: impact,
				RecommendedActions: []string{
					"Segment revenue decline by product and customer cohort",
				},
			}
		},
	},
	{
		name: "strong_health_score",
		when: func(in Inputs) bool {
			return in.Score.Total >= 80
		},
		insight: func(in Inputs) models.Insight {
			return models.Insight{
				Category: "growth",
				Title:    "Strong overall financial position",
				Detail: fmt.Sprintf("Composite health score of %d/100 indicates capacity to fund expansion from the existing balance sheet.",
					in.Score.Total),
				Impact: "high",
				RecommendedActions: []string{
					"Position growth investment options in the conversation",
				},
			}
		},
	},
	{
		name: "top_tier_gross_margin",
		when: func(in Inputs) bool {
			return in.benchmarkTier(models.MetricGrossMargin) == models.TierExcellent
		},
		insight: func(in Inputs) models.Insight {
			return models.Insight{
				Category: "profitability",
				Title:    "Top-quartile gross margin",
				Detail: fmt.Sprintf("Gross margin of %.1f%% is at or above the industry top quartile, signalling pricing power.",
					in.metric(models.MetricGrossMargin)*100),
				Impact: "medium",
			}
		},
	},
	{
		name: "weak_asset_utilization",
		when: func(in Inputs) bool {
			tier := in.benchmarkTier(models.MetricAssetTurnover)
			return tier == models.TierBelowAverage || tier == models.TierPoor
		},
		insight: func(in Inputs) models.Insight {
			return models.Insight{
				Category: "efficiency",
				Title:    "Under-utilized asset base",
				Detail: fmt.Sprintf("Asset turnover of %.2f trails the industry average; assets are generating less revenue than peers'.",
					in.metric(models.MetricAssetTurnover)),
				Impact: "low",
				RecommendedActions: []string{
					"Review idle or non-core assets for divestment",
				},
			}
		},
	},
}
