package models

// Confidence tags whether a derived value came directly from source data or
// was inferred via a documented heuristic.
type Confidence string

const (
	ConfidenceMeasured  Confidence = "measured"
	ConfidenceEstimated Confidence = "estimated"
)

// MetricValue is one named ratio with its confidence tag.
type MetricValue struct {
	Value      float64    `json:"value"`
	Confidence Confidence `json:"confidence"`
}

// MetricSet maps ratio names (current_ratio, gross_margin, ...) to values.
// Derived solely from one FinancialSnapshot; recomputed, never edited.
type MetricSet map[string]MetricValue

// Canonical metric names produced by the derived-metrics engine.
const (
	MetricCurrentRatio  = "current_ratio"
	MetricQuickRatio    = "quick_ratio"
	MetricGrossMargin   = "gross_margin"
	MetricNetMargin     = "net_margin"
	MetricDebtToEquity  = "debt_to_equity"
	MetricAssetTurnover = "asset_turnover"
)

// Value returns the metric's numeric value, or 0 when absent.
func (m MetricSet) Value(name string) float64 {
	return m[name].Value
}

// HealthScore is a composite 0-100 indicator of financial soundness plus the
// sub-scores whose clamped sum produced it. Owned by exactly one snapshot.
type HealthScore struct {
	Total     int            `json:"total"`
	Breakdown map[string]int `json:"breakdown"` // revenue_scale, profitability, liquidity, growth_potential
}

// Sub-score keys in a HealthScore breakdown.
const (
	ScoreRevenueScale    = "revenue_scale"
	ScoreProfitability   = "profitability"
	ScoreLiquidity       = "liquidity"
	ScoreGrowthPotential = "growth_potential"
)

// PerformanceTier is a qualitative bucket relative to industry reference values.
type PerformanceTier string

const (
	TierExcellent    PerformanceTier = "excellent"
	TierAboveAverage PerformanceTier = "above_average"
	TierAverage      PerformanceTier = "average"
	TierBelowAverage PerformanceTier = "below_average"
	TierPoor         PerformanceTier = "poor"
)

// BenchmarkEntry classifies one company metric against industry reference bands.
type BenchmarkEntry struct {
	MetricName      string          `json:"metric_name"`
	CompanyValue    float64         `json:"company_value"`
	IndustryAverage float64         `json:"industry_average"`
	TopQuartile     float64         `json:"top_quartile"`
	TopDecile       float64         `json:"top_decile"`
	PerformanceTier PerformanceTier `json:"performance_tier"`
	Trend           string          `json:"trend,omitempty"` // improving | declining | flat, when history is available
}

// GrowthRate is one period-over-period rate for a tracked field. Undefined
// reports a zero prior period (growth forced to 0 rather than +Inf).
type GrowthRate struct {
	Rate      float64 `json:"rate"`
	Undefined bool    `json:"undefined_baseline,omitempty"`
}

// TrendMetrics holds growth rates between the two most recent snapshots of a
// series, plus compound growth over the full series where computable.
type TrendMetrics struct {
	Periods int `json:"periods"` // number of snapshots in the series

	RevenueGrowth   GrowthRate `json:"revenue_growth"`
	NetIncomeGrowth GrowthRate `json:"net_income_growth"`
	CashFlowGrowth  GrowthRate `json:"cash_flow_growth"`
	EmployeeGrowth  GrowthRate `json:"employee_growth"`
	CustomerGrowth  GrowthRate `json:"customer_growth"`

	RevenueCAGR float64 `json:"revenue_cagr,omitempty"`
}

// Severity levels for risk factors; impact levels for insights.
const (
	SeverityHigh   = "high"
	SeverityMedium = "medium"
	SeverityLow    = "low"
)

// Insight is a qualitative finding produced by the rule engine (or spliced in
// from the AI collaborator, tagged with its own category). Regenerated on
// every pass; never a source of truth.
type Insight struct {
	ID                 string   `json:"id"`
	Category           string   `json:"category"` // profitability | liquidity | growth | efficiency | ai_generated
	Title              string   `json:"title"`
	Detail             string   `json:"detail"`
	Impact             string   `json:"impact"` // high | medium | low
	FinancialImpact    float64  `json:"financial_impact_estimate"`
	RecommendedActions []string `json:"recommended_actions,omitempty"`
	Rule               string   `json:"rule,omitempty"` // rule that fired; empty for AI entries
}

// RiskFactor is a rule-triggered exposure with an estimated probability and
// financial impact.
type RiskFactor struct {
	ID                 string   `json:"id"`
	Category           string   `json:"category"`
	Title              string   `json:"title"`
	Detail             string   `json:"detail"`
	Severity           string   `json:"severity"`
	Probability        float64  `json:"probability,omitempty"` // 0-1
	FinancialImpact    float64  `json:"financial_impact_estimate"`
	RecommendedActions []string `json:"recommended_actions,omitempty"`
	Rule               string   `json:"rule,omitempty"`
}
