// Package metrics derives the named ratio set from one FinancialSnapshot.
// All formulas are pure; every divide-by-zero funnels through one guard so
// the zero-default policy cannot drift between call sites. Anything computed
// via a documented heuristic (COGS share, quick-ratio factor, total-for-
// current substitution) is tagged Confidence=estimated.
package metrics

import (
	"math"
	"sort"

	"prospect_financials/pkg/core/parse"
	"prospect_financials/pkg/models"
)

// EstimationPolicy is the single, versioned home of every estimation
// constant used by the engine. Hoisting these here keeps the estimation
// policy auditable: the same share of expenses is treated as COGS everywhere.
type EstimationPolicy struct {
	Version string `json:"version"`

	// COGSShareOfExpenses approximates cost of goods sold as a share of
	// total expenses when COGS is not separately reported.
	COGSShareOfExpenses float64 `json:"cogs_share_of_expenses"`

	// QuickRatioFactor approximates the quick ratio from the current ratio
	// when no quick-asset breakdown is available.
	QuickRatioFactor float64 `json:"quick_ratio_factor"`
}

// DefaultPolicy is the engine's standard estimation policy.
var DefaultPolicy = EstimationPolicy{
	Version:             "2025.1",
	COGSShareOfExpenses: 0.65,
	QuickRatioFactor:    0.90,
}

// Engine computes MetricSets under one estimation policy.
type Engine struct {
	policy EstimationPolicy
}

func NewEngine() *Engine {
	return &Engine{policy: DefaultPolicy}
}

func NewEngineWithPolicy(policy EstimationPolicy) *Engine {
	return &Engine{policy: policy}
}

// safeRatio is the centralized divide-by-zero guard. A non-positive
// denominator yields the documented default 0 with defined=false; callers
// mark such results Confidence=estimated. Negative denominators (e.g.
// negative equity) clamp to 0 the same way rather than producing a
// misleading negative ratio.
func safeRatio(numerator, denominator float64) (float64, bool) {
	if denominator <= 0 {
		return 0, false
	}
	return numerator / denominator, true
}

func tag(value float64, measured bool) models.MetricValue {
	conf := models.ConfidenceEstimated
	if measured {
		conf = models.ConfidenceMeasured
	}
	return models.MetricValue{Value: value, Confidence: conf}
}

// Compute derives the full ratio set from one snapshot.
func (e *Engine) Compute(snap *models.FinancialSnapshot) models.MetricSet {
	if snap == nil {
		return models.MetricSet{}
	}

	set := models.MetricSet{}

	// --- Liquidity ---
	currentRatio, currentMeasured := e.currentRatio(snap)
	set[models.MetricCurrentRatio] = tag(currentRatio, currentMeasured)

	// No quick-asset breakdown exists in the snapshot model, so the quick
	// ratio is always a scaled estimate of the current ratio.
	set[models.MetricQuickRatio] = tag(currentRatio*e.policy.QuickRatioFactor, false)

	// --- Profitability ---
	set[models.MetricGrossMargin] = e.grossMargin(snap)

	netMargin, ok := safeRatio(snap.NetIncome, snap.Revenue)
	set[models.MetricNetMargin] = tag(netMargin, ok)

	// --- Leverage ---
	equity := snap.Assets - snap.Liabilities
	debtToEquity, ok := safeRatio(snap.Liabilities, equity)
	set[models.MetricDebtToEquity] = tag(debtToEquity, ok)

	// --- Efficiency ---
	assetTurnover, ok := safeRatio(snap.Revenue, snap.Assets)
	set[models.MetricAssetTurnover] = tag(assetTurnover, ok)

	return set
}

// currentRatio uses the current split when the source supplied one, falling
// back to total assets over total liabilities as an estimate.
func (e *Engine) currentRatio(snap *models.FinancialSnapshot) (float64, bool) {
	if snap.HasCurrentSplit() {
		v, ok := safeRatio(snap.CurrentAssets, snap.CurrentLiabilities)
		return v, ok
	}
	v, _ := safeRatio(snap.Assets, snap.Liabilities)
	return v, false
}

// ratioTolerance bounds the accepted absolute divergence between an
// aggregator-reported ratio and the engine's own figure.
const ratioTolerance = 0.01

// VerifyPrecomputed cross-checks ratios reported by an upstream aggregator
// against the recomputed set. Divergent entries come back as provenance
// flags ("ratio_mismatch:<metric>"), sorted for stable output. Unknown
// metric names and unreadable values are skipped: verification never
// invents problems the engine cannot confirm.
func VerifyPrecomputed(set models.MetricSet, reported map[string]interface{}) []string {
	var flags []string
	for name, raw := range reported {
		mv, ok := set[name]
		if !ok {
			continue
		}
		v, coerced := parse.ParseNumericChecked(raw)
		if coerced {
			continue
		}
		if math.Abs(v-mv.Value) > ratioTolerance {
			flags = append(flags, models.FlagRatioMismatch+":"+name)
		}
	}
	sort.Strings(flags)
	return flags
}

// grossMargin prefers reported COGS; otherwise approximates COGS as a policy
// share of total expenses.
func (e *Engine) grossMargin(snap *models.FinancialSnapshot) models.MetricValue {
	if snap.Revenue <= 0 {
		return tag(0, false)
	}
	if snap.CostOfGoodsSold > 0 {
		v, ok := safeRatio(snap.Revenue-snap.CostOfGoodsSold, snap.Revenue)
		return tag(v, ok)
	}
	estimatedCOGS := snap.Expenses * e.policy.COGSShareOfExpenses
	v, _ := safeRatio(snap.Revenue-estimatedCOGS, snap.Revenue)
	return tag(v, false)
}
