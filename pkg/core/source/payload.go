// Package source resolves a company's financial data from a prioritized
// chain of provider tiers. Each tier returns its own payload shape; the
// shapes converge on the canonical snapshot in pkg/core/normalize.
package source

import (
	"prospect_financials/pkg/core/parse"
	"prospect_financials/pkg/models"
)

// Payload is the tagged union of tier payload shapes. Exactly one variant
// field is set, matching Tier. The variant is inspected once, at the
// normalizer's dispatch, never re-branched downstream.
type Payload struct {
	Tier    models.SourceTier
	Caveats []string // quality caveats reported by the tier itself

	Enhanced   *EnhancedPayload
	Statements *StatementsPayload
	File       *FilePayload
	Cached     *models.FinancialSnapshot
}

// EnhancedPayload is the aggregated enhanced-financials shape: one call
// returning multi-statement totals plus pre-computed ratios. Raw fields are
// interface{} because the upstream intermixes typed numbers and formatted
// report-cell strings; everything goes through parse.ParseNumeric during
// normalization.
type EnhancedPayload struct {
	PeriodID string `json:"period_id"`

	Revenue       interface{} `json:"revenue"`
	Expenses      interface{} `json:"expenses"`
	NetIncome     interface{} `json:"net_income"`
	TotalAssets   interface{} `json:"total_assets"`
	TotalLiabs    interface{} `json:"total_liabilities"`
	CurrentAssets interface{} `json:"current_assets"`
	CurrentLiabs  interface{} `json:"current_liabilities"`
	COGS          interface{} `json:"cost_of_goods_sold"`
	Cash          interface{} `json:"cash"`

	CustomerCount interface{} `json:"customer_count"`
	EmployeeCount interface{} `json:"employee_count"`

	// Pre-computed ratios supplied by the aggregator. The metrics engine
	// always recomputes from the snapshot so that every number shown is
	// explainable from one model; reported ratios are cross-checked against
	// the recomputed set and divergence is flagged in provenance.
	PrecomputedRatios map[string]interface{} `json:"precomputed_ratios,omitempty"`
}

// StatementsPayload combines the two basic statement calls (balance sheet +
// profit and loss) made separately against the accounting system.
type StatementsPayload struct {
	PeriodID     string              `json:"period_id"`
	BalanceSheet *BalanceSheetReport `json:"balance_sheet"`
	ProfitLoss   *ProfitLossReport   `json:"profit_and_loss"`
}

// BalanceSheetReport mirrors the accounting system's balance-sheet report
// shape: summary totals plus optional section subtotals.
type BalanceSheetReport struct {
	TotalAssets      interface{} `json:"total_assets"`
	TotalLiabilities interface{} `json:"total_liabilities"`
	CurrentAssets    interface{} `json:"current_assets"`
	CurrentLiabs     interface{} `json:"current_liabilities"`
	Cash             interface{} `json:"cash"`
}

// ProfitLossReport mirrors the profit-and-loss report shape.
type ProfitLossReport struct {
	TotalIncome   interface{} `json:"total_income"`
	TotalExpenses interface{} `json:"total_expenses"`
	NetIncome     interface{} `json:"net_income"`
	COGS          interface{} `json:"cost_of_goods_sold"`
}

// FilePayload is the output of the file/manual-upload extraction tier: line
// items keyed by normalized label, already scale-adjusted (values multiplied
// by any detected "in thousands" factor).
type FilePayload struct {
	PeriodID    string             `json:"period_id"`
	SourceName  string             `json:"source_name"` // uploaded file name
	ScaleFactor float64            `json:"scale_factor"`
	LineItems   map[string]float64 `json:"line_items"`
}

// hasMonetaryData reports whether the payload carries at least one non-zero
// monetary field. An all-zero payload is treated by the resolver as a soft
// failure so the next tier gets a chance.
func (p *Payload) hasMonetaryData() bool {
	switch {
	case p.Enhanced != nil:
		e := p.Enhanced
		return anyNonZero(e.Revenue, e.Expenses, e.NetIncome, e.TotalAssets, e.TotalLiabs)
	case p.Statements != nil:
		s := p.Statements
		var vals []interface{}
		if s.BalanceSheet != nil {
			vals = append(vals, s.BalanceSheet.TotalAssets, s.BalanceSheet.TotalLiabilities)
		}
		if s.ProfitLoss != nil {
			vals = append(vals, s.ProfitLoss.TotalIncome, s.ProfitLoss.TotalExpenses, s.ProfitLoss.NetIncome)
		}
		return anyNonZero(vals...)
	case p.File != nil:
		for _, v := range p.File.LineItems {
			if v != 0 {
				return true
			}
		}
		return false
	case p.Cached != nil:
		return p.Cached.HasMonetaryData()
	default:
		return false
	}
}

func anyNonZero(vals ...interface{}) bool {
	for _, v := range vals {
		if parse.ParseNumeric(v) != 0 {
			return true
		}
	}
	return false
}
