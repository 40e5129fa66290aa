// Package models defines the plain, serializable value objects exchanged
// between the resolution/computation core and its consumers (API handlers,
// exports, storage). No type in this package carries behavior.
package models

import "time"

// SourceTier identifies one data-source option in the resolver's priority
// chain. Priority order: ENHANCED > STATEMENTS > FILE_UPLOAD > CACHE.
type SourceTier string

const (
	TierEnhanced   SourceTier = "ENHANCED"    // Aggregated enhanced-financials provider (pre-computed, multi-statement)
	TierStatements SourceTier = "STATEMENTS"  // Separate balance-sheet + P&L calls, combined in-engine
	TierFileUpload SourceTier = "FILE_UPLOAD" // Extraction from an uploaded report (HTML/Markdown)
	TierCache      SourceTier = "CACHE"       // Previously resolved snapshot from the store
)

// Quality flags attached to Provenance. Flags are informational: a flagged
// snapshot is still usable, but downstream numbers derived from flagged
// fields carry Confidence=estimated.
const (
	FlagCoercedZero    = "coerced_zero"      // prefix; full form "coerced_zero:<field>"
	FlagNoCurrentSplit = "no_current_split"  // no current vs non-current asset/liability breakdown
	FlagNoCOGS         = "no_cogs_breakdown" // cost of goods sold not separately reported
	FlagScaleAdjusted  = "scale_adjusted"    // values multiplied by a detected "in thousands/millions" factor
	FlagPartialData    = "partial_data"      // one or more canonical fields absent from the source
	FlagSignFolded     = "sign_normalized"   // prefix; expense-class value arrived as a signed outflow ("(2,156)")
	FlagRatioMismatch  = "ratio_mismatch"    // prefix; aggregator-reported ratio diverges from the recomputed one
)

// Provenance records which tier satisfied a resolution request and any
// quality caveats reported by that tier or raised during normalization.
type Provenance struct {
	Tier         SourceTier `json:"tier"`
	ResolvedAt   time.Time  `json:"resolved_at"`
	QualityFlags []string   `json:"quality_flags,omitempty"`
}

// HasFlag reports whether the provenance carries the given flag, matching
// either exactly or as a "<flag>:<field>" prefixed form.
func (p Provenance) HasFlag(flag string) bool {
	for _, f := range p.QualityFlags {
		if f == flag {
			return true
		}
		if len(f) > len(flag) && f[:len(flag)] == flag && f[len(flag)] == ':' {
			return true
		}
	}
	return false
}

// FinancialSnapshot is the canonical one-period financial picture of a
// company. All monetary fields share one currency and one period granularity.
// NetIncome is either supplied by the source or derived as Revenue-Expenses
// at normalization time, never both inconsistently. Snapshots are immutable
// once constructed; re-resolution supersedes rather than mutates.
type FinancialSnapshot struct {
	CompanyID string `json:"company_id"`
	PeriodID  string `json:"period_id"` // e.g. "2025-FY", "2025-Q2"

	Revenue   float64 `json:"revenue"`
	Expenses  float64 `json:"expenses"`
	NetIncome float64 `json:"net_income"`

	Assets      float64 `json:"assets"`
	Liabilities float64 `json:"liabilities"`

	// Current/non-current splits, when the source supplies them. Zero with
	// FlagNoCurrentSplit means "not reported", not "reported as zero".
	CurrentAssets      float64 `json:"current_assets,omitempty"`
	CurrentLiabilities float64 `json:"current_liabilities,omitempty"`
	CostOfGoodsSold    float64 `json:"cost_of_goods_sold,omitempty"`

	Cash          *float64 `json:"cash,omitempty"`
	CustomerCount *int     `json:"customer_count,omitempty"`
	EmployeeCount *int     `json:"employee_count,omitempty"`

	Provenance Provenance `json:"provenance"`
}

// HasCurrentSplit reports whether the source supplied a usable current
// assets/liabilities breakdown.
func (s *FinancialSnapshot) HasCurrentSplit() bool {
	return s.CurrentAssets > 0 && s.CurrentLiabilities > 0 && !s.Provenance.HasFlag(FlagNoCurrentSplit)
}

// HasMonetaryData reports whether at least one monetary field is non-zero.
// The resolver uses this to distinguish a real payload from an empty shell.
func (s *FinancialSnapshot) HasMonetaryData() bool {
	return s.Revenue != 0 || s.Expenses != 0 || s.NetIncome != 0 ||
		s.Assets != 0 || s.Liabilities != 0
}
