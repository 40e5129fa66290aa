// Package normalize maps resolved provider payloads into the canonical
// FinancialSnapshot. One adapter per tier variant; every monetary field runs
// through the tolerant value parser. Normalization is a lossless transform:
// absent sub-components (e.g. no current/non-current split) are flagged, not
// estimated — estimation belongs to the metrics engine, which marks its
// results as such.
package normalize

import (
	"fmt"
	"time"

	"prospect_financials/pkg/core/parse"
	"prospect_financials/pkg/core/source"
	"prospect_financials/pkg/models"
)

// Normalize converts a resolution outcome into a FinancialSnapshot. The
// payload variant is dispatched exactly once here, at the resolver boundary.
func Normalize(res *source.Resolution) (*models.FinancialSnapshot, error) {
	if res == nil || res.Payload == nil {
		return nil, fmt.Errorf("nil resolution")
	}

	p := res.Payload
	var snap *models.FinancialSnapshot

	switch {
	case p.Enhanced != nil:
		snap = fromEnhanced(p.Enhanced)
	case p.Statements != nil:
		snap = fromStatements(p.Statements)
	case p.File != nil:
		snap = fromFile(p.File)
	case p.Cached != nil:
		cached := *p.Cached
		snap = &cached
	default:
		return nil, fmt.Errorf("payload for tier %s has no variant set", p.Tier)
	}

	snap.CompanyID = res.CompanyID
	snap.Provenance.Tier = p.Tier
	snap.Provenance.ResolvedAt = time.Now().UTC()
	snap.Provenance.QualityFlags = append(snap.Provenance.QualityFlags, p.Caveats...)

	normalizeSigns(snap)
	reconcileNetIncome(snap)
	return snap, nil
}

// normalizeSigns folds signed-outflow accounting notation into positive
// magnitudes. Report cells often carry expense-class amounts as "(2,156)";
// the canonical snapshot stores them positive so downstream formulas
// subtract them explicitly. Net income keeps its sign: a loss is a loss.
func normalizeSigns(snap *models.FinancialSnapshot) {
	fold := func(v *float64, name string) {
		if *v < 0 {
			*v = -*v
			snap.Provenance.QualityFlags = append(snap.Provenance.QualityFlags, models.FlagSignFolded+":"+name)
		}
	}
	fold(&snap.Expenses, "expenses")
	fold(&snap.CostOfGoodsSold, "cost_of_goods_sold")
}

// field parses one monetary value and appends a coerced_zero flag when the
// source held something unreadable.
func field(flags *[]string, name string, raw interface{}) float64 {
	v, coerced := parse.ParseNumericChecked(raw)
	if coerced {
		*flags = append(*flags, models.FlagCoercedZero+":"+name)
	}
	return v
}

// optionalCount is field for integer quantities (employees, customers).
func optionalCount(flags *[]string, name string, raw interface{}) int {
	n, coerced := parse.ParseCountChecked(raw)
	if coerced {
		*flags = append(*flags, models.FlagCoercedZero+":"+name)
	}
	return n
}

func fromEnhanced(e *source.EnhancedPayload) *models.FinancialSnapshot {
	var flags []string
	snap := &models.FinancialSnapshot{
		PeriodID:           e.PeriodID,
		Revenue:            field(&flags, "revenue", e.Revenue),
		Expenses:           field(&flags, "expenses", e.Expenses),
		NetIncome:          field(&flags, "net_income", e.NetIncome),
		Assets:             field(&flags, "assets", e.TotalAssets),
		Liabilities:        field(&flags, "liabilities", e.TotalLiabs),
		CurrentAssets:      field(&flags, "current_assets", e.CurrentAssets),
		CurrentLiabilities: field(&flags, "current_liabilities", e.CurrentLiabs),
		CostOfGoodsSold:    field(&flags, "cost_of_goods_sold", e.COGS),
	}

	if e.Cash != nil {
		cash := field(&flags, "cash", e.Cash)
		snap.Cash = &cash
	}
	if e.CustomerCount != nil {
		n := optionalCount(&flags, "customer_count", e.CustomerCount)
		snap.CustomerCount = &n
	}
	if e.EmployeeCount != nil {
		n := optionalCount(&flags, "employee_count", e.EmployeeCount)
		snap.EmployeeCount = &n
	}

	if snap.CurrentAssets == 0 || snap.CurrentLiabilities == 0 {
		flags = append(flags, models.FlagNoCurrentSplit)
	}
	if snap.CostOfGoodsSold == 0 {
		flags = append(flags, models.FlagNoCOGS)
	}

	snap.Provenance.QualityFlags = flags
	return snap
}

func fromStatements(s *source.StatementsPayload) *models.FinancialSnapshot {
	var flags []string
	snap := &models.FinancialSnapshot{PeriodID: s.PeriodID}

	if bs := s.BalanceSheet; bs != nil {
		snap.Assets = field(&flags, "assets", bs.TotalAssets)
		snap.Liabilities = field(&flags, "liabilities", bs.TotalLiabilities)
		snap.CurrentAssets = field(&flags, "current_assets", bs.CurrentAssets)
		snap.CurrentLiabilities = field(&flags, "current_liabilities", bs.CurrentLiabs)
		if bs.Cash != nil {
			cash := field(&flags, "cash", bs.Cash)
			snap.Cash = &cash
		}
	} else {
		flags = append(flags, models.FlagPartialData)
	}

	if pl := s.ProfitLoss; pl != nil {
		snap.Revenue = field(&flags, "revenue", pl.TotalIncome)
		snap.Expenses = field(&flags, "expenses", pl.TotalExpenses)
		snap.NetIncome = field(&flags, "net_income", pl.NetIncome)
		snap.CostOfGoodsSold = field(&flags, "cost_of_goods_sold", pl.COGS)
	} else {
		flags = append(flags, models.FlagPartialData)
	}

	if snap.CurrentAssets == 0 || snap.CurrentLiabilities == 0 {
		flags = append(flags, models.FlagNoCurrentSplit)
	}
	if snap.CostOfGoodsSold == 0 {
		flags = append(flags, models.FlagNoCOGS)
	}

	snap.Provenance.QualityFlags = flags
	return snap
}

func fromFile(f *source.FilePayload) *models.FinancialSnapshot {
	items := f.LineItems
	var flags []string

	snap := &models.FinancialSnapshot{
		PeriodID:           f.PeriodID,
		Revenue:            items["revenue"],
		Expenses:           items["expenses"],
		NetIncome:          items["net_income"],
		Assets:             items["total_assets"],
		Liabilities:        items["total_liabilities"],
		CurrentAssets:      items["current_assets"],
		CurrentLiabilities: items["current_liabilities"],
		CostOfGoodsSold:    items["cost_of_goods_sold"],
	}

	if cash, ok := items["cash"]; ok {
		snap.Cash = &cash
	}
	if n, ok := items["employee_count"]; ok {
		count := int(n)
		snap.EmployeeCount = &count
	}
	if n, ok := items["customer_count"]; ok {
		count := int(n)
		snap.CustomerCount = &count
	}

	// Extraction captures only what the document actually contained
	for _, required := range []string{"revenue", "expenses", "total_assets", "total_liabilities"} {
		if _, ok := items[required]; !ok {
			flags = append(flags, models.FlagPartialData)
			break
		}
	}
	if _, ok := items["current_assets"]; !ok {
		flags = append(flags, models.FlagNoCurrentSplit)
	}
	if _, ok := items["cost_of_goods_sold"]; !ok {
		flags = append(flags, models.FlagNoCOGS)
	}

	snap.Provenance.QualityFlags = flags
	return snap
}

// reconcileNetIncome enforces the snapshot invariant: net income is either
// supplied by the source or derived as revenue minus expenses, never both
// inconsistently. A supplied value wins; derivation only fills a gap.
func reconcileNetIncome(snap *models.FinancialSnapshot) {
	if snap.NetIncome != 0 {
		return
	}
	if snap.Revenue != 0 || snap.Expenses != 0 {
		snap.NetIncome = snap.Revenue - snap.Expenses
	}
}
