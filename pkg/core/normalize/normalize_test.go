package normalize

import (
	"context"
	"testing"

	"prospect_financials/pkg/core/source"
	"prospect_financials/pkg/models"
)

func resolution(tier models.SourceTier, p *source.Payload) *source.Resolution {
	p.Tier = tier
	return &source.Resolution{CompanyID: "acme", Payload: p}
}

func TestNormalizeEnhanced(t *testing.T) {
	res := resolution(models.TierEnhanced, &source.Payload{
		Enhanced: &source.EnhancedPayload{
			PeriodID:      "2025-FY",
			Revenue:       "$2,840,000",
			Expenses:      2156000,
			TotalAssets:   10500000,
			TotalLiabs:    3800000,
			CurrentAssets: 2000000,
			CurrentLiabs:  800000,
			Cash:          "1,200,000",
			EmployeeCount: 42,
		},
	})

	snap, err := Normalize(res)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}

	if snap.Revenue != 2840000 {
		t.Errorf("formatted revenue should parse to 2840000, got %f", snap.Revenue)
	}
	if snap.NetIncome != 684000 {
		t.Errorf("net income should be derived as revenue-expenses, got %f", snap.NetIncome)
	}
	if !snap.HasCurrentSplit() {
		t.Error("current split was supplied and should be usable")
	}
	if snap.Cash == nil || *snap.Cash != 1200000 {
		t.Errorf("cash expected 1200000, got %v", snap.Cash)
	}
	if snap.EmployeeCount == nil || *snap.EmployeeCount != 42 {
		t.Errorf("employee count expected 42, got %v", snap.EmployeeCount)
	}
	if snap.CompanyID != "acme" || snap.PeriodID != "2025-FY" {
		t.Errorf("identity fields lost: %s %s", snap.CompanyID, snap.PeriodID)
	}
	if snap.Provenance.Tier != models.TierEnhanced {
		t.Errorf("provenance tier expected ENHANCED, got %s", snap.Provenance.Tier)
	}
}

func TestNormalizeSuppliedNetIncomeWins(t *testing.T) {
	res := resolution(models.TierEnhanced, &source.Payload{
		Enhanced: &source.EnhancedPayload{
			Revenue:   1000,
			Expenses:  900,
			NetIncome: 50, // source knows about below-the-line items
		},
	})

	snap, _ := Normalize(res)
	if snap.NetIncome != 50 {
		t.Errorf("supplied net income must win over derivation, got %f", snap.NetIncome)
	}
}

func TestNormalizeFlagsCoercedValues(t *testing.T) {
	res := resolution(models.TierEnhanced, &source.Payload{
		Enhanced: &source.EnhancedPayload{
			Revenue:     "not a number",
			TotalAssets: 500000,
		},
	})

	snap, _ := Normalize(res)
	if snap.Revenue != 0 {
		t.Errorf("malformed revenue coerces to 0, got %f", snap.Revenue)
	}
	if !snap.Provenance.HasFlag(models.FlagCoercedZero) {
		t.Errorf("coercion must be visible as a quality flag, got %v", snap.Provenance.QualityFlags)
	}
}

func TestNormalizeFoldsParenthesizedExpenses(t *testing.T) {
	res := resolution(models.TierEnhanced, &source.Payload{
		Enhanced: &source.EnhancedPayload{
			PeriodID: "2025-FY",
			Revenue:  "2,840,000",
			Expenses: "(2,156,000)", // accounting notation: outflow, not a credit
		},
	})

	snap, err := Normalize(res)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if snap.Expenses != 2156000 {
		t.Errorf("parenthesized expenses should fold to positive magnitude, got %f", snap.Expenses)
	}
	if snap.NetIncome != 684000 {
		t.Errorf("derived net income expected 684000, got %f", snap.NetIncome)
	}
	if !snap.Provenance.HasFlag(models.FlagSignFolded) {
		t.Errorf("sign fold must be visible as a quality flag, got %v", snap.Provenance.QualityFlags)
	}
}

func TestNormalizeUploadedReportParenthesizedOutflows(t *testing.T) {
	html := `<html><body>
		<table>
			<tr><td>Total Revenue</td><td>$2,840,000</td></tr>
			<tr><td>Total Expenses</td><td>(2,156,000)</td></tr>
			<tr><td>Total Assets</td><td>10,500,000</td></tr>
			<tr><td>Total Liabilities</td><td>3,800,000</td></tr>
		</table>
	</body></html>`

	provider := source.NewFileProvider(source.Document{
		Name:    "acme_fy.html",
		Format:  source.FormatHTML,
		Content: []byte(html),
	}, "2025-FY")

	payload, err := provider.Fetch(context.Background(), "acme")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}

	snap, err := Normalize(resolution(models.TierFileUpload, payload))
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if snap.Expenses != 2156000 {
		t.Errorf("extracted expenses should fold to positive magnitude, got %f", snap.Expenses)
	}
	if snap.NetIncome != 684000 {
		t.Errorf("derived net income expected 684000, got %f", snap.NetIncome)
	}
	if snap.NetIncome > snap.Revenue {
		t.Errorf("derived net income %f cannot exceed revenue %f", snap.NetIncome, snap.Revenue)
	}
}

func TestNormalizeFlagsCoercedOptionalFields(t *testing.T) {
	res := resolution(models.TierEnhanced, &source.Payload{
		Enhanced: &source.EnhancedPayload{
			Revenue:       1000000,
			Cash:          "garbage",
			CustomerCount: "many",
		},
	})

	snap, _ := Normalize(res)
	if !snap.Provenance.HasFlag(models.FlagCoercedZero + ":cash") {
		t.Errorf("coerced cash must be flagged, got %v", snap.Provenance.QualityFlags)
	}
	if !snap.Provenance.HasFlag(models.FlagCoercedZero + ":customer_count") {
		t.Errorf("coerced customer count must be flagged, got %v", snap.Provenance.QualityFlags)
	}
	if snap.Cash == nil || *snap.Cash != 0 {
		t.Errorf("coerced cash should read 0, got %v", snap.Cash)
	}
}

func TestNormalizeStatementsMissingSplit(t *testing.T) {
	res := resolution(models.TierStatements, &source.Payload{
		Statements: &source.StatementsPayload{
			PeriodID:     "2025-Q2",
			BalanceSheet: &source.BalanceSheetReport{TotalAssets: 800000, TotalLiabilities: 300000},
			ProfitLoss:   &source.ProfitLossReport{TotalIncome: 600000, TotalExpenses: 520000},
		},
	})

	snap, err := Normalize(res)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if snap.HasCurrentSplit() {
		t.Error("no current split supplied; normalizer must not invent one")
	}
	if !snap.Provenance.HasFlag(models.FlagNoCurrentSplit) {
		t.Errorf("missing split should be flagged, got %v", snap.Provenance.QualityFlags)
	}
	if !snap.Provenance.HasFlag(models.FlagNoCOGS) {
		t.Errorf("missing COGS should be flagged, got %v", snap.Provenance.QualityFlags)
	}
	if snap.NetIncome != 80000 {
		t.Errorf("net income expected 80000, got %f", snap.NetIncome)
	}
}

func TestNormalizeStatementsPartialPayload(t *testing.T) {
	res := resolution(models.TierStatements, &source.Payload{
		Statements: &source.StatementsPayload{
			ProfitLoss: &source.ProfitLossReport{TotalIncome: 600000, TotalExpenses: 520000},
		},
	})

	snap, _ := Normalize(res)
	if !snap.Provenance.HasFlag(models.FlagPartialData) {
		t.Errorf("a missing statement should flag partial data, got %v", snap.Provenance.QualityFlags)
	}
}

func TestNormalizeFilePayload(t *testing.T) {
	res := resolution(models.TierFileUpload, &source.Payload{
		Caveats: []string{"extracted from upload acme.html"},
		File: &source.FilePayload{
			PeriodID:    "2025-FY",
			ScaleFactor: 1,
			LineItems: map[string]float64{
				"revenue":           2840000,
				"expenses":          2156000,
				"total_assets":      10500000,
				"total_liabilities": 3800000,
				"cash":              1200000,
			},
		},
	})

	snap, err := Normalize(res)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if snap.Revenue != 2840000 || snap.Assets != 10500000 {
		t.Errorf("file line items not mapped: %+v", snap)
	}
	if len(snap.Provenance.QualityFlags) == 0 {
		t.Error("tier caveats should be carried into provenance")
	}
}

func TestNormalizeCachedSnapshotPassesThrough(t *testing.T) {
	cash := 99.0
	cached := &models.FinancialSnapshot{
		CompanyID: "other", PeriodID: "2024-FY",
		Revenue: 123, Cash: &cash,
	}
	res := resolution(models.TierCache, &source.Payload{Cached: cached})

	snap, err := Normalize(res)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if snap.Revenue != 123 {
		t.Errorf("cached values must pass through, got %f", snap.Revenue)
	}
	if snap.CompanyID != "acme" {
		t.Errorf("company id should be the requesting company, got %s", snap.CompanyID)
	}
	if snap == cached {
		t.Error("normalization must copy, not alias, the cached snapshot")
	}
}
