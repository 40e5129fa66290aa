package pipeline

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"

	"prospect_financials/pkg/core/source"
	"prospect_financials/pkg/core/store"
	"prospect_financials/pkg/models"
)

func enhancedProvider(payload *source.EnhancedPayload) source.Provider {
	return source.NewFuncProvider(models.TierEnhanced,
		func(ctx context.Context, companyID string) (*source.Payload, error) {
			return &source.Payload{Enhanced: payload}, nil
		})
}

func failingProvider(tier models.SourceTier) source.Provider {
	return source.NewFuncProvider(tier,
		func(ctx context.Context, companyID string) (*source.Payload, error) {
			return nil, fmt.Errorf("upstream auth failure")
		})
}

func TestRunScenarioA(t *testing.T) {
	// revenue=2,840,000 expenses=2,156,000 assets=10,500,000
	// liabilities=3,800,000 -> net_income derived 684,000, score clamps to 100
	resolver := source.NewResolver(enhancedProvider(&source.EnhancedPayload{
		PeriodID:    "2025-FY",
		Revenue:     2840000,
		Expenses:    "2,156,000", // formatted report cell on purpose
		TotalAssets: 10500000,
		TotalLiabs:  3800000,
	}))

	report, err := NewOrchestrator(resolver).Run(context.Background(), "acme", "general")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if report.Snapshot.NetIncome != 684000 {
		t.Errorf("net income expected derived 684000, got %f", report.Snapshot.NetIncome)
	}
	if report.Snapshot.Provenance.Tier != models.TierEnhanced {
		t.Errorf("provenance tier expected ENHANCED, got %s", report.Snapshot.Provenance.Tier)
	}
	if report.Score.Total != 100 {
		t.Errorf("health score expected 100 after clamping, got %d", report.Score.Total)
	}

	de := report.Metrics[models.MetricDebtToEquity]
	expected := 3800000.0 / 6700000.0
	if math.Abs(de.Value-expected) > 0.0001 {
		t.Errorf("debt_to_equity expected %f, got %f", expected, de.Value)
	}

	if len(report.Benchmarks) == 0 {
		t.Error("expected benchmark entries against the general table")
	}
	if report.Trends != nil {
		t.Error("single-period run should produce no trend metrics")
	}
}

func TestRunScenarioBDataUnavailable(t *testing.T) {
	// every tier fails or is all-zero -> typed failure, zero findings
	resolver := source.NewResolver(
		failingProvider(models.TierEnhanced),
		source.NewFuncProvider(models.TierStatements,
			func(ctx context.Context, companyID string) (*source.Payload, error) {
				return &source.Payload{Statements: &source.StatementsPayload{
					BalanceSheet: &source.BalanceSheetReport{TotalAssets: 0, TotalLiabilities: 0},
					ProfitLoss:   &source.ProfitLossReport{TotalIncome: 0, TotalExpenses: 0},
				}}, nil
			}),
	)

	report, err := NewOrchestrator(resolver).Run(context.Background(), "ghost", "general")
	if report != nil {
		t.Fatal("expected no report on total resolution failure")
	}

	var failure *source.ResolutionFailure
	if !errors.As(err, &failure) {
		t.Fatalf("expected *source.ResolutionFailure, got %T: %v", err, err)
	}
	if len(failure.Attempts) != 2 {
		t.Errorf("expected 2 recorded attempts, got %d", len(failure.Attempts))
	}
	if failure.Attempts[1].Reason != "all monetary fields zero" {
		t.Errorf("all-zero payload should be a soft failure, got reason %q", failure.Attempts[1].Reason)
	}
}

func TestRunScenarioCNegativeEquity(t *testing.T) {
	resolver := source.NewResolver(enhancedProvider(&source.EnhancedPayload{
		PeriodID:   "2025-FY",
		TotalLiabs: 500000,
	}))

	report, err := NewOrchestrator(resolver).Run(context.Background(), "upside-down", "general")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if v := report.Metrics.Value(models.MetricCurrentRatio); v != 0 {
		t.Errorf("current_ratio expected 0, got %f", v)
	}
	de := report.Metrics[models.MetricDebtToEquity]
	if de.Value != 0 {
		t.Errorf("debt_to_equity with negative equity must clamp to 0, got %f", de.Value)
	}
	if de.Confidence != models.ConfidenceEstimated {
		t.Error("clamped debt_to_equity should carry estimated confidence")
	}
}

func TestRunTierFallback(t *testing.T) {
	resolver := source.NewResolver(
		failingProvider(models.TierEnhanced),
		source.NewFuncProvider(models.TierStatements,
			func(ctx context.Context, companyID string) (*source.Payload, error) {
				return &source.Payload{Statements: &source.StatementsPayload{
					PeriodID:     "2025-FY",
					BalanceSheet: &source.BalanceSheetReport{TotalAssets: 800000, TotalLiabilities: 300000, CurrentAssets: 400000, CurrentLiabs: 150000},
					ProfitLoss:   &source.ProfitLossReport{TotalIncome: 600000, TotalExpenses: 520000},
				}}, nil
			}),
	)

	report, err := NewOrchestrator(resolver).Run(context.Background(), "acme", "general")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.Snapshot.Provenance.Tier != models.TierStatements {
		t.Errorf("expected STATEMENTS tier after fallback, got %s", report.Snapshot.Provenance.Tier)
	}

	cr := report.Metrics[models.MetricCurrentRatio]
	if math.Abs(cr.Value-400000.0/150000.0) > 0.0001 || cr.Confidence != models.ConfidenceMeasured {
		t.Errorf("current_ratio expected (%f, measured), got (%f, %s)", 400000.0/150000.0, cr.Value, cr.Confidence)
	}
}

func TestRunWithHistoryProducesTrends(t *testing.T) {
	ctx := context.Background()
	snapshots := store.NewSnapshotStore(nil, t.TempDir())

	prior := &models.FinancialSnapshot{
		CompanyID: "acme", PeriodID: "2024-FY",
		Revenue: 2000000, Expenses: 1800000, NetIncome: 200000,
		Assets: 9000000, Liabilities: 4000000,
	}
	if err := snapshots.Save(ctx, prior); err != nil {
		t.Fatal(err)
	}

	resolver := source.NewResolver(enhancedProvider(&source.EnhancedPayload{
		PeriodID:    "2025-FY",
		Revenue:     2840000,
		Expenses:    2156000,
		TotalAssets: 10500000,
		TotalLiabs:  3800000,
	}))

	o := NewOrchestrator(resolver)
	o.SetSnapshotStore(snapshots)

	report, err := o.Run(ctx, "acme", "general")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.Trends == nil {
		t.Fatal("expected trend metrics with one stored prior period")
	}
	expected := (2840000.0 - 2000000.0) / 2000000.0
	if math.Abs(report.Trends.RevenueGrowth.Rate-expected) > 0.0001 {
		t.Errorf("revenue growth expected %f, got %f", expected, report.Trends.RevenueGrowth.Rate)
	}

	// Benchmark trend labels use the prior period's metrics
	for _, b := range report.Benchmarks {
		if b.MetricName == models.MetricNetMargin && b.Trend != "improving" {
			t.Errorf("net margin 10%% -> 24%% should be improving, got %q", b.Trend)
		}
	}

	// The fresh snapshot was persisted
	latest, err := snapshots.Load(ctx, "acme", "2025-FY")
	if err != nil || latest == nil {
		t.Fatalf("fresh snapshot should be stored: %v", err)
	}
}

func TestRunFlagsDivergentAggregatorRatios(t *testing.T) {
	resolver := source.NewResolver(enhancedProvider(&source.EnhancedPayload{
		PeriodID:    "2025-FY",
		Revenue:     2840000,
		Expenses:    2156000,
		TotalAssets: 10500000,
		TotalLiabs:  3800000,
		PrecomputedRatios: map[string]interface{}{
			models.MetricNetMargin: 0.52, // recomputed figure is ~0.2408
		},
	}))

	report, err := NewOrchestrator(resolver).Run(context.Background(), "acme", "general")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !report.Snapshot.Provenance.HasFlag(models.FlagRatioMismatch + ":" + models.MetricNetMargin) {
		t.Errorf("divergent aggregator ratio must land in provenance, got %v",
			report.Snapshot.Provenance.QualityFlags)
	}
}
