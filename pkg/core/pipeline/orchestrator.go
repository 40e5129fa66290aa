// Package pipeline wires the stages end to end: resolve -> normalize ->
// [metrics, trend] -> health -> benchmark -> insight. Each stage is a pure
// transform of the previous stage's output plus static reference tables;
// the orchestrator owns only sequencing and the optional collaborators
// (store, AI provider).
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"prospect_financials/pkg/core/benchmark"
	"prospect_financials/pkg/core/health"
	"prospect_financials/pkg/core/insight"
	"prospect_financials/pkg/core/llm"
	"prospect_financials/pkg/core/metrics"
	"prospect_financials/pkg/core/normalize"
	"prospect_financials/pkg/core/source"
	"prospect_financials/pkg/core/store"
	"prospect_financials/pkg/core/trend"
	"prospect_financials/pkg/models"
)

// Report is the full computed output for one company: everything the
// presentation layer needs, with no behavior attached.
type Report struct {
	CompanyID   string                     `json:"company_id"`
	Industry    string                     `json:"industry"`
	GeneratedAt time.Time                  `json:"generated_at"`
	Snapshot    *models.FinancialSnapshot  `json:"snapshot"`
	Metrics     models.MetricSet           `json:"metrics"`
	Score       models.HealthScore         `json:"health_score"`
	Benchmarks  []models.BenchmarkEntry    `json:"benchmarks"`
	Trends      *models.TrendMetrics       `json:"trends,omitempty"`
	Insights    []models.Insight           `json:"insights"`
	Risks       []models.RiskFactor        `json:"risk_factors"`
}

// Orchestrator manages the end-to-end flow for report generation.
type Orchestrator struct {
	resolver   *source.Resolver
	engine     *metrics.Engine
	generator  *insight.Generator
	benchmarks *benchmark.Table
	snapshots  *store.SnapshotStore // optional
	aiProvider llm.Provider         // optional
}

// NewOrchestrator creates an orchestrator over a provider chain. Benchmarks
// default to the built-in general table.
func NewOrchestrator(resolver *source.Resolver) *Orchestrator {
	return &Orchestrator{
		resolver:   resolver,
		engine:     metrics.NewEngine(),
		generator:  insight.NewGenerator(),
		benchmarks: &benchmark.DefaultTable,
	}
}

// SetBenchmarkTable overrides the industry reference table.
func (o *Orchestrator) SetBenchmarkTable(t *benchmark.Table) {
	if t != nil {
		o.benchmarks = t
	}
}

// SetSnapshotStore attaches a persistence collaborator. Resolved snapshots
// are saved after each run and prior periods feed trend computation.
func (o *Orchestrator) SetSnapshotStore(s *store.SnapshotStore) {
	o.snapshots = s
}

// SetAIProvider attaches the optional insight collaborator.
func (o *Orchestrator) SetAIProvider(p llm.Provider) {
	o.aiProvider = p
}

// Run generates the full report for one company. A total resolution failure
// returns the *source.ResolutionFailure unchanged: no snapshot, no insights,
// no risks.
func (o *Orchestrator) Run(ctx context.Context, companyID, industry string) (*Report, error) {
	fmt.Printf("[PIPELINE] Resolving financial data for %s...\n", companyID)

	res, err := o.resolver.Resolve(ctx, companyID)
	if err != nil {
		return nil, err
	}

	snap, err := normalize.Normalize(res)
	if err != nil {
		return nil, fmt.Errorf("normalize %s payload: %w", res.Payload.Tier, err)
	}
	fmt.Printf("[PIPELINE] Resolved %s from tier %s (%d quality flags)\n",
		companyID, snap.Provenance.Tier, len(snap.Provenance.QualityFlags))

	series, priorMetrics := o.loadHistory(ctx, snap)

	metricSet := o.engine.Compute(snap)

	// Enhanced payloads carry aggregator-computed ratios; the engine's own
	// figures are authoritative, but silent divergence would hide an
	// upstream data problem.
	if e := res.Payload.Enhanced; e != nil && len(e.PrecomputedRatios) > 0 {
		if mismatches := metrics.VerifyPrecomputed(metricSet, e.PrecomputedRatios); len(mismatches) > 0 {
			fmt.Printf("[WARNING] Aggregator ratios diverge from recomputed metrics for %s: %v\n", companyID, mismatches)
			snap.Provenance.QualityFlags = append(snap.Provenance.QualityFlags, mismatches...)
		}
	}

	score := health.Score(snap)
	benchmarks := benchmark.Compare(metricSet, priorMetrics, industry, o.benchmarks)
	trends := trend.Growth(series)

	in := insight.Inputs{
		Snapshot:   snap,
		Metrics:    metricSet,
		Score:      score,
		Benchmarks: benchmarks,
		Trends:     trends,
	}
	insights, risks := o.generator.Generate(in, o.collaboratorInsights(ctx, snap, metricSet, score))

	if o.snapshots != nil {
		if err := o.snapshots.Save(ctx, snap); err != nil {
			fmt.Printf("[WARNING] Failed to persist snapshot for %s: %v\n", companyID, err)
		}
	}

	return &Report{
		CompanyID:   companyID,
		Industry:    industry,
		GeneratedAt: time.Now().UTC(),
		Snapshot:    snap,
		Metrics:     metricSet,
		Score:       score,
		Benchmarks:  benchmarks,
		Trends:      trends,
		Insights:    insights,
		Risks:       risks,
	}, nil
}

// loadHistory returns the snapshot series (stored history plus the fresh
// snapshot, ordered oldest first) and the prior period's metric set for
// benchmark trend labels. Without a store the series is just the fresh
// snapshot.
func (o *Orchestrator) loadHistory(ctx context.Context, snap *models.FinancialSnapshot) ([]*models.FinancialSnapshot, models.MetricSet) {
	series := []*models.FinancialSnapshot{snap}
	if o.snapshots == nil {
		return series, nil
	}

	stored, err := o.snapshots.LoadSeries(ctx, snap.CompanyID)
	if err != nil {
		fmt.Printf("[WARNING] Failed to load snapshot history for %s: %v\n", snap.CompanyID, err)
		return series, nil
	}

	var history []*models.FinancialSnapshot
	for _, s := range stored {
		if s.PeriodID != snap.PeriodID { // the fresh snapshot supersedes its own period
			history = append(history, s)
		}
	}

	series = append(history, snap)

	var priorMetrics models.MetricSet
	if len(history) > 0 {
		priorMetrics = o.engine.Compute(history[len(history)-1])
	}
	return series, priorMetrics
}

// collaboratorInsights asks the optional AI provider for supplemental
// observations. Any failure is logged and swallowed: the collaborator is
// strictly additive.
func (o *Orchestrator) collaboratorInsights(ctx context.Context, snap *models.FinancialSnapshot, set models.MetricSet, score models.HealthScore) []models.Insight {
	if o.aiProvider == nil {
		return nil
	}

	summary, err := json.Marshal(map[string]interface{}{
		"snapshot":     snap,
		"metrics":      set,
		"health_score": score.Total,
	})
	if err != nil {
		return nil
	}

	raw, err := llm.RequestInsights(ctx, o.aiProvider, string(summary))
	if err != nil {
		fmt.Printf("[WARNING] AI collaborator unavailable: %v\n", err)
		return nil
	}
	return insight.ParseCollaboratorOutput(raw)
}
