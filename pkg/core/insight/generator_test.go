package insight

import (
	"testing"

	"prospect_financials/pkg/models"
)

func healthyInputs() Inputs {
	return Inputs{
		Snapshot: &models.FinancialSnapshot{
			Revenue:   2840000,
			NetIncome: 684000,
			Assets:    10500000, Liabilities: 3800000,
		},
		Metrics: models.MetricSet{
			models.MetricNetMargin:    {Value: 0.24, Confidence: models.ConfidenceMeasured},
			models.MetricCurrentRatio: {Value: 2.76, Confidence: models.ConfidenceEstimated},
			models.MetricDebtToEquity: {Value: 0.57, Confidence: models.ConfidenceMeasured},
		},
		Score: models.HealthScore{Total: 100},
	}
}

func TestGenerateHealthyCompany(t *testing.T) {
	insights, risks := NewGenerator().Generate(healthyInputs(), nil)

	if len(risks) != 0 {
		t.Errorf("healthy company should trigger no risks, got %d", len(risks))
	}

	// strong_health_score should fire
	found := false
	for _, ins := range insights {
		if ins.Rule == "strong_health_score" {
			found = true
		}
	}
	if !found {
		t.Error("expected strong_health_score insight for score 100")
	}
}

func TestGenerateStressedCompany(t *testing.T) {
	in := Inputs{
		Snapshot: &models.FinancialSnapshot{
			Revenue: 1000000, NetIncome: 40000,
			Assets: 2000000, Liabilities: 1500000,
			CurrentAssets: 500000, CurrentLiabilities: 600000,
		},
		Metrics: models.MetricSet{
			models.MetricNetMargin:    {Value: 0.04, Confidence: models.ConfidenceMeasured},
			models.MetricCurrentRatio: {Value: 0.83, Confidence: models.ConfidenceMeasured},
			models.MetricDebtToEquity: {Value: 3.0, Confidence: models.ConfidenceMeasured},
		},
		Score: models.HealthScore{Total: 58},
	}

	insights, risks := NewGenerator().Generate(in, nil)

	wantRisks := map[string]bool{"low_current_ratio": false, "high_leverage": false}
	for _, r := range risks {
		if _, ok := wantRisks[r.Rule]; ok {
			wantRisks[r.Rule] = true
		}
		if r.ID == "" {
			t.Error("risk records must carry generated IDs")
		}
	}
	for rule, fired := range wantRisks {
		if !fired {
			t.Errorf("expected rule %s to fire", rule)
		}
	}

	// Current ratio under 1.0 escalates severity
	for _, r := range risks {
		if r.Rule == "low_current_ratio" && r.Severity != models.SeverityHigh {
			t.Errorf("current ratio 0.83 should be high severity, got %s", r.Severity)
		}
	}

	found := false
	for _, ins := range insights {
		if ins.Rule == "low_net_margin" {
			found = true
			if ins.FinancialImpact <= 0 {
				t.Error("margin-improvement insight should estimate a positive uplift")
			}
		}
	}
	if !found {
		t.Error("expected low_net_margin insight at 4% margin")
	}
}

func TestGenerateDeterministicOrder(t *testing.T) {
	in := healthyInputs()
	a, _ := NewGenerator().Generate(in, nil)
	b, _ := NewGenerator().Generate(in, nil)

	if len(a) != len(b) {
		t.Fatalf("rule firing must be deterministic: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i].Rule != b[i].Rule || a[i].Title != b[i].Title {
			t.Errorf("entry %d differs between passes: %s vs %s", i, a[i].Rule, b[i].Rule)
		}
	}
}

func TestGenerateSplicesCollaboratorEntries(t *testing.T) {
	ai := []models.Insight{{Title: "Customer concentration worth probing"}}
	insights, _ := NewGenerator().Generate(healthyInputs(), ai)

	last := insights[len(insights)-1]
	if last.Category != "ai_generated" {
		t.Errorf("collaborator entries must carry their own category, got %q", last.Category)
	}
	if last.Impact != "low" {
		t.Errorf("collaborator entries default to low impact, got %q", last.Impact)
	}
	if last.Rule != "" {
		t.Error("collaborator entries are not rule-derived")
	}
	if last.ID == "" {
		t.Error("collaborator entries still get IDs")
	}
}

func TestParseCollaboratorOutput(t *testing.T) {
	// Strict JSON
	got := ParseCollaboratorOutput(`[{"title":"A","detail":"d","impact":"medium"}]`)
	if len(got) != 1 || got[0].Title != "A" || got[0].Impact != "medium" {
		t.Errorf("strict JSON parse failed: %+v", got)
	}

	// Fenced + repairable JSON (single quotes, trailing comma)
	got = ParseCollaboratorOutput("```json\n[{'title': 'B', 'detail': 'x',},]\n```")
	if len(got) != 1 || got[0].Title != "B" {
		t.Errorf("repaired JSON parse failed: %+v", got)
	}

	// Free text fallback
	got = ParseCollaboratorOutput("- first observation\n- second observation")
	if len(got) != 2 || got[0].Title != "first observation" {
		t.Errorf("free-text fallback failed: %+v", got)
	}

	// Unusable input
	if got = ParseCollaboratorOutput("   "); len(got) != 0 {
		t.Errorf("blank input should yield nothing, got %+v", got)
	}
}
