package insight

import (
	"github.com/google/uuid"

	"prospect_financials/pkg/models"
)

// Generator runs the rule table and splices in collaborator insights.
type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

// Generate evaluates every rule against the inputs. Output is ordered by
// rule-declaration order (each rule fires at most once); AI-collaborator
// entries come last, tagged with their own category and low impact.
// collaborator may be nil or empty.
func (g *Generator) Generate(in Inputs, collaborator []models.Insight) ([]models.Insight, []models.RiskFactor) {
	insights := []models.Insight{}
	risks := []models.RiskFactor{}

	for _, r := range ruleTable {
		if !r.when(in) {
			continue
		}
		switch {
		case r.insight != nil:
			rec := r.insight(in)
			rec.ID = uuid.NewString()
			rec.Rule = r.name
			insights = append(insights, rec)
		case r.risk != nil:
			rec := r.risk(in)
			rec.ID = uuid.NewString()
			rec.Rule = r.name
			risks = append(risks, rec)
		}
	}

	for _, ai := range collaborator {
		ai.ID = uuid.NewString()
		ai.Category = "ai_generated"
		if ai.Impact == "" {
			ai.Impact = "low"
		}
		insights = append(insights, ai)
	}

	return insights, risks
}
