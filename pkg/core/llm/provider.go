// Package llm abstracts the optional AI insight collaborator. The core
// consumes the collaborator's free-text output; it never reproduces the
// analysis itself, and every pipeline path works with no provider configured.
package llm

import (
	"context"
)

// Provider is the interface for all LLM providers.
type Provider interface {
	GenerateResponse(ctx context.Context, prompt string, systemPrompt string, options map[string]interface{}) (string, error)
}

// insightSystemPrompt asks for the JSON shape insight.ParseCollaboratorOutput
// expects, while tolerating the model ignoring it.
const insightSystemPrompt = `You are a financial analyst preparing talking points for a sales conversation.
Given the financial summary, reply with a JSON array of at most 3 objects:
[{"title": "...", "detail": "...", "impact": "high|medium|low"}]
Only include observations supported by the numbers provided.`

// RequestInsights asks the collaborator for supplemental observations about
// a financial summary. Returns the raw response; parsing and splicing is the
// insight package's job.
func RequestInsights(ctx context.Context, p Provider, financialSummary string) (string, error) {
	return p.GenerateResponse(ctx, financialSummary, insightSystemPrompt, map[string]interface{}{
		"response_format": map[string]interface{}{"type": "json_object"},
	})
}
