package insight

import (
	"encoding/json"
	"strings"

	jsonrepair "github.com/RealAlexandreAI/json-repair"
	hjson "github.com/hjson/hjson-go/v4"

	"prospect_financials/pkg/models"
)

// collaboratorEntry is the schema the AI collaborator is asked to emit.
type collaboratorEntry struct {
	Title  string `json:"title"`
	Detail string `json:"detail"`
	Impact string `json:"impact,omitempty"`
}

// ParseCollaboratorOutput converts the AI collaborator's raw response into
// insight records. LLM output is unreliable JSON, so parsing degrades
// gracefully: strict JSON, then repaired JSON, then Hjson, and finally each
// non-empty line taken verbatim as a free-text insight. Never returns an
// error; an unusable response yields an empty list.
func ParseCollaboratorOutput(raw string) []models.Insight {
	raw = stripCodeFence(raw)
	if raw == "" {
		return nil
	}

	if entries := decodeEntries(raw); entries != nil {
		return toInsights(entries)
	}

	// Repair common LLM JSON damage (single quotes, trailing commas, ...)
	if repaired, err := jsonrepair.RepairJSON(raw); err == nil {
		if entries := decodeEntries(repaired); entries != nil {
			return toInsights(entries)
		}
	}

	// Hjson tolerates unquoted keys and comments
	var loose []collaboratorEntry
	if err := hjson.Unmarshal([]byte(raw), &loose); err == nil && len(loose) > 0 {
		return toInsights(loose)
	}

	// Last resort: treat each line as one free-text insight
	var insights []models.Insight
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(strings.TrimLeft(line, "-*• \t"))
		if line == "" {
			continue
		}
		insights = append(insights, models.Insight{Title: line})
	}
	return insights
}

func decodeEntries(raw string) []collaboratorEntry {
	var entries []collaboratorEntry
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		return nil
	}
	return entries
}

func toInsights(entries []collaboratorEntry) []models.Insight {
	var insights []models.Insight
	for _, e := range entries {
		if strings.TrimSpace(e.Title) == "" {
			continue
		}
		insights = append(insights, models.Insight{
			Title:  e.Title,
			Detail: e.Detail,
			Impact: e.Impact,
		})
	}
	return insights
}

func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(s, "```")
		s = strings.TrimSpace(s)
	}
	return s
}
