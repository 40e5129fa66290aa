// Package report exposes the report-generation pipeline over HTTP. The
// caller (the dashboard's backend, which owns the accounting-system OAuth
// session) posts the provider payloads it was able to fetch; this service
// resolves, computes, and returns the narrative data.
package report

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"prospect_financials/pkg/core/benchmark"
	"prospect_financials/pkg/core/llm"
	"prospect_financials/pkg/core/pipeline"
	"prospect_financials/pkg/core/source"
	"prospect_financials/pkg/core/store"
	"prospect_financials/pkg/models"
)

var (
	snapshots  *store.SnapshotStore
	aiProvider llm.Provider
	benchTable *benchmark.Table
)

// InitHandler wires the handler's collaborators. Any of them may be nil;
// the pipeline degrades gracefully.
func InitHandler(s *store.SnapshotStore, ai llm.Provider, table *benchmark.Table) {
	snapshots = s
	aiProvider = ai
	benchTable = table
}

// UploadedDocument carries a manually uploaded report for the extraction tier.
type UploadedDocument struct {
	Name    string `json:"name"`
	Format  string `json:"format"` // "html" | "markdown"
	Content string `json:"content"`
}

// ReportRequest is one report-generation call. The payload fields mirror the
// provider tiers; whichever the caller managed to fetch are tried in
// priority order.
type ReportRequest struct {
	CompanyID string `json:"company_id"`
	Industry  string `json:"industry"`
	PeriodID  string `json:"period_id"`

	Enhanced   *source.EnhancedPayload   `json:"enhanced,omitempty"`
	Statements *source.StatementsPayload `json:"statements,omitempty"`
	Document   *UploadedDocument         `json:"document,omitempty"`

	// UseCache places a cache-first tier ahead of the payload tiers.
	UseCache bool `json:"use_cache,omitempty"`
}

// ErrorResponse is the failure body; Attempts is populated for resolution
// failures so the dashboard can explain why no data is available.
type ErrorResponse struct {
	Error    string           `json:"error"`
	Attempts []source.Attempt `json:"attempts,omitempty"`
}

// HandleGenerateReport serves POST /api/report.
func HandleGenerateReport(w http.ResponseWriter, r *http.Request) {
	// CORS
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	if r.Method == "OPTIONS" {
		w.WriteHeader(http.StatusOK)
		return
	}
	if r.Method != "POST" {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req ReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: fmt.Sprintf("invalid request body: %v", err)})
		return
	}
	if req.CompanyID == "" {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "company_id is required"})
		return
	}
	if req.Industry == "" {
		req.Industry = "general"
	}

	providers, err := buildProviders(&req)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	if len(providers) == 0 {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "no data source supplied"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 60*time.Second)
	defer cancel()

	o := pipeline.NewOrchestrator(source.NewResolver(providers...))
	o.SetBenchmarkTable(benchTable)
	if snapshots != nil {
		o.SetSnapshotStore(snapshots)
	}
	if aiProvider != nil {
		o.SetAIProvider(aiProvider)
	}

	rep, err := o.Run(ctx, req.CompanyID, req.Industry)
	if err != nil {
		var failure *source.ResolutionFailure
		if errors.As(err, &failure) {
			writeJSON(w, http.StatusNotFound, ErrorResponse{
				Error:    "financial data unavailable",
				Attempts: failure.Attempts,
			})
			return
		}
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, rep)
}

// buildProviders assembles the tier chain from whatever the request
// supplied, in canonical priority order.
func buildProviders(req *ReportRequest) ([]source.Provider, error) {
	var providers []source.Provider

	if req.UseCache && snapshots != nil {
		providers = append(providers, source.NewCacheProvider(snapshots))
	}

	if req.Enhanced != nil {
		payload := &source.Payload{Enhanced: req.Enhanced}
		providers = append(providers, source.NewFuncProvider(models.TierEnhanced,
			func(ctx context.Context, companyID string) (*source.Payload, error) {
				return payload, nil
			}))
	}

	if req.Statements != nil {
		payload := &source.Payload{Statements: req.Statements}
		providers = append(providers, source.NewFuncProvider(models.TierStatements,
			func(ctx context.Context, companyID string) (*source.Payload, error) {
				return payload, nil
			}))
	}

	if req.Document != nil {
		format := source.DocumentFormat(req.Document.Format)
		if format != source.FormatHTML && format != source.FormatMarkdown {
			return nil, fmt.Errorf("unsupported document format %q", req.Document.Format)
		}
		providers = append(providers, source.NewFileProvider(source.Document{
			Name:    req.Document.Name,
			Format:  format,
			Content: []byte(req.Document.Content),
		}, req.PeriodID))
	}

	return providers, nil
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		fmt.Printf("[WARNING] Failed to encode response: %v\n", err)
	}
}
