package source

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/text"

	"prospect_financials/pkg/core/parse"
	"prospect_financials/pkg/models"
)

// DocumentFormat identifies the uploaded report format.
type DocumentFormat string

const (
	FormatHTML     DocumentFormat = "html"
	FormatMarkdown DocumentFormat = "markdown"
)

// Document is a manually uploaded financial report awaiting extraction.
type Document struct {
	Name    string
	Format  DocumentFormat
	Content []byte
}

// labelAliases maps report line-item labels (lowercased, trimmed) to
// canonical line-item keys. Extraction emits only canonical keys so the
// normalizer never re-inspects raw labels.
var labelAliases = map[string]string{
	"revenue":             "revenue",
	"total revenue":       "revenue",
	"total income":        "revenue",
	"sales":               "revenue",
	"net sales":           "revenue",
	"expenses":            "expenses",
	"total expenses":      "expenses",
	"operating expenses":  "expenses",
	"net income":          "net_income",
	"net profit":          "net_income",
	"net earnings":        "net_income",
	"total assets":        "total_assets",
	"assets":              "total_assets",
	"total liabilities":   "total_liabilities",
	"liabilities":         "total_liabilities",
	"current assets":      "current_assets",
	"total current assets": "current_assets",
	"current liabilities": "current_liabilities",
	"total current liabilities": "current_liabilities",
	"cash":                 "cash",
	"cash and equivalents": "cash",
	"cash and cash equivalents": "cash",
	"cost of goods sold": "cost_of_goods_sold",
	"cost of sales":      "cost_of_goods_sold",
	"cogs":               "cost_of_goods_sold",
	"employees":          "employee_count",
	"employee count":     "employee_count",
	"customers":          "customer_count",
	"customer count":     "customer_count",
}

// FileProvider is the file/manual-upload extraction tier. It parses an
// uploaded HTML or Markdown report into line items at Fetch time. The
// company identifier is not used for lookup: the document was supplied for
// this company by the caller.
type FileProvider struct {
	doc      Document
	periodID string
}

func NewFileProvider(doc Document, periodID string) *FileProvider {
	return &FileProvider{doc: doc, periodID: periodID}
}

func (p *FileProvider) Tier() models.SourceTier { return models.TierFileUpload }

func (p *FileProvider) Fetch(ctx context.Context, companyID string) (*Payload, error) {
	var items map[string]float64
	var err error

	switch p.doc.Format {
	case FormatHTML:
		items, err = extractHTML(string(p.doc.Content))
	case FormatMarkdown:
		items, err = extractMarkdown(string(p.doc.Content))
	default:
		return nil, fmt.Errorf("unsupported document format %q", p.doc.Format)
	}
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("no recognizable line items in %s", p.doc.Name)
	}

	// Apply any "in thousands/millions" marker found in the document text
	factor, unit := parse.DetectScaleFactor(string(p.doc.Content))
	caveats := []string{fmt.Sprintf("extracted from upload %s", p.doc.Name)}
	if factor != 1.0 {
		for k, v := range items {
			if k != "employee_count" && k != "customer_count" {
				items[k] = v * factor
			}
		}
		caveats = append(caveats, models.FlagScaleAdjusted+":"+unit)
	}

	return &Payload{
		Caveats: caveats,
		File: &FilePayload{
			PeriodID:    p.periodID,
			SourceName:  p.doc.Name,
			ScaleFactor: factor,
			LineItems:   items,
		},
	}, nil
}

// extractHTML walks every table in the document, reading two-column
// label/value rows. Later tables never overwrite an already-captured key, so
// a summary table at the top wins over detail tables below it.
func extractHTML(html string) (map[string]float64, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse html report: %w", err)
	}

	items := make(map[string]float64)
	doc.Find("table").Each(func(_ int, table *goquery.Selection) {
		table.Find("tr").Each(func(_ int, row *goquery.Selection) {
			cells := row.Find("td, th")
			if cells.Length() < 2 {
				return
			}
			label := strings.TrimSpace(cells.First().Text())
			value := strings.TrimSpace(cells.Last().Text())
			captureLineItem(items, label, value)
		})
	})
	return items, nil
}

// extractMarkdown validates the document with goldmark, then reads pipe-table
// rows of the form "| Label | Value |".
func extractMarkdown(md string) (map[string]float64, error) {
	parser := goldmark.DefaultParser()
	if doc := parser.Parse(text.NewReader([]byte(md))); doc == nil {
		return nil, fmt.Errorf("parse markdown report: invalid document")
	}

	items := make(map[string]float64)
	for _, line := range strings.Split(md, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "|") {
			continue
		}
		cols := strings.Split(strings.Trim(line, "|"), "|")
		if len(cols) < 2 {
			continue
		}
		label := strings.TrimSpace(cols[0])
		value := strings.TrimSpace(cols[len(cols)-1])
		if strings.Trim(label, "-: ") == "" {
			continue // table separator row
		}
		captureLineItem(items, label, value)
	}
	return items, nil
}

func captureLineItem(items map[string]float64, label, value string) {
	key, ok := labelAliases[strings.ToLower(strings.TrimSpace(label))]
	if !ok {
		return
	}
	if _, exists := items[key]; exists {
		return
	}
	v, coerced := parse.ParseNumericChecked(value)
	if coerced {
		return // unreadable cell, leave the key unset rather than zero-filling
	}
	items[key] = v
}
