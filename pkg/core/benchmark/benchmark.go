// Package benchmark classifies company metrics against industry reference
// bands. Thresholds are table-driven per metric and per industry category;
// tables ship as YAML configuration, with built-in defaults for the general
// category.
package benchmark

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"

	"prospect_financials/pkg/models"
)

// Reference holds the industry thresholds for one metric. For metrics where
// lower is better (debt_to_equity), LowerIsBetter inverts every comparison.
type Reference struct {
	IndustryAverage float64 `yaml:"industry_average" json:"industry_average"`
	TopQuartile     float64 `yaml:"top_quartile" json:"top_quartile"`
	TopDecile       float64 `yaml:"top_decile" json:"top_decile"`
	LowerIsBetter   bool    `yaml:"lower_is_better,omitempty" json:"lower_is_better,omitempty"`
}

// Table maps industry category -> metric name -> reference bands.
type Table struct {
	Industries map[string]map[string]Reference `yaml:"industries"`
}

// averageBand is the relative half-width of the "average" tier around the
// industry average.
const averageBand = 0.10

// poorCutoff: below half the industry average (or above double it for
// lower-is-better metrics) a metric classifies as poor rather than merely
// below average.
const poorCutoff = 0.50

// DefaultTable covers the general industry category with broadly applicable
// bands. Real deployments override per vertical via LoadTable.
var DefaultTable = Table{
	Industries: map[string]map[string]Reference{
		"general": {
			models.MetricCurrentRatio:  {IndustryAverage: 1.5, TopQuartile: 2.0, TopDecile: 3.0},
			models.MetricQuickRatio:    {IndustryAverage: 1.2, TopQuartile: 1.8, TopDecile: 2.5},
			models.MetricGrossMargin:   {IndustryAverage: 0.35, TopQuartile: 0.50, TopDecile: 0.65},
			models.MetricNetMargin:     {IndustryAverage: 0.08, TopQuartile: 0.15, TopDecile: 0.22},
			models.MetricDebtToEquity:  {IndustryAverage: 1.0, TopQuartile: 0.5, TopDecile: 0.3, LowerIsBetter: true},
			models.MetricAssetTurnover: {IndustryAverage: 0.8, TopQuartile: 1.5, TopDecile: 2.2},
		},
	},
}

// LoadTable reads a reference table from a YAML file.
func LoadTable(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read benchmark table: %w", err)
	}
	var t Table
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parse benchmark table: %w", err)
	}
	if len(t.Industries) == 0 {
		return nil, fmt.Errorf("benchmark table %s defines no industries", path)
	}
	return &t, nil
}

// Lookup returns the reference for a metric in an industry, falling back to
// the general category.
func (t *Table) Lookup(industry, metric string) (Reference, bool) {
	if refs, ok := t.Industries[industry]; ok {
		if ref, ok := refs[metric]; ok {
			return ref, true
		}
	}
	if refs, ok := t.Industries["general"]; ok {
		if ref, ok := refs[metric]; ok {
			return ref, true
		}
	}
	return Reference{}, false
}

// Classify buckets a company value against one reference. Ties resolve to
// the higher tier: a value exactly at top_quartile is excellent. The
// top-decile threshold is reported but does not create a sixth tier.
func Classify(metricName string, companyValue float64, ref Reference) models.BenchmarkEntry {
	entry := models.BenchmarkEntry{
		MetricName:      metricName,
		CompanyValue:    companyValue,
		IndustryAverage: ref.IndustryAverage,
		TopQuartile:     ref.TopQuartile,
		TopDecile:       ref.TopDecile,
	}
	entry.PerformanceTier = tier(companyValue, ref)
	return entry
}

// ClassifyWithTrend additionally labels the metric's direction against its
// previous-period value.
func ClassifyWithTrend(metricName string, companyValue float64, previous *float64, ref Reference) models.BenchmarkEntry {
	entry := Classify(metricName, companyValue, ref)
	if previous != nil {
		entry.Trend = trendLabel(companyValue, *previous, ref.LowerIsBetter)
	}
	return entry
}

func tier(v float64, ref Reference) models.PerformanceTier {
	if ref.LowerIsBetter {
		switch {
		case v <= ref.TopQuartile:
			return models.TierExcellent
		case v <= ref.IndustryAverage*(1-averageBand):
			return models.TierAboveAverage
		case v <= ref.IndustryAverage*(1+averageBand):
			return models.TierAverage
		case v <= ref.IndustryAverage/poorCutoff:
			return models.TierBelowAverage
		default:
			return models.TierPoor
		}
	}

	switch {
	case v >= ref.TopQuartile:
		return models.TierExcellent
	case v >= ref.IndustryAverage*(1+averageBand):
		return models.TierAboveAverage
	case v >= ref.IndustryAverage*(1-averageBand):
		return models.TierAverage
	case v >= ref.IndustryAverage*poorCutoff:
		return models.TierBelowAverage
	default:
		return models.TierPoor
	}
}

func trendLabel(current, previous float64, lowerIsBetter bool) string {
	const flatBand = 0.02
	if previous != 0 {
		change := (current - previous) / previous
		if change > -flatBand && change < flatBand {
			return "flat"
		}
	} else if current == 0 {
		return "flat"
	}

	improving := current > previous
	if lowerIsBetter {
		improving = current < previous
	}
	if improving {
		return "improving"
	}
	return "declining"
}

// Compare classifies a full metric set for one industry, in a stable metric
// order. Metrics with no reference entry are skipped.
func Compare(set models.MetricSet, prior models.MetricSet, industry string, table *Table) []models.BenchmarkEntry {
	if table == nil {
		table = &DefaultTable
	}

	order := []string{
		models.MetricCurrentRatio,
		models.MetricQuickRatio,
		models.MetricGrossMargin,
		models.MetricNetMargin,
		models.MetricDebtToEquity,
		models.MetricAssetTurnover,
	}

	var entries []models.BenchmarkEntry
	for _, name := range order {
		mv, ok := set[name]
		if !ok {
			continue
		}
		ref, ok := table.Lookup(industry, name)
		if !ok {
			continue
		}
		var prev *float64
		if pv, ok := prior[name]; ok {
			v := pv.Value
			prev = &v
		}
		entries = append(entries, ClassifyWithTrend(name, mv.Value, prev, ref))
	}
	return entries
}
