// Command report generates one financial report from the command line: it
// resolves a company from an uploaded report file (plus any cached
// snapshots), runs the full computation pipeline, and prints the report JSON.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"

	"prospect_financials/pkg/core/pipeline"
	"prospect_financials/pkg/core/source"
	"prospect_financials/pkg/core/store"
)

func main() {
	godotenv.Load()

	companyID := flag.String("company", "", "company identifier (required)")
	periodID := flag.String("period", "", "period identifier, e.g. 2025-FY (required with -file)")
	filePath := flag.String("file", "", "path to an HTML or Markdown financial report")
	industry := flag.String("industry", "general", "industry category for benchmarks")
	useCache := flag.Bool("cache", true, "try previously resolved snapshots first")
	flag.Parse()

	if *companyID == "" {
		fmt.Println("Usage: report -company <id> [-period 2025-FY] [-file report.html] [-industry saas]")
		os.Exit(1)
	}

	snapshots := store.NewSnapshotStore(nil, "")

	var providers []source.Provider
	if *useCache {
		providers = append(providers, source.NewCacheProvider(snapshots))
	}
	if *filePath != "" {
		if *periodID == "" {
			fmt.Println("[ERROR] -period is required with -file")
			os.Exit(1)
		}
		content, err := os.ReadFile(*filePath)
		if err != nil {
			fmt.Printf("[ERROR] Failed to read %s: %v\n", *filePath, err)
			os.Exit(1)
		}
		format := source.FormatHTML
		if ext := strings.ToLower(filepath.Ext(*filePath)); ext == ".md" || ext == ".markdown" {
			format = source.FormatMarkdown
		}
		providers = append(providers, source.NewFileProvider(source.Document{
			Name:    filepath.Base(*filePath),
			Format:  format,
			Content: content,
		}, *periodID))
	}

	if len(providers) == 0 {
		fmt.Println("[ERROR] No data source: pass -file or enable -cache")
		os.Exit(1)
	}

	o := pipeline.NewOrchestrator(source.NewResolver(providers...))
	o.SetSnapshotStore(snapshots)

	rep, err := o.Run(context.Background(), *companyID, *industry)
	if err != nil {
		fmt.Printf("[ERROR] %v\n", err)
		os.Exit(1)
	}

	out, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		fmt.Printf("[ERROR] Failed to encode report: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(string(out))
}
