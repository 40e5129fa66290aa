package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"prospect_financials/pkg/api/report"
	"prospect_financials/pkg/core/benchmark"
	"prospect_financials/pkg/core/llm"
	"prospect_financials/pkg/core/store"
)

func main() {
	// Load environment variables
	godotenv.Load()

	ctx := context.Background()

	// Snapshot store: DB when DATABASE_URL is set, local files otherwise
	var snapshots *store.SnapshotStore
	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		pool, err := store.Connect(ctx, dbURL)
		if err != nil {
			fmt.Printf("[WARNING] Database unavailable, using file store: %v\n", err)
			snapshots = store.NewSnapshotStore(nil, "")
		} else {
			defer pool.Close()
			snapshots = store.NewSnapshotStore(pool, "")
		}
	} else {
		snapshots = store.NewSnapshotStore(nil, "")
	}

	// Industry benchmark table (built-in general bands unless overridden)
	benchTable := &benchmark.DefaultTable
	tablePath := os.Getenv("BENCHMARK_TABLE")
	if tablePath == "" {
		tablePath = "config/benchmarks.yaml"
	}
	if loaded, err := benchmark.LoadTable(tablePath); err == nil {
		benchTable = loaded
		fmt.Printf("[CONFIG] Loaded benchmark table from %s (%d industries)\n", tablePath, len(loaded.Industries))
	} else {
		fmt.Printf("[CONFIG] Using built-in benchmark table (%v)\n", err)
	}

	// Optional AI insight collaborator
	var aiProvider llm.Provider
	if os.Getenv("GEMINI_API_KEY") != "" {
		aiProvider = &llm.GeminiProvider{Model: os.Getenv("GEMINI_MODEL")}
		fmt.Println("[CONFIG] AI insight collaborator enabled")
	}

	report.InitHandler(snapshots, aiProvider, benchTable)
	http.HandleFunc("/api/report", report.HandleGenerateReport)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	fmt.Printf("[SERVER] Listening on :%s\n", port)
	if err := http.ListenAndServe(":"+port, nil); err != nil {
		fmt.Printf("[ERROR] Server stopped: %v\n", err)
		os.Exit(1)
	}
}
