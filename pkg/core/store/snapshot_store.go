// Package store persists resolved snapshots and generated reports. It is an
// external collaborator to the computation core: nothing in the engine
// requires it, but the CLI, API, and the optional cache-first provider tier
// all read and write through it.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"prospect_financials/pkg/models"
)

// SnapshotStore persists resolved financial snapshots.
// Hybrid: DB (primary) + file system (fallback/local). With a nil pool it
// operates purely on files under the given directory.
type SnapshotStore struct {
	pool    *pgxpool.Pool
	fileDir string
}

// NewSnapshotStore creates a snapshot store. If pool is nil and dir is
// empty, it defaults to a local cache directory.
func NewSnapshotStore(pool *pgxpool.Pool, dir string) *SnapshotStore {
	if pool == nil && dir == "" {
		dir = filepath.Join(".cache", "snapshots")
	}
	if dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			fmt.Printf("[WARNING] Check SnapshotStore dir: %v\n", err)
		}
	}
	return &SnapshotStore{pool: pool, fileDir: dir}
}

// Save stores one resolved snapshot, superseding any prior snapshot for the
// same company and period.
func (s *SnapshotStore) Save(ctx context.Context, snap *models.FinancialSnapshot) error {
	if snap == nil {
		return fmt.Errorf("nil snapshot")
	}

	dataJSON, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	if s.pool != nil {
		query := `
			INSERT INTO financial_snapshots (company_id, period_id, tier, data, resolved_at)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (company_id, period_id)
			DO UPDATE SET tier = $3, data = $4, resolved_at = $5
		`
		_, err := s.pool.Exec(ctx, query,
			snap.CompanyID, snap.PeriodID, string(snap.Provenance.Tier), dataJSON, snap.Provenance.ResolvedAt)
		if err != nil {
			return fmt.Errorf("failed to save snapshot to db: %w", err)
		}
		return nil
	}

	if s.fileDir != "" {
		path := s.snapshotPath(snap.CompanyID, snap.PeriodID)
		if err := os.WriteFile(path, dataJSON, 0644); err != nil {
			return fmt.Errorf("failed to save snapshot file: %w", err)
		}
	}
	return nil
}

// Load retrieves the snapshot for one company and period. A miss returns
// (nil, nil).
func (s *SnapshotStore) Load(ctx context.Context, companyID, periodID string) (*models.FinancialSnapshot, error) {
	if s.pool != nil {
		query := `
			SELECT data
			FROM financial_snapshots
			WHERE company_id = $1 AND period_id = $2
			LIMIT 1
		`
		var dataJSON []byte
		if err := s.pool.QueryRow(ctx, query, companyID, periodID).Scan(&dataJSON); err != nil {
			return nil, nil // cache miss
		}
		var snap models.FinancialSnapshot
		if err := json.Unmarshal(dataJSON, &snap); err != nil {
			return nil, fmt.Errorf("failed to unmarshal stored snapshot: %w", err)
		}
		return &snap, nil
	}

	if s.fileDir != "" {
		return s.loadFromFile(s.snapshotPath(companyID, periodID))
	}
	return nil, nil
}

// LoadLatest retrieves the most recently resolved snapshot for a company.
// Satisfies source.SnapshotLoader.
func (s *SnapshotStore) LoadLatest(ctx context.Context, companyID string) (*models.FinancialSnapshot, error) {
	if s.pool != nil {
		query := `
			SELECT data
			FROM financial_snapshots
			WHERE company_id = $1
			ORDER BY resolved_at DESC
			LIMIT 1
		`
		var dataJSON []byte
		if err := s.pool.QueryRow(ctx, query, companyID).Scan(&dataJSON); err != nil {
			return nil, nil
		}
		var snap models.FinancialSnapshot
		if err := json.Unmarshal(dataJSON, &snap); err != nil {
			return nil, fmt.Errorf("failed to unmarshal stored snapshot: %w", err)
		}
		return &snap, nil
	}

	series, err := s.LoadSeries(ctx, companyID)
	if err != nil || len(series) == 0 {
		return nil, err
	}
	return series[len(series)-1], nil
}

// LoadSeries retrieves all stored snapshots for a company ordered by period
// (oldest first), suitable for trend computation.
func (s *SnapshotStore) LoadSeries(ctx context.Context, companyID string) ([]*models.FinancialSnapshot, error) {
	if s.pool != nil {
		query := `
			SELECT data
			FROM financial_snapshots
			WHERE company_id = $1
			ORDER BY period_id ASC
		`
		rows, err := s.pool.Query(ctx, query, companyID)
		if err != nil {
			return nil, fmt.Errorf("failed to query snapshot series: %w", err)
		}
		defer rows.Close()

		var series []*models.FinancialSnapshot
		for rows.Next() {
			var dataJSON []byte
			if err := rows.Scan(&dataJSON); err != nil {
				return nil, err
			}
			var snap models.FinancialSnapshot
			if err := json.Unmarshal(dataJSON, &snap); err != nil {
				return nil, fmt.Errorf("failed to unmarshal stored snapshot: %w", err)
			}
			series = append(series, &snap)
		}
		return series, rows.Err()
	}

	if s.fileDir == "" {
		return nil, nil
	}

	pattern := filepath.Join(s.fileDir, sanitize(companyID)+"_*.json")
	paths, err := filepath.Glob(pattern)
	if err != nil {
		return nil, err
	}
	sort.Strings(paths) // period id is the filename suffix, so this orders by period

	var series []*models.FinancialSnapshot
	for _, path := range paths {
		snap, err := s.loadFromFile(path)
		if err != nil || snap == nil {
			continue
		}
		series = append(series, snap)
	}
	return series, nil
}

func (s *SnapshotStore) snapshotPath(companyID, periodID string) string {
	return filepath.Join(s.fileDir, fmt.Sprintf("%s_%s.json", sanitize(companyID), sanitize(periodID)))
}

func (s *SnapshotStore) loadFromFile(path string) (*models.FinancialSnapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil // miss
	}
	var snap models.FinancialSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to unmarshal snapshot file %s: %w", path, err)
	}
	return &snap, nil
}

func sanitize(s string) string {
	replacer := strings.NewReplacer("/", "-", "\\", "-", "..", "-", " ", "_")
	return replacer.Replace(s)
}
