package source

import (
	"context"
	"fmt"

	"prospect_financials/pkg/models"
)

// SnapshotLoader reads previously resolved snapshots. Satisfied by
// store.SnapshotStore; kept as an interface so resolution stays decoupled
// from persistence.
type SnapshotLoader interface {
	LoadLatest(ctx context.Context, companyID string) (*models.FinancialSnapshot, error)
}

// CacheProvider serves a previously resolved snapshot from the store. It is
// not part of the canonical chain; callers who want cache-first resolution
// construct it explicitly and place it ahead of the live tiers. Invalidation
// is the caller's concern: this provider returns whatever the store has.
type CacheProvider struct {
	loader SnapshotLoader
}

func NewCacheProvider(loader SnapshotLoader) *CacheProvider {
	return &CacheProvider{loader: loader}
}

func (p *CacheProvider) Tier() models.SourceTier { return models.TierCache }

func (p *CacheProvider) Fetch(ctx context.Context, companyID string) (*Payload, error) {
	snap, err := p.loader.LoadLatest(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("load cached snapshot: %w", err)
	}
	if snap == nil {
		return nil, fmt.Errorf("no cached snapshot for %s", companyID)
	}
	return &Payload{Cached: snap}, nil
}
