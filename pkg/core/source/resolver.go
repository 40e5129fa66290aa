package source

import (
	"context"
	"fmt"
	"strings"

	"prospect_financials/pkg/models"
)

// Provider is one data-source option in the priority chain. Implementations
// own all upstream resilience (timeouts, retries, auth refresh); the resolver
// never retries within a tier.
type Provider interface {
	Tier() models.SourceTier
	Fetch(ctx context.Context, companyID string) (*Payload, error)
}

// FuncProvider adapts a plain fetch function into a Provider. This is the
// usual way callers hand the resolver their accounting-system client calls.
type FuncProvider struct {
	tier  models.SourceTier
	fetch func(ctx context.Context, companyID string) (*Payload, error)
}

func NewFuncProvider(tier models.SourceTier, fetch func(ctx context.Context, companyID string) (*Payload, error)) *FuncProvider {
	return &FuncProvider{tier: tier, fetch: fetch}
}

func (p *FuncProvider) Tier() models.SourceTier { return p.tier }

func (p *FuncProvider) Fetch(ctx context.Context, companyID string) (*Payload, error) {
	return p.fetch(ctx, companyID)
}

// Attempt records one provider try during resolution, for failure reporting
// and provenance.
type Attempt struct {
	Tier   models.SourceTier `json:"tier"`
	Reason string            `json:"reason"` // empty for the winning tier
}

// ResolutionFailure is returned when every provider tier failed. It lists
// the attempted tiers and the reason each was skipped, so callers can
// explain exactly why no data is available.
type ResolutionFailure struct {
	CompanyID string    `json:"company_id"`
	Attempts  []Attempt `json:"attempts"`
}

func (e *ResolutionFailure) Error() string {
	reasons := make([]string, 0, len(e.Attempts))
	for _, a := range e.Attempts {
		reasons = append(reasons, fmt.Sprintf("%s: %s", a.Tier, a.Reason))
	}
	return fmt.Sprintf("data unavailable for company %s (tried %s)", e.CompanyID, strings.Join(reasons, "; "))
}

// Resolution is a successful resolver outcome: the winning payload plus the
// record of what was tried before it.
type Resolution struct {
	CompanyID string
	Payload   *Payload
	Attempts  []Attempt // failed tiers tried before the winner, in order
}

// Resolver tries an ordered list of providers until one yields usable data.
type Resolver struct {
	providers []Provider
}

// NewResolver builds a resolver over providers in priority order (most
// authoritative first).
func NewResolver(providers ...Provider) *Resolver {
	return &Resolver{providers: providers}
}

// Resolve invokes providers strictly in priority order, short-circuiting on
// the first payload with at least one non-zero monetary field. An all-zero
// payload is a soft failure: the next tier is tried. If every provider
// fails, the returned error is a *ResolutionFailure listing each attempt.
func (r *Resolver) Resolve(ctx context.Context, companyID string) (*Resolution, error) {
	var attempts []Attempt

	for _, p := range r.providers {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		payload, err := p.Fetch(ctx, companyID)
		if err != nil {
			attempts = append(attempts, Attempt{Tier: p.Tier(), Reason: err.Error()})
			continue
		}
		if payload == nil {
			attempts = append(attempts, Attempt{Tier: p.Tier(), Reason: "no payload"})
			continue
		}
		if !payload.hasMonetaryData() {
			attempts = append(attempts, Attempt{Tier: p.Tier(), Reason: "all monetary fields zero"})
			continue
		}

		payload.Tier = p.Tier()
		return &Resolution{CompanyID: companyID, Payload: payload, Attempts: attempts}, nil
	}

	return nil, &ResolutionFailure{CompanyID: companyID, Attempts: attempts}
}
