package source

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"prospect_financials/pkg/models"
)

func payloadProvider(tier models.SourceTier, p *Payload, err error) Provider {
	return NewFuncProvider(tier, func(ctx context.Context, companyID string) (*Payload, error) {
		return p, err
	})
}

func TestResolveShortCircuitsOnFirstSuccess(t *testing.T) {
	called := false
	first := payloadProvider(models.TierEnhanced, &Payload{
		Enhanced: &EnhancedPayload{Revenue: 100},
	}, nil)
	second := NewFuncProvider(models.TierStatements, func(ctx context.Context, companyID string) (*Payload, error) {
		called = true
		return nil, fmt.Errorf("should not be reached")
	})

	res, err := NewResolver(first, second).Resolve(context.Background(), "acme")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if called {
		t.Error("lower-priority provider must not be invoked after a success")
	}
	if res.Payload.Tier != models.TierEnhanced {
		t.Errorf("winning tier expected ENHANCED, got %s", res.Payload.Tier)
	}
	if len(res.Attempts) != 0 {
		t.Errorf("no failed attempts expected, got %d", len(res.Attempts))
	}
}

func TestResolveTreatsAllZeroAsSoftFailure(t *testing.T) {
	zero := payloadProvider(models.TierEnhanced, &Payload{Enhanced: &EnhancedPayload{}}, nil)
	good := payloadProvider(models.TierStatements, &Payload{
		Statements: &StatementsPayload{ProfitLoss: &ProfitLossReport{TotalIncome: 500}},
	}, nil)

	res, err := NewResolver(zero, good).Resolve(context.Background(), "acme")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if res.Payload.Tier != models.TierStatements {
		t.Errorf("expected fallthrough to STATEMENTS, got %s", res.Payload.Tier)
	}
	if len(res.Attempts) != 1 || res.Attempts[0].Tier != models.TierEnhanced {
		t.Errorf("the all-zero attempt should be recorded: %+v", res.Attempts)
	}
}

func TestResolveReportsAllAttemptsOnFailure(t *testing.T) {
	a := payloadProvider(models.TierEnhanced, nil, fmt.Errorf("network timeout"))
	b := payloadProvider(models.TierStatements, nil, nil) // nil payload, no error
	c := payloadProvider(models.TierFileUpload, &Payload{File: &FilePayload{LineItems: map[string]float64{}}}, nil)

	_, err := NewResolver(a, b, c).Resolve(context.Background(), "acme")
	var failure *ResolutionFailure
	if !errors.As(err, &failure) {
		t.Fatalf("expected *ResolutionFailure, got %T", err)
	}
	if failure.CompanyID != "acme" {
		t.Errorf("failure should name the company, got %q", failure.CompanyID)
	}
	if len(failure.Attempts) != 3 {
		t.Fatalf("expected 3 attempts, got %d", len(failure.Attempts))
	}
	if failure.Attempts[0].Reason != "network timeout" {
		t.Errorf("attempt reasons should surface provider errors, got %q", failure.Attempts[0].Reason)
	}
}

func TestResolveHonorsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := payloadProvider(models.TierEnhanced, &Payload{Enhanced: &EnhancedPayload{Revenue: 1}}, nil)
	_, err := NewResolver(p).Resolve(ctx, "acme")
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
