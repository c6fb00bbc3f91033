package service

import (
	"context"

	"grabwallet/internal/domain"
	"grabwallet/internal/models"

	"github.com/shopspring/decimal"
)

type PlanStore interface {
	List(ctx context.Context) ([]models.Plan, error)
}

// ShareCounter counts direct referrals holding more than threshold.
type ShareCounter interface {
	CountQualifiedReferrals(ctx context.Context, sponsorID string, threshold decimal.Decimal) (int64, error)
}

// Eligibility is the outcome of a plan evaluation. Plan is nil when nothing qualifies.
type Eligibility struct {
	Plan       *models.Plan    `json:"active_plan"`
	Balance    decimal.Decimal `json:"balance"`
	ShareCount int             `json:"share_count"`
}

// PlanService derives a user's active plan on demand; nothing is cached between calls.
type PlanService struct {
	plans     PlanStore
	ledger    *LedgerService
	shares    ShareCounter
	threshold decimal.Decimal
}

func NewPlanService(plans PlanStore, ledger *LedgerService, shares ShareCounter, threshold decimal.Decimal) *PlanService {
	return &PlanService{plans: plans, ledger: ledger, shares: shares, threshold: threshold}
}

// Evaluate reads the balance and live share count of userID and selects its plan.
func (s *PlanService) Evaluate(ctx context.Context, userID string) (*Eligibility, error) {
	acct, err := s.ledger.Account(ctx, userID)
	if err != nil {
		return nil, domain.Internal("could not read balance", err)
	}
	shares, err := s.shares.CountQualifiedReferrals(ctx, userID, s.threshold)
	if err != nil {
		return nil, domain.Internal("could not count referrals", err)
	}
	plans, err := s.plans.List(ctx)
	if err != nil {
		return nil, domain.Internal("could not load plans", err)
	}
	return &Eligibility{
		Plan:       SelectPlan(plans, acct.Balance, int(shares)),
		Balance:    acct.Balance,
		ShareCount: int(shares),
	}, nil
}

// ActivePlan returns the user's plan or ErrNoEligiblePlan.
func (s *PlanService) ActivePlan(ctx context.Context, userID string) (*models.Plan, error) {
	e, err := s.Evaluate(ctx, userID)
	if err != nil {
		return nil, err
	}
	if e.Plan == nil {
		return nil, ErrNoEligiblePlan
	}
	return e.Plan, nil
}

// SelectPlan picks the highest priced plan with price <= balance and
// shareLimit <= shareCount. Equal prices keep the plan listed first.
func SelectPlan(plans []models.Plan, balance decimal.Decimal, shareCount int) *models.Plan {
	var best *models.Plan
	for i := range plans {
		p := &plans[i]
		if p.Price.GreaterThan(balance) || p.ShareLimit > shareCount {
			continue
		}
		if best == nil || p.Price.GreaterThan(best.Price) {
			best = p
		}
	}
	if best == nil {
		return nil
	}
	out := *best
	return &out
}
