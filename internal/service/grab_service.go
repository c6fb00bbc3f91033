package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"grabwallet/config"
	"grabwallet/internal/domain"
	"grabwallet/internal/models"
	"grabwallet/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

var hundred = decimal.NewFromInt(100)

type GrabStateStore interface {
	GetOrCreate(ctx context.Context, userID string) (*models.ShareCount, error)
	SaveGrabState(ctx context.Context, sc *models.ShareCount) error
}

type ProductFinder interface {
	InPriceRange(ctx context.Context, lo, hi decimal.Decimal) ([]models.Product, error)
}

type ReportWriter interface {
	Create(ctx context.Context, rep *models.CustomerProductReport) error
}

type LevelReader interface {
	Get(ctx context.Context) (*models.LevelSetting, error)
}

// GrabResult is returned for every grab attempt that did not fail.
type GrabResult struct {
	Status        string          `json:"status"`
	State         string          `json:"state"`
	Product       *models.Product `json:"product,omitempty"`
	Commission    decimal.Decimal `json:"commission"`
	GrabCount     int             `json:"grab_count"`
	GrabCountLeft int             `json:"grab_count_left"`
	Message       string          `json:"message"`
}

// LevelView is a user's plan and today's grab progress.
type LevelView struct {
	Eligibility     *Eligibility `json:"eligibility"`
	State           string       `json:"state"`
	GrabCount       int          `json:"grab_count"`
	GrabCountLeft   int          `json:"grab_count_left"`
	TotalShareCount int          `json:"total_share_count"`
}

// GrabService runs the daily grab: quota check, product pick, direct commission
// and the cascade to up to three sponsors.
type GrabService struct {
	ledger    *LedgerService
	plans     *PlanService
	referrals *ReferralService
	states    GrabStateStore
	products  ProductFinder
	reports   ReportWriter
	levels    LevelReader

	cfg          config.GrabConfig
	defaultRates [3]decimal.Decimal
	loc          *time.Location
	now          func() time.Time
	pick         func(n int) int
	log          *logrus.Entry
}

func NewGrabService(
	ledger *LedgerService,
	plans *PlanService,
	referrals *ReferralService,
	states GrabStateStore,
	products ProductFinder,
	reports ReportWriter,
	levels LevelReader,
	cfg *config.Config,
	log *logrus.Logger,
) *GrabService {
	return &GrabService{
		ledger:       ledger,
		plans:        plans,
		referrals:    referrals,
		states:       states,
		products:     products,
		reports:      reports,
		levels:       levels,
		cfg:          cfg.Grab,
		defaultRates: cfg.Referral.DefaultLevelRates,
		loc:          cfg.Ledger.Location(),
		now:          time.Now,
		pick:         rand.Intn,
		log:          log.WithField("component", "grab"),
	}
}

// GrabState describes where userID stands today without changing anything.
func (s *GrabService) GrabState(sc *models.ShareCount, plan *models.Plan) (state string, count, left int) {
	if plan == nil {
		return domain.GrabIdle, 0, 0
	}
	count = sc.GrabCount
	if sc.CallDate == nil || sc.CallDate.Before(StartOfDay(s.now(), s.loc)) {
		count = 0
	}
	left = plan.GrabNo - count
	if left < 0 {
		left = 0
	}
	return grabState(count, plan.GrabNo), count, left
}

// Level evaluates userID's plan and reports today's grab progress.
func (s *GrabService) Level(ctx context.Context, userID string) (*LevelView, error) {
	elig, err := s.plans.Evaluate(ctx, userID)
	if err != nil {
		return nil, err
	}
	sc, err := s.states.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, domain.Internal("could not load grab state", err)
	}
	state, count, left := s.GrabState(sc, elig.Plan)
	return &LevelView{
		Eligibility:     elig,
		State:           state,
		GrabCount:       count,
		GrabCountLeft:   left,
		TotalShareCount: sc.TotalShareCount,
	}, nil
}

func grabState(count, limit int) string {
	switch {
	case count >= limit:
		return domain.GrabExhausted
	case count > 0:
		return domain.GrabActive
	default:
		return domain.GrabIdle
	}
}

// Grab performs one grab for userID. Reaching the daily limit and finding no
// product are results, not errors.
func (s *GrabService) Grab(ctx context.Context, userID string) (*GrabResult, error) {
	var result *GrabResult
	err := s.ledger.WithUser(ctx, userID, func(ctx context.Context, l *UserLedger) error {
		var err error
		result, err = s.grabLocked(ctx, l)
		return err
	})
	return result, err
}

func (s *GrabService) grabLocked(ctx context.Context, l *UserLedger) (*GrabResult, error) {
	userID := l.UserID()
	elig, err := s.plans.Evaluate(ctx, userID)
	if err != nil {
		return nil, err
	}
	if elig.Plan == nil {
		return nil, ErrNoEligiblePlan
	}
	plan := elig.Plan

	sc, err := s.states.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, domain.Internal("could not load grab state", err)
	}
	now := s.now()
	rolled := false
	if sc.CallDate == nil || sc.CallDate.Before(StartOfDay(now, s.loc)) {
		sc.GrabCount = 0
		sc.DailyInitialBalance = elig.Balance
		sc.CallDate = &now
		rolled = true
	}
	sc.GrabCountLeft = max(plan.GrabNo-sc.GrabCount, 0)

	if sc.GrabCount >= plan.GrabNo {
		return &GrabResult{
			Status:        domain.GrabStatusLimitReached,
			State:         domain.GrabExhausted,
			GrabCount:     sc.GrabCount,
			GrabCountLeft: 0,
			Message:       fmt.Sprintf("You have reached the maximum limit of %d grabs for today.", plan.GrabNo),
		}, nil
	}

	product, err := s.pickProduct(ctx, elig.Balance)
	if err != nil {
		return nil, err
	}
	if product == nil {
		if rolled {
			if err := s.states.SaveGrabState(ctx, sc); err != nil {
				return nil, domain.Internal("could not save grab state", err)
			}
		}
		return &GrabResult{
			Status:        domain.GrabStatusNoProduct,
			State:         grabState(sc.GrabCount, plan.GrabNo),
			GrabCount:     sc.GrabCount,
			GrabCountLeft: sc.GrabCountLeft,
			Message:       "No product available in your balance range.",
		}, nil
	}

	commission := DirectCommission(sc.DailyInitialBalance, plan)
	grabID := uuid.NewString()
	log := s.log.WithFields(logrus.Fields{"user_id": userID, "grab_id": grabID})

	direct, err := l.Append(ctx, Entry{
		Credit:      commission,
		Commission:  commission,
		ProfitDelta: commission,
		Type:        domain.TxDirectGrabCommission,
		Reference:   product.ProductName,
		ReferenceID: grabID,
	})
	if err != nil {
		return nil, err
	}
	applied := []*models.WalletTransaction{direct}

	levelTxs, err := s.cascade(ctx, userID, commission, grabID)
	applied = append(applied, levelTxs...)
	if err != nil {
		s.compensate(ctx, l, applied, log)
		return nil, domain.Integrity("commission cascade failed", err)
	}

	prev := *sc
	sc.GrabCount++
	sc.GrabCountLeft = max(plan.GrabNo-sc.GrabCount, 0)
	sc.CallDate = &now
	if err := s.states.SaveGrabState(ctx, sc); err != nil {
		s.compensate(ctx, l, applied, log)
		return nil, domain.Integrity("could not save grab state", err)
	}

	err = s.reports.Create(ctx, &models.CustomerProductReport{
		UserID:         userID,
		ProductID:      product.ID,
		ProductName:    product.ProductName,
		ProductPrice:   product.Price,
		GrabCommission: commission,
		BuyDate:        now,
	})
	if err != nil {
		if rerr := s.states.SaveGrabState(ctx, &prev); rerr != nil {
			log.WithError(rerr).Error("could not restore grab state")
		}
		s.compensate(ctx, l, applied, log)
		return nil, domain.Integrity("could not record grab", err)
	}

	log.WithFields(logrus.Fields{
		"product_id": product.ID,
		"commission": commission.String(),
		"levels":     len(levelTxs),
	}).Info("grab completed")

	return &GrabResult{
		Status:        domain.GrabStatusGrabbed,
		State:         grabState(sc.GrabCount, plan.GrabNo),
		Product:       product,
		Commission:    commission,
		GrabCount:     sc.GrabCount,
		GrabCountLeft: sc.GrabCountLeft,
		Message:       "product fetched successfully",
	}, nil
}

// DirectCommission spreads the plan's daily percentage over its grabs:
// base * (commission / grabNo) / 100.
func DirectCommission(base decimal.Decimal, plan *models.Plan) decimal.Decimal {
	if plan.GrabNo <= 0 {
		return decimal.Zero
	}
	return base.Mul(plan.Commission).
		Div(decimal.NewFromInt(int64(plan.GrabNo))).
		Div(hundred).
		Round(4)
}

// PriceBand is the product price range a balance may grab from.
func PriceBand(balance decimal.Decimal, cfg config.GrabConfig) (lo, hi decimal.Decimal) {
	if balance.GreaterThanOrEqual(cfg.HighBandFloor) {
		return cfg.HighBandFloor, balance
	}
	lo = balance.Mul(decimal.NewFromInt(1).Sub(cfg.LowBandWindow))
	if lo.IsNegative() {
		lo = decimal.Zero
	}
	return lo, balance
}

func (s *GrabService) pickProduct(ctx context.Context, balance decimal.Decimal) (*models.Product, error) {
	lo, hi := PriceBand(balance, s.cfg)
	candidates, err := s.products.InPriceRange(ctx, lo, hi)
	if err != nil {
		return nil, domain.Internal("could not load products", err)
	}
	if len(candidates) == 0 {
		return nil, nil
	}
	p := candidates[s.pick(len(candidates))]
	return &p, nil
}

func (s *GrabService) levelRates(ctx context.Context) [3]decimal.Decimal {
	l, err := s.levels.Get(ctx)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			s.log.WithError(err).Warn("level rates unavailable, using defaults")
		}
		return s.defaultRates
	}
	return l.Rates()
}

// cascade pays each sponsor above userID its level's share of base. Sponsors are
// written under their own locks. On failure the entries applied so far are returned
// so the caller can undo them.
func (s *GrabService) cascade(ctx context.Context, userID string, base decimal.Decimal, grabID string) ([]*models.WalletTransaction, error) {
	upline, err := s.referrals.Upline(ctx, userID, len(s.defaultRates))
	if err != nil {
		return nil, err
	}
	rates := s.levelRates(ctx)
	var applied []*models.WalletTransaction
	for i, sponsor := range upline {
		amount := base.Mul(rates[i]).Div(hundred).Round(4)
		if !amount.IsPositive() {
			continue
		}
		tx, err := s.ledger.Append(ctx, Entry{
			UserID:      sponsor.UserID,
			Credit:      amount,
			Commission:  amount,
			ProfitDelta: amount,
			Type:        domain.TxLevelCommission,
			Reference:   fmt.Sprintf("Level %d commission from %s", i+1, userID),
			ReferenceID: grabID,
		})
		if err != nil {
			return applied, err
		}
		applied = append(applied, tx)
	}
	return applied, nil
}

// compensate reverses applied entries newest first. Failures are logged for
// manual reconciliation.
func (s *GrabService) compensate(ctx context.Context, l *UserLedger, applied []*models.WalletTransaction, log *logrus.Entry) {
	for i := len(applied) - 1; i >= 0; i-- {
		tx := applied[i]
		var err error
		if tx.UserID == l.UserID() {
			_, err = l.Reverse(ctx, tx, "grab rollback")
		} else {
			_, err = s.ledger.Reverse(ctx, tx, "grab rollback")
		}
		if err != nil {
			log.WithError(err).WithFields(logrus.Fields{
				"transaction_id": tx.TransactionID,
				"owner":          tx.UserID,
			}).Error("compensation failed, manual reconciliation needed")
		}
	}
}
