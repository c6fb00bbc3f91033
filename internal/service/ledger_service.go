package service

import (
	"context"
	"errors"
	"time"

	"grabwallet/config"
	"grabwallet/internal/domain"
	"grabwallet/internal/models"
	"grabwallet/internal/repository"
	"grabwallet/pkg/lock"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// LedgerStore is the persistence the ledger needs.
type LedgerStore interface {
	GetAccount(ctx context.Context, userID string) (*models.Account, error)
	Apply(ctx context.Context, next *models.Account, entry *models.WalletTransaction) error
	Latest(ctx context.Context, userID string) (*models.WalletTransaction, error)
	History(ctx context.Context, userID string, page, limit int) ([]models.WalletTransaction, int64, error)
	HasCredit(ctx context.Context, userID, txType string) (bool, error)
}

// Entry describes one ledger append. ProfitDelta moves TotalProfit and may be negative.
type Entry struct {
	UserID      string
	Credit      decimal.Decimal
	Debit       decimal.Decimal
	Commission  decimal.Decimal
	ProfitDelta decimal.Decimal
	Type        string
	Reference   string
	ReferenceID string
}

// LedgerService appends ledger entries one user at a time. Each append holds the
// user's lock and retries optimistic version conflicts with exponential backoff.
type LedgerService struct {
	store  LedgerStore
	locker lock.Locker
	cfg    config.LedgerConfig
	log    *logrus.Entry
}

func NewLedgerService(store LedgerStore, locker lock.Locker, cfg config.LedgerConfig, log *logrus.Logger) *LedgerService {
	return &LedgerService{
		store:  store,
		locker: locker,
		cfg:    cfg,
		log:    log.WithField("component", "ledger"),
	}
}

func ledgerKey(userID string) string { return "ledger:" + userID }

// Append locks e.UserID and appends e.
func (s *LedgerService) Append(ctx context.Context, e Entry) (*models.WalletTransaction, error) {
	var out *models.WalletTransaction
	err := s.WithUser(ctx, e.UserID, func(ctx context.Context, l *UserLedger) error {
		var err error
		out, err = l.Append(ctx, e)
		return err
	})
	return out, err
}

// WithUser runs fn while holding userID's ledger lock. Appends for userID inside fn
// must go through l; calling Append for the same user from fn would wait on itself.
func (s *LedgerService) WithUser(ctx context.Context, userID string, fn func(ctx context.Context, l *UserLedger) error) error {
	lockCtx, cancel := context.WithTimeout(ctx, s.cfg.LockTimeout)
	unlock, err := s.locker.Lock(lockCtx, ledgerKey(userID))
	cancel()
	if err != nil {
		s.log.WithError(err).WithField("user_id", userID).Warn("ledger lock not acquired")
		return domain.Integrity("ledger is busy, try again", err)
	}
	defer unlock()
	return fn(ctx, &UserLedger{svc: s, userID: userID})
}

// Account returns the current snapshot, zero valued for users with no entries yet.
func (s *LedgerService) Account(ctx context.Context, userID string) (*models.Account, error) {
	acct, err := s.store.GetAccount(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return &models.Account{UserID: userID}, nil
	}
	if err != nil {
		return nil, err
	}
	return acct, nil
}

// Latest returns the last appended entry, or nil if the user has none.
func (s *LedgerService) Latest(ctx context.Context, userID string) (*models.WalletTransaction, error) {
	tx, err := s.store.Latest(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	return tx, err
}

func (s *LedgerService) History(ctx context.Context, userID string, page, limit int) ([]models.WalletTransaction, int64, error) {
	return s.store.History(ctx, userID, page, limit)
}

func (s *LedgerService) HasCredit(ctx context.Context, userID, txType string) (bool, error) {
	return s.store.HasCredit(ctx, userID, txType)
}

// Reverse appends an entry that cancels tx's effect on balance and profit.
func (s *LedgerService) Reverse(ctx context.Context, tx *models.WalletTransaction, reason string) (*models.WalletTransaction, error) {
	return s.Append(ctx, reversalOf(tx, reason))
}

func reversalOf(tx *models.WalletTransaction, reason string) Entry {
	return Entry{
		UserID:      tx.UserID,
		Credit:      tx.Debit,
		Debit:       tx.Credit,
		Commission:  tx.Commission.Neg(),
		ProfitDelta: tx.Profit.Neg(),
		Type:        domain.TxReversal,
		Reference:   reason,
		ReferenceID: tx.TransactionID,
	}
}

// UserLedger appends for a user whose lock is already held.
type UserLedger struct {
	svc    *LedgerService
	userID string
}

func (l *UserLedger) UserID() string { return l.userID }

func (l *UserLedger) Account(ctx context.Context) (*models.Account, error) {
	return l.svc.Account(ctx, l.userID)
}

// Append writes e for the locked user, ignoring e.UserID.
func (l *UserLedger) Append(ctx context.Context, e Entry) (*models.WalletTransaction, error) {
	e.UserID = l.userID
	return l.svc.appendLocked(ctx, e)
}

// Reverse cancels tx, which must belong to the locked user.
func (l *UserLedger) Reverse(ctx context.Context, tx *models.WalletTransaction, reason string) (*models.WalletTransaction, error) {
	return l.Append(ctx, reversalOf(tx, reason))
}

func (s *LedgerService) newBackOff(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = s.cfg.RetryInitialInterval
	b.MaxInterval = s.cfg.RetryMaxInterval
	b.MaxElapsedTime = 0
	b.Reset()
	return backoff.WithContext(backoff.WithMaxRetries(b, s.cfg.RetryMaxAttempts), ctx)
}

func (s *LedgerService) appendLocked(ctx context.Context, e Entry) (*models.WalletTransaction, error) {
	if e.Credit.IsNegative() || e.Debit.IsNegative() {
		return nil, domain.Validation("ledger amounts must not be negative")
	}
	var out *models.WalletTransaction
	attempt := 0
	op := func() error {
		attempt++
		prev, err := s.Account(ctx, e.UserID)
		if err != nil {
			return backoff.Permanent(err)
		}
		next := &models.Account{
			UserID:      e.UserID,
			Balance:     prev.Balance.Add(e.Credit).Sub(e.Debit),
			TotalProfit: prev.TotalProfit.Add(e.ProfitDelta),
			Version:     prev.Version + 1,
		}
		entry := &models.WalletTransaction{
			UserID:          e.UserID,
			TransactionID:   uuid.NewString(),
			Credit:          e.Credit,
			Debit:           e.Debit,
			Balance:         next.Balance,
			Commission:      e.Commission,
			Profit:          e.ProfitDelta,
			TotalProfit:     next.TotalProfit,
			TransactionType: e.Type,
			Reference:       e.Reference,
			ReferenceID:     e.ReferenceID,
			CreatedAt:       time.Now(),
		}
		if err := s.store.Apply(ctx, next, entry); err != nil {
			if errors.Is(err, repository.ErrVersionConflict) {
				return err
			}
			return backoff.Permanent(err)
		}
		out = entry
		return nil
	}
	if err := backoff.Retry(op, s.newBackOff(ctx)); err != nil {
		s.log.WithError(err).WithFields(logrus.Fields{
			"user_id":  e.UserID,
			"type":     e.Type,
			"attempts": attempt,
		}).Error("ledger append failed")
		return nil, domain.Integrity("ledger write failed", err)
	}
	return out, nil
}
