package service

import (
	"context"
	"errors"

	"grabwallet/config"
	"grabwallet/internal/domain"
	"grabwallet/internal/models"
	"grabwallet/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// DepositResult lists the entries a deposit produced.
type DepositResult struct {
	Deposit      *models.WalletTransaction `json:"deposit"`
	Bonus        *models.WalletTransaction `json:"bonus,omitempty"`
	SponsorBonus *models.WalletTransaction `json:"sponsor_bonus,omitempty"`
}

type DepositService struct {
	ledger   *LedgerService
	users    UserLookup
	settings SettingReader
	cfg      config.DepositConfig
	log      *logrus.Entry
}

func NewDepositService(ledger *LedgerService, users UserLookup, settings SettingReader, cfg config.DepositConfig, log *logrus.Logger) *DepositService {
	return &DepositService{
		ledger:   ledger,
		users:    users,
		settings: settings,
		cfg:      cfg,
		log:      log.WithField("component", "deposit"),
	}
}

// Credit adds amount as principal with no bonus side effects.
func (s *DepositService) Credit(ctx context.Context, userID string, amount decimal.Decimal, reference string) (*models.WalletTransaction, error) {
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	if _, err := s.user(ctx, userID); err != nil {
		return nil, err
	}
	return s.ledger.Append(ctx, Entry{
		UserID:    userID,
		Credit:    amount,
		Type:      domain.TxCreditAmount,
		Reference: reference,
	})
}

// Deposit records a deposit. The first qualifying deposit also pays a bonus to the
// user and the same bonus to the direct sponsor.
func (s *DepositService) Deposit(ctx context.Context, userID string, amount decimal.Decimal, reference string) (*DepositResult, error) {
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	user, err := s.user(ctx, userID)
	if err != nil {
		return nil, err
	}
	rate := settingDecimal(ctx, s.settings, domain.SettingDepositBonusRate, s.cfg.BonusRate)
	minimum := settingDecimal(ctx, s.settings, domain.SettingDepositBonusMinimum, s.cfg.BonusMinimum)

	res := &DepositResult{}
	err = s.ledger.WithUser(ctx, userID, func(ctx context.Context, l *UserLedger) error {
		hadDeposit, err := s.ledger.HasCredit(ctx, userID, domain.TxDeposit)
		if err != nil {
			return domain.Internal("could not read deposit history", err)
		}
		res.Deposit, err = l.Append(ctx, Entry{
			Credit:    amount,
			Type:      domain.TxDeposit,
			Reference: reference,
		})
		if err != nil {
			return err
		}
		if hadDeposit || amount.LessThan(minimum) {
			return nil
		}

		bonus := amount.Mul(rate).Round(4)
		if !bonus.IsPositive() {
			return nil
		}
		res.Bonus, err = l.Append(ctx, Entry{
			Credit:      bonus,
			ProfitDelta: bonus,
			Type:        domain.TxBonus,
			Reference:   "first deposit bonus",
			ReferenceID: res.Deposit.TransactionID,
		})
		if err != nil {
			s.undo(ctx, l, res.Deposit)
			return err
		}

		sponsorID := user.Sponsor()
		if sponsorID == "" {
			return nil
		}
		if _, err := s.users.GetByUserID(ctx, sponsorID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil
			}
			s.undo(ctx, l, res.Bonus, res.Deposit)
			return domain.Internal("could not load sponsor", err)
		}
		res.SponsorBonus, err = s.ledger.Append(ctx, Entry{
			UserID:      sponsorID,
			Credit:      bonus,
			ProfitDelta: bonus,
			Type:        domain.TxLevel1Bonus,
			Reference:   "first deposit of " + userID,
			ReferenceID: res.Deposit.TransactionID,
		})
		if err != nil {
			s.undo(ctx, l, res.Bonus, res.Deposit)
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{
		"user_id": userID,
		"amount":  amount.String(),
		"bonus":   res.Bonus != nil,
	}).Info("deposit recorded")
	return res, nil
}

func (s *DepositService) undo(ctx context.Context, l *UserLedger, txs ...*models.WalletTransaction) {
	for _, tx := range txs {
		if _, err := l.Reverse(ctx, tx, "deposit rollback"); err != nil {
			s.log.WithError(err).WithField("transaction_id", tx.TransactionID).Error("compensation failed, manual reconciliation needed")
		}
	}
}

func (s *DepositService) user(ctx context.Context, userID string) (*models.User, error) {
	u, err := s.users.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}
