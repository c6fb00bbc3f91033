package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"grabwallet/config"
	"grabwallet/internal/domain"
	"grabwallet/internal/models"
	"grabwallet/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

type WithdrawalStore interface {
	Create(ctx context.Context, w *models.Withdrawal) error
	GetByRequestID(ctx context.Context, requestID string) (*models.Withdrawal, error)
	UpdateStatus(ctx context.Context, w *models.Withdrawal, from string) error
	ListByUser(ctx context.Context, userID string, page, limit int) ([]models.Withdrawal, int64, error)
	List(ctx context.Context, status string, page, limit int) ([]models.Withdrawal, int64, error)
}

type UserLookup interface {
	GetByUserID(ctx context.Context, userID string) (*models.User, error)
}

// WithdrawalService debits profit when a request is made and credits it back when
// an admin rejects or cancels the request.
type WithdrawalService struct {
	ledger      *LedgerService
	withdrawals WithdrawalStore
	users       UserLookup
	settings    SettingReader
	cfg         config.WithdrawalConfig
	now         func() time.Time
	log         *logrus.Entry
}

func NewWithdrawalService(
	ledger *LedgerService,
	withdrawals WithdrawalStore,
	users UserLookup,
	settings SettingReader,
	cfg config.WithdrawalConfig,
	log *logrus.Logger,
) *WithdrawalService {
	return &WithdrawalService{
		ledger:      ledger,
		withdrawals: withdrawals,
		users:       users,
		settings:    settings,
		cfg:         cfg,
		now:         time.Now,
		log:         log.WithField("component", "withdrawal"),
	}
}

// Request creates a Pending withdrawal and debits amount from balance and profit.
func (s *WithdrawalService) Request(ctx context.Context, userID, address string, amount decimal.Decimal) (*models.Withdrawal, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return nil, ErrAddressRequired
	}
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	user, err := s.users.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	minProfit := settingDecimal(ctx, s.settings, domain.SettingWithdrawalMinProfit, s.cfg.MinProfit)
	retention := settingDecimal(ctx, s.settings, domain.SettingWithdrawalRetentionRate, s.cfg.RetentionRate)

	var out *models.Withdrawal
	err = s.ledger.WithUser(ctx, userID, func(ctx context.Context, l *UserLedger) error {
		acct, err := l.Account(ctx)
		if err != nil {
			return domain.Internal("could not read balance", err)
		}
		if acct.TotalProfit.LessThan(minProfit) {
			return ErrBelowMinimumProfit
		}
		if acct.TotalProfit.LessThan(amount) {
			return ErrInsufficientProfit
		}

		w := &models.Withdrawal{
			RequestID:   "wd-" + uuid.NewString(),
			UserID:      userID,
			Username:    user.Username,
			Mobile:      user.Mobile,
			Address:     address,
			Amount:      amount,
			FinalAmount: amount.Mul(retention).Round(2),
			Status:      domain.WithdrawalPending,
		}
		debit, err := l.Append(ctx, Entry{
			Debit:       amount,
			ProfitDelta: amount.Neg(),
			Type:        domain.TxWithdrawal,
			Reference:   address,
			ReferenceID: w.RequestID,
		})
		if err != nil {
			return err
		}
		if err := s.withdrawals.Create(ctx, w); err != nil {
			if _, rerr := l.Reverse(ctx, debit, "withdrawal not recorded"); rerr != nil {
				s.log.WithError(rerr).WithField("request_id", w.RequestID).Error("could not reverse withdrawal debit")
			}
			return domain.Integrity("could not record withdrawal", err)
		}
		out = w
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{
		"user_id":    userID,
		"request_id": out.RequestID,
		"amount":     amount.String(),
	}).Info("withdrawal requested")
	return out, nil
}

// Resolve moves a Pending request to status. Rejected and Cancelled by Admin
// credit the full amount back.
func (s *WithdrawalService) Resolve(ctx context.Context, requestID, status, adminID string) (*models.Withdrawal, error) {
	switch status {
	case domain.WithdrawalApproved, domain.WithdrawalRejected, domain.WithdrawalCancelledByAdmin:
	default:
		return nil, ErrInvalidStatus
	}
	if requestID == "" {
		return nil, ErrWithdrawalNotFound
	}
	w, err := s.get(ctx, requestID)
	if err != nil {
		return nil, err
	}

	err = s.ledger.WithUser(ctx, w.UserID, func(ctx context.Context, l *UserLedger) error {
		current, err := s.get(ctx, requestID)
		if err != nil {
			return err
		}
		if current.Status != domain.WithdrawalPending {
			return ErrInvalidTransition
		}
		now := s.now()
		current.Status = status
		current.ResolvedBy = adminID
		current.ResolvedAt = &now
		if err := s.withdrawals.UpdateStatus(ctx, current, domain.WithdrawalPending); err != nil {
			if errors.Is(err, repository.ErrVersionConflict) {
				return ErrInvalidTransition
			}
			return domain.Internal("could not update withdrawal", err)
		}
		if status != domain.WithdrawalApproved {
			_, err := l.Append(ctx, Entry{
				Credit:      current.Amount,
				ProfitDelta: current.Amount,
				Type:        domain.TxRejectWithdrawal,
				Reference:   status,
				ReferenceID: current.RequestID,
			})
			if err != nil {
				current.Status = domain.WithdrawalPending
				current.ResolvedBy = ""
				current.ResolvedAt = nil
				if rerr := s.withdrawals.UpdateStatus(ctx, current, status); rerr != nil {
					s.log.WithError(rerr).WithField("request_id", requestID).Error("could not restore pending status")
				}
				return err
			}
		}
		w = current
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{
		"request_id": requestID,
		"status":     status,
		"admin_id":   adminID,
	}).Info("withdrawal resolved")
	return w, nil
}

func (s *WithdrawalService) ListMine(ctx context.Context, userID string, page, limit int) ([]models.Withdrawal, int64, error) {
	return s.withdrawals.ListByUser(ctx, userID, page, limit)
}

func (s *WithdrawalService) List(ctx context.Context, status string, page, limit int) ([]models.Withdrawal, int64, error) {
	return s.withdrawals.List(ctx, status, page, limit)
}

func (s *WithdrawalService) get(ctx context.Context, requestID string) (*models.Withdrawal, error) {
	w, err := s.withdrawals.GetByRequestID(ctx, requestID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrWithdrawalNotFound
		}
		return nil, err
	}
	return w, nil
}
