package repository

import (
	"context"
	"time"

	"grabwallet/internal/domain"
	"grabwallet/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// TeamTotals aggregates ledger activity of a set of users over a time range.
type TeamTotals struct {
	Credit          decimal.Decimal
	Debit           decimal.Decimal
	Withdrawn       decimal.Decimal
	WithdrawRefund  decimal.Decimal
	OrderCommission decimal.Decimal
}

type TeamRepository struct {
	db *gorm.DB
}

func NewTeamRepository(db *gorm.DB) *TeamRepository {
	return &TeamRepository{db: db}
}

// SumBalances adds up the current account balances of userIDs.
func (r *TeamRepository) SumBalances(ctx context.Context, userIDs []string) (decimal.Decimal, error) {
	if len(userIDs) == 0 {
		return decimal.Zero, nil
	}
	var row struct{ Total decimal.NullDecimal }
	err := r.db.WithContext(ctx).Model(&models.Account{}).
		Select("SUM(balance) AS total").
		Where("user_id IN ?", userIDs).
		Scan(&row).Error
	return nullToZero(row.Total), err
}

// Totals sums ledger entries of userIDs created within [from, to). Rolled back
// entries and their Reversal rows are left out.
func (r *TeamRepository) Totals(ctx context.Context, userIDs []string, from, to time.Time) (*TeamTotals, error) {
	out := &TeamTotals{}
	if len(userIDs) == 0 {
		return out, nil
	}
	var row struct {
		Credit          decimal.NullDecimal
		Debit           decimal.NullDecimal
		Withdrawn       decimal.NullDecimal
		WithdrawRefund  decimal.NullDecimal
		OrderCommission decimal.NullDecimal
	}
	err := r.db.WithContext(ctx).Model(&models.WalletTransaction{}).
		Select(`SUM(credit) AS credit,
			SUM(debit) AS debit,
			SUM(CASE WHEN transaction_type = ? THEN debit ELSE 0 END) AS withdrawn,
			SUM(CASE WHEN transaction_type = ? THEN credit ELSE 0 END) AS withdraw_refund,
			SUM(CASE WHEN transaction_type = ? THEN commission ELSE 0 END) AS order_commission`,
			domain.TxWithdrawal, domain.TxRejectWithdrawal, domain.TxDirectGrabCommission).
		Scopes(notReversed).
		Where("user_id IN ? AND transaction_type <> ? AND created_at >= ? AND created_at < ?", userIDs, domain.TxReversal, from, to).
		Scan(&row).Error
	if err != nil {
		return nil, err
	}
	out.Credit = nullToZero(row.Credit)
	out.Debit = nullToZero(row.Debit)
	out.Withdrawn = nullToZero(row.Withdrawn)
	out.WithdrawRefund = nullToZero(row.WithdrawRefund)
	out.OrderCommission = nullToZero(row.OrderCommission)
	return out, nil
}

// FirstDepositors counts users among userIDs whose first deposit happened within [from, to).
func (r *TeamRepository) FirstDepositors(ctx context.Context, userIDs []string, from, to time.Time) (int64, error) {
	if len(userIDs) == 0 {
		return 0, nil
	}
	firsts := r.db.Model(&models.WalletTransaction{}).
		Select("user_id, MIN(created_at) AS first_at").
		Scopes(notReversed).
		Where("user_id IN ? AND transaction_type = ? AND credit > 0", userIDs, domain.TxDeposit).
		Group("user_id")
	var count int64
	err := r.db.WithContext(ctx).Table("(?) AS firsts", firsts).
		Where("first_at >= ? AND first_at < ?", from, to).
		Count(&count).Error
	return count, err
}

func nullToZero(d decimal.NullDecimal) decimal.Decimal {
	if !d.Valid {
		return decimal.Zero
	}
	return d.Decimal
}
