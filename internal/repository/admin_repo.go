package repository

import (
	"context"

	"grabwallet/internal/domain"
	"grabwallet/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type DashboardStats struct {
	TotalUsers          int64           `json:"total_users"`
	PendingWithdrawals  int64           `json:"pending_withdrawals"`
	TotalDeposits       decimal.Decimal `json:"total_deposits"`
	TotalCommissionPaid decimal.Decimal `json:"total_commission_paid"`
	TotalWithdrawn      decimal.Decimal `json:"total_withdrawn"`
	TotalGrabs          int64           `json:"total_grabs"`
}

type AdminRepository struct {
	db *gorm.DB
}

func NewAdminRepository(db *gorm.DB) *AdminRepository {
	return &AdminRepository{db: db}
}

func (r *AdminRepository) GetDashboardStats(ctx context.Context) (*DashboardStats, error) {
	db := r.db.WithContext(ctx)
	var s DashboardStats
	if err := db.Model(&models.User{}).Where("role = ?", domain.RoleUser).Count(&s.TotalUsers).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Withdrawal{}).Where("status = ?", domain.WithdrawalPending).Count(&s.PendingWithdrawals).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.CustomerProductReport{}).Count(&s.TotalGrabs).Error; err != nil {
		return nil, err
	}

	var sums struct {
		Deposits    decimal.NullDecimal
		Commissions decimal.NullDecimal
		Withdrawn   decimal.NullDecimal
	}
	err := db.Model(&models.WalletTransaction{}).
		Select(`SUM(CASE WHEN transaction_type = ? THEN credit ELSE 0 END) AS deposits,
			SUM(CASE WHEN transaction_type IN ? THEN credit ELSE 0 END) AS commissions,
			SUM(CASE WHEN transaction_type = ? THEN debit ELSE 0 END) - SUM(CASE WHEN transaction_type = ? THEN credit ELSE 0 END) AS withdrawn`,
			domain.TxDeposit,
			[]string{domain.TxDirectGrabCommission, domain.TxLevelCommission},
			domain.TxWithdrawal, domain.TxRejectWithdrawal).
		Scan(&sums).Error
	if err != nil {
		return nil, err
	}
	s.TotalDeposits = nullToZero(sums.Deposits)
	s.TotalCommissionPaid = nullToZero(sums.Commissions)
	s.TotalWithdrawn = nullToZero(sums.Withdrawn)
	return &s, nil
}
