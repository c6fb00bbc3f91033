package repository

import (
	"context"
	"errors"
	"time"

	"grabwallet/internal/domain"
	"grabwallet/internal/models"

	"gorm.io/gorm"
)

// WalletRepository persists the ledger and the account snapshot next to it.
type WalletRepository struct {
	db *gorm.DB
}

func NewWalletRepository(db *gorm.DB) *WalletRepository {
	return &WalletRepository{db: db}
}

func (r *WalletRepository) GetAccount(ctx context.Context, userID string) (*models.Account, error) {
	var a models.Account
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&a).Error; err != nil {
		return nil, translate(err)
	}
	return &a, nil
}

// Apply stores next as the account state and appends entry in one transaction.
// next.Version must be the stored version plus one; version 1 creates the account.
// Returns ErrVersionConflict when another writer got there first.
func (r *WalletRepository) Apply(ctx context.Context, next *models.Account, entry *models.WalletTransaction) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if next.Version == 1 {
			if err := tx.Create(next).Error; err != nil {
				if errors.Is(err, gorm.ErrDuplicatedKey) {
					return ErrVersionConflict
				}
				return err
			}
		} else {
			res := tx.Model(&models.Account{}).
				Where("user_id = ? AND version = ?", next.UserID, next.Version-1).
				Updates(map[string]interface{}{
					"balance":      next.Balance,
					"total_profit": next.TotalProfit,
					"version":      next.Version,
					"updated_at":   time.Now(),
				})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return ErrVersionConflict
			}
		}
		return tx.Create(entry).Error
	})
}

// Latest returns the most recently inserted entry for userID.
func (r *WalletRepository) Latest(ctx context.Context, userID string) (*models.WalletTransaction, error) {
	var t models.WalletTransaction
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("id DESC").First(&t).Error; err != nil {
		return nil, translate(err)
	}
	return &t, nil
}

// History lists entries newest first.
func (r *WalletRepository) History(ctx context.Context, userID string, page, limit int) ([]models.WalletTransaction, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.WalletTransaction{}).Where("user_id = ?", userID)
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var list []models.WalletTransaction
	err := q.Order("id DESC").Limit(limit).Offset(offset(page, limit)).Find(&list).Error
	return list, total, err
}

// HasCredit reports whether userID has a non-zero credit entry of txType that was
// not rolled back.
func (r *WalletRepository) HasCredit(ctx context.Context, userID, txType string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.WalletTransaction{}).
		Scopes(notReversed).
		Where("user_id = ? AND transaction_type = ? AND credit > 0", userID, txType).
		Count(&count).Error
	return count > 0, err
}

// notReversed drops ledger entries that a Reversal entry points at.
func notReversed(db *gorm.DB) *gorm.DB {
	return db.Where(`NOT EXISTS (SELECT 1 FROM wallet_transactions r
		WHERE r.transaction_type = ? AND r.reference_id = wallet_transactions.transaction_id)`, domain.TxReversal)
}
