package repository

import (
	"context"

	"grabwallet/internal/models"

	"gorm.io/gorm"
)

type WithdrawalRepository struct {
	db *gorm.DB
}

func NewWithdrawalRepository(db *gorm.DB) *WithdrawalRepository {
	return &WithdrawalRepository{db: db}
}

func (r *WithdrawalRepository) Create(ctx context.Context, w *models.Withdrawal) error {
	return translate(r.db.WithContext(ctx).Create(w).Error)
}

func (r *WithdrawalRepository) GetByRequestID(ctx context.Context, requestID string) (*models.Withdrawal, error) {
	var w models.Withdrawal
	if err := r.db.WithContext(ctx).Where("request_id = ?", requestID).First(&w).Error; err != nil {
		return nil, translate(err)
	}
	return &w, nil
}

// UpdateStatus moves w from status `from` to w.Status. Returns ErrVersionConflict if
// the stored status is no longer `from`.
func (r *WithdrawalRepository) UpdateStatus(ctx context.Context, w *models.Withdrawal, from string) error {
	res := r.db.WithContext(ctx).Model(&models.Withdrawal{}).
		Where("request_id = ? AND status = ?", w.RequestID, from).
		Updates(map[string]interface{}{
			"status":      w.Status,
			"resolved_by": w.ResolvedBy,
			"resolved_at": w.ResolvedAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrVersionConflict
	}
	return nil
}

func (r *WithdrawalRepository) ListByUser(ctx context.Context, userID string, page, limit int) ([]models.Withdrawal, int64, error) {
	return r.list(r.db.WithContext(ctx).Model(&models.Withdrawal{}).Where("user_id = ?", userID), page, limit)
}

// List returns withdrawals filtered by status when given.
func (r *WithdrawalRepository) List(ctx context.Context, status string, page, limit int) ([]models.Withdrawal, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Withdrawal{})
	if status != "" {
		q = q.Where("status = ?", status)
	}
	return r.list(q, page, limit)
}

func (r *WithdrawalRepository) list(q *gorm.DB, page, limit int) ([]models.Withdrawal, int64, error) {
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var list []models.Withdrawal
	err := q.Order("created_at DESC, id DESC").Limit(limit).Offset(offset(page, limit)).Find(&list).Error
	return list, total, err
}
