package repository

import (
	"context"

	"grabwallet/internal/models"

	"gorm.io/gorm"
)

type AddressRepository struct {
	db *gorm.DB
}

func NewAddressRepository(db *gorm.DB) *AddressRepository {
	return &AddressRepository{db: db}
}

func (r *AddressRepository) Create(ctx context.Context, a *models.WithdrawalAddress) error {
	return translate(r.db.WithContext(ctx).Create(a).Error)
}

// ListByUser returns the user's saved addresses, newest first.
func (r *AddressRepository) ListByUser(ctx context.Context, userID string) ([]models.WithdrawalAddress, error) {
	var list []models.WithdrawalAddress
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("id DESC").Find(&list).Error
	return list, err
}
