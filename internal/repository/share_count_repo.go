package repository

import (
	"context"
	"errors"

	"grabwallet/internal/models"

	"gorm.io/gorm"
)

type ShareCountRepository struct {
	db *gorm.DB
}

func NewShareCountRepository(db *gorm.DB) *ShareCountRepository {
	return &ShareCountRepository{db: db}
}

func (r *ShareCountRepository) Get(ctx context.Context, userID string) (*models.ShareCount, error) {
	var sc models.ShareCount
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&sc).Error; err != nil {
		return nil, translate(err)
	}
	return &sc, nil
}

func (r *ShareCountRepository) GetOrCreate(ctx context.Context, userID string) (*models.ShareCount, error) {
	sc, err := r.Get(ctx, userID)
	if err == nil {
		return sc, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	sc = &models.ShareCount{UserID: userID}
	if err := r.db.WithContext(ctx).Create(sc).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return r.Get(ctx, userID)
		}
		return nil, err
	}
	return sc, nil
}

// SaveGrabState writes the daily grab counters only, leaving the share tally alone.
func (r *ShareCountRepository) SaveGrabState(ctx context.Context, sc *models.ShareCount) error {
	return r.db.WithContext(ctx).Model(&models.ShareCount{}).
		Where("user_id = ?", sc.UserID).
		Updates(map[string]interface{}{
			"call_date":             sc.CallDate,
			"grab_count":            sc.GrabCount,
			"grab_count_left":       sc.GrabCountLeft,
			"daily_initial_balance": sc.DailyInitialBalance,
		}).Error
}

// UpdateShares sets the current share tally and raises the cumulative one if needed.
func (r *ShareCountRepository) UpdateShares(ctx context.Context, userID string, count int) error {
	if _, err := r.GetOrCreate(ctx, userID); err != nil {
		return err
	}
	return r.db.WithContext(ctx).Model(&models.ShareCount{}).
		Where("user_id = ?", userID).
		Updates(map[string]interface{}{
			"share_count":       count,
			"total_share_count": gorm.Expr("GREATEST(total_share_count, ?)", count),
		}).Error
}
