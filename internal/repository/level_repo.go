package repository

import (
	"context"
	"errors"

	"grabwallet/internal/models"

	"gorm.io/gorm"
)

type LevelRepository struct {
	db *gorm.DB
}

func NewLevelRepository(db *gorm.DB) *LevelRepository {
	return &LevelRepository{db: db}
}

// Get returns the global level rates row.
func (r *LevelRepository) Get(ctx context.Context) (*models.LevelSetting, error) {
	var l models.LevelSetting
	if err := r.db.WithContext(ctx).Order("id ASC").First(&l).Error; err != nil {
		return nil, translate(err)
	}
	return &l, nil
}

// Save replaces the rates of the single row, creating it if missing.
func (r *LevelRepository) Save(ctx context.Context, l *models.LevelSetting) error {
	existing, err := r.Get(ctx)
	if err == nil {
		l.ID = existing.ID
		return r.db.WithContext(ctx).Save(l).Error
	}
	if !errors.Is(err, ErrNotFound) {
		return err
	}
	l.ID = 0
	return r.db.WithContext(ctx).Create(l).Error
}
