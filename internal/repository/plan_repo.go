package repository

import (
	"context"

	"grabwallet/internal/models"

	"gorm.io/gorm"
)

type PlanRepository struct {
	db *gorm.DB
}

func NewPlanRepository(db *gorm.DB) *PlanRepository {
	return &PlanRepository{db: db}
}

// List returns every plan, most expensive first.
func (r *PlanRepository) List(ctx context.Context) ([]models.Plan, error) {
	var list []models.Plan
	err := r.db.WithContext(ctx).Order("price DESC, id ASC").Find(&list).Error
	return list, err
}

func (r *PlanRepository) Get(ctx context.Context, id uint) (*models.Plan, error) {
	var p models.Plan
	if err := r.db.WithContext(ctx).First(&p, id).Error; err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (r *PlanRepository) Create(ctx context.Context, p *models.Plan) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *PlanRepository) Update(ctx context.Context, p *models.Plan) error {
	return r.db.WithContext(ctx).Save(p).Error
}

func (r *PlanRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Plan{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
