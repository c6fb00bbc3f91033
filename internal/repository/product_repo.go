package repository

import (
	"context"

	"grabwallet/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ProductRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

func (r *ProductRepository) List(ctx context.Context, page, limit int) ([]models.Product, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Product{})
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var list []models.Product
	err := q.Order("price ASC, id ASC").Limit(limit).Offset(offset(page, limit)).Find(&list).Error
	return list, total, err
}

// InPriceRange returns products priced within [lo, hi].
func (r *ProductRepository) InPriceRange(ctx context.Context, lo, hi decimal.Decimal) ([]models.Product, error) {
	var list []models.Product
	err := r.db.WithContext(ctx).
		Where("price >= ? AND price <= ?", lo, hi).
		Order("id ASC").
		Find(&list).Error
	return list, err
}

func (r *ProductRepository) Get(ctx context.Context, id uint) (*models.Product, error) {
	var p models.Product
	if err := r.db.WithContext(ctx).First(&p, id).Error; err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (r *ProductRepository) Create(ctx context.Context, p *models.Product) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *ProductRepository) Update(ctx context.Context, p *models.Product) error {
	return r.db.WithContext(ctx).Save(p).Error
}

func (r *ProductRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Product{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ReportRepository stores grab history.
type ReportRepository struct {
	db *gorm.DB
}

func NewReportRepository(db *gorm.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

func (r *ReportRepository) Create(ctx context.Context, rep *models.CustomerProductReport) error {
	return r.db.WithContext(ctx).Create(rep).Error
}

func (r *ReportRepository) ListByUser(ctx context.Context, userID string, page, limit int) ([]models.CustomerProductReport, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.CustomerProductReport{}).Where("user_id = ?", userID)
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var list []models.CustomerProductReport
	err := q.Order("id DESC").Limit(limit).Offset(offset(page, limit)).Find(&list).Error
	return list, total, err
}
