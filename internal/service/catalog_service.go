package service

import (
	"context"
	"errors"
	"strings"

	"grabwallet/internal/models"
	"grabwallet/internal/repository"

	"github.com/shopspring/decimal"
)

type PlanRepo interface {
	List(ctx context.Context) ([]models.Plan, error)
	Get(ctx context.Context, id uint) (*models.Plan, error)
	Create(ctx context.Context, p *models.Plan) error
	Update(ctx context.Context, p *models.Plan) error
	Delete(ctx context.Context, id uint) error
}

type ProductRepo interface {
	List(ctx context.Context, page, limit int) ([]models.Product, int64, error)
	Get(ctx context.Context, id uint) (*models.Product, error)
	Create(ctx context.Context, p *models.Product) error
	Update(ctx context.Context, p *models.Product) error
	Delete(ctx context.Context, id uint) error
}

type LevelRepo interface {
	Get(ctx context.Context) (*models.LevelSetting, error)
	Save(ctx context.Context, l *models.LevelSetting) error
}

// CatalogService validates admin writes to plans, products and level rates.
type CatalogService struct {
	plans        PlanRepo
	products     ProductRepo
	levels       LevelRepo
	defaultRates [3]decimal.Decimal
}

func NewCatalogService(plans PlanRepo, products ProductRepo, levels LevelRepo, defaultRates [3]decimal.Decimal) *CatalogService {
	return &CatalogService{plans: plans, products: products, levels: levels, defaultRates: defaultRates}
}

func (s *CatalogService) Plans(ctx context.Context) ([]models.Plan, error) {
	return s.plans.List(ctx)
}

func (s *CatalogService) SavePlan(ctx context.Context, p *models.Plan) error {
	p.Title = strings.TrimSpace(p.Title)
	if p.Title == "" || p.Commission.IsNegative() || p.Price.IsNegative() || p.GrabNo < 1 || p.ShareLimit < 0 {
		return ErrInvalidPlan
	}
	if p.ID == 0 {
		return s.plans.Create(ctx, p)
	}
	existing, err := s.plans.Get(ctx, p.ID)
	if err != nil {
		return notFoundAs(err, ErrPlanNotFound)
	}
	p.CreatedAt = existing.CreatedAt
	return s.plans.Update(ctx, p)
}

func (s *CatalogService) DeletePlan(ctx context.Context, id uint) error {
	return notFoundAs(s.plans.Delete(ctx, id), ErrPlanNotFound)
}

func (s *CatalogService) Products(ctx context.Context, page, limit int) ([]models.Product, int64, error) {
	return s.products.List(ctx, page, limit)
}

func (s *CatalogService) SaveProduct(ctx context.Context, p *models.Product) error {
	p.ProductName = strings.TrimSpace(p.ProductName)
	if p.ProductName == "" || !p.Price.IsPositive() {
		return ErrInvalidProduct
	}
	if p.ID == 0 {
		return s.products.Create(ctx, p)
	}
	existing, err := s.products.Get(ctx, p.ID)
	if err != nil {
		return notFoundAs(err, ErrProductNotFound)
	}
	p.CreatedAt = existing.CreatedAt
	return s.products.Update(ctx, p)
}

func (s *CatalogService) DeleteProduct(ctx context.Context, id uint) error {
	return notFoundAs(s.products.Delete(ctx, id), ErrProductNotFound)
}

// Levels returns the configured cascade rates, or the defaults when none are stored.
func (s *CatalogService) Levels(ctx context.Context) (*models.LevelSetting, error) {
	l, err := s.levels.Get(ctx)
	if errors.Is(err, repository.ErrNotFound) {
		return &models.LevelSetting{
			LevelFirst:  s.defaultRates[0],
			LevelSecond: s.defaultRates[1],
			LevelThird:  s.defaultRates[2],
		}, nil
	}
	return l, err
}

func (s *CatalogService) SaveLevels(ctx context.Context, l *models.LevelSetting) error {
	for _, r := range l.Rates() {
		if r.IsNegative() || r.GreaterThan(hundred) {
			return ErrInvalidLevelRates
		}
	}
	return s.levels.Save(ctx, l)
}

func notFoundAs(err error, target error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return target
	}
	return err
}
