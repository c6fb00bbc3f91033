package repository

import (
	"context"

	"grabwallet/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, u *models.User) error {
	return translate(r.db.WithContext(ctx).Create(u).Error)
}

func (r *UserRepository) GetByUserID(ctx context.Context, userID string) (*models.User, error) {
	var u models.User
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&u).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&u).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var u models.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&u).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

// ListBySponsors returns the direct referrals of every id in sponsorIDs.
func (r *UserRepository) ListBySponsors(ctx context.Context, sponsorIDs []string) ([]models.User, error) {
	if len(sponsorIDs) == 0 {
		return nil, nil
	}
	var list []models.User
	err := r.db.WithContext(ctx).Where("shared_id IN ?", sponsorIDs).Order("id ASC").Find(&list).Error
	return list, err
}

// CountQualifiedReferrals counts direct referrals of sponsorID whose balance exceeds threshold.
func (r *UserRepository) CountQualifiedReferrals(ctx context.Context, sponsorID string, threshold decimal.Decimal) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.User{}).
		Joins("JOIN accounts ON accounts.user_id = users.user_id").
		Where("users.shared_id = ? AND accounts.balance > ?", sponsorID, threshold).
		Count(&count).Error
	return count, err
}

// QualifiedReferralCounts returns, for every sponsor, how many direct referrals
// hold a balance above threshold. Sponsors with none map to zero.
func (r *UserRepository) QualifiedReferralCounts(ctx context.Context, threshold decimal.Decimal) (map[string]int, error) {
	var sponsors []string
	if err := r.db.WithContext(ctx).Model(&models.User{}).
		Where("shared_id IS NOT NULL AND shared_id <> ''").
		Distinct().Pluck("shared_id", &sponsors).Error; err != nil {
		return nil, err
	}
	out := make(map[string]int, len(sponsors))
	for _, s := range sponsors {
		out[s] = 0
	}

	var rows []struct {
		SharedID string
		Total    int
	}
	err := r.db.WithContext(ctx).Model(&models.User{}).
		Select("users.shared_id AS shared_id, COUNT(*) AS total").
		Joins("JOIN accounts ON accounts.user_id = users.user_id").
		Where("users.shared_id IS NOT NULL AND accounts.balance > ?", threshold).
		Group("users.shared_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.SharedID] = row.Total
	}
	return out, nil
}

// List returns users with an optional search, newest first.
func (r *UserRepository) List(ctx context.Context, search string, page, limit int) ([]models.User, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.User{})
	if search != "" {
		like := "%" + search + "%"
		q = q.Where("username LIKE ? OR email LIKE ? OR user_id = ?", like, like, search)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var users []models.User
	err := q.Order("created_at DESC").Limit(limit).Offset(offset(page, limit)).Find(&users).Error
	return users, total, err
}
