package database

import (
	"context"
	"errors"
	"strings"

	"grabwallet/config"
	"grabwallet/internal/domain"
	"grabwallet/internal/models"
	"grabwallet/internal/repository"

	"github.com/dchest/uniuri"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// SeedAdmin creates the configured admin account if it does not exist yet.
func SeedAdmin(ctx context.Context, db *gorm.DB, cfg *config.AdminConfig, log *logrus.Logger) error {
	email := strings.ToLower(strings.TrimSpace(cfg.Email))
	if email == "" || cfg.Password == "" {
		log.Info("admin seed skipped: ADMIN_EMAIL or ADMIN_PASSWORD not set")
		return nil
	}
	users := repository.NewUserRepository(db)
	if _, err := users.GetByEmail(ctx, email); err == nil {
		return nil
	} else if !errors.Is(err, repository.ErrNotFound) {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	admin := &models.User{
		UserID:       uniuri.NewLen(domain.UserIDLength),
		Username:     "admin",
		Email:        email,
		PasswordHash: string(hash),
		Role:         domain.RoleAdmin,
	}
	if err := users.Create(ctx, admin); err != nil {
		return err
	}
	log.WithField("user_id", admin.UserID).Info("admin account seeded")
	return nil
}

// SeedDefaults stores default level rates and business settings that are not set yet.
func SeedDefaults(ctx context.Context, db *gorm.DB, cfg *config.Config) error {
	levels := repository.NewLevelRepository(db)
	if _, err := levels.Get(ctx); errors.Is(err, repository.ErrNotFound) {
		rates := cfg.Referral.DefaultLevelRates
		err := levels.Save(ctx, &models.LevelSetting{
			LevelFirst:  rates[0],
			LevelSecond: rates[1],
			LevelThird:  rates[2],
		})
		if err != nil {
			return err
		}
	} else if err != nil {
		return err
	}
	return repository.NewSettingRepository(db).SeedDefaults(ctx, map[string]string{
		domain.SettingWithdrawalRetentionRate: cfg.Withdrawal.RetentionRate.String(),
		domain.SettingWithdrawalMinProfit:     cfg.Withdrawal.MinProfit.String(),
		domain.SettingDepositBonusRate:        cfg.Deposit.BonusRate.String(),
		domain.SettingDepositBonusMinimum:     cfg.Deposit.BonusMinimum.String(),
	})
}
