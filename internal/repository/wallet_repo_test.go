package repository

import (
	"context"
	"testing"
	"time"

	"grabwallet/internal/domain"
	"grabwallet/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	// every pooled connection would get its own empty in-memory database
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(&models.Account{}, &models.WalletTransaction{}))
	return db
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func ledgerRow(userID, txID, txType, credit, debit, refID string) *models.WalletTransaction {
	return &models.WalletTransaction{
		UserID:          userID,
		TransactionID:   txID,
		TransactionType: txType,
		Credit:          dec(credit),
		Debit:           dec(debit),
		ReferenceID:     refID,
		CreatedAt:       time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC),
	}
}

func TestApplyRejectsStaleVersion(t *testing.T) {
	db := newTestDB(t)
	repo := NewWalletRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Apply(ctx,
		&models.Account{UserID: "U1", Balance: dec("100"), Version: 1},
		ledgerRow("U1", "t1", domain.TxDeposit, "100", "0", "")))
	require.NoError(t, repo.Apply(ctx,
		&models.Account{UserID: "U1", Balance: dec("150"), Version: 2},
		ledgerRow("U1", "t2", domain.TxDeposit, "50", "0", "")))

	err := repo.Apply(ctx,
		&models.Account{UserID: "U1", Balance: dec("999"), Version: 2},
		ledgerRow("U1", "t3", domain.TxDeposit, "849", "0", ""))
	assert.ErrorIs(t, err, ErrVersionConflict)

	acc, err := repo.GetAccount(ctx, "U1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), acc.Version)
	assert.True(t, acc.Balance.Equal(dec("150")))

	var entries int64
	require.NoError(t, db.Model(&models.WalletTransaction{}).Where("user_id = ?", "U1").Count(&entries).Error)
	assert.Equal(t, int64(2), entries)

	latest, err := repo.Latest(ctx, "U1")
	require.NoError(t, err)
	assert.Equal(t, "t2", latest.TransactionID)
}

func TestHasCreditIgnoresReversedEntries(t *testing.T) {
	db := newTestDB(t)
	repo := NewWalletRepository(db)
	ctx := context.Background()

	require.NoError(t, db.Create(ledgerRow("A", "t1", domain.TxDeposit, "200", "0", "")).Error)
	require.NoError(t, db.Create(ledgerRow("A", "r1", domain.TxReversal, "0", "200", "t1")).Error)

	ok, err := repo.HasCredit(ctx, "A", domain.TxDeposit)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, db.Create(ledgerRow("A", "t2", domain.TxDeposit, "200", "0", "")).Error)
	ok, err = repo.HasCredit(ctx, "A", domain.TxDeposit)
	require.NoError(t, err)
	assert.True(t, ok)
}
