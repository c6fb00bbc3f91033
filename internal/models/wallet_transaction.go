package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// WalletTransaction is one immutable ledger entry. Balance and TotalProfit are the
// owner's running values after this entry was applied.
type WalletTransaction struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	UserID          string          `gorm:"size:16;not null;index" json:"user_id"`
	TransactionID   string          `gorm:"size:64;uniqueIndex;not null" json:"transaction_id"`
	Credit          decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"credit"`
	Debit           decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"debit"`
	Balance         decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"balance"`
	Commission      decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"commission"`
	Profit          decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"profit"` // change applied to TotalProfit
	TotalProfit     decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"total_profit"`
	TransactionType string          `gorm:"size:40;not null;index" json:"transaction_type"`
	Reference       string          `gorm:"size:128" json:"reference"`
	ReferenceID     string          `gorm:"size:64;index" json:"reference_id"`
	CreatedAt       time.Time       `gorm:"index" json:"created_at"`
}

func (WalletTransaction) TableName() string {
	return "wallet_transactions"
}
