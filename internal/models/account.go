package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account is the balance snapshot kept next to the ledger. Version is bumped on every
// ledger append and guards against concurrent writers.
type Account struct {
	ID          uint            `gorm:"primaryKey" json:"-"`
	UserID      string          `gorm:"uniqueIndex;size:16;not null" json:"user_id"`
	Balance     decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"balance"`
	TotalProfit decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"total_profit"`
	Version     int64           `gorm:"not null;default:0" json:"version"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

func (Account) TableName() string {
	return "accounts"
}
