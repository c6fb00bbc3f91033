package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Withdrawal struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	RequestID   string          `gorm:"size:64;uniqueIndex;not null" json:"request_id"`
	UserID      string          `gorm:"size:16;not null;index" json:"user_id"`
	Username    string          `gorm:"size:64" json:"username"`
	Mobile      string          `gorm:"size:20" json:"mobile"`
	Address     string          `gorm:"size:255;not null" json:"address"`
	Amount      decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"amount"`
	FinalAmount decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"final_amount"`
	Status      string          `gorm:"size:24;not null;index" json:"status"` // Pending, Approved, Rejected, Cancelled by Admin
	ResolvedBy  string          `gorm:"size:16" json:"resolved_by,omitempty"`
	ResolvedAt  *time.Time      `json:"resolved_at"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

func (Withdrawal) TableName() string {
	return "withdrawals"
}
