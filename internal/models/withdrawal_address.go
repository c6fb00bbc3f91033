package models

import "time"

// WithdrawalAddress is a payout address a user saved for later withdrawals.
type WithdrawalAddress struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    string    `gorm:"size:16;not null;uniqueIndex:idx_withdrawal_address_user" json:"user_id"`
	Address   string    `gorm:"size:255;not null;uniqueIndex:idx_withdrawal_address_user" json:"address"`
	CreatedAt time.Time `json:"created_at"`
}

func (WithdrawalAddress) TableName() string {
	return "withdrawal_addresses"
}
