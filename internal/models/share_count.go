package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ShareCount holds a user's referral share tally and the grab counters for the current day.
type ShareCount struct {
	ID                  uint            `gorm:"primaryKey" json:"-"`
	UserID              string          `gorm:"uniqueIndex;size:16;not null" json:"user_id"`
	ShareCount          int             `gorm:"not null;default:0" json:"share_count"`
	TotalShareCount     int             `gorm:"not null;default:0" json:"total_share_count"`
	CallDate            *time.Time      `json:"call_date"`
	GrabCount           int             `gorm:"not null;default:0" json:"grab_count"`
	GrabCountLeft       int             `gorm:"not null;default:0" json:"grab_count_left"`
	DailyInitialBalance decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"daily_initial_balance"`
	CreatedAt           time.Time       `json:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at"`
}

func (ShareCount) TableName() string {
	return "share_counts"
}
