package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Plan is a tier a user qualifies for by balance (Price) and referral shares (ShareLimit).
// Commission is the daily percentage, spread over GrabNo grabs.
type Plan struct {
	ID         uint            `gorm:"primaryKey" json:"id"`
	Title      string          `gorm:"size:100;not null" json:"title"`
	Commission decimal.Decimal `gorm:"type:decimal(10,4);not null" json:"commission"`
	Price      decimal.Decimal `gorm:"type:decimal(20,4);not null;index" json:"price"`
	GrabNo     int             `gorm:"not null" json:"grab_no"`
	ShareLimit int             `gorm:"not null;default:0" json:"share_limit"`
	ImageURL   string          `gorm:"size:512" json:"image_url"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
	DeletedAt  gorm.DeletedAt  `gorm:"index" json:"-"`
}

func (Plan) TableName() string {
	return "plans"
}
