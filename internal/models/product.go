package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Product struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	ProductName string          `gorm:"size:255;not null" json:"product_name"`
	Level       string          `gorm:"size:50" json:"level"`
	Price       decimal.Decimal `gorm:"type:decimal(20,4);not null;index" json:"price"`
	ProductImg  string          `gorm:"size:512" json:"product_img"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	DeletedAt   gorm.DeletedAt  `gorm:"index" json:"-"`
}

func (Product) TableName() string {
	return "products"
}

// CustomerProductReport records one successful grab.
type CustomerProductReport struct {
	ID             uint            `gorm:"primaryKey" json:"id"`
	UserID         string          `gorm:"size:16;not null;index" json:"user_id"`
	ProductID      uint            `gorm:"not null;index" json:"product_id"`
	ProductName    string          `gorm:"size:255" json:"product_name"`
	ProductPrice   decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"product_price"`
	GrabCommission decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"grab_commission"`
	BuyDate        time.Time       `gorm:"index" json:"buy_date"`
}

func (CustomerProductReport) TableName() string {
	return "customer_product_reports"
}
