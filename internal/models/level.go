package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// LevelSetting is the single global row of cascade rates, in percent.
type LevelSetting struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	LevelFirst  decimal.Decimal `gorm:"type:decimal(10,4);not null" json:"level_first"`
	LevelSecond decimal.Decimal `gorm:"type:decimal(10,4);not null" json:"level_second"`
	LevelThird  decimal.Decimal `gorm:"type:decimal(10,4);not null" json:"level_third"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

func (LevelSetting) TableName() string {
	return "levels"
}

// Rates returns the three rates ordered by level.
func (l LevelSetting) Rates() [3]decimal.Decimal {
	return [3]decimal.Decimal{l.LevelFirst, l.LevelSecond, l.LevelThird}
}
