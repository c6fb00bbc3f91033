package service

import (
	"context"

	"github.com/shopspring/decimal"
)

// SettingReader looks up admin-tunable values.
type SettingReader interface {
	Get(ctx context.Context, key string) (string, error)
}

// settingDecimal returns the stored value of key, or fallback when it is unset or malformed.
func settingDecimal(ctx context.Context, settings SettingReader, key string, fallback decimal.Decimal) decimal.Decimal {
	if settings == nil {
		return fallback
	}
	val, err := settings.Get(ctx, key)
	if err != nil || val == "" {
		return fallback
	}
	d, err := decimal.NewFromString(val)
	if err != nil {
		return fallback
	}
	return d
}
