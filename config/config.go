package config

import (
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata" // embeds zoneinfo for LEDGER_TIMEZONE

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	JWT        JWTConfig
	Admin      AdminConfig
	Ledger     LedgerConfig
	Grab       GrabConfig
	Referral   ReferralConfig
	Withdrawal WithdrawalConfig
	Deposit    DepositConfig
}

type ServerConfig struct {
	Port           string
	Env            string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	// AllowedOrigins feeds the CORS middleware. "*" allows any origin.
	AllowedOrigins []string
}

type DatabaseConfig struct {
	Driver          string // mysql | postgres
	DSN             string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
}

// RedisConfig enables the distributed per-user lock when URL is set.
type RedisConfig struct {
	URL string
}

type JWTConfig struct {
	AccessSecret  string
	RefreshSecret string
	AccessExpiry  time.Duration
	RefreshExpiry time.Duration
	Issuer        string
}

type AdminConfig struct {
	Email    string
	Password string
}

type LedgerConfig struct {
	Timezone             string
	RetryMaxAttempts     uint64
	RetryInitialInterval time.Duration
	RetryMaxInterval     time.Duration
	LockTimeout          time.Duration
	LockTTL              time.Duration
}

// Location returns the canonical timezone used for day boundaries.
// Falls back to UTC when the configured zone cannot be loaded.
func (c LedgerConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

type GrabConfig struct {
	HighBandFloor decimal.Decimal // balances at or above this pick products priced [floor, balance]
	LowBandWindow decimal.Decimal // below the floor, products priced [balance*(1-window), balance]
}

type ReferralConfig struct {
	MaxDepth              int
	MaxDownline           int
	ShareBalanceThreshold decimal.Decimal
	DefaultLevelRates     [3]decimal.Decimal
	ShareRefreshInterval  time.Duration
}

type WithdrawalConfig struct {
	RetentionRate decimal.Decimal
	MinProfit     decimal.Decimal
}

type DepositConfig struct {
	BonusRate    decimal.Decimal
	BonusMinimum decimal.Decimal
}

func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Server: ServerConfig{
			Port:           getEnv("PORT", "8099"),
			Env:            getEnv("APP_ENV", "development"),
			ReadTimeout:    getDuration("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout:   getDuration("SERVER_WRITE_TIMEOUT", 10*time.Second),
			AllowedOrigins: getList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
		},
		Database: DatabaseConfig{
			Driver:          strings.ToLower(getEnv("DB_DRIVER", "mysql")),
			DSN:             getEnv("DB_DSN", "grabwallet:grabwallet@tcp(localhost:3306)/grabwallet?charset=utf8mb4&parseTime=True&loc=UTC"),
			MaxIdleConns:    getInt("DB_MAX_IDLE_CONNS", 10),
			MaxOpenConns:    getInt("DB_MAX_OPEN_CONNS", 100),
			ConnMaxLifetime: getDuration("DB_CONN_MAX_LIFETIME", time.Hour),
		},
		Redis: RedisConfig{
			URL: os.Getenv("REDIS_URL"),
		},
		JWT: JWTConfig{
			AccessSecret:  getEnv("JWT_ACCESS_SECRET", "change-me-in-production"),
			RefreshSecret: getEnv("JWT_REFRESH_SECRET", "change-me-refresh"),
			AccessExpiry:  getDuration("JWT_ACCESS_EXPIRY", 15*time.Minute),
			RefreshExpiry: getDuration("JWT_REFRESH_EXPIRY", 168*time.Hour),
			Issuer:        getEnv("JWT_ISSUER", "grabwallet"),
		},
		Admin: AdminConfig{
			Email:    getEnv("ADMIN_EMAIL", "admin@grabwallet.local"),
			Password: getEnv("ADMIN_PASSWORD", "change-me-admin"),
		},
		Ledger: LedgerConfig{
			Timezone:             getEnv("LEDGER_TIMEZONE", "Asia/Kolkata"),
			RetryMaxAttempts:     uint64(getInt("LEDGER_RETRY_ATTEMPTS", 5)),
			RetryInitialInterval: getDuration("LEDGER_RETRY_INITIAL", 20*time.Millisecond),
			RetryMaxInterval:     getDuration("LEDGER_RETRY_MAX", 500*time.Millisecond),
			LockTimeout:          getDuration("LEDGER_LOCK_TIMEOUT", 5*time.Second),
			LockTTL:              getDuration("LEDGER_LOCK_TTL", 15*time.Second),
		},
		Grab: GrabConfig{
			HighBandFloor: getDecimal("GRAB_HIGH_BAND_FLOOR", "500"),
			LowBandWindow: getDecimal("GRAB_LOW_BAND_WINDOW", "0.2"),
		},
		Referral: ReferralConfig{
			MaxDepth:              getInt("REFERRAL_MAX_DEPTH", 3),
			MaxDownline:           getInt("REFERRAL_MAX_DOWNLINE", 5000),
			ShareBalanceThreshold: getDecimal("REFERRAL_SHARE_THRESHOLD", "100"),
			DefaultLevelRates: [3]decimal.Decimal{
				decimal.NewFromInt(16),
				decimal.NewFromInt(8),
				decimal.NewFromInt(4),
			},
			ShareRefreshInterval: getDuration("REFERRAL_SHARE_REFRESH", 10*time.Minute),
		},
		Withdrawal: WithdrawalConfig{
			RetentionRate: getDecimal("WITHDRAWAL_RETENTION_RATE", "0.93"),
			MinProfit:     getDecimal("WITHDRAWAL_MIN_PROFIT", "50"),
		},
		Deposit: DepositConfig{
			BonusRate:    getDecimal("DEPOSIT_BONUS_RATE", "0.05"),
			BonusMinimum: getDecimal("DEPOSIT_BONUS_MINIMUM", "100"),
		},
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getList(key string, fallback []string) []string {
	var out []string
	for _, v := range strings.Split(os.Getenv(key), ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}

func getInt(key string, fallback int) int {
	n, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return n
}

func getDuration(key string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return d
}

func getDecimal(key, fallback string) decimal.Decimal {
	if d, err := decimal.NewFromString(os.Getenv(key)); err == nil {
		return d
	}
	return decimal.RequireFromString(fallback)
}
