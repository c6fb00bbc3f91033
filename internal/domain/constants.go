package domain

const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

// Ledger transaction types. Values are persisted and shown to users as-is.
const (
	TxOpeningAmount        = "Opening Amount"
	TxDeposit              = "Deposit"
	TxWithdrawal           = "Withdrawal"
	TxRejectWithdrawal     = "Reject Withdrawal"
	TxDirectGrabCommission = "Direct Grab Commission"
	TxLevelCommission      = "Level Commission"
	TxBonus                = "Bonus"
	TxLevel1Bonus          = "Level 1 Bonus"
	TxCreditAmount         = "Credit Amount"
	TxReversal             = "Reversal"
)

const (
	WithdrawalPending          = "Pending"
	WithdrawalApproved         = "Approved"
	WithdrawalRejected         = "Rejected"
	WithdrawalCancelledByAdmin = "Cancelled by Admin"
)

// Grab day states.
const (
	GrabIdle      = "IDLE"
	GrabActive    = "ACTIVE"
	GrabExhausted = "EXHAUSTED"
)

// Grab outcomes returned to callers.
const (
	GrabStatusGrabbed      = "GRABBED"
	GrabStatusLimitReached = "LIMIT_REACHED"
	GrabStatusNoProduct    = "NO_PRODUCT"
)

// Admin-tunable system settings.
const (
	SettingWithdrawalRetentionRate = "withdrawal_retention_rate"
	SettingWithdrawalMinProfit     = "withdrawal_min_profit"
	SettingDepositBonusRate        = "deposit_bonus_rate"
	SettingDepositBonusMinimum     = "deposit_bonus_minimum"
)

// IsSettingKey reports whether key is one of the admin-tunable settings.
func IsSettingKey(key string) bool {
	switch key {
	case SettingWithdrawalRetentionRate, SettingWithdrawalMinProfit,
		SettingDepositBonusRate, SettingDepositBonusMinimum:
		return true
	}
	return false
}

// UserIDLength is the length of generated user ids.
const UserIDLength = 5
