package service

import "grabwallet/internal/domain"

var (
	ErrUserNotFound       = domain.NotFound("user not found")
	ErrSponsorNotFound    = domain.Validation("sponsor not found")
	ErrSponsorCycle       = domain.Validation("sponsor would create a referral cycle")
	ErrEmailExists        = domain.Conflict("email already registered")
	ErrUsernameExists     = domain.Conflict("username already taken")
	ErrInvalidCreds       = domain.Unauthorized("invalid email or password")
	ErrInvalidToken       = domain.Unauthorized("invalid or expired token")
	ErrUserIDExhausted    = domain.Internal("could not allocate a user id", nil)
	ErrNoEligiblePlan     = domain.Validation("no active plan for current balance and share count")
	ErrInvalidAmount      = domain.Validation("amount must be greater than zero")
	ErrAddressRequired    = domain.Validation("withdrawal address is required")
	ErrAddressTooLong     = domain.Validation("withdrawal address is longer than 255 characters")
	ErrBelowMinimumProfit = domain.Validation("total profit is below the withdrawal minimum")
	ErrInsufficientProfit = domain.Validation("insufficient profit balance")
	ErrWithdrawalNotFound = domain.NotFound("withdrawal request not found")
	ErrInvalidStatus      = domain.Validation("invalid withdrawal status")
	ErrInvalidTransition  = domain.Conflict("withdrawal is no longer pending")
	ErrInvalidDateRange   = domain.Validation("end date is before start date")
	ErrPlanNotFound       = domain.NotFound("plan not found")
	ErrProductNotFound    = domain.NotFound("product not found")
	ErrInvalidPlan        = domain.Validation("plan needs commission >= 0, price >= 0, grab_no >= 1 and share_limit >= 0")
	ErrInvalidProduct     = domain.Validation("product needs a name and a price above zero")
	ErrInvalidLevelRates  = domain.Validation("level rates must be between 0 and 100")
)
