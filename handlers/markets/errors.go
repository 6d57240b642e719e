package markets

import "errors"

// Ledger errors. Validation errors reject the call before any state change;
// state errors require the caller to re-check market state; payment errors
// are resolved by resubmitting with enough value. Every failure aborts the
// whole call — there is no partial apply.
var (
	ErrInvalidDeadline       = errors.New("deadline outside the allowed window")
	ErrInvalidLiquidityParam = errors.New("liquidity parameter below minimum")
	ErrInvalidTargetValue    = errors.New("target value must be positive")
	ErrInvalidShareAmount    = errors.New("share amount must be positive")
	ErrMarketNotFound        = errors.New("market not found")
	ErrMarketAlreadyResolved = errors.New("market is already resolved")
	ErrDeadlinePassed        = errors.New("market deadline has passed")
	ErrDeadlineNotReached    = errors.New("market deadline has not been reached")
	ErrInsufficientPayment   = errors.New("payment below required cost")
	ErrInsufficientBalance   = errors.New("account balance below payment")
	ErrNothingToClaim        = errors.New("nothing to claim")
	ErrAlreadyClaimed        = errors.New("payout already claimed")
)
