package wallet

import domain "sabzi/internal/errors"

// Service errors, re-exported from the shared domain taxonomy so callers can
// match with errors.Is without importing internal/errors directly.
var (
	ErrWalletNotFound               = domain.ErrWalletNotFound
	ErrUnauthorized                 = domain.ErrUnauthorized
	ErrWalletInactive               = domain.ErrWalletInactive
	ErrInvalidAmount                = domain.ErrInvalidAmount
	ErrAmountExceedsCeiling         = domain.ErrAmountExceedsCeiling
	ErrInsufficientAvailableBalance = domain.ErrInsufficientAvailableBalance
	ErrInsufficientLockedBalance    = domain.ErrInsufficientLockedBalance
	ErrDailyDepositLimitExceeded    = domain.ErrDailyDepositLimitExceeded
	ErrDailyWithdrawalLimitExceeded = domain.ErrDailyWithdrawalLimitExceeded
	ErrConcurrencyConflict          = domain.ErrConcurrencyConflict
	ErrPersistence                  = domain.ErrPersistence
)
