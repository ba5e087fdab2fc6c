package errors

var (
	ErrWalletNotFound = &DomainError{
		Code:    "WALLET_NOT_FOUND",
		Message: "wallet not found",
	}
	ErrUnauthorized = &DomainError{
		Code:    "UNAUTHORIZED",
		Message: "wallet does not belong to caller",
	}
	ErrWalletInactive = &DomainError{
		Code:    "WALLET_INACTIVE",
		Message: "wallet is not active",
	}
	ErrInvalidAmount = &DomainError{
		Code:    "INVALID_AMOUNT",
		Message: "amount must be a positive integer",
	}
	ErrAmountExceedsCeiling = &DomainError{
		Code:    "AMOUNT_EXCEEDS_CEILING",
		Message: "amount exceeds the per-transaction ceiling",
	}
	ErrInsufficientAvailableBalance = &DomainError{
		Code:    "INSUFFICIENT_AVAILABLE_BALANCE",
		Message: "insufficient available balance",
	}
	ErrInsufficientLockedBalance = &DomainError{
		Code:    "INSUFFICIENT_LOCKED_BALANCE",
		Message: "insufficient locked balance",
	}
	ErrDailyDepositLimitExceeded = &DomainError{
		Code:    "DAILY_DEPOSIT_LIMIT_EXCEEDED",
		Message: "daily deposit limit exceeded",
	}
	ErrDailyWithdrawalLimitExceeded = &DomainError{
		Code:    "DAILY_WITHDRAWAL_LIMIT_EXCEEDED",
		Message: "daily withdrawal limit exceeded",
	}
	ErrConcurrencyConflict = &DomainError{
		Code:    "CONCURRENCY_CONFLICT",
		Message: "wallet was modified concurrently, retry with fresh data",
	}
	ErrPersistence = &DomainError{
		Code:    "PERSISTENCE_ERROR",
		Message: "unexpected storage failure",
	}
)
