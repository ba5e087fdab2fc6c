package wallet

import (
	"time"

	"sabzi/internal/models"
)

// The daily limit tracker is a pure derivation over the counters embedded in
// the wallet record. The day boundary is UTC midnight: counters belong to the
// UTC calendar day stamped in LastResetDate and are zeroed the first time a
// mutation attempt observes a different UTC day. The reset is applied to the
// in-memory record before any limit check and persisted by that mutation's
// conditional write, so it commits exactly once per wallet per day.

func sameUTCDay(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	return ay == by && am == bm && ad == bd
}

// needsReset reports whether the counters belong to an earlier UTC day.
func needsReset(dl *models.DailyLimits, now time.Time) bool {
	return !sameUTCDay(dl.LastResetDate, now)
}

// resetDailyLimits zeroes counts and sums and advances LastResetDate.
// The configured maxima are untouched.
func resetDailyLimits(dl *models.DailyLimits, now time.Time) {
	dl.DepositCount = 0
	dl.WithdrawalCount = 0
	dl.TotalDeposits = 0
	dl.TotalWithdrawals = 0
	dl.LastResetDate = now.UTC()
}

// checkDepositLimit validates a deposit of amount against today's counters.
// Callers must apply resetDailyLimits first when needsReset reports true.
func checkDepositLimit(dl *models.DailyLimits, amount int64, maxOps int) error {
	if maxOps > 0 && dl.DepositCount >= maxOps {
		return ErrDailyDepositLimitExceeded
	}
	if dl.MaxDeposit > 0 && dl.TotalDeposits+amount > dl.MaxDeposit {
		return ErrDailyDepositLimitExceeded
	}
	return nil
}

// checkWithdrawalLimit mirrors checkDepositLimit for withdrawals.
func checkWithdrawalLimit(dl *models.DailyLimits, amount int64, maxOps int) error {
	if maxOps > 0 && dl.WithdrawalCount >= maxOps {
		return ErrDailyWithdrawalLimitExceeded
	}
	if dl.MaxWithdrawal > 0 && dl.TotalWithdrawals+amount > dl.MaxWithdrawal {
		return ErrDailyWithdrawalLimitExceeded
	}
	return nil
}
