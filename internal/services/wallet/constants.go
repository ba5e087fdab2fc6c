package wallet

// Default configuration values. Amounts are whole Toman.
const (
	DefaultMaxTransactionAmount = 50_000_000
	DefaultMinTransactionAmount = 1_000
	DefaultMaxDailyDeposit      = 100_000_000
	DefaultMaxDailyWithdrawal   = 50_000_000
	DefaultMaxDailyOperations   = 50
)
