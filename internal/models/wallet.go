package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DailyLimits tracks per-calendar-day deposit and withdrawal activity.
// Counters accumulate within the day stamped in LastResetDate and are
// zeroed once that day no longer matches the current UTC day.
type DailyLimits struct {
	MaxDeposit       int64     `gorm:"not null;default:0" json:"max_deposit"`
	MaxWithdrawal    int64     `gorm:"not null;default:0" json:"max_withdrawal"`
	DepositCount     int       `gorm:"not null;default:0" json:"deposit_count"`
	WithdrawalCount  int       `gorm:"not null;default:0" json:"withdrawal_count"`
	TotalDeposits    int64     `gorm:"not null;default:0" json:"total_deposits"`
	TotalWithdrawals int64     `gorm:"not null;default:0" json:"total_withdrawals"`
	LastResetDate    time.Time `json:"last_reset_date"`
}

// WalletStats carries bookkeeping counters updated on every attempted mutation.
type WalletStats struct {
	TotalTransactions      int64     `gorm:"not null;default:0" json:"total_transactions"`
	SuccessfulTransactions int64     `gorm:"not null;default:0" json:"successful_transactions"`
	FailedTransactions     int64     `gorm:"not null;default:0" json:"failed_transactions"`
	LastActivityDate       time.Time `json:"last_activity_date"`
}

// Wallet is the per-owner ledger record. Monetary values are whole Toman.
// ConcurrencyToken implements optimistic locking: every committed balance
// mutation increments it by exactly one, and writes are gated on the token
// still matching the value observed at read time.
type Wallet struct {
	ID               string      `gorm:"type:uuid;primaryKey" json:"id"`
	OwnerID          uint        `gorm:"uniqueIndex;not null" json:"owner_id"`
	Balance          int64       `gorm:"not null;default:0;check:balance >= 0" json:"balance"`
	LockedBalance    int64       `gorm:"not null;default:0;check:locked_balance >= 0 AND locked_balance <= balance" json:"locked_balance"`
	IsActive         bool        `gorm:"not null;default:true" json:"is_active"`
	Verified         bool        `gorm:"not null;default:false" json:"verified"`
	DailyLimits      DailyLimits `gorm:"embedded;embeddedPrefix:daily_" json:"daily_limits"`
	Stats            WalletStats `gorm:"embedded;embeddedPrefix:stats_" json:"stats"`
	ConcurrencyToken uint64      `gorm:"not null;default:0" json:"concurrency_token"`
	CreatedAt        time.Time   `json:"created_at"`
	UpdatedAt        time.Time   `json:"updated_at"`
}

func (w *Wallet) BeforeCreate(tx *gorm.DB) error {
	if w.ID == "" {
		w.ID = uuid.New().String()
	}
	return nil
}

// AvailableBalance is the portion the owner may withdraw or newly lock.
// Derived, never stored.
func (w *Wallet) AvailableBalance() int64 {
	return w.Balance - w.LockedBalance
}
