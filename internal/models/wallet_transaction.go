package models

import "time"

// Wallet transaction types
const (
	WalletTxDeposit  = "deposit"
	WalletTxWithdraw = "withdraw"
	WalletTxLock     = "lock"
	WalletTxUnlock   = "unlock"
)

// WalletTransaction is the append-only history row written alongside every
// committed balance mutation. It survives wallet retirement (is_active = false)
// so the ledger history is never destroyed.
type WalletTransaction struct {
	ID           uint      `gorm:"primarykey" json:"id"`
	WalletID     string    `gorm:"type:uuid;index;not null" json:"wallet_id"`
	OwnerID      uint      `gorm:"index;not null" json:"owner_id"`
	Type         string    `gorm:"not null" json:"type"`
	Amount       int64     `gorm:"not null" json:"amount"`
	BalanceAfter int64     `gorm:"not null" json:"balance_after"`
	LockedAfter  int64     `gorm:"not null" json:"locked_after"`
	Description  string    `json:"description"`
	CreatedAt    time.Time `json:"created_at"`
}
