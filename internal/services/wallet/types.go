package wallet

import (
	"context"
	"time"

	"sabzi/internal/models"
)

// Config holds configuration for wallet operations.
type Config struct {
	// MaxTransactionAmount is the per-transaction ceiling applied to
	// deposit and withdraw amounts.
	MaxTransactionAmount int64
	// MinTransactionAmount is the floor enforced at the transport boundary
	// for deposit and withdraw requests.
	MinTransactionAmount int64
	// Default daily ceilings stamped onto newly created wallets.
	DefaultMaxDeposit    int64
	DefaultMaxWithdrawal int64
	// MaxDailyOperations caps how many deposits (and, separately,
	// withdrawals) a wallet may perform per UTC day.
	MaxDailyOperations int
}

// WalletView is the owner-facing shape of a wallet record.
// AvailableBalance is derived, never stored.
type WalletView struct {
	ID               string             `json:"id"`
	OwnerID          uint               `json:"owner_id"`
	Balance          int64              `json:"balance"`
	LockedBalance    int64              `json:"locked_balance"`
	AvailableBalance int64              `json:"available_balance"`
	IsActive         bool               `json:"is_active"`
	Verified         bool               `json:"verified"`
	DailyLimits      models.DailyLimits `json:"daily_limits"`
	Stats            models.WalletStats `json:"stats"`
	CreatedAt        time.Time          `json:"created_at"`
	UpdatedAt        time.Time          `json:"updated_at"`
}

// NewWalletView builds the external view of a wallet record.
func NewWalletView(w *models.Wallet) *WalletView {
	return &WalletView{
		ID:               w.ID,
		OwnerID:          w.OwnerID,
		Balance:          w.Balance,
		LockedBalance:    w.LockedBalance,
		AvailableBalance: w.AvailableBalance(),
		IsActive:         w.IsActive,
		Verified:         w.Verified,
		DailyLimits:      w.DailyLimits,
		Stats:            w.Stats,
		CreatedAt:        w.CreatedAt,
		UpdatedAt:        w.UpdatedAt,
	}
}

// ListResult aggregates all wallets owned by one caller.
type ListResult struct {
	Wallets               []*WalletView `json:"wallets"`
	TotalWallets          int           `json:"total_wallets"`
	TotalBalance          int64         `json:"total_balance"`
	TotalAvailableBalance int64         `json:"total_available_balance"`
}

// Cache is the read-side wallet cache the service invalidates on every
// committed mutation. A nil Cache disables caching.
type Cache interface {
	GetWallet(ctx context.Context, walletID string) (*models.Wallet, error)
	CacheWallet(ctx context.Context, wallet *models.Wallet) error
	InvalidateWallet(ctx context.Context, walletID string) error
}
