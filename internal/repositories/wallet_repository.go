package repositories

import (
	"context"
	"errors"
	"sabzi/internal/models"
)

var (
	ErrWalletNotFound  = errors.New("wallet not found")
	ErrDuplicateWallet = errors.New("wallet already exists for owner")
	// ErrVersionConflict is returned when a conditional write matched zero
	// rows: the record's concurrency token moved since it was read, or the
	// write-time guard no longer held.
	ErrVersionConflict = errors.New("wallet version conflict")
)

// UpdateGuard describes the predicate a conditional write is gated on, beyond
// the record id and owner. ExpectedToken must match the token observed at read
// time. MinAvailable, when set, additionally requires
// balance - locked_balance >= *MinAvailable against the row as committed at
// write time, so a concurrent lock or withdrawal cannot permit an overdraft.
type UpdateGuard struct {
	ExpectedToken uint64
	MinAvailable  *int64
}

// WalletRepository defines the interface for wallet persistence.
type WalletRepository interface {
	Create(wallet *models.Wallet) error
	GetByID(id string) (*models.Wallet, error)
	GetByOwnerID(ownerID uint) (*models.Wallet, error)
	ListByOwnerID(ownerID uint) ([]*models.Wallet, error)

	// UpdateVersioned writes the wallet's mutable fields with a single
	// conditional UPDATE gated on id, owner, active flag and the guard.
	// Zero rows affected yields ErrVersionConflict.
	UpdateVersioned(wallet *models.Wallet, guard UpdateGuard) error

	// RecordFailedAttempt bumps the stats bookkeeping counters for a
	// rejected mutation attempt. It never touches balances, daily counters
	// or the concurrency token.
	RecordFailedAttempt(ctx context.Context, walletID string) error

	CreateTransaction(tx *models.WalletTransaction) error
	GetTransactionHistory(ctx context.Context, walletID string, limit, offset int) ([]models.WalletTransaction, error)

	ExecuteInTransaction(fn func(WalletRepository) error) error
}
