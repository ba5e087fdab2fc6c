package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"sabzi/internal/models"

	"gorm.io/gorm"
)

type walletRepository struct {
	db *gorm.DB
}

func NewWalletRepository(db *gorm.DB) WalletRepository {
	return &walletRepository{
		db: db,
	}
}

func (r *walletRepository) Create(wallet *models.Wallet) error {
	result := r.db.Create(wallet)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return ErrDuplicateWallet
		}
		return fmt.Errorf("failed to create wallet: %w", result.Error)
	}
	return nil
}

func (r *walletRepository) GetByID(id string) (*models.Wallet, error) {
	var wallet models.Wallet
	if err := r.db.Where("id = ?", id).First(&wallet).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWalletNotFound
		}
		return nil, fmt.Errorf("failed to get wallet: %w", err)
	}
	return &wallet, nil
}

func (r *walletRepository) GetByOwnerID(ownerID uint) (*models.Wallet, error) {
	var wallet models.Wallet
	if err := r.db.Where("owner_id = ?", ownerID).First(&wallet).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWalletNotFound
		}
		return nil, fmt.Errorf("failed to get wallet: %w", err)
	}
	return &wallet, nil
}

func (r *walletRepository) ListByOwnerID(ownerID uint) ([]*models.Wallet, error) {
	var wallets []*models.Wallet
	if err := r.db.Where("owner_id = ?", ownerID).Order("created_at ASC").Find(&wallets).Error; err != nil {
		return nil, fmt.Errorf("failed to list wallets: %w", err)
	}
	return wallets, nil
}

// UpdateVersioned issues the single compare-and-swap write every committed
// mutation goes through. The WHERE clause pins the record to the owner, the
// active flag and the token observed at read time; the optional MinAvailable
// guard re-checks available balance against the row as it stands at write
// time. RowsAffected == 0 means the caller lost the race.
func (r *walletRepository) UpdateVersioned(wallet *models.Wallet, guard UpdateGuard) error {
	q := r.db.Model(&models.Wallet{}).
		Where("id = ? AND owner_id = ? AND is_active = ? AND concurrency_token = ?",
			wallet.ID, wallet.OwnerID, true, guard.ExpectedToken)
	if guard.MinAvailable != nil {
		q = q.Where("balance - locked_balance >= ?", *guard.MinAvailable)
	}

	result := q.Updates(map[string]interface{}{
		"balance":                       wallet.Balance,
		"locked_balance":                wallet.LockedBalance,
		"daily_max_deposit":             wallet.DailyLimits.MaxDeposit,
		"daily_max_withdrawal":          wallet.DailyLimits.MaxWithdrawal,
		"daily_deposit_count":           wallet.DailyLimits.DepositCount,
		"daily_withdrawal_count":        wallet.DailyLimits.WithdrawalCount,
		"daily_total_deposits":          wallet.DailyLimits.TotalDeposits,
		"daily_total_withdrawals":       wallet.DailyLimits.TotalWithdrawals,
		"daily_last_reset_date":         wallet.DailyLimits.LastResetDate,
		"stats_total_transactions":      wallet.Stats.TotalTransactions,
		"stats_successful_transactions": wallet.Stats.SuccessfulTransactions,
		"stats_failed_transactions":     wallet.Stats.FailedTransactions,
		"stats_last_activity_date":      wallet.Stats.LastActivityDate,
		"concurrency_token":             wallet.ConcurrencyToken,
		"updated_at":                    time.Now().UTC(),
	})
	if result.Error != nil {
		return fmt.Errorf("failed to update wallet: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrVersionConflict
	}
	return nil
}

func (r *walletRepository) RecordFailedAttempt(ctx context.Context, walletID string) error {
	result := r.db.WithContext(ctx).Model(&models.Wallet{}).
		Where("id = ?", walletID).
		Updates(map[string]interface{}{
			"stats_total_transactions":  gorm.Expr("stats_total_transactions + 1"),
			"stats_failed_transactions": gorm.Expr("stats_failed_transactions + 1"),
			"stats_last_activity_date":  time.Now().UTC(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to record attempt: %w", result.Error)
	}
	return nil
}

func (r *walletRepository) CreateTransaction(tx *models.WalletTransaction) error {
	if err := r.db.Create(tx).Error; err != nil {
		return fmt.Errorf("failed to create wallet transaction: %w", err)
	}
	return nil
}

func (r *walletRepository) GetTransactionHistory(ctx context.Context, walletID string, limit, offset int) ([]models.WalletTransaction, error) {
	var history []models.WalletTransaction
	err := r.db.WithContext(ctx).
		Where("wallet_id = ?", walletID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&history).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction history: %w", err)
	}
	return history, nil
}

func (r *walletRepository) ExecuteInTransaction(fn func(WalletRepository) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		txRepo := &walletRepository{db: tx}
		return fn(txRepo)
	})
}
