package wallet

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	domain "sabzi/internal/errors"
	"sabzi/internal/models"
	"sabzi/internal/repositories"
)

// Service defines the wallet core: the balance mutation operations plus the
// wallet directory.
type Service interface {
	// Directory operations
	CreateWallet(ctx context.Context, ownerID uint) (*WalletView, error)
	GetWallet(ctx context.Context, walletID string, ownerID uint) (*WalletView, error)
	ListWallets(ctx context.Context, ownerID uint) (*ListResult, error)
	TransactionHistory(ctx context.Context, walletID string, ownerID uint, limit, offset int) ([]models.WalletTransaction, error)

	// Balance mutations. All follow read -> validate -> conditional write;
	// a stale token surfaces ErrConcurrencyConflict and retrying is the
	// caller's responsibility.
	Deposit(ctx context.Context, walletID string, ownerID uint, amount int64, description string) (*WalletView, error)
	Withdraw(ctx context.Context, walletID string, ownerID uint, amount int64, description string) (*WalletView, error)
	Lock(ctx context.Context, walletID string, ownerID uint, amount int64) (*WalletView, error)
	Unlock(ctx context.Context, walletID string, ownerID uint, amount int64) (*WalletView, error)
}

type service struct {
	repo    repositories.WalletRepository
	cache   Cache
	config  Config
	metrics MetricsCollector
	now     func() time.Time
}

// NewService creates a new wallet service. cache may be nil to disable the
// read-side cache; metrics may be nil for a no-op collector.
func NewService(repo repositories.WalletRepository, cache Cache, config Config, metrics MetricsCollector) Service {
	if repo == nil {
		panic("repo is required")
	}

	if config.MaxTransactionAmount == 0 {
		config.MaxTransactionAmount = DefaultMaxTransactionAmount
	}
	if config.MinTransactionAmount == 0 {
		config.MinTransactionAmount = DefaultMinTransactionAmount
	}
	if config.DefaultMaxDeposit == 0 {
		config.DefaultMaxDeposit = DefaultMaxDailyDeposit
	}
	if config.DefaultMaxWithdrawal == 0 {
		config.DefaultMaxWithdrawal = DefaultMaxDailyWithdrawal
	}
	if config.MaxDailyOperations == 0 {
		config.MaxDailyOperations = DefaultMaxDailyOperations
	}
	if metrics == nil {
		metrics = &NoopMetricsCollector{}
	}

	return &service{
		repo:    repo,
		cache:   cache,
		config:  config,
		metrics: metrics,
		now:     time.Now,
	}
}

func (s *service) Deposit(ctx context.Context, walletID string, ownerID uint, amount int64, description string) (*WalletView, error) {
	started := s.now()
	defer func() { s.metrics.RecordOperationDuration("deposit", s.now().Sub(started)) }()

	if err := s.validateAmount(amount); err != nil {
		s.metrics.RecordError("deposit", errCode(err))
		return nil, err
	}

	w, err := s.loadForMutation(walletID, ownerID)
	if err != nil {
		s.metrics.RecordError("deposit", errCode(err))
		return nil, err
	}

	token := w.ConcurrencyToken
	now := s.now()
	if needsReset(&w.DailyLimits, now) {
		resetDailyLimits(&w.DailyLimits, now)
	}

	if err := checkDepositLimit(&w.DailyLimits, amount, s.config.MaxDailyOperations); err != nil {
		s.recordRejection(ctx, w.ID, "deposit", err)
		return nil, err
	}

	w.Balance += amount
	w.DailyLimits.DepositCount++
	w.DailyLimits.TotalDeposits += amount
	s.applyStats(w, now)
	w.ConcurrencyToken = token + 1

	if err := s.commit(ctx, w, repositories.UpdateGuard{ExpectedToken: token},
		models.WalletTxDeposit, amount, description); err != nil {
		s.metrics.RecordError("deposit", errCode(err))
		return nil, err
	}

	s.metrics.RecordTransaction(models.WalletTxDeposit, amount)
	s.metrics.RecordOperationResult("deposit", "committed")
	return NewWalletView(w), nil
}

func (s *service) Withdraw(ctx context.Context, walletID string, ownerID uint, amount int64, description string) (*WalletView, error) {
	started := s.now()
	defer func() { s.metrics.RecordOperationDuration("withdraw", s.now().Sub(started)) }()

	if err := s.validateAmount(amount); err != nil {
		s.metrics.RecordError("withdraw", errCode(err))
		return nil, err
	}

	w, err := s.loadForMutation(walletID, ownerID)
	if err != nil {
		s.metrics.RecordError("withdraw", errCode(err))
		return nil, err
	}

	token := w.ConcurrencyToken
	now := s.now()
	if needsReset(&w.DailyLimits, now) {
		resetDailyLimits(&w.DailyLimits, now)
	}

	if err := checkWithdrawalLimit(&w.DailyLimits, amount, s.config.MaxDailyOperations); err != nil {
		s.recordRejection(ctx, w.ID, "withdraw", err)
		return nil, err
	}
	if w.AvailableBalance() < amount {
		s.recordRejection(ctx, w.ID, "withdraw", ErrInsufficientAvailableBalance)
		return nil, ErrInsufficientAvailableBalance
	}

	w.Balance -= amount
	w.DailyLimits.WithdrawalCount++
	w.DailyLimits.TotalWithdrawals += amount
	s.applyStats(w, now)
	w.ConcurrencyToken = token + 1

	// The write re-checks available balance against the committed row, so a
	// concurrent lock or withdrawal that already consumed the funds fails
	// the write instead of permitting an overdraft.
	guard := repositories.UpdateGuard{ExpectedToken: token, MinAvailable: &amount}
	if err := s.commit(ctx, w, guard, models.WalletTxWithdraw, amount, description); err != nil {
		s.metrics.RecordError("withdraw", errCode(err))
		return nil, err
	}

	s.metrics.RecordTransaction(models.WalletTxWithdraw, amount)
	s.metrics.RecordOperationResult("withdraw", "committed")
	return NewWalletView(w), nil
}

// Lock moves funds from available to locked without changing balance,
// reserving them for a pending external transaction.
func (s *service) Lock(ctx context.Context, walletID string, ownerID uint, amount int64) (*WalletView, error) {
	started := s.now()
	defer func() { s.metrics.RecordOperationDuration("lock", s.now().Sub(started)) }()

	if amount <= 0 {
		s.metrics.RecordError("lock", errCode(ErrInvalidAmount))
		return nil, ErrInvalidAmount
	}

	w, err := s.loadForMutation(walletID, ownerID)
	if err != nil {
		s.metrics.RecordError("lock", errCode(err))
		return nil, err
	}

	token := w.ConcurrencyToken
	now := s.now()
	if needsReset(&w.DailyLimits, now) {
		resetDailyLimits(&w.DailyLimits, now)
	}

	if w.AvailableBalance() < amount {
		s.recordRejection(ctx, w.ID, "lock", ErrInsufficientAvailableBalance)
		return nil, ErrInsufficientAvailableBalance
	}

	w.LockedBalance += amount
	s.applyStats(w, now)
	w.ConcurrencyToken = token + 1

	guard := repositories.UpdateGuard{ExpectedToken: token, MinAvailable: &amount}
	if err := s.commit(ctx, w, guard, models.WalletTxLock, amount, ""); err != nil {
		s.metrics.RecordError("lock", errCode(err))
		return nil, err
	}

	s.metrics.RecordTransaction(models.WalletTxLock, amount)
	s.metrics.RecordOperationResult("lock", "committed")
	return NewWalletView(w), nil
}

// Unlock releases previously locked funds back to the available balance.
func (s *service) Unlock(ctx context.Context, walletID string, ownerID uint, amount int64) (*WalletView, error) {
	started := s.now()
	defer func() { s.metrics.RecordOperationDuration("unlock", s.now().Sub(started)) }()

	if amount <= 0 {
		s.metrics.RecordError("unlock", errCode(ErrInvalidAmount))
		return nil, ErrInvalidAmount
	}

	w, err := s.loadForMutation(walletID, ownerID)
	if err != nil {
		s.metrics.RecordError("unlock", errCode(err))
		return nil, err
	}

	token := w.ConcurrencyToken
	now := s.now()
	if needsReset(&w.DailyLimits, now) {
		resetDailyLimits(&w.DailyLimits, now)
	}

	if w.LockedBalance < amount {
		s.recordRejection(ctx, w.ID, "unlock", ErrInsufficientLockedBalance)
		return nil, ErrInsufficientLockedBalance
	}

	w.LockedBalance -= amount
	s.applyStats(w, now)
	w.ConcurrencyToken = token + 1

	if err := s.commit(ctx, w, repositories.UpdateGuard{ExpectedToken: token},
		models.WalletTxUnlock, amount, ""); err != nil {
		s.metrics.RecordError("unlock", errCode(err))
		return nil, err
	}

	s.metrics.RecordTransaction(models.WalletTxUnlock, amount)
	s.metrics.RecordOperationResult("unlock", "committed")
	return NewWalletView(w), nil
}

// Helper methods

func (s *service) validateAmount(amount int64) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	if amount > s.config.MaxTransactionAmount {
		return ErrAmountExceedsCeiling
	}
	return nil
}

// loadForMutation fetches the record and checks the preconditions shared by
// all four mutations: existence, ownership, active flag. The cache is never
// consulted here; mutations always read the store for a fresh token.
func (s *service) loadForMutation(walletID string, ownerID uint) (*models.Wallet, error) {
	w, err := s.repo.GetByID(walletID)
	if err != nil {
		if errors.Is(err, repositories.ErrWalletNotFound) {
			return nil, ErrWalletNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if w.OwnerID != ownerID {
		return nil, ErrUnauthorized
	}
	if !w.IsActive {
		return nil, ErrWalletInactive
	}
	return w, nil
}

func (s *service) applyStats(w *models.Wallet, now time.Time) {
	w.Stats.TotalTransactions++
	w.Stats.SuccessfulTransactions++
	w.Stats.LastActivityDate = now.UTC()
}

// commit performs the conditional write and the history append in one store
// transaction. The transactional scope only makes partial failure clean; each
// mutation still touches exactly one wallet row.
func (s *service) commit(ctx context.Context, w *models.Wallet, guard repositories.UpdateGuard, txType string, amount int64, description string) error {
	err := s.repo.ExecuteInTransaction(func(tx repositories.WalletRepository) error {
		if err := tx.UpdateVersioned(w, guard); err != nil {
			return err
		}
		return tx.CreateTransaction(&models.WalletTransaction{
			WalletID:     w.ID,
			OwnerID:      w.OwnerID,
			Type:         txType,
			Amount:       amount,
			BalanceAfter: w.Balance,
			LockedAfter:  w.LockedBalance,
			Description:  description,
		})
	})
	if err != nil {
		if errors.Is(err, repositories.ErrVersionConflict) {
			return ErrConcurrencyConflict
		}
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	s.invalidate(ctx, w.ID)
	return nil
}

// recordRejection counts a business rejection in the wallet's stats without
// touching balances, daily counters or the concurrency token. Best effort.
func (s *service) recordRejection(ctx context.Context, walletID, operation string, cause error) {
	s.metrics.RecordError(operation, errCode(cause))
	s.metrics.RecordOperationResult(operation, "rejected")
	if err := s.repo.RecordFailedAttempt(ctx, walletID); err != nil {
		log.Printf("failed to record rejected %s for wallet %s: %v", operation, walletID, err)
	}
}

func (s *service) invalidate(ctx context.Context, walletID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateWallet(ctx, walletID); err != nil {
		log.Printf("failed to invalidate wallet cache for %s: %v", walletID, err)
	}
}

func errCode(err error) string {
	if code := domain.CodeOf(err); code != "" {
		return code
	}
	return err.Error()
}
