package wallet

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"sabzi/internal/models"
	"sabzi/internal/repositories"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memoryRepo is an in-memory WalletRepository with the same conditional-write
// semantics as the Postgres implementation: the update commits only if the
// stored token matches the guard, and the MinAvailable predicate is evaluated
// against the stored row.
type memoryRepo struct {
	mu      sync.Mutex
	wallets map[string]*models.Wallet
	byOwner map[uint]string
	history []models.WalletTransaction

	// onGetByID, when set, runs once after the next GetByID returns. Used
	// to interleave a competing mutation between read and write.
	onGetByID func()
	// onGetByOwnerID runs after a missed owner lookup, before the not-found
	// result is returned. Used to lose a creation race on purpose.
	onGetByOwnerID func()
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{
		wallets: make(map[string]*models.Wallet),
		byOwner: make(map[uint]string),
	}
}

func copyWallet(w *models.Wallet) *models.Wallet {
	cp := *w
	return &cp
}

func (r *memoryRepo) Create(w *models.Wallet) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byOwner[w.OwnerID]; exists {
		return repositories.ErrDuplicateWallet
	}
	if w.ID == "" {
		w.ID = uuid.New().String()
	}
	w.CreatedAt = time.Now().UTC()
	w.UpdatedAt = w.CreatedAt
	r.wallets[w.ID] = copyWallet(w)
	r.byOwner[w.OwnerID] = w.ID
	return nil
}

func (r *memoryRepo) GetByID(id string) (*models.Wallet, error) {
	r.mu.Lock()
	w, ok := r.wallets[id]
	var cp *models.Wallet
	if ok {
		cp = copyWallet(w)
	}
	hook := r.onGetByID
	r.onGetByID = nil
	r.mu.Unlock()

	if hook != nil {
		hook()
	}
	if !ok {
		return nil, repositories.ErrWalletNotFound
	}
	return cp, nil
}

func (r *memoryRepo) GetByOwnerID(ownerID uint) (*models.Wallet, error) {
	r.mu.Lock()
	id, ok := r.byOwner[ownerID]
	var cp *models.Wallet
	if ok {
		cp = copyWallet(r.wallets[id])
	}
	hook := r.onGetByOwnerID
	r.mu.Unlock()

	if !ok {
		if hook != nil {
			hook()
		}
		return nil, repositories.ErrWalletNotFound
	}
	return cp, nil
}

func (r *memoryRepo) ListByOwnerID(ownerID uint) ([]*models.Wallet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Wallet
	if id, ok := r.byOwner[ownerID]; ok {
		out = append(out, copyWallet(r.wallets[id]))
	}
	return out, nil
}

func (r *memoryRepo) UpdateVersioned(w *models.Wallet, guard repositories.UpdateGuard) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.wallets[w.ID]
	if !ok || cur.OwnerID != w.OwnerID || !cur.IsActive {
		return repositories.ErrVersionConflict
	}
	if cur.ConcurrencyToken != guard.ExpectedToken {
		return repositories.ErrVersionConflict
	}
	if guard.MinAvailable != nil && cur.Balance-cur.LockedBalance < *guard.MinAvailable {
		return repositories.ErrVersionConflict
	}
	stored := copyWallet(w)
	stored.CreatedAt = cur.CreatedAt
	stored.UpdatedAt = time.Now().UTC()
	r.wallets[w.ID] = stored
	return nil
}

func (r *memoryRepo) RecordFailedAttempt(_ context.Context, walletID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if w, ok := r.wallets[walletID]; ok {
		w.Stats.TotalTransactions++
		w.Stats.FailedTransactions++
		w.Stats.LastActivityDate = time.Now().UTC()
	}
	return nil
}

func (r *memoryRepo) CreateTransaction(tx *models.WalletTransaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	tx.ID = uint(len(r.history) + 1)
	tx.CreatedAt = time.Now().UTC()
	r.history = append(r.history, *tx)
	return nil
}

func (r *memoryRepo) GetTransactionHistory(_ context.Context, walletID string, limit, offset int) ([]models.WalletTransaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.WalletTransaction
	for i := len(r.history) - 1; i >= 0; i-- {
		if r.history[i].WalletID == walletID {
			out = append(out, r.history[i])
		}
	}
	if offset < len(out) {
		out = out[offset:]
	} else {
		out = nil
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *memoryRepo) ExecuteInTransaction(fn func(repositories.WalletRepository) error) error {
	return fn(r)
}

func (r *memoryRepo) stored(id string) *models.Wallet {
	r.mu.Lock()
	defer r.mu.Unlock()
	return copyWallet(r.wallets[id])
}

// newTestService seeds one wallet and returns the service, repo and wallet id.
func newTestService(t *testing.T, balance, locked int64) (Service, *memoryRepo, string) {
	t.Helper()
	repo := newMemoryRepo()
	svc := NewService(repo, nil, Config{}, nil)

	view, err := svc.CreateWallet(context.Background(), 1)
	require.NoError(t, err)

	repo.mu.Lock()
	w := repo.wallets[view.ID]
	w.Balance = balance
	w.LockedBalance = locked
	repo.mu.Unlock()

	return svc, repo, view.ID
}

func TestDeposit(t *testing.T) {
	ctx := context.Background()

	t.Run("successful deposit updates balance and counters", func(t *testing.T) {
		svc, repo, id := newTestService(t, 100_000, 0)

		view, err := svc.Deposit(ctx, id, 1, 50_000, "top up")
		require.NoError(t, err)
		assert.Equal(t, int64(150_000), view.Balance)
		assert.Equal(t, 1, view.DailyLimits.DepositCount)
		assert.Equal(t, int64(50_000), view.DailyLimits.TotalDeposits)

		stored := repo.stored(id)
		assert.Equal(t, int64(150_000), stored.Balance)
		assert.Equal(t, uint64(1), stored.ConcurrencyToken)
		assert.Equal(t, int64(1), stored.Stats.SuccessfulTransactions)
	})

	t.Run("records history row", func(t *testing.T) {
		svc, repo, id := newTestService(t, 0, 0)

		_, err := svc.Deposit(ctx, id, 1, 25_000, "gift")
		require.NoError(t, err)

		history, err := repo.GetTransactionHistory(ctx, id, 10, 0)
		require.NoError(t, err)
		require.Len(t, history, 1)
		assert.Equal(t, models.WalletTxDeposit, history[0].Type)
		assert.Equal(t, int64(25_000), history[0].Amount)
		assert.Equal(t, "gift", history[0].Description)
	})

	t.Run("rejects non-positive amount", func(t *testing.T) {
		svc, _, id := newTestService(t, 0, 0)

		_, err := svc.Deposit(ctx, id, 1, 0, "")
		assert.ErrorIs(t, err, ErrInvalidAmount)

		_, err = svc.Deposit(ctx, id, 1, -500, "")
		assert.ErrorIs(t, err, ErrInvalidAmount)
	})

	t.Run("rejects amount above ceiling", func(t *testing.T) {
		svc, repo, id := newTestService(t, 0, 0)

		_, err := svc.Deposit(ctx, id, 1, DefaultMaxTransactionAmount+1, "")
		assert.ErrorIs(t, err, ErrAmountExceedsCeiling)
		assert.Equal(t, int64(0), repo.stored(id).Balance)
	})

	t.Run("unknown wallet", func(t *testing.T) {
		svc, _, _ := newTestService(t, 0, 0)

		_, err := svc.Deposit(ctx, uuid.New().String(), 1, 10_000, "")
		assert.ErrorIs(t, err, ErrWalletNotFound)
	})

	t.Run("foreign owner", func(t *testing.T) {
		svc, _, id := newTestService(t, 0, 0)

		_, err := svc.Deposit(ctx, id, 2, 10_000, "")
		assert.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("inactive wallet rejects mutations", func(t *testing.T) {
		svc, repo, id := newTestService(t, 100_000, 0)
		repo.mu.Lock()
		repo.wallets[id].IsActive = false
		repo.mu.Unlock()

		_, err := svc.Deposit(ctx, id, 1, 10_000, "")
		assert.ErrorIs(t, err, ErrWalletInactive)
	})

	t.Run("daily deposit limit boundary", func(t *testing.T) {
		svc, repo, id := newTestService(t, 0, 0)
		repo.mu.Lock()
		repo.wallets[id].DailyLimits.MaxDeposit = 100_000
		repo.mu.Unlock()

		// Exactly reaching the cap succeeds.
		view, err := svc.Deposit(ctx, id, 1, 100_000, "")
		require.NoError(t, err)
		assert.Equal(t, int64(100_000), view.DailyLimits.TotalDeposits)

		// One more unit on top fails and leaves the balance unchanged.
		_, err = svc.Deposit(ctx, id, 1, 1_000, "")
		assert.ErrorIs(t, err, ErrDailyDepositLimitExceeded)

		stored := repo.stored(id)
		assert.Equal(t, int64(100_000), stored.Balance)
		assert.Equal(t, int64(100_000), stored.DailyLimits.TotalDeposits)
		assert.Equal(t, int64(1), stored.Stats.FailedTransactions)
	})
}

func TestWithdraw(t *testing.T) {
	ctx := context.Background()

	t.Run("successful withdrawal", func(t *testing.T) {
		svc, repo, id := newTestService(t, 100_000, 0)

		view, err := svc.Withdraw(ctx, id, 1, 30_000, "purchase")
		require.NoError(t, err)
		assert.Equal(t, int64(70_000), view.Balance)
		assert.Equal(t, 1, view.DailyLimits.WithdrawalCount)
		assert.Equal(t, int64(30_000), view.DailyLimits.TotalWithdrawals)
		assert.Equal(t, uint64(1), repo.stored(id).ConcurrencyToken)
	})

	t.Run("insufficient available balance", func(t *testing.T) {
		svc, repo, id := newTestService(t, 100_000, 0)

		_, err := svc.Withdraw(ctx, id, 1, 200_000, "")
		assert.ErrorIs(t, err, ErrInsufficientAvailableBalance)
		assert.Equal(t, int64(100_000), repo.stored(id).Balance)
	})

	t.Run("insufficient funds boundary", func(t *testing.T) {
		svc, repo, id := newTestService(t, 80_000, 30_000)

		// Withdrawing exactly the available balance succeeds.
		view, err := svc.Withdraw(ctx, id, 1, 50_000, "")
		require.NoError(t, err)
		assert.Equal(t, int64(30_000), view.Balance)
		assert.Equal(t, int64(0), view.AvailableBalance)

		// One more unit fails and leaves monetary fields unchanged.
		before := repo.stored(id)
		_, err = svc.Withdraw(ctx, id, 1, 1, "")
		assert.ErrorIs(t, err, ErrInsufficientAvailableBalance)

		after := repo.stored(id)
		assert.Equal(t, before.Balance, after.Balance)
		assert.Equal(t, before.LockedBalance, after.LockedBalance)
		assert.Equal(t, before.ConcurrencyToken, after.ConcurrencyToken)
		assert.Equal(t, before.DailyLimits, after.DailyLimits)
	})

	t.Run("locked funds are not withdrawable", func(t *testing.T) {
		svc, _, id := newTestService(t, 100_000, 60_000)

		_, err := svc.Withdraw(ctx, id, 1, 50_000, "")
		assert.ErrorIs(t, err, ErrInsufficientAvailableBalance)
	})

	t.Run("daily withdrawal limit", func(t *testing.T) {
		svc, repo, id := newTestService(t, 1_000_000, 0)
		repo.mu.Lock()
		repo.wallets[id].DailyLimits.MaxWithdrawal = 50_000
		repo.mu.Unlock()

		_, err := svc.Withdraw(ctx, id, 1, 60_000, "")
		assert.ErrorIs(t, err, ErrDailyWithdrawalLimitExceeded)
		assert.Equal(t, int64(1_000_000), repo.stored(id).Balance)
	})
}

func TestLockUnlock(t *testing.T) {
	ctx := context.Background()

	t.Run("lock then unlock", func(t *testing.T) {
		svc, _, id := newTestService(t, 100_000, 0)

		view, err := svc.Lock(ctx, id, 1, 50_000)
		require.NoError(t, err)
		assert.Equal(t, int64(100_000), view.Balance)
		assert.Equal(t, int64(50_000), view.LockedBalance)
		assert.Equal(t, int64(50_000), view.AvailableBalance)

		view, err = svc.Unlock(ctx, id, 1, 30_000)
		require.NoError(t, err)
		assert.Equal(t, int64(20_000), view.LockedBalance)
		assert.Equal(t, int64(80_000), view.AvailableBalance)
	})

	t.Run("lock beyond available fails", func(t *testing.T) {
		svc, repo, id := newTestService(t, 100_000, 80_000)

		_, err := svc.Lock(ctx, id, 1, 30_000)
		assert.ErrorIs(t, err, ErrInsufficientAvailableBalance)
		assert.Equal(t, int64(80_000), repo.stored(id).LockedBalance)
	})

	t.Run("unlock beyond locked fails", func(t *testing.T) {
		svc, _, id := newTestService(t, 100_000, 20_000)

		_, err := svc.Unlock(ctx, id, 1, 30_000)
		assert.ErrorIs(t, err, ErrInsufficientLockedBalance)
	})

	t.Run("locked balance never exceeds balance", func(t *testing.T) {
		svc, repo, id := newTestService(t, 50_000, 0)

		_, err := svc.Lock(ctx, id, 1, 50_000)
		require.NoError(t, err)
		_, err = svc.Lock(ctx, id, 1, 1)
		assert.ErrorIs(t, err, ErrInsufficientAvailableBalance)

		stored := repo.stored(id)
		assert.GreaterOrEqual(t, stored.LockedBalance, int64(0))
		assert.LessOrEqual(t, stored.LockedBalance, stored.Balance)
	})
}

func TestConcurrencyConflict(t *testing.T) {
	ctx := context.Background()

	t.Run("stale token surfaces conflict, retry succeeds", func(t *testing.T) {
		svc, repo, id := newTestService(t, 0, 0)

		// Interleave a competing deposit between the first deposit's read
		// and its conditional write: both observe token 0, one must lose.
		repo.mu.Lock()
		repo.onGetByID = func() {
			_, err := svc.Deposit(ctx, id, 1, 10_000, "winner")
			require.NoError(t, err)
		}
		repo.mu.Unlock()

		_, err := svc.Deposit(ctx, id, 1, 10_000, "loser")
		assert.ErrorIs(t, err, ErrConcurrencyConflict)

		// Exactly one commit so far.
		stored := repo.stored(id)
		assert.Equal(t, int64(10_000), stored.Balance)
		assert.Equal(t, uint64(1), stored.ConcurrencyToken)

		// Retrying against the fresh record commits.
		view, err := svc.Deposit(ctx, id, 1, 10_000, "retry")
		require.NoError(t, err)
		assert.Equal(t, int64(20_000), view.Balance)
		assert.Equal(t, uint64(2), repo.stored(id).ConcurrencyToken)
	})

	t.Run("conflict does not change stats", func(t *testing.T) {
		svc, repo, id := newTestService(t, 0, 0)

		repo.mu.Lock()
		repo.onGetByID = func() {
			_, err := svc.Deposit(ctx, id, 1, 5_000, "")
			require.NoError(t, err)
		}
		repo.mu.Unlock()

		_, err := svc.Deposit(ctx, id, 1, 5_000, "")
		require.ErrorIs(t, err, ErrConcurrencyConflict)

		stored := repo.stored(id)
		assert.Equal(t, int64(1), stored.Stats.TotalTransactions)
		assert.Equal(t, int64(0), stored.Stats.FailedTransactions)
	})
}

// TestConservation drives concurrent deposits and withdrawals with
// caller-side retry and checks that the final balance equals the initial
// balance plus committed deposits minus committed withdrawals.
func TestConservation(t *testing.T) {
	ctx := context.Background()

	// Lift the per-day operation cap so contention, not limits, is what the
	// test exercises.
	repo := newMemoryRepo()
	svc := NewService(repo, nil, Config{MaxDailyOperations: 10_000}, nil)
	view, err := svc.CreateWallet(ctx, 1)
	require.NoError(t, err)
	id := view.ID
	repo.mu.Lock()
	repo.wallets[id].Balance = 1_000_000
	repo.mu.Unlock()

	const workers = 8
	const opsPerWorker = 20

	var wg sync.WaitGroup
	var mu sync.Mutex
	var committedDeposits, committedWithdrawals int64

	mutate := func(deposit bool, amount int64) {
		defer wg.Done()
		for {
			var err error
			if deposit {
				_, err = svc.Deposit(ctx, id, 1, amount, "")
			} else {
				_, err = svc.Withdraw(ctx, id, 1, amount, "")
			}
			if err == nil {
				mu.Lock()
				if deposit {
					committedDeposits += amount
				} else {
					committedWithdrawals += amount
				}
				mu.Unlock()
				return
			}
			if errors.Is(err, ErrConcurrencyConflict) {
				continue
			}
			// Anything but contention is unexpected here.
			t.Errorf("mutation failed: %v", err)
			return
		}
	}

	for i := 0; i < workers; i++ {
		for j := 0; j < opsPerWorker; j++ {
			wg.Add(1)
			go mutate(i%2 == 0, 1_000)
		}
	}
	wg.Wait()

	stored := repo.stored(id)
	assert.Equal(t, 1_000_000+committedDeposits-committedWithdrawals, stored.Balance)
	assert.Equal(t, committedDeposits/1_000+committedWithdrawals/1_000,
		stored.Stats.SuccessfulTransactions)
	assert.GreaterOrEqual(t, stored.Balance, int64(0))
}
