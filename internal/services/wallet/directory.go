package wallet

import (
	"context"
	"errors"
	"fmt"
	"log"

	"sabzi/internal/models"
	"sabzi/internal/repositories"
)

// CreateWallet provisions a wallet for the owner, or returns the existing one
// unchanged. One wallet per owner is enforced by a unique index on owner_id,
// so two racing creates converge on the same record.
func (s *service) CreateWallet(ctx context.Context, ownerID uint) (*WalletView, error) {
	if existing, err := s.repo.GetByOwnerID(ownerID); err == nil {
		return NewWalletView(existing), nil
	} else if !errors.Is(err, repositories.ErrWalletNotFound) {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	now := s.now().UTC()
	w := &models.Wallet{
		OwnerID:  ownerID,
		IsActive: true,
		DailyLimits: models.DailyLimits{
			MaxDeposit:    s.config.DefaultMaxDeposit,
			MaxWithdrawal: s.config.DefaultMaxWithdrawal,
			LastResetDate: now,
		},
		Stats: models.WalletStats{
			LastActivityDate: now,
		},
	}

	if err := s.repo.Create(w); err != nil {
		if errors.Is(err, repositories.ErrDuplicateWallet) {
			// Lost a creation race; the winner's record is the wallet.
			existing, err := s.repo.GetByOwnerID(ownerID)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
			}
			return NewWalletView(existing), nil
		}
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	s.cacheWallet(ctx, w)
	return NewWalletView(w), nil
}

// GetWallet returns the wallet scoped to the owner. A record owned by a
// different caller is reported as not found rather than forbidden.
func (s *service) GetWallet(ctx context.Context, walletID string, ownerID uint) (*WalletView, error) {
	if s.cache != nil {
		if cached, err := s.cache.GetWallet(ctx, walletID); err == nil && cached != nil {
			if cached.OwnerID != ownerID {
				return nil, ErrWalletNotFound
			}
			return NewWalletView(cached), nil
		}
	}

	w, err := s.repo.GetByID(walletID)
	if err != nil {
		if errors.Is(err, repositories.ErrWalletNotFound) {
			return nil, ErrWalletNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if w.OwnerID != ownerID {
		return nil, ErrWalletNotFound
	}

	s.cacheWallet(ctx, w)
	return NewWalletView(w), nil
}

// ListWallets returns all wallets owned by the caller with balance aggregates.
func (s *service) ListWallets(ctx context.Context, ownerID uint) (*ListResult, error) {
	wallets, err := s.repo.ListByOwnerID(ownerID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	result := &ListResult{
		Wallets:      make([]*WalletView, 0, len(wallets)),
		TotalWallets: len(wallets),
	}
	for _, w := range wallets {
		result.Wallets = append(result.Wallets, NewWalletView(w))
		result.TotalBalance += w.Balance
		result.TotalAvailableBalance += w.AvailableBalance()
	}
	return result, nil
}

// TransactionHistory returns the wallet's mutation history, newest first.
// History remains readable after the wallet is retired (is_active = false).
func (s *service) TransactionHistory(ctx context.Context, walletID string, ownerID uint, limit, offset int) ([]models.WalletTransaction, error) {
	w, err := s.repo.GetByID(walletID)
	if err != nil {
		if errors.Is(err, repositories.ErrWalletNotFound) {
			return nil, ErrWalletNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if w.OwnerID != ownerID {
		return nil, ErrWalletNotFound
	}

	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	history, err := s.repo.GetTransactionHistory(ctx, walletID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return history, nil
}

func (s *service) cacheWallet(ctx context.Context, w *models.Wallet) {
	if s.cache == nil {
		return
	}
	if err := s.cache.CacheWallet(ctx, w); err != nil {
		log.Printf("failed to cache wallet %s: %v", w.ID, err)
	}
}
