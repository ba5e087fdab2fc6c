/*
Package wallet implements the balance-mutation core of the storefront backend.

The service exposes four mutations - Deposit, Withdraw, Lock, Unlock - plus the
wallet directory operations CreateWallet, GetWallet and ListWallets. All four
mutations share one protocol: read the current record and its concurrency
token, validate invariants and daily limits, then issue a single conditional
write that only commits if the token is still the one observed at read time.
A write that matches zero rows surfaces ErrConcurrencyConflict; the service
never retries internally, so the caller decides whether re-reading and
reissuing is meaningful.

Usage:

	svc := wallet.NewService(repo, cacheService, wallet.Config{}, nil)

	view, err := svc.CreateWallet(ctx, ownerID)

	view, err = svc.Deposit(ctx, view.ID, ownerID, 50000, "order refund")

Invariants held before and after every mutation:

  - balance >= 0
  - 0 <= lockedBalance <= balance
  - daily counters are non-negative and bounded by their configured maxima
  - the concurrency token strictly increases with each committed mutation

Daily limit counters reset at UTC midnight: the first mutation attempt of a
new UTC day zeroes counts and sums before any limit check runs, and the reset
is persisted as part of that mutation's conditional write.
*/
package wallet
