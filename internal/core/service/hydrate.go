package service

import (
	"context"
	"errors"

	"github.com/yndnr/forkmesh-go/internal/core/domain"
	"github.com/yndnr/forkmesh-go/pkg/solana"
)

// errRemoteAbsent marks a remote not-found. Callers turn it into absence or zero.
var errRemoteAbsent = errors.New("account absent locally and remotely")

// Read-through hydration runs in three phases:
//
//  1. lookupCached: fork read lock, check the engine.
//  2. fetch: no locks held, ask the remote ledger.
//  3. mergeFetched: fork write lock, store the fetched account unless a
//     concurrent writer got there first.
//
// Two goroutines missing the same address may both fetch. Whichever merges
// first wins; the other returns the stored copy, so a cheat-code write that
// lands between fetch and merge is never overwritten.

// lookupCached returns the engine's copy of addr.
func (f *Fork) lookupCached(addr solana.Pubkey) (*domain.Account, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.engine.GetAccount(addr)
}

// mergeFetched stores fetched if addr is still absent and returns the
// account now held by the engine.
func (f *Fork) mergeFetched(addr solana.Pubkey, fetched *domain.Account) *domain.Account {
	f.mu.Lock()
	defer f.mu.Unlock()
	if existing, ok := f.engine.GetAccount(addr); ok {
		return existing
	}
	f.engine.SetAccount(addr, fetched)
	return fetched.Clone()
}

// resolve returns the account at addr, hydrating it from the remote ledger
// on a miss. A remote not-found yields errRemoteAbsent.
func (s *ForkService) resolve(ctx context.Context, f *Fork, addr solana.Pubkey) (*domain.Account, error) {
	if acct, ok := f.lookupCached(addr); ok {
		return acct, nil
	}

	fetched, err := s.fetch(ctx, f.id, addr)
	if err != nil {
		return nil, err
	}
	return f.mergeFetched(addr, fetched), nil
}

// fetch calls the remote ledger and classifies the outcome.
func (s *ForkService) fetch(ctx context.Context, forkID string, addr solana.Pubkey) (*domain.Account, error) {
	start := s.now()
	acct, err := s.remote.FetchAccount(ctx, addr)
	elapsed := s.now().Sub(start)

	switch {
	case err == nil && acct != nil:
		s.recorder.RemoteFetch(FetchFound, elapsed)
		s.log(ctx, forkID).Debug("account hydrated from remote", "address", addr.String(), "lamports", acct.Lamports)
		return acct.Clone(), nil
	case err == nil || errors.Is(err, ErrAccountNotFound):
		s.recorder.RemoteFetch(FetchNotFound, elapsed)
		s.log(ctx, forkID).Debug("account not found on remote", "address", addr.String())
		return nil, errRemoteAbsent
	default:
		s.recorder.RemoteFetch(FetchError, elapsed)
		s.log(ctx, forkID).Warn("remote fetch failed", "address", addr.String(), "error", err)
		return nil, domain.ErrFetchFailed.WithDetails(addr.String()).WithCause(err)
	}
}
