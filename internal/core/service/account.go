package service

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"

	"github.com/yndnr/forkmesh-go/internal/core/domain"
	"github.com/yndnr/forkmesh-go/pkg/solana"
)

// maxWarmupConcurrency bounds parallel remote fetches in EnsureAccounts.
const maxWarmupConcurrency = 8

// GetBalance returns the lamports at address. An address unknown both
// locally and remotely has a zero balance.
func (s *ForkService) GetBalance(ctx context.Context, id, address string) (uint64, error) {
	f, addr, err := s.forkAndAddress(id, address)
	if err != nil {
		return 0, err
	}

	acct, err := s.resolve(ctx, f, addr)
	if errors.Is(err, errRemoteAbsent) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return acct.Lamports, nil
}

// SetBalance overwrites the lamports at address without consulting the
// remote ledger. A missing account is created as an empty system account.
func (s *ForkService) SetBalance(ctx context.Context, id, address string, lamports uint64) error {
	f, addr, err := s.forkAndAddress(id, address)
	if err != nil {
		return err
	}

	f.mu.Lock()
	acct, ok := f.engine.GetAccount(addr)
	if !ok {
		acct = domain.NewSystemAccount(0)
	}
	acct.Lamports = lamports
	f.engine.SetAccount(addr, acct)
	f.mu.Unlock()

	s.log(ctx, id).Info("balance set", "address", address, "lamports", lamports)
	return nil
}

// GetAccountInfo returns the account at address, or nil when it exists
// neither locally nor remotely.
func (s *ForkService) GetAccountInfo(ctx context.Context, id, address string) (*domain.Account, error) {
	f, addr, err := s.forkAndAddress(id, address)
	if err != nil {
		return nil, err
	}

	acct, err := s.resolve(ctx, f, addr)
	if errors.Is(err, errRemoteAbsent) {
		return nil, nil
	}
	return acct, err
}

// SetAccount replaces the whole account at address.
func (s *ForkService) SetAccount(ctx context.Context, id, address string, acct *domain.Account) error {
	if acct == nil {
		return domain.ErrMissingArgument.WithDetails("account is required")
	}
	f, addr, err := s.forkAndAddress(id, address)
	if err != nil {
		return err
	}

	f.mu.Lock()
	f.engine.SetAccount(addr, acct.Clone())
	f.mu.Unlock()

	s.log(ctx, id).Info("account set", "address", address, "lamports", acct.Lamports, "data_len", len(acct.Data))
	return nil
}

// EnsureAccount hydrates address into the fork if it is not cached yet.
// A remote not-found is a successful no-op.
func (s *ForkService) EnsureAccount(ctx context.Context, id, address string) error {
	f, addr, err := s.forkAndAddress(id, address)
	if err != nil {
		return err
	}
	return s.ensure(ctx, f, addr)
}

// EnsureAccounts hydrates several addresses in parallel. Every address is
// validated before any fetch starts.
func (s *ForkService) EnsureAccounts(ctx context.Context, id string, addresses []string) error {
	f, err := s.fork(id)
	if err != nil {
		return err
	}
	addrs := make([]solana.Pubkey, len(addresses))
	for i, a := range addresses {
		if addrs[i], err = domain.ParseAddress(a); err != nil {
			return err
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxWarmupConcurrency)
	for _, addr := range addrs {
		g.Go(func() error {
			return s.ensure(gctx, f, addr)
		})
	}
	return g.Wait()
}

func (s *ForkService) ensure(ctx context.Context, f *Fork, addr solana.Pubkey) error {
	_, err := s.resolve(ctx, f, addr)
	if errors.Is(err, errRemoteAbsent) {
		return nil
	}
	return err
}

// LatestBlockhash returns the fork engine's current blockhash.
func (s *ForkService) LatestBlockhash(_ context.Context, id string) (solana.Hash, error) {
	f, err := s.fork(id)
	if err != nil {
		return solana.Hash{}, err
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.engine.LatestBlockhash(), nil
}

// MinimumBalanceForRentExemption returns the rent-exempt minimum for dataLen bytes.
func (s *ForkService) MinimumBalanceForRentExemption(_ context.Context, id string, dataLen int) (uint64, error) {
	if dataLen < 0 {
		return 0, domain.ErrInvalidArgument.WithDetails("data length must not be negative")
	}
	f, err := s.fork(id)
	if err != nil {
		return 0, err
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.engine.MinimumBalanceForRentExemption(dataLen), nil
}

// forkAndAddress resolves the fork first, then parses the address.
func (s *ForkService) forkAndAddress(id, address string) (*Fork, solana.Pubkey, error) {
	f, err := s.fork(id)
	if err != nil {
		return nil, solana.Pubkey{}, err
	}
	addr, err := domain.ParseAddress(address)
	if err != nil {
		return nil, solana.Pubkey{}, err
	}
	return f, addr, nil
}
