package service

import (
	"context"
	"errors"

	"github.com/yndnr/forkmesh-go/internal/core/domain"
	"github.com/yndnr/forkmesh-go/pkg/solana"
	"github.com/yndnr/forkmesh-go/pkg/tokenacct"
)

// GetTokenBalance returns the amount held in owner's associated token
// account for mint. A token account that exists nowhere has a zero balance.
func (s *ForkService) GetTokenBalance(ctx context.Context, id, owner, mint string) (uint64, error) {
	f, keys, err := s.tokenKeys(id, owner, mint)
	if err != nil {
		return 0, err
	}
	ata := keys.account

	acct, err := s.resolve(ctx, f, ata)
	if errors.Is(err, errRemoteAbsent) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	amount, err := tokenacct.AmountOf(acct.Data)
	if err != nil {
		return 0, domain.ErrCodecError.WithDetails(ata.String()).WithCause(err)
	}
	return amount, nil
}

// SetTokenBalance writes amount into owner's associated token account for
// mint. An existing account, local or remote, keeps its other fields. A
// missing one is created rent-exempt, owned by the token program, in the
// initialized state.
func (s *ForkService) SetTokenBalance(ctx context.Context, id, owner, mint string, amount uint64) error {
	f, keys, err := s.tokenKeys(id, owner, mint)
	if err != nil {
		return err
	}
	ata := keys.account

	// Warm the mint and pull any existing token account so its lamports and
	// extra fields survive. Both are best effort; the write proceeds offline.
	for _, key := range []solana.Pubkey{keys.mint, ata} {
		if err := s.ensure(ctx, f, key); err != nil {
			s.log(ctx, id).Warn("token warm-up failed", "address", key.String(), "error", err)
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	acct, ok := f.engine.GetAccount(ata)
	var layout *tokenacct.Account
	if ok {
		if layout, err = tokenacct.Unpack(acct.Data); err != nil {
			return domain.ErrCodecError.WithDetails(ata.String()).WithCause(err)
		}
		if !layout.IsInitialized() {
			layout.Mint, layout.Owner, layout.State = keys.mint, keys.owner, tokenacct.StateInitialized
		}
		layout.Amount = amount
	} else {
		layout = tokenacct.New(keys.mint, keys.owner, amount)
		acct = &domain.Account{
			Lamports: f.engine.MinimumBalanceForRentExemption(tokenacct.Size),
			Owner:    solana.TokenProgramID,
		}
	}
	acct.Data = layout.Pack()
	f.engine.SetAccount(ata, acct)

	s.log(ctx, id).Info("token balance set",
		"owner", owner, "mint", mint, "token_account", ata.String(), "amount", amount)
	return nil
}

// tokenAddrs holds the parsed owner and mint and their associated token account.
type tokenAddrs struct {
	owner   solana.Pubkey
	mint    solana.Pubkey
	account solana.Pubkey
}

// tokenKeys resolves the fork, parses owner and mint, and derives the
// associated token address.
func (s *ForkService) tokenKeys(id, owner, mint string) (*Fork, tokenAddrs, error) {
	var keys tokenAddrs
	f, ownerKey, err := s.forkAndAddress(id, owner)
	if err != nil {
		return nil, keys, err
	}
	mintKey, err := domain.ParseAddress(mint)
	if err != nil {
		return nil, keys, err
	}
	ata, err := solana.AssociatedTokenAddress(ownerKey, mintKey)
	if err != nil {
		return nil, keys, domain.ErrInternalServer.WithCause(err)
	}
	return f, tokenAddrs{owner: ownerKey, mint: mintKey, account: ata}, nil
}
