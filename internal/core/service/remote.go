package service

import (
	"context"
	"errors"

	"github.com/yndnr/forkmesh-go/internal/core/domain"
	"github.com/yndnr/forkmesh-go/pkg/solana"
)

// ErrAccountNotFound is returned by a RemoteLedger when the address holds no account.
var ErrAccountNotFound = errors.New("remote: account not found")

// RemoteLedger fetches ground-truth account state from the live network.
// Implementations may block; callers must not hold locks across FetchAccount.
type RemoteLedger interface {
	FetchAccount(ctx context.Context, addr solana.Pubkey) (*domain.Account, error)
}
