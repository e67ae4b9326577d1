package service

import (
	"github.com/yndnr/forkmesh-go/internal/core/domain"
	"github.com/yndnr/forkmesh-go/pkg/solana"
)

// StateReader reads an engine's account set. Returned accounts are copies.
type StateReader interface {
	GetAccount(addr solana.Pubkey) (*domain.Account, bool)
	LatestBlockhash() solana.Hash
	MinimumBalanceForRentExemption(dataLen int) uint64
}

// DirectWriter overwrites accounts without going through execution.
// Cheat codes use this path only.
type DirectWriter interface {
	SetAccount(addr solana.Pubkey, acct *domain.Account)
}

// TransactionSubmitter executes transactions against the account set.
type TransactionSubmitter interface {
	SendTransaction(tx *solana.Transaction) (solana.Signature, error)
}

// Engine is the per-fork execution state. It is not safe for concurrent
// use; the owning Fork serializes access.
type Engine interface {
	StateReader
	DirectWriter
	TransactionSubmitter
}

// EngineFactory builds a fresh, empty engine for a new fork.
type EngineFactory func() Engine
