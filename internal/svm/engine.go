package svm

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math"

	"github.com/yndnr/forkmesh-go/internal/core/domain"
	"github.com/yndnr/forkmesh-go/internal/core/service"
	"github.com/yndnr/forkmesh-go/pkg/solana"
)

// Rent parameters: accounts pay for their data plus a fixed metadata
// overhead, and are exempt once they hold two years of rent.
const (
	AccountStorageOverhead      = 128
	LamportsPerByteYear         = 3480
	ExemptionThresholdYears     = 2
	DefaultLamportsPerSignature = 5000
)

// Execution errors.
var (
	ErrSignatureCount           = errors.New("signature count does not match required signers")
	ErrSignatureFailure         = errors.New("signature verification failed")
	ErrBlockhashNotFound        = errors.New("blockhash not found")
	ErrAlreadyProcessed         = errors.New("transaction already processed")
	ErrAccountNotFound          = errors.New("attempt to debit an account but found no record of a prior credit")
	ErrInsufficientFundsForFee  = errors.New("insufficient funds for fee")
	ErrUnsupportedProgram       = errors.New("unsupported program")
	ErrInvalidInstructionData   = errors.New("invalid instruction data")
	ErrNotEnoughAccountKeys     = errors.New("insufficient account keys for instruction")
	ErrMissingRequiredSignature = errors.New("missing required signature for instruction")
	ErrReadonlyAccount          = errors.New("instruction modified a read-only account")
	ErrAccountHasData           = errors.New("from account must not carry data")
	ErrInsufficientFunds        = errors.New("insufficient funds for instruction")
	ErrArithmeticOverflow       = errors.New("arithmetic overflow")
)

// Engine is one fork's account set and execution state.
type Engine struct {
	accounts             map[solana.Pubkey]*domain.Account
	blockhash            solana.Hash
	lamportsPerSignature uint64
	processed            map[solana.Signature]struct{}
}

var _ service.Engine = (*Engine)(nil)

// Option configures an Engine.
type Option func(*Engine)

// WithLamportsPerSignature sets the per-signature fee.
func WithLamportsPerSignature(fee uint64) Option {
	return func(e *Engine) {
		e.lamportsPerSignature = fee
	}
}

// WithBlockhash fixes the engine blockhash instead of drawing a random one.
func WithBlockhash(h solana.Hash) Option {
	return func(e *Engine) {
		e.blockhash = h
	}
}

// New creates an empty engine with a random blockhash.
func New(opts ...Option) *Engine {
	e := &Engine{
		accounts:             make(map[solana.Pubkey]*domain.Account),
		lamportsPerSignature: DefaultLamportsPerSignature,
		processed:            make(map[solana.Signature]struct{}),
	}
	// crypto/rand.Read never returns an error on supported platforms
	_, _ = rand.Read(e.blockhash[:])
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Factory returns a service.EngineFactory building engines with opts.
func Factory(opts ...Option) service.EngineFactory {
	return func() service.Engine {
		return New(opts...)
	}
}

// GetAccount returns a copy of the account at addr.
func (e *Engine) GetAccount(addr solana.Pubkey) (*domain.Account, bool) {
	acct, ok := e.accounts[addr]
	if !ok {
		return nil, false
	}
	return acct.Clone(), true
}

// SetAccount stores a copy of acct at addr.
func (e *Engine) SetAccount(addr solana.Pubkey, acct *domain.Account) {
	e.accounts[addr] = acct.Clone()
}

// LatestBlockhash returns the blockhash transactions must reference.
func (e *Engine) LatestBlockhash() solana.Hash {
	return e.blockhash
}

// MinimumBalanceForRentExemption returns the lamports an account of
// dataLen bytes needs to be rent exempt.
func (e *Engine) MinimumBalanceForRentExemption(dataLen int) uint64 {
	return uint64(AccountStorageOverhead+dataLen) * LamportsPerByteYear * ExemptionThresholdYears
}

// SendTransaction validates and executes tx. On any error the account set
// is unchanged.
func (e *Engine) SendTransaction(tx *solana.Transaction) (solana.Signature, error) {
	msg := &tx.Message

	// 1. Signatures
	if len(tx.Signatures) == 0 || len(tx.Signatures) != int(msg.Header.NumRequiredSignatures) {
		return solana.Signature{}, fmt.Errorf("%w: have %d, need %d",
			ErrSignatureCount, len(tx.Signatures), msg.Header.NumRequiredSignatures)
	}
	if err := tx.VerifySignatures(); err != nil {
		return solana.Signature{}, fmt.Errorf("%w: %v", ErrSignatureFailure, err)
	}
	sig := tx.Signatures[0]

	// 2. Freshness and replay
	if msg.RecentBlockhash != e.blockhash {
		return solana.Signature{}, ErrBlockhashNotFound
	}
	if _, seen := e.processed[sig]; seen {
		return solana.Signature{}, ErrAlreadyProcessed
	}

	// 3. Fee
	ws := newWorkingSet(e.accounts)
	payerKey, _ := msg.FeePayer()
	payer, ok := ws.get(payerKey)
	if !ok {
		return solana.Signature{}, ErrAccountNotFound
	}
	fee := e.lamportsPerSignature * uint64(len(tx.Signatures))
	if payer.Lamports < fee {
		return solana.Signature{}, ErrInsufficientFundsForFee
	}
	payer.Lamports -= fee

	// 4. Instructions
	for i, ix := range msg.Instructions {
		if err := e.execute(ws, msg, ix); err != nil {
			return solana.Signature{}, fmt.Errorf("instruction %d: %w", i, err)
		}
	}

	// 5. Commit
	ws.commit(e.accounts)
	e.processed[sig] = struct{}{}
	return sig, nil
}

func (e *Engine) execute(ws *workingSet, msg *solana.Message, ix solana.CompiledInstruction) error {
	if msg.AccountKeys[ix.ProgramIDIndex] != solana.SystemProgramID {
		return fmt.Errorf("%w: %s", ErrUnsupportedProgram, msg.AccountKeys[ix.ProgramIDIndex])
	}

	lamports, err := solana.DecodeTransfer(ix.Data)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInstructionData, err)
	}
	if len(ix.Accounts) < 2 {
		return ErrNotEnoughAccountKeys
	}

	fromIdx, toIdx := int(ix.Accounts[0]), int(ix.Accounts[1])
	if !msg.IsSigner(fromIdx) {
		return ErrMissingRequiredSignature
	}
	if !msg.IsWritable(fromIdx) || !msg.IsWritable(toIdx) {
		return ErrReadonlyAccount
	}

	fromKey, toKey := msg.AccountKeys[fromIdx], msg.AccountKeys[toIdx]
	from, ok := ws.get(fromKey)
	if !ok {
		return ErrAccountNotFound
	}
	if len(from.Data) != 0 {
		return ErrAccountHasData
	}
	if from.Lamports < lamports {
		return fmt.Errorf("%w: have %d, need %d", ErrInsufficientFunds, from.Lamports, lamports)
	}

	to, ok := ws.get(toKey)
	if !ok {
		to = ws.create(toKey)
	}

	from.Lamports -= lamports
	if to.Lamports > math.MaxUint64-lamports {
		return ErrArithmeticOverflow
	}
	to.Lamports += lamports
	return nil
}

// workingSet holds copies of the accounts a transaction touches.
type workingSet struct {
	base    map[solana.Pubkey]*domain.Account
	touched map[solana.Pubkey]*domain.Account
}

func newWorkingSet(base map[solana.Pubkey]*domain.Account) *workingSet {
	return &workingSet{base: base, touched: make(map[solana.Pubkey]*domain.Account)}
}

func (w *workingSet) get(k solana.Pubkey) (*domain.Account, bool) {
	if a, ok := w.touched[k]; ok {
		return a, true
	}
	a, ok := w.base[k]
	if !ok {
		return nil, false
	}
	c := a.Clone()
	w.touched[k] = c
	return c, true
}

func (w *workingSet) create(k solana.Pubkey) *domain.Account {
	a := domain.NewSystemAccount(0)
	w.touched[k] = a
	return a
}

func (w *workingSet) commit(dst map[solana.Pubkey]*domain.Account) {
	for k, a := range w.touched {
		dst[k] = a
	}
}
