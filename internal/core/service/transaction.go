package service

import (
	"context"

	"github.com/mr-tron/base58"

	"github.com/yndnr/forkmesh-go/internal/core/domain"
	"github.com/yndnr/forkmesh-go/pkg/solana"
)

// SendTransaction decodes a base58 wire transaction and submits it to the
// fork's engine. Every submission that reaches the engine is recorded in
// history, including rejected ones, which carry domain.FailedSignature.
func (s *ForkService) SendTransaction(ctx context.Context, id, encoded string) (string, error) {
	// 1. Resolve fork
	f, err := s.fork(id)
	if err != nil {
		return "", err
	}

	// 2. Decode
	raw, err := base58.Decode(encoded)
	if err != nil {
		return "", domain.ErrDecodeError.WithDetails("invalid base58").WithCause(err)
	}
	tx, err := solana.DecodeTransaction(raw)
	if err != nil {
		return "", domain.ErrDecodeError.WithDetails(err.Error()).WithCause(err)
	}

	// 3. Execute and record under the fork write lock so history order
	// matches execution order
	f.mu.Lock()
	sig, execErr := f.engine.SendTransaction(tx)
	if execErr != nil {
		f.history = append(f.history, domain.NewTransactionRecord(domain.FailedSignature, false, s.now()))
	} else {
		f.history = append(f.history, domain.NewTransactionRecord(sig.String(), true, s.now()))
	}
	f.mu.Unlock()

	s.recorder.Transaction(execErr == nil)
	if execErr != nil {
		s.log(ctx, id).Info("transaction rejected", "error", execErr.Error())
		return "", domain.ErrExecutionFailed.WithDetails(execErr.Error()).WithCause(execErr)
	}

	s.log(ctx, id).Info("transaction executed", "signature", sig.String())
	return sig.String(), nil
}

// History returns a copy of the fork's transaction records in insertion order.
func (s *ForkService) History(_ context.Context, id string) ([]domain.TransactionRecord, error) {
	f, err := s.fork(id)
	if err != nil {
		return nil, err
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]domain.TransactionRecord, len(f.history))
	copy(out, f.history)
	return out, nil
}
