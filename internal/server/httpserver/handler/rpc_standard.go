package handler

import (
	"context"
	"encoding/base64"

	"github.com/mr-tron/base58"

	"github.com/yndnr/forkmesh-go/internal/core/domain"
)

// lastValidBlockHeight is reported with every blockhash. Fork blockhashes
// never expire.
const lastValidBlockHeight = 999999999

// rpcGetBalance: [address] or {address}. Unknown accounts have balance 0.
func (h *Handler) rpcGetBalance(ctx context.Context, forkID string, p params) (any, error) {
	address, err := p.stringArg(0, "address")
	if err != nil {
		return nil, err
	}
	return h.forks.GetBalance(ctx, forkID, address)
}

// rpcGetAccountInfo: [address, {encoding}] or {address, encoding}.
// Result is {"value": account-or-null}.
func (h *Handler) rpcGetAccountInfo(ctx context.Context, forkID string, p params) (any, error) {
	address, err := p.stringArg(0, "address")
	if err != nil {
		return nil, err
	}
	cfg, err := p.config(1)
	if err != nil {
		return nil, err
	}
	encoding := EncodingBase58
	if err := cfg.optional(-1, "encoding", &encoding); err != nil {
		return nil, err
	}
	if encoding != EncodingBase58 && encoding != EncodingBase64 {
		return nil, domain.ErrInvalidArgument.WithDetails("unsupported encoding " + encoding)
	}

	acct, err := h.forks.GetAccountInfo(ctx, forkID, address)
	if err != nil {
		return nil, err
	}
	if acct == nil {
		return map[string]any{"value": nil}, nil
	}
	return map[string]any{"value": AccountValue{
		Lamports:   acct.Lamports,
		Owner:      acct.Owner.String(),
		Data:       EncodedData{Bytes: acct.Data, Encoding: encoding},
		Executable: acct.Executable,
		RentEpoch:  acct.RentEpoch,
	}}, nil
}

// rpcGetLatestBlockhash takes no parameters.
func (h *Handler) rpcGetLatestBlockhash(ctx context.Context, forkID string, _ params) (any, error) {
	hash, err := h.forks.LatestBlockhash(ctx, forkID)
	if err != nil {
		return nil, err
	}
	return BlockhashValue{
		Blockhash:            hash.String(),
		LastValidBlockHeight: lastValidBlockHeight,
	}, nil
}

// rpcSendTransaction: [tx, {encoding}] or {transaction, encoding}. The
// transaction is base58 unless encoding is base64. Result is the signature.
func (h *Handler) rpcSendTransaction(ctx context.Context, forkID string, p params) (any, error) {
	encoded, err := p.stringArg(0, "transaction")
	if err != nil {
		return nil, err
	}
	cfg, err := p.config(1)
	if err != nil {
		return nil, err
	}
	encoding := EncodingBase58
	if err := cfg.optional(-1, "encoding", &encoding); err != nil {
		return nil, err
	}

	switch encoding {
	case EncodingBase58:
	case EncodingBase64:
		raw, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			return nil, domain.ErrDecodeError.WithDetails("invalid base64").WithCause(err)
		}
		encoded = base58.Encode(raw)
	default:
		return nil, domain.ErrInvalidArgument.WithDetails("unsupported encoding " + encoding)
	}

	return h.forks.SendTransaction(ctx, forkID, encoded)
}

// rpcGetTokenBalance: [owner, mint] or {owner, mint}.
func (h *Handler) rpcGetTokenBalance(ctx context.Context, forkID string, p params) (any, error) {
	owner, err := p.stringArg(0, "owner")
	if err != nil {
		return nil, err
	}
	mint, err := p.stringArg(1, "mint")
	if err != nil {
		return nil, err
	}
	return h.forks.GetTokenBalance(ctx, forkID, owner, mint)
}

// rpcGetMinimumBalanceForRentExemption: [dataLength] or {dataLength}.
func (h *Handler) rpcGetMinimumBalanceForRentExemption(ctx context.Context, forkID string, p params) (any, error) {
	var dataLen int
	if err := p.decode(0, "dataLength", &dataLen); err != nil {
		return nil, err
	}
	return h.forks.MinimumBalanceForRentExemption(ctx, forkID, dataLen)
}

// rpcGetTransactionHistory returns the fork's records, oldest first.
func (h *Handler) rpcGetTransactionHistory(ctx context.Context, forkID string, _ params) (any, error) {
	return h.forks.History(ctx, forkID)
}

// rpcGetHealth reports "ok" for a live fork.
func (h *Handler) rpcGetHealth(context.Context, string, params) (any, error) {
	return "ok", nil
}
