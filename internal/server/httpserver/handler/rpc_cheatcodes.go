package handler

import (
	"context"

	"github.com/yndnr/forkmesh-go/internal/core/domain"
)

// cheatResult is the result of every successful cheat code.
const cheatResult = "Success"

// rpcSetBalance: {address, lamports} or [address, lamports].
func (h *Handler) rpcSetBalance(ctx context.Context, forkID string, p params) (any, error) {
	address, err := p.stringArg(0, "address")
	if err != nil {
		return nil, err
	}
	lamports, err := p.uint64Arg(1, "lamports")
	if err != nil {
		return nil, err
	}
	if err := h.forks.SetBalance(ctx, forkID, address, lamports); err != nil {
		return nil, err
	}
	return cheatResult, nil
}

// rpcSetTokenBalance: {owner, mint, amount} or [owner, mint, amount].
func (h *Handler) rpcSetTokenBalance(ctx context.Context, forkID string, p params) (any, error) {
	owner, err := p.stringArg(0, "owner")
	if err != nil {
		return nil, err
	}
	mint, err := p.stringArg(1, "mint")
	if err != nil {
		return nil, err
	}
	amount, err := p.uint64Arg(2, "amount")
	if err != nil {
		return nil, err
	}
	if err := h.forks.SetTokenBalance(ctx, forkID, owner, mint, amount); err != nil {
		return nil, err
	}
	return cheatResult, nil
}

// rpcSetAccount: {address, account} or [address, account], where account
// has the getAccountInfo value shape.
func (h *Handler) rpcSetAccount(ctx context.Context, forkID string, p params) (any, error) {
	address, err := p.stringArg(0, "address")
	if err != nil {
		return nil, err
	}
	var v AccountValue
	if err := p.decode(1, "account", &v); err != nil {
		return nil, err
	}
	owner, err := domain.ParseAddress(v.Owner)
	if err != nil {
		return nil, err
	}

	acct := &domain.Account{
		Lamports:   v.Lamports,
		Data:       v.Data.Bytes,
		Owner:      owner,
		Executable: v.Executable,
		RentEpoch:  v.RentEpoch,
	}
	if acct.Data == nil {
		acct.Data = []byte{}
	}
	if err := h.forks.SetAccount(ctx, forkID, address, acct); err != nil {
		return nil, err
	}
	return cheatResult, nil
}

// rpcLoadAccount: [address], {address}, [[address...]] or {addresses}.
// Hydrates accounts from the remote ledger ahead of use.
func (h *Handler) rpcLoadAccount(ctx context.Context, forkID string, p params) (any, error) {
	var addresses []string
	if _, ok := p.arg(0, "addresses"); ok && p.named != nil {
		if err := p.decode(0, "addresses", &addresses); err != nil {
			return nil, err
		}
	} else if raw, ok := p.arg(0, "address"); ok && len(raw) > 0 && raw[0] == '[' {
		if err := p.decode(0, "address", &addresses); err != nil {
			return nil, err
		}
	}

	if addresses != nil {
		if err := h.forks.EnsureAccounts(ctx, forkID, addresses); err != nil {
			return nil, err
		}
		return cheatResult, nil
	}

	address, err := p.stringArg(0, "address")
	if err != nil {
		return nil, err
	}
	if err := h.forks.EnsureAccount(ctx, forkID, address); err != nil {
		return nil, err
	}
	return cheatResult, nil
}
