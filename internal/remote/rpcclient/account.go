package rpcclient

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/yndnr/forkmesh-go/internal/core/domain"
	"github.com/yndnr/forkmesh-go/internal/core/service"
	"github.com/yndnr/forkmesh-go/pkg/solana"
)

// accountValue is the "value" of a getAccountInfo result with base64 data.
type accountValue struct {
	Lamports   uint64        `json:"lamports"`
	Owner      solana.Pubkey `json:"owner"`
	Data       []string      `json:"data"`
	Executable bool          `json:"executable"`
	RentEpoch  uint64        `json:"rentEpoch"`
}

type accountInfoResult struct {
	Value *accountValue `json:"value"`
}

// FetchAccount implements service.RemoteLedger. An account the node does
// not know yields service.ErrAccountNotFound.
func (c *Client) FetchAccount(ctx context.Context, addr solana.Pubkey) (*domain.Account, error) {
	params := []any{
		addr.String(),
		map[string]string{"encoding": "base64", "commitment": c.cfg.Commitment},
	}

	var result accountInfoResult
	if err := c.Call(ctx, "getAccountInfo", params, &result); err != nil {
		return nil, err
	}
	if result.Value == nil {
		return nil, service.ErrAccountNotFound
	}
	return result.Value.toAccount()
}

func (v *accountValue) toAccount() (*domain.Account, error) {
	if len(v.Data) != 2 || v.Data[1] != "base64" {
		return nil, fmt.Errorf("rpcclient: unexpected account data encoding %q", v.Data)
	}
	data, err := base64.StdEncoding.DecodeString(v.Data[0])
	if err != nil {
		return nil, fmt.Errorf("rpcclient: decode account data: %w", err)
	}
	return &domain.Account{
		Lamports:   v.Lamports,
		Data:       data,
		Owner:      v.Owner,
		Executable: v.Executable,
		RentEpoch:  v.RentEpoch,
	}, nil
}

// Health calls getHealth and returns nil when the node reports "ok".
func (c *Client) Health(ctx context.Context) error {
	var status string
	if err := c.Call(ctx, "getHealth", nil, &status); err != nil {
		return err
	}
	if status != "ok" {
		return fmt.Errorf("rpcclient: node health %q", status)
	}
	return nil
}

var _ service.RemoteLedger = (*Client)(nil)
