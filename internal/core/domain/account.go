package domain

import (
	"github.com/yndnr/forkmesh-go/pkg/solana"
)

// Account is a snapshot of one ledger account.
type Account struct {
	Lamports   uint64        `json:"lamports"`
	Data       []byte        `json:"data"`
	Owner      solana.Pubkey `json:"owner"`
	Executable bool          `json:"executable"`
	RentEpoch  uint64        `json:"rentEpoch"`
}

// NewSystemAccount returns an empty system-owned account holding lamports.
func NewSystemAccount(lamports uint64) *Account {
	return &Account{
		Lamports: lamports,
		Data:     []byte{},
		Owner:    solana.SystemProgramID,
	}
}

// Clone returns a deep copy. Clone of nil is nil.
func (a *Account) Clone() *Account {
	if a == nil {
		return nil
	}
	c := *a
	c.Data = append([]byte(nil), a.Data...)
	if c.Data == nil {
		c.Data = []byte{}
	}
	return &c
}

// ParseAddress parses a base58 address, mapping failures to ErrInvalidAddress.
func ParseAddress(s string) (solana.Pubkey, error) {
	pk, err := solana.ParsePubkey(s)
	if err != nil {
		return solana.Pubkey{}, ErrInvalidAddress.WithDetails(s).WithCause(err)
	}
	return pk, nil
}
