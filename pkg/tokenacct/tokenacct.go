// Package tokenacct packs and unpacks the fixed 165-byte SPL token account layout.
//
// Layout (little endian):
//
//	offset  size  field
//	0       32    mint
//	32      32    owner
//	64      8     amount
//	72      36    delegate         COption<Pubkey>
//	108     1     state            0 uninitialized, 1 initialized, 2 frozen
//	109     12    is_native        COption<u64>
//	121     8     delegated_amount
//	129     36    close_authority  COption<Pubkey>
package tokenacct

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/yndnr/forkmesh-go/pkg/solana"
)

// Size is the packed length of a token account.
const Size = 165

const (
	offMint            = 0
	offOwner           = 32
	offAmount          = 64
	offDelegate        = 72
	offState           = 108
	offIsNative        = 109
	offDelegatedAmount = 121
	offCloseAuthority  = 129
)

var (
	// ErrInvalidLength is returned for a buffer that is not exactly Size bytes.
	ErrInvalidLength = errors.New("tokenacct: invalid account data length")

	// ErrInvalidState is returned for an unknown account state discriminant.
	ErrInvalidState = errors.New("tokenacct: invalid account state")

	// ErrInvalidOption is returned for a COption tag other than 0 or 1.
	ErrInvalidOption = errors.New("tokenacct: invalid option tag")
)

// State is the lifecycle state of a token account.
type State uint8

const (
	StateUninitialized State = 0
	StateInitialized   State = 1
	StateFrozen        State = 2
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateInitialized:
		return "initialized"
	case StateFrozen:
		return "frozen"
	default:
		return fmt.Sprintf("state(%d)", uint8(s))
	}
}

// Account is a decoded token account.
// Optional fields are nil when absent.
type Account struct {
	Mint            solana.Pubkey
	Owner           solana.Pubkey
	Amount          uint64
	Delegate        *solana.Pubkey
	State           State
	IsNative        *uint64
	DelegatedAmount uint64
	CloseAuthority  *solana.Pubkey
}

// New returns an initialized account for owner holding amount of mint.
func New(mint, owner solana.Pubkey, amount uint64) *Account {
	return &Account{
		Mint:   mint,
		Owner:  owner,
		Amount: amount,
		State:  StateInitialized,
	}
}

// IsInitialized reports whether the account has been initialized.
func (a *Account) IsInitialized() bool {
	return a.State != StateUninitialized
}

// Pack encodes the account into a fresh Size-byte buffer.
func (a *Account) Pack() []byte {
	buf := make([]byte, Size)
	copy(buf[offMint:], a.Mint[:])
	copy(buf[offOwner:], a.Owner[:])
	binary.LittleEndian.PutUint64(buf[offAmount:], a.Amount)
	packPubkeyOption(buf[offDelegate:offDelegate+36], a.Delegate)
	buf[offState] = byte(a.State)
	if a.IsNative != nil {
		binary.LittleEndian.PutUint32(buf[offIsNative:], 1)
		binary.LittleEndian.PutUint64(buf[offIsNative+4:], *a.IsNative)
	}
	binary.LittleEndian.PutUint64(buf[offDelegatedAmount:], a.DelegatedAmount)
	packPubkeyOption(buf[offCloseAuthority:offCloseAuthority+36], a.CloseAuthority)
	return buf
}

// Unpack decodes a Size-byte buffer.
func Unpack(data []byte) (*Account, error) {
	if len(data) != Size {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrInvalidLength, len(data), Size)
	}

	a := &Account{
		Amount:          binary.LittleEndian.Uint64(data[offAmount:]),
		State:           State(data[offState]),
		DelegatedAmount: binary.LittleEndian.Uint64(data[offDelegatedAmount:]),
	}
	copy(a.Mint[:], data[offMint:offOwner])
	copy(a.Owner[:], data[offOwner:offAmount])

	if a.State > StateFrozen {
		return nil, fmt.Errorf("%w: %d", ErrInvalidState, data[offState])
	}

	var err error
	if a.Delegate, err = unpackPubkeyOption(data[offDelegate : offDelegate+36]); err != nil {
		return nil, fmt.Errorf("delegate: %w", err)
	}
	if a.CloseAuthority, err = unpackPubkeyOption(data[offCloseAuthority : offCloseAuthority+36]); err != nil {
		return nil, fmt.Errorf("close authority: %w", err)
	}

	switch tag := binary.LittleEndian.Uint32(data[offIsNative:]); tag {
	case 0:
	case 1:
		v := binary.LittleEndian.Uint64(data[offIsNative+4:])
		a.IsNative = &v
	default:
		return nil, fmt.Errorf("is native: %w: %d", ErrInvalidOption, tag)
	}

	return a, nil
}

// AmountOf reads only the amount field, after validating the layout.
func AmountOf(data []byte) (uint64, error) {
	a, err := Unpack(data)
	if err != nil {
		return 0, err
	}
	return a.Amount, nil
}

func packPubkeyOption(dst []byte, pk *solana.Pubkey) {
	if pk == nil {
		return
	}
	binary.LittleEndian.PutUint32(dst, 1)
	copy(dst[4:], pk[:])
}

func unpackPubkeyOption(src []byte) (*solana.Pubkey, error) {
	switch tag := binary.LittleEndian.Uint32(src); tag {
	case 0:
		return nil, nil
	case 1:
		var pk solana.Pubkey
		copy(pk[:], src[4:36])
		return &pk, nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrInvalidOption, tag)
	}
}
