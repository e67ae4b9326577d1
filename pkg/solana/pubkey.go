package solana

import (
	"errors"
	"fmt"

	"github.com/mr-tron/base58"
)

// Sizes of the fixed-width primitives.
const (
	PubkeySize    = 32
	HashSize      = 32
	SignatureSize = 64
)

var (
	// ErrInvalidPubkey is returned when a string is not a base58 encoded 32-byte key.
	ErrInvalidPubkey = errors.New("solana: invalid public key")

	// ErrInvalidHash is returned when a string is not a base58 encoded 32-byte hash.
	ErrInvalidHash = errors.New("solana: invalid hash")

	// ErrInvalidSignature is returned when a string is not a base58 encoded 64-byte signature.
	ErrInvalidSignature = errors.New("solana: invalid signature")
)

// Well-known program ids.
var (
	SystemProgramID          = MustPubkey("11111111111111111111111111111111")
	TokenProgramID           = MustPubkey("TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA")
	AssociatedTokenProgramID = MustPubkey("ATokenGPvbdGVxr1b2hvZbsiqW5xWH25efTNsLJA8knL")
)

// Pubkey is a 32-byte account address.
type Pubkey [PubkeySize]byte

// ParsePubkey decodes a base58 address.
func ParsePubkey(s string) (Pubkey, error) {
	var pk Pubkey
	raw, err := base58.Decode(s)
	if err != nil {
		return pk, fmt.Errorf("%w: %q: %v", ErrInvalidPubkey, s, err)
	}
	if len(raw) != PubkeySize {
		return pk, fmt.Errorf("%w: %q decodes to %d bytes", ErrInvalidPubkey, s, len(raw))
	}
	copy(pk[:], raw)
	return pk, nil
}

// MustPubkey is like ParsePubkey but panics on error.
// Intended for package-level constants.
func MustPubkey(s string) Pubkey {
	pk, err := ParsePubkey(s)
	if err != nil {
		panic(err)
	}
	return pk
}

// PubkeyFromBytes copies b into a Pubkey.
func PubkeyFromBytes(b []byte) (Pubkey, error) {
	var pk Pubkey
	if len(b) != PubkeySize {
		return pk, fmt.Errorf("%w: %d bytes", ErrInvalidPubkey, len(b))
	}
	copy(pk[:], b)
	return pk, nil
}

// String returns the base58 form.
func (p Pubkey) String() string {
	return base58.Encode(p[:])
}

// IsZero reports whether every byte is zero.
func (p Pubkey) IsZero() bool {
	return p == Pubkey{}
}

// MarshalText implements encoding.TextMarshaler.
func (p Pubkey) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Pubkey) UnmarshalText(text []byte) error {
	pk, err := ParsePubkey(string(text))
	if err != nil {
		return err
	}
	*p = pk
	return nil
}

// Hash is a 32-byte digest, used for blockhashes.
type Hash [HashSize]byte

// ParseHash decodes a base58 hash.
func ParseHash(s string) (Hash, error) {
	var h Hash
	raw, err := base58.Decode(s)
	if err != nil || len(raw) != HashSize {
		return h, fmt.Errorf("%w: %q", ErrInvalidHash, s)
	}
	copy(h[:], raw)
	return h, nil
}

// String returns the base58 form.
func (h Hash) String() string {
	return base58.Encode(h[:])
}

// MarshalText implements encoding.TextMarshaler.
func (h Hash) MarshalText() ([]byte, error) {
	return []byte(h.String()), nil
}

// Signature is a 64-byte ed25519 signature.
type Signature [SignatureSize]byte

// ParseSignature decodes a base58 signature.
func ParseSignature(s string) (Signature, error) {
	var sig Signature
	raw, err := base58.Decode(s)
	if err != nil || len(raw) != SignatureSize {
		return sig, fmt.Errorf("%w: %q", ErrInvalidSignature, s)
	}
	copy(sig[:], raw)
	return sig, nil
}

// String returns the base58 form.
func (s Signature) String() string {
	return base58.Encode(s[:])
}

// IsZero reports whether the signature is all zeros (unsigned slot).
func (s Signature) IsZero() bool {
	return s == Signature{}
}
