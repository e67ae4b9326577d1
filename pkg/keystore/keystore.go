package keystore

import (
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/scrypt"
)

// Version is the only envelope version understood.
const Version = 1

// KDFScrypt names the key derivation function.
const KDFScrypt = "scrypt"

// Default scrypt cost. N=2^15 takes tens of milliseconds on a laptop.
const (
	DefaultN = 1 << 15
	DefaultR = 8
	DefaultP = 1
)

var (
	// ErrWrongPassphrase is returned when authentication fails on Open.
	ErrWrongPassphrase = errors.New("keystore: wrong passphrase or corrupted envelope")

	// ErrEmptyPassphrase is returned by Seal for an empty passphrase.
	ErrEmptyPassphrase = errors.New("keystore: passphrase must not be empty")
)

// KDFParams are the scrypt inputs.
type KDFParams struct {
	Salt []byte `json:"salt"`
	N    int    `json:"n"`
	R    int    `json:"r"`
	P    int    `json:"p"`
}

// Envelope is a sealed secret, serialized as JSON.
type Envelope struct {
	Version    int        `json:"version"`
	KDF        string     `json:"kdf"`
	KDFParams  KDFParams  `json:"kdf_params"`
	Cipher     CipherType `json:"cipher"`
	Nonce      []byte     `json:"nonce"`
	Ciphertext []byte     `json:"ciphertext"`
}

// Option adjusts sealing.
type Option func(*sealOptions)

type sealOptions struct {
	cipher  CipherType
	n, r, p int
	rand    io.Reader
}

// WithCipher forces a cipher instead of the host preference.
func WithCipher(t CipherType) Option {
	return func(o *sealOptions) { o.cipher = t }
}

// WithScryptCost overrides the scrypt parameters. Tests use small values.
func WithScryptCost(n, r, p int) Option {
	return func(o *sealOptions) { o.n, o.r, o.p = n, r, p }
}

// Seal encrypts secret under passphrase.
func Seal(secret, passphrase []byte, opts ...Option) (*Envelope, error) {
	if len(passphrase) == 0 {
		return nil, ErrEmptyPassphrase
	}
	o := sealOptions{cipher: preferredCipher(), n: DefaultN, r: DefaultR, p: DefaultP, rand: rand.Reader}
	for _, opt := range opts {
		opt(&o)
	}

	salt := make([]byte, 16)
	if _, err := io.ReadFull(o.rand, salt); err != nil {
		return nil, fmt.Errorf("keystore: read salt: %w", err)
	}
	params := KDFParams{Salt: salt, N: o.n, R: o.r, P: o.p}

	key, err := deriveKey(passphrase, params)
	if err != nil {
		return nil, err
	}
	aead, err := newAEAD(o.cipher, key)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, aead.NonceSize())
	if _, err := io.ReadFull(o.rand, nonce); err != nil {
		return nil, fmt.Errorf("keystore: read nonce: %w", err)
	}

	env := &Envelope{
		Version:   Version,
		KDF:       KDFScrypt,
		KDFParams: params,
		Cipher:    o.cipher,
		Nonce:     nonce,
	}
	env.Ciphertext = aead.Seal(nil, nonce, secret, env.additionalData())
	return env, nil
}

// Open decrypts env with passphrase.
func Open(env *Envelope, passphrase []byte) ([]byte, error) {
	if env.Version != Version {
		return nil, fmt.Errorf("keystore: unsupported envelope version %d", env.Version)
	}
	if env.KDF != KDFScrypt {
		return nil, fmt.Errorf("keystore: unsupported kdf %q", env.KDF)
	}

	key, err := deriveKey(passphrase, env.KDFParams)
	if err != nil {
		return nil, err
	}
	aead, err := newAEAD(env.Cipher, key)
	if err != nil {
		return nil, err
	}
	if len(env.Nonce) != aead.NonceSize() {
		return nil, fmt.Errorf("keystore: nonce must be %d bytes", aead.NonceSize())
	}

	secret, err := aead.Open(nil, env.Nonce, env.Ciphertext, env.additionalData())
	if err != nil {
		return nil, ErrWrongPassphrase
	}
	return secret, nil
}

// IsEnvelope reports whether data looks like a serialized Envelope.
func IsEnvelope(data []byte) bool {
	var probe struct {
		Version int    `json:"version"`
		KDF     string `json:"kdf"`
	}
	return json.Unmarshal(data, &probe) == nil && probe.Version > 0 && probe.KDF != ""
}

func deriveKey(passphrase []byte, p KDFParams) ([]byte, error) {
	key, err := scrypt.Key(passphrase, p.Salt, p.N, p.R, p.P, keySize)
	if err != nil {
		return nil, fmt.Errorf("keystore: derive key: %w", err)
	}
	return key, nil
}

// additionalData binds the header fields to the ciphertext.
func (e *Envelope) additionalData() []byte {
	return []byte(fmt.Sprintf("forkmesh-keystore/v%d/%s/%s/%d/%d/%d",
		e.Version, e.KDF, e.Cipher, e.KDFParams.N, e.KDFParams.R, e.KDFParams.P))
}
