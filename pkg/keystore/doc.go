// Package keystore seals secrets, typically ed25519 keypairs, under a
// passphrase.
//
// The passphrase is stretched with scrypt and the secret is sealed with an
// AEAD picked for the host: AES-256-GCM where the CPU accelerates AES,
// ChaCha20-Poly1305 elsewhere. The chosen cipher and KDF parameters are
// stored in the Envelope, so any host can open what another sealed.
//
// Usage:
//
//	env, err := keystore.Seal(secret, passphrase)
//	secret, err := keystore.Open(env, passphrase)
package keystore
