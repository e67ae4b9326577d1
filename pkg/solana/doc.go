// Package solana provides the ledger primitives used by ForkMesh.
//
// It covers the small subset of the Solana wire surface the fork store
// needs, without pulling in a full SDK:
//
//   - Pubkey, Hash and Signature with base58 text encoding
//   - Program derived addresses and associated token addresses
//   - Compact-u16 ("shortvec") length encoding
//   - Legacy transaction and message (de)serialization, signing and verification
//   - System program transfer instructions
//
// All types are plain values and safe for concurrent use once built.
package solana
