// Package domain defines the core domain models for ForkMesh.
//
// Domain models are plain values without IO dependencies:
//
//   - Account: a ledger account snapshot (lamports, data, owner, flags)
//   - TransactionRecord: one entry in a fork's append-only history
//   - ForkInfo: read-only metadata describing a live fork
//   - Errors: coded domain errors shared by every layer
package domain
