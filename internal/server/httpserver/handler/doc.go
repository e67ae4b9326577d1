// Package handler provides HTTP request handlers for ForkMesh.
//
// This package contains handlers for all HTTP endpoints:
//
//   - fork.go: fork lifecycle (create, list, get, revoke, history)
//   - rpc.go: JSON-RPC 2.0 framing and dispatch
//   - rpc_standard.go: ledger-compatible read and submit methods
//   - rpc_cheatcodes.go: direct state mutation methods
//   - admin.go: administrative operations
//   - health.go: health and readiness checks
//
// REST handlers answer with the Response envelope. The JSON-RPC endpoint
// answers with plain JSON-RPC 2.0 objects so that ledger clients can talk
// to a fork directly.
package handler
