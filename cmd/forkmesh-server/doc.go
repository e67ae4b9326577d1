// Package main provides the entry point for forkmesh-server.
//
// The server hosts disposable forks of a live Solana-style ledger:
//
//   - HTTP/HTTPS API for fork lifecycle and per-fork JSON-RPC
//   - Read-through hydration of accounts from a remote RPC node
//   - Background eviction of forks older than the retention window
//   - Prometheus metrics on /metrics
//
// Usage:
//
//	forkmesh-server [flags]
//	forkmesh-server --config /path/to/config.yaml
//	forkmesh-server --addr 0.0.0.0:3000 --remote-url http://localhost:8899
//
// Configuration is layered: built-in defaults, the YAML file, FORKMESH_*
// environment variables, then command-line flags.
package main
