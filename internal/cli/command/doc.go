// Package command provides CLI command definitions for forkmesh-cli.
//
// Command groups:
//
//   - fork: create, list, get, revoke and history of forks
//   - balance, token, account, blockhash: ledger reads and cheat writes
//   - tx: submit raw transactions or build signed transfers
//   - keygen: write an ed25519 keypair file
//   - system / status: server status, health and eviction
//   - config: show CLI settings, check a server config file
//
// Every command honours the global --output flag (table, json, yaml).
package command
