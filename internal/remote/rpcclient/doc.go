// Package rpcclient fetches account state from a live Solana JSON-RPC node.
//
// Every call is paced by a token-bucket limiter, bounded by a per-attempt
// timeout, retried with exponential backoff on transport errors, HTTP 429
// and 5xx, and guarded by a circuit breaker that fails fast once the node
// keeps failing. JSON-RPC level errors are returned without retry.
package rpcclient
