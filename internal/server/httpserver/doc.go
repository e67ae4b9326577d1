// Package httpserver provides the HTTP/HTTPS server for ForkMesh.
//
// This package exposes the fork store over stdlib net/http:
//
//   - Fork endpoints: /fork/create, /forks, /fork/{id}, /fork/{id}/revoke
//   - JSON-RPC endpoint: /fork/{id}/rpc
//   - Admin endpoints: /admin/v1/*
//   - Health endpoints: /health, /ready, /metrics
//
// Features:
//
//   - TLS with certificate reload from disk
//   - Middleware chain: Recover, RequestID, CORS, RateLimit, Metrics, Audit
//   - Graceful shutdown with configurable timeout
//   - Prometheus metrics integration
package httpserver
