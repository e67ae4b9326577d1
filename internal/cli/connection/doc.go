// Package connection talks to a forkmesh-server over HTTP.
//
//   - http.go: REST calls and the response envelope
//   - rpc.go: JSON-RPC calls against one fork
package connection
