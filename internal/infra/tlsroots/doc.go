// Package tlsroots builds TLS configuration for both sides of the server.
//
//   - roots.go: trusted roots for outbound calls to the remote ledger
//     (system pool plus optional PEM bundles).
//   - reloader.go: the listener's certificate, reloaded via fsnotify when
//     the cert or key file changes on disk.
package tlsroots
