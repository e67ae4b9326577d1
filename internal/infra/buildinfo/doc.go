// Package buildinfo carries version data injected at link time:
//
//	go build -ldflags "-X github.com/yndnr/forkmesh-go/internal/infra/buildinfo.Version=v0.3.0"
//
// Commit and build time fall back to the VCS stamp the Go toolchain embeds
// when ldflags leave them unset.
package buildinfo
