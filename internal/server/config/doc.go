// Package config defines the forkmesh-server configuration.
//
//   - spec.go: ServerConfig and its sections, with koanf tags
//   - default.go: default values
//   - verify.go: validation run after loading
//   - sanitize.go: a copy safe to log
//
// Loading is done by internal/infra/confloader.
package config
