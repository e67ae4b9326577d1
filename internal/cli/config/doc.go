// Package config provides forkmesh-cli configuration.
//
//   - spec.go: CLIConfig struct (~/.forkmesh/cli.yaml)
//   - loader.go: layered loading through confloader
//
// Sources, lowest priority first: defaults, the YAML file, FORKMESH_CLI_*
// environment variables, then command-line flags.
package config
