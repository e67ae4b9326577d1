package config

import "time"

// CLIConfig is the configuration for forkmesh-cli.
type CLIConfig struct {
	// Server is the forkmesh-server base URL.
	Server string `koanf:"server" json:"server"`

	// CAFile is an extra PEM bundle trusted for https servers.
	CAFile string `koanf:"ca_file" json:"ca_file"`

	// Output is the default output format: table, json, yaml.
	Output string `koanf:"output" json:"output"`

	// Keypair is the default signer for tx transfer.
	Keypair string `koanf:"keypair" json:"keypair"`

	// Timeout bounds each request.
	Timeout time.Duration `koanf:"timeout" json:"timeout"`
}

// Defaults.
const (
	DefaultServer  = "http://127.0.0.1:3000"
	DefaultOutput  = "table"
	DefaultTimeout = 30 * time.Second
)

// Default returns the default CLI configuration.
func Default() *CLIConfig {
	return &CLIConfig{
		Server:  DefaultServer,
		Output:  DefaultOutput,
		Timeout: DefaultTimeout,
	}
}
