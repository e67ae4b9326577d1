package config

import "time"

// ServerConfig is the root configuration for forkmesh-server.
type ServerConfig struct {
	Server  ServerSection  `koanf:"server"`
	Fork    ForkSection    `koanf:"fork"`
	Remote  RemoteSection  `koanf:"remote"`
	Engine  EngineSection  `koanf:"engine"`
	Metrics MetricsSection `koanf:"metrics"`
	Log     LogSection     `koanf:"log"`
}

// ServerSection configures server endpoints.
type ServerSection struct {
	HTTP HTTPConfig `koanf:"http"`
}

// HTTPConfig configures the HTTP server.
type HTTPConfig struct {
	Addr        string `koanf:"addr"`
	TLSCertFile string `koanf:"tls_cert_file"`
	TLSKeyFile  string `koanf:"tls_key_file"`

	// RateLimit is requests per second per client IP. Zero disables limiting.
	RateLimit float64 `koanf:"rate_limit"`

	CORSAllowedOrigins []string      `koanf:"cors_allowed_origins"`
	ReadTimeout        time.Duration `koanf:"read_timeout"`
	WriteTimeout       time.Duration `koanf:"write_timeout"`
}

// TLSEnabled reports whether both certificate files are configured.
func (c HTTPConfig) TLSEnabled() bool {
	return c.TLSCertFile != "" && c.TLSKeyFile != ""
}

// ForkSection configures fork lifetime.
type ForkSection struct {
	Retention     time.Duration `koanf:"retention"`
	SweepInterval time.Duration `koanf:"sweep_interval"`
}

// RemoteSection configures the remote ledger client.
type RemoteSection struct {
	URL        string        `koanf:"url"`
	Commitment string        `koanf:"commitment"`
	Timeout    time.Duration `koanf:"timeout"`
	MaxRetries uint64        `koanf:"max_retries"`
	RetryBase  time.Duration `koanf:"retry_base"`

	RateLimit float64 `koanf:"rate_limit"`
	RateBurst int     `koanf:"rate_burst"`

	BreakerFailures uint32        `koanf:"breaker_failures"`
	BreakerOpen     time.Duration `koanf:"breaker_open"`

	// CAFile is an extra PEM bundle trusted on top of the system roots.
	CAFile string `koanf:"ca_file"`
}

// EngineSection configures the per-fork execution engine.
type EngineSection struct {
	LamportsPerSignature uint64 `koanf:"lamports_per_signature"`
}

// MetricsSection configures the Prometheus endpoint.
type MetricsSection struct {
	Enabled bool `koanf:"enabled"`
}

// LogSection configures logging. Level is reloaded when the config file changes.
type LogSection struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}
