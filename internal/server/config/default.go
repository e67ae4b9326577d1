package config

import "time"

// Default configuration values.
const (
	DefaultHTTPAddr         = "127.0.0.1:3000"
	DefaultHTTPRateLimit    = 200
	DefaultHTTPReadTimeout  = 30 * time.Second
	DefaultHTTPWriteTimeout = 60 * time.Second

	DefaultForkRetention     = 15 * time.Minute
	DefaultForkSweepInterval = 60 * time.Second

	DefaultRemoteURL             = "https://api.mainnet-beta.solana.com"
	DefaultRemoteCommitment      = "confirmed"
	DefaultRemoteTimeout         = 10 * time.Second
	DefaultRemoteMaxRetries      = 2
	DefaultRemoteRetryBase       = 200 * time.Millisecond
	DefaultRemoteRateLimit       = 8
	DefaultRemoteRateBurst       = 4
	DefaultRemoteBreakerFailures = 5
	DefaultRemoteBreakerOpen     = 30 * time.Second

	DefaultLamportsPerSignature = 5000

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
)

// Default returns the default server configuration.
func Default() *ServerConfig {
	return &ServerConfig{
		Server: ServerSection{
			HTTP: HTTPConfig{
				Addr:         DefaultHTTPAddr,
				RateLimit:    DefaultHTTPRateLimit,
				ReadTimeout:  DefaultHTTPReadTimeout,
				WriteTimeout: DefaultHTTPWriteTimeout,
			},
		},
		Fork: ForkSection{
			Retention:     DefaultForkRetention,
			SweepInterval: DefaultForkSweepInterval,
		},
		Remote: RemoteSection{
			URL:             DefaultRemoteURL,
			Commitment:      DefaultRemoteCommitment,
			Timeout:         DefaultRemoteTimeout,
			MaxRetries:      DefaultRemoteMaxRetries,
			RetryBase:       DefaultRemoteRetryBase,
			RateLimit:       DefaultRemoteRateLimit,
			RateBurst:       DefaultRemoteRateBurst,
			BreakerFailures: DefaultRemoteBreakerFailures,
			BreakerOpen:     DefaultRemoteBreakerOpen,
		},
		Engine: EngineSection{
			LamportsPerSignature: DefaultLamportsPerSignature,
		},
		Metrics: MetricsSection{
			Enabled: true,
		},
		Log: LogSection{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}
