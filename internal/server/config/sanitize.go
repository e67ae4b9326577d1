package config

import (
	"github.com/yndnr/forkmesh-go/internal/telemetry/logger"
)

// Sanitize returns a copy of the config that is safe to log. RPC provider
// URLs often carry an API key in the query string or userinfo.
func Sanitize(cfg *ServerConfig) *ServerConfig {
	sanitized := *cfg
	sanitized.Remote.URL = logger.RedactString(cfg.Remote.URL)
	sanitized.Server.HTTP.CORSAllowedOrigins = append([]string(nil), cfg.Server.HTTP.CORSAllowedOrigins...)
	return &sanitized
}
