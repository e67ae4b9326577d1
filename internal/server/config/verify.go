package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"strings"
)

var validCommitments = map[string]bool{"processed": true, "confirmed": true, "finalized": true}

var validLogLevels = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}

// Verify validates the configuration and reports every problem found.
func Verify(cfg *ServerConfig) error {
	var errs []error
	errs = append(errs, verifyHTTP(&cfg.Server.HTTP)...)
	errs = append(errs, verifyFork(&cfg.Fork)...)
	errs = append(errs, verifyRemote(&cfg.Remote)...)
	errs = append(errs, verifyLog(&cfg.Log)...)
	return errors.Join(errs...)
}

func verifyHTTP(c *HTTPConfig) []error {
	var errs []error
	if _, _, err := net.SplitHostPort(c.Addr); err != nil {
		errs = append(errs, fmt.Errorf("server.http.addr %q: %w", c.Addr, err))
	}
	if (c.TLSCertFile == "") != (c.TLSKeyFile == "") {
		errs = append(errs, errors.New("server.http.tls_cert_file and tls_key_file must be set together"))
	}
	for _, f := range []string{c.TLSCertFile, c.TLSKeyFile} {
		if f == "" {
			continue
		}
		if _, err := os.Stat(f); err != nil {
			errs = append(errs, fmt.Errorf("server.http TLS file: %w", err))
		}
	}
	if c.RateLimit < 0 {
		errs = append(errs, errors.New("server.http.rate_limit must not be negative"))
	}
	return errs
}

func verifyFork(c *ForkSection) []error {
	var errs []error
	if c.Retention <= 0 {
		errs = append(errs, errors.New("fork.retention must be positive"))
	}
	if c.SweepInterval <= 0 {
		errs = append(errs, errors.New("fork.sweep_interval must be positive"))
	}
	return errs
}

func verifyRemote(c *RemoteSection) []error {
	var errs []error
	u, err := url.Parse(c.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, fmt.Errorf("remote.url %q must be an http(s) URL", c.URL))
	}
	if !validCommitments[c.Commitment] {
		errs = append(errs, fmt.Errorf("remote.commitment %q must be processed, confirmed or finalized", c.Commitment))
	}
	if c.Timeout <= 0 {
		errs = append(errs, errors.New("remote.timeout must be positive"))
	}
	if c.RateLimit <= 0 || c.RateBurst <= 0 {
		errs = append(errs, errors.New("remote.rate_limit and remote.rate_burst must be positive"))
	}
	if c.CAFile != "" {
		if _, err := os.Stat(c.CAFile); err != nil {
			errs = append(errs, fmt.Errorf("remote.ca_file: %w", err))
		}
	}
	return errs
}

func verifyLog(c *LogSection) []error {
	var errs []error
	if !validLogLevels[strings.ToLower(c.Level)] {
		errs = append(errs, fmt.Errorf("log.level %q is not one of debug, info, warn, error", c.Level))
	}
	switch strings.ToLower(c.Format) {
	case "json", "text", "console":
	default:
		errs = append(errs, fmt.Errorf("log.format %q is not json or text", c.Format))
	}
	return errs
}
