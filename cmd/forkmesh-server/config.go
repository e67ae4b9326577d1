package main

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/forkmesh-go/internal/infra/confloader"
	"github.com/yndnr/forkmesh-go/internal/server/config"
	"github.com/yndnr/forkmesh-go/internal/telemetry/logger"
)

// serverFlags returns the command-line flags. Every flag except --config
// overrides one configuration key.
func serverFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Path to configuration file",
			EnvVars: []string{"FORKMESH_CONFIG"},
		},
		&cli.StringFlag{
			Name:  "addr",
			Usage: "HTTP listen address (server.http.addr)",
		},
		&cli.StringFlag{
			Name:  "remote-url",
			Usage: "Remote ledger JSON-RPC URL (remote.url)",
		},
		&cli.DurationFlag{
			Name:  "retention",
			Usage: "Fork lifetime before eviction (fork.retention)",
		},
		&cli.StringFlag{
			Name:  "log-level",
			Usage: "Log level: debug, info, warn, error (log.level)",
		},
		&cli.StringFlag{
			Name:  "log-format",
			Usage: "Log format: json, text (log.format)",
		},
		&cli.BoolFlag{
			Name:  "no-metrics",
			Usage: "Disable the /metrics endpoint (metrics.enabled=false)",
		},
	}
}

// flagOverrides collects the flags that were set explicitly.
func flagOverrides(c *cli.Context) map[string]any {
	out := map[string]any{}
	if c.IsSet("addr") {
		out["server.http.addr"] = c.String("addr")
	}
	if c.IsSet("remote-url") {
		out["remote.url"] = c.String("remote-url")
	}
	if c.IsSet("retention") {
		out["fork.retention"] = c.Duration("retention").String()
	}
	if c.IsSet("log-level") {
		out["log.level"] = c.String("log-level")
	}
	if c.IsSet("log-format") {
		out["log.format"] = c.String("log-format")
	}
	if c.Bool("no-metrics") {
		out["metrics.enabled"] = false
	}
	return out
}

// loadConfig layers defaults, file, environment and overrides, then verifies.
func loadConfig(configFile string, overrides map[string]any) (*config.ServerConfig, error) {
	cfg := config.Default()

	opts := []confloader.Option{confloader.WithOverrides(overrides)}
	if configFile != "" {
		opts = append(opts, confloader.WithConfigFile(configFile))
	}

	if err := confloader.NewLoader(opts...).Load(cfg); err != nil {
		return nil, err
	}
	if err := config.Verify(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// reloadLogLevel re-reads the configuration file and applies log.level.
// Other keys need a restart.
func reloadLogLevel(path string, overrides map[string]any, log logger.Logger) {
	cfg, err := loadConfig(path, overrides)
	if err != nil {
		log.Warn("configuration reload rejected", "file", path, "error", err)
		return
	}
	if cfg.Log.Level == logger.GetLevel() {
		return
	}
	prev := logger.GetLevel()
	logger.SetLevel(cfg.Log.Level)
	log.Info("log level changed", "from", prev, "to", cfg.Log.Level)
}
