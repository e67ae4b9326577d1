package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/yndnr/forkmesh-go/internal/cli/output"
	"github.com/yndnr/forkmesh-go/internal/infra/confloader"
)

// EnvPrefix is the environment variable prefix for CLI settings.
const EnvPrefix = "FORKMESH_CLI_"

// DefaultConfigPath returns the default CLI config file path.
func DefaultConfigPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(homeDir, ".forkmesh", "cli.yaml")
}

// DefaultKeypairPath returns where keygen writes by default.
func DefaultKeypairPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "id.json"
	}
	return filepath.Join(homeDir, ".forkmesh", "id.json")
}

// Load layers the config file, environment and overrides over the defaults.
// An empty path means DefaultConfigPath; a missing default file is not an
// error, a missing explicit file is.
func Load(path string, overrides map[string]any) (*CLIConfig, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultConfigPath()
	}
	if path != "" {
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			if explicit {
				return nil, fmt.Errorf("config file %s not found", path)
			}
			path = ""
		}
	}

	cfg := Default()
	loader := confloader.NewLoader(
		confloader.WithConfigFile(path),
		confloader.WithEnvPrefix(EnvPrefix),
		confloader.WithOverrides(overrides),
	)
	if err := loader.Load(cfg); err != nil {
		return nil, err
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for obvious mistakes.
func Validate(cfg *CLIConfig) error {
	var errs []error
	if cfg.Server == "" {
		errs = append(errs, errors.New("server: must not be empty"))
	}
	if _, err := output.ParseFormat(cfg.Output); err != nil {
		errs = append(errs, fmt.Errorf("output: %w", err))
	}
	if cfg.Timeout < 0 {
		errs = append(errs, errors.New("timeout: must not be negative"))
	}
	return errors.Join(errs...)
}
