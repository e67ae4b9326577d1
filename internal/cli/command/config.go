package command

import (
	"fmt"

	"github.com/urfave/cli/v2"

	cliconfig "github.com/yndnr/forkmesh-go/internal/cli/config"
	"github.com/yndnr/forkmesh-go/internal/infra/confloader"
	"github.com/yndnr/forkmesh-go/internal/server/config"
)

// ConfigCommand returns the config subcommand group.
func ConfigCommand() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Configuration management",
		Subcommands: []*cli.Command{
			{
				Name:   "show",
				Usage:  "Show the effective CLI configuration",
				Action: configShow,
			},
			{
				Name:      "check",
				Aliases:   []string{"test"},
				Usage:     "Validate a forkmesh-server configuration file",
				ArgsUsage: "FILE",
				Action:    configCheck,
			},
		},
	}
}

func configShow(c *cli.Context) error {
	cfg := *ParseGlobalFlags(c).Config
	path := c.String("config")
	if path == "" {
		path = cliconfig.DefaultConfigPath()
	}
	return render(c, map[string]any{
		"file":    path,
		"server":  cfg.Server,
		"ca_file": cfg.CAFile,
		"output":  cfg.Output,
		"keypair": cfg.Keypair,
		"timeout": cfg.Timeout.String(),
	})
}

// configCheck loads FILE the way forkmesh-server does, environment
// included, and prints the sanitized result.
func configCheck(c *cli.Context) error {
	path, err := argAt(c, 0, "FILE")
	if err != nil {
		return err
	}

	cfg := config.Default()
	if err := confloader.NewLoader(confloader.WithConfigFile(path)).Load(cfg); err != nil {
		return err
	}
	if err := config.Verify(cfg); err != nil {
		return fmt.Errorf("%s is invalid:\n%w", path, err)
	}
	return render(c, config.Sanitize(cfg))
}
