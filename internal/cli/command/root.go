package command

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/forkmesh-go/internal/cli/config"
	"github.com/yndnr/forkmesh-go/internal/cli/connection"
	"github.com/yndnr/forkmesh-go/internal/cli/output"
	"github.com/yndnr/forkmesh-go/internal/infra/buildinfo"
	"github.com/yndnr/forkmesh-go/internal/infra/tlsroots"
)

const metaConfig = "cliConfig"

// App creates the CLI application.
func App() *cli.App {
	return &cli.App{
		Name:    "forkmesh-cli",
		Usage:   "Drive disposable ledger forks on a forkmesh-server",
		Version: buildinfo.String(),
		Flags:   globalFlags(),
		Commands: []*cli.Command{
			ForkCommand(),
			BalanceCommand(),
			TokenCommand(),
			AccountCommand(),
			BlockhashCommand(),
			TxCommand(),
			KeygenCommand(),
			StatusCommand(),
			SystemCommand(),
			ConfigCommand(),
		},
		Before: loadConfig,
	}
}

// globalFlags returns the global CLI flags.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Usage:   "CLI config file (default ~/.forkmesh/cli.yaml)",
			EnvVars: []string{"FORKMESH_CLI_CONFIG"},
		},
		&cli.StringFlag{
			Name:    "server",
			Aliases: []string{"s"},
			Usage:   "forkmesh-server address (e.g., http://127.0.0.1:3000)",
		},
		&cli.StringFlag{
			Name:  "ca-file",
			Usage: "Extra PEM bundle trusted for https servers",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Output format: table, json, yaml",
		},
		&cli.BoolFlag{
			Name:    "wide",
			Aliases: []string{"w"},
			Usage:   "Show wide output (more columns)",
		},
		&cli.DurationFlag{
			Name:  "timeout",
			Usage: "Per-request timeout",
		},
	}
}

// loadConfig resolves the CLI configuration once per invocation.
func loadConfig(c *cli.Context) error {
	overrides := map[string]any{}
	for flag, key := range map[string]string{
		"server":  "server",
		"ca-file": "ca_file",
		"output":  "output",
	} {
		if c.IsSet(flag) {
			overrides[key] = c.String(flag)
		}
	}
	if c.IsSet("timeout") {
		overrides["timeout"] = c.Duration("timeout").String()
	}

	cfg, err := config.Load(c.String("config"), overrides)
	if err != nil {
		return fmt.Errorf("load CLI config: %w", err)
	}
	if c.App.Metadata == nil {
		c.App.Metadata = map[string]any{}
	}
	c.App.Metadata[metaConfig] = cfg
	return nil
}

// GlobalFlags is the resolved view of global flags and CLI config.
type GlobalFlags struct {
	Server  string
	CAFile  string
	Output  output.Format
	Wide    bool
	Keypair string
	Config  *config.CLIConfig
}

// ParseGlobalFlags extracts global settings from context.
func ParseGlobalFlags(c *cli.Context) *GlobalFlags {
	cfg, ok := c.App.Metadata[metaConfig].(*config.CLIConfig)
	if !ok {
		cfg = config.Default()
	}
	format, err := output.ParseFormat(cfg.Output)
	if err != nil {
		format = output.FormatTable
	}
	return &GlobalFlags{
		Server:  cfg.Server,
		CAFile:  cfg.CAFile,
		Output:  format,
		Wide:    c.Bool("wide"),
		Keypair: cfg.Keypair,
		Config:  cfg,
	}
}

// EnsureConnected returns an HTTP client for the configured server.
func EnsureConnected(c *cli.Context) (*connection.HTTPClient, error) {
	flags := ParseGlobalFlags(c)

	opts := []connection.Option{connection.WithTimeout(flags.Config.Timeout)}
	if flags.CAFile != "" {
		pool, err := tlsroots.NewPool(flags.CAFile)
		if err != nil {
			return nil, fmt.Errorf("load CA file: %w", err)
		}
		opts = append(opts, connection.WithTLSConfig(pool.ClientConfig()))
	}
	return connection.NewHTTPClient(flags.Server, opts...), nil
}

// requestContext bounds one command's server round trips.
func requestContext(c *cli.Context) (context.Context, context.CancelFunc) {
	timeout := ParseGlobalFlags(c).Config.Timeout
	if timeout <= 0 {
		timeout = config.DefaultTimeout
	}
	return context.WithTimeout(c.Context, timeout)
}

// render writes data in the selected output format.
func render(c *cli.Context, data any) error {
	flags := ParseGlobalFlags(c)
	return output.NewFormatter(flags.Output, flags.Wide).Format(c.App.Writer, data)
}

// argAt returns the positional argument at i or a usage error.
func argAt(c *cli.Context, i int, name string) (string, error) {
	if c.NArg() <= i || c.Args().Get(i) == "" {
		return "", fmt.Errorf("%s is required (usage: %s %s)", name, c.Command.HelpName, c.Command.ArgsUsage)
	}
	return c.Args().Get(i), nil
}

// PrintError prints an error message to stderr.
func PrintError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "error: "+format+"\n", args...)
}
