package command

import (
	"errors"
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/forkmesh-go/internal/cli/connection"
	"github.com/yndnr/forkmesh-go/internal/server/httpserver/handler"
)

// HealthView is the result of a health or readiness probe.
type HealthView struct {
	Server string `json:"server"`
	Status string `json:"status"`
	Time   string `json:"time,omitempty"`
}

// StatusCommand returns the top-level status shortcut.
func StatusCommand() *cli.Command {
	return &cli.Command{
		Name:   "status",
		Usage:  "Show server status (same as system status)",
		Action: systemStatus,
	}
}

// SystemCommand returns the system subcommand group.
func SystemCommand() *cli.Command {
	return &cli.Command{
		Name:    "system",
		Aliases: []string{"sys"},
		Usage:   "Server administration",
		Subcommands: []*cli.Command{
			{
				Name:   "status",
				Usage:  "Show version, active forks and retention",
				Action: systemStatus,
			},
			{
				Name:   "health",
				Usage:  "Check server liveness",
				Action: systemProbe("/health"),
			},
			{
				Name:   "ready",
				Usage:  "Check server readiness (remote ledger reachable)",
				Action: systemProbe("/ready"),
			},
			{
				Name:   "gc",
				Usage:  "Evict expired forks now",
				Action: systemGC,
			},
		},
	}
}

func systemStatus(c *cli.Context) error {
	client, err := EnsureConnected(c)
	if err != nil {
		return err
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	var result handler.StatusSummaryResponse
	if err := client.GetJSON(ctx, "/admin/v1/status/summary", &result); err != nil {
		return err
	}
	return render(c, result)
}

func systemProbe(path string) cli.ActionFunc {
	return func(c *cli.Context) error {
		client, err := EnsureConnected(c)
		if err != nil {
			return err
		}
		ctx, cancel := requestContext(c)
		defer cancel()

		view := HealthView{Server: client.BaseURL()}
		err = client.GetJSON(ctx, path, &view)
		view.Server = client.BaseURL()

		var apiErr *connection.APIError
		if errors.As(err, &apiErr) {
			view.Status = "unavailable"
			if rerr := render(c, view); rerr != nil {
				return rerr
			}
			return fmt.Errorf("server not ready: %w", err)
		}
		if err != nil {
			return err
		}
		return render(c, view)
	}
}

func systemGC(c *cli.Context) error {
	client, err := EnsureConnected(c)
	if err != nil {
		return err
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	var result handler.GCTriggerResponse
	if err := client.PostJSON(ctx, "/admin/v1/gc/trigger", nil, &result); err != nil {
		return err
	}
	return render(c, result)
}
