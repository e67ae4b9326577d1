package command

import (
	"fmt"
	"net/url"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/forkmesh-go/internal/cli/output"
	"github.com/yndnr/forkmesh-go/internal/core/domain"
	"github.com/yndnr/forkmesh-go/internal/server/httpserver/handler"
)

// ForkCommand returns the fork subcommand group.
func ForkCommand() *cli.Command {
	return &cli.Command{
		Name:  "fork",
		Usage: "Manage forks",
		Subcommands: []*cli.Command{
			{
				Name:   "create",
				Usage:  "Create an empty fork",
				Action: forkCreate,
			},
			{
				Name:    "list",
				Aliases: []string{"ls"},
				Usage:   "List live forks",
				Action:  forkList,
			},
			{
				Name:      "get",
				Usage:     "Show fork metadata",
				ArgsUsage: "FORK_ID",
				Action:    forkGet,
			},
			{
				Name:      "revoke",
				Aliases:   []string{"rm"},
				Usage:     "Drop a fork immediately",
				ArgsUsage: "FORK_ID",
				Action:    forkRevoke,
			},
			{
				Name:      "history",
				Usage:     "Show the transaction history of a fork",
				ArgsUsage: "FORK_ID",
				Action:    forkHistory,
			},
		},
	}
}

func forkPath(id string, suffix string) string {
	return "/fork/" + url.PathEscape(id) + suffix
}

func forkCreate(c *cli.Context) error {
	client, err := EnsureConnected(c)
	if err != nil {
		return err
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	var info domain.ForkInfo
	if err := client.PostJSON(ctx, "/fork/create", nil, &info); err != nil {
		return err
	}
	return render(c, info)
}

func forkList(c *cli.Context) error {
	client, err := EnsureConnected(c)
	if err != nil {
		return err
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	var result handler.ListForksResponse
	if err := client.GetJSON(ctx, "/forks", &result); err != nil {
		return err
	}

	if ParseGlobalFlags(c).Output != output.FormatTable {
		return render(c, result)
	}
	if err := render(c, result.Items); err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "\nTotal: %d forks\n", result.Total)
	return nil
}

func forkGet(c *cli.Context) error {
	id, err := argAt(c, 0, "FORK_ID")
	if err != nil {
		return err
	}
	client, err := EnsureConnected(c)
	if err != nil {
		return err
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	var info domain.ForkInfo
	if err := client.GetJSON(ctx, forkPath(id, ""), &info); err != nil {
		return err
	}
	return render(c, info)
}

func forkRevoke(c *cli.Context) error {
	id, err := argAt(c, 0, "FORK_ID")
	if err != nil {
		return err
	}
	client, err := EnsureConnected(c)
	if err != nil {
		return err
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	var result handler.RevokeForkResponse
	if err := client.PostJSON(ctx, forkPath(id, "/revoke"), nil, &result); err != nil {
		return err
	}
	return render(c, result)
}

func forkHistory(c *cli.Context) error {
	id, err := argAt(c, 0, "FORK_ID")
	if err != nil {
		return err
	}
	client, err := EnsureConnected(c)
	if err != nil {
		return err
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	var result handler.TransactionsResponse
	if err := client.GetJSON(ctx, forkPath(id, "/transactions"), &result); err != nil {
		return err
	}
	if ParseGlobalFlags(c).Output != output.FormatTable {
		return render(c, result)
	}
	return render(c, result.Transactions)
}
