package command

import (
	"fmt"
	"strconv"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/forkmesh-go/internal/server/httpserver/handler"
)

// BalanceView is a lamport balance of one account.
type BalanceView struct {
	Address  string `json:"address"`
	Lamports uint64 `json:"lamports"`
}

// TokenBalanceView is the token amount held by owner's associated account.
type TokenBalanceView struct {
	Owner  string `json:"owner"`
	Mint   string `json:"mint"`
	Amount uint64 `json:"amount"`
}

// AccountView is an account as shown by account get.
type AccountView struct {
	Address    string              `json:"address"`
	Lamports   uint64              `json:"lamports"`
	Owner      string              `json:"owner"`
	Executable bool                `json:"executable"`
	RentEpoch  uint64              `json:"rent_epoch" table:"wide"`
	Data       handler.EncodedData `json:"data"`
}

// BalanceCommand returns the balance subcommand group.
func BalanceCommand() *cli.Command {
	return &cli.Command{
		Name:    "balance",
		Aliases: []string{"bal"},
		Usage:   "Read or overwrite lamport balances",
		Subcommands: []*cli.Command{
			{
				Name:      "get",
				Usage:     "Show an account's lamports, hydrating it from the remote ledger",
				ArgsUsage: "FORK_ID ADDRESS",
				Action:    balanceGet,
			},
			{
				Name:      "set",
				Usage:     "Overwrite an account's lamports",
				ArgsUsage: "FORK_ID ADDRESS LAMPORTS",
				Action:    balanceSet,
			},
		},
	}
}

// TokenCommand returns the token subcommand group.
func TokenCommand() *cli.Command {
	return &cli.Command{
		Name:  "token",
		Usage: "Read or overwrite associated token account balances",
		Subcommands: []*cli.Command{
			{
				Name:      "get",
				Usage:     "Show the amount in owner's associated token account",
				ArgsUsage: "FORK_ID OWNER MINT",
				Action:    tokenGet,
			},
			{
				Name:      "set",
				Usage:     "Overwrite the amount in owner's associated token account",
				ArgsUsage: "FORK_ID OWNER MINT AMOUNT",
				Action:    tokenSet,
			},
		},
	}
}

// AccountCommand returns the account subcommand group.
func AccountCommand() *cli.Command {
	return &cli.Command{
		Name:    "account",
		Aliases: []string{"acct"},
		Usage:   "Inspect or pre-load accounts",
		Subcommands: []*cli.Command{
			{
				Name:      "get",
				Usage:     "Show a full account",
				ArgsUsage: "FORK_ID ADDRESS",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "encoding",
						Value: handler.EncodingBase58,
						Usage: "Data encoding: base58, base64",
					},
				},
				Action: accountGet,
			},
			{
				Name:      "load",
				Usage:     "Hydrate accounts from the remote ledger without reading them",
				ArgsUsage: "FORK_ID ADDRESS...",
				Action:    accountLoad,
			},
		},
	}
}

// BlockhashCommand returns the blockhash command.
func BlockhashCommand() *cli.Command {
	return &cli.Command{
		Name:      "blockhash",
		Usage:     "Show the fork's current blockhash",
		ArgsUsage: "FORK_ID",
		Action:    blockhashGet,
	}
}

func parseAmount(s, name string) (uint64, error) {
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: must be an unsigned integer", name, s)
	}
	return v, nil
}

func balanceGet(c *cli.Context) error {
	id, err := argAt(c, 0, "FORK_ID")
	if err != nil {
		return err
	}
	address, err := argAt(c, 1, "ADDRESS")
	if err != nil {
		return err
	}
	client, err := EnsureConnected(c)
	if err != nil {
		return err
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	view := BalanceView{Address: address}
	if err := client.Call(ctx, id, "getBalance", []any{address}, &view.Lamports); err != nil {
		return err
	}
	return render(c, view)
}

func balanceSet(c *cli.Context) error {
	id, err := argAt(c, 0, "FORK_ID")
	if err != nil {
		return err
	}
	address, err := argAt(c, 1, "ADDRESS")
	if err != nil {
		return err
	}
	raw, err := argAt(c, 2, "LAMPORTS")
	if err != nil {
		return err
	}
	lamports, err := parseAmount(raw, "LAMPORTS")
	if err != nil {
		return err
	}
	client, err := EnsureConnected(c)
	if err != nil {
		return err
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	if err := client.Call(ctx, id, "set_balance", []any{address, lamports}, nil); err != nil {
		return err
	}
	return render(c, BalanceView{Address: address, Lamports: lamports})
}

func tokenGet(c *cli.Context) error {
	id, err := argAt(c, 0, "FORK_ID")
	if err != nil {
		return err
	}
	owner, err := argAt(c, 1, "OWNER")
	if err != nil {
		return err
	}
	mint, err := argAt(c, 2, "MINT")
	if err != nil {
		return err
	}
	client, err := EnsureConnected(c)
	if err != nil {
		return err
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	view := TokenBalanceView{Owner: owner, Mint: mint}
	if err := client.Call(ctx, id, "get_token_balance", []any{owner, mint}, &view.Amount); err != nil {
		return err
	}
	return render(c, view)
}

func tokenSet(c *cli.Context) error {
	id, err := argAt(c, 0, "FORK_ID")
	if err != nil {
		return err
	}
	owner, err := argAt(c, 1, "OWNER")
	if err != nil {
		return err
	}
	mint, err := argAt(c, 2, "MINT")
	if err != nil {
		return err
	}
	raw, err := argAt(c, 3, "AMOUNT")
	if err != nil {
		return err
	}
	amount, err := parseAmount(raw, "AMOUNT")
	if err != nil {
		return err
	}
	client, err := EnsureConnected(c)
	if err != nil {
		return err
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	if err := client.Call(ctx, id, "set_token_balance", []any{owner, mint, amount}, nil); err != nil {
		return err
	}
	return render(c, TokenBalanceView{Owner: owner, Mint: mint, Amount: amount})
}

func accountGet(c *cli.Context) error {
	id, err := argAt(c, 0, "FORK_ID")
	if err != nil {
		return err
	}
	address, err := argAt(c, 1, "ADDRESS")
	if err != nil {
		return err
	}
	client, err := EnsureConnected(c)
	if err != nil {
		return err
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	var result struct {
		Value *handler.AccountValue `json:"value"`
	}
	params := []any{address, map[string]string{"encoding": c.String("encoding")}}
	if err := client.Call(ctx, id, "getAccountInfo", params, &result); err != nil {
		return err
	}
	if result.Value == nil {
		return fmt.Errorf("account %s does not exist on fork %s", address, id)
	}
	v := result.Value
	return render(c, AccountView{
		Address:    address,
		Lamports:   v.Lamports,
		Owner:      v.Owner,
		Executable: v.Executable,
		RentEpoch:  v.RentEpoch,
		Data:       v.Data,
	})
}

func accountLoad(c *cli.Context) error {
	id, err := argAt(c, 0, "FORK_ID")
	if err != nil {
		return err
	}
	if _, err := argAt(c, 1, "ADDRESS"); err != nil {
		return err
	}
	addresses := c.Args().Slice()[1:]

	client, err := EnsureConnected(c)
	if err != nil {
		return err
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	params := map[string]any{"addresses": addresses}
	if err := client.Call(ctx, id, "load_account", params, nil); err != nil {
		return err
	}
	return render(c, map[string]any{"fork_id": id, "loaded": len(addresses)})
}

func blockhashGet(c *cli.Context) error {
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

	var result handler.BlockhashValue
	if err := client.Call(ctx, id, "getLatestBlockhash", nil, &result); err != nil {
		return err
	}
	return render(c, result)
}
