package command

import (
	"fmt"

	"github.com/mr-tron/base58"
	"github.com/urfave/cli/v2"

	"github.com/yndnr/forkmesh-go/internal/cli/config"
	"github.com/yndnr/forkmesh-go/internal/server/httpserver/handler"
	"github.com/yndnr/forkmesh-go/pkg/solana"
)

// TxView is the outcome of tx send or tx transfer.
type TxView struct {
	Signature   string `json:"signature"`
	Submitted   bool   `json:"submitted"`
	Transaction string `json:"transaction,omitempty" table:"wide"`
}

// TxCommand returns the tx subcommand group.
func TxCommand() *cli.Command {
	return &cli.Command{
		Name:  "tx",
		Usage: "Submit or build transactions",
		Subcommands: []*cli.Command{
			{
				Name:      "send",
				Usage:     "Execute a signed wire-format transaction on a fork",
				ArgsUsage: "FORK_ID TRANSACTION",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "encoding",
						Value: handler.EncodingBase58,
						Usage: "TRANSACTION encoding: base58, base64",
					},
				},
				Action: txSend,
			},
			{
				Name:      "transfer",
				Usage:     "Build and sign a system transfer using the fork's blockhash",
				ArgsUsage: "FORK_ID",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "keypair",
						Aliases: []string{"k"},
						Usage:   "Signer keypair file (default from CLI config, then ~/.forkmesh/id.json)",
					},
					&cli.StringFlag{
						Name:     "to",
						Usage:    "Recipient address",
						Required: true,
					},
					&cli.Uint64Flag{
						Name:     "lamports",
						Usage:    "Amount to transfer",
						Required: true,
					},
					&cli.BoolFlag{
						Name:  "submit",
						Usage: "Send the transaction instead of only printing it",
					},
					passphraseEnvFlag(),
				},
				Action: txTransfer,
			},
		},
	}
}

func txSend(c *cli.Context) error {
	id, err := argAt(c, 0, "FORK_ID")
	if err != nil {
		return err
	}
	encoded, err := argAt(c, 1, "TRANSACTION")
	if err != nil {
		return err
	}
	client, err := EnsureConnected(c)
	if err != nil {
		return err
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	view := TxView{Submitted: true}
	params := []any{encoded, map[string]string{"encoding": c.String("encoding")}}
	if err := client.Call(ctx, id, "sendTransaction", params, &view.Signature); err != nil {
		return err
	}
	return render(c, view)
}

func txTransfer(c *cli.Context) error {
	id, err := argAt(c, 0, "FORK_ID")
	if err != nil {
		return err
	}
	to, err := solana.ParsePubkey(c.String("to"))
	if err != nil {
		return fmt.Errorf("invalid --to: %w", err)
	}

	path := c.String("keypair")
	if path == "" {
		path = ParseGlobalFlags(c).Keypair
	}
	if path == "" {
		path = config.DefaultKeypairPath()
	}
	passphrase, err := passphraseFrom(c)
	if err != nil {
		return err
	}
	priv, from, err := readKeypair(path, passphrase)
	if err != nil {
		return err
	}

	client, err := EnsureConnected(c)
	if err != nil {
		return err
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	var latest handler.BlockhashValue
	if err := client.Call(ctx, id, "getLatestBlockhash", nil, &latest); err != nil {
		return err
	}
	blockhash, err := solana.ParseHash(latest.Blockhash)
	if err != nil {
		return fmt.Errorf("server returned bad blockhash: %w", err)
	}

	tx, err := solana.NewTransferTransaction(from, to, c.Uint64("lamports"), blockhash)
	if err != nil {
		return fmt.Errorf("build transfer: %w", err)
	}
	if err := tx.Sign(priv); err != nil {
		return fmt.Errorf("sign transfer: %w", err)
	}
	sig, _ := tx.Signature()
	view := TxView{
		Signature:   sig.String(),
		Transaction: base58.Encode(tx.Serialize()),
	}

	if c.Bool("submit") {
		if err := client.Call(ctx, id, "sendTransaction", []any{view.Transaction}, &view.Signature); err != nil {
			return err
		}
		view.Submitted = true
	}
	return render(c, view)
}
