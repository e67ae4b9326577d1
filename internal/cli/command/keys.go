package command

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/forkmesh-go/internal/cli/config"
	"github.com/yndnr/forkmesh-go/pkg/keystore"
	"github.com/yndnr/forkmesh-go/pkg/solana"
)

// KeypairView describes a keypair file without its secret.
type KeypairView struct {
	Pubkey    string `json:"pubkey"`
	Path      string `json:"path"`
	Encrypted bool   `json:"encrypted"`
}

// KeygenCommand returns the keygen command.
func KeygenCommand() *cli.Command {
	return &cli.Command{
		Name:  "keygen",
		Usage: "Generate an ed25519 keypair file",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "outfile",
				Aliases: []string{"f"},
				Usage:   "Keypair file to write (default ~/.forkmesh/id.json)",
			},
			&cli.BoolFlag{
				Name:  "force",
				Usage: "Overwrite an existing file",
			},
			passphraseEnvFlag(),
		},
		Action: keygen,
	}
}

func keygen(c *cli.Context) error {
	path := c.String("outfile")
	if path == "" {
		path = config.DefaultKeypairPath()
	}
	if !c.Bool("force") {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
	}

	passphrase, err := passphraseFrom(c)
	if err != nil {
		return err
	}

	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return fmt.Errorf("generate key: %w", err)
	}
	if err := writeKeypair(path, priv, passphrase); err != nil {
		return err
	}

	pub, err := solana.PubkeyFromBytes(priv.Public().(ed25519.PublicKey))
	if err != nil {
		return err
	}
	return render(c, KeypairView{Pubkey: pub.String(), Path: path, Encrypted: passphrase != nil})
}

func passphraseEnvFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  "passphrase-env",
		Usage: "Environment variable holding the keypair passphrase",
	}
}

// passphraseFrom returns the passphrase named by --passphrase-env, or nil
// when the flag is unset.
func passphraseFrom(c *cli.Context) ([]byte, error) {
	name := c.String("passphrase-env")
	if name == "" {
		return nil, nil
	}
	value, ok := os.LookupEnv(name)
	if !ok || value == "" {
		return nil, fmt.Errorf("environment variable %s is empty", name)
	}
	return []byte(value), nil
}

// writeKeypair stores the 64-byte secret as a JSON array of numbers, the
// layout used by Solana tooling, or as a keystore envelope when a
// passphrase is given.
func writeKeypair(path string, priv ed25519.PrivateKey, passphrase []byte) error {
	var (
		data []byte
		err  error
	)
	if passphrase != nil {
		env, serr := keystore.Seal(priv, passphrase)
		if serr != nil {
			return serr
		}
		data, err = json.Marshal(env)
	} else {
		nums := make([]int, len(priv))
		for i, b := range priv {
			nums[i] = int(b)
		}
		data, err = json.Marshal(nums)
	}
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create key directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write keypair: %w", err)
	}
	return nil
}

// readKeypair loads a plain or sealed keypair file and checks that its
// public half matches the secret seed.
func readKeypair(path string, passphrase []byte) (ed25519.PrivateKey, solana.Pubkey, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, solana.Pubkey{}, fmt.Errorf("keypair file %s not found (run keygen first)", path)
	}
	if err != nil {
		return nil, solana.Pubkey{}, fmt.Errorf("read keypair: %w", err)
	}

	raw, err := decodeKeypair(data, passphrase)
	if err != nil {
		return nil, solana.Pubkey{}, fmt.Errorf("keypair %s: %w", path, err)
	}
	if len(raw) != ed25519.PrivateKeySize {
		return nil, solana.Pubkey{}, fmt.Errorf("keypair %s: want %d bytes, got %d", path, ed25519.PrivateKeySize, len(raw))
	}

	priv := ed25519.NewKeyFromSeed(raw[:ed25519.SeedSize])
	if !priv.Public().(ed25519.PublicKey).Equal(ed25519.PublicKey(raw[ed25519.SeedSize:])) {
		return nil, solana.Pubkey{}, fmt.Errorf("keypair %s: public key does not match secret", path)
	}
	pub, err := solana.PubkeyFromBytes(raw[ed25519.SeedSize:])
	if err != nil {
		return nil, solana.Pubkey{}, err
	}
	return priv, pub, nil
}

func decodeKeypair(data, passphrase []byte) ([]byte, error) {
	if keystore.IsEnvelope(data) {
		if passphrase == nil {
			return nil, errors.New("file is encrypted (use --passphrase-env)")
		}
		var env keystore.Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			return nil, fmt.Errorf("parse envelope: %w", err)
		}
		return keystore.Open(&env, passphrase)
	}

	var nums []int
	if err := json.Unmarshal(data, &nums); err != nil {
		return nil, fmt.Errorf("parse keypair: %w", err)
	}
	raw := make([]byte, len(nums))
	for i, n := range nums {
		if n < 0 || n > 255 {
			return nil, fmt.Errorf("byte %d out of range", i)
		}
		raw[i] = byte(n)
	}
	return raw, nil
}
