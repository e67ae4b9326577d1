package command

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/json"
	"io"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yndnr/forkmesh-go/internal/core/domain"
	"github.com/yndnr/forkmesh-go/internal/core/service"
	"github.com/yndnr/forkmesh-go/internal/server/httpserver"
	"github.com/yndnr/forkmesh-go/internal/server/httpserver/handler"
	"github.com/yndnr/forkmesh-go/internal/storage/memory"
	"github.com/yndnr/forkmesh-go/internal/svm"
	"github.com/yndnr/forkmesh-go/internal/telemetry/logger"
	"github.com/yndnr/forkmesh-go/pkg/solana"
)

// stubRemote serves a fixed account set.
type stubRemote struct {
	accounts map[solana.Pubkey]*domain.Account
}

func (r *stubRemote) FetchAccount(_ context.Context, addr solana.Pubkey) (*domain.Account, error) {
	acct, ok := r.accounts[addr]
	if !ok {
		return nil, service.ErrAccountNotFound
	}
	return acct.Clone(), nil
}

func (r *stubRemote) Health(context.Context) error { return nil }

type testEnv struct {
	url    string
	forks  *service.ForkService
	remote *stubRemote
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	// Keep a developer's ~/.forkmesh/cli.yaml out of the tests.
	t.Setenv("HOME", t.TempDir())

	log, err := logger.New(logger.Config{Output: io.Discard})
	require.NoError(t, err)

	remote := &stubRemote{accounts: map[solana.Pubkey]*domain.Account{}}
	forks := service.NewForkService(memory.New(), remote, svm.Factory(), service.WithLogger(log))

	cfg := httpserver.DefaultRouterConfig()
	cfg.ForkService = forks
	cfg.Remote = remote
	cfg.Logger = log
	cfg.GlobalRateLimit = 0
	srv := httptest.NewServer(httpserver.NewRouter(cfg))
	t.Cleanup(srv.Close)

	return &testEnv{url: srv.URL, forks: forks, remote: remote}
}

// run executes forkmesh-cli against the test server and returns stdout.
func (e *testEnv) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	app := App()
	app.Writer = &out
	app.ErrWriter = io.Discard

	full := append([]string{"forkmesh-cli", "--server", e.url}, args...)
	err := app.Run(full)
	return out.String(), err
}

// runJSON runs with -o json and decodes stdout into v.
func (e *testEnv) runJSON(t *testing.T, v any, args ...string) {
	t.Helper()
	out, err := e.run(t, append([]string{"-o", "json"}, args...)...)
	require.NoError(t, err, out)
	require.NoError(t, json.Unmarshal([]byte(out), v), out)
}

func (e *testEnv) newFork(t *testing.T) string {
	t.Helper()
	return e.forks.CreateFork(context.Background()).ID
}

func newAddress(t *testing.T) solana.Pubkey {
	t.Helper()
	pub, _, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	addr, err := solana.PubkeyFromBytes(pub)
	require.NoError(t, err)
	return addr
}

func TestFork_Lifecycle(t *testing.T) {
	env := newTestEnv(t)

	var created domain.ForkInfo
	env.runJSON(t, &created, "fork", "create")
	require.NotEmpty(t, created.ID)
	assert.True(t, created.ExpiresAt.After(created.CreatedAt))

	var list handler.ListForksResponse
	env.runJSON(t, &list, "fork", "list")
	assert.Equal(t, 1, list.Total)
	require.Len(t, list.Items, 1)
	assert.Equal(t, created.ID, list.Items[0].ID)

	var got domain.ForkInfo
	env.runJSON(t, &got, "fork", "get", created.ID)
	assert.Equal(t, created.ID, got.ID)
	assert.Zero(t, got.TransactionCount)

	var history handler.TransactionsResponse
	env.runJSON(t, &history, "fork", "history", created.ID)
	assert.Equal(t, created.ID, history.ForkID)
	assert.Empty(t, history.Transactions)

	var revoked handler.RevokeForkResponse
	env.runJSON(t, &revoked, "fork", "revoke", created.ID)
	assert.True(t, revoked.Revoked)

	_, err := env.run(t, "fork", "get", created.ID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "FM-FORK-4040")
}

func TestFork_ListTable(t *testing.T) {
	env := newTestEnv(t)
	id := env.newFork(t)

	out, err := env.run(t, "fork", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "FORK_ID")
	assert.Contains(t, out, id)
	assert.Contains(t, out, "Total: 1 forks")
}

func TestFork_MissingArgument(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.run(t, "fork", "get")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "FORK_ID is required")
}

func TestBalance_SetAndGet(t *testing.T) {
	env := newTestEnv(t)
	id := env.newFork(t)
	addr := newAddress(t).String()

	var set BalanceView
	env.runJSON(t, &set, "balance", "set", id, addr, "5000000000")
	assert.Equal(t, uint64(5_000_000_000), set.Lamports)

	var got BalanceView
	env.runJSON(t, &got, "balance", "get", id, addr)
	assert.Equal(t, addr, got.Address)
	assert.Equal(t, uint64(5_000_000_000), got.Lamports)
}

func TestBalance_Errors(t *testing.T) {
	env := newTestEnv(t)
	id := env.newFork(t)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"bad amount", []string{"balance", "set", id, newAddress(t).String(), "-5"}, "invalid LAMPORTS"},
		{"missing address", []string{"balance", "get", id}, "ADDRESS is required"},
		{"bad address", []string{"balance", "get", id, "not-base58!"}, "FM-ADDR-4000"},
		{"unknown fork", []string{"balance", "get", "nope", newAddress(t).String()}, "FM-FORK-4040"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.run(t, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestToken_SetAndGet(t *testing.T) {
	env := newTestEnv(t)
	id := env.newFork(t)
	owner, mint := newAddress(t).String(), newAddress(t).String()

	var got TokenBalanceView
	env.runJSON(t, &got, "token", "get", id, owner, mint)
	assert.Zero(t, got.Amount)

	env.runJSON(t, &got, "token", "set", id, owner, mint, "1000000")
	env.runJSON(t, &got, "token", "get", id, owner, mint)
	assert.Equal(t, uint64(1_000_000), got.Amount)
	assert.Equal(t, mint, got.Mint)
}

func TestAccount_LoadAndGet(t *testing.T) {
	env := newTestEnv(t)
	id := env.newFork(t)

	addr := newAddress(t)
	owner := newAddress(t)
	env.remote.accounts[addr] = &domain.Account{Lamports: 42, Data: []byte{1, 2, 3}, Owner: owner}

	var loaded map[string]any
	env.runJSON(t, &loaded, "account", "load", id, addr.String())
	assert.EqualValues(t, 1, loaded["loaded"])

	// Later remote changes are not seen once the fork holds the account.
	env.remote.accounts[addr] = &domain.Account{Lamports: 999, Owner: owner}

	var view AccountView
	env.runJSON(t, &view, "account", "get", "--encoding", "base64", id, addr.String())
	assert.Equal(t, uint64(42), view.Lamports)
	assert.Equal(t, owner.String(), view.Owner)
	assert.Equal(t, []byte{1, 2, 3}, view.Data.Bytes)
	assert.Equal(t, handler.EncodingBase64, view.Data.Encoding)

	_, err := env.run(t, "account", "get", id, newAddress(t).String())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not exist")
}

func TestBlockhash(t *testing.T) {
	env := newTestEnv(t)
	id := env.newFork(t)

	var got handler.BlockhashValue
	env.runJSON(t, &got, "blockhash", id)

	want, err := env.forks.LatestBlockhash(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, want.String(), got.Blockhash)
	assert.Equal(t, uint64(999999999), got.LastValidBlockHeight)
}

func TestKeygen(t *testing.T) {
	env := newTestEnv(t)
	path := filepath.Join(t.TempDir(), "keys", "id.json")

	var view KeypairView
	env.runJSON(t, &view, "keygen", "--outfile", path)
	assert.Equal(t, path, view.Path)

	_, pub, err := readKeypair(path, nil)
	require.NoError(t, err)
	assert.Equal(t, view.Pubkey, pub.String())

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	_, err = env.run(t, "keygen", "--outfile", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	env.runJSON(t, &view, "keygen", "--outfile", path, "--force")
	assert.NotEqual(t, pub.String(), view.Pubkey)
}

func TestReadKeypair_Invalid(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) string {
		p := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
		return p
	}

	_, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	tampered := make([]int, len(priv))
	for i, b := range priv {
		tampered[i] = int(b)
	}
	tampered[40] ^= 0xff
	raw, err := json.Marshal(tampered)
	require.NoError(t, err)

	tests := []struct {
		name string
		path string
		want string
	}{
		{"missing", filepath.Join(dir, "none.json"), "not found"},
		{"not json", write("bad.json", "xyz"), "parse keypair"},
		{"short", write("short.json", "[1,2,3]"), "want 64 bytes"},
		{"mismatched", write("tampered.json", string(raw)), "does not match"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := readKeypair(tt.path, nil)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestTx_TransferAndSend(t *testing.T) {
	env := newTestEnv(t)
	id := env.newFork(t)
	keyPath := filepath.Join(t.TempDir(), "payer.json")

	var key KeypairView
	env.runJSON(t, &key, "keygen", "--outfile", keyPath)
	env.runJSON(t, &BalanceView{}, "balance", "set", id, key.Pubkey, "1000000000")
	bob := newAddress(t).String()

	// Build only, then submit the printed transaction with tx send.
	var built TxView
	env.runJSON(t, &built, "tx", "transfer", "--keypair", keyPath, "--to", bob, "--lamports", "1000", id)
	assert.False(t, built.Submitted)
	require.NotEmpty(t, built.Transaction)

	var bal BalanceView
	env.runJSON(t, &bal, "balance", "get", id, bob)
	assert.Zero(t, bal.Lamports)

	var sent TxView
	env.runJSON(t, &sent, "tx", "send", id, built.Transaction)
	assert.True(t, sent.Submitted)
	assert.Equal(t, built.Signature, sent.Signature)

	env.runJSON(t, &bal, "balance", "get", id, bob)
	assert.Equal(t, uint64(1000), bal.Lamports)

	// Build and submit in one step.
	var direct TxView
	env.runJSON(t, &direct, "tx", "transfer", "--keypair", keyPath, "--to", bob, "--lamports", "500", "--submit", id)
	assert.True(t, direct.Submitted)

	env.runJSON(t, &bal, "balance", "get", id, bob)
	assert.Equal(t, uint64(1500), bal.Lamports)

	var history handler.TransactionsResponse
	env.runJSON(t, &history, "fork", "history", id)
	require.Len(t, history.Transactions, 2)
	assert.Equal(t, sent.Signature, history.Transactions[0].Signature)
	assert.True(t, history.Transactions[1].Success)
}

func TestTx_EncryptedKeypair(t *testing.T) {
	env := newTestEnv(t)
	id := env.newFork(t)
	keyPath := filepath.Join(t.TempDir(), "sealed.json")
	t.Setenv("FORKMESH_TEST_PASS", "correct horse")
	t.Setenv("FORKMESH_TEST_WRONG", "battery staple")

	var key KeypairView
	env.runJSON(t, &key, "keygen", "--outfile", keyPath, "--passphrase-env", "FORKMESH_TEST_PASS")
	assert.True(t, key.Encrypted)

	data, err := os.ReadFile(keyPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"kdf":"scrypt"`)

	env.runJSON(t, &BalanceView{}, "balance", "set", id, key.Pubkey, "1000000000")
	bob := newAddress(t).String()
	transfer := []string{"tx", "transfer", "--keypair", keyPath, "--to", bob, "--lamports", "10", "--submit"}

	_, err = env.run(t, append(transfer, id)...)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "encrypted")

	_, err = env.run(t, append(transfer, "--passphrase-env", "FORKMESH_TEST_WRONG", id)...)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "wrong passphrase")

	_, err = env.run(t, append(transfer, "--passphrase-env", "FORKMESH_TEST_UNSET", id)...)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "is empty")

	var sent TxView
	env.runJSON(t, &sent, append(transfer, "--passphrase-env", "FORKMESH_TEST_PASS", id)...)
	assert.True(t, sent.Submitted)

	var bal BalanceView
	env.runJSON(t, &bal, "balance", "get", id, bob)
	assert.Equal(t, uint64(10), bal.Lamports)
}

func TestTx_SendRejected(t *testing.T) {
	env := newTestEnv(t)
	id := env.newFork(t)

	_, err := env.run(t, "tx", "send", id, "3yZe7d")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "FM-TX-4000")
}

func TestSystem(t *testing.T) {
	env := newTestEnv(t)
	env.newFork(t)

	var status handler.StatusSummaryResponse
	env.runJSON(t, &status, "status")
	assert.Equal(t, "running", status.Status)
	assert.Equal(t, 1, status.ActiveForks)

	var health HealthView
	env.runJSON(t, &health, "system", "health")
	assert.Equal(t, "ok", health.Status)
	assert.Equal(t, env.url, health.Server)

	env.runJSON(t, &health, "system", "ready")
	assert.Equal(t, "ready", health.Status)

	var gc handler.GCTriggerResponse
	env.runJSON(t, &gc, "system", "gc")
	assert.Zero(t, gc.Evicted)
	assert.Equal(t, 1, gc.ActiveForks)
}

func TestOutputFormats(t *testing.T) {
	env := newTestEnv(t)
	id := env.newFork(t)

	out, err := env.run(t, "-o", "yaml", "fork", "get", id)
	require.NoError(t, err)
	assert.Contains(t, out, "fork_id: "+id)

	out, err = env.run(t, "fork", "get", id)
	require.NoError(t, err)
	assert.Contains(t, out, "FIELD")
	assert.Contains(t, out, "transaction_count")

	_, err = env.run(t, "-o", "xml", "fork", "get", id)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown output format")
}

func TestConfig_FileAndShow(t *testing.T) {
	env := newTestEnv(t)
	path := filepath.Join(t.TempDir(), "cli.yaml")
	require.NoError(t, os.WriteFile(path, []byte("output: json\ntimeout: 7s\n"), 0o600))

	out, err := env.run(t, "--config", path, "config", "show")
	require.NoError(t, err)

	var shown map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &shown), out)
	assert.Equal(t, path, shown["file"])
	assert.Equal(t, env.url, shown["server"])
	assert.Equal(t, "7s", shown["timeout"])
}

func TestConfig_CheckServerFile(t *testing.T) {
	env := newTestEnv(t)
	dir := t.TempDir()

	good := filepath.Join(dir, "good.yaml")
	require.NoError(t, os.WriteFile(good, []byte("fork:\n  retention: 5m\n"), 0o600))
	out, err := env.run(t, "config", "check", good)
	require.NoError(t, err)
	assert.Contains(t, out, "fork")

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("fork:\n  retention: -1s\n"), 0o600))
	_, err = env.run(t, "config", "check", bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "is invalid")
}
