package service_test

import (
	"context"
	"crypto/ed25519"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yndnr/forkmesh-go/internal/core/domain"
	"github.com/yndnr/forkmesh-go/internal/core/service"
	"github.com/yndnr/forkmesh-go/internal/storage/memory"
	"github.com/yndnr/forkmesh-go/internal/svm"
	"github.com/yndnr/forkmesh-go/pkg/solana"
)

// fakeRemote is an in-memory RemoteLedger. When gate is set, FetchAccount
// signals entered and then blocks until gate is closed.
type fakeRemote struct {
	mu       sync.Mutex
	accounts map[solana.Pubkey]*domain.Account
	err      error
	calls    map[solana.Pubkey]int

	gate    chan struct{}
	entered chan solana.Pubkey
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{
		accounts: make(map[solana.Pubkey]*domain.Account),
		calls:    make(map[solana.Pubkey]int),
	}
}

func (r *fakeRemote) put(addr solana.Pubkey, acct *domain.Account) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.accounts[addr] = acct
}

func (r *fakeRemote) setErr(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.err = err
}

func (r *fakeRemote) callCount(addr solana.Pubkey) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls[addr]
}

func (r *fakeRemote) totalCalls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, c := range r.calls {
		n += c
	}
	return n
}

func (r *fakeRemote) FetchAccount(ctx context.Context, addr solana.Pubkey) (*domain.Account, error) {
	r.mu.Lock()
	r.calls[addr]++
	gate, entered := r.gate, r.entered
	r.mu.Unlock()

	if gate != nil {
		if entered != nil {
			entered <- addr
		}
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	acct, ok := r.accounts[addr]
	if !ok {
		return nil, service.ErrAccountNotFound
	}
	return acct.Clone(), nil
}

// fakeClock is a manually advanced clock.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

// countingRecorder tallies Recorder events.
type countingRecorder struct {
	mu       sync.Mutex
	created  int
	removed  map[string]int
	active   int
	fetches  map[string]int
	txOK     int
	txFailed int
}

func newCountingRecorder() *countingRecorder {
	return &countingRecorder{removed: map[string]int{}, fetches: map[string]int{}}
}

func (r *countingRecorder) ForkCreated() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.created++
}

func (r *countingRecorder) ForksRemoved(reason string, n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.removed[reason] += n
}

func (r *countingRecorder) ActiveForks(n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.active = n
}

func (r *countingRecorder) RemoteFetch(result string, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fetches[result]++
}

func (r *countingRecorder) Transaction(success bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if success {
		r.txOK++
	} else {
		r.txFailed++
	}
}

type fixture struct {
	svc    *service.ForkService
	remote *fakeRemote
	clock  *fakeClock
	rec    *countingRecorder
}

func newFixture(t *testing.T, opts ...service.Option) *fixture {
	t.Helper()
	fx := &fixture{
		remote: newFakeRemote(),
		clock:  newFakeClock(),
		rec:    newCountingRecorder(),
	}
	base := []service.Option{
		service.WithClock(fx.clock.Now),
		service.WithRecorder(fx.rec),
	}
	fx.svc = service.NewForkService(memory.New(), fx.remote, svm.Factory(), append(base, opts...)...)
	return fx
}

func (fx *fixture) newFork(t *testing.T) string {
	t.Helper()
	return fx.svc.CreateFork(context.Background()).ID
}

type keypair struct {
	pub  solana.Pubkey
	priv ed25519.PrivateKey
}

func newKeypair(t *testing.T) keypair {
	t.Helper()
	pub, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	pk, err := solana.PubkeyFromBytes(pub)
	require.NoError(t, err)
	return keypair{pub: pk, priv: priv}
}

func newAddress(t *testing.T) string {
	t.Helper()
	return newKeypair(t).pub.String()
}
