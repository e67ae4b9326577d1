package memory

import (
	"errors"
	"time"

	"github.com/yndnr/forkmesh-go/internal/core/service"
	"github.com/yndnr/forkmesh-go/pkg/cmap"
)

// ErrForkExists is returned by Put when the id is already registered.
var ErrForkExists = errors.New("memory: fork id already registered")

// Store is a concurrent fork registry.
type Store struct {
	forks *cmap.Map[*service.Fork]
}

var _ service.ForkRepository = (*Store)(nil)

// Option configures the Store.
type Option func(*storeOptions)

type storeOptions struct {
	shards int
}

// WithShardCount sets the number of map shards (power of two).
func WithShardCount(n int) Option {
	return func(o *storeOptions) {
		o.shards = n
	}
}

// New creates an empty store.
func New(opts ...Option) *Store {
	o := storeOptions{shards: cmap.DefaultShardCount}
	for _, opt := range opts {
		opt(&o)
	}
	return &Store{forks: cmap.NewWithShards[*service.Fork](o.shards)}
}

// Put registers a new fork.
func (s *Store) Put(f *service.Fork) error {
	if !s.forks.SetIfAbsent(f.ID(), f) {
		return ErrForkExists
	}
	return nil
}

// Get returns the fork registered under id.
func (s *Store) Get(id string) (*service.Fork, bool) {
	return s.forks.Get(id)
}

// Delete unregisters and returns the fork under id.
func (s *Store) Delete(id string) (*service.Fork, bool) {
	return s.forks.Pop(id)
}

// List returns all registered forks.
func (s *Store) List() []*service.Fork {
	return s.forks.Values()
}

// EvictCreatedBefore unregisters every fork created strictly before cutoff.
func (s *Store) EvictCreatedBefore(cutoff time.Time) []*service.Fork {
	return s.forks.RemoveIf(func(_ string, f *service.Fork) bool {
		return f.CreatedAt().Before(cutoff)
	})
}

// Count returns the number of registered forks.
func (s *Store) Count() int {
	return s.forks.Count()
}

// ShardStats returns the population of each registry shard.
func (s *Store) ShardStats() []cmap.ShardStats {
	return s.forks.Stats()
}
