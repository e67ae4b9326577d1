package service

import (
	"sync"
	"time"

	"github.com/yndnr/forkmesh-go/internal/core/domain"
)

// Fork is one isolated sandbox: an engine, its creation time and an
// append-only transaction history. mu guards engine and history.
type Fork struct {
	id        string
	createdAt time.Time

	mu      sync.RWMutex
	engine  Engine
	history []domain.TransactionRecord
}

// NewFork wraps engine in a fork created at createdAt.
func NewFork(id string, createdAt time.Time, engine Engine) *Fork {
	return &Fork{
		id:        id,
		createdAt: createdAt,
		engine:    engine,
	}
}

// ID returns the fork id.
func (f *Fork) ID() string { return f.id }

// CreatedAt returns the creation time.
func (f *Fork) CreatedAt() time.Time { return f.createdAt }

// HistoryLen returns the number of recorded transactions.
func (f *Fork) HistoryLen() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.history)
}

// info builds the public metadata for f.
func (f *Fork) info(retention time.Duration) domain.ForkInfo {
	return domain.ForkInfo{
		ID:               f.id,
		CreatedAt:        f.createdAt,
		ExpiresAt:        f.createdAt.Add(retention),
		TransactionCount: f.HistoryLen(),
	}
}

// ForkRepository stores live forks by id.
type ForkRepository interface {
	// Put inserts a new fork. It fails if the id is already present.
	Put(f *Fork) error

	// Get returns the fork with id.
	Get(id string) (*Fork, bool)

	// Delete removes and returns the fork with id.
	Delete(id string) (*Fork, bool)

	// List returns every live fork in no particular order.
	List() []*Fork

	// EvictCreatedBefore removes every fork created before cutoff and returns them.
	EvictCreatedBefore(cutoff time.Time) []*Fork

	// Count returns the number of live forks.
	Count() int
}
