package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/yndnr/forkmesh-go/internal/core/domain"
	"github.com/yndnr/forkmesh-go/internal/telemetry/logger"
)

// Defaults for fork lifetime management.
const (
	DefaultRetention     = 15 * time.Minute
	DefaultSweepInterval = 60 * time.Second
)

// ForkService is the fork session store.
type ForkService struct {
	repo      ForkRepository
	remote    RemoteLedger
	newEngine EngineFactory

	now           func() time.Time
	retention     time.Duration
	sweepInterval time.Duration
	logger        logger.Logger
	recorder      Recorder

	// eviction task state
	taskMu sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// Option configures a ForkService.
type Option func(*ForkService)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *ForkService) {
		if now != nil {
			s.now = now
		}
	}
}

// WithRetention sets how long a fork lives before eviction.
func WithRetention(d time.Duration) Option {
	return func(s *ForkService) {
		if d > 0 {
			s.retention = d
		}
	}
}

// WithSweepInterval sets the eviction sweep period.
func WithSweepInterval(d time.Duration) Option {
	return func(s *ForkService) {
		if d > 0 {
			s.sweepInterval = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(s *ForkService) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r Recorder) Option {
	return func(s *ForkService) {
		if r != nil {
			s.recorder = r
		}
	}
}

// NewForkService creates a fork store. Call Start to run eviction.
func NewForkService(repo ForkRepository, remote RemoteLedger, newEngine EngineFactory, opts ...Option) *ForkService {
	s := &ForkService{
		repo:          repo,
		remote:        remote,
		newEngine:     newEngine,
		now:           time.Now,
		retention:     DefaultRetention,
		sweepInterval: DefaultSweepInterval,
		logger:        logger.Default(),
		recorder:      nopRecorder{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Retention returns the configured fork lifetime.
func (s *ForkService) Retention() time.Duration {
	return s.retention
}

// CreateFork allocates a new isolated fork with an empty engine and history.
func (s *ForkService) CreateFork(ctx context.Context) domain.ForkInfo {
	var f *Fork
	for {
		f = NewFork(domain.NewForkID(), s.now(), s.newEngine())
		// ids are ULIDs; a collision would need a broken entropy source
		if err := s.repo.Put(f); err == nil {
			break
		}
	}

	s.recorder.ForkCreated()
	s.recorder.ActiveForks(s.repo.Count())
	s.log(ctx, f.id).Info("fork created", "expires_at", f.createdAt.Add(s.retention))

	return f.info(s.retention)
}

// GetFork returns metadata for a live fork.
func (s *ForkService) GetFork(_ context.Context, id string) (*domain.ForkInfo, error) {
	f, err := s.fork(id)
	if err != nil {
		return nil, err
	}
	info := f.info(s.retention)
	return &info, nil
}

// ListForks returns metadata for every live fork, oldest first.
func (s *ForkService) ListForks(_ context.Context) []domain.ForkInfo {
	forks := s.repo.List()
	infos := make([]domain.ForkInfo, 0, len(forks))
	for _, f := range forks {
		infos = append(infos, f.info(s.retention))
	}
	sort.Slice(infos, func(i, j int) bool {
		if infos[i].CreatedAt.Equal(infos[j].CreatedAt) {
			return infos[i].ID < infos[j].ID
		}
		return infos[i].CreatedAt.Before(infos[j].CreatedAt)
	})
	return infos
}

// RevokeFork removes a fork immediately. In-flight operations that already
// hold the fork finish against the detached state.
func (s *ForkService) RevokeFork(ctx context.Context, id string) error {
	if _, ok := s.repo.Delete(id); !ok {
		return domain.ErrSessionNotFound.WithDetails(id)
	}
	s.recorder.ForksRemoved(RemovedRevoked, 1)
	s.recorder.ActiveForks(s.repo.Count())
	s.log(ctx, id).Info("fork revoked")
	return nil
}

// fork resolves id to a live fork.
func (s *ForkService) fork(id string) (*Fork, error) {
	f, ok := s.repo.Get(id)
	if !ok {
		return nil, domain.ErrSessionNotFound.WithDetails(id)
	}
	return f, nil
}

// log returns the service logger bound to ctx and the fork.
func (s *ForkService) log(ctx context.Context, forkID string) logger.Logger {
	if forkID != "" {
		ctx = logger.WithForkID(ctx, forkID)
	}
	return s.logger.WithContext(ctx)
}
