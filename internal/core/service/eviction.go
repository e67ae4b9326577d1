package service

import (
	"context"
	"time"
)

// Start runs the periodic eviction sweep until ctx is cancelled or Stop is
// called. Calling Start on a running service is a no-op.
func (s *ForkService) Start(ctx context.Context) {
	s.taskMu.Lock()
	defer s.taskMu.Unlock()
	if s.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})

	go s.sweepLoop(ctx, s.done)
	s.logger.Info("fork eviction started",
		"retention", s.retention.String(), "interval", s.sweepInterval.String())
}

// Stop cancels the sweep task and waits for it to exit.
func (s *ForkService) Stop() {
	s.taskMu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	s.taskMu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
	s.logger.Info("fork eviction stopped")
}

func (s *ForkService) sweepLoop(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(s.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep(ctx)
		}
	}
}

// Sweep removes every fork whose age exceeds the retention window and
// returns how many were removed.
func (s *ForkService) Sweep(ctx context.Context) int {
	cutoff := s.now().Add(-s.retention)
	evicted := s.repo.EvictCreatedBefore(cutoff)
	if len(evicted) == 0 {
		return 0
	}

	s.recorder.ForksRemoved(RemovedEvicted, len(evicted))
	s.recorder.ActiveForks(s.repo.Count())
	for _, f := range evicted {
		s.log(ctx, f.id).Info("fork evicted", "age", s.now().Sub(f.createdAt).String())
	}
	return len(evicted)
}
