package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yndnr/forkmesh-go/internal/core/domain"
	"github.com/yndnr/forkmesh-go/internal/core/service"
)

func TestSweep_RemovesExpiredForks(t *testing.T) {
	fx := newFixture(t, service.WithRetention(10*time.Minute))
	ctx := context.Background()

	old := fx.newFork(t)
	fx.clock.Advance(6 * time.Minute)
	young := fx.newFork(t)

	assert.Zero(t, fx.svc.Sweep(ctx))

	fx.clock.Advance(5 * time.Minute)
	assert.Equal(t, 1, fx.svc.Sweep(ctx))

	_, err := fx.svc.GetFork(ctx, old)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	_, err = fx.svc.GetFork(ctx, young)
	assert.NoError(t, err)

	assert.Equal(t, 1, fx.rec.removed[service.RemovedEvicted])
	assert.Equal(t, 1, fx.rec.active)
}

func TestSweep_ActivityDoesNotExtendLifetime(t *testing.T) {
	fx := newFixture(t, service.WithRetention(time.Minute))
	ctx := context.Background()
	id := fx.newFork(t)
	addr := newAddress(t)

	for i := 0; i < 5; i++ {
		fx.clock.Advance(15 * time.Second)
		require.NoError(t, fx.svc.SetBalance(ctx, id, addr, uint64(i)))
	}

	assert.Equal(t, 1, fx.svc.Sweep(ctx))
	_, err := fx.svc.GetBalance(ctx, id, addr)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestStartStop(t *testing.T) {
	fx := newFixture(t,
		service.WithRetention(time.Minute),
		service.WithSweepInterval(5*time.Millisecond),
	)
	ctx := context.Background()
	id := fx.newFork(t)
	fx.clock.Advance(2 * time.Minute)

	fx.svc.Start(ctx)
	fx.svc.Start(ctx)
	defer fx.svc.Stop()

	require.Eventually(t, func() bool {
		_, err := fx.svc.GetFork(ctx, id)
		return err != nil
	}, time.Second, 5*time.Millisecond)

	fx.svc.Stop()
	fx.svc.Stop()
}
