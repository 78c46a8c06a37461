package server

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type mockService struct {
	started atomic.Bool
	stopped atomic.Bool
	runFn   func(ctx context.Context) error
}

func (m *mockService) Run(ctx context.Context) error {
	m.started.Store(true)
	defer m.stopped.Store(true)
	if m.runFn != nil {
		return m.runFn(ctx)
	}
	<-ctx.Done()
	return ctx.Err()
}

func runAsync(lc *Lifecycle, ctx context.Context) <-chan error {
	done := make(chan error, 1)
	go func() { done <- lc.Run(ctx) }()
	return done
}

func TestLifecycleStartsAndStopsServices(t *testing.T) {
	lc := NewLifecycle(zaptest.NewLogger(t))
	svc1 := &mockService{}
	svc2 := &mockService{}
	lc.Add("svc1", svc1)
	lc.Add("svc2", svc2)

	ctx, cancel := context.WithCancel(context.Background())
	done := runAsync(lc, ctx)
	require.Eventually(t, func() bool { return svc1.started.Load() && svc2.started.Load() }, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("lifecycle did not shut down in time")
	}
	assert.True(t, svc1.stopped.Load())
	assert.True(t, svc2.stopped.Load())
}

func TestLifecycleServiceReturningStopsOthers(t *testing.T) {
	lc := NewLifecycle(zaptest.NewLogger(t))
	waiter := &mockService{}
	lc.Add("waiter", waiter)
	lc.Add("console", FuncService(func(context.Context) error { return nil }))

	select {
	case err := <-runAsync(lc, context.Background()):
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("lifecycle did not shut down in time")
	}
	assert.True(t, waiter.stopped.Load())
}

func TestLifecycleReturnsServiceError(t *testing.T) {
	boom := errors.New("boom")
	lc := NewLifecycle(zaptest.NewLogger(t))
	lc.Add("waiter", &mockService{})
	lc.Add("broken", FuncService(func(context.Context) error { return boom }))

	err := lc.Run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "service broken")
}

func TestLifecycleAddPanicsOnNil(t *testing.T) {
	lc := NewLifecycle(zaptest.NewLogger(t))
	assert.Panics(t, func() { lc.Add("", &mockService{}) })
	assert.Panics(t, func() { lc.Add("x", nil) })
}

func TestFuncService(t *testing.T) {
	called := false
	svc := FuncService(func(context.Context) error {
		called = true
		return nil
	})
	assert.NoError(t, svc.Run(context.Background()))
	assert.True(t, called)
}
