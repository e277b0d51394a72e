package notifications

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quicktask/internal/models"
	"quicktask/internal/repositories/memory"
)

func TestNewScheduler_UsesFixedInterval(t *testing.T) {
	s := NewScheduler(NewCache(memory.NewTaskRepository(), memory.NewUserRepository()))
	assert.Equal(t, 30*time.Minute, s.interval)
	assert.False(t, s.IsRunning())
}

func TestScheduler_RefreshesOnTick(t *testing.T) {
	users := memory.NewUserRepository()
	require.NoError(t, users.Create(context.Background(), &models.User{Email: "a@example.com"}))
	cache := NewCache(memory.NewTaskRepository(), users)
	s := newScheduler(cache, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	require.Eventually(t, func() bool { return cache.Len() == 1 }, time.Second, 5*time.Millisecond)
	assert.True(t, s.IsRunning())

	cancel()
	select {
	case err := <-done:
		assert.True(t, errors.Is(err, context.Canceled))
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop")
	}
	assert.False(t, s.IsRunning())
}

func TestScheduler_Stop(t *testing.T) {
	s := newScheduler(NewCache(memory.NewTaskRepository(), memory.NewUserRepository()), time.Hour)

	done := make(chan error, 1)
	go func() { done <- s.Run(context.Background()) }()
	require.Eventually(t, s.IsRunning, time.Second, 5*time.Millisecond)

	s.Stop()
	s.Stop()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop")
	}
}

func TestScheduler_FailedCycleKeepsRunning(t *testing.T) {
	lister := &flakyLister{}
	cache := NewCache(memory.NewTaskRepository(), lister)
	s := newScheduler(cache, 5*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = s.Run(ctx) }()

	require.Eventually(t, func() bool { return cache.Len() == 1 }, time.Second, 5*time.Millisecond)
}

// flakyLister fails on its first call and lists one user afterwards.
type flakyLister struct {
	calls int
}

func (l *flakyLister) ListAll(context.Context) ([]models.UserRef, error) {
	l.calls++
	if l.calls == 1 {
		return nil, errors.New("transient")
	}
	return []models.UserRef{{ID: 7}}, nil
}
