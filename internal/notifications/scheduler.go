package notifications

import (
	"context"
	"log"
	"sync"
	"sync/atomic"
	"time"
)

// RefreshInterval is the fixed period between full cache refreshes.
const RefreshInterval = 30 * time.Minute

// Scheduler drives Cache.RefreshAll from a ticker. Refreshes run on the
// scheduler goroutine, so a slow cycle delays the next tick instead of overlapping it.
type Scheduler struct {
	cache    *Cache
	interval time.Duration

	running  atomic.Bool
	stopCh   chan struct{}
	stopOnce sync.Once
}

func NewScheduler(cache *Cache) *Scheduler {
	return newScheduler(cache, RefreshInterval)
}

func newScheduler(cache *Cache, interval time.Duration) *Scheduler {
	return &Scheduler{
		cache:    cache,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Run blocks until ctx is cancelled or Stop is called. The first refresh happens
// one interval after start.
func (s *Scheduler) Run(ctx context.Context) error {
	s.running.Store(true)
	defer s.running.Store(false)
	log.Printf("[notify][scheduler] started interval=%s", s.interval)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Printf("[notify][scheduler] stopped (context cancelled)")
			return ctx.Err()
		case <-s.stopCh:
			log.Printf("[notify][scheduler] stopped (stop signal)")
			return nil
		case <-ticker.C:
			s.runCycle(ctx)
		}
	}
}

func (s *Scheduler) runCycle(ctx context.Context) {
	start := time.Now()
	if err := s.cache.RefreshAll(ctx); err != nil {
		log.Printf("[notify][refresh][err] cycle skipped: %v", err)
		return
	}
	log.Printf("[notify][refresh] took=%s", time.Since(start).Truncate(time.Millisecond))
}

// Stop signals Run to return. Safe to call more than once.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() { close(s.stopCh) })
}

func (s *Scheduler) IsRunning() bool {
	return s.running.Load()
}
