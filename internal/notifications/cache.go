// Package notifications keeps a per-user cache of upcoming and overdue tasks,
// refreshed on a fixed schedule and filled lazily on a cache miss.
package notifications

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"quicktask/internal/models"
)

// UpcomingWindow is how far ahead of the computation time a due date counts as upcoming.
const UpcomingWindow = 24 * time.Hour

// TaskFinder is the slice of the task repository the cache queries.
type TaskFinder interface {
	FindByOwnerAndPredicate(ctx context.Context, ownerID int64, statusNot models.TaskStatus, due models.DueRange) ([]models.Task, error)
}

// UserLister enumerates every user for a full refresh.
type UserLister interface {
	ListAll(ctx context.Context) ([]models.UserRef, error)
}

type Option func(*Cache)

// WithClock replaces time.Now as the source of the computation time.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

// Cache maps user id to the last computed NotificationEntry.
//
// Entries are overwritten wholesale on refresh and never evicted, so memory grows
// with the number of distinct users seen since process start. The mutex only
// guards the map: a lazy computation racing a refresh for the same user runs both
// queries and the last store wins. Returned entries are shared and must be treated
// as read-only.
type Cache struct {
	tasks TaskFinder
	users UserLister
	now   func() time.Time

	mu      sync.RWMutex
	entries map[int64]*models.NotificationEntry
}

func NewCache(tasks TaskFinder, users UserLister, opts ...Option) *Cache {
	c := &Cache{
		tasks:   tasks,
		users:   users,
		now:     time.Now,
		entries: make(map[int64]*models.NotificationEntry),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// RefreshAll recomputes the entry of every known user against one cut-off taken
// at the start of the cycle. The first failing query stops the cycle; entries
// already written in this cycle are kept.
func (c *Cache) RefreshAll(ctx context.Context) error {
	now := c.now()
	users, err := c.users.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("list users: %w", err)
	}
	for _, u := range users {
		entry, err := c.compute(ctx, u.ID, now)
		if err != nil {
			return fmt.Errorf("refresh user %d: %w", u.ID, err)
		}
		c.store(u.ID, entry)
	}
	log.Printf("[notify][refresh][ok] users=%d", len(users))
	return nil
}

// GetForUser returns the cached entry, computing and storing it first on a miss.
// On a query error nothing is stored.
func (c *Cache) GetForUser(ctx context.Context, userID int64) (*models.NotificationEntry, error) {
	if entry, ok := c.lookup(userID); ok {
		return entry, nil
	}
	entry, err := c.compute(ctx, userID, c.now())
	if err != nil {
		return nil, err
	}
	c.store(userID, entry)
	return entry, nil
}

// Len reports how many users currently have an entry.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *Cache) lookup(userID int64) (*models.NotificationEntry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[userID]
	return e, ok
}

func (c *Cache) store(userID int64, entry *models.NotificationEntry) {
	c.mu.Lock()
	c.entries[userID] = entry
	c.mu.Unlock()
}

// compute classifies userID's tasks relative to now.
func (c *Cache) compute(ctx context.Context, userID int64, now time.Time) (*models.NotificationEntry, error) {
	horizon := now.Add(UpcomingWindow)

	upcoming, err := c.tasks.FindByOwnerAndPredicate(ctx, userID, models.StatusCompleted,
		models.DueRange{From: &now, To: &horizon})
	if err != nil {
		return nil, fmt.Errorf("upcoming tasks: %w", err)
	}
	overdue, err := c.tasks.FindByOwnerAndPredicate(ctx, userID, models.StatusCompleted,
		models.DueRange{Before: &now})
	if err != nil {
		return nil, fmt.Errorf("overdue tasks: %w", err)
	}

	if upcoming == nil {
		upcoming = []models.Task{}
	}
	if overdue == nil {
		overdue = []models.Task{}
	}
	return &models.NotificationEntry{
		UpcomingTasks: upcoming,
		OverdueTasks:  overdue,
		LastUpdated:   c.now(),
	}, nil
}
