package notifications

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quicktask/internal/models"
	"quicktask/internal/repositories/memory"
)

var base = time.Date(2025, 5, 10, 9, 0, 0, 0, time.UTC)

// countingFinder wraps the in-memory repository, counting queries and
// optionally failing for selected owners.
type countingFinder struct {
	inner  *memory.TaskRepository
	mu     sync.Mutex
	calls  int
	failOn map[int64]error
}

func (f *countingFinder) FindByOwnerAndPredicate(ctx context.Context, ownerID int64, statusNot models.TaskStatus, due models.DueRange) ([]models.Task, error) {
	f.mu.Lock()
	f.calls++
	err := f.failOn[ownerID]
	f.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return f.inner.FindByOwnerAndPredicate(ctx, ownerID, statusNot, due)
}

func (f *countingFinder) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fixture struct {
	tasks  *memory.TaskRepository
	users  *memory.UserRepository
	finder *countingFinder
	cache  *Cache
	now    time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		tasks: memory.NewTaskRepository(),
		users: memory.NewUserRepository(),
		now:   base,
	}
	f.finder = &countingFinder{inner: f.tasks, failOn: map[int64]error{}}
	f.cache = NewCache(f.finder, f.users, WithClock(func() time.Time { return f.now }))
	return f
}

func (f *fixture) addUser(t *testing.T, email string) int64 {
	t.Helper()
	u := &models.User{Email: email, PasswordHash: "x"}
	require.NoError(t, f.users.Create(context.Background(), u))
	return u.ID
}

func (f *fixture) addTask(t *testing.T, owner int64, title string, status models.TaskStatus, due *time.Duration) models.Task {
	t.Helper()
	task := &models.Task{OwnerID: owner, Title: title, Status: status, Priority: models.PriorityMedium, CreatedAt: f.now, UpdatedAt: f.now}
	if due != nil {
		d := f.now.Add(*due)
		task.DueDate = &d
	}
	require.NoError(t, f.tasks.Store(context.Background(), task))
	return *task
}

func dur(d time.Duration) *time.Duration { return &d }

func titles(tasks []models.Task) []string {
	out := make([]string, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, t.Title)
	}
	return out
}

func TestGetForUser_ClassifiesTasks(t *testing.T) {
	f := newFixture(t)
	u := f.addUser(t, "u@example.com")
	f.addTask(t, u, "A", models.StatusTodo, dur(time.Hour))
	f.addTask(t, u, "B", models.StatusInProgress, dur(-3*time.Hour))
	f.addTask(t, u, "C", models.StatusTodo, dur(48*time.Hour))
	f.addTask(t, u, "D", models.StatusTodo, nil)

	entry, err := f.cache.GetForUser(context.Background(), u)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"A"}, titles(entry.UpcomingTasks))
	assert.ElementsMatch(t, []string{"B"}, titles(entry.OverdueTasks))
	assert.Equal(t, base, entry.LastUpdated)
}

func TestGetForUser_NoDueDatesGivesEmptySets(t *testing.T) {
	f := newFixture(t)
	u := f.addUser(t, "u@example.com")
	f.addTask(t, u, "one", models.StatusTodo, nil)
	f.addTask(t, u, "two", models.StatusInProgress, nil)

	entry, err := f.cache.GetForUser(context.Background(), u)
	require.NoError(t, err)
	assert.NotNil(t, entry.UpcomingTasks)
	assert.NotNil(t, entry.OverdueTasks)
	assert.Empty(t, entry.UpcomingTasks)
	assert.Empty(t, entry.OverdueTasks)
}

func TestGetForUser_CompletedNeverAppears(t *testing.T) {
	f := newFixture(t)
	u := f.addUser(t, "u@example.com")
	for _, d := range []time.Duration{-48 * time.Hour, -time.Second, 0, time.Hour, 24 * time.Hour} {
		f.addTask(t, u, "done", models.StatusCompleted, dur(d))
	}

	entry, err := f.cache.GetForUser(context.Background(), u)
	require.NoError(t, err)
	assert.Empty(t, entry.UpcomingTasks)
	assert.Empty(t, entry.OverdueTasks)
}

func TestGetForUser_WindowBoundaries(t *testing.T) {
	f := newFixture(t)
	u := f.addUser(t, "u@example.com")
	f.addTask(t, u, "now", models.StatusTodo, dur(0))
	f.addTask(t, u, "edge", models.StatusTodo, dur(24*time.Hour))
	f.addTask(t, u, "past-edge", models.StatusTodo, dur(24*time.Hour+time.Second))

	entry, err := f.cache.GetForUser(context.Background(), u)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"now", "edge"}, titles(entry.UpcomingTasks))
	assert.Empty(t, entry.OverdueTasks)
}

func TestGetForUser_SecondCallHitsCache(t *testing.T) {
	f := newFixture(t)
	u := f.addUser(t, "u@example.com")
	f.addTask(t, u, "A", models.StatusTodo, dur(time.Hour))

	first, err := f.cache.GetForUser(context.Background(), u)
	require.NoError(t, err)
	require.NotNil(t, first)
	callsAfterFirst := f.finder.Calls()
	assert.Equal(t, 2, callsAfterFirst, "one computation issues the upcoming and overdue queries")

	// new data is not visible until the next refresh
	f.addTask(t, u, "late", models.StatusTodo, dur(2*time.Hour))
	f.now = f.now.Add(10 * time.Minute)

	second, err := f.cache.GetForUser(context.Background(), u)
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.Equal(t, callsAfterFirst, f.finder.Calls())
}

func TestGetForUser_UnknownUserStillGetsEntry(t *testing.T) {
	f := newFixture(t)

	entry, err := f.cache.GetForUser(context.Background(), 999)
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Empty(t, entry.UpcomingTasks)
	assert.Equal(t, 1, f.cache.Len())
}

func TestGetForUser_ErrorIsPropagatedAndNotCached(t *testing.T) {
	f := newFixture(t)
	u := f.addUser(t, "u@example.com")
	boom := errors.New("db down")
	f.finder.failOn[u] = boom

	entry, err := f.cache.GetForUser(context.Background(), u)
	assert.Nil(t, entry)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, f.cache.Len())

	delete(f.finder.failOn, u)
	entry, err = f.cache.GetForUser(context.Background(), u)
	require.NoError(t, err)
	assert.NotNil(t, entry)
}

func TestRefreshAll_StoresEveryUser(t *testing.T) {
	f := newFixture(t)
	u1 := f.addUser(t, "a@example.com")
	u2 := f.addUser(t, "b@example.com")
	f.addTask(t, u1, "A", models.StatusTodo, dur(time.Hour))
	f.addTask(t, u2, "B", models.StatusTodo, dur(-time.Hour))

	start := f.now
	require.NoError(t, f.cache.RefreshAll(context.Background()))

	refs, err := f.users.ListAll(context.Background())
	require.NoError(t, err)
	for _, ref := range refs {
		entry, ok := f.cache.lookup(ref.ID)
		require.True(t, ok, "user %d has no entry", ref.ID)
		assert.False(t, entry.LastUpdated.Before(start))
	}

	e1, _ := f.cache.lookup(u1)
	assert.ElementsMatch(t, []string{"A"}, titles(e1.UpcomingTasks))
	e2, _ := f.cache.lookup(u2)
	assert.ElementsMatch(t, []string{"B"}, titles(e2.OverdueTasks))
}

func TestRefreshAll_OverwritesExistingEntry(t *testing.T) {
	f := newFixture(t)
	u := f.addUser(t, "u@example.com")
	f.addTask(t, u, "A", models.StatusTodo, dur(time.Hour))

	before, err := f.cache.GetForUser(context.Background(), u)
	require.NoError(t, err)

	f.now = f.now.Add(2 * time.Hour) // A is now overdue
	require.NoError(t, f.cache.RefreshAll(context.Background()))

	after, err := f.cache.GetForUser(context.Background(), u)
	require.NoError(t, err)
	assert.NotSame(t, before, after)
	assert.Empty(t, after.UpcomingTasks)
	assert.ElementsMatch(t, []string{"A"}, titles(after.OverdueTasks))
	assert.Equal(t, f.now, after.LastUpdated)
}

func TestRefreshAll_StopsAtFirstFailure(t *testing.T) {
	f := newFixture(t)
	u1 := f.addUser(t, "a@example.com")
	u2 := f.addUser(t, "b@example.com")
	u3 := f.addUser(t, "c@example.com")
	boom := errors.New("query failed")
	f.finder.failOn[u2] = boom

	err := f.cache.RefreshAll(context.Background())
	require.ErrorIs(t, err, boom)

	_, ok := f.cache.lookup(u1)
	assert.True(t, ok, "users processed before the failure keep their entry")
	_, ok = f.cache.lookup(u2)
	assert.False(t, ok)
	_, ok = f.cache.lookup(u3)
	assert.False(t, ok, "users after the failure are skipped for this cycle")
}

func TestRefreshAll_UserListingError(t *testing.T) {
	f := newFixture(t)
	boom := errors.New("no users")
	c := NewCache(f.finder, failingLister{err: boom})

	assert.ErrorIs(t, c.RefreshAll(context.Background()), boom)
	assert.Equal(t, 0, c.Len())
}

type failingLister struct{ err error }

func (l failingLister) ListAll(context.Context) ([]models.UserRef, error) { return nil, l.err }

func TestCache_ConcurrentAccess(t *testing.T) {
	f := newFixture(t)
	ids := make([]int64, 0, 5)
	for _, e := range []string{"a@x.io", "b@x.io", "c@x.io", "d@x.io", "e@x.io"} {
		ids = append(ids, f.addUser(t, e))
	}

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%5 == 0 {
				_ = f.cache.RefreshAll(context.Background())
				return
			}
			_, err := f.cache.GetForUser(context.Background(), ids[i%len(ids)])
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()
	assert.Equal(t, len(ids), f.cache.Len())
}

func TestRefreshAll_UsesOneCutoffPerCycle(t *testing.T) {
	f := newFixture(t)
	u1 := f.addUser(t, "first@example.com")
	u2 := f.addUser(t, "second@example.com")
	f.addTask(t, u1, "first", models.StatusTodo, dur(30*time.Minute))
	f.addTask(t, u2, "second", models.StatusTodo, dur(30*time.Minute))

	// every clock read moves an hour forward
	var mu sync.Mutex
	tick := base
	cache := NewCache(f.finder, f.users, WithClock(func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		now := tick
		tick = tick.Add(time.Hour)
		return now
	}))

	require.NoError(t, cache.RefreshAll(context.Background()))
	for _, id := range []int64{u1, u2} {
		entry, ok := cache.lookup(id)
		require.True(t, ok)
		assert.Len(t, entry.UpcomingTasks, 1, "user %d", id)
		assert.Empty(t, entry.OverdueTasks, "user %d", id)
		assert.True(t, entry.LastUpdated.After(base))
	}
}
