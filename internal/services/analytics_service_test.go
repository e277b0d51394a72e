package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quicktask/internal/models"
	"quicktask/internal/repositories/memory"
)

var analyticsNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func newAnalytics(repo *memory.TaskRepository) *analyticsService {
	return &analyticsService{repo: repo, now: func() time.Time { return analyticsNow }, loc: time.UTC}
}

func store(t *testing.T, repo *memory.TaskRepository, task models.Task) {
	t.Helper()
	if task.Priority == "" {
		task.Priority = models.PriorityMedium
	}
	require.NoError(t, repo.Store(context.Background(), &task))
}

func TestAnalytics_StatsEmpty(t *testing.T) {
	stats, err := newAnalytics(memory.NewTaskRepository()).Stats(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, models.TaskStats{}, *stats)
}

func TestAnalytics_Stats(t *testing.T) {
	repo := memory.NewTaskRepository()
	created := analyticsNow.Add(-48 * time.Hour)
	past := analyticsNow.Add(-time.Hour)
	store(t, repo, models.Task{OwnerID: 1, Title: "a", Status: models.StatusCompleted, CreatedAt: created, UpdatedAt: created.Add(2 * time.Hour)})
	store(t, repo, models.Task{OwnerID: 1, Title: "b", Status: models.StatusCompleted, CreatedAt: created, UpdatedAt: created.Add(3 * time.Hour)})
	store(t, repo, models.Task{OwnerID: 1, Title: "c", Status: models.StatusTodo, CreatedAt: created, UpdatedAt: created, DueDate: &past})
	store(t, repo, models.Task{OwnerID: 2, Title: "x", Status: models.StatusCompleted, CreatedAt: created, UpdatedAt: created})

	stats, err := newAnalytics(repo).Stats(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalTasks)
	assert.Equal(t, 2.5, stats.AvgCompletionTimeHrs)
	assert.Equal(t, 1, stats.OverdueTasks)
	assert.Equal(t, 66.67, stats.ProductivityScore)
}

func TestAnalytics_TrendsFillsGaps(t *testing.T) {
	repo := memory.NewTaskRepository()
	d := func(days int) time.Time { return analyticsNow.AddDate(0, 0, -days) }
	store(t, repo, models.Task{OwnerID: 1, Title: "a", Status: models.StatusCompleted, UpdatedAt: d(1)})
	store(t, repo, models.Task{OwnerID: 1, Title: "b", Status: models.StatusCompleted, UpdatedAt: d(1).Add(time.Hour)})
	store(t, repo, models.Task{OwnerID: 1, Title: "c", Status: models.StatusCompleted, UpdatedAt: d(3)})
	store(t, repo, models.Task{OwnerID: 1, Title: "open", Status: models.StatusTodo, UpdatedAt: d(1)})
	store(t, repo, models.Task{OwnerID: 1, Title: "old", Status: models.StatusCompleted, UpdatedAt: d(20)})

	points, err := newAnalytics(repo).Trends(context.Background(), 1, 7)
	require.NoError(t, err)
	require.Len(t, points, 8)
	assert.Equal(t, "2025-06-08", points[0].Date)
	assert.Equal(t, "2025-06-15", points[7].Date)

	counts := map[string]int{}
	total := 0
	for _, p := range points {
		counts[p.Date] = p.Count
		total += p.Count
	}
	assert.Equal(t, 2, counts["2025-06-14"])
	assert.Equal(t, 1, counts["2025-06-12"])
	assert.Equal(t, 3, total)
}

func TestAnalytics_TrendsRejectsBadRange(t *testing.T) {
	svc := newAnalytics(memory.NewTaskRepository())
	for _, days := range []int{0, -1, 31} {
		_, err := svc.Trends(context.Background(), 1, days)
		assert.ErrorIs(t, err, ErrInvalidRange, "days=%d", days)
	}
}
