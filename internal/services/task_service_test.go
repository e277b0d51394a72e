package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quicktask/internal/models"
	"quicktask/internal/repositories"
	"quicktask/internal/repositories/memory"
)

func strPtr(s string) *string { return &s }

func TestTaskService_CreateDefaults(t *testing.T) {
	svc := NewTaskService(memory.NewTaskRepository())

	task, err := svc.Create(context.Background(), 1, &models.Task{Title: "  Buy milk  ", OwnerID: 99})
	require.NoError(t, err)
	assert.NotZero(t, task.ID)
	assert.Equal(t, int64(1), task.OwnerID, "owner comes from the caller")
	assert.Equal(t, "Buy milk", task.Title)
	assert.Equal(t, models.StatusTodo, task.Status)
	assert.Equal(t, models.PriorityMedium, task.Priority)
	assert.False(t, task.CreatedAt.IsZero())
}

func TestTaskService_CreateValidation(t *testing.T) {
	svc := NewTaskService(memory.NewTaskRepository())
	ctx := context.Background()

	_, err := svc.Create(ctx, 1, &models.Task{Title: "   "})
	assert.ErrorIs(t, err, ErrInvalidTask)

	_, err = svc.Create(ctx, 1, &models.Task{Title: "x", Priority: "urgent"})
	assert.ErrorIs(t, err, ErrInvalidTask)

	_, err = svc.Create(ctx, 1, &models.Task{Title: "x", Status: "done"})
	assert.ErrorIs(t, err, ErrInvalidTask)
}

func TestTaskService_OwnershipIsEnforced(t *testing.T) {
	svc := NewTaskService(memory.NewTaskRepository())
	ctx := context.Background()
	task, err := svc.Create(ctx, 1, &models.Task{Title: "mine"})
	require.NoError(t, err)

	_, err = svc.Get(ctx, 2, task.ID)
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = svc.Update(ctx, 2, task.ID, TaskUpdate{Title: strPtr("hijack")})
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = svc.UpdateStatus(ctx, 2, task.ID, models.StatusCompleted)
	assert.ErrorIs(t, err, ErrForbidden)
	assert.ErrorIs(t, svc.Delete(ctx, 2, task.ID), ErrForbidden)

	_, err = svc.Get(ctx, 1, 12345)
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestTaskService_UpdatePartial(t *testing.T) {
	svc := NewTaskService(memory.NewTaskRepository())
	ctx := context.Background()
	due := time.Now().Add(time.Hour).UTC()
	task, err := svc.Create(ctx, 1, &models.Task{Title: "draft", Description: "d", DueDate: &due})
	require.NoError(t, err)

	high := models.PriorityHigh
	updated, err := svc.Update(ctx, 1, task.ID, TaskUpdate{Priority: &high})
	require.NoError(t, err)
	assert.Equal(t, "draft", updated.Title)
	assert.Equal(t, "d", updated.Description)
	assert.Equal(t, models.PriorityHigh, updated.Priority)
	require.NotNil(t, updated.DueDate)

	updated, err = svc.Update(ctx, 1, task.ID, TaskUpdate{ClearDueDate: true})
	require.NoError(t, err)
	assert.Nil(t, updated.DueDate)

	_, err = svc.Update(ctx, 1, task.ID, TaskUpdate{Title: strPtr("")})
	assert.ErrorIs(t, err, ErrInvalidTask)

	got, err := svc.Get(ctx, 1, task.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.OwnerID)
	assert.Equal(t, "draft", got.Title)
}

func TestTaskService_UpdateStatus(t *testing.T) {
	svc := NewTaskService(memory.NewTaskRepository())
	ctx := context.Background()
	task, err := svc.Create(ctx, 1, &models.Task{Title: "t"})
	require.NoError(t, err)

	got, err := svc.UpdateStatus(ctx, 1, task.ID, models.StatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, got.Status)

	_, err = svc.UpdateStatus(ctx, 1, task.ID, "archived")
	assert.ErrorIs(t, err, ErrInvalidTask)
}

func TestTaskService_DeleteAndList(t *testing.T) {
	svc := NewTaskService(memory.NewTaskRepository())
	ctx := context.Background()
	a, _ := svc.Create(ctx, 1, &models.Task{Title: "a"})
	_, _ = svc.Create(ctx, 1, &models.Task{Title: "b"})
	_, _ = svc.Create(ctx, 2, &models.Task{Title: "other"})

	require.NoError(t, svc.Delete(ctx, 1, a.ID))
	list, err := svc.List(ctx, 1, models.TaskFilter{})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "b", list[0].Title)
}

func TestTaskService_Summary(t *testing.T) {
	svc := NewTaskService(memory.NewTaskRepository())
	ctx := context.Background()

	empty, err := svc.Summary(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 0, empty.TotalTasks)
	assert.Equal(t, 0, empty.CompletionPercentage)
	assert.Empty(t, empty.PriorityDistribution)

	_, _ = svc.Create(ctx, 1, &models.Task{Title: "a", Priority: models.PriorityHigh, Status: models.StatusCompleted})
	_, _ = svc.Create(ctx, 1, &models.Task{Title: "b", Priority: models.PriorityHigh})
	_, _ = svc.Create(ctx, 1, &models.Task{Title: "c", Priority: models.PriorityLow, Status: models.StatusInProgress})
	_, _ = svc.Create(ctx, 2, &models.Task{Title: "x"})

	sum, err := svc.Summary(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 3, sum.TotalTasks)
	assert.Equal(t, 1, sum.CompletedTasks)
	assert.Equal(t, 2, sum.PendingTasks)
	assert.Equal(t, 33, sum.CompletionPercentage)
	assert.Equal(t, []models.PriorityCount{
		{Priority: models.PriorityLow, Count: 1},
		{Priority: models.PriorityHigh, Count: 2},
	}, sum.PriorityDistribution)
}
