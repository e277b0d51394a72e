// internal/services/task_service.go
package services

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"quicktask/internal/models"
	"quicktask/internal/repositories"
)

// TaskUpdate carries a partial update; nil fields are left untouched.
type TaskUpdate struct {
	Title        *string
	Description  *string
	Priority     *models.TaskPriority
	Status       *models.TaskStatus
	DueDate      *time.Time
	ClearDueDate bool
}

// TaskService defines the task-related business logic. Every call is scoped to
// the owner making it.
type TaskService interface {
	Create(ctx context.Context, ownerID int64, task *models.Task) (*models.Task, error)
	Get(ctx context.Context, ownerID, id int64) (*models.Task, error)
	List(ctx context.Context, ownerID int64, filter models.TaskFilter) ([]models.Task, error)
	Update(ctx context.Context, ownerID, id int64, upd TaskUpdate) (*models.Task, error)
	UpdateStatus(ctx context.Context, ownerID, id int64, to models.TaskStatus) (*models.Task, error)
	Delete(ctx context.Context, ownerID, id int64) error
	Summary(ctx context.Context, ownerID int64) (*models.DashboardSummary, error)
}

type taskService struct {
	repo repositories.TaskRepository
}

// NewTaskService creates a new instance of TaskService.
func NewTaskService(repo repositories.TaskRepository) TaskService {
	return &taskService{repo: repo}
}

func validateTask(t *models.Task) error {
	t.Title = strings.TrimSpace(t.Title)
	if t.Title == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidTask)
	}
	if !t.Priority.Valid() {
		return fmt.Errorf("%w: unknown priority %q", ErrInvalidTask, t.Priority)
	}
	if !t.Status.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidTask, t.Status)
	}
	return nil
}

func (s *taskService) Create(ctx context.Context, ownerID int64, task *models.Task) (*models.Task, error) {
	task.OwnerID = ownerID
	task.Description = strings.TrimSpace(task.Description)
	if task.Status == "" {
		task.Status = models.StatusTodo
	}
	if task.Priority == "" {
		task.Priority = models.PriorityMedium
	}
	if err := validateTask(task); err != nil {
		return nil, err
	}
	now := time.Now()
	task.CreatedAt = now
	task.UpdatedAt = now

	if err := s.repo.Store(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// Get loads a task and checks that ownerID owns it.
func (s *taskService) Get(ctx context.Context, ownerID, id int64) (*models.Task, error) {
	task, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if task.OwnerID != ownerID {
		return nil, ErrForbidden
	}
	return task, nil
}

func (s *taskService) List(ctx context.Context, ownerID int64, filter models.TaskFilter) ([]models.Task, error) {
	filter.OwnerID = &ownerID
	return s.repo.FindAll(ctx, filter)
}

func (s *taskService) Update(ctx context.Context, ownerID, id int64, upd TaskUpdate) (*models.Task, error) {
	existing, err := s.Get(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	if upd.Title != nil {
		existing.Title = *upd.Title
	}
	if upd.Description != nil {
		existing.Description = strings.TrimSpace(*upd.Description)
	}
	if upd.Priority != nil {
		existing.Priority = *upd.Priority
	}
	if upd.Status != nil {
		existing.Status = *upd.Status
	}
	if upd.ClearDueDate {
		existing.DueDate = nil
	} else if upd.DueDate != nil {
		due := *upd.DueDate
		existing.DueDate = &due
	}
	if err := validateTask(existing); err != nil {
		return nil, err
	}
	existing.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, existing); err != nil {
		return nil, err
	}
	return existing, nil
}

func (s *taskService) UpdateStatus(ctx context.Context, ownerID, id int64, to models.TaskStatus) (*models.Task, error) {
	if !to.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidTask, to)
	}
	if _, err := s.Get(ctx, ownerID, id); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateStatus(ctx, id, to); err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, id)
}

func (s *taskService) Delete(ctx context.Context, ownerID, id int64) error {
	if _, err := s.Get(ctx, ownerID, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

var priorityOrder = []models.TaskPriority{models.PriorityLow, models.PriorityMedium, models.PriorityHigh}

func (s *taskService) Summary(ctx context.Context, ownerID int64) (*models.DashboardSummary, error) {
	byStatus, err := s.repo.CountByStatus(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("count by status: %w", err)
	}
	byPriority, err := s.repo.CountByPriority(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("count by priority: %w", err)
	}

	out := &models.DashboardSummary{PriorityDistribution: []models.PriorityCount{}}
	for st, n := range byStatus {
		out.TotalTasks += n
		if st == models.StatusCompleted {
			out.CompletedTasks += n
		}
	}
	out.PendingTasks = out.TotalTasks - out.CompletedTasks
	if out.TotalTasks > 0 {
		out.CompletionPercentage = int(math.Round(float64(out.CompletedTasks) / float64(out.TotalTasks) * 100))
	}
	for _, p := range priorityOrder {
		if n := byPriority[p]; n > 0 {
			out.PriorityDistribution = append(out.PriorityDistribution, models.PriorityCount{Priority: p, Count: n})
		}
	}
	return out, nil
}
