// Package memory holds map-backed repositories used when no database is configured
// and by tests. Data lives for the lifetime of the process.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"quicktask/internal/models"
	"quicktask/internal/repositories"
)

type TaskRepository struct {
	mu     sync.RWMutex
	nextID int64
	tasks  map[int64]models.Task
}

var _ repositories.TaskRepository = (*TaskRepository)(nil)

func NewTaskRepository() *TaskRepository {
	return &TaskRepository{tasks: make(map[int64]models.Task)}
}

func (r *TaskRepository) Store(_ context.Context, task *models.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	task.ID = r.nextID
	r.tasks[task.ID] = *task
	return nil
}

func (r *TaskRepository) FindByID(_ context.Context, id int64) (*models.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tasks[id]
	if !ok {
		return nil, fmt.Errorf("task %d: %w", id, repositories.ErrNotFound)
	}
	return &t, nil
}

func (r *TaskRepository) FindAll(_ context.Context, filter models.TaskFilter) ([]models.Task, error) {
	search := strings.ToLower(strings.TrimSpace(filter.Search))
	out := r.collect(func(t models.Task) bool {
		if filter.OwnerID != nil && t.OwnerID != *filter.OwnerID {
			return false
		}
		if filter.Status != nil && t.Status != *filter.Status {
			return false
		}
		if filter.Priority != nil && t.Priority != *filter.Priority {
			return false
		}
		if search != "" && !strings.Contains(strings.ToLower(t.Title), search) {
			return false
		}
		return true
	})
	sortTasks(out, filter)
	return out, nil
}

func sortTasks(tasks []models.Task, filter models.TaskFilter) {
	less := func(a, b models.Task) bool { return a.CreatedAt.Before(b.CreatedAt) }
	desc := filter.SortDesc
	switch filter.SortField {
	case "updatedAt":
		less = func(a, b models.Task) bool { return a.UpdatedAt.Before(b.UpdatedAt) }
	case "dueDate":
		less = func(a, b models.Task) bool {
			if a.DueDate == nil || b.DueDate == nil {
				return a.DueDate != nil && b.DueDate == nil
			}
			return a.DueDate.Before(*b.DueDate)
		}
	case "title":
		less = func(a, b models.Task) bool { return a.Title < b.Title }
	case "priority":
		less = func(a, b models.Task) bool { return a.Priority < b.Priority }
	case "status":
		less = func(a, b models.Task) bool { return a.Status < b.Status }
	case "createdAt":
	default:
		desc = true
	}
	sort.SliceStable(tasks, func(i, j int) bool {
		if desc {
			return less(tasks[j], tasks[i])
		}
		return less(tasks[i], tasks[j])
	})
}

func (r *TaskRepository) Update(_ context.Context, task *models.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.tasks[task.ID]
	if !ok {
		return fmt.Errorf("task %d: %w", task.ID, repositories.ErrNotFound)
	}
	cur.Title = task.Title
	cur.Description = task.Description
	cur.Priority = task.Priority
	cur.Status = task.Status
	cur.DueDate = task.DueDate
	cur.UpdatedAt = task.UpdatedAt
	r.tasks[task.ID] = cur
	return nil
}

func (r *TaskRepository) UpdateStatus(_ context.Context, id int64, to models.TaskStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.tasks[id]
	if !ok {
		return fmt.Errorf("task %d: %w", id, repositories.ErrNotFound)
	}
	cur.Status = to
	cur.UpdatedAt = time.Now()
	r.tasks[id] = cur
	return nil
}

func (r *TaskRepository) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tasks[id]; !ok {
		return fmt.Errorf("task %d: %w", id, repositories.ErrNotFound)
	}
	delete(r.tasks, id)
	return nil
}

func (r *TaskRepository) FindByOwnerAndPredicate(_ context.Context, ownerID int64, statusNot models.TaskStatus, due models.DueRange) ([]models.Task, error) {
	return r.collect(func(t models.Task) bool {
		return t.OwnerID == ownerID && t.Status != statusNot && due.Contains(t.DueDate)
	}), nil
}

func (r *TaskRepository) CountByStatus(_ context.Context, ownerID int64) (map[models.TaskStatus]int, error) {
	out := map[models.TaskStatus]int{}
	for _, t := range r.collect(func(t models.Task) bool { return t.OwnerID == ownerID }) {
		out[t.Status]++
	}
	return out, nil
}

func (r *TaskRepository) CountByPriority(_ context.Context, ownerID int64) (map[models.TaskPriority]int, error) {
	out := map[models.TaskPriority]int{}
	for _, t := range r.collect(func(t models.Task) bool { return t.OwnerID == ownerID }) {
		out[t.Priority]++
	}
	return out, nil
}

func (r *TaskRepository) ListCompletedBetween(_ context.Context, ownerID int64, from, to time.Time) ([]models.Task, error) {
	out := r.collect(func(t models.Task) bool {
		return t.OwnerID == ownerID && t.Status == models.StatusCompleted &&
			!t.UpdatedAt.Before(from) && !t.UpdatedAt.After(to)
	})
	sort.SliceStable(out, func(i, j int) bool { return out[i].UpdatedAt.Before(out[j].UpdatedAt) })
	return out, nil
}

// collect returns copies of matching tasks ordered by id.
func (r *TaskRepository) collect(match func(models.Task) bool) []models.Task {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []models.Task{}
	for _, t := range r.tasks {
		if match(t) {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
