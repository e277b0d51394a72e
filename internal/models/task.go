// internal/models/task.go
package models

import "time"

// TaskStatus defines the possible statuses for a task.
type TaskStatus string

const (
	StatusTodo       TaskStatus = "todo"
	StatusInProgress TaskStatus = "in-progress"
	StatusCompleted  TaskStatus = "completed"
)

type TaskPriority string

const (
	PriorityLow    TaskPriority = "low"
	PriorityMedium TaskPriority = "medium"
	PriorityHigh   TaskPriority = "high"
)

// Valid reports whether s is one of the known statuses.
func (s TaskStatus) Valid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

func (p TaskPriority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Task is a single to-do item owned by one user. OwnerID never changes after creation.
type Task struct {
	ID          int64        `json:"id"`
	OwnerID     int64        `json:"owner"`
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`
	Priority    TaskPriority `json:"priority"`
	Status      TaskStatus   `json:"status"`
	DueDate     *time.Time   `json:"dueDate,omitempty"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

// TaskFilter defines the available parameters for listing tasks.
type TaskFilter struct {
	OwnerID   *int64
	Status    *TaskStatus
	Priority  *TaskPriority
	Search    string
	SortField string
	SortDesc  bool
}

// DueRange restricts tasks by due date. From and To are inclusive, Before is exclusive.
// A task without a due date never matches.
type DueRange struct {
	From   *time.Time
	To     *time.Time
	Before *time.Time
}

func (r DueRange) Contains(due *time.Time) bool {
	if due == nil {
		return false
	}
	if r.From != nil && due.Before(*r.From) {
		return false
	}
	if r.To != nil && due.After(*r.To) {
		return false
	}
	if r.Before != nil && !due.Before(*r.Before) {
		return false
	}
	return true
}
