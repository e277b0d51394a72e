package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"quicktask/internal/models"
)

type TaskRepository interface {
	Store(ctx context.Context, task *models.Task) error
	FindByID(ctx context.Context, id int64) (*models.Task, error)
	FindAll(ctx context.Context, filter models.TaskFilter) ([]models.Task, error)
	Update(ctx context.Context, task *models.Task) error
	UpdateStatus(ctx context.Context, id int64, to models.TaskStatus) error
	Delete(ctx context.Context, id int64) error

	FindByOwnerAndPredicate(ctx context.Context, ownerID int64, statusNot models.TaskStatus, due models.DueRange) ([]models.Task, error)
	CountByStatus(ctx context.Context, ownerID int64) (map[models.TaskStatus]int, error)
	CountByPriority(ctx context.Context, ownerID int64) (map[models.TaskPriority]int, error)
	ListCompletedBetween(ctx context.Context, ownerID int64, from, to time.Time) ([]models.Task, error)
}

const taskColumns = `id, owner_id, title, description, priority, status, due_date, created_at, updated_at`

// API-facing sort keys mapped to columns; anything else falls back to created_at.
var taskSortColumns = map[string]string{
	"createdAt": "created_at",
	"updatedAt": "updated_at",
	"dueDate":   "due_date",
	"title":     "title",
	"priority":  "priority",
	"status":    "status",
}

type taskRepository struct {
	db *sql.DB
}

func NewTaskRepository(db *sql.DB) TaskRepository {
	return &taskRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(s rowScanner, t *models.Task) error {
	return s.Scan(
		&t.ID, &t.OwnerID, &t.Title, &t.Description, &t.Priority, &t.Status,
		&t.DueDate, &t.CreatedAt, &t.UpdatedAt,
	)
}

func (r *taskRepository) queryTasks(ctx context.Context, query string, args ...any) ([]models.Task, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := []models.Task{}
	for rows.Next() {
		var t models.Task
		if err := scanTask(rows, &t); err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func (r *taskRepository) Store(ctx context.Context, task *models.Task) error {
	query := `
		INSERT INTO tasks (owner_id, title, description, priority, status, due_date, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		RETURNING id, created_at, updated_at`
	return r.db.QueryRowContext(ctx, query,
		task.OwnerID, task.Title, task.Description, task.Priority, task.Status,
		task.DueDate, task.CreatedAt, task.UpdatedAt,
	).Scan(&task.ID, &task.CreatedAt, &task.UpdatedAt)
}

func (r *taskRepository) FindByID(ctx context.Context, id int64) (*models.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1`
	task := &models.Task{}
	if err := scanTask(r.db.QueryRowContext(ctx, query, id), task); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("task %d: %w", id, ErrNotFound)
		}
		return nil, err
	}
	return task, nil
}

func (r *taskRepository) FindAll(ctx context.Context, filter models.TaskFilter) ([]models.Task, error) {
	baseQuery := `SELECT ` + taskColumns + ` FROM tasks`

	conditions := []string{}
	args := []any{}
	argID := 1

	if filter.OwnerID != nil {
		conditions = append(conditions, fmt.Sprintf("owner_id = $%d", argID))
		args = append(args, *filter.OwnerID)
		argID++
	}
	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argID))
		args = append(args, *filter.Status)
		argID++
	}
	if filter.Priority != nil {
		conditions = append(conditions, fmt.Sprintf("priority = $%d", argID))
		args = append(args, *filter.Priority)
		argID++
	}
	if s := strings.TrimSpace(filter.Search); s != "" {
		conditions = append(conditions, fmt.Sprintf(`title ILIKE $%d ESCAPE '\'`, argID))
		args = append(args, "%"+escapeLike(s)+"%")
		argID++
	}

	if len(conditions) > 0 {
		baseQuery += " WHERE " + strings.Join(conditions, " AND ")
	}
	baseQuery += " ORDER BY " + orderBy(filter)

	return r.queryTasks(ctx, baseQuery, args...)
}

func orderBy(filter models.TaskFilter) string {
	col, ok := taskSortColumns[filter.SortField]
	if !ok {
		return "created_at DESC"
	}
	if filter.SortDesc {
		return col + " DESC"
	}
	return col + " ASC"
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// Update writes the mutable fields only; owner_id is never touched.
func (r *taskRepository) Update(ctx context.Context, task *models.Task) error {
	query := `
		UPDATE tasks SET
			title=$1, description=$2, priority=$3, status=$4, due_date=$5, updated_at=$6
		WHERE id=$7`
	res, err := r.db.ExecContext(ctx, query,
		task.Title, task.Description, task.Priority, task.Status, task.DueDate, task.UpdatedAt, task.ID,
	)
	if err != nil {
		return err
	}
	return expectAffected(res, "task", task.ID)
}

func (r *taskRepository) UpdateStatus(ctx context.Context, id int64, to models.TaskStatus) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE tasks SET status=$1, updated_at=NOW() WHERE id=$2`, to, id)
	if err != nil {
		return err
	}
	return expectAffected(res, "task", id)
}

func (r *taskRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return expectAffected(res, "task", id)
}

func expectAffected(res sql.Result, kind string, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s %d: %w", kind, id, ErrNotFound)
	}
	return nil
}

func (r *taskRepository) FindByOwnerAndPredicate(ctx context.Context, ownerID int64, statusNot models.TaskStatus, due models.DueRange) ([]models.Task, error) {
	conditions := []string{"owner_id = $1", "status <> $2", "due_date IS NOT NULL"}
	args := []any{ownerID, statusNot}
	argID := 3

	if due.From != nil {
		conditions = append(conditions, fmt.Sprintf("due_date >= $%d", argID))
		args = append(args, *due.From)
		argID++
	}
	if due.To != nil {
		conditions = append(conditions, fmt.Sprintf("due_date <= $%d", argID))
		args = append(args, *due.To)
		argID++
	}
	if due.Before != nil {
		conditions = append(conditions, fmt.Sprintf("due_date < $%d", argID))
		args = append(args, *due.Before)
		argID++
	}

	query := `SELECT ` + taskColumns + ` FROM tasks WHERE ` + strings.Join(conditions, " AND ")
	return r.queryTasks(ctx, query, args...)
}

func (r *taskRepository) CountByStatus(ctx context.Context, ownerID int64) (map[models.TaskStatus]int, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT status, COUNT(*) FROM tasks WHERE owner_id = $1 GROUP BY status`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[models.TaskStatus]int{}
	for rows.Next() {
		var (
			st models.TaskStatus
			n  int
		)
		if err := rows.Scan(&st, &n); err != nil {
			return nil, err
		}
		out[st] = n
	}
	return out, rows.Err()
}

func (r *taskRepository) CountByPriority(ctx context.Context, ownerID int64) (map[models.TaskPriority]int, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT priority, COUNT(*) FROM tasks WHERE owner_id = $1 GROUP BY priority`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[models.TaskPriority]int{}
	for rows.Next() {
		var (
			p models.TaskPriority
			n int
		)
		if err := rows.Scan(&p, &n); err != nil {
			return nil, err
		}
		out[p] = n
	}
	return out, rows.Err()
}

func (r *taskRepository) ListCompletedBetween(ctx context.Context, ownerID int64, from, to time.Time) ([]models.Task, error) {
	q := `
SELECT ` + taskColumns + `
FROM tasks
WHERE owner_id = $1
  AND status = 'completed'
  AND updated_at >= $2
  AND updated_at <= $3
ORDER BY updated_at ASC`
	return r.queryTasks(ctx, q, ownerID, from, to)
}
