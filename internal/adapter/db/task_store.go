package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"todoapi/internal/core/domain"
	"todoapi/internal/core/ports"
)

const (
	// Equal sort_order values fall back to creation time, which is the order
	// the file store's stable sort ends up with for tasks created one by one.
	selectTasksQuery = `
SELECT id, title, description, completed, priority, sort_order, created_at, updated_at
FROM tasks
ORDER BY sort_order, created_at, id`

	selectTaskByIDQuery = `
SELECT id, title, description, completed, priority, sort_order, created_at, updated_at
FROM tasks
WHERE id = ?`

	selectOrderStatsQuery = `SELECT COUNT(*) AS total, COALESCE(MAX(sort_order), 0) AS max_order FROM tasks`

	insertTaskQuery = `
INSERT INTO tasks (id, title, description, completed, priority, sort_order, created_at, updated_at)
VALUES (:id, :title, :description, :completed, :priority, :sort_order, :created_at, :updated_at)`

	updateTaskQuery = `
UPDATE tasks
SET title = :title, description = :description, completed = :completed, priority = :priority,
    sort_order = :sort_order, updated_at = :updated_at
WHERE id = :id`

	updateTaskOrderQuery = `UPDATE tasks SET sort_order = ?, updated_at = ? WHERE id = ?`

	deleteTaskQuery = `DELETE FROM tasks WHERE id = ?`
)

type taskRow struct {
	ID          string `db:"id"`
	Title       string `db:"title"`
	Description string `db:"description"`
	Completed   bool   `db:"completed"`
	Priority    string `db:"priority"`
	Order       int64  `db:"sort_order"`
	CreatedAt   int64  `db:"created_at"`
	UpdatedAt   int64  `db:"updated_at"`
}

// TaskStore keeps tasks in a SQL table, one row per task. Each mutation runs
// in its own transaction.
type TaskStore struct {
	db    *sqlx.DB
	now   func() time.Time
	newID func() string
}

var _ ports.TaskStore = (*TaskStore)(nil)

func NewTaskStore(db *sqlx.DB) *TaskStore {
	return &TaskStore{db: db, now: time.Now, newID: uuid.NewString}
}

// WithClock replaces the time source, mainly for tests.
func (s *TaskStore) WithClock(now func() time.Time) *TaskStore {
	s.now = now
	return s
}

func (s *TaskStore) List(ctx context.Context) ([]domain.Task, error) {
	var rows []taskRow
	if err := s.db.SelectContext(ctx, &rows, selectTasksQuery); err != nil {
		return nil, err
	}
	return mapTaskRows(rows), nil
}

func (s *TaskStore) Create(ctx context.Context, input domain.NewTaskInput) (domain.Task, error) {
	var task domain.Task
	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		var stats struct {
			Total    int64 `db:"total"`
			MaxOrder int64 `db:"max_order"`
		}
		if err := tx.GetContext(ctx, &stats, selectOrderStatsQuery); err != nil {
			return err
		}

		order := int64(0)
		if stats.Total > 0 {
			order = stats.MaxOrder + 1
		}
		task = domain.NewTask(s.newID(), input, order, s.millis())

		_, err := tx.NamedExecContext(ctx, insertTaskQuery, toTaskRow(task))
		return writeErr(err)
	})
	if err != nil {
		return domain.Task{}, err
	}
	return task, nil
}

func (s *TaskStore) Update(ctx context.Context, id string, patch domain.TaskPatch) (domain.Task, error) {
	var updated domain.Task
	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		var row taskRow
		if err := tx.GetContext(ctx, &row, selectTaskByIDQuery, id); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return domain.ErrTaskNotFound
			}
			return err
		}

		current := row.toDomain()
		current.Normalize()
		updated = current.Apply(patch, s.millis())

		_, err := tx.NamedExecContext(ctx, updateTaskQuery, toTaskRow(updated))
		return writeErr(err)
	})
	if err != nil {
		return domain.Task{}, err
	}
	return updated, nil
}

func (s *TaskStore) Delete(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, deleteTaskQuery, id)
	if err != nil {
		return writeErr(err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return writeErr(err)
	}
	if affected == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

func (s *TaskStore) Reorder(ctx context.Context, plan []domain.ReorderItem) ([]domain.Task, error) {
	var next []domain.Task
	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		var rows []taskRow
		if err := tx.SelectContext(ctx, &rows, selectTasksQuery); err != nil {
			return err
		}

		current := mapTaskRows(rows)
		next = domain.ApplyReorder(current, plan, s.millis())

		before := make(map[string]int64, len(current))
		for _, task := range current {
			before[task.ID] = task.UpdatedAt
		}
		for _, task := range next {
			if before[task.ID] == task.UpdatedAt {
				continue
			}
			if _, err := tx.ExecContext(ctx, updateTaskOrderQuery, task.Order, task.UpdatedAt, task.ID); err != nil {
				return writeErr(err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return next, nil
}

func (s *TaskStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *TaskStore) inTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}

	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return writeErr(err)
	}
	return nil
}

func (s *TaskStore) millis() int64 {
	return s.now().UnixMilli()
}

func writeErr(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %v", domain.ErrWriteFailed, err)
}

func mapTaskRows(rows []taskRow) []domain.Task {
	tasks := make([]domain.Task, 0, len(rows))
	for _, row := range rows {
		task := row.toDomain()
		task.Normalize()
		tasks = append(tasks, task)
	}
	return tasks
}

func (r taskRow) toDomain() domain.Task {
	return domain.Task{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		Completed:   r.Completed,
		Priority:    domain.Priority(r.Priority),
		Order:       r.Order,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

func toTaskRow(t domain.Task) taskRow {
	return taskRow{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Completed:   t.Completed,
		Priority:    string(t.Priority),
		Order:       t.Order,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}
