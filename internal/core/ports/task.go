package ports

import (
	"context"

	"todoapi/internal/core/domain"
)

// TaskStore owns the authoritative task collection. Every read is sorted
// ascending by order.
type TaskStore interface {
	List(ctx context.Context) ([]domain.Task, error)
	Create(ctx context.Context, input domain.NewTaskInput) (domain.Task, error)
	Update(ctx context.Context, id string, patch domain.TaskPatch) (domain.Task, error)
	Delete(ctx context.Context, id string) error
	Reorder(ctx context.Context, plan []domain.ReorderItem) ([]domain.Task, error)
	Ping(ctx context.Context) error
}

type TaskService interface {
	ListTasks(ctx context.Context) ([]domain.Task, error)
	CreateTask(ctx context.Context, input domain.NewTaskInput) (domain.Task, error)
	UpdateTask(ctx context.Context, id string, patch domain.TaskPatch) (domain.Task, error)
	ToggleTask(ctx context.Context, id string) (domain.Task, error)
	DeleteTask(ctx context.Context, id string) error
	ReorderTasks(ctx context.Context, plan []domain.ReorderItem) ([]domain.Task, error)
}

type HealthChecker interface {
	Ping(ctx context.Context) error
}
