package service

import (
	"context"

	"todoapi/internal/core/domain"
	"todoapi/internal/core/ports"
)

type TaskService struct {
	taskStore ports.TaskStore
}

func NewTaskService(taskStore ports.TaskStore) *TaskService {
	return &TaskService{taskStore: taskStore}
}

func (s *TaskService) ListTasks(ctx context.Context) ([]domain.Task, error) {
	return s.taskStore.List(ctx)
}

func (s *TaskService) CreateTask(ctx context.Context, input domain.NewTaskInput) (domain.Task, error) {
	return s.taskStore.Create(ctx, input)
}

func (s *TaskService) UpdateTask(ctx context.Context, id string, patch domain.TaskPatch) (domain.Task, error) {
	return s.taskStore.Update(ctx, id, patch)
}

// ToggleTask flips the completed flag of the task with id.
func (s *TaskService) ToggleTask(ctx context.Context, id string) (domain.Task, error) {
	tasks, err := s.taskStore.List(ctx)
	if err != nil {
		return domain.Task{}, err
	}

	idx := domain.FindTask(tasks, id)
	if idx < 0 {
		return domain.Task{}, domain.ErrTaskNotFound
	}

	completed := !tasks[idx].Completed
	return s.taskStore.Update(ctx, id, domain.TaskPatch{Completed: &completed})
}

func (s *TaskService) DeleteTask(ctx context.Context, id string) error {
	return s.taskStore.Delete(ctx, id)
}

func (s *TaskService) ReorderTasks(ctx context.Context, plan []domain.ReorderItem) ([]domain.Task, error) {
	return s.taskStore.Reorder(ctx, plan)
}

// Ping reports whether the backing store is reachable.
func (s *TaskService) Ping(ctx context.Context) error {
	return s.taskStore.Ping(ctx)
}

var (
	_ ports.TaskService   = (*TaskService)(nil)
	_ ports.HealthChecker = (*TaskService)(nil)
)
