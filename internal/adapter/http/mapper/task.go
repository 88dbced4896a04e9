package mapper

import (
	"todoapi/internal/adapter/http/dto"
	"todoapi/internal/core/domain"
)

func ToTaskItems(tasks []domain.Task) []dto.TaskItem {
	items := make([]dto.TaskItem, 0, len(tasks))
	for _, task := range tasks {
		items = append(items, ToTaskItem(task))
	}
	return items
}

func ToTaskItem(task domain.Task) dto.TaskItem {
	return dto.TaskItem{
		ID:          task.ID,
		Title:       task.Title,
		Description: task.Description,
		Completed:   task.Completed,
		Priority:    string(task.Priority),
		Order:       task.Order,
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
	}
}

func FromTaskItems(items []dto.TaskItem) []domain.Task {
	tasks := make([]domain.Task, 0, len(items))
	for _, item := range items {
		tasks = append(tasks, FromTaskItem(item))
	}
	return tasks
}

func FromTaskItem(item dto.TaskItem) domain.Task {
	return domain.Task{
		ID:          item.ID,
		Title:       item.Title,
		Description: item.Description,
		Completed:   item.Completed,
		Priority:    domain.Priority(item.Priority),
		Order:       item.Order,
		CreatedAt:   item.CreatedAt,
		UpdatedAt:   item.UpdatedAt,
	}
}

func ToCreateTaskRequest(input domain.NewTaskInput) dto.CreateTaskRequest {
	return dto.CreateTaskRequest{
		Title:       input.Title,
		Description: input.Description,
		Priority:    string(input.Priority),
	}
}

func ToPatchTaskRequest(patch domain.TaskPatch) dto.PatchTaskRequest {
	req := dto.PatchTaskRequest{
		Title:       patch.Title,
		Description: patch.Description,
		Completed:   patch.Completed,
		Order:       patch.Order,
	}
	if patch.Priority != nil {
		value := string(*patch.Priority)
		req.Priority = &value
	}
	return req
}

func ToReorderItems(plan []domain.ReorderItem) []dto.ReorderItem {
	items := make([]dto.ReorderItem, 0, len(plan))
	for _, item := range plan {
		items = append(items, dto.ReorderItem{ID: item.ID, Order: item.Order})
	}
	return items
}
