package client

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"todoapi/internal/core/domain"
)

// Notification texts shown to the user on failed actions.
const (
	MsgCreateFailed  = "Create failed"
	MsgUpdateFailed  = "Update failed"
	MsgDeleteFailed  = "Delete failed"
	MsgReorderFailed = "Reorder failed"
)

var ErrTitleRequired = errors.New("title is required")

// API is the subset of Client the Controller needs.
type API interface {
	ListTasks(ctx context.Context) ([]domain.Task, error)
	CreateTask(ctx context.Context, input domain.NewTaskInput) (domain.Task, error)
	UpdateTask(ctx context.Context, id string, patch domain.TaskPatch) (domain.Task, error)
	DeleteTask(ctx context.Context, id string) error
	ReorderTasks(ctx context.Context, plan []domain.ReorderItem) ([]domain.Task, error)
}

type Notifier interface {
	Notify(message string)
}

type Confirmer interface {
	ConfirmDelete(task domain.Task) bool
}

type NotifierFunc func(message string)

func (f NotifierFunc) Notify(message string) { f(message) }

type ConfirmerFunc func(task domain.Task) bool

func (f ConfirmerFunc) ConfirmDelete(task domain.Task) bool { return f(task) }

var _ API = (*Client)(nil)

// Controller mirrors the server's task list. Toggle and move are applied
// locally before the request goes out; everything else waits for the server.
type Controller struct {
	api     API
	notify  Notifier
	confirm Confirmer
	logger  *zap.Logger

	mu    sync.Mutex
	tasks []domain.Task
}

func NewController(api API, notify Notifier, confirm Confirmer, logger *zap.Logger) *Controller {
	if notify == nil {
		notify = NotifierFunc(func(string) {})
	}
	if confirm == nil {
		confirm = ConfirmerFunc(func(domain.Task) bool { return true })
	}
	if logger == nil {
		logger = zap.L()
	}
	return &Controller{api: api, notify: notify, confirm: confirm, logger: logger, tasks: []domain.Task{}}
}

// Load fetches the list once. A failure is logged and leaves the list empty.
func (c *Controller) Load(ctx context.Context) error {
	tasks, err := c.api.ListTasks(ctx)
	if err != nil {
		c.logger.Error("fetch tasks failed", zap.Error(err))
		c.set([]domain.Task{})
		return err
	}
	c.set(tasks)
	return nil
}

// Tasks returns a copy of the local list in its current order.
func (c *Controller) Tasks() []domain.Task {
	c.mu.Lock()
	defer c.mu.Unlock()
	return cloneTasks(c.tasks)
}

func (c *Controller) Create(ctx context.Context, input domain.NewTaskInput) (domain.Task, error) {
	input.Title = strings.TrimSpace(input.Title)
	if input.Title == "" {
		return domain.Task{}, ErrTitleRequired
	}

	created, err := c.api.CreateTask(ctx, input)
	if err != nil {
		c.logger.Error("create failed", zap.Error(err))
		c.notify.Notify(MsgCreateFailed)
		return domain.Task{}, err
	}

	c.mu.Lock()
	next := append(cloneTasks(c.tasks), created)
	domain.SortByOrder(next)
	c.tasks = next
	c.mu.Unlock()
	return created, nil
}

// ToggleDone flips completed locally, then persists it. On failure the task
// goes back to what it was before the flip.
func (c *Controller) ToggleDone(ctx context.Context, id string) (domain.Task, error) {
	c.mu.Lock()
	idx := domain.FindTask(c.tasks, id)
	if idx < 0 {
		c.mu.Unlock()
		return domain.Task{}, fmt.Errorf("%w: %s", domain.ErrTaskNotFound, id)
	}
	previous := c.tasks[idx]
	flipped := previous
	flipped.Completed = !previous.Completed
	c.tasks = replaceTask(c.tasks, flipped)
	c.mu.Unlock()

	completed := flipped.Completed
	updated, err := c.api.UpdateTask(ctx, id, domain.TaskPatch{Completed: &completed})
	if err != nil {
		c.logger.Error("toggle failed", zap.String("task_id", id), zap.Error(err))
		c.mu.Lock()
		c.tasks = replaceTask(c.tasks, previous)
		c.mu.Unlock()
		c.notify.Notify(MsgUpdateFailed)
		return previous, err
	}

	c.mu.Lock()
	c.tasks = replaceTask(c.tasks, updated)
	c.mu.Unlock()
	return updated, nil
}

// Delete asks for confirmation and only removes the task once the server has
// answered 204. It reports false when the user declined.
func (c *Controller) Delete(ctx context.Context, id string) (bool, error) {
	c.mu.Lock()
	idx := domain.FindTask(c.tasks, id)
	if idx < 0 {
		c.mu.Unlock()
		return false, fmt.Errorf("%w: %s", domain.ErrTaskNotFound, id)
	}
	task := c.tasks[idx]
	c.mu.Unlock()

	if !c.confirm.ConfirmDelete(task) {
		return false, nil
	}

	if err := c.api.DeleteTask(ctx, id); err != nil {
		c.logger.Error("delete failed", zap.String("task_id", id), zap.Error(err))
		c.notify.Notify(MsgDeleteFailed)
		return false, err
	}

	c.mu.Lock()
	c.tasks = removeTask(c.tasks, id)
	c.mu.Unlock()
	return true, nil
}

func (c *Controller) MoveLeft(ctx context.Context, id string) error {
	return c.moveBySwap(ctx, id, -1)
}

func (c *Controller) MoveRight(ctx context.Context, id string) error {
	return c.moveBySwap(ctx, id, 1)
}

// moveBySwap swaps the task with its neighbour, renumbers the list 0..n-1 and
// sends the whole plan. The server's answer replaces the local list. On
// failure the list is fetched again instead of rolled back.
func (c *Controller) moveBySwap(ctx context.Context, id string, dir int) error {
	c.mu.Lock()
	items := cloneTasks(c.tasks)
	domain.SortByOrder(items)

	idx := domain.FindTask(items, id)
	target := idx + dir
	if idx < 0 || target < 0 || target >= len(items) {
		c.mu.Unlock()
		return nil
	}

	items[idx], items[target] = items[target], items[idx]
	plan := make([]domain.ReorderItem, 0, len(items))
	for i := range items {
		items[i].Order = int64(i)
		plan = append(plan, domain.ReorderItem{ID: items[i].ID, Order: int64(i)})
	}
	c.tasks = items
	c.mu.Unlock()

	updated, err := c.api.ReorderTasks(ctx, plan)
	if err == nil {
		c.set(updated)
		return nil
	}

	c.logger.Error("reorder failed", zap.String("task_id", id), zap.Error(err))
	c.notify.Notify(MsgReorderFailed)

	tasks, fetchErr := c.api.ListTasks(ctx)
	if fetchErr != nil {
		c.logger.Error("failed to reload tasks", zap.Error(fetchErr))
		return err
	}
	c.set(tasks)
	return err
}

// EditDraft holds the values an edit form starts from and submits.
type EditDraft struct {
	Title       string
	Description string
	Priority    domain.Priority
}

// EditDraft returns the current values of a task to seed an edit form.
func (c *Controller) EditDraft(id string) (EditDraft, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	idx := domain.FindTask(c.tasks, id)
	if idx < 0 {
		return EditDraft{}, false
	}
	task := c.tasks[idx]
	return EditDraft{Title: task.Title, Description: task.Description, Priority: task.Priority}, true
}

// Edit saves a draft. The local task is replaced by the server's version.
func (c *Controller) Edit(ctx context.Context, id string, draft EditDraft) (domain.Task, error) {
	title := strings.TrimSpace(draft.Title)
	if title == "" {
		return domain.Task{}, ErrTitleRequired
	}
	description := strings.TrimSpace(draft.Description)
	patch := domain.TaskPatch{Title: &title, Description: &description}
	if draft.Priority != "" {
		priority := draft.Priority
		patch.Priority = &priority
	}

	updated, err := c.api.UpdateTask(ctx, id, patch)
	if err != nil {
		c.logger.Error("update failed", zap.String("task_id", id), zap.Error(err))
		c.notify.Notify(MsgUpdateFailed)
		return domain.Task{}, err
	}

	c.mu.Lock()
	c.tasks = replaceTask(c.tasks, updated)
	c.mu.Unlock()
	return updated, nil
}

func (c *Controller) set(tasks []domain.Task) {
	next := cloneTasks(tasks)
	if next == nil {
		next = []domain.Task{}
	}
	c.mu.Lock()
	c.tasks = next
	c.mu.Unlock()
}

func cloneTasks(tasks []domain.Task) []domain.Task {
	if tasks == nil {
		return nil
	}
	out := make([]domain.Task, len(tasks))
	copy(out, tasks)
	return out
}

func replaceTask(tasks []domain.Task, task domain.Task) []domain.Task {
	out := cloneTasks(tasks)
	if idx := domain.FindTask(out, task.ID); idx >= 0 {
		out[idx] = task
	}
	return out
}

func removeTask(tasks []domain.Task, id string) []domain.Task {
	out := make([]domain.Task, 0, len(tasks))
	for _, task := range tasks {
		if task.ID != id {
			out = append(out, task)
		}
	}
	return out
}
