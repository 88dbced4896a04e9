package domain

import "sort"

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Task is a single to-do item. CreatedAt and UpdatedAt are epoch milliseconds.
type Task struct {
	ID          string
	Title       string
	Description string
	Completed   bool
	Priority    Priority
	Order       int64
	CreatedAt   int64
	UpdatedAt   int64
}

type NewTaskInput struct {
	Title       string
	Description string
	Priority    Priority
}

// TaskPatch is a partial update. nil fields are left untouched.
type TaskPatch struct {
	Title       *string
	Description *string
	Completed   *bool
	Priority    *Priority
	Order       *int64
}

type ReorderItem struct {
	ID    string
	Order int64
}

// NewTask builds a task at the given order, falling back to medium for an
// unknown priority.
func NewTask(id string, in NewTaskInput, order int64, now int64) Task {
	priority := in.Priority
	if !priority.Valid() {
		priority = PriorityMedium
	}

	return Task{
		ID:          id,
		Title:       in.Title,
		Description: in.Description,
		Priority:    priority,
		Order:       order,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Apply returns a copy of t with the patch merged in.
func (t Task) Apply(p TaskPatch, now int64) Task {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Completed != nil {
		t.Completed = *p.Completed
	}
	if p.Priority != nil && p.Priority.Valid() {
		t.Priority = *p.Priority
	}
	if p.Order != nil {
		t.Order = *p.Order
	}
	t.UpdatedAt = NextUpdatedAt(t.UpdatedAt, now)
	return t
}

// Normalize repairs default values on records read back from storage.
func (t *Task) Normalize() {
	if !t.Priority.Valid() {
		t.Priority = PriorityMedium
	}
	if t.UpdatedAt < t.CreatedAt {
		t.UpdatedAt = t.CreatedAt
	}
}

// NextOrder is one past the highest order in tasks, or 0 when tasks is empty.
func NextOrder(tasks []Task) int64 {
	if len(tasks) == 0 {
		return 0
	}
	highest := tasks[0].Order
	for _, task := range tasks[1:] {
		if task.Order > highest {
			highest = task.Order
		}
	}
	return highest + 1
}

// NextUpdatedAt keeps updatedAt strictly increasing even when two writes land
// in the same millisecond.
func NextUpdatedAt(previous, now int64) int64 {
	if now <= previous {
		return previous + 1
	}
	return now
}

// SortByOrder sorts ascending by Order. Ties keep their current relative position.
func SortByOrder(tasks []Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		return tasks[i].Order < tasks[j].Order
	})
}

// ApplyReorder overwrites the order of every task named in plan and returns
// the collection re-sorted. Tasks missing from plan keep their order; plan
// entries naming unknown ids are ignored. When an id repeats, the last entry wins.
func ApplyReorder(tasks []Task, plan []ReorderItem, now int64) []Task {
	desired := make(map[string]int64, len(plan))
	for _, item := range plan {
		desired[item.ID] = item.Order
	}

	next := make([]Task, len(tasks))
	for i, task := range tasks {
		if order, ok := desired[task.ID]; ok {
			task.Order = order
			task.UpdatedAt = NextUpdatedAt(task.UpdatedAt, now)
		}
		next[i] = task
	}

	SortByOrder(next)
	return next
}

// FindTask returns the index of the task with id, or -1.
func FindTask(tasks []Task, id string) int {
	for i, task := range tasks {
		if task.ID == id {
			return i
		}
	}
	return -1
}
