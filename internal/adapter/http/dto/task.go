package dto

type TaskItem struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Completed   bool   `json:"completed"`
	Priority    string `json:"priority"`
	Order       int64  `json:"order"`
	CreatedAt   int64  `json:"createdAt"`
	UpdatedAt   int64  `json:"updatedAt"`
}

type CreateTaskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Priority    string `json:"priority,omitempty"`
}

// PatchTaskRequest carries only the fields being changed.
type PatchTaskRequest struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Completed   *bool   `json:"completed,omitempty"`
	Priority    *string `json:"priority,omitempty"`
	Order       *int64  `json:"order,omitempty"`
}

type ReorderItem struct {
	ID    string `json:"id"`
	Order int64  `json:"order"`
}

type Health struct {
	OK      bool   `json:"ok"`
	Service string `json:"service"`
}
