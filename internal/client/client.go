// Package client talks to the task API over HTTP and keeps an optimistic
// in-memory copy of the task list for interactive front ends.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"todoapi/internal/adapter/http/dto"
	"todoapi/internal/adapter/http/mapper"
	"todoapi/internal/core/domain"
	"todoapi/pkg/apierrors"
)

const DefaultBaseURL = "http://localhost:4000"

type Config struct {
	BaseURL  string        `env:"TODO_API_URL" envDefault:"http://localhost:4000"`
	Timeout  time.Duration `env:"TODO_API_TIMEOUT" envDefault:"10s"`
	Language string        `env:"TODO_LANG"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// StatusError is returned for any response outside the expected status.
// Message carries the server's translated error text when there is one.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("HTTP %d", e.Code)
	}
	return fmt.Sprintf("HTTP %d: %s", e.Code, e.Message)
}

// IsNotFound reports whether err is a 404 from the API.
func IsNotFound(err error) bool {
	var statusErr *StatusError
	return errors.As(err, &statusErr) && statusErr.Code == http.StatusNotFound
}

type Client struct {
	BaseURL  string
	Language string
	HTTP     *http.Client
}

func New(cfg Config) *Client {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		BaseURL:  baseURL,
		Language: cfg.Language,
		HTTP:     &http.Client{Timeout: cfg.Timeout},
	}
}

func (c *Client) ListTasks(ctx context.Context) ([]domain.Task, error) {
	var items []dto.TaskItem
	if err := c.do(ctx, http.MethodGet, "/api/tasks", nil, http.StatusOK, &items); err != nil {
		return nil, err
	}
	return mapper.FromTaskItems(items), nil
}

func (c *Client) CreateTask(ctx context.Context, input domain.NewTaskInput) (domain.Task, error) {
	var item dto.TaskItem
	if err := c.do(ctx, http.MethodPost, "/api/tasks", mapper.ToCreateTaskRequest(input), http.StatusCreated, &item); err != nil {
		return domain.Task{}, err
	}
	return mapper.FromTaskItem(item), nil
}

func (c *Client) UpdateTask(ctx context.Context, id string, patch domain.TaskPatch) (domain.Task, error) {
	var item dto.TaskItem
	if err := c.do(ctx, http.MethodPatch, taskPath(id), mapper.ToPatchTaskRequest(patch), http.StatusOK, &item); err != nil {
		return domain.Task{}, err
	}
	return mapper.FromTaskItem(item), nil
}

func (c *Client) ToggleTask(ctx context.Context, id string) (domain.Task, error) {
	var item dto.TaskItem
	if err := c.do(ctx, http.MethodPatch, taskPath(id)+"/toggle", nil, http.StatusOK, &item); err != nil {
		return domain.Task{}, err
	}
	return mapper.FromTaskItem(item), nil
}

// DeleteTask succeeds only on 204.
func (c *Client) DeleteTask(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, taskPath(id), nil, http.StatusNoContent, nil)
}

func (c *Client) ReorderTasks(ctx context.Context, plan []domain.ReorderItem) ([]domain.Task, error) {
	var items []dto.TaskItem
	if err := c.do(ctx, http.MethodPut, "/api/tasks/reorder", mapper.ToReorderItems(plan), http.StatusOK, &items); err != nil {
		return nil, err
	}
	return mapper.FromTaskItems(items), nil
}

func (c *Client) Health(ctx context.Context) (dto.Health, error) {
	var health dto.Health
	if err := c.do(ctx, http.MethodGet, "/api/health", nil, http.StatusOK, &health); err != nil {
		return dto.Health{}, err
	}
	return health, nil
}

func (c *Client) do(ctx context.Context, method, path string, body any, want int, out any) error {
	var reader io.Reader
	if body != nil {
		buf := new(bytes.Buffer)
		if err := json.NewEncoder(buf).Encode(body); err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = buf
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if c.Language != "" {
		req.Header.Set("Accept-Language", c.Language)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != want {
		return readStatusError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

func readStatusError(resp *http.Response) error {
	statusErr := &StatusError{Code: resp.StatusCode}

	var body apierrors.JsonErr
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err := json.Unmarshal(data, &body); err == nil {
		statusErr.Message = body.ErrDetails.Message
	}
	return statusErr
}

func taskPath(id string) string {
	return "/api/tasks/" + url.PathEscape(id)
}
