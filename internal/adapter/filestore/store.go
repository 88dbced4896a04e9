// Package filestore persists the task collection as one pretty-printed JSON
// array on disk. Every operation reads the whole file, mutates it in memory and
// writes the whole file back.
package filestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"todoapi/internal/core/domain"
	"todoapi/internal/core/ports"
)

var errRootNotArray = errors.New("task file root is not an array")

type taskRecord struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Completed   bool   `json:"completed"`
	Priority    string `json:"priority"`
	Order       int64  `json:"order"`
	CreatedAt   int64  `json:"createdAt"`
	UpdatedAt   int64  `json:"updatedAt"`
}

type Store struct {
	// mu serializes read-modify-write cycles within this process only.
	mu         sync.Mutex
	path       string
	strictRead bool
	logger     *zap.Logger
	now        func() time.Time
	newID      func() string
}

type Option func(*Store)

// WithStrictRead makes corrupt content fail with domain.ErrCorruptStore
// instead of being reset to an empty collection.
func WithStrictRead(strict bool) Option {
	return func(s *Store) { s.strictRead = strict }
}

func WithLogger(logger *zap.Logger) Option {
	return func(s *Store) { s.logger = logger }
}

func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func WithIDGenerator(newID func() string) Option {
	return func(s *Store) { s.newID = newID }
}

var _ ports.TaskStore = (*Store)(nil)

func New(path string, opts ...Option) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	s := &Store{
		path:   path,
		logger: zap.L(),
		now:    time.Now,
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *Store) Path() string {
	return s.path
}

func (s *Store) List(ctx context.Context) ([]domain.Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.readAll()
}

func (s *Store) Create(ctx context.Context, input domain.NewTaskInput) (domain.Task, error) {
	if err := ctx.Err(); err != nil {
		return domain.Task{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tasks, err := s.readAll()
	if err != nil {
		return domain.Task{}, err
	}

	task := domain.NewTask(s.newID(), input, domain.NextOrder(tasks), s.millis())
	if err := s.writeAll(append(tasks, task)); err != nil {
		return domain.Task{}, err
	}
	return task, nil
}

func (s *Store) Update(ctx context.Context, id string, patch domain.TaskPatch) (domain.Task, error) {
	if err := ctx.Err(); err != nil {
		return domain.Task{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tasks, err := s.readAll()
	if err != nil {
		return domain.Task{}, err
	}

	idx := domain.FindTask(tasks, id)
	if idx < 0 {
		return domain.Task{}, domain.ErrTaskNotFound
	}

	updated := tasks[idx].Apply(patch, s.millis())
	tasks[idx] = updated
	if patch.Order != nil {
		domain.SortByOrder(tasks)
	}

	if err := s.writeAll(tasks); err != nil {
		return domain.Task{}, err
	}
	return updated, nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tasks, err := s.readAll()
	if err != nil {
		return err
	}

	idx := domain.FindTask(tasks, id)
	if idx < 0 {
		return domain.ErrTaskNotFound
	}

	next := make([]domain.Task, 0, len(tasks)-1)
	next = append(next, tasks[:idx]...)
	next = append(next, tasks[idx+1:]...)
	return s.writeAll(next)
}

func (s *Store) Reorder(ctx context.Context, plan []domain.ReorderItem) ([]domain.Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tasks, err := s.readAll()
	if err != nil {
		return nil, err
	}

	next := domain.ApplyReorder(tasks, plan, s.millis())
	if err := s.writeAll(next); err != nil {
		return nil, err
	}
	return next, nil
}

// Ping checks that the data directory is still there.
func (s *Store) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	info, err := os.Stat(filepath.Dir(s.path))
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", filepath.Dir(s.path))
	}
	return nil
}

func (s *Store) millis() int64 {
	return s.now().UnixMilli()
}

// readAll must be called with mu held.
func (s *Store) readAll() ([]domain.Task, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			if err := s.writeAll(nil); err != nil {
				return nil, err
			}
			return []domain.Task{}, nil
		}
		return s.recover(err, false)
	}

	// Only an unparsable document or a non-array root counts as corrupt.
	// Individual records are repaired field by field.
	var entries []json.RawMessage
	if err := json.Unmarshal(data, &entries); err != nil {
		return s.recover(err, true)
	}
	if entries == nil {
		return s.recover(errRootNotArray, true)
	}

	tasks := make([]domain.Task, 0, len(entries))
	for i, entry := range entries {
		task, ok := decodeRecord(entry)
		if !ok {
			s.logger.Warn("skipping task record that is not an object", zap.String("path", s.path), zap.Int("index", i))
			continue
		}
		tasks = append(tasks, task)
	}
	domain.SortByOrder(tasks)
	return tasks, nil
}

// recover resets the collection after an unreadable or unparsable file.
// Parse failures keep a copy of the bad file next to it first.
func (s *Store) recover(cause error, keepCopy bool) ([]domain.Task, error) {
	if s.strictRead {
		s.logger.Error("task file is unreadable", zap.String("path", s.path), zap.Error(cause))
		return nil, fmt.Errorf("%w: %v", domain.ErrCorruptStore, cause)
	}

	fields := []zap.Field{zap.String("path", s.path), zap.Error(cause)}
	if keepCopy {
		backup := fmt.Sprintf("%s.corrupt-%d", s.path, s.millis())
		if err := os.Rename(s.path, backup); err != nil {
			s.logger.Warn("failed to keep a copy of the corrupt task file", zap.String("path", s.path), zap.Error(err))
		} else {
			fields = append(fields, zap.String("backup", backup))
		}
	}
	s.logger.Error("task file is unreadable, resetting to an empty collection", fields...)

	if err := s.writeAll(nil); err != nil {
		return nil, err
	}
	return []domain.Task{}, nil
}

// writeAll replaces the file through a temp file and rename. mu must be held.
func (s *Store) writeAll(tasks []domain.Task) error {
	records := make([]taskRecord, 0, len(tasks))
	for _, task := range tasks {
		records = append(records, fromDomain(task))
	}

	if err := s.replaceFile(records); err != nil {
		s.logger.Error("failed to write task file", zap.String("path", s.path), zap.Error(err))
		return fmt.Errorf("%w: %v", domain.ErrWriteFailed, err)
	}
	return nil
}

func (s *Store) replaceFile(records []taskRecord) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), "."+filepath.Base(s.path)+"-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	// CreateTemp opens with 0600; the data file stays 0644.
	if err := tmp.Chmod(0o644); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	return nil
}

func fromDomain(t domain.Task) taskRecord {
	return taskRecord{
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
