// Package cache decorates a ports.TaskStore with a Redis copy of the sorted
// task list. Mutations go to the wrapped store and evict the cached list.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"todoapi/internal/core/domain"
	"todoapi/internal/core/ports"
)

const (
	tasksKey      = "todo:tasks"
	generationKey = "todo:tasks:gen"
)

// storeIfCurrent writes the list only when no mutation has bumped the
// generation since the caller read it. A missing generation is "".
var storeIfCurrent = redis.NewScript(`
local current = redis.call("GET", KEYS[2]) or ""
if current ~= ARGV[1] then
  return 0
end
redis.call("SET", KEYS[1], ARGV[2], "PX", ARGV[3])
return 1
`)

type Store struct {
	base   ports.TaskStore
	redis  *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

var _ ports.TaskStore = (*Store)(nil)

func New(base ports.TaskStore, client *redis.Client, ttl time.Duration, logger *zap.Logger) *Store {
	if base == nil {
		panic("cache.New: base store is nil")
	}
	if ttl < 0 {
		ttl = 0
	}
	if logger == nil {
		logger = zap.L()
	}
	return &Store{base: base, redis: client, ttl: ttl, logger: logger}
}

func (s *Store) List(ctx context.Context) ([]domain.Task, error) {
	if tasks, ok := s.load(ctx); ok {
		return tasks, nil
	}

	// Read the generation before the base store so a write that lands in
	// between keeps this (possibly older) list out of the cache.
	generation, ok := s.generation(ctx)

	tasks, err := s.base.List(ctx)
	if err != nil {
		return nil, err
	}

	if ok {
		s.store(ctx, generation, tasks)
	}
	return tasks, nil
}

func (s *Store) Create(ctx context.Context, input domain.NewTaskInput) (domain.Task, error) {
	defer s.evict(ctx)
	return s.base.Create(ctx, input)
}

func (s *Store) Update(ctx context.Context, id string, patch domain.TaskPatch) (domain.Task, error) {
	defer s.evict(ctx)
	return s.base.Update(ctx, id, patch)
}

func (s *Store) Delete(ctx context.Context, id string) error {
	defer s.evict(ctx)
	return s.base.Delete(ctx, id)
}

func (s *Store) Reorder(ctx context.Context, plan []domain.ReorderItem) ([]domain.Task, error) {
	defer s.evict(ctx)
	return s.base.Reorder(ctx, plan)
}

// Ping reports the wrapped store's health; Redis being down only degrades reads.
func (s *Store) Ping(ctx context.Context) error {
	if s.redis != nil {
		if err := s.redis.Ping(ctx).Err(); err != nil {
			s.logger.Warn("redis ping failed", zap.Error(err))
		}
	}
	return s.base.Ping(ctx)
}

func (s *Store) load(ctx context.Context) ([]domain.Task, bool) {
	if s.redis == nil {
		return nil, false
	}

	data, err := s.redis.Get(ctx, tasksKey).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.logger.Warn("task cache read failed", zap.Error(err))
			_ = s.redis.Del(ctx, tasksKey).Err()
		}
		return nil, false
	}

	var tasks []domain.Task
	if err := json.Unmarshal(data, &tasks); err != nil {
		_ = s.redis.Del(ctx, tasksKey).Err()
		return nil, false
	}
	return tasks, true
}

func (s *Store) generation(ctx context.Context) (string, bool) {
	if s.redis == nil {
		return "", false
	}

	generation, err := s.redis.Get(ctx, generationKey).Result()
	switch {
	case errors.Is(err, redis.Nil):
		return "", true
	case err != nil:
		s.logger.Warn("task cache generation read failed", zap.Error(err))
		return "", false
	}
	return generation, true
}

func (s *Store) store(ctx context.Context, generation string, tasks []domain.Task) {
	if s.redis == nil || s.ttl == 0 {
		return
	}

	data, err := json.Marshal(tasks)
	if err != nil {
		return
	}
	ttlMillis := s.ttl.Milliseconds()
	if ttlMillis < 1 {
		ttlMillis = 1
	}
	keys := []string{tasksKey, generationKey}
	if err := storeIfCurrent.Run(ctx, s.redis, keys, generation, data, ttlMillis).Err(); err != nil {
		s.logger.Warn("task cache write failed", zap.Error(err))
	}
}

// evict bumps the generation before dropping the list, so a List that read
// the base store before this write cannot put its result back.
func (s *Store) evict(ctx context.Context) {
	if s.redis == nil {
		return
	}
	_, err := s.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, generationKey)
		pipe.Del(ctx, tasksKey)
		return nil
	})
	if err != nil {
		s.logger.Warn("task cache eviction failed", zap.Error(err))
	}
}
