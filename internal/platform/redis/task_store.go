// Package redis provides a Redis implementation of store.TaskStore.
//
// Each task is a JSON document under "<prefix>:doc:<id>". A sorted set
// "<prefix>:by_created" holds every ID scored by its CreatedAt in Unix
// microseconds, so listing is a reverse range over the set.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/tasker/internal/domain"
	"github.com/phrazzld/tasker/internal/platform/logger"
	"github.com/phrazzld/tasker/internal/store"
	goredis "github.com/redis/go-redis/v9"
)

// Scores are float64; Unix microseconds stay exact well past 2200.
const timestampResolution = time.Microsecond

// RedisTaskStore implements store.TaskStore on a Redis client.
type RedisTaskStore struct {
	client goredis.UniversalClient
	prefix string
	owned  bool
	clock  *store.MonotonicClock
	logger *slog.Logger
}

// Ensure RedisTaskStore implements store.TaskStore interface
var _ store.TaskStore = (*RedisTaskStore)(nil)

// Open parses a redis:// or rediss:// URL, connects and verifies the server
// answers PING. The returned store owns the client.
func Open(ctx context.Context, url, prefix string, logger *slog.Logger) (*RedisTaskStore, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}

	client := goredis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	s := NewRedisTaskStore(client, prefix, logger)
	s.owned = true
	return s, nil
}

// NewRedisTaskStore creates a store over an existing client.
// An empty prefix defaults to "tasks". If logger is nil, a default logger will be used.
func NewRedisTaskStore(client goredis.UniversalClient, prefix string, logger *slog.Logger) *RedisTaskStore {
	if client == nil {
		panic("client cannot be nil")
	}
	if prefix == "" {
		prefix = "tasks"
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &RedisTaskStore{
		client: client,
		prefix: prefix,
		clock:  store.NewMonotonicClock(timestampResolution),
		logger: logger.With(slog.String("component", "redis_task_store")),
	}
}

func (s *RedisTaskStore) docKey(id string) string {
	return s.prefix + ":doc:" + id
}

func (s *RedisTaskStore) indexKey() string {
	return s.prefix + ":by_created"
}

// Insert implements store.TaskStore.Insert.
// The document and its index entry are written in one MULTI/EXEC.
func (s *RedisTaskStore) Insert(ctx context.Context, task *domain.Task) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := task.Validate(); err != nil {
		log.Warn("task validation failed during insert", slog.String("error", err.Error()))
		return err
	}

	created := domain.Task{
		ID:        uuid.NewString(),
		Title:     task.Title,
		CreatedAt: s.clock.Now(),
	}
	if task.Deadline != nil {
		d := task.Deadline.UTC().Truncate(timestampResolution)
		created.Deadline = &d
	}

	data, err := json.Marshal(created)
	if err != nil {
		return store.NewStoreError("task", "insert", "failed to encode task", err)
	}

	_, err = s.client.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.Set(ctx, s.docKey(created.ID), data, 0)
		pipe.ZAdd(ctx, s.indexKey(), goredis.Z{
			Score:  float64(created.CreatedAt.UnixMicro()),
			Member: created.ID,
		})
		return nil
	})
	if err != nil {
		log.Error("failed to insert task", slog.String("error", err.Error()))
		return store.NewStoreError("task", "insert", "failed to insert task", err)
	}

	*task = created
	log.Debug("task inserted", slog.String("task_id", task.ID))
	return nil
}

// ListAll implements store.TaskStore.ListAll.
// Equal scores are returned in reverse lexical order of ID, which matches
// the tie-break ListAll promises.
func (s *RedisTaskStore) ListAll(ctx context.Context) ([]*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	ids, err := s.client.ZRevRange(ctx, s.indexKey(), 0, -1).Result()
	if err != nil {
		log.Error("failed to read task index", slog.String("error", err.Error()))
		return nil, store.NewStoreError("task", "list", "failed to read task index", err)
	}

	tasks := make([]*domain.Task, 0, len(ids))
	if len(ids) == 0 {
		return tasks, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = s.docKey(id)
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		log.Error("failed to read task documents", slog.String("error", err.Error()))
		return nil, store.NewStoreError("task", "list", "failed to read tasks", err)
	}

	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			// Index entry without a document; a concurrent delete got there first.
			log.Debug("skipping index entry without document", slog.String("task_id", ids[i]))
			continue
		}
		task, err := decodeTask(raw)
		if err != nil {
			log.Error("failed to decode task",
				slog.String("task_id", ids[i]),
				slog.String("error", err.Error()))
			return nil, store.NewStoreError("task", "list", "failed to decode task", err)
		}
		tasks = append(tasks, task)
	}

	log.Debug("tasks listed", slog.Int("count", len(tasks)))
	return tasks, nil
}

// DeleteByID implements store.TaskStore.DeleteByID.
// GETDEL and ZREM run in one MULTI/EXEC so the document and index entry go together.
func (s *RedisTaskStore) DeleteByID(ctx context.Context, id string) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var get *goredis.StringCmd
	_, err := s.client.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		get = pipe.GetDel(ctx, s.docKey(id))
		pipe.ZRem(ctx, s.indexKey(), id)
		return nil
	})
	if err != nil && !errors.Is(err, goredis.Nil) {
		log.Error("failed to delete task",
			slog.String("task_id", id),
			slog.String("error", err.Error()))
		return nil, store.NewStoreError("task", "delete", "failed to delete task", err)
	}

	raw, err := get.Result()
	if errors.Is(err, goredis.Nil) {
		log.Debug("task not found", slog.String("task_id", id))
		return nil, store.ErrTaskNotFound
	}
	if err != nil {
		return nil, store.NewStoreError("task", "delete", "failed to delete task", err)
	}

	task, err := decodeTask(raw)
	if err != nil {
		return nil, store.NewStoreError("task", "delete", "failed to decode task", err)
	}

	log.Debug("task deleted", slog.String("task_id", id))
	return task, nil
}

// Ping implements store.Pinger.
func (s *RedisTaskStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the client if this store opened it.
func (s *RedisTaskStore) Close(context.Context) error {
	if !s.owned {
		return nil
	}
	return s.client.Close()
}

func decodeTask(raw string) (*domain.Task, error) {
	var task domain.Task
	if err := json.Unmarshal([]byte(raw), &task); err != nil {
		return nil, err
	}
	task.CreatedAt = task.CreatedAt.UTC()
	if task.Deadline != nil {
		d := task.Deadline.UTC()
		task.Deadline = &d
	}
	return &task, nil
}
