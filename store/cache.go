package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"taskdeck-api/domain"
)

type backend interface {
	ListTasks(ctx context.Context, userID string) ([]domain.Task, error)
	CreateTask(ctx context.Context, userID string, draft domain.Draft) (domain.Task, error)
	UpdateTask(ctx context.Context, userID, taskID string, draft domain.Draft) (domain.Task, error)
	SetTaskStatus(ctx context.Context, userID, taskID string, status domain.Status) (domain.Task, error)
	DeleteTask(ctx context.Context, userID, taskID string) error
}

// Cache wraps a Store with Redis-backed caching for task reads. The Redis
// entry is a throwaway copy of the in-memory snapshot, never the source of
// truth; every mutation evicts the owner's key.
type Cache struct {
	base  backend
	redis *redis.Client
	ttl   time.Duration
}

// NewCache creates a caching wrapper using the provided Redis client and TTL.
// A nil client or zero TTL disables caching and passes every call through.
func NewCache(base backend, client *redis.Client, ttl time.Duration) *Cache {
	if base == nil {
		panic("store.NewCache: base store is nil")
	}
	if ttl < 0 {
		ttl = 0
	}
	return &Cache{base: base, redis: client, ttl: ttl}
}

func (c *Cache) ListTasks(ctx context.Context, userID string) ([]domain.Task, error) {
	if tasks, ok := c.loadFromCache(ctx, userID); ok {
		return tasks, nil
	}

	tasks, err := c.base.ListTasks(ctx, userID)
	if err != nil {
		return nil, err
	}

	c.storeTasks(ctx, userID, tasks)
	return tasks, nil
}

func (c *Cache) CreateTask(ctx context.Context, userID string, draft domain.Draft) (domain.Task, error) {
	t, err := c.base.CreateTask(ctx, userID, draft)
	if err != nil {
		return domain.Task{}, err
	}
	c.evict(ctx, userID)
	return t, nil
}

func (c *Cache) UpdateTask(ctx context.Context, userID, taskID string, draft domain.Draft) (domain.Task, error) {
	t, err := c.base.UpdateTask(ctx, userID, taskID, draft)
	if err != nil {
		return domain.Task{}, err
	}
	c.evict(ctx, userID)
	return t, nil
}

func (c *Cache) SetTaskStatus(ctx context.Context, userID, taskID string, status domain.Status) (domain.Task, error) {
	t, err := c.base.SetTaskStatus(ctx, userID, taskID, status)
	if err != nil {
		return domain.Task{}, err
	}
	c.evict(ctx, userID)
	return t, nil
}

func (c *Cache) DeleteTask(ctx context.Context, userID, taskID string) error {
	if err := c.base.DeleteTask(ctx, userID, taskID); err != nil {
		return err
	}
	c.evict(ctx, userID)
	return nil
}

func (c *Cache) loadFromCache(ctx context.Context, userID string) ([]domain.Task, bool) {
	if c.redis == nil {
		return nil, false
	}
	data, err := c.redis.Get(ctx, tasksCacheKey(userID)).Bytes()
	if err != nil {
		if err != redis.Nil {
			// On redis errors fall back to the backing store without failing.
			_ = c.redis.Del(ctx, tasksCacheKey(userID)).Err()
		}
		return nil, false
	}
	var tasks []domain.Task
	if err := json.Unmarshal(data, &tasks); err != nil {
		_ = c.redis.Del(ctx, tasksCacheKey(userID)).Err()
		return nil, false
	}
	return tasks, true
}

func (c *Cache) storeTasks(ctx context.Context, userID string, tasks []domain.Task) {
	if c.redis == nil || c.ttl == 0 {
		return
	}
	data, err := json.Marshal(tasks)
	if err != nil {
		return
	}
	_ = c.redis.Set(ctx, tasksCacheKey(userID), data, c.ttl).Err()
}

func (c *Cache) evict(ctx context.Context, userID string) {
	if c.redis == nil {
		return
	}
	_, _ = c.redis.Del(ctx, tasksCacheKey(userID)).Result()
}

func tasksCacheKey(userID string) string {
	return "tasks:" + userID
}
