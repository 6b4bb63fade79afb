package gateway

import (
	"context"
	"time"

	"github.com/bytedance/sonic"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"github.com/tgienger/taskdeck/internal/models"
)

const projectsCacheKey = "taskdeck:projects"

// Cache wraps a Gateway with Redis-backed caching for task and project
// lists. Successful mutations evict the affected keys. Redis failures fall
// back to the wrapped gateway.
type Cache struct {
	Gateway
	redis *redis.Client
	ttl   time.Duration
	log   *log.Logger
}

// NewCache creates a caching wrapper using the provided Redis client and TTL
func NewCache(base Gateway, client *redis.Client, ttl time.Duration, logger *log.Logger) *Cache {
	if base == nil {
		panic("gateway.NewCache: base gateway is nil")
	}
	if ttl < 0 {
		ttl = 0
	}
	return &Cache{Gateway: base, redis: client, ttl: ttl, log: logger}
}

func (c *Cache) ListTasks(ctx context.Context, scope models.Scope) ([]models.Task, error) {
	key := tasksCacheKey(scope)
	var tasks []models.Task
	if c.load(ctx, key, &tasks) {
		return tasks, nil
	}

	tasks, err := c.Gateway.ListTasks(ctx, scope)
	if err != nil {
		return nil, err
	}

	c.store(ctx, key, tasks)
	return tasks, nil
}

func (c *Cache) ListProjects(ctx context.Context) ([]models.Project, error) {
	var projects []models.Project
	if c.load(ctx, projectsCacheKey, &projects) {
		return projects, nil
	}

	projects, err := c.Gateway.ListProjects(ctx)
	if err != nil {
		return nil, err
	}

	c.store(ctx, projectsCacheKey, projects)
	return projects, nil
}

func (c *Cache) CreateTask(ctx context.Context, task models.Task) (bool, error) {
	ok, err := c.Gateway.CreateTask(ctx, task)
	if ok && err == nil {
		c.evictTasks(ctx, task.ProjectID)
	}
	return ok, err
}

func (c *Cache) UpdateTask(ctx context.Context, task models.Task) (bool, error) {
	ok, err := c.Gateway.UpdateTask(ctx, task)
	if ok && err == nil {
		// the task may have moved between projects, so drop every task list
		c.evictAllTasks(ctx)
	}
	return ok, err
}

func (c *Cache) DeleteTask(ctx context.Context, id string) (bool, error) {
	ok, err := c.Gateway.DeleteTask(ctx, id)
	if ok && err == nil {
		c.evictAllTasks(ctx)
	}
	return ok, err
}

func (c *Cache) CreateProject(ctx context.Context, project models.Project) (*models.Project, error) {
	p, err := c.Gateway.CreateProject(ctx, project)
	if err == nil {
		c.evict(ctx, projectsCacheKey)
	}
	return p, err
}

func (c *Cache) UpdateProject(ctx context.Context, project models.Project) (*models.Project, error) {
	p, err := c.Gateway.UpdateProject(ctx, project)
	if err == nil {
		c.evict(ctx, projectsCacheKey)
	}
	return p, err
}

func (c *Cache) DeleteProject(ctx context.Context, id string) (bool, error) {
	ok, err := c.Gateway.DeleteProject(ctx, id)
	if ok && err == nil {
		c.evict(ctx, projectsCacheKey)
	}
	return ok, err
}

func (c *Cache) load(ctx context.Context, key string, out any) bool {
	if c.redis == nil {
		return false
	}
	data, err := c.redis.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logError(err, key, "cache read failed")
			_ = c.redis.Del(ctx, key).Err()
		}
		return false
	}
	if err := sonic.Unmarshal(data, out); err != nil {
		c.logError(err, key, "cache entry corrupt")
		_ = c.redis.Del(ctx, key).Err()
		return false
	}
	return true
}

func (c *Cache) store(ctx context.Context, key string, v any) {
	if c.redis == nil || c.ttl == 0 {
		return
	}
	data, err := sonic.Marshal(v)
	if err != nil {
		return
	}
	if err := c.redis.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.logError(err, key, "cache write failed")
	}
}

func (c *Cache) evict(ctx context.Context, keys ...string) {
	if c.redis == nil {
		return
	}
	_, _ = c.redis.Del(ctx, keys...).Result()
}

func (c *Cache) evictTasks(ctx context.Context, projectID string) {
	keys := []string{tasksCacheKey(models.AllTasks)}
	if projectID != "" {
		keys = append(keys, tasksCacheKey(models.ProjectScope(projectID)))
	}
	c.evict(ctx, keys...)
}

func (c *Cache) evictAllTasks(ctx context.Context) {
	if c.redis == nil {
		return
	}
	var keys []string
	iter := c.redis.Scan(ctx, 0, "taskdeck:tasks:*", 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		c.logError(err, "taskdeck:tasks:*", "cache scan failed")
	}
	if len(keys) > 0 {
		c.evict(ctx, keys...)
	}
}

func (c *Cache) logError(err error, key, msg string) {
	if c.log == nil {
		return
	}
	c.log.WithError(err).WithField("key", key).Warn(msg)
}

func tasksCacheKey(scope models.Scope) string {
	return "taskdeck:tasks:" + scope.String()
}
