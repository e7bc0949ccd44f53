package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"elearning-platform/internal/domain/model"
	"elearning-platform/internal/domain/ports/repository"
	"elearning-platform/internal/infra/metrics"
	red "elearning-platform/internal/infra/redis"
)

var _ repository.CourseRepository = (*courseRepoCacheDecorator)(nil)

// courseRepoCacheDecorator caches single-course lookups and the
// published catalog. Access checks hit FindByIDs constantly; the course
// rows change rarely, so a short TTL plus write invalidation is enough.
type courseRepoCacheDecorator struct {
	inner repository.CourseRepository
	cache red.RedisClient
	ttl   time.Duration
}

func NewCourseRepoCacheDecorator(inner repository.CourseRepository, cache red.RedisClient, ttl time.Duration) repository.CourseRepository {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &courseRepoCacheDecorator{inner: inner, cache: cache, ttl: ttl}
}

func courseKey(id string) string { return fmt.Sprintf("course:%s", id) }

const publishedKey = "courses:published"

func (d *courseRepoCacheDecorator) FindByID(ctx context.Context, id string) (*model.Course, error) {
	val, err := d.cache.Get(ctx, courseKey(id))
	if err == nil {
		metrics.IncCacheRequest("course", "hit")
		var c model.Course
		if json.Unmarshal([]byte(val), &c) == nil {
			return &c, nil
		}
	} else if err != redis.Nil {
		// Redis being down degrades to the database path.
	}

	metrics.IncCacheRequest("course", "miss")
	c, err := d.inner.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if bytes, err := json.Marshal(c); err == nil {
		_ = d.cache.Set(ctx, courseKey(id), bytes, d.ttl)
	}
	return c, nil
}

func (d *courseRepoCacheDecorator) FindByIDs(ctx context.Context, ids []string) ([]*model.Course, error) {
	out := make([]*model.Course, 0, len(ids))
	for _, id := range ids {
		c, err := d.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

func (d *courseRepoCacheDecorator) ListPublished(ctx context.Context) ([]*model.Course, error) {
	val, err := d.cache.Get(ctx, publishedKey)
	if err == nil {
		metrics.IncCacheRequest("course_list", "hit")
		var out []*model.Course
		if json.Unmarshal([]byte(val), &out) == nil {
			return out, nil
		}
	}

	metrics.IncCacheRequest("course_list", "miss")
	out, err := d.inner.ListPublished(ctx)
	if err != nil {
		return nil, err
	}
	if len(out) > 0 {
		if bytes, err := json.Marshal(out); err == nil {
			_ = d.cache.Set(ctx, publishedKey, bytes, d.ttl)
		}
	}
	return out, nil
}

func (d *courseRepoCacheDecorator) List(ctx context.Context, offset, limit int) ([]*model.Course, error) {
	return d.inner.List(ctx, offset, limit)
}

// Write operations invalidate before delegating.
func (d *courseRepoCacheDecorator) Save(ctx context.Context, c *model.Course) error {
	_ = d.cache.Del(ctx, courseKey(c.ID), publishedKey)
	return d.inner.Save(ctx, c)
}

func (d *courseRepoCacheDecorator) SoftDelete(ctx context.Context, id string) error {
	_ = d.cache.Del(ctx, courseKey(id), publishedKey)
	return d.inner.SoftDelete(ctx, id)
}
