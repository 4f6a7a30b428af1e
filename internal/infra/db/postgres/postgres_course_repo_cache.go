package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"academy-payments/internal/domain/model"
	"academy-payments/internal/domain/ports/repository"
	"academy-payments/internal/infra/metrics"
	red "academy-payments/internal/infra/redis"
)

var _ repository.CourseRepository = (*courseRepoCacheDecorator)(nil)

// courseRepoCacheDecorator serves catalog reads from Redis. Invalidation
// happens only after the underlying write succeeded, never speculatively.
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

func (d *courseRepoCacheDecorator) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Course, error) {
	key := fmt.Sprintf("course:%s", id)
	if val, err := d.cache.Get(ctx, key); err == nil {
		var c model.Course
		if json.Unmarshal([]byte(val), &c) == nil {
			metrics.IncCacheRequest("course", "hit")
			return &c, nil
		}
	}

	metrics.IncCacheRequest("course", "miss")
	c, err := d.inner.FindByID(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if b, err := json.Marshal(c); err == nil {
		_ = d.cache.Set(ctx, key, b, d.ttl)
	}
	return c, nil
}

func (d *courseRepoCacheDecorator) ListActive(ctx context.Context, tx repository.Tx) ([]*model.Course, error) {
	const key = "courses:active"
	if val, err := d.cache.Get(ctx, key); err == nil {
		var cs []*model.Course
		if json.Unmarshal([]byte(val), &cs) == nil {
			metrics.IncCacheRequest("course_list", "hit")
			return cs, nil
		}
	}

	metrics.IncCacheRequest("course_list", "miss")
	cs, err := d.inner.ListActive(ctx, tx)
	if err != nil {
		return nil, err
	}
	if b, err := json.Marshal(cs); err == nil {
		_ = d.cache.Set(ctx, key, b, d.ttl)
	}
	return cs, nil
}

func (d *courseRepoCacheDecorator) Save(ctx context.Context, tx repository.Tx, c *model.Course) error {
	if err := d.inner.Save(ctx, tx, c); err != nil {
		return err
	}
	// Invalidate only once the write is confirmed.
	_ = d.cache.Del(ctx, fmt.Sprintf("course:%s", c.ID), "courses:active")
	return nil
}
