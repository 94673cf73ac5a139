package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"blog_api/internal/domain/model"
)

// Store is a byte-level key/value cache with per-entry TTL.
// Get returns (nil, false, nil) on a miss.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// PostCache keeps post rows keyed by id. The author's username is not
// cached; readers resolve it themselves.
type PostCache struct {
	store Store
	ttl   time.Duration
}

// NewPostCache returns a cache over store. A nil store disables caching.
func NewPostCache(store Store, ttl time.Duration) *PostCache {
	return &PostCache{store: store, ttl: ttl}
}

func postKey(id int64) string {
	return "post:" + strconv.FormatInt(id, 10)
}

func (c *PostCache) Get(ctx context.Context, id int64) (*model.Post, bool, error) {
	if c == nil || c.store == nil {
		return nil, false, nil
	}
	data, ok, err := c.store.Get(ctx, postKey(id))
	if err != nil || !ok {
		return nil, false, err
	}
	var p model.Post
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, false, fmt.Errorf("decode cached post %d: %w", id, err)
	}
	return &p, true, nil
}

func (c *PostCache) Set(ctx context.Context, p *model.Post) error {
	if c == nil || c.store == nil || c.ttl <= 0 {
		return nil
	}
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode post %d: %w", p.ID, err)
	}
	return c.store.Set(ctx, postKey(p.ID), data, c.ttl)
}

func (c *PostCache) Invalidate(ctx context.Context, id int64) error {
	if c == nil || c.store == nil {
		return nil
	}
	return c.store.Delete(ctx, postKey(id))
}
