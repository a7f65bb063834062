package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/wyfcoding/storefront/internal/catalog/domain"
)

const snapshotKey = "catalog:snapshot"

type snapshotCache struct {
	client redis.UniversalClient
	key    string
	ttl    time.Duration
}

// NewSnapshotCache 以单个 JSON 键缓存整份目录快照
func NewSnapshotCache(client redis.UniversalClient, ttl time.Duration) domain.SnapshotCache {
	return &snapshotCache{
		client: client,
		key:    snapshotKey,
		ttl:    ttl,
	}
}

func (c *snapshotCache) Get(ctx context.Context) (*domain.Snapshot, error) {
	data, err := c.client.Get(ctx, c.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var snap domain.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

func (c *snapshotCache) Save(ctx context.Context, snap *domain.Snapshot) error {
	if snap == nil {
		return nil
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key, data, c.ttl).Err()
}

func (c *snapshotCache) Invalidate(ctx context.Context) error {
	return c.client.Del(ctx, c.key).Err()
}
