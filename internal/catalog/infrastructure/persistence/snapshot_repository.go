package persistence

import (
	"context"
	"time"

	"github.com/wyfcoding/storefront/internal/catalog/domain"
	"github.com/wyfcoding/storefront/pkg/logger"
	"github.com/wyfcoding/storefront/pkg/metrics"
	"golang.org/x/sync/singleflight"
)

type compositeCatalogSource struct {
	source     domain.CatalogSource
	sourceName string
	cache      domain.SnapshotCache
	metrics    *metrics.Metrics
	timeout    time.Duration
	group      singleflight.Group
}

// NewCompositeCatalogSource 先读缓存，未命中时回源并回填
// 并发的回源请求合并为一次，回源不随任一调用方取消，timeout 为 0 时不设超时
func NewCompositeCatalogSource(source domain.CatalogSource, sourceName string, cache domain.SnapshotCache, m *metrics.Metrics, timeout time.Duration) domain.CatalogSource {
	return &compositeCatalogSource{
		source:     source,
		sourceName: sourceName,
		cache:      cache,
		metrics:    m,
		timeout:    timeout,
	}
}

func (r *compositeCatalogSource) Load(ctx context.Context) (*domain.Snapshot, error) {
	// 1. 读缓存，缓存故障降级为回源
	snap, err := r.cache.Get(ctx)
	if err != nil {
		logger.Warn(ctx, "snapshot cache read failed", "error", err)
	}
	if err == nil && snap != nil {
		r.metrics.ObserveSnapshotCache(true)
		return snap, nil
	}
	r.metrics.ObserveSnapshotCache(false)

	// 2. 回源，合并并发请求
	ch := r.group.DoChan("snapshot", func() (any, error) {
		return r.loadAndBackfill(context.WithoutCancel(ctx))
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*domain.Snapshot), nil
	}
}

func (r *compositeCatalogSource) loadAndBackfill(ctx context.Context) (*domain.Snapshot, error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	start := time.Now()
	loaded, err := r.source.Load(ctx)
	r.metrics.ObserveSnapshotLoad(r.sourceName, time.Since(start))
	if err != nil {
		return nil, err
	}
	// 3. 回填缓存，失败不影响本次查询
	if err := r.cache.Save(ctx, loaded); err != nil {
		logger.Warn(ctx, "snapshot cache backfill failed", "error", err)
	}
	return loaded, nil
}
