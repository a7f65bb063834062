package application

import (
	"context"
	"fmt"

	"github.com/wyfcoding/storefront/internal/catalog/domain"
	"github.com/wyfcoding/storefront/pkg/logger"
)

// CatalogCommandService 目录变更处理
// 本服务不写目录数据，只在上游变更时失效快照缓存
type CatalogCommandService struct {
	cache domain.SnapshotCache
}

// NewCatalogCommandService 创建命令服务，cache 为 nil 时所有命令为空操作
func NewCatalogCommandService(cache domain.SnapshotCache) *CatalogCommandService {
	return &CatalogCommandService{cache: cache}
}

// HandleCatalogChanged 处理目录变更事件
func (s *CatalogCommandService) HandleCatalogChanged(ctx context.Context, event domain.CatalogChangedEvent) error {
	switch event.Entity {
	case domain.EntityCategory, domain.EntityOffer:
	default:
		logger.Warn(ctx, "ignoring catalog event for unknown entity", "entity", event.Entity, "entity_id", event.EntityID)
		return nil
	}

	if err := s.InvalidateSnapshot(ctx); err != nil {
		return fmt.Errorf("invalidate after %s %d %s: %w", event.Entity, event.EntityID, event.Action, err)
	}
	logger.Info(ctx, "catalog snapshot invalidated",
		"entity", event.Entity,
		"entity_id", event.EntityID,
		"action", event.Action,
	)
	return nil
}

// InvalidateSnapshot 直接失效快照缓存
func (s *CatalogCommandService) InvalidateSnapshot(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Invalidate(ctx)
}
