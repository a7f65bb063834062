package messaging

import (
	"context"
	"fmt"

	"github.com/wyfcoding/storefront/internal/catalog/domain"
	"github.com/wyfcoding/storefront/pkg/logger"
	"github.com/wyfcoding/storefront/pkg/mq"
)

// CatalogChangedHandler 处理目录变更事件
type CatalogChangedHandler interface {
	HandleCatalogChanged(ctx context.Context, event domain.CatalogChangedEvent) error
}

// CatalogChangedConsumer 订阅 catalog.changed 并转发给处理器
type CatalogChangedConsumer struct {
	consumer *mq.KafkaConsumer
	handler  CatalogChangedHandler
}

// NewCatalogChangedConsumer 创建目录变更消费者
func NewCatalogChangedConsumer(consumer *mq.KafkaConsumer, handler CatalogChangedHandler) *CatalogChangedConsumer {
	return &CatalogChangedConsumer{consumer: consumer, handler: handler}
}

// Run 阻塞消费直到 ctx 取消
func (c *CatalogChangedConsumer) Run(ctx context.Context) error {
	return c.consumer.Run(ctx, c.HandleMessage)
}

// HandleMessage 解析单条消息
// 无法解析的消息返回 nil 以便提交偏移量，避免毒消息阻塞分区
func (c *CatalogChangedConsumer) HandleMessage(ctx context.Context, msg *mq.Message) error {
	var event domain.CatalogChangedEvent
	if err := msg.UnmarshalPayload(&event); err != nil {
		logger.Warn(ctx, "dropping malformed catalog event", "offset", msg.Offset, "error", err)
		return nil
	}
	if err := c.handler.HandleCatalogChanged(ctx, event); err != nil {
		return fmt.Errorf("handle catalog event at offset %d: %w", msg.Offset, err)
	}
	return nil
}

// Close 关闭底层消费者
func (c *CatalogChangedConsumer) Close() error {
	return c.consumer.Close()
}
