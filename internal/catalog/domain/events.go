package domain

import "time"

// CatalogChangedTopic 目录变更事件主题
const CatalogChangedTopic = "catalog.changed"

// 变更实体类型
const (
	EntityCategory = "category"
	EntityOffer    = "offer"
)

// CatalogChangedEvent 上游分类或报价发生变更
// 本服务只消费该事件，用于失效目录快照缓存
type CatalogChangedEvent struct {
	Entity    string    `json:"entity"`
	EntityID  int64     `json:"entity_id"`
	Action    string    `json:"action"`
	Timestamp time.Time `json:"timestamp"`
}
