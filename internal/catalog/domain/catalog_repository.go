package domain

import "context"

// Snapshot 某一时刻的完整目录数据
type Snapshot struct {
	Categories []Category `json:"categories"`
	Offers     []Offer    `json:"offers"`
}

// CatalogSource 目录数据来源（MySQL、上游 HTTP 服务或带缓存的组合实现）
type CatalogSource interface {
	Load(ctx context.Context) (*Snapshot, error)
}

// SnapshotCache 目录快照缓存
// Get 未命中时返回 (nil, nil)
type SnapshotCache interface {
	Get(ctx context.Context) (*Snapshot, error)
	Save(ctx context.Context, snapshot *Snapshot) error
	Invalidate(ctx context.Context) error
}
