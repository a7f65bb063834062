package mysql

import (
	"context"
	"fmt"

	"github.com/wyfcoding/storefront/internal/catalog/domain"
	"gorm.io/gorm"
)

type catalogRepository struct{ db *gorm.DB }

// NewCatalogRepository 基于 MySQL 的只读目录来源
func NewCatalogRepository(db *gorm.DB) domain.CatalogSource {
	return &catalogRepository{db: db}
}

// Load 读取全部分类与报价，按主键升序
func (r *catalogRepository) Load(ctx context.Context) (*domain.Snapshot, error) {
	var categories []CategoryModel
	if err := r.db.WithContext(ctx).Order("id").Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("load categories: %w", err)
	}

	var offers []OfferModel
	if err := r.db.WithContext(ctx).Order("id").Find(&offers).Error; err != nil {
		return nil, fmt.Errorf("load offers: %w", err)
	}

	snap := &domain.Snapshot{
		Categories: make([]domain.Category, 0, len(categories)),
		Offers:     make([]domain.Offer, 0, len(offers)),
	}
	for i := range categories {
		snap.Categories = append(snap.Categories, categories[i].ToDomain())
	}
	for i := range offers {
		snap.Offers = append(snap.Offers, offers[i].ToDomain())
	}
	return snap, nil
}

// AutoMigrate 建表，仅用于开发环境
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&CategoryModel{}, &OfferModel{})
}
