package mysql

import (
	"github.com/shopspring/decimal"
	"github.com/wyfcoding/storefront/internal/catalog/domain"
)

// CategoryModel MySQL 分类表映射
type CategoryModel struct {
	ID       int64  `gorm:"column:id;primaryKey;autoIncrement"`
	Name     string `gorm:"column:name;type:varchar(128);not null"`
	ParentID *int64 `gorm:"column:parent_id;index"`
}

func (CategoryModel) TableName() string { return "categories" }

func (m *CategoryModel) ToDomain() domain.Category {
	return domain.Category{
		ID:       m.ID,
		Name:     m.Name,
		ParentID: m.ParentID,
	}
}

// OfferModel MySQL 报价表映射，图片以 JSON 数组保存
type OfferModel struct {
	ID         int64           `gorm:"column:id;primaryKey;autoIncrement"`
	CategoryID int64           `gorm:"column:category_id;index;not null"`
	Name       string          `gorm:"column:name;type:varchar(255);not null"`
	Available  bool            `gorm:"column:available;index;not null;default:true"`
	NewPrice   decimal.Decimal `gorm:"column:new_price;type:decimal(12,2);not null"`
	Pictures   []string        `gorm:"column:pictures;type:json;serializer:json"`
}

func (OfferModel) TableName() string { return "offers" }

func (m *OfferModel) ToDomain() domain.Offer {
	pictures := m.Pictures
	if pictures == nil {
		pictures = []string{}
	}
	return domain.Offer{
		ID:         m.ID,
		CategoryID: m.CategoryID,
		Name:       m.Name,
		Available:  m.Available,
		NewPrice:   m.NewPrice,
		Pictures:   pictures,
	}
}
