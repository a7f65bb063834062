package domain

import "github.com/shopspring/decimal"

// Offer 商品报价
type Offer struct {
	ID         int64           `json:"id"`
	CategoryID int64           `json:"categoryId"`
	Name       string          `json:"name"`
	Available  bool            `json:"available"`
	NewPrice   decimal.Decimal `json:"newPrice"`
	Pictures   []string        `json:"pictures"`
}

// MultiRange 价格区间，上下界均为闭区间
type MultiRange struct {
	Min decimal.Decimal `json:"min"`
	Max decimal.Decimal `json:"max"`
}

// Contains 判断价格是否落在区间内
func (r MultiRange) Contains(price decimal.Decimal) bool {
	return price.GreaterThanOrEqual(r.Min) && price.LessThanOrEqual(r.Max)
}
