package domain

import (
	"errors"
	"fmt"
)

// FilterQuery 筛选页查询参数
type FilterQuery struct {
	Page       int
	CategoryID *int64
	Available  *bool
	PriceRange *MultiRange
	Sorting    SortDirection
}

// Pagination 分页信息
type Pagination struct {
	Page                 int `json:"page"`
	NumberOfPages        int `json:"numberOfPages"`
	NumberOfOffers       int `json:"numberOfOffers"`
	NumberOfOffersOnPage int `json:"numberOfOffersOnPage"`
}

// FilterPageResult 筛选页结果
type FilterPageResult struct {
	SelectedCategory *Category  `json:"selectedCategory,omitempty"`
	RootCategories   []Category `json:"rootCategories"`
	SubCategories    []Category `json:"subCategories"`
	Offers           []Offer    `json:"offers"`
	PriceRange       MultiRange `json:"priceRange"`
	Pagination       Pagination `json:"pagination"`
}

// Engine 目录查询引擎
// 无状态、不修改输入，可被多个 goroutine 并发使用
type Engine struct {
	pageSize int
}

// NewEngine 创建查询引擎
func NewEngine(pageSize int) (*Engine, error) {
	if pageSize <= 0 {
		return nil, fmt.Errorf("page size must be positive, got %d", pageSize)
	}
	return &Engine{pageSize: pageSize}, nil
}

// PageSize 每页报价数
func (e *Engine) PageSize() int { return e.pageSize }

// BuildFilterPage 解析分类 -> 过滤 -> 排序 -> 分页，并合并全局价格区间
// 报价为空时价格区间为零值，返回合法的空结果
func (e *Engine) BuildFilterPage(categories []Category, offers []Offer, q FilterQuery) (*FilterPageResult, error) {
	tree := NewCategoryTree(categories)
	return e.BuildFilterPageFromTree(tree, offers, q)
}

// BuildFilterPageFromTree 与 BuildFilterPage 相同，复用已构建的分类树
func (e *Engine) BuildFilterPageFromTree(tree *CategoryTree, offers []Offer, q FilterQuery) (*FilterPageResult, error) {
	cctx := ResolveContext(tree, q.CategoryID)

	filtered := FilterOffers(offers, OfferFilter{
		CategoryID:   cctx.SelectedID(),
		CandidateIDs: cctx.CandidateIDs(),
		Available:    q.Available,
		PriceRange:   q.PriceRange,
	})
	sorted := SortByPrice(filtered, q.Sorting)
	page := Paginate(sorted, q.Page, e.pageSize)

	priceRange, err := PriceRangeOf(offers)
	if err != nil && !errors.Is(err, ErrEmptyCatalog) {
		return nil, err
	}

	return &FilterPageResult{
		SelectedCategory: cctx.Selected,
		RootCategories:   cctx.Roots,
		SubCategories:    cctx.SubCategories,
		Offers:           page.Offers,
		PriceRange:       priceRange,
		Pagination: Pagination{
			Page:                 page.Page,
			NumberOfPages:        page.NumberOfPages,
			NumberOfOffers:       len(sorted),
			NumberOfOffersOnPage: len(page.Offers),
		},
	}, nil
}
