package application

import (
	"context"
	"errors"
	"time"

	"github.com/wyfcoding/storefront/internal/catalog/domain"
	"github.com/wyfcoding/storefront/pkg/logger"
	"github.com/wyfcoding/storefront/pkg/metrics"
)

// ShowcaseLimits 首页分类分组的数量上限
type ShowcaseLimits struct {
	CategoryLimit         int
	PerCategoryOfferLimit int
}

// CatalogQueryService 商品目录查询服务
type CatalogQueryService struct {
	source  domain.CatalogSource
	engine  *domain.Engine
	limits  ShowcaseLimits
	metrics *metrics.Metrics
}

// NewCatalogQueryService 创建商品目录查询服务实例，m 可为 nil
func NewCatalogQueryService(
	source domain.CatalogSource,
	engine *domain.Engine,
	limits ShowcaseLimits,
	m *metrics.Metrics,
) *CatalogQueryService {
	return &CatalogQueryService{
		source:  source,
		engine:  engine,
		limits:  limits,
		metrics: m,
	}
}

// GetFilterPage 筛选页：分类上下文、当前页报价、全局价格区间与分页信息
func (s *CatalogQueryService) GetFilterPage(ctx context.Context, q domain.FilterQuery) (res *domain.FilterPageResult, err error) {
	defer s.observe(ctx, "filter_page", time.Now(), &err)

	snap, err := s.source.Load(ctx)
	if err != nil {
		return nil, err
	}
	res, err = s.engine.BuildFilterPage(snap.Categories, snap.Offers, q)
	if err != nil {
		return nil, err
	}
	s.metrics.ObserveOffersReturned(res.Pagination.NumberOfOffers)
	return res, nil
}

// GetCategoriesWithOffers 首页展示：每个一级分类下的部分可售报价
func (s *CatalogQueryService) GetCategoriesWithOffers(ctx context.Context) (groups []domain.CategoryWithOffers, err error) {
	defer s.observe(ctx, "categories_with_offers", time.Now(), &err)

	snap, err := s.source.Load(ctx)
	if err != nil {
		return nil, err
	}
	tree := domain.NewCategoryTree(snap.Categories)
	return domain.BuildCategoryGroups(tree, snap.Offers, s.limits.CategoryLimit, s.limits.PerCategoryOfferLimit), nil
}

// ListCategories 全部分类，保持来源顺序
func (s *CatalogQueryService) ListCategories(ctx context.Context) (categories []domain.Category, err error) {
	defer s.observe(ctx, "list_categories", time.Now(), &err)

	snap, err := s.source.Load(ctx)
	if err != nil {
		return nil, err
	}
	return domain.NewCategoryTree(snap.Categories).All(), nil
}

// GetCategory 根据 ID 获取分类
func (s *CatalogQueryService) GetCategory(ctx context.Context, id int64) (category *domain.Category, err error) {
	defer s.observe(ctx, "get_category", time.Now(), &err)

	snap, err := s.source.Load(ctx)
	if err != nil {
		return nil, err
	}
	c, ok := domain.NewCategoryTree(snap.Categories).Find(id)
	if !ok {
		return nil, domain.ErrCategoryNotFound
	}
	return &c, nil
}

// ListOffers 全部报价，available 非 nil 时按可售状态过滤
func (s *CatalogQueryService) ListOffers(ctx context.Context, available *bool) (offers []domain.Offer, err error) {
	defer s.observe(ctx, "list_offers", time.Now(), &err)

	snap, err := s.source.Load(ctx)
	if err != nil {
		return nil, err
	}
	return domain.FilterOffers(snap.Offers, domain.OfferFilter{Available: available}), nil
}

// GetOffer 根据 ID 获取报价
func (s *CatalogQueryService) GetOffer(ctx context.Context, id int64) (offer *domain.Offer, err error) {
	defer s.observe(ctx, "get_offer", time.Now(), &err)

	snap, err := s.source.Load(ctx)
	if err != nil {
		return nil, err
	}
	for i := range snap.Offers {
		if snap.Offers[i].ID == id {
			o := snap.Offers[i]
			return &o, nil
		}
	}
	return nil, domain.ErrOfferNotFound
}

// ListOffersByCategory 分类下的报价
// 子分类只返回该分类的可售报价；一级分类返回自身及所有后代分类的报价，不区分可售状态
func (s *CatalogQueryService) ListOffersByCategory(ctx context.Context, id int64) (offers []domain.Offer, err error) {
	defer s.observe(ctx, "list_offers_by_category", time.Now(), &err)

	snap, err := s.source.Load(ctx)
	if err != nil {
		return nil, err
	}
	tree := domain.NewCategoryTree(snap.Categories)
	c, ok := tree.Find(id)
	if !ok {
		return nil, domain.ErrCategoryNotFound
	}

	if !c.IsRoot() {
		available := true
		return domain.FilterOffers(snap.Offers, domain.OfferFilter{CategoryID: &c.ID, Available: &available}), nil
	}

	members := tree.MembershipIDs(c.ID)
	out := make([]domain.Offer, 0)
	for _, o := range snap.Offers {
		if _, ok := members[o.CategoryID]; ok {
			out = append(out, o)
		}
	}
	return out, nil
}

func (s *CatalogQueryService) observe(ctx context.Context, operation string, start time.Time, errp *error) {
	elapsed := time.Since(start)
	outcome := metrics.OutcomeOK
	switch err := *errp; {
	case err == nil:
	case errors.Is(err, domain.ErrCategoryNotFound), errors.Is(err, domain.ErrOfferNotFound):
		outcome = metrics.OutcomeNotFound
	case errors.Is(err, context.Canceled):
		outcome = metrics.OutcomeCanceled
	default:
		outcome = metrics.OutcomeError
		logger.Error(ctx, "catalog query failed", "operation", operation, "error", err)
	}
	s.metrics.ObserveQuery(operation, outcome, elapsed)
	logger.Debug(ctx, "catalog query", "operation", operation, "outcome", outcome, "duration", elapsed)
}
