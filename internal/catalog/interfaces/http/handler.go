package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/wyfcoding/pkg/response"
	"github.com/wyfcoding/storefront/internal/catalog/application"
	"github.com/wyfcoding/storefront/internal/catalog/domain"
	"github.com/wyfcoding/storefront/pkg/logger"
)

// statusClientClosedRequest 客户端主动断开（nginx 约定的 499）
const statusClientClosedRequest = 499

// CatalogHandler 目录查询 HTTP 处理器
type CatalogHandler struct {
	app *application.CatalogQueryService
}

// NewCatalogHandler 创建 HTTP 处理器
func NewCatalogHandler(app *application.CatalogQueryService) *CatalogHandler {
	return &CatalogHandler{app: app}
}

// RegisterRoutes 注册路由
func (h *CatalogHandler) RegisterRoutes(router gin.IRouter) {
	api := router.Group("/api/v1/catalog")
	{
		api.GET("/filter-page", h.GetFilterPage)
		api.GET("/showcase", h.GetShowcase)
		api.GET("/categories", h.ListCategories)
		api.GET("/categories/:id", h.GetCategory)
		api.GET("/categories/:id/offers", h.ListOffersByCategory)
		api.GET("/offers", h.ListOffers)
		api.GET("/offers/:id", h.GetOffer)
	}
}

// GetFilterPage 筛选页
// 参数：page, categoryId, available, minPrice + maxPrice（需同时提供）, sorting（true 升序 / false 降序）
func (h *CatalogHandler) GetFilterPage(c *gin.Context) {
	q, err := parseFilterQuery(c)
	if err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, err.Error(), "")
		return
	}

	res, err := h.app.GetFilterPage(c.Request.Context(), q)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, res)
}

// GetShowcase 首页分类与报价
func (h *CatalogHandler) GetShowcase(c *gin.Context) {
	groups, err := h.app.GetCategoriesWithOffers(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, groups)
}

// ListCategories 全部分类
func (h *CatalogHandler) ListCategories(c *gin.Context) {
	categories, err := h.app.ListCategories(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, categories)
}

// GetCategory 单个分类
func (h *CatalogHandler) GetCategory(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	category, err := h.app.GetCategory(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, category)
}

// ListOffersByCategory 分类下的报价
func (h *CatalogHandler) ListOffersByCategory(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	offers, err := h.app.ListOffersByCategory(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, offers)
}

// ListOffers 全部报价，可按 available 过滤
func (h *CatalogHandler) ListOffers(c *gin.Context) {
	available, err := optionalBool(c, "available")
	if err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, err.Error(), "")
		return
	}
	offers, err := h.app.ListOffers(c.Request.Context(), available)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, offers)
}

// GetOffer 单个报价
func (h *CatalogHandler) GetOffer(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	offer, err := h.app.GetOffer(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, offer)
}

func (h *CatalogHandler) fail(c *gin.Context, err error) {
	var de *domain.DomainError
	if errors.As(err, &de) && (errors.Is(err, domain.ErrCategoryNotFound) || errors.Is(err, domain.ErrOfferNotFound)) {
		response.ErrorWithStatus(c, http.StatusNotFound, de.Error(), "")
		return
	}
	// 客户端已断开，不计为服务端错误
	if errors.Is(err, context.Canceled) {
		logger.Debug(c.Request.Context(), "catalog request canceled by client", "path", c.FullPath())
		c.AbortWithStatus(statusClientClosedRequest)
		return
	}
	logger.Error(c.Request.Context(), "catalog request failed", "path", c.FullPath(), "error", err)
	_ = c.Error(err)
	response.ErrorWithStatus(c, http.StatusInternalServerError, "catalog temporarily unavailable", "")
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, "invalid id", "")
		return 0, false
	}
	return id, true
}

func parseFilterQuery(c *gin.Context) (domain.FilterQuery, error) {
	q := domain.FilterQuery{Page: 1}

	if s := c.Query("page"); s != "" {
		page, err := strconv.Atoi(s)
		if err != nil {
			return q, fmt.Errorf("invalid page %q", s)
		}
		q.Page = page
	}

	if s := c.Query("categoryId"); s != "" {
		id, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return q, fmt.Errorf("invalid categoryId %q", s)
		}
		q.CategoryID = &id
	}

	available, err := optionalBool(c, "available")
	if err != nil {
		return q, err
	}
	q.Available = available

	minStr, maxStr := c.Query("minPrice"), c.Query("maxPrice")
	switch {
	case minStr == "" && maxStr == "":
	case minStr == "" || maxStr == "":
		return q, errors.New("minPrice and maxPrice must be provided together")
	default:
		lo, err := decimal.NewFromString(minStr)
		if err != nil {
			return q, fmt.Errorf("invalid minPrice %q", minStr)
		}
		hi, err := decimal.NewFromString(maxStr)
		if err != nil {
			return q, fmt.Errorf("invalid maxPrice %q", maxStr)
		}
		if lo.GreaterThan(hi) {
			return q, errors.New("minPrice must not exceed maxPrice")
		}
		q.PriceRange = &domain.MultiRange{Min: lo, Max: hi}
	}

	sorting, err := domain.ParseSortDirection(c.Query("sorting"))
	if err != nil {
		return q, fmt.Errorf("invalid sorting %q", c.Query("sorting"))
	}
	q.Sorting = sorting
	return q, nil
}

func optionalBool(c *gin.Context, key string) (*bool, error) {
	s := c.Query(key)
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return nil, fmt.Errorf("invalid %s %q", key, s)
	}
	return &v, nil
}
