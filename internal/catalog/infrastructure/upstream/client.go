package upstream

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/wyfcoding/storefront/internal/catalog/domain"
	"github.com/wyfcoding/storefront/pkg/logger"
	"golang.org/x/sync/errgroup"
)

const (
	categoriesPath = "/categories"
	offersPath     = "/offers"
)

// Client 上游商品服务客户端，分类与报价由 /categories 与 /offers 提供
type Client struct {
	http *resty.Client
}

// NewClient 创建上游客户端
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		http: resty.New().
			SetBaseURL(baseURL).
			SetTimeout(timeout).
			SetRetryCount(2).
			SetRetryWaitTime(200*time.Millisecond).
			SetHeader("Accept", "application/json"),
	}
}

// NewCatalogSource 以上游服务作为目录来源
func NewCatalogSource(c *Client) domain.CatalogSource {
	return c
}

// Load 并发拉取分类与报价
func (c *Client) Load(ctx context.Context) (*domain.Snapshot, error) {
	snap := &domain.Snapshot{}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		categories, err := c.Categories(gctx)
		snap.Categories = categories
		return err
	})
	g.Go(func() error {
		offers, err := c.Offers(gctx, nil)
		snap.Offers = offers
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return snap, nil
}

// Categories 拉取全部分类
func (c *Client) Categories(ctx context.Context) ([]domain.Category, error) {
	out := make([]domain.Category, 0)
	if err := c.get(ctx, categoriesPath, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Offers 拉取报价，available 非 nil 时由上游按可售状态过滤
func (c *Client) Offers(ctx context.Context, available *bool) ([]domain.Offer, error) {
	params := map[string]string{}
	if available != nil {
		params["available"] = fmt.Sprint(*available)
	}
	out := make([]domain.Offer, 0)
	if err := c.get(ctx, offersPath, params, &out); err != nil {
		return nil, err
	}
	for i := range out {
		if out[i].Pictures == nil {
			out[i].Pictures = []string{}
		}
	}
	return out, nil
}

func (c *Client) get(ctx context.Context, path string, params map[string]string, result any) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(params).
		SetResult(result).
		Get(path)
	if err != nil {
		return fmt.Errorf("upstream GET %s: %w", path, err)
	}
	if resp.IsError() {
		logger.Warn(ctx, "upstream returned error status", "path", path, "status", resp.StatusCode())
		return fmt.Errorf("upstream GET %s: unexpected status %d", path, resp.StatusCode())
	}
	logger.Debug(ctx, "upstream fetched", "path", path, "duration", resp.Time())
	return nil
}
