// Package metrics 提供目录服务的 Prometheus 指标
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "storefront"

// 查询结果标签
const (
	OutcomeOK       = "ok"
	OutcomeNotFound = "not_found"
	OutcomeCanceled = "canceled"
	OutcomeError    = "error"
)

// Metrics 指标集合
type Metrics struct {
	registry *prometheus.Registry

	// HTTP 请求计数，按方法、路由、状态码
	HTTPRequestsTotal *prometheus.CounterVec
	// HTTP 请求耗时
	HTTPRequestDuration *prometheus.HistogramVec
	// gRPC 请求计数，按方法与状态码
	GRPCRequestsTotal *prometheus.CounterVec

	// 目录查询计数，按操作与结果
	QueriesTotal *prometheus.CounterVec
	// 目录查询耗时
	QueryDuration *prometheus.HistogramVec
	// 快照缓存命中 / 未命中
	SnapshotCacheTotal *prometheus.CounterVec
	// 快照加载耗时，按来源
	SnapshotLoadDuration *prometheus.HistogramVec
	// 单次筛选返回的报价数
	OffersReturned prometheus.Histogram
}

// New 创建并注册指标，每个实例使用独立的 Registry
func New(serviceName string) *Metrics {
	constLabels := prometheus.Labels{"service": serviceName}
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "http_requests_total",
			Help:        "Total HTTP requests",
			ConstLabels: constLabels,
		}, []string{"method", "route", "status"}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   namespace,
			Name:        "http_request_duration_seconds",
			Help:        "HTTP request duration in seconds",
			ConstLabels: constLabels,
			Buckets:     prometheus.DefBuckets,
		}, []string{"method", "route"}),
		GRPCRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "grpc_requests_total",
			Help:        "Total gRPC requests",
			ConstLabels: constLabels,
		}, []string{"method", "code"}),
		QueriesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Subsystem:   "catalog",
			Name:        "queries_total",
			Help:        "Total catalog queries by operation and outcome",
			ConstLabels: constLabels,
		}, []string{"operation", "outcome"}),
		QueryDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   namespace,
			Subsystem:   "catalog",
			Name:        "query_duration_seconds",
			Help:        "Catalog query duration in seconds",
			ConstLabels: constLabels,
			Buckets:     []float64{.0005, .001, .005, .01, .05, .1, .5, 1},
		}, []string{"operation"}),
		SnapshotCacheTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Subsystem:   "catalog",
			Name:        "snapshot_cache_total",
			Help:        "Catalog snapshot cache lookups by result",
			ConstLabels: constLabels,
		}, []string{"result"}),
		SnapshotLoadDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   namespace,
			Subsystem:   "catalog",
			Name:        "snapshot_load_duration_seconds",
			Help:        "Time spent loading the catalog snapshot from its source",
			ConstLabels: constLabels,
			Buckets:     prometheus.DefBuckets,
		}, []string{"source"}),
		OffersReturned: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace:   namespace,
			Subsystem:   "catalog",
			Name:        "offers_returned",
			Help:        "Number of offers matched by a filter query",
			ConstLabels: constLabels,
			Buckets:     prometheus.ExponentialBuckets(1, 4, 8),
		}),
	}

	m.registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.GRPCRequestsTotal,
		m.QueriesTotal,
		m.QueryDuration,
		m.SnapshotCacheTotal,
		m.SnapshotLoadDuration,
		m.OffersReturned,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry 返回底层 Registry，测试中用于读取指标
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler 返回 /metrics 的 HTTP handler
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveQuery 记录一次目录查询
func (m *Metrics) ObserveQuery(operation, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.QueriesTotal.WithLabelValues(operation, outcome).Inc()
	m.QueryDuration.WithLabelValues(operation).Observe(elapsed.Seconds())
}

// ObserveOffersReturned 记录筛选命中的报价数
func (m *Metrics) ObserveOffersReturned(n int) {
	if m == nil {
		return
	}
	m.OffersReturned.Observe(float64(n))
}

// ObserveSnapshotCache 记录快照缓存命中情况
func (m *Metrics) ObserveSnapshotCache(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.SnapshotCacheTotal.WithLabelValues(result).Inc()
}

// ObserveSnapshotLoad 记录从来源加载快照的耗时
func (m *Metrics) ObserveSnapshotLoad(source string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.SnapshotLoadDuration.WithLabelValues(source).Observe(elapsed.Seconds())
}
