package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/wyfcoding/storefront/internal/catalog/application"
	"github.com/wyfcoding/storefront/internal/catalog/domain"
	"github.com/wyfcoding/storefront/internal/catalog/infrastructure/messaging"
	"github.com/wyfcoding/storefront/internal/catalog/infrastructure/persistence"
	"github.com/wyfcoding/storefront/internal/catalog/infrastructure/persistence/mysql"
	"github.com/wyfcoding/storefront/internal/catalog/infrastructure/persistence/redis"
	"github.com/wyfcoding/storefront/internal/catalog/infrastructure/upstream"
	grpchandler "github.com/wyfcoding/storefront/internal/catalog/interfaces/grpc"
	httphandler "github.com/wyfcoding/storefront/internal/catalog/interfaces/http"
	"github.com/wyfcoding/storefront/pkg/cache"
	"github.com/wyfcoding/storefront/pkg/config"
	"github.com/wyfcoding/storefront/pkg/db"
	"github.com/wyfcoding/storefront/pkg/logger"
	"github.com/wyfcoding/storefront/pkg/metrics"
	"github.com/wyfcoding/storefront/pkg/middleware"
	"github.com/wyfcoding/storefront/pkg/mq"
	"github.com/wyfcoding/storefront/pkg/ratelimit"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

func main() {
	configPath := flag.String("config", "configs/catalog/config.toml", "path to config file")
	migrate := flag.Bool("migrate", false, "create catalog tables before serving (mysql source only)")
	flag.Parse()

	// 1. 加载配置
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 2. 初始化日志
	if err := logger.Init(logger.Config{
		Level:      cfg.Logger.Level,
		Format:     cfg.Logger.Format,
		Output:     cfg.Logger.Output,
		FilePath:   cfg.Logger.FilePath,
		MaxSize:    cfg.Logger.MaxSize,
		MaxBackups: cfg.Logger.MaxBackups,
		MaxAge:     cfg.Logger.MaxAge,
		Compress:   cfg.Logger.Compress,
		WithCaller: cfg.Logger.WithCaller,
		Service:    cfg.ServiceName,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	decimal.MarshalJSONWithoutQuotes = true

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info(ctx, "Starting catalog service", "version", cfg.Version, "environment", cfg.Environment, "source", cfg.Catalog.Source)

	m := metrics.New(cfg.ServiceName)

	// 3. 目录来源
	source, closeSource, err := buildSource(ctx, cfg, *migrate)
	if err != nil {
		logger.Fatal(ctx, "Failed to initialize catalog source", "error", err)
	}
	defer closeSource()

	// 4. Redis：快照缓存与限流
	var (
		redisClient   *goredis.Client
		snapshotCache domain.SnapshotCache
	)
	if cfg.Redis.Enabled {
		redisClient, err = cache.New(ctx, cache.Config{
			Host:         cfg.Redis.Host,
			Port:         cfg.Redis.Port,
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			MaxPoolSize:  cfg.Redis.MaxPoolSize,
			ConnTimeout:  cfg.Redis.ConnTimeout,
			ReadTimeout:  cfg.Redis.ReadTimeout,
			WriteTimeout: cfg.Redis.WriteTimeout,
		})
		if err != nil {
			logger.Fatal(ctx, "Failed to initialize Redis", "error", err)
		}
		defer redisClient.Close()

		snapshotCache = redis.NewSnapshotCache(redisClient, time.Duration(cfg.Catalog.SnapshotTTL)*time.Second)
		source = persistence.NewCompositeCatalogSource(source, cfg.Catalog.Source, snapshotCache, m,
			time.Duration(cfg.Catalog.UpstreamTimeout)*time.Second)
	}

	// 5. 应用层
	engine, err := domain.NewEngine(cfg.Catalog.PageSize)
	if err != nil {
		logger.Fatal(ctx, "Invalid catalog engine settings", "error", err)
	}
	queries := application.NewCatalogQueryService(source, engine, application.ShowcaseLimits{
		CategoryLimit:         cfg.Catalog.CategoryLimit,
		PerCategoryOfferLimit: cfg.Catalog.PerCategoryOfferLimit,
	}, m)
	commands := application.NewCatalogCommandService(snapshotCache)

	// 6. 服务
	httpServer := createHTTPServer(cfg, queries, m, redisClient)
	grpcServer, healthServer := createGRPCServer(cfg, queries, m)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info(gctx, "Starting HTTP server", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		addr := fmt.Sprintf("%s:%d", cfg.GRPC.Host, cfg.GRPC.Port)
		lis, err := net.Listen("tcp", addr)
		if err != nil {
			return fmt.Errorf("listen grpc %s: %w", addr, err)
		}
		logger.Info(gctx, "Starting gRPC server", "addr", addr)
		return grpcServer.Serve(lis)
	})

	if cfg.Kafka.Enabled && snapshotCache != nil {
		consumer := messaging.NewCatalogChangedConsumer(mq.NewConsumer(mq.KafkaConfig{
			Brokers:        cfg.Kafka.Brokers,
			GroupID:        cfg.Kafka.GroupID,
			SessionTimeout: cfg.Kafka.SessionTimeout,
		}, cfg.Kafka.Topic), commands)
		g.Go(func() error {
			defer consumer.Close()
			return consumer.Run(gctx)
		})
	} else if cfg.Kafka.Enabled {
		logger.Warn(ctx, "Kafka enabled without Redis, catalog events have nothing to invalidate")
	}

	// 7. 优雅关停
	g.Go(func() error {
		<-gctx.Done()
		logger.Info(ctx, "Shutting down catalog service")
		healthServer.Shutdown()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error(ctx, "HTTP server shutdown error", "error", err)
		}
		grpcServer.GracefulStop()
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Fatal(ctx, "Catalog service stopped with error", "error", err)
	}
	logger.Info(ctx, "Server exited")
}

// buildSource 根据 catalog.source 创建目录来源
func buildSource(ctx context.Context, cfg *config.Config, migrate bool) (domain.CatalogSource, func(), error) {
	switch cfg.Catalog.Source {
	case "http":
		client := upstream.NewClient(cfg.Catalog.UpstreamURL, time.Duration(cfg.Catalog.UpstreamTimeout)*time.Second)
		return upstream.NewCatalogSource(client), func() {}, nil
	case "mysql":
		gormDB, err := db.Init(ctx, db.Config{
			Driver:             cfg.Database.Driver,
			DSN:                cfg.Database.DSN,
			MaxOpenConns:       cfg.Database.MaxOpenConns,
			MaxIdleConns:       cfg.Database.MaxIdleConns,
			ConnMaxLifetime:    cfg.Database.ConnMaxLifetime,
			LogEnabled:         cfg.Database.LogEnabled,
			SlowQueryThreshold: cfg.Database.SlowQueryThreshold,
		})
		if err != nil {
			return nil, nil, err
		}
		if migrate {
			if err := mysql.AutoMigrate(gormDB.DB); err != nil {
				_ = gormDB.Close()
				return nil, nil, fmt.Errorf("migrate: %w", err)
			}
		}
		return mysql.NewCatalogRepository(gormDB.DB), func() { _ = gormDB.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unsupported catalog source: %q", cfg.Catalog.Source)
	}
}

// createHTTPServer 创建 HTTP 服务器，redisClient 为 nil 时不启用限流
func createHTTPServer(cfg *config.Config, app *application.CatalogQueryService, m *metrics.Metrics, redisClient *goredis.Client) *http.Server {
	if cfg.Environment == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	router.Use(middleware.GinRequestIDMiddleware())
	router.Use(middleware.GinLoggingMiddleware())
	router.Use(middleware.GinRecoveryMiddleware())
	router.Use(middleware.GinCORSMiddleware())
	if cfg.Metrics.Enabled {
		router.Use(middleware.GinMetricsMiddleware(m))
		router.GET(cfg.Metrics.Path, gin.WrapH(m.Handler()))
	}

	// 健康检查不受限流影响
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"service":   cfg.ServiceName,
			"timestamp": time.Now().Unix(),
		})
	})

	api := router.Group("")
	if cfg.RateLimit.Enabled && redisClient != nil {
		api.Use(middleware.RateLimitMiddleware(
			ratelimit.NewRedisRateLimiter(redisClient),
			ratelimit.PerSecond(cfg.RateLimit.QPS, cfg.RateLimit.Burst),
		))
	}
	httphandler.NewCatalogHandler(app).RegisterRoutes(api)

	return &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeout) * time.Second,
	}
}

// createGRPCServer 创建 gRPC 服务器，注册目录服务、健康检查与反射
func createGRPCServer(cfg *config.Config, app *application.CatalogQueryService, m *metrics.Metrics) (*grpc.Server, *health.Server) {
	server := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			middleware.GRPCMetricsInterceptor(m),
			middleware.GRPCLoggingInterceptor(),
			middleware.GRPCRecoveryInterceptor(),
		),
		grpc.MaxConcurrentStreams(uint32(cfg.GRPC.MaxConcurrentStreams)),
	)

	grpchandler.NewServer(server, app)

	healthServer := health.NewServer()
	healthServer.SetServingStatus(grpchandler.ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(server, healthServer)
	reflection.Register(server)

	return server, healthServer
}
