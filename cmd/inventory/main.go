// InventoryService 主程序
// 功能：商品台账 CRUD、库存校验、消费订单确认事件扣减库存
// 架构：DDD + HTTP + GORM + RabbitMQ
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/wyfcoding/ecommerce/internal/inventory/application"
	"github.com/wyfcoding/ecommerce/internal/inventory/domain"
	"github.com/wyfcoding/ecommerce/internal/inventory/infrastructure/persistence/mysql"
	"github.com/wyfcoding/ecommerce/internal/inventory/interfaces/consumer"
	httphandler "github.com/wyfcoding/ecommerce/internal/inventory/interfaces/http"
	"github.com/wyfcoding/ecommerce/pkg/cache"
	"github.com/wyfcoding/ecommerce/pkg/config"
	"github.com/wyfcoding/ecommerce/pkg/db"
	"github.com/wyfcoding/ecommerce/pkg/logger"
	"github.com/wyfcoding/ecommerce/pkg/metrics"
	"github.com/wyfcoding/ecommerce/pkg/middleware"
	"github.com/wyfcoding/ecommerce/pkg/mq"
)

func main() {
	// 1. 加载配置
	configPath := os.Getenv("APP_CONFIG")
	if configPath == "" {
		configPath = "configs/inventory/config.toml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 2. 初始化日志
	loggerCfg := logger.Config{
		Level:      cfg.Logger.Level,
		Format:     cfg.Logger.Format,
		Output:     cfg.Logger.Output,
		FilePath:   cfg.Logger.FilePath,
		MaxSize:    cfg.Logger.MaxSize,
		MaxBackups: cfg.Logger.MaxBackups,
		MaxAge:     cfg.Logger.MaxAge,
		Compress:   cfg.Logger.Compress,
		WithCaller: cfg.Logger.WithCaller,
	}
	if err := logger.Init(loggerCfg); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	logger.Info(ctx, "Starting InventoryService",
		"service", cfg.ServiceName,
		"version", cfg.Version,
		"environment", cfg.Environment,
	)

	// 3. 初始化数据库
	dbCfg := db.Config{
		Driver:             cfg.Database.Driver,
		DSN:                cfg.Database.DSN,
		MaxOpenConns:       cfg.Database.MaxOpenConns,
		MaxIdleConns:       cfg.Database.MaxIdleConns,
		ConnMaxLifetime:    cfg.Database.ConnMaxLifetime,
		LogEnabled:         cfg.Database.LogEnabled,
		SlowQueryThreshold: cfg.Database.SlowQueryThreshold,
	}
	database, err := db.Init(dbCfg)
	if err != nil {
		logger.Fatal(ctx, "Failed to initialize database", "error", err)
	}
	defer database.Close()

	if err := database.AutoMigrate(&domain.Product{}); err != nil {
		logger.Fatal(ctx, "Failed to migrate database", "error", err)
	}

	// 4. 初始化 Redis（商品读缓存）
	redisCfg := cache.Config{
		Host:         cfg.Redis.Host,
		Port:         cfg.Redis.Port,
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		MaxPoolSize:  cfg.Redis.MaxPoolSize,
		ConnTimeout:  cfg.Redis.ConnTimeout,
		ReadTimeout:  cfg.Redis.ReadTimeout,
		WriteTimeout: cfg.Redis.WriteTimeout,
	}
	redisCache, err := cache.New(redisCfg)
	if err != nil {
		logger.Fatal(ctx, "Failed to initialize Redis", "error", err)
	}
	defer redisCache.Close()

	// 5. 初始化指标
	metricsInstance := metrics.New("inventory")
	if err := metricsInstance.Register(); err != nil {
		logger.Fatal(ctx, "Failed to register metrics", "error", err)
	}
	if cfg.Metrics.Enabled {
		if err := metrics.StartHTTPServer(cfg.Metrics.Port, cfg.Metrics.Path); err != nil {
			logger.Fatal(ctx, "Failed to start metrics HTTP server", "error", err)
		}
	}

	// 6. 初始化仓储与应用服务
	productRepo := mysql.NewProductRepository(database)
	productService := application.NewProductService(productRepo, redisCache)
	validationService := application.NewValidationService(productRepo)
	debitService := application.NewDebitService(productRepo, redisCache, metricsInstance)

	// 7. 初始化 RabbitMQ：声明交换机与扣减队列并开始消费
	bus, err := mq.Connect(mq.Config{
		URL:            cfg.RabbitMQ.URL,
		ConnectRetries: cfg.RabbitMQ.ConnectRetries,
		RetryBackoff:   cfg.RabbitMQ.RetryBackoff,
	})
	if err != nil {
		logger.Fatal(ctx, "Failed to connect to RabbitMQ", "error", err)
	}
	if err := bus.DeclareFanout(cfg.RabbitMQ.Exchange); err != nil {
		logger.Fatal(ctx, "Failed to declare exchange", "error", err)
	}
	if err := bus.DeclareQueue(cfg.RabbitMQ.Queue, cfg.RabbitMQ.Exchange); err != nil {
		logger.Fatal(ctx, "Failed to declare queue", "error", err)
	}
	deliveries, err := bus.Consume(cfg.RabbitMQ.Queue)
	if err != nil {
		logger.Fatal(ctx, "Failed to start consuming", "error", err)
	}

	consumerCtx, stopConsumer := context.WithCancel(ctx)
	debitConsumer := consumer.NewDebitConsumer(deliveries, debitService, metricsInstance)
	consumerDone := make(chan struct{})
	go func() {
		defer close(consumerDone)
		debitConsumer.Run(consumerCtx)
	}()

	// 8. 创建并启动 HTTP 服务器
	httpServer := createHTTPServer(cfg, productService, validationService, metricsInstance)

	go func() {
		logger.Info(ctx, "Starting HTTP server", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal(ctx, "HTTP server error", "error", err)
		}
	}()

	// 9. 优雅关停：先停 HTTP，再等消费者完成当前消息的确认，最后关总线
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info(ctx, "Shutting down InventoryService")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error(ctx, "HTTP server shutdown error", "error", err)
	}

	stopConsumer()
	select {
	case <-consumerDone:
	case <-time.After(10 * time.Second):
		logger.Error(ctx, "Debit consumer did not stop in time")
	}

	if err := bus.Close(); err != nil {
		logger.Error(ctx, "RabbitMQ close error", "error", err)
	}

	logger.Info(ctx, "InventoryService stopped")
}

// createHTTPServer 创建 HTTP 服务器
func createHTTPServer(cfg *config.Config, productService *application.ProductService, validationService *application.ValidationService, m *metrics.Metrics) *http.Server {
	if cfg.Environment == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	router.Use(middleware.GinLoggingMiddleware())
	router.Use(middleware.GinRecoveryMiddleware())
	router.Use(middleware.GinCORSMiddleware())
	router.Use(middleware.MetricsMiddleware(m))

	authMiddleware := middleware.JWTAuthMiddleware(cfg.JWT)

	productHandler := httphandler.NewProductHandler(productService, validationService)
	productHandler.RegisterRoutes(router, authMiddleware)

	authHandler := httphandler.NewAuthHandler(cfg.JWT)
	authHandler.RegisterRoutes(router)

	// 健康检查
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"service":   cfg.ServiceName,
			"timestamp": time.Now().Unix(),
		})
	})

	return &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeout) * time.Second,
	}
}
