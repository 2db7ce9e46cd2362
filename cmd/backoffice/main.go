// Command backoffice runs the shop back-office API: catalog, customers,
// the order ledger and the staff accounts that manage them.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	adminapp "github.com/wyfcoding/shopbackoffice/internal/admin/application"
	admindomain "github.com/wyfcoding/shopbackoffice/internal/admin/domain"
	adminmessaging "github.com/wyfcoding/shopbackoffice/internal/admin/infrastructure/messaging"
	adminmysql "github.com/wyfcoding/shopbackoffice/internal/admin/infrastructure/persistence/mysql"
	adminredis "github.com/wyfcoding/shopbackoffice/internal/admin/infrastructure/persistence/redis"
	adminhttp "github.com/wyfcoding/shopbackoffice/internal/admin/interfaces/http"
	catalogapp "github.com/wyfcoding/shopbackoffice/internal/catalog/application"
	catalogdomain "github.com/wyfcoding/shopbackoffice/internal/catalog/domain"
	catalogmessaging "github.com/wyfcoding/shopbackoffice/internal/catalog/infrastructure/messaging"
	catalogmysql "github.com/wyfcoding/shopbackoffice/internal/catalog/infrastructure/persistence/mysql"
	"github.com/wyfcoding/shopbackoffice/internal/catalog/infrastructure/storage"
	cataloghttp "github.com/wyfcoding/shopbackoffice/internal/catalog/interfaces/http"
	orderapp "github.com/wyfcoding/shopbackoffice/internal/order/application"
	orderdomain "github.com/wyfcoding/shopbackoffice/internal/order/domain"
	ordermessaging "github.com/wyfcoding/shopbackoffice/internal/order/infrastructure/messaging"
	ordermysql "github.com/wyfcoding/shopbackoffice/internal/order/infrastructure/persistence/mysql"
	orderhttp "github.com/wyfcoding/shopbackoffice/internal/order/interfaces/http"
	userapp "github.com/wyfcoding/shopbackoffice/internal/user/application"
	userdomain "github.com/wyfcoding/shopbackoffice/internal/user/domain"
	usermessaging "github.com/wyfcoding/shopbackoffice/internal/user/infrastructure/messaging"
	usermysql "github.com/wyfcoding/shopbackoffice/internal/user/infrastructure/persistence/mysql"
	userhttp "github.com/wyfcoding/shopbackoffice/internal/user/interfaces/http"
	"github.com/wyfcoding/shopbackoffice/pkg/cache"
	"github.com/wyfcoding/shopbackoffice/pkg/config"
	"github.com/wyfcoding/shopbackoffice/pkg/db"
	"github.com/wyfcoding/shopbackoffice/pkg/logger"
	"github.com/wyfcoding/shopbackoffice/pkg/metrics"
	"github.com/wyfcoding/shopbackoffice/pkg/middleware"
	"github.com/wyfcoding/shopbackoffice/pkg/mq"
	"github.com/wyfcoding/shopbackoffice/pkg/ratelimit"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "configs/backoffice/config.toml", "path to config file")
	flag.Parse()

	// 1. Config
	cfg, err := config.Load(configPath)
	if err != nil {
		panic(fmt.Sprintf("load config failed: %v", err))
	}

	// 2. Logger
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
	}); err != nil {
		panic(fmt.Sprintf("init logger failed: %v", err))
	}

	ctx := context.Background()
	logger.Info(ctx, "starting service", "service", cfg.ServiceName, "version", cfg.Version)

	// 3. Metrics
	m := metrics.New(cfg.ServiceName)
	if err := m.Register(); err != nil {
		logger.Fatal(ctx, "register metrics failed", "error", err)
	}
	if cfg.Metrics.Enabled {
		go func() {
			if err := metrics.StartHTTPServer(cfg.Metrics.Port, cfg.Metrics.Path); err != nil && err != http.ErrServerClosed {
				logger.Error(ctx, "metrics server stopped", "error", err)
			}
		}()
	}

	// 4. Database
	database, err := db.Init(db.Config{
		Driver:             cfg.Database.Driver,
		DSN:                cfg.Database.DSN,
		MaxOpenConns:       cfg.Database.MaxOpenConns,
		MaxIdleConns:       cfg.Database.MaxIdleConns,
		ConnMaxLifetime:    cfg.Database.ConnMaxLifetime,
		LogEnabled:         cfg.Database.LogEnabled,
		SlowQueryThreshold: cfg.Database.SlowQueryThreshold,
	}, m)
	if err != nil {
		logger.Fatal(ctx, "connect database failed", "error", err)
	}
	defer database.Close()

	// Referenced tables first so the cascade constraints can be created.
	if err := database.AutoMigrate(
		&userdomain.User{},
		&catalogdomain.Product{},
		&orderdomain.Order{},
		&orderdomain.OrderItem{},
		&admindomain.Role{},
		&admindomain.Admin{},
	); err != nil {
		logger.Fatal(ctx, "migrate database failed", "error", err)
	}

	// 5. Redis
	redisCache, err := cache.New(cache.Config{
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
		logger.Fatal(ctx, "connect redis failed", "error", err)
	}
	defer redisCache.Close()

	// 6. Kafka (optional; falls back to log-only publishers)
	var producer *mq.KafkaProducer
	var catalogPublisher catalogdomain.EventPublisher
	var orderPublisher orderdomain.EventPublisher
	var userPublisher userdomain.EventPublisher
	var adminPublisher admindomain.EventPublisher
	if cfg.Kafka.Enabled {
		producer, err = mq.NewProducer(mq.KafkaConfig{Brokers: cfg.Kafka.Brokers})
		if err != nil {
			logger.Fatal(ctx, "connect kafka failed", "error", err)
		}
		defer producer.Close()
		catalogPublisher = catalogmessaging.NewKafkaPublisher(producer)
		orderPublisher = ordermessaging.NewKafkaPublisher(producer)
		userPublisher = usermessaging.NewKafkaPublisher(producer)
		adminPublisher = adminmessaging.NewKafkaPublisher(producer)
	} else {
		catalogPublisher = catalogmessaging.NewLogPublisher()
		orderPublisher = ordermessaging.NewLogPublisher()
		userPublisher = usermessaging.NewLogPublisher()
		adminPublisher = adminmessaging.NewLogPublisher()
	}

	// 7. Storage
	imageStore, err := storage.NewFilesystemStore(cfg.Storage.MediaDir)
	if err != nil {
		logger.Fatal(ctx, "init image storage failed", "error", err)
	}

	// 8. Repositories
	productRepo := catalogmysql.NewProductRepository(database.DB)
	orderRepo := ordermysql.NewOrderRepository(database.DB)
	userRepo := usermysql.NewUserRepository(database.DB)
	adminRepo := adminmysql.NewAdminRepository(database.DB)
	roleRepo := adminmysql.NewRoleRepository(database.DB)
	sessionRepo := adminredis.NewSessionRepository(redisCache)

	// 9. Application services
	catalogService := catalogapp.NewCatalogApplicationService(productRepo, imageStore, catalogPublisher)
	userService := userapp.NewUserApplicationService(userRepo, userPublisher)
	orderService := orderapp.NewOrderApplicationService(orderRepo, userRepo, productRepo, orderPublisher)
	adminService := adminapp.NewAdminApplicationService(
		adminRepo, roleRepo, sessionRepo, adminPublisher,
		cfg.Auth.JWTSecret, time.Duration(cfg.Auth.TokenTTLMinutes)*time.Minute,
	)

	if err := adminService.Bootstrap(ctx, cfg.Auth.BootstrapAdmin, cfg.Auth.BootstrapPassword); err != nil {
		logger.Fatal(ctx, "bootstrap admin failed", "error", err)
	}

	// 10. HTTP surface
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(
		middleware.GinLoggingMiddleware(),
		middleware.GinRecoveryMiddleware(),
		middleware.GinCORSMiddleware(),
		middleware.GinMetricsMiddleware(m),
		middleware.GinRateLimitMiddleware(middleware.NewRateLimiter(200, 100)),
	)

	productHandler := cataloghttp.NewProductHandler(catalogService, m)
	orderHandler := orderhttp.NewOrderHandler(orderService, m)
	userHandler := userhttp.NewUserHandler(userService)
	adminHandler := adminhttp.NewAdminHandler(adminService)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": cfg.ServiceName})
	})
	router.GET("/media/:key", productHandler.ServeImage)

	api := router.Group("/api/v1")

	loginLimiter := ratelimit.NewRedisRateLimiter(redisCache.GetClient())
	adminHandler.RegisterPublicRoutes(api, ratelimit.GinPerClientMiddleware(
		loginLimiter, "login", ratelimit.Limit{Rate: 5, Period: time.Minute, Burst: 5},
	))

	authed := api.Group("", adminhttp.AuthRequired(adminService))
	productHandler.RegisterRoutes(authed)
	userHandler.RegisterRoutes(authed)
	orderHandler.RegisterRoutes(authed, adminhttp.RequirePermission(admindomain.PermOrdersView))
	adminHandler.RegisterRoutes(authed)

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeout) * time.Second,
	}

	// 11. Start
	go func() {
		logger.Info(ctx, "http server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal(ctx, "http server failed", "error", err)
		}
	}()

	// 12. Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info(ctx, "shutting down")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error(ctx, "http server shutdown failed", "error", err)
	}
	logger.Info(ctx, "server exited")
}
