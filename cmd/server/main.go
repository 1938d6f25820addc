package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/modavia/backend/config"
	"github.com/modavia/backend/internal/auth"
	"github.com/modavia/backend/internal/brands"
	"github.com/modavia/backend/internal/catalogs"
	"github.com/modavia/backend/internal/clients"
	"github.com/modavia/backend/internal/emaillogs"
	"github.com/modavia/backend/internal/middleware"
	"github.com/modavia/backend/internal/models"
	"github.com/modavia/backend/internal/notifications"
	"github.com/modavia/backend/internal/realtime"
	"github.com/modavia/backend/pkg/database"
	"github.com/modavia/backend/pkg/queue"
	"github.com/modavia/backend/pkg/redis"
	"github.com/modavia/backend/pkg/storage"
)

func newLogger() (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.EncoderConfig.TimeKey = "timestamp"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	return cfg.Build()
}

func main() {
	logger, err := newLogger()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := database.NewPostgresPool(ctx, cfg.Database.DSN(), logger)
	if err != nil {
		logger.Fatal("connect database", zap.Error(err))
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool); err != nil {
		logger.Fatal("run migrations", zap.Error(err))
	}

	redisClient, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
	if err != nil {
		logger.Fatal("connect redis", zap.Error(err))
	}
	defer redisClient.Close()

	var s3Store *storage.S3
	if cfg.AWS.AccessKeyID != "" {
		s3Store, err = storage.NewS3(ctx, storage.S3Config{
			Region:               cfg.AWS.Region,
			AccessKeyID:          cfg.AWS.AccessKeyID,
			SecretAccessKey:      cfg.AWS.SecretAccessKey,
			MediaBucket:          cfg.AWS.MediaBucket,
			PresignExpireMinutes: cfg.AWS.PresignExpireMinutes,
		}, logger)
		if err != nil {
			logger.Fatal("init s3 storage", zap.Error(err))
		}
	} else {
		logger.Warn("AWS credentials not configured, media uploads disabled")
	}

	jwtService := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpireHours)

	userRepo := auth.NewRepository(pool)
	brandRepo := brands.NewRepository(pool)
	clientRepo := clients.NewRepository(pool)
	catalogRepo := catalogs.NewRepository(pool)
	notificationRepo := notifications.NewRepository(pool)
	emailLogRepo := emaillogs.NewRepository(pool)
	resolver := notifications.NewResolver(pool)

	emailQueue := queue.NewQueue(redisClient.Client, logger)
	dispatcher := notifications.NewQueueDispatcher(emailQueue, emailLogRepo, logger)

	pubsub := realtime.NewRedisPubSub(redisClient.Client, logger)
	hub := realtime.NewHub(pubsub, logger)

	publisher := notifications.NewPublisher(
		catalogRepo,
		resolver,
		notificationRepo,
		dispatcher,
		hub,
		cfg.Notify.MaxConcurrent,
		time.Duration(cfg.Notify.DispatchTimeoutSec)*time.Second,
		logger,
	)

	authHandler := auth.NewHandler(userRepo, jwtService, logger)
	brandHandler := brands.NewHandler(brandRepo, s3Store, logger)
	clientHandler := clients.NewHandler(clientRepo, logger)
	catalogHandler := catalogs.NewHandler(catalogRepo, publisher, s3Store, logger)
	notificationHandler := notifications.NewHandler(notificationRepo)
	emailLogHandler := emaillogs.NewHandler(emailLogRepo)

	router := buildRouter(cfg, logger, jwtService, hub,
		authHandler, brandHandler, clientHandler, catalogHandler, notificationHandler, emailLogHandler)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Info("server listening", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
	logger.Info("server stopped")
}

func buildRouter(
	cfg *config.Config,
	logger *zap.Logger,
	jwtService *auth.JWTService,
	hub *realtime.Hub,
	authHandler *auth.Handler,
	brandHandler *brands.Handler,
	clientHandler *clients.Handler,
	catalogHandler *catalogs.Handler,
	notificationHandler *notifications.Handler,
	emailLogHandler *emaillogs.Handler,
) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(logger))
	router.Use(middleware.CORS(cfg.Server.CORSAllowedOrigins))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api/v1")

	api.POST("/auth/register", authHandler.Register)
	api.POST("/auth/login", authHandler.Login)

	protected := api.Group("")
	protected.Use(middleware.JWT(jwtService))

	adminOnly := middleware.RequireRole(string(models.RoleAdmin))

	protected.GET("/users", adminOnly, authHandler.List)
	protected.PATCH("/users/:id/active", adminOnly, authHandler.SetActive)

	protected.GET("/brands", brandHandler.List)
	protected.GET("/brands/:id", brandHandler.GetByID)
	protected.POST("/brands", adminOnly, brandHandler.Create)
	protected.PATCH("/brands/:id", adminOnly, brandHandler.Update)
	protected.POST("/brands/:id/logo", adminOnly, brandHandler.UploadLogo)
	protected.GET("/brands/:id/emails", adminOnly, emailLogHandler.ListByBrand)

	protected.POST("/clients", clientHandler.Create)
	protected.GET("/clients", adminOnly, clientHandler.List)
	protected.GET("/clients/mine", clientHandler.ListMine)
	protected.GET("/clients/:id", clientHandler.GetByID)
	protected.PATCH("/clients/:id/status", adminOnly, clientHandler.SetStatus)
	protected.POST("/clients/:id/brands", adminOnly, clientHandler.AddBrand)
	protected.DELETE("/clients/:id/brands/:brandId", adminOnly, clientHandler.RemoveBrand)
	protected.GET("/clients/:id/brands", clientHandler.ListBrands)

	protected.POST("/catalogs", adminOnly, catalogHandler.Create)
	protected.GET("/catalogs", catalogHandler.List)
	protected.GET("/catalogs/:id", catalogHandler.GetByID)
	protected.PATCH("/catalogs/:id", adminOnly, catalogHandler.Update)
	protected.PATCH("/catalogs/:id/status", adminOnly, catalogHandler.SetStatus)
	protected.POST("/catalogs/:id/cover", adminOnly, catalogHandler.UploadCover)
	protected.GET("/catalogs/:id/cover-url", catalogHandler.CoverURL)

	protected.GET("/notifications", notificationHandler.List)
	protected.GET("/notifications/unread-count", notificationHandler.UnreadCount)
	protected.PATCH("/notifications/:id/read", notificationHandler.MarkRead)
	protected.POST("/notifications/read-all", notificationHandler.MarkAllRead)

	// Websocket auth uses ?token= because browsers cannot set headers here.
	api.GET("/ws", realtime.ServeWs(hub, jwtService, logger))

	return router
}
