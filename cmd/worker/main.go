package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/modavia/backend/config"
	"github.com/modavia/backend/internal/emaillogs"
	"github.com/modavia/backend/internal/mailer"
	"github.com/modavia/backend/internal/worker"
	"github.com/modavia/backend/pkg/database"
	"github.com/modavia/backend/pkg/queue"
	"github.com/modavia/backend/pkg/redis"
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

	redisClient, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
	if err != nil {
		logger.Fatal("connect redis", zap.Error(err))
	}
	defer redisClient.Close()

	emailQueue := queue.NewQueue(redisClient.Client, logger)
	emailLogRepo := emaillogs.NewRepository(pool)
	smtpMailer := mailer.NewMailer(mailer.Config{
		FromAddress: cfg.Email.FromAddress,
		FromName:    cfg.Email.FromName,
		SMTPHost:    cfg.Email.SMTPHost,
		SMTPPort:    cfg.Email.SMTPPort,
		SMTPUser:    cfg.Email.SMTPUser,
		SMTPPass:    cfg.Email.SMTPPass,
	}, logger)

	if !smtpMailer.Enabled() {
		logger.Warn("SMTP not configured, email jobs will fail and land in the DLQ")
	}

	processor := worker.NewEmailProcessor(emailQueue, smtpMailer, emailLogRepo, logger)
	processor.Run(ctx)

	logger.Info("worker stopped")
}
