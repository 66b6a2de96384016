package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/salmalteam/salmal/backend/internal/auth"
	"github.com/salmalteam/salmal/backend/internal/config"
	"github.com/salmalteam/salmal/backend/internal/database"
	"github.com/salmalteam/salmal/backend/internal/events"
	"github.com/salmalteam/salmal/backend/internal/handlers"
	"github.com/salmalteam/salmal/backend/internal/logging"
	"github.com/salmalteam/salmal/backend/internal/metrics"
	"github.com/salmalteam/salmal/backend/internal/repository"
	"github.com/salmalteam/salmal/backend/internal/repository/memory"
	"github.com/salmalteam/salmal/backend/internal/server"
	"github.com/salmalteam/salmal/backend/internal/service"
	"github.com/salmalteam/salmal/backend/internal/storage"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("config error: %v", err)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		logrus.Fatalf("logger: %v", err)
	}
	gin.SetMode(gin.ReleaseMode)

	store, health, closeStore := openStore(cfg, logger)
	defer closeStore()

	uploader, err := storage.NewMinioUploader(storage.Config{
		Endpoint:  cfg.S3Endpoint,
		AccessKey: cfg.S3AccessKey,
		SecretKey: cfg.S3SecretKey,
		UseSSL:    cfg.S3UseSSL,
		Bucket:    cfg.S3Bucket,
	})
	if err != nil {
		logger.Fatalf("init image storage: %v", err)
	}
	bucketCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	if err := uploader.EnsureBucket(bucketCtx); err != nil {
		logger.WithError(err).Warn("image bucket not ready")
	}
	cancel()

	tokens, closeTokens := openTokenStore(ctx, cfg, logger)
	defer closeTokens()

	publisher, closePublisher := openPublisher(cfg, logger)
	defer closePublisher()

	members := service.NewMemberService(store, publisher, logger)
	votes := service.NewVoteService(store, members, service.NewCommentManager(store), uploader, cfg.VoteImagePath, logger)
	members.OnDelete(votes.HandleMemberDeleted)

	issuer := auth.NewTokenIssuer(cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	authService := auth.NewService(members, issuer, tokens, logger)

	srv := server.New(handlers.NewHandler(authService, votes, members), issuer, health, metrics.New(), logger).
		HTTPServer(cfg.Port)

	serverErrCh := make(chan error, 1)
	go func() {
		logger.WithField("port", cfg.Port).Info("server starting")
		serverErrCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Error("server error")
		}
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.WithError(err).Error("graceful shutdown error")
	}
	logger.Info("server stopped")
}

func openStore(cfg config.Config, logger *logrus.Logger) (repository.Store, server.HealthChecker, func()) {
	if cfg.StoreDriver == config.DriverMemory {
		logger.Warn("using in-memory store; data is lost on restart")
		st := memory.NewStore()
		return st, st, func() {}
	}

	db, err := database.New(database.Options{
		DSN:          cfg.DSN(),
		MaxIdleConns: cfg.DBMaxIdleConns,
		MaxOpenConns: cfg.DBMaxOpenConns,
		Log:          logger,
	})
	if err != nil {
		logger.Fatalf("connect database: %v", err)
	}
	return repository.NewGormStore(db.GetDB()), db, func() {
		if err := db.Close(); err != nil {
			logger.WithError(err).Warn("close database")
		}
	}
}

func openTokenStore(ctx context.Context, cfg config.Config, logger *logrus.Logger) (auth.TokenStore, func()) {
	if cfg.RedisAddr == "" {
		logger.Warn("REDIS_ADDR not set; refresh tokens are kept in memory")
		return auth.NewMemoryTokenStore(), func() {}
	}

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		logger.Fatalf("connect redis: %v", err)
	}
	return auth.NewRedisTokenStore(rdb), func() { _ = rdb.Close() }
}

func openPublisher(cfg config.Config, logger *logrus.Logger) (service.EventPublisher, func()) {
	if len(cfg.KafkaBrokers) == 0 {
		return events.NewLogPublisher(logger), func() {}
	}
	p := events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaMemberTopic)
	return p, func() {
		if err := p.Close(); err != nil {
			logger.WithError(err).Warn("close kafka writer")
		}
	}
}
