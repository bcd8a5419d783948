package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/d60-Lab/feedgraph/config"
	"github.com/d60-Lab/feedgraph/internal/api"
	"github.com/d60-Lab/feedgraph/internal/api/handler"
	"github.com/d60-Lab/feedgraph/internal/cache"
	"github.com/d60-Lab/feedgraph/internal/repository"
	"github.com/d60-Lab/feedgraph/internal/service"
	"github.com/d60-Lab/feedgraph/pkg/database"
	"github.com/d60-Lab/feedgraph/pkg/logger"
	"github.com/d60-Lab/feedgraph/pkg/tracing"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	if err := logger.Init(cfg.Log.Level, cfg.Log.Format); err != nil {
		panic(err)
	}
	defer logger.Sync()

	if cfg.Sentry.DSN != "" {
		if err := sentry.Init(sentry.ClientOptions{Dsn: cfg.Sentry.DSN}); err != nil {
			logger.Warn("sentry init failed", zap.Error(err))
		}
		defer sentry.Flush(2 * time.Second)
	}

	ctx := context.Background()
	shutdownTracing, err := tracing.Init(ctx, "feedgraph", cfg.Otel.Endpoint)
	if err != nil {
		logger.Warn("tracing init failed", zap.Error(err))
	} else {
		defer func() { _ = shutdownTracing(ctx) }()
	}

	db, err := database.InitDB(cfg)
	if err != nil {
		logger.Error("database init failed", zap.Error(err))
		os.Exit(1)
	}
	if err := database.Migrate(db); err != nil {
		logger.Error("migration failed", zap.Error(err))
		os.Exit(1)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer rdb.Close()
	entityCache := cache.New(rdb, time.Duration(cfg.Redis.TTLSec)*time.Second)

	userRepo := repository.NewUserRepository(db)
	friendRepo := repository.NewFriendRepository(db)
	followRepo := repository.NewFollowRepository(db)
	postRepo := repository.NewPostRepository(db)
	likeRepo := repository.NewLikeRepository(db)

	var timelineRepo repository.TimelineRepository
	if cfg.Database.TimelineShards > 0 {
		sharded, err := repository.NewShardedTimelineRepository(db, cfg.Database.TimelineShards)
		if err != nil {
			logger.Error("sharded timeline init failed", zap.Error(err))
			os.Exit(1)
		}
		if err := sharded.InitSchema(); err != nil {
			logger.Error("sharded timeline schema failed", zap.Error(err))
			os.Exit(1)
		}
		timelineRepo = sharded
	} else {
		timelineRepo = repository.NewTimelineRepository(db)
	}

	graph := service.NewGraph(friendRepo, followRepo)
	fanout := service.NewFanoutEngine(timelineRepo, followRepo, userRepo, graph,
		cfg.Fanout.Workers, cfg.Fanout.BatchSize)
	feed := service.NewFeedAssembler(timelineRepo, postRepo, likeRepo, friendRepo,
		followRepo, userRepo, graph, entityCache)

	h := handler.New(
		service.NewUserService(userRepo, postRepo, likeRepo, fanout, entityCache),
		service.NewPostService(postRepo, userRepo, graph, fanout, entityCache),
		service.NewLikeService(likeRepo, userRepo, graph, fanout),
		service.NewFriendService(friendRepo, userRepo, fanout),
		service.NewFollowService(followRepo, userRepo, graph, fanout),
		feed,
	)

	srv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: api.NewRouter(cfg, h),
	}

	go func() {
		logger.Info("server listening", zap.String("addr", cfg.Server.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server stopped", zap.Error(err))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
	logger.Info("server stopped")
}
