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
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	redis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/fytours/tourdash/internal/api"
	"github.com/fytours/tourdash/internal/config"
	kafkax "github.com/fytours/tourdash/internal/kafka"
	"github.com/fytours/tourdash/internal/loader"
	"github.com/fytours/tourdash/internal/logger"
	"github.com/fytours/tourdash/internal/middleware"
	"github.com/fytours/tourdash/internal/snapshot"
	"github.com/fytours/tourdash/internal/store"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	log := logger.New(cfg.Env)

	ctx := context.Background()
	db, err := store.NewDB(ctx, cfg.PostgresURL, int32(cfg.MaxDBConnections))
	if err != nil {
		// An unreachable store is fatal to the session: nothing renders without it.
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := config.CreateDefaultAdmin(&cfg, db); err != nil {
		log.Error("failed to create default admin user", zap.Error(err))
	}

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer redisClient.Close()

	cache := snapshot.NewCache(redisClient, cfg.SnapshotTTL)
	tableLoader := loader.New(db, cache, log)
	holder := snapshot.NewHolder(tableLoader.Load, cfg.SnapshotTTL, log)

	// Warm the snapshot up front so the first dashboard request is not the
	// one paying for nine table loads. Per-table failures are logged and
	// surfaced inline; only an unreachable store stops the server.
	if err := holder.Refresh(ctx); err != nil {
		log.Fatal("initial table load failed", zap.Error(err))
	}

	producer := kafkax.NewProducer([]string{cfg.KafkaBrokers}, kafkax.Topic)
	defer producer.Close()

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(log))

	api.RegisterRoutes(r, log, api.Deps{
		Cfg:      cfg,
		DB:       db,
		Redis:    redisClient,
		Cache:    cache,
		Holder:   holder,
		Producer: producer,
	})

	// metrics endpoint
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	srv := &http.Server{
		Addr:           fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:        r,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   30 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	go func() {
		log.Info("server starting", zap.Int("port", cfg.HTTPPort))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("http server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown error", zap.Error(err))
	}
	log.Info("server exited")
}
