package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	redis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/fytours/tourdash/internal/config"
	"github.com/fytours/tourdash/internal/export"
	kafkax "github.com/fytours/tourdash/internal/kafka"
	"github.com/fytours/tourdash/internal/loader"
	"github.com/fytours/tourdash/internal/logger"
	"github.com/fytours/tourdash/internal/snapshot"
	"github.com/fytours/tourdash/internal/store"
)

// The worker keeps the query cache warm and materializes export files so the
// HTTP path never pays for a cold load right after an invalidation.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	log := logger.New(cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := store.NewDB(ctx, cfg.PostgresURL, int32(cfg.MaxDBConnections))
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer redisClient.Close()

	cache := snapshot.NewCache(redisClient, cfg.SnapshotTTL)
	tableLoader := loader.New(db, cache, log)
	holder := snapshot.NewHolder(tableLoader.Load, cfg.SnapshotTTL, log)

	consumer := kafkax.NewConsumer([]string{cfg.KafkaBrokers}, "tourdash-worker", kafkax.Topic)
	defer consumer.Close()

	log.Info("worker started", zap.String("topic", kafkax.Topic))
	for {
		msg, err := consumer.Fetch(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				break
			}
			log.Error("fetch failed", zap.Error(err))
			time.Sleep(time.Second)
			continue
		}

		env, err := kafkax.ParseEnvelope(msg.Value)
		if err != nil {
			log.Error("bad event payload", zap.Error(err))
			_ = consumer.Commit(ctx, msg)
			continue
		}

		switch env.Type {
		case kafkax.EventSnapshotRefresh:
			if err := holder.Refresh(ctx); err != nil {
				log.Error("cache warmup failed", zap.Error(err))
			} else {
				log.Info("cache warmed", zap.Time("requested_at", env.RequestedAt))
			}
		case kafkax.EventExportRequested:
			if err := writeExportFile(ctx, holder, cfg.ExportDir, log); err != nil {
				log.Error("export failed", zap.Error(err))
			}
		default:
			log.Warn("unknown event type", zap.String("type", env.Type))
		}

		if err := consumer.Commit(ctx, msg); err != nil {
			log.Error("commit failed", zap.Error(err))
		}
	}
	log.Info("worker exited")
}

func writeExportFile(ctx context.Context, holder *snapshot.Holder, dir string, log *zap.Logger) error {
	snap, err := holder.Current(ctx)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	name := fmt.Sprintf("fyt_dashboard_export_%s.zip", time.Now().Format("20060102_150405"))
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := export.WriteWorkbook(f, snap.Tables); err != nil {
		return err
	}
	log.Info("export written", zap.String("path", path))
	return nil
}
