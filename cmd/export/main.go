package main

import (
	"context"
	"flag"
	"os"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/fytours/tourdash/internal/config"
	"github.com/fytours/tourdash/internal/export"
	"github.com/fytours/tourdash/internal/loader"
	"github.com/fytours/tourdash/internal/logger"
	"github.com/fytours/tourdash/internal/store"
)

// One-shot export: load every logical table straight from the store and dump
// the workbook to a file. Bypasses Redis so the output is never stale.
func main() {
	out := flag.String("out", "fyt_dashboard_export.zip", "output file path")
	flag.Parse()

	_ = godotenv.Load()
	cfg := config.Load()
	log := logger.New(cfg.Env)
	ctx := context.Background()

	db, err := store.NewDB(ctx, cfg.PostgresURL, int32(cfg.MaxDBConnections))
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	tableLoader := loader.New(db, nil, log)
	tables, errs, err := tableLoader.Load(ctx)
	if err != nil {
		log.Fatal("load failed", zap.Error(err))
	}
	for name, terr := range errs {
		log.Error("table skipped", zap.String("table", name), zap.Error(terr))
	}

	f, err := os.Create(*out)
	if err != nil {
		log.Fatal("cannot create output file", zap.Error(err))
	}
	defer f.Close()

	if err := export.WriteWorkbook(f, tables); err != nil {
		log.Fatal("export failed", zap.Error(err))
	}
	log.Info("export written",
		zap.String("path", *out),
		zap.Int("tables", len(tables)),
		zap.Int("failures", len(errs)))
}
