package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/pageza/alchemorsel-mobile/backend/config"
	"github.com/pageza/alchemorsel-mobile/backend/internal/database"
	"github.com/pageza/alchemorsel-mobile/backend/internal/llm"
	"github.com/pageza/alchemorsel-mobile/backend/internal/logger"
	"github.com/pageza/alchemorsel-mobile/backend/internal/server"
	"github.com/pageza/alchemorsel-mobile/backend/internal/service"
	"github.com/pageza/alchemorsel-mobile/backend/internal/storage"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "alchemorsel: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}

	log := logger.New(logger.Config{
		Level:       cfg.Log.Level,
		Format:      cfg.Log.Format,
		Development: !cfg.Environment.IsProduction(),
	})
	defer log.Sync() //nolint:errcheck

	log.Info("starting alchemorsel backend", zap.String("environment", string(cfg.Environment)))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(cfg.Database, log)
	if err != nil {
		return err
	}
	defer database.Close(db)

	if cfg.Database.AutoMigrate {
		if err := database.Migrate(db, cfg.Database, log); err != nil {
			return err
		}
	}

	rdb, err := database.NewRedisClient(ctx, cfg.Redis, log)
	if err != nil {
		return err
	}
	defer rdb.Close()

	var images service.ImageStore
	if s3Client, err := config.NewS3Client(ctx, cfg.Storage); err != nil {
		log.Warn("image storage unavailable, uploads are disabled", zap.Error(err))
	} else {
		images = storage.NewImageStore(s3Client, cfg.Storage, log)
	}

	registry, err := llm.NewRegistry(cfg.LLM.DefaultProvider, log,
		llm.NewOpenAIClient("deepseek", cfg.LLM.DeepSeek, &http.Client{Timeout: cfg.LLM.DeepSeek.Timeout}),
		llm.NewGeminiClient("gemini", cfg.LLM.Gemini, &http.Client{Timeout: cfg.LLM.Gemini.Timeout}),
	)
	if err != nil {
		return err
	}

	srv, err := server.New(cfg, server.Deps{
		DB:        db,
		Redis:     rdb,
		Images:    images,
		Providers: registry,
	}, log)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Start(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	log.Info("server stopped")
	return nil
}
