package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/wb-go/wbf/zlog"
	"github.com/zotdga/zotdga/internal/config"
	"github.com/zotdga/zotdga/internal/infrastructure/cache"
	infradatabase "github.com/zotdga/zotdga/internal/infrastructure/database"
	"github.com/zotdga/zotdga/internal/infrastructure/engine"
	"github.com/zotdga/zotdga/internal/infrastructure/kafka"
	"github.com/zotdga/zotdga/internal/infrastructure/storage"
	"github.com/zotdga/zotdga/internal/repository/postgres"
	"github.com/zotdga/zotdga/internal/retry"
	"github.com/zotdga/zotdga/internal/usecase"
	"github.com/zotdga/zotdga/internal/worker"
)

func main() {
	zlog.Init()
	zlog.Logger.Info().Msg("Starting Thumbnail Prewarm Worker")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load("")
	if err != nil {
		zlog.Logger.Fatal().Err(err).Msg("failed to load config")
	}

	if !cfg.Processing.PrewarmThumbnails {
		zlog.Logger.Fatal().Msg("processing.prewarm_thumbnails is disabled; nothing to consume")
	}

	database, err := infradatabase.Connect(&cfg.Database)
	if err != nil {
		zlog.Logger.Fatal().Err(err).Msg("failed to connect to database")
	}

	zlog.Logger.Info().Msg("Running database migrations...")
	if err := infradatabase.RunMigrations(database, cfg.Migrations.Path); err != nil {
		zlog.Logger.Warn().Err(err).Msg("Migrations warning (might be already applied)")
	}

	store, err := storage.New(&cfg.Storage)
	if err != nil {
		zlog.Logger.Fatal().Err(err).Msg("Failed to initialize storage")
	}

	assetRepo := postgres.NewAssetRepository(database, retry.DefaultStrategy)
	renditions := cache.NewRenditionCache(store)
	transformEngine := engine.NewEngine()

	derivativeUsecase := usecase.NewDerivativeUsecase(
		assetRepo,
		store,
		renditions,
		transformEngine,
		cfg.Processing.MaxConcurrent,
	)
	prewarmWorker := worker.NewPrewarmWorker(derivativeUsecase, cfg.Processing.PrewarmThumbnailSize)

	consumer, err := kafka.NewConsumer(&cfg.Kafka, prewarmWorker.HandlePrewarmTask)
	if err != nil {
		zlog.Logger.Fatal().Err(err).Msg("Failed to initialize Kafka consumer")
	}
	defer consumer.Close()

	go func() {
		if err := consumer.Start(ctx); err != nil {
			zlog.Logger.Error().Err(err).Msg("Kafka consumer error")
		}
	}()

	<-ctx.Done()
	zlog.Logger.Info().Msg("Shutdown signal received")

	infradatabase.Close(database)

	zlog.Logger.Info().Msg("Worker shutdown complete")
}
