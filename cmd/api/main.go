package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/wb-go/wbf/ginext"
	"github.com/wb-go/wbf/zlog"
	"github.com/zotdga/zotdga/internal/config"
	httpHandler "github.com/zotdga/zotdga/internal/handler/http"
	"github.com/zotdga/zotdga/internal/handler/middleware"
	"github.com/zotdga/zotdga/internal/infrastructure/cache"
	infradatabase "github.com/zotdga/zotdga/internal/infrastructure/database"
	"github.com/zotdga/zotdga/internal/infrastructure/engine"
	"github.com/zotdga/zotdga/internal/infrastructure/kafka"
	"github.com/zotdga/zotdga/internal/infrastructure/storage"
	"github.com/zotdga/zotdga/internal/repository/postgres"
	"github.com/zotdga/zotdga/internal/retry"
	"github.com/zotdga/zotdga/internal/usecase"
)

func main() {
	zlog.Init()
	zlog.Logger.Info().Msg("Starting Media Asset API Server")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load("")
	if err != nil {
		zlog.Logger.Fatal().Err(err).Msg("failed to load config")
	}

	database, err := infradatabase.Connect(&cfg.Database)
	if err != nil {
		zlog.Logger.Fatal().Err(err).Msg("failed to connect to database")
	}

	zlog.Logger.Info().Msg("Running database migrations...")
	if err := infradatabase.RunMigrations(database, cfg.Migrations.Path); err != nil {
		zlog.Logger.Fatal().Err(err).Msg("Migrations failed")
	}

	store, err := storage.New(&cfg.Storage)
	if err != nil {
		zlog.Logger.Fatal().Err(err).Msg("Failed to initialize storage")
	}

	// Kafka producer only runs when thumbnail prewarming is enabled.
	var producer *kafka.Producer
	if cfg.Processing.PrewarmThumbnails {
		producer = kafka.NewProducer(&cfg.Kafka)
		defer producer.Close()
	}

	assetRepo := postgres.NewAssetRepository(database, retry.DefaultStrategy)
	folderRepo := postgres.NewFolderRepository(database, retry.DefaultStrategy)
	userRepo := postgres.NewUserRepository(database, retry.DefaultStrategy)
	keyRepo := postgres.NewAPIKeyRepository(database, retry.DefaultStrategy)

	renditions := cache.NewRenditionCache(store)
	transformEngine := engine.NewEngine()

	authUsecase := usecase.NewAuthUsecase(userRepo, keyRepo)
	folderUsecase := usecase.NewFolderUsecase(folderRepo, assetRepo)
	derivativeUsecase := usecase.NewDerivativeUsecase(
		assetRepo,
		store,
		renditions,
		transformEngine,
		cfg.Processing.MaxConcurrent,
	)

	// A typed nil producer must not reach the interface field, hence the split.
	var assetUsecase *usecase.AssetUsecase
	if producer != nil {
		assetUsecase = usecase.NewAssetUsecase(assetRepo, folderRepo, store, renditions, transformEngine, producer)
	} else {
		assetUsecase = usecase.NewAssetUsecase(assetRepo, folderRepo, store, renditions, transformEngine, nil)
	}

	engineHTTP := ginext.New("api")
	engineHTTP.Use(
		middleware.RecoveryMiddleware(),
		middleware.LoggerMiddleware(),
		middleware.CORSMiddleware(),
		middleware.AuthMiddleware(authUsecase),
	)

	engineHTTP.GET("/health", func(c *ginext.Context) {
		c.JSON(http.StatusOK, ginext.H{"status": "ok"})
	})

	httpHandler.NewAuthHandler(authUsecase).RegisterRoutes(engineHTTP)
	httpHandler.NewFolderHandler(folderUsecase).RegisterRoutes(engineHTTP)
	httpHandler.NewAssetHandler(
		assetUsecase,
		cfg.Server.MaxUploadSizeMB,
		cfg.Processing.SupportedFormats,
	).RegisterRoutes(engineHTTP)
	httpHandler.NewProcessHandler(derivativeUsecase).RegisterRoutes(engineHTTP)

	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      engineHTTP,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeoutSec) * time.Second,
	}

	go func() {
		zlog.Logger.Info().Str("addr", cfg.Server.Addr).Msg("Starting HTTP server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zlog.Logger.Fatal().Err(err).Msg("Failed to start API server")
		}
	}()

	<-ctx.Done()
	zlog.Logger.Info().Msg("Shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeoutSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zlog.Logger.Error().Err(err).Msg("HTTP server shutdown failed")
	} else {
		zlog.Logger.Info().Msg("HTTP server stopped gracefully")
	}

	infradatabase.Close(database)

	zlog.Logger.Info().Msg("API shutdown complete")
}
