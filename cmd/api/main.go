package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/iamasit07/connectfour/internal/config"
	"github.com/iamasit07/connectfour/internal/events"
	"github.com/iamasit07/connectfour/internal/repository/postgres"
	"github.com/iamasit07/connectfour/internal/repository/redis"
	"github.com/iamasit07/connectfour/internal/service/cleanup"
	"github.com/iamasit07/connectfour/internal/service/game"
	transportHttp "github.com/iamasit07/connectfour/internal/transport/http"
	"github.com/iamasit07/connectfour/internal/transport/websocket"
	"github.com/iamasit07/connectfour/pkg/auth"
	"github.com/iamasit07/connectfour/pkg/logging"
)

func main() {
	if err := godotenv.Load(); err != nil {
		if err := godotenv.Load("../.env"); err != nil {
			log.Println("No .env file found")
		}
	}

	cfg := config.LoadConfig()
	logger, err := logging.New(cfg.LogLevel, cfg.LogJSON)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := game.Options{
		Tokens:      auth.NewTokenIssuer(cfg.JWTSecret, cfg.ControlTokenTTL),
		Logger:      logger,
		DefaultRows: cfg.DefaultRows,
		DefaultCols: cfg.DefaultCols,
		SnapshotTTL: cfg.SnapshotTTL,
	}

	// 1. Archive database (optional)
	var archive transportHttp.ArchiveReader
	if cfg.DatabaseURL != "" {
		db, err := postgres.Connect(ctx, cfg)
		if err != nil {
			logger.Fatal("Failed to connect to database", zap.Error(err))
		}
		defer db.Close()

		logger.Info("Running database migrations...")
		if err := postgres.RunMigrations(ctx, db); err != nil {
			logger.Fatal("Migration failed", zap.Error(err))
		}

		gameRepo := postgres.NewGameRepo(db)
		opts.Repo = gameRepo
		archive = gameRepo
	} else {
		logger.Info("DATABASE_URL not set, finished games will not be archived")
	}

	// 2. Snapshot cache (optional)
	if client := redis.NewClient(ctx, cfg, logger); client != nil {
		defer client.Close()
		opts.Cache = redis.NewRedisCache(client, "c4:game:")
	}

	// 3. Event stream (optional)
	producer := events.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic, logger)
	if producer != nil {
		opts.Events = producer
		logger.Info("publishing game events", zap.Strings("brokers", cfg.KafkaBrokers), zap.String("topic", cfg.KafkaTopic))
	}
	defer producer.Close()

	// 4. Services
	connManager := websocket.NewConnectionManager(logger)
	opts.Notifier = connManager
	gameService := game.NewService(opts)

	cleanupWorker := cleanup.NewWorker(gameService, cfg.IdleGameTTL, cfg.CleanupInterval, logger)
	cleanupWorker.Start(ctx)

	// 5. HTTP
	router := transportHttp.NewRouter(transportHttp.RouterDeps{
		Games:          gameService,
		Archive:        archive,
		Spectators:     connManager,
		AllowedOrigins: cfg.AllowedOrigins,
		Logger:         logger,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.Info("Server starting", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("Server is shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}
	gameService.Wait()

	logger.Info("Server exited gracefully")
}
