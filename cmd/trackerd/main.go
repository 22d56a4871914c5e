package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/triplog/tracking-system/internal/api"
	"github.com/triplog/tracking-system/internal/core/service"
	"github.com/triplog/tracking-system/internal/infrastructure/config"
	mongodb "github.com/triplog/tracking-system/internal/infrastructure/db/mongo"
	redisdb "github.com/triplog/tracking-system/internal/infrastructure/db/redis"
	"github.com/triplog/tracking-system/internal/infrastructure/queue"
	"github.com/triplog/tracking-system/pkg/logger"
)

const shutdownGrace = 10 * time.Second

func main() {
	_ = godotenv.Load()
	cfg := config.LoadServer()

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Databases ---
	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("mongodb connection failed")
	}
	defer func() { _ = mongoClient.Disconnect(context.Background()) }()

	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr: cfg.Redis.Addr,
		DB:   cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}
	defer func() { _ = rdb.Close() }()

	sampleRepo := mongodb.NewSampleRepository(db)
	waypointRepo := mongodb.NewWaypointRepository(db)
	deviceRepo := mongodb.NewDeviceRepository(db)
	for name, ensure := range map[string]func(context.Context) error{
		"samples":     sampleRepo.EnsureIndexes,
		"itineraries": waypointRepo.EnsureIndexes,
		"devices":     deviceRepo.EnsureIndexes,
	} {
		if err := ensure(ctx); err != nil {
			log.Fatal().Err(err).Str("collection", name).Msg("index creation failed")
		}
	}

	// --- Ingest pipeline ---
	dedup := redisdb.NewDedupChecker(rdb)
	ingest := service.NewIngestService(sampleRepo, dedup, log)
	dispatcher := queue.NewDispatcher(cfg.Workers, ingest, log)
	dispatcher.Start(ctx)

	// --- HTTP server ---
	e := api.NewRouter(db, rdb, cfg.JWTSecret, dispatcher, log)

	go func() {
		log.Info().Str("port", cfg.Port).Msg("tracking server listening")
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server stopped unexpectedly")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown failed")
	}
}
