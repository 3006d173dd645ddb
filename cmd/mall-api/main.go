package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/vasiliy-maslov/shopping-mall/internal/config"
	"github.com/vasiliy-maslov/shopping-mall/internal/db"
	mallHttp "github.com/vasiliy-maslov/shopping-mall/internal/handler/http"
	"github.com/vasiliy-maslov/shopping-mall/internal/logger"
	"github.com/vasiliy-maslov/shopping-mall/internal/product"
	"github.com/vasiliy-maslov/shopping-mall/internal/user"
)

const bootstrapTimeout = 30 * time.Second

func main() {
	cfg, err := config.NewConfig()
	if err != nil {
		logger.Setup("mall-api", "info", "console")
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	logger.Setup(cfg.App.Name, cfg.Log.Level, cfg.Log.Format)
	log.Info().Str("env", cfg.App.Env).Msg("Mall API starting...")

	dbConn, err := db.New(context.Background(), cfg.Postgres)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create database pool")
	}

	// The API keeps serving when the database is down; /api/health/db reports it.
	bootstrapCtx, cancelBootstrap := context.WithTimeout(context.Background(), bootstrapTimeout)
	res, err := db.Bootstrap(bootstrapCtx, dbConn.Pool, db.BootstrapOptions{Seed: cfg.App.SeedCatalog})
	cancelBootstrap()
	if err != nil {
		log.Error().Err(err).Msg("Database bootstrap failed, continuing without it")
	} else {
		log.Info().Uint("migration_version", res.MigrationVersion).Int("seeded_products", res.SeededProducts).Msg("Database ready")
	}

	productRepository := product.NewRepository(dbConn.Pool, cfg.Postgres.QueryTimeout)
	productSvc := product.NewService(productRepository)

	userRepository := user.NewRepository(dbConn.Pool, cfg.Postgres.QueryTimeout)
	userSvc := user.NewService(userRepository)

	router := mallHttp.NewRouter(
		mallHttp.NewHealthHandler(dbConn, cfg.App.Env),
		mallHttp.NewProductHandler(productSvc),
		mallHttp.NewUserHandler(userSvc),
	)

	server := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      router,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.App.Port).Msg("Starting HTTP server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stopCh:
		log.Info().Str("signal", sig.String()).Msg("Shutting down server...")
	case err := <-serverErr:
		log.Error().Err(err).Msg("HTTP server failed")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server shutdown failed")
	}

	dbConn.Close()

	log.Info().Msg("Mall API stopped gracefully")
}
