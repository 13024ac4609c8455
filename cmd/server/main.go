// @title StoreVision API
// @version 1.0
// @description Ventas, inventario y auditoría para una tienda de barrio.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"storevision/internal/config"
	"storevision/internal/infra"
	"storevision/internal/repository"
	"storevision/internal/router"
	"storevision/internal/seed"
	"storevision/internal/worker"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	// Structured logger: dev: pretty, prod: JSON
	if !cfg.IsProduction() {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
	if cfg.JWTSecret == "" {
		log.Fatal().Msg("JWT_SECRET is required")
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open database")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sucursalID, err := seed.EnsureSucursal(ctx, db)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to ensure sucursal")
	}
	if cfg.SeedData {
		if err := seed.DemoData(ctx, db); err != nil {
			log.Fatal().Err(err).Msg("failed to seed demo data")
		}
	}

	// Redis is optional: without it there is no price cache and no alert queue.
	var rdb *redis.Client
	var dispatcher *worker.Dispatcher
	if cfg.RedisURL != "" {
		rdb, err = infra.NewRedis(cfg.RedisURL)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to redis")
		}
		dispatcher = startWorkers(ctx, cfg, rdb, repository.NewProductoRepository(db))
	} else {
		log.Warn().Msg("REDIS_URL empty: price cache and stock alerts disabled")
	}

	r := router.New(ctx, cfg, db, rdb, dispatcher, sucursalID)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM
	go func() {
		log.Info().Msgf("StoreVision backend listening on :%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server…")
	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("forced shutdown")
	}
	log.Info().Msg("server exited")
}

// startWorkers launches the alert worker pool and the low-stock digest.
// Alerts need both SMTP and a recipient; otherwise no dispatcher is returned.
func startWorkers(ctx context.Context, cfg *config.Config, rdb *redis.Client, productos repository.ProductoRepository) *worker.Dispatcher {
	mailer := infra.NewMailer(cfg)
	if !mailer.Configured() || cfg.AlertasEmail == "" {
		log.Warn().Msg("SMTP_HOST or ALERTAS_EMAIL empty: stock alerts disabled")
		return nil
	}

	dispatcher := worker.NewDispatcher(rdb)
	breaker := infra.NewCircuitBreaker(infra.DefaultBreakerConfig("smtp"))
	worker.StartWorkerPool(ctx, rdb, cfg.WorkerPoolSize, worker.Handlers{
		worker.JobAlertaStock: worker.NewEmailWorker(mailer, breaker),
	})
	worker.StartStockCron(ctx, worker.StockCronConfig{
		Source:       productos,
		Dispatcher:   dispatcher,
		Destinatario: cfg.AlertasEmail,
		Interval:     time.Duration(cfg.AlertasIntervaloHoras) * time.Hour,
	})
	return dispatcher
}
