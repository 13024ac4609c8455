package worker

// stock_cron.go
// Background goroutine that periodically enqueues a digest of every active
// product at or below its minimum stock. Per-sale alerts only fire when a
// product crosses the threshold through a movement; the digest repeats the
// reminder until the stock is replenished.

import (
	"context"
	"time"

	"storevision/internal/infra"
	"storevision/internal/model"

	"github.com/rs/zerolog/log"
)

// StockBajoSource lists the products that are at or below their minimum.
type StockBajoSource interface {
	BajoMinimo(ctx context.Context) ([]model.Producto, error)
}

// StockCronConfig holds all dependencies for the digest goroutine.
type StockCronConfig struct {
	Source       StockBajoSource
	Dispatcher   *Dispatcher
	Destinatario string
	Interval     time.Duration
}

// StartStockCron ticks every cfg.Interval until ctx is cancelled.
func StartStockCron(ctx context.Context, cfg StockCronConfig) {
	if cfg.Interval <= 0 || cfg.Destinatario == "" {
		log.Info().Msg("stock_cron: disabled")
		return
	}
	go func() {
		ticker := time.NewTicker(cfg.Interval)
		defer ticker.Stop()

		log.Info().Dur("interval", cfg.Interval).Msg("stock_cron: started")

		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("stock_cron: shutting down")
				return
			case <-ticker.C:
				if err := enqueueResumen(ctx, cfg); err != nil {
					log.Error().Err(err).Msg("stock_cron: digest failed")
				}
			}
		}
	}()
}

func enqueueResumen(ctx context.Context, cfg StockCronConfig) error {
	payload, err := buildResumen(ctx, cfg.Source, cfg.Destinatario)
	if err != nil || payload == nil {
		return err
	}
	log.Info().Int("productos", len(payload.Productos)).Msg("stock_cron: enqueuing low-stock digest")
	return cfg.Dispatcher.EnqueueAlertaStock(ctx, *payload)
}

// buildResumen returns nil when no product is below its minimum.
func buildResumen(ctx context.Context, source StockBajoSource, destinatario string) (*AlertaStockPayload, error) {
	productos, err := source.BajoMinimo(ctx)
	if err != nil {
		return nil, err
	}
	if len(productos) == 0 {
		return nil, nil
	}
	payload := &AlertaStockPayload{Destinatario: destinatario}
	for _, p := range productos {
		payload.Productos = append(payload.Productos, infra.ProductoAlerta{
			Codigo:      p.Codigo,
			Nombre:      p.Nombre,
			StockActual: p.StockActual,
			StockMinimo: p.StockMinimo,
		})
	}
	return payload, nil
}
