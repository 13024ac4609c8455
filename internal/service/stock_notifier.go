package service

import (
	"context"

	"storevision/internal/infra"
	"storevision/internal/model"
	"storevision/internal/worker"

	"github.com/rs/zerolog/log"
)

// StockNotifier receives the products touched by a committed stock change.
// It runs after the commit; nothing it does can affect the operation.
type StockNotifier interface {
	StockActualizado(ctx context.Context, productos []model.Producto)
}

type stockNotifier struct {
	precios      PrecioService
	dispatcher   *worker.Dispatcher
	destinatario string
}

// NewStockNotifier drops cached prices of changed products and, when a
// dispatcher and recipient are configured, enqueues a low-stock alert.
func NewStockNotifier(precios PrecioService, dispatcher *worker.Dispatcher, destinatario string) StockNotifier {
	return &stockNotifier{precios: precios, dispatcher: dispatcher, destinatario: destinatario}
}

func (n *stockNotifier) StockActualizado(ctx context.Context, productos []model.Producto) {
	if len(productos) == 0 {
		return
	}

	codigos := make([]string, 0, len(productos))
	var bajos []infra.ProductoAlerta
	for _, p := range productos {
		codigos = append(codigos, p.Codigo)
		if p.Activo && p.BajoMinimo() {
			bajos = append(bajos, infra.ProductoAlerta{
				Codigo:      p.Codigo,
				Nombre:      p.Nombre,
				StockActual: p.StockActual,
				StockMinimo: p.StockMinimo,
			})
		}
	}
	if n.precios != nil {
		n.precios.Invalidar(ctx, codigos...)
	}

	if len(bajos) == 0 || n.dispatcher == nil || n.destinatario == "" {
		return
	}
	payload := worker.AlertaStockPayload{Destinatario: n.destinatario, Productos: bajos}
	if err := n.dispatcher.EnqueueAlertaStock(ctx, payload); err != nil {
		log.Error().Err(err).Int("productos", len(bajos)).Msg("stock: failed to enqueue low-stock alert")
	}
}

// noopNotifier is used when no notifier is wired.
type noopNotifier struct{}

func (noopNotifier) StockActualizado(context.Context, []model.Producto) {}

func notifierOrNoop(n StockNotifier) StockNotifier {
	if n == nil {
		return noopNotifier{}
	}
	return n
}
