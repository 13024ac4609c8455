package worker

// email_worker.go
// Processes alerta_stock jobs: mails the low-stock list through the SMTP
// mailer, guarded by a circuit breaker.

import (
	"context"
	"encoding/json"
	"fmt"

	"storevision/internal/infra"

	"github.com/rs/zerolog/log"
)

// AlertSender delivers a low-stock alert. *infra.Mailer implements it.
type AlertSender interface {
	SendAlertaStock(to string, productos []infra.ProductoAlerta) error
}

// EmailWorker processes low-stock alert jobs.
type EmailWorker struct {
	sender  AlertSender
	breaker *infra.CircuitBreaker
}

// NewEmailWorker creates an EmailWorker with the provided sender and breaker.
func NewEmailWorker(sender AlertSender, breaker *infra.CircuitBreaker) *EmailWorker {
	return &EmailWorker{sender: sender, breaker: breaker}
}

// Process sends the alert. Malformed or empty payloads are dropped without
// retry; delivery failures are returned so the pool retries them.
func (w *EmailWorker) Process(_ context.Context, raw json.RawMessage) error {
	var payload AlertaStockPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("email_worker: invalid payload")
		return nil
	}
	if payload.Destinatario == "" || len(payload.Productos) == 0 {
		log.Warn().Msg("email_worker: empty alert, skipping")
		return nil
	}

	err := w.breaker.Execute(func() error {
		return w.sender.SendAlertaStock(payload.Destinatario, payload.Productos)
	})
	if err != nil {
		return fmt.Errorf("email_worker: send alert to %s: %w", payload.Destinatario, err)
	}
	log.Info().
		Str("to", payload.Destinatario).
		Int("productos", len(payload.Productos)).
		Msg("email_worker: stock alert sent")
	return nil
}
