package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"storevision/internal/infra"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	QueueAlertas = "jobs:alertas"

	JobAlertaStock = "alerta_stock"

	maxAttempts = 3
)

var pausaTrasError = time.Second

// Job is the generic envelope for all async tasks.
type Job struct {
	Type     string          `json:"type"`
	Payload  json.RawMessage `json:"payload"`
	Attempts int             `json:"attempts"`
}

// AlertaStockPayload lists the products that reached their minimum stock.
type AlertaStockPayload struct {
	Destinatario string                 `json:"destinatario"`
	Productos    []infra.ProductoAlerta `json:"productos"`
}

// Handler processes the payload of one job type. A returned error makes the
// pool retry the job and, after maxAttempts, move it to the DLQ.
type Handler interface {
	Process(ctx context.Context, payload json.RawMessage) error
}

// Handlers routes job types to their handler.
type Handlers map[string]Handler

// Dispatcher enqueues async jobs into Redis lists.
// The worker pool dequeues them via BRPOP.
type Dispatcher struct {
	rdb *redis.Client
}

func NewDispatcher(rdb *redis.Client) *Dispatcher {
	return &Dispatcher{rdb: rdb}
}

// EnqueueAlertaStock pushes a low-stock alert job.
func (d *Dispatcher) EnqueueAlertaStock(ctx context.Context, payload AlertaStockPayload) error {
	return d.enqueue(ctx, QueueAlertas, JobAlertaStock, payload)
}

func (d *Dispatcher) enqueue(ctx context.Context, queue, jobType string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return push(ctx, d.rdb, queue, Job{Type: jobType, Payload: data})
}

func push(ctx context.Context, rdb *redis.Client, queue string, job Job) error {
	encoded, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return rdb.LPush(ctx, queue, encoded).Err()
}

// StartWorkerPool launches numWorkers goroutines consuming the job queues.
// Each goroutine blocks on BRPOP while idle.
func StartWorkerPool(ctx context.Context, rdb *redis.Client, numWorkers int, handlers Handlers) {
	for i := 0; i < numWorkers; i++ {
		go runWorker(ctx, rdb, i, handlers)
	}
	log.Info().Msgf("worker pool started with %d workers", numWorkers)
}

func runWorker(ctx context.Context, rdb *redis.Client, id int, handlers Handlers) {
	queues := []string{QueueAlertas}
	for {
		select {
		case <-ctx.Done():
			log.Info().Msgf("worker %d shutting down", id)
			return
		default:
			// Blocking pop: waits up to 5s then loops to check ctx
			result, err := rdb.BRPop(ctx, 5*time.Second, queues...).Result()
			if err != nil {
				if esperaTrasError(ctx, id, err) {
					return
				}
				continue
			}
			if len(result) < 2 {
				continue
			}
			processJob(ctx, rdb, handlers, result[0], result[1])
		}
	}
}

// esperaTrasError pauses a worker after a Redis failure so an outage does
// not turn into a busy loop. Timeouts and shutdown need no pause. It
// reports whether the worker should stop.
func esperaTrasError(ctx context.Context, id int, err error) bool {
	switch {
	case ctx.Err() != nil:
		return true
	case errors.Is(err, redis.Nil), errors.Is(err, context.DeadlineExceeded):
		return false
	}
	log.Warn().Err(err).Int("worker", id).Dur("pausa", pausaTrasError).Msg("worker: redis unavailable")
	select {
	case <-ctx.Done():
		return true
	case <-time.After(pausaTrasError):
		return false
	}
}

func processJob(ctx context.Context, rdb *redis.Client, handlers Handlers, queue, raw string) {
	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		log.Error().Str("queue", queue).Err(err).Msg("failed to unmarshal job")
		SendToDLQ(ctx, rdb, queue, Job{Type: "desconocido", Payload: json.RawMessage(fmt.Sprintf("%q", raw))}, "invalid envelope")
		return
	}

	err := handlers.dispatch(ctx, job)
	if err == nil {
		return
	}

	job.Attempts++
	if job.Attempts >= maxAttempts {
		SendToDLQ(ctx, rdb, queue, job, err.Error())
		return
	}

	log.Warn().Err(err).Str("type", job.Type).Int("attempt", job.Attempts).Msg("job failed, retrying")
	select {
	case <-ctx.Done():
		return
	case <-time.After(backoff(job.Attempts)):
	}
	if pushErr := push(ctx, rdb, queue, job); pushErr != nil {
		log.Error().Err(pushErr).Str("type", job.Type).Msg("failed to requeue job")
	}
}

// dispatch routes a job to its handler.
func (h Handlers) dispatch(ctx context.Context, job Job) error {
	handler, ok := h[job.Type]
	if !ok {
		return fmt.Errorf("no handler for job type %q", job.Type)
	}
	return handler.Process(ctx, job.Payload)
}

// backoff grows exponentially: 2s, 4s, 8s...
func backoff(attempt int) time.Duration {
	return time.Duration(1<<attempt) * time.Second
}
