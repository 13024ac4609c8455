//go:build integration

package worker

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"storevision/internal/infra"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcRedis "github.com/testcontainers/testcontainers-go/modules/redis"
)

func newRedis(t *testing.T) *redis.Client {
	t.Helper()
	ctx := context.Background()
	rdC, err := tcRedis.RunContainer(ctx, testcontainers.WithImage("redis:7-alpine"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdC.Terminate(ctx) })

	url, err := rdC.ConnectionString(ctx)
	require.NoError(t, err)
	rdb, err := infra.NewRedis(url)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb
}

type senderCanal struct {
	mu    sync.Mutex
	to    []string
	listo chan struct{}
}

func (s *senderCanal) SendAlertaStock(to string, _ []infra.ProductoAlerta) error {
	s.mu.Lock()
	s.to = append(s.to, to)
	s.mu.Unlock()
	s.listo <- struct{}{}
	return nil
}

func TestPool_EntregaAlerta(t *testing.T) {
	rdb := newRedis(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sender := &senderCanal{listo: make(chan struct{}, 1)}
	StartWorkerPool(ctx, rdb, 2, Handlers{JobAlertaStock: NewEmailWorker(sender, nuevoBreaker())})

	err := NewDispatcher(rdb).EnqueueAlertaStock(ctx, AlertaStockPayload{
		Destinatario: "gerencia@storevision.com",
		Productos:    []infra.ProductoAlerta{{Codigo: "LAC002", StockActual: 2, StockMinimo: 5}},
	})
	require.NoError(t, err)

	select {
	case <-sender.listo:
	case <-time.After(10 * time.Second):
		t.Fatal("alert was not delivered")
	}
	sender.mu.Lock()
	assert.Equal(t, []string{"gerencia@storevision.com"}, sender.to)
	sender.mu.Unlock()
}

func TestProcessJob_AgotaIntentosYVaALaDLQ(t *testing.T) {
	rdb := newRedis(t)
	ctx := context.Background()
	handlers := Handlers{JobAlertaStock: &handlerFalso{err: errors.New("smtp caído")}}

	job := Job{Type: JobAlertaStock, Payload: json.RawMessage(`{}`), Attempts: maxAttempts - 1}
	raw, err := json.Marshal(job)
	require.NoError(t, err)
	processJob(ctx, rdb, handlers, QueueAlertas, string(raw))

	n, err := DLQLength(ctx, rdb, QueueAlertas)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	processJob(ctx, rdb, handlers, QueueAlertas, "no es json")

	letters, err := PeekDLQ(ctx, rdb, QueueAlertas, 10)
	require.NoError(t, err)
	require.Len(t, letters, 2)
	assert.Equal(t, "desconocido", letters[0].JobType)
	assert.Equal(t, JobAlertaStock, letters[1].JobType)
	assert.Equal(t, "smtp caído", letters[1].Motivo)
	assert.Equal(t, maxAttempts, letters[1].Intentos)

	queued, err := rdb.LLen(ctx, QueueAlertas).Result()
	require.NoError(t, err)
	assert.Zero(t, queued)
}
