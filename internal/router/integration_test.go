//go:build integration

package router

// Runs the HTTP API against real Postgres and Redis containers.
// Run with: go test -tags integration ./internal/router/... -v

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"storevision/internal/config"
	"storevision/internal/infra"
	"storevision/internal/seed"
	"storevision/internal/worker"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcPostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	tcRedis "github.com/testcontainers/testcontainers-go/modules/redis"
)

type integracionEnv struct {
	*testEnv
	rdb *redis.Client
}

func setupIntegracion(t *testing.T) *integracionEnv {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	pgC, err := tcPostgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:15-alpine"),
		tcPostgres.WithDatabase("storevision_test"),
		tcPostgres.WithUsername("storevision"),
		tcPostgres.WithPassword("storevision"),
		testcontainers.WithWaitStrategy(tcPostgres.BasicWaitStrategies()...),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pgC.Terminate(context.Background()) })

	pgURL, err := pgC.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	rdC, err := tcRedis.RunContainer(ctx, testcontainers.WithImage("redis:7-alpine"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdC.Terminate(context.Background()) })

	rdURL, err := rdC.ConnectionString(ctx)
	require.NoError(t, err)

	db, err := infra.NewDatabase(pgURL)
	require.NoError(t, err)
	rdb, err := infra.NewRedis(rdURL)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdb.Close() })

	sucursalID, err := seed.EnsureSucursal(ctx, db)
	require.NoError(t, err)
	require.NoError(t, seed.DemoData(ctx, db))

	cfg := &config.Config{
		Env:                "test",
		JWTSecret:          "test-secret-key",
		JWTExpirationHours: 8,
		JWTRefreshHours:    24,
		DatabaseURL:        pgURL,
		RedisURL:           rdURL,
		AlertasEmail:       "gerencia@storevision.com",
	}
	env := &testEnv{engine: New(ctx, cfg, db, rdb, worker.NewDispatcher(rdb), sucursalID)}
	env.admin = env.login(t, "admin@storevision.com", "admin123")
	env.cajero = env.login(t, "cajero@storevision.com", "cajero123")
	return &integracionEnv{testEnv: env, rdb: rdb}
}

// serve is safe to call from several goroutines; it never calls t.FailNow.
func (e *integracionEnv) serve(method, path string, body any, token string) int {
	b, _ := json.Marshal(body)
	req := httptest.NewRequest(method, path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	e.engine.ServeHTTP(w, req)
	return w.Code
}

func contarCodigos(codes []int) map[int]int {
	n := make(map[int]int)
	for _, c := range codes {
		n[c]++
	}
	return n
}

func TestIntegracion(t *testing.T) {
	env := setupIntegracion(t)
	ctx := context.Background()

	t.Run("ventas concurrentes no sobrevenden", func(t *testing.T) {
		queso := env.producto(t, "LAC002") // stock 20
		venta := map[string]any{"items": []map[string]any{{"producto_id": queso.ID, "cantidad": 3}}}

		codes := make([]int, 10)
		var wg sync.WaitGroup
		for i := range codes {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				codes[i] = env.serve(http.MethodPost, "/v1/ventas", venta, env.cajero)
			}(i)
		}
		wg.Wait()

		n := contarCodigos(codes)
		assert.Equal(t, 6, n[http.StatusCreated], codes)
		assert.Equal(t, 4, n[http.StatusConflict], codes)
		assert.Equal(t, 2, env.producto(t, "LAC002").StockActual)

		w := env.do(t, http.MethodGet, "/v1/inventario/reconciliacion", nil, env.admin)
		require.Equal(t, http.StatusOK, w.Code)
		var rec struct {
			Consistente bool `json:"consistente"`
		}
		decode(t, w, &rec)
		assert.True(t, rec.Consistente)
	})

	t.Run("alerta de stock encolada en redis", func(t *testing.T) {
		// LAC002 ended at 2 with minimum 5.
		n, err := env.rdb.LLen(ctx, worker.QueueAlertas).Result()
		require.NoError(t, err)
		require.GreaterOrEqual(t, n, int64(1))

		raw, err := env.rdb.LIndex(ctx, worker.QueueAlertas, 0).Result()
		require.NoError(t, err)
		var job worker.Job
		require.NoError(t, json.Unmarshal([]byte(raw), &job))
		assert.Equal(t, worker.JobAlertaStock, job.Type)

		var payload worker.AlertaStockPayload
		require.NoError(t, json.Unmarshal(job.Payload, &payload))
		assert.Equal(t, "gerencia@storevision.com", payload.Destinatario)
		require.NotEmpty(t, payload.Productos)
		assert.Equal(t, "LAC002", payload.Productos[0].Codigo)
	})

	t.Run("cache de precios invalidado por venta", func(t *testing.T) {
		arroz := env.producto(t, "GRA001")
		require.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/v1/precio/GRA001", nil, "").Code)
		exists, err := env.rdb.Exists(ctx, "precio:GRA001").Result()
		require.NoError(t, err)
		require.EqualValues(t, 1, exists)

		w := env.do(t, http.MethodPost, "/v1/ventas", map[string]any{
			"items": []map[string]any{{"producto_id": arroz.ID, "cantidad": 1}},
		}, env.cajero)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		exists, err = env.rdb.Exists(ctx, "precio:GRA001").Result()
		require.NoError(t, err)
		assert.EqualValues(t, 0, exists)
	})

	t.Run("anulaciones concurrentes", func(t *testing.T) {
		atun := env.producto(t, "GRA003") // stock 45
		w := env.do(t, http.MethodPost, "/v1/ventas", map[string]any{
			"items": []map[string]any{{"producto_id": atun.ID, "cantidad": 5}},
		}, env.cajero)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		var venta struct {
			ID string `json:"id"`
		}
		decode(t, w, &venta)

		motivo := map[string]string{"motivo": "Error de digitación"}
		codes := make([]int, 5)
		var wg sync.WaitGroup
		for i := range codes {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				codes[i] = env.serve(http.MethodPost, "/v1/ventas/"+venta.ID+"/anular", motivo, env.admin)
			}(i)
		}
		wg.Wait()

		n := contarCodigos(codes)
		assert.Equal(t, 1, n[http.StatusOK], codes)
		assert.Equal(t, 4, n[http.StatusConflict], codes)
		assert.Equal(t, 45, env.producto(t, "GRA003").StockActual)
	})

	t.Run("health con redis", func(t *testing.T) {
		w := env.do(t, http.MethodGet, "/health", nil, "")
		require.Equal(t, http.StatusOK, w.Code)
		var health map[string]any
		decode(t, w, &health)
		assert.Equal(t, "connected", health["redis"])
		assert.EqualValues(t, 0, health["dlq_alertas"])
	})
}
