package infra

import (
	"bytes"
	"testing"
	"time"

	"storevision/internal/config"
	"storevision/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ventaDePrueba() *model.Venta {
	direccion := "Carrera 15 # 45-60, Bogotá"
	return &model.Venta{
		ID:         uuid.New(),
		Total:      decimal.NewFromInt(25300),
		FechaVenta: time.Date(2024, 3, 1, 15, 4, 0, 0, time.UTC),
		Estado:     model.VentaCompletada,
		Sucursal:   &model.Sucursal{Nombre: "Tienda StoreVision", Direccion: &direccion},
		Usuario:    &model.Usuario{Nombre: "Carlos Rodríguez"},
		Items: []model.VentaItem{
			{
				ProductoID:     uuid.New(),
				Cantidad:       2,
				PrecioUnitario: decimal.NewFromInt(3800),
				Subtotal:       decimal.NewFromInt(7600),
				Producto:       &model.Producto{Nombre: "Leche Entera Alpina 1L"},
			},
			{
				// Without Producto preloaded the ticket falls back to the id.
				ProductoID:     uuid.New(),
				Cantidad:       1,
				PrecioUnitario: decimal.NewFromInt(17700),
				Subtotal:       decimal.NewFromInt(17700),
			},
		},
	}
}

func TestGenerarTicketPDF(t *testing.T) {
	pdf, err := GenerarTicketPDF(ventaDePrueba())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(pdf, []byte("%PDF")))

	anulada := ventaDePrueba()
	anulada.Estado = model.VentaAnulada
	motivo := "Cliente devolvió el producto"
	anulada.MotivoAnulacion = &motivo
	anulada.Sucursal = nil
	pdf, err = GenerarTicketPDF(anulada)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(pdf, []byte("%PDF")))
}

func TestBuildAlertaStockEmail(t *testing.T) {
	e := BuildAlertaStockEmail("alertas@storevision.com", "gerencia@storevision.com", []ProductoAlerta{
		{Codigo: "BEB002", Nombre: "Café <Sello Rojo>", StockActual: 3, StockMinimo: 10},
	})

	assert.Equal(t, "alertas@storevision.com", e.From)
	assert.Equal(t, []string{"gerencia@storevision.com"}, e.To)
	assert.Contains(t, e.Subject, "1 producto(s)")
	assert.Contains(t, string(e.Text), "BEB002 Café <Sello Rojo>: stock 3 (mínimo 10)")
	assert.Contains(t, string(e.HTML), "Café &lt;Sello Rojo&gt;")
	assert.NotContains(t, string(e.HTML), "<Sello")
}

func TestMailer_SinHost(t *testing.T) {
	m := NewMailer(&config.Config{SMTPPort: 587})
	assert.False(t, m.Configured())
	assert.Error(t, m.SendAlertaStock("a@b.co", []ProductoAlerta{{Codigo: "X"}}))

	assert.True(t, NewMailer(&config.Config{SMTPHost: "smtp.example.com", SMTPPort: 587}).Configured())
}

func TestDialectorFor(t *testing.T) {
	cases := []struct {
		dsn     string
		name    string
		sqlite  bool
		wantErr bool
	}{
		{dsn: "postgres://u:p@localhost:5432/db", name: "postgres"},
		{dsn: "postgresql://u:p@localhost/db", name: "postgres"},
		{dsn: "host=localhost user=u dbname=db", name: "postgres"},
		{dsn: "sqlite://storevision.db", name: "sqlite", sqlite: true},
		{dsn: "file:test?mode=memory", name: "sqlite", sqlite: true},
		{dsn: ":memory:", name: "sqlite", sqlite: true},
		{dsn: "", wantErr: true},
		{dsn: "mysql://u@localhost/db", wantErr: true},
	}
	for _, tc := range cases {
		t.Run(tc.dsn, func(t *testing.T) {
			d, isSQLite, err := dialectorFor(tc.dsn)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.name, d.Name())
			assert.Equal(t, tc.sqlite, isSQLite)
		})
	}
}

func TestNewDatabase_SQLite(t *testing.T) {
	db, err := NewDatabase("file:infra_newdb?mode=memory&cache=shared")
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	defer sqlDB.Close()

	for _, m := range model.All() {
		assert.True(t, db.Migrator().HasTable(m))
	}
	// Idempotent.
	assert.NoError(t, RunMigrations(db))
}
