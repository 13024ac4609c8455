package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"storevision/internal/config"
	"storevision/internal/infra"
	"storevision/internal/model"
	"storevision/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func init() { bcryptCost = bcrypt.MinCost }

// notifierEspia records every batch of products it is told about.
type notifierEspia struct {
	mu       sync.Mutex
	llamadas [][]model.Producto
}

func (n *notifierEspia) StockActualizado(_ context.Context, productos []model.Producto) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.llamadas = append(n.llamadas, productos)
}

func (n *notifierEspia) total() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.llamadas)
}

type entorno struct {
	db          *gorm.DB
	cfg         *config.Config
	productos   repository.ProductoRepository
	movimientos repository.MovimientoRepository
	ventas      repository.VentaRepository
	registros   repository.AuditoriaRepository
	usuarios    repository.UsuarioRepository
	reportes    repository.ReporteRepository

	auditoria  AuditoriaService
	inventario InventarioService
	venta      VentaService
	producto   ProductoService
	auth       AuthService
	reporte    ReporteService
	notifier   *notifierEspia

	sucursal model.Sucursal
	admin    model.Usuario
	cajero   model.Usuario
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := infra.NewDatabase(fmt.Sprintf("file:%s?mode=memory&cache=shared", name))
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

func nuevoEntorno(t *testing.T) *entorno {
	t.Helper()
	db := newTestDB(t)
	e := &entorno{
		db: db,
		cfg: &config.Config{
			JWTSecret:          "test-secret",
			JWTExpirationHours: 8,
			JWTRefreshHours:    24,
		},
		productos:   repository.NewProductoRepository(db),
		movimientos: repository.NewMovimientoRepository(db),
		ventas:      repository.NewVentaRepository(db),
		registros:   repository.NewAuditoriaRepository(db),
		usuarios:    repository.NewUsuarioRepository(db),
		reportes:    repository.NewReporteRepository(db),
		notifier:    &notifierEspia{},
	}

	uow := NewUnitOfWork(db)
	e.auditoria = NewAuditoriaService(e.registros)
	e.inventario = NewInventarioService(e.productos, e.movimientos, e.auditoria, uow, e.notifier)
	e.producto = NewProductoService(e.productos, e.inventario, e.auditoria, uow, NewPrecioService(e.productos, nil))
	e.auth = NewAuthService(e.usuarios, e.auditoria, uow, e.cfg)
	e.reporte = NewReporteService(e.reportes)

	dir := "Carrera 15 # 45-60, Bogotá"
	e.sucursal = model.Sucursal{Nombre: "Tienda StoreVision", Direccion: &dir, Activa: true}
	require.NoError(t, db.Create(&e.sucursal).Error)
	e.venta = NewVentaService(e.ventas, e.productos, e.reportes, e.inventario, e.auditoria, uow, e.notifier, e.sucursal.ID)

	e.admin = e.crearUsuario(t, "admin@storevision.com", "María González", "admin123", model.RolAdministradora)
	e.cajero = e.crearUsuario(t, "cajero@storevision.com", "Carlos Rodríguez", "cajero123", model.RolCajero)
	return e
}

func (e *entorno) crearUsuario(t *testing.T, email, nombre, password, rol string) model.Usuario {
	t.Helper()
	hash, err := HashPassword(password)
	require.NoError(t, err)
	u := model.Usuario{Email: email, Nombre: nombre, PasswordHash: hash, Rol: rol, Activo: true}
	require.NoError(t, e.usuarios.Create(context.Background(), &u))
	return u
}

// crearProducto inserts a product with the given stock and no ledger history.
func (e *entorno) crearProducto(t *testing.T, codigo string, precio int64, stock, minimo int) model.Producto {
	t.Helper()
	p := model.Producto{
		Codigo:      codigo,
		Nombre:      "Producto " + codigo,
		PrecioVenta: decimal.NewFromInt(precio),
		Costo:       decimal.NewFromInt(precio / 2),
		StockActual: stock,
		StockMinimo: minimo,
		Categoria:   "General",
		Activo:      true,
	}
	require.NoError(t, e.productos.Create(context.Background(), &p))
	return p
}

func (e *entorno) stock(t *testing.T, id uuid.UUID) int {
	t.Helper()
	p, err := e.productos.FindByID(context.Background(), id)
	require.NoError(t, err)
	return p.StockActual
}

func (e *entorno) contar(t *testing.T, m interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, e.db.Model(m).Count(&n).Error)
	return n
}

func (e *entorno) registrosDeTipo(t *testing.T, tipo string) []model.RegistroAuditoria {
	t.Helper()
	regs, _, err := e.registros.List(context.Background(), repository.AuditoriaFilter{TipoAccion: tipo, Page: 1, Limit: 100})
	require.NoError(t, err)
	return regs
}

func (e *entorno) actorCajero() Actor {
	return Actor{UsuarioID: e.cajero.ID, Rol: e.cajero.Rol, IP: "10.0.0.2"}
}

func (e *entorno) actorAdmin() Actor {
	return Actor{UsuarioID: e.admin.ID, Rol: e.admin.Rol, IP: "10.0.0.1"}
}

func decimalInt(n int64) decimal.Decimal { return decimal.NewFromInt(n) }

func movimientosDe(id uuid.UUID) repository.MovimientoFilter {
	return repository.MovimientoFilter{ProductoID: &id, Page: 1, Limit: 100}
}

func mustUUID(t *testing.T, s string) uuid.UUID {
	t.Helper()
	id, err := uuid.Parse(s)
	require.NoError(t, err)
	return id
}
