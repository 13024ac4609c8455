// Package seed creates the store branch and the demo catalog on first start.
package seed

import (
	"context"
	"errors"
	"fmt"

	"storevision/internal/dto"
	"storevision/internal/model"
	"storevision/internal/repository"
	"storevision/internal/service"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	sucursalNombre    = "Tienda StoreVision"
	sucursalDireccion = "Carrera 15 # 45-60, Bogotá"
	sucursalTelefono  = "+57 601 1234567"
)

type usuarioDemo struct {
	email, nombre, password, rol string
}

var usuariosDemo = []usuarioDemo{
	{"admin@storevision.com", "María González", "admin123", model.RolAdministradora},
	{"cajero@storevision.com", "Carlos Rodríguez", "cajero123", model.RolCajero},
}

type productoDemo struct {
	codigo, nombre, categoria string
	precio, costo             int64
	stock, minimo             int
}

var catalogoDemo = []productoDemo{
	{"LAC001", "Leche Entera Alpina 1L", "Lácteos", 3800, 2800, 50, 10},
	{"LAC002", "Queso Campesino 500g", "Lácteos", 12500, 8500, 20, 5},
	{"LAC003", "Huevos AA x30", "Lácteos", 18500, 14500, 30, 8},
	{"GRA001", "Arroz Diana 1kg", "Granos", 4500, 3200, 40, 12},
	{"GRA002", "Fríjol Cargamanto 1kg", "Granos", 6800, 4800, 35, 10},
	{"GRA003", "Atún Van Camps 170g", "Enlatados", 5800, 4200, 45, 15},
	{"ASE001", "Jabón Rey 3 unidades", "Aseo", 7500, 5200, 60, 20},
	{"ASE002", "Detergente Líquido 1L", "Aseo", 12800, 8900, 25, 8},
	{"BEB001", "Coca-Cola 1.5L", "Bebidas", 5800, 4200, 65, 20},
	{"BEB002", "Café Sello Rojo 500g", "Bebidas", 12500, 8500, 30, 10},
	{"SNK001", "Papas Margarita 60g", "Snacks", 2200, 1500, 80, 25},
	{"SNK002", "Chocolatina Jet", "Snacks", 1200, 800, 120, 40},
}

// EnsureSucursal returns the id of the single store branch, creating it when
// the table is empty.
func EnsureSucursal(ctx context.Context, db *gorm.DB) (uuid.UUID, error) {
	var s model.Sucursal
	err := db.WithContext(ctx).Order("nombre ASC").First(&s).Error
	if err == nil {
		return s.ID, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return uuid.Nil, err
	}

	dir, tel := sucursalDireccion, sucursalTelefono
	s = model.Sucursal{Nombre: sucursalNombre, Direccion: &dir, Telefono: &tel, Activa: true}
	if err := db.WithContext(ctx).Create(&s).Error; err != nil {
		return uuid.Nil, err
	}
	log.Info().Str("sucursal", s.Nombre).Msg("seed: sucursal creada")
	return s.ID, nil
}

// DemoData creates the demo users and catalog when no user exists yet.
// Initial stock is booked as entradas so the ledger matches from the start.
func DemoData(ctx context.Context, db *gorm.DB) error {
	var n int64
	if err := db.WithContext(ctx).Model(&model.Usuario{}).Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		log.Info().Msg("seed: la base ya contiene usuarios, omitiendo datos de ejemplo")
		return nil
	}

	usuarios := repository.NewUsuarioRepository(db)
	var admin *model.Usuario
	for _, u := range usuariosDemo {
		hash, err := service.HashPassword(u.password)
		if err != nil {
			return err
		}
		m := &model.Usuario{Email: u.email, Nombre: u.nombre, PasswordHash: hash, Rol: u.rol, Activo: true}
		if err := usuarios.Create(ctx, m); err != nil {
			return fmt.Errorf("seed usuario %s: %w", u.email, err)
		}
		if u.rol == model.RolAdministradora {
			admin = m
		}
	}

	productos := newProductoService(db)
	actor := service.Actor{UsuarioID: admin.ID, Rol: admin.Rol}
	for _, p := range catalogoDemo {
		minimo := p.minimo
		_, err := productos.Crear(ctx, actor, dto.CrearProductoRequest{
			Codigo:       p.codigo,
			Nombre:       p.nombre,
			Categoria:    p.categoria,
			Costo:        decimal.NewFromInt(p.costo),
			PrecioVenta:  decimal.NewFromInt(p.precio),
			StockInicial: p.stock,
			StockMinimo:  &minimo,
		})
		if err != nil {
			return fmt.Errorf("seed producto %s: %w", p.codigo, err)
		}
	}

	log.Info().
		Int("usuarios", len(usuariosDemo)).
		Int("productos", len(catalogoDemo)).
		Msg("seed: datos de ejemplo creados")
	return nil
}

func newProductoService(db *gorm.DB) service.ProductoService {
	productoRepo := repository.NewProductoRepository(db)
	uow := service.NewUnitOfWork(db)
	auditoria := service.NewAuditoriaService(repository.NewAuditoriaRepository(db))
	inventario := service.NewInventarioService(productoRepo, repository.NewMovimientoRepository(db), auditoria, uow, nil)
	return service.NewProductoService(productoRepo, inventario, auditoria, uow, service.NewPrecioService(productoRepo, nil))
}
