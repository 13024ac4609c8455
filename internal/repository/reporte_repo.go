package repository

import (
	"context"
	"time"

	"storevision/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// TotalesVentas aggregates the completed sales of a period.
type TotalesVentas struct {
	Cantidad int64
	Total    decimal.Decimal
}

type ProductoVendido struct {
	ProductoID       uuid.UUID
	Codigo           string
	Nombre           string
	UnidadesVendidas int64
	TotalVendido     decimal.Decimal
}

type VentasPorCajero struct {
	UsuarioID uuid.UUID
	Nombre    string
	Cantidad  int64
	Total     decimal.Decimal
}

// ReporteRepository runs the read-only aggregate queries behind the
// consolidation and report endpoints. Only completed sales count; ranges are
// half-open [desde, hasta).
type ReporteRepository interface {
	TotalesVentas(ctx context.Context, desde, hasta time.Time) (TotalesVentas, error)
	VentasAnuladas(ctx context.Context, desde, hasta time.Time) (int64, error)
	UnidadesVendidas(ctx context.Context, desde, hasta time.Time) (int64, error)
	CostoVentas(ctx context.Context, desde, hasta time.Time) (decimal.Decimal, error)
	MasVendidos(ctx context.Context, desde, hasta time.Time, limit int) ([]ProductoVendido, error)
	PorCajero(ctx context.Context, desde, hasta time.Time) ([]VentasPorCajero, error)
}

type reporteRepo struct{ db *gorm.DB }

func NewReporteRepository(db *gorm.DB) ReporteRepository { return &reporteRepo{db: db} }

func (r *reporteRepo) completadas(ctx context.Context, desde, hasta time.Time) *gorm.DB {
	return r.db.WithContext(ctx).Model(&model.Venta{}).
		Where("ventas.estado = ? AND ventas.fecha_venta >= ? AND ventas.fecha_venta < ?", model.VentaCompletada, desde, hasta)
}

func (r *reporteRepo) TotalesVentas(ctx context.Context, desde, hasta time.Time) (TotalesVentas, error) {
	var row struct {
		Cantidad int64
		Total    decimal.NullDecimal
	}
	err := r.completadas(ctx, desde, hasta).
		Select("COUNT(*) AS cantidad, SUM(ventas.total) AS total").
		Scan(&row).Error
	return TotalesVentas{Cantidad: row.Cantidad, Total: orZero(row.Total)}, err
}

func (r *reporteRepo) VentasAnuladas(ctx context.Context, desde, hasta time.Time) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Venta{}).
		Where("estado = ? AND fecha_venta >= ? AND fecha_venta < ?", model.VentaAnulada, desde, hasta).
		Count(&n).Error
	return n, err
}

func (r *reporteRepo) UnidadesVendidas(ctx context.Context, desde, hasta time.Time) (int64, error) {
	var row struct{ Unidades *int64 }
	err := r.completadas(ctx, desde, hasta).
		Joins("JOIN items_venta ON items_venta.venta_id = ventas.id").
		Select("SUM(items_venta.cantidad) AS unidades").
		Scan(&row).Error
	if row.Unidades == nil {
		return 0, err
	}
	return *row.Unidades, err
}

// CostoVentas values the sold units at the products' current cost; item
// rows only snapshot the sale price.
func (r *reporteRepo) CostoVentas(ctx context.Context, desde, hasta time.Time) (decimal.Decimal, error) {
	var row struct{ Costo decimal.NullDecimal }
	err := r.completadas(ctx, desde, hasta).
		Joins("JOIN items_venta ON items_venta.venta_id = ventas.id").
		Joins("JOIN productos ON productos.id = items_venta.producto_id").
		Select("SUM(items_venta.cantidad * productos.costo) AS costo").
		Scan(&row).Error
	return orZero(row.Costo), err
}

func (r *reporteRepo) MasVendidos(ctx context.Context, desde, hasta time.Time, limit int) ([]ProductoVendido, error) {
	var rows []ProductoVendido
	err := r.completadas(ctx, desde, hasta).
		Joins("JOIN items_venta ON items_venta.venta_id = ventas.id").
		Joins("JOIN productos ON productos.id = items_venta.producto_id").
		Select(`productos.id AS producto_id, productos.codigo AS codigo, productos.nombre AS nombre,
			SUM(items_venta.cantidad) AS unidades_vendidas, SUM(items_venta.subtotal) AS total_vendido`).
		Group("productos.id, productos.codigo, productos.nombre").
		Order("SUM(items_venta.cantidad) DESC, productos.codigo ASC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}

func (r *reporteRepo) PorCajero(ctx context.Context, desde, hasta time.Time) ([]VentasPorCajero, error) {
	var rows []VentasPorCajero
	err := r.completadas(ctx, desde, hasta).
		Joins("JOIN usuarios ON usuarios.id = ventas.usuario_id").
		Select("usuarios.id AS usuario_id, usuarios.nombre AS nombre, COUNT(*) AS cantidad, SUM(ventas.total) AS total").
		Group("usuarios.id, usuarios.nombre").
		Order("SUM(ventas.total) DESC").
		Scan(&rows).Error
	return rows, err
}

func orZero(d decimal.NullDecimal) decimal.Decimal {
	if d.Valid {
		return d.Decimal
	}
	return decimal.Zero
}
