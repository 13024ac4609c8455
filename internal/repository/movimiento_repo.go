package repository

import (
	"context"
	"time"

	"storevision/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MovimientoFilter defines filters for listing ledger entries.
type MovimientoFilter struct {
	ProductoID *uuid.UUID
	Tipo       string
	Desde      *time.Time
	Hasta      *time.Time // exclusive
	Page       int
	Limit      int
}

// MovimientoRepository is append-only: there is no update or delete.
type MovimientoRepository interface {
	CreateTx(tx *gorm.DB, m *model.MovimientoInventario) error
	List(ctx context.Context, filter MovimientoFilter) ([]model.MovimientoInventario, int64, error)
	FindByVentaID(ctx context.Context, ventaID uuid.UUID) ([]model.MovimientoInventario, error)
	// Ultimos returns, per product, the movements carrying the latest timestamp.
	Ultimos(ctx context.Context) ([]model.MovimientoInventario, error)
}

type movimientoRepo struct{ db *gorm.DB }

func NewMovimientoRepository(db *gorm.DB) MovimientoRepository {
	return &movimientoRepo{db: db}
}

func (r *movimientoRepo) CreateTx(tx *gorm.DB, m *model.MovimientoInventario) error {
	return tx.Create(m).Error
}

func (r *movimientoRepo) List(ctx context.Context, filter MovimientoFilter) ([]model.MovimientoInventario, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.MovimientoInventario{})
	if filter.ProductoID != nil {
		q = q.Where("producto_id = ?", *filter.ProductoID)
	}
	if filter.Tipo != "" {
		q = q.Where("tipo = ?", filter.Tipo)
	}
	if filter.Desde != nil {
		q = q.Where("fecha_movimiento >= ?", *filter.Desde)
	}
	if filter.Hasta != nil {
		q = q.Where("fecha_movimiento < ?", *filter.Hasta)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := filter.Page
	limit := filter.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 500 {
		limit = 100
	}
	offset := (page - 1) * limit

	var movimientos []model.MovimientoInventario
	err := q.Preload("Producto").
		Order("fecha_movimiento DESC").
		Offset(offset).Limit(limit).
		Find(&movimientos).Error
	return movimientos, total, err
}

func (r *movimientoRepo) FindByVentaID(ctx context.Context, ventaID uuid.UUID) ([]model.MovimientoInventario, error) {
	var movimientos []model.MovimientoInventario
	err := r.db.WithContext(ctx).
		Where("venta_id = ?", ventaID).
		Order("fecha_movimiento ASC").
		Find(&movimientos).Error
	return movimientos, err
}

func (r *movimientoRepo) Ultimos(ctx context.Context) ([]model.MovimientoInventario, error) {
	var movimientos []model.MovimientoInventario
	err := r.db.WithContext(ctx).
		Where(`fecha_movimiento = (
			SELECT MAX(m2.fecha_movimiento) FROM movimientos_inventario m2
			WHERE m2.producto_id = movimientos_inventario.producto_id)`).
		Find(&movimientos).Error
	return movimientos, err
}
