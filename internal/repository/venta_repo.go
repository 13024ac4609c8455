package repository

import (
	"context"
	"time"

	"storevision/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// VentaFilter selects sales by sale date (half-open range) and state.
type VentaFilter struct {
	Desde  time.Time
	Hasta  time.Time
	Estado string // "" or "all" = any
	Page   int
	Limit  int
}

type VentaRepository interface {
	// CreateTx inserts the sale header only; items go through CreateItemsTx
	// so each line is written explicitly inside the caller's transaction.
	CreateTx(tx *gorm.DB, v *model.Venta) error
	CreateItemsTx(tx *gorm.DB, items []model.VentaItem) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Venta, error)
	FindForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.Venta, error)
	// AnularTx flips completada → anulada; false means the sale was not in
	// the completada state anymore.
	AnularTx(tx *gorm.DB, id uuid.UUID, motivo string, fecha time.Time) (bool, error)
	List(ctx context.Context, filter VentaFilter) ([]model.Venta, int64, error)
	DB() *gorm.DB // exposes the DB for transaction creation in service layer
}

type ventaRepo struct{ db *gorm.DB }

func NewVentaRepository(db *gorm.DB) VentaRepository { return &ventaRepo{db: db} }

func (r *ventaRepo) DB() *gorm.DB { return r.db }

func (r *ventaRepo) CreateTx(tx *gorm.DB, v *model.Venta) error {
	return tx.Omit(clause.Associations).Create(v).Error
}

func (r *ventaRepo) CreateItemsTx(tx *gorm.DB, items []model.VentaItem) error {
	if len(items) == 0 {
		return nil
	}
	return tx.Omit(clause.Associations).Create(&items).Error
}

func (r *ventaRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Venta, error) {
	var v model.Venta
	err := r.db.WithContext(ctx).
		Preload("Items.Producto").
		Preload("Usuario").
		Preload("Sucursal").
		Where("id = ?", id).
		First(&v).Error
	return &v, err
}

func (r *ventaRepo) FindForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.Venta, error) {
	var v model.Venta
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&v).Error
	if err != nil {
		return &v, err
	}
	err = tx.Where("venta_id = ?", id).Order("producto_id ASC").Find(&v.Items).Error
	return &v, err
}

func (r *ventaRepo) AnularTx(tx *gorm.DB, id uuid.UUID, motivo string, fecha time.Time) (bool, error) {
	res := tx.Model(&model.Venta{}).
		Where("id = ? AND estado = ?", id, model.VentaCompletada).
		Updates(map[string]interface{}{
			"estado":           model.VentaAnulada,
			"motivo_anulacion": motivo,
			"fecha_anulacion":  fecha,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *ventaRepo) List(ctx context.Context, filter VentaFilter) ([]model.Venta, int64, error) {
	var ventas []model.Venta
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Venta{}).
		Where("fecha_venta >= ? AND fecha_venta < ?", filter.Desde, filter.Hasta)
	if filter.Estado != "" && filter.Estado != "all" {
		q = q.Where("estado = ?", filter.Estado)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	err := q.Preload("Items.Producto").Preload("Usuario").
		Order("fecha_venta DESC").
		Offset(offset).Limit(filter.Limit).
		Find(&ventas).Error
	return ventas, total, err
}
