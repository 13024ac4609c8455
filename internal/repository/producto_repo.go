package repository

import (
	"context"
	"strings"

	"storevision/internal/dto"
	"storevision/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProductoRepository defines the data access contract for products.
// Services depend on this interface, not on the concrete GORM implementation.
type ProductoRepository interface {
	Create(ctx context.Context, p *model.Producto) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Producto, error)
	FindByCodigo(ctx context.Context, codigo string) (*model.Producto, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Producto, error)
	List(ctx context.Context, filter dto.ProductoFilter) ([]model.Producto, int64, error)
	ListAll(ctx context.Context) ([]model.Producto, error)
	BajoMinimo(ctx context.Context) ([]model.Producto, error)

	// Used inside transactions; callers must pass the tx instance
	CreateTx(tx *gorm.DB, p *model.Producto) error
	DesactivarTx(tx *gorm.DB, id uuid.UUID) (bool, error)
	FindForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.Producto, error)
	LockByIDsTx(tx *gorm.DB, ids []uuid.UUID) ([]model.Producto, error)
	// UpdateStockGuardedTx writes nuevo only if stock_actual still equals
	// esperado. It reports false when another writer got there first.
	UpdateStockGuardedTx(tx *gorm.DB, id uuid.UUID, esperado, nuevo int) (bool, error)

	// DB exposes the underlying *gorm.DB so services can open transactions.
	DB() *gorm.DB
}

type productoRepo struct{ db *gorm.DB }

func NewProductoRepository(db *gorm.DB) ProductoRepository { return &productoRepo{db: db} }

func (r *productoRepo) DB() *gorm.DB { return r.db }

func (r *productoRepo) Create(ctx context.Context, p *model.Producto) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *productoRepo) CreateTx(tx *gorm.DB, p *model.Producto) error {
	return tx.Create(p).Error
}

func (r *productoRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Producto, error) {
	var p model.Producto
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&p).Error
	return &p, err
}

func (r *productoRepo) FindByCodigo(ctx context.Context, codigo string) (*model.Producto, error) {
	var p model.Producto
	err := r.db.WithContext(ctx).Where("codigo = ?", codigo).First(&p).Error
	return &p, err
}

func (r *productoRepo) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Producto, error) {
	var productos []model.Producto
	if len(ids) == 0 {
		return productos, nil
	}
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&productos).Error
	return productos, err
}

func (r *productoRepo) List(ctx context.Context, filter dto.ProductoFilter) ([]model.Producto, int64, error) {
	var productos []model.Producto
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Producto{})

	// Activo filter: "false" = inactivos, "all" = todos, anything else = activos (default)
	switch filter.Activo {
	case "false":
		q = q.Where("activo = ?", false)
	case "all":
	default:
		q = q.Where("activo = ?", true)
	}

	if filter.Codigo != "" {
		q = q.Where("codigo = ?", filter.Codigo)
	}
	if filter.Nombre != "" {
		q = q.Where("LOWER(nombre) LIKE ?", "%"+strings.ToLower(filter.Nombre)+"%")
	}
	if filter.Categoria != "" {
		q = q.Where("categoria = ?", filter.Categoria)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	err := q.Order("nombre ASC").Limit(filter.Limit).Offset(offset).Find(&productos).Error
	return productos, total, err
}

func (r *productoRepo) ListAll(ctx context.Context) ([]model.Producto, error) {
	var productos []model.Producto
	err := r.db.WithContext(ctx).Order("codigo ASC").Find(&productos).Error
	return productos, err
}

func (r *productoRepo) BajoMinimo(ctx context.Context) ([]model.Producto, error) {
	var productos []model.Producto
	err := r.db.WithContext(ctx).
		Where("activo = ? AND stock_actual <= stock_minimo", true).
		Order("stock_actual ASC, codigo ASC").
		Find(&productos).Error
	return productos, err
}

func (r *productoRepo) DesactivarTx(tx *gorm.DB, id uuid.UUID) (bool, error) {
	res := tx.Model(&model.Producto{}).Where("id = ? AND activo = ?", id, true).Update("activo", false)
	return res.RowsAffected == 1, res.Error
}

func (r *productoRepo) FindForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.Producto, error) {
	var p model.Producto
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", id).First(&p).Error
	return &p, err
}

// LockByIDsTx locks the rows in ascending id order so that two sales touching
// the same products always acquire their locks in the same sequence.
func (r *productoRepo) LockByIDsTx(tx *gorm.DB, ids []uuid.UUID) ([]model.Producto, error) {
	var productos []model.Producto
	if len(ids) == 0 {
		return productos, nil
	}
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id IN ?", ids).
		Order("id ASC").
		Find(&productos).Error
	return productos, err
}

func (r *productoRepo) UpdateStockGuardedTx(tx *gorm.DB, id uuid.UUID, esperado, nuevo int) (bool, error) {
	res := tx.Model(&model.Producto{}).
		Where("id = ? AND stock_actual = ?", id, esperado).
		Update("stock_actual", nuevo)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
