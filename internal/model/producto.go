package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// StockMinimoPorDefecto applies when a product is created without a minimum.
const StockMinimoPorDefecto = 5

// Producto is a sellable item. StockActual is only ever changed through the
// stock ledger (see service.InventarioService); products are never deleted,
// only deactivated.
type Producto struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Codigo      string          `gorm:"type:varchar(50);uniqueIndex;not null"`
	Nombre      string          `gorm:"type:varchar(100);not null"`
	Descripcion *string         `gorm:"type:varchar(255)"`
	PrecioVenta decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Costo       decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	StockActual int             `gorm:"not null;default:0;check:chk_productos_stock_actual,stock_actual >= 0"`
	StockMinimo int             `gorm:"not null"`
	Categoria   string          `gorm:"type:varchar(50);index"`
	Activo      bool            `gorm:"not null;default:true"`
}

func (Producto) TableName() string { return "productos" }

func (p *Producto) BeforeCreate(_ *gorm.DB) error {
	ensureID(&p.ID)
	return nil
}

// BajoMinimo reports whether the product is at or below its minimum stock.
func (p *Producto) BajoMinimo() bool { return p.StockActual <= p.StockMinimo }
