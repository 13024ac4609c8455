package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	VentaCompletada = "completada"
	VentaAnulada    = "anulada"
)

// Venta is a completed sale. Estado starts as "completada" and may move
// exactly once to "anulada", which is terminal.
type Venta struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey"`
	SucursalID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	UsuarioID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	Total           decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	FechaVenta      time.Time       `gorm:"not null;index"`
	Estado          string          `gorm:"type:varchar(20);not null;default:'completada';index"`
	MotivoAnulacion *string         `gorm:"type:varchar(255)"`
	FechaAnulacion  *time.Time

	Items    []VentaItem `gorm:"foreignKey:VentaID;constraint:OnDelete:CASCADE"`
	Usuario  *Usuario    `gorm:"foreignKey:UsuarioID"`
	Sucursal *Sucursal   `gorm:"foreignKey:SucursalID"`
}

func (Venta) TableName() string { return "ventas" }

func (v *Venta) BeforeCreate(_ *gorm.DB) error {
	ensureID(&v.ID)
	return nil
}

// VentaItem is one line of a sale. PrecioUnitario is the product price at
// the moment of the sale; later price changes never touch it.
type VentaItem struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey"`
	VentaID        uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductoID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	Cantidad       int             `gorm:"not null"`
	PrecioUnitario decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Subtotal       decimal.Decimal `gorm:"type:decimal(12,2);not null"`

	Producto *Producto `gorm:"foreignKey:ProductoID"`
}

func (VentaItem) TableName() string { return "items_venta" }

func (i *VentaItem) BeforeCreate(_ *gorm.DB) error {
	ensureID(&i.ID)
	return nil
}
