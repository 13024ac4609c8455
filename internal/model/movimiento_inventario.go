package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	MovimientoEntrada = "entrada"
	MovimientoSalida  = "salida"
)

// MovimientoInventario is one immutable ledger entry. StockNuevo is always
// StockAnterior plus (entrada) or minus (salida) Cantidad, and Cantidad is
// always positive. Rows are appended, never updated or deleted.
type MovimientoInventario struct {
	ID              uuid.UUID  `gorm:"type:uuid;primaryKey"`
	ProductoID      uuid.UUID  `gorm:"type:uuid;not null;index"`
	Tipo            string     `gorm:"type:varchar(20);not null"`
	Cantidad        int        `gorm:"not null;check:chk_movimientos_cantidad,cantidad > 0"`
	StockAnterior   int        `gorm:"not null"`
	StockNuevo      int        `gorm:"not null"`
	Motivo          string     `gorm:"type:varchar(255)"`
	UsuarioID       uuid.UUID  `gorm:"type:uuid;not null;index"`
	VentaID         *uuid.UUID `gorm:"type:uuid;index"` // set when the movement belongs to a sale or its void
	FechaMovimiento time.Time  `gorm:"not null;index"`

	Producto *Producto `gorm:"foreignKey:ProductoID"`
	Usuario  *Usuario  `gorm:"foreignKey:UsuarioID"`
}

func (MovimientoInventario) TableName() string { return "movimientos_inventario" }

func (m *MovimientoInventario) BeforeCreate(_ *gorm.DB) error {
	ensureID(&m.ID)
	return nil
}

// Delta returns the signed stock change of the movement.
func (m *MovimientoInventario) Delta() int {
	if m.Tipo == MovimientoSalida {
		return -m.Cantidad
	}
	return m.Cantidad
}
