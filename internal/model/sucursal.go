package model

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Sucursal is a store branch. This deployment runs a single one; every sale
// references it.
type Sucursal struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Nombre    string    `gorm:"type:varchar(100);not null"`
	Direccion *string   `gorm:"type:varchar(255)"`
	Telefono  *string   `gorm:"type:varchar(20)"`
	Activa    bool      `gorm:"not null;default:true"`
}

func (Sucursal) TableName() string { return "sucursales" }

func (s *Sucursal) BeforeCreate(_ *gorm.DB) error {
	ensureID(&s.ID)
	return nil
}

// All returns every model managed by AutoMigrate, in dependency order.
func All() []interface{} {
	return []interface{}{
		&Usuario{},
		&Sucursal{},
		&Producto{},
		&Venta{},
		&VentaItem{},
		&MovimientoInventario{},
		&RegistroAuditoria{},
	}
}
