package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Tipos de acción registrados en la auditoría.
const (
	AccionLoginExitoso         = "login_exitoso"
	AccionLoginFallido         = "login_fallido"
	AccionVenta                = "venta"
	AccionAnulacion            = "anulacion"
	AccionMovimientoInventario = "movimiento_inventario"
	AccionCreacionUsuario      = "creacion_usuario"
	AccionCreacionProducto     = "creacion_producto"
	AccionDesactivarProducto   = "desactivacion_producto"
)

// RegistroAuditoria is an append-only audit entry. UsuarioID is nil for
// failed logins.
type RegistroAuditoria struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey"`
	UsuarioID   *uuid.UUID `gorm:"type:uuid;index"`
	TipoAccion  string     `gorm:"type:varchar(50);not null;index"`
	Descripcion string     `gorm:"type:text;not null"`
	FechaAccion time.Time  `gorm:"not null;index"`
	IPAddress   *string    `gorm:"type:varchar(45)"`
}

func (RegistroAuditoria) TableName() string { return "registros_auditoria" }

func (r *RegistroAuditoria) BeforeCreate(_ *gorm.DB) error {
	ensureID(&r.ID)
	return nil
}
