package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RolAdministradora = "administradora"
	RolCajero         = "cajero"
)

// Usuario stores system users with role-based access.
// Rol: "administradora" | "cajero"
type Usuario struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	Email         string    `gorm:"type:varchar(100);uniqueIndex;not null"`
	Nombre        string    `gorm:"type:varchar(100);not null"`
	PasswordHash  string    `gorm:"type:varchar(255);not null"`
	Rol           string    `gorm:"type:varchar(20);not null"`
	Activo        bool      `gorm:"not null;default:true"`
	FechaCreacion time.Time `gorm:"autoCreateTime"`
}

func (Usuario) TableName() string { return "usuarios" }

func (u *Usuario) BeforeCreate(_ *gorm.DB) error {
	ensureID(&u.ID)
	return nil
}
