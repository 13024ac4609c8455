package repository

import (
	"context"
	"time"

	"storevision/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AuditoriaFilter struct {
	TipoAccion string
	UsuarioID  *uuid.UUID
	Desde      *time.Time
	Hasta      *time.Time // exclusive
	Page       int
	Limit      int
}

// AuditoriaRepository appends and reads audit entries. Entries are never
// updated or deleted.
type AuditoriaRepository interface {
	Create(ctx context.Context, r *model.RegistroAuditoria) error
	CreateTx(tx *gorm.DB, r *model.RegistroAuditoria) error
	List(ctx context.Context, filter AuditoriaFilter) ([]model.RegistroAuditoria, int64, error)
}

type auditoriaRepo struct{ db *gorm.DB }

func NewAuditoriaRepository(db *gorm.DB) AuditoriaRepository { return &auditoriaRepo{db: db} }

func (r *auditoriaRepo) Create(ctx context.Context, reg *model.RegistroAuditoria) error {
	return r.db.WithContext(ctx).Create(reg).Error
}

func (r *auditoriaRepo) CreateTx(tx *gorm.DB, reg *model.RegistroAuditoria) error {
	return tx.Create(reg).Error
}

func (r *auditoriaRepo) List(ctx context.Context, filter AuditoriaFilter) ([]model.RegistroAuditoria, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.RegistroAuditoria{})
	if filter.TipoAccion != "" {
		q = q.Where("tipo_accion = ?", filter.TipoAccion)
	}
	if filter.UsuarioID != nil {
		q = q.Where("usuario_id = ?", *filter.UsuarioID)
	}
	if filter.Desde != nil {
		q = q.Where("fecha_accion >= ?", *filter.Desde)
	}
	if filter.Hasta != nil {
		q = q.Where("fecha_accion < ?", *filter.Hasta)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page, limit := filter.Page, filter.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 500 {
		limit = 100
	}

	var registros []model.RegistroAuditoria
	err := q.Order("fecha_accion DESC").Offset((page - 1) * limit).Limit(limit).Find(&registros).Error
	return registros, total, err
}
