package service

import (
	"context"
	"fmt"

	"storevision/internal/dto"
	"storevision/internal/model"
	"storevision/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// EntradaAuditoria is one event to record. UsuarioID is nil when nobody is
// authenticated (failed logins).
type EntradaAuditoria struct {
	UsuarioID   *uuid.UUID
	TipoAccion  string
	Descripcion string
	IP          string
}

type AuditoriaService interface {
	// RegistrarTx appends the entry inside the caller's transaction; it
	// commits or rolls back together with the operation it describes.
	RegistrarTx(ctx context.Context, tx *gorm.DB, e EntradaAuditoria) error
	// Registrar appends a standalone entry in its own transaction.
	Registrar(ctx context.Context, e EntradaAuditoria) error
	Listar(ctx context.Context, filter dto.AuditoriaFilter) (*dto.AuditoriaListResponse, error)
}

type auditoriaService struct {
	repo repository.AuditoriaRepository
}

func NewAuditoriaService(repo repository.AuditoriaRepository) AuditoriaService {
	return &auditoriaService{repo: repo}
}

func (s *auditoriaService) RegistrarTx(ctx context.Context, tx *gorm.DB, e EntradaAuditoria) error {
	reg, err := nuevoRegistro(e)
	if err != nil {
		return err
	}
	return persistencia(s.repo.CreateTx(tx.WithContext(ctx), reg))
}

func (s *auditoriaService) Registrar(ctx context.Context, e EntradaAuditoria) error {
	reg, err := nuevoRegistro(e)
	if err != nil {
		return err
	}
	return persistencia(s.repo.Create(ctx, reg))
}

func nuevoRegistro(e EntradaAuditoria) (*model.RegistroAuditoria, error) {
	if e.TipoAccion == "" {
		return nil, fmt.Errorf("%w: tipo de acción vacío", ErrAuditoriaInvalida)
	}
	reg := &model.RegistroAuditoria{
		UsuarioID:   e.UsuarioID,
		TipoAccion:  e.TipoAccion,
		Descripcion: e.Descripcion,
		FechaAccion: ahora(),
	}
	if e.IP != "" {
		ip := e.IP
		reg.IPAddress = &ip
	}
	return reg, nil
}

func (s *auditoriaService) Listar(ctx context.Context, filter dto.AuditoriaFilter) (*dto.AuditoriaListResponse, error) {
	f := repository.AuditoriaFilter{
		TipoAccion: filter.TipoAccion,
		Page:       filter.Page,
		Limit:      filter.Limit,
	}
	if filter.UsuarioID != "" {
		id, err := uuid.Parse(filter.UsuarioID)
		if err != nil {
			return nil, ErrIdentificadorInvalido
		}
		f.UsuarioID = &id
	}
	if filter.Desde != "" || filter.Hasta != "" {
		desde, hasta, err := rangoFechas(filter.Desde, filter.Hasta, ahora(), ahora())
		if err != nil {
			return nil, err
		}
		f.Desde, f.Hasta = &desde, &hasta
	}

	registros, total, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, persistencia(err)
	}

	resp := &dto.AuditoriaListResponse{
		Data:  make([]dto.RegistroAuditoriaResponse, 0, len(registros)),
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}
	for _, r := range registros {
		item := dto.RegistroAuditoriaResponse{
			ID:          r.ID.String(),
			TipoAccion:  r.TipoAccion,
			Descripcion: r.Descripcion,
			FechaAccion: formatTime(r.FechaAccion),
			IPAddress:   r.IPAddress,
		}
		if r.UsuarioID != nil {
			uid := r.UsuarioID.String()
			item.UsuarioID = &uid
		}
		resp.Data = append(resp.Data, item)
	}
	return resp, nil
}
