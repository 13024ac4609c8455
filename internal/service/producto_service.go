package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"storevision/internal/dto"
	"storevision/internal/model"
	"storevision/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const motivoStockInicial = "Stock inicial"

// ProductoService defines the business logic contract for products.
type ProductoService interface {
	Crear(ctx context.Context, actor Actor, req dto.CrearProductoRequest) (*dto.ProductoResponse, error)
	ObtenerPorID(ctx context.Context, id uuid.UUID) (*dto.ProductoResponse, error)
	Listar(ctx context.Context, filter dto.ProductoFilter) (*dto.ProductoListResponse, error)
	Desactivar(ctx context.Context, actor Actor, id uuid.UUID) error
}

type productoService struct {
	repo       repository.ProductoRepository
	inventario InventarioService
	auditoria  AuditoriaService
	uow        UnitOfWork
	precios    PrecioService
}

func NewProductoService(
	repo repository.ProductoRepository,
	inventario InventarioService,
	auditoria AuditoriaService,
	uow UnitOfWork,
	precios PrecioService,
) ProductoService {
	return &productoService{repo: repo, inventario: inventario, auditoria: auditoria, uow: uow, precios: precios}
}

// Crear registers the product with zero stock and books StockInicial as an
// entrada, so the ledger explains the product's stock from the start.
func (s *productoService) Crear(ctx context.Context, actor Actor, req dto.CrearProductoRequest) (*dto.ProductoResponse, error) {
	codigo := strings.ToUpper(strings.TrimSpace(req.Codigo))
	if _, err := s.repo.FindByCodigo(ctx, codigo); err == nil {
		return nil, fmt.Errorf("%w: %s", ErrCodigoDuplicado, codigo)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, persistencia(err)
	}

	minimo := model.StockMinimoPorDefecto
	if req.StockMinimo != nil {
		minimo = *req.StockMinimo
	}

	p := &model.Producto{
		Codigo:      codigo,
		Nombre:      strings.TrimSpace(req.Nombre),
		Descripcion: req.Descripcion,
		PrecioVenta: req.PrecioVenta,
		Costo:       req.Costo,
		StockActual: 0,
		StockMinimo: minimo,
		Categoria:   req.Categoria,
		Activo:      true,
	}

	err := s.uow.Do(ctx, func(tx *gorm.DB) error {
		if err := s.repo.CreateTx(tx, p); err != nil {
			return persistencia(err)
		}
		if req.StockInicial > 0 {
			res, err := s.inventario.AplicarMovimientoTx(ctx, tx, MovimientoInput{
				ProductoID: p.ID,
				Tipo:       model.MovimientoEntrada,
				Cantidad:   req.StockInicial,
				Motivo:     motivoStockInicial,
				UsuarioID:  actor.UsuarioID,
			})
			if err != nil {
				return err
			}
			p.StockActual = res.Producto.StockActual
		}
		return s.auditoria.RegistrarTx(ctx, tx, EntradaAuditoria{
			UsuarioID:   &actor.UsuarioID,
			TipoAccion:  model.AccionCreacionProducto,
			Descripcion: fmt.Sprintf("Producto %s (%s) creado con stock %d", p.Nombre, p.Codigo, p.StockActual),
			IP:          actor.IP,
		})
	})
	if err != nil {
		return nil, err
	}

	resp := productoToResponse(p)
	return &resp, nil
}

func (s *productoService) ObtenerPorID(ctx context.Context, id uuid.UUID) (*dto.ProductoResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrProductoNoEncontrado, id)
		}
		return nil, persistencia(err)
	}
	resp := productoToResponse(p)
	return &resp, nil
}

func (s *productoService) Listar(ctx context.Context, filter dto.ProductoFilter) (*dto.ProductoListResponse, error) {
	productos, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, persistencia(err)
	}
	resp := &dto.ProductoListResponse{
		Data:  make([]dto.ProductoResponse, 0, len(productos)),
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}
	if filter.Limit > 0 {
		resp.TotalPages = int((total + int64(filter.Limit) - 1) / int64(filter.Limit))
	}
	for i := range productos {
		resp.Data = append(resp.Data, productoToResponse(&productos[i]))
	}
	return resp, nil
}

// Desactivar hides the product from sale. Products are never deleted: past
// sales and movements keep referencing them.
func (s *productoService) Desactivar(ctx context.Context, actor Actor, id uuid.UUID) error {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: %s", ErrProductoNoEncontrado, id)
		}
		return persistencia(err)
	}

	err = s.uow.Do(ctx, func(tx *gorm.DB) error {
		ok, err := s.repo.DesactivarTx(tx, id)
		if err != nil {
			return persistencia(err)
		}
		if !ok {
			// already inactive
			return nil
		}
		return s.auditoria.RegistrarTx(ctx, tx, EntradaAuditoria{
			UsuarioID:   &actor.UsuarioID,
			TipoAccion:  model.AccionDesactivarProducto,
			Descripcion: fmt.Sprintf("Producto %s (%s) desactivado", p.Nombre, p.Codigo),
			IP:          actor.IP,
		})
	})
	if err != nil {
		return err
	}
	if s.precios != nil {
		s.precios.Invalidar(ctx, p.Codigo)
	}
	return nil
}

func productoToResponse(p *model.Producto) dto.ProductoResponse {
	return dto.ProductoResponse{
		ID:          p.ID.String(),
		Codigo:      p.Codigo,
		Nombre:      p.Nombre,
		Descripcion: p.Descripcion,
		Categoria:   p.Categoria,
		Costo:       p.Costo,
		PrecioVenta: p.PrecioVenta,
		StockActual: p.StockActual,
		StockMinimo: p.StockMinimo,
		Activo:      p.Activo,
	}
}
