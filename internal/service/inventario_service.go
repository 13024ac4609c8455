package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"

	"storevision/internal/dto"
	"storevision/internal/model"
	"storevision/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// MovimientoInput describes one stock change to apply.
type MovimientoInput struct {
	ProductoID uuid.UUID
	Tipo       string // model.MovimientoEntrada | model.MovimientoSalida
	Cantidad   int
	Motivo     string
	UsuarioID  uuid.UUID
	VentaID    *uuid.UUID
}

// MovimientoResult is the appended ledger entry plus the product as it
// stands after the change.
type MovimientoResult struct {
	Movimiento model.MovimientoInventario
	Producto   model.Producto
}

// InventarioService owns the stock ledger. Every change to a product's
// stock goes through AplicarMovimientoTx, which updates the stock and
// appends the matching movement in the caller's transaction.
type InventarioService interface {
	// AplicarMovimientoTx never commits; the caller's unit of work does.
	AplicarMovimientoTx(ctx context.Context, tx *gorm.DB, in MovimientoInput) (*MovimientoResult, error)
	RegistrarMovimiento(ctx context.Context, actor Actor, req dto.RegistrarMovimientoRequest) (*dto.MovimientoResponse, error)
	ObtenerAlertas(ctx context.Context) ([]dto.AlertaStockResponse, error)
	Historial(ctx context.Context, filter dto.MovimientoFilter) (*dto.MovimientoListResponse, error)
	Reconciliar(ctx context.Context) (*dto.ReconciliacionResponse, error)
}

type inventarioService struct {
	productos   repository.ProductoRepository
	movimientos repository.MovimientoRepository
	auditoria   AuditoriaService
	uow         UnitOfWork
	notifier    StockNotifier
}

func NewInventarioService(
	productos repository.ProductoRepository,
	movimientos repository.MovimientoRepository,
	auditoria AuditoriaService,
	uow UnitOfWork,
	notifier StockNotifier,
) InventarioService {
	return &inventarioService{
		productos:   productos,
		movimientos: movimientos,
		auditoria:   auditoria,
		uow:         uow,
		notifier:    notifierOrNoop(notifier),
	}
}

func (s *inventarioService) AplicarMovimientoTx(ctx context.Context, tx *gorm.DB, in MovimientoInput) (*MovimientoResult, error) {
	if in.Cantidad <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrCantidadInvalida, in.Cantidad)
	}
	if in.Tipo != model.MovimientoEntrada && in.Tipo != model.MovimientoSalida {
		return nil, fmt.Errorf("%w: %q", ErrTipoMovimientoInvalido, in.Tipo)
	}

	tx = tx.WithContext(ctx)
	p, err := s.productos.FindForUpdateTx(tx, in.ProductoID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrProductoNoEncontrado, in.ProductoID)
		}
		return nil, persistencia(err)
	}

	mov := model.MovimientoInventario{
		ProductoID:      p.ID,
		Tipo:            in.Tipo,
		Cantidad:        in.Cantidad,
		StockAnterior:   p.StockActual,
		Motivo:          in.Motivo,
		UsuarioID:       in.UsuarioID,
		VentaID:         in.VentaID,
		FechaMovimiento: ahora(),
	}
	if in.Tipo == model.MovimientoEntrada && in.Cantidad > math.MaxInt-p.StockActual {
		return nil, fmt.Errorf("%w: %d excede el stock representable de %s", ErrCantidadInvalida, in.Cantidad, p.Nombre)
	}
	mov.StockNuevo = mov.StockAnterior + mov.Delta()
	if mov.StockNuevo < 0 {
		return nil, &StockInsuficienteError{
			ProductoID: p.ID,
			Nombre:     p.Nombre,
			Disponible: p.StockActual,
			Solicitado: in.Cantidad,
		}
	}

	ok, err := s.productos.UpdateStockGuardedTx(tx, p.ID, mov.StockAnterior, mov.StockNuevo)
	if err != nil {
		return nil, persistencia(err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrModificacionConcurrente, p.Nombre)
	}
	if err := s.movimientos.CreateTx(tx, &mov); err != nil {
		return nil, persistencia(err)
	}

	p.StockActual = mov.StockNuevo
	return &MovimientoResult{Movimiento: mov, Producto: *p}, nil
}

func (s *inventarioService) RegistrarMovimiento(ctx context.Context, actor Actor, req dto.RegistrarMovimientoRequest) (*dto.MovimientoResponse, error) {
	productoID, err := uuid.Parse(req.ProductoID)
	if err != nil {
		return nil, fmt.Errorf("%w: producto_id", ErrIdentificadorInvalido)
	}

	var res *MovimientoResult
	err = s.uow.Do(ctx, func(tx *gorm.DB) error {
		var err error
		res, err = s.AplicarMovimientoTx(ctx, tx, MovimientoInput{
			ProductoID: productoID,
			Tipo:       req.Tipo,
			Cantidad:   req.Cantidad,
			Motivo:     req.Motivo,
			UsuarioID:  actor.UsuarioID,
		})
		if err != nil {
			return err
		}
		m := res.Movimiento
		desc := fmt.Sprintf("%s de %d unidades de %s (%s): %s. Stock %d → %d",
			m.Tipo, m.Cantidad, res.Producto.Nombre, res.Producto.Codigo, m.Motivo, m.StockAnterior, m.StockNuevo)
		return s.auditoria.RegistrarTx(ctx, tx, EntradaAuditoria{
			UsuarioID:   &actor.UsuarioID,
			TipoAccion:  model.AccionMovimientoInventario,
			Descripcion: desc,
			IP:          actor.IP,
		})
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("producto", res.Producto.Codigo).
		Str("tipo", res.Movimiento.Tipo).
		Int("cantidad", res.Movimiento.Cantidad).
		Int("stock_nuevo", res.Movimiento.StockNuevo).
		Msg("inventario: movimiento registrado")

	s.notifier.StockActualizado(ctx, []model.Producto{res.Producto})

	resp := movimientoToResponse(&res.Movimiento)
	resp.Producto = res.Producto.Nombre
	return &resp, nil
}

func (s *inventarioService) ObtenerAlertas(ctx context.Context) ([]dto.AlertaStockResponse, error) {
	productos, err := s.productos.BajoMinimo(ctx)
	if err != nil {
		return nil, persistencia(err)
	}
	alertas := make([]dto.AlertaStockResponse, 0, len(productos))
	for _, p := range productos {
		alertas = append(alertas, dto.AlertaStockResponse{
			ProductoID:  p.ID.String(),
			Codigo:      p.Codigo,
			Nombre:      p.Nombre,
			StockActual: p.StockActual,
			StockMinimo: p.StockMinimo,
			Diferencia:  p.StockMinimo - p.StockActual,
		})
	}
	return alertas, nil
}

func (s *inventarioService) Historial(ctx context.Context, filter dto.MovimientoFilter) (*dto.MovimientoListResponse, error) {
	f := repository.MovimientoFilter{
		Tipo:  filter.Tipo,
		Page:  filter.Page,
		Limit: filter.Limit,
	}
	if filter.ProductoID != "" {
		id, err := uuid.Parse(filter.ProductoID)
		if err != nil {
			return nil, fmt.Errorf("%w: producto_id", ErrIdentificadorInvalido)
		}
		f.ProductoID = &id
	}
	if filter.Desde != "" || filter.Hasta != "" {
		desde, hasta, err := rangoFechas(filter.Desde, filter.Hasta, ahora(), ahora())
		if err != nil {
			return nil, err
		}
		f.Desde, f.Hasta = &desde, &hasta
	}

	movimientos, total, err := s.movimientos.List(ctx, f)
	if err != nil {
		return nil, persistencia(err)
	}
	resp := &dto.MovimientoListResponse{
		Data:  make([]dto.MovimientoResponse, 0, len(movimientos)),
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}
	for i := range movimientos {
		resp.Data = append(resp.Data, movimientoToResponse(&movimientos[i]))
	}
	return resp, nil
}

// Reconciliar checks that every product's stock equals the StockNuevo of its
// latest movement. Products without movements are skipped.
func (s *inventarioService) Reconciliar(ctx context.Context) (*dto.ReconciliacionResponse, error) {
	productos, err := s.productos.ListAll(ctx)
	if err != nil {
		return nil, persistencia(err)
	}
	ultimos, err := s.movimientos.Ultimos(ctx)
	if err != nil {
		return nil, persistencia(err)
	}

	porProducto := make(map[uuid.UUID][]model.MovimientoInventario)
	for _, m := range ultimos {
		porProducto[m.ProductoID] = append(porProducto[m.ProductoID], m)
	}

	resp := &dto.ReconciliacionResponse{Discrepancias: []dto.DiscrepanciaStock{}}
	for _, p := range productos {
		candidatos, ok := porProducto[p.ID]
		if !ok {
			continue
		}
		resp.ProductosRevisados++
		ultimo := finDeCadena(candidatos)
		if ultimo.StockNuevo != p.StockActual {
			resp.Discrepancias = append(resp.Discrepancias, dto.DiscrepanciaStock{
				ProductoID:         p.ID.String(),
				Codigo:             p.Codigo,
				StockActual:        p.StockActual,
				StockSegunLibro:    ultimo.StockNuevo,
				UltimoMovimientoID: ultimo.ID.String(),
			})
		}
	}
	resp.Consistente = len(resp.Discrepancias) == 0
	return resp, nil
}

// finDeCadena picks the last link among movements sharing the same
// timestamp: the one whose StockNuevo no other candidate starts from.
func finDeCadena(movs []model.MovimientoInventario) model.MovimientoInventario {
	if len(movs) == 1 {
		return movs[0]
	}
	sort.Slice(movs, func(i, j int) bool { return movs[i].ID.String() < movs[j].ID.String() })
	inicios := make(map[int]int, len(movs))
	for _, m := range movs {
		inicios[m.StockAnterior]++
	}
	for _, m := range movs {
		if inicios[m.StockNuevo] == 0 {
			return m
		}
	}
	return movs[len(movs)-1]
}

func movimientoToResponse(m *model.MovimientoInventario) dto.MovimientoResponse {
	resp := dto.MovimientoResponse{
		ID:              m.ID.String(),
		ProductoID:      m.ProductoID.String(),
		Tipo:            m.Tipo,
		Cantidad:        m.Cantidad,
		StockAnterior:   m.StockAnterior,
		StockNuevo:      m.StockNuevo,
		Motivo:          m.Motivo,
		UsuarioID:       m.UsuarioID.String(),
		FechaMovimiento: formatTime(m.FechaMovimiento),
	}
	if m.Producto != nil {
		resp.Producto = m.Producto.Nombre
	}
	if m.VentaID != nil {
		v := m.VentaID.String()
		resp.VentaID = &v
	}
	return resp
}
