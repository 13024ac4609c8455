package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"storevision/internal/dto"
	"storevision/internal/infra"
	"storevision/internal/model"
	"storevision/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const motivoVenta = "Venta"

type VentaService interface {
	RegistrarVenta(ctx context.Context, actor Actor, req dto.RegistrarVentaRequest) (*dto.VentaResponse, error)
	AnularVenta(ctx context.Context, actor Actor, id uuid.UUID, motivo string) (*dto.VentaResponse, error)
	ObtenerVenta(ctx context.Context, id uuid.UUID) (*dto.VentaResponse, error)
	ListVentas(ctx context.Context, filter dto.VentaFilter) (*dto.VentaListResponse, error)
	ConsolidarVentasDiarias(ctx context.Context, fecha string) (*dto.ConsolidadoDiarioResponse, error)
	TicketPDF(ctx context.Context, id uuid.UUID) ([]byte, error)
}

type ventaService struct {
	repo       repository.VentaRepository
	productos  repository.ProductoRepository
	reportes   repository.ReporteRepository
	inventario InventarioService
	auditoria  AuditoriaService
	uow        UnitOfWork
	notifier   StockNotifier
	sucursalID uuid.UUID
}

func NewVentaService(
	repo repository.VentaRepository,
	productos repository.ProductoRepository,
	reportes repository.ReporteRepository,
	inventario InventarioService,
	auditoria AuditoriaService,
	uow UnitOfWork,
	notifier StockNotifier,
	sucursalID uuid.UUID,
) VentaService {
	return &ventaService{
		repo:       repo,
		productos:  productos,
		reportes:   reportes,
		inventario: inventario,
		auditoria:  auditoria,
		uow:        uow,
		notifier:   notifierOrNoop(notifier),
		sucursalID: sucursalID,
	}
}

type lineaVenta struct {
	productoID uuid.UUID
	cantidad   int
}

// ── RegistrarVenta ────────────────────────────────────────────────────────────
//   1. Validate the cart shape (no reads)
//   2. Resolve products and verify stock for every line (read-only)
//   3. One transaction: lock products in id order, re-check, create venta +
//      items, one salida per line, audit entry
//   4. After commit: invalidate prices, enqueue low-stock alerts

func (s *ventaService) RegistrarVenta(ctx context.Context, actor Actor, req dto.RegistrarVentaRequest) (*dto.VentaResponse, error) {
	lineas, err := validarCarrito(req.Items)
	if err != nil {
		return nil, err
	}

	ids, solicitado := agruparLineas(lineas)

	// Pre-flight outside the transaction: reject before any write.
	encontrados, err := s.productos.FindByIDs(ctx, ids)
	if err != nil {
		return nil, persistencia(err)
	}
	if err := verificarDisponibilidad(lineas, indexar(encontrados), solicitado); err != nil {
		return nil, err
	}

	var venta model.Venta
	var afectados []model.Producto
	err = s.uow.Do(ctx, func(tx *gorm.DB) error {
		bloqueados, err := s.productos.LockByIDsTx(tx, ids)
		if err != nil {
			return persistencia(err)
		}
		porID := indexar(bloqueados)
		if err := verificarDisponibilidad(lineas, porID, solicitado); err != nil {
			return err
		}

		venta = model.Venta{
			SucursalID: s.sucursalID,
			UsuarioID:  actor.UsuarioID,
			FechaVenta: ahora(),
			Estado:     model.VentaCompletada,
			Total:      decimal.Zero,
		}
		venta.ID = uuid.New()

		items := make([]model.VentaItem, 0, len(lineas))
		for _, l := range lineas {
			p := porID[l.productoID]
			subtotal := p.PrecioVenta.Mul(decimal.NewFromInt(int64(l.cantidad)))
			venta.Total = venta.Total.Add(subtotal)
			items = append(items, model.VentaItem{
				VentaID:        venta.ID,
				ProductoID:     p.ID,
				Cantidad:       l.cantidad,
				PrecioUnitario: p.PrecioVenta,
				Subtotal:       subtotal,
			})
		}

		if err := s.repo.CreateTx(tx, &venta); err != nil {
			return persistencia(err)
		}
		if err := s.repo.CreateItemsTx(tx, items); err != nil {
			return persistencia(err)
		}

		finales := make(map[uuid.UUID]model.Producto, len(ids))
		for _, l := range lineas {
			res, err := s.inventario.AplicarMovimientoTx(ctx, tx, MovimientoInput{
				ProductoID: l.productoID,
				Tipo:       model.MovimientoSalida,
				Cantidad:   l.cantidad,
				Motivo:     motivoVenta,
				UsuarioID:  actor.UsuarioID,
				VentaID:    &venta.ID,
			})
			if err != nil {
				return err
			}
			finales[l.productoID] = res.Producto
		}

		if err := s.auditoria.RegistrarTx(ctx, tx, EntradaAuditoria{
			UsuarioID:   &actor.UsuarioID,
			TipoAccion:  model.AccionVenta,
			Descripcion: fmt.Sprintf("Venta %s: %d líneas, total $%s", venta.ID, len(items), venta.Total.StringFixed(2)),
			IP:          actor.IP,
		}); err != nil {
			return err
		}

		for i := range items {
			p := finales[items[i].ProductoID]
			items[i].Producto = &p
		}
		venta.Items = items
		for _, id := range ids {
			afectados = append(afectados, finales[id])
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("venta_id", venta.ID.String()).
		Str("usuario_id", actor.UsuarioID.String()).
		Str("total", venta.Total.StringFixed(2)).
		Int("items", len(venta.Items)).
		Msg("venta registrada")

	s.notifier.StockActualizado(ctx, afectados)

	return ventaToResponse(&venta), nil
}

// validarCarrito rejects an empty cart or a non-positive quantity before any
// product is read.
func validarCarrito(items []dto.ItemVentaRequest) ([]lineaVenta, error) {
	if len(items) == 0 {
		return nil, ErrCarritoVacio
	}
	lineas := make([]lineaVenta, 0, len(items))
	for i, it := range items {
		if it.Cantidad <= 0 {
			return nil, fmt.Errorf("%w: línea %d", ErrCantidadInvalida, i+1)
		}
		id, err := uuid.Parse(it.ProductoID)
		if err != nil {
			return nil, fmt.Errorf("%w: producto_id de la línea %d", ErrIdentificadorInvalido, i+1)
		}
		lineas = append(lineas, lineaVenta{productoID: id, cantidad: it.Cantidad})
	}
	return lineas, nil
}

// agruparLineas returns the distinct product ids in ascending order and the
// total quantity requested per product.
func agruparLineas(lineas []lineaVenta) ([]uuid.UUID, map[uuid.UUID]int) {
	solicitado := make(map[uuid.UUID]int, len(lineas))
	ids := make([]uuid.UUID, 0, len(lineas))
	for _, l := range lineas {
		if _, ok := solicitado[l.productoID]; !ok {
			ids = append(ids, l.productoID)
		}
		solicitado[l.productoID] += l.cantidad
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })
	return ids, solicitado
}

// verificarDisponibilidad walks the lines in cart order so the first failing
// product is the one reported.
func verificarDisponibilidad(lineas []lineaVenta, productos map[uuid.UUID]model.Producto, solicitado map[uuid.UUID]int) error {
	for _, l := range lineas {
		p, ok := productos[l.productoID]
		if !ok {
			return fmt.Errorf("%w: %s", ErrProductoNoEncontrado, l.productoID)
		}
		if !p.Activo {
			return fmt.Errorf("%w: %s", ErrProductoInactivo, p.Nombre)
		}
		if p.StockActual < solicitado[l.productoID] {
			return &StockInsuficienteError{
				ProductoID: p.ID,
				Nombre:     p.Nombre,
				Disponible: p.StockActual,
				Solicitado: solicitado[l.productoID],
			}
		}
	}
	return nil
}

func indexar(productos []model.Producto) map[uuid.UUID]model.Producto {
	m := make(map[uuid.UUID]model.Producto, len(productos))
	for _, p := range productos {
		m[p.ID] = p
	}
	return m
}

// ── AnularVenta ───────────────────────────────────────────────────────────────
// Restores the stock of every line and marks the sale anulada, all in one
// transaction. The sale row is locked and the state flip is guarded, so two
// concurrent voids cannot both restock.

func (s *ventaService) AnularVenta(ctx context.Context, actor Actor, id uuid.UUID, motivo string) (*dto.VentaResponse, error) {
	motivo = strings.TrimSpace(motivo)
	if motivo == "" {
		return nil, ErrMotivoRequerido
	}

	var afectados []model.Producto
	err := s.uow.Do(ctx, func(tx *gorm.DB) error {
		v, err := s.repo.FindForUpdateTx(tx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: %s", ErrVentaNoEncontrada, id)
			}
			return persistencia(err)
		}
		if v.Estado == model.VentaAnulada {
			return ErrVentaYaAnulada
		}

		motivoMov := fmt.Sprintf("Anulación venta %s: %s", id, motivo)
		finales := make(map[uuid.UUID]model.Producto)
		for _, item := range v.Items {
			res, err := s.inventario.AplicarMovimientoTx(ctx, tx, MovimientoInput{
				ProductoID: item.ProductoID,
				Tipo:       model.MovimientoEntrada,
				Cantidad:   item.Cantidad,
				Motivo:     motivoMov,
				UsuarioID:  actor.UsuarioID,
				VentaID:    &v.ID,
			})
			if err != nil {
				return err
			}
			finales[item.ProductoID] = res.Producto
		}

		ok, err := s.repo.AnularTx(tx, id, motivo, ahora())
		if err != nil {
			return persistencia(err)
		}
		if !ok {
			return ErrVentaYaAnulada
		}

		if err := s.auditoria.RegistrarTx(ctx, tx, EntradaAuditoria{
			UsuarioID:   &actor.UsuarioID,
			TipoAccion:  model.AccionAnulacion,
			Descripcion: fmt.Sprintf("Venta %s anulada (total $%s): %s", id, v.Total.StringFixed(2), motivo),
			IP:          actor.IP,
		}); err != nil {
			return err
		}

		for _, p := range finales {
			afectados = append(afectados, p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("venta_id", id.String()).
		Str("usuario_id", actor.UsuarioID.String()).
		Str("motivo", motivo).
		Msg("venta anulada")

	s.notifier.StockActualizado(ctx, afectados)

	return s.ObtenerVenta(ctx, id)
}

// ── Consultas ─────────────────────────────────────────────────────────────────

func (s *ventaService) ObtenerVenta(ctx context.Context, id uuid.UUID) (*dto.VentaResponse, error) {
	v, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrVentaNoEncontrada, id)
		}
		return nil, persistencia(err)
	}
	return ventaToResponse(v), nil
}

func (s *ventaService) ListVentas(ctx context.Context, filter dto.VentaFilter) (*dto.VentaListResponse, error) {
	desde, hasta, err := rangoFechas(filter.Desde, filter.Hasta, ahora(), ahora())
	if err != nil {
		return nil, err
	}
	ventas, total, err := s.repo.List(ctx, repository.VentaFilter{
		Desde:  desde,
		Hasta:  hasta,
		Estado: filter.Estado,
		Page:   filter.Page,
		Limit:  filter.Limit,
	})
	if err != nil {
		return nil, persistencia(err)
	}

	resp := &dto.VentaListResponse{
		Data:  make([]dto.VentaResponse, 0, len(ventas)),
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}
	for i := range ventas {
		resp.Data = append(resp.Data, *ventaToResponse(&ventas[i]))
	}
	return resp, nil
}

// ConsolidarVentasDiarias summarises one day (YYYY-MM-DD, default today).
func (s *ventaService) ConsolidarVentasDiarias(ctx context.Context, fecha string) (*dto.ConsolidadoDiarioResponse, error) {
	desde, hasta, err := rangoFechas(fecha, fecha, ahora(), ahora())
	if err != nil {
		return nil, err
	}

	totales, err := s.reportes.TotalesVentas(ctx, desde, hasta)
	if err != nil {
		return nil, persistencia(err)
	}
	anuladas, err := s.reportes.VentasAnuladas(ctx, desde, hasta)
	if err != nil {
		return nil, persistencia(err)
	}
	unidades, err := s.reportes.UnidadesVendidas(ctx, desde, hasta)
	if err != nil {
		return nil, persistencia(err)
	}
	cajeros, err := s.reportes.PorCajero(ctx, desde, hasta)
	if err != nil {
		return nil, persistencia(err)
	}

	resp := &dto.ConsolidadoDiarioResponse{
		Fecha:            desde.Format(formatoFecha),
		CantidadVentas:   totales.Cantidad,
		VentasAnuladas:   anuladas,
		TotalVendido:     totales.Total,
		TicketPromedio:   promedio(totales.Total, totales.Cantidad),
		UnidadesVendidas: unidades,
		PorCajero:        make([]dto.VentasCajeroResumen, 0, len(cajeros)),
	}
	for _, c := range cajeros {
		resp.PorCajero = append(resp.PorCajero, dto.VentasCajeroResumen{
			UsuarioID:      c.UsuarioID.String(),
			Nombre:         c.Nombre,
			CantidadVentas: c.Cantidad,
			Total:          c.Total,
		})
	}
	return resp, nil
}

// TicketPDF renders the sale as a receipt.
func (s *ventaService) TicketPDF(ctx context.Context, id uuid.UUID) ([]byte, error) {
	v, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrVentaNoEncontrada, id)
		}
		return nil, persistencia(err)
	}
	return infra.GenerarTicketPDF(v)
}

func promedio(total decimal.Decimal, n int64) decimal.Decimal {
	if n == 0 {
		return decimal.Zero
	}
	return total.Div(decimal.NewFromInt(n)).Round(2)
}

func ventaToResponse(v *model.Venta) *dto.VentaResponse {
	resp := &dto.VentaResponse{
		ID:              v.ID.String(),
		SucursalID:      v.SucursalID.String(),
		UsuarioID:       v.UsuarioID.String(),
		Items:           make([]dto.ItemVentaResponse, 0, len(v.Items)),
		Total:           v.Total,
		Estado:          v.Estado,
		FechaVenta:      formatTime(v.FechaVenta),
		MotivoAnulacion: v.MotivoAnulacion,
	}
	if v.Usuario != nil {
		resp.Usuario = v.Usuario.Nombre
	}
	if v.FechaAnulacion != nil {
		f := formatTime(*v.FechaAnulacion)
		resp.FechaAnulacion = &f
	}
	for _, item := range v.Items {
		ir := dto.ItemVentaResponse{
			ProductoID:     item.ProductoID.String(),
			Cantidad:       item.Cantidad,
			PrecioUnitario: item.PrecioUnitario,
			Subtotal:       item.Subtotal,
		}
		if item.Producto != nil {
			ir.Producto = item.Producto.Nombre
		}
		resp.Items = append(resp.Items, ir)
	}
	return resp
}
