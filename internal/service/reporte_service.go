package service

import (
	"context"
	"fmt"
	"time"

	"storevision/internal/dto"
	"storevision/internal/repository"

	"github.com/shopspring/decimal"
)

// umbralCaidaVentas is the period-over-period drop (in percent) that raises
// the sales alert.
var umbralCaidaVentas = decimal.NewFromInt(-15)

var cien = decimal.NewFromInt(100)

type ReporteService interface {
	Balance(ctx context.Context, filter dto.PeriodoFilter) (*dto.BalanceResponse, error)
	IndicadoresVentas(ctx context.Context, filter dto.PeriodoFilter) (*dto.IndicadoresVentasResponse, error)
	ProductosMasVendidos(ctx context.Context, filter dto.PeriodoFilter) ([]dto.ProductoVendidoResponse, error)
}

type reporteService struct {
	repo repository.ReporteRepository
}

func NewReporteService(repo repository.ReporteRepository) ReporteService {
	return &reporteService{repo: repo}
}

// Balance defaults to the current month.
func (s *reporteService) Balance(ctx context.Context, filter dto.PeriodoFilter) (*dto.BalanceResponse, error) {
	hoy := ahora()
	primeroDeMes := time.Date(hoy.Year(), hoy.Month(), 1, 0, 0, 0, 0, time.UTC)
	desde, hasta, err := rangoFechas(filter.Desde, filter.Hasta, primeroDeMes, hoy)
	if err != nil {
		return nil, err
	}

	totales, err := s.repo.TotalesVentas(ctx, desde, hasta)
	if err != nil {
		return nil, persistencia(err)
	}
	costo, err := s.repo.CostoVentas(ctx, desde, hasta)
	if err != nil {
		return nil, persistencia(err)
	}

	utilidad := totales.Total.Sub(costo)
	margen := decimal.Zero
	if totales.Total.IsPositive() {
		margen = utilidad.Div(totales.Total).Mul(cien).Round(2)
	}

	return &dto.BalanceResponse{
		Desde:          desde.Format(formatoFecha),
		Hasta:          hasta.AddDate(0, 0, -1).Format(formatoFecha),
		CantidadVentas: totales.Cantidad,
		TotalVentas:    totales.Total,
		CostoVentas:    costo,
		UtilidadBruta:  utilidad,
		MargenPct:      margen,
		TicketPromedio: promedio(totales.Total, totales.Cantidad),
	}, nil
}

// IndicadoresVentas compares the period (default: the last 7 days) with the
// immediately preceding period of the same length.
func (s *reporteService) IndicadoresVentas(ctx context.Context, filter dto.PeriodoFilter) (*dto.IndicadoresVentasResponse, error) {
	hoy := ahora()
	desde, hasta, err := rangoFechas(filter.Desde, filter.Hasta, hoy.AddDate(0, 0, -6), hoy)
	if err != nil {
		return nil, err
	}
	duracion := hasta.Sub(desde)
	desdeAnterior := desde.Add(-duracion)

	actual, err := s.repo.TotalesVentas(ctx, desde, hasta)
	if err != nil {
		return nil, persistencia(err)
	}
	anterior, err := s.repo.TotalesVentas(ctx, desdeAnterior, desde)
	if err != nil {
		return nil, persistencia(err)
	}

	variacion := decimal.Zero
	if anterior.Total.IsPositive() {
		variacion = actual.Total.Sub(anterior.Total).Div(anterior.Total).Mul(cien).Round(2)
	}

	resp := &dto.IndicadoresVentasResponse{
		Desde:          desde.Format(formatoFecha),
		Hasta:          hasta.AddDate(0, 0, -1).Format(formatoFecha),
		TotalActual:    actual.Total,
		TotalAnterior:  anterior.Total,
		VentasActual:   actual.Cantidad,
		VentasAnterior: anterior.Cantidad,
		VariacionPct:   variacion,
		Alerta:         variacion.LessThan(umbralCaidaVentas),
	}
	if resp.Alerta {
		msg := fmt.Sprintf("Las ventas cayeron %s%% respecto al periodo anterior", variacion.Abs().StringFixed(2))
		resp.MensajeAlerta = &msg
	}
	return resp, nil
}

// ProductosMasVendidos defaults to the last 365 days.
func (s *reporteService) ProductosMasVendidos(ctx context.Context, filter dto.PeriodoFilter) ([]dto.ProductoVendidoResponse, error) {
	hoy := ahora()
	desde, hasta, err := rangoFechas(filter.Desde, filter.Hasta, hoy.AddDate(-1, 0, 0), hoy)
	if err != nil {
		return nil, err
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.repo.MasVendidos(ctx, desde, hasta, limit)
	if err != nil {
		return nil, persistencia(err)
	}
	resp := make([]dto.ProductoVendidoResponse, 0, len(rows))
	for _, r := range rows {
		resp = append(resp, dto.ProductoVendidoResponse{
			ProductoID:       r.ProductoID.String(),
			Codigo:           r.Codigo,
			Nombre:           r.Nombre,
			UnidadesVendidas: r.UnidadesVendidas,
			TotalVendido:     r.TotalVendido,
		})
	}
	return resp, nil
}
