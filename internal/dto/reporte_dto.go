package dto

import "github.com/shopspring/decimal"

// PeriodoFilter is bound from the query string of the report endpoints.
type PeriodoFilter struct {
	Desde string `form:"desde"` // YYYY-MM-DD; empty = first day of the current month
	Hasta string `form:"hasta"` // YYYY-MM-DD inclusive; empty = today
	Limit int    `form:"limit,default=10" validate:"min=1,max=100"`
}

type BalanceResponse struct {
	Desde          string          `json:"desde"`
	Hasta          string          `json:"hasta"`
	CantidadVentas int64           `json:"cantidad_ventas"`
	TotalVentas    decimal.Decimal `json:"total_ventas"`
	CostoVentas    decimal.Decimal `json:"costo_ventas"`
	UtilidadBruta  decimal.Decimal `json:"utilidad_bruta"`
	MargenPct      decimal.Decimal `json:"margen_pct"`
	TicketPromedio decimal.Decimal `json:"ticket_promedio"`
}

type IndicadoresVentasResponse struct {
	Desde          string          `json:"desde"`
	Hasta          string          `json:"hasta"`
	TotalActual    decimal.Decimal `json:"total_actual"`
	TotalAnterior  decimal.Decimal `json:"total_anterior"`
	VentasActual   int64           `json:"ventas_actual"`
	VentasAnterior int64           `json:"ventas_anterior"`
	VariacionPct   decimal.Decimal `json:"variacion_pct"`
	Alerta         bool            `json:"alerta"`
	MensajeAlerta  *string         `json:"mensaje_alerta,omitempty"`
}

type ProductoVendidoResponse struct {
	ProductoID       string          `json:"producto_id"`
	Codigo           string          `json:"codigo"`
	Nombre           string          `json:"nombre"`
	UnidadesVendidas int64           `json:"unidades_vendidas"`
	TotalVendido     decimal.Decimal `json:"total_vendido"`
}
