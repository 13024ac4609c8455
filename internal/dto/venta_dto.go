package dto

import "github.com/shopspring/decimal"

// ─── Filter / List ──────────────────────────────────────────────────────────

// VentaFilter is bound from query string of GET /v1/ventas.
type VentaFilter struct {
	Desde  string `form:"desde"`              // YYYY-MM-DD; empty = today
	Hasta  string `form:"hasta"`              // YYYY-MM-DD inclusive; empty = Desde
	Estado string `form:"estado,default=all"` // completada | anulada | all
	Page   int    `form:"page,default=1"   validate:"min=1"`
	Limit  int    `form:"limit,default=50" validate:"min=1,max=200"`
}

type VentaListResponse struct {
	Data  []VentaResponse `json:"data"`
	Total int64           `json:"total"`
	Page  int             `json:"page"`
	Limit int             `json:"limit"`
}

// ─── Request DTOs ────────────────────────────────────────────────────────────

// ItemVentaRequest quantities are checked by the sale service, not the
// validator, so an empty cart or a zero quantity is reported as a domain error.
// The tag only caps absurd quantities.
type ItemVentaRequest struct {
	ProductoID string `json:"producto_id" validate:"required,uuid"`
	Cantidad   int    `json:"cantidad"    validate:"max=1000000"`
}

type RegistrarVentaRequest struct {
	Items []ItemVentaRequest `json:"items" validate:"dive"`
}

type AnularVentaRequest struct {
	Motivo string `json:"motivo" validate:"required,min=3,max=255"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ItemVentaResponse struct {
	ProductoID     string          `json:"producto_id"`
	Producto       string          `json:"producto"`
	Cantidad       int             `json:"cantidad"`
	PrecioUnitario decimal.Decimal `json:"precio_unitario"`
	Subtotal       decimal.Decimal `json:"subtotal"`
}

type VentaResponse struct {
	ID              string              `json:"id"`
	SucursalID      string              `json:"sucursal_id"`
	UsuarioID       string              `json:"usuario_id"`
	Usuario         string              `json:"usuario,omitempty"`
	Items           []ItemVentaResponse `json:"items"`
	Total           decimal.Decimal     `json:"total"`
	Estado          string              `json:"estado"`
	FechaVenta      string              `json:"fecha_venta"`
	MotivoAnulacion *string             `json:"motivo_anulacion,omitempty"`
	FechaAnulacion  *string             `json:"fecha_anulacion,omitempty"`
}

// ConsolidadoDiarioResponse summarises the completed sales of one day.
type ConsolidadoDiarioResponse struct {
	Fecha            string                `json:"fecha"`
	CantidadVentas   int64                 `json:"cantidad_ventas"`
	VentasAnuladas   int64                 `json:"ventas_anuladas"`
	TotalVendido     decimal.Decimal       `json:"total_vendido"`
	TicketPromedio   decimal.Decimal       `json:"ticket_promedio"`
	UnidadesVendidas int64                 `json:"unidades_vendidas"`
	PorCajero        []VentasCajeroResumen `json:"por_cajero"`
}

type VentasCajeroResumen struct {
	UsuarioID      string          `json:"usuario_id"`
	Nombre         string          `json:"nombre"`
	CantidadVentas int64           `json:"cantidad_ventas"`
	Total          decimal.Decimal `json:"total"`
}
