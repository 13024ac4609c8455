package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

// CrearProductoRequest registers a new product. The initial stock is booked
// through the ledger as an "entrada" so the product starts with a history.
type CrearProductoRequest struct {
	Codigo       string          `json:"codigo"        validate:"required,min=2,max=50"`
	Nombre       string          `json:"nombre"        validate:"required,min=2,max=100"`
	Descripcion  *string         `json:"descripcion"   validate:"omitempty,max=255"`
	Categoria    string          `json:"categoria"     validate:"required,max=50"`
	Costo        decimal.Decimal `json:"costo"         validate:"min=0"`
	PrecioVenta  decimal.Decimal `json:"precio_venta"  validate:"gt=0"`
	StockInicial int             `json:"stock_inicial" validate:"min=0,max=1000000"`
	StockMinimo  *int            `json:"stock_minimo"  validate:"omitempty,min=0"`
}

// ─── Filter / Pagination ─────────────────────────────────────────────────────

type ProductoFilter struct {
	Codigo    string `form:"codigo"`
	Nombre    string `form:"nombre"`
	Categoria string `form:"categoria"`
	Activo    string `form:"activo"` // "false" = inactivos, "all" = todos, default activos
	Page      int    `form:"page,default=1"  validate:"min=1"`
	Limit     int    `form:"limit,default=20" validate:"min=1,max=100"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ProductoResponse struct {
	ID          string          `json:"id"`
	Codigo      string          `json:"codigo"`
	Nombre      string          `json:"nombre"`
	Descripcion *string         `json:"descripcion"`
	Categoria   string          `json:"categoria"`
	Costo       decimal.Decimal `json:"costo"`
	PrecioVenta decimal.Decimal `json:"precio_venta"`
	StockActual int             `json:"stock_actual"`
	StockMinimo int             `json:"stock_minimo"`
	Activo      bool            `json:"activo"`
}

type ProductoListResponse struct {
	Data       []ProductoResponse `json:"data"`
	Total      int64              `json:"total"`
	Page       int                `json:"page"`
	Limit      int                `json:"limit"`
	TotalPages int                `json:"total_pages"`
}

// ConsultaPreciosResponse is returned by the public price check endpoint (no auth required).
type ConsultaPreciosResponse struct {
	Codigo      string          `json:"codigo"`
	Nombre      string          `json:"nombre"`
	PrecioVenta decimal.Decimal `json:"precio_venta"`
	Disponible  bool            `json:"disponible"`
	Categoria   string          `json:"categoria"`
}
