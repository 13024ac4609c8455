package dto

// ─── Request DTOs ────────────────────────────────────────────────────────────

// RegistrarMovimientoRequest is a manual stock adjustment. The ledger
// rejects non-positive quantities; the tag only caps absurd ones.
type RegistrarMovimientoRequest struct {
	ProductoID string `json:"producto_id" validate:"required,uuid"`
	Tipo       string `json:"tipo"        validate:"required,oneof=entrada salida"`
	Cantidad   int    `json:"cantidad"    validate:"max=1000000"`
	Motivo     string `json:"motivo"      validate:"required,min=3,max=255"`
}

// MovimientoFilter is bound from the query string of GET /v1/inventario/movimientos.
type MovimientoFilter struct {
	ProductoID string `form:"producto_id" validate:"omitempty,uuid"`
	Tipo       string `form:"tipo"        validate:"omitempty,oneof=entrada salida"`
	Desde      string `form:"desde"` // YYYY-MM-DD
	Hasta      string `form:"hasta"` // YYYY-MM-DD inclusive
	Page       int    `form:"page,default=1"   validate:"min=1"`
	Limit      int    `form:"limit,default=50" validate:"min=1,max=200"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type MovimientoResponse struct {
	ID              string  `json:"id"`
	ProductoID      string  `json:"producto_id"`
	Producto        string  `json:"producto,omitempty"`
	Tipo            string  `json:"tipo"`
	Cantidad        int     `json:"cantidad"`
	StockAnterior   int     `json:"stock_anterior"`
	StockNuevo      int     `json:"stock_nuevo"`
	Motivo          string  `json:"motivo"`
	UsuarioID       string  `json:"usuario_id"`
	VentaID         *string `json:"venta_id,omitempty"`
	FechaMovimiento string  `json:"fecha_movimiento"`
}

type MovimientoListResponse struct {
	Data  []MovimientoResponse `json:"data"`
	Total int64                `json:"total"`
	Page  int                  `json:"page"`
	Limit int                  `json:"limit"`
}

type AlertaStockResponse struct {
	ProductoID  string `json:"producto_id"`
	Codigo      string `json:"codigo"`
	Nombre      string `json:"nombre"`
	StockActual int    `json:"stock_actual"`
	StockMinimo int    `json:"stock_minimo"`
	Diferencia  int    `json:"diferencia"` // unidades que faltan para volver al mínimo
}

// DiscrepanciaStock is a product whose stock does not match its last ledger entry.
type DiscrepanciaStock struct {
	ProductoID         string `json:"producto_id"`
	Codigo             string `json:"codigo"`
	StockActual        int    `json:"stock_actual"`
	StockSegunLibro    int    `json:"stock_segun_libro"`
	UltimoMovimientoID string `json:"ultimo_movimiento_id"`
}

type ReconciliacionResponse struct {
	ProductosRevisados int                 `json:"productos_revisados"`
	Consistente        bool                `json:"consistente"`
	Discrepancias      []DiscrepanciaStock `json:"discrepancias"`
}
