package handler

import (
	"net/http"

	"storevision/internal/dto"
	"storevision/internal/service"

	"github.com/gin-gonic/gin"
)

type InventarioHandler struct{ svc service.InventarioService }

func NewInventarioHandler(svc service.InventarioService) *InventarioHandler {
	return &InventarioHandler{svc: svc}
}

// RegistrarMovimiento godoc
// @Summary Registrar movimiento manual de inventario
// @Tags inventario
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.RegistrarMovimientoRequest true "Movimiento"
// @Success 201 {object} dto.MovimientoResponse
// @Failure 400 {object} apierror.APIError
// @Failure 409 {object} apierror.StockError
// @Router /v1/inventario/movimientos [post]
func (h *InventarioHandler) RegistrarMovimiento(c *gin.Context) {
	var req dto.RegistrarMovimientoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.RegistrarMovimiento(c.Request.Context(), actorFrom(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// ListarMovimientos godoc
// @Summary Historial de movimientos
// @Tags inventario
// @Produce json
// @Security BearerAuth
// @Param producto_id query string false "Producto ID"
// @Param tipo query string false "entrada | salida"
// @Param desde query string false "YYYY-MM-DD"
// @Param hasta query string false "YYYY-MM-DD inclusive"
// @Param page query int false "Página"
// @Param limit query int false "Límite"
// @Success 200 {object} dto.MovimientoListResponse
// @Router /v1/inventario/movimientos [get]
func (h *InventarioHandler) ListarMovimientos(c *gin.Context) {
	var filter dto.MovimientoFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.Historial(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ObtenerAlertas godoc
// @Summary Productos con stock en o bajo el mínimo
// @Tags inventario
// @Produce json
// @Security BearerAuth
// @Success 200 {array} dto.AlertaStockResponse
// @Router /v1/inventario/alertas [get]
func (h *InventarioHandler) ObtenerAlertas(c *gin.Context) {
	alertas, err := h.svc.ObtenerAlertas(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, alertas)
}

// Reconciliacion godoc
// @Summary Compara el stock de cada producto con su último movimiento
// @Tags inventario
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.ReconciliacionResponse
// @Router /v1/inventario/reconciliacion [get]
func (h *InventarioHandler) Reconciliacion(c *gin.Context) {
	resp, err := h.svc.Reconciliar(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
