package handler

import (
	"fmt"
	"net/http"

	"storevision/internal/dto"
	"storevision/internal/service"

	"github.com/gin-gonic/gin"
)

type VentasHandler struct{ svc service.VentaService }

func NewVentasHandler(svc service.VentaService) *VentasHandler { return &VentasHandler{svc: svc} }

// RegistrarVenta godoc
// @Summary Registrar una venta
// @Description Descuenta stock de cada producto y registra la venta en una sola transacción.
// @Tags ventas
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.RegistrarVentaRequest true "Carrito"
// @Success 201 {object} dto.VentaResponse
// @Failure 400 {object} apierror.APIError
// @Failure 404 {object} apierror.APIError
// @Failure 409 {object} apierror.StockError
// @Router /v1/ventas [post]
func (h *VentasHandler) RegistrarVenta(c *gin.Context) {
	var req dto.RegistrarVentaRequest
	if !bindAndValidate(c, &req) {
		return
	}

	resp, err := h.svc.RegistrarVenta(c.Request.Context(), actorFrom(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// ListarVentas godoc
// @Summary Listar ventas
// @Tags ventas
// @Produce json
// @Security BearerAuth
// @Param desde query string false "Fecha inicial (YYYY-MM-DD)"
// @Param hasta query string false "Fecha final inclusive (YYYY-MM-DD)"
// @Param estado query string false "completada | anulada | all"
// @Param page query int false "Página"
// @Param limit query int false "Límite"
// @Success 200 {object} dto.VentaListResponse
// @Router /v1/ventas [get]
func (h *VentasHandler) ListarVentas(c *gin.Context) {
	var filter dto.VentaFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.ListVentas(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Consolidado godoc
// @Summary Consolidado diario de ventas
// @Tags ventas
// @Produce json
// @Security BearerAuth
// @Param fecha query string false "Día (YYYY-MM-DD), por defecto hoy"
// @Success 200 {object} dto.ConsolidadoDiarioResponse
// @Router /v1/ventas/consolidado [get]
func (h *VentasHandler) Consolidado(c *gin.Context) {
	resp, err := h.svc.ConsolidarVentasDiarias(c.Request.Context(), c.Query("fecha"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ObtenerVenta godoc
// @Summary Detalle de una venta
// @Tags ventas
// @Produce json
// @Security BearerAuth
// @Param id path string true "Venta ID"
// @Success 200 {object} dto.VentaResponse
// @Failure 404 {object} apierror.APIError
// @Router /v1/ventas/{id} [get]
func (h *VentasHandler) ObtenerVenta(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	resp, err := h.svc.ObtenerVenta(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Ticket godoc
// @Summary Ticket PDF de una venta
// @Tags ventas
// @Produce application/pdf
// @Security BearerAuth
// @Param id path string true "Venta ID"
// @Success 200 {file} binary
// @Failure 404 {object} apierror.APIError
// @Router /v1/ventas/{id}/ticket [get]
func (h *VentasHandler) Ticket(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	pdf, err := h.svc.TicketPDF(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("inline; filename=ticket-%s.pdf", id))
	c.Data(http.StatusOK, "application/pdf", pdf)
}

// AnularVenta godoc
// @Summary Anular una venta
// @Description Devuelve al stock las cantidades vendidas y marca la venta como anulada.
// @Tags ventas
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Venta ID"
// @Param body body dto.AnularVentaRequest true "Motivo"
// @Success 200 {object} dto.VentaResponse
// @Failure 404 {object} apierror.APIError
// @Failure 409 {object} apierror.APIError
// @Router /v1/ventas/{id}/anular [post]
func (h *VentasHandler) AnularVenta(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req dto.AnularVentaRequest
	if !bindAndValidate(c, &req) {
		return
	}

	resp, err := h.svc.AnularVenta(c.Request.Context(), actorFrom(c), id, req.Motivo)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
