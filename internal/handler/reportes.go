package handler

import (
	"net/http"

	"storevision/internal/dto"
	"storevision/internal/service"

	"github.com/gin-gonic/gin"
)

type ReportesHandler struct{ svc service.ReporteService }

func NewReportesHandler(svc service.ReporteService) *ReportesHandler {
	return &ReportesHandler{svc: svc}
}

// Balance godoc
// @Summary Balance de ventas, costo y utilidad
// @Tags reportes
// @Produce json
// @Security BearerAuth
// @Param desde query string false "YYYY-MM-DD, por defecto inicio del mes"
// @Param hasta query string false "YYYY-MM-DD inclusive, por defecto hoy"
// @Success 200 {object} dto.BalanceResponse
// @Router /v1/reportes/balance [get]
func (h *ReportesHandler) Balance(c *gin.Context) {
	var filter dto.PeriodoFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.Balance(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// IndicadoresVentas godoc
// @Summary Variación de ventas contra el período anterior
// @Tags reportes
// @Produce json
// @Security BearerAuth
// @Param desde query string false "YYYY-MM-DD, por defecto hace 7 días"
// @Param hasta query string false "YYYY-MM-DD inclusive, por defecto hoy"
// @Success 200 {object} dto.IndicadoresVentasResponse
// @Router /v1/reportes/indicadores-ventas [get]
func (h *ReportesHandler) IndicadoresVentas(c *gin.Context) {
	var filter dto.PeriodoFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.IndicadoresVentas(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ProductosMasVendidos godoc
// @Summary Ranking de productos por unidades vendidas
// @Tags reportes
// @Produce json
// @Security BearerAuth
// @Param desde query string false "YYYY-MM-DD"
// @Param hasta query string false "YYYY-MM-DD inclusive"
// @Param limit query int false "Cantidad de productos (default 10)"
// @Success 200 {array} dto.ProductoVendidoResponse
// @Router /v1/reportes/productos-mas-vendidos [get]
func (h *ReportesHandler) ProductosMasVendidos(c *gin.Context) {
	var filter dto.PeriodoFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.ProductosMasVendidos(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
