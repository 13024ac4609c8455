package handler

import (
	"net/http"

	"storevision/internal/service"

	"github.com/gin-gonic/gin"
)

// ConsultaPreciosHandler serves the public price check endpoint.
// No authentication and no side effects beyond the cache fill.
type ConsultaPreciosHandler struct{ svc service.PrecioService }

func NewConsultaPreciosHandler(svc service.PrecioService) *ConsultaPreciosHandler {
	return &ConsultaPreciosHandler{svc: svc}
}

// GetPrecio godoc
// @Summary Consulta de precio por código de producto (sin autenticación)
// @Tags precio
// @Produce json
// @Param codigo path string true "Código del producto"
// @Success 200 {object} dto.ConsultaPreciosResponse
// @Failure 404 {object} apierror.APIError
// @Router /v1/precio/{codigo} [get]
func (h *ConsultaPreciosHandler) GetPrecio(c *gin.Context) {
	resp, err := h.svc.ConsultarPrecio(c.Request.Context(), c.Param("codigo"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
