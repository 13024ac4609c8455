package handler

import (
	"net/http"

	"storevision/internal/dto"
	"storevision/internal/service"

	"github.com/gin-gonic/gin"
)

type AuditoriaHandler struct{ svc service.AuditoriaService }

func NewAuditoriaHandler(svc service.AuditoriaService) *AuditoriaHandler {
	return &AuditoriaHandler{svc: svc}
}

// Listar godoc
// @Summary Consultar registros de auditoría
// @Tags auditoria
// @Produce json
// @Security BearerAuth
// @Param tipo_accion query string false "Tipo de acción"
// @Param usuario_id query string false "Usuario ID"
// @Param desde query string false "YYYY-MM-DD"
// @Param hasta query string false "YYYY-MM-DD inclusive"
// @Param page query int false "Página"
// @Param limit query int false "Límite"
// @Success 200 {object} dto.AuditoriaListResponse
// @Router /v1/auditoria [get]
func (h *AuditoriaHandler) Listar(c *gin.Context) {
	var filter dto.AuditoriaFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.Listar(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
