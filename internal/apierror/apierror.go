// Package apierror provides standardized error response structures for the API.
// All errors returned to clients go through this package to ensure consistency
// and to prevent leaking internal details (stack traces, DB errors, etc.).
package apierror

import (
	"errors"
	"net/http"

	"storevision/internal/service"
)

// APIError is the canonical error envelope for all 4xx/5xx HTTP responses.
type APIError struct {
	Detail string `json:"detail"`
}

func New(msg string) *APIError {
	return &APIError{Detail: msg}
}

// Validation wraps multiple field errors.
type ValidationError struct {
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields"`
}

func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{Detail: "Error de validacion", Fields: fields}
}

// StockError is returned for insufficient stock so clients can show which
// product failed and how many units remain.
type StockError struct {
	Detail     string `json:"detail"`
	ProductoID string `json:"producto_id"`
	Disponible int    `json:"disponible"`
	Solicitado int    `json:"solicitado"`
}

const mensajeInterno = "Error interno del servidor"

// FromError maps a service error to its HTTP status and response body.
// Persistence and unclassified errors never expose their message.
func FromError(err error) (int, interface{}) {
	var stock *service.StockInsuficienteError
	if errors.As(err, &stock) {
		return http.StatusConflict, &StockError{
			Detail:     stock.Error(),
			ProductoID: stock.ProductoID.String(),
			Disponible: stock.Disponible,
			Solicitado: stock.Solicitado,
		}
	}

	switch service.KindOf(err) {
	case service.KindValidation:
		return http.StatusBadRequest, New(err.Error())
	case service.KindUnauthorized:
		return http.StatusUnauthorized, New(err.Error())
	case service.KindNotFound:
		return http.StatusNotFound, New(err.Error())
	case service.KindConflict:
		return http.StatusConflict, New(err.Error())
	default:
		return http.StatusInternalServerError, New(mensajeInterno)
	}
}
