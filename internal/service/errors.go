package service

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Kind classifies domain errors so transports can map them without
// inspecting messages.
type Kind int

const (
	KindUnknown Kind = iota
	KindValidation
	KindNotFound
	KindConflict
	KindPersistence
	KindUnauthorized
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindPersistence:
		return "persistence"
	case KindUnauthorized:
		return "unauthorized"
	default:
		return "unknown"
	}
}

// domainError is a sentinel with a kind. Callers wrap it with %w to add
// context and compare with errors.Is.
type domainError struct {
	kind Kind
	msg  string
}

func (e *domainError) Error() string { return e.msg }
func (e *domainError) Kind() Kind    { return e.kind }

func newError(kind Kind, msg string) error { return &domainError{kind: kind, msg: msg} }

var (
	ErrCarritoVacio            = newError(KindValidation, "la venta debe tener al menos un producto")
	ErrCantidadInvalida        = newError(KindValidation, "la cantidad debe ser mayor a cero")
	ErrTipoMovimientoInvalido  = newError(KindValidation, "tipo de movimiento inválido")
	ErrIdentificadorInvalido   = newError(KindValidation, "identificador inválido")
	ErrRangoFechasInvalido     = newError(KindValidation, "rango de fechas inválido")
	ErrMotivoRequerido         = newError(KindValidation, "el motivo es obligatorio")
	ErrAuditoriaInvalida       = newError(KindValidation, "registro de auditoría inválido")
	ErrProductoNoEncontrado    = newError(KindNotFound, "producto no encontrado")
	ErrVentaNoEncontrada       = newError(KindNotFound, "venta no encontrada")
	ErrUsuarioNoEncontrado     = newError(KindNotFound, "usuario no encontrado")
	ErrProductoInactivo        = newError(KindConflict, "producto inactivo")
	ErrStockInsuficiente       = newError(KindConflict, "stock insuficiente")
	ErrModificacionConcurrente = newError(KindConflict, "el stock fue modificado por otra operación, reintente")
	ErrVentaYaAnulada          = newError(KindConflict, "la venta ya fue anulada")
	ErrCodigoDuplicado         = newError(KindConflict, "ya existe un producto con ese código")
	ErrEmailDuplicado          = newError(KindConflict, "ya existe un usuario con ese email")
	ErrCredencialesInvalidas   = newError(KindUnauthorized, "credenciales inválidas")
	ErrTokenInvalido           = newError(KindUnauthorized, "token inválido o expirado")
)

// StockInsuficienteError carries the product and quantities behind an
// ErrStockInsuficiente.
type StockInsuficienteError struct {
	ProductoID uuid.UUID
	Nombre     string
	Disponible int
	Solicitado int
}

func (e *StockInsuficienteError) Error() string {
	return fmt.Sprintf("stock insuficiente para %s: disponible %d, solicitado %d", e.Nombre, e.Disponible, e.Solicitado)
}

func (e *StockInsuficienteError) Kind() Kind { return KindConflict }

func (e *StockInsuficienteError) Is(target error) bool { return target == ErrStockInsuficiente }

// persistenceError wraps a storage failure.
type persistenceError struct{ err error }

func (e *persistenceError) Error() string { return "error de persistencia: " + e.err.Error() }
func (e *persistenceError) Unwrap() error { return e.err }
func (e *persistenceError) Kind() Kind    { return KindPersistence }

// persistencia tags err as a storage failure unless it already carries a kind.
func persistencia(err error) error {
	if err == nil || KindOf(err) != KindUnknown {
		return err
	}
	return &persistenceError{err: err}
}

// KindOf returns the kind of the first classified error in err's chain.
func KindOf(err error) Kind {
	var k interface{ Kind() Kind }
	if errors.As(err, &k) {
		return k.Kind()
	}
	return KindUnknown
}
