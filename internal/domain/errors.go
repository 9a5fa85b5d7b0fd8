package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound               = errors.New("recurso no encontrado")
	ErrValidation             = errors.New("datos inválidos")
	ErrInsufficientStock      = errors.New("stock insuficiente")
	ErrInvalidStateTransition = errors.New("transición de estado no permitida")
	ErrConcurrencyConflict    = errors.New("conflicto de concurrencia")
	ErrDuplicate              = errors.New("recurso duplicado")
	ErrUnauthorized           = errors.New("no autorizado")
	ErrForbidden              = errors.New("acceso denegado")
)

// Códigos estables expuestos a los clientes.
const (
	CodeNotFound                = "NOT_FOUND"
	CodeValidation              = "VALIDATION"
	CodeInsufficientStock       = "INSUFFICIENT_STOCK"
	CodeInvalidStateTransition  = "INVALID_STATE_TRANSITION"
	CodeConcurrencyConflict     = "CONCURRENCY_CONFLICT"
	CodeCannotCancelPaidInvoice = "CANNOT_CANCEL_PAID_INVOICE"
)

// Error es un fallo de negocio con tipo, código, mensaje legible y los valores en conflicto.
// Unwrap devuelve el tipo, así que errors.Is(err, ErrInsufficientStock) funciona.
type Error struct {
	Kind    error
	Code    string
	Message string
	Fields  map[string]any
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Kind }

// NotFound recurso inexistente (emisor, receptor, producto, factura, traslado...).
func NotFound(resource, id string) *Error {
	return &Error{
		Kind:    ErrNotFound,
		Code:    CodeNotFound,
		Message: fmt.Sprintf("%s no encontrado: %s", resource, id),
		Fields:  map[string]any{"resource": resource, "id": id},
	}
}

// Validation dato de entrada inválido en el campo indicado.
func Validation(field, message string) *Error {
	return &Error{
		Kind:    ErrValidation,
		Code:    CodeValidation,
		Message: fmt.Sprintf("%s: %s", field, message),
		Fields:  map[string]any{"field": field},
	}
}

// InsufficientStock cantidad solicitada mayor a la disponible en origen.
func InsufficientStock(product string, requested, available fmt.Stringer) *Error {
	return &Error{
		Kind: ErrInsufficientStock,
		Code: CodeInsufficientStock,
		Message: fmt.Sprintf("stock insuficiente para %s: solicitado %s, disponible %s",
			product, requested, available),
		Fields: map[string]any{
			"product":   product,
			"requested": requested.String(),
			"available": available.String(),
		},
	}
}

// InvalidTransition operación no permitida desde el estado actual.
func InvalidTransition(entity, operation, current string, required ...string) *Error {
	msg := fmt.Sprintf("no se puede %s %s en estado %s", operation, entity, current)
	if len(required) > 0 {
		msg += fmt.Sprintf(" (requiere: %s)", strings.Join(required, ", "))
	}
	return &Error{
		Kind:    ErrInvalidStateTransition,
		Code:    CodeInvalidStateTransition,
		Message: msg,
		Fields: map[string]any{
			"operation":       operation,
			"current_status":  current,
			"required_status": required,
		},
	}
}

// CannotCancelPaidInvoice una factura pagada se revierte con nota crédito, no se anula.
func CannotCancelPaidInvoice(invoiceNumber string) *Error {
	return &Error{
		Kind:    ErrInvalidStateTransition,
		Code:    CodeCannotCancelPaidInvoice,
		Message: fmt.Sprintf("la factura %s está pagada: emita una nota crédito en lugar de anularla", invoiceNumber),
		Fields:  map[string]any{"invoice_number": invoiceNumber, "current_status": "paid"},
	}
}

// ConcurrencyConflict colisión de numeración o reintentos agotados.
func ConcurrencyConflict(message string) *Error {
	return &Error{Kind: ErrConcurrencyConflict, Code: CodeConcurrencyConflict, Message: message}
}

// CodeOf devuelve el código de negocio de err, o "" si no es un *Error.
func CodeOf(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}
