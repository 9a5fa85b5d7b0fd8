package http

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/bhupesh-moudgil/freshvilla-store-sub001/internal/application/dto"
	"github.com/bhupesh-moudgil/freshvilla-store-sub001/internal/domain"
	"github.com/bhupesh-moudgil/freshvilla-store-sub001/pkg/logger"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// errorStatus relaciona el tipo de error de dominio con el código HTTP.
var errorStatus = []struct {
	kind   error
	status int
	code   string
}{
	{domain.ErrNotFound, fiber.StatusNotFound, domain.CodeNotFound},
	{domain.ErrValidation, fiber.StatusBadRequest, domain.CodeValidation},
	{domain.ErrInsufficientStock, fiber.StatusConflict, domain.CodeInsufficientStock},
	{domain.ErrInvalidStateTransition, fiber.StatusConflict, domain.CodeInvalidStateTransition},
	{domain.ErrConcurrencyConflict, fiber.StatusConflict, domain.CodeConcurrencyConflict},
	{domain.ErrDuplicate, fiber.StatusConflict, "DUPLICATE"},
	{domain.ErrUnauthorized, fiber.StatusUnauthorized, "UNAUTHORIZED"},
	{domain.ErrForbidden, fiber.StatusForbidden, "FORBIDDEN"},
}

// writeError traduce err a la respuesta JSON. Los errores no tipificados se registran
// y se responden como 500 sin exponer el detalle.
func writeError(c *fiber.Ctx, log *logger.Logger, err error) error {
	var de *domain.Error
	if errors.As(err, &de) {
		for _, m := range errorStatus {
			if errors.Is(de.Kind, m.kind) {
				return c.Status(m.status).JSON(dto.ErrorResponse{Code: de.Code, Message: de.Message, Details: de.Fields})
			}
		}
	}
	for _, m := range errorStatus {
		if errors.Is(err, m.kind) {
			return c.Status(m.status).JSON(dto.ErrorResponse{Code: m.code, Message: err.Error()})
		}
	}
	log.Error().Err(err).Str("method", c.Method()).Str("path", c.Path()).Msg("error interno")
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: "error interno del servidor"})
}

// validationDetails campo → regla incumplida.
func validationDetails(err error) map[string]any {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return nil
	}
	out := make(map[string]any, len(ve))
	for _, fe := range ve {
		out[fe.Namespace()] = fe.Tag()
	}
	return out
}

func invalid(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
		Code:    domain.CodeValidation,
		Message: "datos inválidos",
		Details: validationDetails(err),
	})
}

// parseBody decodifica el JSON del cuerpo y valida las reglas del DTO.
// Si falla ya escribió la respuesta 400 y devuelve ok=false.
func parseBody(c *fiber.Ctx, out any) (bool, error) {
	if err := c.BodyParser(out); err != nil {
		return false, c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if err := validate.Struct(out); err != nil {
		return false, invalid(c, err)
	}
	return true, nil
}

// parseQuery igual que parseBody para los parámetros de consulta.
func parseQuery(c *fiber.Ctx, out any) (bool, error) {
	if err := c.QueryParser(out); err != nil {
		return false, c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "parámetros inválidos"})
	}
	if err := validate.Struct(out); err != nil {
		return false, invalid(c, err)
	}
	return true, nil
}
