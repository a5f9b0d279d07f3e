package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/stock-ledger-api/internal/application/dto"
	"github.com/jhoicas/stock-ledger-api/internal/domain"
)

// Códigos de error devueltos en dto.ErrorResponse.
const (
	CodeValidation   = "VALIDATION"
	CodeInvalidBody  = "INVALID_BODY"
	CodeNotFound     = "NOT_FOUND"
	CodeUnauthorized = "UNAUTHORIZED"
	CodeRateLimited  = "RATE_LIMITED"
	CodeBusy         = "BUSY"
	CodeUnavailable  = "UNAVAILABLE"
	CodeInternal     = "INTERNAL"
)

// respondError traduce errores de dominio a status HTTP con cuerpo {error, code}.
func respondError(c *fiber.Ctx, err error) error {
	status, code := fiber.StatusInternalServerError, CodeInternal
	msg := err.Error()
	switch {
	case domain.IsClientError(err) && !errors.Is(err, domain.ErrStoreNotFound) && !errors.Is(err, domain.ErrProductNotFound):
		status, code = fiber.StatusBadRequest, CodeValidation
	case errors.Is(err, domain.ErrStoreNotFound), errors.Is(err, domain.ErrProductNotFound), errors.Is(err, domain.ErrNotFound):
		status, code = fiber.StatusNotFound, CodeNotFound
	case errors.Is(err, domain.ErrUnauthorized):
		status, code = fiber.StatusUnauthorized, CodeUnauthorized
	case errors.Is(err, domain.ErrDispatcherBusy):
		status, code = fiber.StatusServiceUnavailable, CodeBusy
		c.Set(fiber.HeaderRetryAfter, "1")
	case errors.Is(err, domain.ErrDispatcherClosed):
		status, code = fiber.StatusServiceUnavailable, CodeUnavailable
	default:
		msg = "error interno"
		zerolog.Ctx(c.UserContext()).Error().Err(err).Str("path", c.Path()).Msg("error no controlado")
	}
	return c.Status(status).JSON(dto.ErrorResponse{Error: msg, Code: code})
}

// badRequest responde 400 con el mensaje indicado.
func badRequest(c *fiber.Ctx, code, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: msg, Code: code})
}

// ErrorHandler manejador de errores de Fiber (rutas inexistentes, panics recuperados, body inválido).
func ErrorHandler(log zerolog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		code := CodeInternal
		msg := "error interno"
		var fe *fiber.Error
		if errors.As(err, &fe) {
			status = fe.Code
			msg = fe.Message
			switch status {
			case fiber.StatusNotFound, fiber.StatusMethodNotAllowed:
				code = CodeNotFound
			case fiber.StatusBadRequest, fiber.StatusUnprocessableEntity:
				code = CodeInvalidBody
			case fiber.StatusTooManyRequests:
				code = CodeRateLimited
			}
		}
		if status >= fiber.StatusInternalServerError {
			log.Error().Err(err).Str("method", c.Method()).Str("path", c.Path()).Msg("error en request")
		}
		return c.Status(status).JSON(dto.ErrorResponse{Error: msg, Code: code})
	}
}
