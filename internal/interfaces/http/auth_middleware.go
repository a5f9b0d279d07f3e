package http

import (
	"encoding/base64"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-ledger-api/internal/application/auth"
	"github.com/jhoicas/stock-ledger-api/internal/application/dto"
)

// LocalUsername key de c.Locals con el usuario autenticado.
const LocalUsername = "username"

// AuthMiddleware acepta "Bearer <jwt>" o "Basic <base64(user:pass)>" y guarda el usuario en c.Locals.
func AuthMiddleware(uc *auth.AuthUseCase) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			c.Set(fiber.HeaderWWWAuthenticate, `Basic realm="stock-ledger"`)
			return unauthorized(c, "MISSING_TOKEN", "Authorization header requerido")
		}
		scheme, credentials, ok := strings.Cut(authHeader, " ")
		credentials = strings.TrimSpace(credentials)
		if !ok || credentials == "" {
			return unauthorized(c, "INVALID_TOKEN", "formato: Bearer <token> o Basic <credenciales>")
		}

		var username string
		switch {
		case strings.EqualFold(scheme, "Bearer"):
			u, err := uc.ParseToken(credentials)
			if err != nil {
				return unauthorized(c, "INVALID_TOKEN", "token inválido o expirado")
			}
			username = u
		case strings.EqualFold(scheme, "Basic"):
			raw, err := base64.StdEncoding.DecodeString(credentials)
			if err != nil {
				return unauthorized(c, "INVALID_CREDENTIALS", "credenciales mal codificadas")
			}
			user, pass, ok := strings.Cut(string(raw), ":")
			if !ok || uc.Verify(user, pass) != nil {
				return unauthorized(c, "INVALID_CREDENTIALS", "credenciales inválidas")
			}
			username = user
		default:
			return unauthorized(c, "INVALID_TOKEN", "esquema de autorización no soportado")
		}

		c.Locals(LocalUsername, username)
		return c.Next()
	}
}

func unauthorized(c *fiber.Ctx, code, msg string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: code, Error: msg})
}

// GetUsername devuelve el usuario del contexto (después del middleware de auth).
func GetUsername(c *fiber.Ctx) string {
	v := c.Locals(LocalUsername)
	if v == nil {
		return ""
	}
	s, _ := v.(string)
	return s
}
