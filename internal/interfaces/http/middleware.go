package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cache"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jhoicas/stock-ledger-api/internal/application/dto"
)

// RateLimit limita a max solicitudes por ventana para cada identidad de cliente:
// el usuario autenticado si ya pasó por AuthMiddleware, si no la IP.
// Cada llamada crea un contador independiente (límite por ruta).
func RateLimit(max int, window time.Duration) fiber.Handler {
	if max <= 0 {
		return func(c *fiber.Ctx) error { return c.Next() }
	}
	return limiter.New(limiter.Config{
		Max:        max,
		Expiration: window,
		KeyGenerator: func(c *fiber.Ctx) string {
			if u := GetUsername(c); u != "" {
				return "user:" + u
			}
			return "ip:" + c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(dto.ErrorResponse{
				Error: "límite de solicitudes excedido",
				Code:  CodeRateLimited,
			})
		},
	})
}

// InventoryCache cachea GET /inventory por store_id durante ttl. ttl <= 0 lo deshabilita.
func InventoryCache(ttl time.Duration) fiber.Handler {
	if ttl <= 0 {
		return func(c *fiber.Ctx) error { return c.Next() }
	}
	return cache.New(cache.Config{
		Expiration:   ttl,
		CacheControl: false,
		Next: func(c *fiber.Ctx) bool {
			return c.Query("store_id") == ""
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return "inventory:" + c.Query("store_id")
		},
	})
}

// RequestLogger registra cada request con zerolog y deja un sublogger con request_id en el contexto.
func RequestLogger(log zerolog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		reqID := c.Get(fiber.HeaderXRequestID)
		if reqID == "" {
			reqID = uuid.New().String()
		}
		c.Set(fiber.HeaderXRequestID, reqID)

		reqLog := log.With().Str("http_request_id", reqID).Logger()
		c.SetUserContext(reqLog.WithContext(c.UserContext()))

		if err := c.Next(); err != nil {
			if herr := c.App().ErrorHandler(c, err); herr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		status := c.Response().StatusCode()
		ev := reqLog.Info()
		if status >= fiber.StatusInternalServerError {
			ev = reqLog.Error()
		}
		ev.Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str("ip", c.IP()).
			Msg("request")
		return nil
	}
}
