package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-ledger-api/internal/application/dto"
	"github.com/jhoicas/stock-ledger-api/internal/application/inventory"
)

const (
	defaultFailuresLimit = 50
	maxFailuresLimit     = 500
)

// StockHandler recibe actualizaciones de stock y expone su estado.
type StockHandler struct {
	uc *inventory.StockUpdateUseCase
}

// NewStockHandler construye el handler.
func NewStockHandler(uc *inventory.StockUpdateUseCase) *StockHandler {
	return &StockHandler{uc: uc}
}

// Submit godoc
// @Summary      Solicitar actualización de stock
// @Description  Valida y encola la acción; se aplica en segundo plano. Consultar el resultado en /stock/requests/{id}.
// @Tags         stock
// @Security     Bearer
// @Security     BasicAuth
// @Accept       json
// @Produce      json
// @Param        body  body  dto.StockUpdateRequest  true  "store_id, product_id, action (stock-in|sale|remove), amount > 0"
// @Success      202   {object}  dto.StockUpdateAccepted
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      401   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      429   {object}  dto.ErrorResponse
// @Failure      503   {object}  dto.ErrorResponse
// @Router       /stock [post]
func (h *StockHandler) Submit(c *fiber.Ctx) error {
	var in dto.StockUpdateRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, CodeInvalidBody, "cuerpo inválido")
	}
	out, err := h.uc.Submit(c.UserContext(), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusAccepted).JSON(out)
}

// Status godoc
// @Summary      Estado de una actualización de stock
// @Tags         stock
// @Security     Bearer
// @Security     BasicAuth
// @Produce      json
// @Param        id   path  string  true  "request_id devuelto por POST /stock"
// @Success      200  {object}  dto.StockUpdateStatusResponse
// @Failure      401  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /stock/requests/{id} [get]
func (h *StockHandler) Status(c *fiber.Ctx) error {
	st := h.uc.Status(c.Params("id"))
	if st == nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Error: "solicitud no encontrada", Code: CodeNotFound})
	}
	return c.JSON(st)
}

// Failures godoc
// @Summary      Últimas actualizaciones fallidas (dead-letter)
// @Tags         stock
// @Security     Bearer
// @Security     BasicAuth
// @Produce      json
// @Param        limit  query  int  false  "máximo de filas (default 50, máx 500)"
// @Success      200  {array}   dto.StockUpdateFailureResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      401  {object}  dto.ErrorResponse
// @Router       /stock/failures [get]
func (h *StockHandler) Failures(c *fiber.Ctx) error {
	limit := defaultFailuresLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := parsePositiveInt(raw)
		if err != nil {
			return badRequest(c, CodeValidation, "limit debe ser un entero positivo")
		}
		limit = int(n)
	}
	if limit > maxFailuresLimit {
		limit = maxFailuresLimit
	}
	out, err := h.uc.RecentFailures(c.UserContext(), limit)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}
