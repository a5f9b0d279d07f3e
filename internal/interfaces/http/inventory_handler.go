package http

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-ledger-api/internal/application/inventory"
)

// InventoryHandler consultas de inventario actual e historial de movimientos.
type InventoryHandler struct {
	uc *inventory.QueryUseCase
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(uc *inventory.QueryUseCase) *InventoryHandler {
	return &InventoryHandler{uc: uc}
}

// GetInventory godoc
// @Summary      Inventario actual de una tienda
// @Description  Respuesta cacheada por store_id; puede estar desactualizada hasta el TTL configurado.
// @Tags         inventory
// @Security     Bearer
// @Security     BasicAuth
// @Produce      json
// @Param        store_id  query  int  true  "ID de la tienda"
// @Success      200  {array}   dto.InventoryItem
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      401  {object}  dto.ErrorResponse
// @Failure      429  {object}  dto.ErrorResponse
// @Router       /inventory [get]
func (h *InventoryHandler) GetInventory(c *fiber.Ctx) error {
	storeID, err := parseID(c.Query("store_id"))
	if err != nil {
		return badRequest(c, CodeValidation, "store_id "+err.Error())
	}
	out, err := h.uc.GetInventory(c.UserContext(), storeID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// GetMovements godoc
// @Summary      Movimientos de stock de una tienda
// @Description  Ventana [start_date, end_date] inclusiva, ambas a medianoche UTC.
// @Tags         inventory
// @Security     Bearer
// @Security     BasicAuth
// @Produce      json
// @Param        store_id    query  int     true  "ID de la tienda"
// @Param        start_date  query  string  true  "YYYY-MM-DD"
// @Param        end_date    query  string  true  "YYYY-MM-DD"
// @Success      200  {array}   dto.MovementResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      401  {object}  dto.ErrorResponse
// @Failure      429  {object}  dto.ErrorResponse
// @Router       /movements [get]
func (h *InventoryHandler) GetMovements(c *fiber.Ctx) error {
	storeID, err := parseID(c.Query("store_id"))
	if err != nil {
		return badRequest(c, CodeValidation, "store_id "+err.Error())
	}
	start, end := c.Query("start_date"), c.Query("end_date")
	if start == "" || end == "" {
		return badRequest(c, CodeValidation, "start_date y end_date son requeridos")
	}
	out, err := h.uc.GetMovements(c.UserContext(), storeID, start, end)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

var (
	errRequired   = errors.New("es requerido")
	errNotInteger = errors.New("debe ser un entero positivo")
)

func parseID(raw string) (int64, error) {
	if raw == "" {
		return 0, errRequired
	}
	return parsePositiveInt(raw)
}

func parsePositiveInt(raw string) (int64, error) {
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n <= 0 {
		return 0, errNotInteger
	}
	return n, nil
}
