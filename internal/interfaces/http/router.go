package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-ledger-api/internal/application/auth"
	"github.com/jhoicas/stock-ledger-api/internal/application/inventory"
	"github.com/jhoicas/stock-ledger-api/internal/application/usecase"
	"github.com/jhoicas/stock-ledger-api/pkg/config"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC    *auth.AuthUseCase
	StoreUC   *usecase.StoreUseCase
	ProductUC *usecase.ProductUseCase
	StockUC   *inventory.StockUpdateUseCase
	QueryUC   *inventory.QueryUseCase
	RateLimit config.RateLimitConfig
	CacheTTL  time.Duration
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	rl := deps.RateLimit
	api := app.Group("", RateLimit(rl.DefaultPerHour, time.Hour))

	// Auth (público)
	authHandler := NewAuthHandler(deps.AuthUC)
	api.Post("/auth/login", RateLimit(rl.CatalogPerMin, time.Minute), authHandler.Login)

	// Rutas protegidas (Bearer o Basic)
	protected := api.Group("", AuthMiddleware(deps.AuthUC))

	storeHandler := NewStoreHandler(deps.StoreUC)
	protected.Post("/store", RateLimit(rl.CatalogPerMin, time.Minute), storeHandler.Create)

	productHandler := NewProductHandler(deps.ProductUC)
	protected.Post("/product", RateLimit(rl.CatalogPerMin, time.Minute), productHandler.Create)

	stockHandler := NewStockHandler(deps.StockUC)
	protected.Post("/stock", RateLimit(rl.StockPerMin, time.Minute), stockHandler.Submit)
	protected.Get("/stock/requests/:id", RateLimit(rl.QueryPerMin, time.Minute), stockHandler.Status)
	protected.Get("/stock/failures", RateLimit(rl.QueryPerMin, time.Minute), stockHandler.Failures)

	inventoryHandler := NewInventoryHandler(deps.QueryUC)
	protected.Get("/inventory", RateLimit(rl.QueryPerMin, time.Minute), InventoryCache(deps.CacheTTL), inventoryHandler.GetInventory)
	protected.Get("/movements", RateLimit(rl.QueryPerMin, time.Minute), inventoryHandler.GetMovements)
}
