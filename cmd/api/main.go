// @title						Stock Ledger API
// @version					1.0
// @description				Inventario por tienda: catálogo de tiendas y productos, actualizaciones de stock asíncronas y consultas de inventario y movimientos.
// @BasePath					/
// @securityDefinitions.apikey	Bearer
// @in							header
// @name						Authorization
// @description				Token JWT con el prefijo "Bearer ".
// @securityDefinitions.basic	BasicAuth
package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"golang.org/x/sync/errgroup"

	_ "github.com/jhoicas/stock-ledger-api/docs"
	"github.com/jhoicas/stock-ledger-api/internal/application/auth"
	"github.com/jhoicas/stock-ledger-api/internal/application/inventory"
	"github.com/jhoicas/stock-ledger-api/internal/application/usecase"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
	"github.com/jhoicas/stock-ledger-api/internal/infrastructure/kafka"
	"github.com/jhoicas/stock-ledger-api/internal/infrastructure/memory"
	"github.com/jhoicas/stock-ledger-api/internal/infrastructure/observability"
	"github.com/jhoicas/stock-ledger-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/stock-ledger-api/internal/interfaces/http"
	"github.com/jhoicas/stock-ledger-api/pkg/config"
	"github.com/jhoicas/stock-ledger-api/pkg/logger"
)

const version = "1.0.0"

// storage repositorios del driver elegido.
type storage struct {
	stores    repository.StoreRepository
	products  repository.ProductRepository
	stocks    repository.StockRepository
	movements repository.StockMovementRepository
	failures  interface {
		repository.StockUpdateFailureRepository
		inventory.FailureSink
	}
	txRunner inventory.TxRunner
	close    func()
}

func openStorage(ctx context.Context, cfg config.DBConfig, log *logger.Logger) (*storage, error) {
	if cfg.Driver == config.DriverMemory {
		log.Warn().Msg("almacenamiento en memoria: los datos se pierden al reiniciar")
		st := memory.NewStore()
		return &storage{
			stores:    st.Stores(),
			products:  st.Products(),
			stocks:    st.Stocks(),
			movements: st.Movements(),
			failures:  st.Failures(),
			txRunner:  st,
			close:     func() {},
		}, nil
	}

	pool, err := postgres.NewPool(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if cfg.AutoMigrate {
		if err := postgres.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, err
		}
		log.Info().Msg("esquema de base de datos verificado")
	}
	return &storage{
		stores:    postgres.NewStoreRepository(pool),
		products:  postgres.NewProductRepository(pool),
		stocks:    postgres.NewStockRepository(pool),
		movements: postgres.NewStockMovementRepository(pool),
		failures:  postgres.NewStockUpdateFailureRepository(pool),
		txRunner:  postgres.NewTxRunner(pool),
		close:     pool.Close,
	}, nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("driver", cfg.DB.Driver).
		Msg("iniciando aplicación")

	ctx := context.Background()

	shutdownTracing, err := observability.SetupTracingSDK(ctx, cfg.App.Name, version, cfg.Telemetry)
	if err != nil {
		log.Fatal().Err(err).Msg("configurar trazas OpenTelemetry")
	}

	st, err := openStorage(ctx, cfg.DB, log)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer st.close()

	sinks := []inventory.FailureSink{st.failures}
	var publisher *kafka.DeadLetterPublisher
	if cfg.Kafka.Enabled() {
		publisher = kafka.NewDeadLetterPublisher(kafka.NewWriter(cfg.Kafka.Brokers, cfg.Kafka.DeadLetterTopic))
		sinks = append(sinks, publisher)
		log.Info().Strs("brokers", cfg.Kafka.Brokers).Str("topic", cfg.Kafka.DeadLetterTopic).Msg("dead-letter en Kafka habilitado")
	}

	if len(cfg.Auth.Users) == 0 {
		log.Warn().Msg("AUTH_USERS vacío: ninguna credencial será aceptada")
	}
	if cfg.JWT.Secret == "" {
		log.Warn().Msg("JWT_SECRET vacío: solo aceptable en development")
	}

	tracker := inventory.NewStatusTracker(cfg.Dispatcher.TrackerCapacity)
	ledger := inventory.NewLedger(st.txRunner)
	dispatcher := inventory.NewDispatcher(ledger, tracker, log.Zerolog(), inventory.DispatcherConfig{
		Workers:      cfg.Dispatcher.Workers,
		QueueSize:    cfg.Dispatcher.QueueSize,
		ApplyTimeout: cfg.Dispatcher.ApplyTimeout,
		MaxRetries:   cfg.Dispatcher.MaxRetries,
		RetryBackoff: cfg.Dispatcher.RetryBackoff,
	}, sinks...)
	dispatcher.Start()

	authUC := auth.NewAuthUseCase(cfg.Auth.Users, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})
	storeUC := usecase.NewStoreUseCase(st.stores)
	productUC := usecase.NewProductUseCase(st.products)
	stockUC := inventory.NewStockUpdateUseCase(dispatcher, st.stores, st.products, tracker, st.failures)
	queryUC := inventory.NewQueryUseCase(st.stocks, st.movements)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
		ErrorHandler: httpRouter.ErrorHandler(log.Component("http")),
	})
	app.Use(recover.New())
	app.Use(httpRouter.RequestLogger(log.Component("http")))

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Stock Ledger API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:    authUC,
		StoreUC:   storeUC,
		ProductUC: productUC,
		StockUC:   stockUC,
		QueryUC:   queryUC,
		RateLimit: cfg.RateLimit,
		CacheTTL:  cfg.Cache.InventoryTTL,
	})

	sigCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(sigCtx)
	g.Go(func() error {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			return fmt.Errorf("servidor HTTP: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("señal de apagado recibida, cerrando servidor...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Dispatcher.ShutdownTimeout)
		defer cancel()

		// HTTP primero; el despachador drena sus colas antes de cerrar los exportadores.
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("apagado del servidor")
		}
		if err := dispatcher.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("apagado del despachador: quedaron solicitudes sin aplicar")
		}
		if publisher != nil {
			if err := publisher.Close(); err != nil {
				log.Error().Err(err).Msg("cerrar productor Kafka")
			}
		}
		if err := shutdownTracing(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("apagado de trazas")
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("aplicación finalizada con error")
	}
	log.Info().Msg("aplicación detenida")
}
