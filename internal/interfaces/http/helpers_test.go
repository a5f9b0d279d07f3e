package http_test

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/stock-ledger-api/internal/application/auth"
	"github.com/jhoicas/stock-ledger-api/internal/application/inventory"
	"github.com/jhoicas/stock-ledger-api/internal/application/usecase"
	"github.com/jhoicas/stock-ledger-api/internal/infrastructure/memory"
	apphttp "github.com/jhoicas/stock-ledger-api/internal/interfaces/http"
	"github.com/jhoicas/stock-ledger-api/pkg/config"
)

const (
	testJWTSecret = "test-secret-key-for-unit-tests"
	testIssuer    = "stock-ledger-test"
	testUser      = "operador"
	testPassword  = "clave-segura"
)

// testEnv aplicación Fiber completa sobre el almacenamiento en memoria.
type testEnv struct {
	app        *fiber.App
	store      *memory.Store
	authUC     *auth.AuthUseCase
	dispatcher *inventory.Dispatcher
}

func newAuthUseCase(t *testing.T) *auth.AuthUseCase {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	require.NoError(t, err)
	return auth.NewAuthUseCase(map[string]string{testUser: string(hash)}, auth.JWTConfig{
		Secret:     testJWTSecret,
		ExpMinutes: 60,
		Issuer:     testIssuer,
	})
}

// newTestEnv construye la app; opts permite ajustar límites o caché.
func newTestEnv(t *testing.T, opts ...func(*apphttp.RouterDeps)) *testEnv {
	t.Helper()
	st := memory.NewStore()
	tracker := inventory.NewStatusTracker(1000)
	d := inventory.NewDispatcher(inventory.NewLedger(st), tracker, zerolog.Nop(),
		inventory.DispatcherConfig{Workers: 4, QueueSize: 64}, st.Failures())
	d.Start()
	t.Cleanup(func() { _ = d.Shutdown(context.Background()) })

	authUC := newAuthUseCase(t)
	deps := apphttp.RouterDeps{
		AuthUC:    authUC,
		StoreUC:   usecase.NewStoreUseCase(st.Stores()),
		ProductUC: usecase.NewProductUseCase(st.Products()),
		StockUC:   inventory.NewStockUpdateUseCase(d, st.Stores(), st.Products(), tracker, st.Failures()),
		QueryUC:   inventory.NewQueryUseCase(st.Stocks(), st.Movements()),
		RateLimit: config.RateLimitConfig{DefaultPerHour: 10000, CatalogPerMin: 1000, StockPerMin: 1000, QueryPerMin: 1000},
	}
	for _, opt := range opts {
		opt(&deps)
	}

	app := fiber.New(fiber.Config{ErrorHandler: apphttp.ErrorHandler(zerolog.Nop())})
	apphttp.Router(app, deps)
	return &testEnv{app: app, store: st, authUC: authUC, dispatcher: d}
}

func basicAuth() string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(testUser+":"+testPassword))
}

// do lanza la petición con credenciales Basic válidas salvo que authHeader se indique.
func (e *testEnv) do(t *testing.T, method, path string, body any, authHeader ...string) *http.Response {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if len(authHeader) > 0 {
		if authHeader[0] != "" {
			req.Header.Set("Authorization", authHeader[0])
		}
	} else {
		req.Header.Set("Authorization", basicAuth())
	}
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}
