package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-ledger/internal/application/dto"
	"github.com/jhoicas/inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/inventario-ledger/internal/infrastructure/memory"
	"github.com/jhoicas/inventario-ledger/internal/infrastructure/metrics"
	apphttp "github.com/jhoicas/inventario-ledger/internal/interfaces/http"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

type fakeEnqueuer struct{ companies []string }

func (f *fakeEnqueuer) EnqueueReconcile(_ context.Context, companyID string) (string, error) {
	f.companies = append(f.companies, companyID)
	return "task-1", nil
}

// buildAPI router completo sobre almacenes en memoria.
func buildAPI(t *testing.T, enq apphttp.ReconcileEnqueuer) *fiber.App {
	t.Helper()
	reg := metrics.New()
	store := memory.NewSnapshotStore()
	engine := inventory.NewEngine(inventory.Deps{
		Store:     store,
		Reports:   store,
		Sequence:  memory.NewOrderSequence(),
		Catalog:   memory.NewCategories(),
		Directory: memory.NewDirectory(),
		Metrics:   reg,
		Logger:    zerolog.Nop(),
	}, inventory.Config{FlushDebounce: time.Hour})
	t.Cleanup(func() { _ = engine.Close(context.Background()) })

	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		Engine:      engine,
		Enqueuer:    enq,
		JWTSecret:   testJWTSecret,
		ServiceName: "inventario-ledger-test",
		Metrics:     reg.Handler(),
	})
	return app
}

func call(t *testing.T, app *fiber.App, method, path string, body any) (*http.Response, []byte) {
	t.Helper()
	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", bearer(t))
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	out, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, out
}

func errorCode(t *testing.T, body []byte) string {
	t.Helper()
	var e dto.ErrorResponse
	require.NoError(t, json.Unmarshal(body, &e))
	return e.Code
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests de rutas
// ──────────────────────────────────────────────────────────────────────────────

func TestRouter_HealthYMetricas(t *testing.T) {
	app := buildAPI(t, nil)

	resp := doGet(t, app, "/health", "")
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doGet(t, app, "/metrics", "")
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "go_goroutines")
}

func TestRouter_RutaProtegidaSinToken(t *testing.T) {
	resp := doGet(t, buildAPI(t, nil), "/api/products", "")
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRouter_RecepcionParcialYComplemento(t *testing.T) {
	app := buildAPI(t, nil)

	resp, body := call(t, app, http.MethodPost, "/api/orders", map[string]any{
		"supplier": "Proveedor S.A.S.",
		"items":    []map[string]any{{"product_name": "Portátil", "quantity": 100, "price": "1500.50"}},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	var order dto.OrderResponse
	require.NoError(t, json.Unmarshal(body, &order))
	assert.Equal(t, "OC-000001", order.Number)
	assert.Equal(t, "150050", order.Total.String())

	resp, body = call(t, app, http.MethodPost, "/api/orders/"+order.ID+"/receive", map[string]any{
		"lines": []map[string]any{{
			"item_index":        0,
			"received_quantity": 60,
			"arrivals":          []map[string]any{{"quantity": 40}},
			"serialized":        true,
			"location":          "Almacén",
		}},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	resp, body = call(t, app, http.MethodGet, "/api/pending-stocks", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var pendings []struct {
		ID    string `json:"id"`
		Items []struct {
			PendingQuantity int `json:"pending_quantity"`
		} `json:"items"`
	}
	require.NoError(t, json.Unmarshal(body, &pendings))
	require.Len(t, pendings, 1)
	assert.Equal(t, 40, pendings[0].Items[0].PendingQuantity)

	resp, body = call(t, app, http.MethodPost, "/api/pending-stocks/"+pendings[0].ID+"/stage", map[string]any{
		"lines": []map[string]any{{"item_index": 0, "quantity": 40, "location": "bodega"}},
	})
	require.Equal(t, http.StatusAccepted, resp.StatusCode, string(body))

	resp, body = call(t, app, http.MethodPost, "/api/pending-changes/save", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	assert.Contains(t, string(body), pendings[0].ID)

	resp, body = call(t, app, http.MethodPost, "/api/pending-changes/save", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, "NO_PENDING_CHANGES", errorCode(t, body))

	resp, body = call(t, app, http.MethodGet, "/api/inventory/ledger?action=order-received", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	var page struct {
		Entries []map[string]any `json:"entries"`
		Page    dto.PageResponse `json:"page"`
	}
	require.NoError(t, json.Unmarshal(body, &page))
	assert.Equal(t, 2, page.Page.Total)
	assert.Equal(t, 20, page.Page.Limit)
}

func TestRouter_MapeoDeErrores(t *testing.T) {
	app := buildAPI(t, nil)

	resp, body := call(t, app, http.MethodGet, "/api/orders/no-existe", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "NOT_FOUND", errorCode(t, body))

	resp, body = call(t, app, http.MethodPost, "/api/orders", map[string]any{"supplier": "P"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION", errorCode(t, body))

	resp, body = call(t, app, http.MethodPost, "/api/orders", map[string]any{
		"supplier": "P",
		"items":    []map[string]any{{"product_name": "Silla", "quantity": 2}},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	var order dto.OrderResponse
	require.NoError(t, json.Unmarshal(body, &order))

	resp, _ = call(t, app, http.MethodPost, "/api/orders/"+order.ID+"/cancel", nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp, body = call(t, app, http.MethodPost, "/api/orders/"+order.ID+"/fungible", nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "INVALID_TRANSITION", errorCode(t, body))

	resp, body = call(t, app, http.MethodGet, "/api/inventory/ledger?from=ayer", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION", errorCode(t, body))
}

func TestRouter_RecepcionQueExcedeLoOrdenado(t *testing.T) {
	app := buildAPI(t, nil)

	resp, body := call(t, app, http.MethodPost, "/api/orders", map[string]any{
		"supplier": "Proveedor S.A.S.",
		"items":    []map[string]any{{"product_name": "Portátil", "quantity": 100}},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	var order dto.OrderResponse
	require.NoError(t, json.Unmarshal(body, &order))

	resp, body = call(t, app, http.MethodPost, "/api/orders/"+order.ID+"/receive", map[string]any{
		"lines": []map[string]any{{
			"item_index":        0,
			"received_quantity": 70,
			"arrivals":          []map[string]any{{"quantity": 40}},
			"location":          "Almacén",
		}},
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "INVARIANT_VIOLATION", errorCode(t, body))

	resp, body = call(t, app, http.MethodGet, "/api/orders/"+order.ID, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `"status":"efectuado"`)
}

func TestRouter_ComprasPorProveedor(t *testing.T) {
	app := buildAPI(t, nil)

	for _, price := range []string{"1500.50", "20"} {
		resp, body := call(t, app, http.MethodPost, "/api/orders", map[string]any{
			"supplier": "Tecnología S.A.S.",
			"items":    []map[string]any{{"product_name": "Portátil", "quantity": 2, "price": price}},
		})
		require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	}

	resp, body := call(t, app, http.MethodGet, "/api/orders/spend-by-supplier", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	var rows []struct {
		Supplier string `json:"supplier"`
		Orders   int    `json:"orders"`
		Total    string `json:"total"`
	}
	require.NoError(t, json.Unmarshal(body, &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, "Tecnología S.A.S.", rows[0].Supplier)
	assert.Equal(t, 2, rows[0].Orders)
	assert.Equal(t, "3041", rows[0].Total)
}

func TestRouter_BajaDeProductoConStock(t *testing.T) {
	app := buildAPI(t, nil)

	resp, body := call(t, app, http.MethodPost, "/api/products", map[string]any{"name": "Cable HDMI", "min_stock": 5})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	var p struct {
		ID       string `json:"id"`
		Category string `json:"category"`
	}
	require.NoError(t, json.Unmarshal(body, &p))
	assert.Equal(t, "General", p.Category)

	resp, body = call(t, app, http.MethodPost, "/api/products/"+p.ID+"/adjust", map[string]any{"new_stock": 2, "reason": "conteo físico"})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	resp, body = call(t, app, http.MethodGet, "/api/products/low-stock", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `"deficit":3`)

	resp, body = call(t, app, http.MethodDelete, "/api/products/"+p.ID, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "INVARIANT_VIOLATION", errorCode(t, body))
}

func TestRouter_EnqueueReconcile(t *testing.T) {
	resp, body := call(t, buildAPI(t, nil), http.MethodPost, "/api/inventory/reconcile", nil)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, "JOBS_DISABLED", errorCode(t, body))

	enq := &fakeEnqueuer{}
	resp, body = call(t, buildAPI(t, enq), http.MethodPost, "/api/inventory/reconcile", nil)
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)
	assert.Contains(t, string(body), "task-1")
	assert.Equal(t, []string{testCompanyID}, enq.companies)
}
