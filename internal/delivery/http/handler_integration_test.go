package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/decantbox/backend/config"
	"github.com/decantbox/backend/internal/domain"
	"github.com/decantbox/backend/internal/infrastructure/cache"
	"github.com/decantbox/backend/internal/infrastructure/catalog"
	"github.com/decantbox/backend/internal/usecase"
)

// TestMain sets up test environment before running tests
func TestMain(m *testing.M) {
	// Set Gin to test mode once for all tests
	gin.SetMode(gin.TestMode)

	os.Exit(m.Run())
}

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Port:           "8080",
			Environment:    "test",
			AllowedOrigins: []string{"https://*", "http://localhost:3000"},
		},
		Cache:     config.CacheConfig{Type: "memory"},
		RateLimit: config.RateLimitConfig{PerIP: 1000},
	}
}

func prices(p2, p5, p10 int64) map[domain.Size]decimal.Decimal {
	return map[domain.Size]decimal.Decimal{
		domain.Size2ML:  decimal.NewFromInt(p2),
		domain.Size5ML:  decimal.NewFromInt(p5),
		domain.Size10ML: decimal.NewFromInt(p10),
	}
}

func testProducts() []domain.Product {
	return []domain.Product{
		{ID: 1, Name: "Sauvage", Brand: "Dior", StockML: 100, Prices: prices(25, 50, 90),
			TopNotes: []string{"Bergamot", "Pepper"}, BaseNotes: []string{"Ambroxan"}},
		{ID: 2, Name: "Bleu de Chanel", Brand: "Chanel", StockML: 100, Prices: prices(25, 50, 95),
			TopNotes: []string{"Grapefruit"}, BaseNotes: []string{"Incense"}},
		{ID: 3, Name: "Aventus", Brand: "Creed", StockML: 100, Prices: prices(40, 50, 180),
			TopNotes: []string{"Pineapple"}, BaseNotes: []string{"Musk", "Birch"}},
		{ID: 4, Name: "Interlude Man", Brand: "Amouage", StockML: 1, Prices: prices(30, 70, 130),
			BaseNotes: []string{"Oud", "Incense"}},
		{ID: 5, Name: "Oud Wood", Brand: "Tom Ford", StockML: 100, Prices: prices(35, 60, 120),
			TopNotes: []string{"Rose"}, BaseNotes: []string{"Oud", "Sandalwood"}},
	}
}

type failingCatalog struct{}

func (failingCatalog) ListProducts(ctx context.Context) ([]domain.Product, error) {
	return nil, errors.New("connection refused")
}

func newTestHandler(t *testing.T, repo domain.CatalogRepository) *Handler {
	t.Helper()

	memCache := cache.NewMemoryCache(0)
	t.Cleanup(memCache.Close)

	translator := usecase.NewNoteTranslator(
		catalog.StaticNoteMappings(usecase.DefaultNoteMappings()),
		memCache,
		usecase.NoteTranslatorConfig{},
	)
	bundles := usecase.NewBundleService(repo, translator, usecase.DefaultBundleServiceConfig())
	search := usecase.NewCatalogSearch(repo, translator)
	return NewHandler(bundles, search, usecase.NewRequestDeduplicator(0))
}

// setupTestRouter creates a test router over the in-memory test catalog
func setupTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	return SetupRouter(testConfig(), newTestHandler(t, catalog.NewMemoryCatalog(testProducts())))
}

func doJSON(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), "body: %s", w.Body.String())
	return body
}

// TestHealthCheckEndpoint tests the health check endpoint
func TestHealthCheckEndpoint(t *testing.T) {
	t.Run("returns healthy status", func(t *testing.T) {
		router := setupTestRouter(t)

		w := doJSON(router, http.MethodGet, "/health", "")
		require.Equal(t, http.StatusOK, w.Code)

		body := decodeBody(t, w)
		assert.Equal(t, "healthy", body["status"])
		assert.Equal(t, "decantbox-backend", body["service"])
		version, ok := body["version"].(string)
		assert.True(t, ok && strings.TrimSpace(version) != "", "version = %v", body["version"])
	})

	t.Run("accepts GET requests only", func(t *testing.T) {
		router := setupTestRouter(t)

		for _, method := range []string{"POST", "PUT", "DELETE", "PATCH"} {
			w := doJSON(router, method, "/health", "")
			assert.Equal(t, http.StatusNotFound, w.Code, "method %s", method)
		}
	})
}

func TestMetricsEndpoint(t *testing.T) {
	router := setupTestRouter(t)

	// Produce at least one bundle metric sample
	doJSON(router, http.MethodPost, "/api/v1/bundles/match", `{"quantity":1,"size":5,"budget":50}`)

	w := doJSON(router, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "bundle_requests_total")
}

func TestMatchBundleEndpoint(t *testing.T) {
	t.Run("exact fit returns products and totals", func(t *testing.T) {
		router := setupTestRouter(t)

		w := doJSON(router, http.MethodPost, "/api/v1/bundles/match",
			`{"quantity":3,"size":5,"budget":150,"notes":[]}`)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		body := decodeBody(t, w)
		assert.Equal(t, "exact-fit", body["status"])
		assert.Equal(t, float64(150), body["totalPrice"])
		assert.Equal(t, float64(0), body["shortfall"])
		assert.NotEmpty(t, body["message"])

		products, ok := body["products"].([]interface{})
		require.True(t, ok)
		require.Len(t, products, 3)

		first := products[0].(map[string]interface{})
		for _, key := range []string{"id", "name", "brand", "image_url", "price"} {
			assert.Contains(t, first, key)
		}
		assert.Equal(t, float64(50), first["price"])
	})

	t.Run("hebrew notes rank matching items first", func(t *testing.T) {
		router := setupTestRouter(t)

		w := doJSON(router, http.MethodPost, "/api/v1/bundles/match",
			`{"quantity":1,"size":5,"budget":100,"notes":["ורד","עוד"]}`)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		products := decodeBody(t, w)["products"].([]interface{})
		require.Len(t, products, 1)
		assert.Equal(t, "Oud Wood", products[0].(map[string]interface{})["name"])
	})

	t.Run("out of stock products are excluded", func(t *testing.T) {
		router := setupTestRouter(t)

		w := doJSON(router, http.MethodPost, "/api/v1/bundles/match",
			`{"quantity":5,"size":5,"budget":1000,"notes":["oud"]}`)
		require.Equal(t, http.StatusOK, w.Code)

		body := decodeBody(t, w)
		for _, p := range body["products"].([]interface{}) {
			assert.NotEqual(t, "Amouage", p.(map[string]interface{})["brand"])
		}
		assert.Equal(t, "best-effort", body["status"])
		assert.Equal(t, float64(1), body["shortfall"])
	})

	t.Run("empty catalog is infeasible but 200", func(t *testing.T) {
		router := SetupRouter(testConfig(), newTestHandler(t, catalog.NewMemoryCatalog(nil)))

		w := doJSON(router, http.MethodPost, "/api/v1/bundles/match",
			`{"quantity":2,"size":2,"budget":100}`)
		require.Equal(t, http.StatusOK, w.Code)

		body := decodeBody(t, w)
		assert.Equal(t, "infeasible", body["status"])
		assert.Equal(t, "No items match your criteria right now", body["message"])
		assert.Empty(t, body["products"])
	})

	t.Run("catalog failure returns 503", func(t *testing.T) {
		router := SetupRouter(testConfig(), newTestHandler(t, failingCatalog{}))

		w := doJSON(router, http.MethodPost, "/api/v1/bundles/match",
			`{"quantity":2,"size":5,"budget":100}`)
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Contains(t, decodeBody(t, w), "error")
	})

	validationTests := []struct {
		name      string
		body      string
		wantField string
	}{
		{name: "missing quantity", body: `{"size":5,"budget":100}`, wantField: "Quantity"},
		{name: "zero quantity", body: `{"quantity":0,"size":5,"budget":100}`, wantField: "Quantity"},
		{name: "unknown size", body: `{"quantity":2,"size":7,"budget":100}`, wantField: "Size"},
		{name: "negative budget", body: `{"quantity":2,"size":5,"budget":-5}`, wantField: "Budget"},
		{name: "quantity too large", body: `{"quantity":50,"size":5,"budget":100}`, wantField: "Quantity"},
	}
	for _, tt := range validationTests {
		t.Run(tt.name, func(t *testing.T) {
			router := setupTestRouter(t)

			w := doJSON(router, http.MethodPost, "/api/v1/bundles/match", tt.body)
			require.Equal(t, http.StatusBadRequest, w.Code)

			body := decodeBody(t, w)
			assert.Equal(t, "validation failed", body["error"])
			details, ok := body["details"].([]interface{})
			require.True(t, ok)
			require.NotEmpty(t, details)
			assert.Equal(t, tt.wantField, details[0].(map[string]interface{})["field"])
		})
	}

	t.Run("malformed JSON returns 400", func(t *testing.T) {
		router := setupTestRouter(t)

		w := doJSON(router, http.MethodPost, "/api/v1/bundles/match", `{"quantity":`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "malformed request body", decodeBody(t, w)["error"])
	})
}

func TestDrawLotteryEndpoint(t *testing.T) {
	t.Run("fills budget within tolerance", func(t *testing.T) {
		router := setupTestRouter(t)

		w := doJSON(router, http.MethodPost, "/api/v1/bundles/lottery", `{"budget":200}`)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		body := decodeBody(t, w)
		assert.Equal(t, true, body["success"])
		total, ok := body["totalValue"].(float64)
		require.True(t, ok)
		assert.LessOrEqual(t, total, float64(200+usecase.DefaultLotteryTolerance))

		brands := map[string]bool{}
		for _, raw := range body["items"].([]interface{}) {
			item := raw.(map[string]interface{})
			brand := item["brand"].(string)
			assert.False(t, brands[brand], "duplicate brand %s", brand)
			brands[brand] = true
		}
	})

	t.Run("budget outside range returns 400", func(t *testing.T) {
		router := setupTestRouter(t)

		for _, budget := range []string{"150", "1001"} {
			w := doJSON(router, http.MethodPost, "/api/v1/bundles/lottery", `{"budget":`+budget+`}`)
			assert.Equal(t, http.StatusBadRequest, w.Code, "budget %s", budget)
		}
	})

	t.Run("missing budget returns 400", func(t *testing.T) {
		router := setupTestRouter(t)

		w := doJSON(router, http.MethodPost, "/api/v1/bundles/lottery", `{}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestSearchProductsEndpoint(t *testing.T) {
	t.Run("hebrew note query is translated", func(t *testing.T) {
		router := setupTestRouter(t)

		w := doJSON(router, http.MethodGet, "/api/v1/products/search?q="+url.QueryEscape("ורד"), "")
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		body := decodeBody(t, w)
		assert.Equal(t, []interface{}{"rose"}, body["terms"])
		products := body["products"].([]interface{})
		require.Len(t, products, 1)
		product := products[0].(map[string]interface{})
		assert.Equal(t, "Oud Wood", product["name"])
		assert.Equal(t, float64(60), product["prices"].(map[string]interface{})["5"])
	})

	t.Run("empty query returns 400", func(t *testing.T) {
		router := setupTestRouter(t)

		w := doJSON(router, http.MethodGet, "/api/v1/products/search?q=", "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestDeduplicateRequestsEndpoint(t *testing.T) {
	t.Run("merges near duplicates", func(t *testing.T) {
		router := setupTestRouter(t)

		payload := `{"requests":[
			{"id":"r1","brand":"Creed","model":"Aventus","requester":"dana"},
			{"id":"r2","brand":"creed","model":"Aventis","requester":"yossi"},
			{"id":"r3","brand":"Dior","model":"Sauvage","requester":"noa"}
		]}`
		w := doJSON(router, http.MethodPost, "/api/v1/requests/dedup", payload)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		groups := decodeBody(t, w)["groups"].([]interface{})
		require.Len(t, groups, 2)
		first := groups[0].(map[string]interface{})
		assert.Equal(t, "Creed", first["brand"])
		assert.Equal(t, float64(2), first["count"])
		assert.Equal(t, []interface{}{"r1", "r2"}, first["requestIds"])
	})

	t.Run("empty request list returns 400", func(t *testing.T) {
		router := setupTestRouter(t)

		w := doJSON(router, http.MethodPost, "/api/v1/requests/dedup", `{"requests":[]}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestUnconfiguredServices(t *testing.T) {
	router := SetupRouter(testConfig(), NewHandler(nil, nil, nil))

	tests := []struct {
		method string
		path   string
		body   string
	}{
		{http.MethodPost, "/api/v1/bundles/match", `{"quantity":1,"size":5,"budget":50}`},
		{http.MethodPost, "/api/v1/bundles/lottery", `{"budget":300}`},
		{http.MethodGet, "/api/v1/products/search?q=rose", ""},
		{http.MethodPost, "/api/v1/requests/dedup", `{"requests":[{"id":"1","brand":"a","model":"b"}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			w := doJSON(router, tt.method, tt.path, tt.body)
			assert.Equal(t, http.StatusServiceUnavailable, w.Code)
			assert.Contains(t, decodeBody(t, w)["error"], "not configured")
		})
	}
}

// TestCORSIntegration tests CORS headers work end-to-end with full router
func TestCORSIntegration(t *testing.T) {
	router := setupTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))
}

func TestAPIVersioning(t *testing.T) {
	router := setupTestRouter(t)

	for _, path := range []string{"/bundles/match", "/api/bundles/match", "/api/v2/bundles/match"} {
		w := doJSON(router, http.MethodPost, path, `{}`)
		assert.Equal(t, http.StatusNotFound, w.Code, "path %s", path)
	}
}
