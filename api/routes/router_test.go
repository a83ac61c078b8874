package routes

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	stocksvc "github.com/kitstore/uniform-stock-backend/internal/stock"
	uniformsvc "github.com/kitstore/uniform-stock-backend/internal/uniforms"
	"github.com/kitstore/uniform-stock-backend/pkg/config"
	"github.com/kitstore/uniform-stock-backend/pkg/db"
	"github.com/kitstore/uniform-stock-backend/pkg/db/models"
	"github.com/kitstore/uniform-stock-backend/pkg/enums"
	"github.com/kitstore/uniform-stock-backend/pkg/logger"
	"github.com/kitstore/uniform-stock-backend/pkg/metrics"
)

type stubPinger struct {
	err error
}

func (s stubPinger) Ping(context.Context) error {
	return s.err
}

func setupRouterTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%x?mode=memory&cache=shared", sha1.Sum([]byte(t.Name())))
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	statements := []string{`
CREATE TABLE IF NOT EXISTS stock_records (
  id TEXT PRIMARY KEY,
  category TEXT NOT NULL,
  item_type TEXT NOT NULL,
  size TEXT NOT NULL DEFAULT '',
  quantity INTEGER NOT NULL DEFAULT 0,
  status TEXT NOT NULL DEFAULT 'out_of_stock',
  low_stock_threshold INTEGER NOT NULL DEFAULT 5,
  image_url TEXT,
  size_chart_url TEXT,
  price NUMERIC,
  created_at DATETIME,
  updated_at DATETIME
);`, `
CREATE TABLE IF NOT EXISTS member_uniforms (
  id TEXT PRIMARY KEY,
  member_id TEXT NOT NULL UNIQUE,
  created_at DATETIME,
  updated_at DATETIME
);`, `
CREATE TABLE IF NOT EXISTS member_uniform_items (
  id TEXT PRIMARY KEY,
  uniform_id TEXT NOT NULL,
  item_key TEXT NOT NULL,
  category TEXT NOT NULL,
  item_type TEXT NOT NULL,
  size TEXT NOT NULL DEFAULT '',
  quantity INTEGER NOT NULL DEFAULT 1,
  color TEXT,
  notes TEXT,
  status TEXT NOT NULL DEFAULT 'available',
  missing_count INTEGER NOT NULL DEFAULT 0,
  received_date DATETIME,
  created_at DATETIME,
  updated_at DATETIME,
  UNIQUE (uniform_id, item_key)
);`}
	for _, stmt := range statements {
		require.NoError(t, conn.Exec(stmt).Error)
	}
	return conn
}

func newTestRouter(t *testing.T) (http.Handler, *gorm.DB) {
	t.Helper()

	conn := setupRouterTestDB(t)
	dbClient := db.NewFromConn(conn)
	logg := logger.New(logger.Options{ServiceName: "router-test", Output: io.Discard})

	cfg := &config.Config{
		App: config.AppConfig{Env: "test", Port: "0"},
		// Window of zero disables throttling; the router tests exercise
		// routing, not the limiter.
		RateLimit: config.RateLimitConfig{UpdateWindow: 0},
		Reconcile: config.ReconcileConfig{IdempotencyTTL: 10 * time.Second},
	}

	registry := prometheus.NewRegistry()
	reconcileMetrics := metrics.NewReconcileMetrics(registry)

	stockRepo := stocksvc.NewRepository(conn)
	stockService := stocksvc.NewService(stockRepo, dbClient, logg)
	uniformService := uniformsvc.NewService(uniformsvc.NewRepository(conn), stockRepo, dbClient, logg, reconcileMetrics)

	handler := NewRouter(cfg, logg, stubPinger{}, nil, registry, reconcileMetrics, stockService, uniformService)
	return handler, conn
}

func seedRouterStockRow(t *testing.T, conn *gorm.DB, category, itemType, size string, qty, threshold int) *models.StockRecord {
	t.Helper()

	record := &models.StockRecord{
		ID:                uuid.New(),
		Category:          category,
		ItemType:          itemType,
		Size:              size,
		Quantity:          qty,
		Status:            enums.DeriveStockStatus(qty, threshold),
		LowStockThreshold: threshold,
	}
	require.NoError(t, conn.Create(record).Error)
	return record
}

func doJSON(t *testing.T, handler http.Handler, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var payload map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload), "body: %s", rec.Body.String())
	return payload
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()

	payload := decodeEnvelope(t, rec)
	errObj, ok := payload["error"].(map[string]any)
	require.True(t, ok, "expected error envelope, got: %s", rec.Body.String())
	code, _ := errObj["code"].(string)
	return code
}

func TestHealthLive(t *testing.T) {
	handler, _ := newTestRouter(t)

	rec := doJSON(t, handler, http.MethodGet, "/health/live", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "test", rec.Header().Get("X-KitStore-Env"))
}

func TestHealthReadyReportsDependencyFailure(t *testing.T) {
	conn := setupRouterTestDB(t)
	dbClient := db.NewFromConn(conn)
	logg := logger.New(logger.Options{ServiceName: "router-test", Output: io.Discard})
	cfg := &config.Config{App: config.AppConfig{Env: "test"}}

	stockRepo := stocksvc.NewRepository(conn)
	stockService := stocksvc.NewService(stockRepo, dbClient, logg)
	uniformService := uniformsvc.NewService(uniformsvc.NewRepository(conn), stockRepo, dbClient, logg, nil)

	handler := NewRouter(cfg, logg, stubPinger{err: fmt.Errorf("connection refused")}, nil, nil, nil, stockService, uniformService)

	rec := doJSON(t, handler, http.MethodGet, "/health/ready", nil)
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "DEPENDENCY_ERROR", errorCode(t, rec))
}

func TestMetricsEndpoint(t *testing.T) {
	handler, _ := newTestRouter(t)

	rec := doJSON(t, handler, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "reconcile_consistency_faults_total")
}

func TestMemberUniformLifecycle(t *testing.T) {
	handler, conn := newTestRouter(t)
	boot := seedRouterStockRow(t, conn, "Boots", "Boot", "8", 10, 5)

	update := map[string]any{
		"items": []map[string]any{{
			"category": "Boots",
			"type":     "Boot",
			"size":     "UK 8",
			"quantity": 1,
			"status":   "available",
		}},
	}

	rec := doJSON(t, handler, http.MethodPut, "/api/v1/members/member-100/uniforms", update)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var row models.StockRecord
	require.NoError(t, conn.First(&row, "id = ?", boot.ID).Error)
	assert.Equal(t, 9, row.Quantity)

	rec = doJSON(t, handler, http.MethodGet, "/api/v1/members/member-100/uniforms", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	payload := decodeEnvelope(t, rec)
	data, ok := payload["data"].(map[string]any)
	require.True(t, ok)
	items, ok := data["items"].([]any)
	require.True(t, ok)
	require.Len(t, items, 1)
	first, ok := items[0].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "8", first["size"])
	assert.Equal(t, "available", first["status"])

	rec = doJSON(t, handler, http.MethodDelete, "/api/v1/members/member-100/uniforms", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	// The wipe is administrative; nothing goes back on the shelf.
	require.NoError(t, conn.First(&row, "id = ?", boot.ID).Error)
	assert.Equal(t, 9, row.Quantity)

	rec = doJSON(t, handler, http.MethodGet, "/api/v1/members/member-100/uniforms", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NOT_FOUND", errorCode(t, rec))
}

func TestMemberUniformUpdateUnmatchedStock(t *testing.T) {
	handler, _ := newTestRouter(t)

	update := map[string]any{
		"items": []map[string]any{{
			"category": "Boots",
			"type":     "Boot",
			"size":     "UK 13",
			"quantity": 1,
			"status":   "available",
		}},
	}

	rec := doJSON(t, handler, http.MethodPut, "/api/v1/members/member-101/uniforms", update)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "UNMATCHED_STOCK", errorCode(t, rec))

	payload := decodeEnvelope(t, rec)
	errObj := payload["error"].(map[string]any)
	details, ok := errObj["details"].(map[string]any)
	require.True(t, ok)
	searched, _ := details["searched_key"].(string)
	assert.Contains(t, searched, "boots::boot")
}

func TestMemberUniformUpdateRejectsEmptyItems(t *testing.T) {
	handler, _ := newTestRouter(t)

	rec := doJSON(t, handler, http.MethodPut, "/api/v1/members/member-102/uniforms", map[string]any{"items": []map[string]any{}})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_ERROR", errorCode(t, rec))
}

func TestMemberUniformUpdateRejectsUnknownStatus(t *testing.T) {
	handler, _ := newTestRouter(t)

	update := map[string]any{
		"items": []map[string]any{{
			"category": "Boots",
			"type":     "Boot",
			"size":     "UK 8",
			"quantity": 1,
			"status":   "mislaid",
		}},
	}

	rec := doJSON(t, handler, http.MethodPut, "/api/v1/members/member-103/uniforms", update)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_ERROR", errorCode(t, rec))
}

func TestStockRecordLifecycle(t *testing.T) {
	handler, _ := newTestRouter(t)

	create := map[string]any{
		"category":            "Boots",
		"type":                "Boot",
		"size":                "UK 8",
		"quantity":            12,
		"low_stock_threshold": 5,
	}
	rec := doJSON(t, handler, http.MethodPost, "/api/v1/stock", create)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	payload := decodeEnvelope(t, rec)
	data := payload["data"].(map[string]any)
	id, _ := data["id"].(string)
	require.NotEmpty(t, id)
	// Sizes are stored canonically, with the retailer prefix stripped.
	assert.Equal(t, "8", data["size"])
	assert.Equal(t, "in_stock", data["status"])

	rec = doJSON(t, handler, http.MethodGet, "/api/v1/stock?category=Boots", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	listPayload := decodeEnvelope(t, rec)
	records, ok := listPayload["data"].([]any)
	require.True(t, ok)
	require.Len(t, records, 1)

	rec = doJSON(t, handler, http.MethodPut, "/api/v1/stock/"+id, map[string]any{"quantity": 3})
	require.Equal(t, http.StatusOK, rec.Code)
	updated := decodeEnvelope(t, rec)["data"].(map[string]any)
	assert.Equal(t, float64(3), updated["quantity"])
	assert.Equal(t, "low_stock", updated["status"])

	rec = doJSON(t, handler, http.MethodGet, "/api/v1/stock/low", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	lowPayload := decodeEnvelope(t, rec)
	low, ok := lowPayload["data"].([]any)
	require.True(t, ok)
	require.Len(t, low, 1)

	rec = doJSON(t, handler, http.MethodDelete, "/api/v1/stock/"+id, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, handler, http.MethodGet, "/api/v1/stock/"+id, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NOT_FOUND", errorCode(t, rec))
}

func TestStockRecordDuplicateTripleConflict(t *testing.T) {
	handler, conn := newTestRouter(t)
	require.NoError(t, conn.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS idx_stock_triple ON stock_records (category, item_type, size)`).Error)

	create := map[string]any{
		"category": "Others",
		"type":     "Beret",
		"size":     "6 3/4",
		"quantity": 4,
	}
	rec := doJSON(t, handler, http.MethodPost, "/api/v1/stock", create)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = doJSON(t, handler, http.MethodPost, "/api/v1/stock", create)
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "CONFLICT", errorCode(t, rec))
}

func TestStockRecordInvalidID(t *testing.T) {
	handler, _ := newTestRouter(t)

	rec := doJSON(t, handler, http.MethodGet, "/api/v1/stock/not-a-uuid", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_ERROR", errorCode(t, rec))
}
