package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"smellsense/internal/config"
	"smellsense/internal/controller"
	"smellsense/internal/service"
	"smellsense/internal/smells"
	"smellsense/pkg/mcp"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const deadCode = "public void run() {\n    if (false) {\n        cleanup();\n    }\n    process();\n}\n"

func newRouter(t *testing.T, mutate func(*config.Config)) http.Handler {
	t.Helper()
	cfg := config.Default()
	if mutate != nil {
		mutate(cfg)
	}
	svc, err := service.NewSmellService(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { svc.Close(context.Background()) })

	return SetupRouter(
		controller.NewSmellController(svc, cfg.App.NumWorkers, zap.NewNop()),
		mcp.NewSmellServer(svc, zap.NewNop()),
		zap.NewNop())
}

func do(t *testing.T, h http.Handler, method, path string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decoded), rec.Body.String())
	return rec, decoded
}

func TestHealth(t *testing.T) {
	rec, body := do(t, newRouter(t, nil), http.MethodGet, "/api/v1/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "healthy", body["status"])
}

func TestClassifyEndpoint(t *testing.T) {
	rec, body := do(t, newRouter(t, nil), http.MethodPost, "/api/v1/classify", map[string]any{
		"code":     deadCode,
		"language": "java",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, body["request_id"], 36)

	verdict := body["verdict"].(map[string]any)
	assert.Equal(t, string(smells.DeadCode), verdict["primary_smell"])
	assert.Equal(t, true, verdict["degraded"])
	assert.NotNil(t, verdict["secondary_smells"])
	assert.NotEmpty(t, verdict["rationale"])
}

func TestClassifyEndpointRejectsBadInput(t *testing.T) {
	router := newRouter(t, nil)

	rec, body := do(t, router, http.MethodPost, "/api/v1/classify", map[string]any{"code": "   "})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid request payload", body["error"])
	assert.NotEmpty(t, body["request_id"])

	rec, _ = do(t, router, http.MethodPost, "/api/v1/classify", map[string]any{"code": deadCode, "save": true})
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestClassifyEndpointRecords(t *testing.T) {
	router := newRouter(t, func(cfg *config.Config) {
		cfg.Store.Backend = config.StoreKuzu
		cfg.Kuzu.Path = ":memory:"
	})

	rec, body := do(t, router, http.MethodPost, "/api/v1/classify", map[string]any{
		"code": deadCode,
		"path": "src/Runner.java",
		"save": true,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	recordID := body["record_id"]
	assert.NotEmpty(t, recordID)

	rec, body = do(t, router, http.MethodGet, "/api/v1/history?limit=5", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	records := body["records"].([]any)
	require.Len(t, records, 1)
	assert.Equal(t, recordID, records[0].(map[string]any)["id"])

	stats := body["stats"].(map[string]any)
	assert.Equal(t, map[string]any{"DeadCode": float64(1)}, stats["primary"])
}

func TestHistoryEndpoint(t *testing.T) {
	router := newRouter(t, nil)

	rec, _ := do(t, router, http.MethodGet, "/api/v1/history", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec, body := do(t, router, http.MethodGet, "/api/v1/history?limit=abc", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid limit", body["error"])
}

func TestClassifyBatchEndpoint(t *testing.T) {
	router := newRouter(t, nil)

	rec, body := do(t, router, http.MethodPost, "/api/v1/classifyBatch", map[string]any{
		"items": []map[string]any{
			{"code": deadCode, "language": "java"},
			{"code": "def add(left, right):\n    return left + right\n", "language": "python"},
		},
	})
	require.Equal(t, http.StatusOK, rec.Code)
	verdicts := body["verdicts"].([]any)
	require.Len(t, verdicts, 2)
	assert.Equal(t, "DeadCode", verdicts[0].(map[string]any)["primary_smell"])
	assert.Equal(t, "Clean", verdicts[1].(map[string]any)["primary_smell"])

	rec, _ = do(t, router, http.MethodPost, "/api/v1/classifyBatch", map[string]any{"items": []any{}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTaxonomyEndpoint(t *testing.T) {
	rec, body := do(t, newRouter(t, nil), http.MethodGet, "/api/v1/taxonomy", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	entries := body["smells"].([]any)
	require.Len(t, entries, len(smells.AllKinds()))
	first := entries[0].(map[string]any)
	assert.Equal(t, "GodClass", first["smell"])
	assert.Equal(t, "structural", first["class"])
	assert.Equal(t, float64(0), first["priority"])
	assert.True(t, strings.EqualFold("clean", entries[len(entries)-1].(map[string]any)["smell"].(string)))
}

func TestRecoveryMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(CustomRecoveryMiddleware(zap.NewNop()))
	router.GET("/panic", func(c *gin.Context) {
		panic("detector exploded")
	})

	rec, body := do(t, router, http.MethodGet, "/panic", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Internal server error", body["error"])
}
