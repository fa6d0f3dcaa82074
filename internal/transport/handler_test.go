package transport

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"catalog/internal/config"
	"catalog/internal/middleware"
	repomemory "catalog/internal/repository/memory"
	"catalog/internal/service"
	storagememory "catalog/internal/storage/memory"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var testUploadConfig = config.UploadConfig{
	Folder:       "zeroFear/products",
	MaxFileBytes: 1024,
	MaxFiles:     3,
}

type testAPI struct {
	t      *testing.T
	router http.Handler
	media  *storagememory.Storage
}

func newTestAPI(t *testing.T, jwtSecret string) *testAPI {
	t.Helper()

	logger := zap.NewNop()
	store := repomemory.NewStore()
	media := storagememory.New("http://localhost:3000")

	r := chi.NewRouter()
	r.Use(middleware.ErrorHandlingMiddleware(logger))

	adminOnly := middleware.AdminOnly(jwtSecret, logger)
	NewCategoryHandler(service.NewCategoryService(store.Categories(), logger), logger).
		RegisterRoutes(r, adminOnly)
	NewProductHandler(service.NewProductService(store.Products(), store.Categories(), logger), logger).
		RegisterRoutes(r, adminOnly)
	NewUploadHandler(service.NewUploadService(media, testUploadConfig, logger), testUploadConfig, logger).
		RegisterRoutes(r, adminOnly)

	return &testAPI{t: t, router: r, media: media}
}

func (a *testAPI) do(method, path string, body any, headers ...string) *httptest.ResponseRecorder {
	a.t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if raw, ok := body.(string); ok {
			buf.WriteString(raw)
		} else {
			require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

func (a *testAPI) createCategory(name string) CategoryResponse {
	a.t.Helper()

	rec := a.do(http.MethodPost, "/categories", CategoryRequest{Name: name})
	require.Equal(a.t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp CategoryResponse
	require.NoError(a.t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func (a *testAPI) createProduct(body map[string]any) (*httptest.ResponseRecorder, ProductResponse) {
	a.t.Helper()

	rec := a.do(http.MethodPost, "/products", body)
	var resp ProductResponse
	if rec.Code == http.StatusCreated {
		require.NoError(a.t, json.Unmarshal(rec.Body.Bytes(), &resp))
	}
	return rec, resp
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) middleware.ErrorResponse {
	t.Helper()

	var resp middleware.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func mustToken(t *testing.T, secret, role string) string {
	t.Helper()

	token, err := middleware.IssueToken(secret, "backoffice", role, time.Hour)
	require.NoError(t, err)
	return token
}

func productBody(categoryID string) map[string]any {
	return map[string]any{
		"name":        "Test Product",
		"description": "Test description",
		"price":       99.99,
		"categoryId":  categoryID,
		"variants": []map[string]any{
			{"sku": "TEST-001-M", "size": "M", "stock": 10},
			{"sku": "TEST-001-L", "size": "l", "stock": 5, "price": "109.99"},
		},
		"images": []map[string]any{
			{"url": "https://cdn.test/back.jpg", "sortOrder": 2},
			{"url": "https://cdn.test/front.jpg", "sortOrder": 1, "isPrimary": true},
		},
	}
}
