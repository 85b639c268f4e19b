package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/metrics"
)

func TestRequestLogging(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := gin.New()
	r.Use(RequestLogging(metrics.NewHTTP(reg)))
	r.GET("/rest/v1/:table", func(c *gin.Context) { c.Status(http.StatusOK) })

	t.Run("generates_request_id", func(t *testing.T) {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/rest/v1/transactions", http.NoBody))
		if rec.Header().Get("X-Request-ID") == "" {
			t.Error("expected X-Request-ID header")
		}
	})

	t.Run("keeps_incoming_request_id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/rest/v1/categories", http.NoBody)
		req.Header.Set("X-Request-ID", "abc-123")
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		if got := rec.Header().Get("X-Request-ID"); got != "abc-123" {
			t.Errorf("X-Request-ID = %q", got)
		}
	})

	t.Run("records_route_template", func(t *testing.T) {
		expected := `
# HELP fintrack_http_requests_total Total number of HTTP requests served
# TYPE fintrack_http_requests_total counter
fintrack_http_requests_total{method="GET",route="/rest/v1/:table",status="200"} 2
`
		if err := promtestutil.GatherAndCompare(reg, strings.NewReader(expected), "fintrack_http_requests_total"); err != nil {
			t.Error(err)
		}
	})
}

func TestErrorHandler(t *testing.T) {
	r := gin.New()
	r.Use(ErrorHandler())
	r.GET("/app", func(c *gin.Context) { _ = c.Error(apperrors.ErrTransactionNotFound) })
	r.GET("/plain", func(c *gin.Context) { _ = c.Error(http.ErrHandlerTimeout) })
	r.GET("/bind", func(c *gin.Context) { _ = c.Error(http.ErrBodyNotAllowed).SetType(gin.ErrorTypeBind) })
	r.NoRoute(NoRoute())

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/app", http.NoBody))
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
	assertErrorCode(t, rec, "TRANSACTION_NOT_FOUND")

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/plain", http.NoBody))
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
	assertErrorCode(t, rec, "INTERNAL_ERROR")

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/bind", http.NoBody))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
	assertErrorCode(t, rec, "INVALID_INPUT")

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nowhere", http.NoBody))
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
	assertErrorCode(t, rec, "NOT_FOUND")
}
