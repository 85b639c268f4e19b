package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func setupAPIKeyRouter(anonKey string) *gin.Engine {
	r := gin.New()
	r.Use(APIKeyMiddleware(anonKey))
	r.POST("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	return r
}

func doRequest(r *gin.Engine, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/test", http.NoBody)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func parseBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse response body: %v", err)
	}
	return result
}

func assertErrorCode(t *testing.T, rec *httptest.ResponseRecorder, code string) {
	t.Helper()
	body := parseBody(t, rec)
	errObj, ok := body["error"].(map[string]interface{})
	if !ok {
		t.Fatal("expected error object in response")
	}
	if got, _ := errObj["code"].(string); got != code {
		t.Errorf("error code = %q, want %q", got, code)
	}
}

func TestAPIKeyMiddleware(t *testing.T) {
	tests := []struct {
		name          string
		configuredKey string
		requestKey    string
		wantStatus    int
	}{
		{name: "valid_key", configuredKey: "anon-key", requestKey: "anon-key", wantStatus: http.StatusOK},
		{name: "invalid_key", configuredKey: "anon-key", requestKey: "wrong-key", wantStatus: http.StatusUnauthorized},
		{name: "missing_key", configuredKey: "anon-key", requestKey: "", wantStatus: http.StatusUnauthorized},
		{name: "empty_configured_key", configuredKey: "", requestKey: "", wantStatus: http.StatusUnauthorized},
		{name: "partial_match_rejected", configuredKey: "anon-key", requestKey: "anon", wantStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(setupAPIKeyRouter(tt.configuredKey), map[string]string{"apikey": tt.requestKey})

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantStatus != http.StatusOK {
				assertErrorCode(t, rec, "INVALID_API_KEY")
				return
			}
			if status, _ := parseBody(t, rec)["status"].(string); status != "ok" {
				t.Errorf("expected handler to be reached, got status = %q", status)
			}
		})
	}
}
