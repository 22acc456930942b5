package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	analysisDelivery "mailsweep-backend/internal/analysis/delivery"
	authDelivery "mailsweep-backend/internal/auth/delivery"
	emailDelivery "mailsweep-backend/internal/email/delivery"
	labelsDelivery "mailsweep-backend/internal/labels/delivery"
	sendersDelivery "mailsweep-backend/internal/senders/delivery"
	"mailsweep-backend/pkg/config"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func newTestEngine() *gin.Engine {
	gin.SetMode(gin.TestMode)
	resolver := authDelivery.NewResolver(nil, "")
	h := NewHandler(
		nil,
		authDelivery.NewAuthHandler(nil, 3600, false),
		analysisDelivery.NewAnalysisHandler(nil, resolver),
		sendersDelivery.NewSendersHandler(nil, resolver, ""),
		labelsDelivery.NewLabelsHandler(nil, resolver),
		emailDelivery.NewEmailHandler(nil, resolver),
		&config.Config{},
		nil,
	)
	return h.Engine()
}

func serve(r http.Handler, method, path string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHealthAndMetrics(t *testing.T) {
	r := newTestEngine()

	w := serve(r, http.MethodGet, "/api/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	w = serve(r, http.MethodGet, "/api/metrics", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), "http_request_duration_seconds"))
}

func TestCORSPreflight(t *testing.T) {
	w := serve(newTestEngine(), http.MethodOptions, "/api/unsubscribe", map[string]string{"Origin": "http://localhost:3000"})

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
}

func TestSessionRoutesRejectAnonymous(t *testing.T) {
	r := newTestEngine()
	for _, path := range []string{"/api/auth/me", "/api/safe-senders", "/api/gmail-labels", "/api/gmail-labels/fetch-labels"} {
		w := serve(r, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
	}
}

func TestCronRouteWithoutSecretIsClosed(t *testing.T) {
	w := serve(newTestEngine(), http.MethodGet, "/api/cron/delete-marked-emails", map[string]string{"Authorization": "Bearer "})

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
