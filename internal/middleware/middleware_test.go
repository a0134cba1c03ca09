package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"print-order-service/internal/logging"
	"print-order-service/internal/metrics"
	"print-order-service/internal/service"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeAuth struct {
	users map[string]*service.AuthUser
	err   error
}

func (f fakeAuth) ValidateToken(_ context.Context, token string) (*service.AuthUser, error) {
	if f.err != nil {
		return nil, f.err
	}
	if u, ok := f.users[token]; ok {
		return u, nil
	}
	return nil, service.ErrInvalidToken
}

var auth = fakeAuth{users: map[string]*service.AuthUser{
	"buyer": {ID: "u1", Name: "Ada", Email: "ada@example.com", Enabled: true},
	"boss":  {ID: "a1", Name: "Root", Permissions: []string{"admin"}, Enabled: true},
}}

func newRouter(a service.Authenticator) *gin.Engine {
	r := gin.New()
	r.Use(AuthMiddleware(a))
	r.GET("/me", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"id":    c.GetString(UserIDKey),
			"email": c.GetString(UserEmailKey),
		})
	})
	r.GET("/admin", AdminOnly(), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r
}

func do(r http.Handler, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	r := newRouter(auth)

	w := do(r, "/me", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(r, "/me", "nope")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(r, "/me", "buyer")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":"u1","email":"ada@example.com"}`, w.Body.String())
}

func TestAuthMiddlewareUpstreamError(t *testing.T) {
	r := newRouter(fakeAuth{err: errors.New("connection refused")})

	w := do(r, "/me", "buyer")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAdminOnly(t *testing.T) {
	r := newRouter(auth)

	assert.Equal(t, http.StatusForbidden, do(r, "/admin", "buyer").Code)
	assert.Equal(t, http.StatusNoContent, do(r, "/admin", "boss").Code)
}

func TestRequestIDEchoesOrGenerates(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString("requestID")) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
	assert.Equal(t, "abc-123", w.Body.String())

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Len(t, w.Header().Get(RequestIDHeader), 36)
}

func TestRequestLoggerScopesLogger(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	m := metrics.New(prometheus.NewRegistry())

	r := gin.New()
	r.Use(RequestID(), RequestLogger(zap.New(core), m))
	r.GET("/orders/:id", func(c *gin.Context) {
		logging.FromContext(c.Request.Context()).Info("inside handler")
		c.Status(http.StatusNotFound)
	})

	req := httptest.NewRequest(http.MethodGet, "/orders/42", nil)
	req.Header.Set(RequestIDHeader, "rid-1")
	r.ServeHTTP(httptest.NewRecorder(), req)

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "inside handler", entries[0].Message)
	assert.Equal(t, "rid-1", entries[0].ContextMap()["request_id"])

	assert.Equal(t, "request rejected", entries[1].Message)
	assert.Equal(t, "/orders/:id", entries[1].ContextMap()["route"])
	assert.Equal(t, int64(404), entries[1].ContextMap()["status"])
}
