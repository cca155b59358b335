package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"kondate-planner/internal/core/session"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newEngine(mw ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(mw...)
	ok := func(c *gin.Context) { c.String(http.StatusOK, "ok") }
	r.GET("/ping", ok)
	r.POST("/ping", ok)
	return r
}

func do(r http.Handler, method, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, "/ping", strings.NewReader(body))
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRateLimit(t *testing.T) {
	r := newEngine(RateLimit(2, time.Hour))

	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "", nil).Code)
	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "", nil).Code)

	w := do(r, http.MethodGet, "", nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "3600", w.Header().Get("Retry-After"))
	assert.Contains(t, w.Body.String(), "TOO_MANY_REQUESTS")
}

func TestRateLimitDisabledWhenUnset(t *testing.T) {
	r := newEngine(RateLimit(0, 0))
	for i := 0; i < 50; i++ {
		require.Equal(t, http.StatusOK, do(r, http.MethodGet, "", nil).Code)
	}
}

func TestDeduplication(t *testing.T) {
	r := newEngine(Deduplication(time.Hour))

	assert.Equal(t, http.StatusOK, do(r, http.MethodPost, `{"a":1}`, nil).Code)
	assert.Equal(t, http.StatusTooManyRequests, do(r, http.MethodPost, `{"a":1}`, nil).Code)
	assert.Equal(t, http.StatusOK, do(r, http.MethodPost, `{"a":2}`, nil).Code)
	assert.Equal(t, http.StatusOK, do(r, http.MethodPost, `{"a":1}`, map[string]string{SessionHeader: "other"}).Code)

	// GET 不去重
	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "", nil).Code)
	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "", nil).Code)
}

func TestDeduplicatorWindow(t *testing.T) {
	d := NewDeduplicator(50 * time.Millisecond)
	now := time.Now()
	assert.False(t, d.Seen("fp", now))
	assert.True(t, d.Seen("fp", now.Add(10*time.Millisecond)))
	assert.False(t, d.Seen("fp", now.Add(200*time.Millisecond)))
}

func TestBodySizeLimit(t *testing.T) {
	r := newEngine(BodySizeLimit(8))

	assert.Equal(t, http.StatusOK, do(r, http.MethodPost, "small", nil).Code)
	w := do(r, http.MethodPost, strings.Repeat("x", 64), nil)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Contains(t, w.Body.String(), "REQUEST_TOO_LARGE")
}

func TestRecovery(t *testing.T) {
	r := gin.New()
	r.Use(Recovery())
	r.GET("/panic", func(c *gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "INTERNAL_ERROR")
}

func TestTimeout(t *testing.T) {
	r := gin.New()
	r.Use(Timeout(10 * time.Millisecond))
	r.GET("/slow", func(c *gin.Context) {
		<-c.Request.Context().Done()
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/slow", nil))
	assert.Equal(t, http.StatusGatewayTimeout, w.Code)
}

func TestSession(t *testing.T) {
	registry := session.NewRegistry(10, time.Hour)
	var seen *session.State
	r := gin.New()
	r.Use(Session(registry))
	r.GET("/ping", func(c *gin.Context) {
		st, ok := StateFrom(c)
		require.True(t, ok)
		seen = st
		c.String(http.StatusOK, c.GetString(SessionIDKey))
	})

	w := do(r, http.MethodGet, "", nil)
	id := w.Header().Get(SessionHeader)
	require.NotEmpty(t, id)
	assert.Equal(t, id, w.Body.String())
	first := seen

	w = do(r, http.MethodGet, "", map[string]string{SessionHeader: id})
	assert.Equal(t, id, w.Header().Get(SessionHeader))
	assert.Same(t, first, seen)

	w = do(r, http.MethodGet, "", map[string]string{SessionHeader: "unknown"})
	assert.NotEqual(t, "unknown", w.Header().Get(SessionHeader))
	assert.Equal(t, 2, registry.Len())
}

func TestEndSession(t *testing.T) {
	registry := session.NewRegistry(10, time.Hour)
	r := gin.New()
	r.Use(Session(registry))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.DELETE("/ping", EndSession(registry))

	id := do(r, http.MethodGet, "", nil).Header().Get(SessionHeader)
	require.Equal(t, 1, registry.Len())

	w := do(r, http.MethodDelete, "", map[string]string{SessionHeader: id})
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Header().Get(SessionHeader))
	assert.Equal(t, 0, registry.Len())

	_, ok := registry.Get(id)
	assert.False(t, ok)
}
