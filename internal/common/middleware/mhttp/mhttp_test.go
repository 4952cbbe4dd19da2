package mhttp

import (
	"go-friendship/internal/common/response"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func newEngine(mw ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(mw...)
	engine.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(response.RequestIDKey))
	})
	return engine
}

func TestAccessLogAssignsRequestID(t *testing.T) {
	engine := newEngine(AccessLog())

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	id := w.Header().Get(RequestIDHeader)
	_, err := uuid.Parse(id)
	assert.NoError(t, err)
	assert.Equal(t, id, w.Body.String())

	r := httptest.NewRequest(http.MethodGet, "/ping", nil)
	r.Header.Set(RequestIDHeader, "upstream-id")
	w = httptest.NewRecorder()
	engine.ServeHTTP(w, r)
	assert.Equal(t, "upstream-id", w.Header().Get(RequestIDHeader))
	assert.Equal(t, "upstream-id", w.Body.String())
}

func TestCors(t *testing.T) {
	engine := newEngine(Cors(CorsConfig{Enable: true, AllowOrigins: []string{"http://localhost:3000"}}))

	r := httptest.NewRequest(http.MethodGet, "/ping", nil)
	r.Header.Set("Origin", "http://localhost:3000")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, r)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))

	r = httptest.NewRequest(http.MethodGet, "/ping", nil)
	r.Header.Set("Origin", "http://evil.example")
	w = httptest.NewRecorder()
	engine.ServeHTTP(w, r)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestTraceDisabledPassesThrough(t *testing.T) {
	engine := newEngine(Trace())
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}
