package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/diedornot/lifecheck/pkg/config"
)

type pingController struct{}

func (pingController) BasePath() string { return "ping/" }

func (pingController) Register(rg *gin.RouterGroup) error {
	rg.GET("", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	return nil
}

func (pingController) Handlers() []gin.HandlerFunc { return nil }

func newTestServer(t *testing.T) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	return NewServer(zaptest.NewLogger(t), config.Config{}, false)
}

func TestHealthEndpoint(t *testing.T) {
	server := newTestServer(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/healthz", nil)
	server.Engine().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
}

func TestMetricsEndpoint(t *testing.T) {
	server := newTestServer(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	server.Engine().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "lifecheck_")
}

func TestRegisterAllMountsControllers(t *testing.T) {
	server := newTestServer(t)
	require.NoError(t, server.RegisterAll([]APIController{pingController{}}))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/ping", nil)
	server.Engine().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pong", w.Body.String())
}
