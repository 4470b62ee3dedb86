package users

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/diedornot/lifecheck/pkg/store"
)

func newTestRouter(t *testing.T) (*gin.Engine, *store.Memory) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mem := store.NewMemory()
	controller := NewController(zaptest.NewLogger(t).Sugar(), mem)

	engine := gin.New()
	require.NoError(t, controller.Register(engine.Group("api/users")))
	return engine, mem
}

func TestHandleGetUser(t *testing.T) {
	router, mem := newTestRouter(t)
	mem.AddUser(store.User{ID: "u1", DisplayName: "Alice", EmergencyContact: "sos@example.com"})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/users/u1", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var user store.User
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &user))
	assert.Equal(t, "Alice", user.DisplayName)
	assert.Equal(t, "sos@example.com", user.EmergencyContact)
}

func TestHandleGetUserNotFound(t *testing.T) {
	router, _ := newTestRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/users/missing", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "NOT_FOUND")
}
