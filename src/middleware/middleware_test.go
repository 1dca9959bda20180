package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"condominium-service/src/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthStub(t *testing.T, validToken, userID, role string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/tokens/validate", r.URL.Path)

		var req map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		json.NewEncoder(w).Encode(models.TokenValidateResponse{
			IsValid: req["token"] == validToken,
			UserID:  userID,
			Role:    role,
		})
	}))
}

func newGuardedRouter(m *Middleware, roles ...string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	handlers := []gin.HandlerFunc{m.AuthRequired()}
	if len(roles) > 0 {
		handlers = append(handlers, m.RequireRole(roles...))
	}
	router.GET("/guarded", append(handlers, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"actor": Actor(c)})
	})...)
	return router
}

func doGuarded(router *gin.Engine, authHeader string) *httptest.ResponseRecorder {
	recorder := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/guarded", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	router.ServeHTTP(recorder, req)
	return recorder
}

func TestAuthRequired(t *testing.T) {
	server := newAuthStub(t, "good-token", "R1", "concierge")
	defer server.Close()

	m := &Middleware{authServiceURL: server.URL, client: &http.Client{}}
	router := newGuardedRouter(m)

	assert.Equal(t, http.StatusUnauthorized, doGuarded(router, "").Code)
	assert.Equal(t, http.StatusUnauthorized, doGuarded(router, "good-token").Code)
	assert.Equal(t, http.StatusUnauthorized, doGuarded(router, "Bearer bad-token").Code)

	recorder := doGuarded(router, "Bearer good-token")
	require.Equal(t, http.StatusOK, recorder.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	assert.Equal(t, "R1", body["actor"])
}

func TestRequireRole(t *testing.T) {
	server := newAuthStub(t, "good-token", "R2", "resident")
	defer server.Close()

	m := &Middleware{authServiceURL: server.URL, client: &http.Client{}}

	staffOnly := newGuardedRouter(m, "admin", "concierge")
	assert.Equal(t, http.StatusForbidden, doGuarded(staffOnly, "Bearer good-token").Code)

	anyResident := newGuardedRouter(m, "resident")
	assert.Equal(t, http.StatusOK, doGuarded(anyResident, "Bearer good-token").Code)
}

func TestAuthenticatorErrorStatus(t *testing.T) {
	var requests int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		http.Error(w, "validation backend down", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	m := &Middleware{authServiceURL: server.URL, client: &http.Client{}}
	router := newGuardedRouter(m)

	// Repeated failures must not pile up leaked connections; the reply
	// body is closed on the error-status path too.
	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusUnauthorized, doGuarded(router, "Bearer good-token").Code)
	}
	assert.Equal(t, 5, requests)
}

func TestAuthenticatorDown(t *testing.T) {
	server := newAuthStub(t, "good-token", "R1", "admin")
	server.Close()

	m := &Middleware{authServiceURL: server.URL, client: &http.Client{}}
	router := newGuardedRouter(m)

	assert.Equal(t, http.StatusUnauthorized, doGuarded(router, "Bearer good-token").Code)
}

func TestActorFallsBackToSystem(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/open", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"actor": Actor(c)})
	})

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/open", nil))
	require.Equal(t, http.StatusOK, recorder.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	assert.Equal(t, "system", body["actor"])
}
