package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/alchemorsel-mobile/backend/internal/middleware"
)

func login(r http.Handler, remoteAddr, forwardedFor string) int {
	req := httptest.NewRequest(http.MethodPost, "/login", nil)
	req.RemoteAddr = remoteAddr
	req.Header.Set("X-Forwarded-For", forwardedFor)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w.Code
}

func TestForwardedForIsIgnoredWithoutTrustedProxies(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r, err := newEngine(nil)
	require.NoError(t, err)
	r.Use(middleware.ErrorHandler(nil))
	r.POST("/login", middleware.NewIPRateLimiter(0.001, 1).Middleware(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	assert.Equal(t, http.StatusOK, login(r, "203.0.113.7:5000", "1.2.3.4"))
	assert.Equal(t, http.StatusTooManyRequests, login(r, "203.0.113.7:5000", "1.2.3.5"))
}

func TestForwardedForFromTrustedProxy(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r, err := newEngine([]string{"10.0.0.0/8"})
	require.NoError(t, err)
	r.Use(middleware.ErrorHandler(nil))
	r.POST("/login", middleware.NewIPRateLimiter(0.001, 1).Middleware(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	assert.Equal(t, http.StatusOK, login(r, "10.0.0.2:5000", "1.2.3.4"))
	assert.Equal(t, http.StatusOK, login(r, "10.0.0.2:5000", "1.2.3.5"))
	assert.Equal(t, http.StatusTooManyRequests, login(r, "10.0.0.2:5000", "1.2.3.5"))
}

func TestNewEngineRejectsBadProxy(t *testing.T) {
	_, err := newEngine([]string{"not-an-ip"})
	assert.Error(t, err)
}
