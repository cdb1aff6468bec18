package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"busreserve/config"
	"busreserve/models"
	"busreserve/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func protectedRouter(capability models.Capability) *gin.Engine {
	r := gin.New()
	r.GET("/p", JWTAuthMiddleware(), RequireCapability(capability), func(c *gin.Context) {
		participant, _ := GetParticipant(c)
		c.JSON(http.StatusOK, participant)
	})
	return r
}

func doGet(r http.Handler, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestJWTAuthMiddleware(t *testing.T) {
	r := protectedRouter(models.CapRead)

	t.Run("missing header", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, doGet(r, "/p", "").Code)
	})

	t.Run("garbage token", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, doGet(r, "/p", "not-a-jwt").Code)
	})

	t.Run("expired token", func(t *testing.T) {
		token, err := utils.GenerateToken("u1", "user", -time.Minute)
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, doGet(r, "/p", token).Code)
	})

	t.Run("unknown role", func(t *testing.T) {
		token, err := utils.GenerateToken("u1", "conductor", time.Hour)
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, doGet(r, "/p", token).Code)
	})

	t.Run("valid token sets participant", func(t *testing.T) {
		token, err := utils.GenerateToken("driver-7", "driver", time.Hour)
		require.NoError(t, err)
		w := doGet(r, "/p", token)
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"kind":"driver","id":"driver-7"}`, w.Body.String())
	})
}

func TestRequireCapability(t *testing.T) {
	r := protectedRouter(models.CapComplete)

	userToken, err := utils.GenerateToken("u1", "user", time.Hour)
	require.NoError(t, err)
	driverToken, err := utils.GenerateToken("d1", "driver", time.Hour)
	require.NoError(t, err)

	assert.Equal(t, http.StatusForbidden, doGet(r, "/p", userToken).Code)
	assert.Equal(t, http.StatusOK, doGet(r, "/p", driverToken).Code)
}

func TestAdminTokenMiddleware(t *testing.T) {
	r := gin.New()
	r.GET("/admin", AdminTokenMiddleware(), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	previous := config.AppConfig.AdminToken
	t.Cleanup(func() { config.AppConfig.AdminToken = previous })

	config.AppConfig.AdminToken = ""
	assert.Equal(t, http.StatusServiceUnavailable, doGet(r, "/admin", "anything").Code)

	config.AppConfig.AdminToken = "s3cret"
	assert.Equal(t, http.StatusUnauthorized, doGet(r, "/admin", "").Code)
	assert.Equal(t, http.StatusUnauthorized, doGet(r, "/admin", "wrong").Code)
	assert.Equal(t, http.StatusNoContent, doGet(r, "/admin", "s3cret").Code)
}

func TestRateLimiter(t *testing.T) {
	limiter := NewRateLimiter(2)
	r := gin.New()
	r.Use(limiter.Middleware())
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	get := func(ip string) int {
		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		req.Header.Set("X-Forwarded-For", ip+", 10.0.0.1")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, get("1.1.1.1"))
	assert.Equal(t, http.StatusOK, get("1.1.1.1"))
	assert.Equal(t, http.StatusTooManyRequests, get("1.1.1.1"))
	assert.Equal(t, http.StatusOK, get("2.2.2.2"), "buckets are per client")
}
