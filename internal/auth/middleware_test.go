package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/sitedocs/internal/config"
	"github.com/mrlokans/sitedocs/internal/entities"
)

func TestMiddleware_NoAuthMode_ActsAsAdministrator(t *testing.T) {
	mw := NewMiddleware(nil, nil, config.Auth{Mode: config.AuthModeNone})

	router := gin.New()
	router.Use(mw.Handler())
	router.PUT("/api/documentation/video", mw.RequireCapability(CapabilityManageOptions), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": GetUserID(c), "auth": GetAuthType(c)})
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPut, "/api/documentation/video", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"user_id":0,"auth":"none"}`, w.Body.String())
}

func TestMiddleware_PublicPaths(t *testing.T) {
	stack := setupAuthStack(t)
	stack.router.GET("/uploads/*filepath", func(c *gin.Context) { c.Status(http.StatusOK) })
	stack.router.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })

	for _, path := range []string{"/health", "/uploads/abc.pdf", "/login"} {
		w := stack.do(httptest.NewRequest(http.MethodGet, path, nil))
		assert.NotEqual(t, http.StatusUnauthorized, w.Code, path)
		if path != "/login" {
			assert.Equal(t, http.StatusOK, w.Code, path)
		}
	}
}

func TestMiddleware_UnauthenticatedRequests(t *testing.T) {
	stack := setupAuthStack(t)

	t.Run("browser is redirected to login", func(t *testing.T) {
		w := stack.do(httptest.NewRequest(http.MethodGet, "/whoami", nil))
		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, "/login?next=%2Fwhoami", w.Header().Get("Location"))
	})

	t.Run("api gets 401", func(t *testing.T) {
		w := stack.do(httptest.NewRequest(http.MethodGet, "/api/admin-only", nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("json accept gets 401", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		req.Header.Set("Accept", "application/json")
		assert.Equal(t, http.StatusUnauthorized, stack.do(req).Code)
	})

	t.Run("malformed bearer gets 401", func(t *testing.T) {
		for _, header := range []string{"Bearer", "Basic abc", "Bearer ", "token abc"} {
			req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
			req.Header.Set("Authorization", header)
			assert.Equal(t, http.StatusUnauthorized, stack.do(req).Code, header)
		}
	})
}

func TestMiddleware_BearerAuth(t *testing.T) {
	stack := setupAuthStack(t)

	admin, err := stack.service.CreateUser("admin", "admin@example.com", testPassword, entities.UserRoleAdmin)
	require.NoError(t, err)
	viewer, err := stack.service.CreateUser("viewer", "viewer@example.com", testPassword, entities.UserRoleViewer)
	require.NoError(t, err)

	adminToken, err := stack.service.GenerateToken(admin.ID)
	require.NoError(t, err)
	viewerToken, err := stack.service.GenerateToken(viewer.ID)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/admin-only", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken)
	assert.Equal(t, http.StatusOK, stack.do(req).Code)

	req = httptest.NewRequest(http.MethodGet, "/api/admin-only", nil)
	req.Header.Set("Authorization", "bearer "+viewerToken)
	w := stack.do(req)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "insufficient permissions")

	req = httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+viewerToken)
	w = stack.do(req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"role":"viewer"`)
}

func TestRoleCan(t *testing.T) {
	assert.True(t, RoleCan(entities.UserRoleAdmin, CapabilityManageOptions))
	assert.True(t, RoleCan(entities.UserRoleAdmin, CapabilityRead))
	assert.False(t, RoleCan(entities.UserRoleEditor, CapabilityManageOptions))
	assert.True(t, RoleCan(entities.UserRoleEditor, CapabilityRead))
	assert.False(t, RoleCan(entities.UserRoleViewer, CapabilityManageOptions))
	assert.False(t, RoleCan("", CapabilityRead))
}

func TestRequireCapability_BrowserGetsPlain403(t *testing.T) {
	mw := NewMiddleware(nil, nil, config.Auth{Mode: config.AuthModeLocal})

	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set(ContextKeyRole, entities.UserRoleViewer)
		c.Next()
	})
	router.POST("/documentation", mw.RequireCapability(CapabilityManageOptions), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/documentation", nil))
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Empty(t, w.Body.String())
}

func TestContextHelpers_Empty(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	assert.Equal(t, DefaultUserID, GetUserID(c))
	assert.Empty(t, GetUsername(c))
	assert.Empty(t, GetUserRole(c))
	assert.Equal(t, AuthTypeNone, GetAuthType(c))
	assert.False(t, HasCapability(c, CapabilityRead))
}
