package auth

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/sitedocs/internal/audit"
	"github.com/mrlokans/sitedocs/internal/entities"
)

func TestAuthController_SetupFlow(t *testing.T) {
	stack := setupAuthStack(t)

	w := stack.do(httptest.NewRequest(http.MethodGet, "/login", nil))
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/setup", w.Header().Get("Location"))

	w = stack.do(httptest.NewRequest(http.MethodGet, "/setup", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Create the administrator account")

	w = stack.do(postForm("/setup", url.Values{
		"username": {"owner"}, "email": {"owner@example.com"},
		"password": {testPassword}, "confirm_password": {"mismatch-password"},
	}))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Passwords do not match")

	w = stack.do(postForm("/setup", url.Values{
		"username": {"owner"}, "email": {"owner@example.com"},
		"password": {testPassword}, "confirm_password": {testPassword},
	}))
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))

	cookie := sessionCookie(t, w, stack.sessions.Cookie.Name)
	w = stack.do(httptest.NewRequest(http.MethodGet, "/api/admin-only", nil), cookie)
	assert.Equal(t, http.StatusOK, w.Code, "setup signs the new administrator in")

	w = stack.do(httptest.NewRequest(http.MethodGet, "/setup", nil))
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))

	assert.Contains(t, stack.auditor.Actions(), audit.ActionSetup)
}

func TestAuthController_LoginLogoutFlow(t *testing.T) {
	stack := setupAuthStack(t)
	_, err := stack.service.CreateUser("admin", "admin@example.com", testPassword, entities.UserRoleAdmin)
	require.NoError(t, err)

	w := stack.do(httptest.NewRequest(http.MethodGet, "/login?next=//evil.example", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `name="next" value="/"`)

	w = stack.do(postForm("/login", url.Values{"username": {"admin"}, "password": {"wrong-password!"}}))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid username or password")

	w = stack.do(postForm("/login", url.Values{
		"username": {"admin"}, "password": {testPassword}, "next": {"/documentation"},
	}))
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/documentation", w.Header().Get("Location"))
	cookie := sessionCookie(t, w, stack.sessions.Cookie.Name)

	w = stack.do(httptest.NewRequest(http.MethodGet, "/whoami", nil), cookie)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"role":"admin"`)

	w = stack.do(httptest.NewRequest(http.MethodPost, "/logout", nil), cookie)
	assert.Equal(t, http.StatusFound, w.Code)

	w = stack.do(httptest.NewRequest(http.MethodGet, "/whoami", nil), cookie)
	assert.Equal(t, http.StatusFound, w.Code, "session is gone after logout")

	assert.Equal(t, []string{audit.ActionLoginFailed, audit.ActionLogin, audit.ActionLogout}, stack.auditor.Actions())
}

func TestAuthController_LoginRateLimited(t *testing.T) {
	stack := setupAuthStack(t)
	_, err := stack.service.CreateUser("admin", "admin@example.com", testPassword, entities.UserRoleAdmin)
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		stack.do(postForm("/login", url.Values{"username": {"admin"}, "password": {"wrong-password!"}}))
	}

	w := stack.do(postForm("/login", url.Values{"username": {"admin"}, "password": {testPassword}}))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
	assert.Contains(t, w.Body.String(), "Too many login attempts")
}

func TestAPITokenController(t *testing.T) {
	stack := setupAuthStack(t)
	tokens := NewAPITokenController(stack.service)
	stack.router.POST("/api/auth/token", tokens.GenerateToken)
	stack.router.DELETE("/api/auth/token", tokens.RevokeToken)

	user, err := stack.service.CreateUser("admin", "admin@example.com", testPassword, entities.UserRoleAdmin)
	require.NoError(t, err)
	bootstrap, err := stack.service.GenerateToken(user.ID)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/token", nil)
	req.Header.Set("Authorization", "Bearer "+bootstrap)
	w := stack.do(req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"token"`)

	// The bootstrap token was replaced
	req = httptest.NewRequest(http.MethodDelete, "/api/auth/token", nil)
	req.Header.Set("Authorization", "Bearer "+bootstrap)
	assert.Equal(t, http.StatusUnauthorized, stack.do(req).Code)
}

func TestIsLocalPath(t *testing.T) {
	tests := map[string]bool{
		"/":                   true,
		"/documentation":      true,
		"/a?b=c":              true,
		"":                    false,
		"documentation":       false,
		"//evil.example":      false,
		"https://evil.example": false,
		"/\\evil.example":     false,
		"/redirect?u=http://x": false,
	}
	for path, want := range tests {
		assert.Equal(t, want, isLocalPath(path), path)
	}
	assert.Equal(t, "/", sanitizeRedirectPath("//evil.example"))
}
