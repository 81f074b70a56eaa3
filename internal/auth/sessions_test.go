package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/sitedocs/internal/entities"
)

func setupSessionManager(t *testing.T) *SessionManager {
	t.Helper()
	sqlDB, err := setupTestDB(t).DB()
	require.NoError(t, err)

	sm, err := NewSessionManager(sqlDB, localAuthConfig())
	require.NoError(t, err)
	return sm
}

func TestNewSessionManager(t *testing.T) {
	sm := setupSessionManager(t)

	assert.Equal(t, "sitedocs_session", sm.Cookie.Name)
	assert.True(t, sm.Cookie.HttpOnly)
	assert.False(t, sm.Cookie.Secure)
	assert.Equal(t, http.SameSiteStrictMode, sm.Cookie.SameSite)
}

func TestSessionManager_CreateAndDestroy(t *testing.T) {
	sm := setupSessionManager(t)
	user := &entities.User{ID: 123, Username: "testuser", Role: entities.UserRoleAdmin}

	w := httptest.NewRecorder()
	sm.LoadAndSave(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.False(t, sm.IsAuthenticated(r))
		require.NoError(t, sm.CreateSession(r, user))
		assert.Equal(t, uint(123), sm.GetUserID(r))
		assert.True(t, sm.IsAuthenticated(r))
		w.WriteHeader(http.StatusOK)
	})).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	cookie := sessionCookie(t, w, sm.Cookie.Name)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookie)
	sm.LoadAndSave(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, uint(123), sm.GetUserID(r))
		require.NoError(t, sm.DestroySession(r))
		assert.False(t, sm.IsAuthenticated(r))
	})).ServeHTTP(httptest.NewRecorder(), req)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookie)
	sm.LoadAndSave(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.False(t, sm.IsAuthenticated(r), "destroyed session must not load again")
	})).ServeHTTP(httptest.NewRecorder(), req)
}
