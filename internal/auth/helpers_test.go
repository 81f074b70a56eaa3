package auth

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/sitedocs/internal/config"
	"github.com/mrlokans/sitedocs/internal/entities"
)

const testPassword = "correct-horse-battery"

func init() {
	gin.SetMode(gin.TestMode)
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "auth.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&entities.User{}))
	return db
}

func localAuthConfig() config.Auth {
	return config.Auth{
		Mode:            config.AuthModeLocal,
		SessionLifetime: time.Hour,
		BcryptCost:      4,
		SecureCookies:   false,
	}
}

// recordingAuditor captures auth events.
type recordingAuditor struct {
	mu      sync.Mutex
	actions []string
}

func (r *recordingAuditor) LogAuth(_ uint, action string, _, _ string, _ bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.actions = append(r.actions, action)
}

func (r *recordingAuditor) Actions() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.actions...)
}

type authStack struct {
	router   *gin.Engine
	service  *Service
	sessions *SessionManager
	auditor  *recordingAuditor
}

// setupAuthStack wires sessions, middleware and the auth controller the way
// the server does, minus CSRF, plus two probe routes.
func setupAuthStack(t *testing.T) *authStack {
	t.Helper()
	db := setupTestDB(t)
	cfg := localAuthConfig()

	sqlDB, err := db.DB()
	require.NoError(t, err)

	svc := NewService(db, cfg)
	sm, err := NewSessionManager(sqlDB, cfg)
	require.NoError(t, err)

	auditor := &recordingAuditor{}
	controller, err := NewAuthController(svc, sm, cfg, auditor)
	require.NoError(t, err)
	t.Cleanup(controller.Stop)

	mw := NewMiddleware(svc, sm, cfg)

	router := gin.New()
	router.Use(sm.SessionLoadSave())
	router.Use(mw.Handler())
	controller.RegisterRoutes(router)

	router.GET("/whoami", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": GetUserID(c), "role": GetUserRole(c)})
	})
	router.GET("/api/admin-only", mw.RequireCapability(CapabilityManageOptions), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	return &authStack{router: router, service: svc, sessions: sm, auditor: auditor}
}

func (s *authStack) do(req *http.Request, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func postForm(path string, values url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func sessionCookie(t *testing.T, w *httptest.ResponseRecorder, name string) *http.Cookie {
	t.Helper()
	for _, c := range w.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	t.Fatalf("response has no %q cookie", name)
	return nil
}
