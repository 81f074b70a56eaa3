package auth

import (
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mrlokans/sitedocs/internal/audit"
	"github.com/mrlokans/sitedocs/internal/config"
	"github.com/mrlokans/sitedocs/internal/entities"
)

//go:embed templates/*.html
var templateFS embed.FS

// Auditor records authentication events.
type Auditor interface {
	LogAuth(userID uint, action string, ipAddr, userAgent string, success bool)
}

// isLocalPath reports whether path is safe to redirect to: a rooted local
// path, not protocol-relative, without a scheme or backslashes.
func isLocalPath(path string) bool {
	return strings.HasPrefix(path, "/") &&
		!strings.HasPrefix(path, "//") &&
		!strings.Contains(path, "://") &&
		!strings.Contains(path, "\\")
}

// sanitizeRedirectPath returns path if it is local, "/" otherwise.
func sanitizeRedirectPath(path string) string {
	if isLocalPath(path) {
		return path
	}
	return "/"
}

// AuthController serves login, logout and first-run setup.
type AuthController struct {
	service        *Service
	sessionManager *SessionManager
	templates      *template.Template
	auditor        Auditor
	rateLimiter    *RateLimiter

	// setupMu serializes setup so two requests cannot both create the first admin
	setupMu sync.Mutex
}

// NewAuthController creates a new authentication controller. auditor may be nil.
func NewAuthController(service *Service, sessionManager *SessionManager, cfg config.Auth, auditor Auditor) (*AuthController, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse auth templates: %w", err)
	}

	return &AuthController{
		service:        service,
		sessionManager: sessionManager,
		templates:      tmpl,
		auditor:        auditor,
		rateLimiter: NewRateLimiter(RateLimitConfig{
			MaxAttempts:     cfg.MaxLoginAttempts,
			WindowDuration:  cfg.RateLimitWindow,
			LockoutDuration: cfg.LockoutDuration,
		}),
	}, nil
}

// RegisterRoutes registers authentication routes on the router.
func (ac *AuthController) RegisterRoutes(router gin.IRouter) {
	router.GET("/login", ac.LoginPage)
	router.POST("/login", ac.Login)
	router.POST("/logout", ac.Logout)
	router.GET("/setup", ac.SetupPage)
	router.POST("/setup", ac.Setup)
}

// Stop releases the rate limiter.
func (ac *AuthController) Stop() {
	ac.rateLimiter.Stop()
}

// LoginPage renders the login form.
func (ac *AuthController) LoginPage(c *gin.Context) {
	if ac.sessionManager.IsAuthenticated(c.Request) {
		c.Redirect(http.StatusFound, "/")
		return
	}

	hasUsers, err := ac.service.HasUsers()
	if err == nil && !hasUsers {
		c.Redirect(http.StatusFound, "/setup")
		return
	}

	ac.render(c, http.StatusOK, "login.html", gin.H{
		"Next":  sanitizeRedirectPath(c.Query("next")),
		"Error": c.Query("error"),
	})
}

// Login handles the login form submission.
func (ac *AuthController) Login(c *gin.Context) {
	username := c.PostForm("username")
	password := c.PostForm("password")
	next := sanitizeRedirectPath(c.PostForm("next"))
	clientIP := c.ClientIP()

	data := gin.H{"Next": next, "Username": username}

	if allowed, retryAfter := ac.rateLimiter.Allow(clientIP, username); !allowed {
		c.Header("Retry-After", fmt.Sprintf("%.0f", retryAfter.Seconds()))
		data["Error"] = "Too many login attempts. Please try again later."
		ac.render(c, http.StatusTooManyRequests, "login.html", data)
		return
	}

	user, err := ac.service.Authenticate(username, password)
	if err != nil {
		ac.rateLimiter.RecordFailure(clientIP, username)
		ac.logAuth(c, 0, audit.ActionLoginFailed, false)

		data["Error"] = "Invalid username or password"
		if errors.Is(err, ErrAccountLocked) {
			data["Error"] = "Account is locked. Please try again later."
		}
		ac.render(c, http.StatusUnauthorized, "login.html", data)
		return
	}

	ac.rateLimiter.RecordSuccess(clientIP, username)

	if err := ac.sessionManager.CreateSession(c.Request, user); err != nil {
		zap.S().Errorw("failed to create session", "user_id", user.ID, "error", err)
		data["Error"] = "Failed to create session"
		ac.render(c, http.StatusInternalServerError, "login.html", data)
		return
	}

	ac.logAuth(c, user.ID, audit.ActionLogin, true)
	c.Redirect(http.StatusFound, next)
}

// Logout destroys the session and redirects to login.
func (ac *AuthController) Logout(c *gin.Context) {
	userID := ac.sessionManager.GetUserID(c.Request)
	if err := ac.sessionManager.DestroySession(c.Request); err != nil {
		zap.S().Warnw("failed to destroy session", "error", err)
	}
	if userID != 0 {
		ac.logAuth(c, userID, audit.ActionLogout, true)
	}
	c.Redirect(http.StatusFound, "/login")
}

// SetupPage renders the first-run administrator form.
func (ac *AuthController) SetupPage(c *gin.Context) {
	hasUsers, err := ac.service.HasUsers()
	if err != nil {
		ac.render(c, http.StatusInternalServerError, "setup.html", gin.H{"Error": "Database error. Please try again."})
		return
	}
	if hasUsers {
		c.Redirect(http.StatusFound, "/login")
		return
	}

	ac.render(c, http.StatusOK, "setup.html", gin.H{"Error": c.Query("error")})
}

// Setup creates the first administrator. Only allowed while no users exist.
func (ac *AuthController) Setup(c *gin.Context) {
	ac.setupMu.Lock()
	defer ac.setupMu.Unlock()

	hasUsers, err := ac.service.HasUsers()
	if err != nil {
		ac.render(c, http.StatusInternalServerError, "setup.html", gin.H{"Error": "Database error. Please try again."})
		return
	}
	if hasUsers {
		c.Redirect(http.StatusFound, "/login")
		return
	}

	username := c.PostForm("username")
	email := c.PostForm("email")
	password := c.PostForm("password")
	data := gin.H{"Username": username, "Email": email}

	if password != c.PostForm("confirm_password") {
		data["Error"] = "Passwords do not match"
		ac.render(c, http.StatusBadRequest, "setup.html", data)
		return
	}

	user, err := ac.service.CreateUser(username, email, password, entities.UserRoleAdmin)
	if errors.Is(err, ErrUserExists) {
		c.Redirect(http.StatusFound, "/login")
		return
	}
	if err != nil {
		data["Error"] = setupErrorMessage(err)
		ac.render(c, http.StatusBadRequest, "setup.html", data)
		return
	}

	if err := ac.sessionManager.CreateSession(c.Request, user); err != nil {
		zap.S().Warnw("failed to create session after setup", "user_id", user.ID, "error", err)
	}
	ac.logAuth(c, user.ID, audit.ActionSetup, true)
	c.Redirect(http.StatusFound, "/")
}

func setupErrorMessage(err error) string {
	switch {
	case errors.Is(err, ErrPasswordTooShort):
		return "Password must be at least 12 characters"
	case errors.Is(err, ErrPasswordTooLong):
		return "Password exceeds maximum length of 72 characters"
	case errors.Is(err, ErrUsernameRequired):
		return "Username is required"
	case errors.Is(err, ErrUsernameInvalid):
		return "Username must be 3-64 characters, alphanumeric with underscore/hyphen only"
	case errors.Is(err, ErrEmailRequired):
		return "Email is required"
	case errors.Is(err, ErrEmailInvalid):
		return "Invalid email format"
	}
	return "Failed to create user"
}

func (ac *AuthController) logAuth(c *gin.Context, userID uint, action string, success bool) {
	if ac.auditor != nil {
		ac.auditor.LogAuth(userID, action, c.ClientIP(), c.Request.UserAgent(), success)
	}
}

func (ac *AuthController) render(c *gin.Context, status int, name string, data gin.H) {
	data["CSRFToken"] = GetCSRFToken(c)
	data["CSRFField"] = CSRFFieldName

	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(status)
	if err := ac.templates.ExecuteTemplate(c.Writer, name, data); err != nil {
		zap.S().Errorw("failed to render auth template", "template", name, "error", err)
	}
}

// APITokenController manages the caller's API token.
type APITokenController struct {
	service *Service
}

// NewAPITokenController creates a new API token controller.
func NewAPITokenController(service *Service) *APITokenController {
	return &APITokenController{service: service}
}

// GenerateToken creates a new API token for the authenticated user.
func (tc *APITokenController) GenerateToken(c *gin.Context) {
	userID := GetUserID(c)
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	token, err := tc.service.GenerateToken(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":   token,
		"message": "Store this token securely - it will not be shown again",
	})
}

// RevokeToken revokes the API token for the authenticated user.
func (tc *APITokenController) RevokeToken(c *gin.Context) {
	userID := GetUserID(c)
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	if err := tc.service.RevokeToken(userID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to revoke token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "token revoked"})
}
