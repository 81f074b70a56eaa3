package http

import (
	"github.com/mrlokans/sitedocs/internal/auth"
	"github.com/mrlokans/sitedocs/internal/config"
	"github.com/mrlokans/sitedocs/internal/readonly"
)

// RouterConfig contains all dependencies and configuration needed
// to create the HTTP router.
type RouterConfig struct {
	Version  string
	Database Pinger

	// Documentation surface
	Documentation DocumentationService
	Page          PageConfig
	Changes       ChangesToggle
	ReadonlyGate  *readonly.Gate // nil allows all writes

	// Media library; uploads are served from MediaDir under MediaURLPrefix
	Media          MediaLibrary
	MediaDir       string
	MediaURLPrefix string

	Audit AuditLogger

	// Background work (optional)
	Maintenance MaintenanceRunner
	TaskStatus  TaskStatusReader

	// Authentication
	AuthConfig     config.Auth
	AuthService    *auth.Service
	AuthMiddleware *auth.Middleware
	AuthController *auth.AuthController
	SessionManager *auth.SessionManager
	CSRFSecret     []byte
	SecureCookies  bool
}
