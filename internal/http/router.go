package http

import (
	"embed"
	"html/template"
	"io/fs"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/sitedocs/internal/auth"
	"github.com/mrlokans/sitedocs/internal/config"
	"github.com/mrlokans/sitedocs/internal/readonly"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// NewRouter creates and configures the HTTP router with all endpoints.
func NewRouter(cfg RouterConfig) (*gin.Engine, error) {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	router.Use(auth.SecurityHeadersMiddleware())
	if cfg.SecureCookies {
		router.Use(auth.StrictTransportSecurityMiddleware())
	}

	// CSRF runs before the session middleware so the session context
	// survives CSRF's request replacement.
	if len(cfg.CSRFSecret) > 0 {
		router.Use(auth.CSRFMiddleware(cfg.CSRFSecret, cfg.SecureCookies, cfg.AuthService))
	}
	if cfg.SessionManager != nil {
		router.Use(cfg.SessionManager.SessionLoadSave())
	}

	authMiddleware := cfg.AuthMiddleware
	if authMiddleware == nil {
		authMiddleware = auth.NewMiddleware(nil, nil, config.Auth{Mode: config.AuthModeNone})
	}
	router.Use(authMiddleware.Handler())

	gate := cfg.ReadonlyGate
	if gate == nil {
		gate = readonly.NewGate(func() bool { return true })
	}
	router.Use(gate.InjectContext())
	router.Use(AuthContextMiddleware(cfg.AuthConfig.Mode))

	tmpl, err := template.New("").ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	router.SetHTMLTemplate(tmpl)

	static, err := fs.Sub(staticFS, "static")
	if err != nil {
		return nil, err
	}
	router.StaticFS("/static", http.FS(static))
	if cfg.MediaDir != "" {
		router.Static(mediaPrefix(cfg.MediaURLPrefix), cfg.MediaDir)
	}

	health := NewHealthController(cfg.Database, cfg.Version)
	router.GET("/health", health.Status)
	router.GET("/ping", Ping)

	if cfg.AuthController != nil {
		cfg.AuthController.RegisterRoutes(router)

		tokenController := auth.NewAPITokenController(cfg.AuthService)
		router.POST("/api/auth/token", tokenController.GenerateToken)
		router.DELETE("/api/auth/token", tokenController.RevokeToken)
	}

	canRead := authMiddleware.RequireCapability(auth.CapabilityRead)
	canManage := authMiddleware.RequireCapability(auth.CapabilityManageOptions)
	writable := gate.Handler()

	documentation := NewDocumentationController(cfg.Documentation, cfg.Audit, cfg.Page)
	router.GET("/", documentation.Index)
	router.GET("/documentation", canRead, documentation.Page)
	router.GET("/documentation/widget", canRead, documentation.Widget)
	router.POST("/documentation", canManage, writable, documentation.SaveForm)

	api := router.Group("/api")
	api.GET("/documentation", canRead, documentation.GetDocumentation)

	admin := api.Group("", canManage)
	admin.PUT("/documentation/video", writable, documentation.UpdateVideo)

	if cfg.Media != nil {
		media := NewMediaController(cfg.Media, cfg.Audit)
		admin.GET("/media", media.List)
		admin.POST("/media", writable, media.Upload)
		admin.DELETE("/media/:id", writable, media.Delete)
	}

	if cfg.Changes != nil {
		settings := NewSettingsController(cfg.Changes, cfg.Audit)
		admin.GET("/settings/changes", settings.GetChanges)
		admin.PUT("/settings/changes", settings.UpdateChanges)
		admin.DELETE("/settings/changes", settings.ResetChanges)
	}

	if cfg.Audit != nil {
		auditController := NewAuditController(cfg.Audit)
		admin.GET("/audit", auditController.ListEvents)
	}

	tasksController := NewTasksController(cfg.Maintenance, cfg.TaskStatus)
	if cfg.Maintenance != nil {
		admin.GET("/maintenance", tasksController.GetMaintenance)
		admin.POST("/maintenance/run", tasksController.RunMaintenance)
	}
	if cfg.TaskStatus != nil {
		admin.GET("/tasks/:id", tasksController.GetTaskStatus)
	}

	return router, nil
}

func mediaPrefix(prefix string) string {
	if prefix == "" {
		return "/uploads"
	}
	return prefix
}
