package entrypoint

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mrlokans/sitedocs/internal/auth"
	"github.com/mrlokans/sitedocs/internal/config"
	http_controllers "github.com/mrlokans/sitedocs/internal/http"
	"github.com/mrlokans/sitedocs/internal/readonly"
	"github.com/mrlokans/sitedocs/internal/scheduler"
	"github.com/mrlokans/sitedocs/internal/tasks"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

// Serve runs the HTTP server until ctx is cancelled, then shuts down within
// the configured timeout.
func Serve(ctx context.Context, router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) error {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		zap.S().Infof("Starting server at %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	zap.S().Infof("Shutting down server, waiting %v before killing", timeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Stop background work first so no task writes after the DB closes
	if onShutdown != nil {
		onShutdown(shutdownCtx)
	}

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	zap.S().Info("Server exiting")
	return nil
}

// Run wires every component from cfg and serves until SIGINT or SIGTERM.
func Run(cfg *config.Config, version string) error {
	zap.S().Infof("Starting sitedocs v%s", version)

	core, err := NewCore(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := core.Close(); err != nil {
			zap.S().Errorw("Error closing core services", "error", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	routerCfg := http_controllers.RouterConfig{
		Version:       version,
		Database:      core.DB,
		Documentation: core.Resolver,
		Page: http_controllers.PageConfig{
			BannerURL:  cfg.Documentation.BannerURL,
			ContactURL: cfg.Documentation.ContactURL,
		},
		Changes:        core.Settings,
		ReadonlyGate:   readonly.NewGate(core.Settings.ChangesEnabled),
		Media:          core.Library,
		MediaDir:       cfg.Media.Dir,
		MediaURLPrefix: cfg.Media.URLPrefix,
		Audit:          core.Audit,
		AuthConfig:     cfg.Auth,
		SecureCookies:  cfg.Auth.SecureCookies,
	}

	if !core.Settings.ChangesEnabled() {
		zap.S().Info("Documentation changes are disabled; write operations will be blocked")
	}

	// Task queue and maintenance schedule
	var taskClient *tasks.Client
	var maintenance *scheduler.MaintenanceScheduler
	if cfg.Tasks.Enabled {
		taskClient, err = tasks.NewClient(cfg.Database.Path, tasks.Config{
			Workers:         cfg.Tasks.Workers,
			ReleaseAfter:    cfg.Tasks.ReleaseAfter,
			CleanupInterval: cfg.Tasks.CleanupInterval,
		})
		if err != nil {
			return fmt.Errorf("failed to initialize task queue: %w", err)
		}
		defer func() {
			if err := taskClient.Close(); err != nil {
				zap.S().Errorw("Error closing task client", "error", err)
			}
		}()

		taskClient.Register(
			tasks.NewCleanupAuditEventsQueue(core.AuditRepo),
			tasks.NewPruneMissingMediaQueue(core.Library, core.Audit),
		)
		taskClient.Start(ctx)

		maintenance = scheduler.NewMaintenanceScheduler(taskClient, scheduler.Config{
			Schedule:           cfg.Maintenance.Schedule,
			AuditRetentionDays: cfg.Audit.RetentionDays,
		})
		if cfg.Maintenance.Enabled {
			if err := maintenance.Start(ctx); err != nil {
				return fmt.Errorf("failed to start maintenance scheduler: %w", err)
			}
		}

		routerCfg.Maintenance = maintenance
		routerCfg.TaskStatus = taskClient
	}

	var authController *auth.AuthController
	if cfg.Auth.Mode == config.AuthModeLocal {
		authController, err = setupLocalAuth(core, cfg, &routerCfg)
		if err != nil {
			return err
		}
	} else {
		zap.S().Info("Authentication mode: none (the operator is the administrator)")
	}

	router, err := http_controllers.NewRouter(routerCfg)
	if err != nil {
		return fmt.Errorf("failed to build router: %w", err)
	}

	onShutdown := func(ctx context.Context) {
		if maintenance != nil {
			maintenance.Stop()
		}
		if taskClient != nil {
			taskClient.Stop(ctx)
		}
		if authController != nil {
			authController.Stop()
		}
	}

	return Serve(ctx, router, cfg, onShutdown)
}

func setupLocalAuth(core *Core, cfg *config.Config, routerCfg *http_controllers.RouterConfig) (*auth.AuthController, error) {
	zap.S().Info("Authentication mode: local")

	authService := auth.NewService(core.DB.DB, cfg.Auth)

	sqlDB, err := core.DB.DB.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get SQL DB for sessions: %w", err)
	}
	sessionManager, err := auth.NewSessionManager(sqlDB, cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize session manager: %w", err)
	}

	csrfSecret, err := csrfSecret(cfg.Auth.SessionSecret)
	if err != nil {
		return nil, err
	}

	authController, err := auth.NewAuthController(authService, sessionManager, cfg.Auth, core.Audit)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize auth controller: %w", err)
	}

	if hasUsers, _ := authService.HasUsers(); !hasUsers {
		zap.S().Info("No users found. Visit /setup to create an administrator account.")
	}

	routerCfg.AuthService = authService
	routerCfg.SessionManager = sessionManager
	routerCfg.AuthMiddleware = auth.NewMiddleware(authService, sessionManager, cfg.Auth)
	routerCfg.AuthController = authController
	routerCfg.CSRFSecret = csrfSecret
	return authController, nil
}

// csrfSecret decodes a hex session secret, falling back to the raw bytes.
// An empty secret generates a random one that lasts for this process only.
func csrfSecret(configured string) ([]byte, error) {
	if configured != "" {
		if secret, err := hex.DecodeString(configured); err == nil {
			return secret, nil
		}
		return []byte(configured), nil
	}

	generated, err := auth.GenerateSessionSecret()
	if err != nil {
		return nil, fmt.Errorf("failed to generate CSRF secret: %w", err)
	}
	zap.S().Info("Generated session secret (set AUTH_SESSION_SECRET to persist)")
	return hex.DecodeString(generated)
}
