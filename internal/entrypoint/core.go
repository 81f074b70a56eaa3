package entrypoint

import (
	"fmt"

	"github.com/mrlokans/sitedocs/internal/audit"
	"github.com/mrlokans/sitedocs/internal/config"
	"github.com/mrlokans/sitedocs/internal/database"
	auditrepo "github.com/mrlokans/sitedocs/internal/database/audit"
	"github.com/mrlokans/sitedocs/internal/database/media"
	"github.com/mrlokans/sitedocs/internal/database/settings"
	"github.com/mrlokans/sitedocs/internal/docs"
	"github.com/mrlokans/sitedocs/internal/medialib"
	"github.com/mrlokans/sitedocs/internal/settingsstore"
)

// Core holds the services shared by the HTTP server and the CLI commands.
type Core struct {
	DB        *database.Database
	Settings  *settingsstore.SettingsStore
	Media     *media.Repository
	AuditRepo *auditrepo.Repository
	Audit     *audit.Service
	Resolver  *docs.Resolver
	Library   *medialib.Library
}

// NewCore opens the database and builds the documentation services on top of it.
func NewCore(cfg *config.Config) (*Core, error) {
	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		return nil, err
	}

	store := settingsstore.New(settings.NewRepository(db.DB), cfg.Documentation.EnableChanges)
	mediaRepo := media.NewRepository(db.DB)
	auditRepository := auditrepo.NewRepository(db.DB)

	library, err := medialib.New(mediaRepo, medialib.Config{
		Dir:            cfg.Media.Dir,
		URLPrefix:      cfg.Media.URLPrefix,
		PublicURL:      cfg.HTTP.PublicURL,
		MaxUploadBytes: cfg.Media.MaxUploadBytes,
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize media library: %w", err)
	}

	return &Core{
		DB:        db,
		Settings:  store,
		Media:     mediaRepo,
		AuditRepo: auditRepository,
		Audit:     audit.NewService(auditRepository),
		Resolver:  docs.NewResolver(store, mediaRepo, ResolverOptions(cfg.Documentation)),
		Library:   library,
	}, nil
}

// ResolverOptions turns the configured URL overrides into resolver filters.
func ResolverOptions(cfg config.Documentation) docs.Options {
	return docs.Options{
		VideoURLFilter: docs.StaticURL(cfg.VideoURLOverride),
		PDFURLFilter:   docs.StaticURL(cfg.PDFURLOverride),
	}
}

// Close flushes pending audit events and closes the database.
func (c *Core) Close() error {
	c.Audit.Wait()
	if err := c.DB.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	return nil
}
