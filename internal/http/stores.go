package http

import (
	"context"
	"time"

	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/sitedocs/internal/docs"
	"github.com/mrlokans/sitedocs/internal/entities"
	"github.com/mrlokans/sitedocs/internal/medialib"
	"github.com/mrlokans/sitedocs/internal/settingsstore"
)

// Each controller depends on the narrow interface it needs; the concrete
// implementations are wired in the entrypoint.

// DocumentationService resolves and updates the documentation assets.
type DocumentationService interface {
	Resolve() docs.ResolvedDocumentation
	VideoSelection() uint
	CurrentVideo() *entities.MediaItem
	SetVideoSelection(id uint) error
}

var _ DocumentationService = (*docs.Resolver)(nil)

// MediaLibrary manages uploaded and registered media.
type MediaLibrary interface {
	Upload(ctx context.Context, in medialib.UploadInput) (*entities.MediaItem, error)
	Register(ctx context.Context, in medialib.RegisterInput) (*entities.MediaItem, error)
	List(mimePrefix string, limit int) ([]entities.MediaItem, error)
	Delete(id uint) (*entities.MediaItem, error)
}

var _ MediaLibrary = (*medialib.Library)(nil)

// AuditLogger records changes made through the HTTP surface.
type AuditLogger interface {
	LogVideoSelection(userID, oldID, newID uint)
	LogSettings(userID uint, action, description string)
	LogMedia(userID uint, action string, item *entities.MediaItem, err error)
	GetEvents(eventType entities.AuditEventType, limit, offset int) ([]entities.AuditEvent, int64, error)
}

// ChangesToggle reads and overrides the "changes enabled" feature toggle.
type ChangesToggle interface {
	GetEnableChangesInfo() settingsstore.EnableChangesInfo
	SetEnableChanges(enabled bool) error
	ClearEnableChanges() error
}

var _ ChangesToggle = (*settingsstore.SettingsStore)(nil)

// MaintenanceRunner triggers and reports on maintenance rounds.
type MaintenanceRunner interface {
	RunNow() ([]string, error)
	IsRunning() bool
	NextRun() *time.Time
}

// TaskStatusReader looks up background task progress.
type TaskStatusReader interface {
	Status(ctx context.Context, taskID string) (backlite.TaskStatus, error)
}
