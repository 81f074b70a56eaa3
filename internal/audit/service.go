// Package audit records who changed what in the documentation dashboard.
package audit

import (
	"encoding/json"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/mrlokans/sitedocs/internal/database/audit"
	"github.com/mrlokans/sitedocs/internal/entities"
)

// Action names stored on audit events.
const (
	ActionVideoSelectionUpdate = "video_selection_update"
	ActionEnableChangesUpdate  = "enable_changes_update"
	ActionMediaUpload          = "media_upload"
	ActionMediaRegister        = "media_register"
	ActionMediaDelete          = "media_delete"
	ActionMediaPrune           = "media_prune"
	ActionLogin                = "login"
	ActionLoginFailed          = "login_failed"
	ActionLogout               = "logout"
	ActionSetup                = "setup"
)

// Service provides high-level audit logging functionality.
type Service struct {
	repo    *audit.Repository
	pending sync.WaitGroup
}

// NewService creates a new audit service.
func NewService(repo *audit.Repository) *Service {
	return &Service{repo: repo}
}

// Log records a generic audit event.
func (s *Service) Log(event *entities.AuditEvent) error {
	return s.repo.LogEvent(event)
}

// LogAsync records an audit event in the background (non-blocking).
func (s *Service) LogAsync(event *entities.AuditEvent) {
	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		if err := s.repo.LogEvent(event); err != nil {
			zap.S().Errorw("failed to log audit event", "action", event.Action, "error", err)
		}
	}()
}

// Wait blocks until every event passed to LogAsync has been written.
func (s *Service) Wait() {
	s.pending.Wait()
}

// LogVideoSelection records a change of the documentation video.
// Zero ids mean "unset".
func (s *Service) LogVideoSelection(userID, oldID, newID uint) {
	description := fmt.Sprintf("Documentation video set to media #%d", newID)
	if newID == 0 {
		description = "Documentation video cleared"
	}

	event := &entities.AuditEvent{
		UserID:      userID,
		EventType:   entities.AuditEventSettings,
		Action:      ActionVideoSelectionUpdate,
		Description: description,
		EntityType:  "setting",
		Metadata:    marshalMetadata(map[string]any{"old_video_id": oldID, "new_video_id": newID}),
		Status:      entities.AuditStatusSuccess,
	}

	s.LogAsync(event)
}

// LogSettings records a settings change event.
func (s *Service) LogSettings(userID uint, action, description string) {
	event := &entities.AuditEvent{
		UserID:      userID,
		EventType:   entities.AuditEventSettings,
		Action:      action,
		Description: description,
		EntityType:  "setting",
		Status:      entities.AuditStatusSuccess,
	}

	s.LogAsync(event)
}

// LogMedia records an upload, registration or deletion of a media item.
// A non-nil err marks the event failed; item may be nil in that case.
func (s *Service) LogMedia(userID uint, action string, item *entities.MediaItem, err error) {
	event := &entities.AuditEvent{
		UserID:     userID,
		EventType:  entities.AuditEventMedia,
		Action:     action,
		EntityType: "media",
		Status:     entities.AuditStatusSuccess,
	}

	if item != nil {
		id := item.ID
		event.EntityID = &id
		event.Description = truncate(fmt.Sprintf("%s (%s)", item.Title, item.Slug), 500)
		event.Metadata = marshalMetadata(map[string]any{
			"slug":      item.Slug,
			"mime_type": item.MimeType,
			"size":      item.Size,
		})
	}

	if err != nil {
		event.Status = entities.AuditStatusFailed
		event.ErrorMsg = truncate(err.Error(), 500)
	}

	s.LogAsync(event)
}

// LogMediaPrune records a maintenance run that removed dangling media entries.
func (s *Service) LogMediaPrune(pruned int, err error) {
	event := &entities.AuditEvent{
		EventType:   entities.AuditEventMedia,
		Action:      ActionMediaPrune,
		Description: fmt.Sprintf("Removed %d media entries with missing files", pruned),
		EntityType:  "media",
		Status:      entities.AuditStatusSuccess,
	}

	if err != nil {
		event.Status = entities.AuditStatusFailed
		event.ErrorMsg = truncate(err.Error(), 500)
	}

	s.LogAsync(event)
}

// LogAuth records an authentication event.
func (s *Service) LogAuth(userID uint, action string, ipAddr, userAgent string, success bool) {
	event := &entities.AuditEvent{
		UserID:    userID,
		EventType: entities.AuditEventAuth,
		Action:    action,
		IPAddress: ipAddr,
		UserAgent: truncate(userAgent, 500),
		Status:    entities.AuditStatusSuccess,
	}

	if !success {
		event.Status = entities.AuditStatusFailed
	}

	s.LogAsync(event)
}

// GetEvents retrieves paginated audit events. An empty eventType returns all types.
func (s *Service) GetEvents(eventType entities.AuditEventType, limit, offset int) ([]entities.AuditEvent, int64, error) {
	return s.repo.GetEvents(eventType, limit, offset)
}

func marshalMetadata(metadata map[string]any) string {
	b, err := json.Marshal(metadata)
	if err != nil {
		return ""
	}
	return string(b)
}

// truncate shortens a string to max length.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
