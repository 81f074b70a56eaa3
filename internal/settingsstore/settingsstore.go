package settingsstore

import (
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/mrlokans/sitedocs/internal/database/settings"
	"github.com/mrlokans/sitedocs/internal/entities"
)

// Setting sources reported by the *Info helpers.
const (
	SourceDatabase = "database"
	SourceConfig   = "config"
)

// Backend is the raw key/value persistence the store is layered on.
type Backend interface {
	GetValue(key string) (string, bool, error)
	SetSetting(key, value string) error
	DeleteSetting(key string) error
}

var _ Backend = (*settings.Repository)(nil)

// Priority: database > config
type SettingsStore struct {
	backend              Backend
	defaultEnableChanges bool
}

// New creates a store. defaultEnableChanges is the configured value of the
// DOCS_ENABLE_CHANGES flag, used when the database holds no override.
func New(backend Backend, defaultEnableChanges bool) *SettingsStore {
	return &SettingsStore{backend: backend, defaultEnableChanges: defaultEnableChanges}
}

// GetInt returns the integer stored under key. Missing, empty and
// non-numeric values all report false.
func (s *SettingsStore) GetInt(key string) (int64, bool) {
	value, ok, err := s.backend.GetValue(key)
	if err != nil {
		zap.S().Warnw("failed to read setting", "key", key, "error", err)
		return 0, false
	}
	if !ok {
		return 0, false
	}

	n, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// SetInt stores an integer under key, overwriting any previous value.
func (s *SettingsStore) SetInt(key string, value int64) error {
	return s.backend.SetSetting(key, strconv.FormatInt(value, 10))
}

// EnableChangesInfo describes the effective value of the changes flag.
type EnableChangesInfo struct {
	Enabled bool   `json:"enabled"`
	Source  string `json:"source"` // "database" or "config"
}

// GetEnableChangesInfo resolves whether administrative changes are allowed.
func (s *SettingsStore) GetEnableChangesInfo() EnableChangesInfo {
	value, ok, err := s.backend.GetValue(entities.SettingKeyEnableChanges)
	if err != nil {
		zap.S().Warnw("failed to read setting", "key", entities.SettingKeyEnableChanges, "error", err)
	}
	if err == nil && ok && value != "" {
		return EnableChangesInfo{Enabled: value == "true" || value == "1", Source: SourceDatabase}
	}
	return EnableChangesInfo{Enabled: s.defaultEnableChanges, Source: SourceConfig}
}

// ChangesEnabled reports whether administrative changes are allowed.
func (s *SettingsStore) ChangesEnabled() bool {
	return s.GetEnableChangesInfo().Enabled
}

// SetEnableChanges stores a database override for the changes flag.
func (s *SettingsStore) SetEnableChanges(enabled bool) error {
	return s.backend.SetSetting(entities.SettingKeyEnableChanges, strconv.FormatBool(enabled))
}

// ClearEnableChanges removes the database override so the configured value applies again.
func (s *SettingsStore) ClearEnableChanges() error {
	return s.backend.DeleteSetting(entities.SettingKeyEnableChanges)
}
