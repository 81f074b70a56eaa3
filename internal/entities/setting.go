package entities

import (
	"time"
)

type Setting struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Key       string    `gorm:"uniqueIndex;size:100" json:"key"`
	Value     string    `gorm:"type:text" json:"value"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Setting) TableName() string {
	return "settings"
}

// Known setting keys
const (
	// SettingKeyVideoSelection holds the media item ID chosen as the documentation video.
	SettingKeyVideoSelection = "wds_documentation_video_id"

	// SettingKeyEnableChanges overrides the configured DOCS_ENABLE_CHANGES flag when present.
	SettingKeyEnableChanges = "wds_documentation_enable_changes"
)
