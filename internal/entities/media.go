package entities

import "time"

// MediaKind distinguishes catalogue entries. Only attachments are eligible
// as documentation assets.
type MediaKind string

const (
	MediaKindAttachment MediaKind = "attachment"
	MediaKindDraft      MediaKind = "draft" // Registered but not yet published
)

// MediaItem is an uploaded (or registered remote) file in the media library.
type MediaItem struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Title      string    `gorm:"size:255" json:"title"`
	Slug       string    `gorm:"index;size:200" json:"slug"`
	Kind       MediaKind `gorm:"index;size:20;default:'attachment'" json:"kind"`
	MimeType   string    `gorm:"size:100" json:"mime_type"`
	FileName   string    `gorm:"size:255" json:"-"` // Stored file name, empty for remote items
	Size       int64     `json:"size"`
	URL        string    `gorm:"size:2048" json:"url"`
	UploadedBy uint      `gorm:"index" json:"uploaded_by"`
	CreatedAt  time.Time `gorm:"index" json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (MediaItem) TableName() string {
	return "media_items"
}

// IsLocal reports whether the item's bytes live in the local media directory.
func (m *MediaItem) IsLocal() bool {
	return m.FileName != ""
}

// MediaQuery selects a single media item by slug and kind.
// MostRecent orders candidates newest first.
type MediaQuery struct {
	Slug       string
	Kind       MediaKind
	MostRecent bool
}
