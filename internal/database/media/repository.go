// Package media provides database operations for the media library catalogue.
package media

import (
	"errors"

	"gorm.io/gorm"

	"github.com/mrlokans/sitedocs/internal/entities"
)

// Repository handles media item persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new media repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// CreateMedia inserts a new media item.
func (r *Repository) CreateMedia(item *entities.MediaItem) error {
	return r.db.Create(item).Error
}

// UpdateMedia saves changes to an existing media item.
func (r *Repository) UpdateMedia(item *entities.MediaItem) error {
	return r.db.Save(item).Error
}

// GetMediaByID retrieves a media item by ID.
// Returns gorm.ErrRecordNotFound if it does not exist.
func (r *Repository) GetMediaByID(id uint) (*entities.MediaItem, error) {
	var item entities.MediaItem
	if err := r.db.First(&item, id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// FindOneMedia returns the single item matching the query.
// With MostRecent set, the newest match wins. Returns gorm.ErrRecordNotFound
// when nothing matches.
func (r *Repository) FindOneMedia(q entities.MediaQuery) (*entities.MediaItem, error) {
	query := r.db.Model(&entities.MediaItem{}).Where("slug = ?", q.Slug)
	if q.Kind != "" {
		query = query.Where("kind = ?", q.Kind)
	}
	if q.MostRecent {
		query = query.Order("created_at DESC").Order("id DESC")
	} else {
		query = query.Order("id ASC")
	}

	var item entities.MediaItem
	if err := query.Limit(1).Take(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// SlugExists reports whether any item of the given kind already uses slug.
func (r *Repository) SlugExists(slug string, kind entities.MediaKind) (bool, error) {
	var count int64
	err := r.db.Model(&entities.MediaItem{}).
		Where("slug = ? AND kind = ?", slug, kind).
		Count(&count).Error
	return count > 0, err
}

// ListMedia returns items newest first, optionally filtered by kind and MIME prefix.
func (r *Repository) ListMedia(kind entities.MediaKind, mimePrefix string, limit int) ([]entities.MediaItem, error) {
	query := r.db.Model(&entities.MediaItem{})
	if kind != "" {
		query = query.Where("kind = ?", kind)
	}
	if mimePrefix != "" {
		query = query.Where("mime_type LIKE ?", mimePrefix+"%")
	}
	if limit <= 0 {
		limit = 100
	}

	var items []entities.MediaItem
	err := query.Order("created_at DESC").Order("id DESC").Limit(limit).Find(&items).Error
	return items, err
}

// ListLocalMedia returns all items whose bytes are stored on disk.
func (r *Repository) ListLocalMedia() ([]entities.MediaItem, error) {
	var items []entities.MediaItem
	err := r.db.Where("file_name <> ''").Order("id ASC").Find(&items).Error
	return items, err
}

// DeleteMedia removes a media item by ID.
// Returns gorm.ErrRecordNotFound if nothing was deleted.
func (r *Repository) DeleteMedia(id uint) error {
	result := r.db.Delete(&entities.MediaItem{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// IsNotFound reports whether err means the requested media does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
