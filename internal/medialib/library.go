// Package medialib stores uploaded files and catalogues them as media items.
package medialib

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mrlokans/sitedocs/internal/database/media"
	"github.com/mrlokans/sitedocs/internal/entities"
)

var (
	ErrEmptyFile       = errors.New("file is empty")
	ErrTooLarge        = errors.New("file exceeds the upload size limit")
	ErrUnsupportedType = errors.New("unsupported media type")
	ErrInvalidURL      = errors.New("media URL must be an absolute http(s) URL")
	ErrNotFound        = errors.New("media not found")
)

// allowedTypePrefixes lists the MIME types accepted for upload.
var allowedTypePrefixes = []string{"video/", "image/", "application/pdf"}

var nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)

// maxSlugSuffix bounds the search for a free "-N" slug suffix.
const maxSlugSuffix = 1000

// Store is the persistence the library needs.
type Store interface {
	CreateMedia(item *entities.MediaItem) error
	GetMediaByID(id uint) (*entities.MediaItem, error)
	SlugExists(slug string, kind entities.MediaKind) (bool, error)
	ListMedia(kind entities.MediaKind, mimePrefix string, limit int) ([]entities.MediaItem, error)
	ListLocalMedia() ([]entities.MediaItem, error)
	DeleteMedia(id uint) error
}

var _ Store = (*media.Repository)(nil)

// Config controls where files live and how their URLs are built.
type Config struct {
	Dir            string
	URLPrefix      string // e.g. "/uploads"
	PublicURL      string // e.g. "https://docs.example.com", empty for host-relative URLs
	MaxUploadBytes int64  // 0 means unlimited
}

// Library manages media files on disk and their catalogue entries.
type Library struct {
	store  Store
	config Config
}

// New creates a library, making sure the media directory exists.
func New(store Store, cfg Config) (*Library, error) {
	if err := os.MkdirAll(cfg.Dir, 0755); err != nil {
		return nil, fmt.Errorf("create media dir: %w", err)
	}
	return &Library{store: store, config: cfg}, nil
}

// Dir returns the directory uploaded files are stored in.
func (l *Library) Dir() string {
	return l.config.Dir
}

// UploadInput describes a file being added to the library.
type UploadInput struct {
	Reader   io.Reader
	FileName string // Original client file name
	Title    string
	Slug     string
	UserID   uint
}

// Upload stores the file and records it as an attachment.
func (l *Library) Upload(ctx context.Context, in UploadInput) (*entities.MediaItem, error) {
	tmpFile, err := os.CreateTemp(l.config.Dir, "upload_tmp_")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		tmpFile.Close()
		os.Remove(tmpPath) // No-op once renamed
	}()

	reader := in.Reader
	if l.config.MaxUploadBytes > 0 {
		reader = io.LimitReader(in.Reader, l.config.MaxUploadBytes+1)
	}
	size, err := io.Copy(tmpFile, reader)
	if err != nil {
		return nil, fmt.Errorf("write upload: %w", err)
	}
	if size == 0 {
		return nil, ErrEmptyFile
	}
	if l.config.MaxUploadBytes > 0 && size > l.config.MaxUploadBytes {
		return nil, ErrTooLarge
	}
	if err := tmpFile.Close(); err != nil {
		return nil, fmt.Errorf("close upload: %w", err)
	}

	mtype, err := mimetype.DetectFile(tmpPath)
	if err != nil {
		return nil, fmt.Errorf("detect media type: %w", err)
	}
	if !isAllowedType(mtype.String()) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, mtype.String())
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	storedName := uuid.NewString() + mtype.Extension()
	finalPath := filepath.Join(l.config.Dir, storedName)
	if err := os.Rename(tmpPath, finalPath); err != nil {
		return nil, fmt.Errorf("store upload: %w", err)
	}

	baseName := strings.TrimSuffix(filepath.Base(in.FileName), filepath.Ext(in.FileName))
	title := firstNonEmpty(CleanTitle(in.Title), CleanTitle(baseName))

	slug, err := l.uniqueSlug(firstNonEmpty(in.Slug, title, baseName, "media"))
	if err != nil {
		os.Remove(finalPath)
		return nil, err
	}

	item := &entities.MediaItem{
		Title:      title,
		Slug:       slug,
		Kind:       entities.MediaKindAttachment,
		MimeType:   mtype.String(),
		FileName:   storedName,
		Size:       size,
		URL:        l.publicURL(storedName),
		UploadedBy: in.UserID,
	}
	if err := l.store.CreateMedia(item); err != nil {
		os.Remove(finalPath)
		return nil, fmt.Errorf("save media item: %w", err)
	}

	zap.S().Infow("media uploaded", "id", item.ID, "slug", item.Slug, "type", item.MimeType, "size", size)
	return item, nil
}

// RegisterInput describes a remote file catalogued by URL.
type RegisterInput struct {
	URL      string
	Title    string
	Slug     string
	MimeType string
	UserID   uint
}

// Register catalogues a file hosted elsewhere. No bytes are stored.
func (l *Library) Register(ctx context.Context, in RegisterInput) (*entities.MediaItem, error) {
	parsed, err := url.Parse(strings.TrimSpace(in.URL))
	if err != nil || parsed.Host == "" || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return nil, ErrInvalidURL
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	baseName := strings.TrimSuffix(path.Base(parsed.Path), path.Ext(parsed.Path))
	title := firstNonEmpty(CleanTitle(in.Title), CleanTitle(baseName))

	slug, err := l.uniqueSlug(firstNonEmpty(in.Slug, title, "media"))
	if err != nil {
		return nil, err
	}

	item := &entities.MediaItem{
		Title:      title,
		Slug:       slug,
		Kind:       entities.MediaKindAttachment,
		MimeType:   in.MimeType,
		URL:        parsed.String(),
		UploadedBy: in.UserID,
	}
	if err := l.store.CreateMedia(item); err != nil {
		return nil, fmt.Errorf("save media item: %w", err)
	}
	return item, nil
}

// Get returns a media item by ID.
func (l *Library) Get(id uint) (*entities.MediaItem, error) {
	item, err := l.store.GetMediaByID(id)
	if media.IsNotFound(err) {
		return nil, ErrNotFound
	}
	return item, err
}

// List returns attachments, newest first, optionally narrowed to a MIME prefix such as "video/".
func (l *Library) List(mimePrefix string, limit int) ([]entities.MediaItem, error) {
	return l.store.ListMedia(entities.MediaKindAttachment, mimePrefix, limit)
}

// Delete removes the catalogue entry and, for local items, the stored file.
func (l *Library) Delete(id uint) (*entities.MediaItem, error) {
	item, err := l.Get(id)
	if err != nil {
		return nil, err
	}

	if err := l.store.DeleteMedia(id); err != nil {
		if media.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("delete media item: %w", err)
	}

	if item.IsLocal() {
		if err := os.Remove(l.filePath(item)); err != nil && !os.IsNotExist(err) {
			zap.S().Warnw("failed to remove media file", "id", id, "file", item.FileName, "error", err)
		}
	}
	return item, nil
}

// MissingFiles returns local items whose stored file no longer exists.
func (l *Library) MissingFiles(ctx context.Context) ([]entities.MediaItem, error) {
	items, err := l.store.ListLocalMedia()
	if err != nil {
		return nil, err
	}

	var missing []entities.MediaItem
	for _, item := range items {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if _, err := os.Stat(l.filePath(&item)); os.IsNotExist(err) {
			missing = append(missing, item)
		}
	}
	return missing, nil
}

// PruneMissing deletes catalogue entries whose stored file has vanished.
// Returns the number of entries removed.
func (l *Library) PruneMissing(ctx context.Context) (int, error) {
	missing, err := l.MissingFiles(ctx)
	if err != nil {
		return 0, err
	}

	pruned := 0
	for _, item := range missing {
		if err := l.store.DeleteMedia(item.ID); err != nil && !media.IsNotFound(err) {
			return pruned, fmt.Errorf("prune media %d: %w", item.ID, err)
		}
		pruned++
	}
	return pruned, nil
}

// Slugify lower-cases s and collapses anything but letters and digits into single dashes.
func Slugify(s string) string {
	return strings.Trim(nonSlugChars.ReplaceAllString(strings.ToLower(s), "-"), "-")
}

// uniqueSlug returns Slugify(base), suffixed with -2, -3, ... if already taken.
func (l *Library) uniqueSlug(base string) (string, error) {
	slug := Slugify(base)
	if slug == "" {
		slug = "media"
	}

	candidate := slug
	for n := 2; n <= maxSlugSuffix; n++ {
		exists, err := l.store.SlugExists(candidate, entities.MediaKindAttachment)
		if err != nil {
			return "", fmt.Errorf("check slug: %w", err)
		}
		if !exists {
			return candidate, nil
		}
		candidate = slug + "-" + strconv.Itoa(n)
	}
	return "", fmt.Errorf("no free slug for %q", slug)
}

func (l *Library) filePath(item *entities.MediaItem) string {
	return filepath.Join(l.config.Dir, item.FileName)
}

func (l *Library) publicURL(storedName string) string {
	prefix := "/" + strings.Trim(l.config.URLPrefix, "/")
	return strings.TrimSuffix(l.config.PublicURL, "/") + prefix + "/" + storedName
}

func isAllowedType(mimeType string) bool {
	for _, prefix := range allowedTypePrefixes {
		if strings.HasPrefix(mimeType, prefix) {
			return true
		}
	}
	return false
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
