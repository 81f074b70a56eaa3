package docs

import (
	"errors"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/mrlokans/sitedocs/internal/entities"
)

const (
	// VideoSelectionKey is the settings key holding the selected video's media ID.
	VideoSelectionKey = entities.SettingKeyVideoSelection

	// VideoSlug is the slug administrators are told to use for the video upload.
	VideoSlug = "wds-documentation-video"

	// PDFSlug identifies the documentation PDF in the media library.
	PDFSlug = "wds-documentation-pdf"
)

// SettingsStore is the key/value store holding the video selection.
type SettingsStore interface {
	GetInt(key string) (int64, bool)
	SetInt(key string, value int64) error
}

// MediaRepository looks up media items.
type MediaRepository interface {
	GetMediaByID(id uint) (*entities.MediaItem, error)
	FindOneMedia(q entities.MediaQuery) (*entities.MediaItem, error)
}

// URLFilter receives a resolved URL (possibly empty) and the ID it came from
// (0 when there is none) and returns the URL to use.
type URLFilter func(url string, id uint) string

// Options customise a Resolver. Nil filters leave URLs unchanged.
type Options struct {
	VideoURLFilter URLFilter
	PDFURLFilter   URLFilter
}

// ResolvedDocumentation is the per-request view of both assets.
// Empty fields mean the asset is not configured.
type ResolvedDocumentation struct {
	VideoURL string `json:"video_url,omitempty"`
	PDFURL   string `json:"pdf_url,omitempty"`
}

// HasVideo reports whether a video URL was resolved.
func (d ResolvedDocumentation) HasVideo() bool { return d.VideoURL != "" }

// HasPDF reports whether a PDF URL was resolved.
func (d ResolvedDocumentation) HasPDF() bool { return d.PDFURL != "" }

// Resolver computes documentation asset URLs.
type Resolver struct {
	settings SettingsStore
	media    MediaRepository
	opts     Options
}

// NewResolver creates a resolver over the given collaborators.
func NewResolver(settings SettingsStore, media MediaRepository, opts Options) *Resolver {
	return &Resolver{settings: settings, media: media, opts: opts}
}

// VideoSelection returns the stored media ID, or 0 when unset.
// Non-positive stored values count as unset.
func (r *Resolver) VideoSelection() uint {
	id, ok := r.settings.GetInt(VideoSelectionKey)
	if !ok || id <= 0 {
		return 0
	}
	return uint(id)
}

// CurrentVideo returns the selected media item, or nil when the selection is
// unset or no longer resolves.
func (r *Resolver) CurrentVideo() *entities.MediaItem {
	return r.lookupVideo(r.VideoSelection())
}

func (r *Resolver) lookupVideo(id uint) *entities.MediaItem {
	if id == 0 {
		return nil
	}

	item, err := r.media.GetMediaByID(id)
	if err != nil {
		logLookupError(err, "video", id)
		return nil
	}
	return item
}

// ResolveVideoURL returns the selected video's URL, or "" when unconfigured.
func (r *Resolver) ResolveVideoURL() string {
	id := r.VideoSelection()

	var url string
	if item := r.lookupVideo(id); item != nil {
		url = item.URL
	}

	return applyFilter(r.opts.VideoURLFilter, url, id)
}

// ResolvePDFURL returns the URL of the newest attachment with PDFSlug, or "".
func (r *Resolver) ResolvePDFURL() string {
	var (
		url string
		id  uint
	)

	item, err := r.media.FindOneMedia(entities.MediaQuery{
		Slug:       PDFSlug,
		Kind:       entities.MediaKindAttachment,
		MostRecent: true,
	})
	if err != nil {
		logLookupError(err, "pdf", 0)
	} else if item != nil {
		url = item.URL
		id = item.ID
	}

	return applyFilter(r.opts.PDFURLFilter, url, id)
}

// Resolve computes both asset URLs.
func (r *Resolver) Resolve() ResolvedDocumentation {
	return ResolvedDocumentation{
		VideoURL: r.ResolveVideoURL(),
		PDFURL:   r.ResolvePDFURL(),
	}
}

// SetVideoSelection stores id as the documentation video. Zero clears the
// selection. Setting the same value again has no further effect.
func (r *Resolver) SetVideoSelection(id uint) error {
	return r.settings.SetInt(VideoSelectionKey, int64(id))
}

// ParseSelection coerces user input into a media ID. Empty, negative and
// non-numeric input yields 0, meaning "unset".
func ParseSelection(raw string) uint {
	n, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || n <= 0 {
		return 0
	}
	if uint64(n) > uint64(^uint(0)) {
		return 0
	}
	return uint(n)
}

// StaticURL returns a filter that replaces the resolved URL with url.
// An empty url leaves resolution untouched.
func StaticURL(url string) URLFilter {
	if url == "" {
		return nil
	}
	return func(string, uint) string { return url }
}

func applyFilter(filter URLFilter, url string, id uint) string {
	if filter == nil {
		return url
	}
	return filter(url, id)
}

func logLookupError(err error, asset string, id uint) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		zap.S().Debugw("documentation asset not found", "asset", asset, "id", id)
		return
	}
	zap.S().Warnw("documentation asset lookup failed", "asset", asset, "id", id, "error", err)
}
