package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/sitedocs/internal/audit"
	"github.com/mrlokans/sitedocs/internal/auth"
	"github.com/mrlokans/sitedocs/internal/entities"
	"github.com/mrlokans/sitedocs/internal/medialib"
)

const defaultMediaListLimit = 100

// mediaTypePrefixes maps the ?type= filter to a MIME prefix.
var mediaTypePrefixes = map[string]string{
	"":      "",
	"video": "video/",
	"image": "image/",
	"pdf":   "application/pdf",
}

// MediaController manages the media library over the API.
type MediaController struct {
	library MediaLibrary
	audit   AuditLogger
}

func NewMediaController(library MediaLibrary, auditor AuditLogger) *MediaController {
	return &MediaController{library: library, audit: auditor}
}

// List handles GET /api/media?type=video&limit=50
func (mc *MediaController) List(c *gin.Context) {
	prefix, ok := mediaTypePrefixes[strings.ToLower(c.Query("type"))]
	if !ok {
		respondBadRequest(c, "type must be one of video, image, pdf")
		return
	}

	items, err := mc.library.List(prefix, queryInt(c, "limit", defaultMediaListLimit))
	if err != nil {
		respondInternalError(c, err, "list media")
		return
	}
	c.JSON(http.StatusOK, gin.H{"media": items, "count": len(items)})
}

// Upload handles POST /api/media. A multipart "file" is stored locally; a
// "url" field registers a remote file instead.
func (mc *MediaController) Upload(c *gin.Context) {
	userID := auth.GetUserID(c)
	title := c.PostForm("title")
	slug := c.PostForm("slug")

	fileHeader, err := c.FormFile("file")
	if err != nil {
		remoteURL := strings.TrimSpace(c.PostForm("url"))
		if remoteURL == "" {
			respondBadRequest(c, "file or url is required")
			return
		}
		item, err := mc.library.Register(c.Request.Context(), medialib.RegisterInput{
			URL:      remoteURL,
			Title:    title,
			Slug:     slug,
			MimeType: c.PostForm("mime_type"),
			UserID:   userID,
		})
		mc.finish(c, audit.ActionMediaRegister, item, err)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respondBadRequest(c, "could not read uploaded file")
		return
	}
	defer file.Close()

	item, err := mc.library.Upload(c.Request.Context(), medialib.UploadInput{
		Reader:   file,
		FileName: fileHeader.Filename,
		Title:    title,
		Slug:     slug,
		UserID:   userID,
	})
	mc.finish(c, audit.ActionMediaUpload, item, err)
}

// Delete handles DELETE /api/media/:id
func (mc *MediaController) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	item, err := mc.library.Delete(id)
	if errors.Is(err, medialib.ErrNotFound) {
		respondNotFound(c, "media")
		return
	}
	mc.logMedia(c, audit.ActionMediaDelete, item, err)
	if err != nil {
		respondInternalError(c, err, "delete media")
		return
	}
	respondSuccess(c, "media deleted", item)
}

func (mc *MediaController) finish(c *gin.Context, action string, item *entities.MediaItem, err error) {
	mc.logMedia(c, action, item, err)
	if err != nil {
		respondMediaError(c, err)
		return
	}
	respondCreated(c, item)
}

func (mc *MediaController) logMedia(c *gin.Context, action string, item *entities.MediaItem, err error) {
	if mc.audit != nil {
		mc.audit.LogMedia(auth.GetUserID(c), action, item, err)
	}
}

func respondMediaError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, medialib.ErrTooLarge):
		respondError(c, http.StatusRequestEntityTooLarge, err.Error())
	case errors.Is(err, medialib.ErrUnsupportedType):
		respondError(c, http.StatusUnsupportedMediaType, err.Error())
	case errors.Is(err, medialib.ErrEmptyFile), errors.Is(err, medialib.ErrInvalidURL):
		respondBadRequest(c, err.Error())
	default:
		respondInternalError(c, err, "store media")
	}
}
