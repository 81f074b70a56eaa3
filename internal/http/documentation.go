package http

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/sitedocs/internal/auth"
	"github.com/mrlokans/sitedocs/internal/docs"
	"github.com/mrlokans/sitedocs/internal/readonly"
)

// submitField must accompany the selection for a form post to be saved.
const submitField = "submit_video_selector"

// PageConfig carries the static decorations of the documentation page.
type PageConfig struct {
	BannerURL  string
	ContactURL string
}

// DocumentationController serves the documentation page, the dashboard
// widget and the selection API.
type DocumentationController struct {
	docs  DocumentationService
	audit AuditLogger
	page  PageConfig
}

func NewDocumentationController(service DocumentationService, auditor AuditLogger, page PageConfig) *DocumentationController {
	return &DocumentationController{docs: service, audit: auditor, page: page}
}

// DocumentationResponse is returned by the JSON API.
type DocumentationResponse struct {
	docs.ResolvedDocumentation
	VideoID        uint `json:"video_id"`
	ChangesEnabled bool `json:"changes_enabled"`
}

// UpdateVideoRequest is the body of PUT /api/documentation/video.
// VideoID accepts a number or a numeric string; anything that is not a
// positive integer clears the selection.
type UpdateVideoRequest struct {
	VideoID json.RawMessage `json:"video_id"`
}

// Index handles GET /
func (dc *DocumentationController) Index(c *gin.Context) {
	c.Redirect(http.StatusFound, "/documentation")
}

// Page handles GET /documentation
func (dc *DocumentationController) Page(c *gin.Context) {
	data := dc.blockData(c)
	data["Title"] = "Site Documentation"
	data["BannerURL"] = dc.page.BannerURL
	data["ContactURL"] = dc.page.ContactURL
	data["Saved"] = c.Query("saved") == "1"

	showAdmin := readonly.IsChangesEnabled(c) && auth.HasCapability(c, auth.CapabilityManageOptions)
	data["ShowAdmin"] = showAdmin
	if showAdmin {
		data["Selection"] = dc.docs.VideoSelection()
		data["CurrentVideo"] = dc.docs.CurrentVideo()
	}

	c.HTML(http.StatusOK, "documentation.html", data)
}

// Widget handles GET /documentation/widget
func (dc *DocumentationController) Widget(c *gin.Context) {
	c.HTML(http.StatusOK, "widget.html", dc.blockData(c))
}

// SaveForm handles POST /documentation. Posts missing either the submit
// button or the selection field are ignored.
func (dc *DocumentationController) SaveForm(c *gin.Context) {
	_, submitted := c.GetPostForm(submitField)
	raw, hasValue := c.GetPostForm(docs.VideoSelectionKey)
	if !submitted || !hasValue {
		c.Redirect(http.StatusSeeOther, "/documentation")
		return
	}

	if err := dc.updateSelection(c, docs.ParseSelection(raw)); err != nil {
		respondInternalError(c, err, "save video selection")
		return
	}
	c.Redirect(http.StatusSeeOther, "/documentation?saved=1")
}

// GetDocumentation handles GET /api/documentation
func (dc *DocumentationController) GetDocumentation(c *gin.Context) {
	c.JSON(http.StatusOK, dc.response(c))
}

// UpdateVideo handles PUT /api/documentation/video
func (dc *DocumentationController) UpdateVideo(c *gin.Context) {
	var req UpdateVideoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}
	if len(req.VideoID) == 0 {
		respondBadRequest(c, "video_id is required")
		return
	}

	raw := strings.Trim(string(req.VideoID), `"`)
	if err := dc.updateSelection(c, docs.ParseSelection(raw)); err != nil {
		respondInternalError(c, err, "update video selection")
		return
	}
	c.JSON(http.StatusOK, dc.response(c))
}

func (dc *DocumentationController) updateSelection(c *gin.Context, id uint) error {
	previous := dc.docs.VideoSelection()
	if err := dc.docs.SetVideoSelection(id); err != nil {
		return err
	}
	if dc.audit != nil {
		dc.audit.LogVideoSelection(auth.GetUserID(c), previous, id)
	}
	return nil
}

func (dc *DocumentationController) response(c *gin.Context) DocumentationResponse {
	return DocumentationResponse{
		ResolvedDocumentation: dc.docs.Resolve(),
		VideoID:               dc.docs.VideoSelection(),
		ChangesEnabled:        readonly.IsChangesEnabled(c),
	}
}

func (dc *DocumentationController) blockData(c *gin.Context) gin.H {
	return gin.H{
		"Docs":      dc.docs.Resolve(),
		"VideoSlug": docs.VideoSlug,
		"PDFSlug":   docs.PDFSlug,
		"Auth":      GetAuthTemplateData(c),
	}
}
