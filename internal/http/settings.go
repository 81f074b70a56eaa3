package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/sitedocs/internal/audit"
	"github.com/mrlokans/sitedocs/internal/auth"
)

// SettingsController exposes the "changes enabled" toggle. Its routes are
// not behind the readonly gate, otherwise a disabled site could never be
// re-enabled.
type SettingsController struct {
	toggle ChangesToggle
	audit  AuditLogger
}

func NewSettingsController(toggle ChangesToggle, auditor AuditLogger) *SettingsController {
	return &SettingsController{toggle: toggle, audit: auditor}
}

// UpdateChangesRequest is the body of PUT /api/settings/changes.
type UpdateChangesRequest struct {
	Enabled *bool `json:"enabled" binding:"required"`
}

// GetChanges handles GET /api/settings/changes
func (sc *SettingsController) GetChanges(c *gin.Context) {
	c.JSON(http.StatusOK, sc.toggle.GetEnableChangesInfo())
}

// UpdateChanges handles PUT /api/settings/changes
func (sc *SettingsController) UpdateChanges(c *gin.Context) {
	var req UpdateChangesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "enabled is required")
		return
	}

	if err := sc.toggle.SetEnableChanges(*req.Enabled); err != nil {
		respondInternalError(c, err, "update changes toggle")
		return
	}

	description := "Documentation changes disabled"
	if *req.Enabled {
		description = "Documentation changes enabled"
	}
	sc.logChange(c, description)
	c.JSON(http.StatusOK, sc.toggle.GetEnableChangesInfo())
}

// ResetChanges handles DELETE /api/settings/changes, reverting to the configured value.
func (sc *SettingsController) ResetChanges(c *gin.Context) {
	if err := sc.toggle.ClearEnableChanges(); err != nil {
		respondInternalError(c, err, "reset changes toggle")
		return
	}
	sc.logChange(c, "Documentation changes reset to configured value")
	c.JSON(http.StatusOK, sc.toggle.GetEnableChangesInfo())
}

func (sc *SettingsController) logChange(c *gin.Context, description string) {
	if sc.audit != nil {
		sc.audit.LogSettings(auth.GetUserID(c), audit.ActionEnableChangesUpdate, description)
	}
}
